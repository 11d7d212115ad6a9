// Copyright 2022 Questlang. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package quest

// Replacement grammar:
//
//	replacement-body := replacement-atom { replacement-atom }
//	replacement-atom := '$'name
//	                  | '$(' body ')' | '$[' body ']' | '${' body '}'
//	                  | balanced literal tokens
//
// Stacked dollars escape one level: `$$name` expands to the token
// `$name`, which lets a macro expand to a macro definition.

type replBody []replAtom

type replAtom interface {
	expand(out *[]Token, caps map[string][]capEntry, idx int) error
}

type replToken struct {
	tok Token
}

type replCapture struct {
	name string
}

// replGroup expands its body by iterating the captures bound inside
// it: round requires exactly one binding, square zero or one, curly
// once per repetition with all captures stepping in lockstep.
type replGroup struct {
	paren ParenKind
	body  replBody
}

func (b replBody) expand(out *[]Token, caps map[string][]capEntry, idx int) error {
	for _, atom := range b {
		if err := atom.expand(out, caps, idx); err != nil {
			return err
		}
	}
	return nil
}

func (a replToken) expand(out *[]Token, caps map[string][]capEntry, idx int) error {
	*out = append(*out, a.tok)
	return nil
}

func (a replCapture) expand(out *[]Token, caps map[string][]capEntry, idx int) error {
	entries, ok := caps[a.name]
	if !ok {
		return errMessage("syntax variable $%s never matched", a.name)
	}
	if idx >= 0 {
		if idx >= len(entries) {
			return errMessage("syntax variable $%s has %d matches, need %d",
				a.name, len(entries), idx+1)
		}
		*out = append(*out, entries[idx]...)
		return nil
	}
	for _, entry := range entries {
		*out = append(*out, entry...)
	}
	return nil
}

func (a replGroup) expand(out *[]Token, caps map[string][]capEntry, idx int) error {
	n, err := a.bindingCount(caps)
	if err != nil {
		return err
	}
	switch a.paren {
	case ParenRound:
		if n != 1 {
			return errMessage("invalid match count (got %d, need exactly 1)", n)
		}
		return a.body.expand(out, caps, 0)
	case ParenSquare:
		if n > 1 {
			return errMessage("invalid match count (got %d, max 1)", n)
		}
		if n == 0 {
			return nil
		}
		return a.body.expand(out, caps, 0)
	default: // curly
		for i := 0; i < n; i++ {
			if err := a.body.expand(out, caps, i); err != nil {
				return err
			}
		}
		return nil
	}
}

// bindingCount finds how many repetitions the group's captures bound;
// captures referenced together must agree on the count.
func (a replGroup) bindingCount(caps map[string][]capEntry) (int, error) {
	n := -1
	var walk func(body replBody) error
	walk = func(body replBody) error {
		for _, atom := range body {
			switch at := atom.(type) {
			case replCapture:
				entries, ok := caps[at.name]
				if !ok {
					continue
				}
				if n == -1 {
					n = len(entries)
				} else if n != len(entries) {
					return errMessage("syntax variables in one repetition matched %d and %d times",
						n, len(entries))
				}
			case replGroup:
				if err := walk(at.body); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := walk(a.body); err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, nil
	}
	return n, nil
}

// parseReplBody parses a replacement up to the closing delimiter,
// which it consumes.
func parseReplBody(p *Parser, end ParenKind) (replBody, error) {
	var body replBody
	for {
		more, err := parseReplAtom(&body, p, end)
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
	}
	if _, ok, err := p.takeIfBypassSyntax(func(t Token) bool {
		return t.Kind == TokRightParen && t.Paren == end
	}); err != nil {
		return nil, err
	} else if !ok {
		return nil, p.errorf("expected `%c` after replacement body", end.right())
	}
	return body, nil
}

func parseReplAtom(body *replBody, p *Parser, end ParenKind) (bool, error) {
	tok, ok, err := p.takeBypassSyntax()
	if err != nil || !ok {
		return false, err
	}

	switch {
	case tok.Kind == TokSyntaxIdentifier && tok.Depth == 0:
		*body = append(*body, replCapture{name: tok.Str})
		return true, nil

	case tok.Kind == TokSyntaxIdentifier:
		tok.Depth--
		*body = append(*body, replToken{tok: tok})
		return true, nil

	case tok.Kind == TokSyntaxLeftParen && tok.Depth == 0:
		sub, err := parseReplBody(p, tok.Paren)
		if err != nil {
			return false, err
		}
		*body = append(*body, replGroup{paren: tok.Paren, body: sub})
		return true, nil

	case tok.Kind == TokSyntaxLeftParen || tok.Kind == TokSyntaxOr || tok.Kind == TokSyntaxNot:
		if tok.Depth == 0 {
			return false, p.errorf("unexpected %s in replacement", tok)
		}
		tok.Depth--
		*body = append(*body, replToken{tok: tok})
		return true, nil

	case tok.Kind == TokLeftParen:
		*body = append(*body, replToken{tok: tok})
		for {
			more, err := parseReplAtom(body, p, tok.Paren)
			if err != nil {
				return false, err
			}
			if !more {
				break
			}
		}
		close, ok, err := p.takeIfBypassSyntax(func(t Token) bool {
			return t.Kind == TokRightParen && t.Paren == tok.Paren
		})
		if err != nil {
			return false, err
		}
		if !ok {
			return false, p.errorf("parens in syntax must be matched")
		}
		*body = append(*body, replToken{tok: close})
		return true, nil

	case tok.Kind == TokRightParen && tok.Paren == end:
		p.untake(tok)
		return false, nil

	case tok.Kind == TokEscapedLeftParen:
		*body = append(*body, replToken{tok: Token{Kind: TokLeftParen, Paren: tok.Paren, Span: tok.Span}})
		return true, nil

	case tok.Kind == TokEscapedRightParen:
		*body = append(*body, replToken{tok: Token{Kind: TokRightParen, Paren: tok.Paren, Span: tok.Span}})
		return true, nil

	default:
		*body = append(*body, replToken{tok: tok})
		return true, nil
	}
}
