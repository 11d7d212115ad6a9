// Copyright 2022 Questlang. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package quest

// Pattern grammar:
//
//	pattern-body     := pattern-sequence { '$|' pattern-sequence }
//	pattern-sequence := pattern-atom { pattern-atom }
//	pattern-atom     := '$'name ':' kind
//	                  | '$(' body ')' | '$[' body ']' | '${' body '}'
//	                  | '$!' pattern-atom
//	                  | balanced literal tokens
//	kind             := ident | '(' body ')'
//
// Matching consumes tokens through the parser's bypass interface;
// failures restore everything consumed since the sequence began.

type patternBody []patternSeq

type patternSeq []patternAtom

type patternAtom interface {
	match(m *matcher) (bool, error)
}

// tokenPatternAtom matches one literal token.
type tokenPatternAtom struct {
	tok Token
}

// capturePatternAtom is $name:kind; the discard name `_` matches
// without binding.
type capturePatternAtom struct {
	name string
	kind patternKind
}

type patternKind struct {
	name  string
	body  patternBody // non-nil for $name:(...)
	paren ParenKind
}

// groupPatternAtom is an anonymous grouping: $(...) exactly once,
// $[...] zero or one, ${...} zero or more.
type groupPatternAtom struct {
	paren ParenKind
	body  patternBody
}

// lookaheadPatternAtom is $!atom: succeeds, consuming nothing, exactly
// when atom would not match here.
type lookaheadPatternAtom struct {
	inner patternAtom
}

// capEntry is the token sequence one capture occurrence bound.
type capEntry []Token

// matcher tracks the tokens a match attempt has consumed and the
// captures it has declared, so both can be rolled back on failure.
type matcher struct {
	p        *Parser
	consumed []Token
	caps     map[string][]capEntry
	journal  []string
}

func newMatcher(p *Parser) *matcher {
	return &matcher{p: p, caps: make(map[string][]capEntry)}
}

type matchMark struct {
	tokens  int
	journal int
}

func (m *matcher) mark() matchMark {
	return matchMark{tokens: len(m.consumed), journal: len(m.journal)}
}

// rollback restores consumed tokens to the peek buffer and retracts
// captures declared since the mark.
func (m *matcher) rollback(mk matchMark) {
	m.p.untakeAll(m.consumed[mk.tokens:])
	m.consumed = m.consumed[:mk.tokens]
	for len(m.journal) > mk.journal {
		name := m.journal[len(m.journal)-1]
		m.journal = m.journal[:len(m.journal)-1]
		entries := m.caps[name]
		if len(entries) <= 1 {
			delete(m.caps, name)
		} else {
			m.caps[name] = entries[:len(entries)-1]
		}
	}
}

func (m *matcher) push(tok Token) {
	m.consumed = append(m.consumed, tok)
}

func (m *matcher) declare(name string, tokens []Token) {
	if name == "_" {
		return
	}
	m.caps[name] = append(m.caps[name], capEntry(tokens))
	m.journal = append(m.journal, name)
}

func (b patternBody) match(m *matcher) (bool, error) {
	for _, seq := range b {
		ok, err := seq.match(m)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func (s patternSeq) match(m *matcher) (bool, error) {
	mk := m.mark()
	for _, atom := range s {
		ok, err := atom.match(m)
		if err != nil {
			return false, err
		}
		if !ok {
			m.rollback(mk)
			return false, nil
		}
	}
	return true, nil
}

func (a tokenPatternAtom) match(m *matcher) (bool, error) {
	tok, ok, err := m.p.takeIfEqualBypassSyntax(a.tok)
	if err != nil || !ok {
		return false, err
	}
	m.push(tok)
	return true, nil
}

func (a groupPatternAtom) match(m *matcher) (bool, error) {
	switch a.paren {
	case ParenRound:
		return a.body.match(m)
	case ParenSquare:
		ok, err := a.body.match(m)
		if err != nil {
			return false, err
		}
		_ = ok // an optional group matches even when its body does not
		return true, nil
	default: // curly: zero or more
		for {
			before := len(m.consumed)
			ok, err := a.body.match(m)
			if err != nil {
				return false, err
			}
			if !ok || len(m.consumed) == before {
				return true, nil
			}
		}
	}
}

func (a lookaheadPatternAtom) match(m *matcher) (bool, error) {
	mk := m.mark()
	ok, err := a.inner.match(m)
	if err != nil {
		return false, err
	}
	m.rollback(mk)
	return !ok, nil
}

func (a capturePatternAtom) match(m *matcher) (bool, error) {
	if a.kind.body != nil {
		mk := m.mark()
		ok, err := a.kind.body.match(m)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
		m.declare(a.name, append([]Token(nil), m.consumed[mk.tokens:]...))
		return true, nil
	}
	return m.matchNamedKind(a.name, a.kind.name)
}

// matchNamedKind handles the built-in capture categories and falls
// back to user rule groups.
func (m *matcher) matchNamedKind(capture, kind string) (bool, error) {
	switch kind {
	case "token":
		return m.captureSingle(capture, func(Token) bool { return true })
	case "text":
		return m.captureSingle(capture, func(t Token) bool { return t.Kind == TokText })
	case "int", "integer":
		return m.captureSingle(capture, func(t Token) bool { return t.Kind == TokInteger })
	case "float":
		return m.captureSingle(capture, func(t Token) bool { return t.Kind == TokFloat })
	case "num", "number":
		return m.captureSingle(capture, func(t Token) bool {
			return t.Kind == TokInteger || t.Kind == TokFloat
		})
	case "ident", "identifier":
		return m.captureSingle(capture, func(t Token) bool { return t.Kind == TokIdentifier })
	case "symbol":
		return m.captureSingle(capture, func(t Token) bool { return t.Kind == TokSymbol })
	case "stackframe":
		return m.captureSingle(capture, func(t Token) bool { return t.Kind == TokStackframe })
	case "literal":
		return m.captureSingle(capture, func(t Token) bool {
			switch t.Kind {
			case TokInteger, TokFloat, TokIdentifier, TokText, TokStackframe:
				return true
			}
			return false
		})
	case "group":
		return m.captureDelimited(capture, ParenRound)
	case "block":
		return m.captureDelimited(capture, ParenCurly)
	case "list":
		return m.captureDelimited(capture, ParenSquare)
	case "tt":
		for _, k := range []string{"literal", "group", "list", "block"} {
			ok, err := m.matchNamedKind(capture, k)
			if err != nil || ok {
				return ok, err
			}
		}
		return false, nil
	default:
		return m.matchUserGroup(capture, kind)
	}
}

func (m *matcher) captureSingle(capture string, pred func(Token) bool) (bool, error) {
	tok, ok, err := m.p.takeIfBypassSyntax(pred)
	if err != nil || !ok {
		return false, err
	}
	m.push(tok)
	m.declare(capture, []Token{tok})
	return true, nil
}

// captureDelimited matches one balanced group, block or list,
// capturing it with its delimiters.
func (m *matcher) captureDelimited(capture string, paren ParenKind) (bool, error) {
	open, ok, err := m.p.takeIfBypassSyntax(func(t Token) bool {
		return t.Kind == TokLeftParen && t.Paren == paren
	})
	if err != nil || !ok {
		return false, err
	}
	mk := m.mark()
	m.push(open)
	if ok, err := m.matchBalanced(paren); err != nil || !ok {
		if err == nil {
			m.rollback(mk)
		}
		return false, err
	}
	m.declare(capture, append([]Token(nil), m.consumed[mk.tokens:]...))
	return true, nil
}

// matchBalanced consumes tokens through the matching close delimiter,
// balancing any nested delimiters on the way.
func (m *matcher) matchBalanced(paren ParenKind) (bool, error) {
	for {
		tok, ok, err := m.p.takeBypassSyntax()
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
		m.push(tok)
		switch tok.Kind {
		case TokRightParen:
			if tok.Paren == paren {
				return true, nil
			}
		case TokLeftParen:
			if ok, err := m.matchBalanced(tok.Paren); err != nil || !ok {
				return false, err
			}
		}
	}
}

// matchUserGroup tries every rule in a named group, in priority order;
// the tokens the winning rule's pattern consumed become the capture.
func (m *matcher) matchUserGroup(capture, name string) (bool, error) {
	rules, ok := m.p.groupRules(name)
	if !ok {
		return false, m.p.errorf("unknown capture type %q", name)
	}
	for _, rule := range rules {
		child := newMatcher(m.p)
		ok, err := rule.pattern.match(child)
		if err != nil {
			return false, err
		}
		if ok {
			m.consumed = append(m.consumed, child.consumed...)
			m.declare(capture, child.consumed)
			return true, nil
		}
	}
	return false, nil
}

// parsePatternBody parses alternated sequences up to the closing
// delimiter, which it consumes.
func parsePatternBody(p *Parser, end ParenKind) (patternBody, error) {
	var body patternBody
	seq, err := parsePatternSeq(p, end)
	if err != nil {
		return nil, err
	}
	if seq != nil {
		body = append(body, seq)
	}

	for {
		_, ok, err := p.takeIfBypassSyntax(func(t Token) bool {
			return t.Kind == TokSyntaxOr && t.Depth == 0
		})
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		seq, err := parsePatternSeq(p, end)
		if err != nil {
			return nil, err
		}
		if seq == nil {
			return nil, p.errorf("expected pattern sequence after `$|`")
		}
		body = append(body, seq)
	}

	if _, ok, err := p.takeIfBypassSyntax(func(t Token) bool {
		return t.Kind == TokRightParen && t.Paren == end
	}); err != nil {
		return nil, err
	} else if !ok {
		return nil, p.errorf("expected `%c` after pattern body", end.right())
	}
	return body, nil
}

func parsePatternSeq(p *Parser, end ParenKind) (patternSeq, error) {
	var seq patternSeq
	for {
		tok, ok, err := p.peekBypassSyntax()
		if err != nil {
			return nil, err
		}
		if !ok || (tok.Kind == TokSyntaxOr && tok.Depth == 0) {
			break
		}
		more, err := parsePatternAtom(&seq, p, end)
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
	}
	if len(seq) == 0 {
		return nil, nil
	}
	return seq, nil
}

func parsePatternAtom(seq *patternSeq, p *Parser, end ParenKind) (bool, error) {
	tok, ok, err := p.takeBypassSyntax()
	if err != nil || !ok {
		return false, err
	}

	switch {
	case tok.Kind == TokSyntaxIdentifier && tok.Depth == 0:
		if _, ok, err := p.takeIfEqualBypassSyntax(symbolToken(":")); err != nil {
			return false, err
		} else if !ok {
			return false, p.errorf("you must put a `:` after a syntax name")
		}
		kind, err := parsePatternKind(p)
		if err != nil {
			return false, err
		}
		*seq = append(*seq, capturePatternAtom{name: tok.Str, kind: kind})
		return true, nil

	case tok.Kind == TokSyntaxLeftParen && tok.Depth == 0:
		body, err := parsePatternBody(p, tok.Paren)
		if err != nil {
			return false, err
		}
		if len(body) == 0 {
			return false, p.errorf("expected syntax body after `$%c`", tok.Paren.left())
		}
		*seq = append(*seq, groupPatternAtom{paren: tok.Paren, body: body})
		return true, nil

	case tok.Kind == TokSyntaxNot && tok.Depth == 0:
		var inner patternSeq
		more, err := parsePatternAtom(&inner, p, end)
		if err != nil {
			return false, err
		}
		if !more || len(inner) == 0 {
			return false, p.errorf("expected pattern after `$!`")
		}
		*seq = append(*seq, lookaheadPatternAtom{inner: inner[0]})
		return true, nil

	case tok.Kind == TokSyntaxIdentifier || tok.Kind == TokSyntaxOr ||
		tok.Kind == TokSyntaxLeftParen || tok.Kind == TokSyntaxNot:
		// deeper macro tokens end the pattern; they belong to an outer
		// expansion level
		p.untake(tok)
		return false, nil

	case tok.Kind == TokLeftParen:
		*seq = append(*seq, tokenPatternAtom{tok: tok})
		for {
			more, err := parsePatternAtom(seq, p, tok.Paren)
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
			return false, p.errorf("parens in syntaxes must be matched")
		}
		*seq = append(*seq, tokenPatternAtom{tok: close})
		return true, nil

	case tok.Kind == TokRightParen && tok.Paren == end:
		p.untake(tok)
		return false, nil

	case tok.Kind == TokEscapedLeftParen:
		*seq = append(*seq, tokenPatternAtom{tok: Token{Kind: TokLeftParen, Paren: tok.Paren, Span: tok.Span}})
		return true, nil

	case tok.Kind == TokEscapedRightParen:
		*seq = append(*seq, tokenPatternAtom{tok: Token{Kind: TokRightParen, Paren: tok.Paren, Span: tok.Span}})
		return true, nil

	default:
		*seq = append(*seq, tokenPatternAtom{tok: tok})
		return true, nil
	}
}

func parsePatternKind(p *Parser) (patternKind, error) {
	tok, ok, err := p.takeBypassSyntax()
	if err != nil {
		return patternKind{}, err
	}
	if !ok {
		return patternKind{}, p.errorf("expected syntax kind after `:`")
	}
	switch tok.Kind {
	case TokIdentifier:
		return patternKind{name: tok.Str}, nil
	case TokLeftParen:
		body, err := parsePatternBody(p, tok.Paren)
		if err != nil {
			return patternKind{}, err
		}
		if len(body) == 0 {
			return patternKind{}, p.errorf("expected %c pattern body", tok.Paren.left())
		}
		return patternKind{body: body, paren: tok.Paren}, nil
	}
	p.untake(tok)
	return patternKind{}, p.errorf("expected syntax kind after `:`")
}

// checkDuplicateCaptures rejects a capture name bound twice in the
// same sequence outside a repetition.
func checkDuplicateCaptures(body patternBody) error {
	for _, seq := range body {
		seen := make(map[string]bool)
		if err := checkSeqCaptures(seq, seen); err != nil {
			return err
		}
	}
	return nil
}

func checkSeqCaptures(seq patternSeq, seen map[string]bool) error {
	for _, atom := range seq {
		switch a := atom.(type) {
		case capturePatternAtom:
			if a.name == "_" {
				continue
			}
			if seen[a.name] {
				return errMessage("duplicate syntax variable '$%s' encountered", a.name)
			}
			seen[a.name] = true
		case groupPatternAtom:
			// each alternation arm rechecks against the outer names
			bound := make(map[string]bool)
			for _, sub := range a.body {
				arm := make(map[string]bool, len(seen))
				for name := range seen {
					arm[name] = true
				}
				if err := checkSeqCaptures(sub, arm); err != nil {
					return err
				}
				for name := range arm {
					bound[name] = true
				}
			}
			for name := range bound {
				seen[name] = true
			}
		}
	}
	return nil
}
