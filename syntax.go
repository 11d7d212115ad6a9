// Copyright 2022 Questlang. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package quest

// Rule priorities: 0 is tried first, 100 last; rules declared without
// one get the default.
const (
	maxPriority     = 100
	defaultPriority = 25
)

// SyntaxRule is one $syntax declaration: a pattern matched against the
// upcoming token stream and a replacement spliced back in its place.
type SyntaxRule struct {
	group    string
	priority int
	pattern  patternBody
	repl     replBody
}

// Group returns the rule's group name, if any.
func (r *SyntaxRule) Group() string { return r.group }

// Priority returns the rule's priority.
func (r *SyntaxRule) Priority() int { return r.priority }

// apply attempts the rule at the current position. On a match the
// replacement expansion is pushed back into the peek buffer so it
// re-enters matching; on failure every consumed token is restored.
func (r *SyntaxRule) apply(p *Parser) (bool, error) {
	m := newMatcher(p)
	ok, err := r.pattern.match(m)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	var out []Token
	if err := r.repl.expand(&out, m.caps, -1); err != nil {
		return false, err
	}
	p.untakeAll(out)
	return true, nil
}

// parseSyntaxDeclaration recognizes
//
//	$syntax [group] [priority] { pattern } = { replacement } ;
//
// at the current position. Declarations are only recognized here, at
// the top level of the expansion loop, never inside captures.
func parseSyntaxDeclaration(p *Parser) (*SyntaxRule, bool, error) {
	tok, ok, err := p.takeBypassSyntax()
	if err != nil || !ok {
		return nil, false, err
	}
	if tok.Kind != TokSyntaxIdentifier || tok.Depth != 0 || tok.Str != "syntax" {
		p.untake(tok)
		return nil, false, nil
	}

	rule := &SyntaxRule{priority: defaultPriority}

	if tok, ok, err := p.takeIfBypassSyntax(func(t Token) bool {
		return t.Kind == TokIdentifier
	}); err != nil {
		return nil, false, err
	} else if ok {
		rule.group = tok.Str
	}

	if tok, ok, err := p.takeIfBypassSyntax(func(t Token) bool {
		return t.Kind == TokInteger
	}); err != nil {
		return nil, false, err
	} else if ok {
		if tok.Int < 0 || tok.Int > maxPriority {
			return nil, false, p.errorf("priority must be 0..%d", maxPriority)
		}
		rule.priority = int(tok.Int)
	}

	if _, ok, err := p.takeIfBypassSyntax(func(t Token) bool {
		return t.Kind == TokLeftParen && t.Paren == ParenCurly
	}); err != nil {
		return nil, false, err
	} else if !ok {
		return nil, false, p.errorf("expected pattern for `$syntax`")
	}
	pattern, err := parsePatternBody(p, ParenCurly)
	if err != nil {
		return nil, false, err
	}
	if len(pattern) == 0 {
		return nil, false, p.errorf("you cannot create empty syntax matches")
	}
	rule.pattern = pattern

	if _, ok, err := p.takeIfEqualBypassSyntax(symbolToken("=")); err != nil {
		return nil, false, err
	} else if !ok {
		return nil, false, p.errorf("expected `=` after `$syntax` pattern")
	}

	var end ParenKind
	if tok, ok, err := p.takeIfBypassSyntax(func(t Token) bool {
		return t.Kind == TokLeftParen
	}); err != nil {
		return nil, false, err
	} else if !ok {
		return nil, false, p.errorf("expected replacement for `$syntax`")
	} else {
		end = tok.Paren
	}
	repl, err := parseReplBody(p, end)
	if err != nil {
		return nil, false, err
	}
	rule.repl = repl

	if _, ok, err := p.takeIfBypassSyntax(func(t Token) bool {
		return t.Kind == TokSemicolon
	}); err != nil {
		return nil, false, err
	} else if !ok {
		return nil, false, p.errorf("expected `;` after `$syntax` replacement")
	}

	if err := checkDuplicateCaptures(rule.pattern); err != nil {
		return nil, false, err
	}
	return rule, true, nil
}
