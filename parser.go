// Copyright 2022 Questlang. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package quest

import "golang.org/x/exp/slices"

// Parser sits between the lexer and the compiler. Its peek buffer is a
// stack of pushed-back tokens; take pops from it before pulling the
// lexer, and every take runs the expansion loop first so rewrite rules
// see the upcoming stream.
type Parser struct {
	stream *Stream
	peeked []Token

	// rules[p] holds the priority-p rules, most recently declared
	// first; groups maps a group name to its rules sorted by priority.
	rules  [maxPriority + 1][]*SyntaxRule
	groups map[string][]*SyntaxRule
}

// NewParser builds a parser over src.
func NewParser(src, filename string) *Parser {
	return &Parser{
		stream: NewStream(src, filename),
		groups: make(map[string][]*SyntaxRule),
	}
}

// Location is the parser's current source position.
func (p *Parser) Location() SourceLocation {
	if n := len(p.peeked); n > 0 {
		return p.peeked[n-1].Span.Start
	}
	return p.stream.location()
}

func (p *Parser) errorf(format string, a ...interface{}) error {
	e := errMessage(format, a...)
	loc := p.Location()
	e.Location = &loc
	return e
}

// untake pushes one token back; it is the next to be taken.
func (p *Parser) untake(tok Token) {
	p.peeked = append(p.peeked, tok)
}

// untakeAll pushes a token sequence back so it reads in order again.
func (p *Parser) untakeAll(tokens []Token) {
	for i := len(tokens) - 1; i >= 0; i-- {
		p.peeked = append(p.peeked, tokens[i])
	}
}

// takeBypassSyntax yields the next token without running the rewriter.
func (p *Parser) takeBypassSyntax() (Token, bool, error) {
	if n := len(p.peeked); n > 0 {
		tok := p.peeked[n-1]
		p.peeked = p.peeked[:n-1]
		return tok, true, nil
	}
	return nextToken(p.stream)
}

func (p *Parser) peekBypassSyntax() (Token, bool, error) {
	if n := len(p.peeked); n > 0 {
		return p.peeked[n-1], true, nil
	}
	tok, ok, err := nextToken(p.stream)
	if err != nil || !ok {
		return Token{}, false, err
	}
	p.peeked = append(p.peeked, tok)
	return tok, true, nil
}

// Take yields the next token after the expansion loop settles.
func (p *Parser) Take() (Token, bool, error) {
	if err := p.expandSyntax(); err != nil {
		return Token{}, false, err
	}
	return p.takeBypassSyntax()
}

// Peek is Take without consuming.
func (p *Parser) Peek() (Token, bool, error) {
	if err := p.expandSyntax(); err != nil {
		return Token{}, false, err
	}
	return p.peekBypassSyntax()
}

// IsEOF reports whether any token remains.
func (p *Parser) IsEOF() (bool, error) {
	_, ok, err := p.Peek()
	return !ok, err
}

// TakeIf consumes the next token when cond approves it.
func (p *Parser) TakeIf(cond func(Token) bool) (Token, bool, error) {
	tok, ok, err := p.Peek()
	if err != nil || !ok || !cond(tok) {
		return Token{}, false, err
	}
	return p.Take()
}

// TakeIfKind consumes the next token when it has the given kind.
func (p *Parser) TakeIfKind(kind TokenKind) (Token, bool, error) {
	return p.TakeIf(func(t Token) bool { return t.Kind == kind })
}

// TakeIfEqual consumes the next token when it equals want.
func (p *Parser) TakeIfEqual(want Token) (Token, bool, error) {
	return p.TakeIf(func(t Token) bool { return tokensEqual(t, want) })
}

func (p *Parser) takeIfBypassSyntax(cond func(Token) bool) (Token, bool, error) {
	tok, ok, err := p.peekBypassSyntax()
	if err != nil || !ok || !cond(tok) {
		return Token{}, false, err
	}
	return p.takeBypassSyntax()
}

func (p *Parser) takeIfEqualBypassSyntax(want Token) (Token, bool, error) {
	return p.takeIfBypassSyntax(func(t Token) bool { return tokensEqual(t, want) })
}

// symbolToken builds a comparison token for TakeIfEqual.
func symbolToken(s string) Token {
	return Token{Kind: TokSymbol, Str: s}
}

// AddRule registers a rewrite rule. Within one priority the most
// recent declaration wins; group members keep their group's list
// sorted by priority with the same recency rule.
func (p *Parser) AddRule(rule *SyntaxRule) {
	if rule.group != "" {
		group := append([]*SyntaxRule{rule}, p.groups[rule.group]...)
		slices.SortStableFunc(group, func(a, b *SyntaxRule) int {
			return a.priority - b.priority
		})
		p.groups[rule.group] = group
	}
	p.rules[rule.priority] = append([]*SyntaxRule{rule}, p.rules[rule.priority]...)
}

// groupRules returns the rules registered under a group name.
func (p *Parser) groupRules(name string) ([]*SyntaxRule, bool) {
	rules, ok := p.groups[name]
	return rules, ok
}

// expandSyntax is the expansion loop: apply the highest-priority
// matching rule and restart until nothing applies, installing any
// $syntax declaration found at top level along the way.
func (p *Parser) expandSyntax() error {
restart:
	for prio := 0; prio <= maxPriority; prio++ {
		for _, rule := range p.rules[prio] {
			applied, err := rule.apply(p)
			if err != nil {
				return err
			}
			if applied {
				goto restart
			}
		}
	}

	rule, ok, err := parseSyntaxDeclaration(p)
	if err != nil {
		return err
	}
	if ok {
		p.AddRule(rule)
		goto restart
	}
	return nil
}
