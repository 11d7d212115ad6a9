// Copyright 2022 Questlang. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package quest

// The surface grammar, parsed by recursive descent over the rewritten
// token stream and compiled through the Builder:
//
//	group      := { statement ';' } [ statement ]
//	statement  := expression { ',' expression }
//	expression := primary | assignment | primary SYMBOL expression
//	primary    := block | atom | list | SYMBOL primary
//	            | primary '(' args ')' | primary '[' args ']'
//	            | primary ('.' | '::') atom
//	block      := [ blockargs '->' ] '{' group '}'
//	atom       := INT | FLOAT | TEXT | IDENT | STACKFRAME | '(' group ')'
//
// There is no operator precedence: binary operators associate to the
// right, and parentheses decide everything else.

// Group is a sequence of statements; its value is the last statement's
// unless a trailing semicolon yields null.
type Group struct {
	start          SourceLocation
	statements     []Statement
	endInSemicolon bool
}

// Statement is one expression, or a comma list compiled into a List.
type Statement struct {
	exprs []Expression
	many  bool
}

// Expression is any compilable expression node.
type Expression interface {
	compile(b *Builder, dst Local)
}

// ParseProgram parses the whole input as one top-level group.
func ParseProgram(p *Parser) (*Group, error) {
	start := p.Location()
	g := &Group{start: start}

	for {
		eof, err := p.IsEOF()
		if err != nil {
			return nil, err
		}
		if eof {
			break
		}
		for {
			_, ok, err := p.TakeIfKind(TokSemicolon)
			if err != nil {
				return nil, err
			}
			if !ok {
				break
			}
		}
		if eof, err := p.IsEOF(); err != nil {
			return nil, err
		} else if eof {
			break
		}

		stmt, ok, err := parseStatement(p)
		if err != nil {
			return nil, err
		}
		if !ok {
			tok, _, _ := p.Peek()
			return nil, p.errorf("expected expression, got %s", tok)
		}
		g.statements = append(g.statements, stmt)

		if _, ok, err := p.TakeIfKind(TokSemicolon); err != nil {
			return nil, err
		} else if ok {
			g.endInSemicolon = true
		} else {
			g.endInSemicolon = false
			break
		}
	}

	if eof, err := p.IsEOF(); err != nil {
		return nil, err
	} else if !eof {
		tok, _, _ := p.Peek()
		return nil, p.errorf("unknown token after expression: %s", tok)
	}
	return g, nil
}

// parseGroup parses a delimited group, consuming its opening paren; it
// reports false without consuming anything when the next token is not
// that paren.
func parseGroup(p *Parser, paren ParenKind) (*Group, bool, error) {
	start := p.Location()
	if _, ok, err := p.TakeIf(func(t Token) bool {
		return t.Kind == TokLeftParen && t.Paren == paren
	}); err != nil || !ok {
		return nil, false, err
	}

	g := &Group{start: start}
	for {
		if _, ok, err := p.TakeIf(func(t Token) bool {
			return t.Kind == TokRightParen && t.Paren == paren
		}); err != nil {
			return nil, false, err
		} else if ok {
			return g, true, nil
		}

		if eof, err := p.IsEOF(); err != nil {
			return nil, false, err
		} else if eof {
			return nil, false, p.errorf("missing closing %c", paren.right())
		}

		for {
			_, ok, err := p.TakeIfKind(TokSemicolon)
			if err != nil {
				return nil, false, err
			}
			if !ok {
				break
			}
		}
		if _, ok, err := p.TakeIf(func(t Token) bool {
			return t.Kind == TokRightParen && t.Paren == paren
		}); err != nil {
			return nil, false, err
		} else if ok {
			g.endInSemicolon = len(g.statements) > 0
			return g, true, nil
		}

		stmt, ok, err := parseStatement(p)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			tok, _, _ := p.Peek()
			return nil, false, p.errorf("expected expression in %c group, got %s",
				paren.left(), tok)
		}
		g.statements = append(g.statements, stmt)

		if _, ok, err := p.TakeIfKind(TokSemicolon); err != nil {
			return nil, false, err
		} else if ok {
			g.endInSemicolon = true
			continue
		}
		g.endInSemicolon = false
		if _, ok, err := p.TakeIf(func(t Token) bool {
			return t.Kind == TokRightParen && t.Paren == paren
		}); err != nil {
			return nil, false, err
		} else if !ok {
			tok, _, _ := p.Peek()
			return nil, false, p.errorf("unknown token after expression: %s", tok)
		}
		return g, true, nil
	}
}

func parseStatement(p *Parser) (Statement, bool, error) {
	first, ok, err := parseExpression(p)
	if err != nil || !ok {
		return Statement{}, false, err
	}
	stmt := Statement{exprs: []Expression{first}}

	if _, ok, err := p.TakeIfKind(TokComma); err != nil {
		return Statement{}, false, err
	} else if !ok {
		return stmt, true, nil
	}

	stmt.many = true
	for {
		expr, ok, err := parseExpression(p)
		if err != nil {
			return Statement{}, false, err
		}
		if !ok {
			break
		}
		stmt.exprs = append(stmt.exprs, expr)
		if _, ok, err := p.TakeIfKind(TokComma); err != nil {
			return Statement{}, false, err
		} else if !ok {
			break
		}
	}
	return stmt, true, nil
}

// Expression nodes.

type primaryExpr struct {
	primary Primary
}

type binaryExpr struct {
	lhs Expression
	op  string
	rhs Expression
}

type assignExpr struct {
	// exactly one of these targets is set
	ident  string
	index  *indexPrimary
	access *attrAccessPrimary
	other  Primary

	value Expression
}

func parseExpression(p *Parser) (Expression, bool, error) {
	prim, ok, err := parsePrimary(p)
	if err != nil || !ok {
		return nil, false, err
	}

	if assign, ok, err := parseAssignment(p, prim); err != nil {
		return nil, false, err
	} else if ok {
		return assign, true, nil
	}

	if tok, ok, err := p.TakeIfKind(TokSymbol); err != nil {
		return nil, false, err
	} else if ok {
		rhs, rok, err := parseExpression(p)
		if err != nil {
			return nil, false, err
		}
		if rok {
			return binaryExpr{lhs: primaryExpr{prim}, op: tok.Str, rhs: rhs}, true, nil
		}
		p.untake(tok)
	}
	return primaryExpr{prim}, true, nil
}

func parseAssignment(p *Parser, prim Primary) (Expression, bool, error) {
	eq, ok, err := p.TakeIfEqual(symbolToken("="))
	if err != nil || !ok {
		return nil, false, err
	}
	value, ok, err := parseExpression(p)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		p.untake(eq)
		return nil, false, nil
	}

	assign := assignExpr{value: value}
	switch t := prim.(type) {
	case atomPrimary:
		if ident, ok := t.atom.(identAtom); ok {
			assign.ident = string(ident)
			return assign, true, nil
		}
		assign.other = prim
	case *indexPrimary:
		assign.index = t
	case *attrAccessPrimary:
		assign.access = t
	default:
		assign.other = prim
	}
	return assign, true, nil
}

// Primary nodes.

type Primary interface {
	compile(b *Builder, dst Local)
}

type atomPrimary struct {
	atom Atom
}

type blockPrimary struct {
	args []string
	body *Group
}

type listPrimary struct {
	elements []Expression
}

type unaryPrimary struct {
	op  string
	rhs Primary
}

type fnCallPrimary struct {
	fn   Primary
	args []Expression
}

type indexPrimary struct {
	source Primary
	args   []Expression
}

type attrAccessPrimary struct {
	source  Primary
	unbound bool // `::` instead of `.`
	attr    Atom
}

func parsePrimary(p *Parser) (Primary, bool, error) {
	var prim Primary

	if blk, ok, err := parseBlockLiteral(p); err != nil {
		return nil, false, err
	} else if ok {
		prim = blk
	} else if atom, ok, err := parseAtom(p); err != nil {
		return nil, false, err
	} else if ok {
		prim = atomPrimary{atom}
	} else if _, ok, err := p.TakeIf(func(t Token) bool {
		return t.Kind == TokLeftParen && t.Paren == ParenSquare
	}); err != nil {
		return nil, false, err
	} else if ok {
		elements, err := parseFnArgs(p, ParenSquare)
		if err != nil {
			return nil, false, err
		}
		prim = listPrimary{elements}
	} else if tok, ok, err := p.TakeIfKind(TokSymbol); err != nil {
		return nil, false, err
	} else if ok {
		rhs, rok, err := parsePrimary(p)
		if err != nil {
			return nil, false, err
		}
		if !rok {
			p.untake(tok)
			return nil, false, nil
		}
		prim = unaryPrimary{op: tok.Str, rhs: rhs}
	} else {
		return nil, false, nil
	}

	for {
		if _, ok, err := p.TakeIf(func(t Token) bool {
			return t.Kind == TokLeftParen && t.Paren == ParenRound
		}); err != nil {
			return nil, false, err
		} else if ok {
			args, err := parseFnArgs(p, ParenRound)
			if err != nil {
				return nil, false, err
			}
			prim = fnCallPrimary{fn: prim, args: args}
			continue
		}
		if _, ok, err := p.TakeIf(func(t Token) bool {
			return t.Kind == TokLeftParen && t.Paren == ParenSquare
		}); err != nil {
			return nil, false, err
		} else if ok {
			args, err := parseFnArgs(p, ParenSquare)
			if err != nil {
				return nil, false, err
			}
			prim = &indexPrimary{source: prim, args: args}
			continue
		}

		unbound := false
		tok, ok, err := p.TakeIf(func(t Token) bool {
			return t.Kind == TokPeriod || t.Kind == TokColonColon
		})
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return prim, true, nil
		}
		unbound = tok.Kind == TokColonColon

		atom, ok, err := parseAtom(p)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return nil, false, p.errorf("expected atom after `.` or `::`")
		}
		prim = &attrAccessPrimary{source: prim, unbound: unbound, attr: atom}
	}
}

// parseBlockLiteral recognizes `{ ... }`, `arg -> { ... }` and
// `(a, b) -> { ... }`, backtracking fully when the arrow is missing;
// arguments and an arrow with no body following are an error.
func parseBlockLiteral(p *Parser) (Primary, bool, error) {
	args, haveArgs, err := parseBlockArgs(p)
	if err != nil {
		return nil, false, err
	}

	body, ok, err := parseGroup(p, ParenCurly)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		if haveArgs {
			return nil, false, p.errorf("block arguments given without a block body")
		}
		return nil, false, nil
	}
	return blockPrimary{args: args, body: body}, true, nil
}

func parseBlockArgs(p *Parser) ([]string, bool, error) {
	if tok, ok, err := p.TakeIfKind(TokIdentifier); err != nil {
		return nil, false, err
	} else if ok {
		if _, arrow, err := p.TakeIfEqual(symbolToken("->")); err != nil {
			return nil, false, err
		} else if arrow {
			return []string{tok.Str}, true, nil
		}
		p.untake(tok)
		return nil, false, nil
	}

	open, ok, err := p.TakeIf(func(t Token) bool {
		return t.Kind == TokLeftParen && t.Paren == ParenRound
	})
	if err != nil || !ok {
		return nil, false, err
	}

	var consumed []Token
	var names []string
	for {
		tok, ok, err := p.TakeIfKind(TokIdentifier)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			break
		}
		consumed = append(consumed, tok)
		names = append(names, tok.Str)
		comma, ok, err := p.TakeIfKind(TokComma)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			break
		}
		consumed = append(consumed, comma)
	}

	if tok, ok, err := p.TakeIf(func(t Token) bool {
		return t.Kind == TokRightParen && t.Paren == ParenRound
	}); err != nil {
		return nil, false, err
	} else if ok {
		if _, arrow, err := p.TakeIfEqual(symbolToken("->")); err != nil {
			return nil, false, err
		} else if arrow {
			return names, true, nil
		}
		p.untake(tok)
	}

	for i := len(consumed) - 1; i >= 0; i-- {
		p.untake(consumed[i])
	}
	p.untake(open)
	return nil, false, nil
}

// Atom nodes.

type Atom interface {
	compile(b *Builder, dst Local)
}

type intAtom int64
type floatAtom float64
type textAtom string
type identAtom string
type stackframeAtom int
type groupAtom struct {
	group *Group
}

func parseAtom(p *Parser) (Atom, bool, error) {
	if g, ok, err := parseGroup(p, ParenRound); err != nil {
		return nil, false, err
	} else if ok {
		return groupAtom{g}, true, nil
	}

	tok, ok, err := p.Take()
	if err != nil || !ok {
		return nil, false, err
	}
	switch tok.Kind {
	case TokInteger:
		return intAtom(tok.Int), true, nil
	case TokFloat:
		return floatAtom(tok.Float), true, nil
	case TokText:
		return textAtom(tok.Str), true, nil
	case TokIdentifier:
		return identAtom(tok.Str), true, nil
	case TokStackframe:
		return stackframeAtom(tok.Int), true, nil
	}
	p.untake(tok)
	return nil, false, nil
}

func parseFnArgs(p *Parser, end ParenKind) ([]Expression, error) {
	var args []Expression
	start := p.Location()
	for {
		if _, ok, err := p.TakeIf(func(t Token) bool {
			return t.Kind == TokRightParen && t.Paren == end
		}); err != nil {
			return nil, err
		} else if ok {
			return args, nil
		}

		if eof, err := p.IsEOF(); err != nil {
			return nil, err
		} else if eof {
			e := errMessage("missing closing %c", end.right())
			e.Location = &start
			return nil, e
		}

		expr, ok, err := parseExpression(p)
		if err != nil {
			return nil, err
		}
		if !ok {
			tok, _, _ := p.Peek()
			return nil, p.errorf("expected expression in arguments, got %s", tok)
		}
		args = append(args, expr)

		if _, ok, err := p.TakeIfKind(TokComma); err != nil {
			return nil, err
		} else if !ok {
			if _, ok, err := p.TakeIf(func(t Token) bool {
				return t.Kind == TokRightParen && t.Paren == end
			}); err != nil {
				return nil, err
			} else if !ok {
				tok, _, _ := p.Peek()
				return nil, p.errorf("expected `,` or closing %c, got %s", end.right(), tok)
			}
			return args, nil
		}
	}
}
