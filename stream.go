// Copyright 2022 Questlang. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package quest

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Stream is the character-level view of a script: a lazy, finite,
// non-restartable cursor the lexer pulls tokens from.
type Stream struct {
	filename string
	src      string
	line     int
	column   int
}

// NewStream starts lexing src; filename is only for diagnostics.
func NewStream(src, filename string) *Stream {
	return &Stream{filename: filename, src: src, line: 1, column: 1}
}

func (s *Stream) location() SourceLocation {
	return SourceLocation{File: s.filename, Line: s.line, Column: s.column}
}

func (s *Stream) errorf(format string, a ...interface{}) error {
	e := errMessage(format, a...)
	loc := s.location()
	e.Location = &loc
	return e
}

func (s *Stream) eof() bool {
	return len(s.src) == 0
}

func (s *Stream) setEOF() {
	s.src = ""
}

func (s *Stream) peek() (rune, bool) {
	return s.peekAt(0)
}

// peekAt looks n runes ahead without consuming.
func (s *Stream) peekAt(n int) (rune, bool) {
	rest := s.src
	for i := 0; i <= n; i++ {
		if len(rest) == 0 {
			return 0, false
		}
		r, size := utf8.DecodeRuneInString(rest)
		if i == n {
			return r, true
		}
		rest = rest[size:]
	}
	return 0, false
}

func (s *Stream) advance() {
	r, size := utf8.DecodeRuneInString(s.src)
	if size == 0 {
		return
	}
	if r == '\n' {
		s.line++
		s.column = 1
	} else {
		s.column += size
	}
	s.src = s.src[size:]
}

func (s *Stream) take() (rune, bool) {
	r, ok := s.peek()
	if ok {
		s.advance()
	}
	return r, ok
}

func (s *Stream) takeIf(pred func(rune) bool) (rune, bool) {
	if r, ok := s.peek(); ok && pred(r) {
		s.advance()
		return r, true
	}
	return 0, false
}

func (s *Stream) takeWhile(pred func(rune) bool) string {
	var b strings.Builder
	for {
		r, ok := s.peek()
		if !ok || !pred(r) {
			return b.String()
		}
		b.WriteRune(r)
		s.advance()
	}
}

func (s *Stream) startsWith(prefix string) bool {
	return strings.HasPrefix(s.src, prefix)
}

// isSymbolChar reports whether chr can appear in a user-definable
// operator. Semicolons are excluded so `x++;` lexes as `x`, `++`, `;`.
func isSymbolChar(chr rune) bool {
	if strings.ContainsRune("~!@$%^&*-=+|\\:,<.>/?", chr) {
		return true
	}
	return chr > unicode.MaxASCII && !unicode.IsLetter(chr) && !unicode.IsDigit(chr)
}

func isIdentStart(chr rune) bool {
	return unicode.IsLetter(chr) || chr == '_'
}

// takeIdentifier consumes an identifier; a single trailing `?` is part
// of the name (`divides?`).
func takeIdentifier(s *Stream) string {
	sawQuestionMark := false
	return s.takeWhile(func(c rune) bool {
		if sawQuestionMark {
			return false
		}
		if unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' {
			return true
		}
		if c == '?' {
			sawQuestionMark = true
			return true
		}
		return false
	})
}

// stripWhitespaceAndComments also recognizes the `__EOF__` marker at
// line start, which truncates the rest of the input.
func stripWhitespaceAndComments(s *Stream) {
	for !s.eof() {
		if s.startsWith("\n__EOF__\n") || (s.line == 1 && s.column == 1 && s.startsWith("__EOF__\n")) {
			s.setEOF()
			return
		}
		if _, ok := s.takeIf(unicode.IsSpace); ok {
			continue
		}
		if _, ok := s.takeIf(func(c rune) bool { return c == '#' }); ok {
			for {
				r, ok := s.peek()
				if !ok || r == '\n' {
					break
				}
				s.take()
			}
			continue
		}
		break
	}
}

// nextToken lexes one token; ok is false at end of input.
func nextToken(s *Stream) (Token, bool, error) {
	stripWhitespaceAndComments(s)
	if s.eof() {
		return Token{}, false, nil
	}

	start := s.location()
	tok, err := parseTokenContents(s)
	if err != nil {
		return Token{}, false, err
	}
	tok.Span = Span{Start: start, End: s.location()}
	return tok, true, nil
}

func parseTokenContents(s *Stream) (Token, error) {
	chr, _ := s.peek()

	if kind, ok := leftParenKind(chr); ok {
		s.advance()
		return Token{Kind: TokLeftParen, Paren: kind}, nil
	}
	if kind, ok := rightParenKind(chr); ok {
		s.advance()
		return Token{Kind: TokRightParen, Paren: kind}, nil
	}

	peek2, has2 := s.peekAt(1)
	peek3, has3 := s.peekAt(2)

	switch {
	case chr == '\\' && has2:
		if kind, ok := leftParenKind(peek2); ok {
			s.advance()
			s.advance()
			return Token{Kind: TokEscapedLeftParen, Paren: kind}, nil
		}
		if kind, ok := rightParenKind(peek2); ok {
			s.advance()
			s.advance()
			return Token{Kind: TokEscapedRightParen, Paren: kind}, nil
		}

	case chr == '.' && !(has2 && isSymbolChar(peek2)):
		s.advance()
		return Token{Kind: TokPeriod}, nil

	case chr == ',' && !(has2 && isSymbolChar(peek2)):
		s.advance()
		return Token{Kind: TokComma}, nil

	case chr == ';' && !(has2 && isSymbolChar(peek2)):
		s.advance()
		return Token{Kind: TokSemicolon}, nil

	case chr == ':' && (has2 && (peek2 == '-' || peek2 == '+') && has3 && isASCIIDigit(peek3) ||
		has2 && isASCIIDigit(peek2)):
		s.advance()
		tok, err := parseNumber(s, true)
		if err != nil {
			return Token{}, err
		}
		if tok.Kind != TokInteger {
			return Token{}, s.errorf("malformed stackframe reference")
		}
		return Token{Kind: TokStackframe, Int: tok.Int}, nil

	case chr == ':' && peek2 == ':' && !(has3 && isSymbolChar(peek3)):
		s.advance()
		s.advance()
		return Token{Kind: TokColonColon}, nil
	}

	switch {
	case isASCIIDigit(chr):
		return parseNumber(s, false)
	case chr == '\'' || chr == '"':
		return parseText(s)
	case chr == '$':
		return parseSyntaxToken(s)
	case isIdentStart(chr):
		return Token{Kind: TokIdentifier, Str: takeIdentifier(s)}, nil
	case isSymbolChar(chr):
		return Token{Kind: TokSymbol, Str: s.takeWhile(isSymbolChar)}, nil
	}
	return Token{}, s.errorf("unknown token start %q", chr)
}

func isASCIIDigit(c rune) bool {
	return '0' <= c && c <= '9'
}

func parseSyntaxToken(s *Stream) (Token, error) {
	dollars := s.takeWhile(func(c rune) bool { return c == '$' })
	depth := len(dollars) - 1

	chr, ok := s.peek()
	if !ok {
		return Token{Kind: TokSymbol, Str: dollars}, nil
	}
	switch {
	case chr == '(' || chr == '[' || chr == '{':
		kind, _ := leftParenKind(chr)
		s.take()
		return Token{Kind: TokSyntaxLeftParen, Depth: depth, Paren: kind}, nil
	case chr == '|':
		s.take()
		return Token{Kind: TokSyntaxOr, Depth: depth}, nil
	case chr == '!':
		s.take()
		return Token{Kind: TokSyntaxNot, Depth: depth}, nil
	case unicode.IsLetter(chr) || unicode.IsDigit(chr) || chr == '_':
		return Token{Kind: TokSyntaxIdentifier, Depth: depth, Str: takeIdentifier(s)}, nil
	}
	return Token{Kind: TokSymbol, Str: dollars}, nil
}

func determineBase(s *Stream) int {
	if _, ok := s.takeIf(func(c rune) bool { return c == '0' }); !ok {
		return 10
	}
	r, ok := s.takeIf(func(c rune) bool { return strings.ContainsRune("xXoObBdD", c) })
	if !ok {
		return 10
	}
	switch r {
	case 'x', 'X':
		return 16
	case 'o', 'O':
		return 8
	case 'b', 'B':
		return 2
	}
	return 10
}

// parseIntegerBase consumes digits in the given base, allowing `_`
// separators.
func parseIntegerBase(s *Stream, base int, negative bool) int64 {
	var n int64
	for {
		chr, ok := s.peek()
		if !ok {
			break
		}
		if d := digitValue(chr); d >= 0 && d < base {
			n = n*int64(base) + int64(d)
		} else if chr != '_' {
			break
		}
		s.advance()
	}
	if negative {
		n = -n
	}
	return n
}

func digitValue(c rune) int {
	switch {
	case '0' <= c && c <= '9':
		return int(c - '0')
	case 'a' <= c && c <= 'f':
		return int(c-'a') + 10
	case 'A' <= c && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}

func parseFloatTail(lhs int64, s *Stream) float64 {
	f := float64(lhs)
	if _, ok := s.takeIf(func(c rune) bool { return c == '.' }); ok {
		scale := 0.1
		for {
			chr, ok := s.takeIf(func(c rune) bool { return isASCIIDigit(c) || c == '_' })
			if !ok {
				break
			}
			if chr == '_' {
				continue
			}
			f += float64(chr-'0') * scale
			scale /= 10
		}
	}
	if _, ok := s.takeIf(func(c rune) bool { return c == 'e' || c == 'E' }); ok {
		sign, _ := s.takeIf(func(c rune) bool { return c == '-' || c == '+' })
		exp := parseIntegerBase(s, 10, sign == '-')
		f *= pow10(exp)
	}
	return f
}

func pow10(exp int64) float64 {
	result := 1.0
	neg := exp < 0
	if neg {
		exp = -exp
	}
	for i := int64(0); i < exp; i++ {
		result *= 10
	}
	if neg {
		return 1 / result
	}
	return result
}

func parseNumber(s *Stream, integerOnly bool) (Token, error) {
	sign, _ := s.takeIf(func(c rune) bool { return c == '-' || c == '+' })
	base := determineBase(s)
	integer := parseIntegerBase(s, base, sign == '-')

	tok := Token{Kind: TokInteger, Int: integer}
	if chr, ok := s.peek(); ok && base == 10 && !integerOnly && (chr == '.' || chr == 'e' || chr == 'E') {
		if next, ok := s.peekAt(1); ok && isASCIIDigit(next) {
			tok = Token{Kind: TokFloat, Float: parseFloatTail(integer, s)}
		}
	}

	if chr, ok := s.peek(); ok && (unicode.IsLetter(chr) || unicode.IsDigit(chr)) {
		return Token{}, s.errorf("bad character %q after integer literal", chr)
	}
	return tok, nil
}

func parseText(s *Stream) (Token, error) {
	quote, _ := s.take()
	var b strings.Builder
	for {
		chr, ok := s.take()
		if !ok {
			return Token{}, s.errorf("unterminated quote")
		}
		if chr == quote {
			return Token{Kind: TokText, Str: b.String()}, nil
		}
		if chr != '\\' {
			b.WriteRune(chr)
			continue
		}
		esc, ok := s.take()
		if !ok {
			return Token{}, s.errorf("unterminated quote")
		}
		if quote == '\'' {
			// Single quotes only escape the quote and the backslash.
			if esc == '\'' || esc == '\\' {
				b.WriteRune(esc)
			} else {
				b.WriteRune('\\')
				b.WriteRune(esc)
			}
			continue
		}
		r, err := doubleQuoteEscape(esc, s)
		if err != nil {
			return Token{}, err
		}
		b.WriteRune(r)
	}
}

func doubleQuoteEscape(escape rune, s *Stream) (rune, error) {
	switch escape {
	case '\'', '"', '\\':
		return escape, nil
	case 'n':
		return '\n', nil
	case 't':
		return '\t', nil
	case 'r':
		return '\r', nil
	case 'f':
		return '\x0c', nil
	case '0':
		return 0, nil
	case 'x':
		hi, err := nextHex(s)
		if err != nil {
			return 0, err
		}
		lo, err := nextHex(s)
		if err != nil {
			return 0, err
		}
		return rune(hi<<4 | lo), nil
	case 'u':
		var n int
		for i := 0; i < 4; i++ {
			d, err := nextHex(s)
			if err != nil {
				return 0, err
			}
			n = n<<4 | d
		}
		return rune(n), nil
	}
	return 0, s.errorf("invalid escape %q", escape)
}

func nextHex(s *Stream) (int, error) {
	chr, ok := s.take()
	if !ok {
		return 0, s.errorf("unterminated quote")
	}
	d := digitValue(chr)
	if d < 0 || d > 15 {
		return 0, s.errorf("invalid escape")
	}
	return d, nil
}
