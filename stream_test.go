// Copyright 2022 Questlang. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package quest

import (
	"testing"
)

func lexAll(t *testing.T, src string) []Token {
	t.Helper()
	s := NewStream(src, "")
	var tokens []Token
	for {
		tok, ok, err := nextToken(s)
		if err != nil {
			t.Fatalf("lexing %q failed, reason: %v", src, err)
		}
		if !ok {
			return tokens
		}
		tokens = append(tokens, tok)
	}
}

func TestLexBasicTokens(t *testing.T) {

	tests := []struct {
		in  string
		out []Token
	}{
		{"12", []Token{{Kind: TokInteger, Int: 12}}},
		{"0xff", []Token{{Kind: TokInteger, Int: 255}}},
		{"0b101", []Token{{Kind: TokInteger, Int: 5}}},
		{"0o17", []Token{{Kind: TokInteger, Int: 15}}},
		{"1_000_000", []Token{{Kind: TokInteger, Int: 1000000}}},
		{"1.5", []Token{{Kind: TokFloat, Float: 1.5}}},
		{"2e3", []Token{{Kind: TokFloat, Float: 2000}}},
		{"x", []Token{{Kind: TokIdentifier, Str: "x"}}},
		{"divides?", []Token{{Kind: TokIdentifier, Str: "divides?"}}},
		{"+", []Token{{Kind: TokSymbol, Str: "+"}}},
		{"<=>", []Token{{Kind: TokSymbol, Str: "<=>"}}},
		{"->", []Token{{Kind: TokSymbol, Str: "->"}}},
		{":0", []Token{{Kind: TokStackframe, Int: 0}}},
		{":-1", []Token{{Kind: TokStackframe, Int: -1}}},
		{"::", []Token{{Kind: TokColonColon}}},
		{".", []Token{{Kind: TokPeriod}}},
		{";", []Token{{Kind: TokSemicolon}}},
		{",", []Token{{Kind: TokComma}}},
		{"(", []Token{{Kind: TokLeftParen, Paren: ParenRound}}},
		{"]", []Token{{Kind: TokRightParen, Paren: ParenSquare}}},
		{"\\(", []Token{{Kind: TokEscapedLeftParen, Paren: ParenRound}}},
		{"\\}", []Token{{Kind: TokEscapedRightParen, Paren: ParenCurly}}},
		{`"hi\n"`, []Token{{Kind: TokText, Str: "hi\n"}}},
		{`'hi\n'`, []Token{{Kind: TokText, Str: `hi\n`}}},
		{`"\x41"`, []Token{{Kind: TokText, Str: "A"}}},
		{`"A"`, []Token{{Kind: TokText, Str: "A"}}},
		{"$x", []Token{{Kind: TokSyntaxIdentifier, Str: "x"}}},
		{"$$x", []Token{{Kind: TokSyntaxIdentifier, Str: "x", Depth: 1}}},
		{"$(", []Token{{Kind: TokSyntaxLeftParen, Paren: ParenRound}}},
		{"${", []Token{{Kind: TokSyntaxLeftParen, Paren: ParenCurly}}},
		{"$|", []Token{{Kind: TokSyntaxOr}}},
		{"$!", []Token{{Kind: TokSyntaxNot}}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := lexAll(t, tt.in)
			if len(got) != len(tt.out) {
				t.Fatalf("lexed %d tokens, want %d: %v", len(got), len(tt.out), got)
			}
			for i := range got {
				if !tokensEqual(got[i], tt.out[i]) {
					t.Errorf("token %d got %v, want %v", i, got[i], tt.out[i])
				}
			}
		})
	}
}

func TestLexSequences(t *testing.T) {

	tokens := lexAll(t, "x = 1; # comment\ny = x + 2")
	want := []Token{
		{Kind: TokIdentifier, Str: "x"},
		{Kind: TokSymbol, Str: "="},
		{Kind: TokInteger, Int: 1},
		{Kind: TokSemicolon},
		{Kind: TokIdentifier, Str: "y"},
		{Kind: TokSymbol, Str: "="},
		{Kind: TokIdentifier, Str: "x"},
		{Kind: TokSymbol, Str: "+"},
		{Kind: TokInteger, Int: 2},
	}
	if len(tokens) != len(want) {
		t.Fatalf("lexed %d tokens, want %d: %v", len(tokens), len(want), tokens)
	}
	for i := range want {
		if !tokensEqual(tokens[i], want[i]) {
			t.Errorf("token %d got %v, want %v", i, tokens[i], want[i])
		}
	}
}

func TestLexEOFMarker(t *testing.T) {

	tokens := lexAll(t, "x\n__EOF__\ny")
	if len(tokens) != 1 || tokens[0].Str != "x" {
		t.Errorf("got %v, want just `x`", tokens)
	}
}

func TestLexSpans(t *testing.T) {

	tokens := lexAll(t, "ab\n cd")
	if len(tokens) != 2 {
		t.Fatalf("lexed %d tokens, want 2", len(tokens))
	}
	if tokens[0].Span.Start.Line != 1 || tokens[0].Span.Start.Column != 1 {
		t.Errorf("first span start got %v", tokens[0].Span.Start)
	}
	if tokens[1].Span.Start.Line != 2 || tokens[1].Span.Start.Column != 2 {
		t.Errorf("second span start got %v", tokens[1].Span.Start)
	}
	if tokens[1].Span.End.Column != 4 {
		t.Errorf("second span end got %v", tokens[1].Span.End)
	}
}

func TestLexDollarRunsAsSymbol(t *testing.T) {

	tokens := lexAll(t, "$ ")
	if len(tokens) != 1 || tokens[0].Kind != TokSymbol || tokens[0].Str != "$" {
		t.Errorf("got %v, want symbol `$`", tokens)
	}
}
