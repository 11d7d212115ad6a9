// Copyright 2022 Questlang. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package quest

import (
	"strings"
	"testing"
)

// rewritten runs the lexer and rewriter over src and renders the
// resulting token stream.
func rewritten(t *testing.T, src string) string {
	t.Helper()
	q, err := NewBytes([]byte(src), nil)
	if err != nil {
		t.Fatalf("NewBytes failed, reason: %v", err)
	}
	tokens, err := q.Tokens()
	if err != nil {
		t.Fatalf("rewriting %q failed, reason: %v", src, err)
	}
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = tok.String()
	}
	return strings.Join(parts, " ")
}

func TestRewriteSimpleRule(t *testing.T) {

	tests := []struct {
		name string
		in   string
		out  string
	}{
		{
			"literal swap",
			"$syntax { answer } = { 42 }; answer",
			"42",
		},
		{
			"capture",
			"$syntax { twice $x:int } = { $x $x }; twice 3",
			"3 3",
		},
		{
			"group capture keeps delimiters",
			"$syntax { keep $g:group } = { $g }; keep (1 + 2)",
			"( 1 + 2 )",
		},
		{
			"rewrites reenter expansion",
			"$syntax { a } = { b }; $syntax { b } = { c }; a",
			"c",
		},
		{
			"optional present",
			"$syntax { opt $[ really $x:int ] } = { got $[ $x ] }; opt really 5",
			"got 5",
		},
		{
			"optional absent",
			"$syntax { opt $[ really $x:int ] } = { got $[ $x ] }; opt",
			"got",
		},
		{
			"repetition",
			"$syntax { all ${ item $x:int } end } = { list ${ $x } }; all item 1 item 2 item 3 end",
			"list 1 2 3",
		},
		{
			"alternation",
			"$syntax { pick $( a $| b ) } = { chosen }; pick b",
			"chosen",
		},
		{
			"negative lookahead",
			"$syntax { n $!a $x:ident } = { no_a $x }; n b",
			"no_a b",
		},
		{
			"escaped parens match literals",
			`$syntax { f \( \) } = { g }; f ( )`,
			"g",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rewritten(t, tt.in); got != tt.out {
				t.Errorf("got %q, want %q", got, tt.out)
			}
		})
	}
}

func TestRewriteLookaheadBlocksMatch(t *testing.T) {

	// `$!a` must fail the rule when `a` is next; the stream passes
	// through untouched.
	got := rewritten(t, "$syntax { n $!a $x:ident } = { no_a $x }; n a")
	if got != "n a" {
		t.Errorf("got %q, want %q", got, "n a")
	}
}

func TestRewritePriorityOrdering(t *testing.T) {

	// The lower priority number matches first.
	got := rewritten(t,
		"$syntax 50 { w } = { low }; $syntax 10 { w } = { high }; w")
	if got != "high" {
		t.Errorf("got %q, want %q", got, "high")
	}

	// Within one priority the later declaration wins.
	got = rewritten(t,
		"$syntax { w } = { first }; $syntax { w } = { second }; w")
	if got != "second" {
		t.Errorf("got %q, want %q", got, "second")
	}
}

func TestRewriteDollarEscape(t *testing.T) {

	// `$$x` in a replacement emits the token `$x` after one level of
	// expansion, so macros can expand to macro definitions.
	got := rewritten(t,
		"$syntax { outer } = { $$syntax \\{ inner \\} = \\{ 9 \\} ; }; outer inner")
	if got != "9" {
		t.Errorf("got %q, want %q", got, "9")
	}
}

func TestRewriteUserGroups(t *testing.T) {

	got := rewritten(t, `
		$syntax lit { one } = { 1 };
		$syntax lit { two } = { 2 };
		$syntax { count $x:lit } = { counted };
		count two
	`)
	if got != "counted" {
		t.Errorf("got %q, want %q", got, "counted")
	}
}

func TestRewriteRepetitionLockstep(t *testing.T) {

	got := rewritten(t, `
		$syntax { pairs ${ $k:ident = $v:int ; } end } = { ${ set $k $v ; } };
		pairs a = 1 ; b = 2 ; end
	`)
	if got != "set a 1 ; set b 2 ;" {
		t.Errorf("got %q", got)
	}
}

func TestSyntaxDeclarationErrors(t *testing.T) {

	tests := []struct {
		name string
		in   string
	}{
		{"missing equals", "$syntax { x } { y };"},
		{"missing semicolon", "$syntax { x } = { y } x"},
		{"empty pattern", "$syntax { } = { y };"},
		{"bad priority", "$syntax 101 { x } = { y };"},
		{"unknown capture kind", "$syntax { $x:nonsense } = { $x }; 1"},
		{"duplicate capture", "$syntax { $x:int $x:int } = { $x };"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := NewBytes([]byte(tt.in), nil)
			if err != nil {
				t.Fatalf("NewBytes failed, reason: %v", err)
			}
			if _, err := q.Tokens(); err == nil {
				t.Errorf("rewriting %q should fail", tt.in)
			}
		})
	}
}
