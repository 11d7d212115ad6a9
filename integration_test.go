// Copyright 2022 Questlang. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package quest

import (
	"testing"
)

func runCode(t *testing.T, code string) Value {
	t.Helper()
	q, err := NewBytes([]byte(code), nil)
	if err != nil {
		t.Fatalf("NewBytes failed, reason: %v", err)
	}
	v, err := q.Run()
	if err != nil {
		t.Fatalf("running failed, reason: %v", err)
	}
	return v
}

func TestDivides(t *testing.T) {

	result := runCode(t, `
		Integer.zero? = n -> { n == 0 };
		Integer.divides? = (n, l) -> { (l % n).zero?() };
		12.divides?(24).and(!12.divides?(13))
	`)
	if result != Value(Boolean(true)) {
		t.Errorf("got %v, want true", result)
	}
}

func TestFibSetParent(t *testing.T) {

	result := runCode(t, `
		fib = n -> {
			(n <= 1).then(n.return);

			fib(n - 1) + fib(n - 2)
		};

		fib.__parents__ = [:0];
		fib(10)
	`)
	if result != Value(Integer(55)) {
		t.Errorf("got %v, want 55", result)
	}
}

func TestFibPassFunction(t *testing.T) {

	result := runCode(t, `
		fib = (n, fn) -> {
			(n <= 1).then(n.return);

			fn(n - 1, fn) + fn(n - 2, fn)
		};

		fib(10, fib)
	`)
	if result != Value(Integer(55)) {
		t.Errorf("got %v, want 55", result)
	}
}

func TestAssignAndFetchFromArrays(t *testing.T) {

	result := runCode(t, `
		ary = [9, 12, -99];
		ary[1] = 4;
		ary[0] + ary[1]
	`)
	if result != Value(Integer(13)) {
		t.Errorf("got %v, want 13", result)
	}
}

func TestStackframeContinuation(t *testing.T) {

	result := runCode(t, `
		recur = acc -> {
			[acc, :0].return();

			recur(acc + "X")
		};

		tmp = recur("X"); q = tmp[0];
		tmp = tmp[1].resume(); q = q + ":" + tmp[0];
		tmp = tmp[1].resume(); q = q + ":" + tmp[0];
		tmp = tmp[1].resume(); q = q + ":" + tmp[0];
		q
	`)
	text, ok := result.(*Text)
	if !ok {
		t.Fatalf("got %T, want *Text", result)
	}
	if text.String() != "X:XX:XXX:XXXX" {
		t.Errorf("got %q, want %q", text.String(), "X:XX:XXX:XXXX")
	}
}

func TestListComprehensionMacro(t *testing.T) {

	result := runCode(t, `
		$syntax { [ $body:tt | $var:ident in $src:tt ] } = { $src.map($var -> { $body }) };
		[(x * 2) | x in [1, 2, 3, 4]]
	`)
	list, ok := result.(*List)
	if !ok {
		t.Fatalf("got %T, want *List", result)
	}
	want := []Value{Integer(2), Integer(4), Integer(6), Integer(8)}
	if len(list.Items()) != len(want) {
		t.Fatalf("got %d elements, want %d", len(list.Items()), len(want))
	}
	for i, w := range want {
		if list.Items()[i] != w {
			t.Errorf("element %d got %v, want %v", i, list.Items()[i], w)
		}
	}
}

func TestIfCascadeMacro(t *testing.T) {

	result := runCode(t, `
		$syntax { if $cond:group $body:block ${ else if $cond1:group $body1:block } $[ else $body2:block ] } = {
			if_cascade($cond, $body ${, {$cond1}, $body1 } $[, $body2])
		};
		x = 2;
		if (x == 0) { 10 } else if (x == 1) { 20 } else if (x == 2) { 30 } else { 40 }
	`)
	if result != Value(Integer(30)) {
		t.Errorf("got %v, want 30", result)
	}
}

func TestIfCascadeMacroElseBranch(t *testing.T) {

	result := runCode(t, `
		$syntax { if $cond:group $body:block ${ else if $cond1:group $body1:block } $[ else $body2:block ] } = {
			if_cascade($cond, $body ${, {$cond1}, $body1 } $[, $body2])
		};
		x = 9;
		if (x == 0) { 10 } else if (x == 1) { 20 } else { 40 }
	`)
	if result != Value(Integer(40)) {
		t.Errorf("got %v, want 40", result)
	}
}

func TestModifyingStringLiteralsIsntGlobal(t *testing.T) {

	result := runCode(t, `
		modify = { "x".concat("y") };

		modify() + modify()
	`)
	text, ok := result.(*Text)
	if !ok {
		t.Fatalf("got %T, want *Text", result)
	}
	if text.String() != "xyxy" {
		t.Errorf("got %q, want %q", text.String(), "xyxy")
	}
}

func TestIfAndWhile(t *testing.T) {

	result := runCode(t, `
		i = 0;
		n = 0;
		while({ i < 10 }, {
			if((i % 2) == 0, {
				:2.n = n + i;
			});

			:1.i = i + 1;
		});
		n
	`)
	if result != Value(Integer(20)) {
		t.Errorf("got %v, want 20", result)
	}
}

func TestUserDefinedOperator(t *testing.T) {

	result := runCode(t, `
		Integer.'^^' = (n, r) -> { n ** r };
		2 ^^ 5
	`)
	if result != Value(Integer(32)) {
		t.Errorf("got %v, want 32", result)
	}
}

func TestStackOverflowSurfaces(t *testing.T) {

	q, err := NewBytes([]byte(`
		loop = n -> { loop(n) };
		loop.__parents__ = [:0];
		loop(1)
	`), &Options{MaxCallDepth: 64})
	if err != nil {
		t.Fatalf("NewBytes failed, reason: %v", err)
	}
	_, err = q.Run()
	if err == nil {
		t.Fatalf("unbounded recursion should fail")
	}
	e, ok := err.(*Error)
	if !ok || e.Kind != KindStackOverflow {
		t.Errorf("got %v, want StackOverflow", err)
	}
	if len(e.Trace) == 0 {
		t.Errorf("error should carry a stack trace")
	}
}

func TestUnknownAttributeSurfaces(t *testing.T) {

	q, err := NewBytes([]byte(`nonexistent_variable`), nil)
	if err != nil {
		t.Fatalf("NewBytes failed, reason: %v", err)
	}
	_, err = q.Run()
	if err == nil {
		t.Fatalf("reading an unknown name should fail")
	}
	if e, ok := err.(*Error); !ok || e.Kind != KindUnknownAttribute {
		t.Errorf("got %v, want UnknownAttribute", err)
	}
}

func TestKernelBuiltins(t *testing.T) {

	tests := []struct {
		name string
		in   string
		out  Value
	}{
		{"if true branch", "if(true, { 1 }, { 2 })", Integer(1)},
		{"if false branch", "if(false, { 1 }, { 2 })", Integer(2)},
		{"if without else", "if(false, { 1 })", Null{}},
		{"ifl", "ifl(true, 3, 4)", Integer(3)},
		{"boolean and", "true.and(false)", Boolean(false)},
		{"boolean or", "false.or(true)", Boolean(true)},
		{"then skipped", "false.then({ 9 })", Boolean(false)},
		{"else taken", "false.else({ 9 })", Integer(9)},
		{"integer predicates", "4.is_even().and(!4.is_odd())", Boolean(true)},
		{"float arithmetic", "1.5 + 2.5", Float(4)},
		{"integer float promotion", "1 + 0.5", Float(1.5)},
		{"power", "2 ** 10", Integer(1024)},
		{"compare", "3 <=> 4", Integer(-1)},
		{"text length", `"hello".len()`, Integer(5)},
		{"list sum", "[1, 2, 3].sum()", Integer(6)},
		{"list length", "[1, 2, 3].len()", Integer(3)},
		{"assert passes", "assert(true)", Boolean(true)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := runCode(t, tt.in)
			if !Identical(got, tt.out) {
				t.Errorf("got %v, want %v", got, tt.out)
			}
		})
	}
}

func TestListIteratorProtocol(t *testing.T) {

	result := runCode(t, `
		it = [7, 8].iter();
		it.next() + it.next()
	`)
	if result != Value(Integer(15)) {
		t.Errorf("got %v, want 15", result)
	}

	q, err := NewBytes([]byte(`
		it = [].iter();
		it.next()
	`), nil)
	if err != nil {
		t.Fatalf("NewBytes failed, reason: %v", err)
	}
	_, err = q.Run()
	if e, ok := err.(*Error); !ok || e.Kind != KindStopIteration {
		t.Errorf("got %v, want StopIteration", err)
	}
}

func TestTrailingSemicolonYieldsNull(t *testing.T) {

	result := runCode(t, "1 + 1;")
	if _, ok := result.(Null); !ok {
		t.Errorf("got %v, want null", result)
	}
}
