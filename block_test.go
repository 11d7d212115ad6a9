// Copyright 2022 Questlang. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package quest

import (
	"testing"
)

func TestBuilderLocalPools(t *testing.T) {

	b := NewBuilder(SourceLocation{})

	// Slots 0 and 1 are reserved for the block and the arguments.
	n := b.NamedLocal("n")
	if !n.Named || n.Index != reservedLocals {
		t.Errorf("first named local got %+v, want index %d", n, reservedLocals)
	}

	// Re-requesting a name reuses its slot.
	again := b.NamedLocal("n")
	if again != n {
		t.Errorf("NamedLocal(\"n\") got %+v, want %+v", again, n)
	}

	l := b.NamedLocal("l")
	if l.Index != n.Index+1 {
		t.Errorf("second named local got %+v", l)
	}

	u1 := b.UnnamedLocal()
	u2 := b.UnnamedLocal()
	if u1.Named || u2.Named || u1 == u2 {
		t.Errorf("unnamed locals got %+v and %+v", u1, u2)
	}
	if b.Scratch() != (Local{}) {
		t.Errorf("scratch got %+v", b.Scratch())
	}
}

func TestBuilderConstantDedup(t *testing.T) {

	b := NewBuilder(SourceLocation{})
	dst := b.UnnamedLocal()

	b.Constant(Integer(42), dst)
	b.Constant(Integer(42), dst)
	b.Constant(Integer(43), dst)
	blk := b.Build()

	if len(blk.inner.constants) != 2 {
		t.Errorf("constant pool has %d entries, want 2", len(blk.inner.constants))
	}
}

func TestLocalEncodingRoundTrip(t *testing.T) {

	tests := []Local{
		{Named: false, Index: 0},
		{Named: false, Index: 5},
		{Named: false, Index: 126},
		{Named: false, Index: 127},
		{Named: false, Index: 300},
		{Named: true, Index: 0},
		{Named: true, Index: 5},
		{Named: true, Index: 200},
	}

	for _, tt := range tests {
		b := NewBuilder(SourceLocation{})
		b.local(tt)
		f := &Frame{inner: &blockInner{code: b.code}}
		if got := f.nextLocalTarget(); got != tt.target() {
			t.Errorf("local %+v decoded to %d, want %d", tt, got, tt.target())
		}
	}
}

func TestCountEncodingRoundTrip(t *testing.T) {

	tests := []int{0, 1, 126, 127, 254, 255, 1 << 20, -1, -3}

	for _, tt := range tests {
		b := NewBuilder(SourceLocation{})
		b.count(tt)
		f := &Frame{inner: &blockInner{code: b.code}}
		if got := f.nextCount(); got != tt {
			t.Errorf("count %d decoded to %d", tt, got)
		}
	}
}

func TestOpcodeMetadata(t *testing.T) {

	tests := []struct {
		op       Opcode
		arity    int
		variadic bool
	}{
		{OpCreateList, 0, false},
		{OpConstLoad, 0, false},
		{OpMov, 1, false},
		{OpNot, 1, false},
		{OpGetAttr, 2, false},
		{OpSetAttr, 2, false},
		{OpAdd, 2, false},
		{OpCompare, 2, false},
		{OpCallSimple, 1, true},
		{OpCallAttrSimple, 2, true},
		{OpIndex, 1, true},
		{OpIndexAssign, 1, true},
		{OpCreateListShort, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			if got := tt.op.arity(); got != tt.arity {
				t.Errorf("arity got %d, want %d", got, tt.arity)
			}
			if got := tt.op.variadic(); got != tt.variadic {
				t.Errorf("variadic got %v, want %v", got, tt.variadic)
			}
			if !tt.op.valid() {
				t.Errorf("opcode should be valid")
			}
		})
	}

	if Opcode(0x13).valid() {
		t.Errorf("0x13 should not be a valid opcode")
	}
}

func TestFrameArgumentMismatch(t *testing.T) {

	// A block declaring two arguments accepts at most two positionals.
	b := NewBuilder(SourceLocation{})
	b.NamedLocal("x")
	b.NamedLocal("y")
	blk := b.Build()

	if _, err := NewFrame(blk, NewArgs(Integer(1), Integer(2))); err != nil {
		t.Fatalf("NewFrame failed, reason: %v", err)
	}

	_, err := NewFrame(blk, NewArgs(Integer(1), Integer(2), Integer(3)))
	if err == nil {
		t.Fatalf("NewFrame should fail with too many arguments")
	}
	e, ok := err.(*Error)
	if !ok || e.Kind != KindPositionalArgumentMismatch {
		t.Errorf("got %v, want PositionalArgumentMismatch", err)
	}
	if e.Given != 3 || e.Expected != 2 {
		t.Errorf("got given=%d expected=%d, want 3 and 2", e.Given, e.Expected)
	}
}

func TestDeepCloneIndependentAttributes(t *testing.T) {

	vm := NewVM()
	b := NewBuilder(SourceLocation{})
	blk := b.Build()

	var orig Value = blk
	if err := SetAttr(vm, &orig, NewText("shared"), Integer(1)); err != nil {
		t.Fatalf("SetAttr failed, reason: %v", err)
	}

	clone := blk.deepClone()
	var cl Value = clone
	if err := SetAttr(vm, &cl, NewText("shared"), Integer(2)); err != nil {
		t.Fatalf("SetAttr failed, reason: %v", err)
	}

	v, _ := GetUnboundAttr(vm, orig, NewText("shared"))
	if v != Value(Integer(1)) {
		t.Errorf("original attribute got %v, want 1", v)
	}
	v, _ = GetUnboundAttr(vm, cl, NewText("shared"))
	if v != Value(Integer(2)) {
		t.Errorf("clone attribute got %v, want 2", v)
	}
	if clone.inner != blk.inner {
		t.Errorf("deep clone should share the immutable inner block")
	}
}
