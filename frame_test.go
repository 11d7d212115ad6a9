// Copyright 2022 Questlang. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package quest

import (
	"testing"
)

// buildArith assembles `n * 2 + 1` by hand through the builder.
func buildArith() *Block {
	b := NewBuilder(SourceLocation{})
	n := b.NamedLocal("n")
	u := b.UnnamedLocal()
	b.Constant(Integer(2), u)
	b.Binary(OpMultiply, n, u, u)
	b.Constant(Integer(1), b.Scratch())
	b.Binary(OpAdd, u, b.Scratch(), b.Scratch())
	return b.Build()
}

func TestRunArithmeticBlock(t *testing.T) {

	vm := NewVM()
	v, err := vm.RunBlock(buildArith(), NewArgs(Integer(5)))
	if err != nil {
		t.Fatalf("RunBlock failed, reason: %v", err)
	}
	if v != Value(Integer(11)) {
		t.Errorf("got %v, want 11", v)
	}
}

func TestRunBlockThroughCall(t *testing.T) {

	vm := NewVM()
	v, err := Call(vm, buildArith(), NewArgs(Integer(10)))
	if err != nil {
		t.Fatalf("Call failed, reason: %v", err)
	}
	if v != Value(Integer(21)) {
		t.Errorf("got %v, want 21", v)
	}
}

func TestCallSimpleDispatch(t *testing.T) {

	double := &NativeFn{
		Name: "double",
		Fn: func(vm *VM, args Args) (Value, error) {
			n, err := argInteger(args, 0)
			if err != nil {
				return nil, err
			}
			return n * 2, nil
		},
	}

	b := NewBuilder(SourceLocation{})
	n := b.NamedLocal("n")
	fn := b.UnnamedLocal()
	b.Constant(double, fn)
	b.CallSimple(fn, []Local{n}, b.Scratch())
	blk := b.Build()

	vm := NewVM()
	v, err := vm.RunBlock(blk, NewArgs(Integer(21)))
	if err != nil {
		t.Fatalf("RunBlock failed, reason: %v", err)
	}
	if v != Value(Integer(42)) {
		t.Errorf("got %v, want 42", v)
	}
}

func TestScratchDefaultsToNull(t *testing.T) {

	vm := NewVM()
	blk := NewBuilder(SourceLocation{}).Build()
	v, err := vm.RunBlock(blk, Args{})
	if err != nil {
		t.Fatalf("RunBlock failed, reason: %v", err)
	}
	if _, ok := v.(Null); !ok {
		t.Errorf("empty block got %v, want null", v)
	}
}

func TestFramePromotion(t *testing.T) {

	vm := NewVM()
	b := NewBuilder(SourceLocation{})
	b.NamedLocal("x")
	blk := b.Build()

	f, err := NewFrame(blk, NewArgs(Integer(7)))
	if err != nil {
		t.Fatalf("NewFrame failed, reason: %v", err)
	}
	if f.isObject() {
		t.Fatalf("fresh frame should not be an object")
	}

	if err := f.promote(vm); err != nil {
		t.Fatalf("promote failed, reason: %v", err)
	}
	if !f.isObject() {
		t.Fatalf("frame should be an object after promotion")
	}

	// The assigned named local is now a real attribute.
	v, err := GetUnboundAttr(vm, f, NewText("x"))
	if err != nil {
		t.Fatalf("GetUnboundAttr failed, reason: %v", err)
	}
	if v != Value(Integer(7)) {
		t.Errorf("got %v, want 7", v)
	}

	// Writes through setLocal stay visible through the table.
	if err := f.setLocal(vm, ^2, Integer(8)); err != nil {
		t.Fatalf("setLocal failed, reason: %v", err)
	}
	v, _ = GetUnboundAttr(vm, f, NewText("x"))
	if v != Value(Integer(8)) {
		t.Errorf("got %v, want 8", v)
	}

	// The frame class is now on the parent chain.
	if _, err := GetUnboundAttr(vm, f, NewText("resume")); err != nil {
		t.Fatalf("GetUnboundAttr failed, reason: %v", err)
	}
}

func TestReentryWhileRunningFails(t *testing.T) {

	vm := NewVM()
	reenter := &NativeFn{
		Name: "reenter",
		Fn: func(vm *VM, args Args) (Value, error) {
			return vm.frames[len(vm.frames)-1].Run(vm)
		},
	}

	b := NewBuilder(SourceLocation{})
	fn := b.UnnamedLocal()
	b.Constant(reenter, fn)
	b.CallSimple(fn, nil, b.Scratch())
	blk := b.Build()

	_, err := vm.RunBlock(blk, Args{})
	if err == nil {
		t.Fatalf("re-entry should fail")
	}
	if e, ok := err.(*Error); !ok || e.Kind != KindStackframeIsCurrentlyRunning {
		t.Errorf("got %v, want StackframeIsCurrentlyRunning", err)
	}
}

func TestNonLocalReturnCaughtByTargetFrame(t *testing.T) {

	vm := NewVM()

	// The inner block raises Return targeting whatever frame is passed
	// in; run through an outer block the unwind must cross.
	raise := &NativeFn{
		Name: "raise",
		Fn: func(vm *VM, args Args) (Value, error) {
			from, err := args.Get(0)
			if err != nil {
				return nil, err
			}
			return nil, errReturn(Integer(123), from)
		},
	}

	inner := NewBuilder(SourceLocation{})
	innerTarget := inner.NamedLocal("target")
	fn := inner.UnnamedLocal()
	inner.Constant(raise, fn)
	inner.CallSimple(fn, []Local{innerTarget}, inner.Scratch())
	innerBlk := inner.Build()

	outer := NewBuilder(SourceLocation{})
	me := outer.UnnamedLocal()
	outer.Stackframe(0, me)
	blkLocal := outer.UnnamedLocal()
	outer.Constant(innerBlk, blkLocal)
	outer.CallSimple(blkLocal, []Local{me}, outer.Scratch())
	// If the unwind were caught by the inner frame this would run and
	// clobber the result.
	outer.Constant(Integer(0), outer.Scratch())
	outerBlk := outer.Build()

	v, err := vm.RunBlock(outerBlk, Args{})
	if err != nil {
		t.Fatalf("RunBlock failed, reason: %v", err)
	}
	if v != Value(Integer(123)) {
		t.Errorf("got %v, want 123", v)
	}
}

func TestStackframeOpcode(t *testing.T) {

	vm := NewVM()
	b := NewBuilder(SourceLocation{})
	b.Stackframe(0, b.Scratch())
	blk := b.Build()

	v, err := vm.RunBlock(blk, Args{})
	if err != nil {
		t.Fatalf("RunBlock failed, reason: %v", err)
	}
	f, ok := v.(*Frame)
	if !ok {
		t.Fatalf("got %T, want *Frame", v)
	}
	if !f.isObject() {
		t.Errorf("materialized frame should be promoted")
	}
}
