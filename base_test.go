// Copyright 2022 Questlang. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package quest

import (
	"testing"
)

func TestBorrowCounter(t *testing.T) {

	o := NewObject()

	// Shared borrows stack.
	if err := o.borrow(o); err != nil {
		t.Fatalf("borrow failed, reason: %v", err)
	}
	if err := o.borrow(o); err != nil {
		t.Fatalf("second borrow failed, reason: %v", err)
	}

	// A mutable borrow is refused while shared borrows are live.
	if err := o.borrowMutably(o); err == nil {
		t.Errorf("borrowMutably should fail with shared borrows active")
	}

	o.unborrow()
	o.unborrow()

	if err := o.borrowMutably(o); err != nil {
		t.Fatalf("borrowMutably failed, reason: %v", err)
	}
	if err := o.borrow(o); err == nil {
		t.Errorf("borrow should fail with a mutable borrow active")
	} else if e, ok := err.(*Error); !ok || e.Kind != KindAlreadyLocked {
		t.Errorf("got %v, want AlreadyLocked", err)
	}
	o.unborrowMutably()

	if err := o.borrow(o); err != nil {
		t.Errorf("borrow after release failed, reason: %v", err)
	}
	o.unborrow()
}

func TestFreezeRejectsMutation(t *testing.T) {

	vm := NewVM()
	var obj Value = NewObject()
	if err := SetAttr(vm, &obj, SymThen, Integer(1)); err != nil {
		t.Fatalf("SetAttr failed, reason: %v", err)
	}

	Freeze(obj)
	Freeze(obj) // idempotent

	if err := SetAttr(vm, &obj, SymThen, Integer(2)); err == nil {
		t.Errorf("SetAttr on frozen object should fail")
	} else if e, ok := err.(*Error); !ok || e.Kind != KindValueFrozen {
		t.Errorf("got %v, want ValueFrozen", err)
	}

	if _, err := DelAttr(vm, obj, SymThen); err == nil {
		t.Errorf("DelAttr on frozen object should fail")
	} else if e, ok := err.(*Error); !ok || e.Kind != KindValueFrozen {
		t.Errorf("got %v, want ValueFrozen", err)
	}

	if err := obj.(*Object).borrowMutably(obj); err == nil {
		t.Errorf("borrowMutably on frozen object should fail")
	}

	// Reads still work.
	v, err := GetUnboundAttr(vm, obj, SymThen)
	if err != nil {
		t.Fatalf("GetUnboundAttr failed, reason: %v", err)
	}
	if v != Value(Integer(1)) {
		t.Errorf("got %v, want 1", v)
	}
}

func TestUserFlags(t *testing.T) {

	o := NewObject()
	if o.hasFlag(flagIsObject) {
		t.Errorf("fresh object should not carry user flags")
	}
	if !o.tryAcquireFlag(flagIsObject) {
		t.Errorf("tryAcquireFlag should succeed the first time")
	}
	if o.tryAcquireFlag(flagIsObject) {
		t.Errorf("tryAcquireFlag should fail the second time")
	}
	o.clearFlag(flagIsObject)
	if o.hasFlag(flagIsObject) {
		t.Errorf("flag should be cleared")
	}
}

func TestTypeTag(t *testing.T) {

	tests := []struct {
		in  attributed
		tag uint32
	}{
		{NewObject(), tagObject},
		{NewText("x"), tagText},
		{NewList(), tagList},
	}
	for _, tt := range tests {
		if got := tt.in.base().typeTag(); got != tt.tag {
			t.Errorf("typeTag(%v) got %d, want %d", tt.in, got, tt.tag)
		}
	}
}
