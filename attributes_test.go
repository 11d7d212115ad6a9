// Copyright 2022 Questlang. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package quest

import (
	"fmt"
	"testing"
)

func TestSetGetDelAttr(t *testing.T) {

	vm := NewVM()
	var obj Value = NewObject()

	if err := SetAttr(vm, &obj, NewText("greeting"), NewText("hi")); err != nil {
		t.Fatalf("SetAttr failed, reason: %v", err)
	}
	v, err := GetUnboundAttr(vm, obj, NewText("greeting"))
	if err != nil {
		t.Fatalf("GetUnboundAttr failed, reason: %v", err)
	}
	if text, ok := v.(*Text); !ok || text.String() != "hi" {
		t.Errorf("got %v, want \"hi\"", v)
	}

	// Overwrites are idempotent in observable behavior.
	if err := SetAttr(vm, &obj, NewText("greeting"), NewText("yo")); err != nil {
		t.Fatalf("SetAttr failed, reason: %v", err)
	}
	if err := SetAttr(vm, &obj, NewText("greeting"), NewText("yo")); err != nil {
		t.Fatalf("SetAttr failed, reason: %v", err)
	}
	v, _ = GetUnboundAttr(vm, obj, NewText("greeting"))
	if text, ok := v.(*Text); !ok || text.String() != "yo" {
		t.Errorf("got %v, want \"yo\"", v)
	}

	prev, err := DelAttr(vm, obj, NewText("greeting"))
	if err != nil {
		t.Fatalf("DelAttr failed, reason: %v", err)
	}
	if text, ok := prev.(*Text); !ok || text.String() != "yo" {
		t.Errorf("DelAttr returned %v, want \"yo\"", prev)
	}
	v, err = GetUnboundAttr(vm, obj, NewText("greeting"))
	if err != nil {
		t.Fatalf("GetUnboundAttr failed, reason: %v", err)
	}
	if v != nil {
		t.Errorf("deleted attribute still resolves to %v", v)
	}
}

func TestAttrListToMapTransition(t *testing.T) {

	vm := NewVM()
	var obj Value = NewObject()
	base := obj.(*Object).base()

	for i := 0; i < attrListCap; i++ {
		key := NewText(fmt.Sprintf("attr%d", i))
		if err := SetAttr(vm, &obj, key, Integer(i)); err != nil {
			t.Fatalf("SetAttr failed, reason: %v", err)
		}
	}
	if base.hasFlag(flagAttrMap) {
		t.Fatalf("table should still be a list at %d entries", attrListCap)
	}

	// The ninth distinct key rehashes into a map.
	if err := SetAttr(vm, &obj, NewText("attr8"), Integer(8)); err != nil {
		t.Fatalf("SetAttr failed, reason: %v", err)
	}
	if !base.hasFlag(flagAttrMap) {
		t.Fatalf("table should be a map at %d entries", attrListCap+1)
	}

	// Every entry survives the rehash.
	for i := 0; i <= attrListCap; i++ {
		v, err := GetUnboundAttr(vm, obj, NewText(fmt.Sprintf("attr%d", i)))
		if err != nil {
			t.Fatalf("GetUnboundAttr failed, reason: %v", err)
		}
		if v != Value(Integer(i)) {
			t.Errorf("attr%d got %v, want %d", i, v, i)
		}
	}
}

func TestInternedKeysSurviveMapDeletion(t *testing.T) {

	vm := NewVM()
	var obj Value = NewObject()
	if err := SetAttr(vm, &obj, SymThen, Integer(1)); err != nil {
		t.Fatalf("SetAttr failed, reason: %v", err)
	}
	for i := 0; i < attrListCap+1; i++ {
		if err := SetAttr(vm, &obj, NewText(fmt.Sprintf("k%d", i)), Integer(i)); err != nil {
			t.Fatalf("SetAttr failed, reason: %v", err)
		}
	}

	// Interned keys cannot be removed from the map representation.
	prev, err := DelAttr(vm, obj, SymThen)
	if err != nil {
		t.Fatalf("DelAttr failed, reason: %v", err)
	}
	if prev != nil {
		t.Errorf("interned key deleted from map representation")
	}
	if v, _ := GetUnboundAttr(vm, obj, SymThen); v != Value(Integer(1)) {
		t.Errorf("interned key lost, got %v", v)
	}

	// Arbitrary keys delete fine.
	prev, err = DelAttr(vm, obj, NewText("k3"))
	if err != nil {
		t.Fatalf("DelAttr failed, reason: %v", err)
	}
	if prev != Value(Integer(3)) {
		t.Errorf("DelAttr got %v, want 3", prev)
	}
}

func TestParentWalk(t *testing.T) {

	vm := NewVM()
	var grandparent Value = NewObject()
	var parent Value = NewObject()
	var child Value = NewObject()

	if err := SetAttr(vm, &grandparent, NewText("inherited"), Integer(99)); err != nil {
		t.Fatalf("SetAttr failed, reason: %v", err)
	}
	parent.(*Object).setSingleParent(grandparent)
	child.(*Object).setSingleParent(parent)

	v, err := GetUnboundAttr(vm, child, NewText("inherited"))
	if err != nil {
		t.Fatalf("GetUnboundAttr failed, reason: %v", err)
	}
	if v != Value(Integer(99)) {
		t.Errorf("got %v, want 99", v)
	}

	// Own attributes shadow parents'.
	if err := SetAttr(vm, &child, NewText("inherited"), Integer(1)); err != nil {
		t.Fatalf("SetAttr failed, reason: %v", err)
	}
	v, _ = GetUnboundAttr(vm, child, NewText("inherited"))
	if v != Value(Integer(1)) {
		t.Errorf("got %v, want 1", v)
	}

	// Deleting the override re-exposes the parent's value.
	if _, err := DelAttr(vm, child, NewText("inherited")); err != nil {
		t.Fatalf("DelAttr failed, reason: %v", err)
	}
	v, _ = GetUnboundAttr(vm, child, NewText("inherited"))
	if v != Value(Integer(99)) {
		t.Errorf("got %v, want 99", v)
	}
}

func TestCyclicParentsTerminate(t *testing.T) {

	vm := NewVM()
	a := NewObject()
	b := NewObject()
	a.setSingleParent(b)
	b.setSingleParent(a)

	v, err := GetUnboundAttr(vm, a, NewText("missing"))
	if err != nil {
		t.Fatalf("GetUnboundAttr failed, reason: %v", err)
	}
	if v != nil {
		t.Errorf("got %v, want nothing", v)
	}

	ok, err := HasAttr(vm, a, NewText("missing"))
	if err != nil {
		t.Fatalf("HasAttr failed, reason: %v", err)
	}
	if ok {
		t.Errorf("HasAttr found a missing attribute in a cyclic graph")
	}
}

func TestSetAttrBoxesImmediates(t *testing.T) {

	vm := NewVM()
	var v Value = Integer(12)

	if err := SetAttr(vm, &v, NewText("note"), NewText("dozen")); err != nil {
		t.Fatalf("SetAttr failed, reason: %v", err)
	}

	// The slot now holds a heap wrapper.
	wrapper, ok := v.(*Object)
	if !ok {
		t.Fatalf("slot still holds %T, want *Object", v)
	}
	if wrapper.data != Value(Integer(12)) {
		t.Errorf("wrapper data got %v, want 12", wrapper.data)
	}

	note, err := GetUnboundAttr(vm, v, NewText("note"))
	if err != nil {
		t.Fatalf("GetUnboundAttr failed, reason: %v", err)
	}
	if text, ok := note.(*Text); !ok || text.String() != "dozen" {
		t.Errorf("got %v, want \"dozen\"", note)
	}

	// The wrapper still behaves like its scalar: class methods resolve.
	r, err := CallAttr(vm, v, SymOpAdd, NewArgs(Integer(1)))
	if err != nil {
		t.Fatalf("CallAttr failed, reason: %v", err)
	}
	if r != Value(Integer(13)) {
		t.Errorf("wrapped 12 + 1 got %v, want 13", r)
	}
}

func TestDelAttrOnImmediateFailsSilently(t *testing.T) {

	vm := NewVM()
	prev, err := DelAttr(vm, Integer(5), NewText("whatever"))
	if err != nil {
		t.Fatalf("DelAttr failed, reason: %v", err)
	}
	if prev != nil {
		t.Errorf("got %v, want nothing", prev)
	}
}

func TestParentsSpecialKey(t *testing.T) {

	vm := NewVM()
	var obj Value = NewObject()
	var other Value = NewObject()

	if err := SetAttr(vm, &obj, NewText("__parents__"), NewList(other)); err != nil {
		t.Fatalf("SetAttr failed, reason: %v", err)
	}
	parents := Parents(obj)
	if len(parents.Items()) != 1 || parents.Items()[0] != other {
		t.Errorf("parents got %v", parents.Items())
	}

	// __parents__ reflects the parent list, not the attribute table.
	if v, _ := obj.(*Object).attrs.get(vm, SymParentsAttr); v != nil {
		t.Errorf("__parents__ leaked into the attribute table")
	}
}

func TestMethodBinding(t *testing.T) {

	vm := NewVM()
	v, err := GetAttr(vm, Integer(5), NewText("then"))
	if err != nil {
		t.Fatalf("GetAttr failed, reason: %v", err)
	}
	bf, ok := v.(*BoundFn)
	if !ok {
		t.Fatalf("got %T, want *BoundFn", v)
	}
	if bf.Receiver() != Value(Integer(5)) {
		t.Errorf("receiver got %v, want 5", bf.Receiver())
	}

	// Unbound reads skip the wrapper.
	v, err = GetUnboundAttr(vm, Integer(5), NewText("then"))
	if err != nil {
		t.Fatalf("GetUnboundAttr failed, reason: %v", err)
	}
	if _, ok := v.(*NativeFn); !ok {
		t.Errorf("got %T, want *NativeFn", v)
	}

	// Non-callable attributes come back as-is.
	v, err = GetAttr(vm, NewList(Integer(1)), NewText("__parents__"))
	if err != nil {
		t.Fatalf("GetAttr failed, reason: %v", err)
	}
	if _, ok := v.(*List); !ok {
		t.Errorf("got %T, want *List", v)
	}
}
