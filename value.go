// Copyright 2022 Questlang. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package quest

import (
	"math"
	"strconv"
	"unsafe"
)

// Value is any Quest value. Immediates (Integer, Float, Boolean, Null,
// Intern, *NativeFn) carry their whole state in the interface word;
// heap values embed a Base header and implement attributed.
type Value interface {
	TypeName() string
	Inspect() string
}

// attributed is the interface of every heap-allocated value.
type attributed interface {
	Value
	base() *Base
}

// Integer is the immediate integer type.
type Integer int64

func (Integer) TypeName() string   { return "Integer" }
func (i Integer) Inspect() string  { return strconv.FormatInt(int64(i), 10) }

// Float is the immediate float type.
type Float float64

func (Float) TypeName() string { return "Float" }
func (f Float) Inspect() string {
	return strconv.FormatFloat(float64(f), 'g', -1, 64)
}

// Boolean is the immediate boolean type.
type Boolean bool

func (Boolean) TypeName() string { return "Boolean" }
func (b Boolean) Inspect() string {
	if b {
		return "true"
	}
	return "false"
}

// Null is the immediate null singleton.
type Null struct{}

func (Null) TypeName() string { return "Null" }
func (Null) Inspect() string  { return "null" }

// NativeFn is an immutable {name, fn} record; values of this type are
// shared by pointer and never mutated after construction.
type NativeFn struct {
	Name string
	Fn   func(vm *VM, args Args) (Value, error)
}

func (*NativeFn) TypeName() string  { return "NativeFn" }
func (f *NativeFn) Inspect() string { return "<fn:" + f.Name + ">" }

// IsA reports whether v's concrete type is T.
func IsA[T Value](v Value) bool {
	_, ok := v.(T)
	return ok
}

// Downcast extracts v as a T if its concrete type matches.
func Downcast[T Value](v Value) (T, bool) {
	t, ok := v.(T)
	return t, ok
}

// Identical reports bit-level identity: same immediate payload, or the
// same heap object.
func Identical(a, b Value) bool {
	if af, ok := a.(Float); ok {
		bf, ok := b.(Float)
		return ok && math.Float64bits(float64(af)) == math.Float64bits(float64(bf))
	}
	return a == b
}

// ID returns a stable identity key for v: the heap address for objects,
// a tag-mixed payload for immediates.
func ID(v Value) uint64 {
	switch t := v.(type) {
	case Integer:
		return uint64(t)<<1 | 1
	case Float:
		return math.Float64bits(float64(t)) | 0b10
	case Boolean:
		if t {
			return 0b0010100
		}
		return 0b0000100
	case Null:
		return 0b0100100
	case Intern:
		return uint64(t)<<7 | 0b1000100
	case *NativeFn:
		return uint64(uintptr(unsafe.Pointer(t))) | 0b1000
	case attributed:
		return uint64(uintptr(unsafe.Pointer(t.base())))
	}
	return 0
}

// Truthy is the boolean conversion used by `then`, `and`, if_cascade
// and friends.
func Truthy(v Value) bool {
	switch t := v.(type) {
	case Boolean:
		return bool(t)
	case Null:
		return false
	case Integer:
		return t != 0
	case Float:
		return t != 0
	case *Text:
		return len(t.str) != 0
	case *Object:
		if t.data != nil {
			return Truthy(t.data)
		}
		return true
	default:
		return true
	}
}

// TryEq compares two values for equality as attribute keys: identity
// first, then string comparison for texts and symbols, then dispatch to
// the left operand's `==` attribute.
func TryEq(vm *VM, a, b Value) (bool, error) {
	if Identical(a, b) {
		return true, nil
	}
	switch at := a.(type) {
	case Intern:
		if bt, ok := b.(*Text); ok {
			return at.String() == bt.str, nil
		}
		return false, nil
	case *Text:
		switch bt := b.(type) {
		case *Text:
			return at.str == bt.str, nil
		case Intern:
			return at.str == bt.String(), nil
		}
		return false, nil
	case attributed:
		r, err := CallAttr(vm, a, SymOpEql, NewArgs(b))
		if err != nil {
			return false, err
		}
		return Truthy(r), nil
	default:
		// Immediates compare by identity only.
		return false, nil
	}
}

// TryHash returns the hash used for attribute-table placement. Interned
// symbols and texts use the precomputed fast hash so interned lookups
// skip string comparison entirely.
func TryHash(vm *VM, v Value) (uint64, error) {
	switch t := v.(type) {
	case Intern:
		return t.fastHash(), nil
	case *Text:
		return t.fh, nil
	default:
		return ID(v), nil
	}
}

// Call invokes v with args: native functions run directly, blocks get a
// fresh frame, bound functions prepend their receiver, and anything
// else dispatches its `()` attribute.
func Call(vm *VM, v Value, args Args) (Value, error) {
	switch t := v.(type) {
	case *NativeFn:
		return t.Fn(vm, args)
	case *Block:
		frame, err := NewFrame(t, args)
		if err != nil {
			return nil, err
		}
		return frame.Run(vm)
	case *BoundFn:
		return Call(vm, t.fn, args.WithSelf(t.receiver))
	default:
		return CallAttr(vm, v, SymOpCall, args)
	}
}

// CallAttr resolves attr on v without binding and calls it with v as
// the implicit first argument.
func CallAttr(vm *VM, v Value, attr Value, args Args) (Value, error) {
	fn, err := getUnboundAttr(vm, v, attr)
	if err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, errUnknownAttribute(v, attr)
	}
	return Call(vm, fn, args.WithSelf(v))
}

// isCallable mirrors the method-binding rule: function pointers,
// blocks, bound functions, and objects exposing a `()` attribute.
func isCallable(vm *VM, v Value) bool {
	switch v.(type) {
	case *NativeFn, *Block, *BoundFn:
		return true
	case *Frame:
		return false
	case attributed:
		ok, err := HasAttr(vm, v, SymOpCall)
		return err == nil && ok
	default:
		return false
	}
}
