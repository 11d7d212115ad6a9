// Copyright 2022 Questlang. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package quest

import "strconv"

// Text is the heap string type. The fast hash is computed once at
// construction so attribute lookups keyed by text never rehash.
type Text struct {
	Base
	str string
	fh  uint64
}

func (t *Text) base() *Base { return &t.Base }

func (*Text) TypeName() string { return "Text" }

func (t *Text) Inspect() string { return strconv.Quote(t.str) }

// String returns the underlying Go string.
func (t *Text) String() string { return t.str }

// NewText allocates a text with the Text class as parent.
func NewText(s string) *Text {
	t := &Text{str: s, fh: fastHash(s)}
	t.setTypeTag(tagText)
	t.setSingleParent(textClass())
	return t
}

// newTextKey allocates a text without touching the class singletons;
// used for attribute keys inside class initialization.
func newTextKey(s string) *Text {
	t := &Text{str: s, fh: fastHash(s)}
	t.setTypeTag(tagText)
	return t
}

func textClassDef() *Class {
	return newClass("Text", objectClassV,
		method(SymOpAdd, func(vm *VM, this *Text, args Args) (Value, error) {
			rhs, err := args.Get(0)
			if err != nil {
				return nil, err
			}
			other, err := toText(vm, rhs)
			if err != nil {
				return nil, err
			}
			return NewText(this.str + other), nil
		}),
		method(SymConcat, func(vm *VM, this *Text, args Args) (Value, error) {
			if this.Frozen() {
				return nil, errValueFrozen(this)
			}
			rhs, err := args.Get(0)
			if err != nil {
				return nil, err
			}
			other, err := toText(vm, rhs)
			if err != nil {
				return nil, err
			}
			this.str += other
			this.fh = fastHash(this.str)
			return this, nil
		}),
		method(SymOpEql, func(vm *VM, this *Text, args Args) (Value, error) {
			rhs, err := args.Get(0)
			if err != nil {
				return nil, err
			}
			if other, ok := unwrap(rhs).(*Text); ok {
				return Boolean(this.str == other.str), nil
			}
			return Boolean(false), nil
		}),
		method(SymOpCmp, func(vm *VM, this *Text, args Args) (Value, error) {
			rhs, err := args.Get(0)
			if err != nil {
				return nil, err
			}
			other, ok := unwrap(rhs).(*Text)
			if !ok {
				return nil, errInvalidType("Text", rhs.TypeName())
			}
			switch {
			case this.str < other.str:
				return Integer(-1), nil
			case this.str > other.str:
				return Integer(1), nil
			}
			return Integer(0), nil
		}),
		method(SymLen, func(vm *VM, this *Text, args Args) (Value, error) {
			return Integer(len(this.str)), nil
		}),
		method(SymOpIndex, func(vm *VM, this *Text, args Args) (Value, error) {
			idx, err := argInteger(args, 0)
			if err != nil {
				return nil, err
			}
			if idx < 0 {
				idx += Integer(len(this.str))
			}
			if idx < 0 || int(idx) >= len(this.str) {
				return Null{}, nil
			}
			return NewText(this.str[idx : idx+1]), nil
		}),
		method(SymToText, func(vm *VM, this *Text, args Args) (Value, error) {
			return this, nil
		}),
		method(SymToBool, func(vm *VM, this *Text, args Args) (Value, error) {
			return Boolean(len(this.str) != 0), nil
		}),
		method(SymDbg, func(vm *VM, this *Text, args Args) (Value, error) {
			return NewText(this.Inspect()), nil
		}),
	)
}
