// Copyright 2022 Questlang. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package quest

import "strings"

// List is the heap list type.
type List struct {
	Base
	items []Value
}

func (l *List) base() *Base { return &l.Base }

func (*List) TypeName() string { return "List" }

func (l *List) Inspect() string {
	parts := make([]string, len(l.items))
	for i, v := range l.items {
		parts[i] = v.Inspect()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Items returns the backing slice.
func (l *List) Items() []Value { return l.items }

// Push appends a value.
func (l *List) Push(v Value) { l.items = append(l.items, v) }

// newList allocates a list without a class parent; used internally
// (parents stores, class init) where the chain must stay acyclic.
func newList(items ...Value) *List {
	l := &List{items: items}
	l.setTypeTag(tagList)
	return l
}

// NewList allocates a list inheriting from the List class.
func NewList(items ...Value) *List {
	l := newList(items...)
	l.setSingleParent(listClass())
	return l
}

func listClassDef() *Class {
	return newClass("List", objectClassV,
		method(SymOpEql, func(vm *VM, this *List, args Args) (Value, error) {
			rhs, err := args.Get(0)
			if err != nil {
				return nil, err
			}
			other, ok := unwrap(rhs).(*List)
			if !ok || len(this.items) != len(other.items) {
				return Boolean(false), nil
			}
			for i := range this.items {
				eq, err := TryEq(vm, this.items[i], other.items[i])
				if err != nil {
					return nil, err
				}
				if !eq {
					return Boolean(false), nil
				}
			}
			return Boolean(true), nil
		}),
		method(SymOpIndex, func(vm *VM, this *List, args Args) (Value, error) {
			idx, err := argInteger(args, 0)
			if err != nil {
				return nil, err
			}
			if idx < 0 {
				idx += Integer(len(this.items))
			}
			if idx < 0 || int(idx) >= len(this.items) {
				return Null{}, nil
			}
			return this.items[idx], nil
		}),
		method(SymOpIndexAssign, func(vm *VM, this *List, args Args) (Value, error) {
			if this.Frozen() {
				return nil, errValueFrozen(this)
			}
			idx, err := argInteger(args, 0)
			if err != nil {
				return nil, err
			}
			value, err := args.Get(1)
			if err != nil {
				return nil, err
			}
			if idx < 0 {
				idx += Integer(len(this.items))
			}
			if idx < 0 {
				return nil, errMessage("index %d out of range", idx)
			}
			for int(idx) >= len(this.items) {
				this.items = append(this.items, Null{})
			}
			this.items[idx] = value
			return value, nil
		}),
		method(SymLen, func(vm *VM, this *List, args Args) (Value, error) {
			return Integer(len(this.items)), nil
		}),
		method(SymPush, func(vm *VM, this *List, args Args) (Value, error) {
			if this.Frozen() {
				return nil, errValueFrozen(this)
			}
			v, err := args.Get(0)
			if err != nil {
				return nil, err
			}
			this.items = append(this.items, v)
			return this, nil
		}),
		method(SymPop, func(vm *VM, this *List, args Args) (Value, error) {
			if this.Frozen() {
				return nil, errValueFrozen(this)
			}
			if len(this.items) == 0 {
				return Null{}, nil
			}
			v := this.items[len(this.items)-1]
			this.items = this.items[:len(this.items)-1]
			return v, nil
		}),
		method(SymShift, func(vm *VM, this *List, args Args) (Value, error) {
			if this.Frozen() {
				return nil, errValueFrozen(this)
			}
			if len(this.items) == 0 {
				return Null{}, nil
			}
			v := this.items[0]
			this.items = this.items[1:]
			return v, nil
		}),
		method(SymUnshift, func(vm *VM, this *List, args Args) (Value, error) {
			if this.Frozen() {
				return nil, errValueFrozen(this)
			}
			v, err := args.Get(0)
			if err != nil {
				return nil, err
			}
			this.items = append([]Value{v}, this.items...)
			return this, nil
		}),
		method(SymMap, func(vm *VM, this *List, args Args) (Value, error) {
			fn, err := args.Get(0)
			if err != nil {
				return nil, err
			}
			out := NewList()
			for _, v := range this.items {
				r, err := Call(vm, fn, NewArgs(v))
				if err != nil {
					return nil, err
				}
				out.items = append(out.items, r)
			}
			return out, nil
		}),
		method(SymFilter, func(vm *VM, this *List, args Args) (Value, error) {
			fn, err := args.Get(0)
			if err != nil {
				return nil, err
			}
			out := NewList()
			for _, v := range this.items {
				r, err := Call(vm, fn, NewArgs(v))
				if err != nil {
					return nil, err
				}
				if Truthy(r) {
					out.items = append(out.items, v)
				}
			}
			return out, nil
		}),
		method(SymReduce, func(vm *VM, this *List, args Args) (Value, error) {
			fn, err := args.Get(0)
			if err != nil {
				return nil, err
			}
			items := this.items
			var acc Value
			if v, err := args.Get(1); err == nil {
				acc = v
			} else {
				if len(items) == 0 {
					return Null{}, nil
				}
				acc = items[0]
				items = items[1:]
			}
			for _, v := range items {
				acc, err = Call(vm, fn, NewArgs(acc, v))
				if err != nil {
					return nil, err
				}
			}
			return acc, nil
		}),
		method(SymEach, func(vm *VM, this *List, args Args) (Value, error) {
			fn, err := args.Get(0)
			if err != nil {
				return nil, err
			}
			for _, v := range this.items {
				if _, err := Call(vm, fn, NewArgs(v)); err != nil {
					return nil, err
				}
			}
			return this, nil
		}),
		method(SymSum, func(vm *VM, this *List, args Args) (Value, error) {
			if len(this.items) == 0 {
				return Integer(0), nil
			}
			acc := this.items[0]
			for _, v := range this.items[1:] {
				r, err := CallAttr(vm, acc, SymOpAdd, NewArgs(v))
				if err != nil {
					return nil, err
				}
				acc = r
			}
			return acc, nil
		}),
		method(SymJoin, func(vm *VM, this *List, args Args) (Value, error) {
			sep := ""
			if v, err := args.Get(0); err == nil {
				s, err := toText(vm, v)
				if err != nil {
					return nil, err
				}
				sep = s
			}
			parts := make([]string, len(this.items))
			for i, v := range this.items {
				s, err := toText(vm, v)
				if err != nil {
					return nil, err
				}
				parts[i] = s
			}
			return NewText(strings.Join(parts, sep)), nil
		}),
		method(SymIter, listIter),
		method(SymToList, func(vm *VM, this *List, args Args) (Value, error) {
			return this, nil
		}),
		method(SymToBool, func(vm *VM, this *List, args Args) (Value, error) {
			return Boolean(len(this.items) != 0), nil
		}),
		method(SymToText, func(vm *VM, this *List, args Args) (Value, error) {
			s, err := toText(vm, this)
			if err != nil {
				return nil, err
			}
			return NewText(s), nil
		}),
		method(SymDbg, func(vm *VM, this *List, args Args) (Value, error) {
			return NewText(this.Inspect()), nil
		}),
	)
}

// listIter builds an iterator object: a plain object whose next
// attribute is a native function closing over the list and a cursor;
// next advances the cursor and signals StopIteration at the end.
func listIter(vm *VM, this *List, args Args) (Value, error) {
	it := NewObject()
	cursor := 0
	next := &NativeFn{
		Name: "next",
		Fn: func(vm *VM, args Args) (Value, error) {
			if cursor >= len(this.items) {
				return nil, errStopIteration()
			}
			v := this.items[cursor]
			cursor++
			return v, nil
		},
	}
	var slot Value = it
	if err := SetAttr(vm, &slot, SymNext, next); err != nil {
		return nil, err
	}
	return it, nil
}
