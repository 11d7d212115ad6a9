// Copyright 2022 Questlang. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package quest

func booleanClassDef() *Class {
	return newClass("Boolean", objectClassV,
		method(SymOpNot, func(vm *VM, this Boolean, args Args) (Value, error) {
			return !this, nil
		}),
		method(SymOpBitAnd, booleanBinop(func(l, r Boolean) Boolean { return l && r })),
		method(SymOpBitOr, booleanBinop(func(l, r Boolean) Boolean { return l || r })),
		method(SymOpBitXor, booleanBinop(func(l, r Boolean) Boolean { return l != r })),
		method(SymOpEql, func(vm *VM, this Boolean, args Args) (Value, error) {
			rhs, err := args.Get(0)
			if err != nil {
				return nil, err
			}
			other, ok := unwrap(rhs).(Boolean)
			return Boolean(ok && this == other), nil
		}),
		method(SymToInt, func(vm *VM, this Boolean, args Args) (Value, error) {
			if this {
				return Integer(1), nil
			}
			return Integer(0), nil
		}),
		method(SymToBool, func(vm *VM, this Boolean, args Args) (Value, error) {
			return this, nil
		}),
		method(SymToText, func(vm *VM, this Boolean, args Args) (Value, error) {
			return NewText(this.Inspect()), nil
		}),
		method(SymDbg, func(vm *VM, this Boolean, args Args) (Value, error) {
			return NewText(this.Inspect()), nil
		}),
	)
}

func booleanBinop(op func(l, r Boolean) Boolean) func(*VM, Boolean, Args) (Value, error) {
	return func(vm *VM, this Boolean, args Args) (Value, error) {
		rhs, err := args.Get(0)
		if err != nil {
			return nil, err
		}
		other, ok := unwrap(rhs).(Boolean)
		if !ok {
			return nil, errInvalidType("Boolean", rhs.TypeName())
		}
		return op(this, other), nil
	}
}
