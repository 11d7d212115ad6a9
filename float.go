// Copyright 2022 Questlang. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package quest

import "math"

func floatClassDef() *Class {
	return newClass("Float", objectClassV,
		method(SymOpAdd, floatBinop(func(l, r Float) (Value, error) { return l + r, nil })),
		method(SymOpSub, floatBinop(func(l, r Float) (Value, error) { return l - r, nil })),
		method(SymOpMul, floatBinop(func(l, r Float) (Value, error) { return l * r, nil })),
		method(SymOpDiv, floatBinop(func(l, r Float) (Value, error) { return l / r, nil })),
		method(SymOpMod, floatBinop(func(l, r Float) (Value, error) {
			return Float(math.Mod(float64(l), float64(r))), nil
		})),
		method(SymOpPow, floatBinop(func(l, r Float) (Value, error) {
			return Float(math.Pow(float64(l), float64(r))), nil
		})),
		method(SymOpNeg, func(vm *VM, this Float, args Args) (Value, error) {
			return -this, nil
		}),
		method(SymOpEql, floatCmp(func(c int) bool { return c == 0 })),
		method(SymOpNeq, floatCmp(func(c int) bool { return c != 0 })),
		method(SymOpLth, floatCmp(func(c int) bool { return c < 0 })),
		method(SymOpLeq, floatCmp(func(c int) bool { return c <= 0 })),
		method(SymOpGth, floatCmp(func(c int) bool { return c > 0 })),
		method(SymOpGeq, floatCmp(func(c int) bool { return c >= 0 })),
		method(SymOpCmp, func(vm *VM, this Float, args Args) (Value, error) {
			rhs, err := args.Get(0)
			if err != nil {
				return nil, err
			}
			c, ok := compareNumbers(this, rhs)
			if !ok {
				return Null{}, nil
			}
			return Integer(c), nil
		}),
		method(SymIsWhole, func(vm *VM, this Float, args Args) (Value, error) {
			return Boolean(this == Float(math.Trunc(float64(this)))), nil
		}),
		method(SymToInt, func(vm *VM, this Float, args Args) (Value, error) {
			return Integer(this), nil
		}),
		method(SymToFloat, func(vm *VM, this Float, args Args) (Value, error) {
			return this, nil
		}),
		method(SymToBool, func(vm *VM, this Float, args Args) (Value, error) {
			return Boolean(this != 0), nil
		}),
		method(SymToText, func(vm *VM, this Float, args Args) (Value, error) {
			return NewText(this.Inspect()), nil
		}),
		method(SymDbg, func(vm *VM, this Float, args Args) (Value, error) {
			return NewText(this.Inspect()), nil
		}),
	)
}

func floatBinop(op func(l, r Float) (Value, error)) func(*VM, Float, Args) (Value, error) {
	return func(vm *VM, this Float, args Args) (Value, error) {
		rhs, err := args.Get(0)
		if err != nil {
			return nil, err
		}
		r, ok := asNumber(rhs)
		if !ok {
			return nil, errInvalidType("Float", rhs.TypeName())
		}
		return op(this, r)
	}
}

func floatCmp(pred func(c int) bool) func(*VM, Float, Args) (Value, error) {
	return func(vm *VM, this Float, args Args) (Value, error) {
		rhs, err := args.Get(0)
		if err != nil {
			return nil, err
		}
		c, ok := compareNumbers(this, rhs)
		if !ok {
			return Boolean(false), nil
		}
		return Boolean(pred(c)), nil
	}
}
