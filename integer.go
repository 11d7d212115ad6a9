// Copyright 2022 Questlang. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package quest

import "math"

func integerClassDef() *Class {
	return newClass("Integer", objectClassV,
		method(SymOpAdd, integerBinop(
			func(l, r Integer) (Value, error) { return l + r, nil },
			func(l, r Float) Value { return l + r },
		)),
		method(SymOpSub, integerBinop(
			func(l, r Integer) (Value, error) { return l - r, nil },
			func(l, r Float) Value { return l - r },
		)),
		method(SymOpMul, integerBinop(
			func(l, r Integer) (Value, error) { return l * r, nil },
			func(l, r Float) Value { return l * r },
		)),
		method(SymOpDiv, integerBinop(
			func(l, r Integer) (Value, error) {
				if r == 0 {
					return nil, errMessage("division by zero")
				}
				return l / r, nil
			},
			func(l, r Float) Value { return l / r },
		)),
		method(SymOpMod, integerBinop(
			func(l, r Integer) (Value, error) {
				if r == 0 {
					return nil, errMessage("modulo by zero")
				}
				return l % r, nil
			},
			func(l, r Float) Value { return Float(math.Mod(float64(l), float64(r))) },
		)),
		method(SymOpPow, func(vm *VM, this Integer, args Args) (Value, error) {
			rhs, err := args.Get(0)
			if err != nil {
				return nil, err
			}
			switch r := unwrap(rhs).(type) {
			case Integer:
				if r >= 0 {
					return integerPow(this, r), nil
				}
				return Float(math.Pow(float64(this), float64(r))), nil
			case Float:
				return Float(math.Pow(float64(this), float64(r))), nil
			}
			return nil, errInvalidType("Integer", rhs.TypeName())
		}),
		method(SymOpNeg, func(vm *VM, this Integer, args Args) (Value, error) {
			return -this, nil
		}),
		method(SymOpEql, integerCmp(func(c int) bool { return c == 0 })),
		method(SymOpNeq, integerCmp(func(c int) bool { return c != 0 })),
		method(SymOpLth, integerCmp(func(c int) bool { return c < 0 })),
		method(SymOpLeq, integerCmp(func(c int) bool { return c <= 0 })),
		method(SymOpGth, integerCmp(func(c int) bool { return c > 0 })),
		method(SymOpGeq, integerCmp(func(c int) bool { return c >= 0 })),
		method(SymOpCmp, func(vm *VM, this Integer, args Args) (Value, error) {
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
		method(SymOpNot, func(vm *VM, this Integer, args Args) (Value, error) {
			return Boolean(this == 0), nil
		}),
		method(SymIsEven, func(vm *VM, this Integer, args Args) (Value, error) {
			return Boolean(this%2 == 0), nil
		}),
		method(SymIsOdd, func(vm *VM, this Integer, args Args) (Value, error) {
			return Boolean(this%2 != 0), nil
		}),
		method(SymIsZero, func(vm *VM, this Integer, args Args) (Value, error) {
			return Boolean(this == 0), nil
		}),
		method(SymIsPositive, func(vm *VM, this Integer, args Args) (Value, error) {
			return Boolean(this > 0), nil
		}),
		method(SymIsNegative, func(vm *VM, this Integer, args Args) (Value, error) {
			return Boolean(this < 0), nil
		}),
		method(SymChr, func(vm *VM, this Integer, args Args) (Value, error) {
			return NewText(string(rune(this))), nil
		}),
		method(SymTimes, func(vm *VM, this Integer, args Args) (Value, error) {
			fn, err := args.Get(0)
			if err != nil {
				return nil, err
			}
			result := Value(Null{})
			for i := Integer(0); i < this; i++ {
				result, err = Call(vm, fn, NewArgs(i))
				if err != nil {
					return nil, err
				}
			}
			return result, nil
		}),
		method(SymUpto, func(vm *VM, this Integer, args Args) (Value, error) {
			limit, err := argInteger(args, 0)
			if err != nil {
				return nil, err
			}
			out := newList()
			for i := this; i <= limit; i++ {
				out.items = append(out.items, i)
			}
			return out, nil
		}),
		method(SymDownto, func(vm *VM, this Integer, args Args) (Value, error) {
			limit, err := argInteger(args, 0)
			if err != nil {
				return nil, err
			}
			out := newList()
			for i := this; i >= limit; i-- {
				out.items = append(out.items, i)
			}
			return out, nil
		}),
		method(SymToInt, func(vm *VM, this Integer, args Args) (Value, error) {
			return this, nil
		}),
		method(SymToFloat, func(vm *VM, this Integer, args Args) (Value, error) {
			return Float(this), nil
		}),
		method(SymToBool, func(vm *VM, this Integer, args Args) (Value, error) {
			return Boolean(this != 0), nil
		}),
		method(SymToText, func(vm *VM, this Integer, args Args) (Value, error) {
			return NewText(this.Inspect()), nil
		}),
		method(SymDbg, func(vm *VM, this Integer, args Args) (Value, error) {
			return NewText(this.Inspect()), nil
		}),
	)
}

// integerBinop builds an arithmetic method; a float on the right
// promotes the whole operation to float arithmetic.
func integerBinop(intOp func(l, r Integer) (Value, error), floatOp func(l, r Float) Value) func(*VM, Integer, Args) (Value, error) {
	return func(vm *VM, this Integer, args Args) (Value, error) {
		rhs, err := args.Get(0)
		if err != nil {
			return nil, err
		}
		switch r := unwrap(rhs).(type) {
		case Integer:
			return intOp(this, r)
		case Float:
			return floatOp(Float(this), r), nil
		}
		return nil, errInvalidType("Integer", rhs.TypeName())
	}
}

func integerCmp(pred func(c int) bool) func(*VM, Integer, Args) (Value, error) {
	return func(vm *VM, this Integer, args Args) (Value, error) {
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

func compareNumbers(l Value, r Value) (int, bool) {
	lf, ok := asNumber(l)
	if !ok {
		return 0, false
	}
	rf, ok := asNumber(r)
	if !ok {
		return 0, false
	}
	switch {
	case lf < rf:
		return -1, true
	case lf > rf:
		return 1, true
	}
	return 0, true
}

func integerPow(base, exp Integer) Integer {
	result := Integer(1)
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return result
}
