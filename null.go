// Copyright 2022 Questlang. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package quest

func nullClassDef() *Class {
	return newClass("Null", objectClassV,
		method(SymOpEql, func(vm *VM, this Null, args Args) (Value, error) {
			rhs, err := args.Get(0)
			if err != nil {
				return nil, err
			}
			_, ok := unwrap(rhs).(Null)
			return Boolean(ok), nil
		}),
		method(SymOpNot, func(vm *VM, this Null, args Args) (Value, error) {
			return Boolean(true), nil
		}),
		method(SymToBool, func(vm *VM, this Null, args Args) (Value, error) {
			return Boolean(false), nil
		}),
		method(SymToList, func(vm *VM, this Null, args Args) (Value, error) {
			return newList(), nil
		}),
		method(SymToText, func(vm *VM, this Null, args Args) (Value, error) {
			return NewText("null"), nil
		}),
		method(SymDbg, func(vm *VM, this Null, args Args) (Value, error) {
			return NewText("null"), nil
		}),
	)
}
