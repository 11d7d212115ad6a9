// Copyright 2022 Questlang. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package quest

import (
	"fmt"
	"os"
)

// The Kernel class sits on every frame's parent chain (through the
// Frame and Block classes), so its functions and class constants are
// reachable as bare identifiers from any scope.

func kernelClassDef() *Class {
	return newClass("Kernel", objectClassV,
		function(SymPrint, kernelPrint),
		function(SymDump, kernelDump),
		function(SymExit, kernelExit),
		function(SymAbort, kernelAbort),
		function(SymAssert, kernelAssert),
		function(SymIf, kernelIf),
		function(SymIfl, kernelIfl),
		function(SymIfCascade, kernelIfCascade),
		function(SymWhile, kernelWhile),
	)
}

// kernelConstants wires the class constants after every class exists;
// Kernel and the classes reference each other, so this cannot happen
// inside kernelClassDef.
func kernelConstants(k *Class) {
	for _, e := range []classEntry{
		constant(SymInteger, integerClassV),
		constant(SymFloat, floatClassV),
		constant(SymBoolean, booleanClassV),
		constant(SymNullClass, nullClassV),
		constant(SymText, textClassV),
		constant(SymList, listClassV),
		constant(SymObject, objectClassV),
		constant(SymTrue, Boolean(true)),
		constant(SymFalse, Boolean(false)),
		constant(SymNull, Null{}),
	} {
		if err := k.attrs.set(nil, &k.Base, e.key, e.value); err != nil {
			panic(err)
		}
	}
}

// wireFrameBlockConstants exposes the Frame and Block classes on
// Kernel; called from initClasses once they exist.
func wireFrameBlockConstants(k *Class) {
	for _, e := range []classEntry{
		constant(SymFrame, frameClassV),
		constant(SymBlock, blockClassV),
	} {
		if err := k.attrs.set(nil, &k.Base, e.key, e.value); err != nil {
			panic(err)
		}
	}
}

func kernelPrint(vm *VM, args Args) (Value, error) {
	for i, v := range args.Positional() {
		s, err := toText(vm, v)
		if err != nil {
			return nil, err
		}
		if i > 0 {
			fmt.Fprint(vm.Stdout(), " ")
		}
		fmt.Fprint(vm.Stdout(), s)
	}
	fmt.Fprintln(vm.Stdout())
	return Null{}, nil
}

func kernelDump(vm *VM, args Args) (Value, error) {
	v, err := args.Get(0)
	if err != nil {
		return nil, err
	}
	s, err := toDebugText(vm, v)
	if err != nil {
		return nil, err
	}
	fmt.Fprintln(vm.Stdout(), s)
	return v, nil
}

func kernelExit(vm *VM, args Args) (Value, error) {
	code := 0
	if len(args.Positional()) > 0 {
		n, err := argInteger(args, 0)
		if err != nil {
			return nil, err
		}
		code = int(n)
	}
	os.Exit(code)
	return nil, nil
}

func kernelAbort(vm *VM, args Args) (Value, error) {
	if len(args.Positional()) > 0 {
		s, err := toText(vm, args.Positional()[0])
		if err != nil {
			return nil, err
		}
		return nil, errMessage("%s", s)
	}
	return nil, errMessage("aborted")
}

func kernelAssert(vm *VM, args Args) (Value, error) {
	v, err := args.Get(0)
	if err != nil {
		return nil, err
	}
	cond, err := callIfCallable(vm, v)
	if err != nil {
		return nil, err
	}
	if !Truthy(cond) {
		e := &Error{Kind: KindAssertionFailed}
		if msg, err := args.Get(1); err == nil {
			e.Value = msg
		}
		return nil, e
	}
	return v, nil
}

// kernelIf evaluates cond (calling it when it is a block) and runs the
// matching branch: if(cond, ifTrue, ifFalse?).
func kernelIf(vm *VM, args Args) (Value, error) {
	cond, err := args.Get(0)
	if err != nil {
		return nil, err
	}
	cond, err = callIfCallable(vm, cond)
	if err != nil {
		return nil, err
	}
	if Truthy(cond) {
		branch, err := args.Get(1)
		if err != nil {
			return nil, err
		}
		return callIfCallable(vm, branch)
	}
	if branch, err := args.Get(2); err == nil {
		return callIfCallable(vm, branch)
	}
	return Null{}, nil
}

// kernelIfl is if with both branches taken as plain values.
func kernelIfl(vm *VM, args Args) (Value, error) {
	cond, err := args.Get(0)
	if err != nil {
		return nil, err
	}
	cond, err = callIfCallable(vm, cond)
	if err != nil {
		return nil, err
	}
	if Truthy(cond) {
		return args.Get(1)
	}
	if v, err := args.Get(2); err == nil {
		return v, nil
	}
	return Null{}, nil
}

// kernelIfCascade takes alternating condition/body arguments with an
// optional trailing else body. Conditions past the first arrive as
// blocks so their evaluation is deferred.
func kernelIfCascade(vm *VM, args Args) (Value, error) {
	pos := args.Positional()
	i := 0
	for ; i+1 < len(pos); i += 2 {
		cond, err := callIfCallable(vm, pos[i])
		if err != nil {
			return nil, err
		}
		if Truthy(cond) {
			return callIfCallable(vm, pos[i+1])
		}
	}
	if i < len(pos) {
		return callIfCallable(vm, pos[i])
	}
	return Null{}, nil
}

func kernelWhile(vm *VM, args Args) (Value, error) {
	cond, err := args.Get(0)
	if err != nil {
		return nil, err
	}
	body, err := args.Get(1)
	if err != nil {
		return nil, err
	}
	result := Value(Null{})
	for {
		c, err := callIfCallable(vm, cond)
		if err != nil {
			return nil, err
		}
		if !Truthy(c) {
			return result, nil
		}
		result, err = callIfCallable(vm, body)
		if err != nil {
			return nil, err
		}
	}
}

// callIfCallable calls blocks and bound functions with no arguments
// and passes every other value through; it is how the kernel functions
// accept either values or deferred bodies.
func callIfCallable(vm *VM, v Value) (Value, error) {
	switch v.(type) {
	case *Block, *BoundFn, *NativeFn:
		return Call(vm, v, Args{})
	default:
		return v, nil
	}
}
