// Copyright 2022 Questlang. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package quest

import "sync"

// Class is a built-in class singleton: a named object whose attribute
// table holds the type's methods and constants. Immediates resolve
// attributes through their class; heap values inherit from it via
// their parent chain.
//
// Classes stay mutable on purpose: idiomatic Quest extends them
// (`Integer.divides? = ...`).
type Class struct {
	Base
	name string
}

func (c *Class) base() *Base { return &c.Base }

func (*Class) TypeName() string { return "Class" }

func (c *Class) Inspect() string { return c.name }

// Name returns the class name.
func (c *Class) Name() string { return c.name }

type classEntry struct {
	key   Intern
	value Value
}

// newClass builds a class with the given parent and attribute entries.
// Entries use interned keys only, so the table operations never need a
// VM during initialization.
func newClass(name string, parent Value, entries ...classEntry) *Class {
	c := &Class{name: name}
	c.setTypeTag(tagClass)
	if parent != nil {
		c.setSingleParent(parent)
	}
	for _, e := range entries {
		if err := c.attrs.set(nil, &c.Base, e.key, e.value); err != nil {
			panic(err)
		}
	}
	return c
}

// method wraps a typed Go function as a NativeFn that peels the
// receiver off, unboxes it, and type-checks it.
func method[T Value](sym Intern, fn func(vm *VM, this T, args Args) (Value, error)) classEntry {
	var zero T
	want := zero.TypeName()
	return classEntry{key: sym, value: &NativeFn{
		Name: sym.String(),
		Fn: func(vm *VM, args Args) (Value, error) {
			this, rest, err := args.SplitFirst()
			if err != nil {
				return nil, err
			}
			t, ok := unwrap(this).(T)
			if !ok {
				return nil, errInvalidType(want, this.TypeName())
			}
			return fn(vm, t, rest)
		},
	}}
}

// function wraps an untyped Go function; the receiver, if any, stays
// inside args.
func function(sym Intern, fn func(vm *VM, args Args) (Value, error)) classEntry {
	return classEntry{key: sym, value: &NativeFn{Name: sym.String(), Fn: fn}}
}

// constant installs a plain value.
func constant(sym Intern, v Value) classEntry {
	return classEntry{key: sym, value: v}
}

var (
	classOnce sync.Once

	objectClassV   *Class
	kernelClassV   *Class
	integerClassV  *Class
	floatClassV    *Class
	booleanClassV  *Class
	nullClassV     *Class
	textClassV     *Class
	listClassV     *Class
	frameClassV    *Class
	blockClassV    *Class
	boundFnClassV  *Class
	nativeFnClassV *Class
)

// initClasses builds every singleton in dependency order. Kernel's
// class constants are patched in afterwards since Kernel and the
// classes reference each other.
func initClasses() {
	classOnce.Do(func() {
		objectClassV = objectClassDef()
		textClassV = textClassDef()
		integerClassV = integerClassDef()
		floatClassV = floatClassDef()
		booleanClassV = booleanClassDef()
		nullClassV = nullClassDef()
		listClassV = listClassDef()
		boundFnClassV = boundFnClassDef()
		nativeFnClassV = nativeFnClassDef()
		kernelClassV = kernelClassDef()
		frameClassV = frameClassDef()
		blockClassV = blockClassDef()

		kernelConstants(kernelClassV)
		wireFrameBlockConstants(kernelClassV)
	})
}

func objectClass() *Class   { initClasses(); return objectClassV }
func kernelClass() *Class   { initClasses(); return kernelClassV }
func integerClass() *Class  { initClasses(); return integerClassV }
func floatClass() *Class    { initClasses(); return floatClassV }
func booleanClass() *Class  { initClasses(); return booleanClassV }
func nullClass() *Class     { initClasses(); return nullClassV }
func textClass() *Class     { initClasses(); return textClassV }
func listClass() *Class     { initClasses(); return listClassV }
func frameClass() *Class    { initClasses(); return frameClassV }
func blockClass() *Class    { initClasses(); return blockClassV }
func boundFnClass() *Class  { initClasses(); return boundFnClassV }
func nativeFnClass() *Class { initClasses(); return nativeFnClassV }

// classOf maps a value to its class; used when an immediate needs a
// parent (attribute reads and boxing).
func classOf(v Value) *Class {
	switch v.(type) {
	case Integer:
		return integerClass()
	case Float:
		return floatClass()
	case Boolean:
		return booleanClass()
	case Null:
		return nullClass()
	case Intern:
		return textClass()
	case *NativeFn:
		return nativeFnClass()
	case *Text:
		return textClass()
	case *List:
		return listClass()
	case *Block:
		return blockClass()
	case *Frame:
		return frameClass()
	case *BoundFn:
		return boundFnClass()
	case *Class:
		return objectClass()
	default:
		return objectClass()
	}
}

func boundFnClassDef() *Class {
	return newClass("BoundFn", objectClassV,
		method(SymOpCall, func(vm *VM, this *BoundFn, args Args) (Value, error) {
			return Call(vm, this.fn, args.WithSelf(this.receiver))
		}),
		method(SymDbg, func(vm *VM, this *BoundFn, args Args) (Value, error) {
			return NewText(this.Inspect()), nil
		}),
	)
}

func nativeFnClassDef() *Class {
	return newClass("NativeFn", objectClassV,
		method(SymOpCall, func(vm *VM, this *NativeFn, args Args) (Value, error) {
			return this.Fn(vm, args)
		}),
		method(SymDbg, func(vm *VM, this *NativeFn, args Args) (Value, error) {
			return NewText(this.Inspect()), nil
		}),
	)
}
