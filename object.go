// Copyright 2022 Questlang. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package quest

// Object is the plain heap object: just a header, plus an optional
// boxed immediate. The boxed form is what an immediate turns into the
// first time an attribute is set on it.
type Object struct {
	Base
	data Value
}

func (o *Object) base() *Base { return &o.Base }

func (*Object) TypeName() string { return "Object" }

func (o *Object) Inspect() string {
	if o.data != nil {
		return o.data.Inspect()
	}
	return "<object>"
}

// NewObject allocates an empty object whose parent is the Object class.
func NewObject() *Object {
	o := &Object{}
	o.setTypeTag(tagObject)
	o.setSingleParent(objectClass())
	return o
}

// newWrapper boxes an immediate scalar; the wrapper inherits from the
// scalar's class so the original's methods keep resolving, and unwrap
// recovers the scalar for those methods.
func newWrapper(data Value) *Object {
	o := &Object{data: data}
	o.setTypeTag(tagObject)
	if cls := classOf(data); cls != nil {
		o.setSingleParent(cls)
	}
	return o
}

// unwrap recovers the immediate inside a boxed wrapper; every other
// value passes through unchanged.
func unwrap(v Value) Value {
	if o, ok := v.(*Object); ok && o.data != nil {
		return o.data
	}
	return v
}

func objectClassDef() *Class {
	return newClass("Object", nil,
		function(SymOpEql, func(vm *VM, args Args) (Value, error) {
			this, rest, err := args.SplitFirst()
			if err != nil {
				return nil, err
			}
			rhs, err := rest.Get(0)
			if err != nil {
				return nil, err
			}
			return Boolean(Identical(unwrap(this), unwrap(rhs))), nil
		}),
		function(SymOpNeq, func(vm *VM, args Args) (Value, error) {
			this, rest, err := args.SplitFirst()
			if err != nil {
				return nil, err
			}
			rhs, err := rest.Get(0)
			if err != nil {
				return nil, err
			}
			eq, err := CallAttr(vm, this, SymOpEql, NewArgs(rhs))
			if err != nil {
				return nil, err
			}
			return Boolean(!Truthy(eq)), nil
		}),
		function(SymOpNot, func(vm *VM, args Args) (Value, error) {
			this, _, err := args.SplitFirst()
			if err != nil {
				return nil, err
			}
			return Boolean(!Truthy(this)), nil
		}),
		function(SymToBool, func(vm *VM, args Args) (Value, error) {
			this, _, err := args.SplitFirst()
			if err != nil {
				return nil, err
			}
			return Boolean(Truthy(this)), nil
		}),
		function(SymToText, func(vm *VM, args Args) (Value, error) {
			this, _, err := args.SplitFirst()
			if err != nil {
				return nil, err
			}
			return NewText(this.Inspect()), nil
		}),
		function(SymDbg, func(vm *VM, args Args) (Value, error) {
			this, _, err := args.SplitFirst()
			if err != nil {
				return nil, err
			}
			s, err := toDebugText(vm, this)
			if err != nil {
				return nil, err
			}
			return NewText(s), nil
		}),
		function(SymHash, func(vm *VM, args Args) (Value, error) {
			this, _, err := args.SplitFirst()
			if err != nil {
				return nil, err
			}
			h, err := TryHash(vm, this)
			if err != nil {
				return nil, err
			}
			return Integer(h), nil
		}),
		function(SymItself, func(vm *VM, args Args) (Value, error) {
			return args.Self()
		}),
		function(SymFreeze, func(vm *VM, args Args) (Value, error) {
			this, _, err := args.SplitFirst()
			if err != nil {
				return nil, err
			}
			Freeze(this)
			return this, nil
		}),
		function(SymTap, func(vm *VM, args Args) (Value, error) {
			this, rest, err := args.SplitFirst()
			if err != nil {
				return nil, err
			}
			fn, err := rest.Get(0)
			if err != nil {
				return nil, err
			}
			if _, err := Call(vm, fn, NewArgs(this)); err != nil {
				return nil, err
			}
			return this, nil
		}),
		function(SymPipe, func(vm *VM, args Args) (Value, error) {
			this, rest, err := args.SplitFirst()
			if err != nil {
				return nil, err
			}
			fn, err := rest.Get(0)
			if err != nil {
				return nil, err
			}
			return Call(vm, fn, NewArgs(this))
		}),
		// then calls its argument when the receiver is truthy and
		// otherwise returns the receiver; else is the mirror image.
		function(SymThen, func(vm *VM, args Args) (Value, error) {
			this, rest, err := args.SplitFirst()
			if err != nil {
				return nil, err
			}
			if !Truthy(this) {
				return this, nil
			}
			fn, err := rest.Get(0)
			if err != nil {
				return nil, err
			}
			return callIfCallable(vm, fn)
		}),
		function(SymAndThen, func(vm *VM, args Args) (Value, error) {
			this, rest, err := args.SplitFirst()
			if err != nil {
				return nil, err
			}
			if !Truthy(this) {
				return this, nil
			}
			fn, err := rest.Get(0)
			if err != nil {
				return nil, err
			}
			return Call(vm, fn, NewArgs(this))
		}),
		function(SymElse, func(vm *VM, args Args) (Value, error) {
			this, rest, err := args.SplitFirst()
			if err != nil {
				return nil, err
			}
			if Truthy(this) {
				return this, nil
			}
			fn, err := rest.Get(0)
			if err != nil {
				return nil, err
			}
			return callIfCallable(vm, fn)
		}),
		function(SymOrElse, func(vm *VM, args Args) (Value, error) {
			this, rest, err := args.SplitFirst()
			if err != nil {
				return nil, err
			}
			if Truthy(this) {
				return this, nil
			}
			fn, err := rest.Get(0)
			if err != nil {
				return nil, err
			}
			return Call(vm, fn, NewArgs(this))
		}),
		function(SymAnd, func(vm *VM, args Args) (Value, error) {
			this, rest, err := args.SplitFirst()
			if err != nil {
				return nil, err
			}
			if !Truthy(this) {
				return this, nil
			}
			return rest.Get(0)
		}),
		function(SymOr, func(vm *VM, args Args) (Value, error) {
			this, rest, err := args.SplitFirst()
			if err != nil {
				return nil, err
			}
			if Truthy(this) {
				return this, nil
			}
			return rest.Get(0)
		}),
		// return raises the non-local unwind. `value.return(frame?)`
		// returns value from frame (innermost when absent);
		// `frame.return(value?)` returns value from that frame.
		function(SymReturn, func(vm *VM, args Args) (Value, error) {
			this, rest, err := args.SplitFirst()
			if err != nil {
				return nil, err
			}
			if frame, ok := this.(*Frame); ok {
				value := Value(Null{})
				if v, err := rest.Get(0); err == nil {
					value = v
				}
				return nil, errReturn(value, frame)
			}
			var from Value
			if v, err := rest.Get(0); err == nil {
				from = v
			}
			return nil, errReturn(this, from)
		}),
	)
}
