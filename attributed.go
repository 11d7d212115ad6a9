// Copyright 2022 Questlang. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package quest

// The attribute protocol: resolution walks an object's own table, then
// its parents depth-first in declaration order, with a visited set so
// cyclic parent graphs terminate. Immediates have no header; reads
// resolve through their class, and the first write boxes them (see
// SetAttr).

// getUnboundAttr resolves key on obj without method binding.
func getUnboundAttr(vm *VM, obj Value, key Value) (Value, error) {
	return getUnboundAttrChecked(vm, obj, key, make(map[*Base]bool))
}

func getUnboundAttrChecked(vm *VM, obj Value, key Value, visited map[*Base]bool) (Value, error) {
	if isParentsKey(key) {
		return Parents(obj), nil
	}
	a, ok := obj.(attributed)
	if !ok {
		cls := classOf(obj)
		if cls == nil {
			return nil, nil
		}
		return getUnboundAttrChecked(vm, cls, key, visited)
	}
	b := a.base()
	if visited[b] {
		return nil, nil
	}
	if err := b.borrow(obj); err != nil {
		return nil, err
	}
	v, err := b.attrs.get(vm, key)
	b.unborrow()
	if err != nil || v != nil {
		return v, err
	}
	visited[b] = true
	for _, parent := range b.parents.slice() {
		v, err := getUnboundAttrChecked(vm, parent, key, visited)
		if err != nil || v != nil {
			return v, err
		}
	}
	return nil, nil
}

// GetAttr resolves key on obj and binds callable results to obj, so
// `obj.method` yields a bound function. A nil result means the
// attribute does not exist.
func GetAttr(vm *VM, obj Value, key Value) (Value, error) {
	v, err := getUnboundAttr(vm, obj, key)
	if err != nil || v == nil {
		return nil, err
	}
	if isCallable(vm, v) {
		bf := &BoundFn{receiver: obj, fn: v}
		bf.setTypeTag(tagBoundFn)
		bf.setSingleParent(boundFnClass())
		return bf, nil
	}
	return v, nil
}

// GetUnboundAttr resolves key on obj without wrapping callables.
func GetUnboundAttr(vm *VM, obj Value, key Value) (Value, error) {
	return getUnboundAttr(vm, obj, key)
}

// TryGetAttr is GetAttr, with absence reported as UnknownAttribute.
func TryGetAttr(vm *VM, obj Value, key Value) (Value, error) {
	v, err := GetAttr(vm, obj, key)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, errUnknownAttribute(obj, key)
	}
	return v, nil
}

// TryGetUnboundAttr is GetUnboundAttr with absence as an error.
func TryGetUnboundAttr(vm *VM, obj Value, key Value) (Value, error) {
	v, err := getUnboundAttr(vm, obj, key)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, errUnknownAttribute(obj, key)
	}
	return v, nil
}

// HasAttr reports whether key resolves on obj or any parent.
func HasAttr(vm *VM, obj Value, key Value) (bool, error) {
	v, err := getUnboundAttr(vm, obj, key)
	return v != nil, err
}

// SetAttr writes key on *slot. Heap objects are written in place; an
// immediate is first boxed into a wrapper object whose parent is the
// immediate's class, and the wrapper replaces *slot. That is why the
// holding variable is passed by pointer.
func SetAttr(vm *VM, slot *Value, key, value Value) error {
	obj := *slot
	if a, ok := obj.(attributed); ok {
		b := a.base()
		if isParentsKey(key) {
			if b.Frozen() {
				return errValueFrozen(obj)
			}
			return setParentsAttr(b, value)
		}
		if err := b.borrowMutably(obj); err != nil {
			return err
		}
		err := b.attrs.set(vm, b, key, value)
		b.unborrowMutably()
		return err
	}
	w := newWrapper(obj)
	if isParentsKey(key) {
		if err := setParentsAttr(&w.Base, value); err != nil {
			return err
		}
	} else if err := w.attrs.set(vm, &w.Base, key, value); err != nil {
		return err
	}
	*slot = w
	return nil
}

func setParentsAttr(b *Base, value Value) error {
	if l, ok := value.(*List); ok {
		b.setParentsList(l)
		return nil
	}
	b.setSingleParent(value)
	return nil
}

// DelAttr removes key from obj's own table, returning the prior value.
// Deleting from an immediate fails silently; a parent's copy of the
// attribute is never touched.
func DelAttr(vm *VM, obj Value, key Value) (Value, error) {
	a, ok := obj.(attributed)
	if !ok {
		return nil, nil
	}
	b := a.base()
	if b.Frozen() {
		return nil, errValueFrozen(obj)
	}
	if err := b.borrowMutably(obj); err != nil {
		return nil, err
	}
	v, err := b.attrs.del(vm, key)
	b.unborrowMutably()
	return v, err
}

// Freeze marks obj immutable; immediates already are.
func Freeze(obj Value) {
	if a, ok := obj.(attributed); ok {
		a.base().Freeze()
	}
}

func isParentsKey(key Value) bool {
	return normalizeKey(key) == Value(SymParentsAttr)
}
