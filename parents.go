// Copyright 2022 Questlang. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package quest

// parentsStore holds an object's parents: none, a single reference, or
// a list. The list form is owned by the object; flagMultiParent on the
// owning header mirrors which form is active.
type parentsStore struct {
	single Value
	list   *List
}

// slice returns a read-only view of the parents in declaration order.
func (p *parentsStore) slice() []Value {
	if p.list != nil {
		return p.list.items
	}
	if p.single != nil {
		return []Value{p.single}
	}
	return nil
}

func (b *Base) setSingleParent(v Value) {
	b.parents.single = v
	b.parents.list = nil
	b.clearFlag(flagMultiParent)
}

func (b *Base) setParentsList(l *List) {
	b.parents.single = nil
	b.parents.list = l
	b.setFlag(flagMultiParent)
}

// parentsList upgrades the store to list form and returns the mutable
// list, so callers can append and have the object observe the change.
func (b *Base) parentsList() *List {
	if b.parents.list == nil {
		l := &List{}
		l.setTypeTag(tagList)
		if b.parents.single != nil {
			l.items = append(l.items, b.parents.single)
		}
		b.setParentsList(l)
	}
	return b.parents.list
}

// Parents returns obj's parent list, upgrading a singular parent to a
// list if needed. Immediates answer with their class.
func Parents(obj Value) *List {
	if a, ok := obj.(attributed); ok {
		return a.base().parentsList()
	}
	l := &List{}
	l.setTypeTag(tagList)
	if cls := classOf(obj); cls != nil {
		l.items = append(l.items, cls)
	}
	return l
}
