// Copyright 2022 Questlang. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package quest

import "sync/atomic"

// Flag layout within Base.flags: bits 0-3 hold the type tag, bits 4-19
// are free for each type's own use, bits 20 and up are internal.
const (
	typeTagMask = 0x0f

	userFlagShift = 4
	userFlagMask  = 0xffff << userFlagShift

	flagFrozen      = 1 << 20
	flagAttrMap     = 1 << 21
	flagMultiParent = 1 << 22

	// reserved for a future collector
	flagGCMark0 = 1 << 23
	flagGCMark1 = 1 << 24
)

// Type tags stored in the low bits of the flags word. Go's dynamic
// types already discriminate heap values; the tag exists so a header
// can be inspected without knowing the concrete type.
const (
	tagObject = iota
	tagText
	tagList
	tagBlock
	tagFrame
	tagBoundFn
	tagClass
)

// userFlag returns the n-th per-type flag bit.
func userFlag(n uint) uint32 {
	return 1 << (userFlagShift + n)
}

// Borrow-counter states: 0 is unborrowed, 1..=maxBorrows are shared
// immutable borrows, borrowMut is the exclusive state.
const (
	borrowMut  = ^uint32(0)
	maxBorrows = borrowMut - 1
)

// Base is the header every heap value begins with: the flags word, the
// borrow counter, the attribute table and the parent store.
type Base struct {
	flags   uint32
	borrows uint32
	attrs   attrTable
	parents parentsStore
}

func (b *Base) loadFlags() uint32 {
	return atomic.LoadUint32(&b.flags)
}

func (b *Base) hasFlag(mask uint32) bool {
	return b.loadFlags()&mask != 0
}

func (b *Base) setFlag(mask uint32) {
	for {
		cur := atomic.LoadUint32(&b.flags)
		if cur&mask == mask {
			return
		}
		if atomic.CompareAndSwapUint32(&b.flags, cur, cur|mask) {
			return
		}
	}
}

func (b *Base) clearFlag(mask uint32) {
	for {
		cur := atomic.LoadUint32(&b.flags)
		if atomic.CompareAndSwapUint32(&b.flags, cur, cur&^mask) {
			return
		}
	}
}

// tryAcquireFlag sets mask and reports whether this caller set it; a
// false return means it was already set.
func (b *Base) tryAcquireFlag(mask uint32) bool {
	for {
		cur := atomic.LoadUint32(&b.flags)
		if cur&mask != 0 {
			return false
		}
		if atomic.CompareAndSwapUint32(&b.flags, cur, cur|mask) {
			return true
		}
	}
}

func (b *Base) setTypeTag(tag uint32) {
	b.flags = b.flags&^typeTagMask | tag&typeTagMask
}

func (b *Base) typeTag() uint32 {
	return b.loadFlags() & typeTagMask
}

// Freeze marks the value immutable; it is idempotent.
func (b *Base) Freeze() {
	b.setFlag(flagFrozen)
}

// Frozen reports whether the value rejects mutation.
func (b *Base) Frozen() bool {
	return b.hasFlag(flagFrozen)
}

// borrow takes a shared borrow. It fails if an exclusive borrow is
// active or the shared count is exhausted.
func (b *Base) borrow(self Value) error {
	for {
		cur := atomic.LoadUint32(&b.borrows)
		if cur == borrowMut {
			return errAlreadyLocked(self)
		}
		if cur == maxBorrows {
			return errMessage("too many concurrent borrows")
		}
		if atomic.CompareAndSwapUint32(&b.borrows, cur, cur+1) {
			return nil
		}
	}
}

func (b *Base) unborrow() {
	atomic.AddUint32(&b.borrows, ^uint32(0))
}

// borrowMutably takes the exclusive borrow. Frozen values and values
// with any active borrow refuse.
func (b *Base) borrowMutably(self Value) error {
	if b.Frozen() {
		return errValueFrozen(self)
	}
	if !atomic.CompareAndSwapUint32(&b.borrows, 0, borrowMut) {
		return errAlreadyLocked(self)
	}
	return nil
}

func (b *Base) unborrowMutably() {
	atomic.StoreUint32(&b.borrows, 0)
}
