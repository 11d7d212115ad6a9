// Copyright 2022 Questlang. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package quest

// BoundFn pairs a receiver with a callable attribute; calling it
// passes the receiver as the implicit first argument.
type BoundFn struct {
	Base
	receiver Value
	fn       Value
}

func (b *BoundFn) base() *Base { return &b.Base }

func (*BoundFn) TypeName() string { return "BoundFn" }

func (b *BoundFn) Inspect() string {
	return "<bound:" + b.receiver.Inspect() + ">"
}

// Receiver returns the object the function is bound to.
func (b *BoundFn) Receiver() Value { return b.receiver }

// Fn returns the raw attribute the receiver is bound to.
func (b *BoundFn) Fn() Value { return b.fn }
