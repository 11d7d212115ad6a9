// Copyright 2022 Questlang. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package quest

// Args carries a call's positional arguments plus the optional bound
// receiver a BoundFn prepends.
type Args struct {
	this       Value
	positional []Value
}

// NewArgs builds positional-only arguments.
func NewArgs(positional ...Value) Args {
	return Args{positional: positional}
}

// WithSelf returns a copy of a with the bound receiver set.
func (a Args) WithSelf(this Value) Args {
	a.this = this
	return a
}

// Self returns the bound receiver, or the first positional argument
// when the call was not made through a bound function.
func (a Args) Self() (Value, error) {
	if a.this != nil {
		return a.this, nil
	}
	if len(a.positional) > 0 {
		return a.positional[0], nil
	}
	return nil, errMissingPositional(0)
}

// SplitFirst peels the receiver (or first positional) off, returning
// the rest as plain positional args.
func (a Args) SplitFirst() (Value, Args, error) {
	if a.this != nil {
		return a.this, Args{positional: a.positional}, nil
	}
	if len(a.positional) > 0 {
		return a.positional[0], Args{positional: a.positional[1:]}, nil
	}
	return nil, Args{}, errMissingPositional(0)
}

// Positional returns the positional arguments, excluding the receiver.
func (a Args) Positional() []Value {
	return a.positional
}

// Len counts every argument, receiver included.
func (a Args) Len() int {
	n := len(a.positional)
	if a.this != nil {
		n++
	}
	return n
}

// Get returns the idx-th positional argument.
func (a Args) Get(idx int) (Value, error) {
	if idx < 0 || idx >= len(a.positional) {
		return nil, errMissingPositional(idx)
	}
	return a.positional[idx], nil
}

// AssertPositionalLen fails unless exactly n positional args are given.
func (a Args) AssertPositionalLen(n int) error {
	if len(a.positional) != n {
		return errPositionalMismatch(len(a.positional), n)
	}
	return nil
}

// AssertNoArguments fails if any positional argument is present.
func (a Args) AssertNoArguments() error {
	return a.AssertPositionalLen(0)
}
