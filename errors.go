// Copyright 2022 Questlang. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package quest

import (
	"fmt"
	"strings"
)

// ErrorKind tags every runtime failure the interpreter can produce.
type ErrorKind int

const (
	// KindMessage is a free-form error with only a message payload.
	KindMessage ErrorKind = iota

	// KindAlreadyLocked means a borrow could not be taken: a shared
	// borrow met an active exclusive one, or an exclusive borrow met any
	// active borrow.
	KindAlreadyLocked

	// KindValueFrozen means a mutation was attempted on a frozen value.
	KindValueFrozen

	// KindUnknownAttribute means attribute resolution walked the whole
	// parent graph without a hit.
	KindUnknownAttribute

	// KindMissingPositionalArgument means a callee read an argument
	// index past the end of the positional list.
	KindMissingPositionalArgument

	// KindMissingKeywordArgument means a required keyword was absent.
	KindMissingKeywordArgument

	// KindInvalidTypeGiven means a conversion received the wrong
	// runtime type.
	KindInvalidTypeGiven

	// KindConversionFailed means a to_xxx conversion did not produce a
	// value of the target type.
	KindConversionFailed

	// KindReturn is the non-local unwind used by `return`; it is caught
	// by the frame it targets and is not user-visible unless it escapes
	// the whole program.
	KindReturn

	// KindKeywordsGivenWhenNotExpected means keyword arguments were
	// passed to a callee that takes none.
	KindKeywordsGivenWhenNotExpected

	// KindPositionalArgumentMismatch means the positional argument count
	// did not fit the callee: more than a block has named slots for, or
	// not the exact count a builtin checks with AssertPositionalLen.
	KindPositionalArgumentMismatch

	// KindStackframeIsCurrentlyRunning means a frame was re-entered
	// while already executing.
	KindStackframeIsCurrentlyRunning

	// KindStackOverflow means the call-depth limit was exceeded.
	KindStackOverflow

	// KindAssertionFailed is raised by Kernel's assert.
	KindAssertionFailed

	// KindStopIteration terminates the iterator protocol.
	KindStopIteration
)

func (k ErrorKind) String() string {
	switch k {
	case KindMessage:
		return "Message"
	case KindAlreadyLocked:
		return "AlreadyLocked"
	case KindValueFrozen:
		return "ValueFrozen"
	case KindUnknownAttribute:
		return "UnknownAttribute"
	case KindMissingPositionalArgument:
		return "MissingPositionalArgument"
	case KindMissingKeywordArgument:
		return "MissingKeywordArgument"
	case KindInvalidTypeGiven:
		return "InvalidTypeGiven"
	case KindConversionFailed:
		return "ConversionFailed"
	case KindReturn:
		return "Return"
	case KindKeywordsGivenWhenNotExpected:
		return "KeywordsGivenWhenNotExpected"
	case KindPositionalArgumentMismatch:
		return "PositionalArgumentMismatch"
	case KindStackframeIsCurrentlyRunning:
		return "StackframeIsCurrentlyRunning"
	case KindStackOverflow:
		return "StackOverflow"
	case KindAssertionFailed:
		return "AssertionFailed"
	case KindStopIteration:
		return "StopIteration"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is the runtime error type. Value and Attr carry the payload
// values of kinds that have one; Given/Expected carry counts or an
// index; GivenName/WantName carry type names; Trace is filled in by the
// first frame the error unwinds through.
type Error struct {
	Kind      ErrorKind
	Message   string
	Value     Value
	Attr      Value
	FromFrame Value
	Given     int
	Expected  int
	GivenName string
	WantName  string
	Location  *SourceLocation
	Trace     []SourceLocation
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindMessage:
		return e.Message
	case KindAlreadyLocked:
		return fmt.Sprintf("value %s is already locked", inspect(e.Value))
	case KindValueFrozen:
		return fmt.Sprintf("value %s is frozen", inspect(e.Value))
	case KindUnknownAttribute:
		return fmt.Sprintf("unknown attribute %s for %s", inspect(e.Attr), inspect(e.Value))
	case KindMissingPositionalArgument:
		return fmt.Sprintf("missing positional argument %d", e.Given)
	case KindMissingKeywordArgument:
		return fmt.Sprintf("missing keyword argument %q", e.Message)
	case KindInvalidTypeGiven:
		return fmt.Sprintf("invalid type %q, expected %q", e.GivenName, e.WantName)
	case KindConversionFailed:
		return fmt.Sprintf("conversion %s failed for %s", e.Message, inspect(e.Value))
	case KindReturn:
		return fmt.Sprintf("returning value %s from frame %s", inspect(e.Value), inspect(e.FromFrame))
	case KindKeywordsGivenWhenNotExpected:
		return "keyword arguments given when none expected"
	case KindPositionalArgumentMismatch:
		return fmt.Sprintf("positional argument count mismatch (given %d expected %d)",
			e.Given, e.Expected)
	case KindStackframeIsCurrentlyRunning:
		return fmt.Sprintf("frame %s is currently executing", inspect(e.Value))
	case KindStackOverflow:
		return "stack overflow"
	case KindAssertionFailed:
		if e.Value != nil {
			return fmt.Sprintf("assertion failed: %s", inspect(e.Value))
		}
		return "assertion failed"
	case KindStopIteration:
		return "stop iteration"
	}
	return e.Kind.String()
}

func inspect(v Value) string {
	if v == nil {
		return "<none>"
	}
	return v.Inspect()
}

// Stacktrace renders the frame locations active when the error was
// raised, innermost first.
func (e *Error) Stacktrace() string {
	if len(e.Trace) == 0 {
		return "(no stack trace)"
	}
	var b strings.Builder
	for i := len(e.Trace) - 1; i >= 0; i-- {
		fmt.Fprintf(&b, "\tat %s\n", e.Trace[i])
	}
	return b.String()
}

func errMessage(format string, a ...interface{}) *Error {
	return &Error{Kind: KindMessage, Message: fmt.Sprintf(format, a...)}
}

func errAlreadyLocked(v Value) *Error {
	return &Error{Kind: KindAlreadyLocked, Value: v}
}

func errValueFrozen(v Value) *Error {
	return &Error{Kind: KindValueFrozen, Value: v}
}

func errUnknownAttribute(obj, attr Value) *Error {
	return &Error{Kind: KindUnknownAttribute, Value: obj, Attr: attr}
}

func errMissingPositional(index int) *Error {
	return &Error{Kind: KindMissingPositionalArgument, Given: index}
}

func errInvalidType(expected, given string) *Error {
	return &Error{Kind: KindInvalidTypeGiven, WantName: expected, GivenName: given}
}

func errConversionFailed(v Value, target string) *Error {
	return &Error{Kind: KindConversionFailed, Value: v, Message: target}
}

func errReturn(value Value, fromFrame Value) *Error {
	return &Error{Kind: KindReturn, Value: value, FromFrame: fromFrame}
}

func errPositionalMismatch(given, expected int) *Error {
	return &Error{Kind: KindPositionalArgumentMismatch, Given: given, Expected: expected}
}

func errCurrentlyRunning(frame Value) *Error {
	return &Error{Kind: KindStackframeIsCurrentlyRunning, Value: frame}
}

func errStackOverflow() *Error {
	return &Error{Kind: KindStackOverflow}
}

func errStopIteration() *Error {
	return &Error{Kind: KindStopIteration}
}
