// Copyright 2022 Questlang. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package quest

import "strings"

// toText renders v as a plain string, dispatching to_text for objects
// that define it.
func toText(vm *VM, v Value) (string, error) {
	switch t := unwrap(v).(type) {
	case *Text:
		return t.str, nil
	case Integer, Float, Boolean, Null, Intern:
		return t.Inspect(), nil
	case *List:
		parts := make([]string, len(t.items))
		for i, e := range t.items {
			s, err := toDebugText(vm, e)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	default:
		r, err := getUnboundAttr(vm, v, SymToText)
		if err != nil {
			return "", err
		}
		if r == nil {
			return v.Inspect(), nil
		}
		out, err := Call(vm, r, NewArgs().WithSelf(v))
		if err != nil {
			return "", err
		}
		if t, ok := unwrap(out).(*Text); ok {
			return t.str, nil
		}
		return "", errConversionFailed(v, "to_text")
	}
}

// toDebugText is toText except texts keep their quotes.
func toDebugText(vm *VM, v Value) (string, error) {
	if t, ok := unwrap(v).(*Text); ok {
		return t.Inspect(), nil
	}
	return toText(vm, v)
}

func argInteger(args Args, idx int) (Integer, error) {
	v, err := args.Get(idx)
	if err != nil {
		return 0, err
	}
	i, ok := unwrap(v).(Integer)
	if !ok {
		return 0, errInvalidType("Integer", v.TypeName())
	}
	return i, nil
}

// asNumber widens an integer to float for mixed arithmetic.
func asNumber(v Value) (Float, bool) {
	switch t := unwrap(v).(type) {
	case Integer:
		return Float(t), true
	case Float:
		return t, true
	}
	return 0, false
}
