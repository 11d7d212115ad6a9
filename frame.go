// Copyright 2022 Questlang. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package quest

import (
	"encoding/binary"
	"fmt"
)

// Frame user flags.
var (
	flagCurrentlyRunning = userFlag(0)
	flagIsObject         = userFlag(1)
)

// Frame is the activation record of one block call. Locals live in
// flat arrays until the frame is materialized as an object (captured
// via :N or written through), at which point the named locals move
// into the attribute table and reads and writes route through it.
type Frame struct {
	Base
	block   *Block
	inner   *blockInner
	pc      int
	unnamed []Value
	named   []Value
}

func (f *Frame) base() *Base { return &f.Base }

func (*Frame) TypeName() string { return "Frame" }

func (f *Frame) Inspect() string {
	return fmt.Sprintf("<frame:%s>", f.inner.location)
}

// NewFrame builds a frame for one call of block. Positional arguments
// land in the named slots after the two reserved ones; giving more
// than the block declares is an error.
func NewFrame(block *Block, args Args) (*Frame, error) {
	inner := block.inner
	given := len(args.positional)
	if args.this != nil {
		given++
	}
	if given > len(inner.namedLocals)-reservedLocals {
		return nil, errPositionalMismatch(given, len(inner.namedLocals)-reservedLocals)
	}

	f := &Frame{
		block:   block,
		inner:   inner,
		unnamed: make([]Value, inner.numUnnamed),
		named:   make([]Value, len(inner.namedLocals)),
	}
	f.setTypeTag(tagFrame)
	f.setSingleParent(block)

	// The scratch register defaults to null.
	f.unnamed[0] = Null{}

	f.named[selfBlockSlot] = block
	f.named[argsSlot] = NewList(append([]Value(nil), args.positional...)...)
	slot := reservedLocals
	if args.this != nil {
		f.named[slot] = args.this
		slot++
	}
	for _, arg := range args.positional {
		f.named[slot] = arg
		slot++
	}
	return f, nil
}

// Block returns the block this frame runs.
func (f *Frame) Block() *Block { return f.block }

func (f *Frame) isObject() bool {
	return f.hasFlag(flagIsObject)
}

// promote materializes the frame as a full object: every assigned
// named local is copied into the attribute table, the parent chain
// gains the Frame class, and IS_OBJECT flips so later local access
// goes through the table.
func (f *Frame) promote(vm *VM) error {
	if !f.tryAcquireFlag(flagIsObject) {
		return nil
	}
	f.setParentsList(newList(frameClass(), f.block))
	for i, v := range f.named {
		if v == nil {
			continue
		}
		if err := f.attrs.set(vm, &f.Base, f.inner.localKeys[i], v); err != nil {
			return err
		}
	}
	return nil
}

// getLocal reads a local target. Unassigned named slots fall back
// through the parent chain, which is how closures see outer variables.
func (f *Frame) getLocal(vm *VM, t int) (Value, error) {
	if t >= 0 {
		return f.unnamed[t], nil
	}
	idx := ^t
	if !f.isObject() {
		if v := f.named[idx]; v != nil {
			return v, nil
		}
	}
	return f.getObjectLocal(vm, idx)
}

func (f *Frame) getObjectLocal(vm *VM, idx int) (Value, error) {
	key := f.inner.localKeys[idx]
	v, err := getUnboundAttrChecked(vm, f, key, make(map[*Base]bool))
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, errUnknownAttribute(f, key)
	}
	return v, nil
}

// setLocal writes a local target; writes always land on this frame,
// never a parent's.
func (f *Frame) setLocal(vm *VM, t int, v Value) error {
	if t >= 0 {
		f.unnamed[t] = v
		return nil
	}
	idx := ^t
	if !f.isObject() {
		f.named[idx] = v
		return nil
	}
	return f.attrs.set(vm, &f.Base, f.inner.localKeys[idx], v)
}

// rawNamedLocal reads a named slot for SetAttr's object operand,
// falling back through parents like an ordinary read.
func (f *Frame) rawNamedLocal(vm *VM, idx int) (Value, error) {
	if !f.isObject() {
		if v := f.named[idx]; v != nil {
			return v, nil
		}
	}
	return f.getObjectLocal(vm, idx)
}

func (f *Frame) done() bool {
	return f.pc >= len(f.inner.code)
}

func (f *Frame) nextByte() byte {
	b := f.inner.code[f.pc]
	f.pc++
	return b
}

func (f *Frame) nextWord() int {
	w := binary.NativeEndian.Uint64(f.inner.code[f.pc:])
	f.pc += 8
	return int(int64(w))
}

func (f *Frame) nextCount() int {
	b := f.nextByte()
	if b == countEscape {
		return f.nextWord()
	}
	return int(b)
}

func (f *Frame) nextLocalTarget() int {
	b := f.nextByte()
	if b == localEscape {
		return f.nextWord()
	}
	return int(int8(b))
}

func (f *Frame) nextLocal(vm *VM) (Value, error) {
	return f.getLocal(vm, f.nextLocalTarget())
}

// Run executes the frame from its current position. It catches the
// Return unwind when the return targets this frame; everything else
// propagates. A frame already running cannot be re-entered.
func (f *Frame) Run(vm *VM) (Value, error) {
	if !f.tryAcquireFlag(flagCurrentlyRunning) {
		return nil, errCurrentlyRunning(f)
	}
	if len(vm.frames) >= vm.maxDepth {
		f.clearFlag(flagCurrentlyRunning)
		return nil, errStackOverflow()
	}
	vm.frames = append(vm.frames, f)

	err := f.runInner(vm)

	if e, ok := err.(*Error); ok && e.Trace == nil {
		e.Trace = vm.captureTrace()
	}
	vm.frames = vm.frames[:len(vm.frames)-1]
	f.clearFlag(flagCurrentlyRunning)

	if err != nil {
		if e, ok := err.(*Error); ok && e.Kind == KindReturn {
			if e.FromFrame == nil || Identical(e.FromFrame, f) {
				return e.Value, nil
			}
		}
		return nil, err
	}
	return f.unnamed[0], nil
}

// Resume re-enters the frame from where it stopped; Restart resets it
// to the beginning first.
func (f *Frame) Resume(vm *VM) (Value, error) {
	return f.Run(vm)
}

func (f *Frame) Restart(vm *VM) (Value, error) {
	f.pc = 0
	return f.Run(vm)
}

func (f *Frame) runInner(vm *VM) error {
	// Fixed operands plus a variadic tail; CallAttrSimple carries the
	// most: two fixed plus up to maxSimpleArgs trailing.
	var operands [maxSimpleArgs + 4]Value

	for !f.done() {
		op := Opcode(f.nextByte())
		if !op.valid() {
			return errMessage("invalid opcode 0x%02x at %d", byte(op), f.pc-1)
		}
		dst := f.nextLocalTarget()

		nops := 0
		for i := 0; i < op.arity(); i++ {
			v, err := f.nextLocal(vm)
			if err != nil {
				return err
			}
			operands[nops] = v
			nops++
		}
		if op.variadic() {
			count := f.nextCount()
			for i := 0; i < count; i++ {
				v, err := f.nextLocal(vm)
				if err != nil {
					return err
				}
				operands[nops] = v
				nops++
			}
		}

		var result Value
		var err error

		switch op {
		case OpMov:
			result = operands[0]

		case OpConstLoad:
			result, err = f.loadConstant(vm, f.nextCount(), dst)

		case OpStackframe:
			result, err = f.loadStackframe(vm, f.nextCount())

		case OpCreateList:
			count := f.nextCount()
			list := NewList()
			for i := 0; i < count; i++ {
				v, lerr := f.nextLocal(vm)
				if lerr != nil {
					return lerr
				}
				list.items = append(list.items, v)
			}
			result = list

		case OpCreateListShort:
			// The operand buffer is reused per instruction; the list
			// needs its own copy.
			result = NewList(append([]Value(nil), operands[:nops]...)...)

		case OpCall, OpCallAttr:
			return errMessage("opcode %s is reserved", op)

		case OpCallSimple:
			result, err = Call(vm, operands[0], NewArgs(operands[1:nops]...))

		case OpCallAttrSimple:
			result, err = CallAttr(vm, operands[0], operands[1], NewArgs(operands[2:nops]...))

		case OpGetAttr:
			result, err = TryGetAttr(vm, operands[0], operands[1])

		case OpGetUnboundAttr:
			result, err = TryGetUnboundAttr(vm, operands[0], operands[1])

		case OpHasAttr:
			var ok bool
			ok, err = HasAttr(vm, operands[0], operands[1])
			result = Boolean(ok)

		case OpSetAttr:
			result, err = f.setAttrOp(vm, operands[0], operands[1])

		case OpDelAttr:
			result, err = DelAttr(vm, operands[0], operands[1])
			if result == nil {
				result = Null{}
			}

		case OpNot, OpNegate:
			result, err = CallAttr(vm, operands[0], operatorAttrFor(op), Args{})

		case OpIndex, OpIndexAssign:
			result, err = CallAttr(vm, operands[0], operatorAttrFor(op), NewArgs(operands[1:nops]...))

		default:
			// The remaining opcodes are the binary operators; integers
			// short-circuit, everything else dispatches the operator
			// attribute on the left operand.
			if l, ok := operands[0].(Integer); ok {
				if r, ok := operands[1].(Integer); ok {
					result, err = integerFastPath(vm, op, l, r)
					break
				}
			}
			result, err = CallAttr(vm, operands[0], operatorAttrFor(op), NewArgs(operands[1]))
		}

		if err != nil {
			return err
		}
		if err := f.setLocal(vm, dst, result); err != nil {
			return err
		}
	}
	return nil
}

// loadConstant resolves constant idx. Block constants are deep-cloned
// and capture this frame as a parent; if the destination is a named
// local the clone is named after it, after cloning.
func (f *Frame) loadConstant(vm *VM, idx int, dst int) (Value, error) {
	if idx < 0 || idx >= len(f.inner.constants) {
		return nil, errMessage("constant index %d out of range", idx)
	}
	c := f.inner.constants[idx]
	if t, ok := c.(*Text); ok {
		// Text literals load as fresh copies so mutating one does not
		// rewrite the constant pool.
		return NewText(t.str), nil
	}
	blk, ok := c.(*Block)
	if !ok {
		return c, nil
	}
	clone := blk.deepClone()
	if err := f.promote(vm); err != nil {
		return nil, err
	}
	clone.parentsList().Push(f)
	if dst < 0 {
		if err := clone.setName(vm, f.inner.namedLocals[^dst]); err != nil {
			return nil, err
		}
	}
	return clone, nil
}

func (f *Frame) loadStackframe(vm *VM, depth int) (Value, error) {
	if depth < 0 {
		depth += len(vm.frames)
		if depth < 0 {
			return nil, errMessage("stackframe depth out of range")
		}
	}
	if depth >= len(vm.frames) {
		return nil, errMessage("stackframe depth %d out of range", depth)
	}
	frame := vm.frames[len(vm.frames)-depth-1]
	if err := frame.promote(vm); err != nil {
		return nil, err
	}
	return frame, nil
}

// setAttrOp implements the SetAttr opcode: the object operand is a raw
// slot reference read after the attr and value operands. Writing to an
// unnamed slot still performs the attribute write for its side effect;
// writing to a named slot may box an immediate, and the boxed object
// is stored back so later reads observe it. Writing to the current
// frame itself promotes it.
func (f *Frame) setAttrOp(vm *VM, attr, value Value) (Value, error) {
	target := f.nextLocalTarget()
	if target >= 0 {
		obj := f.unnamed[target]
		if Identical(obj, f) {
			if err := f.promote(vm); err != nil {
				return nil, err
			}
			var slot Value = f
			if err := SetAttr(vm, &slot, attr, value); err != nil {
				return nil, err
			}
			return f, nil
		}
		if err := SetAttr(vm, &obj, attr, value); err != nil {
			return nil, err
		}
		return obj, nil
	}

	idx := ^target
	obj, err := f.rawNamedLocal(vm, idx)
	if err != nil {
		return nil, err
	}
	if Identical(obj, f) {
		if err := f.promote(vm); err != nil {
			return nil, err
		}
		var slot Value = f
		if err := SetAttr(vm, &slot, attr, value); err != nil {
			return nil, err
		}
		return f, nil
	}
	if err := SetAttr(vm, &obj, attr, value); err != nil {
		return nil, err
	}
	if err := f.setLocal(vm, target, obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// integerFastPath short-circuits binary operators when both operands
// are immediate integers, bypassing attribute dispatch.
func integerFastPath(vm *VM, op Opcode, l, r Integer) (Value, error) {
	switch op {
	case OpAdd:
		return l + r, nil
	case OpSubtract:
		return l - r, nil
	case OpMultiply:
		return l * r, nil
	case OpDivide:
		if r == 0 {
			return nil, errMessage("division by zero")
		}
		return l / r, nil
	case OpModulo:
		if r == 0 {
			return nil, errMessage("modulo by zero")
		}
		return l % r, nil
	case OpPower:
		if r >= 0 {
			return integerPow(l, r), nil
		}
	case OpEqual:
		return Boolean(l == r), nil
	case OpNotEqual:
		return Boolean(l != r), nil
	case OpLessThan:
		return Boolean(l < r), nil
	case OpGreaterThan:
		return Boolean(l > r), nil
	case OpLessEqual:
		return Boolean(l <= r), nil
	case OpGreaterEqual:
		return Boolean(l >= r), nil
	case OpCompare:
		switch {
		case l < r:
			return Integer(-1), nil
		case l > r:
			return Integer(1), nil
		}
		return Integer(0), nil
	}
	// Negative powers fall through to float dispatch.
	return CallAttr(vm, l, operatorAttrFor(op), NewArgs(r))
}

func frameClassDef() *Class {
	return newClass("Frame", kernelClassV,
		method(SymResume, func(vm *VM, this *Frame, args Args) (Value, error) {
			if err := args.AssertNoArguments(); err != nil {
				return nil, err
			}
			return this.Resume(vm)
		}),
		method(SymRestart, func(vm *VM, this *Frame, args Args) (Value, error) {
			if err := args.AssertNoArguments(); err != nil {
				return nil, err
			}
			return this.Restart(vm)
		}),
		method(SymDbg, func(vm *VM, this *Frame, args Args) (Value, error) {
			return NewText(this.Inspect()), nil
		}),
	)
}
