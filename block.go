// Copyright 2022 Questlang. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package quest

import (
	"encoding/binary"

	"golang.org/x/exp/slices"
)

// Named-local slots 0 and 1 of every block are reserved: slot 0 holds
// the block being run, slot 1 the argument list.
const (
	selfBlockSlot  = 0
	argsSlot       = 1
	reservedLocals = 2
)

const (
	selfBlockName = "__block__"
	argsName      = "args"
)

// blockInner is the immutable compiled unit shared by every deep clone
// of a block.
type blockInner struct {
	code        []byte
	constants   []Value
	numUnnamed  int
	namedLocals []string
	localKeys   []Value
	location    SourceLocation
}

// Block pairs the immutable compiled code with a mutable header, so a
// block can be given a name or helper attributes.
type Block struct {
	Base
	inner *blockInner
}

func (b *Block) base() *Base { return &b.Base }

func (*Block) TypeName() string { return "Block" }

func (b *Block) Inspect() string {
	return "<block:" + b.inner.location.String() + ">"
}

// SourceLocation returns where the block appears in source.
func (b *Block) SourceLocation() SourceLocation {
	return b.inner.location
}

func newBlock(inner *blockInner) *Block {
	b := &Block{inner: inner}
	b.setTypeTag(tagBlock)
	b.setSingleParent(blockClass())
	return b
}

// deepClone copies the block header (attributes and parents) while
// sharing the immutable inner; each closure instance gets its own
// attribute table.
func (b *Block) deepClone() *Block {
	clone := &Block{inner: b.inner}
	clone.setTypeTag(tagBlock)
	clone.attrs = b.attrs.clone()
	if b.parents.list != nil {
		clone.setParentsList(newList(append([]Value(nil), b.parents.list.items...)...))
	} else if b.parents.single != nil {
		clone.setSingleParent(b.parents.single)
	}
	return clone
}

func (b *Block) setName(vm *VM, name string) error {
	var slot Value = b
	return SetAttr(vm, &slot, SymNameAttr, NewText(name))
}

// Local addresses one frame slot: non-negative values are unnamed
// slots (0 is the scratch register), named slots carry their pool
// index.
type Local struct {
	Named bool
	Index int
}

// Scratch is unnamed local 0, the default destination.
var Scratch = Local{}

// target folds a Local into the signed on-wire form: unnamed indices
// stay non-negative, named indices are bitwise complemented.
func (l Local) target() int {
	if l.Named {
		return ^l.Index
	}
	return l.Index
}

// Builder accumulates bytecode, constants and local pools, then builds
// an immutable Block. It is the interface the compiler drives.
type Builder struct {
	loc        SourceLocation
	code       []byte
	constants  []Value
	numUnnamed int
	named      []string
}

// NewBuilder starts a block at the given source location.
func NewBuilder(loc SourceLocation) *Builder {
	return &Builder{
		loc:        loc,
		numUnnamed: 1, // slot 0 is the scratch register
		named:      []string{selfBlockName, argsName},
	}
}

// Scratch returns the scratch register.
func (b *Builder) Scratch() Local {
	return Scratch
}

// UnnamedLocal allocates a fresh anonymous slot.
func (b *Builder) UnnamedLocal() Local {
	b.numUnnamed++
	return Local{Index: b.numUnnamed - 1}
}

// NamedLocal returns the slot for name, allocating it on first use.
func (b *Builder) NamedLocal(name string) Local {
	if i := slices.Index(b.named, name); i >= 0 {
		return Local{Named: true, Index: i}
	}
	b.named = append(b.named, name)
	return Local{Named: true, Index: len(b.named) - 1}
}

// Build seals the accumulated state into a Block.
func (b *Builder) Build() *Block {
	keys := make([]Value, len(b.named))
	for i, name := range b.named {
		if sym, ok := InternFromString(name); ok {
			keys[i] = sym
		} else {
			keys[i] = newTextKey(name)
		}
	}
	return newBlock(&blockInner{
		code:        b.code,
		constants:   b.constants,
		numUnnamed:  b.numUnnamed,
		namedLocals: append([]string(nil), b.named...),
		localKeys:   keys,
		location:    b.loc,
	})
}

func (b *Builder) opcode(op Opcode) {
	b.code = append(b.code, byte(op))
}

func (b *Builder) local(l Local) {
	t := l.target()
	if t >= -126 && t < localEscape {
		b.code = append(b.code, byte(int8(t)))
		return
	}
	b.code = append(b.code, localEscape)
	b.code = binary.NativeEndian.AppendUint64(b.code, uint64(int64(t)))
}

func (b *Builder) count(n int) {
	if n >= 0 && n < countEscape {
		b.code = append(b.code, byte(n))
		return
	}
	b.code = append(b.code, countEscape)
	b.code = binary.NativeEndian.AppendUint64(b.code, uint64(int64(n)))
}

func (b *Builder) simple(op Opcode, dst Local, operands ...Local) {
	b.opcode(op)
	b.local(dst)
	for _, o := range operands {
		b.local(o)
	}
}

func (b *Builder) variadicTail(args []Local) {
	b.count(len(args))
	for _, a := range args {
		b.local(a)
	}
}

// Mov copies src into dst.
func (b *Builder) Mov(src, dst Local) {
	b.simple(OpMov, dst, src)
}

// Constant loads value into dst, reusing an existing pool slot when an
// identical constant was already added.
func (b *Builder) Constant(value Value, dst Local) {
	idx := slices.IndexFunc(b.constants, func(c Value) bool {
		return Identical(c, value)
	})
	if idx < 0 {
		b.constants = append(b.constants, value)
		idx = len(b.constants) - 1
	}
	b.opcode(OpConstLoad)
	b.local(dst)
	b.count(idx)
}

// StrConstant loads a text constant.
func (b *Builder) StrConstant(s string, dst Local) {
	idx := -1
	for i, c := range b.constants {
		if t, ok := c.(*Text); ok && t.str == s {
			idx = i
			break
		}
	}
	if idx < 0 {
		b.constants = append(b.constants, NewText(s))
		idx = len(b.constants) - 1
	}
	b.opcode(OpConstLoad)
	b.local(dst)
	b.count(idx)
}

// Stackframe loads the depth-th enclosing frame into dst.
func (b *Builder) Stackframe(depth int, dst Local) {
	b.opcode(OpStackframe)
	b.local(dst)
	b.count(depth)
}

// CreateList builds a list from element locals.
func (b *Builder) CreateList(elements []Local, dst Local) {
	if len(elements) <= maxSimpleArgs {
		b.opcode(OpCreateListShort)
		b.local(dst)
		b.variadicTail(elements)
		return
	}
	b.opcode(OpCreateList)
	b.local(dst)
	b.count(len(elements))
	for _, e := range elements {
		b.local(e)
	}
}

// CallSimple calls fn with positional args.
func (b *Builder) CallSimple(fn Local, args []Local, dst Local) {
	if len(args) > maxSimpleArgs {
		panic("too many arguments for CallSimple")
	}
	b.opcode(OpCallSimple)
	b.local(dst)
	b.local(fn)
	b.variadicTail(args)
}

// CallAttrSimple calls obj's attr with positional args.
func (b *Builder) CallAttrSimple(obj, attr Local, args []Local, dst Local) {
	if len(args) > maxSimpleArgs {
		panic("too many arguments for CallAttrSimple")
	}
	b.opcode(OpCallAttrSimple)
	b.local(dst)
	b.local(obj)
	b.local(attr)
	b.variadicTail(args)
}

// GetAttr fetches obj.attr, binding callables.
func (b *Builder) GetAttr(obj, attr, dst Local) {
	b.simple(OpGetAttr, dst, obj, attr)
}

// GetUnboundAttr fetches obj::attr without binding.
func (b *Builder) GetUnboundAttr(obj, attr, dst Local) {
	b.simple(OpGetUnboundAttr, dst, obj, attr)
}

// HasAttr tests attribute existence.
func (b *Builder) HasAttr(obj, attr, dst Local) {
	b.simple(OpHasAttr, dst, obj, attr)
}

// SetAttr assigns obj.attr = value. The object operand is a raw slot
// reference: writing through a named slot may box an immediate in
// place.
func (b *Builder) SetAttr(obj, attr, value, dst Local) {
	b.opcode(OpSetAttr)
	b.local(dst)
	b.local(attr)
	b.local(value)
	b.local(obj)
}

// DelAttr removes obj.attr, leaving the prior value in dst.
func (b *Builder) DelAttr(obj, attr, dst Local) {
	b.simple(OpDelAttr, dst, obj, attr)
}

// Index compiles source[args...].
func (b *Builder) Index(src Local, args []Local, dst Local) {
	b.opcode(OpIndex)
	b.local(dst)
	b.local(src)
	b.variadicTail(args)
}

// IndexAssign compiles source[args...] = value; the value is the last
// argument.
func (b *Builder) IndexAssign(src Local, args []Local, dst Local) {
	b.opcode(OpIndexAssign)
	b.local(dst)
	b.local(src)
	b.variadicTail(args)
}

// Binary emits one of the operator opcodes.
func (b *Builder) Binary(op Opcode, lhs, rhs, dst Local) {
	b.simple(op, dst, lhs, rhs)
}

// Unary emits Not or Negate.
func (b *Builder) Unary(op Opcode, src, dst Local) {
	b.simple(op, dst, src)
}

func blockClassDef() *Class {
	return newClass("Block", kernelClassV,
		method(SymOpCall, func(vm *VM, this *Block, args Args) (Value, error) {
			frame, err := NewFrame(this, args)
			if err != nil {
				return nil, err
			}
			return frame.Run(vm)
		}),
		method(SymCreateFrame, func(vm *VM, this *Block, args Args) (Value, error) {
			frame, err := NewFrame(this, args)
			if err != nil {
				return nil, err
			}
			frame.promote(vm)
			return frame, nil
		}),
		method(SymDbg, func(vm *VM, this *Block, args Args) (Value, error) {
			return NewText(this.Inspect()), nil
		}),
	)
}
