// Copyright 2022 Questlang. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package quest

// Opcode numbering carries the decode metadata: the magnitude of the
// byte (as a signed int8), divided by 0x20, is the fixed operand count,
// and a negative byte means a count plus that many trailing operands
// follow the fixed ones. The decoder never needs a per-opcode table.
type Opcode byte

const (
	OpCreateList      Opcode = 0x00
	OpConstLoad       Opcode = 0x01
	OpStackframe      Opcode = 0x02
	OpMov             Opcode = 0x20
	OpCall            Opcode = 0x21
	OpNot             Opcode = 0x22
	OpNegate          Opcode = 0x23
	OpGetAttr         Opcode = 0x40
	OpGetUnboundAttr  Opcode = 0x41
	OpHasAttr         Opcode = 0x42
	OpSetAttr         Opcode = 0x43
	OpDelAttr         Opcode = 0x44
	OpCallAttr        Opcode = 0x45
	OpAdd             Opcode = 0x46
	OpSubtract        Opcode = 0x47
	OpMultiply        Opcode = 0x48
	OpDivide          Opcode = 0x49
	OpModulo          Opcode = 0x4a
	OpPower           Opcode = 0x4b
	OpEqual           Opcode = 0x4c
	OpNotEqual        Opcode = 0x4d
	OpLessThan        Opcode = 0x4e
	OpGreaterThan     Opcode = 0x4f
	OpLessEqual       Opcode = 0x50
	OpGreaterEqual    Opcode = 0x51
	OpCompare         Opcode = 0x52
	OpCallAttrSimple  Opcode = 0xbf // -0x41
	OpCallSimple      Opcode = 0xdd // -0x23
	OpIndexAssign     Opcode = 0xde // -0x22
	OpIndex           Opcode = 0xdf // -0x21
	OpCreateListShort Opcode = 0xff // -0x01
)

// maxSimpleArgs bounds the trailing operands of variadic opcodes; a
// call with more arguments must use the full Call form.
const maxSimpleArgs = 16

// arity is the number of fixed operand locals after the destination.
func (op Opcode) arity() int {
	n := int(int8(op)) / 0x20
	if n < 0 {
		return -n
	}
	return n
}

// variadic reports whether a count and trailing operands follow.
func (op Opcode) variadic() bool {
	return int8(op) < 0
}

func (op Opcode) valid() bool {
	switch op {
	case OpCreateList, OpConstLoad, OpStackframe, OpMov, OpCall, OpNot,
		OpNegate, OpGetAttr, OpGetUnboundAttr, OpHasAttr, OpSetAttr,
		OpDelAttr, OpCallAttr, OpAdd, OpSubtract, OpMultiply, OpDivide,
		OpModulo, OpPower, OpEqual, OpNotEqual, OpLessThan, OpGreaterThan,
		OpLessEqual, OpGreaterEqual, OpCompare, OpCallAttrSimple,
		OpCallSimple, OpIndexAssign, OpIndex, OpCreateListShort:
		return true
	}
	return false
}

func (op Opcode) String() string {
	switch op {
	case OpCreateList:
		return "CreateList"
	case OpConstLoad:
		return "ConstLoad"
	case OpStackframe:
		return "Stackframe"
	case OpMov:
		return "Mov"
	case OpCall:
		return "Call"
	case OpNot:
		return "Not"
	case OpNegate:
		return "Negate"
	case OpGetAttr:
		return "GetAttr"
	case OpGetUnboundAttr:
		return "GetUnboundAttr"
	case OpHasAttr:
		return "HasAttr"
	case OpSetAttr:
		return "SetAttr"
	case OpDelAttr:
		return "DelAttr"
	case OpCallAttr:
		return "CallAttr"
	case OpAdd:
		return "Add"
	case OpSubtract:
		return "Subtract"
	case OpMultiply:
		return "Multiply"
	case OpDivide:
		return "Divide"
	case OpModulo:
		return "Modulo"
	case OpPower:
		return "Power"
	case OpEqual:
		return "Equal"
	case OpNotEqual:
		return "NotEqual"
	case OpLessThan:
		return "LessThan"
	case OpGreaterThan:
		return "GreaterThan"
	case OpLessEqual:
		return "LessEqual"
	case OpGreaterEqual:
		return "GreaterEqual"
	case OpCompare:
		return "Compare"
	case OpCallAttrSimple:
		return "CallAttrSimple"
	case OpCallSimple:
		return "CallSimple"
	case OpIndexAssign:
		return "IndexAssign"
	case OpIndex:
		return "Index"
	case OpCreateListShort:
		return "CreateListShort"
	}
	return "Opcode(?)"
}

// binaryOpcodeFor maps a binary operator symbol to its opcode; symbols
// without one dispatch through CallAttrSimple instead.
func binaryOpcodeFor(symbol string) (Opcode, bool) {
	switch symbol {
	case "+":
		return OpAdd, true
	case "-":
		return OpSubtract, true
	case "*":
		return OpMultiply, true
	case "/":
		return OpDivide, true
	case "%":
		return OpModulo, true
	case "**":
		return OpPower, true
	case "==":
		return OpEqual, true
	case "!=":
		return OpNotEqual, true
	case "<":
		return OpLessThan, true
	case ">":
		return OpGreaterThan, true
	case "<=":
		return OpLessEqual, true
	case ">=":
		return OpGreaterEqual, true
	case "<=>":
		return OpCompare, true
	}
	return 0, false
}

// unaryOpcodeFor maps a unary operator symbol to its opcode.
func unaryOpcodeFor(symbol string) (Opcode, bool) {
	switch symbol {
	case "!":
		return OpNot, true
	case "-":
		return OpNegate, true
	}
	return 0, false
}

// operatorAttrFor maps an operator opcode to the attribute the VM
// dispatches it through.
func operatorAttrFor(op Opcode) Intern {
	switch op {
	case OpAdd:
		return SymOpAdd
	case OpSubtract:
		return SymOpSub
	case OpMultiply:
		return SymOpMul
	case OpDivide:
		return SymOpDiv
	case OpModulo:
		return SymOpMod
	case OpPower:
		return SymOpPow
	case OpEqual:
		return SymOpEql
	case OpNotEqual:
		return SymOpNeq
	case OpLessThan:
		return SymOpLth
	case OpGreaterThan:
		return SymOpGth
	case OpLessEqual:
		return SymOpLeq
	case OpGreaterEqual:
		return SymOpGeq
	case OpCompare:
		return SymOpCmp
	case OpNot:
		return SymOpNot
	case OpNegate:
		return SymOpNeg
	case OpIndex:
		return SymOpIndex
	case OpIndexAssign:
		return SymOpIndexAssign
	}
	return SymOpCall
}

// Operand encoding escapes: a local byte of localEscape means a native
// endian machine word follows; likewise countEscape for counts.
const (
	localEscape = 0x7f
	countEscape = 0xff
)
