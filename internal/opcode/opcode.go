// Package opcode defines the instruction set shared by the bytecode
// loader (internal/bytecode) and the interpreter (internal/interp): the
// Opcode enum and each opcode's fixed operand arity, so the on-disk format
// can omit a per-instruction operand count (spec.md §6: "operand u16 array
// of opcode-specific arity").
//
// SPEC_FULL.md §4.E implements the representative opcode set spec.md names
// explicitly, plus IntegerAdd (needed by end-to-end scenario 1) and both
// GetAttribute variants (the Open Question in spec.md §9 asks to keep
// both). The full ~150-opcode set spec.md describes as "non-exhaustive" is
// out of scope for this module; every opcode actually implemented here has
// a complete operand layout, register usage, and failure mode specified in
// internal/interp's handlers.
package opcode

// Opcode identifies one bytecode instruction.
type Opcode uint8

const (
	SetLiteral Opcode = iota
	GetLocal
	SetLocal
	GetGlobal
	SetGlobal
	IntegerAdd

	Allocate
	SetAttribute
	GetAttribute
	GetAttributeStrict
	DefMethod
	LookupMethod
	RespondsTo

	Goto
	GotoIfTrue
	GotoIfFalse
	Return
	Throw

	RunBlock

	Spawn
	Send
	Receive
	Suspend

	ExternalCall
)

// arity maps each opcode to its fixed operand count (<=6, spec.md §3
// "Instruction ... up to 6 fixed-width operand slots").
var arity = map[Opcode]int{
	SetLiteral:         2, // r, idx
	GetLocal:           2, // r, slot
	SetLocal:           2, // slot, r
	GetGlobal:          3, // r, mod, idx
	SetGlobal:          3, // mod, idx, r
	IntegerAdd:         3, // r, a, b

	Allocate:           2, // r, proto
	SetAttribute:       3, // obj, name, val
	GetAttribute:       3, // r, obj, name
	GetAttributeStrict: 3, // r, obj, name
	DefMethod:          4, // r, recv, name, code
	LookupMethod:       3, // r, recv, name
	RespondsTo:         3, // r, obj, name

	Goto:         1, // pc
	GotoIfTrue:   2, // pc, r
	GotoIfFalse:  2, // pc, r
	Return:       1, // r
	Throw:        1, // r

	RunBlock: 6, // r, block, up to 4 args

	Spawn:   2, // r, block
	Send:    2, // recv, val
	Receive: 2, // r, timeout
	Suspend: 1, // timeout

	ExternalCall: 6, // r, name_lit, up to 4 args
}

// Arity returns the fixed operand count for op, or -1 if op is unknown.
func Arity(op Opcode) int {
	n, ok := arity[op]
	if !ok {
		return -1
	}
	return n
}

// Name returns a human-readable opcode name, used in error messages and
// disassembly.
func Name(op Opcode) string {
	switch op {
	case SetLiteral:
		return "SetLiteral"
	case GetLocal:
		return "GetLocal"
	case SetLocal:
		return "SetLocal"
	case GetGlobal:
		return "GetGlobal"
	case SetGlobal:
		return "SetGlobal"
	case IntegerAdd:
		return "IntegerAdd"
	case Allocate:
		return "Allocate"
	case SetAttribute:
		return "SetAttribute"
	case GetAttribute:
		return "GetAttribute"
	case GetAttributeStrict:
		return "GetAttributeStrict"
	case DefMethod:
		return "DefMethod"
	case LookupMethod:
		return "LookupMethod"
	case RespondsTo:
		return "RespondsTo"
	case Goto:
		return "Goto"
	case GotoIfTrue:
		return "GotoIfTrue"
	case GotoIfFalse:
		return "GotoIfFalse"
	case Return:
		return "Return"
	case Throw:
		return "Throw"
	case RunBlock:
		return "RunBlock"
	case Spawn:
		return "Spawn"
	case Send:
		return "Send"
	case Receive:
		return "Receive"
	case Suspend:
		return "Suspend"
	case ExternalCall:
		return "ExternalCall"
	default:
		return "Unknown"
	}
}
