package bytecode

import (
	"bytes"
	"encoding/binary"
	"testing"

	"amberlang/internal/heap"
	"amberlang/internal/object"
	"amberlang/internal/opcode"
	"amberlang/internal/runtimestats"
)

// buildMinimalModule writes a module with two string literals ("main",
// "main.amb"), one int64 literal, and a top-level CompiledCode containing
// a single SetLiteral instruction, no exceptions, no inner code.
func buildMinimalModule(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.Write(Magic[:])
	_ = binary.Write(&buf, binary.BigEndian, Version)

	// literals: [0]="main" [1]="main.amb" [2]=int64(7)
	_ = binary.Write(&buf, binary.BigEndian, uint32(3))
	writeStringLiteral(&buf, "main")
	writeStringLiteral(&buf, "main.amb")
	buf.WriteByte(byte(LiteralInt64))
	_ = binary.Write(&buf, binary.BigEndian, int64(7))

	writeCode(&buf, 0, 1, 1, 0, 1, 0, []object.Instruction{
		{Opcode: byte(opcode.SetLiteral), Operands: [6]uint16{0, 2}, Line: 1},
	}, nil, nil)

	return buf.Bytes()
}

func writeStringLiteral(buf *bytes.Buffer, s string) {
	buf.WriteByte(byte(LiteralString))
	_ = binary.Write(buf, binary.BigEndian, uint32(len(s)))
	buf.WriteString(s)
}

func writeCode(buf *bytes.Buffer, nameLit, fileLit, line uint32, arity, regCount, captured uint16,
	instrs []object.Instruction, exceptions []object.ExceptionEntry, inner [][]byte) {
	_ = binary.Write(buf, binary.BigEndian, nameLit)
	_ = binary.Write(buf, binary.BigEndian, fileLit)
	_ = binary.Write(buf, binary.BigEndian, line)
	_ = binary.Write(buf, binary.BigEndian, arity)
	_ = binary.Write(buf, binary.BigEndian, regCount)
	_ = binary.Write(buf, binary.BigEndian, captured)

	_ = binary.Write(buf, binary.BigEndian, uint32(len(instrs)))
	for _, in := range instrs {
		buf.WriteByte(in.Opcode)
		n := opcode.Arity(opcode.Opcode(in.Opcode))
		for j := 0; j < n; j++ {
			_ = binary.Write(buf, binary.BigEndian, in.Operands[j])
		}
		_ = binary.Write(buf, binary.BigEndian, in.Line)
	}

	_ = binary.Write(buf, binary.BigEndian, uint32(len(exceptions)))
	for _, e := range exceptions {
		_ = binary.Write(buf, binary.BigEndian, uint32(e.StartPC))
		_ = binary.Write(buf, binary.BigEndian, uint32(e.EndPC))
		_ = binary.Write(buf, binary.BigEndian, uint32(e.HandlerPC))
		_ = binary.Write(buf, binary.BigEndian, uint16(e.Register))
	}

	_ = binary.Write(buf, binary.BigEndian, uint32(len(inner)))
	for _, raw := range inner {
		buf.Write(raw)
	}
}

func TestLoadMinimalModule(t *testing.T) {
	pool := heap.NewPool(&runtimestats.Heap{}, 0)
	perm := heap.NewPermanent(pool)

	raw := buildMinimalModule(t)
	m, err := Load(bytes.NewReader(raw), perm, 4)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Name != "main" {
		t.Fatalf("Name = %q, want main", m.Name)
	}
	if m.Code.SourceFile != "main.amb" {
		t.Fatalf("SourceFile = %q, want main.amb", m.Code.SourceFile)
	}
	if len(m.Code.Instructions) != 1 {
		t.Fatalf("expected 1 instruction, got %d", len(m.Code.Instructions))
	}
	if m.Code.Instructions[0].Opcode != byte(opcode.SetLiteral) {
		t.Fatalf("unexpected opcode %d", m.Code.Instructions[0].Opcode)
	}
	lit := m.Literals[2]
	if !lit.IsInteger() || lit.IntegerValue() != 7 {
		t.Fatalf("literal 2 = %v, want int64(7)", lit)
	}
}

func TestLoadRejectsBadMagic(t *testing.T) {
	pool := heap.NewPool(&runtimestats.Heap{}, 0)
	perm := heap.NewPermanent(pool)
	bad := []byte{'X', 'X', 'X', 'X', 0, 1}
	if _, err := Load(bytes.NewReader(bad), perm, 0); err == nil {
		t.Fatal("expected an error for bad magic")
	}
}

func TestSetGlobalRejectsNonPermanent(t *testing.T) {
	m := NewModule("m", 1)
	local := object.Ref(object.New(object.Local))
	if err := m.SetGlobal(0, local); err == nil {
		t.Fatal("expected SetGlobal to reject a non-permanent pointer")
	}
}

func TestSetGlobalRejectedAfterSeal(t *testing.T) {
	m := NewModule("m", 1)
	perm := object.Ref(object.New(object.Permanent))
	if err := m.SetGlobal(0, perm); err != nil {
		t.Fatalf("SetGlobal before seal: %v", err)
	}
	m.Seal()
	if err := m.SetGlobal(0, perm); err == nil {
		t.Fatal("expected SetGlobal to fail after seal")
	}
	got, err := m.GetGlobal(0)
	if err != nil || !got.Equal(perm) {
		t.Fatalf("GetGlobal after seal = %v, %v", got, err)
	}
}

func TestStringLiteralsAreInterned(t *testing.T) {
	pool := heap.NewPool(&runtimestats.Heap{}, 0)
	perm := heap.NewPermanent(pool)

	var buf bytes.Buffer
	buf.Write(Magic[:])
	_ = binary.Write(&buf, binary.BigEndian, Version)
	_ = binary.Write(&buf, binary.BigEndian, uint32(3))
	writeStringLiteral(&buf, "hello")
	writeStringLiteral(&buf, "hello") // same text, should intern to the same object
	writeStringLiteral(&buf, "main.amb")
	writeCode(&buf, 0, 2, 1, 0, 1, 0, nil, nil, nil)

	m, err := Load(bytes.NewReader(buf.Bytes()), perm, 0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Literals[0].HeapObject() != m.Literals[1].HeapObject() {
		t.Fatal("expected identical string literals to intern to the same object")
	}
}
