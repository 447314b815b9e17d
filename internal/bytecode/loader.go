package bytecode

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"math/big"

	"golang.org/x/text/unicode/norm"

	"amberlang/internal/object"
	"amberlang/internal/opcode"
	"amberlang/internal/vmerrors"
)

// Permanent is the minimal interface the loader needs from the permanent
// space (internal/heap.Permanent) to publish literal and CompiledCode
// objects, kept narrow so this package does not import internal/heap.
type Permanent interface {
	Allocate(o *object.Object) error
	InternLiteral(s string, build func() *object.Object) (object.Pointer, error)
	// Objects returns every object published so far, used by Load to
	// reject cyclic prototype chains before returning (spec.md §3 "cycles
	// are forbidden (the loader must reject them)").
	Objects() []*object.Object
}

// Load reads a module from r into perm, returning the loaded Module. It
// does not call perm.Seal or Module.Seal; callers seal once every module a
// program needs has been loaded (spec.md §9 two-phase lifecycle), so that
// several modules can be loaded before any process observes any of them.
func Load(r io.Reader, perm Permanent, globalSlots int) (*Module, error) {
	br := bufio.NewReader(r)

	var magic [4]byte
	if _, err := io.ReadFull(br, magic[:]); err != nil {
		return nil, vmerrors.Wrap(vmerrors.IoError, err, "reading module header")
	}
	if magic != Magic {
		return nil, vmerrors.New(vmerrors.IoError, "bad module magic %q", magic)
	}
	var version uint16
	if err := binary.Read(br, binary.BigEndian, &version); err != nil {
		return nil, vmerrors.Wrap(vmerrors.IoError, err, "reading module version")
	}
	if version != Version {
		return nil, vmerrors.New(vmerrors.IoError, "unsupported module version %d", version)
	}

	literals, err := loadLiterals(br, perm)
	if err != nil {
		return nil, err
	}

	code, err := loadCompiledCode(br, literals)
	if err != nil {
		return nil, err
	}

	if err := object.ValidateNoCycles(perm.Objects()); err != nil {
		return nil, err
	}

	m := NewModule(code.Name, globalSlots)
	m.Literals = literals
	m.Code = code
	return m, nil
}

func readU32(r io.Reader) (uint32, error) {
	var v uint32
	err := binary.Read(r, binary.BigEndian, &v)
	return v, err
}

func readU16(r io.Reader) (uint16, error) {
	var v uint16
	err := binary.Read(r, binary.BigEndian, &v)
	return v, err
}

func loadLiterals(r io.Reader, perm Permanent) ([]object.Pointer, error) {
	count, err := readU32(r)
	if err != nil {
		return nil, vmerrors.Wrap(vmerrors.IoError, err, "reading literal count")
	}
	out := make([]object.Pointer, 0, count)
	for i := uint32(0); i < count; i++ {
		var kindByte [1]byte
		if _, err := io.ReadFull(r, kindByte[:]); err != nil {
			return nil, vmerrors.Wrap(vmerrors.IoError, err, "reading literal %d kind", i)
		}
		ptr, err := loadLiteral(r, LiteralKind(kindByte[0]), out, perm)
		if err != nil {
			return nil, fmt.Errorf("literal %d: %w", i, err)
		}
		out = append(out, ptr)
	}
	return out, nil
}

func loadLiteral(r io.Reader, kind LiteralKind, prior []object.Pointer, perm Permanent) (object.Pointer, error) {
	switch kind {
	case LiteralInt64:
		var v int64
		if err := binary.Read(r, binary.BigEndian, &v); err != nil {
			return object.Nil, vmerrors.Wrap(vmerrors.IoError, err, "reading int64 literal")
		}
		return object.Int(v), nil

	case LiteralFloat64:
		var bits uint64
		if err := binary.Read(r, binary.BigEndian, &bits); err != nil {
			return object.Nil, vmerrors.Wrap(vmerrors.IoError, err, "reading float64 literal")
		}
		o := object.New(object.Permanent)
		o.Kind = object.KindFloat
		o.Float = math.Float64frombits(bits)
		if err := perm.Allocate(o); err != nil {
			return object.Nil, err
		}
		return object.Ref(o), nil

	case LiteralString:
		raw, err := readBytes(r)
		if err != nil {
			return object.Nil, vmerrors.Wrap(vmerrors.IoError, err, "reading string literal")
		}
		// Normalize to NFC so string equality (symbol interning,
		// attribute lookup) is not sensitive to the source encoding's
		// composition form (SPEC_FULL.md §6).
		normalized := string(norm.NFC.Bytes(raw))
		return perm.InternLiteral(normalized, func() *object.Object {
			o := object.New(object.Permanent)
			o.Kind = object.KindString
			o.Str = normalized
			return o
		})

	case LiteralBigInt:
		raw, err := readBytes(r)
		if err != nil {
			return object.Nil, vmerrors.Wrap(vmerrors.IoError, err, "reading bigint literal")
		}
		if len(raw) == 0 {
			return object.Nil, vmerrors.New(vmerrors.InvalidType, "empty bigint literal")
		}
		neg := raw[0] != 0
		bi := new(big.Int).SetBytes(raw[1:])
		if neg {
			bi.Neg(bi)
		}
		// The inline-value kinds of spec.md §3 have no bignum variant;
		// arbitrary-precision literals are represented as a byte-array
		// object carrying the two's-complement-free sign+magnitude
		// encoding math/big produces, not as a fabricated new Kind
		// (DESIGN.md).
		o := object.New(object.Permanent)
		o.Kind = object.KindByteArray
		o.Bytes = bi.Bytes()
		o.Int = int64(bi.Sign())
		if err := perm.Allocate(o); err != nil {
			return object.Nil, err
		}
		return object.Ref(o), nil

	case LiteralArray:
		count, err := readU32(r)
		if err != nil {
			return object.Nil, vmerrors.Wrap(vmerrors.IoError, err, "reading array literal length")
		}
		elems := make([]object.Pointer, count)
		for i := range elems {
			idx, err := readU32(r)
			if err != nil {
				return object.Nil, vmerrors.Wrap(vmerrors.IoError, err, "reading array literal element %d", i)
			}
			if int(idx) >= len(prior) {
				return object.Nil, vmerrors.New(vmerrors.InvalidType, "array literal references forward/unknown literal %d", idx)
			}
			elems[i] = prior[idx]
		}
		o := object.New(object.Permanent)
		o.Kind = object.KindArray
		o.Arr = elems
		if err := perm.Allocate(o); err != nil {
			return object.Nil, err
		}
		return object.Ref(o), nil

	default:
		return object.Nil, vmerrors.New(vmerrors.InvalidType, "unknown literal kind %d", kind)
	}
}

func readBytes(r io.Reader) ([]byte, error) {
	n, err := readU32(r)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func loadCompiledCode(r io.Reader, literals []object.Pointer) (*object.CompiledCodeValue, error) {
	nameLit, err := readU32(r)
	if err != nil {
		return nil, vmerrors.Wrap(vmerrors.IoError, err, "reading code name literal id")
	}
	fileLit, err := readU32(r)
	if err != nil {
		return nil, vmerrors.Wrap(vmerrors.IoError, err, "reading code file literal id")
	}
	line, err := readU32(r)
	if err != nil {
		return nil, vmerrors.Wrap(vmerrors.IoError, err, "reading code line")
	}
	arity, err := readU16(r)
	if err != nil {
		return nil, vmerrors.Wrap(vmerrors.IoError, err, "reading code arity")
	}
	regCount, err := readU16(r)
	if err != nil {
		return nil, vmerrors.Wrap(vmerrors.IoError, err, "reading code register count")
	}
	// Captured-locals count is read for format compatibility but folded
	// into register count bookkeeping at frame-construction time
	// (internal/process.NewFrame sizes registers from RegisterCount
	// alone); spec.md does not define a separate storage area for it.
	if _, err := readU16(r); err != nil {
		return nil, vmerrors.Wrap(vmerrors.IoError, err, "reading captured locals count")
	}

	instrCount, err := readU32(r)
	if err != nil {
		return nil, vmerrors.Wrap(vmerrors.IoError, err, "reading instruction count")
	}
	instrs := make([]object.Instruction, instrCount)
	for i := range instrs {
		var opByte [1]byte
		if _, err := io.ReadFull(r, opByte[:]); err != nil {
			return nil, vmerrors.Wrap(vmerrors.IoError, err, "reading instruction %d opcode", i)
		}
		op := opcode.Opcode(opByte[0])
		n := opcode.Arity(op)
		if n < 0 {
			return nil, vmerrors.New(vmerrors.InvalidType, "instruction %d: unknown opcode %d", i, opByte[0])
		}
		instr := object.Instruction{Opcode: opByte[0]}
		for j := 0; j < n; j++ {
			v, err := readU16(r)
			if err != nil {
				return nil, vmerrors.Wrap(vmerrors.IoError, err, "reading instruction %d operand %d", i, j)
			}
			instr.Operands[j] = v
		}
		lineVal, err := readU16(r)
		if err != nil {
			return nil, vmerrors.Wrap(vmerrors.IoError, err, "reading instruction %d line", i)
		}
		instr.Line = lineVal
		instrs[i] = instr
	}

	excCount, err := readU32(r)
	if err != nil {
		return nil, vmerrors.Wrap(vmerrors.IoError, err, "reading exception table count")
	}
	exceptions := make([]object.ExceptionEntry, excCount)
	for i := range exceptions {
		start, err := readU32(r)
		if err != nil {
			return nil, err
		}
		end, err := readU32(r)
		if err != nil {
			return nil, err
		}
		handler, err := readU32(r)
		if err != nil {
			return nil, err
		}
		reg, err := readU16(r)
		if err != nil {
			return nil, err
		}
		exceptions[i] = object.ExceptionEntry{StartPC: int(start), EndPC: int(end), HandlerPC: int(handler), Register: int(reg)}
	}

	innerCount, err := readU32(r)
	if err != nil {
		return nil, vmerrors.Wrap(vmerrors.IoError, err, "reading inner code count")
	}
	inner := make([]*object.CompiledCodeValue, innerCount)
	for i := range inner {
		cc, err := loadCompiledCode(r, literals)
		if err != nil {
			return nil, err
		}
		inner[i] = cc
	}

	name := literalString(literals, nameLit)
	file := literalString(literals, fileLit)

	return &object.CompiledCodeValue{
		Name:          name,
		SourceFile:    file,
		RegisterCount: int(regCount),
		Arity:         int(arity),
		Literals:      literals,
		Exceptions:    exceptions,
		InnerCode:     inner,
		Instructions:  instrs,
	}, nil
}

func literalString(literals []object.Pointer, idx uint32) string {
	if int(idx) >= len(literals) {
		return ""
	}
	p := literals[idx]
	if !p.IsHeap() {
		return ""
	}
	o := p.HeapObject()
	if o.Kind != object.KindString {
		return ""
	}
	return o.Str
}
