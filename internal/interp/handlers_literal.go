package interp

import (
	"amberlang/internal/object"
	"amberlang/internal/process"
	"amberlang/internal/vmerrors"
)

func (ip *Interpreter) opSetLiteral(p *process.Process, f *process.Frame, instr object.Instruction) (signal, error) {
	r, idx := int(instr.Operands[0]), int(instr.Operands[1])
	if idx < 0 || idx >= len(f.Code.Literals) {
		return sigThrow, vmerrors.New(vmerrors.InvalidType, "SetLiteral: literal index %d out of range", idx)
	}
	f.SetRegister(r, f.Code.Literals[idx])
	f.PC++
	return sigContinue, nil
}

func (ip *Interpreter) opGetLocal(p *process.Process, f *process.Frame, instr object.Instruction) (signal, error) {
	r, slot := int(instr.Operands[0]), int(instr.Operands[1])
	f.SetRegister(r, f.Binding.Get(slot))
	f.PC++
	return sigContinue, nil
}

func (ip *Interpreter) opSetLocal(p *process.Process, f *process.Frame, instr object.Instruction) (signal, error) {
	slot, r := int(instr.Operands[0]), int(instr.Operands[1])
	f.Binding.Set(slot, f.GetRegister(r))
	f.PC++
	return sigContinue, nil
}

// opGetGlobal reads global scope entry idx from the interpreter's module.
// The mod operand names which loaded module owns the slot; this
// implementation only ever has one module loaded at a time (spec.md §6's
// "dynamic, post-startup load" via load_module is handled by the
// module-loading external, not by cross-module GetGlobal resolution,
// which is future work), so mod is validated to be 0 and otherwise
// ignored.
func (ip *Interpreter) opGetGlobal(p *process.Process, f *process.Frame, instr object.Instruction) (signal, error) {
	r, mod, idx := int(instr.Operands[0]), int(instr.Operands[1]), int(instr.Operands[2])
	if mod != 0 {
		return sigThrow, vmerrors.New(vmerrors.InvalidType, "GetGlobal: unknown module id %d", mod)
	}
	v, err := ip.module.GetGlobal(idx)
	if err != nil {
		return sigThrow, err
	}
	f.SetRegister(r, v)
	f.PC++
	return sigContinue, nil
}

func (ip *Interpreter) opSetGlobal(p *process.Process, f *process.Frame, instr object.Instruction) (signal, error) {
	mod, idx, r := int(instr.Operands[0]), int(instr.Operands[1]), int(instr.Operands[2])
	if mod != 0 {
		return sigThrow, vmerrors.New(vmerrors.InvalidType, "SetGlobal: unknown module id %d", mod)
	}
	if err := ip.module.SetGlobal(idx, f.GetRegister(r)); err != nil {
		return sigThrow, err
	}
	f.PC++
	return sigContinue, nil
}

func (ip *Interpreter) opIntegerAdd(p *process.Process, f *process.Frame, instr object.Instruction) (signal, error) {
	r, a, b := int(instr.Operands[0]), int(instr.Operands[1]), int(instr.Operands[2])
	va, vb := f.GetRegister(a), f.GetRegister(b)
	if !va.IsInteger() || !vb.IsInteger() {
		return sigThrow, vmerrors.New(vmerrors.InvalidType, "IntegerAdd: both operands must be integers")
	}
	f.SetRegister(r, object.Int(va.IntegerValue()+vb.IntegerValue()))
	f.PC++
	return sigContinue, nil
}
