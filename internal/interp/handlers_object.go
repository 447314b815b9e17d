package interp

import (
	"amberlang/internal/object"
	"amberlang/internal/process"
	"amberlang/internal/vmerrors"
)

// attrName reads the name register as a string object, the representation
// every attribute/method name takes once loaded (spec.md §6 string
// literals are interned; bytecode never carries raw attribute names
// outside the literal table).
func attrName(f *process.Frame, reg int) (string, error) {
	v := f.GetRegister(reg)
	if !v.IsHeap() || v.HeapObject().Kind != object.KindString {
		return "", vmerrors.New(vmerrors.InvalidType, "expected a string register for an attribute/method name")
	}
	return v.HeapObject().Str, nil
}

func (ip *Interpreter) opAllocate(p *process.Process, f *process.Frame, instr object.Instruction) (signal, error) {
	r, protoReg := int(instr.Operands[0]), int(instr.Operands[1])
	o := object.New(object.Local)
	o.SetPrototype(f.GetRegister(protoReg))
	ptr, err := ip.allocate(p, o)
	if err != nil {
		return sigThrow, err
	}
	f.SetRegister(r, ptr)
	f.PC++
	return sigContinue, nil
}

func (ip *Interpreter) opSetAttribute(p *process.Process, f *process.Frame, instr object.Instruction) (signal, error) {
	objReg, nameReg, valReg := int(instr.Operands[0]), int(instr.Operands[1]), int(instr.Operands[2])
	target := f.GetRegister(objReg)
	if !target.IsHeap() {
		return sigThrow, vmerrors.New(vmerrors.InvalidType, "SetAttribute: target is not an object")
	}
	name, err := attrName(f, nameReg)
	if err != nil {
		return sigThrow, err
	}
	target.HeapObject().AddAttribute(name, f.GetRegister(valReg))
	f.PC++
	return sigContinue, nil
}

func (ip *Interpreter) opGetAttribute(p *process.Process, f *process.Frame, instr object.Instruction, strict bool) (signal, error) {
	r, objReg, nameReg := int(instr.Operands[0]), int(instr.Operands[1]), int(instr.Operands[2])
	target := f.GetRegister(objReg)
	name, err := attrName(f, nameReg)
	if err != nil {
		return sigThrow, err
	}
	v, ok := object.LookupAttribute(target, name)
	if !ok {
		if strict {
			return sigThrow, vmerrors.New(vmerrors.UndefinedAttribute, "undefined attribute %q", name)
		}
		v = object.Nil
	}
	f.SetRegister(r, v)
	f.PC++
	return sigContinue, nil
}

func (ip *Interpreter) opDefMethod(p *process.Process, f *process.Frame, instr object.Instruction) (signal, error) {
	r, recvReg, nameReg, codeReg := int(instr.Operands[0]), int(instr.Operands[1]), int(instr.Operands[2]), int(instr.Operands[3])
	recv := f.GetRegister(recvReg)
	if !recv.IsHeap() {
		return sigThrow, vmerrors.New(vmerrors.InvalidType, "DefMethod: receiver is not an object")
	}
	name, err := attrName(f, nameReg)
	if err != nil {
		return sigThrow, err
	}
	codeVal := f.GetRegister(codeReg)
	recv.HeapObject().AddMethod(name, codeVal)
	f.SetRegister(r, codeVal)
	f.PC++
	return sigContinue, nil
}

func (ip *Interpreter) opLookupMethod(p *process.Process, f *process.Frame, instr object.Instruction) (signal, error) {
	r, recvReg, nameReg := int(instr.Operands[0]), int(instr.Operands[1]), int(instr.Operands[2])
	name, err := attrName(f, nameReg)
	if err != nil {
		return sigThrow, err
	}
	v, _ := object.LookupMethod(f.GetRegister(recvReg), name)
	f.SetRegister(r, v)
	f.PC++
	return sigContinue, nil
}

func (ip *Interpreter) opRespondsTo(p *process.Process, f *process.Frame, instr object.Instruction) (signal, error) {
	r, objReg, nameReg := int(instr.Operands[0]), int(instr.Operands[1]), int(instr.Operands[2])
	name, err := attrName(f, nameReg)
	if err != nil {
		return sigThrow, err
	}
	ok := object.RespondsTo(f.GetRegister(objReg), name)
	v := object.Int(0)
	if ok {
		v = object.Int(1)
	}
	f.SetRegister(r, v)
	f.PC++
	return sigContinue, nil
}
