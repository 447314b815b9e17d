package bytecode

import (
	"sync"

	"amberlang/internal/object"
	"amberlang/internal/vmerrors"
)

// Module is one loaded bytecode file: its literal table, its top-level
// CompiledCode, and its global scope (spec.md §3, §6, §9 "two-phase module
// lifecycle (loading → sealed)").
type Module struct {
	Name     string
	Literals []object.Pointer
	Code     *object.CompiledCodeValue

	mu      sync.Mutex
	globals []object.Pointer
	sealed  bool
}

// NewModule returns an empty, unsealed Module with slots globals wide.
func NewModule(name string, globalSlots int) *Module {
	return &Module{Name: name, globals: make([]object.Pointer, globalSlots)}
}

// GetGlobal reads global scope entry idx (spec.md §4.E GetGlobal). Reads
// are unsynchronized once Seal has been called, per spec.md §5's
// "Permanent-space discipline"; before sealing they still take the lock
// since module load itself may run concurrently with early access in
// pathological embeddings (defensive, not required by the single-threaded
// load spec.md assumes).
func (m *Module) GetGlobal(idx int) (object.Pointer, error) {
	if idx < 0 || idx >= len(m.globals) {
		return object.Nil, vmerrors.New(vmerrors.InvalidType, "global index %d out of range", idx)
	}
	if m.sealed {
		return m.globals[idx], nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.globals[idx], nil
}

// SetGlobal writes global scope entry idx. Only permanent pointers are
// accepted (spec.md §4.E "SetGlobal ... only permanent pointers accepted
// in globals"), and only before the module is sealed.
func (m *Module) SetGlobal(idx int, v object.Pointer) error {
	if !v.IsPermanent() {
		return vmerrors.New(vmerrors.InvalidType, "SetGlobal requires a permanent pointer")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sealed {
		return vmerrors.New(vmerrors.InvalidType, "module %q is sealed, global scope is read-only", m.Name)
	}
	if idx < 0 || idx >= len(m.globals) {
		return vmerrors.New(vmerrors.InvalidType, "global index %d out of range", idx)
	}
	m.globals[idx] = v
	return nil
}

// Seal ends the module's loading phase; no further global writes are
// accepted afterward.
func (m *Module) Seal() {
	m.mu.Lock()
	m.sealed = true
	m.mu.Unlock()
}
