package object

import (
	"hash/fnv"
	"sync"
)

// Symbol is an interned name: the 64-bit FNV-1a hash of its UTF-8 bytes plus
// the canonical string. LookupMethod/LookupAttribute and the loader do not
// use Symbols; attribute and method tables are keyed by plain strings.
type Symbol struct {
	Hash uint64
	Name string
}

// Table is a process-global, write-once-per-name symbol table. It is safe
// for concurrent use: module loading happens once per module under a
// mutex, matching the permanent-space discipline of spec.md §5.
type Table struct {
	mu   sync.Mutex
	byName map[string]Symbol
}

// NewTable returns an empty symbol table.
func NewTable() *Table {
	return &Table{byName: make(map[string]Symbol)}
}

// Intern returns the Symbol for name, computing and caching its hash on
// first use.
func (t *Table) Intern(name string) Symbol {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.byName[name]; ok {
		return s
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	s := Symbol{Hash: h.Sum64(), Name: name}
	t.byName[name] = s
	return s
}
