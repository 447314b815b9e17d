// Package bytecode implements the on-disk module format and loader of
// spec.md §6: a length-prefixed literals section followed by a recursive
// CompiledCode record tree, loaded once into the permanent space per
// process-global VM instance.
package bytecode

// Magic and Version identify the bit-stable module format header
// (spec.md §6 "Header: magic bytes, format version").
var Magic = [4]byte{'A', 'M', 'B', 'R'}

const Version uint16 = 1

// LiteralKind tags each entry of the literals section.
type LiteralKind uint8

const (
	LiteralInt64 LiteralKind = iota
	LiteralFloat64
	LiteralString
	LiteralBigInt
	LiteralArray
)
