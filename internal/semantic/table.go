// Package semantic defines the semantic-table contract spec.md treats as an
// external collaborator: scopes, symbols, and references produced by a real
// semantic analyzer. This package supplies the minimal shape the analyzer
// core needs (a stable SymbolId per binding, plus enough reference
// information to compute readonly_symbol_cache) without implementing full
// ES scoping rules.
package semantic

import "github.com/jsshaker/shaker/internal/ast"

// SymbolId identifies one binding (a declared name in one lexical scope) for
// the lifetime of a module's analysis.
type SymbolId uint32

// Table is a minimal semantic table: one entry per declared binding, with
// the set of AST nodes that read or write it. A real front end would
// populate this while building scopes; for this analyzer it is populated by
// internal/visit's declare pass as it walks declarations.
type Table struct {
	symbols []symbolInfo
}

type symbolInfo struct {
	name   string
	writes []ast.NodeId
	reads  []ast.NodeId
}

// NewTable creates an empty semantic table.
func NewTable() *Table {
	return &Table{}
}

// Declare registers a new binding and returns its SymbolId.
func (t *Table) Declare(name string) SymbolId {
	id := SymbolId(len(t.symbols))
	t.symbols = append(t.symbols, symbolInfo{name: name})
	return id
}

// Name returns the declared name of id.
func (t *Table) Name(id SymbolId) string {
	return t.symbols[id].name
}

// RecordWrite notes that node writes to id (an assignment or an
// initializing declarator).
func (t *Table) RecordWrite(id SymbolId, node ast.NodeId) {
	t.symbols[id].writes = append(t.symbols[id].writes, node)
}

// RecordRead notes that node reads id.
func (t *Table) RecordRead(id SymbolId, node ast.NodeId) {
	t.symbols[id].reads = append(t.symbols[id].reads, node)
}

// IsReadonly reports whether id is written to at most once (its
// initializing declarator counts as the one allowed write). This backs the
// readonly_symbol_cache feature from original_source/crates/jsshaker/src/module.rs:
// a binding that is provably never reassigned lets exhaustive write-tracking
// be skipped for it entirely.
func (t *Table) IsReadonly(id SymbolId) bool {
	return len(t.symbols[id].writes) <= 1
}

// Reads returns the nodes that read id, for diagnostics and dead-binding
// detection.
func (t *Table) Reads(id SymbolId) []ast.NodeId {
	return t.symbols[id].reads
}
