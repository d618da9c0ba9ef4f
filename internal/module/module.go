// Copyright 2024 jsshaker Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package module implements the module loader/linker of spec.md section
// 4.7: ModuleInfo, exec_module's hoist/init/replay sequence,
// consume_exports, and re-export resolution.
//
// Grounded directly on original_source/crates/jsshaker/src/module.rs and
// structurally on cuelang.org/go/cue/build.Instance and
// internal/core/runtime for the "one loader, many linked modules" shape.
package module

import (
	"github.com/jsshaker/shaker/internal/ast"
	"github.com/jsshaker/shaker/internal/depgraph"
	"github.com/jsshaker/shaker/internal/scope"
	"github.com/jsshaker/shaker/internal/semantic"
	"github.com/jsshaker/shaker/internal/value"
)

// ExportedValueKind distinguishes the five shapes a named export may take.
type ExportedValueKind uint8

const (
	ExportVariable ExportedValueKind = iota
	ExportFunction
	ExportNamespace
	ExportReExport
	ExportUnknown
)

// ExportedValue is one named export binding, per spec.md / module.rs.
type ExportedValue struct {
	Kind ExportedValueKind

	// ExportVariable
	Scope  scope.VariableScopeID
	Symbol semantic.SymbolId

	// ExportFunction / ExportNamespace
	Entity value.Entity

	// ExportReExport
	ReExportFrom value.ModuleID
	ReExportName string

	Dep depgraph.Dep
}

// BlockedImport is one `import` deferred because the source module was
// still initializing when this module tried to import from it (a
// circular-import cycle), per spec.md's SUPPLEMENTED FEATURES: replayed
// once the source module finishes in exec_module's tail.
type BlockedImport struct {
	From  value.ModuleID
	Scope scope.VariableScopeID
	Node  ast.NodeId
}

// Info is the per-module state spec.md calls ModuleInfo.
type Info struct {
	ID   value.ModuleID
	Path string

	Program ast.NodeId // the module's top-level Program node

	CallID depgraph.DepAtom

	// ReadonlySymbolCache memoizes "is this binding ever reassigned",
	// computed once per symbol from the semantic table's write list, per
	// spec.md's SUPPLEMENTED FEATURES entry for readonly_symbol_cache.
	ReadonlySymbolCache map[semantic.SymbolId]bool

	ResolvedImports map[string]value.ModuleID
	NamedExports    map[string]ExportedValue
	DefaultExport   *value.Entity // nil = no default export; TDZ is modeled by analyzer, not here

	// ReexportAll holds every `export * from` target in registration order.
	// Kept as a slice rather than a map so GetExportValueByName/
	// DoesModuleReexportUnknown resolve names deterministically: map
	// iteration order is randomized per run, which would otherwise make
	// which `export * from` target wins an unstable choice, per spec.md
	// section 5's deterministic-hash-container-iteration invariant.
	ReexportAll     []value.ModuleID
	reexportAllSeen map[value.ModuleID]bool
	ReexportUnknown bool

	ModuleObjectValue *value.ModuleObject

	Initializing bool
	Initialized  bool

	BlockedImports []BlockedImport

	// resolveEntity and loader back ExportEntity/ModuleDep; wired by
	// Loader.Register once the module is registered, since the module
	// needs its owning Loader to resolve re-exports and cross-module reads.
	resolveEntity moduleExportResolver
	loader        *Loader
}

// NewInfo allocates module bookkeeping for a freshly parsed module at path,
// with a dedicated ModuleObject namespace value.
func NewInfo(id value.ModuleID, path string, program ast.NodeId, callID depgraph.DepAtom) *Info {
	info := &Info{
		ID:                  id,
		Path:                path,
		Program:             program,
		CallID:              callID,
		ReadonlySymbolCache: make(map[semantic.SymbolId]bool),
		ResolvedImports:     make(map[string]value.ModuleID),
		NamedExports:        make(map[string]ExportedValue),
		reexportAllSeen:     make(map[value.ModuleID]bool),
	}
	info.ModuleObjectValue = value.NewModuleObject(id, info)
	return info
}

// AddReexportAll registers target as an `export * from` source, in
// registration order, deduplicating repeated registrations of the same
// target.
func (info *Info) AddReexportAll(target value.ModuleID) {
	if info.reexportAllSeen[target] {
		return
	}
	info.reexportAllSeen[target] = true
	info.ReexportAll = append(info.ReexportAll, target)
}

// IsReadonlySymbol answers spec.md's is_readonly_symbol, memoizing against
// the semantic table's recorded writes.
func (info *Info) IsReadonlySymbol(table *semantic.Table, sym semantic.SymbolId) bool {
	if v, ok := info.ReadonlySymbolCache[sym]; ok {
		return v
	}
	v := table.IsReadonly(sym)
	info.ReadonlySymbolCache[sym] = v
	return v
}

// ExportEntity implements value.ModuleExports for the ModuleObject
// namespace value: resolving a name requires re-entering the owning
// Loader, so Info alone cannot answer it; Loader.Register installs the
// resolving closure once the module is registered.
func (info *Info) ExportEntity(name string) (value.Entity, bool) {
	if info.resolveEntity == nil {
		return value.Entity{}, false
	}
	return info.resolveEntity(name)
}

func (info *Info) ExportNames() []string {
	names := make([]string, 0, len(info.NamedExports)+1)
	for n := range info.NamedExports {
		names = append(names, n)
	}
	if info.DefaultExport != nil {
		names = append(names, "default")
	}
	return names
}

func (info *Info) ModuleDep() depgraph.Dep {
	return depgraph.OfConsumer(moduleIDConsumer{id: info.ID, loader: info.loader})
}

// moduleExportResolver resolves one named export to its current entity;
// Loader.Register installs this once the module is linked into a Loader,
// mirroring module.rs's two-phase "allocate ModuleInfo, then push into
// Modules.modules".
type moduleExportResolver func(name string) (value.Entity, bool)

// moduleIDConsumer implements depgraph.Consumer the same way module.rs's
// `impl CustomDepTrait for ModuleId` does: consuming a module dep forces
// every one of its exports to be consumed too.
type moduleIDConsumer struct {
	id     value.ModuleID
	loader *Loader
}

func (c moduleIDConsumer) Consume(g *depgraph.Graph) {
	if c.loader != nil {
		c.loader.ConsumeExports(g, c.id)
	}
}
