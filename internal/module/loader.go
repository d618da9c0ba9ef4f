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

package module

import (
	"github.com/jsshaker/shaker/internal/depgraph"
	"github.com/jsshaker/shaker/internal/scope"
	"github.com/jsshaker/shaker/internal/semantic"
	"github.com/jsshaker/shaker/internal/value"
)

// VariableReader is the narrow view a Loader needs of the analyzer to read
// a module-scope binding when resolving an ExportVariable export.
// internal/analyzer.Analyzer implements this; kept as an interface here to
// avoid an import cycle (analyzer depends on module, not vice versa).
type VariableReader interface {
	ReadExportedVariable(scopeID scope.VariableScopeID, sym semantic.SymbolId) value.Entity
}

// Loader owns every parsed module for one analysis and implements
// exec_module / consume_exports / get_export_value_by_name.
type Loader struct {
	byID   []*Info
	byPath map[string]value.ModuleID
	reader VariableReader
}

// NewLoader creates an empty module table.
func NewLoader() *Loader {
	return &Loader{byPath: make(map[string]value.ModuleID)}
}

// SetVariableReader wires the analyzer's variable-read capability in, once
// it exists; must be called before any ExportVariable export is resolved.
func (l *Loader) SetVariableReader(r VariableReader) { l.reader = r }

// Register links a freshly constructed Info into this loader, installing
// the export-resolution closure the ModuleObject namespace value needs.
func (l *Loader) Register(info *Info) {
	info.loader = l
	info.resolveEntity = func(name string) (value.Entity, bool) {
		return l.GetExportValueByName(info.ID, name, make(map[value.ModuleID]bool))
	}
	for int(info.ID) >= len(l.byID) {
		l.byID = append(l.byID, nil)
	}
	l.byID[info.ID] = info
	l.byPath[info.Path] = info.ID
}

// Lookup returns the Info for id.
func (l *Loader) Lookup(id value.ModuleID) *Info { return l.byID[id] }

// All returns every module registered with this loader, in registration
// order, for a driver-side pass (transform's Plan builder, diagnostics
// dumps) that needs to walk the whole program rather than one module.
func (l *Loader) All() []*Info {
	out := make([]*Info, 0, len(l.byID))
	for _, info := range l.byID {
		if info != nil {
			out = append(out, info)
		}
	}
	return out
}

// LookupPath returns the ModuleID already registered for path, if any.
func (l *Loader) LookupPath(path string) (value.ModuleID, bool) {
	id, ok := l.byPath[path]
	return id, ok
}

// ConsumeExports implements module.rs's consume_exports: force every
// exported value (default plus all named exports, resolving re-exports
// transitively) to be consumed, and refer the module's call id so the
// module-level statements themselves stay live.
func (l *Loader) ConsumeExports(g *depgraph.Graph, id value.ModuleID) {
	info := l.byID[id]
	if info == nil {
		return
	}
	g.Consume(depgraph.OfNode(depgraph.NodeId(info.CallID)))
	if info.DefaultExport != nil {
		info.DefaultExport.Consume(g)
	}
	for name := range info.NamedExports {
		if e, ok := l.GetExportValueByName(id, name, make(map[value.ModuleID]bool)); ok {
			e.Consume(g)
		}
	}
}

// GetExportValueByName implements get_export_value_by_name: resolve name
// against module id's own named exports, falling back to every
// `export * from` target in registration order, guarding against cycles
// via searched.
func (l *Loader) GetExportValueByName(id value.ModuleID, name string, searched map[value.ModuleID]bool) (value.Entity, bool) {
	if searched[id] {
		return value.Entity{}, false
	}
	searched[id] = true
	info := l.byID[id]
	if info == nil {
		return value.Entity{}, false
	}
	if name == "default" {
		if info.DefaultExport != nil {
			return *info.DefaultExport, true
		}
		return value.Entity{}, false
	}
	if ev, ok := info.NamedExports[name]; ok {
		return l.resolveExportedValue(id, ev), true
	}
	for _, reexportID := range info.ReexportAll {
		if e, ok := l.GetExportValueByName(reexportID, name, searched); ok {
			return e, true
		}
	}
	return value.Entity{}, false
}

func (l *Loader) resolveExportedValue(id value.ModuleID, ev ExportedValue) value.Entity {
	switch ev.Kind {
	case ExportFunction, ExportNamespace:
		return ev.Entity
	case ExportReExport:
		if e, ok := l.GetExportValueByName(ev.ReExportFrom, ev.ReExportName, make(map[value.ModuleID]bool)); ok {
			return e
		}
		return value.Entity{Dep: ev.Dep}
	case ExportUnknown:
		return value.Entity{Value: value.TheUnknown(), Dep: ev.Dep}
	default: // ExportVariable
		if l.reader == nil {
			return value.Entity{Value: value.TheUnknown(), Dep: ev.Dep}
		}
		v := l.reader.ReadExportedVariable(ev.Scope, ev.Symbol)
		return value.Entity{Value: v.Value, Dep: depgraph.OfTuple(ev.Dep, v.Dep)}
	}
}

// DoesModuleReexportUnknown implements does_module_reexport_unknown.
func (l *Loader) DoesModuleReexportUnknown(id value.ModuleID, searched map[value.ModuleID]bool) bool {
	if searched[id] {
		return false
	}
	searched[id] = true
	info := l.byID[id]
	if info == nil {
		return false
	}
	if info.ReexportUnknown {
		return true
	}
	for _, reexportID := range info.ReexportAll {
		if l.DoesModuleReexportUnknown(reexportID, searched) {
			return true
		}
	}
	return false
}
