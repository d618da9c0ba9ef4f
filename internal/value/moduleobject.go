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

package value

import "github.com/jsshaker/shaker/internal/depgraph"

// ModuleID identifies a loaded module for the lifetime of one analysis.
type ModuleID uint32

// ModuleExports is the narrow view a ModuleObject needs of its owning
// module: its resolved export bindings. internal/module.ModuleInfo
// implements this structurally so value need not import internal/module
// (which itself depends on value), avoiding an import cycle.
type ModuleExports interface {
	ExportEntity(name string) (Entity, bool)
	ExportNames() []string
	ModuleDep() depgraph.Dep
}

// ModuleObject is the namespace object produced by `import * as ns` or by
// CommonJS interop, per spec.md section 3.3. It is lazy: exports are
// resolved through the ModuleExports view at GetProperty/Enumerate time
// rather than snapshotted at construction, so that circular imports
// observe later-settled bindings correctly (spec.md's blocked_imports
// replay, section 4.7).
type ModuleObject struct {
	Base

	ID      ModuleID
	Exports ModuleExports
}

func NewModuleObject(id ModuleID, exports ModuleExports) *ModuleObject {
	return &ModuleObject{ID: id, Exports: exports}
}

func (m *ModuleObject) Kind() Kind { return KindModuleObject }

func (m *ModuleObject) Consume(g *depgraph.Graph) {
	g.Consume(m.Exports.ModuleDep())
}

func (m *ModuleObject) TestTypeof() TypeofMask { return TypeofObject }
func (m *ModuleObject) TestTruthy() Tri        { return TriTrue }
func (m *ModuleObject) TestNullish() Tri       { return TriFalse }

func (m *ModuleObject) GetProperty(ctx Ctx, dep depgraph.Dep, key PropertyKey) Entity {
	ctx.Consume(dep)
	ctx.Consume(m.Exports.ModuleDep())
	if !key.IsSymbol {
		if e, ok := m.Exports.ExportEntity(key.Str); ok {
			return e
		}
	}
	return Entity{Value: &Literal{LKind: LitUndefined}, Dep: dep}
}

func (m *ModuleObject) EnumerateProperties(ctx Ctx, dep depgraph.Dep) EnumerateResult {
	ctx.Consume(dep)
	ctx.Consume(m.Exports.ModuleDep())
	known := make(map[string]EnumerateEntry)
	for _, name := range m.Exports.ExportNames() {
		if e, ok := m.Exports.ExportEntity(name); ok {
			known[name] = EnumerateEntry{Definite: true, Key: Entity{Value: &Literal{LKind: LitString, Str: name}}, Val: e}
		}
	}
	return EnumerateResult{Known: known, Dep: dep}
}

// AsCacheable reports the module itself as cacheable by identity: re-
// evaluating the same call against the same settled module is safe to
// reuse provided every export it read is itself cacheable (checked by
// internal/cache at the read-set level).
func (m *ModuleObject) AsCacheable() (Cacheable, bool) {
	return Cacheable{Kind: CacheableModule, InstID: uint64(m.ID)}, true
}
