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

import (
	"github.com/jsshaker/shaker/internal/arena"
	"github.com/jsshaker/shaker/internal/ast"
	"github.com/jsshaker/shaker/internal/depgraph"
)

// Factory is the single allocator for fresh Values during an analysis,
// grounded on original_source/crates/jsshaker/src/analyzer/mod.rs's
// `factory.computed` / `factory.computed_unknown` / `factory.unknown`
// helpers: every "I need a new Unknown/Object/Array/Function attributed to
// this dep" call goes through here so ID allocation stays centralized and
// deterministic across re-runs of the fixpoint.
type Factory struct {
	objects   arena.Counter
	arrays    arena.Counter
	functions arena.Counter
	elements  arena.Counter
	modules   arena.Counter
}

// NewFactory creates an empty allocator. One Factory is owned per analysis
// (by internal/analyzer.Analyzer), matching one depgraph.Graph.
func NewFactory() *Factory {
	return &Factory{}
}

// ComputedUnknown returns an Entity wrapping the shared Unknown singleton
// attributed to dep. This is the single most common Factory call: any
// operation that gives up precision funnels through it.
func (f *Factory) ComputedUnknown(dep depgraph.Dep) Entity {
	return Entity{Value: TheUnknown(), Dep: dep}
}

// ComputedNever returns an Entity wrapping the shared Never singleton
// attributed to dep, used when an operation determines its result is
// statically unreachable (e.g. the untaken arm of a resolved conditional).
func (f *Factory) ComputedNever(dep depgraph.Dep) Entity {
	return Entity{Value: TheNever(), Dep: dep}
}

// UnionOf builds the normalized union of members, applying the Never-drop /
// single-survivor / Unknown-absorption rules of union.go, and returns it as
// a single Entity whose Dep already folds in every member's Dep plus the
// caller-supplied dep.
func (f *Factory) UnionOf(dep depgraph.Dep, members ...Entity) Entity {
	v, d := NewUnion(dep, members...)
	return Entity{Value: v, Dep: d}
}

// NewObject allocates a fresh, empty Object created in the given CF scope.
func (f *Factory) NewObject(createdIn CfScopeID) *Object {
	id := ObjectID(f.objects.Next())
	return NewObject(id, createdIn)
}

// NewArray allocates a fresh, empty Array created in the given CF scope.
func (f *Factory) NewArray(createdIn CfScopeID) *Array {
	id := ArrayID(f.arrays.Next())
	return NewArray(id, createdIn)
}

// NewFunction allocates a fresh Function instance bound to node and the
// given lexical scope.
func (f *Factory) NewFunction(node ast.NodeId, kind FunctionKind, lexical LexicalScopeID) *Function {
	id := FunctionID(f.functions.Next())
	return NewFunction(id, node, kind, lexical)
}

// NewReactElement allocates a fresh ReactElement wrapping the given tag,
// props, and children.
func (f *Factory) NewReactElement(tag, props Entity, children []Entity) *ReactElement {
	id := ReactElementID(f.elements.Next())
	return NewReactElement(id, tag, props, children)
}

// NewModuleID mints a fresh ModuleID; internal/module owns the mapping from
// ModuleID back to a ModuleInfo.
func (f *Factory) NewModuleID() ModuleID {
	return ModuleID(f.modules.Next())
}
