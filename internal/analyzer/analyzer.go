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

// Package analyzer implements the central analyzer handle of spec.md
// sections 4.1-4.9: it owns the dependency graph, value factory, scope
// stack, exhaustive registry, conditional tracker, function-effect cache,
// mangler, and module loader, and drives module execution, function calls,
// and the post-analysis fixpoint.
//
// Grounded structurally on cuelang.org/go/internal/core/adt's OpContext (one
// mutable handle threaded through every evaluation step, reborrowed per
// call) and on original_source/crates/jsshaker/src/analyzer.rs for the
// fixpoint driver's shape.
package analyzer

import (
	"fmt"

	"github.com/jsshaker/shaker/internal/arena"
	"github.com/jsshaker/shaker/internal/ast"
	"github.com/jsshaker/shaker/internal/cache"
	"github.com/jsshaker/shaker/internal/conditional"
	"github.com/jsshaker/shaker/internal/config"
	"github.com/jsshaker/shaker/internal/depgraph"
	"github.com/jsshaker/shaker/internal/diagnostics"
	"github.com/jsshaker/shaker/internal/exhaustive"
	"github.com/jsshaker/shaker/internal/mangle"
	"github.com/jsshaker/shaker/internal/module"
	"github.com/jsshaker/shaker/internal/scope"
	"github.com/jsshaker/shaker/internal/semantic"
	"github.com/jsshaker/shaker/internal/shakerdebug"
	"github.com/jsshaker/shaker/internal/value"
)

// Analyzer is the single mutable handle threaded through one whole-program
// analysis. It is not safe for concurrent use: spec.md requires a strictly
// single-threaded, cooperative execution model.
type Analyzer struct {
	Graph_   *depgraph.Graph
	Factory_ *value.Factory
	Mangler  *mangle.Mangler
	Loader   *module.Loader
	Cache    *cache.Cache
	Exh      *exhaustive.Registry
	Cond     *conditional.Tracker
	Cfg      *config.TreeShakeConfig

	Diags diagnostics.List

	// Stack is the single shared CF/variable scope stack: nested function
	// calls push deeper into the same CfScope slice, as CallScope.FnCfDepth
	// assumes.
	Stack *scope.Stack

	callStack   []*scope.CallScope
	callScopeID arena.Counter

	varScopeID arena.Counter
	varScopes  map[scope.VariableScopeID]*scope.VariableScope

	moduleTables map[value.ModuleID]*semantic.Table

	nextCallSite conditional.CallSiteID

	// recursionGuard counts, per Function, how many frames of the current
	// call stack are already executing that function's body, implementing
	// max_recursion_depth.
	recursionGuard map[value.FunctionID]int

	// recordingReads/recordingWrites point at the active call's cache log
	// while function-effect caching is enabled; nil otherwise.
	recordingReads  *[]cache.ReadEntry
	recordingWrites *[]cache.WriteEntry
}

// New creates an Analyzer ready to load and execute modules.
func New(cfg *config.TreeShakeConfig) *Analyzer {
	a := &Analyzer{
		Graph_:         depgraph.NewGraph(),
		Factory_:       value.NewFactory(),
		Mangler:        mangle.New(cfg.Mangling != config.ManglingOff),
		Loader:         module.NewLoader(),
		Cache:          cache.New(),
		Exh:            exhaustive.NewRegistry(),
		Cond:           conditional.NewTracker(),
		Cfg:            cfg,
		varScopes:      make(map[scope.VariableScopeID]*scope.VariableScope),
		moduleTables:   make(map[value.ModuleID]*semantic.Table),
		recursionGuard: make(map[value.FunctionID]int),
	}
	a.Loader.SetVariableReader(a)
	root := a.newVarScope(nil)
	a.Stack = scope.NewStack(root)
	return a
}

// --- value.Ctx ---

func (a *Analyzer) Graph() *depgraph.Graph { return a.Graph_ }
func (a *Analyzer) Consume(d depgraph.Dep)  { a.Graph_.Consume(d) }
func (a *Analyzer) Factory() *value.Factory { return a.Factory_ }

// ThrowBuiltinError implements spec.md section 7's throw_builtin_error: a
// diagnostic is always recorded; control either unwinds to Never or returns
// an "escaped" Unknown entity that absorbs further operations, depending on
// preserve_exceptions.
func (a *Analyzer) ThrowBuiltinError(pos ast.Position, format string, args ...interface{}) value.Entity {
	a.Diags.Addf(toDiagPos(pos), format, args...)
	dep := depgraph.NoDep
	if depth, ok := a.exitToNearestCatch(); ok {
		d, _ := a.Stack.ExitTo(depth)
		dep = d
	}
	if a.Cfg.PreserveExceptions() {
		return a.Factory_.ComputedUnknown(dep)
	}
	return a.Factory_.ComputedNever(dep)
}

// exitToNearestCatch is a placeholder hook for try/catch targeting; without
// try-catch CF scopes registered yet it always unwinds to the module root.
func (a *Analyzer) exitToNearestCatch() (int, bool) {
	return 0, a.Stack.Depth() > 1
}

func toDiagPos(p ast.Position) diagnostics.Position {
	return diagnostics.Position{
		Path:      p.Path,
		StartLine: p.StartLine,
		StartCol:  p.StartCol,
		EndLine:   p.EndLine,
		EndCol:    p.EndCol,
	}
}

func (a *Analyzer) Config() value.ConfigView { return a.Cfg }

// --- module.VariableReader ---

// ReadExportedVariable implements module.VariableReader: resolve sym
// directly against the recorded VariableScope, bypassing exhaustive
// tracking since this read happens outside normal statement execution (a
// consumer importing the module's named export).
func (a *Analyzer) ReadExportedVariable(scopeID scope.VariableScopeID, sym semantic.SymbolId) value.Entity {
	vs, ok := a.varScopes[scopeID]
	if !ok {
		return value.Entity{Value: value.TheUnknown()}
	}
	v, ok := vs.Get(sym)
	if !ok || !v.Initialized {
		return value.Entity{Value: value.TheUnknown()}
	}
	if v.ExhaustedDep != nil {
		return value.Entity{Value: value.TheUnknown(), Dep: depgraph.OfLazy(v.ExhaustedDep)}
	}
	return v.Value
}

// --- scope bookkeeping ---

func (a *Analyzer) newVarScope(parent *scope.VariableScope) *scope.VariableScope {
	id := scope.VariableScopeID(a.varScopeID.Next())
	vs := scope.NewVariableScope(id, parent)
	a.varScopes[id] = vs
	return vs
}

// PushVarScope opens a child scope of the currently active one and installs
// it on the shared Stack.
func (a *Analyzer) PushVarScope() *scope.VariableScope {
	id := scope.VariableScopeID(a.varScopeID.Next())
	vs := a.Stack.PushVarScope(id)
	a.varScopes[id] = vs
	return vs
}

func (a *Analyzer) PopVarScope() { a.Stack.PopVarScope() }

// ModuleTable returns (creating if absent) the semantic table backing one
// module's readonly_symbol_cache and exhaustive bookkeeping.
func (a *Analyzer) ModuleTable(id value.ModuleID) *semantic.Table {
	t, ok := a.moduleTables[id]
	if !ok {
		t = semantic.NewTable()
		a.moduleTables[id] = t
	}
	return t
}

// NewCallSite mints a fresh conditional.CallSiteID for a deoptimizable call
// expression.
func (a *Analyzer) NewCallSite() conditional.CallSiteID {
	id := a.nextCallSite
	a.nextCallSite++
	return id
}

// logFixpoint is consulted by finalize; kept as a small helper so the
// JSSHAKER_DEBUG gate only needs checking in one place.
func (a *Analyzer) logFixpoint(format string, args ...interface{}) {
	if shakerdebug.Flags.LogFixpoint {
		fmt.Printf("[fixpoint] "+format+"\n", args...)
	}
}
