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

// Package visit implements the statement/expression interpreter that walks
// a module's AST under internal/analyzer's control: it supplies the
// BodyRunner and ModuleRunner callbacks analyzer.CallFunction/ExecModule
// invoke. It imports internal/analyzer directly
// (analyzer never imports visit back; the two communicate only through the
// small function-typed hooks analyzer.BodyRunner/ModuleRunner).
//
// Grounded structurally on cuelang.org/go/internal/core/adt's eval.go (one
// recursive evaluator closing over a shared OpContext, dispatching on
// concrete expression type) and on
// original_source/crates/jsshaker/src/analyzer/exec.rs for the statement/
// expression visiting rules themselves.
package visit

import (
	"github.com/jsshaker/shaker/internal/analyzer"
	"github.com/jsshaker/shaker/internal/ast"
	"github.com/jsshaker/shaker/internal/conditional"
	"github.com/jsshaker/shaker/internal/depgraph"
	"github.com/jsshaker/shaker/internal/mangle"
	"github.com/jsshaker/shaker/internal/module"
	"github.com/jsshaker/shaker/internal/scope"
	"github.com/jsshaker/shaker/internal/semantic"
	"github.com/jsshaker/shaker/internal/value"
)

// ModuleResolver resolves an import specifier relative to the importing
// module's path to an already-parsed program, per spec.md section 1's
// external-collaborator split: parsing and module resolution are owned by
// the driver (the shaker package), not by the interpreter itself.
type ModuleResolver interface {
	Resolve(fromPath, specifier string) (path string, program *ast.Program, err error)
}

// binder resolves a bare identifier name to the semantic.SymbolId that
// declared it, forming a linked tree that mirrors scope.VariableScope one
// for one. The minimal AST contract leaves name resolution to "an external
// collaborator" (see internal/ast's package doc); binder is this
// interpreter's substitute for that collaborator, kept private to this
// package since nothing outside visit needs to resolve a bare name.
type binder struct {
	parent *binder
	names  map[string]semantic.SymbolId
}

func newBinder(parent *binder) *binder {
	return &binder{parent: parent, names: make(map[string]semantic.SymbolId)}
}

func (b *binder) declare(name string, sym semantic.SymbolId) {
	b.names[name] = sym
}

func (b *binder) resolve(name string) (semantic.SymbolId, bool) {
	for cur := b; cur != nil; cur = cur.parent {
		if id, ok := cur.names[name]; ok {
			return id, true
		}
	}
	return 0, false
}

// closureInfo is captured at function-creation time and replayed at call
// time, so a function body sees the lexical binder chain (and semantic
// table/module) active where it was DEFINED rather than where it was
// CALLED from, matching JS closure semantics.
type closureInfo struct {
	binder   *binder
	table    *semantic.Table
	moduleID value.ModuleID

	// capturedScope is the variable scope active when this function's
	// FunctionNode was evaluated into a value.Function; dispatchCall
	// swaps it in as the call's "current" scope before the generic
	// analyzer.CallFunction body-scope push, giving the callee static rather
	// than dynamic variable scoping.
	capturedScope *scope.VariableScope

	params  []*ast.Param
	body    *ast.BlockStatement
	isArrow bool

	// instanceFields/instanceMethods back a class constructor closure only
	// (fn.FnKind == value.FnClassConstructor): installInstanceMembers
	// (class.go) runs them against the fresh instance object once per
	// construction, in place of a shared prototype chain (see class.go's
	// doc on why).
	instanceFields  []*ast.ClassMember
	instanceMethods []*ast.ClassMember

	// hasSelf/selfSym/selfName back a named function expression's own
	// self-reference binding, resolved inside its own body only.
	hasSelf  bool
	selfSym  semantic.SymbolId
	selfName string

	// superCtor is non-nil when this closure is a class constructor with an
	// `extends` clause, used by `super(...)` call handling in expr.go.
	superCtor *value.Function
}

// Interpreter hosts every per-analysis, non-global piece of mutable state
// the visitor needs beyond what internal/analyzer already owns: the
// current binder chain, per-function closure captures, per-module semantic
// tables, the pragma registry, and per-object-literal mangle groups. One
// Interpreter serves exactly one Analyzer.
type Interpreter struct {
	A        *analyzer.Analyzer
	Resolver ModuleResolver

	closures  map[value.FunctionID]*closureInfo
	tables    map[value.ModuleID]*semantic.Table
	pragmas   *PragmaSet
	objGroups map[value.ObjectID]mangle.UniquenessGroupID

	// pendingImports records, for each ImportDeclaration node deferred by a
	// circular-import cycle, what it still needs to bind once replayed (see
	// module.go's execImport/relinkImportBinding); module.BlockedImport
	// itself carries only a NodeId, not the specifier list.
	pendingImports map[ast.NodeId]pendingImport

	globals     *binder
	globalTable *semantic.Table
	binder      *binder
	curTable    *semantic.Table
	curModule   value.ModuleID

	// rootVarScope is the Stack's single root variable scope, captured once
	// at construction time, so every module's top-level scope can be chained
	// off it explicitly (execModule) rather than off whatever module scope
	// happens to be "current" on the shared Stack during a circular-import
	// replay.
	rootVarScope *scope.VariableScope

	// curModuleScope is the variable scope backing the module currently
	// executing's top-level bindings, set for the duration of execModule so
	// execExportDecl (module.go) can record a named export's VariableScopeID.
	curModuleScope *scope.VariableScope

	// curCallSite groups the conditional branches of the function body (or
	// module top level, 0) currently executing, per conditional.CallSiteID's
	// doc: a later Deoptimize(curCallSite) forces every branch recorded
	// under it to be treated as reachable.
	curCallSite conditional.CallSiteID

	// curThis backs `this` inside the currently executing function body.
	// The minimal AST contract has no dedicated this-expression node (see
	// internal/ast's package doc on external collaborators); the front end
	// is expected to lower `this` to a plain Identifier named "this", and
	// expr.go resolves that name against curThis rather than the binder,
	// since `this` is dynamically (re-)bound per call, not lexically
	// declared. Arrow functions don't push a new curThis (see runClosureBody).
	curThis value.Entity

	// curSuperCtor is the Function a `super(...)` call inside the currently
	// executing class constructor should invoke, set by runClosureBody from
	// the constructor's closureInfo.superCtor. nil outside a derived class
	// constructor body.
	curSuperCtor *value.Function

	// loopStack tracks the CF-stack depths a break/continue inside the
	// innermost currently-executing loop should unwind to (see stmt.go's
	// loopFrame); pushed/popped around each loop's body since
	// BreakStatement/ContinueStatement carry no structural link back to
	// their enclosing for/while.
	loopStack []loopFrame

	nextLexical uint32
}

// New creates an interpreter bound to a (typically freshly constructed)
// Analyzer. resolver may be nil if the program under analysis never
// contains an import/export declaration (e.g. isolated unit tests).
func New(a *analyzer.Analyzer, resolver ModuleResolver) *Interpreter {
	return &Interpreter{
		A:            a,
		Resolver:     resolver,
		closures:     make(map[value.FunctionID]*closureInfo),
		tables:       make(map[value.ModuleID]*semantic.Table),
		pragmas:      NewPragmaSet(),
		objGroups:    make(map[value.ObjectID]mangle.UniquenessGroupID),
		globals:        newBinder(nil),
		globalTable:    semantic.NewTable(),
		rootVarScope:   a.Stack.VarScope(),
		pendingImports: make(map[ast.NodeId]pendingImport),
	}
}

// DeclareGlobal installs a global binding (e.g. `console`, `Object`,
// `React`) visible from every module this interpreter runs, for
// internal/builtins to populate before analysis starts.
func (ip *Interpreter) DeclareGlobal(name string, v value.Value) {
	sym := ip.globalTable.Declare(name)
	ip.globals.declare(name, sym)
	ip.rootVarScope.Declare(sym, &scope.Variable{Kind: scope.VarKindUntrackedGlobal, Value: value.Entity{Value: v}, Initialized: true})
}

// Pragmas exposes the interpreter's pragma registry so the driver can
// populate it from source comments before analysis begins (see pragma.go).
func (ip *Interpreter) Pragmas() *PragmaSet { return ip.pragmas }

func (ip *Interpreter) allocLexical() value.LexicalScopeID {
	ip.nextLexical++
	return value.LexicalScopeID(ip.nextLexical)
}

// LoadAndExec parses nothing itself (program is already parsed); it
// registers the module with the analyzer and runs it to completion,
// returning the resulting module.Info. Re-entrant: a module already
// Initializing or Initialized returns immediately without re-running.
func (ip *Interpreter) LoadAndExec(path string, program *ast.Program) *module.Info {
	info := ip.A.LoadModule(path, program)
	ip.A.ExecModule(info, program, ip.execModule)
	return info
}

// execModule is the analyzer.ModuleRunner this interpreter supplies:
// allocate the module's semantic table, hoist top-level declarations,
// visit statements in source order, link imports/exports, and replay any
// import cycle's blocked imports.
func (ip *Interpreter) execModule(a *analyzer.Analyzer, info *module.Info, program *ast.Program) {
	table := a.ModuleTable(info.ID)
	ip.tables[info.ID] = table

	prevModule, prevTable, prevBinder, prevCallSite := ip.curModule, ip.curTable, ip.binder, ip.curCallSite
	ip.curModule, ip.curTable, ip.binder = info.ID, table, newBinder(ip.globals)
	ip.curCallSite = a.NewCallSite()

	// Chain this module's top-level scope directly off the shared root
	// (where DeclareGlobal installed builtins), not off whatever scope
	// happens to be active on the shared Stack right now: a circular import
	// can re-enter execModule for a second module while a first module's own
	// top-level scope is still "current", and that accident must not leak
	// into this module's bindings.
	prevActiveScope := a.Stack.SetVarScope(ip.rootVarScope)
	moduleScope := a.PushVarScope()
	prevModuleScope := ip.curModuleScope
	ip.curModuleScope = moduleScope
	defer func() {
		ip.curModule, ip.curTable, ip.binder, ip.curCallSite = prevModule, prevTable, prevBinder, prevCallSite
		ip.curModuleScope = prevModuleScope
		a.Stack.SetVarScope(prevActiveScope)
	}()

	// CfModule is absent from Stack.Pop's auto-fold list: a module's top
	// level is unconditionally live once exec_module runs at all, so nothing
	// needs to consume its accumulated Dep on the way out.
	a.Stack.Push(scope.CfModule)
	defer a.Stack.Pop(a.Graph())

	ip.hoistBlock(program.Body)
	for _, decl := range program.Body {
		if imp, ok := decl.(*ast.ImportDeclaration); ok {
			ip.execImport(info, imp)
		}
	}
	for _, stmt := range program.Body {
		switch n := stmt.(type) {
		case *ast.ImportDeclaration:
			// already linked in the pass above.
		case *ast.ExportNamedDeclaration, *ast.ExportDefaultDeclaration, *ast.ExportAllDeclaration:
			ip.execExportDecl(info, n.(ast.Stmt))
		default:
			ip.execStatement(stmt)
		}
	}
	ip.replayBlockedImports(info)
}

// replayBlockedImports re-links every import that deferred during a
// circular-import cycle because its source module was still initializing,
// per spec.md's SUPPLEMENTED FEATURES blocked_imports replay: by the time
// exec_module reaches its own tail, every module it (transitively) started
// has finished, so the deferred bindings can now resolve precisely instead
// of falling back to Unknown.
func (ip *Interpreter) replayBlockedImports(info *module.Info) {
	pending := info.BlockedImports
	info.BlockedImports = nil
	for _, bi := range pending {
		ip.relinkImportBinding(bi)
	}
}
