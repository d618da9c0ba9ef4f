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

// Package scope implements the scope stack of spec.md section 3.5: call
// scopes, variable scopes (a linked tree with TDZ), and CF scopes (the
// stack of control-flow contexts an analyzer walks as it visits a
// function's body), plus the exit-propagation and exhaustive/conditional
// read-write tracking of section 4.2.
//
// Grounded on cuelang.org/go/internal/core/adt's context.go scope-stack
// management (OpContext.e, vertex stacks) and sched.go's task push/pop
// discipline, retargeted from "unify one Vertex" to "execute one CF scope".
package scope

import (
	"github.com/jsshaker/shaker/internal/ast"
	"github.com/jsshaker/shaker/internal/depgraph"
	"github.com/jsshaker/shaker/internal/semantic"
	"github.com/jsshaker/shaker/internal/value"
)

// VariableScopeID identifies a VariableScope for the lifetime of one
// analysis.
type VariableScopeID uint32

// CallScopeID identifies a CallScope for the lifetime of one analysis.
type CallScopeID uint32

// VariableKind distinguishes the hoisting/TDZ behavior of a declaration.
type VariableKind uint8

const (
	VarKindVar VariableKind = iota
	VarKindLet
	VarKindConst
	VarKindFunctionParam
	VarKindCatchBinding
	VarKindUntrackedGlobal
)

// Variable is one binding inside a VariableScope, per spec.md section 3.5.
type Variable struct {
	Kind         VariableKind
	DeclCfDepth  int
	DeclNode     ast.NodeId
	ExhaustedDep *depgraph.Lazy // non-nil once the variable has been widened to Unknown
	Value        value.Entity
	Initialized  bool // false before a let/const/param's initializer has run: TDZ
}

// VariableScope maps SymbolId to Variable and chains to a parent, forming
// the "linked tree" of spec.md section 3.5.
type VariableScope struct {
	ID     VariableScopeID
	Parent *VariableScope
	vars   map[semantic.SymbolId]*Variable
}

// NewVariableScope allocates a scope chained to parent (nil for the module
// root scope).
func NewVariableScope(id VariableScopeID, parent *VariableScope) *VariableScope {
	return &VariableScope{ID: id, Parent: parent, vars: make(map[semantic.SymbolId]*Variable)}
}

// Declare introduces a new binding in this scope (not looked up in
// parents), overwriting any existing declaration of the same symbol (as
// happens with `var` re-declaration hoisting).
func (s *VariableScope) Declare(sym semantic.SymbolId, v *Variable) {
	s.vars[sym] = v
}

// Get looks up sym in this scope or an ancestor without touching exhaustive
// tracking, for out-of-band reads like module export resolution.
func (s *VariableScope) Get(sym semantic.SymbolId) (*Variable, bool) {
	_, v := s.lookup(sym)
	return v, v != nil
}

// lookup walks from s up through parents, returning the owning scope and
// Variable, or (nil, nil) if untracked.
func (s *VariableScope) lookup(sym semantic.SymbolId) (*VariableScope, *Variable) {
	for cur := s; cur != nil; cur = cur.Parent {
		if v, ok := cur.vars[sym]; ok {
			return cur, v
		}
	}
	return nil, nil
}

// CfScopeKind enumerates the stack element tags of spec.md section 3.5.
type CfScopeKind uint8

const (
	CfRoot CfScopeKind = iota
	CfModule
	CfLabeled
	CfFunction
	CfLoopBreak
	CfLoopContinue
	CfSwitch
	CfDependent
	CfIndeterminate
	CfExhaustive
	CfExitBlocker
)

// ReferredState tracks whether a CF scope's dep collector has been
// consumed, so repeated pops don't double-count.
type ReferredState uint8

const (
	ReferredNever ReferredState = iota
	ReferredClean
	ReferredDirty
)

// ExitState is a tri-state: Some(true)/Some(false)/None(indeterminate).
type ExitState uint8

const (
	ExitNone ExitState = iota
	ExitTrue
	ExitFalse
)

// ExhaustiveData is the per-scope bookkeeping of spec.md section 4.2.4 and
// 4.3: which read/write targets were touched this iteration (temp_deps,
// reset every loop) versus since scope entry (register_deps, accumulated
// for the final subscriber registration), and whether the last iteration
// made no new observations (clean).
type ExhaustiveData struct {
	Clean        bool
	TempDeps     map[ReadWriteTarget]bool
	RegisterDeps map[ReadWriteTarget]bool
	Iterations   int
}

// NewExhaustiveData starts a fresh tracker, clean by construction (the
// first iteration always runs).
func NewExhaustiveData() *ExhaustiveData {
	return &ExhaustiveData{
		Clean:        true,
		TempDeps:     make(map[ReadWriteTarget]bool),
		RegisterDeps: make(map[ReadWriteTarget]bool),
	}
}

// ReadWriteTarget identifies what a read or write touched, per spec.md
// section 4.2.4: a variable binding, a whole object (coarse), or one
// object field.
type ReadWriteTarget struct {
	Kind  RWKind
	Scope VariableScopeID
	Sym   semantic.SymbolId
	Obj   value.ObjectID
	Key   value.PropertyKey
}

type RWKind uint8

const (
	RWVariable RWKind = iota
	RWObjectAll
	RWObjectField
)

func targetVariable(scope VariableScopeID, sym semantic.SymbolId) ReadWriteTarget {
	return ReadWriteTarget{Kind: RWVariable, Scope: scope, Sym: sym}
}

func targetObjectAll(obj value.ObjectID) ReadWriteTarget {
	return ReadWriteTarget{Kind: RWObjectAll, Obj: obj}
}

func targetObjectField(obj value.ObjectID, key value.PropertyKey) ReadWriteTarget {
	return ReadWriteTarget{Kind: RWObjectField, Obj: obj, Key: key}
}

// CfScope is one stack element. Dep accumulates deps generated while this
// scope is open; when the scope ends they flow into the surrounding scope
// per spec.md's pop rules (4.2.1).
type CfScope struct {
	ID           int
	Kind         CfScopeKind
	Dep          depgraph.Lazy
	Referred     ReferredState
	Exited       ExitState
	Label        string              // for CfLabeled/CfLoopBreak/CfLoopContinue
	ExhaustiveD  *ExhaustiveData     // non-nil iff Kind == CfExhaustive
	BlockerTgt   int                 // valid iff Kind == CfExitBlocker; set by exit_to
	BlockerHit   bool
}

// Stack is the per-call-scope CF scope stack plus the active variable
// scope chain, exactly as described in spec.md section 3.5.
type Stack struct {
	cf       []*CfScope
	varScope *VariableScope
	nextCfID int
}

// NewStack starts a stack with a single Root CF scope rooted at varScope.
func NewStack(varScope *VariableScope) *Stack {
	s := &Stack{varScope: varScope}
	s.Push(CfRoot)
	return s
}

// Push opens a new CF scope of the given kind and returns it for the
// caller to configure (label, exhaustive data, ...).
func (s *Stack) Push(kind CfScopeKind) *CfScope {
	cs := &CfScope{ID: s.nextCfID, Kind: kind}
	s.nextCfID++
	if kind == CfExhaustive {
		cs.ExhaustiveD = NewExhaustiveData()
	}
	s.cf = append(s.cf, cs)
	return cs
}

// Depth returns the current CF stack depth (number of open scopes).
func (s *Stack) Depth() int { return len(s.cf) }

// Top returns the innermost open CF scope.
func (s *Stack) Top() *CfScope { return s.cf[len(s.cf)-1] }

// Pop closes the innermost CF scope, folding its accumulated dep into the
// new top scope per spec.md's pop rules: Dependent/Labeled/LoopBreak/
// LoopContinue/Switch always fold up; Exhaustive does not fold up (it is
// popped through this same Pop by internal/exhaustive's Run);
// ExitBlocker folds up too, once the `if` statement has consulted
// BlockerTgt/BlockerHit.
func (s *Stack) Pop(g *depgraph.Graph) *CfScope {
	cs := s.cf[len(s.cf)-1]
	s.cf = s.cf[:len(s.cf)-1]
	if len(s.cf) > 0 {
		switch cs.Kind {
		case CfDependent, CfLabeled, CfLoopBreak, CfLoopContinue, CfSwitch, CfExitBlocker:
			s.Top().Dep.Push(depgraph.OfLazy(&cs.Dep))
		}
	}
	return cs
}

// VarScope returns the currently active variable scope.
func (s *Stack) VarScope() *VariableScope { return s.varScope }

// PushVarScope installs a fresh child variable scope (entering a block or
// function body) and returns it.
func (s *Stack) PushVarScope(id VariableScopeID) *VariableScope {
	s.varScope = NewVariableScope(id, s.varScope)
	return s.varScope
}

// PopVarScope restores the parent variable scope.
func (s *Stack) PopVarScope() {
	if s.varScope != nil {
		s.varScope = s.varScope.Parent
	}
}

// SetVarScope installs vs as the active variable scope directly (no
// chaining), returning whatever was active beforehand so the caller can
// restore it. internal/visit uses this to swap in a closure's captured
// lexical scope around a call: CallFunction's own PushVarScope chains a
// fresh body scope off whatever is "current" at the moment it runs, so
// making the closure's defining scope current just before the call is what
// gives the callee proper static (not dynamic) scoping.
func (s *Stack) SetVarScope(vs *VariableScope) *VariableScope {
	prev := s.varScope
	s.varScope = vs
	return prev
}

// ExitTo implements spec.md section 4.2.2: walk from the current scope down
// to targetDepth, marking each as exited (or indeterminate), accumulating
// deps, and stopping early at an ExitBlocker. It returns the accumulated
// dep to attach to the exit statement, and whether propagation was
// interrupted by an ExitBlocker (in which case the caller, an `if`
// statement, must finalize later).
func (s *Stack) ExitTo(targetDepth int) (depgraph.Dep, bool) {
	var acc []depgraph.Dep
	mustExit := true
	for i := len(s.cf) - 1; i >= targetDepth; i-- {
		cs := s.cf[i]
		if cs.Exited == ExitTrue {
			return depgraph.OfTuple(acc...), false
		}
		if cs.Kind == CfIndeterminate {
			cs.Exited = ExitNone
			mustExit = false
		} else if mustExit {
			cs.Exited = ExitTrue
		} else {
			cs.Exited = ExitNone
		}
		acc = append(acc, depgraph.OfLazy(&cs.Dep))
		if cs.Kind == CfExitBlocker {
			cs.BlockerTgt = targetDepth
			cs.BlockerHit = true
			return depgraph.OfTuple(acc...), true
		}
	}
	return depgraph.OfTuple(acc...), false
}

// OwnerScope returns the VariableScopeID that owns sym's declaration (not
// necessarily the currently active scope), for building cache.ReadEntry
// targets from outside this package.
func (s *Stack) OwnerScope(sym semantic.SymbolId) (VariableScopeID, bool) {
	owner, v := s.varScope.lookup(sym)
	if v == nil {
		return 0, false
	}
	return owner.ID, true
}

// ReadVariable implements spec.md section 4.2.3's read rule plus 4.2.4's
// exhaustive-read registration. ctx supplies the graph for dep consumption.
func (s *Stack) ReadVariable(ctx value.Ctx, sym semantic.SymbolId, node ast.NodeId) (value.Entity, error) {
	owner, v := s.varScope.lookup(sym)
	if v == nil {
		return value.Entity{}, errUntrackedGlobal
	}
	if !v.Initialized {
		ctx.Graph().Refer(v.DeclNode)
		return value.Entity{}, errTDZ
	}
	if v.ExhaustedDep != nil {
		s.registerExhaustiveRead(targetVariable(owner.ID, sym))
		return value.Entity{Value: value.TheUnknown(), Dep: depgraph.OfLazy(v.ExhaustedDep)}, nil
	}
	s.registerExhaustiveRead(targetVariable(owner.ID, sym))
	return v.Value, nil
}

// WriteVariable implements spec.md section 4.2.3's write rule plus 4.2.4's
// exhaustive-write tracking: if this target was already read in an
// enclosing clean exhaustive scope, the variable is widened to Unknown
// from here on (exhausted).
func (s *Stack) WriteVariable(ctx value.Ctx, sym semantic.SymbolId, val value.Entity) error {
	owner, v := s.varScope.lookup(sym)
	if v == nil {
		return errUntrackedGlobal
	}
	target := targetVariable(owner.ID, sym)
	becameDirty := s.registerExhaustiveWrite(target)
	if becameDirty && v.ExhaustedDep == nil {
		ctx.Consume(depgraph.OfConsumer(v.Value))
		ctx.Consume(depgraph.OfConsumer(val))
		v.ExhaustedDep = &depgraph.Lazy{}
		v.ExhaustedDep.Push(depgraph.OfConsumer(val))
		v.Value = value.Entity{}
		return nil
	}
	if v.ExhaustedDep != nil {
		v.ExhaustedDep.Push(depgraph.OfConsumer(val))
		return nil
	}
	v.Value = val
	v.Initialized = true
	return nil
}

// registerExhaustiveRead implements the read half of section 4.2.4: insert
// target into every exhaustive ancestor's temp_deps, and into the first
// ancestor's register_deps (subsequent ancestors already saw it register
// via their own nested Exhaustive scope on a prior iteration).
func (s *Stack) registerExhaustiveRead(target ReadWriteTarget) {
	first := true
	for i := len(s.cf) - 1; i >= 0; i-- {
		cs := s.cf[i]
		if cs.Kind != CfExhaustive {
			continue
		}
		cs.ExhaustiveD.TempDeps[target] = true
		if target.Kind == RWObjectField {
			cs.ExhaustiveD.TempDeps[targetObjectAll(target.Obj)] = true
		}
		if first {
			cs.ExhaustiveD.RegisterDeps[target] = true
			if target.Kind == RWObjectField {
				cs.ExhaustiveD.RegisterDeps[targetObjectAll(target.Obj)] = true
			}
			first = false
		}
	}
}

// registerExhaustiveWrite implements the write half of section 4.2.4,
// returning whether any ancestor transitioned from clean to dirty because
// of this write (the caller widens the target to Unknown when true).
func (s *Stack) registerExhaustiveWrite(target ReadWriteTarget) bool {
	dirtied := false
	coarse := ReadWriteTarget{}
	hasCoarse := false
	if target.Kind == RWObjectField {
		coarse = targetObjectAll(target.Obj)
		hasCoarse = true
	}
	for i := len(s.cf) - 1; i >= 0; i-- {
		cs := s.cf[i]
		if cs.Kind != CfExhaustive || !cs.ExhaustiveD.Clean {
			continue
		}
		if cs.ExhaustiveD.TempDeps[target] || (hasCoarse && cs.ExhaustiveD.TempDeps[coarse]) {
			cs.ExhaustiveD.Clean = false
			dirtied = true
		}
	}
	return dirtied
}

var (
	errUntrackedGlobal = scopeError("untracked global")
	errTDZ              = scopeError("temporal dead zone")
)

type scopeError string

func (e scopeError) Error() string { return string(e) }

// IsTDZ reports whether err is the TDZ sentinel returned by ReadVariable.
func IsTDZ(err error) bool { return err == errTDZ }

// IsUntrackedGlobal reports whether err is the untracked-global sentinel.
func IsUntrackedGlobal(err error) bool { return err == errUntrackedGlobal }
