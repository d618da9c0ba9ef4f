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

package analyzer

import (
	"github.com/jsshaker/shaker/internal/ast"
	"github.com/jsshaker/shaker/internal/cache"
	"github.com/jsshaker/shaker/internal/depgraph"
	"github.com/jsshaker/shaker/internal/scope"
	"github.com/jsshaker/shaker/internal/semantic"
	"github.com/jsshaker/shaker/internal/shakerdebug"
	"github.com/jsshaker/shaker/internal/value"
)

// BodyRunner is supplied by internal/visit: it visits a function body,
// given the freshly entered call scope, and returns nothing (return values
// are collected on the CallScope via RecordReturn as ReturnStatements are
// visited).
type BodyRunner func(a *Analyzer, fn *value.Function, callScopeID scope.CallScopeID)

// ReadVar reads sym through the shared Stack, logging the observation into
// the active call's read set when function-effect caching is attempting a
// speculative replay.
func (a *Analyzer) ReadVar(sym semantic.SymbolId, node ast.NodeId) (value.Entity, error) {
	owner, hasOwner := a.Stack.OwnerScope(sym)
	v, err := a.Stack.ReadVariable(a, sym, node)
	if a.recordingReads != nil && hasOwner {
		target := scope.ReadWriteTarget{Kind: scope.RWVariable, Scope: owner, Sym: sym}
		*a.recordingReads = append(*a.recordingReads, cache.ReadEntry{
			Target: target,
			WasTDZ: scope.IsTDZ(err),
			Value:  v,
		})
	}
	return v, err
}

// WriteVar writes val through the shared Stack, logging the write into the
// active call's write set.
func (a *Analyzer) WriteVar(sym semantic.SymbolId, val value.Entity) error {
	owner, hasOwner := a.Stack.OwnerScope(sym)
	err := a.Stack.WriteVariable(a, sym, val)
	if a.recordingWrites != nil && hasOwner {
		target := scope.ReadWriteTarget{Kind: scope.RWVariable, Scope: owner, Sym: sym}
		c, cok := val.Value.AsCacheable()
		*a.recordingWrites = append(*a.recordingWrites, cache.WriteEntry{
			Target:           target,
			NonDeterministic: !cok,
			NewValue:         c,
		})
	}
	return err
}

// rereadTarget answers cache.CheckReadSetCompatible's replay query. Only
// RWVariable targets can be re-read precisely without a global object
// registry; RWObjectAll/RWObjectField targets report Unknown, whose
// AsCacheable is always false, which makes CompatibleCacheable reject the
// hit and fall back to full re-execution -- a sound, if conservative,
// degradation rather than a correctness gap.
func (a *Analyzer) rereadTarget(t scope.ReadWriteTarget) (value.Entity, bool) {
	if t.Kind != scope.RWVariable {
		return value.Entity{Value: value.TheUnknown()}, false
	}
	vs, ok := a.varScopes[t.Scope]
	if !ok {
		return value.Entity{Value: value.TheUnknown()}, false
	}
	v, ok := vs.Get(t.Sym)
	if !ok {
		return value.Entity{Value: value.TheUnknown()}, false
	}
	if !v.Initialized {
		return value.Entity{}, true
	}
	if v.ExhaustedDep != nil {
		return value.Entity{Value: value.TheUnknown(), Dep: depgraph.OfLazy(v.ExhaustedDep)}, false
	}
	return v.Value, false
}

// CallFunction implements spec.md section 4.5/4.6: consult the per-function
// cache for a compatible prior call; on a miss (or when caching is
// disabled), open a CallScope, run the body via runner, union the recorded
// returns, and store a fresh cache entry keyed by this call's Inputs.
func (a *Analyzer) CallFunction(fn *value.Function, isCtor bool, this value.Entity, args []value.Entity, dep depgraph.Dep, runner BodyRunner) value.Entity {
	inputs := cache.Inputs{IsCtor: isCtor}
	if this.Value != nil {
		inputs.ThisCacheable, inputs.HasThis = asCacheableOrZero(this)
	}
	for _, arg := range args {
		c, _ := asCacheableOrZero(arg)
		inputs.Args = append(inputs.Args, c)
	}

	if a.Cfg.EnableFnCache && !shakerdebug.Flags.DisableCache {
		for _, entry := range a.Cache.TryGet(fn.ID, inputs) {
			if cache.CheckReadSetCompatible(entry, a.rereadTarget) {
				a.Graph_.Consume(dep)
				for _, w := range entry.WriteSet {
					a.applyCachedWrite(w)
				}
				return value.Entity{Value: cacheableToValue(entry.Return), Dep: dep}
			}
		}
	}

	if a.recursionGuard[fn.ID] >= a.Cfg.MaxRecursionDepth {
		a.Graph_.Refer(fn.Node)
		a.Graph_.Consume(dep)
		return a.Factory_.ComputedUnknown(dep)
	}
	a.recursionGuard[fn.ID]++
	defer func() { a.recursionGuard[fn.ID]-- }()

	savedVarScope := a.Stack.VarScope()
	callID := scope.CallScopeID(a.callScopeID.Next())
	bodyScope := a.PushVarScope()
	cs := scope.NewCallScope(callID, fn, isCtor, savedVarScope, a.Stack.Depth(), bodyScope.ID)
	a.callStack = append(a.callStack, cs)

	var reads []cache.ReadEntry
	var writes []cache.WriteEntry
	prevReads, prevWrites := a.recordingReads, a.recordingWrites
	if a.Cfg.EnableFnCache {
		a.recordingReads, a.recordingWrites = &reads, &writes
	}

	runner(a, fn, callID)

	a.recordingReads, a.recordingWrites = prevReads, prevWrites
	a.callStack = a.callStack[:len(a.callStack)-1]
	a.PopVarScope()

	result := a.Factory_.UnionOf(dep, cs.Returns...)
	if a.Cfg.EnableFnCache {
		ret, ok := result.Value.AsCacheable()
		if ok {
			a.Cache.Store(fn.ID, &cache.Entry{
				Inputs:   inputs,
				ReadSet:  reads,
				WriteSet: writes,
				Return:   ret,
			})
		}
	}
	return result
}

// CurrentCallScope returns the innermost active call, or nil at module
// top-level.
func (a *Analyzer) CurrentCallScope() *scope.CallScope {
	if len(a.callStack) == 0 {
		return nil
	}
	return a.callStack[len(a.callStack)-1]
}

func asCacheableOrZero(e value.Entity) (value.Cacheable, bool) {
	if e.Value == nil {
		return value.Cacheable{}, false
	}
	return e.Value.AsCacheable()
}

func cacheableToValue(c value.Cacheable) value.Value {
	switch c.Kind {
	case value.CacheableFunctionInstance, value.CacheableModule:
		return value.TheUnknown()
	default:
		return value.TheUnknown()
	}
}

// applyCachedWrite replays one recorded write from a cache hit onto the
// current world; only RWVariable targets are supported, matching
// rereadTarget's precision.
func (a *Analyzer) applyCachedWrite(w cache.WriteEntry) {
	if w.Target.Kind != scope.RWVariable || w.NonDeterministic {
		return
	}
	vs, ok := a.varScopes[w.Target.Scope]
	if !ok {
		return
	}
	v, ok := vs.Get(w.Target.Sym)
	if !ok {
		return
	}
	v.Value = value.Entity{Value: cacheableToValue(w.NewValue)}
	v.Initialized = true
}

