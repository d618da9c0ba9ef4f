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
	"github.com/jsshaker/shaker/internal/ast"
	"github.com/jsshaker/shaker/internal/depgraph"
)

// FunctionID uniquely identifies a Function for the lifetime of one
// analysis; it is also the cache key namespace consulted by
// internal/cache.Cache (spec.md section 4.5).
type FunctionID uint32

// LexicalScopeID identifies the variable scope a function closes over.
// Defined here (mirroring CfScopeID in object.go) so value need not import
// internal/scope.
type LexicalScopeID uint32

// FunctionKind distinguishes the handful of callable shapes JS functions
// take, each with slightly different `this`-binding and construct rules.
type FunctionKind uint8

const (
	FnNormal FunctionKind = iota
	FnArrow
	FnGenerator
	FnAsync
	FnAsyncGenerator
	FnClassConstructor
	FnClassMethod
)

// Function is the user-defined-callable variant of spec.md section 3.3,
// grounded on original_source/crates/jsshaker/src/value/function.rs: a
// callee AST reference, the lexical scope it closes over, a Statics object
// for class statics / named-function-expression self-binding, and a handle
// into the per-function effect cache.
type Function struct {
	Base

	ID      FunctionID
	Node    ast.NodeId // the FunctionNode this instance was created from.
	FnKind  FunctionKind
	Lexical LexicalScopeID

	// Statics holds class-static properties (for FnClassConstructor) or the
	// function-expression's own name binding; nil for plain functions.
	Statics *Object

	// BodyIncluded is not set or read anywhere in the analyzer; it stays
	// false.
	BodyIncluded bool

	consumed bool
}

// NewFunction allocates a function instance bound to the given AST node and
// lexical scope.
func NewFunction(id FunctionID, node ast.NodeId, kind FunctionKind, lexical LexicalScopeID) *Function {
	return &Function{ID: id, Node: node, FnKind: kind, Lexical: lexical}
}

func (f *Function) Kind() Kind { return KindFunction }

func (f *Function) Consume(g *depgraph.Graph) {
	if f.consumed {
		return
	}
	f.consumed = true
	if f.Statics != nil {
		f.Statics.Consume(g)
	}
	g.Refer(f.Node)
}

func (f *Function) TestTypeof() TypeofMask { return TypeofFunction }
func (f *Function) TestTruthy() Tri        { return TriTrue }
func (f *Function) TestNullish() Tri       { return TriFalse }

// AsCacheable reports the function instance itself as the cache key
// component: two calls to the *same* Function instance with cacheable
// arguments may share a cached effect, per spec.md section 4.5.
func (f *Function) AsCacheable() (Cacheable, bool) {
	return Cacheable{Kind: CacheableFunctionInstance, InstID: uint64(f.ID)}, true
}

func (f *Function) GetProperty(ctx Ctx, dep depgraph.Dep, key PropertyKey) Entity {
	if f.Statics != nil {
		return f.Statics.GetProperty(ctx, dep, key)
	}
	return Base{}.GetProperty(ctx, dep, key)
}

func (f *Function) SetProperty(ctx Ctx, dep depgraph.Dep, key PropertyKey, val Entity) {
	if f.Statics != nil {
		f.Statics.SetProperty(ctx, dep, key, val)
		return
	}
	Base{}.SetProperty(ctx, dep, key, val)
}

// Call is the degenerate fallback used when a Function value is exercised
// outside the analyzer's own call-dispatch path (e.g. unit tests exercising
// this package in isolation). internal/analyzer normally intercepts calls
// to *Function before reaching here and instead runs
// analyzer.CallFunction(f, ...), which consults internal/cache and replays
// internal/visit over f.Node's body.
func (f *Function) Call(ctx Ctx, dep depgraph.Dep, this Entity, args []Entity) Entity {
	ctx.Consume(dep)
	ctx.Consume(depgraph.OfConsumer(this))
	for _, a := range args {
		ctx.Consume(depgraph.OfConsumer(a))
	}
	ctx.Graph().Refer(f.Node)
	return ctx.Factory().ComputedUnknown(dep)
}

func (f *Function) Construct(ctx Ctx, dep depgraph.Dep, args []Entity) Entity {
	return f.Call(ctx, dep, Entity{}, args)
}
