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

// Package value implements the Value lattice of spec.md section 3.3 and the
// operation contract of section 4.1: literals, primitives, objects, arrays,
// functions, unions, unknown, and never, plus the property/call/iterate/
// coerce operations every variant must answer.
//
// Grounded on cuelang.org/go/internal/core/adt's Vertex/Expr split (a Value
// sum type dispatched by kind, carrying its own closedness-like metadata) and
// on original_source/crates/jsshaker/src/value/mod.rs for the variant list
// and per-operation default ("degenerate to conservative") behavior.
package value

import (
	"math"

	"github.com/jsshaker/shaker/internal/ast"
	"github.com/jsshaker/shaker/internal/depgraph"
)

// Kind is a bitset tag identifying which Value variant a value is, so
// callers can test membership (e.g. "is this possibly a function")
// without a type switch.
type Kind uint16

const (
	KindLiteral Kind = 1 << iota
	KindPrimitive
	KindUnknown
	KindNever
	KindObject
	KindArray
	KindFunction
	KindBuiltinFn
	KindUnion
	KindLogicalResult
	KindReactElement
	KindModuleObject
)

// Tri is a tri-valued boolean: Unknown means "cannot be decided statically".
type Tri int8

const (
	TriUnknown Tri = iota
	TriTrue
	TriFalse
)

// TypeofMask is a bitset of the possible results of JS `typeof`.
type TypeofMask uint16

const (
	TypeofString TypeofMask = 1 << iota
	TypeofNumber
	TypeofBigInt
	TypeofBoolean
	TypeofSymbol
	TypeofUndefined
	TypeofObject
	TypeofFunction
)

// TypeofAll is the full mask, returned when nothing at all is known.
const TypeofAll = TypeofString | TypeofNumber | TypeofBigInt | TypeofBoolean |
	TypeofSymbol | TypeofUndefined | TypeofObject | TypeofFunction

// PropertyKey is either a string or a SymbolId-tagged symbol, per spec.md's
// resolution of the jsshaker/tree_shaker open question in favor of the
// sum-typed key. NonLiteral marks a computed key that could not be narrowed
// to a finite literal at analysis time (an Unknown, a non-string literal, a
// Primitive top, ...); GetProperty/SetProperty must use the conservative
// non-literal-key contract rather than the zero PropertyKey's literal
// empty-string key.
type PropertyKey struct {
	IsSymbol   bool
	NonLiteral bool
	Str        string
	Sym        uint64 // symbol identity when IsSymbol
}

// StringKey builds a literal string property key.
func StringKey(s string) PropertyKey { return PropertyKey{Str: s} }

// SymbolKey builds a unique symbol property key.
func SymbolKey(id uint64) PropertyKey { return PropertyKey{IsSymbol: true, Sym: id} }

// UnknownKey builds a key for a computed member access whose value
// couldn't be resolved to a literal, per spec.md's get_property/
// set_property "Non-literal key" contract.
func UnknownKey() PropertyKey { return PropertyKey{NonLiteral: true} }

func (k PropertyKey) String() string {
	if k.NonLiteral {
		return "@@unknown"
	}
	if k.IsSymbol {
		return "@@symbol"
	}
	return k.Str
}

// Cacheable is the sum type returned by AsCacheable: a value stable enough
// to serve as a function-effect-cache key, per spec.md section 4.5.
type Cacheable struct {
	Kind    CacheableKind
	Str     string
	Num     float64
	Bool    bool
	InstID  uint64 // function instance id or module id
}

type CacheableKind uint8

const (
	CacheableLiteral CacheableKind = iota
	CacheablePrimitiveTag
	CacheableFunctionInstance
	CacheableModule
)

// EnumerateResult is returned by EnumerateProperties.
type EnumerateResult struct {
	Known    map[string]EnumerateEntry
	Unknown  *Entity // non-nil fallback entity for keys not in Known
	Dep      depgraph.Dep
}

type EnumerateEntry struct {
	Definite bool
	Key      Entity
	Val      Entity
}

// IterateResult is returned by Iterate: a fixed prefix plus a rest union.
type IterateResult struct {
	Prefix []Entity
	Rest   Entity
	Dep    depgraph.Dep
}

// Ctx is the minimal analyzer-handle capability the Value contract needs:
// consuming deps, allocating fresh entities via the factory, and raising
// builtin errors. internal/analyzer.Analyzer implements this; keeping it as
// an interface here (rather than importing the analyzer package directly)
// avoids an import cycle between value and analyzer.
type Ctx interface {
	Graph() *depgraph.Graph
	Consume(d depgraph.Dep)
	Factory() *Factory
	ThrowBuiltinError(pos ast.Position, format string, args ...interface{}) Entity
	Config() ConfigView
}

// ConfigView exposes the subset of TreeShakeConfig the value operations
// need to consult, without importing internal/config (which would cycle
// back through internal/analyzer).
type ConfigView interface {
	PreserveExceptions() bool
	UnmatchedPrototypePropertyAsUndefined() bool
	MaxSimpleStringLength() int
	MinSimpleNumberValue() float64
	MaxSimpleNumberValue() float64
}

// Value is implemented by every lattice variant.
type Value interface {
	depgraph.Consumer // Consume(g): mark as externally observable, idempotently.

	Kind() Kind
	UnknownMutate(ctx Ctx, dep depgraph.Dep)
	GetProperty(ctx Ctx, dep depgraph.Dep, key PropertyKey) Entity
	SetProperty(ctx Ctx, dep depgraph.Dep, key PropertyKey, val Entity)
	EnumerateProperties(ctx Ctx, dep depgraph.Dep) EnumerateResult
	DeleteProperty(ctx Ctx, dep depgraph.Dep, key PropertyKey)
	Call(ctx Ctx, dep depgraph.Dep, this Entity, args []Entity) Entity
	Construct(ctx Ctx, dep depgraph.Dep, args []Entity) Entity
	JSX(ctx Ctx, dep depgraph.Dep, props Entity, children []Entity) Entity
	Iterate(ctx Ctx, dep depgraph.Dep) IterateResult
	Await(ctx Ctx, dep depgraph.Dep) Entity
	CoerceToString(ctx Ctx, dep depgraph.Dep) Entity
	CoerceToNumber(ctx Ctx, dep depgraph.Dep) Entity
	CoerceToBoolean(ctx Ctx, dep depgraph.Dep) Entity
	CoercePropertyKey(ctx Ctx, dep depgraph.Dep) Entity
	TestTypeof() TypeofMask
	TestTruthy() Tri
	TestNullish() Tri
	AsCacheable() (Cacheable, bool)
}

// Entity pairs a Value with the Dep explaining why it has that value, per
// spec.md section 3.3. internal/cache.ExactlySame, used to short-circuit
// cache invalidation (section 4.5), treats two entities as exactly-same
// when their Values are the identical pointer; their Deps are not compared.
type Entity struct {
	Value Value
	Dep   depgraph.Dep
}

// Consume implements depgraph.Consumer: consuming an Entity consumes both
// its value and its dep.
func (e Entity) Consume(g *depgraph.Graph) {
	if e.Value != nil {
		e.Value.Consume(g)
	}
	g.Consume(e.Dep)
}

// Base provides conservative default implementations for every Value
// operation. Concrete variants embed Base and override only the operations
// where they have precise behavior, the idiomatic Go substitute for a trait
// with default methods.
type Base struct {
	Factory_ *Factory
}

func (Base) UnknownMutate(ctx Ctx, dep depgraph.Dep) { ctx.Consume(dep) }

func (Base) GetProperty(ctx Ctx, dep depgraph.Dep, key PropertyKey) Entity {
	ctx.Consume(dep)
	return ctx.Factory().ComputedUnknown(dep)
}

func (Base) SetProperty(ctx Ctx, dep depgraph.Dep, key PropertyKey, val Entity) {
	ctx.Consume(dep)
	ctx.Consume(depgraph.OfConsumer(val))
}

func (Base) EnumerateProperties(ctx Ctx, dep depgraph.Dep) EnumerateResult {
	ctx.Consume(dep)
	u := ctx.Factory().ComputedUnknown(dep)
	return EnumerateResult{Unknown: &u, Dep: dep}
}

func (Base) DeleteProperty(ctx Ctx, dep depgraph.Dep, key PropertyKey) { ctx.Consume(dep) }

func (b Base) Call(ctx Ctx, dep depgraph.Dep, this Entity, args []Entity) Entity {
	ctx.Consume(dep)
	ctx.Consume(depgraph.OfConsumer(this))
	for _, a := range args {
		ctx.Consume(depgraph.OfConsumer(a))
	}
	return ctx.ThrowBuiltinError(ast.Position{}, "value is not callable")
}

func (b Base) Construct(ctx Ctx, dep depgraph.Dep, args []Entity) Entity {
	ctx.Consume(dep)
	for _, a := range args {
		ctx.Consume(depgraph.OfConsumer(a))
	}
	return ctx.ThrowBuiltinError(ast.Position{}, "value is not a constructor")
}

func (b Base) JSX(ctx Ctx, dep depgraph.Dep, props Entity, children []Entity) Entity {
	ctx.Consume(dep)
	ctx.Consume(depgraph.OfConsumer(props))
	for _, c := range children {
		ctx.Consume(depgraph.OfConsumer(c))
	}
	return ctx.Factory().ComputedUnknown(dep)
}

func (Base) Iterate(ctx Ctx, dep depgraph.Dep) IterateResult {
	ctx.Consume(dep)
	return IterateResult{Rest: ctx.Factory().ComputedUnknown(dep), Dep: dep}
}

func (Base) Await(ctx Ctx, dep depgraph.Dep) Entity {
	ctx.Consume(dep)
	return ctx.Factory().ComputedUnknown(dep)
}

func (Base) CoerceToString(ctx Ctx, dep depgraph.Dep) Entity {
	ctx.Consume(dep)
	return Entity{Value: PrimitiveTop(PrimString), Dep: dep}
}

func (Base) CoerceToNumber(ctx Ctx, dep depgraph.Dep) Entity {
	ctx.Consume(dep)
	return Entity{Value: PrimitiveTop(PrimNumber), Dep: dep}
}

func (Base) CoerceToBoolean(ctx Ctx, dep depgraph.Dep) Entity {
	ctx.Consume(dep)
	return Entity{Value: PrimitiveTop(PrimBoolean), Dep: dep}
}

func (Base) CoercePropertyKey(ctx Ctx, dep depgraph.Dep) Entity {
	ctx.Consume(dep)
	return Entity{Value: PrimitiveTop(PrimString), Dep: dep}
}

func (Base) TestTypeof() TypeofMask { return TypeofAll }
func (Base) TestTruthy() Tri        { return TriUnknown }
func (Base) TestNullish() Tri       { return TriUnknown }
func (Base) AsCacheable() (Cacheable, bool) { return Cacheable{}, false }

// isSimpleNumber reports whether n is NaN, ±Infinity, or within the
// configured "simple number" bounds used to decide whether a computed
// numeric literal is worth mangling/tracking precisely.
func isSimpleNumber(n float64, cfg ConfigView) bool {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return true
	}
	return n >= cfg.MinSimpleNumberValue() && n <= cfg.MaxSimpleNumberValue()
}
