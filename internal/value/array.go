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

// ArrayID uniquely identifies an Array for the lifetime of one analysis.
type ArrayID uint32

// Array is the ordered-elements variant of spec.md section 3.3: a fixed
// prefix of element entities plus an optional rest tail representing
// "zero or more further elements of unknown content", mirroring
// original_source/crates/jsshaker/src/value/array.rs.
type Array struct {
	Base

	ID        ArrayID
	CreatedIn CfScopeID

	Elements []Entity
	RestDep  *depgraph.Lazy // accumulated deps from widening pushes/splices

	consumed bool
}

// NewArray allocates an empty array created in the given CF scope.
func NewArray(id ArrayID, createdIn CfScopeID) *Array {
	return &Array{ID: id, CreatedIn: createdIn}
}

func (a *Array) Kind() Kind { return KindArray }

func (a *Array) Consume(g *depgraph.Graph) {
	if a.consumed {
		return
	}
	a.consumed = true
	for _, e := range a.Elements {
		e.Consume(g)
	}
	if a.RestDep != nil {
		g.Consume(depgraph.OfLazy(a.RestDep))
	}
}

func (a *Array) TestTypeof() TypeofMask { return TypeofObject }
func (a *Array) TestTruthy() Tri        { return TriTrue }
func (a *Array) TestNullish() Tri       { return TriFalse }

func (a *Array) AsCacheable() (Cacheable, bool) { return Cacheable{}, false }

// GetProperty resolves numeric-literal indices precisely; any other key
// (including "length" when the rest tail is open) degrades to Unknown: the
// union of every element plus Unknown that it builds is absorbed into
// Unknown by NewUnion, per spec.md's array GetProperty contract.
func (a *Array) GetProperty(ctx Ctx, dep depgraph.Dep, key PropertyKey) Entity {
	if a.consumed {
		ctx.Consume(dep)
		return ctx.Factory().ComputedUnknown(dep)
	}
	if !key.IsSymbol {
		if idx, ok := parseArrayIndex(key.Str); ok {
			ctx.Consume(dep)
			if idx < len(a.Elements) {
				return a.Elements[idx]
			}
			if a.RestDep != nil {
				return ctx.Factory().ComputedUnknown(dep)
			}
			return Entity{Value: &Literal{LKind: LitUndefined}, Dep: dep}
		}
		if key.Str == "length" && a.RestDep == nil {
			return Entity{Value: &Literal{LKind: LitNumber, Num: float64(len(a.Elements))}, Dep: dep}
		}
	}
	ctx.Consume(dep)
	all := make([]Entity, 0, len(a.Elements)+1)
	all = append(all, a.Elements...)
	all = append(all, ctx.Factory().ComputedUnknown(dep))
	return ctx.Factory().UnionOf(dep, all...)
}

func parseArrayIndex(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	if s[0] == '0' && len(s) > 1 {
		return 0, false
	}
	return n, true
}

// SetProperty widens to a fully-unknown rest tail the moment a non-literal
// or out-of-bounds index is written, per spec.md: arrays do not track sparse
// holes precisely.
func (a *Array) SetProperty(ctx Ctx, dep depgraph.Dep, key PropertyKey, val Entity) {
	if a.consumed {
		ctx.Consume(dep)
		ctx.Consume(depgraph.OfConsumer(val))
		return
	}
	if !key.IsSymbol {
		if idx, ok := parseArrayIndex(key.Str); ok && idx == len(a.Elements) && a.RestDep == nil {
			a.Elements = append(a.Elements, val)
			return
		}
	}
	if a.RestDep == nil {
		a.RestDep = &depgraph.Lazy{}
	}
	a.RestDep.Push(dep)
	a.RestDep.Push(depgraph.OfConsumer(val))
}

// Iterate yields the known prefix plus a rest entity covering anything
// beyond it, per spec.md section 4.1's Iterate contract.
func (a *Array) Iterate(ctx Ctx, dep depgraph.Dep) IterateResult {
	ctx.Consume(dep)
	if a.consumed || a.RestDep != nil {
		return IterateResult{Prefix: a.Elements, Rest: ctx.Factory().ComputedUnknown(dep), Dep: dep}
	}
	return IterateResult{Prefix: a.Elements, Dep: dep}
}

// Push appends a definite element. internal/builtins uses it to fill the
// fresh arrays that Object.keys/values/entries, Array.from and Array.of
// return.
func (a *Array) Push(e Entity) {
	if a.consumed || a.RestDep != nil {
		if a.RestDep == nil {
			a.RestDep = &depgraph.Lazy{}
		}
		a.RestDep.Push(depgraph.OfConsumer(e))
		return
	}
	a.Elements = append(a.Elements, e)
}
