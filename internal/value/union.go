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

// Union represents "one of these values, we don't statically know which",
// per spec.md section 3.3. Construction always applies the normalization
// rules from original_source/crates/jsshaker/src/value/union.rs: Never
// members are dropped (they cannot happen), a single remaining member
// collapses to that member directly, and any Unknown member absorbs the
// whole union into Unknown. Callers should therefore prefer the
// Factory.UnionOf constructor over building a Union literal by hand.
type Union struct {
	Base
	Members []Entity
}

// NewUnion applies the normalization rules and returns a *Union, the sole
// surviving member's Value, TheUnknown(), or TheNever() when no member
// survives, alongside the dep that
// must additionally be consumed (the deps of any dropped Never members and
// the discriminant dep passed in).
func NewUnion(dep depgraph.Dep, members ...Entity) (Value, depgraph.Dep) {
	kept := make([]Entity, 0, len(members))
	extra := []depgraph.Dep{dep}
	for _, m := range members {
		if m.Value == nil {
			continue
		}
		if m.Value.Kind() == KindNever {
			extra = append(extra, m.Dep)
			continue
		}
		if m.Value.Kind() == KindUnknown {
			extra = append(extra, m.Dep)
			return TheUnknown(), depgraph.OfTuple(extra...)
		}
		kept = append(kept, m)
	}
	if len(kept) == 0 {
		return TheNever(), depgraph.OfTuple(extra...)
	}
	if len(kept) == 1 {
		extra = append(extra, kept[0].Dep)
		return kept[0].Value, depgraph.OfTuple(extra...)
	}
	return &Union{Members: kept}, depgraph.OfTuple(extra...)
}

func (u *Union) Kind() Kind { return KindUnion }

func (u *Union) Consume(g *depgraph.Graph) {
	for _, m := range u.Members {
		m.Consume(g)
	}
}

func (u *Union) TestTypeof() TypeofMask {
	var mask TypeofMask
	for _, m := range u.Members {
		mask |= m.Value.TestTypeof()
	}
	return mask
}

func (u *Union) TestTruthy() Tri { return joinTri(u.Members, func(v Value) Tri { return v.TestTruthy() }) }
func (u *Union) TestNullish() Tri {
	return joinTri(u.Members, func(v Value) Tri { return v.TestNullish() })
}

func joinTri(members []Entity, f func(Value) Tri) Tri {
	if len(members) == 0 {
		return TriUnknown
	}
	result := f(members[0].Value)
	for _, m := range members[1:] {
		t := f(m.Value)
		if t != result {
			return TriUnknown
		}
	}
	return result
}

func (u *Union) GetProperty(ctx Ctx, dep depgraph.Dep, key PropertyKey) Entity {
	ctx.Consume(dep)
	results := make([]Entity, 0, len(u.Members))
	for _, m := range u.Members {
		results = append(results, m.Value.GetProperty(ctx, depgraph.OfConsumer(Entity{Value: m.Value}), key))
	}
	return ctx.Factory().UnionOf(dep, results...)
}

func (u *Union) SetProperty(ctx Ctx, dep depgraph.Dep, key PropertyKey, val Entity) {
	ctx.Consume(dep)
	for _, m := range u.Members {
		m.Value.SetProperty(ctx, depgraph.OfConsumer(Entity{Value: m.Value}), key, val)
	}
}

func (u *Union) Call(ctx Ctx, dep depgraph.Dep, this Entity, args []Entity) Entity {
	ctx.Consume(dep)
	results := make([]Entity, 0, len(u.Members))
	for _, m := range u.Members {
		results = append(results, m.Value.Call(ctx, depgraph.OfConsumer(Entity{Value: m.Value}), this, args))
	}
	return ctx.Factory().UnionOf(dep, results...)
}

func (u *Union) AsCacheable() (Cacheable, bool) { return Cacheable{}, false }
