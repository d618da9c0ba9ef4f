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

// LogicalOp identifies which of JS's three short-circuiting operators
// produced a LogicalResult.
type LogicalOp uint8

const (
	LogicalAnd LogicalOp = iota
	LogicalOr
	LogicalNullish
)

// LogicalResult wraps the result of `&&`, `||`, or `??` together with the
// fact the analyzer already knows about its truthiness/nullishness (it was
// derived from testing the left operand), per spec.md section 3.3. Carrying
// this fact lets a containing `if` re-test the same condition without
// losing precision, mirroring
// original_source/crates/jsshaker/src/value/logical_result.rs.
type LogicalResult struct {
	Base

	Op    LogicalOp
	Inner Entity

	// KnownTruthy/KnownNullish mirror the fact established when this result
	// was produced: e.g. for `a && b`, if a was known truthy, the overall
	// result's truthiness is just b's.
	KnownTruthy  Tri
	KnownNullish Tri
}

func NewLogicalResult(op LogicalOp, inner Entity, truthy, nullish Tri) *LogicalResult {
	return &LogicalResult{Op: op, Inner: inner, KnownTruthy: truthy, KnownNullish: nullish}
}

func (l *LogicalResult) Kind() Kind { return KindLogicalResult }

func (l *LogicalResult) Consume(g *depgraph.Graph) { l.Inner.Consume(g) }

func (l *LogicalResult) TestTypeof() TypeofMask { return l.Inner.Value.TestTypeof() }

func (l *LogicalResult) TestTruthy() Tri {
	if l.KnownTruthy != TriUnknown {
		return l.KnownTruthy
	}
	return l.Inner.Value.TestTruthy()
}

func (l *LogicalResult) TestNullish() Tri {
	if l.KnownNullish != TriUnknown {
		return l.KnownNullish
	}
	return l.Inner.Value.TestNullish()
}

func (l *LogicalResult) GetProperty(ctx Ctx, dep depgraph.Dep, key PropertyKey) Entity {
	return l.Inner.Value.GetProperty(ctx, depgraph.OfTuple(dep, l.Inner.Dep), key)
}

func (l *LogicalResult) Call(ctx Ctx, dep depgraph.Dep, this Entity, args []Entity) Entity {
	return l.Inner.Value.Call(ctx, depgraph.OfTuple(dep, l.Inner.Dep), this, args)
}

func (l *LogicalResult) CoerceToBoolean(ctx Ctx, dep depgraph.Dep) Entity {
	return l.Inner.Value.CoerceToBoolean(ctx, depgraph.OfTuple(dep, l.Inner.Dep))
}

func (l *LogicalResult) AsCacheable() (Cacheable, bool) {
	return l.Inner.Value.AsCacheable()
}

// Unwrap returns the inner entity together with the extra dep this wrapper
// itself carries, for callers (e.g. the conditional branch tracker) that
// want to see through a LogicalResult to its payload.
func (l *LogicalResult) Unwrap(dep depgraph.Dep) Entity {
	return Entity{Value: l.Inner.Value, Dep: depgraph.OfTuple(dep, l.Inner.Dep)}
}
