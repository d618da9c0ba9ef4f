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

// MangleConstraintKind distinguishes the two constraint shapes the mangler
// solves, per spec.md section 4.6 / original_source's mangling/constraint.rs.
type MangleConstraintKind uint8

const (
	MangleIdentity  MangleConstraintKind = iota // atoms must resolve to the SAME name
	MangleUniqueness                            // atoms must resolve to DISTINCT names
)

// MangleConstraint is a depgraph.Consumer wrapping a pair of mangle atoms
// plus the relation between them; consuming it hands the pair to Register.
// No package sets Register (internal/mangle.Mangler.MarkEquality is not
// wired to it), so a constraint built in this package reaches no mangler.
type MangleConstraint struct {
	Kind MangleConstraintKind
	A, B MangleAtomID
	// Register, when non-nil, is called at Consume time with the concrete
	// constraint; a plain closure keeps value from importing
	// internal/mangle (avoiding an import cycle).
	Register func(kind MangleConstraintKind, a, b MangleAtomID)
}

func (c MangleConstraint) Consume(g *depgraph.Graph) {
	if c.Register != nil && c.A != NoMangleAtom && c.B != NoMangleAtom {
		c.Register(c.Kind, c.A, c.B)
	}
}

// StrictEquals implements spec.md section 4.1.1's full strict-equality
// contract across every Value kind, not just Literal vs Literal: same-kind
// Literals compare structurally (see literal.go), same pointer-identity
// Objects/Arrays/Functions compare equal, cross-kind comparisons (null
// vs undefined included) are false, and anything touching Unknown is
// TriUnknown. objectIs selects Object.is semantics (NaN===NaN, -0!==+0)
// over ===. Two equal string literals that both carry mangle atoms also
// consume a MangleIdentity constraint; it has no Register, so it records
// nothing, and unequal literals consume no constraint at all.
func StrictEquals(ctx Ctx, dep depgraph.Dep, a, b Entity, objectIs bool) (Tri, depgraph.Dep) {
	combinedDep := depgraph.OfTuple(dep, a.Dep, b.Dep)
	av, bv := a.Value, b.Value
	if av == nil || bv == nil {
		return TriUnknown, combinedDep
	}
	if av.Kind() == KindUnknown || bv.Kind() == KindUnknown {
		ctx.Consume(combinedDep)
		return TriUnknown, combinedDep
	}
	if al, ok := av.(*Literal); ok {
		if bl, ok := bv.(*Literal); ok {
			result := al.StrictEquals(bl, objectIs)
			if result == TriTrue && al.HasMangleAtom() && bl.HasMangleAtom() {
				ctx.Consume(depgraph.OfConsumer(MangleConstraint{
					Kind: MangleIdentity, A: al.MangleAtm, B: bl.MangleAtm,
				}))
			}
			return result, combinedDep
		}
	}
	switch av.Kind() {
	case KindPrimitive, KindUnion, KindLogicalResult:
		return TriUnknown, combinedDep
	}
	if bv.Kind() == KindPrimitive || bv.Kind() == KindUnion || bv.Kind() == KindLogicalResult {
		return TriUnknown, combinedDep
	}
	if av.Kind() != bv.Kind() {
		return TriFalse, combinedDep
	}
	switch x := av.(type) {
	case *Object:
		return triFromBool(x == bv.(*Object)), combinedDep
	case *Array:
		return triFromBool(x == bv.(*Array)), combinedDep
	case *Function:
		return triFromBool(x == bv.(*Function)), combinedDep
	case *BuiltinFn:
		return triFromBool(x == bv.(*BuiltinFn)), combinedDep
	case *ReactElement:
		return triFromBool(x == bv.(*ReactElement)), combinedDep
	case *ModuleObject:
		return triFromBool(x.ID == bv.(*ModuleObject).ID), combinedDep
	}
	return TriUnknown, combinedDep
}
