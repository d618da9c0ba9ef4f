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
	"math"
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/jsshaker/shaker/internal/depgraph"
)

func TestLiteralTestTypeofPerKind(t *testing.T) {
	qt.Assert(t, qt.Equals((&Literal{LKind: LitString}).TestTypeof(), TypeofString))
	qt.Assert(t, qt.Equals((&Literal{LKind: LitNumber}).TestTypeof(), TypeofNumber))
	qt.Assert(t, qt.Equals((&Literal{LKind: LitBigInt}).TestTypeof(), TypeofBigInt))
	qt.Assert(t, qt.Equals((&Literal{LKind: LitBoolean}).TestTypeof(), TypeofBoolean))
	qt.Assert(t, qt.Equals((&Literal{LKind: LitSymbol}).TestTypeof(), TypeofSymbol))
	qt.Assert(t, qt.Equals((&Literal{LKind: LitNull}).TestTypeof(), TypeofObject))
	qt.Assert(t, qt.Equals((&Literal{LKind: LitUndefined}).TestTypeof(), TypeofUndefined))
}

func TestLiteralTestTruthyString(t *testing.T) {
	qt.Assert(t, qt.Equals((&Literal{LKind: LitString, Str: ""}).TestTruthy(), TriFalse))
	qt.Assert(t, qt.Equals((&Literal{LKind: LitString, Str: "x"}).TestTruthy(), TriTrue))
}

func TestLiteralTestTruthyNumber(t *testing.T) {
	qt.Assert(t, qt.Equals((&Literal{LKind: LitNumber, Num: 0}).TestTruthy(), TriFalse))
	qt.Assert(t, qt.Equals((&Literal{LKind: LitNumber, Num: math.NaN()}).TestTruthy(), TriFalse))
	qt.Assert(t, qt.Equals((&Literal{LKind: LitNumber, Num: 1}).TestTruthy(), TriTrue))
}

func TestLiteralTestTruthyBigInt(t *testing.T) {
	qt.Assert(t, qt.Equals((&Literal{LKind: LitBigInt, BigInt: "0"}).TestTruthy(), TriFalse))
	qt.Assert(t, qt.Equals((&Literal{LKind: LitBigInt, BigInt: "3"}).TestTruthy(), TriTrue))
}

func TestLiteralTestTruthyNullUndefinedAlwaysFalse(t *testing.T) {
	qt.Assert(t, qt.Equals((&Literal{LKind: LitNull}).TestTruthy(), TriFalse))
	qt.Assert(t, qt.Equals((&Literal{LKind: LitUndefined}).TestTruthy(), TriFalse))
}

func TestLiteralTestTruthySymbolAlwaysTrue(t *testing.T) {
	qt.Assert(t, qt.Equals((&Literal{LKind: LitSymbol}).TestTruthy(), TriTrue))
}

func TestLiteralTestNullish(t *testing.T) {
	qt.Assert(t, qt.Equals((&Literal{LKind: LitNull}).TestNullish(), TriTrue))
	qt.Assert(t, qt.Equals((&Literal{LKind: LitUndefined}).TestNullish(), TriTrue))
	qt.Assert(t, qt.Equals((&Literal{LKind: LitString}).TestNullish(), TriFalse))
}

func TestLiteralCoerceToBooleanWrapsTruthiness(t *testing.T) {
	ctx := newFakeCtx()
	e := (&Literal{LKind: LitNumber, Num: 0}).CoerceToBoolean(ctx, depgraph.NoDep)
	lit, ok := e.Value.(*Literal)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(lit.LKind, LitBoolean))
	qt.Assert(t, qt.IsFalse(lit.Bool))
}

func TestLiteralCoerceToStringReturnsSelfForStrings(t *testing.T) {
	ctx := newFakeCtx()
	lit := &Literal{LKind: LitString, Str: "hi"}
	e := lit.CoerceToString(ctx, depgraph.NoDep)
	qt.Assert(t, qt.Equals(e.Value, Value(lit)))
}

func TestLiteralCoerceToStringWidensNonStrings(t *testing.T) {
	ctx := newFakeCtx()
	e := (&Literal{LKind: LitNumber, Num: 5}).CoerceToString(ctx, depgraph.NoDep)
	qt.Assert(t, qt.Equals(e.Value, Value(PrimitiveTop(PrimString))))
}

func TestLiteralAsCacheable(t *testing.T) {
	c, ok := (&Literal{LKind: LitString, Str: "x"}).AsCacheable()
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(c, Cacheable{Kind: CacheableLiteral, Str: "x"}))

	c, ok = (&Literal{LKind: LitNumber, Num: 3}).AsCacheable()
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(c, Cacheable{Kind: CacheableLiteral, Num: 3}))

	_, ok = (&Literal{LKind: LitBigInt}).AsCacheable()
	qt.Assert(t, qt.IsFalse(ok))

	_, ok = (&Literal{LKind: LitSymbol}).AsCacheable()
	qt.Assert(t, qt.IsFalse(ok))
}

func TestStrictEqualsDifferentKindsAreFalse(t *testing.T) {
	a := &Literal{LKind: LitString, Str: "1"}
	b := &Literal{LKind: LitNumber, Num: 1}
	qt.Assert(t, qt.Equals(a.StrictEquals(b, false), TriFalse))
}

func TestStrictEqualsStringsCompareByValue(t *testing.T) {
	a := &Literal{LKind: LitString, Str: "x"}
	b := &Literal{LKind: LitString, Str: "x"}
	c := &Literal{LKind: LitString, Str: "y"}
	qt.Assert(t, qt.Equals(a.StrictEquals(b, false), TriTrue))
	qt.Assert(t, qt.Equals(a.StrictEquals(c, false), TriFalse))
}

func TestStrictEqualsNaNIsNeverEqualUnderTripleEquals(t *testing.T) {
	a := &Literal{LKind: LitNumber, Num: math.NaN()}
	b := &Literal{LKind: LitNumber, Num: math.NaN()}
	qt.Assert(t, qt.Equals(a.StrictEquals(b, false), TriFalse))
}

func TestStrictEqualsNaNEqualsItselfUnderObjectIs(t *testing.T) {
	a := &Literal{LKind: LitNumber, Num: math.NaN()}
	b := &Literal{LKind: LitNumber, Num: math.NaN()}
	qt.Assert(t, qt.Equals(a.StrictEquals(b, true), TriTrue))
}

func TestStrictEqualsZeroSignUnderTripleEquals(t *testing.T) {
	a := &Literal{LKind: LitNumber, Num: 0}
	b := &Literal{LKind: LitNumber, Num: math.Copysign(0, -1)}
	qt.Assert(t, qt.Equals(a.StrictEquals(b, false), TriTrue))
}

func TestStrictEqualsZeroSignUnderObjectIs(t *testing.T) {
	a := &Literal{LKind: LitNumber, Num: 0}
	b := &Literal{LKind: LitNumber, Num: math.Copysign(0, -1)}
	qt.Assert(t, qt.Equals(a.StrictEquals(b, true), TriFalse))
}

func TestStrictEqualsNullAndUndefinedAreSelfEqual(t *testing.T) {
	qt.Assert(t, qt.Equals((&Literal{LKind: LitNull}).StrictEquals(&Literal{LKind: LitNull}, false), TriTrue))
	qt.Assert(t, qt.Equals((&Literal{LKind: LitUndefined}).StrictEquals(&Literal{LKind: LitUndefined}, false), TriTrue))
}

func TestStrictEqualsBigIntComparesDigits(t *testing.T) {
	a := &Literal{LKind: LitBigInt, BigInt: "10"}
	b := &Literal{LKind: LitBigInt, BigInt: "10"}
	c := &Literal{LKind: LitBigInt, BigInt: "11"}
	qt.Assert(t, qt.Equals(a.StrictEquals(b, false), TriTrue))
	qt.Assert(t, qt.Equals(a.StrictEquals(c, false), TriFalse))
}

func TestStrictEqualsSymbolComparesIdentity(t *testing.T) {
	a := &Literal{LKind: LitSymbol, SymbolID: 1}
	b := &Literal{LKind: LitSymbol, SymbolID: 1}
	c := &Literal{LKind: LitSymbol, SymbolID: 2}
	qt.Assert(t, qt.Equals(a.StrictEquals(b, false), TriTrue))
	qt.Assert(t, qt.Equals(a.StrictEquals(c, false), TriFalse))
}

func TestHasMangleAtomOnlyForTrackedStrings(t *testing.T) {
	qt.Assert(t, qt.IsFalse((&Literal{LKind: LitString}).HasMangleAtom()))
	qt.Assert(t, qt.IsTrue((&Literal{LKind: LitString, MangleAtm: 1}).HasMangleAtom()))
	qt.Assert(t, qt.IsFalse((&Literal{LKind: LitNumber, MangleAtm: 1}).HasMangleAtom()))
}
