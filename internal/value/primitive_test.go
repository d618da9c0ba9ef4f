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
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/jsshaker/shaker/internal/depgraph"
)

func TestPrimitiveTopReturnsSharedSingleton(t *testing.T) {
	qt.Assert(t, qt.Equals(PrimitiveTop(PrimString), PrimitiveTop(PrimString)))
	qt.Assert(t, qt.IsFalse(PrimitiveTop(PrimString) == PrimitiveTop(PrimNumber)))
}

func TestPrimitiveTestTypeofPerTag(t *testing.T) {
	qt.Assert(t, qt.Equals(PrimitiveTop(PrimString).TestTypeof(), TypeofString))
	qt.Assert(t, qt.Equals(PrimitiveTop(PrimNumber).TestTypeof(), TypeofNumber))
	qt.Assert(t, qt.Equals(PrimitiveTop(PrimBigInt).TestTypeof(), TypeofBigInt))
	qt.Assert(t, qt.Equals(PrimitiveTop(PrimBoolean).TestTypeof(), TypeofBoolean))
	qt.Assert(t, qt.Equals(PrimitiveTop(PrimSymbol).TestTypeof(), TypeofSymbol))
}

func TestPrimitiveMixedTestTypeofIsEveryScalarKind(t *testing.T) {
	want := TypeofString | TypeofNumber | TypeofBigInt | TypeofBoolean | TypeofSymbol
	qt.Assert(t, qt.Equals(PrimitiveTop(PrimMixed).TestTypeof(), want))
}

func TestPrimitiveTestTruthySymbolIsTrueOthersUnknown(t *testing.T) {
	qt.Assert(t, qt.Equals(PrimitiveTop(PrimSymbol).TestTruthy(), TriTrue))
	qt.Assert(t, qt.Equals(PrimitiveTop(PrimString).TestTruthy(), TriUnknown))
	qt.Assert(t, qt.Equals(PrimitiveTop(PrimNumber).TestTruthy(), TriUnknown))
}

func TestPrimitiveTestNullishAlwaysFalse(t *testing.T) {
	qt.Assert(t, qt.Equals(PrimitiveTop(PrimMixed).TestNullish(), TriFalse))
}

func TestPrimitiveAsCacheableCarriesTagInNum(t *testing.T) {
	c, ok := PrimitiveTop(PrimBoolean).AsCacheable()
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(c, Cacheable{Kind: CacheablePrimitiveTag, Num: float64(PrimBoolean)}))
}

func TestPrimitiveCoerceToStringWidensToStringTop(t *testing.T) {
	ctx := newFakeCtx()
	e := PrimitiveTop(PrimNumber).CoerceToString(ctx, depgraph.NoDep)
	qt.Assert(t, qt.Equals(e.Value, Value(PrimitiveTop(PrimString))))
}
