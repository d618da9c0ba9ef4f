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

func TestFunctionTestMethods(t *testing.T) {
	f := NewFunction(1, 5, FnNormal, 0)
	qt.Assert(t, qt.Equals(f.TestTypeof(), TypeofFunction))
	qt.Assert(t, qt.Equals(f.TestTruthy(), TriTrue))
	qt.Assert(t, qt.Equals(f.TestNullish(), TriFalse))
}

func TestFunctionAsCacheableCarriesInstanceID(t *testing.T) {
	f := NewFunction(7, 0, FnNormal, 0)
	c, ok := f.AsCacheable()
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(c, Cacheable{Kind: CacheableFunctionInstance, InstID: 7}))
}

func TestFunctionConsumeRefersItsNodeExactlyOnce(t *testing.T) {
	g := depgraph.NewGraph()
	f := NewFunction(1, 42, FnNormal, 0)
	f.Consume(g)
	qt.Assert(t, qt.IsTrue(g.IsReferred(42)))
	f.Consume(g) // second call must be a no-op, not a panic
}

func TestFunctionConsumeConsumesStatics(t *testing.T) {
	ctx := newFakeCtx()
	g := depgraph.NewGraph()
	f := NewFunction(1, 42, FnClassConstructor, 0)
	f.Statics = NewObject(1, 0)
	f.Statics.SetProperty(ctx, depgraph.NoDep, StringKey("x"), Entity{})
	f.Consume(g)
	qt.Assert(t, qt.IsTrue(f.Statics.consumed))
}

func TestFunctionGetSetPropertyDelegatesToStatics(t *testing.T) {
	ctx := newFakeCtx()
	f := NewFunction(1, 0, FnClassConstructor, 0)
	f.Statics = NewObject(1, 0)
	f.SetProperty(ctx, depgraph.NoDep, StringKey("k"), Entity{Value: &Literal{LKind: LitString, Str: "v"}})
	e := f.GetProperty(ctx, depgraph.NoDep, StringKey("k"))
	lit, ok := e.Value.(*Literal)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(lit.Str, "v"))
}

func TestFunctionGetPropertyWithoutStaticsDegradesToUnknown(t *testing.T) {
	ctx := newFakeCtx()
	f := NewFunction(1, 0, FnNormal, 0)
	e := f.GetProperty(ctx, depgraph.NoDep, StringKey("k"))
	qt.Assert(t, qt.Equals(e.Value, Value(TheUnknown())))
}

func TestFunctionCallDegradesToUnknownAndRefersNode(t *testing.T) {
	ctx := newFakeCtx()
	f := NewFunction(1, 11, FnNormal, 0)
	e := f.Call(ctx, depgraph.NoDep, Entity{}, nil)
	qt.Assert(t, qt.Equals(e.Value, Value(TheUnknown())))
	qt.Assert(t, qt.IsTrue(ctx.graph.IsReferred(11)))
}

func TestFunctionConstructDelegatesToCall(t *testing.T) {
	ctx := newFakeCtx()
	f := NewFunction(1, 11, FnNormal, 0)
	e := f.Construct(ctx, depgraph.NoDep, nil)
	qt.Assert(t, qt.Equals(e.Value, Value(TheUnknown())))
	qt.Assert(t, qt.IsTrue(ctx.graph.IsReferred(11)))
}
