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

func TestArrayGetPropertyReadsLiteralIndex(t *testing.T) {
	ctx := newFakeCtx()
	a := NewArray(1, 0)
	a.Push(Entity{Value: &Literal{LKind: LitString, Str: "zero"}})
	e := a.GetProperty(ctx, depgraph.NoDep, StringKey("0"))
	lit, ok := e.Value.(*Literal)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(lit.Str, "zero"))
}

func TestArrayGetPropertyOutOfBoundsWithoutRestIsUndefined(t *testing.T) {
	ctx := newFakeCtx()
	a := NewArray(1, 0)
	e := a.GetProperty(ctx, depgraph.NoDep, StringKey("5"))
	lit, ok := e.Value.(*Literal)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(lit.LKind, LitUndefined))
}

func TestArrayGetPropertyOutOfBoundsWithRestIsUnknown(t *testing.T) {
	ctx := newFakeCtx()
	a := NewArray(1, 0)
	a.SetProperty(ctx, depgraph.NoDep, StringKey("nonindex"), Entity{Value: &Literal{LKind: LitNumber, Num: 1}})
	e := a.GetProperty(ctx, depgraph.NoDep, StringKey("5"))
	qt.Assert(t, qt.Equals(e.Value, Value(TheUnknown())))
}

func TestArrayGetPropertyLengthWithoutRest(t *testing.T) {
	ctx := newFakeCtx()
	a := NewArray(1, 0)
	a.Push(Entity{Value: &Literal{LKind: LitNumber, Num: 1}})
	a.Push(Entity{Value: &Literal{LKind: LitNumber, Num: 2}})
	e := a.GetProperty(ctx, depgraph.NoDep, StringKey("length"))
	lit := e.Value.(*Literal)
	qt.Assert(t, qt.Equals(lit.Num, float64(2)))
}

func TestArrayGetPropertyLengthWithRestDegradesToUnknown(t *testing.T) {
	ctx := newFakeCtx()
	a := NewArray(1, 0)
	a.Push(Entity{Value: &Literal{LKind: LitNumber, Num: 1}})
	a.SetProperty(ctx, depgraph.NoDep, StringKey("x"), Entity{Value: &Literal{LKind: LitNumber, Num: 9}})
	e := a.GetProperty(ctx, depgraph.NoDep, StringKey("length"))
	qt.Assert(t, qt.Equals(e.Value, Value(TheUnknown())))
}

func TestParseArrayIndexRejectsLeadingZeroAndNonDigits(t *testing.T) {
	_, ok := parseArrayIndex("0")
	qt.Assert(t, qt.IsTrue(ok))
	_, ok = parseArrayIndex("01")
	qt.Assert(t, qt.IsFalse(ok))
	_, ok = parseArrayIndex("")
	qt.Assert(t, qt.IsFalse(ok))
	_, ok = parseArrayIndex("1a")
	qt.Assert(t, qt.IsFalse(ok))
	n, ok := parseArrayIndex("12")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(n, 12))
}

func TestArraySetPropertyAppendsContiguousIndex(t *testing.T) {
	ctx := newFakeCtx()
	a := NewArray(1, 0)
	a.SetProperty(ctx, depgraph.NoDep, StringKey("0"), Entity{Value: &Literal{LKind: LitString, Str: "a"}})
	qt.Assert(t, qt.HasLen(a.Elements, 1))
	qt.Assert(t, qt.IsNil(a.RestDep))
}

func TestArraySetPropertyNonContiguousIndexOpensRest(t *testing.T) {
	ctx := newFakeCtx()
	a := NewArray(1, 0)
	a.SetProperty(ctx, depgraph.NoDep, StringKey("3"), Entity{Value: &Literal{LKind: LitString, Str: "a"}})
	qt.Assert(t, qt.HasLen(a.Elements, 0))
	qt.Assert(t, qt.IsNotNil(a.RestDep))
}

func TestArrayIterateClosedArrayHasNoRest(t *testing.T) {
	ctx := newFakeCtx()
	a := NewArray(1, 0)
	a.Push(Entity{Value: &Literal{LKind: LitNumber, Num: 1}})
	res := a.Iterate(ctx, depgraph.NoDep)
	qt.Assert(t, qt.HasLen(res.Prefix, 1))
	qt.Assert(t, qt.Equals(res.Rest.Value, Value(nil)))
}

func TestArrayIterateOpenArrayHasUnknownRest(t *testing.T) {
	ctx := newFakeCtx()
	a := NewArray(1, 0)
	a.Push(Entity{Value: &Literal{LKind: LitNumber, Num: 1}})
	a.SetProperty(ctx, depgraph.NoDep, StringKey("x"), Entity{})
	res := a.Iterate(ctx, depgraph.NoDep)
	qt.Assert(t, qt.HasLen(res.Prefix, 1))
	qt.Assert(t, qt.Equals(res.Rest.Value, Value(TheUnknown())))
}

func TestArrayConsumeIsIdempotentAndConsumesElements(t *testing.T) {
	g := depgraph.NewGraph()
	lit := &Literal{LKind: LitString, Str: "x"}
	a := NewArray(1, 0)
	a.Push(Entity{Value: lit})
	a.Consume(g)
	qt.Assert(t, qt.IsTrue(lit.consumed))
	qt.Assert(t, qt.IsTrue(a.consumed))

	a.Consume(g) // second call must not panic or double count
}

func TestArrayPushAfterConsumeGoesToRest(t *testing.T) {
	g := depgraph.NewGraph()
	a := NewArray(1, 0)
	a.Consume(g)
	a.Push(Entity{Value: &Literal{LKind: LitString, Str: "late"}})
	qt.Assert(t, qt.HasLen(a.Elements, 0))
	qt.Assert(t, qt.IsNotNil(a.RestDep))
}
