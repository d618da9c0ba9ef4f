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

package cache

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/jsshaker/shaker/internal/scope"
	"github.com/jsshaker/shaker/internal/value"
)

func TestStoreAndTryGetRoundTrip(t *testing.T) {
	c := New()
	fn := value.FunctionID(1)
	inputs := Inputs{IsCtor: false}
	entry := &Entry{Inputs: inputs}
	c.Store(fn, entry)

	got := c.TryGet(fn, inputs)
	qt.Assert(t, qt.HasLen(got, 1))
	qt.Assert(t, qt.Equals(got[0], entry))
}

func TestTryGetMissForUnknownFunction(t *testing.T) {
	c := New()
	qt.Assert(t, qt.HasLen(c.TryGet(value.FunctionID(99), Inputs{}), 0))
}

func TestTryGetDistinguishesCtorFromCall(t *testing.T) {
	c := New()
	fn := value.FunctionID(1)
	callEntry := &Entry{Inputs: Inputs{IsCtor: false}}
	ctorEntry := &Entry{Inputs: Inputs{IsCtor: true}}
	c.Store(fn, callEntry)
	c.Store(fn, ctorEntry)

	gotCall := c.TryGet(fn, Inputs{IsCtor: false})
	gotCtor := c.TryGet(fn, Inputs{IsCtor: true})
	qt.Assert(t, qt.HasLen(gotCall, 1))
	qt.Assert(t, qt.Equals(gotCall[0], callEntry))
	qt.Assert(t, qt.HasLen(gotCtor, 1))
	qt.Assert(t, qt.Equals(gotCtor[0], ctorEntry))
}

func TestTryGetDistinguishesArgShape(t *testing.T) {
	c := New()
	fn := value.FunctionID(1)
	inputsA := Inputs{Args: []value.Cacheable{{Kind: value.CacheableLiteral, Str: "a"}}}
	inputsB := Inputs{Args: []value.Cacheable{{Kind: value.CacheablePrimitiveTag}}}
	entryA := &Entry{Inputs: inputsA}
	entryB := &Entry{Inputs: inputsB}
	c.Store(fn, entryA)
	c.Store(fn, entryB)

	qt.Assert(t, qt.Equals(c.TryGet(fn, inputsA)[0], entryA))
	qt.Assert(t, qt.Equals(c.TryGet(fn, inputsB)[0], entryB))
}

func TestExactlySameComparesValuePointerIdentity(t *testing.T) {
	lit := &value.Literal{LKind: value.LitString, Str: "x"}
	other := &value.Literal{LKind: value.LitString, Str: "x"}

	a := value.Entity{Value: lit}
	b := value.Entity{Value: lit}
	c := value.Entity{Value: other}

	qt.Assert(t, qt.IsTrue(ExactlySame(a, b)))
	qt.Assert(t, qt.IsFalse(ExactlySame(a, c)))
}

func TestCompatibleCacheableRequiresSameKind(t *testing.T) {
	recorded := value.Cacheable{Kind: value.CacheableLiteral, Str: "x"}
	current := value.Cacheable{Kind: value.CacheablePrimitiveTag}
	qt.Assert(t, qt.IsFalse(CompatibleCacheable(recorded, current)))
}

func TestCompatibleCacheableLiteralIgnoresRepresentation(t *testing.T) {
	recorded := value.Cacheable{Kind: value.CacheableLiteral, Str: "x"}
	current := value.Cacheable{Kind: value.CacheableLiteral, Str: "y"}
	qt.Assert(t, qt.IsTrue(CompatibleCacheable(recorded, current)))
}

func TestCompatibleCacheableFunctionInstanceRequiresSameID(t *testing.T) {
	recorded := value.Cacheable{Kind: value.CacheableFunctionInstance, InstID: 1}
	sameID := value.Cacheable{Kind: value.CacheableFunctionInstance, InstID: 1}
	otherID := value.Cacheable{Kind: value.CacheableFunctionInstance, InstID: 2}
	qt.Assert(t, qt.IsTrue(CompatibleCacheable(recorded, sameID)))
	qt.Assert(t, qt.IsFalse(CompatibleCacheable(recorded, otherID)))
}

func fixtureTarget() scope.ReadWriteTarget {
	return scope.ReadWriteTarget{Kind: scope.RWVariable}
}

func TestCheckReadSetCompatibleExactSameEntityPasses(t *testing.T) {
	target := fixtureTarget()
	lit := &value.Literal{LKind: value.LitString, Str: "x"}
	entity := value.Entity{Value: lit}
	entry := &Entry{ReadSet: []ReadEntry{{Target: target, Value: entity}}}

	ok := CheckReadSetCompatible(entry, func(scope.ReadWriteTarget) (value.Entity, bool) {
		return entity, false
	})
	qt.Assert(t, qt.IsTrue(ok))
}

func TestCheckReadSetCompatibleTDZMismatchFails(t *testing.T) {
	target := fixtureTarget()
	entry := &Entry{ReadSet: []ReadEntry{{Target: target, WasTDZ: true}}}

	ok := CheckReadSetCompatible(entry, func(scope.ReadWriteTarget) (value.Entity, bool) {
		return value.Entity{}, false
	})
	qt.Assert(t, qt.IsFalse(ok))
}

func TestCheckReadSetCompatibleBothTDZSkipsValueCheck(t *testing.T) {
	target := fixtureTarget()
	entry := &Entry{ReadSet: []ReadEntry{{Target: target, WasTDZ: true}}}

	ok := CheckReadSetCompatible(entry, func(scope.ReadWriteTarget) (value.Entity, bool) {
		return value.Entity{}, true
	})
	qt.Assert(t, qt.IsTrue(ok))
}

func TestCheckReadSetCompatibleFallsBackToCacheableShape(t *testing.T) {
	target := fixtureTarget()
	recorded := value.Entity{Value: &value.Literal{LKind: value.LitString, Str: "x"}}
	current := value.Entity{Value: &value.Literal{LKind: value.LitString, Str: "y"}}
	entry := &Entry{ReadSet: []ReadEntry{{Target: target, Value: recorded}}}

	ok := CheckReadSetCompatible(entry, func(scope.ReadWriteTarget) (value.Entity, bool) {
		return current, false
	})
	qt.Assert(t, qt.IsTrue(ok))
}

func TestCheckReadSetCompatibleFunctionInstanceMismatchFails(t *testing.T) {
	target := fixtureTarget()
	recorded := value.Entity{Value: &value.Function{ID: 1}}
	current := value.Entity{Value: &value.Function{ID: 2}}
	entry := &Entry{ReadSet: []ReadEntry{{Target: target, Value: recorded}}}

	ok := CheckReadSetCompatible(entry, func(scope.ReadWriteTarget) (value.Entity, bool) {
		return current, false
	})
	qt.Assert(t, qt.IsFalse(ok))
}
