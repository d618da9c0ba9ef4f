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

// Package cache implements the function-effect cache of spec.md section
// 4.5: a per-function-instance memo keyed by cacheable call inputs,
// recording the read set and write set observed during one execution of
// the body so a later call with compatible inputs can replay the effect
// without re-visiting the body.
//
// Grounded on cuelang.org/go/internal/core/adt's closed.go CloseInfo
// generation-counter sanity-check pattern (opID), adapted here into a
// cache-generation stamp, and on the teacher's general "memoize if stable,
// else fall through to re-execution" shape used throughout eval.go.
package cache

import (
	"github.com/jsshaker/shaker/internal/scope"
	"github.com/jsshaker/shaker/internal/value"
)

// Inputs is the cache key's call-shape component, per spec.md: whether
// this was a `new` call, and whether `this`/each argument was cacheable.
type Inputs struct {
	IsCtor       bool
	ThisCacheable value.Cacheable
	HasThis      bool
	Args         []value.Cacheable
}

func (i Inputs) key() string {
	s := "c"
	if i.IsCtor {
		s = "n"
	}
	if i.HasThis {
		s += cacheableKeyPart(i.ThisCacheable)
	}
	for _, a := range i.Args {
		s += "|" + cacheableKeyPart(a)
	}
	return s
}

func cacheableKeyPart(c value.Cacheable) string {
	switch c.Kind {
	case value.CacheableLiteral:
		return "L" + c.Str
	case value.CacheablePrimitiveTag:
		return "P"
	case value.CacheableFunctionInstance:
		return "F"
	case value.CacheableModule:
		return "M"
	}
	return "?"
}

// ReadEntry is one observation in a cache entry's read set: the entity last
// seen for target, or WasTDZ when the read hit the temporal dead zone.
type ReadEntry struct {
	Target  scope.ReadWriteTarget
	WasTDZ  bool
	Value   value.Entity
}

// WriteEntry is one observation in a cache entry's write set: whether the
// write was non-deterministic (forces a full re-run rather than a replay)
// and, if not, the cacheable value that was written.
type WriteEntry struct {
	Target          scope.ReadWriteTarget
	NonDeterministic bool
	NewValue        value.Cacheable
}

// Entry is one memoized call.
type Entry struct {
	Inputs           Inputs
	ReadSet          []ReadEntry
	WriteSet         []WriteEntry
	Return           value.Cacheable
	HasGlobalEffects bool
}

// perFunction holds every memoized entry for one FunctionID, keyed by the
// Inputs string so lookups are O(1) on the common case.
type perFunction struct {
	entries map[string][]*Entry
}

// Cache is the whole-analysis function-effect memo table, one per
// analysis, addressed by FunctionID.
type Cache struct {
	byFunc map[value.FunctionID]*perFunction
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{byFunc: make(map[value.FunctionID]*perFunction)}
}

// TryGet looks up a cached entry matching fn/inputs, per spec.md's cache
// lookup: an exact Inputs match is required (same cacheable shape);
// compatibility of the *read set* against the current world is the
// caller's job (CheckReadSetCompatible), since only the analyzer can
// re-observe current variable/object values.
func (c *Cache) TryGet(fn value.FunctionID, inputs Inputs) []*Entry {
	pf, ok := c.byFunc[fn]
	if !ok {
		return nil
	}
	return pf.entries[inputs.key()]
}

// Store records a freshly computed entry.
func (c *Cache) Store(fn value.FunctionID, e *Entry) {
	pf, ok := c.byFunc[fn]
	if !ok {
		pf = &perFunction{entries: make(map[string][]*Entry)}
		c.byFunc[fn] = pf
	}
	k := e.Inputs.key()
	pf.entries[k] = append(pf.entries[k], e)
}

// ExactlySame reports whether a and b hold the same Value (pointer
// identity), the "exactly_same" comparison the cache lookup uses before
// falling back to cacheable compatibility checking. The Deps of a and b
// are not compared.
func ExactlySame(a, b value.Entity) bool {
	return a.Value == b.Value
}

// CompatibleCacheable reports whether replaying a read-set observation
// recorded as `recorded` is still valid given the current value's
// cacheable projection `current`: same kind and, for primitive tags, same
// tag; for literals, matching representation is NOT required (a cache hit
// only needs the *shape* to match so the recorded dep can be substituted).
// A primitive-tag observation is never compatible with a literal, nor a
// literal with a primitive tag, whatever the literal's kind.
func CompatibleCacheable(recorded, current value.Cacheable) bool {
	if recorded.Kind != current.Kind {
		return false
	}
	switch recorded.Kind {
	case value.CacheablePrimitiveTag:
		return recorded.Num == current.Num
	case value.CacheableFunctionInstance, value.CacheableModule:
		return recorded.InstID == current.InstID
	default:
		return true
	}
}

// CheckReadSetCompatible replays a candidate entry's read set against
// fresh reads supplied by reread (called once per ReadEntry, returning the
// current entity for that target); it reports whether every entry is
// still compatible, returning ok=false at the first incompatible one.
func CheckReadSetCompatible(entry *Entry, reread func(scope.ReadWriteTarget) (value.Entity, bool)) (ok bool) {
	for _, r := range entry.ReadSet {
		cur, wasTDZ := reread(r.Target)
		if wasTDZ != r.WasTDZ {
			return false
		}
		if wasTDZ {
			continue
		}
		if ExactlySame(cur, r.Value) {
			continue
		}
		rc, rok := r.Value.Value.AsCacheable()
		cc, cok := cur.Value.AsCacheable()
		if !rok || !cok || !CompatibleCacheable(rc, cc) {
			return false
		}
	}
	return true
}
