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

	"github.com/jsshaker/shaker/internal/depgraph"
)

// MangleAtomID identifies a mangle atom tracked by internal/mangle.Mangler.
// It is opaque to this package: the value lattice only needs to carry the
// ID alongside a literal string so the mangler can later resolve it.
type MangleAtomID uint32

// NoMangleAtom marks a string literal that is not subject to mangling.
const NoMangleAtom MangleAtomID = 0

// LiteralKind distinguishes the scalar kinds a Literal may hold.
type LiteralKind uint8

const (
	LitString LiteralKind = iota
	LitNumber
	LitBigInt
	LitBoolean
	LitSymbol
	LitNull
	LitUndefined
)

// Literal is a concrete scalar value, per spec.md section 3.3.
type Literal struct {
	Base
	LKind     LiteralKind
	Str       string
	MangleAtm MangleAtomID // only meaningful when LKind == LitString
	Num       float64
	BigInt    string // decimal digits, to avoid depending on math/big across the lattice
	Bool      bool
	SymbolID  uint64

	consumed bool
}

func (l *Literal) Kind() Kind { return KindLiteral }

func (l *Literal) Consume(g *depgraph.Graph) {
	l.consumed = true
}

// HasMangleAtom reports whether this string literal is tracked for mangling.
func (l *Literal) HasMangleAtom() bool {
	return l.LKind == LitString && l.MangleAtm != NoMangleAtom
}

func (l *Literal) TestTypeof() TypeofMask {
	switch l.LKind {
	case LitString:
		return TypeofString
	case LitNumber:
		return TypeofNumber
	case LitBigInt:
		return TypeofBigInt
	case LitBoolean:
		return TypeofBoolean
	case LitSymbol:
		return TypeofSymbol
	case LitNull:
		return TypeofObject
	case LitUndefined:
		return TypeofUndefined
	}
	return TypeofAll
}

func (l *Literal) TestTruthy() Tri {
	switch l.LKind {
	case LitString:
		if l.Str == "" {
			return TriFalse
		}
		return TriTrue
	case LitNumber:
		if l.Num == 0 || math.IsNaN(l.Num) {
			return TriFalse
		}
		return TriTrue
	case LitBoolean:
		if l.Bool {
			return TriTrue
		}
		return TriFalse
	case LitNull, LitUndefined:
		return TriFalse
	case LitBigInt:
		if l.BigInt == "0" || l.BigInt == "" {
			return TriFalse
		}
		return TriTrue
	case LitSymbol:
		return TriTrue
	}
	return TriUnknown
}

func (l *Literal) TestNullish() Tri {
	if l.LKind == LitNull || l.LKind == LitUndefined {
		return TriTrue
	}
	return TriFalse
}

func (l *Literal) CoerceToBoolean(ctx Ctx, dep depgraph.Dep) Entity {
	ctx.Consume(dep)
	t := l.TestTruthy()
	return Entity{Value: &Literal{LKind: LitBoolean, Bool: t == TriTrue}, Dep: dep}
}

func (l *Literal) CoerceToString(ctx Ctx, dep depgraph.Dep) Entity {
	ctx.Consume(dep)
	if l.LKind == LitString {
		return Entity{Value: l, Dep: dep}
	}
	return Entity{Value: PrimitiveTop(PrimString), Dep: dep}
}

func (l *Literal) AsCacheable() (Cacheable, bool) {
	switch l.LKind {
	case LitString:
		return Cacheable{Kind: CacheableLiteral, Str: l.Str}, true
	case LitNumber:
		return Cacheable{Kind: CacheableLiteral, Num: l.Num}, true
	case LitBoolean:
		return Cacheable{Kind: CacheableLiteral, Bool: l.Bool}, true
	case LitNull, LitUndefined:
		return Cacheable{Kind: CacheableLiteral}, true
	}
	return Cacheable{}, false
}

// StrictEquals implements the strict-equality half of spec.md section
// 4.1.1: structural equality on literals, with NaN != NaN and +0 === -0
// unless the Object.is variant is requested, under which NaN equals NaN
// and +0 differs from -0.
func (l *Literal) StrictEquals(other *Literal, objectIs bool) Tri {
	if l.LKind != other.LKind {
		// null and undefined are never === to anything but their own kind.
		return TriFalse
	}
	switch l.LKind {
	case LitString:
		return triFromBool(l.Str == other.Str)
	case LitNumber:
		if math.IsNaN(l.Num) || math.IsNaN(other.Num) {
			if objectIs {
				return triFromBool(math.IsNaN(l.Num) && math.IsNaN(other.Num))
			}
			return TriFalse
		}
		if objectIs && (isNegZero(l.Num) != isNegZero(other.Num)) && l.Num == 0 && other.Num == 0 {
			return TriFalse
		}
		return triFromBool(l.Num == other.Num)
	case LitBigInt:
		return triFromBool(l.BigInt == other.BigInt)
	case LitBoolean:
		return triFromBool(l.Bool == other.Bool)
	case LitSymbol:
		return triFromBool(l.SymbolID == other.SymbolID)
	case LitNull, LitUndefined:
		return TriTrue
	}
	return TriUnknown
}

func isNegZero(f float64) bool {
	return f == 0 && math.Signbit(f)
}

func triFromBool(b bool) Tri {
	if b {
		return TriTrue
	}
	return TriFalse
}
