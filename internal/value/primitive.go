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

// PrimitiveTag identifies "unknown of this primitive kind" per spec.md's
// Primitive variant.
type PrimitiveTag uint8

const (
	PrimMixed PrimitiveTag = iota
	PrimString
	PrimNumber
	PrimBigInt
	PrimBoolean
	PrimSymbol
)

// Primitive is the top of one primitive kind: "some string, we just don't
// know which one" and so on. PrimMixed is top of the whole primitive union.
type Primitive struct {
	Base
	Tag PrimitiveTag
}

var primitiveSingletons = map[PrimitiveTag]*Primitive{
	PrimMixed:   {Tag: PrimMixed},
	PrimString:  {Tag: PrimString},
	PrimNumber:  {Tag: PrimNumber},
	PrimBigInt:  {Tag: PrimBigInt},
	PrimBoolean: {Tag: PrimBoolean},
	PrimSymbol:  {Tag: PrimSymbol},
}

// PrimitiveTop returns the shared singleton for "unknown value of tag".
func PrimitiveTop(tag PrimitiveTag) *Primitive {
	return primitiveSingletons[tag]
}

func (p *Primitive) Kind() Kind                        { return KindPrimitive }
func (p *Primitive) Consume(g *depgraph.Graph)          {}
func (p *Primitive) AsCacheable() (Cacheable, bool) {
	return Cacheable{Kind: CacheablePrimitiveTag, Num: float64(p.Tag)}, true
}

func (p *Primitive) TestTypeof() TypeofMask {
	switch p.Tag {
	case PrimString:
		return TypeofString
	case PrimNumber:
		return TypeofNumber
	case PrimBigInt:
		return TypeofBigInt
	case PrimBoolean:
		return TypeofBoolean
	case PrimSymbol:
		return TypeofSymbol
	}
	return TypeofString | TypeofNumber | TypeofBigInt | TypeofBoolean | TypeofSymbol
}

func (p *Primitive) TestTruthy() Tri {
	if p.Tag == PrimSymbol {
		return TriTrue // every symbol is truthy
	}
	return TriUnknown
}

func (p *Primitive) TestNullish() Tri { return TriFalse }

func (p *Primitive) CoerceToString(ctx Ctx, dep depgraph.Dep) Entity {
	ctx.Consume(dep)
	return Entity{Value: PrimitiveTop(PrimString), Dep: dep}
}
