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

// ReactElementID uniquely identifies a ReactElement for the lifetime of one
// analysis; used only for debugging/snapshot stability, not lattice
// identity.
type ReactElementID uint32

// ReactElement models the object produced by a JSX expression, per spec.md
// section 3.3 and the DOMAIN STACK expansion's React-awareness requirement:
// a tag (component function/class, or host tag string), a props entity, and
// the ordered children deps. Kept distinct from Object so GetProperty on
// `.type`/`.props`/`.key` can be answered precisely without modeling every
// React internal field.
type ReactElement struct {
	Base

	ID       ReactElementID
	Tag      Entity
	Props    Entity
	Children []Entity
	Key      Entity // zero Entity if no explicit key prop was given
	HasKey   bool
}

func NewReactElement(id ReactElementID, tag, props Entity, children []Entity) *ReactElement {
	return &ReactElement{ID: id, Tag: tag, Props: props, Children: children}
}

func (r *ReactElement) Kind() Kind { return KindReactElement }

func (r *ReactElement) Consume(g *depgraph.Graph) {
	r.Tag.Consume(g)
	r.Props.Consume(g)
	for _, c := range r.Children {
		c.Consume(g)
	}
	if r.HasKey {
		r.Key.Consume(g)
	}
}

func (r *ReactElement) TestTypeof() TypeofMask { return TypeofObject }
func (r *ReactElement) TestTruthy() Tri        { return TriTrue }
func (r *ReactElement) TestNullish() Tri       { return TriFalse }

func (r *ReactElement) GetProperty(ctx Ctx, dep depgraph.Dep, key PropertyKey) Entity {
	if !key.IsSymbol {
		switch key.Str {
		case "type":
			ctx.Consume(dep)
			return r.Tag
		case "props":
			ctx.Consume(dep)
			return r.Props
		case "key":
			ctx.Consume(dep)
			if r.HasKey {
				return r.Key
			}
			return Entity{Value: &Literal{LKind: LitNull}, Dep: dep}
		}
	}
	ctx.Consume(dep)
	return ctx.Factory().ComputedUnknown(dep)
}

func (r *ReactElement) AsCacheable() (Cacheable, bool) { return Cacheable{}, false }
