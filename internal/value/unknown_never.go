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

// Unknown is the immutable top of the lattice: "could be anything".
type Unknown struct{ Base }

var unknownSingleton = &Unknown{}

// TheUnknown returns the shared Unknown singleton.
func TheUnknown() *Unknown { return unknownSingleton }

func (u *Unknown) Kind() Kind               { return KindUnknown }
func (u *Unknown) Consume(g *depgraph.Graph) {}
func (u *Unknown) TestTypeof() TypeofMask    { return TypeofAll }
func (u *Unknown) TestTruthy() Tri           { return TriUnknown }
func (u *Unknown) TestNullish() Tri          { return TriUnknown }

func (u *Unknown) GetProperty(ctx Ctx, dep depgraph.Dep, key PropertyKey) Entity {
	ctx.Consume(dep)
	return ctx.Factory().ComputedUnknown(dep)
}

func (u *Unknown) Call(ctx Ctx, dep depgraph.Dep, this Entity, args []Entity) Entity {
	ctx.Consume(dep)
	ctx.Consume(depgraph.OfConsumer(this))
	for _, a := range args {
		ctx.Consume(depgraph.OfConsumer(a))
	}
	return ctx.Factory().ComputedUnknown(dep)
}

// Never is the immutable bottom of the lattice: "this code path is
// unreachable" (e.g. the arm of a fully-resolved conditional that cannot
// run).
type Never struct{ Base }

var neverSingleton = &Never{}

// TheNever returns the shared Never singleton.
func TheNever() *Never { return neverSingleton }

func (n *Never) Kind() Kind               { return KindNever }
func (n *Never) Consume(g *depgraph.Graph) {}
func (n *Never) TestTypeof() TypeofMask    { return 0 }
func (n *Never) TestTruthy() Tri           { return TriUnknown }
func (n *Never) TestNullish() Tri          { return TriUnknown }
