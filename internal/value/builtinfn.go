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

// BuiltinImpl is the native implementation a BuiltinFn closes over. Defined
// as a plain function type (rather than an interface internal/builtins must
// satisfy) so internal/builtins can register builtins without value needing
// to import it.
type BuiltinImpl func(ctx Ctx, dep depgraph.Dep, this Entity, args []Entity) Entity

// BuiltinFn is a host-provided callable (Object.keys, Array.prototype.map,
// console.log, React.createContext, ...), per spec.md section 3.3: a name
// for diagnostics/mangling-exemption purposes plus a native closure.
type BuiltinFn struct {
	Base

	Name string
	Impl BuiltinImpl

	// ConstructImpl is nil for builtins that cannot be `new`-ed.
	ConstructImpl BuiltinImpl
}

// NewBuiltinFn wraps a native implementation under the given diagnostic
// name.
func NewBuiltinFn(name string, impl BuiltinImpl) *BuiltinFn {
	return &BuiltinFn{Name: name, Impl: impl}
}

func (b *BuiltinFn) Kind() Kind               { return KindBuiltinFn }
func (b *BuiltinFn) Consume(g *depgraph.Graph) {}

func (b *BuiltinFn) TestTypeof() TypeofMask { return TypeofFunction }
func (b *BuiltinFn) TestTruthy() Tri        { return TriTrue }
func (b *BuiltinFn) TestNullish() Tri       { return TriFalse }

// AsCacheable reports builtins as cacheable by name: the same builtin
// always behaves the same for a given set of cacheable arguments, so it may
// safely participate in the function-effect cache's key.
func (b *BuiltinFn) AsCacheable() (Cacheable, bool) {
	return Cacheable{Kind: CacheableLiteral, Str: "builtin:" + b.Name}, true
}

func (b *BuiltinFn) Call(ctx Ctx, dep depgraph.Dep, this Entity, args []Entity) Entity {
	if b.Impl == nil {
		return Base{}.Call(ctx, dep, this, args)
	}
	return b.Impl(ctx, dep, this, args)
}

func (b *BuiltinFn) Construct(ctx Ctx, dep depgraph.Dep, args []Entity) Entity {
	if b.ConstructImpl == nil {
		return Base{}.Construct(ctx, dep, args)
	}
	return b.ConstructImpl(ctx, dep, Entity{}, args)
}
