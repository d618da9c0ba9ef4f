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

package builtins

import (
	"github.com/jsshaker/shaker/internal/depgraph"
	"github.com/jsshaker/shaker/internal/value"
)

// installReact installs React.createContext and React.useContext, grounded
// on original_source/crates/jsshaker/src/builtins/react/context.rs.
//
// The original tracks a per-context value stack (ReactContextData) so a
// nested <Context.Provider value={x}> can narrow what a descendant
// useContext(Context) sees, with an exhaustive-callback request deciding
// whether the provider's override can safely be forgotten once its
// subtree is fully explored. That machinery depends on Provider/Consumer
// actually being *called* as components render. internal/visit's evalJSX
// (see its doc comment) never calls a JSX tag's value at all - a tag is
// only ever read, then wrapped into a ReactElement - so Context.Provider
// is never invoked by ordinary JSX usage in this port, and the value-stack
// narrowing the original performs would never trigger. createContext here
// instead stores the default value directly on the context object and
// useContext reads it straight back, unioned with Unknown to stay
// conservative for the rarer case where Provider is called directly as a
// plain function rather than used as a JSX tag.
func (in installer) installReact() {
	ns := in.newNamespace()
	ns.SetPrototypeBuiltin("React")
	setMethod(ns, "createContext", value.NewBuiltinFn("React.createContext", reactCreateContext))
	setMethod(ns, "useContext", value.NewBuiltinFn("React.useContext", reactUseContext))
	setField(ns, "Fragment", value.Entity{Value: &value.Literal{LKind: value.LitString, Str: "react.fragment"}})
	in.ip.DeclareGlobal("React", ns)
}

const contextDefaultKey = "__shaker_context_default__"

func reactCreateContext(ctx value.Ctx, dep depgraph.Dep, _ value.Entity, args []value.Entity) value.Entity {
	defaultValue := arg(args, 0)

	context := ctx.Factory().NewObject(0)
	context.SetPrototypeBuiltin("React.Context")
	context.SetProperty(ctx, dep, value.StringKey(contextDefaultKey), defaultValue)

	provider := value.NewBuiltinFn("React.Context.Provider", reactContextProvider)
	consumer := value.NewBuiltinFn("React.Context.Consumer", reactContextConsumer)
	context.SetProperty(ctx, dep, value.StringKey("Provider"), value.Entity{Value: provider})
	context.SetProperty(ctx, dep, value.StringKey("Consumer"), value.Entity{Value: consumer})

	return value.Entity{Value: context, Dep: dep}
}

// reactContextProvider is reachable only when a program calls
// Context.Provider(...) directly rather than using it as a JSX tag (see
// installReact's doc); it conservatively consumes its props wholesale since
// this port has no call-site link back to the context object that created
// it once it's bound to a plain BuiltinFn value.
func reactContextProvider(ctx value.Ctx, dep depgraph.Dep, this value.Entity, args []value.Entity) value.Entity {
	ctx.Consume(dep)
	for _, a := range args {
		ctx.Consume(depgraph.OfConsumer(a))
	}
	return ctx.Factory().ComputedUnknown(dep)
}

func reactContextConsumer(ctx value.Ctx, dep depgraph.Dep, this value.Entity, args []value.Entity) value.Entity {
	ctx.Consume(dep)
	for _, a := range args {
		ctx.Consume(depgraph.OfConsumer(a))
	}
	return ctx.Factory().ComputedUnknown(dep)
}

func reactUseContext(ctx value.Ctx, dep depgraph.Dep, _ value.Entity, args []value.Entity) value.Entity {
	context := arg(args, 0)
	defaultValue := context.Value.GetProperty(ctx, dep, value.StringKey(contextDefaultKey))
	return ctx.Factory().UnionOf(dep, defaultValue, ctx.Factory().ComputedUnknown(dep))
}
