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

// installArray installs the Array namespace. original_source's builtins
// directory has no array_constructor.rs counterpart to ground this on (only
// Object and React get one); isArray/from/of are this package's own minimal
// reading of what a whole-program analysis needs to not degrade every array
// check to Unknown. Per-instance prototype methods (push, map, filter, ...)
// need no shim here at all: value.Array.GetProperty already answers any
// non-index, non-"length" key with a conservative union of its elements
// plus Unknown (see internal/value/array.go), which is exactly what calling
// an unmodeled method on it produces once that Unknown is invoked.
func (in installer) installArray() {
	ns := in.newNamespace()
	ns.SetPrototypeBuiltin("Array")
	setMethod(ns, "isArray", value.NewBuiltinFn("Array.isArray", arrayIsArray))
	setMethod(ns, "from", value.NewBuiltinFn("Array.from", arrayFrom))
	setMethod(ns, "of", value.NewBuiltinFn("Array.of", arrayOf))
	in.ip.DeclareGlobal("Array", ns)
}

func arrayIsArray(ctx value.Ctx, dep depgraph.Dep, _ value.Entity, args []value.Entity) value.Entity {
	v := arg(args, 0)
	ctx.Consume(dep)
	if _, ok := v.Value.(*value.Array); ok {
		ctx.Consume(v.Dep)
		return value.Entity{Value: &value.Literal{LKind: value.LitBoolean, Bool: true}, Dep: dep}
	}
	ctx.Consume(depgraph.OfConsumer(v))
	return value.Entity{Value: &value.Literal{LKind: value.LitBoolean, Bool: false}, Dep: dep}
}

// arrayFrom iterates its argument via Value.Iterate, which every lattice
// variant already implements (Array precisely, everything else via Base's
// conservative single-unknown-rest fallback), and copies the result into a
// fresh array, applying an optional second-argument map function to each
// known element exactly as Array.from does.
func arrayFrom(ctx value.Ctx, dep depgraph.Dep, _ value.Entity, args []value.Entity) value.Entity {
	src := arg(args, 0)
	iterated := src.Value.Iterate(ctx, dep)
	arr := ctx.Factory().NewArray(0)
	hasMapFn := len(args) > 1
	mapFn := arg(args, 1)
	for i, e := range iterated.Prefix {
		if hasMapFn {
			idx := value.Entity{Value: &value.Literal{LKind: value.LitNumber, Num: float64(i)}}
			e = mapFn.Value.Call(ctx, iterated.Dep, value.Entity{}, []value.Entity{e, idx})
		}
		arr.Push(e)
	}
	if iterated.Rest.Value != nil {
		if hasMapFn {
			arr.Push(mapFn.Value.Call(ctx, iterated.Dep, value.Entity{}, []value.Entity{ctx.Factory().ComputedUnknown(iterated.Dep), ctx.Factory().ComputedUnknown(iterated.Dep)}))
		} else {
			arr.Push(ctx.Factory().ComputedUnknown(iterated.Dep))
		}
	}
	return value.Entity{Value: arr, Dep: iterated.Dep}
}

func arrayOf(ctx value.Ctx, dep depgraph.Dep, _ value.Entity, args []value.Entity) value.Entity {
	arr := ctx.Factory().NewArray(0)
	for _, a := range args {
		arr.Push(a)
	}
	return value.Entity{Value: arr, Dep: dep}
}
