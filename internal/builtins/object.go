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
	"sort"

	"github.com/jsshaker/shaker/internal/depgraph"
	"github.com/jsshaker/shaker/internal/value"
)

// installObject installs the Object namespace, grounded on
// original_source/crates/jsshaker/src/builtins/globals/object_constructor.rs:
// keys/values/entries/assign read through Value.EnumerateProperties exactly
// as the original does through its own enumerate_properties. freeze always
// degrades to a conservative unknown-mutate; create builds a fresh object
// from the second argument's enumerable properties; defineProperty sets a
// plain "value" descriptor precisely and unknown-mutates the target for any
// other descriptor. None of them has the original's preserve_writability
// fast path.
func (in installer) installObject() {
	ns := in.newNamespace()
	ns.SetPrototypeBuiltin("Object")
	setMethod(ns, "keys", value.NewBuiltinFn("Object.keys", objectKeys))
	setMethod(ns, "values", value.NewBuiltinFn("Object.values", objectValues))
	setMethod(ns, "entries", value.NewBuiltinFn("Object.entries", objectEntries))
	setMethod(ns, "assign", value.NewBuiltinFn("Object.assign", objectAssign))
	setMethod(ns, "freeze", value.NewBuiltinFn("Object.freeze", objectFreeze))
	setMethod(ns, "create", value.NewBuiltinFn("Object.create", objectCreate))
	setMethod(ns, "defineProperty", value.NewBuiltinFn("Object.defineProperty", objectDefineProperty))
	in.ip.DeclareGlobal("Object", ns)
}

func sortedKnownKeys(known map[string]value.EnumerateEntry) []string {
	names := make([]string, 0, len(known))
	for k := range known {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func objectKeys(ctx value.Ctx, dep depgraph.Dep, _ value.Entity, args []value.Entity) value.Entity {
	obj := arg(args, 0)
	enumerated := obj.Value.EnumerateProperties(ctx, dep)
	arr := ctx.Factory().NewArray(0)
	for _, name := range sortedKnownKeys(enumerated.Known) {
		arr.Push(value.Entity{Value: &value.Literal{LKind: value.LitString, Str: name}})
	}
	if enumerated.Unknown != nil {
		arr.Push(ctx.Factory().ComputedUnknown(enumerated.Dep))
	}
	return value.Entity{Value: arr, Dep: enumerated.Dep}
}

func objectValues(ctx value.Ctx, dep depgraph.Dep, _ value.Entity, args []value.Entity) value.Entity {
	obj := arg(args, 0)
	enumerated := obj.Value.EnumerateProperties(ctx, dep)
	arr := ctx.Factory().NewArray(0)
	for _, name := range sortedKnownKeys(enumerated.Known) {
		arr.Push(enumerated.Known[name].Val)
	}
	if enumerated.Unknown != nil {
		arr.Push(*enumerated.Unknown)
	}
	return value.Entity{Value: arr, Dep: enumerated.Dep}
}

func objectEntries(ctx value.Ctx, dep depgraph.Dep, _ value.Entity, args []value.Entity) value.Entity {
	obj := arg(args, 0)
	enumerated := obj.Value.EnumerateProperties(ctx, dep)
	arr := ctx.Factory().NewArray(0)
	for _, name := range sortedKnownKeys(enumerated.Known) {
		entry := enumerated.Known[name]
		pair := ctx.Factory().NewArray(0)
		pair.Push(entry.Key)
		pair.Push(entry.Val)
		arr.Push(value.Entity{Value: pair})
	}
	if enumerated.Unknown != nil {
		pair := ctx.Factory().NewArray(0)
		pair.Push(ctx.Factory().ComputedUnknown(enumerated.Dep))
		pair.Push(*enumerated.Unknown)
		arr.Push(value.Entity{Value: pair})
	}
	return value.Entity{Value: arr, Dep: enumerated.Dep}
}

// objectAssign copies every own enumerable property of each source onto the
// first argument and returns it, matching Object.assign's own in-place-
// mutate-and-return contract.
func objectAssign(ctx value.Ctx, dep depgraph.Dep, _ value.Entity, args []value.Entity) value.Entity {
	if len(args) == 0 {
		return ctx.Factory().ComputedUnknown(dep)
	}
	target := args[0]
	for _, source := range args[1:] {
		enumerated := source.Value.EnumerateProperties(ctx, dep)
		for _, name := range sortedKnownKeys(enumerated.Known) {
			entry := enumerated.Known[name]
			target.Value.SetProperty(ctx, enumerated.Dep, value.StringKey(name), entry.Val)
		}
		if enumerated.Unknown != nil {
			target.Value.UnknownMutate(ctx, enumerated.Dep)
		}
	}
	return target
}

// objectFreeze has no writability tracking to disable in this port - see
// the package doc - so it conservatively treats the object as fully
// unknown-mutated rather than silently pretending the freeze took effect.
func objectFreeze(ctx value.Ctx, dep depgraph.Dep, _ value.Entity, args []value.Entity) value.Entity {
	obj := arg(args, 0)
	obj.Value.UnknownMutate(ctx, dep)
	return obj
}

func objectCreate(ctx value.Ctx, dep depgraph.Dep, _ value.Entity, args []value.Entity) value.Entity {
	proto := arg(args, 0)
	ctx.Consume(depgraph.OfConsumer(proto))
	obj := ctx.Factory().NewObject(0)
	if len(args) > 1 {
		props := args[1]
		enumerated := props.Value.EnumerateProperties(ctx, dep)
		for _, name := range sortedKnownKeys(enumerated.Known) {
			obj.SetProperty(ctx, enumerated.Dep, value.StringKey(name), enumerated.Known[name].Val)
		}
		if enumerated.Unknown != nil {
			obj.UnknownMutate(ctx, enumerated.Dep)
		}
	}
	return value.Entity{Value: obj, Dep: dep}
}

// objectDefineProperty only extracts a plain "value" descriptor precisely;
// get/set/enumerable/configurable/writable all degrade to an unknown-mutate
// of the target, per the original's own "actually handle these" TODO.
func objectDefineProperty(ctx value.Ctx, dep depgraph.Dep, _ value.Entity, args []value.Entity) value.Entity {
	obj := arg(args, 0)
	key := arg(args, 1)
	descriptor := arg(args, 2)
	keyCoerced := key.Value.CoercePropertyKey(ctx, dep)
	lit, ok := keyCoerced.Value.(*value.Literal)
	if !ok || lit.LKind != value.LitString {
		obj.Value.UnknownMutate(ctx, dep)
		return obj
	}
	enumerated := descriptor.Value.EnumerateProperties(ctx, dep)
	valEntry, hasValue := enumerated.Known["value"]
	if enumerated.Unknown != nil || len(enumerated.Known) > 1 || !hasValue {
		obj.Value.UnknownMutate(ctx, dep)
		return obj
	}
	obj.Value.SetProperty(ctx, enumerated.Dep, value.StringKey(lit.Str), valEntry.Val)
	return obj
}
