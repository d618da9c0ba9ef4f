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

// Package builtins installs the small set of host globals spec.md's
// overview calls out explicitly: console, Object, Array and
// React.createContext. Grounded on
// original_source/crates/jsshaker/src/builtins/globals/object_constructor.rs
// and .../builtins/react/context.rs, translated from the original's
// factory-closure idiom (factory.implemented_builtin_fn) to plain
// value.NewBuiltinFn closures installed as properties of a host Object, the
// same shape spec.md's value lattice already gives every ordinary object
// literal.
package builtins

import (
	"github.com/jsshaker/shaker/internal/value"
	"github.com/jsshaker/shaker/internal/visit"
)

// installer is the capability every file in this package needs: allocating
// fresh lattice values and registering a name as a global.
type installer struct {
	ip *visit.Interpreter
}

// Install populates ip's global scope with console, Object, Array and
// React. Call once per Interpreter before running any module.
func Install(ip *visit.Interpreter) {
	in := installer{ip: ip}
	in.installConsole()
	in.installObject()
	in.installArray()
	in.installReact()
}

// newNamespace allocates a plain host object meant to be read, never
// constructed - CreatedIn 0 since globals exist before any CF scope is ever
// pushed.
func (in installer) newNamespace() *value.Object {
	return in.ip.A.Factory().NewObject(0)
}

// setMethod installs a named BuiltinFn directly into obj's property table,
// bypassing the general SetProperty/Ctx path: global shims are definitional
// (no dep to attribute, no setter dispatch to consider), the same reasoning
// Interpreter.DeclareGlobal already applies to top-level bindings.
func setMethod(obj *value.Object, name string, fn *value.BuiltinFn) {
	setField(obj, name, value.Entity{Value: fn})
}

func setField(obj *value.Object, name string, val value.Entity) {
	key := value.StringKey(name)
	obj.Keyed[key] = &value.Property{
		Definite:   true,
		Enumerable: true,
		KeyEntity:  value.Entity{Value: &value.Literal{LKind: value.LitString, Str: name}},
		Values:     []value.PropertyValue{{Kind: value.PVField, Field: val}},
	}
}

// arg returns args[i], or undefined if the call didn't supply enough
// arguments - JS's own rule for missing parameters.
func arg(args []value.Entity, i int) value.Entity {
	if i < len(args) {
		return args[i]
	}
	return value.Entity{Value: &value.Literal{LKind: value.LitUndefined}}
}

func undefined() value.Entity {
	return value.Entity{Value: &value.Literal{LKind: value.LitUndefined}}
}
