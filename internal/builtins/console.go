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

// installConsole installs a console namespace whose log/warn/error/info/
// debug methods consume every argument and return undefined. console has no
// counterpart in original_source's builtins directory (it only models
// Object and React); the shape is this package's own, since spec.md's
// overview names it explicitly as part of the minimal builtin set a whole-
// program analysis needs to not choke on.
func (in installer) installConsole() {
	ns := in.newNamespace()
	ns.SetPrototypeBuiltin("console")
	for _, name := range []string{"log", "warn", "error", "info", "debug", "trace"} {
		method := "console." + name
		setMethod(ns, name, value.NewBuiltinFn(method, func(ctx value.Ctx, dep depgraph.Dep, this value.Entity, args []value.Entity) value.Entity {
			ctx.Consume(dep)
			for _, a := range args {
				ctx.Consume(depgraph.OfConsumer(a))
			}
			return undefined()
		}))
	}
	in.ip.DeclareGlobal("console", ns)
}
