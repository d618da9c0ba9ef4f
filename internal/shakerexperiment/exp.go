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

// Package shakerexperiment holds JSSHAKER_EXPERIMENT environment-variable-
// gated feature flags, adapted from cuelang.org/go/internal/cueexperiment's
// reflect-driven Init.
package shakerexperiment

import (
	"fmt"
	"os"
	"reflect"
	"strings"
)

// Flags holds the set of JSSHAKER_EXPERIMENT flags. It is initialized by
// Init.
var Flags struct {
	// FiniteRecursion enables recognizing the `@__FINITE_RECURSION__`
	// pragma (spec.md's SUPPLEMENTED FEATURES has_finite_recursion_notation
	// Open Question resolution): annotated top-level functions of the entry
	// module are recorded in visit.PragmaSet. Nothing consults that record,
	// so a marked function is analyzed the same as an unmarked one.
	FiniteRecursion bool

	// ClassStaticBlocks is parsed from JSSHAKER_EXPERIMENT, but no code
	// reads it: setting it has no effect.
	ClassStaticBlocks bool
}

// Init initializes Flags from JSSHAKER_EXPERIMENT. Not named init because
// callers that never touch experimental features (most CLI invocations)
// should not pay for env parsing, and so failures surface as an error
// rather than a panic.
func Init() error {
	exp := os.Getenv("JSSHAKER_EXPERIMENT")
	if exp == "" {
		return nil
	}
	names := make(map[string]int)
	fv := reflect.ValueOf(&Flags).Elem()
	ft := fv.Type()
	for i := 0; i < ft.NumField(); i++ {
		names[strings.ToLower(ft.Field(i).Name)] = i
	}
	for _, name := range strings.Split(exp, ",") {
		index, ok := names[name]
		if !ok {
			return fmt.Errorf("unknown JSSHAKER_EXPERIMENT %s", name)
		}
		fv.Field(index).SetBool(true)
	}
	return nil
}
