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

package visit

import "github.com/jsshaker/shaker/internal/ast"

// PragmaSet records which AST nodes the driver's comment scan attached a
// `/* @__FINITE_RECURSION__ */` pragma to, gated by
// shakerexperiment.Flags.FiniteRecursion. The driver (the shaker package)
// owns comment scanning, since comments are not part of the minimal AST
// contract; New creates the PragmaSet and the driver fills it through
// Interpreter.Pragmas before analysis starts. No analysis code calls
// HasFiniteRecursion, so a recorded mark does not change how a function
// is analyzed.
type PragmaSet struct {
	finiteRecursion map[ast.NodeId]bool
}

// NewPragmaSet creates an empty pragma registry.
func NewPragmaSet() *PragmaSet {
	return &PragmaSet{finiteRecursion: make(map[ast.NodeId]bool)}
}

// MarkFiniteRecursion records that fn was annotated with
// `@__FINITE_RECURSION__`.
func (p *PragmaSet) MarkFiniteRecursion(fn ast.NodeId) {
	p.finiteRecursion[fn] = true
}

// HasFiniteRecursion reports whether fn carries the pragma.
func (p *PragmaSet) HasFiniteRecursion(fn ast.NodeId) bool {
	return p.finiteRecursion[fn]
}
