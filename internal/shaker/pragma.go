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

package shaker

import (
	"strings"

	"github.com/jsshaker/shaker/internal/ast"
	"github.com/jsshaker/shaker/internal/visit"
)

const finiteRecursionPragma = "@__FINITE_RECURSION__"

// scanFiniteRecursionPragmas owns the comment scan internal/visit's
// PragmaSet doc describes as the driver's responsibility: the minimal AST
// contract carries no comment nodes, so a pragma is recognized by its
// source line rather than by walking the tree for an attached trivia node.
// Only the entry module is scanned; a pragma in an imported module is not
// recognized.
func scanFiniteRecursionPragmas(ip *visit.Interpreter, entryPath string, mr *moduleResolver) {
	loadModulePragmas(ip, entryPath, mr)
}

// loadModulePragmas scans one already-loaded module's source for the
// pragma comment and marks each top-level function declaration that starts
// on the line right after the pragma.
func loadModulePragmas(ip *visit.Interpreter, path string, mr *moduleResolver) {
	src, ok := mr.sources[path]
	if !ok {
		return
	}
	prog, ok := mr.programs[path]
	if !ok {
		return
	}
	lines := pragmaLines(src)
	if len(lines) == 0 {
		return
	}
	for _, fn := range topLevelFunctions(prog) {
		if lines[fn.Pos().StartLine] {
			ip.Pragmas().MarkFiniteRecursion(fn.ID())
		}
	}
}

// pragmaLines returns the set of 1-indexed line numbers that immediately
// follow a line containing the finite-recursion pragma comment.
func pragmaLines(src string) map[int]bool {
	out := make(map[int]bool)
	for i, line := range strings.Split(src, "\n") {
		if strings.Contains(line, finiteRecursionPragma) {
			out[i+2] = true // i is 0-indexed; the *next* line is i+2 in 1-indexed terms
		}
	}
	return out
}

// topLevelFunctions collects every named function declared directly at a
// program's top level; nested functions cannot carry this pragma since
// max_recursion_depth is tracked per value.FunctionID regardless of
// nesting, and only top-level declarations have a stable enough position
// for a line-based pragma to target unambiguously.
func topLevelFunctions(prog *ast.Program) []*ast.FunctionNode {
	var out []*ast.FunctionNode
	for _, stmt := range prog.Body {
		if fn, ok := stmt.(*ast.FunctionNode); ok {
			out = append(out, fn)
		}
	}
	return out
}
