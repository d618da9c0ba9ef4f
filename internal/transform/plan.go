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

// Package transform turns a completed analysis (a depgraph.Graph of
// referred nodes, a conditional.Tracker of branch reachability, and a
// mangle.Mangler of resolved atom names) into a Plan: a per-module table of
// keep/drop decisions and resolved identifier names. As spec.md section 1
// treats the code generator as an external collaborator (alongside the
// parser, semantic analyzer and AST itself), transform stops at the
// decision, leaving the actual rewriting of source text to that external
// generator - it never produces JS text itself.
//
// Grounded on original_source/crates/jsshaker/src/transform.rs for which
// node kinds require a keep/drop decision, and structurally on
// cuelang.org/go/internal/core/adt's export.go, which likewise walks a
// completed evaluation to build a separate output tree rather than
// mutating the input in place.
package transform

import (
	"github.com/jsshaker/shaker/internal/ast"
	"github.com/jsshaker/shaker/internal/mangle"
	"github.com/jsshaker/shaker/internal/value"
)

// Branch records how an IfStatement's test resolved across every time it
// was evaluated during analysis, per conditional.Tracker's bookkeeping:
// codegen uses it to decide whether to emit the test and one arm, the test
// and both arms, or (if neither arm was ever reachable, e.g. dead code
// inside a function that was never called) to drop the statement entirely.
type Branch struct {
	KeepConsequent bool
	KeepAlternate  bool
}

// Dead reports whether neither arm of the conditional was ever reached,
// meaning the whole if-statement (test included) can be dropped.
func (b Branch) Dead() bool { return !b.KeepConsequent && !b.KeepAlternate }

// ModulePlan is the keep/drop table for one module's declarations plus its
// conditional-branch resolutions.
type ModulePlan struct {
	Path     string
	ModuleID value.ModuleID

	// Keep maps a declaration-shaped node's id (VariableDeclarator,
	// FunctionNode, ClassNode, ImportDeclaration, export declarations) to
	// whether depgraph ever referred it. Absence from the map means the
	// walker never visited that node kind (e.g. an anonymous function
	// expression, which has no independent liveness of its own - it lives
	// or dies with whatever declarator or export holds it).
	Keep map[ast.NodeId]bool

	// Branches maps an IfStatement's node id to its resolved reachability.
	Branches map[ast.NodeId]Branch
}

// KeepNode reports whether a declaration-shaped node id was kept, the
// conservative default being true for node kinds the walker never assigns
// an entry to (e.g. a node the builder hasn't visited because its module
// failed to parse).
func (mp *ModulePlan) KeepNode(id ast.NodeId) bool {
	keep, ok := mp.Keep[id]
	return !ok || keep
}

// Plan is the complete output of one transform.Build call: one ModulePlan
// per analyzed module, plus a name resolver shared across all of them
// (mangle atoms are not scoped to a single module).
type Plan struct {
	Modules map[string]*ModulePlan
	Names   *NameTable
}

// NameTable wraps mangle.Mangler.Resolve so codegen can ask for an atom's
// final identifier without importing internal/mangle directly.
type NameTable struct {
	mangler *mangle.Mangler
}

// Resolve returns the final name mangle.Mangler assigned atom, and false if
// the atom was never registered (a bug in the caller, since every mangle
// atom the analyzer hands out should eventually be resolved).
func (n *NameTable) Resolve(atom value.MangleAtomID) (string, bool) {
	if n.mangler == nil {
		return "", false
	}
	return n.mangler.Resolve(atom)
}
