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

package transform

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/jsshaker/shaker/internal/ast"
	"github.com/jsshaker/shaker/internal/conditional"
	"github.com/jsshaker/shaker/internal/depgraph"
	"github.com/jsshaker/shaker/internal/mangle"
	"github.com/jsshaker/shaker/internal/module"
	"github.com/jsshaker/shaker/internal/value"
)

var testPos = ast.Position{Path: "entry.js", StartLine: 1}

func nodeBase(id ast.NodeId) ast.Base { return ast.NewBase(id, testPos) }

// buildProgram constructs, by hand (no parser exists in this repo; see
// internal/ast's package doc on the parser being an external collaborator):
//
//	let used = 1;
//	let unused = 2;
//	function liveFn() {}
//	function deadFn() {}
//	if (cond) { let a; } else { let b; }
func buildProgram() (*ast.Program, map[string]ast.NodeId) {
	ids := map[string]ast.NodeId{
		"usedDecl":    1,
		"unusedDecl":  2,
		"liveFn":      3,
		"deadFn":      4,
		"if":          5,
		"innerA":      6,
		"innerB":      7,
		"usedInit":    8,
		"unusedInit":  9,
	}

	// A VariableDeclarator's own node id is never part of the Dep chain a
	// read of the variable produces (see builder.go's declaratorKept doc);
	// liveness is read off the initializer expression's node instead, so
	// the fixture gives each initializer its own id to Refer against.
	usedDecl := &ast.VariableDeclarator{
		Base: nodeBase(ids["usedDecl"]),
		Name: &ast.Identifier{Name: "used"},
		Init: &ast.NumberLiteral{Base: nodeBase(ids["usedInit"]), Value: 1},
	}
	unusedDecl := &ast.VariableDeclarator{
		Base: nodeBase(ids["unusedDecl"]),
		Name: &ast.Identifier{Name: "unused"},
		Init: &ast.NumberLiteral{Base: nodeBase(ids["unusedInit"]), Value: 2},
	}
	liveFn := &ast.FunctionNode{Base: nodeBase(ids["liveFn"]), Name: "liveFn", Body: &ast.BlockStatement{}}
	deadFn := &ast.FunctionNode{Base: nodeBase(ids["deadFn"]), Name: "deadFn", Body: &ast.BlockStatement{}}

	innerA := &ast.VariableDeclarator{Base: nodeBase(ids["innerA"]), Name: &ast.Identifier{Name: "a"}}
	innerB := &ast.VariableDeclarator{Base: nodeBase(ids["innerB"]), Name: &ast.Identifier{Name: "b"}}
	ifStmt := &ast.IfStatement{
		Base:       nodeBase(ids["if"]),
		Test:       &ast.Identifier{Name: "cond"},
		Consequent: &ast.BlockStatement{Body: []ast.Stmt{&ast.VariableDeclaration{Declarations: []*ast.VariableDeclarator{innerA}}}},
		Alternate:  &ast.BlockStatement{Body: []ast.Stmt{&ast.VariableDeclaration{Declarations: []*ast.VariableDeclarator{innerB}}}},
	}

	prog := &ast.Program{Body: []ast.Stmt{
		&ast.VariableDeclaration{Kind: ast.VarLet, Declarations: []*ast.VariableDeclarator{usedDecl}},
		&ast.VariableDeclaration{Kind: ast.VarLet, Declarations: []*ast.VariableDeclarator{unusedDecl}},
		liveFn,
		deadFn,
		ifStmt,
	}}
	return prog, ids
}

func TestBuildKeepsOnlyReferredDeclarations(t *testing.T) {
	prog, ids := buildProgram()

	graph := depgraph.NewGraph()
	graph.Refer(ids["usedInit"])
	graph.Refer(ids["liveFn"])

	cond := conditional.NewTracker()
	cond.RecordBranch(ids["if"], 0, true, value.Entity{Value: &value.Literal{LKind: value.LitBoolean, Bool: true}}, false)

	mangler := mangle.New(false)

	loader := module.NewLoader()
	info := module.NewInfo(0, "entry.js", prog.ID(), graph.NextAtom())
	loader.Register(info)

	plan := Build(loader, graph, mangler, cond, map[string]*ast.Program{"entry.js": prog})

	mp := plan.Modules["entry.js"]
	qt.Assert(t, qt.IsNotNil(mp))
	qt.Assert(t, qt.IsTrue(mp.Keep[ids["usedDecl"]]))
	qt.Assert(t, qt.IsFalse(mp.Keep[ids["unusedDecl"]]))
	qt.Assert(t, qt.IsTrue(mp.Keep[ids["liveFn"]]))
	qt.Assert(t, qt.IsFalse(mp.Keep[ids["deadFn"]]))

	branch := mp.Branches[ids["if"]]
	qt.Assert(t, qt.IsTrue(branch.KeepConsequent))
	qt.Assert(t, qt.IsFalse(branch.KeepAlternate))
	qt.Assert(t, qt.IsFalse(branch.Dead()))
}

func TestBranchDeadWhenNeverRecorded(t *testing.T) {
	var b Branch
	qt.Assert(t, qt.IsTrue(b.Dead()))
}

func TestKeepNodeDefaultsTrueForUnvisitedNode(t *testing.T) {
	mp := &ModulePlan{Keep: map[ast.NodeId]bool{}}
	qt.Assert(t, qt.IsTrue(mp.KeepNode(999)))
}
