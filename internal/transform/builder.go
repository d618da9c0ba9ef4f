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
	"github.com/jsshaker/shaker/internal/ast"
	"github.com/jsshaker/shaker/internal/conditional"
	"github.com/jsshaker/shaker/internal/depgraph"
	"github.com/jsshaker/shaker/internal/mangle"
	"github.com/jsshaker/shaker/internal/module"
)

// Build walks every module registered with loader and produces a Plan.
// programs maps a module's Path (module.Info.Path) to its parsed Program;
// a module with no entry in programs (should not happen for anything the
// loader itself resolved, but defends against a driver bug) is skipped.
func Build(loader *module.Loader, graph *depgraph.Graph, mangler *mangle.Mangler, cond *conditional.Tracker, programs map[string]*ast.Program) *Plan {
	plan := &Plan{
		Modules: make(map[string]*ModulePlan),
		Names:   &NameTable{mangler: mangler},
	}
	for _, info := range loader.All() {
		program, ok := programs[info.Path]
		if !ok {
			continue
		}
		mp := &ModulePlan{
			Path:     info.Path,
			ModuleID: info.ID,
			Keep:     make(map[ast.NodeId]bool),
			Branches: make(map[ast.NodeId]Branch),
		}
		b := &builder{graph: graph, cond: cond, mp: mp}
		b.walkStatements(program.Body)
		plan.Modules[info.Path] = mp
	}
	return plan
}

// builder recursively walks one module's AST, assigning a Keep decision to
// every declaration-shaped node and a Branch resolution to every
// IfStatement, the same set of node kinds internal/visit's own
// hoistOneFuncDecl/execIf dispatch over (see its doc comments) - anything
// outside that set (plain expression statements, loops' own node id, break/
// continue) has no independent liveness of its own in this model: spec.md's
// depgraph only prunes unreferenced bindings, not expressions with
// side effects, so those statements are always kept.
type builder struct {
	graph *depgraph.Graph
	cond  *conditional.Tracker
	mp    *ModulePlan
}

func (b *builder) walkStatements(stmts []ast.Stmt) {
	for _, s := range stmts {
		b.walkStatement(s)
	}
}

func (b *builder) walkStatement(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.VariableDeclaration:
		for _, d := range n.Declarations {
			if _, ok := d.Name.(*ast.Identifier); ok {
				b.mp.Keep[d.ID()] = b.declaratorKept(d)
			}
			if d.Init != nil {
				b.walkExpr(d.Init)
			}
		}
	case *ast.FunctionNode:
		if n.Name != "" {
			b.mp.Keep[n.ID()] = b.graph.IsReferred(n.ID())
		}
		b.walkFunctionBody(n)
	case *ast.ClassNode:
		if n.Name != "" {
			b.mp.Keep[n.ID()] = b.graph.IsReferred(n.ID())
		}
		b.walkClassBody(n)
	case *ast.ImportDeclaration:
		b.mp.Keep[n.ID()] = b.graph.IsReferred(n.ID())
	case *ast.ExportNamedDeclaration:
		b.mp.Keep[n.ID()] = true
		if n.Declaration != nil {
			b.walkStatement(n.Declaration)
		}
	case *ast.ExportDefaultDeclaration:
		b.mp.Keep[n.ID()] = true
		switch d := n.Declaration.(type) {
		case *ast.FunctionNode:
			b.walkFunctionBody(d)
		case *ast.ClassNode:
			b.walkClassBody(d)
		case ast.Expr:
			b.walkExpr(d)
		}
	case *ast.ExportAllDeclaration:
		b.mp.Keep[n.ID()] = true
	case *ast.BlockStatement:
		b.walkStatements(n.Body)
	case *ast.IfStatement:
		b.recordBranch(n)
		b.walkStatement(n.Consequent)
		if n.Alternate != nil {
			b.walkStatement(n.Alternate)
		}
	case *ast.ForStatement:
		if n.Init != nil {
			b.walkStatement(n.Init)
		}
		b.walkStatement(n.Body)
	case *ast.WhileStatement:
		b.walkStatement(n.Body)
	case *ast.ExpressionStatement:
		b.walkExpr(n.Expression)
	case *ast.ReturnStatement:
		if n.Argument != nil {
			b.walkExpr(n.Argument)
		}
	}
}

// declaratorKept reports whether d's binding was ever needed. A
// VariableDeclarator's own node id is never woven into the Dep chain a
// read of the variable produces (see internal/visit/expr.go's
// evalIdentifier, which threads the *stored value's* Dep, not the
// declarator's) - the one place d's own id is referred is
// scope.Stack.ReadVariable's TDZ path. So liveness has to be read off
// whichever node the stored value's Dep actually bottoms out at: the
// initializer expression's own node, wrapped in at evaluation time by
// every evalExpr case via nodeDep.
func (b *builder) declaratorKept(d *ast.VariableDeclarator) bool {
	if b.graph.IsReferred(d.ID()) {
		return true
	}
	if d.Init != nil && b.graph.IsReferred(d.Init.ID()) {
		return true
	}
	return false
}

func (b *builder) recordBranch(n *ast.IfStatement) {
	res := b.cond.GetConditionalResult(n.ID())
	b.mp.Branches[n.ID()] = Branch{
		KeepConsequent: res.MaybeTrue,
		// For an if without else, KeepAlternate records that the test ran
		// and came out falsy, so the statement is not reported Dead.
		KeepAlternate: res.MaybeFalse,
	}
}

func (b *builder) walkFunctionBody(n *ast.FunctionNode) {
	if n.Body == nil {
		return
	}
	b.walkStatements(n.Body.Body)
}

func (b *builder) walkClassBody(n *ast.ClassNode) {
	for _, m := range n.Members {
		switch v := m.Value.(type) {
		case *ast.FunctionNode:
			b.walkFunctionBody(v)
		case ast.Expr:
			if v != nil {
				b.walkExpr(v)
			}
		}
	}
}

// walkExpr descends only far enough to find nested function/class bodies
// and (via assignments) variable-less function expressions assigned to an
// already-tracked declarator's initializer; it never assigns its own Keep
// decision to an expression node, since the depgraph model attributes
// liveness to bindings and exports, not sub-expressions.
func (b *builder) walkExpr(e ast.Expr) {
	switch n := e.(type) {
	case *ast.FunctionNode:
		b.walkFunctionBody(n)
	case *ast.ClassNode:
		b.walkClassBody(n)
	case *ast.AssignmentExpression:
		b.walkExpr(n.Value)
	case *ast.ConditionalExpression:
		b.walkExpr(n.Consequent)
		b.walkExpr(n.Alternate)
	case *ast.LogicalExpression:
		b.walkExpr(n.Left)
		b.walkExpr(n.Right)
	case *ast.BinaryExpression:
		b.walkExpr(n.Left)
		b.walkExpr(n.Right)
	case *ast.UnaryExpression:
		b.walkExpr(n.Argument)
	case *ast.CallExpression:
		b.walkExpr(n.Callee)
		for _, a := range n.Arguments {
			b.walkExpr(a)
		}
	case *ast.NewExpression:
		b.walkExpr(n.Callee)
		for _, a := range n.Arguments {
			b.walkExpr(a)
		}
	case *ast.MemberExpression:
		b.walkExpr(n.Object)
		if n.Computed {
			b.walkExpr(n.Property)
		}
	case *ast.ObjectExpression:
		for _, p := range n.Properties {
			b.walkExpr(p.Value)
		}
		for _, s := range n.SpreadTail {
			b.walkExpr(s)
		}
	case *ast.ArrayExpression:
		for _, el := range n.Elements {
			if el != nil {
				b.walkExpr(el)
			}
		}
	case *ast.JSXElement:
		for _, attr := range n.Attributes {
			if attr.Value != nil {
				b.walkExpr(attr.Value)
			}
		}
		for _, sp := range n.Spreads {
			b.walkExpr(sp)
		}
		for _, c := range n.Children {
			b.walkExpr(c)
		}
	}
}
