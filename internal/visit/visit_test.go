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

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/jsshaker/shaker/internal/analyzer"
	"github.com/jsshaker/shaker/internal/ast"
	"github.com/jsshaker/shaker/internal/config"
	"github.com/jsshaker/shaker/internal/depgraph"
	"github.com/jsshaker/shaker/internal/value"
)

// markCalls records every name passed to a "mark(name)" host call, letting a
// test assert which side-effecting calls actually ran without pulling in
// internal/builtins (which imports this package, and would cycle back).
type markCalls struct {
	names []string
}

func newMarker(a *analyzer.Analyzer, ip *Interpreter, m *markCalls) {
	fn := value.NewBuiltinFn("mark", func(ctx value.Ctx, dep depgraph.Dep, this value.Entity, args []value.Entity) value.Entity {
		ctx.Consume(dep)
		if len(args) > 0 {
			if lit, ok := args[0].Value.(*value.Literal); ok {
				m.names = append(m.names, lit.Str)
			}
		}
		return value.Entity{Value: value.TheUnknown()}
	})
	ip.DeclareGlobal("mark", fn)
}

func ident(id ast.NodeId, name string) *ast.Identifier {
	return &ast.Identifier{Base: ast.NewBase(id, ast.Position{}), Name: name}
}

func markCall(id ast.NodeId, arg ast.Expr) *ast.ExpressionStatement {
	return &ast.ExpressionStatement{
		Base: ast.NewBase(id, ast.Position{}),
		Expression: &ast.CallExpression{
			Base:      ast.NewBase(id+1, ast.Position{}),
			Callee:    ident(id+2, "mark"),
			Arguments: []ast.Expr{arg},
		},
	}
}

func strLit(id ast.NodeId, s string) *ast.StringLiteral {
	return &ast.StringLiteral{Base: ast.NewBase(id, ast.Position{}), Value: s}
}

func numLit(id ast.NodeId, v float64) *ast.NumberLiteral {
	return &ast.NumberLiteral{Base: ast.NewBase(id, ast.Position{}), Value: v}
}

// TestExecIfEliminatesDeadBranch mirrors spec.md scenario 1: a statically
// resolved `if` test must run only the taken branch's statements, never
// evaluating (and so never referring) the untaken branch's nodes.
func TestExecIfEliminatesDeadBranch(t *testing.T) {
	a := analyzer.New(config.Recommended())
	ip := New(a, nil)
	var m markCalls
	newMarker(a, ip, &m)

	// if (true) { mark("then") } else { mark("else") }
	thenStmt := markCall(10, strLit(13, "then"))
	elseStmt := markCall(20, strLit(23, "else"))
	ifStmt := &ast.IfStatement{
		Base:       ast.NewBase(2, ast.Position{}),
		Test:       &ast.BooleanLiteral{Base: ast.NewBase(3, ast.Position{}), Value: true},
		Consequent: &ast.BlockStatement{Base: ast.NewBase(4, ast.Position{}), Body: []ast.Stmt{thenStmt}},
		Alternate:  &ast.BlockStatement{Base: ast.NewBase(5, ast.Position{}), Body: []ast.Stmt{elseStmt}},
	}
	program := &ast.Program{Base: ast.NewBase(1, ast.Position{}), Body: []ast.Stmt{ifStmt}}

	info := ip.LoadAndExec("/entry.js", program)
	qt.Assert(t, qt.IsTrue(info.Initialized))
	qt.Assert(t, qt.IsNil(a.Finalize()))

	qt.Assert(t, qt.HasLen(m.names, 1))
	qt.Assert(t, qt.Equals(m.names[0], "then"))
	// The untaken branch's call node was never evaluated, so its own node
	// (and the string literal feeding it) was never referred.
	qt.Assert(t, qt.IsFalse(a.Graph().IsReferred(ast.NodeId(21))))
	qt.Assert(t, qt.IsFalse(a.Graph().IsReferred(ast.NodeId(23))))
	qt.Assert(t, qt.IsTrue(a.Graph().IsReferred(ast.NodeId(11))))
}

// TestRecursiveFunctionDeclarationTerminatesUnderRecursionGuard mirrors
// spec.md scenario 3: a named function declaration calling itself by name
// must terminate even past the configured max_recursion_depth rather than
// looping forever. The test checks that analysis finishes and the outer
// call is referred; it does not observe how deep the recursion went.
func TestRecursiveFunctionDeclarationTerminatesUnderRecursionGuard(t *testing.T) {
	cfg := config.Recommended()
	cfg.MaxRecursionDepth = 2
	a := analyzer.New(cfg)
	ip := New(a, nil)
	var m markCalls
	newMarker(a, ip, &m)

	// function f(n) { if (n <= 0) { return 0; } return f(n - 1) + 1; }
	// mark("done");
	// f(3);
	nParam := &ast.Param{Name: "n"}
	nRead := func(id ast.NodeId) *ast.Identifier { return ident(id, "n") }

	innerCall := &ast.CallExpression{
		Base:   ast.NewBase(30, ast.Position{}),
		Callee: ident(31, "f"),
		Arguments: []ast.Expr{&ast.BinaryExpression{
			Base: ast.NewBase(32, ast.Position{}), Op: ast.OpSub, Left: nRead(33), Right: numLit(34, 1),
		}},
	}
	plusOne := &ast.BinaryExpression{Base: ast.NewBase(35, ast.Position{}), Op: ast.OpAdd, Left: innerCall, Right: numLit(36, 1)}

	body := &ast.BlockStatement{
		Base: ast.NewBase(40, ast.Position{}),
		Body: []ast.Stmt{
			&ast.IfStatement{
				Base: ast.NewBase(41, ast.Position{}),
				Test: &ast.BinaryExpression{
					Base: ast.NewBase(42, ast.Position{}), Op: ast.OpLe, Left: nRead(43), Right: numLit(44, 0),
				},
				Consequent: &ast.BlockStatement{
					Base: ast.NewBase(45, ast.Position{}),
					Body: []ast.Stmt{&ast.ReturnStatement{Base: ast.NewBase(46, ast.Position{}), Argument: numLit(47, 0)}},
				},
			},
			&ast.ReturnStatement{Base: ast.NewBase(48, ast.Position{}), Argument: plusOne},
		},
	}
	fnDecl := &ast.FunctionNode{
		Base:   ast.NewBase(50, ast.Position{}),
		Name:   "f",
		Params: []*ast.Param{nParam},
		Body:   body,
	}

	callF3 := &ast.ExpressionStatement{
		Base: ast.NewBase(60, ast.Position{}),
		Expression: &ast.CallExpression{
			Base:      ast.NewBase(61, ast.Position{}),
			Callee:    ident(62, "f"),
			Arguments: []ast.Expr{numLit(63, 3)},
		},
	}

	program := &ast.Program{
		Base: ast.NewBase(1, ast.Position{}),
		Body: []ast.Stmt{
			fnDecl,
			markCall(70, strLit(73, "done")),
			callF3,
		},
	}

	info := ip.LoadAndExec("/entry.js", program)
	qt.Assert(t, qt.IsTrue(info.Initialized))
	qt.Assert(t, qt.IsNil(a.Finalize()))

	// The f(3) call completed (didn't hang), mark("done") before it ran
	// exactly once, and the call node was referred.
	qt.Assert(t, qt.HasLen(m.names, 1))
	qt.Assert(t, qt.Equals(m.names[0], "done"))
	qt.Assert(t, qt.IsTrue(a.Graph().IsReferred(ast.NodeId(61))))
}

// TestComputedMemberReadOfUnknownKeyConsumesEveryPropertyInitializer proves
// the get_property "Non-literal key" soundness fix: given
//
//	const o = { a: 1, b: compute() };
//	const k = dynKey();
//	mark(o[k]);
//
// the dynamic key's value is never known statically, so every property o
// might expose - including b's side-effecting initializer - must stay
// observable; neither the compute() call node nor dynKey() itself may be
// dropped as dead.
func TestComputedMemberReadOfUnknownKeyConsumesEveryPropertyInitializer(t *testing.T) {
	a := analyzer.New(config.Recommended())
	ip := New(a, nil)

	computeFn := value.NewBuiltinFn("compute", func(ctx value.Ctx, dep depgraph.Dep, this value.Entity, args []value.Entity) value.Entity {
		ctx.Consume(dep)
		return value.Entity{Value: value.TheUnknown(), Dep: dep}
	})
	ip.DeclareGlobal("compute", computeFn)
	dynKeyFn := value.NewBuiltinFn("dynKey", func(ctx value.Ctx, dep depgraph.Dep, this value.Entity, args []value.Entity) value.Entity {
		ctx.Consume(dep)
		return value.Entity{Value: value.TheUnknown(), Dep: dep}
	})
	ip.DeclareGlobal("dynKey", dynKeyFn)
	var m markCalls
	newMarker(a, ip, &m)

	// const o = { a: 1, b: compute() };
	computeCall := &ast.CallExpression{Base: ast.NewBase(201, ast.Position{}), Callee: ident(202, "compute")}
	objLit := &ast.ObjectExpression{
		Base: ast.NewBase(210, ast.Position{}),
		Properties: []*ast.ObjectProperty{
			{Key: ident(211, "a"), Value: numLit(212, 1)},
			{Key: ident(213, "b"), Value: computeCall},
		},
	}
	oDecl := &ast.VariableDeclaration{
		Base: ast.NewBase(220, ast.Position{}), Kind: ast.VarConst,
		Declarations: []*ast.VariableDeclarator{
			{Base: ast.NewBase(221, ast.Position{}), Name: ident(222, "o"), Init: objLit},
		},
	}

	// const k = dynKey();
	dynKeyCall := &ast.CallExpression{Base: ast.NewBase(230, ast.Position{}), Callee: ident(231, "dynKey")}
	kDecl := &ast.VariableDeclaration{
		Base: ast.NewBase(240, ast.Position{}), Kind: ast.VarConst,
		Declarations: []*ast.VariableDeclarator{
			{Base: ast.NewBase(241, ast.Position{}), Name: ident(242, "k"), Init: dynKeyCall},
		},
	}

	// mark(o[k]);
	computedMember := &ast.MemberExpression{
		Base: ast.NewBase(250, ast.Position{}), Computed: true,
		Object: ident(251, "o"), Property: ident(252, "k"),
	}
	printCall := &ast.ExpressionStatement{
		Base: ast.NewBase(260, ast.Position{}),
		Expression: &ast.CallExpression{
			Base: ast.NewBase(261, ast.Position{}), Callee: ident(262, "mark"),
			Arguments: []ast.Expr{computedMember},
		},
	}

	program := &ast.Program{Base: ast.NewBase(1, ast.Position{}), Body: []ast.Stmt{oDecl, kDecl, printCall}}

	info := ip.LoadAndExec("/entry.js", program)
	qt.Assert(t, qt.IsTrue(info.Initialized))
	qt.Assert(t, qt.IsNil(a.Finalize()))

	// b's initializer call and dynKey()'s call both stay observable through
	// the computed member access, even though neither value was ever
	// resolved to a literal.
	qt.Assert(t, qt.IsTrue(a.Graph().IsReferred(ast.NodeId(201))))
	qt.Assert(t, qt.IsTrue(a.Graph().IsReferred(ast.NodeId(230))))
}

// TestForLoopReachesExhaustiveFixpoint mirrors spec.md scenario 6: a bounded
// for loop with a statically known trip count must drive through
// exhaustive.Run to a clean fixpoint, and Finalize must converge without
// hitting its round cap.
func TestForLoopReachesExhaustiveFixpoint(t *testing.T) {
	a := analyzer.New(config.Recommended())
	ip := New(a, nil)
	var m markCalls
	newMarker(a, ip, &m)

	// let i = 0;
	// for (; i <= 2; i = i + 1) { mark("iter"); }
	// mark("after");
	iDecl := &ast.VariableDeclaration{
		Base: ast.NewBase(80, ast.Position{}),
		Kind: ast.VarLet,
		Declarations: []*ast.VariableDeclarator{
			{Base: ast.NewBase(81, ast.Position{}), Name: ident(82, "i"), Init: numLit(83, 0)},
		},
	}
	test := &ast.BinaryExpression{Base: ast.NewBase(84, ast.Position{}), Op: ast.OpLe, Left: ident(85, "i"), Right: numLit(86, 2)}
	update := &ast.AssignmentExpression{
		Base: ast.NewBase(87, ast.Position{}), Plain: true, Target: ident(88, "i"),
		Value: &ast.BinaryExpression{Base: ast.NewBase(89, ast.Position{}), Op: ast.OpAdd, Left: ident(90, "i"), Right: numLit(91, 1)},
	}
	loop := &ast.ForStatement{
		Base: ast.NewBase(92, ast.Position{}),
		Test: test, Update: update,
		Body: &ast.BlockStatement{Base: ast.NewBase(93, ast.Position{}), Body: []ast.Stmt{markCall(100, strLit(103, "iter"))}},
	}

	program := &ast.Program{
		Base: ast.NewBase(1, ast.Position{}),
		Body: []ast.Stmt{iDecl, loop, markCall(110, strLit(113, "after"))},
	}

	info := ip.LoadAndExec("/entry.js", program)
	qt.Assert(t, qt.IsTrue(info.Initialized))
	qt.Assert(t, qt.IsNil(a.Finalize()))

	qt.Assert(t, qt.IsTrue(len(m.names) >= 1))
	qt.Assert(t, qt.Equals(m.names[len(m.names)-1], "after"))
	qt.Assert(t, qt.IsTrue(a.Graph().IsReferred(ast.NodeId(111))))
}
