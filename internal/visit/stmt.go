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
	"github.com/jsshaker/shaker/internal/ast"
	"github.com/jsshaker/shaker/internal/exhaustive"
	"github.com/jsshaker/shaker/internal/scope"
	"github.com/jsshaker/shaker/internal/value"
)

// loopFrame records the CF stack depths a break/continue inside the
// innermost loop should unwind to; pushed around a for/while's body so
// BreakStatement/ContinueStatement (which carry no structural link back to
// their loop) can find their target without walking the AST.
type loopFrame struct {
	breakDepth int
	contDepth  int
}

// execStatement dispatches on the concrete statement node type. Every case
// that can terminate a statement list early (return/break/continue) does so
// by marking CF scopes exited through Stack.ExitTo; execStatements is what
// actually stops iterating siblings once that happens.
func (ip *Interpreter) execStatement(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.VariableDeclaration:
		ip.execVariableDeclaration(n)
	case *ast.ExpressionStatement:
		ip.A.Consume(ip.evalExpr(n.Expression).Dep)
	case *ast.BlockStatement:
		ip.execStatements(n.Body)
	case *ast.IfStatement:
		ip.execIf(n)
	case *ast.ForStatement:
		ip.execFor(n)
	case *ast.WhileStatement:
		ip.execWhile(n)
	case *ast.ReturnStatement:
		ip.execReturn(n)
	case *ast.BreakStatement:
		ip.execBreak()
	case *ast.ContinueStatement:
		ip.execContinue()
	case *ast.FunctionNode:
		// named function declarations were already bound by hoistFuncDecls
		// when their enclosing function or module body was entered.
	case *ast.ClassNode:
		ip.execClassDecl(n)
	default:
		// ImportDeclaration/Export*Declaration are handled by execModule's
		// own dedicated passes and never reach this dispatch.
	}
}

// execStatements runs stmts in order, stopping as soon as the innermost
// currently-open CF scope (a function body, a loop body, or the module
// top level) has been marked exited by a nested return/break/continue.
func (ip *Interpreter) execStatements(stmts []ast.Stmt) {
	for _, s := range stmts {
		ip.execStatement(s)
		if ip.A.Stack.Top().Exited != scope.ExitNone {
			return
		}
	}
}

// execDependentBranch visits a conditionally-reached statement inside a CF
// scope whose Dep auto-folds into its parent on pop (spec.md section 4.2.1):
// used for the arm of an `if` whose test didn't resolve to a concrete
// boolean, so the arm's effects are still modeled but attributed to the
// (unresolved) test.
func (ip *Interpreter) execDependentBranch(s ast.Stmt) {
	ip.A.Stack.Push(scope.CfDependent)
	ip.execStatement(s)
	ip.A.Stack.Pop(ip.A.Graph())
}

func (ip *Interpreter) execIf(n *ast.IfStatement) {
	test := ip.evalExpr(n.Test)
	truthy := test.Value.TestTruthy()
	switch truthy {
	case value.TriTrue:
		ip.A.Cond.RecordBranch(n.ID(), ip.curCallSite, true, test, false)
		ip.A.Consume(test.Dep)
		ip.execStatement(n.Consequent)
	case value.TriFalse:
		ip.A.Cond.RecordBranch(n.ID(), ip.curCallSite, false, test, false)
		ip.A.Consume(test.Dep)
		if n.Alternate != nil {
			ip.execStatement(n.Alternate)
		}
	default:
		ip.A.Consume(test.Dep)
		ip.A.Cond.RecordBranch(n.ID(), ip.curCallSite, true, test, false)
		ip.execDependentBranch(n.Consequent)
		if n.Alternate != nil {
			ip.A.Cond.RecordBranch(n.ID(), ip.curCallSite, false, test, false)
			ip.execDependentBranch(n.Alternate)
		}
	}
}

// execFor/execWhile model a loop as internal/exhaustive's repeat-until-clean
// fixpoint rather than an actual bounded number of trips: the body is
// visited at least once (unless the test is statically false) and revisited
// until a pass observes no new reads/writes, per spec.md section 4.3. A
// CfLoopBreak scope wraps the whole construct so `break` can unwind past the
// exhaustive scope entirely; a fresh CfLoopContinue scope wraps each pass's
// body so `continue` unwinds only to the loop's own update step.
func (ip *Interpreter) execFor(n *ast.ForStatement) {
	if n.Init != nil {
		ip.execStatement(n.Init)
	}
	ip.A.Stack.Push(scope.CfLoopBreak)
	breakDepth := ip.A.Stack.Depth() - 1
	exhaustive.Run(ip.A.Stack, ip.A.Exh, false, true, func() error {
		if n.Test != nil {
			t := ip.evalExpr(n.Test)
			ip.A.Consume(t.Dep)
			if t.Value.TestTruthy() == value.TriFalse {
				return nil
			}
		}
		ip.A.Stack.Push(scope.CfLoopContinue)
		contDepth := ip.A.Stack.Depth() - 1
		ip.loopStack = append(ip.loopStack, loopFrame{breakDepth, contDepth})
		ip.execStatement(n.Body)
		ip.loopStack = ip.loopStack[:len(ip.loopStack)-1]
		ip.A.Stack.Pop(ip.A.Graph())
		if n.Update != nil {
			ip.A.Consume(ip.evalExpr(n.Update).Dep)
		}
		return nil
	})
	ip.A.Stack.Pop(ip.A.Graph())
}

func (ip *Interpreter) execWhile(n *ast.WhileStatement) {
	ip.A.Stack.Push(scope.CfLoopBreak)
	breakDepth := ip.A.Stack.Depth() - 1
	exhaustive.Run(ip.A.Stack, ip.A.Exh, false, true, func() error {
		t := ip.evalExpr(n.Test)
		ip.A.Consume(t.Dep)
		if t.Value.TestTruthy() == value.TriFalse {
			return nil
		}
		ip.A.Stack.Push(scope.CfLoopContinue)
		contDepth := ip.A.Stack.Depth() - 1
		ip.loopStack = append(ip.loopStack, loopFrame{breakDepth, contDepth})
		ip.execStatement(n.Body)
		ip.loopStack = ip.loopStack[:len(ip.loopStack)-1]
		ip.A.Stack.Pop(ip.A.Graph())
		return nil
	})
	ip.A.Stack.Pop(ip.A.Graph())
}

func (ip *Interpreter) execReturn(n *ast.ReturnStatement) {
	var val value.Entity
	if n.Argument != nil {
		val = ip.evalExpr(n.Argument)
	} else {
		val = value.Entity{Value: &value.Literal{LKind: value.LitUndefined}}
	}
	cs := ip.A.CurrentCallScope()
	if cs == nil {
		// a bare return outside any call, e.g. at module top level from a
		// malformed program; nothing to unwind to.
		ip.A.Consume(val.Dep)
		return
	}
	cs.RecordReturn(val)
	dep, _ := ip.A.Stack.ExitTo(cs.FnCfDepth)
	ip.A.Consume(dep)
}

func (ip *Interpreter) execBreak() {
	if len(ip.loopStack) == 0 {
		return
	}
	lf := ip.loopStack[len(ip.loopStack)-1]
	dep, _ := ip.A.Stack.ExitTo(lf.breakDepth)
	ip.A.Consume(dep)
}

func (ip *Interpreter) execContinue() {
	if len(ip.loopStack) == 0 {
		return
	}
	lf := ip.loopStack[len(ip.loopStack)-1]
	dep, _ := ip.A.Stack.ExitTo(lf.contDepth)
	ip.A.Consume(dep)
}

// execVariableDeclaration binds each declarator in source order.
// var-declarators were already given an Initialized, undefined slot by
// hoistVars; this just assigns their initializer if present. let/const
// (and a var encountered outside any hoist pass, e.g. one nested inside a
// block this interpreter doesn't give its own scope to, see hoistVars'
// doc) are declared here on first execution.
//
// Known simplification: because non-function-boundary blocks share their
// enclosing function/module's single VariableScope (see the capturedScope
// doc in visit.go), a let/const re-declared in a nested block shadows the
// outer binding for the rest of the enclosing function rather than just
// for that block, and no TDZ ReferenceError is ever raised for a read that
// precedes its declaration - the read instead sees whatever an enclosing
// scope already bound, or Unknown. Both are conservative for dead-code
// elimination: neither can make a reachable write look unreachable.
func (ip *Interpreter) execVariableDeclaration(n *ast.VariableDeclaration) {
	for _, d := range n.Declarations {
		ip.execVariableDeclarator(n.Kind, d)
	}
}

func (ip *Interpreter) execVariableDeclarator(kind ast.VariableKind, d *ast.VariableDeclarator) {
	id, ok := d.Name.(*ast.Identifier)
	if !ok {
		// destructuring pattern: unsupported, per VariableDeclarator's doc;
		// still evaluate the initializer for its side effects.
		if d.Init != nil {
			ip.A.Consume(ip.evalExpr(d.Init).Dep)
		}
		return
	}

	sym, exists := ip.binder.resolve(id.Name)
	if !exists {
		sym = ip.curTable.Declare(id.Name)
		ip.binder.declare(id.Name, sym)
	}

	var val value.Entity
	if d.Init != nil {
		val = ip.evalExpr(d.Init)
	} else {
		val = value.Entity{Value: &value.Literal{LKind: value.LitUndefined}}
	}
	ip.curTable.RecordWrite(sym, d.ID())

	vs := ip.A.Stack.VarScope()
	if existing, has := vs.Get(sym); has {
		existing.Value = val
		existing.Initialized = true
		return
	}
	vs.Declare(sym, &scope.Variable{Kind: varScopeKind(kind), Initialized: true, Value: val, DeclNode: d.ID()})
}

func varScopeKind(k ast.VariableKind) scope.VariableKind {
	switch k {
	case ast.VarLet:
		return scope.VarKindLet
	case ast.VarConst:
		return scope.VarKindConst
	default:
		return scope.VarKindVar
	}
}

// hoistBlock implements the two-phase hoisting spec.md section 3.5
// describes for one function body or module top level: every `var` and
// named function declaration reachable without crossing a nested function
// boundary is bound before any statement runs, so forward references
// (calling a function declared later in the same block, reading a `var`
// before its assignment) see the right kind of value instead of an unbound
// name.
func (ip *Interpreter) hoistBlock(stmts []ast.Stmt) {
	vs := ip.A.Stack.VarScope()
	ip.hoistVars(stmts, vs)
	ip.hoistFuncDecls(stmts, vs)
}

// hoistVars recurses into nested blocks and control-flow bodies (but never
// into a nested FunctionNode) since `var` hoists all the way to the nearest
// function/module boundary, unlike let/const.
func (ip *Interpreter) hoistVars(stmts []ast.Stmt, vs *scope.VariableScope) {
	for _, stmt := range stmts {
		switch n := stmt.(type) {
		case *ast.VariableDeclaration:
			if n.Kind == ast.VarVar {
				for _, d := range n.Declarations {
					ip.hoistVarName(d.Name, vs)
				}
			}
		case *ast.BlockStatement:
			ip.hoistVars(n.Body, vs)
		case *ast.IfStatement:
			ip.hoistVars(blockOf(n.Consequent), vs)
			if n.Alternate != nil {
				ip.hoistVars(blockOf(n.Alternate), vs)
			}
		case *ast.ForStatement:
			if vd, ok := n.Init.(*ast.VariableDeclaration); ok && vd.Kind == ast.VarVar {
				for _, d := range vd.Declarations {
					ip.hoistVarName(d.Name, vs)
				}
			}
			ip.hoistVars(blockOf(n.Body), vs)
		case *ast.WhileStatement:
			ip.hoistVars(blockOf(n.Body), vs)
		}
	}
}

func blockOf(s ast.Stmt) []ast.Stmt {
	if b, ok := s.(*ast.BlockStatement); ok {
		return b.Body
	}
	return []ast.Stmt{s}
}

func (ip *Interpreter) hoistVarName(name ast.Expr, vs *scope.VariableScope) {
	id, ok := name.(*ast.Identifier)
	if !ok {
		return
	}
	sym, exists := ip.binder.resolve(id.Name)
	if !exists {
		sym = ip.curTable.Declare(id.Name)
		ip.binder.declare(id.Name, sym)
	}
	if _, has := vs.Get(sym); has {
		return
	}
	vs.Declare(sym, &scope.Variable{
		Kind:        scope.VarKindVar,
		Initialized: true,
		Value:       value.Entity{Value: &value.Literal{LKind: value.LitUndefined}},
	})
}

// hoistFuncDecls binds every named function declaration in stmts, including
// those nested inside blocks and if/for/while bodies (but not inside a
// nested function), into vs, the scope of the nearest function/module
// boundary. Real engines scope a function declared inside a block to that
// block; hoisting it to the boundary over-approximates its scope rather
// than under-approximating it, which is conservative for DCE.
func (ip *Interpreter) hoistFuncDecls(stmts []ast.Stmt, vs *scope.VariableScope) {
	for _, stmt := range stmts {
		ip.hoistOneFuncDecl(stmt, vs)
	}
}

func (ip *Interpreter) hoistOneFuncDecl(stmt ast.Stmt, vs *scope.VariableScope) {
	switch n := stmt.(type) {
	case *ast.FunctionNode:
		if n.Name == "" {
			return
		}
		entity := ip.evalFunctionExpr(n)
		sym, exists := ip.binder.resolve(n.Name)
		if !exists {
			sym = ip.curTable.Declare(n.Name)
			ip.binder.declare(n.Name, sym)
		}
		vs.Declare(sym, &scope.Variable{Kind: scope.VarKindVar, Initialized: true, Value: entity, DeclNode: n.ID()})
	case *ast.BlockStatement:
		ip.hoistFuncDecls(n.Body, vs)
	case *ast.IfStatement:
		ip.hoistOneFuncDecl(n.Consequent, vs)
		if n.Alternate != nil {
			ip.hoistOneFuncDecl(n.Alternate, vs)
		}
	case *ast.ForStatement:
		ip.hoistOneFuncDecl(n.Body, vs)
	case *ast.WhileStatement:
		ip.hoistOneFuncDecl(n.Body, vs)
	}
}
