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
	"math"

	"github.com/jsshaker/shaker/internal/analyzer"
	"github.com/jsshaker/shaker/internal/ast"
	"github.com/jsshaker/shaker/internal/depgraph"
	"github.com/jsshaker/shaker/internal/mangle"
	"github.com/jsshaker/shaker/internal/scope"
	"github.com/jsshaker/shaker/internal/value"
)

func nodeDep(id ast.NodeId) depgraph.Dep { return depgraph.OfNode(id) }

// evalExpr dispatches on the concrete expression node type, returning the
// value it computes together with the Dep explaining why ("this entity's
// value depends on these AST nodes"). Every case folds the expression's own
// node id into the returned Dep so that a later Consume of the result
// refers the expression itself, not just its operands.
func (ip *Interpreter) evalExpr(e ast.Expr) value.Entity {
	switch n := e.(type) {
	case *ast.Identifier:
		return ip.evalIdentifier(n)
	case *ast.NumberLiteral:
		return value.Entity{Value: &value.Literal{LKind: value.LitNumber, Num: n.Value}, Dep: nodeDep(n.ID())}
	case *ast.StringLiteral:
		return value.Entity{Value: &value.Literal{LKind: value.LitString, Str: n.Value}, Dep: nodeDep(n.ID())}
	case *ast.BooleanLiteral:
		return value.Entity{Value: &value.Literal{LKind: value.LitBoolean, Bool: n.Value}, Dep: nodeDep(n.ID())}
	case *ast.NullLiteral:
		return value.Entity{Value: &value.Literal{LKind: value.LitNull}, Dep: nodeDep(n.ID())}
	case *ast.UndefinedLiteral:
		return value.Entity{Value: &value.Literal{LKind: value.LitUndefined}, Dep: nodeDep(n.ID())}
	case *ast.BinaryExpression:
		return ip.evalBinary(n)
	case *ast.LogicalExpression:
		return ip.evalLogical(n)
	case *ast.UnaryExpression:
		return ip.evalUnary(n)
	case *ast.AssignmentExpression:
		return ip.evalAssignment(n)
	case *ast.ConditionalExpression:
		return ip.evalConditional(n)
	case *ast.CallExpression:
		return ip.evalCall(n)
	case *ast.NewExpression:
		return ip.evalNew(n)
	case *ast.MemberExpression:
		return ip.evalMember(n)
	case *ast.ObjectExpression:
		return ip.evalObject(n)
	case *ast.ArrayExpression:
		return ip.evalArray(n)
	case *ast.FunctionNode:
		return ip.evalFunctionExpr(n)
	case *ast.ClassNode:
		return ip.evalClassExpr(n)
	case *ast.JSXElement:
		return ip.evalJSX(n)
	default:
		ip.A.Graph().Refer(e.ID())
		return ip.A.Factory().ComputedUnknown(nodeDep(e.ID()))
	}
}

// evalIdentifier resolves a bare name to a value.Entity. "this" is special:
// the minimal AST has no dedicated this-expression node, so the front end
// lowers `this` to an Identifier named "this" and expr.go resolves it
// against curThis instead of the binder (see visit.go's field doc).
func (ip *Interpreter) evalIdentifier(n *ast.Identifier) value.Entity {
	if n.Name == "this" {
		return value.Entity{Value: orUndefined(ip.curThis.Value), Dep: depgraph.OfTuple(nodeDep(n.ID()), ip.curThis.Dep)}
	}
	sym, ok := ip.binder.resolve(n.Name)
	if !ok {
		ip.A.Graph().Refer(n.ID())
		return ip.A.Factory().ComputedUnknown(nodeDep(n.ID()))
	}
	ip.curTable.RecordRead(sym, n.ID())
	v, err := ip.A.ReadVar(sym, n.ID())
	if err != nil {
		// TDZ or an untracked global: the declaration node (for TDZ) is
		// already referred by Stack.ReadVariable; degrade to Unknown rather
		// than raise a builtin error, since a TDZ access or a genuinely
		// untracked global is an ordinary program fact, not a shaker bug.
		ip.A.Graph().Refer(n.ID())
		return ip.A.Factory().ComputedUnknown(nodeDep(n.ID()))
	}
	return value.Entity{Value: v.Value, Dep: depgraph.OfTuple(nodeDep(n.ID()), v.Dep)}
}

func orUndefined(v value.Value) value.Value {
	if v == nil {
		return &value.Literal{LKind: value.LitUndefined}
	}
	return v
}

func (ip *Interpreter) evalBinary(n *ast.BinaryExpression) value.Entity {
	left := ip.evalExpr(n.Left)
	right := ip.evalExpr(n.Right)
	dep := depgraph.OfTuple(nodeDep(n.ID()), left.Dep, right.Dep)

	switch n.Op {
	case ast.OpStrictEq, ast.OpStrictNeq:
		tri, d := value.StrictEquals(ip.A, dep, left, right, false)
		return triToEntity(tri, n.Op == ast.OpStrictNeq, d)
	case ast.OpLooseEq, ast.OpLooseNeq:
		// Loose equality's full coercion ladder is not modeled precisely;
		// same-kind literal comparisons degrade to StrictEquals, everything
		// else (null == undefined included) to an unknown boolean.
		ll, lok := left.Value.(*value.Literal)
		rl, rok := right.Value.(*value.Literal)
		if lok && rok && ll.LKind == rl.LKind {
			tri, d := value.StrictEquals(ip.A, dep, left, right, false)
			return triToEntity(tri, n.Op == ast.OpLooseNeq, d)
		}
		ip.A.Consume(dep)
		return value.Entity{Value: value.PrimitiveTop(value.PrimBoolean), Dep: dep}
	}

	ln, lok := asSimpleNumber(left.Value)
	rn, rok := asSimpleNumber(right.Value)
	if lok && rok {
		switch n.Op {
		case ast.OpAdd:
			ip.A.Consume(dep)
			return value.Entity{Value: &value.Literal{LKind: value.LitNumber, Num: ln + rn}, Dep: dep}
		case ast.OpSub:
			ip.A.Consume(dep)
			return value.Entity{Value: &value.Literal{LKind: value.LitNumber, Num: ln - rn}, Dep: dep}
		case ast.OpMul:
			ip.A.Consume(dep)
			return value.Entity{Value: &value.Literal{LKind: value.LitNumber, Num: ln * rn}, Dep: dep}
		case ast.OpDiv:
			ip.A.Consume(dep)
			return value.Entity{Value: &value.Literal{LKind: value.LitNumber, Num: ln / rn}, Dep: dep}
		case ast.OpLt:
			return triToEntity(triFromFloatCompare(ln < rn), false, dep)
		case ast.OpGt:
			return triToEntity(triFromFloatCompare(ln > rn), false, dep)
		case ast.OpLe:
			return triToEntity(triFromFloatCompare(ln <= rn), false, dep)
		case ast.OpGe:
			return triToEntity(triFromFloatCompare(ln >= rn), false, dep)
		}
	}
	// string concatenation: the one other precisely-decidable OpAdd case.
	if n.Op == ast.OpAdd {
		if ls, lok := left.Value.(*value.Literal); lok && ls.LKind == value.LitString {
			if rs, rok := right.Value.(*value.Literal); rok && rs.LKind == value.LitString {
				ip.A.Consume(dep)
				return value.Entity{Value: &value.Literal{LKind: value.LitString, Str: ls.Str + rs.Str}, Dep: dep}
			}
		}
	}
	ip.A.Consume(dep)
	if n.Op == ast.OpLt || n.Op == ast.OpGt || n.Op == ast.OpLe || n.Op == ast.OpGe {
		return value.Entity{Value: value.PrimitiveTop(value.PrimBoolean), Dep: dep}
	}
	return value.Entity{Value: value.PrimitiveTop(value.PrimMixed), Dep: dep}
}

func asSimpleNumber(v value.Value) (float64, bool) {
	l, ok := v.(*value.Literal)
	if !ok || l.LKind != value.LitNumber {
		return 0, false
	}
	return l.Num, true
}

func triFromFloatCompare(b bool) value.Tri {
	if b {
		return value.TriTrue
	}
	return value.TriFalse
}

func triToEntity(t value.Tri, negate bool, dep depgraph.Dep) value.Entity {
	if negate {
		switch t {
		case value.TriTrue:
			t = value.TriFalse
		case value.TriFalse:
			t = value.TriTrue
		}
	}
	if t == value.TriUnknown {
		return value.Entity{Value: value.PrimitiveTop(value.PrimBoolean), Dep: dep}
	}
	return value.Entity{Value: &value.Literal{LKind: value.LitBoolean, Bool: t == value.TriTrue}, Dep: dep}
}

// evalLogical implements &&, ||, ?? with the same reachable-branch pruning
// an IfStatement uses: when the left operand's truthiness is already
// decided, the untaken side is never visited at all (skip-dead-branch DCE),
// and when it is not decided both sides are visited and registered with the
// conditional tracker so a later deoptimized call site can force both.
func (ip *Interpreter) evalLogical(n *ast.LogicalExpression) value.Entity {
	left := ip.evalExpr(n.Left)
	dep := depgraph.OfTuple(nodeDep(n.ID()), left.Dep)

	var shortCircuit value.Tri
	switch n.Op {
	case ast.LogAnd:
		shortCircuit = left.Value.TestTruthy()
		if shortCircuit == value.TriFalse {
			ip.A.Consume(dep)
			return value.Entity{Value: left.Value, Dep: dep}
		}
	case ast.LogOr:
		t := left.Value.TestTruthy()
		if t == value.TriTrue {
			ip.A.Consume(dep)
			return value.Entity{Value: left.Value, Dep: dep}
		}
		shortCircuit = t
	case ast.LogNullish:
		nl := left.Value.TestNullish()
		if nl == value.TriFalse {
			ip.A.Consume(dep)
			return value.Entity{Value: left.Value, Dep: dep}
		}
		shortCircuit = nl
	}
	_ = shortCircuit
	right := ip.evalExpr(n.Right)
	ip.A.Cond.RecordBranch(n.ID(), ip.curCallSite, true, left, false)
	result := value.NewLogicalResult(value.LogicalOp(n.Op), right, value.TriUnknown, value.TriUnknown)
	return value.Entity{Value: result, Dep: depgraph.OfTuple(dep, right.Dep)}
}

func (ip *Interpreter) evalUnary(n *ast.UnaryExpression) value.Entity {
	arg := ip.evalExpr(n.Argument)
	dep := depgraph.OfTuple(nodeDep(n.ID()), arg.Dep)
	switch n.Op {
	case ast.UnaryNot:
		t := arg.Value.TestTruthy()
		return triToEntity(t, true, dep)
	case ast.UnaryNeg:
		if num, ok := asSimpleNumber(arg.Value); ok {
			ip.A.Consume(dep)
			return value.Entity{Value: &value.Literal{LKind: value.LitNumber, Num: -num}, Dep: dep}
		}
		ip.A.Consume(dep)
		return value.Entity{Value: value.PrimitiveTop(value.PrimNumber), Dep: dep}
	case ast.UnaryTypeof:
		ip.A.Consume(dep)
		mask := arg.Value.TestTypeof()
		if name, ok := singleTypeofName(mask); ok {
			return value.Entity{Value: &value.Literal{LKind: value.LitString, Str: name}, Dep: dep}
		}
		return value.Entity{Value: value.PrimitiveTop(value.PrimString), Dep: dep}
	case ast.UnaryVoid:
		ip.A.Consume(dep)
		return value.Entity{Value: &value.Literal{LKind: value.LitUndefined}, Dep: dep}
	}
	ip.A.Consume(dep)
	return ip.A.Factory().ComputedUnknown(dep)
}

func singleTypeofName(mask value.TypeofMask) (string, bool) {
	names := map[value.TypeofMask]string{
		value.TypeofString:    "string",
		value.TypeofNumber:    "number",
		value.TypeofBigInt:    "bigint",
		value.TypeofBoolean:   "boolean",
		value.TypeofSymbol:    "symbol",
		value.TypeofUndefined: "undefined",
		value.TypeofObject:    "object",
		value.TypeofFunction:  "function",
	}
	if name, ok := names[mask]; ok {
		return name, true
	}
	return "", false
}

func (ip *Interpreter) evalAssignment(n *ast.AssignmentExpression) value.Entity {
	if n.Plain {
		val := ip.evalExpr(n.Value)
		ip.assignTo(n.Target, val)
		return value.Entity{Value: val.Value, Dep: depgraph.OfTuple(nodeDep(n.ID()), val.Dep)}
	}
	cur := ip.evalExpr(n.Target)
	rhs := ip.evalExpr(n.Value)
	combined := ip.applyBinaryOp(n.Op, cur, rhs, nodeDep(n.ID()))
	ip.assignTo(n.Target, combined)
	return combined
}

// applyBinaryOp reuses evalBinary's numeric/string fast paths for a compound
// assignment's right-hand computation without re-evaluating either operand
// (they are already Entities here, not AST nodes).
func (ip *Interpreter) applyBinaryOp(op ast.BinaryOp, left, right value.Entity, dep depgraph.Dep) value.Entity {
	combined := depgraph.OfTuple(dep, left.Dep, right.Dep)
	if ln, lok := asSimpleNumber(left.Value); lok {
		if rn, rok := asSimpleNumber(right.Value); rok {
			ip.A.Consume(combined)
			var out float64
			switch op {
			case ast.OpAdd:
				out = ln + rn
			case ast.OpSub:
				out = ln - rn
			case ast.OpMul:
				out = ln * rn
			case ast.OpDiv:
				out = ln / rn
			default:
				return value.Entity{Value: value.PrimitiveTop(value.PrimMixed), Dep: combined}
			}
			return value.Entity{Value: &value.Literal{LKind: value.LitNumber, Num: out}, Dep: combined}
		}
	}
	if op == ast.OpAdd {
		if ls, lok := left.Value.(*value.Literal); lok && ls.LKind == value.LitString {
			if rs, rok := right.Value.(*value.Literal); rok && rs.LKind == value.LitString {
				ip.A.Consume(combined)
				return value.Entity{Value: &value.Literal{LKind: value.LitString, Str: ls.Str + rs.Str}, Dep: combined}
			}
		}
	}
	ip.A.Consume(combined)
	return value.Entity{Value: value.PrimitiveTop(value.PrimMixed), Dep: combined}
}

func (ip *Interpreter) assignTo(target ast.Expr, val value.Entity) {
	switch t := target.(type) {
	case *ast.Identifier:
		if t.Name == "this" {
			return // `this` is never a valid assignment target.
		}
		sym, ok := ip.binder.resolve(t.Name)
		if !ok {
			return
		}
		ip.curTable.RecordWrite(sym, t.ID())
		ip.A.WriteVar(sym, val)
	case *ast.MemberExpression:
		obj := ip.evalExpr(t.Object)
		key, keyDep := ip.resolveMemberKey(t)
		dep := depgraph.OfTuple(nodeDep(t.ID()), obj.Dep, keyDep)
		obj.Value.SetProperty(ip.A, dep, key, val)
	}
}

func (ip *Interpreter) evalConditional(n *ast.ConditionalExpression) value.Entity {
	test := ip.evalExpr(n.Test)
	truthy := test.Value.TestTruthy()
	dep := depgraph.OfTuple(nodeDep(n.ID()), test.Dep)

	if truthy == value.TriTrue {
		ip.A.Cond.RecordBranch(n.ID(), ip.curCallSite, true, test, false)
		r := ip.evalExpr(n.Consequent)
		return value.Entity{Value: r.Value, Dep: depgraph.OfTuple(dep, r.Dep)}
	}
	if truthy == value.TriFalse {
		ip.A.Cond.RecordBranch(n.ID(), ip.curCallSite, false, test, false)
		r := ip.evalExpr(n.Alternate)
		return value.Entity{Value: r.Value, Dep: depgraph.OfTuple(dep, r.Dep)}
	}
	cons := ip.evalExpr(n.Consequent)
	alt := ip.evalExpr(n.Alternate)
	ip.A.Cond.RecordBranch(n.ID(), ip.curCallSite, true, test, false)
	ip.A.Cond.RecordBranch(n.ID(), ip.curCallSite, false, test, false)
	return ip.A.Factory().UnionOf(dep, cons, alt)
}

func (ip *Interpreter) evalCall(n *ast.CallExpression) value.Entity {
	if id, ok := n.Callee.(*ast.Identifier); ok && id.Name == "super" {
		args := ip.evalArgs(n.Arguments)
		return ip.callSuperCtor(args, nodeDep(n.ID()))
	}
	var this value.Entity
	var callee value.Entity
	if me, ok := n.Callee.(*ast.MemberExpression); ok {
		obj := ip.evalExpr(me.Object)
		if me.Optional && obj.Value.TestNullish() == value.TriTrue {
			ip.A.Consume(depgraph.OfTuple(nodeDep(n.ID()), obj.Dep))
			return value.Entity{Value: &value.Literal{LKind: value.LitUndefined}, Dep: nodeDep(n.ID())}
		}
		key, keyDep := ip.resolveMemberKey(me)
		this = obj
		callee = obj.Value.GetProperty(ip.A, depgraph.OfTuple(nodeDep(me.ID()), obj.Dep, keyDep), key)
	} else {
		callee = ip.evalExpr(n.Callee)
	}
	if n.Optional && callee.Value.TestNullish() == value.TriTrue {
		ip.A.Consume(depgraph.OfTuple(nodeDep(n.ID()), callee.Dep))
		return value.Entity{Value: &value.Literal{LKind: value.LitUndefined}, Dep: nodeDep(n.ID())}
	}
	args := ip.evalArgs(n.Arguments)
	dep := depgraph.OfTuple(nodeDep(n.ID()), callee.Dep)
	return ip.dispatchCall(callee, false, this, args, dep)
}

func (ip *Interpreter) evalNew(n *ast.NewExpression) value.Entity {
	callee := ip.evalExpr(n.Callee)
	args := ip.evalArgs(n.Arguments)
	dep := depgraph.OfTuple(nodeDep(n.ID()), callee.Dep)
	return ip.dispatchCall(callee, true, value.Entity{}, args, dep)
}

func (ip *Interpreter) evalArgs(nodes []ast.Expr) []value.Entity {
	args := make([]value.Entity, len(nodes))
	for i, a := range nodes {
		args[i] = ip.evalExpr(a)
	}
	return args
}

// dispatchCall routes a call/construct to analyzer.CallFunction (replaying
// the callee's own body, with cache/recursion-guard support) when the
// callee is a user-defined *value.Function this interpreter created a
// closureInfo for, and otherwise to the generic value.Call/Construct
// contract (builtins, Unknown, unions of the two).
func (ip *Interpreter) dispatchCall(callee value.Entity, isCtor bool, this value.Entity, args []value.Entity, dep depgraph.Dep) value.Entity {
	fn, ok := callee.Value.(*value.Function)
	if !ok {
		// An Unknown call target might run arbitrary code, including code
		// that settles one of this call's enclosing conditional branches in a
		// way this analysis can't observe; force every branch recorded under
		// the current call site to be treated as reachable. Other
		// non-Function targets (builtins, unions) go to their own Call or
		// Construct without this deoptimization.
		if _, isUnknown := callee.Value.(*value.Unknown); isUnknown {
			ip.A.Cond.Deoptimize(ip.curCallSite)
		}
		if isCtor {
			return callee.Value.Construct(ip.A, dep, args)
		}
		return callee.Value.Call(ip.A, dep, this, args)
	}
	info, hasInfo := ip.closures[fn.ID]
	if !hasInfo {
		if isCtor {
			return fn.Construct(ip.A, dep, args)
		}
		return fn.Call(ip.A, dep, this, args)
	}

	var instance value.Entity
	if isCtor {
		// A constructor call always produces a fresh instance object: the
		// rare case of a constructor body explicitly `return`ing a different
		// object to override `this` is not modeled, so
		// the explicit return value is only consumed for its Dep, never
		// substituted for the instance.
		instance = value.Entity{Value: ip.A.Factory().NewObject(currentCfID(ip.A))}
		this = instance
	}

	runner := func(a *analyzer.Analyzer, fn *value.Function, callScopeID scope.CallScopeID) {
		ip.runClosureBody(fn, info, this, args, callScopeID)
	}
	prevScope := ip.A.Stack.SetVarScope(info.capturedScope)
	result := ip.A.CallFunction(fn, isCtor, this, args, dep, runner)
	ip.A.Stack.SetVarScope(prevScope)
	if isCtor {
		ip.A.Consume(result.Dep)
		return instance
	}
	return result
}

// callSuperCtor runs a derived class constructor's `super(...)` call: unlike
// a `new` expression it does not allocate a fresh instance, it continues
// initializing the one `this` already under construction.
func (ip *Interpreter) callSuperCtor(args []value.Entity, dep depgraph.Dep) value.Entity {
	undefined := value.Entity{Value: &value.Literal{LKind: value.LitUndefined}, Dep: dep}
	if ip.curSuperCtor == nil {
		ip.A.Consume(dep)
		return undefined
	}
	info, ok := ip.closures[ip.curSuperCtor.ID]
	if !ok {
		return ip.curSuperCtor.Call(ip.A, dep, ip.curThis, args)
	}
	this := ip.curThis
	runner := func(a *analyzer.Analyzer, fn *value.Function, callScopeID scope.CallScopeID) {
		ip.runClosureBody(fn, info, this, args, callScopeID)
	}
	prevScope := ip.A.Stack.SetVarScope(info.capturedScope)
	result := ip.A.CallFunction(ip.curSuperCtor, false, this, args, dep, runner)
	ip.A.Stack.SetVarScope(prevScope)
	ip.A.Consume(result.Dep)
	return undefined
}

// runClosureBody is the BodyRunner payload for a user-defined function: set
// up the binder/table/module context captured at definition time, bind
// parameters and `this`, push a Function CF scope, and visit the body in
// source order until it returns or falls off the end.
func (ip *Interpreter) runClosureBody(fn *value.Function, info *closureInfo, this value.Entity, args []value.Entity, callScopeID scope.CallScopeID) {
	prevBinder, prevTable, prevModule, prevThis, prevCallSite, prevSuper := ip.binder, ip.curTable, ip.curModule, ip.curThis, ip.curCallSite, ip.curSuperCtor
	ip.binder = newBinder(info.binder)
	ip.curTable, ip.curModule = info.table, info.moduleID
	if !info.isArrow {
		ip.curThis = this
	}
	ip.curCallSite = ip.A.NewCallSite()
	ip.curSuperCtor = info.superCtor
	defer func() {
		ip.binder, ip.curTable, ip.curModule, ip.curThis, ip.curCallSite, ip.curSuperCtor = prevBinder, prevTable, prevModule, prevThis, prevCallSite, prevSuper
	}()

	ip.bindParams(info, args)
	if info.hasSelf {
		ip.binder.declare(info.selfName, info.selfSym)
		ip.A.Stack.VarScope().Declare(info.selfSym, &scope.Variable{Kind: scope.VarKindConst, Initialized: true, Value: value.Entity{Value: fn}})
	}
	if fn.FnKind == value.FnClassConstructor {
		ip.installInstanceMembers(info, this)
	}

	cs := ip.A.Stack.Push(scope.CfFunction)
	defer ip.A.Stack.Pop(ip.A.Graph())

	ip.hoistBlock(info.body.Body)
	for _, stmt := range info.body.Body {
		ip.execStatement(stmt)
		if cs.Exited != scope.ExitNone {
			break
		}
	}
}

func (ip *Interpreter) bindParams(info *closureInfo, args []value.Entity) {
	vs := ip.A.Stack.VarScope()
	for i, p := range info.params {
		sym := ip.curTable.Declare(p.Name)
		ip.binder.declare(p.Name, sym)
		var val value.Entity
		switch {
		case p.Rest:
			arr := ip.A.Factory().NewArray(currentCfID(ip.A))
			for _, extra := range args[min(i, len(args)):] {
				arr.Elements = append(arr.Elements, extra)
			}
			val = value.Entity{Value: arr}
		case i < len(args):
			val = args[i]
		case p.Default != nil:
			val = ip.evalExpr(p.Default)
		default:
			val = value.Entity{Value: &value.Literal{LKind: value.LitUndefined}}
		}
		vs.Declare(sym, &scope.Variable{Kind: scope.VarKindFunctionParam, Value: val, Initialized: true})
		if p.Rest {
			break
		}
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// currentCfID reports a stable-enough CfScopeID for object/array creation
// write-barrier scoping: the depth of the currently open CF stack, which is
// sufficient since value.CfScopeID is only ever compared for equality
// against the scope active when the object was created, never decoded.
func currentCfID(a *analyzer.Analyzer) value.CfScopeID {
	return value.CfScopeID(a.Stack.Depth())
}

// resolveMemberKey resolves a member expression's property key, per
// spec.md's get_property/set_property contract: a key that evaluates to a
// string literal resolves to that literal key; anything else (an Unknown, a
// non-string literal, a Primitive top, ...) cannot be narrowed to a finite
// literal at analysis time and must use value.UnknownKey's conservative
// path instead of colliding onto some arbitrary literal key. The key
// expression's own Dep is returned separately so callers can fold it into
// the access's combined dep chain - a computed key is arbitrary code and
// must stay observable even when the access itself degrades to Unknown.
func (ip *Interpreter) resolveMemberKey(me *ast.MemberExpression) (value.PropertyKey, depgraph.Dep) {
	if !me.Computed {
		return value.StringKey(me.Property.(*ast.Identifier).Name), depgraph.NoDep
	}
	keyEntity := ip.evalExpr(me.Property)
	if lit, ok := keyEntity.Value.(*value.Literal); ok && lit.LKind == value.LitString {
		return value.StringKey(lit.Str), keyEntity.Dep
	}
	return value.UnknownKey(), keyEntity.Dep
}

func (ip *Interpreter) evalMember(n *ast.MemberExpression) value.Entity {
	obj := ip.evalExpr(n.Object)
	if n.Optional && obj.Value.TestNullish() == value.TriTrue {
		dep := depgraph.OfTuple(nodeDep(n.ID()), obj.Dep)
		ip.A.Consume(dep)
		return value.Entity{Value: &value.Literal{LKind: value.LitUndefined}, Dep: dep}
	}
	key, keyDep := ip.resolveMemberKey(n)
	dep := depgraph.OfTuple(nodeDep(n.ID()), obj.Dep, keyDep)
	return obj.Value.GetProperty(ip.A, dep, key)
}

// evalObject builds an Object value and wires its literal string keys into
// a fresh mangling uniqueness group (spec.md section 3.4: the property keys
// of one object literal must mutually resolve to distinct mangled names),
// one group per object literal, skipping computed keys (whose name isn't
// known statically) entirely.
func (ip *Interpreter) evalObject(n *ast.ObjectExpression) value.Entity {
	obj := ip.A.Factory().NewObject(currentCfID(ip.A))
	var group *mangleGroupState
	for _, prop := range n.Properties {
		if prop.Computed {
			key, keyDep := ip.resolveMemberKey(&ast.MemberExpression{Computed: true, Property: prop.Key})
			val := ip.evalExpr(prop.Value)
			obj.SetProperty(ip.A, depgraph.OfTuple(nodeDep(n.ID()), keyDep), key, val)
			continue
		}
		name := literalKeyName(prop.Key)
		val := ip.evalExpr(prop.Value)
		obj.SetProperty(ip.A, nodeDep(n.ID()), value.StringKey(name), val)
		if group == nil {
			group = ip.newObjectMangleGroup(obj)
		}
		group.add(name)
	}
	for _, spread := range n.SpreadTail {
		ip.A.Consume(ip.evalExpr(spread).Dep)
		ip.A.Consume(depgraph.OfConsumer(obj))
	}
	return value.Entity{Value: obj, Dep: nodeDep(n.ID())}
}

type mangleGroupState struct {
	ip    *Interpreter
	group mangle.UniquenessGroupID
}

func (ip *Interpreter) newObjectMangleGroup(obj *value.Object) *mangleGroupState {
	g := ip.A.Mangler.NewUniquenessGroup()
	ip.objGroups[obj.ID] = g
	return &mangleGroupState{ip: ip, group: g}
}

func (g *mangleGroupState) add(name string) {
	atom := g.ip.A.Mangler.NewConstantAtom(name)
	g.ip.A.Mangler.AddToUniquenessGroup(g.group, atom)
}

func literalKeyName(key ast.Expr) string {
	switch k := key.(type) {
	case *ast.Identifier:
		return k.Name
	case *ast.StringLiteral:
		return k.Value
	case *ast.NumberLiteral:
		return formatNumberKey(k.Value)
	}
	return ""
}

func formatNumberKey(n float64) string {
	if n == math.Trunc(n) && !math.IsInf(n, 0) {
		return intString(int64(n))
	}
	return "" // non-integer numeric keys are vanishingly rare; fall back.
}

func intString(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func (ip *Interpreter) evalArray(n *ast.ArrayExpression) value.Entity {
	arr := ip.A.Factory().NewArray(currentCfID(ip.A))
	for _, el := range n.Elements {
		if el == nil {
			arr.Elements = append(arr.Elements, value.Entity{Value: &value.Literal{LKind: value.LitUndefined}})
			continue
		}
		arr.Elements = append(arr.Elements, ip.evalExpr(el))
	}
	return value.Entity{Value: arr, Dep: nodeDep(n.ID())}
}

// evalFunctionExpr allocates a Function value bound to the variable scope
// active right now (the closure's lexical capture), recording a closureInfo
// so a later call can replay the body against this exact scope rather than
// whatever scope happens to be active at the call site.
func (ip *Interpreter) evalFunctionExpr(n *ast.FunctionNode) value.Entity {
	kind := value.FnNormal
	switch {
	case n.IsArrow:
		kind = value.FnArrow
	case n.Async && n.Generator:
		kind = value.FnAsyncGenerator
	case n.Async:
		kind = value.FnAsync
	case n.Generator:
		kind = value.FnGenerator
	}
	lexical := ip.allocLexical()
	fn := ip.A.Factory().NewFunction(n.ID(), kind, lexical)
	info := &closureInfo{
		binder:        ip.binder,
		table:         ip.curTable,
		moduleID:      ip.curModule,
		capturedScope: ip.A.Stack.VarScope(),
		params:        n.Params,
		body:          n.Body,
		isArrow:       n.IsArrow,
	}
	if n.Name != "" && !n.IsArrow {
		info.hasSelf = true
		info.selfName = n.Name
		info.selfSym = ip.curTable.Declare(n.Name)
	}
	ip.closures[fn.ID] = info
	return value.Entity{Value: fn, Dep: nodeDep(n.ID())}
}

// evalJSX builds a ReactElement directly rather than dispatching through
// the Value interface: a JSX tag is either a host tag (lowercase-leading
// Identifier, carried as a plain string per spec.md, never resolved against
// the binder) or a component reference (resolved like any other
// identifier/member expression).
func (ip *Interpreter) evalJSX(n *ast.JSXElement) value.Entity {
	tag := ip.evalJSXTag(n.Tag)
	props := ip.A.Factory().NewObject(currentCfID(ip.A))
	for _, attr := range n.Attributes {
		var val value.Entity
		if attr.Value == nil {
			val = value.Entity{Value: &value.Literal{LKind: value.LitBoolean, Bool: true}}
		} else {
			val = ip.evalExpr(attr.Value)
		}
		props.SetProperty(ip.A, nodeDep(n.ID()), value.StringKey(attr.Name), val)
	}
	for _, spread := range n.Spreads {
		ip.A.Consume(ip.evalExpr(spread).Dep)
		ip.A.Consume(depgraph.OfConsumer(props))
	}
	children := make([]value.Entity, 0, len(n.Children))
	for _, c := range n.Children {
		children = append(children, ip.evalExpr(c))
	}
	propsEntity := value.Entity{Value: props}
	if len(children) > 0 {
		arr := ip.A.Factory().NewArray(currentCfID(ip.A))
		for _, c := range children {
			arr.Elements = append(arr.Elements, c)
		}
		props.SetProperty(ip.A, nodeDep(n.ID()), value.StringKey("children"), value.Entity{Value: arr})
	}
	dep := nodeDep(n.ID())
	el := ip.A.Factory().NewReactElement(tag, propsEntity, children)
	ip.A.Graph().Refer(n.ID())
	return value.Entity{Value: el, Dep: dep}
}

func (ip *Interpreter) evalJSXTag(e ast.Expr) value.Entity {
	if id, ok := e.(*ast.Identifier); ok && isHostTagName(id.Name) {
		return value.Entity{Value: &value.Literal{LKind: value.LitString, Str: id.Name}, Dep: nodeDep(id.ID())}
	}
	return ip.evalExpr(e)
}

func isHostTagName(name string) bool {
	return name != "" && name[0] >= 'a' && name[0] <= 'z'
}
