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
	"github.com/jsshaker/shaker/internal/scope"
	"github.com/jsshaker/shaker/internal/value"
)

// evalClassExpr evaluates a class declaration/expression into a
// FnClassConstructor Function value, the constructor's own Statics object
// holding static members. Instance methods and fields are not installed
// onto a shared prototype object - the minimal value.Object has no
// prototype-chain lookup - so installInstanceMembers instead copies every
// instance member onto the fresh instance object once per construction.
// Every instance therefore carries its own per-instance method closures
// rather than sharing one; this is conservative for dead-code elimination,
// since each member is still read, written and referenced exactly as a
// shared prototype's would be.
func (ip *Interpreter) evalClassExpr(n *ast.ClassNode) value.Entity {
	for _, d := range n.Decorators {
		ip.A.Consume(ip.evalExpr(d.Expression).Dep)
	}

	var superCtor *value.Function
	if n.SuperClass != nil {
		superVal := ip.evalExpr(n.SuperClass)
		if f, ok := superVal.Value.(*value.Function); ok {
			superCtor = f
		} else {
			ip.A.Consume(superVal.Dep)
		}
	}

	lexical := ip.allocLexical()
	statics := ip.A.Factory().NewObject(currentCfID(ip.A))
	var ctorNode *ast.FunctionNode
	var instanceFields, instanceMethods []*ast.ClassMember

	for _, m := range n.Members {
		for _, d := range m.Decorators {
			ip.A.Consume(ip.evalExpr(d.Expression).Dep)
		}
		name := literalKeyName(m.Key)
		if m.IsMethod {
			fnNode, ok := m.Value.(*ast.FunctionNode)
			if !ok {
				continue
			}
			switch {
			case !m.Static && name == "constructor":
				ctorNode = fnNode
			case m.Static:
				val := ip.evalFunctionExpr(fnNode)
				statics.SetProperty(ip.A, nodeDep(n.ID()), value.StringKey(name), val)
			default:
				instanceMethods = append(instanceMethods, m)
			}
			continue
		}
		if m.Static {
			var val value.Entity
			if m.Value != nil {
				val = ip.evalExpr(m.Value)
			} else {
				val = value.Entity{Value: &value.Literal{LKind: value.LitUndefined}}
			}
			statics.SetProperty(ip.A, nodeDep(n.ID()), value.StringKey(name), val)
		} else {
			instanceFields = append(instanceFields, m)
		}
	}

	fn := ip.A.Factory().NewFunction(n.ID(), value.FnClassConstructor, lexical)
	fn.Statics = statics

	info := &closureInfo{
		binder:          ip.binder,
		table:           ip.curTable,
		moduleID:        ip.curModule,
		capturedScope:   ip.A.Stack.VarScope(),
		instanceFields:  instanceFields,
		instanceMethods: instanceMethods,
		superCtor:       superCtor,
	}
	if ctorNode != nil {
		info.params = ctorNode.Params
		info.body = ctorNode.Body
	} else {
		// implicit default constructor: a derived class's runs `super(...args)`
		// implicitly, which this interpreter does not synthesize (no AST node
		// to attribute it to); callSuperCtor is only ever reached from an
		// explicit super(...) call, so a subclass relying on the implicit
		// default constructor to forward to its parent sees only its own
		// instance members installed, not the parent's. Documented
		// simplification.
		info.body = &ast.BlockStatement{}
	}
	if n.Name != "" {
		info.hasSelf = true
		info.selfName = n.Name
		info.selfSym = ip.curTable.Declare(n.Name)
	}
	ip.closures[fn.ID] = info
	return value.Entity{Value: fn, Dep: nodeDep(n.ID())}
}

func (ip *Interpreter) execClassDecl(n *ast.ClassNode) {
	val := ip.evalClassExpr(n)
	if n.Name == "" {
		return
	}
	sym, exists := ip.binder.resolve(n.Name)
	if !exists {
		sym = ip.curTable.Declare(n.Name)
		ip.binder.declare(n.Name, sym)
	}
	ip.curTable.RecordWrite(sym, n.ID())
	vs := ip.A.Stack.VarScope()
	vs.Declare(sym, &scope.Variable{Kind: scope.VarKindLet, Initialized: true, Value: val, DeclNode: n.ID()})
}

// installInstanceMembers runs once per construction, from runClosureBody,
// right before a class constructor's own body executes: evaluate each
// instance field initializer with `this` already bound, and copy every
// instance method closure onto the fresh instance object.
func (ip *Interpreter) installInstanceMembers(info *closureInfo, this value.Entity) {
	obj, ok := this.Value.(*value.Object)
	if !ok {
		return
	}
	for _, f := range info.instanceFields {
		name := literalKeyName(f.Key)
		var val value.Entity
		if f.Value != nil {
			val = ip.evalExpr(f.Value)
		} else {
			val = value.Entity{Value: &value.Literal{LKind: value.LitUndefined}}
		}
		obj.SetProperty(ip.A, nodeDep(f.Key.ID()), value.StringKey(name), val)
	}
	for _, m := range info.instanceMethods {
		fnNode := m.Value.(*ast.FunctionNode)
		methodVal := ip.evalFunctionExpr(fnNode)
		obj.SetProperty(ip.A, nodeDep(fnNode.ID()), value.StringKey(literalKeyName(m.Key)), methodVal)
	}
}
