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
	"github.com/jsshaker/shaker/internal/depgraph"
	"github.com/jsshaker/shaker/internal/module"
	"github.com/jsshaker/shaker/internal/scope"
	"github.com/jsshaker/shaker/internal/value"
)

// pendingImport is what relinkImportBinding needs to finish a deferred
// import once its source module stops Initializing.
type pendingImport struct {
	targetID value.ModuleID
	specs    []*ast.ImportSpecifier
}

// resolveModule resolves specifier relative to fromPath and returns the
// target module's Info, loading and fully executing it if this is the
// first time any module has imported from that path. ok is false when
// there is no resolver wired in, or resolution itself failed (an
// unresolvable import degrades its bindings to Unknown rather than
// aborting the whole analysis).
func (ip *Interpreter) resolveModule(fromPath, specifier string) (*module.Info, bool) {
	if ip.Resolver == nil {
		return nil, false
	}
	path, program, err := ip.Resolver.Resolve(fromPath, specifier)
	if err != nil {
		return nil, false
	}
	if id, already := ip.A.Loader.LookupPath(path); already {
		return ip.A.Loader.Lookup(id), true
	}
	return ip.LoadAndExec(path, program), true
}

// execImport links one `import` statement's specifiers against their
// source module, deferring the whole declaration via pendingImports when
// that module turns out to still be Initializing (an import cycle) - see
// replayBlockedImports for how the deferred binding is finished.
func (ip *Interpreter) execImport(info *module.Info, imp *ast.ImportDeclaration) {
	target, ok := ip.resolveModule(info.Path, imp.Source)
	if !ok {
		ip.bindImportUnknown(imp)
		return
	}
	info.ResolvedImports[imp.Source] = target.ID

	if target.Initializing {
		ip.pendingImports[imp.ID()] = pendingImport{targetID: target.ID, specs: imp.Specifiers}
		info.BlockedImports = append(info.BlockedImports, module.BlockedImport{
			From:  target.ID,
			Scope: ip.curModuleScope.ID,
			Node:  imp.ID(),
		})
		for _, spec := range imp.Specifiers {
			// provisional binding; relinkImportBinding overwrites it once the
			// cycle resolves in this module's own exec_module tail.
			ip.declareModuleBinding(spec.Local, ip.A.Factory().ComputedUnknown(depgraph.OfNode(imp.ID())))
		}
		return
	}
	for _, spec := range imp.Specifiers {
		ip.bindImportSpecifier(target.ID, spec, imp.ID())
	}
}

func (ip *Interpreter) bindImportUnknown(imp *ast.ImportDeclaration) {
	ip.A.Graph().Refer(imp.ID())
	for _, spec := range imp.Specifiers {
		ip.declareModuleBinding(spec.Local, ip.A.Factory().ComputedUnknown(depgraph.OfNode(imp.ID())))
	}
}

// bindImportSpecifier resolves one imported name against the target
// module's exports and declares it into the current module's top-level
// scope. An empty Imported name is a default import; "*" is this
// interpreter's convention for a namespace import (the minimal AST has no
// dedicated node for `import * as ns`), binding the target's ModuleObject
// directly.
func (ip *Interpreter) bindImportSpecifier(targetID value.ModuleID, spec *ast.ImportSpecifier, nodeID ast.NodeId) {
	name := spec.Imported
	if name == "" {
		name = "default"
	}
	if name == "*" {
		target := ip.A.Loader.Lookup(targetID)
		ip.declareModuleBinding(spec.Local, value.Entity{Value: target.ModuleObjectValue, Dep: depgraph.OfNode(nodeID)})
		return
	}
	if e, ok := ip.A.Loader.GetExportValueByName(targetID, name, make(map[value.ModuleID]bool)); ok {
		ip.declareModuleBinding(spec.Local, value.Entity{Value: e.Value, Dep: depgraph.OfTuple(depgraph.OfNode(nodeID), e.Dep)})
		return
	}
	ip.A.Graph().Refer(nodeID)
	ip.declareModuleBinding(spec.Local, ip.A.Factory().ComputedUnknown(depgraph.OfNode(nodeID)))
}

func (ip *Interpreter) declareModuleBinding(name string, entity value.Entity) {
	sym, exists := ip.binder.resolve(name)
	if !exists {
		sym = ip.curTable.Declare(name)
		ip.binder.declare(name, sym)
	}
	ip.curModuleScope.Declare(sym, &scope.Variable{Kind: scope.VarKindConst, Initialized: true, Value: entity})
}

// relinkImportBinding finishes one import deferred by execImport, now that
// its source module has had a chance to finish initializing.
func (ip *Interpreter) relinkImportBinding(bi module.BlockedImport) {
	pi, ok := ip.pendingImports[bi.Node]
	if !ok {
		return
	}
	delete(ip.pendingImports, bi.Node)
	for _, spec := range pi.specs {
		ip.bindImportSpecifier(pi.targetID, spec, bi.Node)
	}
}

// execExportDecl handles the three export-statement shapes: a named export
// wrapping (or re-exporting) declarations/specifiers, a default export, and
// `export * [as ns] from`.
func (ip *Interpreter) execExportDecl(info *module.Info, stmt ast.Stmt) {
	switch n := stmt.(type) {
	case *ast.ExportNamedDeclaration:
		ip.execExportNamed(info, n)
	case *ast.ExportDefaultDeclaration:
		ip.execExportDefault(info, n)
	case *ast.ExportAllDeclaration:
		ip.execExportAll(info, n)
	}
}

func (ip *Interpreter) execExportNamed(info *module.Info, n *ast.ExportNamedDeclaration) {
	if n.Declaration != nil {
		ip.execStatement(n.Declaration)
		for _, name := range exportedNamesOf(n.Declaration) {
			sym, ok := ip.binder.resolve(name)
			if !ok {
				continue
			}
			info.NamedExports[name] = module.ExportedValue{
				Kind:   module.ExportVariable,
				Scope:  ip.curModuleScope.ID,
				Symbol: sym,
				Dep:    nodeDep(n.ID()),
			}
		}
		return
	}
	if n.Source != "" {
		target, ok := ip.resolveModule(info.Path, n.Source)
		for _, spec := range n.Specifiers {
			if !ok {
				info.NamedExports[spec.Exported] = module.ExportedValue{Kind: module.ExportUnknown, Dep: nodeDep(n.ID())}
				continue
			}
			info.NamedExports[spec.Exported] = module.ExportedValue{
				Kind:         module.ExportReExport,
				ReExportFrom: target.ID,
				ReExportName: spec.Local,
				Dep:          nodeDep(n.ID()),
			}
		}
		return
	}
	for _, spec := range n.Specifiers {
		sym, ok := ip.binder.resolve(spec.Local)
		if !ok {
			info.NamedExports[spec.Exported] = module.ExportedValue{Kind: module.ExportUnknown, Dep: nodeDep(n.ID())}
			continue
		}
		info.NamedExports[spec.Exported] = module.ExportedValue{
			Kind:   module.ExportVariable,
			Scope:  ip.curModuleScope.ID,
			Symbol: sym,
			Dep:    nodeDep(n.ID()),
		}
	}
}

func (ip *Interpreter) execExportDefault(info *module.Info, n *ast.ExportDefaultDeclaration) {
	var entity value.Entity
	switch d := n.Declaration.(type) {
	case *ast.FunctionNode:
		entity = ip.evalFunctionExpr(d)
	case *ast.ClassNode:
		entity = ip.evalClassExpr(d)
	case ast.Expr:
		entity = ip.evalExpr(d)
	default:
		ip.A.Graph().Refer(n.ID())
		entity = ip.A.Factory().ComputedUnknown(nodeDep(n.ID()))
	}
	info.DefaultExport = &entity
}

func (ip *Interpreter) execExportAll(info *module.Info, n *ast.ExportAllDeclaration) {
	target, ok := ip.resolveModule(info.Path, n.Source)
	if !ok {
		info.ReexportUnknown = true
		return
	}
	if n.As != "" {
		info.NamedExports[n.As] = module.ExportedValue{
			Kind:   module.ExportNamespace,
			Entity: value.Entity{Value: target.ModuleObjectValue, Dep: nodeDep(n.ID())},
			Dep:    nodeDep(n.ID()),
		}
		return
	}
	info.AddReexportAll(target.ID)
}

// exportedNamesOf reports every binding name a `export <declaration>`'s
// wrapped declaration introduces, so execExportNamed can register each one.
func exportedNamesOf(s ast.Stmt) []string {
	switch d := s.(type) {
	case *ast.VariableDeclaration:
		names := make([]string, 0, len(d.Declarations))
		for _, decl := range d.Declarations {
			if id, ok := decl.Name.(*ast.Identifier); ok {
				names = append(names, id.Name)
			}
		}
		return names
	case *ast.FunctionNode:
		if d.Name != "" {
			return []string{d.Name}
		}
	case *ast.ClassNode:
		if d.Name != "" {
			return []string{d.Name}
		}
	}
	return nil
}
