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
	"fmt"
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/jsshaker/shaker/internal/ast"
	"github.com/jsshaker/shaker/internal/config"
	"github.com/jsshaker/shaker/internal/vfs"
)

// fixtureParser hands back a pre-built Program per path, standing in for a
// real front end (see the package doc on Parser being a collaborator).
type fixtureParser struct {
	programs map[string]*ast.Program
	nextID   int
}

func (p *fixtureParser) Parse(path, _ string) (*ast.Program, error) {
	prog, ok := p.programs[path]
	if !ok {
		return nil, fmt.Errorf("no fixture for %s", path)
	}
	return prog, nil
}

func (p *fixtureParser) id() ast.NodeId {
	p.nextID++
	return ast.NodeId(p.nextID)
}

var fixturePos = ast.Position{Path: "fixture", StartLine: 1}

// buildEntryLibProgram wires two modules by hand:
//
//	// /entry.js
//	import { used } from "./lib.js";
//	console.log(used);
//
//	// /lib.js
//	export const used = 1;
//	export const unused = 2;
func buildEntryLibPrograms(p *fixtureParser) (entry, lib *ast.Program) {
	importDecl := &ast.ImportDeclaration{
		Base:       ast.NewBase(p.id(), fixturePos),
		Source:     "./lib.js",
		Specifiers: []*ast.ImportSpecifier{{Imported: "used", Local: "used"}},
	}
	consoleRef := &ast.Identifier{Base: ast.NewBase(p.id(), fixturePos), Name: "console"}
	logProp := &ast.Identifier{Base: ast.NewBase(p.id(), fixturePos), Name: "log"}
	callLog := &ast.CallExpression{
		Base: ast.NewBase(p.id(), fixturePos),
		Callee: &ast.MemberExpression{
			Base:     ast.NewBase(p.id(), fixturePos),
			Object:   consoleRef,
			Property: logProp,
		},
		Arguments: []ast.Expr{&ast.Identifier{Base: ast.NewBase(p.id(), fixturePos), Name: "used"}},
	}
	entry = &ast.Program{
		Base: ast.NewBase(p.id(), fixturePos),
		Body: []ast.Stmt{
			importDecl,
			&ast.ExpressionStatement{Base: ast.NewBase(p.id(), fixturePos), Expression: callLog},
		},
	}

	usedDecl := &ast.VariableDeclarator{
		Base: ast.NewBase(p.id(), fixturePos),
		Name: &ast.Identifier{Name: "used"},
		Init: &ast.NumberLiteral{Base: ast.NewBase(p.id(), fixturePos), Value: 1},
	}
	unusedDecl := &ast.VariableDeclarator{
		Base: ast.NewBase(p.id(), fixturePos),
		Name: &ast.Identifier{Name: "unused"},
		Init: &ast.NumberLiteral{Base: ast.NewBase(p.id(), fixturePos), Value: 2},
	}
	usedExport := &ast.ExportNamedDeclaration{
		Base:        ast.NewBase(p.id(), fixturePos),
		Declaration: &ast.VariableDeclaration{Kind: ast.VarConst, Declarations: []*ast.VariableDeclarator{usedDecl}},
	}
	unusedExport := &ast.ExportNamedDeclaration{
		Base:        ast.NewBase(p.id(), fixturePos),
		Declaration: &ast.VariableDeclaration{Kind: ast.VarConst, Declarations: []*ast.VariableDeclarator{unusedDecl}},
	}
	lib = &ast.Program{
		Base: ast.NewBase(p.id(), fixturePos),
		Body: []ast.Stmt{usedExport, unusedExport},
	}
	return entry, lib
}

func TestTreeShakeDropsUnusedNamedExport(t *testing.T) {
	parser := &fixtureParser{programs: map[string]*ast.Program{}}
	entry, lib := buildEntryLibPrograms(parser)
	parser.programs["/entry.js"] = entry
	parser.programs["/lib.js"] = lib

	vf := &vfs.MultiFile{
		Entry: "/entry.js",
		Files: map[string]string{
			"/entry.js": "import { used } from \"./lib.js\";\nconsole.log(used);\n",
			"/lib.js":   "export const used = 1;\nexport const unused = 2;\n",
		},
	}

	result, err := TreeShake(Options{
		VFS:       vf,
		Parser:    parser,
		Config:    config.Recommended(),
		EntryPath: "/entry.js",
	})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsNotNil(result))
	qt.Assert(t, qt.Not(qt.Equals(result.RunID, "")))

	libPlan := result.Plan.Modules["/lib.js"]
	qt.Assert(t, qt.IsNotNil(libPlan))

	var usedDecl, unusedDecl *ast.VariableDeclarator
	for _, stmt := range lib.Body {
		exp := stmt.(*ast.ExportNamedDeclaration)
		decl := exp.Declaration.(*ast.VariableDeclaration).Declarations[0]
		if decl.Name.(*ast.Identifier).Name == "used" {
			usedDecl = decl
		} else {
			unusedDecl = decl
		}
	}
	qt.Assert(t, qt.IsTrue(libPlan.KeepNode(usedDecl.ID())))
	qt.Assert(t, qt.IsFalse(libPlan.KeepNode(unusedDecl.ID())))
}

func TestTreeShakeRequiresVFSAndParser(t *testing.T) {
	_, err := TreeShake(Options{})
	qt.Assert(t, qt.IsNotNil(err))
}
