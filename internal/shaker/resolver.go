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

	"github.com/jsshaker/shaker/internal/ast"
	"github.com/jsshaker/shaker/internal/vfs"
)

// moduleResolver implements visit.ModuleResolver on top of a vfs.VFS and a
// Parser, caching each module's parsed Program (and, for pragma scanning,
// its normalized source text) so a diamond-shaped import graph parses
// every module exactly once.
type moduleResolver struct {
	vfs      vfs.VFS
	parser   Parser
	programs map[string]*ast.Program
	sources  map[string]string
}

func newModuleResolver(v vfs.VFS, p Parser) *moduleResolver {
	return &moduleResolver{
		vfs:      v,
		parser:   p,
		programs: make(map[string]*ast.Program),
		sources:  make(map[string]string),
	}
}

// Resolve implements visit.ModuleResolver.
func (m *moduleResolver) Resolve(fromPath, specifier string) (string, *ast.Program, error) {
	path, ok := m.vfs.ResolveModule(fromPath, specifier)
	if !ok {
		return "", nil, fmt.Errorf("jsshaker: cannot resolve %q from %q", specifier, fromPath)
	}
	prog, err := m.load(path)
	if err != nil {
		return "", nil, err
	}
	return path, prog, nil
}

// load parses path's source once and caches both the program and its text.
func (m *moduleResolver) load(path string) (*ast.Program, error) {
	if prog, ok := m.programs[path]; ok {
		return prog, nil
	}
	src, err := m.vfs.ReadFile(path)
	if err != nil {
		return nil, err
	}
	prog, err := m.parser.Parse(path, src)
	if err != nil {
		return nil, fmt.Errorf("jsshaker: parse %s: %w", path, err)
	}
	m.programs[path] = prog
	m.sources[path] = src
	return prog, nil
}
