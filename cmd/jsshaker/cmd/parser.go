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

package cmd

import (
	"fmt"

	"github.com/jsshaker/shaker/internal/ast"
)

// parserFunc adapts a function literal to shaker.Parser, so tests can swap
// in a fixture parser without defining a named type.
type parserFunc func(path, source string) (*ast.Program, error)

func (f parserFunc) Parse(path, source string) (*ast.Program, error) {
	return f(path, source)
}

// stubParser is the default front end: spec.md section 1 lists the parser
// as an external collaborator, and no JS parser exists anywhere in this
// repo's source material to ground a concrete one against. Wiring a real
// one in is a matter of satisfying shaker.Parser and assigning it to
// Command.parser before Run.
func stubParser(path, _ string) (*ast.Program, error) {
	return nil, fmt.Errorf("jsshaker: no JS front end is wired into this build (parsing %s); see shaker.Parser", path)
}
