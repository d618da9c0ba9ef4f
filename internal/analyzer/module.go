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

package analyzer

import (
	"fmt"

	"github.com/jsshaker/shaker/internal/ast"
	"github.com/jsshaker/shaker/internal/module"
	"github.com/jsshaker/shaker/internal/semantic"
)

// ModuleRunner is supplied by internal/visit: hoist declarations, visit
// statements in order, mark the module initialized, and replay any
// blocked_imports left by circular-import cycles, per spec.md section 4.7's
// exec_module.
type ModuleRunner func(a *Analyzer, info *module.Info, program *ast.Program)

// LoadModule allocates module bookkeeping for an already-parsed program
// (parsing is an external collaborator per spec.md section 1) and registers
// it with the loader, without yet executing its body.
func (a *Analyzer) LoadModule(path string, program *ast.Program) *module.Info {
	id := a.Factory_.NewModuleID()
	callAtom := a.Graph_.NextAtom()
	info := module.NewInfo(id, path, program.ID(), callAtom)
	a.Loader.Register(info)
	a.moduleTables[id] = semantic.NewTable()
	return info
}

// ExecModule runs runner over info/program exactly once, guarded against
// re-entrancy (a circular import reaching the same module again sees
// Initializing and defers to BlockedImports instead of re-entering).
func (a *Analyzer) ExecModule(info *module.Info, program *ast.Program, runner ModuleRunner) {
	if info.Initializing || info.Initialized {
		return
	}
	info.Initializing = true
	runner(a, info, program)
	info.Initializing = false
	info.Initialized = true
}

// Finalize implements spec.md section 4.8's post-analysis fixpoint driver:
// repeatedly drain pending exhaustive callbacks and resolve deoptimized
// conditional branches until a full round makes no further progress, or the
// 1000-iteration guard trips.
func (a *Analyzer) Finalize() error {
	const maxRounds = 1000
	for round := 0; round < maxRounds; round++ {
		before := a.Graph_.ReferredCount()
		n, err := a.Exh.DrainPending()
		if err != nil {
			return err
		}
		a.Cond.ResolveDeoptimized(a.Graph_)
		a.Cond.ConsumeSettledTests(a.Graph_)
		after := a.Graph_.ReferredCount()
		a.logFixpoint("round %d: %d callbacks drained, referred %d -> %d", round, n, before, after)
		if after == before && n == 0 {
			return nil
		}
	}
	return fmt.Errorf("tree-shake fixpoint did not converge after %d rounds", maxRounds)
}
