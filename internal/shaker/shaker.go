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

// Package shaker is the driver entry point of spec.md section 6:
// TreeShake wires a VFS, a TreeShakeConfig and a Parser together, drives
// module loading through internal/visit, runs internal/analyzer's
// post-analysis fixpoint, and hands the result to internal/transform to
// build a Plan.
//
// Parsing, the AST itself and code generation are external collaborators
// per spec.md section 1 - this package never constructs an AST node and
// never emits JS text. Callers supply a Parser; TreeShake's Result carries
// the Plan a real code generator would consult to decide what to emit,
// standing in for spec.md's codegen_return until one is wired in.
//
// Grounded structurally on cuelang.org/go/cmd/cue/cmd's buildInstances
// flow (load config -> resolve entry -> run -> collect diagnostics).
package shaker

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/jsshaker/shaker/internal/analyzer"
	"github.com/jsshaker/shaker/internal/ast"
	"github.com/jsshaker/shaker/internal/builtins"
	"github.com/jsshaker/shaker/internal/config"
	"github.com/jsshaker/shaker/internal/diagnostics"
	"github.com/jsshaker/shaker/internal/shakerexperiment"
	"github.com/jsshaker/shaker/internal/transform"
	"github.com/jsshaker/shaker/internal/vfs"
	"github.com/jsshaker/shaker/internal/visit"
)

// Parser turns one module's source text into a parsed Program with stable
// node identities. Supplying a real one (a hand-written recursive-descent
// parser, or a binding to an existing JS/TS parser) is the caller's
// responsibility; this package treats it purely as a collaborator.
type Parser interface {
	Parse(path, source string) (*ast.Program, error)
}

// Options configures one TreeShake run.
type Options struct {
	VFS       vfs.VFS
	Parser    Parser
	Config    *config.TreeShakeConfig
	EntryPath string

	// RunID correlates this run's diagnostics across retries (the CLI's
	// --watch flag re-invokes TreeShake on every change); a random one is
	// minted if left empty.
	RunID string
}

// Result is the outcome of one TreeShake run.
type Result struct {
	RunID       string
	Plan        *transform.Plan
	Diagnostics diagnostics.List
}

// TreeShake resolves opts.EntryPath against opts.VFS, loads and executes
// the whole reachable module graph, runs the post-analysis fixpoint, and
// builds a Plan recording which declarations and conditional branches
// survive.
func TreeShake(opts Options) (*Result, error) {
	if opts.VFS == nil {
		return nil, fmt.Errorf("jsshaker: no VFS configured")
	}
	if opts.Parser == nil {
		return nil, fmt.Errorf("jsshaker: no Parser configured")
	}
	if err := shakerexperiment.Init(); err != nil {
		return nil, err
	}

	cfg := opts.Config
	if cfg == nil {
		cfg = config.Recommended()
	}
	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	entryPath, ok := opts.VFS.ResolveModule("", opts.EntryPath)
	if !ok {
		return nil, fmt.Errorf("jsshaker: cannot resolve entry %q", opts.EntryPath)
	}

	mr := newModuleResolver(opts.VFS, opts.Parser)
	entryProgram, err := mr.load(entryPath)
	if err != nil {
		return nil, err
	}

	a := analyzer.New(cfg)
	ip := visit.New(a, mr)
	builtins.Install(ip)

	if shakerexperiment.Flags.FiniteRecursion {
		scanFiniteRecursionPragmas(ip, entryPath, mr)
	}

	info := ip.LoadAndExec(entryPath, entryProgram)

	// The entry module is never imported by anything else, so without
	// forcing its exports live here they would look identical to an
	// unused re-export and get pruned; every other module's exports are
	// only kept insofar as some importer actually consumes them.
	a.Loader.ConsumeExports(a.Graph(), info.ID)

	if err := a.Finalize(); err != nil {
		return nil, err
	}

	plan := transform.Build(a.Loader, a.Graph(), a.Mangler, a.Cond, mr.programs)

	return &Result{
		RunID:       runID,
		Plan:        plan,
		Diagnostics: a.Diags.Sorted(),
	}, nil
}
