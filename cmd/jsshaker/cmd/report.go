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
	"encoding/json"
	"io"
	"sort"

	"github.com/jsshaker/shaker/internal/shaker"
)

// Report is what this CLI writes to --output (or stdout): since spec.md
// section 1 treats codegen as an external collaborator, this repo has no
// rewritten source text to emit. Report is the CLI's stand-in for
// codegen_return - a deterministic, per-module accounting of the same
// keep/drop decisions a codegen step would apply.
type Report struct {
	RunID       string         `json:"run_id"`
	Diagnostics []string       `json:"diagnostics,omitempty"`
	Modules     []ModuleReport `json:"modules"`
}

// ModuleReport summarizes one module's transform.ModulePlan.
type ModuleReport struct {
	Path                string `json:"path"`
	KeptDeclarations    int    `json:"kept_declarations"`
	DroppedDeclarations int    `json:"dropped_declarations"`
	DeadBranches        int    `json:"dead_branches"`
}

// BuildReport walks result.Plan deterministically (sorted module paths) so
// two runs over the same input produce byte-identical JSON, per spec.md
// section 8's Idempotence property. When noShake is set (the CLI's
// -n/--no-shake flag), every declaration is reported kept regardless of
// mp.Keep, matching that flag's "report every declaration as kept"
// contract without a second analyzer code path.
func BuildReport(result *shaker.Result, noShake bool) *Report {
	r := &Report{
		RunID:       result.RunID,
		Diagnostics: result.Diagnostics.Strings(),
	}
	paths := make([]string, 0, len(result.Plan.Modules))
	for p := range result.Plan.Modules {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		mp := result.Plan.Modules[p]
		mr := ModuleReport{Path: p}
		for _, kept := range mp.Keep {
			if kept || noShake {
				mr.KeptDeclarations++
			} else {
				mr.DroppedDeclarations++
			}
		}
		for _, b := range mp.Branches {
			if b.Dead() && !noShake {
				mr.DeadBranches++
			}
		}
		r.Modules = append(r.Modules, mr)
	}
	return r
}

// WriteReport encodes r as indented JSON to w.
func WriteReport(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
