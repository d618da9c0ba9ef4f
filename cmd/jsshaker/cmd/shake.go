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
	"os"

	"github.com/google/uuid"

	"github.com/jsshaker/shaker/internal/config"
	"github.com/jsshaker/shaker/internal/shaker"
	"github.com/jsshaker/shaker/internal/vfs"
)

// runShake is the root command's RunE: spec.md section 6's CLI contract
// (jsshaker <path> [flags]) wired through shaker.TreeShake.
func runShake(cmd *Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	v, entryPath, err := resolveVFS(cmd, args[0])
	if err != nil {
		return err
	}

	runID := flagTraceID.String(cmd)
	if runID == "" {
		runID = uuid.NewString()
	}

	runOnce := func() (*shaker.Result, error) {
		return shaker.TreeShake(shaker.Options{
			VFS:       v,
			Parser:    cmd.parser,
			Config:    cfg,
			EntryPath: entryPath,
			RunID:     runID,
		})
	}

	result, err := runOnce()
	if err != nil {
		return err
	}
	if err := emitReport(cmd, result, flagNoShake.Bool(cmd)); err != nil {
		return err
	}

	if flagWatch.Bool(cmd) {
		return watchAndRerun(cmd, result, runOnce)
	}
	return nil
}

func resolveConfig(cmd *Command) (*config.TreeShakeConfig, error) {
	cfg, err := config.Preset(flagPreset.String(cmd))
	if err != nil {
		return nil, err
	}
	if p := flagConfig.String(cmd); p != "" {
		cfg, err = config.LoadFile(p, cfg)
		if err != nil {
			return nil, err
		}
	}
	if flagNoMangle.Bool(cmd) {
		cfg.Mangling = config.ManglingOff
	}
	if flagJSX.Bool(cmd) {
		cfg.JSX = config.JSXReact
	}
	if d := flagRecursionDepth.Int(cmd); d > 0 {
		cfg.MaxRecursionDepth = d
	}
	return cfg, nil
}

func resolveVFS(cmd *Command, path string) (vfs.VFS, string, error) {
	if flagSingleFile.Bool(cmd) {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, "", fmt.Errorf("jsshaker: read %s: %w", path, err)
		}
		return &vfs.SingleFile{Source: string(src)}, "/entry.js", nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("jsshaker: %w", err)
	}
	return &vfs.OSFS{CWD: wd}, path, nil
}

func emitReport(cmd *Command, result *shaker.Result, noShake bool) error {
	report := BuildReport(result, noShake)
	if out := flagOutput.String(cmd); out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("jsshaker: write %s: %w", out, err)
		}
		defer f.Close()
		return WriteReport(f, report)
	}
	return WriteReport(cmd.OutOrStdout(), report)
}
