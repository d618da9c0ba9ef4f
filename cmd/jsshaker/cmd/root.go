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

// Package cmd builds the cobra command tree for jsshaker, following
// cmd/cue's own Command/runFunction/mkRunE shape: a thin *cobra.Command
// wrapper that centralizes one-time setup (experiment flags, error
// formatting) ahead of every subcommand's RunE.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jsshaker/shaker/internal/diagnostics"
	"github.com/jsshaker/shaker/internal/shakerexperiment"
)

// Command wraps the currently active *cobra.Command, mirroring cmd/cue's
// own Command type: one struct threaded through every runFunction instead
// of each subcommand reaching for package-level globals.
type Command struct {
	*cobra.Command

	root *cobra.Command

	// parser is the injected front end satisfying shaker.Parser. No
	// concrete implementation ships in this repo (spec.md section 1 lists
	// the parser as an external collaborator); stubParser below reports a
	// clear error instead of silently doing nothing.
	parser parserFunc

	hasErr bool
}

type errWriter Command

func (w *errWriter) Write(b []byte) (int, error) {
	c := (*Command)(w)
	if len(b) > 0 {
		c.hasErr = true
	}
	return c.Command.OutOrStderr().Write(b)
}

// Stderr returns a writer that marks the command's exit code non-zero as
// soon as anything is written to it, matching cmd/cue's own convention that
// os.Stderr is never written to directly.
func (c *Command) Stderr() io.Writer {
	return (*errWriter)(c)
}

// ErrPrintedError indicates the error has already been written to stderr
// via printError, so the caller must not print it again.
var ErrPrintedError = fmt.Errorf("jsshaker: terminating because of errors")

func printError(cmd *Command, err error) {
	if err == nil {
		return
	}
	if list, ok := err.(diagnostics.List); ok {
		for _, line := range list.Strings() {
			fmt.Fprintln(cmd.Stderr(), line)
		}
		return
	}
	fmt.Fprintln(cmd.Stderr(), err)
}

type runFunction func(cmd *Command, args []string) error

// mkRunE adapts a runFunction to cobra's RunE signature, running one-time
// setup (the shakerexperiment gate) before the subcommand body, the way
// cmd/cue's mkRunE initializes cueexperiment/cuedebug before every command.
func mkRunE(c *Command, f runFunction) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c.Command = cmd
		if err := shakerexperiment.Init(); err != nil {
			return err
		}
		return f(c, args)
	}
}

// New builds the root command. args is the slice cobra will parse
// (typically os.Args[1:]).
func New(args []string) (*Command, error) {
	root := &cobra.Command{
		Use:           "jsshaker <path>",
		Short:         "jsshaker tree-shakes a JavaScript entry module",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	c := &Command{Command: root, root: root, parser: stubParser}

	addShakeFlags(root.Flags())
	root.RunE = mkRunE(c, runShake)
	root.Args = cobra.ExactArgs(1)

	root.AddCommand(newVersionCmd(c))

	root.SetArgs(args)
	return c, nil
}

func (c *Command) Run(ctx context.Context) error {
	if err := c.root.ExecuteContext(ctx); err != nil {
		return err
	}
	if c.hasErr {
		return ErrPrintedError
	}
	return nil
}

// Main runs the jsshaker tool and returns the process exit code.
func Main() int {
	c, err := New(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := c.Run(context.Background()); err != nil {
		if err != ErrPrintedError {
			printError(c, err)
		}
		return 1
	}
	return 0
}
