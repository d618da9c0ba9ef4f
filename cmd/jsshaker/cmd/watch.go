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
	"os/signal"

	"github.com/fsnotify/fsnotify"

	"github.com/jsshaker/shaker/internal/shaker"
	"github.com/jsshaker/shaker/internal/vfs"
)

// watchAndRerun implements --watch: it registers every module path the
// first run actually resolved with a vfs.Watcher, then re-runs runOnce
// (and re-emits the report) each time fsnotify reports a write, until the
// process receives an interrupt. Paths belonging to an in-memory VFS have
// nothing on disk to watch, so Add errors for them are expected and
// swallowed rather than treated as fatal, per vfs.Watcher's own doc
// comment.
func watchAndRerun(cmd *Command, first *shaker.Result, runOnce func() (*shaker.Result, error)) error {
	w, err := vfs.NewWatcher()
	if err != nil {
		return fmt.Errorf("jsshaker: watch: %w", err)
	}
	defer w.Close()

	for path := range first.Plan.Modules {
		_ = w.Add(path)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)

	for {
		select {
		case <-interrupt:
			return nil
		case err := <-w.Errors:
			fmt.Fprintln(cmd.Stderr(), err)
		case ev := <-w.Events:
			if !ev.Op.Has(fsnotify.Write) {
				continue
			}
			result, err := runOnce()
			if err != nil {
				fmt.Fprintln(cmd.Stderr(), err)
				continue
			}
			if err := emitReport(cmd, result, flagNoShake.Bool(cmd)); err != nil {
				fmt.Fprintln(cmd.Stderr(), err)
				continue
			}
			for path := range result.Plan.Modules {
				_ = w.Add(path)
			}
		}
	}
}
