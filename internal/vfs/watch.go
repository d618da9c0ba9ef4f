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

package vfs

import (
	"github.com/fsnotify/fsnotify"
)

// Watcher wraps fsnotify for the CLI's `--watch` flag: re-run tree_shake
// whenever any previously-read file changes. Only OSFS-backed VFS
// implementations benefit from watching; the in-memory variants have
// nothing on disk to watch.
type Watcher struct {
	w       *fsnotify.Watcher
	Events  <-chan fsnotify.Event
	Errors  <-chan error
}

// NewWatcher starts an fsnotify watcher with no paths registered yet.
func NewWatcher() (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{w: w, Events: w.Events, Errors: w.Errors}, nil
}

// Add registers path for change notification; the CLI calls it for every
// module path an analysis run resolved, after the first run and again
// after each re-run.
func (w *Watcher) Add(path string) error {
	return w.w.Add(path)
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.w.Close()
}
