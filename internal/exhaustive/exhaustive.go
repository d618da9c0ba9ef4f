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

// Package exhaustive implements the exhaustive fixpoint driver of spec.md
// section 4.3: repeatedly re-run a CF scope's body until an iteration makes
// no new observations (clean), subject to a 1000-iteration guard against
// runaway analyzer recursion, then register the scope's accumulated
// register_deps as callback subscribers for the post-analysis driver.
//
// Grounded on cuelang.org/go/internal/core/adt's sched.go condition/signal
// bitset machinery (reused here as the clean-vs-dirty tracker) and
// comprehension.go's re-run-until-stable comprehension loop.
package exhaustive

import (
	"fmt"

	"github.com/jsshaker/shaker/internal/scope"
)

// MaxIterations bounds exec_exhaustively's retry loop, per spec.md section
// 4.3: exceeding it indicates unbounded recursion in the analyzed program
// (or a genuine analyzer bug) rather than a slow-but-terminating fixpoint.
const MaxIterations = 1000

// ErrUnboundedRecursion is returned when a single exhaustive scope fails to
// settle within MaxIterations iterations.
var ErrUnboundedRecursion = fmt.Errorf("exhaustive scope exceeded %d iterations: unbounded recursion in analyzer", MaxIterations)

// Callback is registered against the final register_deps set of one
// exhaustive run; the Registry re-invokes it once any of those targets is
// later marked dirty, per spec.md: "the post-analysis driver repeatedly
// drains the queue."
type Callback struct {
	Targets map[scope.ReadWriteTarget]bool
	Run     func() error
	OneShot bool
	fired   bool
}

// Registry accumulates exhaustive callbacks across an entire analysis and
// serves the post-analysis driver's drain loop (internal/analyzer's Finalize).
type Registry struct {
	callbacks []*Callback
	pending   []*Callback
}

// NewRegistry creates an empty callback registry, one per analysis.
func NewRegistry() *Registry { return &Registry{} }

// Register adds cb to the registry. Persistent (non-one-shot) callbacks
// remain registered after firing, so later dirtying re-queues them again.
func (r *Registry) Register(cb *Callback) {
	r.callbacks = append(r.callbacks, cb)
}

// RequestCallbacks implements "request_exhaustive_callbacks(target)": any
// registered callback whose target set contains target (or its ObjectAll
// coarsening, which the caller is responsible for also passing when
// relevant) moves into the pending queue exactly once per dirtying event.
func (r *Registry) RequestCallbacks(target scope.ReadWriteTarget) {
	for _, cb := range r.callbacks {
		if cb.fired && cb.OneShot {
			continue
		}
		if cb.Targets[target] {
			r.pending = append(r.pending, cb)
		}
	}
}

// DrainPending runs every pending callback once, removing one-shot
// callbacks from the registry after they fire. Returns the number of
// callbacks run, so the post-analysis driver can tell whether a fixpoint
// iteration made progress.
func (r *Registry) DrainPending() (int, error) {
	pending := r.pending
	r.pending = nil
	ran := 0
	for _, cb := range pending {
		cb.fired = true
		if err := cb.Run(); err != nil {
			return ran, err
		}
		ran++
	}
	if len(pending) > 0 {
		kept := r.callbacks[:0]
		for _, cb := range r.callbacks {
			if cb.OneShot && cb.fired {
				continue
			}
			kept = append(kept, cb)
		}
		r.callbacks = kept
	}
	return ran, nil
}

// Run implements exec_exhaustively(runner, drain, register): push an
// Exhaustive CF scope on st, invoke runner repeatedly until a clean
// iteration (or a terminating exit) is observed, then, if register is
// true, hand the final register_deps set to the registry as a new
// subscriber.
func Run(st *scope.Stack, registry *Registry, drain bool, register bool, runner func() error) error {
	cs := st.Push(scope.CfExhaustive)
	for {
		cs.ExhaustiveD.Iterations++
		if cs.ExhaustiveD.Iterations > MaxIterations {
			return ErrUnboundedRecursion
		}
		cs.Exited = scope.ExitNone
		if err := runner(); err != nil {
			return err
		}
		if cs.ExhaustiveD.Clean || cs.Exited == scope.ExitTrue {
			break
		}
		cs.ExhaustiveD.TempDeps = make(map[scope.ReadWriteTarget]bool)
		cs.ExhaustiveD.Clean = true
	}
	if register {
		targets := cs.ExhaustiveD.RegisterDeps
		registry.Register(&Callback{
			Targets: targets,
			Run:     runner,
			OneShot: drain,
		})
	}
	st.Pop(nil)
	return nil
}
