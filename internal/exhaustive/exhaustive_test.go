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

package exhaustive

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/jsshaker/shaker/internal/scope"
)

func newStack() *scope.Stack {
	return scope.NewStack(scope.NewVariableScope(0, nil))
}

func TestRunStopsAfterFirstCleanIteration(t *testing.T) {
	st := newStack()
	calls := 0
	err := Run(st, nil, false, false, func() error {
		calls++
		return nil
	})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(calls, 1))
}

func TestRunRetriesUntilAnIterationMakesNoNewObservations(t *testing.T) {
	st := newStack()
	calls := 0
	err := Run(st, nil, false, false, func() error {
		calls++
		if calls < 3 {
			st.Top().ExhaustiveD.Clean = false
		}
		return nil
	})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(calls, 3))
}

func TestRunStopsOnExitTrueEvenIfDirty(t *testing.T) {
	st := newStack()
	calls := 0
	err := Run(st, nil, false, false, func() error {
		calls++
		top := st.Top()
		top.ExhaustiveD.Clean = false
		top.Exited = scope.ExitTrue
		return nil
	})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(calls, 1))
}

func TestRunReturnsUnboundedRecursionPastMaxIterations(t *testing.T) {
	st := newStack()
	err := Run(st, nil, false, false, func() error {
		st.Top().ExhaustiveD.Clean = false
		return nil
	})
	qt.Assert(t, qt.Equals(err, ErrUnboundedRecursion))
}

func TestRunPropagatesRunnerError(t *testing.T) {
	st := newStack()
	err := Run(st, nil, false, false, func() error {
		return errFixture("boom")
	})
	qt.Assert(t, qt.ErrorMatches(err, "boom"))
}

type errFixture string

func (e errFixture) Error() string { return string(e) }

func TestRunRegistersCallbackWhenRequested(t *testing.T) {
	st := newStack()
	reg := NewRegistry()
	err := Run(st, reg, true, true, func() error { return nil })
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(len(reg.callbacks), 1))
	qt.Assert(t, qt.IsTrue(reg.callbacks[0].OneShot))
}

func TestRunSkipsRegistrationWhenNotRequested(t *testing.T) {
	st := newStack()
	reg := NewRegistry()
	err := Run(st, reg, false, false, func() error { return nil })
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(len(reg.callbacks), 0))
}

func TestRegistryDrainPendingRunsMatchingCallbacksOnce(t *testing.T) {
	target := scope.ReadWriteTarget{Kind: scope.RWVariable}
	oneShotRan, persistentRan := 0, 0
	oneShot := &Callback{
		Targets: map[scope.ReadWriteTarget]bool{target: true},
		Run:     func() error { oneShotRan++; return nil },
		OneShot: true,
	}
	persistent := &Callback{
		Targets: map[scope.ReadWriteTarget]bool{target: true},
		Run:     func() error { persistentRan++; return nil },
	}

	reg := NewRegistry()
	reg.Register(oneShot)
	reg.Register(persistent)

	reg.RequestCallbacks(target)
	ran, err := reg.DrainPending()
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(ran, 2))
	qt.Assert(t, qt.Equals(oneShotRan, 1))
	qt.Assert(t, qt.Equals(persistentRan, 1))

	// The one-shot callback is retired after firing; only the persistent
	// callback re-fires on a second dirtying event.
	reg.RequestCallbacks(target)
	ran, err = reg.DrainPending()
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(ran, 1))
	qt.Assert(t, qt.Equals(oneShotRan, 1))
	qt.Assert(t, qt.Equals(persistentRan, 2))
}

func TestRegistryRequestCallbacksIgnoresUnmatchedTarget(t *testing.T) {
	target := scope.ReadWriteTarget{Kind: scope.RWVariable}
	other := scope.ReadWriteTarget{Kind: scope.RWObjectAll}
	reg := NewRegistry()
	reg.Register(&Callback{
		Targets: map[scope.ReadWriteTarget]bool{target: true},
		Run:     func() error { return nil },
	})

	reg.RequestCallbacks(other)
	ran, err := reg.DrainPending()
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(ran, 0))
}
