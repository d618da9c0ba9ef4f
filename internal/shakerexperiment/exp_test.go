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

package shakerexperiment

import (
	"testing"

	"github.com/go-quicktest/qt"
)

// resetFlags clears the package-global Flags so each test starts from a
// known state; Init (unlike shakerdebug's) is not a sync.OnceValue and only
// ever turns bits on, never off, so tests must reset between runs.
func resetFlags(t *testing.T) {
	t.Helper()
	Flags = struct {
		FiniteRecursion   bool
		ClassStaticBlocks bool
	}{}
	t.Cleanup(func() {
		Flags = struct {
			FiniteRecursion   bool
			ClassStaticBlocks bool
		}{}
	})
}

func TestInitEmptyEnvIsNoOp(t *testing.T) {
	resetFlags(t)
	t.Setenv("JSSHAKER_EXPERIMENT", "")
	qt.Assert(t, qt.IsNil(Init()))
	qt.Assert(t, qt.IsFalse(Flags.FiniteRecursion))
	qt.Assert(t, qt.IsFalse(Flags.ClassStaticBlocks))
}

func TestInitEnablesNamedFlag(t *testing.T) {
	resetFlags(t)
	t.Setenv("JSSHAKER_EXPERIMENT", "finiterecursion")
	qt.Assert(t, qt.IsNil(Init()))
	qt.Assert(t, qt.IsTrue(Flags.FiniteRecursion))
	qt.Assert(t, qt.IsFalse(Flags.ClassStaticBlocks))
}

func TestInitEnablesMultipleFlags(t *testing.T) {
	resetFlags(t)
	t.Setenv("JSSHAKER_EXPERIMENT", "finiterecursion,classstaticblocks")
	qt.Assert(t, qt.IsNil(Init()))
	qt.Assert(t, qt.IsTrue(Flags.FiniteRecursion))
	qt.Assert(t, qt.IsTrue(Flags.ClassStaticBlocks))
}

func TestInitUnknownFlagErrors(t *testing.T) {
	resetFlags(t)
	t.Setenv("JSSHAKER_EXPERIMENT", "bogus")
	err := Init()
	qt.Assert(t, qt.ErrorMatches(err, "unknown JSSHAKER_EXPERIMENT bogus"))
}

func TestInitIsAdditiveAcrossCalls(t *testing.T) {
	resetFlags(t)
	t.Setenv("JSSHAKER_EXPERIMENT", "finiterecursion")
	qt.Assert(t, qt.IsNil(Init()))

	t.Setenv("JSSHAKER_EXPERIMENT", "classstaticblocks")
	qt.Assert(t, qt.IsNil(Init()))

	// Init only ever sets bits true; a flag enabled by an earlier call
	// stays enabled even though this call's env string doesn't name it.
	qt.Assert(t, qt.IsTrue(Flags.FiniteRecursion))
	qt.Assert(t, qt.IsTrue(Flags.ClassStaticBlocks))
}
