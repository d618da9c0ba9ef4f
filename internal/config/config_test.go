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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-quicktest/qt"
)

func TestPresetResolvesKnownNames(t *testing.T) {
	for _, name := range []string{"", "recommended", "safest", "smallest"} {
		cfg, err := Preset(name)
		qt.Assert(t, qt.IsNil(err))
		qt.Assert(t, qt.IsNotNil(cfg))
	}
}

func TestPresetRejectsUnknownName(t *testing.T) {
	_, err := Preset("fastest")
	qt.Assert(t, qt.IsNotNil(err))
}

// TestPresetsAreMonotonicallyLessConservative checks the ordering spec.md
// section 8's Monotonicity property assumes: smallest relaxes strictly
// more soundness flags than recommended, which relaxes strictly more than
// safest.
func TestPresetsAreMonotonicallyLessConservative(t *testing.T) {
	safest := Safest()
	recommended := Recommended()
	smallest := Smallest()

	qt.Assert(t, qt.IsTrue(safest.PreserveExceptionsFlag))
	qt.Assert(t, qt.IsTrue(recommended.PreserveExceptionsFlag))
	qt.Assert(t, qt.IsFalse(smallest.PreserveExceptionsFlag))

	qt.Assert(t, qt.Equals(string(safest.Mangling), string(ManglingOff)))
	qt.Assert(t, qt.Equals(string(recommended.Mangling), string(ManglingConservative)))
	qt.Assert(t, qt.Equals(string(smallest.Mangling), string(ManglingAggressive)))
}

func TestConfigViewAccessorsMatchFlags(t *testing.T) {
	cfg := Safest()
	cfg.PreserveExceptionsFlag = true
	cfg.MaxSimpleStringLengthFlag = 12
	cfg.MinSimpleNumberValueFlag = -5
	cfg.MaxSimpleNumberValueFlag = 5

	qt.Assert(t, qt.IsTrue(cfg.PreserveExceptions()))
	qt.Assert(t, qt.Equals(cfg.MaxSimpleStringLength(), 12))
	qt.Assert(t, qt.Equals(cfg.MinSimpleNumberValue(), -5.0))
	qt.Assert(t, qt.Equals(cfg.MaxSimpleNumberValue(), 5.0))
}

func TestLoadFileOverridesBasePreset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".jsshakerrc.yaml")
	contents := "mangling: aggressive\nmax_recursion_depth: 8\n"
	qt.Assert(t, qt.IsNil(os.WriteFile(path, []byte(contents), 0o644)))

	cfg, err := LoadFile(path, Recommended())
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(string(cfg.Mangling), string(ManglingAggressive)))
	qt.Assert(t, qt.Equals(cfg.MaxRecursionDepth, 8))
	// Fields the file doesn't mention keep the base preset's value.
	qt.Assert(t, qt.IsFalse(cfg.PreserveWritablity))
}

func TestLoadFileMissingPathErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), Recommended())
	qt.Assert(t, qt.IsNotNil(err))
}
