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

package shakerdebug

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/jsshaker/shaker/internal/envflag"
)

// These tests exercise Config through envflag.Parse directly (the same
// mechanism Init uses) rather than through the package-level Init/Flags,
// since Init is a sync.OnceValue and only ever actually parses once per
// process.

func TestParseEnablesNamedFlags(t *testing.T) {
	var cfg Config
	err := envflag.Parse(&cfg, "logfixpoint,tracemangling")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(cfg.LogFixpoint))
	qt.Assert(t, qt.IsTrue(cfg.TraceMangling))
	qt.Assert(t, qt.IsFalse(cfg.LogCache))
	qt.Assert(t, qt.IsFalse(cfg.DisableCache))
}

func TestParseEmptyStringLeavesAllFlagsFalse(t *testing.T) {
	var cfg Config
	err := envflag.Parse(&cfg, "")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsFalse(cfg.LogFixpoint))
	qt.Assert(t, qt.IsFalse(cfg.LogCache))
	qt.Assert(t, qt.IsFalse(cfg.DisableCache))
	qt.Assert(t, qt.IsFalse(cfg.TraceMangling))
}

func TestParseUnknownFlagErrors(t *testing.T) {
	var cfg Config
	err := envflag.Parse(&cfg, "bogus")
	qt.Assert(t, qt.ErrorMatches(err, "unknown bogus"))
}

func TestParseDisableCacheFlag(t *testing.T) {
	var cfg Config
	err := envflag.Parse(&cfg, "disablecache")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(cfg.DisableCache))
}

// TestInitParsesDesignatedEnvVar exercises Init's wiring to the
// JSSHAKER_DEBUG environment variable. Init memoizes via sync.OnceValue, so
// this must be the only test in the package that calls it.
func TestInitParsesDesignatedEnvVar(t *testing.T) {
	t.Setenv("JSSHAKER_DEBUG", "logcache")
	err := Init()
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(Flags.LogCache))
}
