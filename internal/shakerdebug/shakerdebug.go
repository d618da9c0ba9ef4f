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

// Package shakerdebug holds JSSHAKER_DEBUG environment-variable-controlled
// developer flags, adapted from cuelang.org/go/internal/cuedebug's
// envflag-driven Config.
package shakerdebug

import (
	"sync"

	"github.com/jsshaker/shaker/internal/envflag"
)

// Flags holds the set of global JSSHAKER_DEBUG flags. It is initialized by
// Init.
var Flags Config

// Config holds the set of known JSSHAKER_DEBUG flags.
type Config struct {
	// LogFixpoint logs each exhaustive/post-analysis fixpoint iteration
	// (callback drains, loop re-runs) to stderr.
	LogFixpoint bool

	// LogCache is parsed from JSSHAKER_DEBUG, but no code reads it:
	// setting it has no effect.
	LogCache bool

	// DisableCache forces every call to skip internal/cache, as if
	// enable_fn_cache were false, useful for isolating cache-soundness
	// bugs (spec.md's cache soundness testable property).
	DisableCache bool

	// MaxRecursionOverride is parsed from JSSHAKER_DEBUG, but no code reads
	// it: TreeShakeConfig's max_recursion_depth is never overridden.
	MaxRecursionOverride int

	// TraceMangling is parsed from JSSHAKER_DEBUG, but no code reads it:
	// setting it has no effect.
	TraceMangling bool
}

// Init initializes Flags from the JSSHAKER_DEBUG environment variable. Not
// named init because callers (e.g. `jsshaker help`) may want to skip it,
// and so failures surface as an error rather than a panic.
func Init() error {
	return initOnce()
}

var initOnce = sync.OnceValue(func() error {
	return envflag.Init(&Flags, "JSSHAKER_DEBUG")
})
