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

import "github.com/spf13/pflag"

// flagName names a registered pflag, mirroring cmd/cue's flags.go so a flag
// is always looked up by the same symbol it was registered with.
type flagName string

const (
	flagSingleFile          flagName = "single-file"
	flagOutput              flagName = "output"
	flagNoShake             flagName = "no-shake"
	flagMinify              flagName = "minify"
	flagPreset              flagName = "preset"
	flagAlwaysInlineLiteral flagName = "always-inline-literal"
	flagJSX                 flagName = "jsx"
	flagNoMangle            flagName = "no-mangle"
	flagRecursionDepth      flagName = "recursion-depth"
	flagWatch               flagName = "watch"
	flagTraceID             flagName = "trace-id"
	flagConfig              flagName = "config"
)

func (f flagName) Bool(cmd *Command) bool {
	v, _ := cmd.Flags().GetBool(string(f))
	return v
}

func (f flagName) String(cmd *Command) string {
	v, _ := cmd.Flags().GetString(string(f))
	return v
}

func (f flagName) Int(cmd *Command) int {
	v, _ := cmd.Flags().GetInt(string(f))
	return v
}

// addShakeFlags registers the CLI contract of spec.md section 6, plus the
// SPEC_FULL.md additions (--watch, --trace-id, --config).
func addShakeFlags(fs *pflag.FlagSet) {
	fs.BoolP(string(flagSingleFile), "s", false, "treat <path> as a single file with no resolvable imports")
	fs.StringP(string(flagOutput), "o", "", "write the JSON keep/drop report to PATH instead of stdout")
	fs.BoolP(string(flagNoShake), "n", false, "skip shaking: report every declaration as kept")
	fs.BoolP(string(flagMinify), "m", false, "request minified codegen output (forwarded, not applied by this repo)")
	fs.StringP(string(flagPreset), "p", "recommended", "analysis preset: safest, recommended, or smallest")
	fs.BoolP(string(flagAlwaysInlineLiteral), "a", false, "request literal inlining in codegen output (forwarded, not applied by this repo)")
	fs.BoolP(string(flagJSX), "j", false, "enable JSX/React-aware built-ins")
	fs.Bool(string(flagNoMangle), false, "disable identifier mangling regardless of preset")
	fs.IntP(string(flagRecursionDepth), "r", 0, "override the preset's max_recursion_depth (0 keeps the preset default)")
	fs.Bool(string(flagWatch), false, "re-run analysis whenever a resolved module file changes")
	fs.String(string(flagTraceID), "", "correlation id for this run's diagnostics (default: a generated UUID)")
	fs.String(string(flagConfig), "", "path to a .jsshakerrc.yaml project config file, applied on top of --preset")
}
