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

package mangle

// headChars are valid as the first character of an identifier; tailChars
// are valid for every character after that (digits allowed). Mirrors
// common JS minifier name generators (e.g. terser's base54 strategy); this
// package does not attempt to dodge reserved words here, since
// internal/transform's emitter sees the resolved name before final code
// generation and is responsible for that check.
const headChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
const tailChars = headChars + "0123456789"

// GetMangledName returns the n-th shortest mangled identifier (0-based),
// grounded on original_source's mangling/utils.rs get_mangled_name: a
// bijective base conversion over (headChars, tailChars, tailChars, ...) so
// every non-negative n maps to a distinct short name, shortest first.
func GetMangledName(n int) string {
	out := []byte{headChars[n%len(headChars)]}
	n /= len(headChars)
	for n > 0 {
		n--
		out = append(out, tailChars[n%len(tailChars)])
		n /= len(tailChars)
	}
	return string(out)
}
