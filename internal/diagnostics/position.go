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

package diagnostics

import (
	"sort"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// StripBOM removes a leading UTF-8, UTF-16LE or UTF-16BE byte-order mark
// from src and transcodes it to plain UTF-8, the same normalization every
// front end runs source text through before handing it to the driver
// (spec.md section 6's read_file contract promises plain UTF-8 text, not
// whatever encoding a file happened to be saved in).
func StripBOM(src string) string {
	out, _, err := transform.String(unicode.BOMOverride(unicode.UTF8.NewDecoder()), src)
	if err != nil {
		return src
	}
	return out
}

// SourceText indexes one module's normalized source text by line so the
// driver can turn a byte-offset span into a Position without every front
// end reimplementing line/column bookkeeping.
type SourceText struct {
	path       string
	text       string
	lineStarts []int // byte offset of the first byte of each line; lineStarts[0] == 0
}

// NewSourceText strips src's BOM (if any) and indexes its line starts.
func NewSourceText(path, src string) *SourceText {
	src = StripBOM(src)
	starts := []int{0}
	for i, r := range src {
		if r == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &SourceText{path: path, text: src, lineStarts: starts}
}

// Text returns the normalized (BOM-stripped) source text.
func (s *SourceText) Text() string { return s.text }

// Position converts a [startOffset, endOffset) byte span into a 1-indexed
// Position. Columns count runes, not bytes, per spec.md section 6's
// requirement that positions match what a text editor reports for a
// multi-byte character, rather than its UTF-8 byte width.
func (s *SourceText) Position(startOffset, endOffset int) Position {
	sl, sc := s.lineCol(startOffset)
	el, ec := s.lineCol(endOffset)
	return Position{Path: s.path, StartLine: sl, StartCol: sc, EndLine: el, EndCol: ec}
}

// lineCol finds the line containing offset via binary search over
// lineStarts, then counts runes from that line's start up to offset.
func (s *SourceText) lineCol(offset int) (line, col int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(s.text) {
		offset = len(s.text)
	}
	idx := sort.Search(len(s.lineStarts), func(i int) bool { return s.lineStarts[i] > offset }) - 1
	if idx < 0 {
		idx = 0
	}
	lineStart := s.lineStarts[idx]
	col = utf8.RuneCountInString(s.text[lineStart:offset]) + 1
	return idx + 1, col
}
