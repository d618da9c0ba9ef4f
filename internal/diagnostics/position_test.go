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
	"testing"

	"github.com/go-quicktest/qt"
)

func TestStripBOMRemovesUTF8BOM(t *testing.T) {
	withBOM := "\xef\xbb\xbflet x = 1;"
	qt.Assert(t, qt.Equals(StripBOM(withBOM), "let x = 1;"))
}

func TestStripBOMLeavesPlainTextUnchanged(t *testing.T) {
	plain := "let x = 1;\nlet y = 2;\n"
	qt.Assert(t, qt.Equals(StripBOM(plain), plain))
}

func TestSourceTextPositionFirstLine(t *testing.T) {
	st := NewSourceText("entry.js", "let x = 1;")
	pos := st.Position(4, 5)
	qt.Assert(t, qt.Equals(pos.Path, "entry.js"))
	qt.Assert(t, qt.Equals(pos.StartLine, 1))
	qt.Assert(t, qt.Equals(pos.StartCol, 5))
	qt.Assert(t, qt.Equals(pos.EndLine, 1))
	qt.Assert(t, qt.Equals(pos.EndCol, 6))
}

func TestSourceTextPositionSecondLine(t *testing.T) {
	st := NewSourceText("entry.js", "let x = 1;\nlet y = 2;")
	pos := st.Position(15, 16)
	qt.Assert(t, qt.Equals(pos.StartLine, 2))
	qt.Assert(t, qt.Equals(pos.StartCol, 5))
}

func TestSourceTextPositionCountsRunesNotBytes(t *testing.T) {
	st := NewSourceText("entry.js", "let é = 1;")
	// "é" spans bytes [4,6) but is a single rune, so its span's columns
	// advance by 1, not by its 2-byte width.
	pos := st.Position(4, 6)
	qt.Assert(t, qt.Equals(pos.StartCol, 5))
	qt.Assert(t, qt.Equals(pos.EndCol, 6))
}

func TestSourceTextStripsBOMBeforeIndexing(t *testing.T) {
	st := NewSourceText("entry.js", "\xef\xbb\xbflet x = 1;")
	qt.Assert(t, qt.Equals(st.Text(), "let x = 1;"))
	pos := st.Position(0, 3)
	qt.Assert(t, qt.Equals(pos.StartCol, 1))
}
