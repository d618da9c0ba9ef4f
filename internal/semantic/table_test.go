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

package semantic

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/jsshaker/shaker/internal/ast"
)

func TestDeclareAssignsDenseIDsAndName(t *testing.T) {
	table := NewTable()
	a := table.Declare("a")
	b := table.Declare("b")
	qt.Assert(t, qt.Equals(a, SymbolId(0)))
	qt.Assert(t, qt.Equals(b, SymbolId(1)))
	qt.Assert(t, qt.Equals(table.Name(a), "a"))
	qt.Assert(t, qt.Equals(table.Name(b), "b"))
}

func TestIsReadonlyWithNoWritesIsReadonly(t *testing.T) {
	table := NewTable()
	sym := table.Declare("x")
	qt.Assert(t, qt.IsTrue(table.IsReadonly(sym)))
}

func TestIsReadonlyWithOneWriteIsReadonly(t *testing.T) {
	table := NewTable()
	sym := table.Declare("x")
	table.RecordWrite(sym, 1)
	qt.Assert(t, qt.IsTrue(table.IsReadonly(sym)))
}

func TestIsReadonlyWithMultipleWritesIsNotReadonly(t *testing.T) {
	table := NewTable()
	sym := table.Declare("x")
	table.RecordWrite(sym, 1)
	table.RecordWrite(sym, 2)
	qt.Assert(t, qt.IsFalse(table.IsReadonly(sym)))
}

func TestReadsReturnsRecordedReadNodesInOrder(t *testing.T) {
	table := NewTable()
	sym := table.Declare("x")
	table.RecordRead(sym, 3)
	table.RecordRead(sym, 7)
	qt.Assert(t, qt.DeepEquals(table.Reads(sym), []ast.NodeId{3, 7}))
}

func TestReadsOfNeverReadSymbolIsEmpty(t *testing.T) {
	table := NewTable()
	sym := table.Declare("x")
	qt.Assert(t, qt.HasLen(table.Reads(sym), 0))
}

func TestSymbolsAreIndependent(t *testing.T) {
	table := NewTable()
	a := table.Declare("a")
	b := table.Declare("b")
	table.RecordWrite(a, 1)
	table.RecordWrite(a, 2)
	qt.Assert(t, qt.IsFalse(table.IsReadonly(a)))
	qt.Assert(t, qt.IsTrue(table.IsReadonly(b)))
}
