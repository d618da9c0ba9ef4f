// Package diagnostics defines the shared error and position types used to
// report analyzer findings, following the shape of cuelang.org/go/cue/errors:
// a lightweight positional Message type, a way to flatten wrapped errors into
// a list, and deterministic, sorted printing.
package diagnostics

import (
	"fmt"
	"sort"
	"strings"
)

// Position identifies a span of source text. Both ends are 1-indexed, as
// required by spec section 6. A zero Position means "no span available".
type Position struct {
	Path      string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// IsValid reports whether the position carries real span information.
func (p Position) IsValid() bool {
	return p.StartLine > 0
}

// String formats the position as "path:line:col-line:col", matching the
// driver entry point's diagnostics format.
func (p Position) String() string {
	if !p.IsValid() {
		return ""
	}
	return fmt.Sprintf("%s:%d:%d-%d:%d", p.Path, p.StartLine, p.StartCol, p.EndLine, p.EndCol)
}

// Error is a single diagnostic: a human-readable message plus an optional
// source position.
type Error struct {
	Message  string
	Position Position
}

func (e *Error) Error() string {
	if e.Position.IsValid() {
		return fmt.Sprintf("%s at %s", e.Message, e.Position)
	}
	return e.Message
}

// Newf creates a new positional diagnostic.
func Newf(pos Position, format string, args ...interface{}) *Error {
	return &Error{Message: fmt.Sprintf(format, args...), Position: pos}
}

// New creates a new diagnostic with no position information, used for VFS
// and invariant-violation failures that have no associated span.
func New(msg string) *Error {
	return &Error{Message: msg}
}

// List is an ordered collection of diagnostics. It implements error so a
// List can be returned from functions expecting a single error.
type List []*Error

func (l List) Error() string {
	msgs := make([]string, len(l))
	for i, e := range l {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}

// Add appends a diagnostic to the list.
func (l *List) Add(e *Error) {
	*l = append(*l, e)
}

// Addf appends a formatted, positional diagnostic.
func (l *List) Addf(pos Position, format string, args ...interface{}) {
	l.Add(Newf(pos, format, args...))
}

// Sorted returns a copy of l sorted alphabetically by rendered message, so
// that two runs of the analyzer over the same program produce byte-identical
// diagnostics output (required by the Idempotence testable property).
func (l List) Sorted() List {
	out := make(List, len(l))
	copy(out, l)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Error() < out[j].Error()
	})
	return out
}

// Strings renders each diagnostic using its Error method, in sorted order.
func (l List) Strings() []string {
	sorted := l.Sorted()
	out := make([]string, len(sorted))
	for i, e := range sorted {
		out[i] = e.Error()
	}
	return out
}
