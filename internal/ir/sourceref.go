// Package ir implements the untyped, list-structured intermediate
// representation the parser emits before the typed AST builder runs.
//
// Every node is either the empty cell or a pair of (head, rest), printed in
// Lisp-like prefix notation but treated purely as data: nothing in this
// package interprets the shape of a list, that is the typed AST builder's
// job (internal/astbuilder).
package ir

import (
	"github.com/google/uuid"
)

// SourceHandle identifies the source unit a SourceRef was produced from.
// Handles are opaque to callers; two SourceRefs with the same handle were
// produced from the same call to the parser.
type SourceHandle uuid.UUID

// NewSourceHandle allocates a fresh handle for a parse unit.
func NewSourceHandle() SourceHandle {
	return SourceHandle(uuid.New())
}

func (h SourceHandle) String() string {
	return uuid.UUID(h).String()
}

// SourceRef is a (start_offset, end_offset, start_line, start_column,
// source_handle) record. Offsets are byte offsets into the source text
// identified by Handle; Line/Column are 1-based and Column counts runes,
// not bytes or display width.
type SourceRef struct {
	Start, End          int
	StartLine, StartCol int
	Handle              SourceHandle
	source              string // the full text Handle refers to, for GetText
}

// NewSourceRef builds a SourceRef bound to the given source text.
func NewSourceRef(source string, handle SourceHandle, start, end, line, col int) SourceRef {
	return SourceRef{
		Start: start, End: end,
		StartLine: line, StartCol: col,
		Handle: handle,
		source: source,
	}
}

// GetText returns the substring of the owning source this reference spans.
// Offsets are always valid over the source that produced them, so this
// never needs bounds-clamping in well-formed use; callers that hand-build
// a SourceRef from a different source than the one that produced it have
// already violated that invariant.
func (r SourceRef) GetText() string {
	if r.source == "" {
		return ""
	}
	if r.Start < 0 || r.End > len(r.source) || r.Start > r.End {
		return ""
	}
	return r.source[r.Start:r.End]
}

// Valid reports whether this SourceRef carries real position data, as
// opposed to the zero value used by synthesized nodes that have no source.
func (r SourceRef) Valid() bool {
	return r.source != "" || r.End > r.Start
}
