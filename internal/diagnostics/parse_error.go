// Package diagnostics formats parse errors with source context, and
// implements the bounded exception/debug-message channels the host drains.
package diagnostics

import (
	"fmt"
	"strings"
)

// snippetMaxLen is the length, in runes, past which a single snippet
// line is shown truncated, with an ellipsis on each side that was cut,
// rather than in full.
const snippetMaxLen = 160

// snippetContextLines is how many lines of context to show above and below
// the offending line.
const snippetContextLines = 1

// ParseError is a malformed-source error carrying enough to format a
// caret-pointed context snippet.
type ParseError struct {
	Message string
	Line    int
	Column  int
	Source  string
	File    string
}

// NewParseError builds a ParseError bound to the given source.
func NewParseError(message string, line, column int, source, file string) *ParseError {
	return &ParseError{Message: message, Line: line, Column: column, Source: source, File: file}
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return e.Format()
}

// Format renders the error with a line:column header and a context
// snippet: the offending line (and one line of context on either side)
// with a caret under the error column. If the line itself is long, it is
// truncated with ellipses on both sides while keeping the error column
// visible.
func (e *ParseError) Format() string {
	var sb strings.Builder

	if e.File != "" {
		fmt.Fprintf(&sb, "%s:%d:%d: %s\n", e.File, e.Line, e.Column, e.Message)
	} else {
		fmt.Fprintf(&sb, "%d:%d: %s\n", e.Line, e.Column, e.Message)
	}

	snippet := e.ContextSnippet()
	if snippet != "" {
		sb.WriteString(snippet)
	}
	return sb.String()
}

// ContextSnippet returns just the source-context portion of Format: the
// numbered lines around the error with a caret indicator, independent of
// the message header. Exposed separately so evaluator-side errors (which
// reuse this snippet algorithm via origin-chain walking) don't have to
// re-parse Format's output.
func (e *ParseError) ContextSnippet() string {
	lines := strings.Split(e.Source, "\n")
	if e.Line < 1 || e.Line > len(lines) {
		return ""
	}

	var sb strings.Builder
	start := maxInt(1, e.Line-snippetContextLines)
	end := minInt(len(lines), e.Line+snippetContextLines)
	width := len(fmt.Sprintf("%d", end))

	for ln := start; ln <= end; ln++ {
		text := truncateForColumn(lines[ln-1], e.Column)
		fmt.Fprintf(&sb, "%*d | %s\n", width, ln, text.line)
		if ln == e.Line {
			prefix := strings.Repeat(" ", width+3+text.caretOffset)
			sb.WriteString(prefix)
			sb.WriteString("^\n")
		}
	}
	return sb.String()
}

type truncatedLine struct {
	line        string
	caretOffset int // rune offset of the caret within the (possibly truncated) line
}

// truncateForColumn shortens an overly long line to snippetMaxLen runes,
// keeping the error column in view and marking the truncation with
// ellipses on whichever side was cut.
func truncateForColumn(line string, column int) truncatedLine {
	runes := []rune(line)
	if len(runes) <= snippetMaxLen {
		return truncatedLine{line: line, caretOffset: maxInt(0, column-1)}
	}

	col := column - 1
	half := snippetMaxLen / 2
	start := maxInt(0, col-half)
	end := minInt(len(runes), start+snippetMaxLen)
	start = maxInt(0, end-snippetMaxLen)

	var sb strings.Builder
	offset := 0
	if start > 0 {
		sb.WriteString("...")
		offset += 3
	}
	sb.WriteString(string(runes[start:end]))
	if end < len(runes) {
		sb.WriteString("...")
	}
	return truncatedLine{line: sb.String(), caretOffset: offset + (col - start)}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
