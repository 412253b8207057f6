// Package mirror keeps an in-memory text buffer per open document,
// applying incremental LSP edits the way tsserver's own buffer needs to
// stay synchronized, and tracks which file the editor touched most
// recently for operations (like workspace/symbol) that need a "current"
// file when none is explicit.
package mirror

import (
	"github.com/nodets/tsbridge/internal/position"
)

// LanguageID enumerates the languages tsbridge mirrors documents for.
type LanguageID string

const (
	LanguageTypeScript      LanguageID = "typescript"
	LanguageTypeScriptReact LanguageID = "typescriptreact"
	LanguageJavaScript      LanguageID = "javascript"
	LanguageJavaScriptReact LanguageID = "javascriptreact"
)

// Document is a single open text buffer.
type Document struct {
	URI        string
	Path       string
	LanguageID LanguageID
	Version    int
	Text       string
}

// Change is a single incremental content change. A nil Range means
// "replace the whole document," matching TextDocumentContentChangeEvent
// without a range.
type Change struct {
	Range *position.Range
	Text  string
}

// ApplyEdit replaces [offsetAt(Range.Start), offsetAt(Range.End)) with
// change.Text, or the whole buffer if change.Range is nil, then advances
// the version.
func (d *Document) ApplyEdit(newVersion int, change Change) {
	if change.Range == nil {
		d.Text = change.Text
		d.Version = newVersion
		return
	}
	start := position.OffsetAt(d.Text, change.Range.Start)
	end := position.OffsetAt(d.Text, change.Range.End)
	if end < start {
		start, end = end, start
	}
	d.Text = d.Text[:start] + change.Text + d.Text[end:]
	d.Version = newVersion
}

// PositionAt converts a byte offset into the document's text into a
// (line, character) position.
func (d *Document) PositionAt(offset int) position.Position {
	return position.PositionAt(d.Text, offset)
}

// OffsetAt converts a (line, character) position into a byte offset.
func (d *Document) OffsetAt(pos position.Position) int {
	return position.OffsetAt(d.Text, pos)
}

// LineCount returns the number of lines currently in the document.
func (d *Document) LineCount() int {
	return position.LineCount(d.Text)
}

// GetLine returns the content of the given zero-based line.
func (d *Document) GetLine(line int) string {
	return position.Line(d.Text, line)
}

// GetLineRange returns the range spanning the given line's content.
func (d *Document) GetLineRange(line int) position.Range {
	return position.LineRange(d.Text, line)
}

// GetWordRangeAtPosition returns the maximal run of non-whitespace
// characters surrounding pos, or false if pos sits on whitespace on both
// sides.
func (d *Document) GetWordRangeAtPosition(pos position.Position) (position.Range, bool) {
	return position.WordRangeAt(d.Text, pos)
}
