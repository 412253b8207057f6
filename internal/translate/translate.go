// Package translate holds the pure, total functions mapping between LSP
// wire shapes (go.lsp.dev/protocol) and tsserver wire shapes
// (internal/tsproto). Nothing here touches the subprocess, the document
// mirror, or any mutable state — every function is a straight
// conversion with an explicit signature.
package translate

import (
	"net/url"
	"path/filepath"
	"runtime"
	"strings"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"github.com/nodets/tsbridge/internal/position"
	"github.com/nodets/tsbridge/internal/tsproto"
)

// AsRange converts a 1-based tsserver TextSpan into a 0-based LSP Range.
func AsRange(span tsproto.TextSpan) protocol.Range {
	return protocol.Range{
		Start: ToPosition(span.Start),
		End:   ToPosition(span.End),
	}
}

// ToPosition converts a 1-based tsserver Location into a 0-based LSP
// Position.
func ToPosition(loc tsproto.Location) protocol.Position {
	return protocol.Position{
		Line:      uint32(loc.Line - 1),
		Character: uint32(loc.Offset - 1),
	}
}

// ToLocation converts a 1-based tsserver FileSpan into an LSP Location.
func ToLocation(span tsproto.FileSpan) protocol.Location {
	return protocol.Location{
		URI: PathToURI(span.File),
		Range: protocol.Range{
			Start: ToPosition(span.Start),
			End:   ToPosition(span.End),
		},
	}
}

// ToTsLocation converts a 0-based LSP Position into a 1-based tsserver
// Location — the inverse of ToPosition.
func ToTsLocation(pos protocol.Position) tsproto.Location {
	return tsproto.Location{Line: int(pos.Line) + 1, Offset: int(pos.Character) + 1}
}

// ToTextEdit converts a tsserver CodeEdit into an LSP TextEdit.
func ToTextEdit(edit tsproto.CodeEdit) protocol.TextEdit {
	return protocol.TextEdit{
		Range: protocol.Range{
			Start: ToPosition(edit.Start),
			End:   ToPosition(edit.End),
		},
		NewText: edit.NewText,
	}
}

// ToTextEdits converts every CodeEdit in a FileCodeEdits entry.
func ToTextEdits(fce tsproto.FileCodeEdits) []protocol.TextEdit {
	edits := make([]protocol.TextEdit, 0, len(fce.TextChanges))
	for _, e := range fce.TextChanges {
		edits = append(edits, ToTextEdit(e))
	}
	return edits
}

// ToWorkspaceEdit groups a set of FileCodeEdits into an LSP
// WorkspaceEdit keyed by URI.
func ToWorkspaceEdit(all []tsproto.FileCodeEdits) protocol.WorkspaceEdit {
	changes := make(map[protocol.DocumentURI][]protocol.TextEdit, len(all))
	for _, fce := range all {
		changes[PathToURI(fce.FileName)] = ToTextEdits(fce)
	}
	return protocol.WorkspaceEdit{Changes: changes}
}

// ToDocumentHighlight converts a tsserver reference entry on the same
// file into an LSP DocumentHighlight.
func ToDocumentHighlight(ref tsproto.ReferenceEntry) protocol.DocumentHighlight {
	kind := protocol.DocumentHighlightKindRead
	if ref.IsWriteAccess {
		kind = protocol.DocumentHighlightKindWrite
	}
	return protocol.DocumentHighlight{
		Range: protocol.Range{
			Start: ToPosition(ref.Start),
			End:   ToPosition(ref.End),
		},
		Kind: kind,
	}
}

// URIToPath converts a file:// LSP URI into an OS-native filesystem
// path. Only file:// URIs are supported; anything else returns "",
// false so callers can fall back to an empty result per spec.md §4.6.
func URIToPath(u protocol.DocumentURI) (string, bool) {
	parsed, err := url.Parse(string(u))
	if err != nil || parsed.Scheme != "file" {
		return "", false
	}
	p := uri.URI(u).Filename()
	if p == "" {
		return "", false
	}
	return p, true
}

// PathToURI converts an OS-native filesystem path into a file:// LSP
// URI, normalizing the OS-specific path separator first.
func PathToURI(path string) protocol.DocumentURI {
	if runtime.GOOS == "windows" {
		path = strings.ReplaceAll(path, "\\", "/")
	}
	return protocol.DocumentURI(uri.File(filepath.ToSlash(path)))
}

// FileRangeRequestArgs is the {file, startLine, startOffset, endLine,
// endOffset} argument shape tsserver range-taking commands expect, all
// 1-based.
type FileRangeRequestArgs struct {
	File        string `json:"file"`
	StartLine   int    `json:"startLine"`
	StartOffset int    `json:"startOffset"`
	EndLine     int    `json:"endLine"`
	EndOffset   int    `json:"endOffset"`
}

// ToFileRangeRequestArgs converts a file path and an LSP range into the
// tsserver FileRangeRequestArgs shape.
func ToFileRangeRequestArgs(file string, r protocol.Range) FileRangeRequestArgs {
	start := ToTsLocation(r.Start)
	end := ToTsLocation(r.End)
	return FileRangeRequestArgs{
		File:        file,
		StartLine:   start.Line,
		StartOffset: start.Offset,
		EndLine:     end.Line,
		EndOffset:   end.Offset,
	}
}

// AsPlainText concatenates SymbolDisplayPart text with no separator,
// tsserver's convention for a single rendered string (e.g. a hover
// displayString).
func AsPlainText(parts []tsproto.SymbolDisplayPart) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

// AsDocumentation concatenates documentation display parts with no
// separator, then appends the rendered @tag lines after a blank line.
func AsDocumentation(documentation []tsproto.SymbolDisplayPart, tags []tsproto.JSDocTagInfo) string {
	var b strings.Builder
	b.WriteString(AsPlainText(documentation))
	if tagText := AsTagsDocumentation(tags); tagText != "" {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(tagText)
	}
	return b.String()
}

// AsTagsDocumentation renders JSDoc tags as "@tag text" lines, one per
// tag, newline separated.
func AsTagsDocumentation(tags []tsproto.JSDocTagInfo) string {
	if len(tags) == 0 {
		return ""
	}
	lines := make([]string, 0, len(tags))
	for _, tag := range tags {
		text := AsPlainText(tag.Text)
		if text == "" {
			lines = append(lines, "@"+tag.Name)
		} else {
			lines = append(lines, "@"+tag.Name+" "+text)
		}
	}
	return strings.Join(lines, "\n")
}

// ToRangeFromPosition converts an LSP position into a collapsed,
// zero-width position.Range, for use where a tsserver location needs comparing
// against position-only helpers in internal/position.
func ToRangeFromPosition(pos protocol.Position) position.Range {
	p := position.Position{Line: int(pos.Line), Character: int(pos.Character)}
	return position.Range{Start: p, End: p}
}
