package completion

import (
	"go.lsp.dev/protocol"

	"github.com/nodets/tsbridge/internal/position"
	"github.com/nodets/tsbridge/internal/translate"
	"github.com/nodets/tsbridge/internal/tsproto"
)

// Settings toggles the three entry-filtering rules of spec.md §4.5
// step 7.
type Settings struct {
	NameSuggestions       bool
	PathSuggestions       bool
	AutoImportSuggestions bool
}

// BuildParams carries everything the build-list phase needs about the
// request context; LineText is the full text of the cursor's line (no
// trailing newline), used for both dot-accessor detection and the
// backward-scan replacement range.
type BuildParams struct {
	File     string
	Cursor   protocol.Position
	LineText string
	Info     tsproto.CompletionInfo
	Settings Settings
}

// BuildItems runs the build-list phase of the completion pipeline
// described in spec.md §4.5, producing one LSP CompletionItem per
// surviving tsserver entry.
func BuildItems(p BuildParams) []protocol.CompletionItem {
	lineUnits := lineUTF16(p.LineText)
	cursorChar := int(p.Cursor.Character)
	linePrefix := sliceUTF16(lineUnits, 0, cursorChar)

	dotCtx, hasDotCtx := dotAccessorContext(linePrefix)
	var dotCtxUnits []uint16
	if hasDotCtx {
		dotCtxUnits = lineUTF16(dotCtx)
	}

	precedingIsHash := cursorChar > 0 && sliceUTF16(lineUnits, cursorChar-1, cursorChar) == "#"

	scriptNameCounts := make(map[string]int)
	for _, e := range p.Info.Entries {
		if e.Kind == kindScript {
			scriptNameCounts[e.Name]++
		}
	}

	items := make([]protocol.CompletionItem, 0, len(p.Info.Entries))
	for _, entry := range p.Info.Entries {
		if shouldFilterEntry(entry, p.Settings) {
			continue
		}
		items = append(items, buildItem(entry, p, lineUnits, cursorChar, dotCtx, dotCtxUnits, hasDotCtx, precedingIsHash, scriptNameCounts))
	}
	return items
}

func shouldFilterEntry(entry tsproto.CompletionEntry, s Settings) bool {
	if !s.NameSuggestions && entry.Kind == kindWarning {
		return true
	}
	if !s.PathSuggestions && (entry.Kind == kindDirectory || entry.Kind == kindScript || entry.Kind == kindExternalModule) {
		return true
	}
	if !s.AutoImportSuggestions && entry.HasAction {
		return true
	}
	return false
}

func buildItem(
	entry tsproto.CompletionEntry,
	p BuildParams,
	lineUnits []uint16,
	cursorChar int,
	dotCtx string,
	dotCtxUnits []uint16,
	hasDotCtx bool,
	precedingIsHash bool,
	scriptNameCounts map[string]int,
) protocol.CompletionItem {
	item := protocol.CompletionItem{
		Label: entry.Name,
		Kind:  translate.ToCompletionItemKind(entry.Kind),
	}

	sortText := entry.SortText
	if entry.Source != "" {
		sortText = "￿" + sortText
	}
	item.SortText = sortText

	if entry.IsRecommended {
		item.Preselect = true
	}
	if isFunctionLike(entry.Kind) {
		item.InsertTextFormat = protocol.InsertTextFormatSnippet
	}
	if cc := commitCharacters(entry.Kind); len(cc) > 0 {
		item.CommitCharacters = cc
	}

	entryNames := []EntryNameArg{{Name: entry.Name, Source: entry.Source}}
	item.Data = Data{
		File:       p.File,
		Line:       int(p.Cursor.Line) + 1,
		Offset:     int(p.Cursor.Character) + 1,
		EntryNames: entryNames,
	}

	ft := filterText(entry.Name, entry.InsertText, precedingIsHash)

	start, end := cursorChar, cursorChar
	if entry.ReplacementSpan != nil {
		r := position.ClampToStartLine(toPositionRange(translate.AsRange(*entry.ReplacementSpan)), len(lineUnits))
		item.TextEdit = &protocol.TextEdit{Range: fromPositionRange(r), NewText: insertTextFor(entry)}
	} else {
		start, end = backwardScanRange(lineUnits, cursorChar, entry.Name)
		line := int(p.Cursor.Line)
		rng := position.Range{
			Start: position.Position{Line: line, Character: start},
			End:   position.Position{Line: line, Character: end},
		}
		if hasDotCtx {
			ft = dotCtx + ft
			dotStart := cursorChar - len(dotCtxUnits)
			rng = position.Union(rng, position.Range{
				Start: position.Position{Line: line, Character: dotStart},
				End:   position.Position{Line: line, Character: cursorChar},
			})
		}
		item.TextEdit = &protocol.TextEdit{Range: fromPositionRange(rng), NewText: insertTextFor(entry)}
	}

	if ft != "" {
		item.FilterText = ft
	}

	applyKindModifiers(&item, entry, scriptNameCounts)

	return item
}

// toPositionRange and fromPositionRange convert between protocol.Range
// and position.Range so replacement-range arithmetic can go through
// internal/position's shared helpers instead of duplicating them here.
func toPositionRange(r protocol.Range) position.Range {
	return position.Range{
		Start: position.Position{Line: int(r.Start.Line), Character: int(r.Start.Character)},
		End:   position.Position{Line: int(r.End.Line), Character: int(r.End.Character)},
	}
}

func fromPositionRange(r position.Range) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: uint32(r.Start.Line), Character: uint32(r.Start.Character)},
		End:   protocol.Position{Line: uint32(r.End.Line), Character: uint32(r.End.Character)},
	}
}

func insertTextFor(entry tsproto.CompletionEntry) string {
	if entry.InsertText != "" {
		return entry.InsertText
	}
	return entry.Name
}

func applyKindModifiers(item *protocol.CompletionItem, entry tsproto.CompletionEntry, scriptNameCounts map[string]int) {
	if translate.HasModifier(entry.KindModifiers, translate.ModifierOptional) {
		item.Label = item.Label + "?"
	}
	if ext, ok := translate.ExtensionModifier(entry.KindModifiers); ok && entry.Kind == kindScript {
		if scriptNameCounts[entry.Name] > 1 {
			item.Detail = entry.Name + ext
		} else {
			item.Detail = entry.Name
		}
	}
}
