package completion

import (
	"fmt"

	"go.lsp.dev/protocol"

	"github.com/nodets/tsbridge/internal/translate"
	"github.com/nodets/tsbridge/internal/tsproto"
)

// ResolveCommand is the LSP command the dispatcher must register to
// execute a completion's remaining (non-current-file) code actions,
// per spec.md §6.4.
const ResolveCommand = "_typescript.applyCompletionCodeAction"

// ResolveItem runs the resolve-item phase of spec.md §4.5 on a single
// completion entry's details, filling in detail, documentation, and the
// additionalTextEdits/command split of its code actions.
func ResolveItem(item protocol.CompletionItem, data Data, details tsproto.CompletionEntryDetails) protocol.CompletionItem {
	displayText := translate.AsPlainText(details.DisplayParts)
	if source := data.PrimarySource(); source != "" {
		item.Detail = fmt.Sprintf("Auto import from '%s'\n%s", source, displayText)
	} else {
		item.Detail = displayText
	}

	doc := translate.AsDocumentation(details.Documentation, details.Tags)
	if doc != "" {
		item.Documentation = protocol.MarkupContent{Kind: protocol.Markdown, Value: doc}
	}

	var additional []protocol.TextEdit
	var remaining []tsproto.CodeAction

	for _, action := range details.CodeActions {
		var otherChanges []tsproto.FileCodeEdits
		for _, fce := range action.Changes {
			if fce.FileName == data.File {
				additional = append(additional, translate.ToTextEdits(fce)...)
			} else {
				otherChanges = append(otherChanges, fce)
			}
		}
		if len(otherChanges) > 0 || len(action.Commands) > 0 {
			remaining = append(remaining, tsproto.CodeAction{
				Description: action.Description,
				Changes:     otherChanges,
				Commands:    action.Commands,
			})
		}
	}

	if len(additional) > 0 {
		item.AdditionalTextEdits = additional
	}
	if len(remaining) > 0 {
		item.Command = &protocol.Command{
			Title:     "Apply completion code action",
			Command:   ResolveCommand,
			Arguments: []interface{}{data.File, remaining},
		}
	}

	return item
}
