package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"github.com/nodets/tsbridge/internal/tsproto"
)

func dispPart(text string) []tsproto.SymbolDisplayPart {
	return []tsproto.SymbolDisplayPart{{Text: text, Kind: "text"}}
}

func TestToSignatureHelpBuildsLabelFromDisplayParts(t *testing.T) {
	items := tsproto.SignatureHelpItems{
		Items: []tsproto.SignatureHelpItem{
			{
				Prefix:    dispPart("greet("),
				Suffix:    dispPart(")"),
				Separator: dispPart(", "),
				Parameters: []tsproto.SignatureHelpParameter{
					{Name: "name", DisplayParts: dispPart("name: string")},
					{Name: "loud", DisplayParts: dispPart("loud?: boolean")},
				},
				Documentation: dispPart("Greets someone."),
			},
		},
		SelectedItemIndex: 0,
		ArgumentIndex:     1,
	}

	help := toSignatureHelp(items)
	require.NotNil(t, help)
	require.Len(t, help.Signatures, 1)
	assert.Equal(t, "greet(name: string, loud?: boolean)", help.Signatures[0].Label)
	assert.Equal(t, "Greets someone.", help.Signatures[0].Documentation)
	require.Len(t, help.Signatures[0].Parameters, 2)
	assert.Equal(t, "loud?: boolean", help.Signatures[0].Parameters[1].Label)
	assert.Equal(t, uint32(0), help.ActiveSignature)
	assert.Equal(t, uint32(1), help.ActiveParameter)
}

func TestToSignatureHelpNoItems(t *testing.T) {
	help := toSignatureHelp(tsproto.SignatureHelpItems{})
	require.NotNil(t, help)
	assert.Empty(t, help.Signatures)
}

func span(startLine, startOffset, endLine, endOffset int) tsproto.TextSpan {
	return tsproto.TextSpan{
		Start: tsproto.Location{Line: startLine, Offset: startOffset},
		End:   tsproto.Location{Line: endLine, Offset: endOffset},
	}
}

func TestSpanRangeUnionsMultipleSpans(t *testing.T) {
	node := tsproto.NavigationTree{
		Text: "overloaded",
		Spans: []tsproto.TextSpan{
			span(5, 1, 5, 10),
			span(2, 1, 2, 20),
			span(8, 1, 9, 5),
		},
	}

	rng := spanRange(node)
	assert.Equal(t, protocol.Position{Line: 1, Character: 0}, rng.Start)
	assert.Equal(t, protocol.Position{Line: 8, Character: 4}, rng.End)
}

func TestSpanRangeEmptySpans(t *testing.T) {
	assert.Equal(t, protocol.Range{}, spanRange(tsproto.NavigationTree{}))
}

func TestNameRangeFallsBackWithoutNameSpan(t *testing.T) {
	node := tsproto.NavigationTree{Spans: []tsproto.TextSpan{span(1, 1, 1, 10)}}
	fallback := protocol.Range{Start: protocol.Position{Line: 9, Character: 9}}
	assert.Equal(t, fallback, nameRange(node, fallback))
}

func TestNameRangeUsesNameSpanWhenPresent(t *testing.T) {
	nameSpan := span(3, 1, 3, 6)
	node := tsproto.NavigationTree{NameSpan: &nameSpan}
	fallback := protocol.Range{}
	got := nameRange(node, fallback)
	assert.Equal(t, uint32(2), got.Start.Line)
}

func TestPositionBefore(t *testing.T) {
	a := protocol.Position{Line: 1, Character: 5}
	b := protocol.Position{Line: 2, Character: 0}
	assert.True(t, positionBefore(a, b))
	assert.False(t, positionBefore(b, a))
	assert.False(t, positionBefore(a, a))
}

func TestToDocumentSymbolsMarksDeprecated(t *testing.T) {
	nodes := []tsproto.NavigationTree{
		{
			Text:          "oldFn",
			Kind:          "function",
			KindModifiers: "deprecated",
			Spans:         []tsproto.TextSpan{span(1, 1, 1, 10)},
		},
		{
			Text:  "newFn",
			Kind:  "function",
			Spans: []tsproto.TextSpan{span(2, 1, 2, 10)},
		},
	}

	symbols := toDocumentSymbols(nodes)
	require.Len(t, symbols, 2)
	assert.Equal(t, []protocol.SymbolTag{protocol.SymbolTagDeprecated}, symbols[0].Tags)
	assert.Empty(t, symbols[1].Tags)
}

func TestFlattenSymbolsSetsContainerNameFromParent(t *testing.T) {
	nodes := []tsproto.NavigationTree{
		{
			Text:  "Outer",
			Kind:  "class",
			Spans: []tsproto.TextSpan{span(1, 1, 5, 1)},
			ChildItems: []tsproto.NavigationTree{
				{Text: "method", Kind: "method", Spans: []tsproto.TextSpan{span(2, 1, 2, 10)}},
			},
		},
	}

	flat := flattenSymbols("file:///a.ts", nodes, "")
	require.Len(t, flat, 2)
	assert.Equal(t, "", flat[0].ContainerName)
	assert.Equal(t, "Outer", flat[1].ContainerName)
}

func TestFoldingKindMapsKnownKinds(t *testing.T) {
	assert.Equal(t, protocol.CommentFoldingRange, foldingKind("comment"))
	assert.Equal(t, protocol.RegionFoldingRange, foldingKind("region"))
	assert.Equal(t, protocol.ImportsFoldingRange, foldingKind("imports"))
	assert.Equal(t, protocol.FoldingRangeKind(""), foldingKind("code"))
}

func TestDecodeCompletionDataRoundTrips(t *testing.T) {
	raw := map[string]interface{}{
		"file":   "/a.ts",
		"line":   float64(3),
		"offset": float64(7),
		"entryNames": []interface{}{
			map[string]interface{}{"name": "foo", "source": "./foo"},
		},
	}

	data, ok := decodeCompletionData(raw)
	require.True(t, ok)
	assert.Equal(t, "/a.ts", data.File)
	assert.Equal(t, 3, data.Line)
	require.Len(t, data.EntryNames, 1)
	assert.Equal(t, "foo", data.EntryNames[0].Name)
	assert.Equal(t, "./foo", data.EntryNames[0].Source)
}

func TestDecodeCompletionDataMissingFileFails(t *testing.T) {
	_, ok := decodeCompletionData(map[string]interface{}{"line": float64(1)})
	assert.False(t, ok)
}

func TestFindEnclosingReturnsDeepestContainingNode(t *testing.T) {
	nodes := []tsproto.NavigationTree{
		{
			Text:  "Outer",
			Spans: []tsproto.TextSpan{span(1, 1, 10, 1)},
			ChildItems: []tsproto.NavigationTree{
				{Text: "inner", Spans: []tsproto.TextSpan{span(3, 1, 5, 1)}},
			},
		},
	}

	got := findEnclosing(nodes, protocol.Position{Line: 3, Character: 5})
	require.NotNil(t, got)
	assert.Equal(t, "inner", got.Text)

	none := findEnclosing(nodes, protocol.Position{Line: 20, Character: 0})
	assert.Nil(t, none)
}

func TestArgAtAndDecodeArg(t *testing.T) {
	args := []interface{}{"first", map[string]interface{}{"k": "v"}}

	assert.Equal(t, "first", argAt(args, 0))
	assert.Nil(t, argAt(args, 5))

	var out struct {
		K string `json:"k"`
	}
	require.NoError(t, decodeArg(argAt(args, 1), &out))
	assert.Equal(t, "v", out.K)
}

func TestTransportCommandConstantsAreTypescriptNamespaced(t *testing.T) {
	for _, cmd := range []string{
		CommandApplyWorkspaceEdit,
		CommandApplyCodeAction,
		CommandApplyRefactoring,
		CommandOrganizeImports,
		CommandApplyRenameFile,
	} {
		assert.Contains(t, cmd, "_typescript.")
	}
}
