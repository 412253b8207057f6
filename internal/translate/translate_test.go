package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"github.com/nodets/tsbridge/internal/tsproto"
)

func TestAsRangeConvertsOneBasedToZeroBased(t *testing.T) {
	r := AsRange(tsproto.TextSpan{
		Start: tsproto.Location{Line: 1, Offset: 1},
		End:   tsproto.Location{Line: 2, Offset: 5},
	})
	assert.Equal(t, protocol.Position{Line: 0, Character: 0}, r.Start)
	assert.Equal(t, protocol.Position{Line: 1, Character: 4}, r.End)
}

func TestToFileRangeRequestArgsRoundTripsWithAsRange(t *testing.T) {
	original := protocol.Range{
		Start: protocol.Position{Line: 3, Character: 2},
		End:   protocol.Position{Line: 3, Character: 9},
	}
	args := ToFileRangeRequestArgs("/a.ts", original)

	span := tsproto.TextSpan{
		Start: tsproto.Location{Line: args.StartLine, Offset: args.StartOffset},
		End:   tsproto.Location{Line: args.EndLine, Offset: args.EndOffset},
	}
	assert.Equal(t, original, AsRange(span))
}

func TestPathToURIThenURIToPathRoundTrips(t *testing.T) {
	u := PathToURI("/home/user/project/a.ts")
	path, ok := URIToPath(u)
	require.True(t, ok)
	assert.Equal(t, "/home/user/project/a.ts", path)
}

func TestURIToPathRejectsNonFileScheme(t *testing.T) {
	_, ok := URIToPath("https://example.com/a.ts")
	assert.False(t, ok)
}

func TestAsTagsDocumentationRendersAtTagLines(t *testing.T) {
	tags := []tsproto.JSDocTagInfo{
		{Name: "param", Text: []tsproto.SymbolDisplayPart{{Text: "x the input"}}},
		{Name: "deprecated"},
	}
	got := AsTagsDocumentation(tags)
	assert.Equal(t, "@param x the input\n@deprecated", got)
}

func TestToCompletionItemKindFixedTable(t *testing.T) {
	assert.Equal(t, protocol.CompletionItemKindKeyword, ToCompletionItemKind("keyword"))
	assert.Equal(t, protocol.CompletionItemKindField, ToCompletionItemKind("memberVariableElement"))
	assert.Equal(t, protocol.CompletionItemKindMethod, ToCompletionItemKind("memberFunctionElement"))
	assert.Equal(t, protocol.CompletionItemKindFolder, ToCompletionItemKind("directory"))
	assert.Equal(t, protocol.CompletionItemKindProperty, ToCompletionItemKind("somethingUnknown"))
}

func TestExtensionModifierPrefersDotDTs(t *testing.T) {
	ext, ok := ExtensionModifier("declare,.d.ts")
	require.True(t, ok)
	assert.Equal(t, ".d.ts", ext)
}

func TestHasModifierOptional(t *testing.T) {
	assert.True(t, HasModifier("optional,deprecated", ModifierOptional))
	assert.False(t, HasModifier("deprecated", ModifierOptional))
}
