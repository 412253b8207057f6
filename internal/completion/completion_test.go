package completion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"github.com/nodets/tsbridge/internal/tsproto"
)

func TestFilterTextBracketAccessorRewrite(t *testing.T) {
	got := filterText("xyz", `["ab"]`, false)
	assert.Equal(t, ".ab", got)
}

func TestFilterTextThisPrefixSuppressed(t *testing.T) {
	got := filterText("foo", "this.foo", false)
	assert.Equal(t, "", got)
}

func TestFilterTextPrivateFieldStripsHashByDefault(t *testing.T) {
	got := filterText("#bar", "", false)
	assert.Equal(t, "bar", got)
}

func TestFilterTextPrivateFieldKeepsHashWhenPrecedingIsHash(t *testing.T) {
	got := filterText("#bar", "", true)
	assert.Equal(t, "#bar", got)
}

func TestFilterTextPrivateFieldThisHashVariant(t *testing.T) {
	got := filterText("#bar", "this.#bar", false)
	assert.Equal(t, "bar", got)

	got = filterText("#bar", "this.#bar", true)
	assert.Equal(t, "this.#bar", got)
}

func TestDotAccessorContextDetectsDotAndOptionalChain(t *testing.T) {
	_, ok := dotAccessorContext("obj.")
	assert.True(t, ok)

	_, ok = dotAccessorContext("obj?.")
	assert.True(t, ok)

	_, ok = dotAccessorContext("obj")
	assert.False(t, ok)
}

func TestBackwardScanRangeFindsCaseInsensitiveMatch(t *testing.T) {
	units := lineUTF16("console.lo")
	start, end := backwardScanRange(units, len(units), "Log")
	assert.Equal(t, "lo", sliceUTF16(units, start, end))
}

func TestBuildItemsFiltersWarningsWhenNameSuggestionsOff(t *testing.T) {
	items := BuildItems(BuildParams{
		File:     "/a.ts",
		Cursor:   protocol.Position{Line: 0, Character: 3},
		LineText: "foo",
		Info: tsproto.CompletionInfo{
			Entries: []tsproto.CompletionEntry{
				{Name: "fooSuggestion", Kind: kindWarning},
				{Name: "foobar", Kind: kindVariable, SortText: "1"},
			},
		},
		Settings: Settings{NameSuggestions: false, PathSuggestions: true, AutoImportSuggestions: true},
	})
	require.Len(t, items, 1)
	assert.Equal(t, "foobar", items[0].Label)
}

func TestBuildItemsSortTextPrefixedForAutoImport(t *testing.T) {
	items := BuildItems(BuildParams{
		File:     "/a.ts",
		Cursor:   protocol.Position{Line: 0, Character: 0},
		LineText: "",
		Info: tsproto.CompletionInfo{
			Entries: []tsproto.CompletionEntry{
				{Name: "Foo", Kind: kindClass, SortText: "0", Source: "./foo"},
			},
		},
		Settings: Settings{NameSuggestions: true, PathSuggestions: true, AutoImportSuggestions: true},
	})
	require.Len(t, items, 1)
	assert.Equal(t, "￿0", items[0].SortText)
}

func TestBuildItemsCommitCharactersByKind(t *testing.T) {
	items := BuildItems(BuildParams{
		File:     "/a.ts",
		Cursor:   protocol.Position{Line: 0, Character: 0},
		LineText: "",
		Info: tsproto.CompletionInfo{
			Entries: []tsproto.CompletionEntry{
				{Name: "foo", Kind: kindFunction},
				{Name: "Enum", Kind: kindEnum},
				{Name: "primitive", Kind: "primitiveType"},
			},
		},
		Settings: Settings{NameSuggestions: true, PathSuggestions: true, AutoImportSuggestions: true},
	})
	require.Len(t, items, 3)
	assert.Equal(t, []string{".", ",", "("}, items[0].CommitCharacters)
	assert.Equal(t, []string{"."}, items[1].CommitCharacters)
	assert.Empty(t, items[2].CommitCharacters)
}

func TestResolveItemAutoImportDetail(t *testing.T) {
	data := Data{File: "/a.ts", EntryNames: []EntryNameArg{{Name: "Foo", Source: "./foo"}}}
	item := protocol.CompletionItem{Label: "Foo"}

	resolved := ResolveItem(item, data, tsproto.CompletionEntryDetails{
		DisplayParts: []tsproto.SymbolDisplayPart{{Text: "class Foo"}},
		CodeActions: []tsproto.CodeAction{
			{
				Description: "Add import",
				Changes: []tsproto.FileCodeEdits{
					{FileName: "/a.ts", TextChanges: []tsproto.CodeEdit{{NewText: "import Foo from './foo';\n"}}},
				},
			},
		},
	})

	assert.Equal(t, "Auto import from './foo'\nclass Foo", resolved.Detail)
	require.Len(t, resolved.AdditionalTextEdits, 1)
	assert.Nil(t, resolved.Command)
}

func TestResolveItemRemainingActionsBecomeCommand(t *testing.T) {
	data := Data{File: "/a.ts"}
	item := protocol.CompletionItem{Label: "Foo"}

	resolved := ResolveItem(item, data, tsproto.CompletionEntryDetails{
		CodeActions: []tsproto.CodeAction{
			{
				Description: "Add import elsewhere",
				Changes: []tsproto.FileCodeEdits{
					{FileName: "/other.ts", TextChanges: []tsproto.CodeEdit{{NewText: "x"}}},
				},
			},
		},
	})

	assert.Empty(t, resolved.AdditionalTextEdits)
	require.NotNil(t, resolved.Command)
	assert.Equal(t, ResolveCommand, resolved.Command.Command)
}

func TestEntryNameArgRoundTripsBareNameAndSourcePair(t *testing.T) {
	bare := EntryNameArg{Name: "foo"}
	encoded, err := bare.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"foo"`, string(encoded))

	var decodedBare EntryNameArg
	require.NoError(t, decodedBare.UnmarshalJSON(encoded))
	assert.Equal(t, bare, decodedBare)

	withSource := EntryNameArg{Name: "foo", Source: "./foo"}
	encoded, err = withSource.MarshalJSON()
	require.NoError(t, err)

	var decodedWithSource EntryNameArg
	require.NoError(t, decodedWithSource.UnmarshalJSON(encoded))
	assert.Equal(t, withSource, decodedWithSource)
}
