package mirror

import (
	"testing"

	"github.com/nodets/tsbridge/internal/position"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenThenReopenFails(t *testing.T) {
	set := NewSet()
	_, ok := set.Open("/a.ts", OpenParams{Path: "/a.ts", Text: "x", Version: 1})
	require.True(t, ok)

	_, ok = set.Open("/a.ts", OpenParams{Path: "/a.ts", Text: "y", Version: 1})
	assert.False(t, ok, "re-opening an already-open path must fail")
}

func TestApplyEditReplacesRange(t *testing.T) {
	set := NewSet()
	doc, _ := set.Open("/a.ts", OpenParams{Path: "/a.ts", Text: "x", Version: 1})

	doc.ApplyEdit(2, Change{
		Range: &position.Range{
			Start: position.Position{Line: 0, Character: 0},
			End:   position.Position{Line: 0, Character: 1},
		},
		Text: "y",
	})

	assert.Equal(t, "y", doc.Text)
	assert.Equal(t, 2, doc.Version)
}

func TestApplyEditFullTextWhenRangeNil(t *testing.T) {
	set := NewSet()
	doc, _ := set.Open("/a.ts", OpenParams{Path: "/a.ts", Text: "old", Version: 1})

	doc.ApplyEdit(2, Change{Text: "brand new text"})

	assert.Equal(t, "brand new text", doc.Text)
}

func TestCloseRemovesDocument(t *testing.T) {
	set := NewSet()
	set.Open("/a.ts", OpenParams{Path: "/a.ts", Text: "x", Version: 1})

	doc, ok := set.Close("/a.ts")
	require.True(t, ok)
	assert.Equal(t, "/a.ts", doc.Path)

	_, ok = set.Get("/a.ts")
	assert.False(t, ok)
}

func TestGetPromotesMostRecentlyAccessed(t *testing.T) {
	set := NewSet()
	set.Open("/a.ts", OpenParams{Path: "/a.ts", Text: "a", Version: 1})
	set.Open("/b.ts", OpenParams{Path: "/b.ts", Text: "b", Version: 1})

	_, ok := set.Get("/a.ts")
	require.True(t, ok)

	recent, ok := set.MostRecentPath()
	require.True(t, ok)
	assert.Equal(t, "/a.ts", recent)
}

func TestSequentialEditsApplyInVersionOrder(t *testing.T) {
	set := NewSet()
	doc, _ := set.Open("/a.ts", OpenParams{Path: "/a.ts", Text: "abc", Version: 1})

	doc.ApplyEdit(2, Change{
		Range: &position.Range{Start: position.Position{Line: 0, Character: 0}, End: position.Position{Line: 0, Character: 1}},
		Text:  "X",
	})
	doc.ApplyEdit(3, Change{
		Range: &position.Range{Start: position.Position{Line: 0, Character: 3}, End: position.Position{Line: 0, Character: 3}},
		Text:  "Y",
	})

	assert.Equal(t, "XbcY", doc.Text)
	assert.Equal(t, 3, doc.Version)
}
