package diagnostics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodets/tsbridge/internal/tsproto"
)

func TestUpdatePublishesFixedOrderConcatenation(t *testing.T) {
	q := NewQueue()

	_, published := q.Update("/a.ts", Syntax, []tsproto.Diagnostic{
		{Text: "syntax issue", Category: tsproto.CategoryError},
	})
	require.Len(t, published, 1)

	_, published = q.Update("/a.ts", Semantic, []tsproto.Diagnostic{
		{Text: "semantic issue", Category: tsproto.CategoryError},
	})
	require.Len(t, published, 2)
	assert.Equal(t, "syntax issue", published[0].Message)
	assert.Equal(t, "semantic issue", published[1].Message)

	_, published = q.Update("/a.ts", Suggestion, []tsproto.Diagnostic{
		{Text: "suggestion issue", Category: tsproto.CategorySuggestion},
	})
	require.Len(t, published, 3)
	assert.Equal(t, "suggestion issue", published[2].Message)
}

func TestUpdateReplacesBucketAtomically(t *testing.T) {
	q := NewQueue()
	q.Update("/a.ts", Semantic, []tsproto.Diagnostic{{Text: "old"}, {Text: "old2"}})
	_, published := q.Update("/a.ts", Semantic, []tsproto.Diagnostic{{Text: "new"}})
	require.Len(t, published, 1)
	assert.Equal(t, "new", published[0].Message)
}

func TestClearReturnsEmptyList(t *testing.T) {
	q := NewQueue()
	q.Update("/a.ts", Syntax, []tsproto.Diagnostic{{Text: "x"}})
	published := q.Clear("/a.ts")
	assert.Empty(t, published)

	_, republished := q.Update("/a.ts", Semantic, []tsproto.Diagnostic{{Text: "fresh"}})
	assert.Len(t, republished, 1, "clearing must not leak stale buckets into future updates")
}

func TestEventKindForMapsAllThreeEvents(t *testing.T) {
	k, ok := EventKindFor(tsproto.EventSyntaxDiag)
	require.True(t, ok)
	assert.Equal(t, Syntax, k)

	k, ok = EventKindFor(tsproto.EventSemanticDiag)
	require.True(t, ok)
	assert.Equal(t, Semantic, k)

	k, ok = EventKindFor(tsproto.EventSuggestionDiag)
	require.True(t, ok)
	assert.Equal(t, Suggestion, k)

	_, ok = EventKindFor("requestCompleted")
	assert.False(t, ok)
}
