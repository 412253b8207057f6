package position

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOffsetAtPositionAtRoundTrip(t *testing.T) {
	text := "line one\r\nline two\nline three"
	for _, offset := range []int{0, 4, 9, 10, len("line one\r\nline two\n"), len(text)} {
		pos := PositionAt(text, offset)
		got := OffsetAt(text, pos)
		assert.Equal(t, offset, got, "round trip for offset %d via %+v", offset, pos)
	}
}

func TestOffsetAtHandlesAllLineBreakStyles(t *testing.T) {
	cases := []struct {
		text string
		pos  Position
		want int
	}{
		{"a\nb", Position{Line: 1, Character: 0}, 2},
		{"a\r\nb", Position{Line: 1, Character: 0}, 3},
		{"a\rb", Position{Line: 1, Character: 0}, 2},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, OffsetAt(c.text, c.pos), "text %q pos %+v", c.text, c.pos)
	}
}

func TestOffsetAtUTF16Surrogates(t *testing.T) {
	// U+1F600 (grinning face) encodes as a UTF-16 surrogate pair, so it
	// occupies two "characters" for LSP position math despite being one
	// rune and four UTF-8 bytes.
	text := "a\U0001F600b"
	pos := Position{Line: 0, Character: 3}
	offset := OffsetAt(text, pos)
	assert.Equal(t, len("a\U0001F600"), offset)
}

func TestLineCountAndLine(t *testing.T) {
	text := "one\ntwo\nthree"
	require.Equal(t, 3, LineCount(text))
	assert.Equal(t, "two", Line(text, 1))
	assert.Equal(t, "", Line(text, 10))
}

func TestWordRangeAtOnWhitespaceReturnsFalse(t *testing.T) {
	text := "foo   bar"
	_, ok := WordRangeAt(text, Position{Line: 0, Character: 4})
	assert.False(t, ok)
}

func TestWordRangeAtInsideWord(t *testing.T) {
	text := "foo.bar baz"
	r, ok := WordRangeAt(text, Position{Line: 0, Character: 5})
	require.True(t, ok)
	assert.Equal(t, Range{
		Start: Position{Line: 0, Character: 4},
		End:   Position{Line: 0, Character: 7},
	}, r)
}

func TestContainsAndUnion(t *testing.T) {
	r := Range{Start: Position{0, 2}, End: Position{0, 5}}
	assert.True(t, Contains(r, Position{0, 3}))
	assert.False(t, Contains(r, Position{0, 5}))

	other := Range{Start: Position{0, 0}, End: Position{0, 3}}
	assert.Equal(t, Range{Start: Position{0, 0}, End: Position{0, 5}}, Union(r, other))
}

func TestClampToStartLine(t *testing.T) {
	r := Range{Start: Position{Line: 1, Character: 2}, End: Position{Line: 3, Character: 0}}
	clamped := ClampToStartLine(r, 8)
	assert.Equal(t, Position{Line: 1, Character: 8}, clamped.End)
}
