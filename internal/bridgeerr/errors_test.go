package bridgeerr

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindJSONRoundTrip(t *testing.T) {
	for _, k := range []Kind{MissingTsserver, ProtocolSync, CommandFailure, NoContentAvailable, InvalidDocument, Cancellation, TransportDead} {
		data, err := json.Marshal(k)
		require.NoError(t, err)

		var got Kind
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, k, got)
	}
}

func TestKindUnmarshalRejectsUnknown(t *testing.T) {
	var k Kind
	err := json.Unmarshal([]byte(`"not_a_kind"`), &k)
	assert.Error(t, err)
}

func TestErrorMessageIncludesCommand(t *testing.T) {
	err := New(CommandFailure, "boom").WithCommand("completionInfo")
	assert.Contains(t, err.Error(), "completionInfo")
	assert.Contains(t, err.Error(), "command_failure")
}

func TestIsMatchesKind(t *testing.T) {
	err := New(TransportDead, "child exited")
	assert.True(t, Is(err, TransportDead))
	assert.False(t, Is(err, Cancellation))
}

func TestErrorMarshalsAsObject(t *testing.T) {
	err := New(InvalidDocument, "unknown file").WithFile("/a.ts")
	data, marshalErr := json.Marshal(err)
	require.NoError(t, marshalErr)
	assert.Contains(t, string(data), `"file":"/a.ts"`)
	assert.Contains(t, string(data), `"kind":"invalid_document"`)
}
