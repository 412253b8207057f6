package tsprocess

import (
	"context"
	"os/exec"
	"runtime"
	"testing"
	"time"

	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodets/tsbridge/internal/bridgeerr"
	"github.com/nodets/tsbridge/internal/tsproto"
)

func TestBuildArgsIncludesConfiguredFlags(t *testing.T) {
	args, err := buildArgs(Options{
		LogFile:              "/tmp/ts.log",
		LogVerbosity:         "verbose",
		GlobalPlugins:        []string{"a", "b"},
		PluginProbeLocations: []string{"/p1", "/p2"},
	}, "/tmp/cancel.")
	require.NoError(t, err)

	assert.Contains(t, args, "--logFile")
	assert.Contains(t, args, "/tmp/ts.log")
	assert.Contains(t, args, "--globalPlugins")
	assert.Contains(t, args, "a,b")
	assert.Contains(t, args, "--cancellationPipeName")
	assert.Contains(t, args, "/tmp/cancel.*")
}

func TestBuildArgsParsesExtraArgs(t *testing.T) {
	args, err := buildArgs(Options{ExtraArgs: "--locale en --foo 'bar baz'"}, "/tmp/cancel.")
	require.NoError(t, err)
	assert.Contains(t, args, "--locale")
	assert.Contains(t, args, "en")
	assert.Contains(t, args, "bar baz")
}

func TestBuildArgsRejectsUnterminatedQuote(t *testing.T) {
	_, err := buildArgs(Options{ExtraArgs: "--foo 'unterminated"}, "/tmp/cancel.")
	assert.Error(t, err)
}

func TestResponseErrorDistinguishesNoContentAvailable(t *testing.T) {
	err := responseError(&tsproto.Response{Success: false, Message: "No content available.", Command: "completionInfo"})
	assert.True(t, bridgeerr.Is(err, bridgeerr.NoContentAvailable))

	err = responseError(&tsproto.Response{Success: false, Message: "something else broke", Command: "rename"})
	assert.True(t, bridgeerr.Is(err, bridgeerr.CommandFailure))

	assert.Nil(t, responseError(&tsproto.Response{Success: true}))
}

func TestSpawnWithoutPathFailsAsMissingTsserver(t *testing.T) {
	_, err := Spawn(context.Background(), Options{})
	require.Error(t, err)
	assert.True(t, bridgeerr.Is(err, bridgeerr.MissingTsserver))
}

// fakeTsserverScript is a minimal shell "tsserver" used to exercise the
// real Request/Notify wire path end to end: it echoes back a successful
// response for every request line it reads, embedding the request's
// own seq and command.
const fakeTsserverScript = `
while IFS= read -r line; do
  seq=$(printf '%s' "$line" | sed -n 's/.*"seq":\([0-9]*\).*/\1/p')
  cmd=$(printf '%s' "$line" | sed -n 's/.*"command":"\([a-zA-Z]*\)".*/\1/p')
  printf '{"seq":0,"type":"response","request_seq":%s,"success":true,"command":"%s","body":{"ok":true}}\n' "$seq" "$cmd"
done
`

func TestRequestRoundTripsWithFakeTsserver(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake tsserver script requires a POSIX shell")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", fakeTsserverScript)
	transport, err := start(ctx, cmd, t.TempDir()+"/cancel-", Options{})
	require.NoError(t, err)
	defer transport.Close()

	future, err := transport.Request("quickinfo", map[string]any{"file": "/a.ts"})
	require.NoError(t, err)

	select {
	case <-future.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("request did not resolve in time")
	}

	body, err := future.Result()
	require.NoError(t, err)

	var decoded map[string]bool
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.True(t, decoded["ok"])
}
