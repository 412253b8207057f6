// Package tsprocess owns the tsserver child process: spawning it,
// framing outbound requests and notifications as newline-delimited
// JSON, correlating inbound responses by sequence number, and routing
// unsolicited events to an injected callback. It is the one component
// that touches os/exec and the wire bytes tsserver actually speaks.
package tsprocess

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/kballard/go-shellquote"
	"github.com/segmentio/encoding/json"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nodets/tsbridge/internal/bridgeerr"
	"github.com/nodets/tsbridge/internal/tsproto"
)

// Options configures a Transport's tsserver child process.
type Options struct {
	// TsserverPath is the injected path to tsserver: either a native
	// executable or a ".js" entry point run under NodePath.
	TsserverPath string
	// NodePath is the node executable used when TsserverPath ends in
	// ".js". Defaults to "node" when empty.
	NodePath string
	// LogFile, LogVerbosity, GlobalPlugins, PluginProbeLocations map
	// directly onto tsserver's own flags of the same purpose; each is
	// omitted from argv when empty.
	LogFile              string
	LogVerbosity         string
	GlobalPlugins        []string
	PluginProbeLocations []string
	// CancellationPipeBase is the directory/prefix under which
	// cancellation pipe files are created; namespaced per Transport
	// instance with a uuid suffix so two bridges sharing a temp
	// directory never collide.
	CancellationPipeBase string
	// ExtraArgs is an optional shell-quoted string of additional
	// tsserver flags (e.g. "--locale en").
	ExtraArgs string
	// OnEvent receives every tsserver event that is not itself handled
	// by the transport (diagnostics, telemetry, and similar).
	OnEvent func(tsproto.Event)
	Logger  *zap.SugaredLogger
}

// pendingRequest is one outstanding request awaiting a correlated
// response or requestCompleted event.
type pendingRequest struct {
	command    string
	cancelFile string
	future     *Future
}

// Future is the handle returned by Request. It resolves exactly once,
// either with a decoded response body or an error.
type Future struct {
	seq  int
	done chan struct{}
	resp json.RawMessage
	err  error
	t    *Transport
}

// Result blocks until the future resolves.
func (f *Future) Result() (json.RawMessage, error) {
	<-f.done
	return f.resp, f.err
}

// Done returns a channel closed when the future resolves, for use in a
// select alongside context cancellation.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Cancel requests best-effort cancellation of the underlying tsserver
// request by creating its cancellation pipe file. It does not itself
// resolve the future — tsserver may still complete the work and reply
// normally.
func (f *Future) Cancel() {
	f.t.requestCancel(f.seq)
}

// Transport owns one tsserver child process for the lifetime of a
// bridge session.
type Transport struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	stderr io.ReadCloser

	writeMu sync.Mutex
	seq     atomic.Int64

	pendingMu sync.Mutex
	pending   map[int]*pendingRequest

	cancelPrefix string
	onEvent      func(tsproto.Event)
	logger       *zap.SugaredLogger

	deadMu sync.Mutex
	dead   bool
	deadErr error

	group *errgroup.Group
}

// Spawn starts the tsserver child process described by opts and begins
// its reader and stderr-forwarding goroutines under ctx. The returned
// Transport is live until ctx is cancelled, the child exits, or Close
// is called.
func Spawn(ctx context.Context, opts Options) (*Transport, error) {
	if opts.TsserverPath == "" {
		return nil, bridgeerr.New(bridgeerr.MissingTsserver, "no tsserver path configured")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}

	cancelPrefix := opts.CancellationPipeBase
	if cancelPrefix == "" {
		cancelPrefix = os.TempDir() + string(os.PathSeparator) + "tsbridge-cancellation-"
	}
	cancelPrefix = cancelPrefix + uuid.New().String() + "."

	args, err := buildArgs(opts, cancelPrefix)
	if err != nil {
		return nil, err
	}

	var cmd *exec.Cmd
	if strings.HasSuffix(opts.TsserverPath, ".js") {
		node := opts.NodePath
		if node == "" {
			node = "node"
		}
		cmd = exec.CommandContext(ctx, node, append([]string{opts.TsserverPath}, args...)...)
	} else {
		cmd = exec.CommandContext(ctx, opts.TsserverPath, args...)
	}

	return start(ctx, cmd, cancelPrefix, opts)
}

// start wires pipes for an already-constructed, not-yet-started command
// and begins its reader/stderr goroutines. Split out of Spawn so tests
// can exercise the real wire protocol against a fake tsserver launched
// through an arbitrary argv (e.g. "sh -c <script>") without needing the
// ".js"-vs-native-executable branching Spawn applies to TsserverPath.
func start(ctx context.Context, cmd *exec.Cmd, cancelPrefix string, opts Options) (*Transport, error) {
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, bridgeerr.New(bridgeerr.MissingTsserver, err.Error())
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, bridgeerr.New(bridgeerr.MissingTsserver, err.Error())
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, bridgeerr.New(bridgeerr.MissingTsserver, err.Error())
	}

	if err := cmd.Start(); err != nil {
		return nil, bridgeerr.New(bridgeerr.MissingTsserver, err.Error())
	}

	group, gctx := errgroup.WithContext(ctx)
	t := &Transport{
		cmd:          cmd,
		stdin:        stdin,
		stdout:       stdout,
		stderr:       stderr,
		pending:      make(map[int]*pendingRequest),
		cancelPrefix: cancelPrefix,
		onEvent:      opts.OnEvent,
		logger:       opts.Logger,
		group:        group,
	}

	group.Go(func() error { return t.readLoop() })
	group.Go(func() error { return t.stderrLoop() })
	group.Go(func() error {
		<-gctx.Done()
		return nil
	})

	go func() {
		err := group.Wait()
		t.markDead(err)
	}()

	return t, nil
}

func buildArgs(opts Options, cancelPrefix string) ([]string, error) {
	var args []string
	if opts.LogFile != "" {
		args = append(args, "--logFile", opts.LogFile)
	}
	if opts.LogVerbosity != "" {
		args = append(args, "--logVerbosity", opts.LogVerbosity)
	}
	if len(opts.GlobalPlugins) > 0 {
		args = append(args, "--globalPlugins", strings.Join(opts.GlobalPlugins, ","))
	}
	if len(opts.PluginProbeLocations) > 0 {
		args = append(args, "--pluginProbeLocations", strings.Join(opts.PluginProbeLocations, ","))
	}
	args = append(args, "--cancellationPipeName", cancelPrefix+"*")

	if opts.ExtraArgs != "" {
		extra, err := shellquote.Split(opts.ExtraArgs)
		if err != nil {
			return nil, fmt.Errorf("tsprocess: parsing TSSERVER_EXTRA_ARGS: %w", err)
		}
		args = append(args, extra...)
	}
	return args, nil
}

// Notify sends a fire-and-forget message; tsserver commands like open,
// close, change, and saveto produce no reply.
func (t *Transport) Notify(command string, args interface{}) error {
	if dead, err := t.isDead(); dead {
		return err
	}
	seq := int(t.seq.Add(1))
	return t.send(seq, command, args)
}

// Request sends a message expecting a correlated response or
// requestCompleted event, returning a Future that resolves exactly
// once.
func (t *Transport) Request(command string, args interface{}) (*Future, error) {
	if dead, err := t.isDead(); dead {
		return nil, err
	}
	seq := int(t.seq.Add(1))
	future := &Future{seq: seq, done: make(chan struct{}), t: t}
	pr := &pendingRequest{
		command:    command,
		cancelFile: t.cancelPrefix + strconv.Itoa(seq),
		future:     future,
	}

	t.pendingMu.Lock()
	t.pending[seq] = pr
	t.pendingMu.Unlock()

	if err := t.send(seq, command, args); err != nil {
		t.pendingMu.Lock()
		delete(t.pending, seq)
		t.pendingMu.Unlock()
		return nil, err
	}
	return future, nil
}

func (t *Transport) send(seq int, command string, args interface{}) error {
	req := tsproto.Request{Seq: seq, Type: tsproto.TypeRequest, Command: command, Arguments: args}
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("tsprocess: encoding %s request: %w", command, err)
	}
	data = append(data, '\n')

	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if _, err := t.stdin.Write(data); err != nil {
		return bridgeerr.New(bridgeerr.TransportDead, err.Error()).WithCommand(command)
	}
	return nil
}

// requestCancel writes the empty cancellation pipe file for seq,
// best-effort: write failures are swallowed, matching spec.md's
// "error-swallowing" cancellation semantics.
func (t *Transport) requestCancel(seq int) {
	path := t.cancelPrefix + strconv.Itoa(seq)
	f, err := os.Create(path)
	if err != nil {
		t.logger.Debugw("tsprocess: failed to write cancellation pipe", "seq", seq, "error", err)
		return
	}
	f.Close()
}

func (t *Transport) readLoop() error {
	scanner := bufio.NewScanner(t.stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || bytes.HasPrefix(line, []byte("Content-Length:")) {
			continue
		}

		var envelope tsproto.MessageEnvelope
		if err := json.Unmarshal(line, &envelope); err != nil {
			t.logger.Errorw("tsprocess: malformed tsserver line", "error", err)
			continue
		}

		switch envelope.Type {
		case tsproto.TypeResponse:
			t.handleResponse(line)
		case tsproto.TypeEvent:
			t.handleEvent(line)
		default:
			t.logger.Warnw("tsprocess: unexpected message type", "type", envelope.Type)
		}
	}

	if err := scanner.Err(); err != nil {
		return err
	}
	return io.EOF
}

func (t *Transport) handleResponse(line []byte) {
	var resp tsproto.Response
	if err := json.Unmarshal(line, &resp); err != nil {
		t.logger.Errorw("tsprocess: malformed tsserver response", "error", err)
		return
	}
	t.resolve(resp.RequestSeq, resp.Body, responseError(&resp))
}

func (t *Transport) handleEvent(line []byte) {
	var ev tsproto.Event
	if err := json.Unmarshal(line, &ev); err != nil {
		t.logger.Errorw("tsprocess: malformed tsserver event", "error", err)
		return
	}

	if ev.Event == tsproto.EventRequestCompleted {
		var body tsproto.RequestCompletedBody
		if err := json.Unmarshal(ev.Body, &body); err != nil {
			t.logger.Errorw("tsprocess: malformed requestCompleted body", "error", err)
			return
		}
		t.resolve(body.RequestSeq, nil, nil)
		return
	}

	if t.onEvent != nil {
		t.onEvent(ev)
	}
}

func responseError(resp *tsproto.Response) error {
	if resp.Success {
		return nil
	}
	if strings.Contains(resp.Message, "No content available") {
		return bridgeerr.New(bridgeerr.NoContentAvailable, resp.Message).WithCommand(resp.Command)
	}
	return bridgeerr.New(bridgeerr.CommandFailure, resp.Message).WithCommand(resp.Command)
}

// resolve settles the pending entry for seq, if any. A response with no
// pending entry is a protocol-sync error: logged and dropped, never
// fatal.
func (t *Transport) resolve(seq int, body json.RawMessage, err error) {
	t.pendingMu.Lock()
	pr, ok := t.pending[seq]
	if ok {
		delete(t.pending, seq)
	}
	t.pendingMu.Unlock()

	if !ok {
		t.logger.Warnw("tsprocess: response for unknown or already-settled request", "seq", seq)
		return
	}
	os.Remove(pr.cancelFile)

	pr.future.resp = body
	pr.future.err = err
	close(pr.future.done)
}

func (t *Transport) stderrLoop() error {
	scanner := bufio.NewScanner(t.stderr)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		t.logger.Errorw("tsserver", "stderr", scanner.Text())
	}
	return nil
}

// markDead fails every still-pending request with a transport-dead
// error and prevents further sends, called once the reader loop, the
// stderr loop, and the context all agree the transport is finished.
func (t *Transport) markDead(cause error) {
	t.deadMu.Lock()
	if t.dead {
		t.deadMu.Unlock()
		return
	}
	t.dead = true
	if cause != nil && cause != io.EOF {
		t.deadErr = bridgeerr.New(bridgeerr.TransportDead, cause.Error())
	} else {
		t.deadErr = bridgeerr.New(bridgeerr.TransportDead, "tsserver process exited")
	}
	deadErr := t.deadErr
	t.deadMu.Unlock()

	t.stdin.Close()
	t.cmd.Wait()

	t.pendingMu.Lock()
	remaining := t.pending
	t.pending = make(map[int]*pendingRequest)
	t.pendingMu.Unlock()

	for _, pr := range remaining {
		os.Remove(pr.cancelFile)
		pr.future.resp = nil
		pr.future.err = deadErr
		close(pr.future.done)
	}
}

func (t *Transport) isDead() (bool, error) {
	t.deadMu.Lock()
	defer t.deadMu.Unlock()
	return t.dead, t.deadErr
}

// Close terminates the child process and waits for its goroutines to
// finish.
func (t *Transport) Close() error {
	if t.cmd.Process != nil {
		t.stdin.Close()
	}
	return t.group.Wait()
}
