// Package server implements the LSP request dispatcher: the component
// that orchestrates the document mirror, the translation layer, the
// tsserver subprocess transport, the diagnostic queue, and the
// completion pipeline to answer each LSP method. Its wiring (stream,
// connection, client dispatcher, per-method switch) is adapted from the
// teacher's internal/lsp package, generalized from a single in-process
// compiler API to a tsserver subprocess transport.
package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/nodets/tsbridge/internal/completion"
	"github.com/nodets/tsbridge/internal/diagnostics"
	"github.com/nodets/tsbridge/internal/mirror"
	"github.com/nodets/tsbridge/internal/tsprocess"
)

// diagnosticsDebounce is the quiescence window of spec.md §5: every
// document-changing event schedules a geterr request, reset on every
// call, never a ticker or rate limiter.
const diagnosticsDebounce = 200 * time.Millisecond

// Options configures a Server before Run is called.
type Options struct {
	TsserverPath         string
	NodePath             string
	TsserverLogFile      string
	TsserverLogVerbosity string
	GlobalPlugins        []string
	PluginProbeLocations []string
	CancellationPipeBase string
	ExtraArgs            string
	Logger               *zap.SugaredLogger
}

// Server implements the LSP server side of tsbridge.
type Server struct {
	opts Options

	conn   jsonrpc2.Conn
	client protocol.Client
	logger *zap.SugaredLogger
	cancel context.CancelFunc

	transport *tsprocess.Transport
	mirror    *mirror.Set
	diagQueue *diagnostics.Queue

	capabilities protocol.ServerCapabilities

	workspaceRoot string

	hierarchicalDocumentSymbolSupport bool
	nameSuggestions                   bool
	pathSuggestions                   bool
	autoImportSuggestions             bool

	debounceMu    sync.Mutex
	debounceTimer *time.Timer
	pendingGeterr *tsprocess.Future
}

// NewServer creates a Server; the tsserver child process is not spawned
// until the client's initialize request is handled (mirroring the
// teacher's lazy api construction, generalized to a subprocess rather
// than an in-process compiler).
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		nop, _ := zap.NewDevelopment()
		opts.Logger = nop.Sugar()
	}
	return &Server{
		opts:                   opts,
		logger:                 opts.Logger,
		mirror:                 mirror.NewSet(),
		diagQueue:              diagnostics.NewQueue(),
		nameSuggestions:        true,
		pathSuggestions:        true,
		autoImportSuggestions:  true,
		capabilities: protocol.ServerCapabilities{
			TextDocumentSync: protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindIncremental,
				Save:      &protocol.SaveOptions{IncludeText: false},
			},
			CompletionProvider: &protocol.CompletionOptions{
				TriggerCharacters: []string{".", "\"", "'", "/", "@", "<"},
				ResolveProvider:   true,
			},
			SignatureHelpProvider: &protocol.SignatureHelpOptions{
				TriggerCharacters: []string{"(", ",", "<"},
			},
			HoverProvider:              true,
			DefinitionProvider:         true,
			TypeDefinitionProvider:     true,
			ImplementationProvider:     true,
			ReferencesProvider:         true,
			DocumentHighlightProvider:  true,
			DocumentSymbolProvider:     true,
			WorkspaceSymbolProvider:    true,
			DocumentFormattingProvider: true,
			CodeActionProvider:         true,
			FoldingRangeProvider:       true,
			RenameProvider:             true,
			ExecuteCommandProvider: &protocol.ExecuteCommandOptions{
				Commands: []string{
					CommandApplyWorkspaceEdit,
					CommandApplyCodeAction,
					CommandApplyRefactoring,
					CommandOrganizeImports,
					CommandApplyRenameFile,
					completion.ResolveCommand,
				},
			},
		},
	}
}

// Run serves LSP requests over the given duplex stream until ctx is
// cancelled or the client sends exit. The tsserver subprocess itself is
// not spawned here; it is spawned by handleInitialize, once the client's
// initialize request carries the workspace root and capabilities the
// transport needs.
func (s *Server) Run(ctx context.Context, stream io.ReadWriteCloser) error {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	jsonStream := jsonrpc2.NewStream(stream)
	conn := jsonrpc2.NewConn(jsonStream)
	s.conn = conn
	s.client = protocol.ClientDispatcher(conn, s.logger.Desugar())

	conn.Go(ctx, s.handler())

	<-ctx.Done()
	if s.transport != nil {
		s.transport.Close()
	}
	return conn.Close()
}

func (s *Server) spawnTransport(ctx context.Context) error {
	transport, err := tsprocess.Spawn(ctx, tsprocess.Options{
		TsserverPath:         s.opts.TsserverPath,
		NodePath:             s.opts.NodePath,
		LogFile:              s.opts.TsserverLogFile,
		LogVerbosity:         s.opts.TsserverLogVerbosity,
		GlobalPlugins:        s.opts.GlobalPlugins,
		PluginProbeLocations: s.opts.PluginProbeLocations,
		CancellationPipeBase: s.opts.CancellationPipeBase,
		ExtraArgs:            s.opts.ExtraArgs,
		OnEvent:              s.handleTsserverEvent,
		Logger:               s.logger,
	})
	if err != nil {
		return fmt.Errorf("tsbridge: spawning tsserver: %w", err)
	}
	s.transport = transport
	return nil
}

func (s *Server) handler() jsonrpc2.Handler {
	return func(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
		switch req.Method() {
		case protocol.MethodInitialize:
			return s.handleInitialize(ctx, reply, req)
		case protocol.MethodInitialized:
			return reply(ctx, nil, nil)
		case protocol.MethodShutdown:
			return reply(ctx, nil, nil)
		case protocol.MethodExit:
			return s.handleExit(ctx, reply, req)
		case protocol.MethodTextDocumentDidOpen:
			return s.handleDidOpen(ctx, reply, req)
		case protocol.MethodTextDocumentDidChange:
			return s.handleDidChange(ctx, reply, req)
		case protocol.MethodTextDocumentDidClose:
			return s.handleDidClose(ctx, reply, req)
		case protocol.MethodTextDocumentDidSave:
			return reply(ctx, nil, nil)
		case protocol.MethodTextDocumentCompletion:
			return s.handleCompletion(ctx, reply, req)
		case "completionItem/resolve":
			return s.handleCompletionResolve(ctx, reply, req)
		case protocol.MethodTextDocumentHover:
			return s.handleHover(ctx, reply, req)
		case protocol.MethodTextDocumentDefinition:
			return s.handleDefinition(ctx, reply, req)
		case protocol.MethodTextDocumentTypeDefinition:
			return s.handleTypeDefinition(ctx, reply, req)
		case protocol.MethodTextDocumentImplementation:
			return s.handleImplementation(ctx, reply, req)
		case protocol.MethodTextDocumentReferences:
			return s.handleReferences(ctx, reply, req)
		case protocol.MethodTextDocumentDocumentHighlight:
			return s.handleDocumentHighlight(ctx, reply, req)
		case protocol.MethodTextDocumentDocumentSymbol:
			return s.handleDocumentSymbol(ctx, reply, req)
		case protocol.MethodWorkspaceSymbol:
			return s.handleWorkspaceSymbol(ctx, reply, req)
		case protocol.MethodTextDocumentFormatting:
			return s.handleDocumentFormatting(ctx, reply, req)
		case protocol.MethodTextDocumentSignatureHelp:
			return s.handleSignatureHelp(ctx, reply, req)
		case protocol.MethodTextDocumentCodeAction:
			return s.handleCodeAction(ctx, reply, req)
		case protocol.MethodTextDocumentFoldingRange:
			return s.handleFoldingRange(ctx, reply, req)
		case protocol.MethodTextDocumentRename:
			return s.handleRename(ctx, reply, req)
		case protocol.MethodWorkspaceExecuteCommand:
			return s.handleExecuteCommand(ctx, reply, req)
		case "textDocument/calls":
			return s.handleCalls(ctx, reply, req)
		default:
			return reply(ctx, nil, jsonrpc2.ErrMethodNotFound)
		}
	}
}

func (s *Server) handleExit(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	err := reply(ctx, nil, nil)
	if s.cancel != nil {
		s.cancel()
	}
	return err
}

func (s *Server) replyError(ctx context.Context, reply jsonrpc2.Replier, code jsonrpc2.Code, message string) error {
	return reply(ctx, nil, &jsonrpc2.Error{Code: code, Message: message})
}

// NewStdioReadWriteCloser adapts os.Stdin/os.Stdout into the duplex
// stream Run expects, the bridge's --stdio transport.
func NewStdioReadWriteCloser() io.ReadWriteCloser {
	return stdrwc{}
}

type stdrwc struct{}

func (stdrwc) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdrwc) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (stdrwc) Close() error {
	if err := os.Stdin.Close(); err != nil {
		return err
	}
	return os.Stdout.Close()
}
