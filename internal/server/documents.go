package server

import (
	"context"
	"encoding/json"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/nodets/tsbridge/internal/bridgeerr"
	"github.com/nodets/tsbridge/internal/mirror"
	"github.com/nodets/tsbridge/internal/position"
	"github.com/nodets/tsbridge/internal/translate"
)

// scriptKindName maps an LSP languageId to the scriptKindName argument
// tsserver's open command expects.
func scriptKindName(languageID protocol.LanguageIdentifier) string {
	switch mirror.LanguageID(languageID) {
	case mirror.LanguageTypeScript:
		return "TS"
	case mirror.LanguageTypeScriptReact:
		return "TSX"
	case mirror.LanguageJavaScript:
		return "JS"
	case mirror.LanguageJavaScriptReact:
		return "JSX"
	default:
		return "TS"
	}
}

func (s *Server) handleDidOpen(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidOpenTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyError(ctx, reply, jsonrpc2.InvalidParams, "tsbridge: malformed didOpen params")
	}

	path, ok := translate.URIToPath(params.TextDocument.URI)
	if !ok {
		return reply(ctx, nil, nil)
	}

	doc, opened := s.mirror.Open(path, mirror.OpenParams{
		URI:        string(params.TextDocument.URI),
		Path:       path,
		LanguageID: mirror.LanguageID(params.TextDocument.LanguageID),
		Version:    int(params.TextDocument.Version),
		Text:       params.TextDocument.Text,
	})

	if !opened {
		// Already open: downgrade to a full-text change, per spec.md §3
		// OpenDocumentSet's re-open idempotency rule.
		oldText := ""
		if existing, ok := s.mirror.Get(path); ok {
			oldText = existing.Text
			existing.ApplyEdit(int(params.TextDocument.Version), mirror.Change{Text: params.TextDocument.Text})
		}
		s.notifyTsserverFullChange(path, oldText, params.TextDocument.Text)
		s.scheduleDiagnostics(path)
		return reply(ctx, nil, nil)
	}

	if err := s.transport.Notify("open", map[string]interface{}{
		"file":             path,
		"fileContent":      doc.Text,
		"scriptKindName":   scriptKindName(params.TextDocument.LanguageID),
		"projectRootPath":  s.workspaceRoot,
	}); err != nil {
		s.logger.Warnw("tsbridge: open notification failed", "file", path, "error", err)
	}

	s.scheduleDiagnostics(path)
	return reply(ctx, nil, nil)
}

func (s *Server) handleDidChange(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidChangeTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyError(ctx, reply, jsonrpc2.InvalidParams, "tsbridge: malformed didChange params")
	}

	path, ok := translate.URIToPath(params.TextDocument.URI)
	if !ok {
		return reply(ctx, nil, nil)
	}

	doc, ok := s.mirror.Get(path)
	if !ok {
		return s.replyError(ctx, reply, jsonrpc2.InternalError, bridgeerr.New(bridgeerr.InvalidDocument, "didChange on unknown document").WithFile(path).Error())
	}

	for _, change := range params.ContentChanges {
		var mc mirror.Change
		if change.Range != (protocol.Range{}) {
			r := position.Range{
				Start: position.Position{Line: int(change.Range.Start.Line), Character: int(change.Range.Start.Character)},
				End:   position.Position{Line: int(change.Range.End.Line), Character: int(change.Range.End.Character)},
			}
			mc = mirror.Change{Range: &r, Text: change.Text}
			s.notifyTsserverChange(path, &change.Range, change.Text)
		} else {
			mc = mirror.Change{Text: change.Text}
			s.notifyTsserverFullChange(path, doc.Text, change.Text)
		}
		doc.ApplyEdit(int(params.TextDocument.Version), mc)
	}

	s.scheduleDiagnostics(path)
	return reply(ctx, nil, nil)
}

func (s *Server) notifyTsserverChange(path string, r *protocol.Range, text string) {
	start := translate.ToTsLocation(r.Start)
	end := translate.ToTsLocation(r.End)
	if err := s.transport.Notify("change", map[string]interface{}{
		"file":         path,
		"line":         start.Line,
		"offset":       start.Offset,
		"endLine":      end.Line,
		"endOffset":    end.Offset,
		"insertString": text,
	}); err != nil {
		s.logger.Warnw("tsbridge: change notification failed", "file", path, "error", err)
	}
}

func (s *Server) notifyTsserverFullChange(path, oldText, newText string) {
	oldLines := position.LineCount(oldText)
	if err := s.transport.Notify("change", map[string]interface{}{
		"file":         path,
		"line":         1,
		"offset":       1,
		"endLine":      oldLines + 1,
		"endOffset":    1,
		"insertString": newText,
	}); err != nil {
		s.logger.Warnw("tsbridge: full-text change notification failed", "file", path, "error", err)
	}
}

func (s *Server) handleDidClose(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidCloseTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyError(ctx, reply, jsonrpc2.InvalidParams, "tsbridge: malformed didClose params")
	}

	path, ok := translate.URIToPath(params.TextDocument.URI)
	if !ok {
		return reply(ctx, nil, nil)
	}

	s.mirror.Close(path)

	if err := s.transport.Notify("close", map[string]interface{}{"file": path}); err != nil {
		s.logger.Warnw("tsbridge: close notification failed", "file", path, "error", err)
	}

	empty := s.diagQueue.Clear(path)
	s.publishDiagnostics(params.TextDocument.URI, empty)

	return reply(ctx, nil, nil)
}

func (s *Server) publishDiagnostics(docURI protocol.DocumentURI, diags []protocol.Diagnostic) {
	if s.client == nil {
		return
	}
	if err := s.client.PublishDiagnostics(context.Background(), &protocol.PublishDiagnosticsParams{
		URI:         docURI,
		Diagnostics: diags,
	}); err != nil {
		s.logger.Warnw("tsbridge: publishDiagnostics failed", "uri", docURI, "error", err)
	}
}
