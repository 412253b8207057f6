package server

import (
	"context"
	"encoding/json"
	"strings"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/nodets/tsbridge/internal/translate"
	"github.com/nodets/tsbridge/internal/tsproto"
)

func (s *Server) handleCodeAction(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.CodeActionParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyError(ctx, reply, jsonrpc2.InvalidParams, "tsbridge: malformed codeAction params")
	}
	path, ok := translate.URIToPath(params.TextDocument.URI)
	if !ok {
		return reply(ctx, nil, nil)
	}

	var actions []protocol.CodeAction
	actions = append(actions, s.codeFixActions(path, params)...)
	actions = append(actions, s.refactorActions(path, params.Range)...)
	actions = append(actions, protocol.CodeAction{
		Title: "Organize Imports",
		Kind:  protocol.SourceOrganizeImports,
		Command: &protocol.Command{
			Title:     "Organize Imports",
			Command:   CommandOrganizeImports,
			Arguments: []interface{}{path},
		},
	})

	return reply(ctx, actions, nil)
}

func (s *Server) codeFixActions(path string, params protocol.CodeActionParams) []protocol.CodeAction {
	errorCodes := make([]int, 0, len(params.Context.Diagnostics))
	for _, d := range params.Context.Diagnostics {
		if code, ok := d.Code.(float64); ok {
			errorCodes = append(errorCodes, int(code))
		} else if code, ok := d.Code.(int); ok {
			errorCodes = append(errorCodes, code)
		}
	}
	if len(errorCodes) == 0 {
		return nil
	}

	rangeArgs := translate.ToFileRangeRequestArgs(path, params.Range)
	future, err := s.transport.Request("getCodeFixes", map[string]interface{}{
		"file":        rangeArgs.File,
		"startLine":   rangeArgs.StartLine,
		"startOffset": rangeArgs.StartOffset,
		"endLine":     rangeArgs.EndLine,
		"endOffset":   rangeArgs.EndOffset,
		"errorCodes":  errorCodes,
	})
	if err != nil {
		return nil
	}
	raw, err := future.Result()
	if err != nil {
		return nil
	}
	var fixes []tsproto.CodeFixAction
	if err := json.Unmarshal(raw, &fixes); err != nil {
		return nil
	}

	out := make([]protocol.CodeAction, 0, len(fixes))
	for _, fix := range fixes {
		out = append(out, protocol.CodeAction{
			Title:       fix.Description,
			Kind:        protocol.QuickFix,
			Diagnostics: params.Context.Diagnostics,
			Command: &protocol.Command{
				Title:     fix.Description,
				Command:   CommandApplyCodeAction,
				Arguments: []interface{}{fix},
			},
		})
	}
	return out
}

func (s *Server) refactorActions(path string, r protocol.Range) []protocol.CodeAction {
	rangeArgs := translate.ToFileRangeRequestArgs(path, r)
	future, err := s.transport.Request("getApplicableRefactors", map[string]interface{}{
		"file":        rangeArgs.File,
		"startLine":   rangeArgs.StartLine,
		"startOffset": rangeArgs.StartOffset,
		"endLine":     rangeArgs.EndLine,
		"endOffset":   rangeArgs.EndOffset,
	})
	if err != nil {
		return nil
	}
	raw, err := future.Result()
	if err != nil {
		return nil
	}
	var infos []tsproto.ApplicableRefactorInfo
	if err := json.Unmarshal(raw, &infos); err != nil {
		return nil
	}

	var out []protocol.CodeAction
	for _, info := range infos {
		for _, action := range info.Actions {
			out = append(out, protocol.CodeAction{
				Title: action.Description,
				Kind:  protocol.Refactor,
				Command: &protocol.Command{
					Title:     action.Description,
					Command:   CommandApplyRefactoring,
					Arguments: []interface{}{path, info.Name, action.Name, r},
				},
			})
		}
	}
	return out
}

func (s *Server) handleFoldingRange(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.FoldingRangeParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyError(ctx, reply, jsonrpc2.InvalidParams, "tsbridge: malformed foldingRange params")
	}
	path, ok := translate.URIToPath(params.TextDocument.URI)
	if !ok {
		return reply(ctx, nil, nil)
	}

	future, err := s.transport.Request("getOutliningSpans", map[string]interface{}{"file": path})
	if err != nil {
		return reply(ctx, nil, nil)
	}
	raw, err := future.Result()
	if err != nil {
		return reply(ctx, nil, nil)
	}
	var spans []tsproto.OutliningSpan
	if err := json.Unmarshal(raw, &spans); err != nil {
		return reply(ctx, nil, nil)
	}

	doc, _ := s.mirror.Peek(path)

	ranges := make([]protocol.FoldingRange, 0, len(spans))
	for _, span := range spans {
		rng := translate.AsRange(span.TextSpan)

		if span.Kind == "region" && doc != nil && strings.TrimSpace(doc.GetLine(int(rng.End.Line))) == "// #endregion" {
			continue
		}

		endLine := rng.End.Line
		if doc != nil {
			endLineText := strings.TrimRight(doc.GetLine(int(endLine)), " \t")
			if strings.HasSuffix(endLineText, "}") && endLine > rng.Start.Line {
				endLine--
			}
		}

		ranges = append(ranges, protocol.FoldingRange{
			StartLine: rng.Start.Line,
			EndLine:   endLine,
			Kind:      foldingKind(span.Kind),
		})
	}
	return reply(ctx, ranges, nil)
}

func foldingKind(kind string) protocol.FoldingRangeKind {
	switch kind {
	case "comment":
		return protocol.CommentFoldingRange
	case "region":
		return protocol.RegionFoldingRange
	case "imports":
		return protocol.ImportsFoldingRange
	default:
		return ""
	}
}
