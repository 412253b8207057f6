package server

import (
	"context"
	"encoding/json"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/nodets/tsbridge/internal/completion"
	"github.com/nodets/tsbridge/internal/tsproto"
)

func (s *Server) handleCompletion(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.CompletionParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyError(ctx, reply, jsonrpc2.InvalidParams, "tsbridge: malformed completion params")
	}
	path, pos, ok := requestPosition(params.TextDocumentPositionParams)
	if !ok {
		return reply(ctx, nil, nil)
	}

	lineText := ""
	if doc, ok := s.mirror.Peek(path); ok {
		lineText = doc.GetLine(int(pos.Line))
	}

	var items []protocol.CompletionItem
	s.interrupt(func() {
		args := fileLocationArgs(path, pos)
		args["includeExternalModuleExports"] = s.autoImportSuggestions
		args["includeInsertTextCompletions"] = true

		future, err := s.transport.Request("completionInfo", args)
		if err != nil {
			return
		}
		raw, err := future.Result()
		if err != nil {
			// no-content-available collapses into an empty result,
			// per spec.md §7 error kind 4.
			return
		}
		var info tsproto.CompletionInfo
		if err := json.Unmarshal(raw, &info); err != nil {
			return
		}
		items = completion.BuildItems(completion.BuildParams{
			File:     path,
			Cursor:   pos,
			LineText: lineText,
			Info:     info,
			Settings: completion.Settings{
				NameSuggestions:       s.nameSuggestions,
				PathSuggestions:       s.pathSuggestions,
				AutoImportSuggestions: s.autoImportSuggestions,
			},
		})
	})

	return reply(ctx, protocol.CompletionList{IsIncomplete: false, Items: items}, nil)
}

func (s *Server) handleCompletionResolve(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var item protocol.CompletionItem
	if err := json.Unmarshal(req.Params(), &item); err != nil {
		return s.replyError(ctx, reply, jsonrpc2.InvalidParams, "tsbridge: malformed completionItem/resolve params")
	}

	data, ok := decodeCompletionData(item.Data)
	if !ok {
		return reply(ctx, item, nil)
	}

	var resolved protocol.CompletionItem = item
	s.interrupt(func() {
		entryNames := make([]interface{}, 0, len(data.EntryNames))
		for _, n := range data.EntryNames {
			if n.Source == "" {
				entryNames = append(entryNames, n.Name)
			} else {
				entryNames = append(entryNames, n)
			}
		}

		future, err := s.transport.Request("completionEntryDetails", map[string]interface{}{
			"file":       data.File,
			"line":       data.Line,
			"offset":     data.Offset,
			"entryNames": entryNames,
		})
		if err != nil {
			return
		}
		raw, err := future.Result()
		if err != nil {
			return
		}
		var detailsList []tsproto.CompletionEntryDetails
		if err := json.Unmarshal(raw, &detailsList); err != nil || len(detailsList) == 0 {
			return
		}
		resolved = completion.ResolveItem(item, data, detailsList[0])
	})

	return reply(ctx, resolved, nil)
}

// decodeCompletionData round-trips an LSP CompletionItem's opaque Data
// field through JSON into the concrete shape build.go attached to it.
func decodeCompletionData(raw interface{}) (completion.Data, bool) {
	encoded, err := json.Marshal(raw)
	if err != nil {
		return completion.Data{}, false
	}
	var data completion.Data
	if err := json.Unmarshal(encoded, &data); err != nil {
		return completion.Data{}, false
	}
	return data, data.File != ""
}
