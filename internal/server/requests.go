package server

import (
	"context"
	"encoding/json"
	"fmt"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/nodets/tsbridge/internal/bridgeerr"
	"github.com/nodets/tsbridge/internal/translate"
	"github.com/nodets/tsbridge/internal/tsproto"
)

// fileLocationArgs builds the {file, line, offset} argument shape
// almost every position-taking tsserver command expects.
func fileLocationArgs(path string, pos protocol.Position) map[string]interface{} {
	loc := translate.ToTsLocation(pos)
	return map[string]interface{}{"file": path, "line": loc.Line, "offset": loc.Offset}
}

func requestPosition(params protocol.TextDocumentPositionParams) (string, protocol.Position, bool) {
	path, ok := translate.URIToPath(params.TextDocument.URI)
	return path, params.Position, ok
}

func (s *Server) handleHover(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.HoverParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyError(ctx, reply, jsonrpc2.InvalidParams, "tsbridge: malformed hover params")
	}
	path, pos, ok := requestPosition(params.TextDocumentPositionParams)
	if !ok {
		return reply(ctx, nil, nil)
	}

	var result *protocol.Hover
	s.interrupt(func() {
		future, err := s.transport.Request("quickinfo", fileLocationArgs(path, pos))
		if err != nil {
			return
		}
		body, err := future.Result()
		if err != nil || bridgeerr.Is(err, bridgeerr.NoContentAvailable) {
			return
		}
		var info tsproto.QuickInfo
		if err := json.Unmarshal(body, &info); err != nil {
			return
		}
		rng := protocol.Range{Start: translate.ToPosition(info.Start), End: translate.ToPosition(info.End)}
		doc := translate.AsDocumentation(info.Documentation, info.Tags)
		value := fmt.Sprintf("```typescript\n%s\n```", info.DisplayString)
		if doc != "" {
			value += "\n\n" + doc
		}
		result = &protocol.Hover{
			Contents: protocol.MarkupContent{
				Kind:  protocol.Markdown,
				Value: value,
			},
			Range: &rng,
		}
	})

	if result == nil {
		return reply(ctx, nil, nil)
	}
	return reply(ctx, result, nil)
}

func (s *Server) handleDefinition(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	return s.handleDefinitionLike(ctx, reply, req, "definition")
}

func (s *Server) handleTypeDefinition(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	return s.handleDefinitionLike(ctx, reply, req, "typeDefinition")
}

func (s *Server) handleImplementation(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	return s.handleDefinitionLike(ctx, reply, req, "implementation")
}

func (s *Server) handleDefinitionLike(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request, command string) error {
	var params protocol.TextDocumentPositionParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyError(ctx, reply, jsonrpc2.InvalidParams, "tsbridge: malformed position params")
	}
	path, pos, ok := requestPosition(params)
	if !ok {
		return reply(ctx, nil, nil)
	}

	future, err := s.transport.Request(command, fileLocationArgs(path, pos))
	if err != nil {
		return reply(ctx, nil, nil)
	}
	body, err := future.Result()
	if err != nil {
		return reply(ctx, nil, nil)
	}

	var infos []tsproto.DefinitionInfo
	if err := json.Unmarshal(body, &infos); err != nil {
		return reply(ctx, nil, nil)
	}

	locations := make([]protocol.Location, 0, len(infos))
	for _, info := range infos {
		locations = append(locations, translate.ToLocation(tsproto.FileSpan{File: info.File, Start: info.Start, End: info.End}))
	}
	return reply(ctx, locations, nil)
}

func (s *Server) handleReferences(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.ReferenceParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyError(ctx, reply, jsonrpc2.InvalidParams, "tsbridge: malformed references params")
	}
	path, pos, ok := requestPosition(params.TextDocumentPositionParams)
	if !ok {
		return reply(ctx, nil, nil)
	}

	body, err := s.requestReferences(path, pos)
	if err != nil {
		return reply(ctx, nil, nil)
	}

	locations := make([]protocol.Location, 0, len(body.Refs))
	for _, ref := range body.Refs {
		locations = append(locations, translate.ToLocation(tsproto.FileSpan{File: ref.File, Start: ref.Start, End: ref.End}))
	}
	return reply(ctx, locations, nil)
}

func (s *Server) requestReferences(path string, pos protocol.Position) (tsproto.ReferencesResponseBody, error) {
	future, err := s.transport.Request("references", fileLocationArgs(path, pos))
	if err != nil {
		return tsproto.ReferencesResponseBody{}, err
	}
	raw, err := future.Result()
	if err != nil {
		return tsproto.ReferencesResponseBody{}, err
	}
	var body tsproto.ReferencesResponseBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return tsproto.ReferencesResponseBody{}, err
	}
	return body, nil
}

func (s *Server) handleDocumentHighlight(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DocumentHighlightParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyError(ctx, reply, jsonrpc2.InvalidParams, "tsbridge: malformed documentHighlight params")
	}
	path, pos, ok := requestPosition(params.TextDocumentPositionParams)
	if !ok {
		return reply(ctx, nil, nil)
	}

	body, err := s.requestReferences(path, pos)
	if err != nil {
		return reply(ctx, nil, nil)
	}

	highlights := make([]protocol.DocumentHighlight, 0, len(body.Refs))
	for _, ref := range body.Refs {
		if ref.File != path {
			continue
		}
		highlights = append(highlights, translate.ToDocumentHighlight(ref))
	}
	return reply(ctx, highlights, nil)
}

func (s *Server) handleRename(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.RenameParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyError(ctx, reply, jsonrpc2.InvalidParams, "tsbridge: malformed rename params")
	}
	path, pos, ok := requestPosition(params.TextDocumentPositionParams)
	if !ok {
		return s.replyError(ctx, reply, jsonrpc2.InvalidParams, "tsbridge: rename on a non-file document")
	}

	args := fileLocationArgs(path, pos)
	args["findInStrings"] = false
	args["findInComments"] = false

	future, err := s.transport.Request("rename", args)
	if err != nil {
		return s.replyError(ctx, reply, jsonrpc2.InternalError, err.Error())
	}
	raw, err := future.Result()
	if err != nil {
		return s.replyError(ctx, reply, jsonrpc2.InternalError, err.Error())
	}

	var body tsproto.RenameResponseBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return s.replyError(ctx, reply, jsonrpc2.InternalError, "tsbridge: malformed rename response")
	}
	if !body.Info.CanRename || len(body.Locs) == 0 {
		return s.replyError(ctx, reply, jsonrpc2.InvalidRequest, body.Info.LocalizedErrorMessage)
	}

	changes := make(map[protocol.DocumentURI][]protocol.TextEdit, len(body.Locs))
	for _, group := range body.Locs {
		edits := make([]protocol.TextEdit, 0, len(group.Locs))
		for _, loc := range group.Locs {
			edits = append(edits, protocol.TextEdit{
				Range:   protocol.Range{Start: translate.ToPosition(loc.Start), End: translate.ToPosition(loc.End)},
				NewText: params.NewName,
			})
		}
		changes[translate.PathToURI(group.File)] = edits
	}
	return reply(ctx, protocol.WorkspaceEdit{Changes: changes}, nil)
}

func (s *Server) handleSignatureHelp(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.SignatureHelpParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyError(ctx, reply, jsonrpc2.InvalidParams, "tsbridge: malformed signatureHelp params")
	}
	path, pos, ok := requestPosition(params.TextDocumentPositionParams)
	if !ok {
		return reply(ctx, nil, nil)
	}

	var result *protocol.SignatureHelp
	s.interrupt(func() {
		future, err := s.transport.Request("signatureHelp", fileLocationArgs(path, pos))
		if err != nil {
			return
		}
		raw, err := future.Result()
		if err != nil {
			return
		}
		var items tsproto.SignatureHelpItems
		if err := json.Unmarshal(raw, &items); err != nil {
			return
		}
		result = toSignatureHelp(items)
	})

	if result == nil {
		return reply(ctx, nil, nil)
	}
	return reply(ctx, result, nil)
}

func toSignatureHelp(items tsproto.SignatureHelpItems) *protocol.SignatureHelp {
	sigs := make([]protocol.SignatureInformation, 0, len(items.Items))
	for _, item := range items.Items {
		var label string
		label += translate.AsPlainText(item.Prefix)
		params := make([]protocol.ParameterInformation, 0, len(item.Parameters))
		for i, p := range item.Parameters {
			if i > 0 {
				label += translate.AsPlainText(item.Separator)
			}
			text := translate.AsPlainText(p.DisplayParts)
			label += text
			params = append(params, protocol.ParameterInformation{
				Label:         text,
				Documentation: translate.AsPlainText(p.Documentation),
			})
		}
		label += translate.AsPlainText(item.Suffix)

		sigs = append(sigs, protocol.SignatureInformation{
			Label:         label,
			Documentation: translate.AsPlainText(item.Documentation),
			Parameters:    params,
		})
	}

	return &protocol.SignatureHelp{
		Signatures:      sigs,
		ActiveSignature: uint32(items.SelectedItemIndex),
		ActiveParameter: uint32(items.ArgumentIndex),
	}
}
