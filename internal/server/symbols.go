package server

import (
	"context"
	"encoding/json"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/nodets/tsbridge/internal/translate"
	"github.com/nodets/tsbridge/internal/tsproto"
)

func (s *Server) handleDocumentSymbol(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DocumentSymbolParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyError(ctx, reply, jsonrpc2.InvalidParams, "tsbridge: malformed documentSymbol params")
	}
	path, ok := translate.URIToPath(params.TextDocument.URI)
	if !ok {
		return reply(ctx, nil, nil)
	}

	future, err := s.transport.Request("navtree", map[string]interface{}{"file": path})
	if err != nil {
		return reply(ctx, nil, nil)
	}
	raw, err := future.Result()
	if err != nil {
		return reply(ctx, nil, nil)
	}

	var tree tsproto.NavigationTree
	if err := json.Unmarshal(raw, &tree); err != nil {
		return reply(ctx, nil, nil)
	}

	if s.hierarchicalDocumentSymbolSupport {
		// The navtree root is the file itself; its children are the
		// top-level symbols the client wants, not the root.
		return reply(ctx, toDocumentSymbols(tree.ChildItems), nil)
	}
	return reply(ctx, flattenSymbols(params.TextDocument.URI, tree.ChildItems, ""), nil)
}

func toDocumentSymbols(nodes []tsproto.NavigationTree) []protocol.DocumentSymbol {
	symbols := make([]protocol.DocumentSymbol, 0, len(nodes))
	for _, node := range nodes {
		rng := spanRange(node)
		sym := protocol.DocumentSymbol{
			Name:           node.Text,
			Kind:           translate.ToSymbolKind(node.Kind),
			Range:          rng,
			SelectionRange: nameRange(node, rng),
		}
		if translate.HasModifier(node.KindModifiers, translate.ModifierDeprecated) {
			sym.Tags = []protocol.SymbolTag{protocol.SymbolTagDeprecated}
		}
		if len(node.ChildItems) > 0 {
			sym.Children = toDocumentSymbols(node.ChildItems)
		}
		symbols = append(symbols, sym)
	}
	return symbols
}

func flattenSymbols(uri protocol.DocumentURI, nodes []tsproto.NavigationTree, container string) []protocol.SymbolInformation {
	var out []protocol.SymbolInformation
	for _, node := range nodes {
		rng := spanRange(node)
		out = append(out, protocol.SymbolInformation{
			Name:          node.Text,
			Kind:          translate.ToSymbolKind(node.Kind),
			ContainerName: container,
			Location:      protocol.Location{URI: uri, Range: rng},
		})
		if len(node.ChildItems) > 0 {
			out = append(out, flattenSymbols(uri, node.ChildItems, node.Text)...)
		}
	}
	return out
}

// spanRange unions every span a navtree node carries; tsserver can emit
// more than one (e.g. overloaded declarations merged under one node).
func spanRange(node tsproto.NavigationTree) protocol.Range {
	if len(node.Spans) == 0 {
		return protocol.Range{}
	}
	rng := translate.AsRange(node.Spans[0])
	for _, span := range node.Spans[1:] {
		other := translate.AsRange(span)
		if positionBefore(other.Start, rng.Start) {
			rng.Start = other.Start
		}
		if positionBefore(rng.End, other.End) {
			rng.End = other.End
		}
	}
	return rng
}

func nameRange(node tsproto.NavigationTree, fallback protocol.Range) protocol.Range {
	if node.NameSpan != nil {
		return translate.AsRange(*node.NameSpan)
	}
	return fallback
}

func positionBefore(a, b protocol.Position) bool {
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Character < b.Character
}

func (s *Server) handleWorkspaceSymbol(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.WorkspaceSymbolParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyError(ctx, reply, jsonrpc2.InvalidParams, "tsbridge: malformed workspaceSymbol params")
	}

	file := s.workspaceRoot
	if recent, ok := s.mirror.MostRecentPath(); ok {
		file = recent
	}

	future, err := s.transport.Request("navto", map[string]interface{}{
		"searchValue": params.Query,
		"file":        file,
	})
	if err != nil {
		return reply(ctx, nil, nil)
	}
	raw, err := future.Result()
	if err != nil {
		return reply(ctx, nil, nil)
	}

	var items []tsproto.NavtoItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return reply(ctx, nil, nil)
	}

	symbols := make([]protocol.SymbolInformation, 0, len(items))
	for _, item := range items {
		symbols = append(symbols, protocol.SymbolInformation{
			Name:          item.Name,
			Kind:          translate.ToSymbolKind(item.Kind),
			ContainerName: item.ContainerName,
			Location:      translate.ToLocation(tsproto.FileSpan{File: item.File, Start: item.Start, End: item.End}),
		})
	}
	return reply(ctx, symbols, nil)
}
