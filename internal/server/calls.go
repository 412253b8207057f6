package server

import (
	"context"
	"encoding/json"
	"regexp"
	"strconv"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/nodets/tsbridge/internal/position"
	"github.com/nodets/tsbridge/internal/translate"
	"github.com/nodets/tsbridge/internal/tsproto"
)

// callsParams is the proposed textDocument/calls request shape, not yet
// part of stable LSP (spec.md §6.1).
type callsParams struct {
	protocol.TextDocumentPositionParams
	Direction string `json:"direction"`
}

// CallItem is one entry of a textDocument/calls response, either a
// caller or a callee depending on the request's direction.
type CallItem struct {
	Name     string            `json:"name"`
	Location protocol.Location `json:"location"`
}

// identifierPattern finds candidate identifier tokens to probe with
// definition requests; the wire protocol offers no "find identifiers in
// range" command, so this is a best-effort scan of the mirrored text.
var identifierPattern = regexp.MustCompile(`[A-Za-z_$][A-Za-z0-9_$]*`)

const maxCallsProbed = 64

func (s *Server) handleCalls(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params callsParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyError(ctx, reply, jsonrpc2.InvalidParams, "tsbridge: malformed calls params")
	}
	path, ok := translate.URIToPath(params.TextDocument.URI)
	if !ok {
		return reply(ctx, nil, nil)
	}

	var items []CallItem
	var err error
	if params.Direction == "incoming" {
		items, err = s.incomingCalls(path, params.Position)
	} else {
		items, err = s.outgoingCalls(path, params.Position)
	}
	if err != nil {
		return reply(ctx, nil, nil)
	}
	return reply(ctx, items, nil)
}

// outgoingCalls finds the navtree node enclosing position, scans its
// body text for identifier tokens, and keeps the ones whose definition
// request returns a location, skipping duplicates and definitions on
// the requested position's own line. The kind of the declaration is
// not checked, so non-function identifiers are listed too.
func (s *Server) outgoingCalls(path string, pos protocol.Position) ([]CallItem, error) {
	enclosing, err := s.enclosingFunction(path, pos)
	if err != nil || enclosing == nil {
		return nil, err
	}
	doc, ok := s.mirror.Peek(path)
	if !ok {
		return nil, nil
	}
	bodyRange := spanRange(*enclosing)

	var items []CallItem
	seen := make(map[string]bool)
	probed := 0
	for line := int(bodyRange.Start.Line); line <= int(bodyRange.End.Line) && probed < maxCallsProbed; line++ {
		lineText := doc.GetLine(line)
		for _, loc := range identifierPattern.FindAllStringIndex(lineText, -1) {
			if probed >= maxCallsProbed {
				break
			}
			probed++

			charPos := protocol.Position{Line: uint32(line), Character: uint32(loc[1])}
			future, err := s.transport.Request("definition", fileLocationArgs(path, charPos))
			if err != nil {
				continue
			}
			raw, err := future.Result()
			if err != nil {
				continue
			}
			var defs []tsproto.DefinitionInfo
			if json.Unmarshal(raw, &defs) != nil || len(defs) == 0 {
				continue
			}
			def := defs[0]
			key := def.File + ":" + strconv.Itoa(def.Start.Line) + ":" + strconv.Itoa(def.Start.Offset)
			if seen[key] || def.File == path && def.Start.Line == int(pos.Line)+1 {
				continue
			}
			seen[key] = true
			items = append(items, CallItem{
				Name:     lineText[loc[0]:loc[1]],
				Location: translate.ToLocation(tsproto.FileSpan{File: def.File, Start: def.Start, End: def.End}),
			})
		}
	}
	return items, nil
}

// incomingCalls finds every reference to the symbol at position, then
// for each one locates its enclosing navtree function node: spec.md's
// "references + navtree" proposal for callers.
func (s *Server) incomingCalls(path string, pos protocol.Position) ([]CallItem, error) {
	body, err := s.requestReferences(path, pos)
	if err != nil {
		return nil, err
	}

	var items []CallItem
	seen := make(map[string]bool)
	for _, ref := range body.Refs {
		if ref.IsDefinition {
			continue
		}
		refPos := translate.ToPosition(ref.Start)
		enclosing, err := s.enclosingFunction(ref.File, refPos)
		if err != nil || enclosing == nil {
			continue
		}
		rng := spanRange(*enclosing)
		key := ref.File + ":" + strconv.Itoa(int(rng.Start.Line))
		if seen[key] {
			continue
		}
		seen[key] = true
		items = append(items, CallItem{
			Name:     enclosing.Text,
			Location: protocol.Location{URI: translate.PathToURI(ref.File), Range: rng},
		})
	}
	return items, nil
}

func (s *Server) enclosingFunction(path string, pos protocol.Position) (*tsproto.NavigationTree, error) {
	future, err := s.transport.Request("navtree", map[string]interface{}{"file": path})
	if err != nil {
		return nil, err
	}
	raw, err := future.Result()
	if err != nil {
		return nil, err
	}
	var tree tsproto.NavigationTree
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, err
	}
	return findEnclosing(tree.ChildItems, pos), nil
}

func findEnclosing(nodes []tsproto.NavigationTree, pos protocol.Position) *tsproto.NavigationTree {
	for i := range nodes {
		rng := spanRange(nodes[i])
		if position.Contains(toPositionRange(rng), toPositionPos(pos)) || rng.End == pos {
			if child := findEnclosing(nodes[i].ChildItems, pos); child != nil {
				return child
			}
			return &nodes[i]
		}
	}
	return nil
}

func toPositionPos(p protocol.Position) position.Position {
	return position.Position{Line: int(p.Line), Character: int(p.Character)}
}

func toPositionRange(r protocol.Range) position.Range {
	return position.Range{Start: toPositionPos(r.Start), End: toPositionPos(r.End)}
}

