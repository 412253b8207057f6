package server

import (
	"context"
	"encoding/json"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/nodets/tsbridge/internal/translate"
)

// compilerOptionsForInferredProjects are the fixed defaults spec.md §4.6
// requires for any file tsserver cannot assign to an explicit project.
var compilerOptionsForInferredProjects = map[string]interface{}{
	"module":                       "commonjs",
	"target":                       "es2016",
	"jsx":                          "preserve",
	"allowJs":                      true,
	"allowSyntheticDefaultImports": true,
	"allowNonTsExtensions":         true,
	"resolveJsonModule":            true,
	"sourceMap":                    true,
	"strictNullChecks":             true,
}

func (s *Server) handleInitialize(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.InitializeParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyError(ctx, reply, jsonrpc2.InvalidParams, "tsbridge: malformed initialize params")
	}

	s.workspaceRoot = workspaceRootFrom(params)

	if dsc := params.Capabilities.TextDocument.DocumentSymbol; dsc != nil {
		s.hierarchicalDocumentSymbolSupport = dsc.HierarchicalDocumentSymbolSupport
	}

	if err := s.spawnTransport(ctx); err != nil {
		return s.replyError(ctx, reply, jsonrpc2.InternalError, err.Error())
	}

	if err := s.transport.Notify("configure", map[string]interface{}{
		"hostInfo": "tsbridge",
		"preferences": map[string]interface{}{
			"providePrefixAndSuffixTextForRename": true,
			"includePackageJsonAutoImports":       "auto",
			"allowRenameOfImportPath":             true,
		},
	}); err != nil {
		s.logger.Warnw("tsbridge: configure notification failed", "error", err)
	}

	if err := s.transport.Notify("compilerOptionsForInferredProjects", map[string]interface{}{
		"options": compilerOptionsForInferredProjects,
	}); err != nil {
		s.logger.Warnw("tsbridge: compilerOptionsForInferredProjects notification failed", "error", err)
	}

	result := protocol.InitializeResult{
		Capabilities: s.capabilities,
		ServerInfo: &protocol.ServerInfo{
			Name: "tsbridge",
		},
	}
	return reply(ctx, result, nil)
}

// workspaceRootFrom picks the workspace root by the priority order of
// spec.md §4.6: the first workspace folder, else rootUri, else rootPath.
func workspaceRootFrom(params protocol.InitializeParams) string {
	if len(params.WorkspaceFolders) > 0 {
		if path, ok := translate.URIToPath(protocol.DocumentURI(params.WorkspaceFolders[0].URI)); ok {
			return path
		}
	}
	if params.RootURI != "" {
		if path, ok := translate.URIToPath(params.RootURI); ok {
			return path
		}
	}
	if params.RootPath != "" {
		return params.RootPath
	}
	return ""
}
