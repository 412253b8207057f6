package server

import (
	"context"
	"encoding/json"
	"os"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/nodets/tsbridge/internal/completion"
	"github.com/nodets/tsbridge/internal/translate"
	"github.com/nodets/tsbridge/internal/tsproto"
)

// Command identifiers for workspace/executeCommand, per spec.md §6.4.
const (
	CommandApplyWorkspaceEdit = "_typescript.applyWorkspaceEdit"
	CommandApplyCodeAction    = "_typescript.applyCodeAction"
	CommandApplyRefactoring   = "_typescript.applyRefactoring"
	CommandOrganizeImports    = "_typescript.organizeImports"
	CommandApplyRenameFile    = "_typescript.applyRenameFile"
)

func (s *Server) handleExecuteCommand(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.ExecuteCommandParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyError(ctx, reply, jsonrpc2.InvalidParams, "tsbridge: malformed executeCommand params")
	}

	var err error
	switch params.Command {
	case CommandApplyWorkspaceEdit:
		err = s.applyWorkspaceEditCommand(ctx, params.Arguments)
	case CommandApplyCodeAction, completion.ResolveCommand, "":
		err = s.applyCodeActionCommand(ctx, params.Arguments)
	case CommandApplyRefactoring:
		err = s.applyRefactoringCommand(ctx, params.Arguments)
	case CommandOrganizeImports:
		err = s.organizeImportsCommand(ctx, params.Arguments)
	case CommandApplyRenameFile:
		err = s.applyRenameFileCommand(ctx, params.Arguments)
	default:
		return s.replyError(ctx, reply, jsonrpc2.MethodNotFound, "tsbridge: unknown command "+params.Command)
	}

	if err != nil {
		return s.replyError(ctx, reply, jsonrpc2.InternalError, err.Error())
	}
	return reply(ctx, nil, nil)
}

func argAt(args []interface{}, i int) interface{} {
	if i < 0 || i >= len(args) {
		return nil
	}
	return args[i]
}

func decodeArg(arg interface{}, out interface{}) error {
	encoded, err := json.Marshal(arg)
	if err != nil {
		return err
	}
	return json.Unmarshal(encoded, out)
}

// applyWorkspaceEditCommand forwards its sole argument as the edit to
// apply, spec.md §4.7.
func (s *Server) applyWorkspaceEditCommand(ctx context.Context, args []interface{}) error {
	var edit protocol.WorkspaceEdit
	if err := decodeArg(argAt(args, 0), &edit); err != nil {
		return err
	}
	_, err := s.client.ApplyEdit(ctx, &protocol.ApplyWorkspaceEditParams{Edit: edit})
	return err
}

// applyCodeActionCommand applies a tsserver CodeFixAction's changes as a
// workspace edit, then issues applyCodeActionCommand for each attached
// follow-up command.
func (s *Server) applyCodeActionCommand(ctx context.Context, args []interface{}) error {
	var fix tsproto.CodeFixAction
	if err := decodeArg(argAt(args, 0), &fix); err != nil {
		// completionItem/resolve's remaining-actions command carries
		// [file, []tsproto.CodeAction] instead of a CodeFixAction.
		var actions []tsproto.CodeAction
		if err2 := decodeArg(argAt(args, 1), &actions); err2 != nil {
			return err
		}
		for _, action := range actions {
			if _, err := s.client.ApplyEdit(ctx, &protocol.ApplyWorkspaceEditParams{Edit: translate.ToWorkspaceEdit(action.Changes)}); err != nil {
				return err
			}
			if err := s.runCommands(action.Commands); err != nil {
				return err
			}
		}
		return nil
	}

	if _, err := s.client.ApplyEdit(ctx, &protocol.ApplyWorkspaceEditParams{Edit: translate.ToWorkspaceEdit(fix.Changes)}); err != nil {
		return err
	}
	return s.runCommands(fix.Commands)
}

// runCommands replays tsserver's own opaque follow-up commands through
// applyCodeActionCommand, best-effort — tsserver's command shape is not
// itself modeled; each is forwarded as-is.
func (s *Server) runCommands(commands []interface{}) error {
	for _, cmd := range commands {
		if _, err := s.transport.Request("applyCodeActionCommand", map[string]interface{}{"command": cmd}); err != nil {
			s.logger.Warnw("tsbridge: applyCodeActionCommand failed", "error", err)
		}
	}
	return nil
}

// applyRefactoringCommand requests getEditsForRefactor, applies the
// resulting edits after confirming every target file exists, and
// triggers a client-side rename if the refactor introduces one.
func (s *Server) applyRefactoringCommand(ctx context.Context, args []interface{}) error {
	file, _ := argAt(args, 0).(string)
	refactorName, _ := argAt(args, 1).(string)
	actionName, _ := argAt(args, 2).(string)
	var r protocol.Range
	_ = decodeArg(argAt(args, 3), &r)

	rangeArgs := translate.ToFileRangeRequestArgs(file, r)
	future, err := s.transport.Request("getEditsForRefactor", map[string]interface{}{
		"file":        rangeArgs.File,
		"startLine":   rangeArgs.StartLine,
		"startOffset": rangeArgs.StartOffset,
		"endLine":     rangeArgs.EndLine,
		"endOffset":   rangeArgs.EndOffset,
		"refactor":    refactorName,
		"action":      actionName,
	})
	if err != nil {
		return err
	}
	raw, err := future.Result()
	if err != nil {
		return err
	}
	var info tsproto.RefactorEditInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return err
	}

	for _, fce := range info.Edits {
		if _, statErr := os.Stat(fce.FileName); statErr != nil && len(fce.TextChanges) > 0 {
			if f, createErr := os.Create(fce.FileName); createErr == nil {
				f.Close()
			}
		}
	}

	if _, err := s.client.ApplyEdit(ctx, &protocol.ApplyWorkspaceEditParams{Edit: translate.ToWorkspaceEdit(info.Edits)}); err != nil {
		return err
	}

	if info.RenameLocation != nil {
		renameFile := info.RenameFilename
		if renameFile == "" {
			renameFile = file
		}
		pos := translate.ToPosition(*info.RenameLocation)
		return s.conn.Notify(ctx, "_typescript.rename", map[string]interface{}{
			"uri":      translate.PathToURI(renameFile),
			"position": pos,
		})
	}
	return nil
}

// organizeImportsCommand requests organizeImports on file scope and
// applies the returned edits.
func (s *Server) organizeImportsCommand(ctx context.Context, args []interface{}) error {
	file, _ := argAt(args, 0).(string)

	future, err := s.transport.Request("organizeImports", map[string]interface{}{
		"scope": map[string]interface{}{
			"type": "file",
			"args": map[string]interface{}{"file": file},
		},
	})
	if err != nil {
		return err
	}
	raw, err := future.Result()
	if err != nil {
		return err
	}
	var edits []tsproto.FileCodeEdits
	if err := json.Unmarshal(raw, &edits); err != nil {
		return err
	}
	_, err = s.client.ApplyEdit(ctx, &protocol.ApplyWorkspaceEditParams{Edit: translate.ToWorkspaceEdit(edits)})
	return err
}

// applyRenameFileCommand requests getEditsForFileRename(oldPath, newPath)
// and applies the returned edits.
func (s *Server) applyRenameFileCommand(ctx context.Context, args []interface{}) error {
	oldPath, _ := argAt(args, 0).(string)
	newPath, _ := argAt(args, 1).(string)

	future, err := s.transport.Request("getEditsForFileRename", map[string]interface{}{
		"oldFilePath": oldPath,
		"newFilePath": newPath,
	})
	if err != nil {
		return err
	}
	raw, err := future.Result()
	if err != nil {
		return err
	}
	var edits []tsproto.FileCodeEdits
	if err := json.Unmarshal(raw, &edits); err != nil {
		return err
	}
	_, err = s.client.ApplyEdit(ctx, &protocol.ApplyWorkspaceEditParams{Edit: translate.ToWorkspaceEdit(edits)})
	return err
}
