package tools

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/MDBrothers/ada-mcp-bridge/bridge"
	"github.com/MDBrothers/ada-mcp-bridge/lsp"

	"github.com/mark3labs/mcp-go/mcp"
	srv "github.com/mark3labs/mcp-go/server"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// validateNewName enforces the compatibility-critical rename-identifier
// rule set: a leading letter, only letters/digits/underscore after that,
// no two consecutive underscores, and no trailing underscore.
func validateNewName(name string) error {
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("Invalid Ada identifier: '%s'", name)
	}
	if strings.Contains(name, "__") {
		return fmt.Errorf("Invalid Ada identifier: '%s'", name)
	}
	if strings.HasSuffix(name, "_") {
		return fmt.Errorf("Invalid Ada identifier: '%s'", name)
	}
	return nil
}

type textEdit struct {
	Range   wireRange `json:"range"`
	NewText string    `json:"newText"`
}

type workspaceEditResult struct {
	Changes         map[string][]textEdit `json:"changes"`
	DocumentChanges []documentChangeEdit  `json:"documentChanges"`
}

// documentChangeEdit captures the TextDocumentEdit variant of
// WorkspaceEdit.documentChanges (the create/rename/delete file operation
// variants carry no text edits and are not relevant to a rename).
type documentChangeEdit struct {
	TextDocument struct {
		URI string `json:"uri"`
	} `json:"textDocument"`
	Edits []textEdit `json:"edits"`
}

// RenameSymbolTool exposes textDocument/prepareRename followed by
// textDocument/rename.
func RenameSymbolTool(b *bridge.MCPLSPBridge) srv.ServerTool {
	return srv.ServerTool{
		Tool: mcp.NewTool("rename_symbol",
			mcp.WithDescription("Rename the symbol at a source position across the whole project"),
			mcp.WithString("file", mcp.Required(), mcp.Description("Absolute path to the source file")),
			mcp.WithNumber("line", mcp.Required(), mcp.Description("1-based line number")),
			mcp.WithNumber("column", mcp.Required(), mcp.Description("1-based column number")),
			mcp.WithString("new_name", mcp.Required(), mcp.Description("The replacement identifier")),
		),
		Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			return renameSymbol(ctx, b, argString(args, "file"), argInt(args, "line", 0), argInt(args, "column", 0), argString(args, "new_name"))
		},
	}
}

func renameSymbol(ctx context.Context, b *bridge.MCPLSPBridge, file string, line, column int, newName string) (*mcp.CallToolResult, error) {
	if err := validateNewName(newName); err != nil {
		return jsonResult(map[string]any{"success": false, "old_name": "", "new_name": newName, "error": err.Error()})
	}

	resolved, client, err := getClientForFile(ctx, b, file)
	if err != nil {
		return errResult(err)
	}
	uri, err := ensureOpen(ctx, client, resolved)
	if err != nil {
		return errResult(err)
	}

	oldName := identifierAt(resolved, line)

	var prepareResult any
	if err := client.SendRequest(ctx, "textDocument/prepareRename", positionParams(uri, line, column), &prepareResult, lsp.DefaultRequestTimeout); err != nil {
		return jsonResult(map[string]any{"success": false, "old_name": oldName, "new_name": newName, "error": translateErr(err)})
	}

	params := positionParams(uri, line, column)
	params["newName"] = newName

	var edit workspaceEditResult
	if err := client.SendRequest(ctx, "textDocument/rename", params, &edit, lsp.LongRequestTimeout); err != nil {
		return jsonResult(map[string]any{"success": false, "old_name": oldName, "new_name": newName, "error": translateErr(err)})
	}

	changes, filesAffected := flattenWorkspaceEdit(edit, oldName, newName)
	return jsonResult(map[string]any{
		"success":        true,
		"old_name":       oldName,
		"new_name":       newName,
		"changes":        changes,
		"total_changes":  len(changes),
		"files_affected": filesAffected,
		"applied":        true,
	})
}

func flattenWorkspaceEdit(edit workspaceEditResult, oldName, newName string) ([]map[string]any, int) {
	byURI := make(map[string][]textEdit)
	for uri, edits := range edit.Changes {
		byURI[uri] = append(byURI[uri], edits...)
	}
	for _, dc := range edit.DocumentChanges {
		byURI[dc.TextDocument.URI] = append(byURI[dc.TextDocument.URI], dc.Edits...)
	}

	var changes []map[string]any
	for uri, edits := range byURI {
		path, err := lsp.URIToPath(uri)
		if err != nil {
			path = uri
		}
		for _, e := range edits {
			line, col := lsp.FromWirePosition(e.Range.Start.Line, e.Range.Start.Character)
			changes = append(changes, map[string]any{
				"file":     path,
				"line":     line,
				"column":   col,
				"old_text": oldName,
				"new_text": e.NewText,
			})
		}
	}
	return changes, len(byURI)
}

// identifierAt reads the word under the given 1-based line, used only to
// report old_name in the result; a best-effort text scan, not a parser.
func identifierAt(path string, line int) string {
	text := preview(path, line)
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !(r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'))
	})
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
