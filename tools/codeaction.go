package tools

import (
	"context"

	"github.com/MDBrothers/ada-mcp-bridge/bridge"
	"github.com/MDBrothers/ada-mcp-bridge/lsp"
	"github.com/MDBrothers/ada-mcp-bridge/types"

	"github.com/mark3labs/mcp-go/mcp"
	srv "github.com/mark3labs/mcp-go/server"
)

type codeAction struct {
	Title       string         `json:"title"`
	Kind        string         `json:"kind"`
	IsPreferred bool           `json:"isPreferred"`
	Edit        map[string]any `json:"edit"`
	Command     any            `json:"command"`
}

// CodeActionsTool exposes textDocument/codeAction over a range plus the
// diagnostics that currently overlap it.
func CodeActionsTool(b *bridge.MCPLSPBridge) srv.ServerTool {
	return srv.ServerTool{
		Tool: mcp.NewTool("code_actions",
			mcp.WithDescription("List available quick fixes / refactorings over a source range"),
			mcp.WithString("file", mcp.Required(), mcp.Description("Absolute path to the source file")),
			mcp.WithNumber("start_line", mcp.Required(), mcp.Description("1-based start line")),
			mcp.WithNumber("start_column", mcp.Required(), mcp.Description("1-based start column")),
			mcp.WithNumber("end_line", mcp.Description("1-based end line (defaults to start_line)")),
			mcp.WithNumber("end_column", mcp.Description("1-based end column (defaults to start_column)")),
		),
		Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			startLine := argInt(args, "start_line", 0)
			startCol := argInt(args, "start_column", 0)
			endLine := argInt(args, "end_line", startLine)
			endCol := argInt(args, "end_column", startCol)
			return codeActions(ctx, b, argString(args, "file"), startLine, startCol, endLine, endCol)
		},
	}
}

func codeActions(ctx context.Context, b *bridge.MCPLSPBridge, file string, startLine, startCol, endLine, endCol int) (*mcp.CallToolResult, error) {
	resolved, client, err := getClientForFile(ctx, b, file)
	if err != nil {
		return errResult(err)
	}
	uri, err := ensureOpen(ctx, client, resolved)
	if err != nil {
		return errResult(err)
	}

	rng := rangeParams(startLine, startCol, endLine, endCol)
	diagsByURI := client.GetDiagnostics(uri, "all")

	params := map[string]any{
		"textDocument": map[string]any{"uri": uri},
		"range":        rng,
		"context":      map[string]any{"diagnostics": overlappingDiagnostics(diagsByURI[uri], startLine, endLine)},
	}

	var raw []codeAction
	if err := client.SendRequest(ctx, "textDocument/codeAction", params, &raw, lsp.DefaultRequestTimeout); err != nil {
		return jsonResult(map[string]any{"actions": []any{}, "count": 0, "error": translateErr(err)})
	}

	actions := make([]map[string]any, 0, len(raw))
	for _, a := range raw {
		filesAffected := affectedFiles(a.Edit)
		actions = append(actions, map[string]any{
			"title":          a.Title,
			"kind":           a.Kind,
			"is_preferred":   a.IsPreferred,
			"has_edit":       a.Edit != nil,
			"files_affected": filesAffected,
			"command":        a.Command,
		})
	}
	return jsonResult(map[string]any{"actions": actions, "count": len(actions)})
}

func rangeParams(startLine, startCol, endLine, endCol int) map[string]any {
	startWireLine, startWireCol := lsp.ToWirePosition(startLine, startCol)
	endWireLine, endWireCol := lsp.ToWirePosition(endLine, endCol)
	return map[string]any{
		"start": map[string]any{"line": startWireLine, "character": startWireCol},
		"end":   map[string]any{"line": endWireLine, "character": endWireCol},
	}
}

func overlappingDiagnostics(diags []types.Diagnostic, startLine, endLine int) []map[string]any {
	var out []map[string]any
	for _, d := range diags {
		if d.Range.Start.Line > endLine || d.Range.End.Line < startLine {
			continue
		}
		startWireLine, startWireCol := lsp.ToWirePosition(d.Range.Start.Line, d.Range.Start.Column)
		endWireLine, endWireCol := lsp.ToWirePosition(d.Range.End.Line, d.Range.End.Column)
		out = append(out, map[string]any{
			"range": map[string]any{
				"start": map[string]any{"line": startWireLine, "character": startWireCol},
				"end":   map[string]any{"line": endWireLine, "character": endWireCol},
			},
			"message":  d.Message,
			"severity": int(d.Severity),
		})
	}
	return out
}

func affectedFiles(edit map[string]any) []string {
	if edit == nil {
		return nil
	}
	uris := make(map[string]bool)

	if changes, ok := edit["changes"].(map[string]any); ok {
		for uri := range changes {
			uris[uri] = true
		}
	}
	if documentChanges, ok := edit["documentChanges"].([]any); ok {
		for _, raw := range documentChanges {
			dc, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			if uri := documentChangeURI(dc); uri != "" {
				uris[uri] = true
			}
		}
	}

	out := make([]string, 0, len(uris))
	for uri := range uris {
		if path, err := lsp.URIToPath(uri); err == nil {
			out = append(out, path)
		} else {
			out = append(out, uri)
		}
	}
	return out
}

// documentChangeURI extracts the affected file URI from one element of a
// WorkspaceEdit.documentChanges array, which may be a TextDocumentEdit
// (nested textDocument.uri) or a CreateFile/DeleteFile/RenameFile resource
// operation (a top-level uri, or newUri for renames).
func documentChangeURI(dc map[string]any) string {
	if td, ok := dc["textDocument"].(map[string]any); ok {
		if uri, ok := td["uri"].(string); ok {
			return uri
		}
	}
	if uri, ok := dc["newUri"].(string); ok {
		return uri
	}
	if uri, ok := dc["uri"].(string); ok {
		return uri
	}
	return ""
}
