package tools

import (
	"context"

	"github.com/MDBrothers/ada-mcp-bridge/bridge"
	"github.com/MDBrothers/ada-mcp-bridge/lsp"

	"github.com/mark3labs/mcp-go/mcp"
	srv "github.com/mark3labs/mcp-go/server"
)

// FormatFileTool exposes textDocument/formatting.
func FormatFileTool(b *bridge.MCPLSPBridge) srv.ServerTool {
	return srv.ServerTool{
		Tool: mcp.NewTool("format_file",
			mcp.WithDescription("Format a source file"),
			mcp.WithString("file", mcp.Required(), mcp.Description("Absolute path to the source file")),
			mcp.WithNumber("tab_size", mcp.Description("Spaces per indent level (default 3, the Ada style guide default)")),
		),
		Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			return formatFile(ctx, b, argString(args, "file"), argInt(args, "tab_size", 3))
		},
	}
}

func formatFile(ctx context.Context, b *bridge.MCPLSPBridge, file string, tabSize int) (*mcp.CallToolResult, error) {
	resolved, client, err := getClientForFile(ctx, b, file)
	if err != nil {
		return errResult(err)
	}
	uri, err := ensureOpen(ctx, client, resolved)
	if err != nil {
		return errResult(err)
	}

	params := map[string]any{
		"textDocument": map[string]any{"uri": uri},
		"options": map[string]any{
			"tabSize":      tabSize,
			"insertSpaces": true,
		},
	}

	var raw []textEdit
	if err := client.SendRequest(ctx, "textDocument/formatting", params, &raw, lsp.DefaultRequestTimeout); err != nil {
		return jsonResult(map[string]any{"formatted": false, "changes": 0, "edits": []any{}, "error": translateErr(err)})
	}

	edits := make([]map[string]any, 0, len(raw))
	for _, e := range raw {
		startLine, startCol := lsp.FromWirePosition(e.Range.Start.Line, e.Range.Start.Character)
		endLine, endCol := lsp.FromWirePosition(e.Range.End.Line, e.Range.End.Character)
		edits = append(edits, map[string]any{
			"start_line":   startLine,
			"start_column": startCol,
			"end_line":     endLine,
			"end_column":   endCol,
			"new_text":     e.NewText,
		})
	}

	return jsonResult(map[string]any{"formatted": len(edits) > 0, "changes": len(edits), "edits": edits})
}
