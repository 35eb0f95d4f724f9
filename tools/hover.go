package tools

import (
	"context"
	"strings"

	"github.com/MDBrothers/ada-mcp-bridge/bridge"
	"github.com/MDBrothers/ada-mcp-bridge/lsp"

	"github.com/mark3labs/mcp-go/mcp"
	srv "github.com/mark3labs/mcp-go/server"
)

// HoverTool exposes textDocument/hover, flattening the LSP MarkedString
// union into plain text.
func HoverTool(b *bridge.MCPLSPBridge) srv.ServerTool {
	return srv.ServerTool{
		Tool: mcp.NewTool("hover",
			mcp.WithDescription("Show type and documentation info for the symbol at a source position"),
			mcp.WithString("file", mcp.Required(), mcp.Description("Absolute path to the source file")),
			mcp.WithNumber("line", mcp.Required(), mcp.Description("1-based line number")),
			mcp.WithNumber("column", mcp.Required(), mcp.Description("1-based column number")),
		),
		Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			return hoverRequest(ctx, b, argString(args, "file"), argInt(args, "line", 0), argInt(args, "column", 0))
		},
	}
}

func hoverRequest(ctx context.Context, b *bridge.MCPLSPBridge, file string, line, column int) (*mcp.CallToolResult, error) {
	resolved, client, err := getClientForFile(ctx, b, file)
	if err != nil {
		return errResult(err)
	}
	uri, err := ensureOpen(ctx, client, resolved)
	if err != nil {
		return errResult(err)
	}

	var raw map[string]any
	if err := client.SendRequest(ctx, "textDocument/hover", positionParams(uri, line, column), &raw, lsp.DefaultRequestTimeout); err != nil {
		return jsonResult(notFound(translateErr(err)))
	}
	if raw == nil {
		return jsonResult(notFound("no hover information"))
	}

	contents := flattenHoverContents(raw["contents"])
	if contents == "" {
		return jsonResult(notFound("no hover information"))
	}
	return jsonResult(map[string]any{"found": true, "contents": contents})
}

// flattenHoverContents joins the string | MarkupContent | MarkedString |
// MarkedString[] union LSP allows for Hover.contents into a single
// newline-joined plain-text block.
func flattenHoverContents(v any) string {
	var parts []string
	flattenHoverValue(v, &parts)
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

func flattenHoverValue(v any, parts *[]string) {
	switch t := v.(type) {
	case nil:
		return
	case string:
		*parts = append(*parts, t)
	case []any:
		for _, item := range t {
			flattenHoverValue(item, parts)
		}
	case map[string]any:
		// Covers both MarkupContent {kind,value} and MarkedString
		// {language,value}; both carry the text under "value".
		if value, ok := t["value"].(string); ok {
			*parts = append(*parts, value)
		}
	}
}
