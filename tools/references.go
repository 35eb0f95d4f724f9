package tools

import (
	"context"

	"github.com/MDBrothers/ada-mcp-bridge/bridge"
	"github.com/MDBrothers/ada-mcp-bridge/lsp"

	"github.com/mark3labs/mcp-go/mcp"
	srv "github.com/mark3labs/mcp-go/server"
)

// FindReferencesTool exposes textDocument/references.
func FindReferencesTool(b *bridge.MCPLSPBridge) srv.ServerTool {
	return srv.ServerTool{
		Tool: mcp.NewTool("find_references",
			mcp.WithDescription("List every reference to the symbol at a source position"),
			mcp.WithString("file", mcp.Required(), mcp.Description("Absolute path to the source file")),
			mcp.WithNumber("line", mcp.Required(), mcp.Description("1-based line number")),
			mcp.WithNumber("column", mcp.Required(), mcp.Description("1-based column number")),
			mcp.WithBoolean("include_declaration", mcp.Description("Include the declaring location itself (default true)")),
		),
		Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			return findReferences(ctx, b,
				argString(args, "file"), argInt(args, "line", 0), argInt(args, "column", 0),
				argBool(args, "include_declaration", true))
		},
	}
}

func findReferences(ctx context.Context, b *bridge.MCPLSPBridge, file string, line, column int, includeDeclaration bool) (*mcp.CallToolResult, error) {
	resolved, client, err := getClientForFile(ctx, b, file)
	if err != nil {
		return errResult(err)
	}
	uri, err := ensureOpen(ctx, client, resolved)
	if err != nil {
		return errResult(err)
	}

	params := positionParams(uri, line, column)
	params["context"] = map[string]any{"includeDeclaration": includeDeclaration}

	var raw []wireLocation
	if err := client.SendRequest(ctx, "textDocument/references", params, &raw, lsp.DefaultRequestTimeout); err != nil {
		return jsonResult(map[string]any{"references": []any{}, "count": 0, "error": translateErr(err)})
	}

	refs := make([]map[string]any, 0, len(raw))
	for _, loc := range raw {
		path, err := lsp.URIToPath(loc.URI)
		if err != nil {
			path = loc.URI
		}
		userLine, userCol := lsp.FromWirePosition(loc.Range.Start.Line, loc.Range.Start.Character)
		refs = append(refs, map[string]any{
			"file":    path,
			"line":    userLine,
			"column":  userCol,
			"preview": preview(path, userLine),
		})
	}
	return jsonResult(map[string]any{"references": refs, "count": len(refs)})
}
