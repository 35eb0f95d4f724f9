package tools

import (
	"context"

	"github.com/MDBrothers/ada-mcp-bridge/bridge"
	"github.com/MDBrothers/ada-mcp-bridge/lsp"

	"github.com/mark3labs/mcp-go/mcp"
	srv "github.com/mark3labs/mcp-go/server"
)

type callHierarchyItem struct {
	Name           string    `json:"name"`
	Kind           int       `json:"kind"`
	URI            string    `json:"uri"`
	Range          wireRange `json:"range"`
	SelectionRange wireRange `json:"selectionRange"`
}

type callHierarchyIncomingCall struct {
	From       callHierarchyItem `json:"from"`
	FromRanges []wireRange       `json:"fromRanges"`
}

type callHierarchyOutgoingCall struct {
	To         callHierarchyItem `json:"to"`
	FromRanges []wireRange       `json:"fromRanges"`
}

// CallHierarchyTool exposes textDocument/prepareCallHierarchy followed by
// callHierarchy/incomingCalls and/or callHierarchy/outgoingCalls.
func CallHierarchyTool(b *bridge.MCPLSPBridge) srv.ServerTool {
	return srv.ServerTool{
		Tool: mcp.NewTool("call_hierarchy",
			mcp.WithDescription("Show callers and/or callees of the function at a source position"),
			mcp.WithString("file", mcp.Required(), mcp.Description("Absolute path to the source file")),
			mcp.WithNumber("line", mcp.Required(), mcp.Description("1-based line number")),
			mcp.WithNumber("column", mcp.Required(), mcp.Description("1-based column number")),
			mcp.WithString("direction", mcp.Description("One of incoming|outgoing|both (default both)")),
		),
		Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			direction := argString(args, "direction")
			if direction == "" {
				direction = "both"
			}
			return callHierarchy(ctx, b, argString(args, "file"), argInt(args, "line", 0), argInt(args, "column", 0), direction)
		},
	}
}

func callHierarchy(ctx context.Context, b *bridge.MCPLSPBridge, file string, line, column int, direction string) (*mcp.CallToolResult, error) {
	resolved, client, err := getClientForFile(ctx, b, file)
	if err != nil {
		return errResult(err)
	}
	uri, err := ensureOpen(ctx, client, resolved)
	if err != nil {
		return errResult(err)
	}

	var items []callHierarchyItem
	if err := client.SendRequest(ctx, "textDocument/prepareCallHierarchy", positionParams(uri, line, column), &items, lsp.DefaultRequestTimeout); err != nil {
		return jsonResult(notFound(translateErr(err)))
	}
	if len(items) == 0 {
		return jsonResult(notFound("no call hierarchy item at this position"))
	}
	item := items[0]

	result := map[string]any{
		"found": true,
		"symbol": map[string]any{
			"name": item.Name,
			"kind": symbolKindName(item.Kind),
		},
	}

	var incomingCount, outgoingCount int

	if direction == "incoming" || direction == "both" {
		var incoming []callHierarchyIncomingCall
		if err := client.SendRequest(ctx, "callHierarchy/incomingCalls", map[string]any{"item": item}, &incoming, lsp.DefaultRequestTimeout); err == nil {
			result["incoming_calls"] = flattenIncoming(incoming)
			incomingCount = len(incoming)
		} else {
			result["incoming_calls"] = []any{}
		}
	}
	if direction == "outgoing" || direction == "both" {
		var outgoing []callHierarchyOutgoingCall
		if err := client.SendRequest(ctx, "callHierarchy/outgoingCalls", map[string]any{"item": item}, &outgoing, lsp.DefaultRequestTimeout); err == nil {
			result["outgoing_calls"] = flattenOutgoing(outgoing)
			outgoingCount = len(outgoing)
		} else {
			result["outgoing_calls"] = []any{}
		}
	}

	result["counts"] = map[string]any{"incoming": incomingCount, "outgoing": outgoingCount}
	return jsonResult(result)
}

func flattenIncoming(calls []callHierarchyIncomingCall) []map[string]any {
	out := make([]map[string]any, 0, len(calls))
	for _, c := range calls {
		out = append(out, itemSummary(c.From))
	}
	return out
}

func flattenOutgoing(calls []callHierarchyOutgoingCall) []map[string]any {
	out := make([]map[string]any, 0, len(calls))
	for _, c := range calls {
		out = append(out, itemSummary(c.To))
	}
	return out
}

func itemSummary(item callHierarchyItem) map[string]any {
	path, err := lsp.URIToPath(item.URI)
	if err != nil {
		path = item.URI
	}
	line, col := lsp.FromWirePosition(item.SelectionRange.Start.Line, item.SelectionRange.Start.Character)
	return map[string]any{
		"name":   item.Name,
		"kind":   symbolKindName(item.Kind),
		"file":   path,
		"line":   line,
		"column": col,
	}
}
