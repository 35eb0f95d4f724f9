package tools

import (
	"context"

	"github.com/MDBrothers/ada-mcp-bridge/bridge"
	"github.com/MDBrothers/ada-mcp-bridge/lsp"

	"github.com/mark3labs/mcp-go/mcp"
	srv "github.com/mark3labs/mcp-go/server"
)

type completionItem struct {
	Label         string `json:"label"`
	Kind          int    `json:"kind"`
	Detail        string `json:"detail"`
	InsertText    string `json:"insertText"`
	SortText      string `json:"sortText"`
}

type completionList struct {
	IsIncomplete bool              `json:"isIncomplete"`
	Items        []completionItem `json:"items"`
}

// completionKindNames maps LSP CompletionItemKind values to human names.
var completionKindNames = map[int]string{
	1: "text", 2: "method", 3: "function", 4: "constructor", 5: "field",
	6: "variable", 7: "class", 8: "interface", 9: "module", 10: "property",
	11: "unit", 12: "value", 13: "enum", 14: "keyword", 15: "snippet",
	16: "color", 17: "file", 18: "reference", 19: "folder", 20: "enum_member",
	21: "constant", 22: "struct", 23: "event", 24: "operator", 25: "type_parameter",
}

func completionKindName(kind int) string {
	if name, ok := completionKindNames[kind]; ok {
		return name
	}
	return "unknown"
}

// CompletionsTool exposes textDocument/completion.
func CompletionsTool(b *bridge.MCPLSPBridge) srv.ServerTool {
	return srv.ServerTool{
		Tool: mcp.NewTool("completions",
			mcp.WithDescription("List completion candidates at a source position"),
			mcp.WithString("file", mcp.Required(), mcp.Description("Absolute path to the source file")),
			mcp.WithNumber("line", mcp.Required(), mcp.Description("1-based line number")),
			mcp.WithNumber("column", mcp.Required(), mcp.Description("1-based column number")),
			mcp.WithString("trigger_character", mcp.Description("The character that triggered completion, if any")),
		),
		Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			return completions(ctx, b, argString(args, "file"), argInt(args, "line", 0), argInt(args, "column", 0), argString(args, "trigger_character"))
		},
	}
}

func completions(ctx context.Context, b *bridge.MCPLSPBridge, file string, line, column int, triggerChar string) (*mcp.CallToolResult, error) {
	resolved, client, err := getClientForFile(ctx, b, file)
	if err != nil {
		return errResult(err)
	}
	uri, err := ensureOpen(ctx, client, resolved)
	if err != nil {
		return errResult(err)
	}

	params := positionParams(uri, line, column)
	if triggerChar != "" {
		params["context"] = map[string]any{"triggerKind": 2, "triggerCharacter": triggerChar}
	} else {
		params["context"] = map[string]any{"triggerKind": 1}
	}

	var raw any
	if err := client.SendRequest(ctx, "textDocument/completion", params, &raw, lsp.DefaultRequestTimeout); err != nil {
		return jsonResult(map[string]any{"completions": []any{}, "count": 0, "is_incomplete": false, "error": translateErr(err)})
	}

	items, incomplete := decodeCompletionList(raw)
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		out = append(out, map[string]any{
			"label":  it.Label,
			"kind":   completionKindName(it.Kind),
			"detail": it.Detail,
			"insert_text": firstNonEmpty(it.InsertText, it.Label),
		})
	}
	return jsonResult(map[string]any{"completions": out, "count": len(out), "is_incomplete": incomplete})
}

func decodeCompletionList(raw any) ([]completionItem, bool) {
	switch v := raw.(type) {
	case nil:
		return nil, false
	case []any:
		items := make([]completionItem, 0, len(v))
		for _, e := range v {
			items = append(items, decodeCompletionItem(e))
		}
		return items, false
	case map[string]any:
		incomplete, _ := v["isIncomplete"].(bool)
		rawItems, _ := v["items"].([]any)
		items := make([]completionItem, 0, len(rawItems))
		for _, e := range rawItems {
			items = append(items, decodeCompletionItem(e))
		}
		return items, incomplete
	default:
		return nil, false
	}
}

func decodeCompletionItem(v any) completionItem {
	m, _ := v.(map[string]any)
	label, _ := m["label"].(string)
	kindF, _ := m["kind"].(float64)
	detail, _ := m["detail"].(string)
	insertText, _ := m["insertText"].(string)
	sortText, _ := m["sortText"].(string)
	return completionItem{Label: label, Kind: int(kindF), Detail: detail, InsertText: insertText, SortText: sortText}
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if v != "" {
			return v
		}
	}
	return ""
}
