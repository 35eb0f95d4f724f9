package tools

import (
	"context"

	"github.com/MDBrothers/ada-mcp-bridge/bridge"
	"github.com/MDBrothers/ada-mcp-bridge/lsp"

	"github.com/mark3labs/mcp-go/mcp"
	srv "github.com/mark3labs/mcp-go/server"
)

// documentSymbol mirrors the DocumentSymbol wire shape (hierarchical) or
// the older SymbolInformation shape (Location-only, flat).
type documentSymbol struct {
	Name     string           `json:"name"`
	Kind     int              `json:"kind"`
	Range    *wireRange       `json:"range,omitempty"`
	Location *wireLocation    `json:"location,omitempty"`
	Children []documentSymbol `json:"children,omitempty"`
}

// DocumentSymbolsTool exposes textDocument/documentSymbol.
func DocumentSymbolsTool(b *bridge.MCPLSPBridge) srv.ServerTool {
	return srv.ServerTool{
		Tool: mcp.NewTool("document_symbols",
			mcp.WithDescription("List the symbol outline of a source file"),
			mcp.WithString("file", mcp.Required(), mcp.Description("Absolute path to the source file")),
		),
		Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			return documentSymbols(ctx, b, argString(args, "file"))
		},
	}
}

func documentSymbols(ctx context.Context, b *bridge.MCPLSPBridge, file string) (*mcp.CallToolResult, error) {
	resolved, client, err := getClientForFile(ctx, b, file)
	if err != nil {
		return errResult(err)
	}
	uri, err := ensureOpen(ctx, client, resolved)
	if err != nil {
		return errResult(err)
	}

	var raw []documentSymbol
	params := map[string]any{"textDocument": map[string]any{"uri": uri}}
	if err := client.SendRequest(ctx, "textDocument/documentSymbol", params, &raw, lsp.DefaultRequestTimeout); err != nil {
		return jsonResult(map[string]any{"symbols": []any{}, "error": translateErr(err)})
	}

	out := make([]map[string]any, 0, len(raw))
	for _, s := range raw {
		out = append(out, flattenSymbol(s))
	}
	return jsonResult(map[string]any{"symbols": out})
}

func flattenSymbol(s documentSymbol) map[string]any {
	rng := s.Range
	if rng == nil && s.Location != nil {
		rng = &s.Location.Range
	}
	if rng == nil {
		rng = &wireRange{}
	}
	startLine, startCol := lsp.FromWirePosition(rng.Start.Line, rng.Start.Character)
	endLine, endCol := lsp.FromWirePosition(rng.End.Line, rng.End.Character)

	out := map[string]any{
		"name":   s.Name,
		"kind":   symbolKindName(s.Kind),
		"line":   startLine,
		"column": startCol,
		"range": map[string]any{
			"start": map[string]any{"line": startLine, "column": startCol},
			"end":   map[string]any{"line": endLine, "column": endCol},
		},
	}
	if len(s.Children) > 0 {
		children := make([]map[string]any, 0, len(s.Children))
		for _, c := range s.Children {
			children = append(children, flattenSymbol(c))
		}
		out["children"] = children
	}
	return out
}

// LSP SymbolKind numeric values (1-indexed per the specification).
const (
	symbolKindFile          = 1
	symbolKindModule        = 2
	symbolKindNamespace     = 3
	symbolKindPackage       = 4
	symbolKindClass         = 5
	symbolKindMethod        = 6
	symbolKindProperty      = 7
	symbolKindField         = 8
	symbolKindConstructor   = 9
	symbolKindEnum          = 10
	symbolKindInterface     = 11
	symbolKindFunction      = 12
	symbolKindVariable      = 13
	symbolKindConstant      = 14
	symbolKindStruct        = 23
	symbolKindEnumMember    = 22
)

var symbolKindNames = map[int]string{
	symbolKindFile:        "file",
	symbolKindModule:      "module",
	symbolKindNamespace:   "namespace",
	symbolKindPackage:     "package",
	symbolKindClass:       "class",
	symbolKindMethod:      "method",
	symbolKindProperty:    "property",
	symbolKindField:       "field",
	symbolKindConstructor: "constructor",
	symbolKindEnum:        "enum",
	symbolKindInterface:   "interface",
	symbolKindFunction:    "function",
	symbolKindVariable:    "variable",
	symbolKindConstant:    "constant",
	symbolKindStruct:      "struct",
	symbolKindEnumMember:  "enum_member",
}

func symbolKindName(kind int) string {
	if name, ok := symbolKindNames[kind]; ok {
		return name
	}
	return "unknown"
}

// kindFilterGroups maps each public workspace-symbols "kind" tag to the
// set of LSP SymbolKind values it admits.
var kindFilterGroups = map[string][]int{
	"package":   {symbolKindPackage, symbolKindModule, symbolKindNamespace},
	"procedure": {symbolKindFunction, symbolKindMethod},
	"function":  {symbolKindFunction, symbolKindMethod},
	"type":      {symbolKindClass, symbolKindStruct, symbolKindEnum, symbolKindInterface},
	"variable":  {symbolKindVariable, symbolKindConstant, symbolKindField},
}

// WorkspaceSymbolsTool exposes workspace/symbol.
func WorkspaceSymbolsTool(b *bridge.MCPLSPBridge) srv.ServerTool {
	return srv.ServerTool{
		Tool: mcp.NewTool("workspace_symbols",
			mcp.WithDescription("Search for symbols by name across the whole project"),
			mcp.WithString("query", mcp.Required(), mcp.Description("Symbol name or substring to search for")),
			mcp.WithString("kind", mcp.Description("Restrict results to one of package|procedure|function|type|variable|all (default all)")),
			mcp.WithNumber("limit", mcp.Description("Maximum results to return (default 50)")),
			mcp.WithString("file", mcp.Description("Any file in the target project, to pick which language server instance to query")),
		),
		Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			return workspaceSymbols(ctx, b,
				argString(args, "file"), argString(args, "query"), argString(args, "kind"), argInt(args, "limit", 50))
		},
	}
}

func workspaceSymbols(ctx context.Context, b *bridge.MCPLSPBridge, file, query, kind string, limit int) (*mcp.CallToolResult, error) {
	if limit <= 0 {
		limit = 50
	}
	var (
		client *lsp.Client
		err    error
	)
	if file != "" {
		_, client, err = getClientForFile(ctx, b, file)
	} else {
		client, err = b.Pool().Get(ctx, "")
	}
	if err != nil {
		return errResult(err)
	}

	var raw []documentSymbol
	params := map[string]any{"query": query}
	if err := client.SendRequest(ctx, "workspace/symbol", params, &raw, lsp.LongRequestTimeout); err != nil {
		return jsonResult(map[string]any{"symbols": []any{}, "count": 0, "truncated": false, "error": translateErr(err)})
	}

	allowed := kindFilterGroups[kind]
	out := make([]map[string]any, 0, len(raw))
	truncated := false
	for _, s := range raw {
		if kind != "" && kind != "all" && !containsInt(allowed, s.Kind) {
			continue
		}
		if len(out) >= limit {
			truncated = true
			break
		}
		out = append(out, flattenSymbol(s))
	}
	return jsonResult(map[string]any{"symbols": out, "count": len(out), "truncated": truncated})
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
