// Package tools translates MCP tool calls into LSP requests against the
// pooled Ada language server and normalizes the responses into the plain
// JSON shapes the tool schema promises, per the five-step pattern: resolve
// path to URI, ensure the file is open, dispatch the LSP request(s),
// reshape the result, and turn any failure into a structured value instead
// of an error crossing the tool boundary.
package tools

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/MDBrothers/ada-mcp-bridge/bridge"
	"github.com/MDBrothers/ada-mcp-bridge/logger"
	"github.com/MDBrothers/ada-mcp-bridge/lsp"

	"github.com/mark3labs/mcp-go/mcp"
)

// getClientForFile resolves a tool-supplied file path against the bridge's
// allow-list, acquires (creating if necessary) the pooled language server
// instance for its project, and returns both the resolved path and client.
func getClientForFile(ctx context.Context, b *bridge.MCPLSPBridge, file string) (string, *lsp.Client, error) {
	resolved, err := b.ResolvePath(file)
	if err != nil {
		return "", nil, err
	}
	client, err := b.Pool().Get(ctx, resolved)
	if err != nil {
		return "", nil, err
	}
	return resolved, client, nil
}

// ensureOpen announces path to client via textDocument/didOpen if it has
// not already been announced on this client. Files that do not exist on
// disk are skipped with a warning; the caller still issues its LSP request
// since some operations work over bare URIs.
func ensureOpen(ctx context.Context, client *lsp.Client, path string) (string, error) {
	uri := lsp.PathToURI(path)
	if client.IsFileOpen(uri) {
		return uri, nil
	}

	text, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("skipping didOpen for unreadable file {File}: {Error}", path, err.Error())
		return uri, nil
	}

	params := map[string]any{
		"textDocument": map[string]any{
			"uri":        uri,
			"languageId": lsp.LanguageIDForPath(path),
			"version":    1,
			"text":       string(text),
		},
	}
	if err := client.SendNotification(ctx, "textDocument/didOpen", params); err != nil {
		return uri, err
	}
	client.MarkFileOpen(uri)
	return uri, nil
}

// positionParams builds the standard TextDocumentPositionParams body from
// a 1-based user line/column.
func positionParams(uri string, line, column int) map[string]any {
	wireLine, wireCol := lsp.ToWirePosition(line, column)
	return map[string]any{
		"textDocument": map[string]any{"uri": uri},
		"position":     map[string]any{"line": wireLine, "character": wireCol},
	}
}

// preview reads the 1-based line from path, trimmed of trailing whitespace.
// Returns "" on any read failure.
func preview(path string, line int) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	n := 0
	for scanner.Scan() {
		n++
		if n == line {
			return strings.TrimRight(scanner.Text(), " \t\r")
		}
	}
	return ""
}

// wirePosition is the LSP wire Position shape.
type wirePosition struct {
	Line      uint32 `json:"line"`
	Character uint32 `json:"character"`
}

// wireRange is the LSP wire Range shape.
type wireRange struct {
	Start wirePosition `json:"start"`
	End   wirePosition `json:"end"`
}

// wireLocation is the LSP wire Location shape.
type wireLocation struct {
	URI   string    `json:"uri"`
	Range wireRange `json:"range"`
}

// wireLocationLink is the alternate shape textDocument/definition and
// friends may return in place of Location.
type wireLocationLink struct {
	TargetURI   string    `json:"targetUri"`
	TargetRange wireRange `json:"targetSelectionRange"`
}

func argString(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func argInt(args map[string]any, key string, def int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return def
	}
}

func argBool(args map[string]any, key string, def bool) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return def
}

// jsonResult marshals v (a plain map/struct built to match the tool's
// documented output shape) as the tool call's text content.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to marshal tool result", err), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func errResult(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func notFound(reason string) map[string]any {
	return map[string]any{"found": false, "error": reason}
}

func translateErr(err error) string {
	switch err.(type) {
	case *lsp.TimeoutError:
		return "request timed out"
	default:
		return err.Error()
	}
}
