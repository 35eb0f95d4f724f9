package tools

import (
	"context"
	"os"
	"path/filepath"

	"github.com/MDBrothers/ada-mcp-bridge/bridge"
	"github.com/MDBrothers/ada-mcp-bridge/lsp"

	"github.com/mark3labs/mcp-go/mcp"
	srv "github.com/mark3labs/mcp-go/server"
)

// locationRequest resolves a single Location/LocationLink response into a
// {found,file,line,column,preview} shape. It is shared by goto-definition,
// type-definition, and implementation, which differ only in LSP method
// name.
func locationRequest(ctx context.Context, b *bridge.MCPLSPBridge, method, file string, line, column int) (*mcp.CallToolResult, error) {
	resolved, client, err := getClientForFile(ctx, b, file)
	if err != nil {
		return errResult(err)
	}
	uri, err := ensureOpen(ctx, client, resolved)
	if err != nil {
		return errResult(err)
	}

	var raw any
	if err := client.SendRequest(ctx, method, positionParams(uri, line, column), &raw, lsp.DefaultRequestTimeout); err != nil {
		return jsonResult(notFound(translateErr(err)))
	}

	loc, ok := firstLocation(raw)
	if !ok {
		return jsonResult(notFound("no location returned"))
	}

	path, err := lsp.URIToPath(loc.URI)
	if err != nil {
		path = loc.URI
	}
	userLine, userCol := lsp.FromWirePosition(loc.Range.Start.Line, loc.Range.Start.Character)
	return jsonResult(map[string]any{
		"found":   true,
		"file":    path,
		"line":    userLine,
		"column":  userCol,
		"preview": preview(path, userLine),
	})
}

// firstLocation normalizes the four shapes textDocument/definition and its
// siblings may return: a single Location, a single LocationLink, an array
// of either, or null.
func firstLocation(raw any) (wireLocation, bool) {
	switch v := raw.(type) {
	case nil:
		return wireLocation{}, false
	case []any:
		if len(v) == 0 {
			return wireLocation{}, false
		}
		return decodeLocation(v[0])
	default:
		return decodeLocation(v)
	}
}

func decodeLocation(v any) (wireLocation, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return wireLocation{}, false
	}
	if uri, ok := m["uri"].(string); ok {
		return wireLocation{URI: uri, Range: decodeRange(m["range"])}, true
	}
	if uri, ok := m["targetUri"].(string); ok {
		rng := m["targetSelectionRange"]
		if rng == nil {
			rng = m["targetRange"]
		}
		return wireLocation{URI: uri, Range: decodeRange(rng)}, true
	}
	return wireLocation{}, false
}

func decodeRange(v any) wireRange {
	m, _ := v.(map[string]any)
	return wireRange{Start: decodePosition(m["start"]), End: decodePosition(m["end"])}
}

func decodePosition(v any) wirePosition {
	m, _ := v.(map[string]any)
	line, _ := m["line"].(float64)
	ch, _ := m["character"].(float64)
	return wirePosition{Line: uint32(line), Character: uint32(ch)}
}

// GotoDefinitionTool exposes textDocument/definition.
func GotoDefinitionTool(b *bridge.MCPLSPBridge) srv.ServerTool {
	return srv.ServerTool{
		Tool: mcp.NewTool("goto_definition",
			mcp.WithDescription("Jump to the definition of the symbol at a source position"),
			mcp.WithString("file", mcp.Required(), mcp.Description("Absolute path to the source file")),
			mcp.WithNumber("line", mcp.Required(), mcp.Description("1-based line number")),
			mcp.WithNumber("column", mcp.Required(), mcp.Description("1-based column number")),
		),
		Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			return locationRequest(ctx, b, "textDocument/definition", argString(args, "file"), argInt(args, "line", 0), argInt(args, "column", 0))
		},
	}
}

// TypeDefinitionTool exposes textDocument/typeDefinition.
func TypeDefinitionTool(b *bridge.MCPLSPBridge) srv.ServerTool {
	return srv.ServerTool{
		Tool: mcp.NewTool("type_definition",
			mcp.WithDescription("Jump to the type definition of the symbol at a source position"),
			mcp.WithString("file", mcp.Required(), mcp.Description("Absolute path to the source file")),
			mcp.WithNumber("line", mcp.Required(), mcp.Description("1-based line number")),
			mcp.WithNumber("column", mcp.Required(), mcp.Description("1-based column number")),
		),
		Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			return locationRequest(ctx, b, "textDocument/typeDefinition", argString(args, "file"), argInt(args, "line", 0), argInt(args, "column", 0))
		},
	}
}

// ImplementationTool exposes textDocument/implementation.
func ImplementationTool(b *bridge.MCPLSPBridge) srv.ServerTool {
	return srv.ServerTool{
		Tool: mcp.NewTool("implementation",
			mcp.WithDescription("Jump to the implementation(s) of the symbol at a source position"),
			mcp.WithString("file", mcp.Required(), mcp.Description("Absolute path to the source file")),
			mcp.WithNumber("line", mcp.Required(), mcp.Description("1-based line number")),
			mcp.WithNumber("column", mcp.Required(), mcp.Description("1-based column number")),
		),
		Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			return locationRequest(ctx, b, "textDocument/implementation", argString(args, "file"), argInt(args, "line", 0), argInt(args, "column", 0))
		},
	}
}

// DeclarationTool exposes textDocument/declaration ("spec lookup" in Ada
// terms), falling back to swapping the .adb/.ads extension on disk when the
// language server returns nothing.
func DeclarationTool(b *bridge.MCPLSPBridge) srv.ServerTool {
	return srv.ServerTool{
		Tool: mcp.NewTool("declaration",
			mcp.WithDescription("Find the spec (declaration) file for the symbol or unit at a source position"),
			mcp.WithString("file", mcp.Required(), mcp.Description("Absolute path to the source file")),
			mcp.WithNumber("line", mcp.Required(), mcp.Description("1-based line number")),
			mcp.WithNumber("column", mcp.Required(), mcp.Description("1-based column number")),
		),
		Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			return declarationRequest(ctx, b, argString(args, "file"), argInt(args, "line", 0), argInt(args, "column", 0))
		},
	}
}

func declarationRequest(ctx context.Context, b *bridge.MCPLSPBridge, file string, line, column int) (*mcp.CallToolResult, error) {
	resolved, client, err := getClientForFile(ctx, b, file)
	if err != nil {
		return errResult(err)
	}
	uri, err := ensureOpen(ctx, client, resolved)
	if err != nil {
		return errResult(err)
	}

	var raw any
	reqErr := client.SendRequest(ctx, "textDocument/declaration", positionParams(uri, line, column), &raw, lsp.DefaultRequestTimeout)
	if reqErr == nil {
		if loc, ok := firstLocation(raw); ok {
			path, err := lsp.URIToPath(loc.URI)
			if err != nil {
				path = loc.URI
			}
			userLine, userCol := lsp.FromWirePosition(loc.Range.Start.Line, loc.Range.Start.Character)
			return jsonResult(map[string]any{
				"found":     true,
				"spec_file": path,
				"line":      userLine,
				"column":    userCol,
				"preview":   preview(path, userLine),
			})
		}
	}

	if specFile, ok := swapSpecBody(resolved); ok {
		return jsonResult(map[string]any{
			"found":     true,
			"spec_file": specFile,
			"line":      1,
			"column":    1,
			"preview":   preview(specFile, 1),
		})
	}

	if reqErr != nil {
		return jsonResult(notFound(translateErr(reqErr)))
	}
	return jsonResult(notFound("no declaration found"))
}

// swapSpecBody swaps a .adb file's extension for .ads (and vice versa) and
// reports whether the resulting path exists on disk.
func swapSpecBody(path string) (string, bool) {
	ext := filepath.Ext(path)
	var swapped string
	switch ext {
	case ".adb":
		swapped = path[:len(path)-len(ext)] + ".ads"
	case ".ads":
		swapped = path[:len(path)-len(ext)] + ".adb"
	default:
		return "", false
	}
	if _, err := os.Stat(swapped); err != nil {
		return "", false
	}
	return swapped, true
}
