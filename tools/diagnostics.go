package tools

import (
	"context"

	"github.com/MDBrothers/ada-mcp-bridge/bridge"
	"github.com/MDBrothers/ada-mcp-bridge/lsp"
	"github.com/MDBrothers/ada-mcp-bridge/types"

	"github.com/mark3labs/mcp-go/mcp"
	srv "github.com/mark3labs/mcp-go/server"
)

// DiagnosticsTool reads the per-client diagnostics push store directly; it
// issues no LSP request of its own.
func DiagnosticsTool(b *bridge.MCPLSPBridge) srv.ServerTool {
	return srv.ServerTool{
		Tool: mcp.NewTool("diagnostics",
			mcp.WithDescription("List compiler diagnostics for a file (or the whole project)"),
			mcp.WithString("file", mcp.Description("Absolute path to a source file; omit for every file in the project")),
			mcp.WithString("severity", mcp.Description("One of error|warning|hint|info|all (default all)")),
		),
		Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			return diagnosticsResult(ctx, b, argString(args, "file"), argString(args, "severity"))
		},
	}
}

func diagnosticsResult(ctx context.Context, b *bridge.MCPLSPBridge, file, severity string) (*mcp.CallToolResult, error) {
	var (
		client *lsp.Client
		err    error
		uri    string
	)
	if file != "" {
		var resolved string
		resolved, client, err = getClientForFile(ctx, b, file)
		if err == nil {
			uri = lsp.PathToURI(resolved)
		}
	} else {
		client, err = b.Pool().Get(ctx, "")
	}
	if err != nil {
		return errResult(err)
	}

	byURI := client.GetDiagnostics(uri, severity)

	var (
		all                                        []map[string]any
		errorCount, warningCount, hintCount, total int
	)
	for u, diags := range byURI {
		path, perr := lsp.URIToPath(u)
		if perr != nil {
			path = u
		}
		for _, d := range diags {
			total++
			switch d.Severity {
			case types.SeverityError:
				errorCount++
			case types.SeverityWarning:
				warningCount++
			case types.SeverityHint, types.SeverityInformation:
				hintCount++
			}
			all = append(all, map[string]any{
				"file":     path,
				"line":     d.Range.Start.Line,
				"column":   d.Range.Start.Column,
				"message":  d.Message,
				"severity": d.Severity.String(),
				"code":     d.Code,
				"source":   d.Source,
			})
		}
	}

	return jsonResult(map[string]any{
		"diagnostics": all,
		"errorCount":  errorCount,
		"warningCount": warningCount,
		"hintCount":    hintCount,
		"totalCount":   total,
	})
}
