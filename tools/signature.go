package tools

import (
	"context"

	"github.com/MDBrothers/ada-mcp-bridge/bridge"
	"github.com/MDBrothers/ada-mcp-bridge/lsp"

	"github.com/mark3labs/mcp-go/mcp"
	srv "github.com/mark3labs/mcp-go/server"
)

type signatureParameter struct {
	Label         any `json:"label"`
	Documentation any `json:"documentation"`
}

type signatureInformation struct {
	Label         string               `json:"label"`
	Documentation any                  `json:"documentation"`
	Parameters    []signatureParameter `json:"parameters"`
}

type signatureHelpResult struct {
	Signatures      []signatureInformation `json:"signatures"`
	ActiveSignature int                    `json:"activeSignature"`
	ActiveParameter int                    `json:"activeParameter"`
}

// SignatureHelpTool exposes textDocument/signatureHelp.
func SignatureHelpTool(b *bridge.MCPLSPBridge) srv.ServerTool {
	return srv.ServerTool{
		Tool: mcp.NewTool("signature_help",
			mcp.WithDescription("Show the parameter signature of the call at a source position"),
			mcp.WithString("file", mcp.Required(), mcp.Description("Absolute path to the source file")),
			mcp.WithNumber("line", mcp.Required(), mcp.Description("1-based line number")),
			mcp.WithNumber("column", mcp.Required(), mcp.Description("1-based column number")),
		),
		Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			return signatureHelp(ctx, b, argString(args, "file"), argInt(args, "line", 0), argInt(args, "column", 0))
		},
	}
}

func signatureHelp(ctx context.Context, b *bridge.MCPLSPBridge, file string, line, column int) (*mcp.CallToolResult, error) {
	resolved, client, err := getClientForFile(ctx, b, file)
	if err != nil {
		return errResult(err)
	}
	uri, err := ensureOpen(ctx, client, resolved)
	if err != nil {
		return errResult(err)
	}

	var raw signatureHelpResult
	if err := client.SendRequest(ctx, "textDocument/signatureHelp", positionParams(uri, line, column), &raw, lsp.DefaultRequestTimeout); err != nil {
		return jsonResult(notFound(translateErr(err)))
	}
	if len(raw.Signatures) == 0 {
		return jsonResult(notFound("no active signature"))
	}

	signatures := make([]map[string]any, 0, len(raw.Signatures))
	for _, sig := range raw.Signatures {
		params := make([]map[string]any, 0, len(sig.Parameters))
		for _, p := range sig.Parameters {
			params = append(params, map[string]any{
				"label":         p.Label,
				"documentation": documentationText(p.Documentation),
			})
		}
		signatures = append(signatures, map[string]any{
			"label":         sig.Label,
			"documentation": documentationText(sig.Documentation),
			"parameters":    params,
		})
	}

	return jsonResult(map[string]any{
		"found":            true,
		"signatures":       signatures,
		"active_signature": raw.ActiveSignature,
		"active_parameter": raw.ActiveParameter,
	})
}

func documentationText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any:
		if value, ok := t["value"].(string); ok {
			return value
		}
	}
	return ""
}
