// Package mcpserver wires the bridge's tool translators onto an MCP
// server instance.
package mcpserver

import (
	"github.com/MDBrothers/ada-mcp-bridge/bridge"
	"github.com/MDBrothers/ada-mcp-bridge/tools"

	"github.com/mark3labs/mcp-go/server"
)

const (
	serverName    = "ada-mcp-bridge"
	serverVersion = "0.1.0"
)

// SetupMCPServer constructs the MCP server and registers every tool
// translator against b.
func SetupMCPServer(b *bridge.MCPLSPBridge) *server.MCPServer {
	s := server.NewMCPServer(serverName, serverVersion,
		server.WithToolCapabilities(true),
	)

	s.AddTools(
		tools.GotoDefinitionTool(b),
		tools.TypeDefinitionTool(b),
		tools.ImplementationTool(b),
		tools.DeclarationTool(b),
		tools.HoverTool(b),
		tools.FindReferencesTool(b),
		tools.DocumentSymbolsTool(b),
		tools.WorkspaceSymbolsTool(b),
		tools.DiagnosticsTool(b),
		tools.CallHierarchyTool(b),
		tools.CompletionsTool(b),
		tools.SignatureHelpTool(b),
		tools.CodeActionsTool(b),
		tools.RenameSymbolTool(b),
		tools.FormatFileTool(b),
		tools.LSPStatusTool(b),
	)

	return s
}
