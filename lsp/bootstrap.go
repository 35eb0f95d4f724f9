package lsp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/myleshyson/lsprotocol-go/protocol"

	"github.com/MDBrothers/ada-mcp-bridge/logger"
)

const indexingGrace = 500 * time.Millisecond

// projectGPRLanguageID is used for the project-definition file's didOpen,
// distinct from the Ada source languageId so the server can special-case it.
const projectGPRLanguageID = "gpr"

// BootstrapOptions carries the resolved inputs to Bootstrap; any field left
// empty is resolved from its environment-variable/search fallback.
type BootstrapOptions struct {
	ProjectRoot   string
	LSPath        string
	ProjectFile   string
}

// ResolveLSPath resolves the language server executable: explicit arg >
// LS_PATH env > default binary name.
func ResolveLSPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if v := os.Getenv("LS_PATH"); v != "" {
		return v
	}
	return "ada_language_server"
}

// ResolveProjectFile resolves the .gpr project definition file: explicit
// arg > ADA_PROJECT_FILE env (relative to projectRoot) > a scan of
// projectRoot preferring non-"alire"-prefixed names, lexical tie-break.
func ResolveProjectFile(projectRoot, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if v := os.Getenv("ADA_PROJECT_FILE"); v != "" {
		return filepath.Join(projectRoot, v)
	}
	return findGPRFile(projectRoot)
}

func findGPRFile(projectRoot string) string {
	entries, err := os.ReadDir(projectRoot)
	if err != nil {
		return ""
	}
	var candidates []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".gpr") {
			candidates = append(candidates, e.Name())
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	sort.Strings(candidates)
	for _, c := range candidates {
		if !strings.HasPrefix(strings.ToLower(c), "alire") {
			return filepath.Join(projectRoot, c)
		}
	}
	return filepath.Join(projectRoot, candidates[0])
}

// Bootstrap spawns the LS subprocess, runs the initialize/initialized
// handshake, and (if a project file was resolved) opens it. Failure at any
// step returns a *BootstrapError; the caller must not cache the instance.
func Bootstrap(ctx context.Context, opts BootstrapOptions) (*Client, error) {
	lsPath := ResolveLSPath(opts.LSPath)
	projectFile := ResolveProjectFile(opts.ProjectRoot, opts.ProjectFile)

	client, err := NewClient(lsPath, nil, opts.ProjectRoot)
	if err != nil {
		return nil, &BootstrapError{Step: "construct", Err: err}
	}
	if err := client.Connect(ctx); err != nil {
		return nil, &BootstrapError{Step: "spawn", Err: err}
	}

	rootURI := PathToURI(opts.ProjectRoot)
	initOptions := map[string]any{}
	if projectFile != "" {
		initOptions["projectFile"] = projectFile
	} else {
		initOptions["enableIndexing"] = false
	}

	params := protocol.InitializeParams{
		ProcessID: int32(os.Getpid()),
		RootURI:   rootURI,
		RootPath:  opts.ProjectRoot,
		WorkspaceFolders: []protocol.WorkspaceFolder{
			{URI: rootURI, Name: filepath.Base(opts.ProjectRoot)},
		},
		Capabilities:          advertisedCapabilities(),
		InitializationOptions: initOptions,
	}

	var result protocol.InitializeResult
	if err := client.SendRequest(ctx, "initialize", params, &result, LongRequestTimeout); err != nil {
		_ = client.Shutdown(ctx)
		return nil, &BootstrapError{Step: "initialize", Err: err}
	}

	if err := client.SendNotification(ctx, "initialized", map[string]any{}); err != nil {
		_ = client.Shutdown(ctx)
		return nil, &BootstrapError{Step: "initialized", Err: err}
	}

	if projectFile != "" {
		if text, err := os.ReadFile(projectFile); err == nil {
			uri := PathToURI(projectFile)
			didOpenParams := map[string]any{
				"textDocument": map[string]any{
					"uri":        uri,
					"languageId": projectGPRLanguageID,
					"version":    1,
					"text":       string(text),
				},
			}
			if err := client.SendNotification(ctx, "textDocument/didOpen", didOpenParams); err != nil {
				logger.Warn("failed to open project file {File}: {Error}", projectFile, err.Error())
			} else {
				client.MarkFileOpen(uri)
			}
		} else {
			logger.Warn("resolved project file {File} does not exist: {Error}", projectFile, err.Error())
		}
		time.Sleep(indexingGrace)
	}

	client.setStatus(StatusConnected)
	logger.Info("bootstrapped language server for {ProjectRoot} (pid {Pid})", opts.ProjectRoot, fmt.Sprint(client.pid))
	return client, nil
}

func advertisedCapabilities() protocol.ClientCapabilities {
	t := true
	return protocol.ClientCapabilities{
		TextDocument: &protocol.TextDocumentClientCapabilities{
			Definition: &protocol.DefinitionClientCapabilities{
				DynamicRegistration: &t,
				LinkSupport:         &t,
			},
			TypeDefinition: &protocol.TypeDefinitionClientCapabilities{DynamicRegistration: &t, LinkSupport: &t},
			Implementation: &protocol.ImplementationClientCapabilities{DynamicRegistration: &t, LinkSupport: &t},
			Declaration:    &protocol.DeclarationClientCapabilities{DynamicRegistration: &t, LinkSupport: &t},
			References:     &protocol.ReferenceClientCapabilities{DynamicRegistration: &t},
			Hover: &protocol.HoverClientCapabilities{
				DynamicRegistration: &t,
				ContentFormat:       []protocol.MarkupKind{protocol.MarkupKindPlainText, protocol.MarkupKindMarkdown},
			},
			DocumentSymbol: &protocol.DocumentSymbolClientCapabilities{
				DynamicRegistration:               &t,
				HierarchicalDocumentSymbolSupport: &t,
			},
			Completion: &protocol.CompletionClientCapabilities{
				DynamicRegistration: &t,
				CompletionItem: &protocol.CompletionClientCapabilitiesCompletionItem{
					SnippetSupport:     boolPtr(false),
					DocumentationFormat: []protocol.MarkupKind{protocol.MarkupKindPlainText, protocol.MarkupKindMarkdown},
				},
			},
			SignatureHelp: &protocol.SignatureHelpClientCapabilities{DynamicRegistration: &t},
			PublishDiagnostics: &protocol.PublishDiagnosticsClientCapabilities{
				RelatedInformation: &t,
			},
			CallHierarchy: &protocol.CallHierarchyClientCapabilities{DynamicRegistration: &t},
			Rename: &protocol.RenameClientCapabilities{
				DynamicRegistration: &t,
				PrepareSupport:      &t,
			},
			CodeAction:   &protocol.CodeActionClientCapabilities{DynamicRegistration: &t},
			Formatting:   &protocol.DocumentFormattingClientCapabilities{DynamicRegistration: &t},
		},
		Workspace: &protocol.WorkspaceClientCapabilities{
			WorkspaceFolders: &t,
			Symbol:           &protocol.WorkspaceSymbolClientCapabilities{DynamicRegistration: &t},
		},
	}
}

func boolPtr(b bool) *bool { return &b }
