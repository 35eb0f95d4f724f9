package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/MDBrothers/ada-mcp-bridge/lsp"
	"github.com/MDBrothers/ada-mcp-bridge/logger"
	"github.com/MDBrothers/ada-mcp-bridge/security"
	"github.com/MDBrothers/ada-mcp-bridge/types"

	"github.com/mark3labs/mcp-go/server"
)

// NewMCPLSPBridge constructs a bridge from a loaded configuration and the
// directories tool arguments may resolve files under.
func NewMCPLSPBridge(config types.LSPServerConfigProvider, allowedDirectories []string) *MCPLSPBridge {
	global := config.GetGlobalConfig()

	var healthOpts lsp.HealthMonitorOptions
	if global.MaxRestartAttempts > 0 {
		healthOpts.MaxRestartAttempts = global.MaxRestartAttempts
	}
	if global.RestartDelayMs > 0 {
		healthOpts.InitialBackoff = time.Duration(global.RestartDelayMs) * time.Millisecond
	}

	lsPath := ""
	if entry, err := config.FindServerConfig(types.LanguageAda); err == nil {
		lsPath = entry.GetCommand()
	}

	return &MCPLSPBridge{
		pool:               lsp.NewPool(0, 0, healthOpts, lsPath),
		config:             config,
		allowedDirectories: allowedDirectories,
	}
}

// SetServer stores the MCP server instance the bridge is mounted on, so
// tool handlers reached through the bridge can, if needed, reach back into
// the server (e.g. to send progress notifications).
func (b *MCPLSPBridge) SetServer(s *server.MCPServer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.server = s
}

// Server returns the MCP server instance, or nil before SetServer runs.
func (b *MCPLSPBridge) Server() *server.MCPServer {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.server
}

// Pool exposes the underlying instance pool for tool translators.
func (b *MCPLSPBridge) Pool() *lsp.Pool { return b.pool }

// AllowedDirectories returns the directories tool file arguments must
// resolve within.
func (b *MCPLSPBridge) AllowedDirectories() []string { return b.allowedDirectories }

// ResolvePath validates a tool-supplied file path against the allowed
// directories, returning its resolved absolute form.
func (b *MCPLSPBridge) ResolvePath(path string) (string, error) {
	return security.ValidateConfigPath(path, b.allowedDirectories)
}

// SyncAutoConnect bootstraps a language server instance for the current
// project synchronously, so the first tool call never pays cold-start
// latency. A failure here is non-fatal: the pool will bootstrap lazily on
// the first Get call instead.
func (b *MCPLSPBridge) SyncAutoConnect() error {
	root := lsp.ResolveProjectRoot("")
	ctx, cancel := context.WithTimeout(context.Background(), lsp.LongRequestTimeout)
	defer cancel()
	if _, err := b.pool.Get(ctx, root); err != nil {
		return fmt.Errorf("auto-connect for %s: %w", root, err)
	}
	return nil
}

// Shutdown stops the config watcher (if started) and every pooled
// instance. Safe to call even if StartWatcher was never called.
func (b *MCPLSPBridge) Shutdown(ctx context.Context) {
	if b.watcher != nil {
		b.watcher.Stop()
	}
	b.pool.ShutdownAll(ctx)
}

// StartWatcher begins watching the resolved config file and project file
// for changes, logging a notice when either changes. See ConfigWatcher for
// why this never invalidates the pool automatically.
func (b *MCPLSPBridge) StartWatcher(paths ...string) {
	w, err := NewConfigWatcher(paths)
	if err != nil {
		logger.Warn("config watcher unavailable, falling back to polling: {Error}", err.Error())
	}
	b.watcher = w
	b.watcher.Start()
}
