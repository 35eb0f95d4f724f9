package lsp

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/MDBrothers/ada-mcp-bridge/security"
	"github.com/MDBrothers/ada-mcp-bridge/types"
)

// LanguageServerConfig is the per-server entry of a loaded config file.
type LanguageServerConfig struct {
	Command               string         `json:"command"`
	Args                  []string       `json:"args"`
	InitializationOptions map[string]any `json:"initialization_options,omitempty"`
}

func (c LanguageServerConfig) GetCommand() string                    { return c.Command }
func (c LanguageServerConfig) GetArgs() []string                     { return c.Args }
func (c LanguageServerConfig) GetInitializationOptions() map[string]any { return c.InitializationOptions }

// LSPServerConfig is the on-disk configuration document: the Ada server
// entry plus the shared Global logging/restart block.
type LSPServerConfig struct {
	LanguageServers map[types.LanguageServer]LanguageServerConfig `json:"language_servers"`
	Global          types.GlobalConfig                            `json:"global"`
}

// GetGlobalConfig implements types.LSPServerConfigProvider.
func (c *LSPServerConfig) GetGlobalConfig() types.GlobalConfig { return c.Global }

// FindServerConfig implements types.LSPServerConfigProvider. This bridge
// only ever serves one language, so any recognized key resolves to the
// single configured entry (or an error if none was configured).
func (c *LSPServerConfig) FindServerConfig(language types.Language) (types.LanguageServerConfigProvider, error) {
	entry, ok := c.LanguageServers[types.ServerAda]
	if !ok {
		return nil, fmt.Errorf("no language server configured for %q", language)
	}
	return entry, nil
}

// DefaultConfig is used when no config file can be loaded from any
// candidate location; the bridge must still be able to start.
func DefaultConfig(logPath string) *LSPServerConfig {
	return &LSPServerConfig{
		LanguageServers: map[types.LanguageServer]LanguageServerConfig{
			types.ServerAda: {Command: "ada_language_server"},
		},
		Global: types.GlobalConfig{
			LogPath:     logPath,
			LogLevel:    "debug",
			MaxLogFiles: 10,
		},
	}
}

// LoadLSPConfig reads and parses a config file, rejecting any path outside
// allowedDirectories.
func LoadLSPConfig(path string, allowedDirectories []string) (*LSPServerConfig, error) {
	resolved, err := security.ValidateConfigPath(path, allowedDirectories)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, err
	}
	var cfg LSPServerConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", resolved, err)
	}
	if cfg.LanguageServers == nil {
		cfg.LanguageServers = make(map[types.LanguageServer]LanguageServerConfig)
	}
	return &cfg, nil
}

// ApplyEnvOverrides lets an operator tune a loaded config without editing
// the file: LS_PATH overrides the Ada server's command, and
// ADA_MCP_LOG_LEVEL (falling back to MCP_LOG_LEVEL) overrides the log
// level.
func ApplyEnvOverrides(cfg *LSPServerConfig) {
	if v := os.Getenv("LS_PATH"); v != "" {
		entry := cfg.LanguageServers[types.ServerAda]
		entry.Command = v
		cfg.LanguageServers[types.ServerAda] = entry
	}
	if v := os.Getenv("ADA_MCP_LOG_LEVEL"); v != "" {
		cfg.Global.LogLevel = v
	} else if v := os.Getenv("MCP_LOG_LEVEL"); v != "" {
		cfg.Global.LogLevel = v
	}
}
