package lsp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/MDBrothers/ada-mcp-bridge/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLSPConfigRejectsPathOutsideAllowed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lsp_config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"language_servers":{}}`), 0644))

	other := t.TempDir()
	_, err := LoadLSPConfig(path, []string{other})
	assert.Error(t, err)
}

func TestLoadLSPConfigParsesAdaEntry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lsp_config.json")
	contents := `{
		"language_servers": {"ada": {"command": "ada_language_server", "args": ["--stdio"]}},
		"global": {"log_level": "debug", "max_log_files": 5}
	}`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))

	cfg, err := LoadLSPConfig(path, []string{dir})
	require.NoError(t, err)

	entry, err := cfg.FindServerConfig(types.LanguageAda)
	require.NoError(t, err)
	assert.Equal(t, "ada_language_server", entry.GetCommand())
	assert.Equal(t, []string{"--stdio"}, entry.GetArgs())
	assert.Equal(t, "debug", cfg.GetGlobalConfig().LogLevel)
}

func TestFindServerConfigMissingEntry(t *testing.T) {
	cfg := &LSPServerConfig{LanguageServers: map[types.LanguageServer]LanguageServerConfig{}}
	_, err := cfg.FindServerConfig(types.LanguageAda)
	assert.Error(t, err)
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := DefaultConfig("/tmp/out.log")

	t.Setenv("LS_PATH", "/opt/ada_ls")
	t.Setenv("ADA_MCP_LOG_LEVEL", "warn")

	ApplyEnvOverrides(cfg)

	entry, err := cfg.FindServerConfig(types.LanguageAda)
	require.NoError(t, err)
	assert.Equal(t, "/opt/ada_ls", entry.GetCommand())
	assert.Equal(t, "warn", cfg.GetGlobalConfig().LogLevel)
}

func TestApplyEnvOverridesFallsBackToMCPLogLevel(t *testing.T) {
	cfg := DefaultConfig("/tmp/out.log")

	t.Setenv("MCP_LOG_LEVEL", "error")

	ApplyEnvOverrides(cfg)
	assert.Equal(t, "error", cfg.GetGlobalConfig().LogLevel)
}
