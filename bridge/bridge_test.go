package bridge

import (
	"path/filepath"
	"testing"

	"github.com/MDBrothers/ada-mcp-bridge/types"

	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeServerConfig struct {
	global  types.GlobalConfig
	command string
	findErr error
}

func (c fakeServerConfig) GetGlobalConfig() types.GlobalConfig { return c.global }

func (c fakeServerConfig) FindServerConfig(types.Language) (types.LanguageServerConfigProvider, error) {
	if c.findErr != nil {
		return nil, c.findErr
	}
	return fakeLanguageServerConfig{command: c.command}, nil
}

type fakeLanguageServerConfig struct{ command string }

func (c fakeLanguageServerConfig) GetCommand() string                  { return c.command }
func (c fakeLanguageServerConfig) GetArgs() []string                   { return nil }
func (c fakeLanguageServerConfig) GetInitializationOptions() map[string]any { return nil }

func TestNewMCPLSPBridgeUsesConfiguredCommand(t *testing.T) {
	cfg := fakeServerConfig{command: "ada_language_server", global: types.GlobalConfig{MaxRestartAttempts: 2}}
	b := NewMCPLSPBridge(cfg, []string{"/projects"})

	require.NotNil(t, b.Pool())
	assert.Equal(t, "ada_language_server", b.Pool().LSPath)
	assert.Equal(t, []string{"/projects"}, b.AllowedDirectories())
}

func TestNewMCPLSPBridgeToleratesMissingServerConfig(t *testing.T) {
	cfg := fakeServerConfig{findErr: assert.AnError}
	b := NewMCPLSPBridge(cfg, nil)

	require.NotNil(t, b.Pool())
	assert.Equal(t, "", b.Pool().LSPath)
}

func TestSetServerAndServer(t *testing.T) {
	b := NewMCPLSPBridge(fakeServerConfig{command: "ada_language_server"}, nil)
	assert.Nil(t, b.Server())

	s := server.NewMCPServer("ada-mcp-bridge", "0.1.0")
	b.SetServer(s)
	assert.Same(t, s, b.Server())
}

func TestResolvePathEnforcesAllowList(t *testing.T) {
	dir := t.TempDir()
	b := NewMCPLSPBridge(fakeServerConfig{command: "ada_language_server"}, []string{dir})

	resolved, err := b.ResolvePath(filepath.Join(dir, "pkg.adb"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean(filepath.Join(dir, "pkg.adb")), filepath.Clean(resolved))

	_, err = b.ResolvePath("/outside/pkg.adb")
	assert.Error(t, err)
}

func TestShutdownWithoutWatcherIsSafe(t *testing.T) {
	b := NewMCPLSPBridge(fakeServerConfig{command: "ada_language_server"}, nil)
	assert.NotPanics(t, func() { b.Shutdown(nil) })
}
