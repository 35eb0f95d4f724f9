package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateConfigPathAcceptsContainedPath(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "lsp_config.json")
	require.NoError(t, os.WriteFile(file, []byte("{}"), 0644))

	resolved, err := ValidateConfigPath(file, []string{dir})
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean(file), filepath.Clean(resolved))
}

func TestValidateConfigPathRejectsPathOutsideAllowed(t *testing.T) {
	dir := t.TempDir()
	other := t.TempDir()
	file := filepath.Join(other, "secret.json")
	require.NoError(t, os.WriteFile(file, []byte("{}"), 0644))

	_, err := ValidateConfigPath(file, []string{dir})
	assert.Error(t, err)
}

func TestValidateConfigPathRejectsEmptyPath(t *testing.T) {
	_, err := ValidateConfigPath("", []string{"/tmp"})
	assert.Error(t, err)
}

func TestValidateConfigPathAcceptsExactRoot(t *testing.T) {
	dir := t.TempDir()
	resolved, err := ValidateConfigPath(dir, []string{dir})
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean(dir), filepath.Clean(resolved))
}

func TestGetConfigAllowedDirectoriesDedupes(t *testing.T) {
	dirs := GetConfigAllowedDirectories("/etc/ada-mcp-bridge", "/etc/ada-mcp-bridge")
	assert.Len(t, dirs, 2) // configDir == cwd collapses, parent of cwd still added
	assert.Contains(t, dirs, "/etc/ada-mcp-bridge")
	assert.Contains(t, dirs, "/etc")
}

func TestWithinDirRejectsSiblingWithSharedPrefix(t *testing.T) {
	_, err := ValidateConfigPath("/home/user/projectile/secret.json", []string{"/home/user/project"})
	assert.Error(t, err)
}
