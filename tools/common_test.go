package tools

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/MDBrothers/ada-mcp-bridge/lsp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgString(t *testing.T) {
	args := map[string]any{"file": "pkg.adb", "other": 5}
	assert.Equal(t, "pkg.adb", argString(args, "file"))
	assert.Equal(t, "", argString(args, "other"))
	assert.Equal(t, "", argString(args, "missing"))
}

func TestArgInt(t *testing.T) {
	args := map[string]any{"line": float64(42), "literal": 7, "bad": "nope"}
	assert.Equal(t, 42, argInt(args, "line", -1))
	assert.Equal(t, 7, argInt(args, "literal", -1))
	assert.Equal(t, -1, argInt(args, "bad", -1))
	assert.Equal(t, 99, argInt(args, "missing", 99))
}

func TestArgBool(t *testing.T) {
	args := map[string]any{"flag": true, "off": false}
	assert.True(t, argBool(args, "flag", false))
	assert.False(t, argBool(args, "off", true))
	assert.True(t, argBool(args, "missing", true))
}

func TestPreviewReadsOneBasedLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pkg.adb")
	require.NoError(t, os.WriteFile(path, []byte("line one\nline two  \nline three\n"), 0644))

	assert.Equal(t, "line one", preview(path, 1))
	assert.Equal(t, "line two", preview(path, 2))
	assert.Equal(t, "", preview(path, 99))
	assert.Equal(t, "", preview(filepath.Join(dir, "missing.adb"), 1))
}

func TestNotFound(t *testing.T) {
	result := notFound("symbol not found")
	assert.Equal(t, map[string]any{"found": false, "error": "symbol not found"}, result)
}

func TestTranslateErrMapsTimeout(t *testing.T) {
	assert.Equal(t, "request timed out", translateErr(&lsp.TimeoutError{Method: "textDocument/hover"}))
}

func TestTranslateErrPassesThroughOtherErrors(t *testing.T) {
	err := errors.New("boom")
	assert.Equal(t, "boom", translateErr(err))
}

func TestPositionParamsConvertsToWireCoordinates(t *testing.T) {
	params := positionParams("file:///pkg.adb", 1, 1)
	assert.Equal(t,
		map[string]any{"textDocument": map[string]any{"uri": "file:///pkg.adb"}},
		params["textDocument"])
	assert.Equal(t,
		map[string]any{"line": uint32(0), "character": uint32(0)},
		params["position"])
}
