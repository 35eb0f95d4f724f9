package lsp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindProjectRootFindsGprFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "hello.gpr"), []byte(""), 0644))

	sub := filepath.Join(root, "src")
	require.NoError(t, os.MkdirAll(sub, 0755))
	file := filepath.Join(sub, "hello.adb")
	require.NoError(t, os.WriteFile(file, []byte(""), 0644))

	got := FindProjectRoot(file)
	expected, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	gotResolved, err := filepath.EvalSymlinks(got)
	require.NoError(t, err)
	require.Equal(t, expected, gotResolved)
}

func TestFindProjectRootFindsAlireManifest(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "alire.toml"), []byte(""), 0644))

	got := FindProjectRoot(root)
	expected, _ := filepath.EvalSymlinks(root)
	gotResolved, _ := filepath.EvalSymlinks(got)
	require.Equal(t, expected, gotResolved)
}

func TestFindProjectRootFallsBackToNearestDir(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "deeply", "nested", "dir")
	require.NoError(t, os.MkdirAll(sub, 0755))

	// No project markers anywhere up the chain within the temp dir;
	// the walk will climb to the real filesystem root and find none,
	// so it must fall back to the starting directory rather than
	// looping forever or panicking.
	got := FindProjectRoot(sub)
	require.NotEmpty(t, got)
}
