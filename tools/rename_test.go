package tools

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateNewName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple identifier", "New_Name", false},
		{"leading digit", "1Name", true},
		{"leading underscore", "_Name", true},
		{"consecutive underscores", "New__Name", true},
		{"trailing underscore", "New_Name_", true},
		{"single letter", "X", false},
		{"empty string", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateNewName(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateNewNameMessage(t *testing.T) {
	err := validateNewName("123X")
	require.Error(t, err)
	assert.Equal(t, "Invalid Ada identifier: '123X'", err.Error())
}

func TestFlattenWorkspaceEditMergesBothShapes(t *testing.T) {
	edit := workspaceEditResult{
		Changes: map[string][]textEdit{
			"file:///a.adb": {{Range: wireRange{}, NewText: "Foo"}},
		},
		DocumentChanges: []documentChangeEdit{
			{
				TextDocument: struct {
					URI string `json:"uri"`
				}{URI: "file:///b.adb"},
				Edits: []textEdit{{Range: wireRange{}, NewText: "Bar"}},
			},
		},
	}

	changes, filesAffected := flattenWorkspaceEdit(edit, "Old", "New")
	assert.Equal(t, 2, filesAffected)
	assert.Len(t, changes, 2)
}

func TestIdentifierAtReadsWordAtLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pkg.adb")
	require.NoError(t, os.WriteFile(path, []byte("   Foo_Bar := 1;\n"), 0644))

	assert.Equal(t, "Foo_Bar", identifierAt(path, 1))
	assert.Equal(t, "", identifierAt(path, 99))
}
