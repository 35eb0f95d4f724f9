package tools

import (
	"testing"

	"github.com/MDBrothers/ada-mcp-bridge/types"

	"github.com/stretchr/testify/assert"
)

func TestOverlappingDiagnosticsFiltersByLineRange(t *testing.T) {
	diags := []types.Diagnostic{
		{Message: "inside", Range: types.Range{Start: types.Position{Line: 5}, End: types.Position{Line: 5}}},
		{Message: "before", Range: types.Range{Start: types.Position{Line: 1}, End: types.Position{Line: 1}}},
		{Message: "after", Range: types.Range{Start: types.Position{Line: 50}, End: types.Position{Line: 50}}},
	}

	out := overlappingDiagnostics(diags, 4, 6)
	assert.Len(t, out, 1)
	assert.Equal(t, "inside", out[0]["message"])
}

func TestAffectedFilesFromWorkspaceEdit(t *testing.T) {
	edit := map[string]any{
		"changes": map[string]any{
			"file:///a.adb": []any{},
			"file:///b.adb": []any{},
		},
	}
	files := affectedFiles(edit)
	assert.ElementsMatch(t, []string{"/a.adb", "/b.adb"}, files)
}

func TestAffectedFilesNilEdit(t *testing.T) {
	assert.Nil(t, affectedFiles(nil))
}

func TestAffectedFilesFromDocumentChanges(t *testing.T) {
	edit := map[string]any{
		"documentChanges": []any{
			map[string]any{
				"textDocument": map[string]any{"uri": "file:///a.adb"},
				"edits":        []any{},
			},
			map[string]any{"kind": "rename", "oldUri": "file:///old.adb", "newUri": "file:///new.adb"},
		},
	}
	files := affectedFiles(edit)
	assert.ElementsMatch(t, []string{"/a.adb", "/new.adb"}, files)
}

func TestAffectedFilesMergesChangesAndDocumentChanges(t *testing.T) {
	edit := map[string]any{
		"changes": map[string]any{
			"file:///a.adb": []any{},
		},
		"documentChanges": []any{
			map[string]any{"textDocument": map[string]any{"uri": "file:///b.adb"}},
		},
	}
	files := affectedFiles(edit)
	assert.ElementsMatch(t, []string{"/a.adb", "/b.adb"}, files)
}

func TestRangeParamsConvertsToWireCoordinates(t *testing.T) {
	params := rangeParams(1, 1, 2, 5)
	start := params["start"].(map[string]any)
	end := params["end"].(map[string]any)
	assert.Equal(t, uint32(0), start["line"])
	assert.Equal(t, uint32(0), start["character"])
	assert.Equal(t, uint32(1), end["line"])
	assert.Equal(t, uint32(4), end["character"])
}
