package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompletionKindName(t *testing.T) {
	assert.Equal(t, "function", completionKindName(3))
	assert.Equal(t, "keyword", completionKindName(14))
	assert.Equal(t, "unknown", completionKindName(-1))
}

func TestDecodeCompletionListFromArray(t *testing.T) {
	raw := []any{
		map[string]any{"label": "Put_Line", "kind": float64(3)},
	}
	items, incomplete := decodeCompletionList(raw)
	assert.False(t, incomplete)
	assert.Len(t, items, 1)
	assert.Equal(t, "Put_Line", items[0].Label)
	assert.Equal(t, 3, items[0].Kind)
}

func TestDecodeCompletionListFromObject(t *testing.T) {
	raw := map[string]any{
		"isIncomplete": true,
		"items": []any{
			map[string]any{"label": "Ada.Text_IO", "kind": float64(9)},
		},
	}
	items, incomplete := decodeCompletionList(raw)
	assert.True(t, incomplete)
	assert.Len(t, items, 1)
	assert.Equal(t, "Ada.Text_IO", items[0].Label)
}

func TestDecodeCompletionListNil(t *testing.T) {
	items, incomplete := decodeCompletionList(nil)
	assert.Nil(t, items)
	assert.False(t, incomplete)
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", firstNonEmpty("", "b", "c"))
	assert.Equal(t, "", firstNonEmpty("", ""))
}
