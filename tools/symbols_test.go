package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSymbolKindName(t *testing.T) {
	assert.Equal(t, "package", symbolKindName(symbolKindPackage))
	assert.Equal(t, "function", symbolKindName(symbolKindFunction))
	assert.Equal(t, "unknown", symbolKindName(9999))
}

func TestContainsInt(t *testing.T) {
	xs := []int{symbolKindFunction, symbolKindMethod}
	assert.True(t, containsInt(xs, symbolKindMethod))
	assert.False(t, containsInt(xs, symbolKindClass))
	assert.False(t, containsInt(nil, symbolKindClass))
}

func TestFlattenSymbolPrefersRangeOverLocation(t *testing.T) {
	sym := documentSymbol{
		Name: "Foo",
		Kind: symbolKindFunction,
		Range: &wireRange{
			Start: wirePosition{Line: 4, Character: 2},
			End:   wirePosition{Line: 4, Character: 10},
		},
	}
	flat := flattenSymbol(sym)
	assert.Equal(t, "Foo", flat["name"])
	assert.Equal(t, 5, flat["line"])
	assert.Equal(t, 3, flat["column"])
}

func TestFlattenSymbolFallsBackToLocation(t *testing.T) {
	sym := documentSymbol{
		Name: "Bar",
		Kind: symbolKindVariable,
		Location: &wireLocation{
			URI: "file:///pkg.adb",
			Range: wireRange{
				Start: wirePosition{Line: 0, Character: 0},
				End:   wirePosition{Line: 0, Character: 3},
			},
		},
	}
	flat := flattenSymbol(sym)
	assert.Equal(t, 1, flat["line"])
	assert.Equal(t, 1, flat["column"])
}

func TestFlattenSymbolIncludesChildren(t *testing.T) {
	sym := documentSymbol{
		Name: "Parent",
		Kind: symbolKindPackage,
		Range: &wireRange{},
		Children: []documentSymbol{
			{Name: "Child", Kind: symbolKindFunction, Range: &wireRange{}},
		},
	}
	flat := flattenSymbol(sym)
	children, ok := flat["children"].([]map[string]any)
	assert.True(t, ok)
	assert.Len(t, children, 1)
	assert.Equal(t, "Child", children[0]["name"])
}
