package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestItemSummary(t *testing.T) {
	item := callHierarchyItem{
		Name: "Do_Thing",
		Kind: symbolKindFunction,
		URI:  "file:///pkg.adb",
		SelectionRange: wireRange{
			Start: wirePosition{Line: 9, Character: 3},
			End:   wirePosition{Line: 9, Character: 11},
		},
	}
	summary := itemSummary(item)
	assert.Equal(t, "Do_Thing", summary["name"])
	assert.Equal(t, "function", summary["kind"])
	assert.Equal(t, "/pkg.adb", summary["file"])
	assert.Equal(t, 10, summary["line"])
	assert.Equal(t, 4, summary["column"])
}

func TestFlattenIncomingAndOutgoing(t *testing.T) {
	item := callHierarchyItem{Name: "Caller", Kind: symbolKindFunction, URI: "file:///a.adb"}
	incoming := []callHierarchyIncomingCall{{From: item}}
	outgoing := []callHierarchyOutgoingCall{{To: item}}

	in := flattenIncoming(incoming)
	out := flattenOutgoing(outgoing)
	assert.Len(t, in, 1)
	assert.Len(t, out, 1)
	assert.Equal(t, "Caller", in[0]["name"])
	assert.Equal(t, "Caller", out[0]["name"])
}
