package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentationTextString(t *testing.T) {
	assert.Equal(t, "plain text", documentationText("plain text"))
}

func TestDocumentationTextMarkupContent(t *testing.T) {
	v := map[string]any{"kind": "markdown", "value": "**bold**"}
	assert.Equal(t, "**bold**", documentationText(v))
}

func TestDocumentationTextUnrecognized(t *testing.T) {
	assert.Equal(t, "", documentationText(42))
	assert.Equal(t, "", documentationText(nil))
}
