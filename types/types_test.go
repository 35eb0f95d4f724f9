package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiagnosticSeverityString(t *testing.T) {
	tests := []struct {
		severity DiagnosticSeverity
		expected string
	}{
		{SeverityError, "error"},
		{SeverityWarning, "warning"},
		{SeverityInformation, "information"},
		{SeverityHint, "hint"},
		{DiagnosticSeverity(99), "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.severity.String())
	}
}
