package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateOutputFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"table", false},
		{"json", false},
		{"yaml", false},
		{"wide", true},
		{"xml", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run("format_"+tt.format, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "unsupported output format")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPrintValueJSON(t *testing.T) {
	var buf bytes.Buffer
	err := PrintValue(&buf, map[string]any{"port": 8080}, OutputFormatJSON)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), `"port": 8080`)
	assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("\n")))
}

func TestPrintValueYAML(t *testing.T) {
	var buf bytes.Buffer
	err := PrintValue(&buf, map[string]any{"service": map[string]any{"port": 8080}}, OutputFormatYAML)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "service:")
	assert.Contains(t, buf.String(), "port: 8080")
}

func TestPrintValueTableScalars(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"int", 42, "42\n"},
		{"string", "opus", "opus\n"},
		{"bool", true, "true\n"},
		{"nil", nil, "null\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, PrintValue(&buf, tt.value, OutputFormatTable))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestPrintValueTableSubtreeUsesYAML(t *testing.T) {
	var buf bytes.Buffer
	err := PrintValue(&buf, map[string]any{"theme": "dark"}, OutputFormatTable)
	require.NoError(t, err)

	assert.Equal(t, "theme: dark\n", buf.String())
}

func TestFormatMessages(t *testing.T) {
	assert.Equal(t, "✓ saved", FormatSuccess("saved"))
	assert.Equal(t, "⚠ careful", FormatWarning("careful"))
	assert.Equal(t, "Error: boom", FormatError(errors.New("boom")))
}
