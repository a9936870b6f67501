package dto

import (
	"testing"

	json "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineNumber_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want LineNumber
	}{
		{"string", `{"number":"42"}`, "42"},
		{"number", `{"number":42}`, "42"},
		{"null", `{"number":null}`, ""},
		{"absent", `{}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var line BacktraceLine
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &line))
			assert.Equal(t, tt.want, line.Number)
		})
	}
}

func TestLineNumber_RejectsObjects(t *testing.T) {
	var line BacktraceLine
	assert.Error(t, json.Unmarshal([]byte(`{"number":{"line":1}}`), &line))
}
