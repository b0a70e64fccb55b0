package service

import (
	"encoding/json"
	"testing"

	"learnsphere_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepairJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{
			name: "clean object untouched",
			raw:  `{"title":"Go"}`,
			want: `{"title":"Go"}`,
		},
		{
			name: "markdown fence stripped",
			raw:  "```json\n{\"title\":\"Go\"}\n```",
			want: `{"title":"Go"}`,
		},
		{
			name: "plain fence stripped",
			raw:  "```\n[1,2,3]\n```",
			want: `[1,2,3]`,
		},
		{
			name: "prose around document cut away",
			raw:  `Here is your course: {"title":"Go"} hope it helps!`,
			want: `{"title":"Go"}`,
		},
		{
			name: "trailing comma removed",
			raw:  `{"items":[1,2,],}`,
			want: `{"items":[1,2]}`,
		},
		{
			name:    "no JSON at all",
			raw:     "Sorry, I cannot do that.",
			wantErr: true,
		},
		{
			name:    "hopelessly broken",
			raw:     `{"title": "Go`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RepairJSON(tt.raw)
			if tt.wantErr {
				require.ErrorIs(t, err, util.ErrAIMalformedOutput)
				return
			}
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
			assert.True(t, json.Valid(got))
		})
	}
}

func TestBuildGeminiSchema(t *testing.T) {
	schema := buildGeminiSchema(map[string]any{
		"type":     "object",
		"required": []any{"title"},
		"properties": map[string]any{
			"title": map[string]any{"type": "string"},
			"chapters": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "object"},
			},
			"level": map[string]any{
				"type": "string",
				"enum": []any{"Beginner", "Intermediate", "Advanced"},
			},
		},
	})

	require.NotNil(t, schema)
	assert.Equal(t, []string{"title"}, schema.Required)
	require.Contains(t, schema.Properties, "chapters")
	require.NotNil(t, schema.Properties["chapters"].Items)
	assert.Equal(t, []string{"Beginner", "Intermediate", "Advanced"}, schema.Properties["level"].Enum)
}
