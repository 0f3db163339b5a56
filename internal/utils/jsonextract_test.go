package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONSpan(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"bare array", `[1,2]`, `[1,2]`},
		{"chatter around array", "Sure! Here you go:\n[{\"a\":1}]\nHope that helps.", `[{"a":1}]`},
		{"nested arrays keep outermost pair", `x [[1],[2]] y`, `[[1],[2]]`},
		{"no brackets returns whole text", `{"a":1}`, `{"a":1}`},
		{"close before open returns whole text", `] nothing [`, `] nothing [`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSONSpan(tt.text, '[', ']'))
		})
	}
}

func TestExtractJSONArray(t *testing.T) {
	got, err := ExtractJSONArray("```json\n[{\"name\":\"Ana\"},{\"name\":\"Bo\"}]\n```")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Ana", got[0]["name"])

	_, err = ExtractJSONArray("I cannot help with that.")
	require.Error(t, err)

	_, err = ExtractJSONArray(`[1, 2, 3]`)
	require.Error(t, err, "elements must be objects")

	_, err = ExtractJSONArray(`null`)
	require.Error(t, err)

	_, err = ExtractJSONArray(`[{"name":"Ana"}, null]`)
	require.Error(t, err)

	empty, err := ExtractJSONArray(`[]`)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestExtractJSONObject(t *testing.T) {
	got, err := ExtractJSONObject(`Analysis: {"purchase_intent": "60%", "concerns": ["price"]} done`)
	require.NoError(t, err)
	assert.Equal(t, "60%", got["purchase_intent"])

	_, err = ExtractJSONObject(`{"purchase_intent": "60%"`)
	require.Error(t, err)

	_, err = ExtractJSONObject(`null`)
	require.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "ab", Truncate("abc", 2))
	assert.Equal(t, "héll", Truncate("héllo", 4))
	assert.Equal(t, "", Truncate("abc", -1))
}
