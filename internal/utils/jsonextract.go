package utils

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSONSpan returns the substring running from the first open delimiter
// to the last close delimiter. When no such pair exists the whole text is
// returned so the caller can still attempt a direct parse.
func ExtractJSONSpan(text string, open, close byte) string {
	start := strings.IndexByte(text, open)
	end := strings.LastIndexByte(text, close)
	if start != -1 && end > start {
		return text[start : end+1]
	}
	return text
}

// ExtractJSONArray decodes the outermost [...] span of free-form model output
// into a slice of objects. A null array or any non-object element is an error.
func ExtractJSONArray(text string) ([]map[string]any, error) {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(ExtractJSONSpan(text, '[', ']')), &items); err != nil {
		return nil, fmt.Errorf("no JSON array found: %w", err)
	}
	if items == nil {
		return nil, fmt.Errorf("no JSON array found: got null")
	}

	out := make([]map[string]any, 0, len(items))
	for i, item := range items {
		var obj map[string]any
		if err := json.Unmarshal(item, &obj); err != nil {
			return nil, fmt.Errorf("element %d is not an object: %w", i, err)
		}
		if obj == nil {
			return nil, fmt.Errorf("element %d is not an object: got null", i)
		}
		out = append(out, obj)
	}
	return out, nil
}

// ExtractJSONObject decodes the outermost {...} span of free-form model output.
func ExtractJSONObject(text string) (map[string]any, error) {
	var out map[string]any
	if err := json.Unmarshal([]byte(ExtractJSONSpan(text, '{', '}')), &out); err != nil {
		return nil, fmt.Errorf("no JSON object found: %w", err)
	}
	if out == nil {
		return nil, fmt.Errorf("no JSON object found: got null")
	}
	return out, nil
}

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	if n < 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
