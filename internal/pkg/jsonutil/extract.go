// Package jsonutil pulls JSON objects out of free-form model output.
package jsonutil

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dietcoach/backend/internal/domain"
)

// ExtractObject returns the first balanced {...} object found in s.
// Markdown fences and surrounding commentary are ignored. When no balanced object
// parses, the span from the first '{' to the last '}' is returned as a last resort.
func ExtractObject(s string) (string, error) {
	t := stripFences(strings.TrimSpace(s))

	start := strings.IndexByte(t, '{')
	if start < 0 {
		return "", domain.ErrNoJSONObject
	}

	for i := start; i >= 0 && i < len(t); {
		if end := balancedEnd(t, i); end > 0 {
			candidate := t[i : end+1]
			if json.Valid([]byte(candidate)) {
				return candidate, nil
			}
		}
		next := strings.IndexByte(t[i+1:], '{')
		if next < 0 {
			break
		}
		i += next + 1
	}

	end := strings.LastIndexByte(t, '}')
	if end <= start {
		return "", domain.ErrNoJSONObject
	}
	return t[start : end+1], nil
}

// Decode extracts the first object from s and unmarshals it into v
func Decode(s string, v interface{}) error {
	raw, err := ExtractObject(s)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("failed to decode extracted object: %w", err)
	}
	return nil
}

func stripFences(t string) string {
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```")
	t = strings.TrimPrefix(t, "json")
	t = strings.TrimSpace(t)
	t = strings.TrimSuffix(t, "```")
	return strings.TrimSpace(t)
}

// balancedEnd returns the index of the brace closing the one at start, skipping braces inside strings.
func balancedEnd(t string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(t); i++ {
		c := t[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
