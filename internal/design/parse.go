package design

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrNoJSONObject = errors.New("no JSON object in generated text")

// ParseCandidate pulls the JSON object out of raw provider text and decodes it
// without applying any shape. Code fences and surrounding prose are tolerated.
func ParseCandidate(raw string) (map[string]any, error) {
	body := stripFences(strings.TrimSpace(raw))
	var out map[string]any
	if err := json.Unmarshal([]byte(body), &out); err == nil && out != nil {
		return out, nil
	}

	start := strings.Index(body, "{")
	end := strings.LastIndex(body, "}")
	if start < 0 || end <= start {
		return nil, ErrNoJSONObject
	}
	if err := json.Unmarshal([]byte(body[start:end+1]), &out); err != nil {
		return nil, fmt.Errorf("decode generated JSON: %w", err)
	}
	if out == nil {
		return nil, ErrNoJSONObject
	}
	return out, nil
}

func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}
