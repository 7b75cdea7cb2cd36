package design

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var numberedLineRe = regexp.MustCompile(`^\s*(\d+)\s*[\.、．)）]\s*`)

// FormatObjectives turns a JSON list of objectives into a numbered list. A
// newline list keeps existing numbers and numbers the remaining lines in
// sequence. Anything else is returned unchanged.
func FormatObjectives(s string) string {
	trimmed := strings.TrimSpace(s)
	if strings.HasPrefix(trimmed, "[") {
		var items []any
		if err := json.Unmarshal([]byte(trimmed), &items); err == nil {
			lines := make([]string, 0, len(items))
			for i, it := range items {
				lines = append(lines, fmt.Sprintf("%d. %s", i+1, objectiveText(it)))
			}
			return strings.Join(lines, "\n")
		}
	}
	if !strings.Contains(trimmed, "\n") {
		return s
	}

	var out []string
	last := 0
	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if m := numberedLineRe.FindStringSubmatch(line); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				last = n
			}
			out = append(out, line)
			continue
		}
		last++
		out = append(out, fmt.Sprintf("%d. %s", last, line))
	}
	return strings.Join(out, "\n")
}

func objectiveText(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case map[string]any:
		for _, k := range []string{"objective", "content", "text"} {
			if s, ok := x[k].(string); ok {
				return strings.TrimSpace(s)
			}
		}
		b, _ := json.Marshal(x)
		return string(b)
	default:
		return fmt.Sprint(x)
	}
}
