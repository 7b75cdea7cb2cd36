package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeKVsRedactsSecrets(t *testing.T) {
	out := sanitizeKVs([]interface{}{"api_key", "sk-123", "task_id", "t1", "prompt_tokens", 12, "dangling"})

	assert.Equal(t, []interface{}{"api_key", "[REDACTED]", "task_id", "t1", "prompt_tokens", 12, "dangling"}, out)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "info", parseLevel("INFO").String())
	assert.Equal(t, "warn", parseLevel("warning").String())
	assert.Equal(t, "debug", parseLevel("").String())
}
