package design

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCandidate(t *testing.T) {
	cases := map[string]string{
		"plain":  `{"lesson_name":"春"}`,
		"fenced": "```json\n{\"lesson_name\":\"春\"}\n```",
		"prose":  "好的，以下是教学设计：\n{\"lesson_name\":\"春\"}\n希望对您有帮助。",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			m, err := ParseCandidate(raw)
			require.NoError(t, err)
			assert.Equal(t, "春", m["lesson_name"])
		})
	}
}

func TestParseCandidateErrors(t *testing.T) {
	_, err := ParseCandidate("抱歉，我无法完成")
	assert.True(t, errors.Is(err, ErrNoJSONObject))

	_, err = ParseCandidate(`{"lesson_name": }`)
	assert.Error(t, err)
}
