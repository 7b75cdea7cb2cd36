package design

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatObjectives(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"json objects", `[{"objective":"朗读课文"},{"objective":"分析修辞"}]`, "1. 朗读课文\n2. 分析修辞"},
		{"json strings", `["朗读课文","仿写片段"]`, "1. 朗读课文\n2. 仿写片段"},
		{"numbered kept", "1. 朗读\n2. 分析", "1. 朗读\n2. 分析"},
		{"gaps numbered", "1. 朗读\n分析修辞\n\n仿写", "1. 朗读\n2. 分析修辞\n3. 仿写"},
		{"continues after number", "3、朗读\n分析", "3、朗读\n4. 分析"},
		{"single line unchanged", "朗读课文", "朗读课文"},
		{"bad json unchanged", "[朗读", "[朗读"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatObjectives(tc.in))
		})
	}
}
