package design

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePhases(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"导入→新知探究→巩固练习→总结", []string{"导入", "新知探究", "巩固练习", "总结"}},
		{"导入 -> 探究 -> 总结", []string{"导入", "探究", "总结"}},
		{"导入-整体感知-重点研读-拓展延伸-总结", []string{"导入", "整体感知", "重点研读", "拓展延伸", "总结"}},
		{"1.导入、2.新知探究、3.巩固练习、4.总结与拓展", []string{"导入", "新知探究", "巩固练习", "总结与拓展"}},
		{"先导入新课，再合作探究，最后课堂小结", []string{"导入新课，再", "合作探究，最后", "课堂小结"}},
		{"导入(3-5分钟)；新知探究；巩固练习；总结", []string{"导入(3-5分钟", "新知探究", "巩固练习", "总结"}},
		{"导入(5分钟)-探究(10-15分钟)-总结", []string{"导入(5分钟", "探究(10-15分钟", "总结"}},
		{"", nil},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, ParsePhases(tc.in))
		})
	}
}

func TestParsePhasesUnrecognised(t *testing.T) {
	assert.Empty(t, ParsePhases("自由活动"))
}
