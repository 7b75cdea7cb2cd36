package prompts

import (
	"strings"
	"testing"
)

func TestTeachingDesignEmbedsInputs(t *testing.T) {
	p := TeachingDesign("  春天来了  ", "模板正文")
	if !strings.Contains(p, "春天来了") || !strings.Contains(p, "模板正文") {
		t.Fatalf("prompt missing inputs: %q", p)
	}
	if !strings.Contains(p, `"learning_activities"`) {
		t.Fatalf("prompt missing record shape")
	}
}

func TestTeachingDesignEmptyTemplate(t *testing.T) {
	if p := TeachingDesign("材料", ""); !strings.Contains(p, "（无）") {
		t.Fatalf("expected placeholder for empty template")
	}
}

func TestChat(t *testing.T) {
	if got := Chat(" 你好 ", ""); got != "你好" {
		t.Fatalf("got %q", got)
	}
	if got := Chat("问题", "材料"); !strings.Contains(got, "材料") || !strings.Contains(got, "问题") {
		t.Fatalf("got %q", got)
	}
}
