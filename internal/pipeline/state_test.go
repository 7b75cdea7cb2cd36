package pipeline

import (
	"errors"
	"testing"
)

func TestCanAdvance(t *testing.T) {
	cases := []struct {
		from, to Stage
		want     bool
	}{
		{StageReceived, StageExtracting, true},
		{StageExtracting, StageExtracted, true},
		{StageExtracting, StageExtractionFailed, true},
		{StageExtracted, StageGenerating, true},
		{StageGenerating, StageGenerationFailed, true},
		{StageValidating, StageValidationFailed, true},
		{StageRendering, StageCompleted, true},
		{StageRendering, StageRenderFailed, true},

		{StageReceived, StageGenerating, false},
		{StageGenerated, StageGenerating, false},
		{StageExtractionFailed, StageGenerating, false},
		{StageValidationFailed, StageRendering, false},
		{StageCompleted, StageRendering, false},
		{StageCompleted, StageCompleted, false},
		{Stage("bogus"), StageExtracting, false},
	}
	for _, tc := range cases {
		if got := canAdvance(tc.from, tc.to); got != tc.want {
			t.Errorf("canAdvance(%s, %s)=%v want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestStageStatusAndProgress(t *testing.T) {
	if StageExtracted.Status() != StatusExtracting || StageExtracted.Progress() != 25 {
		t.Fatalf("extracted: %s %d", StageExtracted.Status(), StageExtracted.Progress())
	}
	for _, s := range []Stage{StageExtractionFailed, StageGenerationFailed, StageValidationFailed, StageRenderFailed} {
		if s.Status() != StatusFailed || !s.Terminal() {
			t.Fatalf("%s should be a terminal failure", s)
		}
	}
	if StageCompleted.Progress() != 100 || !StageCompleted.Terminal() || StageCompleted.Failed() {
		t.Fatalf("completed")
	}
}

func TestRegistryIndexesAndCopies(t *testing.T) {
	r := NewRegistry()
	r.add(Artifact{FileID: "f1", TaskID: "t1", ValidationErrors: []string{"x"}})

	a, err := r.Task("t1")
	if err != nil {
		t.Fatalf("Task: %v", err)
	}
	if a.FileID != "f1" || a.Stage != StageReceived {
		t.Fatalf("artifact=%+v", a)
	}
	a.ValidationErrors[0] = "mutated"
	b, _ := r.Artifact("f1")
	if b.ValidationErrors[0] != "x" {
		t.Fatalf("registry state leaked through snapshot")
	}

	if _, err := r.Task("nope"); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("err=%v", err)
	}
	if _, err := r.Artifact("nope"); !errors.Is(err, ErrArtifactNotFound) {
		t.Fatalf("err=%v", err)
	}
}

func TestRegistryRejectsBackwardTransition(t *testing.T) {
	r := NewRegistry()
	r.add(Artifact{FileID: "f1", TaskID: "t1"})
	if _, err := r.advance("f1", StageExtracting, nil); err != nil {
		t.Fatalf("advance: %v", err)
	}
	a, err := r.advance("f1", StageReceived, func(x *Artifact) { x.Error = "should not apply" })
	var te *TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("err=%v", err)
	}
	if a.Stage != StageExtracting || a.Error != "" {
		t.Fatalf("artifact changed: %+v", a)
	}
}
