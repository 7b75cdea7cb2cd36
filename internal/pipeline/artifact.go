package pipeline

import (
	"time"

	"github.com/meannnn/MindM/internal/platform/llm"
)

// Artifact is one uploaded document together with the task generated from it.
// Values handed out by the registry are copies.
type Artifact struct {
	FileID     string    `json:"file_id"`
	TaskID     string    `json:"task_id"`
	Filename   string    `json:"filename"`
	Path       string    `json:"-"`
	Size       int64     `json:"file_size"`
	TemplateID string    `json:"template_id"`
	AIModel    string    `json:"ai_model,omitempty"`
	Stage      Stage     `json:"stage"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Text string `json:"-"`

	Result             string         `json:"-"`
	Record             map[string]any `json:"-"`
	RequestID          string         `json:"request_id,omitempty"`
	Usage              *llm.Usage     `json:"usage,omitempty"`
	Attempts           int            `json:"attempts,omitempty"`
	ValidationErrors   []string       `json:"validation_errors,omitempty"`
	ValidationWarnings []string       `json:"validation_warnings,omitempty"`

	OutputPath  string    `json:"-"`
	OutputSize  int64     `json:"output_size,omitempty"`
	GeneratedAt time.Time `json:"generated_at,omitempty"`
}

func (a Artifact) Status() Status { return a.Stage.Status() }

func (a Artifact) Progress() int { return a.Stage.Progress() }

// Rendered reports whether a downloadable document exists.
func (a Artifact) Rendered() bool { return a.Stage == StageCompleted && a.OutputPath != "" }

func (a Artifact) clone() Artifact {
	out := a
	out.ValidationErrors = append([]string(nil), a.ValidationErrors...)
	out.ValidationWarnings = append([]string(nil), a.ValidationWarnings...)
	if a.Usage != nil {
		u := *a.Usage
		out.Usage = &u
	}
	if a.Record != nil {
		rec := make(map[string]any, len(a.Record))
		for k, v := range a.Record {
			rec[k] = v
		}
		out.Record = rec
	}
	return out
}
