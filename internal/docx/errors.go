package docx

import "fmt"

// ExtractionError means the package could not be read as a Word document.
type ExtractionError struct {
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("docx extract: %s: %v", e.Reason, e.Err)
	}
	return "docx extract: " + e.Reason
}

func (e *ExtractionError) Unwrap() error { return e.Err }

type RenderStage string

const (
	StageLoad    RenderStage = "load"
	StageExecute RenderStage = "execute"
	StageWrite   RenderStage = "write"
)

// RenderError reports which step of template rendering failed.
type RenderError struct {
	Stage RenderStage
	Path  string
	Err   error
}

func (e *RenderError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("docx render %s %s: %v", e.Stage, e.Path, e.Err)
	}
	return fmt.Sprintf("docx render %s: %v", e.Stage, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
