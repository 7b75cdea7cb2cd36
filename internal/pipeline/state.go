// Package pipeline runs the upload → extract → generate → validate → render
// sequence for each uploaded document and tracks where every task stands.
package pipeline

// Stage is the fine-grained pipeline state of a task.
type Stage string

const (
	StageReceived         Stage = "received"
	StageExtracting       Stage = "extracting"
	StageExtracted        Stage = "extracted"
	StageExtractionFailed Stage = "extraction_failed"
	StageGenerating       Stage = "generating"
	StageGenerated        Stage = "generated"
	StageGenerationFailed Stage = "generation_failed"
	StageValidating       Stage = "validating"
	StageValidated        Stage = "validated"
	StageValidationFailed Stage = "validation_failed"
	StageRendering        Stage = "rendering"
	StageRenderFailed     Stage = "render_failed"
	StageCompleted        Stage = "completed"
)

// Status is the coarse state reported to clients.
type Status string

const (
	StatusReceived   Status = "received"
	StatusExtracting Status = "extracting"
	StatusGenerating Status = "generating"
	StatusValidating Status = "validating"
	StatusRendering  Status = "rendering"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

type stageInfo struct {
	rank     int
	status   Status
	progress int
	failed   bool
}

var stages = map[Stage]stageInfo{
	StageReceived:         {rank: 0, status: StatusReceived, progress: 0},
	StageExtracting:       {rank: 1, status: StatusExtracting, progress: 10},
	StageExtracted:        {rank: 2, status: StatusExtracting, progress: 25},
	StageExtractionFailed: {rank: 2, status: StatusFailed, progress: 10, failed: true},
	StageGenerating:       {rank: 3, status: StatusGenerating, progress: 40},
	StageGenerated:        {rank: 4, status: StatusGenerating, progress: 60},
	StageGenerationFailed: {rank: 4, status: StatusFailed, progress: 40, failed: true},
	StageValidating:       {rank: 5, status: StatusValidating, progress: 70},
	StageValidated:        {rank: 6, status: StatusValidating, progress: 80},
	StageValidationFailed: {rank: 6, status: StatusFailed, progress: 70, failed: true},
	StageRendering:        {rank: 7, status: StatusRendering, progress: 90},
	StageRenderFailed:     {rank: 8, status: StatusFailed, progress: 90, failed: true},
	StageCompleted:        {rank: 8, status: StatusCompleted, progress: 100},
}

func (s Stage) Status() Status { return stages[s].status }

func (s Stage) Progress() int { return stages[s].progress }

func (s Stage) Failed() bool { return stages[s].failed }

// Terminal reports whether no further transition is possible.
func (s Stage) Terminal() bool { return s == StageCompleted || s.Failed() }

// canAdvance allows only forward moves out of a non-terminal stage.
func canAdvance(from, to Stage) bool {
	fi, ok := stages[from]
	if !ok {
		return false
	}
	ti, ok := stages[to]
	if !ok {
		return false
	}
	if from.Terminal() {
		return false
	}
	return ti.rank == fi.rank+1
}
