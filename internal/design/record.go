// Package design holds the teaching-design record produced by generation: parsing
// the raw provider text, validating it, and shaping it for template rendering.
package design

import (
	"encoding/json"
	"fmt"
)

type Activity struct {
	Name            string `json:"name"`
	TeacherActivity string `json:"teacher_activity"`
	StudentActivity string `json:"student_activity"`
	ActivityIntent  string `json:"activity_intent"`
}

type ThinkingPoint struct {
	PointType   string `json:"point_type"`
	Description string `json:"description"`
}

// TeachingDesign is the generated record. ActivityIntent is an optional overall
// note; each activity carries its own intent.
type TeachingDesign struct {
	LessonName         string          `json:"lesson_name"`
	GradeLevel         string          `json:"grade_level"`
	Subject            string          `json:"subject"`
	TextbookVersion    string          `json:"textbook_version"`
	LessonPeriod       string          `json:"lesson_period"`
	TeacherSchool      string          `json:"teacher_school"`
	TeacherName        string          `json:"teacher_name"`
	Summary            string          `json:"summary"`
	ContentAnalysis    string          `json:"content_analysis"`
	LearnerAnalysis    string          `json:"learner_analysis"`
	LearningObjectives string          `json:"learning_objectives"`
	LessonStructure    string          `json:"lesson_structure"`
	LearningActivities []Activity      `json:"learning_activities"`
	ActivityIntent     string          `json:"activity_intent,omitempty"`
	BlackboardDesign   string          `json:"blackboard_design"`
	HomeworkExtension  string          `json:"homework_extension"`
	MaterialsDesign    string          `json:"materials_design"`
	ThinkingPoints     []ThinkingPoint `json:"reflection_thinking_points"`
}

// Thinking-point categories.
const (
	PointCognitiveConflict = "认知冲突"
	PointThinkingDiagram   = "思维图示"
	PointVariantUse        = "变式运用"
)

var PointTypes = []string{PointCognitiveConflict, PointThinkingDiagram, PointVariantUse}

const (
	MaxActivities          = 8
	ActivityTolerance      = 2
	MaxPointDescriptionLen = 100
)

// RequiredFields lists the top-level fields every record must carry, in report order.
var RequiredFields = []string{
	"lesson_name", "grade_level", "subject", "textbook_version",
	"lesson_period", "teacher_school", "teacher_name", "summary",
	"content_analysis", "learner_analysis", "learning_objectives",
	"lesson_structure", "learning_activities",
	"blackboard_design", "homework_extension", "materials_design",
	"reflection_thinking_points",
}

var ActivityFields = []string{"name", "teacher_activity", "student_activity", "activity_intent"}

var PointFields = []string{"point_type", "description"}

// Decode converts a candidate that already passed Validate into the typed record.
func Decode(candidate map[string]any) (*TeachingDesign, error) {
	b, err := json.Marshal(candidate)
	if err != nil {
		return nil, fmt.Errorf("encode candidate: %w", err)
	}
	var rec TeachingDesign
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return &rec, nil
}

// TemplateData is the map bound to template placeholders. Learning objectives
// are normalised into a numbered list.
func TemplateData(rec *TeachingDesign) (map[string]any, error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	out["learning_objectives"] = FormatObjectives(rec.LearningObjectives)
	if _, ok := out["activity_intent"]; !ok {
		out["activity_intent"] = ""
	}
	if rec.LearningActivities == nil {
		out["learning_activities"] = []any{}
	}
	if rec.ThinkingPoints == nil {
		out["reflection_thinking_points"] = []any{}
	}
	return out, nil
}
