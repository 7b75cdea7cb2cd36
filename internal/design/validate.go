package design

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Report is the outcome of validating one candidate record.
type Report struct {
	Findings []Finding `json:"findings"`
	Phases   []string  `json:"phases,omitempty"`
}

func (r *Report) add(sev Severity, code, format string, args ...any) {
	r.Findings = append(r.Findings, Finding{Severity: sev, Code: code, Message: fmt.Sprintf(format, args...)})
}

func (r *Report) Valid() bool { return len(r.Errors()) == 0 }

func (r *Report) Errors() []string { return r.messages(SeverityError) }

func (r *Report) Warnings() []string { return r.messages(SeverityWarning) }

// Messages returns every finding in detection order.
func (r *Report) Messages() []string {
	out := make([]string, 0, len(r.Findings))
	for _, f := range r.Findings {
		out = append(out, f.Message)
	}
	return out
}

func (r *Report) messages(sev Severity) []string {
	var out []string
	for _, f := range r.Findings {
		if f.Severity == sev {
			out = append(out, f.Message)
		}
	}
	return out
}

// Err returns a *ValidationError when the report holds errors, else nil.
func (r *Report) Err() error {
	if r.Valid() {
		return nil
	}
	return &ValidationError{Errors: r.Errors(), Warnings: r.Warnings()}
}

// Check is the boolean form of Validate: validity plus the error messages.
// Advisory warnings are left out; use Validate to see them.
func Check(candidate map[string]any, source string) (bool, []string) {
	r := Validate(candidate, source)
	return r.Valid(), r.Errors()
}

// Validate runs structural, cross-field and (when source is non-empty) coverage
// checks. It never panics on unexpected shapes; those become findings.
func Validate(candidate map[string]any, source string) *Report {
	r := &Report{}
	doc, err := normalize(candidate)
	if err != nil {
		r.add(SeverityError, "not_json", "记录无法编码为JSON: %v", err)
		return r
	}

	for _, f := range RequiredFields {
		v, ok := doc[f]
		if !ok || v == nil {
			r.add(SeverityError, "missing_field", "缺少必需字段: %s", f)
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			r.add(SeverityError, "empty_field", "必需字段为空: %s", f)
		}
	}
	for _, msg := range typeErrors(doc) {
		r.add(SeverityError, "type_error", "%s", msg)
	}

	activities, activitiesOK := listField(r, doc, "learning_activities")
	if activitiesOK {
		checkItems(r, activities, "学习活动", ActivityFields)
	}
	if points, ok := listField(r, doc, "reflection_thinking_points"); ok {
		checkItems(r, points, "思维训练点", PointFields)
		checkPoints(r, points)
	}

	if structure, ok := doc["lesson_structure"].(string); ok && strings.TrimSpace(structure) != "" {
		r.Phases = ParsePhases(structure)
		if activitiesOK {
			checkActivityCount(r, len(activities), len(r.Phases))
		}
	} else if activitiesOK && len(activities) > MaxActivities {
		r.add(SeverityError, "activity_count_limit", "学习活动数量(%d)超过上限%d个", len(activities), MaxActivities)
	}

	if activitiesOK {
		checkDuplicateIntents(r, activities)
	}
	if strings.TrimSpace(source) != "" {
		checkCoverage(r, doc, activities, source)
	}
	return r
}

// normalize round-trips the candidate through JSON so typed Go values become
// the generic shapes produced by decoding provider output.
func normalize(candidate map[string]any) (map[string]any, error) {
	if candidate == nil {
		return map[string]any{}, nil
	}
	b, err := json.Marshal(candidate)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func listField(r *Report, doc map[string]any, field string) ([]any, bool) {
	v, ok := doc[field]
	if !ok || v == nil {
		return nil, false
	}
	list, ok := v.([]any)
	if !ok {
		r.add(SeverityError, "not_a_list", "%s 必须是列表", field)
		return nil, false
	}
	return list, true
}

func checkItems(r *Report, items []any, label string, fields []string) {
	for i, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			r.add(SeverityError, "item_not_object", "%s %d 必须是对象", label, i+1)
			continue
		}
		for _, f := range fields {
			v, ok := m[f]
			if !ok || v == nil {
				r.add(SeverityError, "missing_item_field", "%s %d 缺少字段: %s", label, i+1, f)
				continue
			}
			if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
				r.add(SeverityError, "empty_item_field", "%s %d 字段为空: %s", label, i+1, f)
			}
		}
	}
}

func checkPoints(r *Report, points []any) {
	for i, it := range points {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		if t, ok := m["point_type"].(string); ok && strings.TrimSpace(t) != "" && !isPointType(t) {
			r.add(SeverityError, "invalid_point_type", "思维训练点 %d 类型无效: %s (应为%s)", i+1, t, strings.Join(PointTypes, "、"))
		}
		if d, ok := m["description"].(string); ok && utf8.RuneCountInString(strings.TrimSpace(d)) > MaxPointDescriptionLen {
			r.add(SeverityError, "point_too_long", "思维训练点 %d 说明超过%d字", i+1, MaxPointDescriptionLen)
		}
	}
}

func isPointType(t string) bool {
	t = strings.TrimSpace(t)
	for _, p := range PointTypes {
		if t == p {
			return true
		}
	}
	return false
}

// checkActivityCount enforces phases <= activities <= phases+2 and the hard cap.
func checkActivityCount(r *Report, activities, phases int) {
	if activities > MaxActivities {
		r.add(SeverityError, "activity_count_limit", "学习活动数量(%d)超过上限%d个", activities, MaxActivities)
	}
	if phases == 0 {
		r.add(SeverityWarning, "phases_unrecognized", "无法从课例结构中识别教学环节")
		return
	}
	switch {
	case activities < phases:
		r.add(SeverityError, "activity_count_low", "学习活动数量(%d)少于课例结构中的环节数量(%d)", activities, phases)
	case activities > phases+ActivityTolerance:
		r.add(SeverityError, "activity_count_high", "学习活动数量(%d)明显多于课例结构中的环节数量(%d)", activities, phases)
	}
}

func checkDuplicateIntents(r *Report, activities []any) {
	first := map[string]int{}
	reported := map[string]bool{}
	for i, it := range activities {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		intent, _ := m["activity_intent"].(string)
		intent = strings.TrimSpace(intent)
		if intent == "" {
			continue
		}
		if j, dup := first[intent]; dup {
			if !reported[intent] {
				reported[intent] = true
				r.add(SeverityWarning, "duplicate_intent", "重复的活动意图: 学习活动 %d 与 %d 的意图相同", j+1, i+1)
			}
			continue
		}
		first[intent] = i
	}
}
