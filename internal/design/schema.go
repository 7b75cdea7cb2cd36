package design

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// typeSchema checks value types only. Presence, list shape and cross-field rules
// are checked in Validate so each problem is reported once in its own words.
func typeSchema() map[string]any {
	str := map[string]any{"type": "string"}
	props := map[string]any{}
	for _, f := range RequiredFields {
		props[f] = str
	}
	props["activity_intent"] = str
	itemProps := func(fields []string) map[string]any {
		p := map[string]any{}
		for _, f := range fields {
			p[f] = str
		}
		return map[string]any{"properties": p}
	}
	props["learning_activities"] = map[string]any{"items": itemProps(ActivityFields)}
	props["reflection_thinking_points"] = map[string]any{"items": itemProps(PointFields)}
	return map[string]any{
		"$schema":    "https://json-schema.org/draft/2020-12/schema",
		"type":       "object",
		"properties": props,
	}
}

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		b, err := json.Marshal(typeSchema())
		if err != nil {
			schemaErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("teaching_design.json", bytes.NewReader(b)); err != nil {
			schemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		schema, schemaErr = c.Compile("teaching_design.json")
	})
	return schema, schemaErr
}

// typeErrors returns one message per value with the wrong JSON type.
func typeErrors(doc any) []string {
	s, err := compiledSchema()
	if err != nil {
		return []string{"内部错误: " + err.Error()}
	}
	err = s.Validate(doc)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []string{"类型校验失败: " + err.Error()}
	}
	var out []string
	seen := map[string]bool{}
	for _, e := range ve.BasicOutput().Errors {
		if !strings.HasSuffix(e.KeywordLocation, "/type") || seen[e.InstanceLocation] {
			continue
		}
		seen[e.InstanceLocation] = true
		out = append(out, fmt.Sprintf("字段类型错误: %s 应为字符串", pointerLabel(e.InstanceLocation)))
	}
	return out
}

// pointerLabel renders "/learning_activities/0/name" as "learning_activities[1].name".
func pointerLabel(ptr string) string {
	parts := strings.Split(strings.TrimPrefix(ptr, "/"), "/")
	var b strings.Builder
	for i, p := range parts {
		if n, err := strconv.Atoi(p); err == nil {
			fmt.Fprintf(&b, "[%d]", n+1)
			continue
		}
		if i > 0 {
			b.WriteString(".")
		}
		b.WriteString(p)
	}
	return b.String()
}
