// Package templates is the fixed registry of output-document template variants.
package templates

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/meannnn/MindM/internal/docx"
	"github.com/meannnn/MindM/internal/platform/logger"
)

var ErrUnknownTemplate = errors.New("unknown template")

type Variant struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	File        string `json:"file"`

	layout func() *docx.Builder
}

var builtin = []Variant{
	{ID: "standard", Name: "标准教学设计", Description: "按教学设计表单顺序分节排版，学习活动逐条列出", File: "teaching_design_standard.docx", layout: standardLayout},
	{ID: "table", Name: "表格式教学设计", Description: "基本信息、学习活动和思维训练点使用表格呈现", File: "teaching_design_table.docx", layout: tableLayout},
	{ID: "compact", Name: "简版教学设计", Description: "单页概要，仅包含目标、结构、活动和作业", File: "teaching_design_compact.docx", layout: compactLayout},
}

// Info is a variant as listed to clients.
type Info struct {
	Variant
	Available bool `json:"available"`
}

// Review is the placeholder inspection of one variant.
type Review struct {
	ID       string           `json:"id"`
	Info     *docx.Inspection `json:"placeholders"`
	Warnings []string         `json:"warnings"`
}

type Registry struct {
	log       *logger.Logger
	dir       string
	defaultID string
}

func NewRegistry(log *logger.Logger, dir, defaultID string) (*Registry, error) {
	if log == nil {
		log = logger.Nop()
	}
	if defaultID == "" {
		defaultID = builtin[0].ID
	}
	r := &Registry{log: log, dir: dir, defaultID: defaultID}
	if _, err := r.Get(defaultID); err != nil {
		return nil, fmt.Errorf("default template: %w", err)
	}
	return r, nil
}

func (r *Registry) DefaultID() string { return r.defaultID }

func (r *Registry) Dir() string { return r.dir }

func (r *Registry) List() []Info {
	out := make([]Info, 0, len(builtin))
	for _, v := range builtin {
		_, err := os.Stat(r.path(v))
		out = append(out, Info{Variant: v, Available: err == nil})
	}
	return out
}

// Get resolves id, with "" meaning the default variant.
func (r *Registry) Get(id string) (Variant, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		id = r.defaultID
	}
	for _, v := range builtin {
		if v.ID == id {
			return v, nil
		}
	}
	return Variant{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, id)
}

func (r *Registry) path(v Variant) string { return filepath.Join(r.dir, v.File) }

// Path returns the template file for id, writing the built-in layout first if
// the file does not exist yet.
func (r *Registry) Path(id string) (string, error) {
	v, err := r.Get(id)
	if err != nil {
		return "", err
	}
	p := r.path(v)
	if _, err := os.Stat(p); err == nil {
		return p, nil
	} else if !os.IsNotExist(err) {
		return "", err
	}
	if err := v.layout().WriteFile(p); err != nil {
		return "", fmt.Errorf("write built-in template %s: %w", v.ID, err)
	}
	r.log.Info("Built-in template written", "template_id", v.ID, "path", p)
	return p, nil
}

// EnsureAll writes every built-in template that is missing, or all of them when force is set.
func (r *Registry) EnsureAll(force bool) ([]string, error) {
	var written []string
	for _, v := range builtin {
		p := r.path(v)
		if !force {
			if _, err := os.Stat(p); err == nil {
				continue
			}
		}
		if err := v.layout().WriteFile(p); err != nil {
			return written, fmt.Errorf("write built-in template %s: %w", v.ID, err)
		}
		written = append(written, p)
	}
	return written, nil
}

func (r *Registry) Load(id string) (*docx.Template, error) {
	p, err := r.Path(id)
	if err != nil {
		return nil, err
	}
	return docx.LoadTemplate(p)
}

// Text is the template's plain text, sent to the provider alongside the material.
func (r *Registry) Text(id string) (string, error) {
	p, err := r.Path(id)
	if err != nil {
		return "", err
	}
	return docx.ExtractFile(p)
}

// Review lists placeholders and flags layouts that would lose per-activity values.
func (r *Registry) Review(id string) (*Review, error) {
	v, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	t, err := r.Load(v.ID)
	if err != nil {
		return nil, err
	}
	info := t.Inspect()
	rev := &Review{ID: v.ID, Info: info, Warnings: []string{}}

	var activityLoop string
	for _, l := range info.Loops {
		if l.Collection == "learning_activities" {
			activityLoop = l.Var
		}
	}
	if activityLoop == "" {
		if info.HasField("activity_intent") {
			rev.Warnings = append(rev.Warnings, "模板没有遍历 learning_activities，全局 activity_intent 会把各活动的意图合并为一个值")
		}
		return rev, nil
	}
	perActivity := false
	for _, f := range info.LoopFields[activityLoop] {
		if f == "activity_intent" {
			perActivity = true
		}
	}
	if !perActivity {
		rev.Warnings = append(rev.Warnings, fmt.Sprintf("活动循环中缺少 {{ %s.activity_intent }}，每个活动的意图不会输出", activityLoop))
	}
	return rev, nil
}
