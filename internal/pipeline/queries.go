package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/meannnn/MindM/internal/design"
	"github.com/meannnn/MindM/internal/docx"
	"github.com/meannnn/MindM/internal/platform/apierr"
	"github.com/meannnn/MindM/internal/platform/llm"
	"github.com/meannnn/MindM/internal/prompts"
)

func (o *Orchestrator) Status(taskID string) (Artifact, error) {
	a, err := o.reg.Task(taskID)
	if err != nil {
		return Artifact{}, apierr.NotFound("task_not_found", err)
	}
	return a, nil
}

func (o *Orchestrator) Artifact(fileID string) (Artifact, error) {
	a, err := o.reg.Artifact(fileID)
	if err != nil {
		return Artifact{}, apierr.NotFound("file_not_found", err)
	}
	return a, nil
}

func (o *Orchestrator) List() []Artifact { return o.reg.List() }

// Download returns a completed artifact whose rendered document is on disk.
func (o *Orchestrator) Download(fileID string) (Artifact, error) {
	a, err := o.Artifact(fileID)
	if err != nil {
		return Artifact{}, err
	}
	if !a.Rendered() {
		return a, apierr.BadRequest("not_generated", errors.New("教学设计尚未生成"))
	}
	if _, err := os.Stat(a.OutputPath); err != nil {
		return a, apierr.NotFound("output_missing", fmt.Errorf("生成的文档不存在: %w", err))
	}
	return a, nil
}

// DownloadName is "<upload base name>_教学设计.docx".
func DownloadName(a Artifact) string {
	base := strings.TrimSuffix(a.Filename, filepath.Ext(a.Filename))
	if base == "" {
		base = a.FileID
	}
	return base + "_教学设计.docx"
}

type ChatInput struct {
	Question string
	// FileID optionally grounds the question in an uploaded document.
	FileID  string
	History []llm.Message
}

type ChatReply struct {
	Answer    string     `json:"response"`
	Model     string     `json:"model"`
	RequestID string     `json:"request_id,omitempty"`
	Usage     *llm.Usage `json:"usage,omitempty"`
}

// Chat answers a free-form question. Provider failures come back as
// *llm.GenerationError after the retry policy gives up.
func (o *Orchestrator) Chat(ctx context.Context, in ChatInput) (*ChatReply, error) {
	question := strings.TrimSpace(in.Question)
	if question == "" {
		return nil, apierr.BadRequest("empty_question", errors.New("问题不能为空"))
	}
	var material string
	if id := strings.TrimSpace(in.FileID); id != "" {
		a, err := o.Artifact(id)
		if err != nil {
			return nil, err
		}
		if a.Text == "" {
			return nil, apierr.BadRequest("no_text", errors.New("该文件没有可用的文本内容"))
		}
		material = a.Text
	}
	if o.gen == nil {
		return nil, apierr.New(http.StatusServiceUnavailable, "generation_unavailable", ErrGeneratorUnavailable)
	}

	messages := []llm.Message{{Role: "system", Content: prompts.SystemRole}}
	for _, m := range in.History {
		if (m.Role == "user" || m.Role == "assistant") && strings.TrimSpace(m.Content) != "" {
			messages = append(messages, m)
		}
	}
	messages = append(messages, llm.Message{Role: "user", Content: prompts.Chat(question, material)})

	var gen *llm.Generation
	policy := o.opts.Retry
	if _, err := policy.Do(ctx, func(ctx context.Context, _ int) error {
		g, err := o.gen.Chat(ctx, messages)
		if err != nil {
			return err
		}
		gen = g
		return nil
	}); err != nil {
		o.log.Warn("Chat failed", "file_id", in.FileID, "error", err)
		return nil, err
	}
	return &ChatReply{Answer: gen.Text, Model: o.gen.Model(), RequestID: gen.RequestID, Usage: gen.Usage}, nil
}

// RenderRecord validates a caller-supplied record and renders it with the
// given template into outPath. Invalid records yield a *design.ValidationError
// and the report.
func (o *Orchestrator) RenderRecord(ctx context.Context, candidate map[string]any, templateID, outPath string) (*docx.RenderedDocument, *design.Report, error) {
	tv, err := o.templates.Get(templateID)
	if err != nil {
		return nil, nil, apierr.BadRequest("unknown_template", err)
	}
	data, report, err := PrepareRecord(candidate, "")
	if err != nil {
		return nil, report, err
	}
	doc, err := o.render(ctx, tv.ID, data, outPath)
	if err != nil {
		return nil, report, err
	}
	return doc, report, nil
}
