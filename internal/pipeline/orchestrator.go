package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/meannnn/MindM/internal/design"
	"github.com/meannnn/MindM/internal/docx"
	"github.com/meannnn/MindM/internal/observability"
	"github.com/meannnn/MindM/internal/platform/apierr"
	"github.com/meannnn/MindM/internal/platform/llm"
	"github.com/meannnn/MindM/internal/platform/logger"
	"github.com/meannnn/MindM/internal/platform/retry"
	"github.com/meannnn/MindM/internal/templates"
)

// Generator is the provider capability the pipeline depends on. *llm.Client
// implements it.
type Generator interface {
	Generate(ctx context.Context, primaryText, templateText string) (*llm.Generation, error)
	GenerateViaHandles(ctx context.Context, primaryHandle, templateHandle string) (*llm.Generation, error)
	UploadFile(ctx context.Context, filename string, content []byte) (string, error)
	Chat(ctx context.Context, messages []llm.Message) (*llm.Generation, error)
	Model() string
}

var ErrGeneratorUnavailable = errors.New("generation client not configured (set DASHSCOPE_API_KEY)")

var AllowedExtensions = []string{".docx"}

type Options struct {
	UploadDir      string
	OutputDir      string
	MaxUploadBytes int64
	// HandleModeThreshold is the material length in characters above which
	// files are sent as provider handles. Zero keeps text mode.
	HandleModeThreshold int
	Retry               retry.Policy
	// ProcessOnUpload runs generation inline in Upload.
	ProcessOnUpload bool
}

type Orchestrator struct {
	log       *logger.Logger
	reg       *Registry
	gen       Generator
	templates *templates.Registry
	opts      Options

	flight singleflight.Group
}

// New wires an orchestrator. gen may be nil, in which case every generation
// fails with ErrGeneratorUnavailable.
func New(log *logger.Logger, gen Generator, tpl *templates.Registry, opts Options) *Orchestrator {
	if log == nil {
		log = logger.Nop()
	}
	return &Orchestrator{
		log:       log.With("component", "Pipeline"),
		reg:       NewRegistry(),
		gen:       gen,
		templates: tpl,
		opts:      opts,
	}
}

func (o *Orchestrator) Registry() *Registry { return o.reg }

func (o *Orchestrator) Templates() *templates.Registry { return o.templates }

type UploadInput struct {
	Filename   string
	Data       []byte
	TemplateID string
	AIModel    string
}

// Upload stores the document, registers its task and extracts its text. An
// extraction failure is reported on the returned artifact, not as an error.
func (o *Orchestrator) Upload(ctx context.Context, in UploadInput) (Artifact, error) {
	name := filepath.Base(strings.TrimSpace(strings.ReplaceAll(in.Filename, "\\", "/")))
	if name == "" || name == "." || name == "/" {
		return Artifact{}, apierr.BadRequest("no_file", errors.New("没有选择文件"))
	}
	ext := strings.ToLower(filepath.Ext(name))
	if !allowedExtension(ext) {
		return Artifact{}, apierr.BadRequest("unsupported_file_type", fmt.Errorf("不支持的文件类型: %s (仅支持 %s)", ext, strings.Join(AllowedExtensions, ", ")))
	}
	if len(in.Data) == 0 {
		return Artifact{}, apierr.BadRequest("empty_file", errors.New("文件为空"))
	}
	if o.opts.MaxUploadBytes > 0 && int64(len(in.Data)) > o.opts.MaxUploadBytes {
		return Artifact{}, apierr.New(http.StatusRequestEntityTooLarge, "file_too_large", fmt.Errorf("文件超过大小限制(%d字节)", o.opts.MaxUploadBytes))
	}
	tv, err := o.templates.Get(in.TemplateID)
	if err != nil {
		return Artifact{}, apierr.BadRequest("unknown_template", err)
	}

	fileID := uuid.NewString()
	path := filepath.Join(o.opts.UploadDir, fileID+ext)
	if err := os.MkdirAll(o.opts.UploadDir, 0o755); err != nil {
		return Artifact{}, fmt.Errorf("create upload dir: %w", err)
	}
	if err := os.WriteFile(path, in.Data, 0o644); err != nil {
		return Artifact{}, fmt.Errorf("save upload: %w", err)
	}

	a := o.reg.add(Artifact{
		FileID:     fileID,
		TaskID:     uuid.NewString(),
		Filename:   name,
		Path:       path,
		Size:       int64(len(in.Data)),
		TemplateID: tv.ID,
		AIModel:    strings.TrimSpace(in.AIModel),
	})
	o.log.Info("File received", "task_id", a.TaskID, "file_id", a.FileID, "filename", name, "size", a.Size, "template_id", tv.ID)

	a = o.extract(ctx, a.FileID)
	if o.opts.ProcessOnUpload && a.Stage == StageExtracted {
		a = o.process(ctx, a.FileID, tv.ID)
	}
	return a, nil
}

func allowedExtension(ext string) bool {
	for _, e := range AllowedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

func (o *Orchestrator) extract(ctx context.Context, fileID string) Artifact {
	_, span := observability.StartSpan(ctx, "pipeline.extract", "file_id", fileID)
	defer span.End()

	a, err := o.reg.advance(fileID, StageExtracting, nil)
	if err != nil {
		return a
	}
	start := time.Now()
	text, err := docx.ExtractFile(a.Path)
	if err != nil {
		span.RecordError(err)
		a, _ = o.reg.advance(fileID, StageExtractionFailed, func(x *Artifact) {
			x.Error = "文本提取失败: " + err.Error()
		})
		o.stageLog(a, "extract", start).Warn("Text extraction failed", "error", err)
		return a
	}
	a, _ = o.reg.advance(fileID, StageExtracted, func(x *Artifact) { x.Text = text })
	o.stageLog(a, "extract", start).Info("Text extracted", "chars", utf8.RuneCountInString(text))
	return a
}

// GenerateDesign runs generation, validation and rendering for an extracted
// artifact and returns its final state. Pipeline failures are reported on the
// artifact; the error is reserved for bad requests. Concurrent calls for the
// same file share one run, and the run is not cancelled when ctx is. A caller
// that joined a run started for another template gets the shared record
// rendered with its own template.
func (o *Orchestrator) GenerateDesign(ctx context.Context, fileID, templateID string) (Artifact, error) {
	a, err := o.reg.Artifact(fileID)
	if err != nil {
		return Artifact{}, apierr.NotFound("file_not_found", err)
	}
	if strings.TrimSpace(templateID) == "" {
		templateID = a.TemplateID
	}
	tv, err := o.templates.Get(templateID)
	if err != nil {
		return Artifact{}, apierr.BadRequest("unknown_template", err)
	}

	switch {
	case a.Stage == StageCompleted && a.TemplateID == tv.ID:
		return a, nil
	case a.Stage == StageCompleted:
		return o.rerender(ctx, a, tv.ID)
	case a.Stage.Failed():
		return a, nil
	case stages[a.Stage].rank < stages[StageExtracted].rank:
		return a, apierr.Conflict("not_extracted", errors.New("文件尚未完成文本提取"))
	}
	a = o.process(ctx, fileID, tv.ID)
	if a.Stage == StageCompleted && a.TemplateID != tv.ID {
		return o.rerender(ctx, a, tv.ID)
	}
	return a, nil
}

func (o *Orchestrator) process(ctx context.Context, fileID, templateID string) Artifact {
	v, _, _ := o.flight.Do(fileID, func() (any, error) {
		return o.run(context.WithoutCancel(ctx), fileID, templateID), nil
	})
	return v.(Artifact)
}

func (o *Orchestrator) run(ctx context.Context, fileID, templateID string) Artifact {
	ctx, span := observability.StartSpan(ctx, "pipeline.run", "file_id", fileID, "template_id", templateID)
	defer span.End()

	a, err := o.reg.advance(fileID, StageGenerating, func(x *Artifact) { x.TemplateID = templateID })
	if err != nil {
		return a
	}

	start := time.Now()
	gen, attempts, err := o.generate(ctx, a)
	if err != nil {
		span.RecordError(err)
		a, _ = o.reg.advance(fileID, StageGenerationFailed, func(x *Artifact) {
			x.Attempts = attempts
			x.Error = "AI生成失败: " + err.Error()
			var ge *llm.GenerationError
			if errors.As(err, &ge) {
				x.RequestID = ge.RequestID
			}
		})
		o.stageLog(a, "generate", start).Error("Generation failed", "attempts", attempts, "error", err)
		return a
	}
	a, _ = o.reg.advance(fileID, StageGenerated, func(x *Artifact) {
		x.Result = gen.Text
		x.RequestID = gen.RequestID
		x.Usage = gen.Usage
		x.Attempts = attempts
	})
	o.stageLog(a, "generate", start).Info("Generation finished", "attempts", attempts, "request_id", gen.RequestID, "chars", utf8.RuneCountInString(gen.Text))

	start = time.Now()
	if a, err = o.reg.advance(fileID, StageValidating, nil); err != nil {
		return a
	}
	candidate, data, report, err := prepareResult(a.Result, a.Text)
	if err != nil {
		span.RecordError(err)
		a, _ = o.reg.advance(fileID, StageValidationFailed, func(x *Artifact) {
			x.Error = "教学设计数据验证失败"
			x.ValidationErrors = validationErrors(err)
			if report != nil {
				x.ValidationWarnings = report.Warnings()
			}
		})
		o.stageLog(a, "validate", start).Warn("Validation failed", "errors", len(a.ValidationErrors), "warnings", len(a.ValidationWarnings))
		return a
	}
	a, _ = o.reg.advance(fileID, StageValidated, func(x *Artifact) {
		x.Record = candidate
		x.ValidationWarnings = report.Warnings()
	})
	o.stageLog(a, "validate", start).Info("Validation passed", "warnings", len(a.ValidationWarnings), "phases", len(report.Phases))

	start = time.Now()
	if a, err = o.reg.advance(fileID, StageRendering, nil); err != nil {
		return a
	}
	doc, err := o.render(ctx, templateID, data, o.outputPath(fileID, templateID))
	if err != nil {
		span.RecordError(err)
		a, _ = o.reg.advance(fileID, StageRenderFailed, func(x *Artifact) {
			x.Error = "文档生成失败: " + err.Error()
		})
		o.stageLog(a, "render", start).Error("Render failed", "error", err)
		return a
	}
	a, _ = o.reg.advance(fileID, StageCompleted, func(x *Artifact) {
		x.OutputPath = doc.Path
		x.OutputSize = doc.Size
		x.GeneratedAt = doc.GeneratedAt
	})
	o.stageLog(a, "render", start).Info("Teaching design rendered", "path", doc.Path, "size", doc.Size)
	return a
}

// rerender binds the stored record of a completed task to another template.
// The stage stays completed.
func (o *Orchestrator) rerender(ctx context.Context, a Artifact, templateID string) (Artifact, error) {
	rec, err := design.Decode(a.Record)
	if err != nil {
		return a, err
	}
	data, err := design.TemplateData(rec)
	if err != nil {
		return a, err
	}
	doc, err := o.render(ctx, templateID, data, o.outputPath(a.FileID, templateID))
	if err != nil {
		return a, apierr.New(http.StatusInternalServerError, "render_failed", err)
	}
	return o.reg.update(a.FileID, func(x *Artifact) {
		x.TemplateID = templateID
		x.OutputPath = doc.Path
		x.OutputSize = doc.Size
		x.GeneratedAt = doc.GeneratedAt
	})
}

func (o *Orchestrator) generate(ctx context.Context, a Artifact) (*llm.Generation, int, error) {
	if o.gen == nil {
		return nil, 0, ErrGeneratorUnavailable
	}
	ctx, span := observability.StartSpan(ctx, "pipeline.generate", "file_id", a.FileID, "model", o.gen.Model())
	defer span.End()

	policy := o.opts.Retry
	policy.OnRetry = func(attempt int, err error, wait time.Duration) {
		o.log.Warn("Generation attempt failed, retrying",
			"task_id", a.TaskID, "attempt", attempt, "wait_ms", wait.Milliseconds(), "error", err)
	}

	useHandles := o.opts.HandleModeThreshold > 0 && utf8.RuneCountInString(a.Text) > o.opts.HandleModeThreshold
	var primaryHandle, templateHandle, templateText string
	if useHandles {
		var err error
		primaryHandle, templateHandle, err = o.uploadHandles(ctx, a, policy)
		if err != nil {
			return nil, 0, err
		}
		o.log.Info("Using file handles for large material", "task_id", a.TaskID, "chars", utf8.RuneCountInString(a.Text))
	} else {
		var err error
		if templateText, err = o.templates.Text(a.TemplateID); err != nil {
			return nil, 0, fmt.Errorf("read template text: %w", err)
		}
	}

	var out *llm.Generation
	attempts, err := policy.Do(ctx, func(ctx context.Context, attempt int) error {
		var g *llm.Generation
		var err error
		if useHandles {
			g, err = o.gen.GenerateViaHandles(ctx, primaryHandle, templateHandle)
		} else {
			g, err = o.gen.Generate(ctx, a.Text, templateText)
		}
		if err != nil {
			return err
		}
		out = g
		return nil
	})
	return out, attempts, err
}

func (o *Orchestrator) uploadHandles(ctx context.Context, a Artifact, policy retry.Policy) (string, string, error) {
	material, err := os.ReadFile(a.Path)
	if err != nil {
		return "", "", fmt.Errorf("read upload: %w", err)
	}
	tplPath, err := o.templates.Path(a.TemplateID)
	if err != nil {
		return "", "", err
	}
	tpl, err := os.ReadFile(tplPath)
	if err != nil {
		return "", "", fmt.Errorf("read template: %w", err)
	}

	var primary, secondary string
	if _, err := policy.Do(ctx, func(ctx context.Context, _ int) error {
		var err error
		primary, err = o.gen.UploadFile(ctx, a.Filename, material)
		return err
	}); err != nil {
		return "", "", err
	}
	if _, err := policy.Do(ctx, func(ctx context.Context, _ int) error {
		var err error
		secondary, err = o.gen.UploadFile(ctx, filepath.Base(tplPath), tpl)
		return err
	}); err != nil {
		return "", "", err
	}
	return primary, secondary, nil
}

func (o *Orchestrator) render(ctx context.Context, templateID string, data map[string]any, outPath string) (*docx.RenderedDocument, error) {
	_, span := observability.StartSpan(ctx, "pipeline.render", "template_id", templateID)
	defer span.End()

	t, err := o.templates.Load(templateID)
	if err != nil {
		var re *docx.RenderError
		if !errors.As(err, &re) {
			err = &docx.RenderError{Stage: docx.StageLoad, Err: err}
		}
		return nil, err
	}
	return t.Render(data, outPath)
}

func (o *Orchestrator) outputPath(fileID, templateID string) string {
	return filepath.Join(o.opts.OutputDir, fileID, "teaching_design_"+templateID+".docx")
}

func (o *Orchestrator) stageLog(a Artifact, stage string, start time.Time) *logger.Logger {
	return o.log.With(
		"task_id", a.TaskID,
		"file_id", a.FileID,
		"stage", stage,
		"state", string(a.Stage),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// prepareResult parses raw provider output, validates it against source and
// builds the template data. Any failure is a *design.ValidationError.
func prepareResult(raw, source string) (map[string]any, map[string]any, *design.Report, error) {
	candidate, err := design.ParseCandidate(raw)
	if err != nil {
		return nil, nil, nil, &design.ValidationError{Errors: []string{"模型输出不是有效的JSON: " + err.Error()}}
	}
	data, report, err := PrepareRecord(candidate, source)
	if err != nil {
		return nil, nil, report, err
	}
	return candidate, data, report, nil
}

// PrepareRecord validates candidate and converts it into template data. It
// returns the report in every case and a *design.ValidationError when the
// record cannot be rendered.
func PrepareRecord(candidate map[string]any, source string) (map[string]any, *design.Report, error) {
	report := design.Validate(candidate, source)
	if err := report.Err(); err != nil {
		return nil, report, err
	}
	rec, err := design.Decode(candidate)
	if err != nil {
		return nil, report, &design.ValidationError{Errors: []string{err.Error()}, Warnings: report.Warnings()}
	}
	data, err := design.TemplateData(rec)
	if err != nil {
		return nil, report, &design.ValidationError{Errors: []string{err.Error()}, Warnings: report.Warnings()}
	}
	return data, report, nil
}

func validationErrors(err error) []string {
	var ve *design.ValidationError
	if errors.As(err, &ve) {
		return ve.Errors
	}
	return []string{err.Error()}
}
