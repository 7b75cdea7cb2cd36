package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/meannnn/MindM/internal/design"
	"github.com/meannnn/MindM/internal/http/response"
	"github.com/meannnn/MindM/internal/pipeline"
	"github.com/meannnn/MindM/internal/platform/apierr"
	"github.com/meannnn/MindM/internal/platform/logger"
	"github.com/meannnn/MindM/internal/platform/tempfiles"
)

// multipartOverhead is allowed on top of the file limit for form fields and boundaries.
const multipartOverhead = 1 << 20

type DesignHandler struct {
	log            *logger.Logger
	pipe           *pipeline.Orchestrator
	temp           *tempfiles.Set
	maxUploadBytes int64
}

func NewDesignHandler(log *logger.Logger, pipe *pipeline.Orchestrator, temp *tempfiles.Set, maxUploadBytes int64) *DesignHandler {
	return &DesignHandler{
		log:            log.With("handler", "DesignHandler"),
		pipe:           pipe,
		temp:           temp,
		maxUploadBytes: maxUploadBytes,
	}
}

// POST /upload
func (h *DesignHandler) Upload(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		if isBodyTooLarge(err) {
			response.RespondFailure(c, http.StatusRequestEntityTooLarge, "file_too_large", "文件超过大小限制")
			return
		}
		response.RespondFailure(c, http.StatusBadRequest, "no_file", "没有文件被上传")
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.RespondError(c, err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	a, err := h.pipe.Upload(c.Request.Context(), pipeline.UploadInput{
		Filename:   fh.Filename,
		Data:       data,
		TemplateID: c.PostForm("template"),
		AIModel:    c.PostForm("ai_model"),
	})
	if err != nil {
		response.RespondError(c, err)
		return
	}
	view := taskView(a)
	if a.Stage.Failed() {
		response.RespondPipelineFailure(c, a.Error, view)
		return
	}
	response.RespondOK(c, view)
}

func isBodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe) || strings.Contains(err.Error(), "request body too large")
}

// GET /status/:task_id
func (h *DesignHandler) Status(c *gin.Context) {
	a, err := h.pipe.Status(c.Param("task_id"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, taskView(a))
}

type generateRequest struct {
	FileID     string `json:"file_id" binding:"required"`
	TemplateID string `json:"template_id"`
}

// POST /generate_teaching_design
func (h *DesignHandler) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondFailure(c, http.StatusBadRequest, "invalid_request", "请求参数错误: 需要 file_id")
		return
	}
	a, err := h.pipe.GenerateDesign(c.Request.Context(), strings.TrimSpace(req.FileID), req.TemplateID)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	view := taskView(a)
	switch {
	case a.Stage.Failed():
		response.RespondPipelineFailure(c, a.Error, view)
	case !a.Rendered():
		response.RespondFailure(c, http.StatusConflict, "in_progress", "任务正在处理中: "+string(a.Stage))
	default:
		response.RespondOK(c, view)
	}
}

// GET /download_design/:file_id
func (h *DesignHandler) Download(c *gin.Context) {
	a, err := h.pipe.Download(c.Param("file_id"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	c.Header("Content-Type", docxContentType)
	c.FileAttachment(a.OutputPath, pipeline.DownloadName(a))
}

// GET /files/:file_id/content
func (h *DesignHandler) FileContent(c *gin.Context) {
	a, err := h.pipe.Artifact(c.Param("file_id"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	payload := gin.H{
		"file_id":   a.FileID,
		"filename":  a.Filename,
		"file_size": a.Size,
		"content":   a.Text,
		"status":    a.Status(),
		"stage":     a.Stage,
	}
	if a.Stage == pipeline.StageExtractionFailed {
		payload["error"] = a.Error
	}
	response.RespondOK(c, payload)
}

var filenameReplacer = strings.NewReplacer("/", "_", "\\", "_", "\"", "", "\n", " ")

type renderRequest struct {
	TemplateID string         `json:"template_id"`
	Record     map[string]any `json:"record" binding:"required"`
}

// POST /render renders a caller-supplied record. The document is written to a
// temp file that is removed once the response has been sent.
func (h *DesignHandler) Render(c *gin.Context) {
	var req renderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondFailure(c, http.StatusBadRequest, "invalid_request", "请求参数错误: 需要 record 对象")
		return
	}
	path, err := h.temp.Path(".docx")
	if err != nil {
		response.RespondError(c, err)
		return
	}
	defer h.temp.Remove(path)

	doc, report, err := h.pipe.RenderRecord(c.Request.Context(), req.Record, req.TemplateID, path)
	if err != nil {
		var ve *design.ValidationError
		if errors.As(err, &ve) {
			response.RespondPipelineFailure(c, "教学设计数据验证失败", gin.H{
				"validation_errors":   ve.Errors,
				"validation_warnings": ve.Warnings,
			})
			return
		}
		if apierr.StatusOf(err) >= http.StatusInternalServerError {
			h.log.Error("Ad-hoc render failed", "template_id", req.TemplateID, "error", err)
		}
		response.RespondError(c, err)
		return
	}
	if w := report.Warnings(); len(w) > 0 {
		c.Header("X-Validation-Warnings", strconv.Itoa(len(w)))
	}
	name := "教学设计"
	if lesson, ok := req.Record["lesson_name"].(string); ok && strings.TrimSpace(lesson) != "" {
		name = filenameReplacer.Replace(strings.TrimSpace(lesson))
	}
	h.log.Debug("Ad-hoc render finished", "path", doc.Path, "size", doc.Size)
	c.Header("Content-Type", docxContentType)
	c.FileAttachment(doc.Path, name+".docx")
}
