package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/meannnn/MindM/internal/http/response"
	"github.com/meannnn/MindM/internal/platform/apierr"
	"github.com/meannnn/MindM/internal/platform/logger"
	"github.com/meannnn/MindM/internal/templates"
)

type TemplateHandler struct {
	log      *logger.Logger
	registry *templates.Registry
}

func NewTemplateHandler(log *logger.Logger, registry *templates.Registry) *TemplateHandler {
	return &TemplateHandler{log: log.With("handler", "TemplateHandler"), registry: registry}
}

// GET /templates
func (h *TemplateHandler) List(c *gin.Context) {
	response.RespondOK(c, gin.H{
		"templates": h.registry.List(),
		"default":   h.registry.DefaultID(),
	})
}

// GET /templates/:id/placeholders
func (h *TemplateHandler) Placeholders(c *gin.Context) {
	rev, err := h.registry.Review(c.Param("id"))
	if err != nil {
		if errors.Is(err, templates.ErrUnknownTemplate) {
			err = apierr.NotFound("unknown_template", err)
		} else {
			h.log.Error("Template review failed", "template_id", c.Param("id"), "error", err)
		}
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"template_id":  rev.ID,
		"placeholders": rev.Info,
		"warnings":     rev.Warnings,
	})
}
