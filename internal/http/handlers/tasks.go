package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/meannnn/MindM/internal/export"
	"github.com/meannnn/MindM/internal/http/response"
	"github.com/meannnn/MindM/internal/pipeline"
	"github.com/meannnn/MindM/internal/platform/logger"
	"github.com/meannnn/MindM/internal/platform/tempfiles"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type TaskHandler struct {
	log  *logger.Logger
	pipe *pipeline.Orchestrator
	temp *tempfiles.Set
}

func NewTaskHandler(log *logger.Logger, pipe *pipeline.Orchestrator, temp *tempfiles.Set) *TaskHandler {
	return &TaskHandler{log: log.With("handler", "TaskHandler"), pipe: pipe, temp: temp}
}

// GET /tasks
func (h *TaskHandler) List(c *gin.Context) {
	list := h.pipe.List()
	views := make([]gin.H, 0, len(list))
	for _, a := range list {
		views = append(views, taskView(a))
	}
	response.RespondOK(c, gin.H{"tasks": views, "count": len(views)})
}

// GET /tasks/export
func (h *TaskHandler) Export(c *gin.Context) {
	path, err := h.temp.Path(".xlsx")
	if err != nil {
		response.RespondError(c, err)
		return
	}
	defer h.temp.Remove(path)

	list := h.pipe.List()
	if err := export.WriteTasksXLSX(list, path); err != nil {
		h.log.Error("Task export failed", "error", err)
		response.RespondError(c, err)
		return
	}
	h.log.Info("Tasks exported", "rows", len(list))
	c.Header("Content-Type", xlsxContentType)
	c.FileAttachment(path, "tasks_"+time.Now().UTC().Format("20060102_150405")+".xlsx")
}
