package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meannnn/MindM/internal/http/response"
	"github.com/meannnn/MindM/internal/pipeline"
	"github.com/meannnn/MindM/internal/platform/llm"
	"github.com/meannnn/MindM/internal/platform/logger"
)

type ChatHandler struct {
	log  *logger.Logger
	pipe *pipeline.Orchestrator
}

func NewChatHandler(log *logger.Logger, pipe *pipeline.Orchestrator) *ChatHandler {
	return &ChatHandler{log: log.With("handler", "ChatHandler"), pipe: pipe}
}

type chatRequest struct {
	Message string        `json:"message"`
	FileID  string        `json:"file_id"`
	History []llm.Message `json:"history"`
}

// POST /chat
func (h *ChatHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondFailure(c, http.StatusBadRequest, "invalid_request", "请求格式错误")
		return
	}
	reply, err := h.pipe.Chat(c.Request.Context(), pipeline.ChatInput{
		Question: req.Message,
		FileID:   req.FileID,
		History:  req.History,
	})
	if err != nil {
		var ge *llm.GenerationError
		if errors.As(err, &ge) {
			response.RespondPipelineFailure(c, "AI服务调用失败: "+ge.Error(), gin.H{
				"request_id": ge.RequestID,
				"retryable":  ge.Retryable,
			})
			return
		}
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"mode":       "chat",
		"response":   reply.Answer,
		"model":      reply.Model,
		"request_id": reply.RequestID,
		"usage":      reply.Usage,
	})
}
