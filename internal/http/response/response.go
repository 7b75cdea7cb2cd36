// Package response holds the JSON envelopes shared by all handlers. Every body
// carries "success"; failures add "error" and a machine "code".
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meannnn/MindM/internal/platform/apierr"
)

// GenericMessage is sent for unexpected server errors instead of their details.
const GenericMessage = "服务器内部错误"

type ErrorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
}

func RespondFailure(c *gin.Context, status int, code, message string) {
	if message == "" {
		message = http.StatusText(status)
	}
	c.JSON(status, ErrorEnvelope{Success: false, Error: message, Code: code})
}

// RespondError maps err through apierr. Server errors are answered with
// GenericMessage and recorded on the gin context for the request log.
func RespondError(c *gin.Context, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	status := apierr.StatusOf(err)
	code := apierr.CodeOf(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		msg = GenericMessage
	}
	RespondFailure(c, status, code, msg)
}

// RespondOK writes payload with success=true added.
func RespondOK(c *gin.Context, payload gin.H) {
	if payload == nil {
		payload = gin.H{}
	}
	payload["success"] = true
	c.JSON(http.StatusOK, payload)
}

// RespondPipelineFailure reports a failed pipeline step with status 200 and
// success=false; payload carries the task state.
func RespondPipelineFailure(c *gin.Context, message string, payload gin.H) {
	if payload == nil {
		payload = gin.H{}
	}
	payload["success"] = false
	payload["error"] = message
	c.JSON(http.StatusOK, payload)
}
