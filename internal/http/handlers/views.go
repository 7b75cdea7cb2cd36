package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/meannnn/MindM/internal/pipeline"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

func downloadURL(fileID string) string { return "/download_design/" + fileID }

// taskView is the public JSON form of an artifact and its task.
func taskView(a pipeline.Artifact) gin.H {
	h := gin.H{
		"task_id":     a.TaskID,
		"file_id":     a.FileID,
		"filename":    a.Filename,
		"file_size":   a.Size,
		"template_id": a.TemplateID,
		"status":      a.Status(),
		"stage":       a.Stage,
		"progress":    a.Progress(),
		"created_at":  a.CreatedAt,
		"updated_at":  a.UpdatedAt,
	}
	if a.AIModel != "" {
		h["ai_model"] = a.AIModel
	}
	if a.Error != "" {
		h["error"] = a.Error
	}
	if len(a.ValidationErrors) > 0 {
		h["validation_errors"] = a.ValidationErrors
	}
	if len(a.ValidationWarnings) > 0 {
		h["validation_warnings"] = a.ValidationWarnings
	}
	if a.RequestID != "" {
		h["request_id"] = a.RequestID
	}
	if a.Usage != nil {
		h["usage"] = a.Usage
	}
	if a.Attempts > 0 {
		h["attempts"] = a.Attempts
	}
	if a.Rendered() {
		h["result"] = a.Record
		h["download_url"] = downloadURL(a.FileID)
		h["output_size"] = a.OutputSize
		h["generated_at"] = a.GeneratedAt
	}
	return h
}
