package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/meannnn/MindM/internal/http/handlers"
	httpMW "github.com/meannnn/MindM/internal/http/middleware"
	"github.com/meannnn/MindM/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string
	// MaxMultipartMemory bounds the in-memory part of multipart parsing.
	MaxMultipartMemory int64

	DesignHandler   *httpH.DesignHandler
	TemplateHandler *httpH.TemplateHandler
	ChatHandler     *httpH.ChatHandler
	TaskHandler     *httpH.TaskHandler
	HealthHandler   *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	if cfg.MaxMultipartMemory > 0 {
		r.MaxMultipartMemory = cfg.MaxMultipartMemory
	}
	service := cfg.ServiceName
	if service == "" {
		service = "mindm"
	}
	r.Use(otelgin.Middleware(service))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Recover(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/health", cfg.HealthHandler.HealthCheck)
	}

	// Pipeline
	if cfg.DesignHandler != nil {
		r.POST("/upload", cfg.DesignHandler.Upload)
		r.GET("/status/:task_id", cfg.DesignHandler.Status)
		r.POST("/generate_teaching_design", cfg.DesignHandler.Generate)
		r.GET("/download_design/:file_id", cfg.DesignHandler.Download)
		r.GET("/files/:file_id/content", cfg.DesignHandler.FileContent)
		r.POST("/render", cfg.DesignHandler.Render)
	}

	// Templates
	if cfg.TemplateHandler != nil {
		r.GET("/templates", cfg.TemplateHandler.List)
		r.GET("/templates/:id/placeholders", cfg.TemplateHandler.Placeholders)
	}

	// Chat
	if cfg.ChatHandler != nil {
		r.POST("/chat", cfg.ChatHandler.Chat)
	}

	// Tasks
	if cfg.TaskHandler != nil {
		r.GET("/tasks", cfg.TaskHandler.List)
		r.GET("/tasks/export", cfg.TaskHandler.Export)
	}

	return r
}
