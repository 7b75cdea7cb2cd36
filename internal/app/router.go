package app

import (
	"github.com/meannnn/MindM/internal/config"
	httpserver "github.com/meannnn/MindM/internal/http"
	"github.com/meannnn/MindM/internal/platform/logger"
)

func wireServer(log *logger.Logger, cfg *config.Config, h Handlers) *httpserver.Server {
	return httpserver.NewServer(
		httpserver.ServerConfig{
			Addr:              cfg.HTTP.Addr,
			ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout.Duration,
			IdleTimeout:       cfg.HTTP.IdleTimeout.Duration,
			ShutdownTimeout:   cfg.HTTP.ShutdownTimeout.Duration,
		},
		httpserver.RouterConfig{
			Log:                log,
			ServiceName:        ServiceName,
			CORSOrigins:        cfg.HTTP.CORSOrigins,
			MaxMultipartMemory: cfg.HTTP.MaxUploadBytes,
			DesignHandler:      h.Design,
			TemplateHandler:    h.Template,
			ChatHandler:        h.Chat,
			TaskHandler:        h.Task,
			HealthHandler:      h.Health,
		},
	)
}
