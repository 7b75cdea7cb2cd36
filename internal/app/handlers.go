package app

import (
	"github.com/meannnn/MindM/internal/config"
	"github.com/meannnn/MindM/internal/http/handlers"
	"github.com/meannnn/MindM/internal/pipeline"
	"github.com/meannnn/MindM/internal/platform/logger"
	"github.com/meannnn/MindM/internal/platform/tempfiles"
	"github.com/meannnn/MindM/internal/templates"
)

type Handlers struct {
	Design   *handlers.DesignHandler
	Template *handlers.TemplateHandler
	Chat     *handlers.ChatHandler
	Task     *handlers.TaskHandler
	Health   *handlers.HealthHandler
}

func wireHandlers(log *logger.Logger, cfg *config.Config, pipe *pipeline.Orchestrator, tpl *templates.Registry, temp *tempfiles.Set, version string) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Design:   handlers.NewDesignHandler(log, pipe, temp, cfg.HTTP.MaxUploadBytes),
		Template: handlers.NewTemplateHandler(log, tpl),
		Chat:     handlers.NewChatHandler(log, pipe),
		Task:     handlers.NewTaskHandler(log, pipe, temp),
		Health:   handlers.NewHealthHandler(ServiceName, version),
	}
}
