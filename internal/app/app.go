// Package app wires configuration, clients, the pipeline and the HTTP server.
package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/meannnn/MindM/internal/config"
	httpserver "github.com/meannnn/MindM/internal/http"
	"github.com/meannnn/MindM/internal/observability"
	"github.com/meannnn/MindM/internal/pipeline"
	"github.com/meannnn/MindM/internal/platform/logger"
	"github.com/meannnn/MindM/internal/platform/retry"
	"github.com/meannnn/MindM/internal/platform/tempfiles"
	"github.com/meannnn/MindM/internal/templates"
)

const ServiceName = "mindm"

type App struct {
	Log       *logger.Logger
	Cfg       *config.Config
	Clients   Clients
	Templates *templates.Registry
	Pipeline  *pipeline.Orchestrator
	Temp      *tempfiles.Set
	Server    *httpserver.Server

	otelShutdown func(context.Context) error
}

func New(ctx context.Context, cfg *config.Config, log *logger.Logger, version string) (*App, error) {
	if log == nil {
		log = logger.Nop()
	}
	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: ServiceName,
		Environment: cfg.Env,
		Version:     version,
	})

	temp := tempfiles.New(log, cfg.Storage.TempDir)
	if _, err := temp.Sweep(cfg.Storage.SweepAge.Duration); err != nil {
		log.Warn("Startup temp sweep failed", "dir", temp.Dir(), "error", err)
	}

	tpl, err := templates.NewRegistry(log, cfg.Templates.Dir, cfg.Templates.DefaultID)
	if err != nil {
		return nil, fmt.Errorf("init templates: %w", err)
	}
	if written, err := tpl.EnsureAll(false); err != nil {
		return nil, fmt.Errorf("init templates: %w", err)
	} else if len(written) > 0 {
		log.Info("Built-in templates written", "count", len(written), "dir", tpl.Dir())
	}

	clients := wireClients(log, cfg)

	pipe := pipeline.New(log, clients.Generator(), tpl, pipeline.Options{
		UploadDir:           cfg.Storage.UploadDir,
		OutputDir:           cfg.Storage.OutputDir,
		MaxUploadBytes:      cfg.HTTP.MaxUploadBytes,
		HandleModeThreshold: cfg.LLM.HandleModeThreshold,
		Retry:               retryPolicy(cfg.Retry),
		ProcessOnUpload:     cfg.Pipeline.ProcessOnUpload,
	})

	handlers := wireHandlers(log, cfg, pipe, tpl, temp, version)
	server := wireServer(log, cfg, handlers)

	log.Info("App wired",
		"addr", cfg.HTTP.Addr,
		"model", cfg.LLM.Model,
		"generation_enabled", clients.LLM != nil,
		"default_template", tpl.DefaultID(),
		"process_on_upload", cfg.Pipeline.ProcessOnUpload,
	)
	return &App{
		Log:          log,
		Cfg:          cfg,
		Clients:      clients,
		Templates:    tpl,
		Pipeline:     pipe,
		Temp:         temp,
		Server:       server,
		otelShutdown: otelShutdown,
	}, nil
}

func retryPolicy(cfg config.RetryConfig) retry.Policy {
	p := retry.Default()
	p.MaxRetries = cfg.MaxRetries
	if cfg.Backoff.Duration > 0 {
		p.Backoff = cfg.Backoff.Duration
	}
	if cfg.MaxBackoff.Duration > 0 {
		p.MaxBackoff = cfg.MaxBackoff.Duration
	}
	return p
}

// Run serves HTTP and sweeps stale temp files until ctx is done or the server fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Log.Info("HTTP server listening", "addr", a.Server.Addr())
		return a.Server.Run(gctx)
	})
	g.Go(func() error {
		a.sweepLoop(gctx)
		return nil
	})
	return g.Wait()
}

func (a *App) sweepLoop(ctx context.Context) {
	every := a.Cfg.Storage.SweepAge.Duration
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := a.Temp.Sweep(every); err != nil {
				a.Log.Warn("Temp sweep failed", "error", err)
			}
		}
	}
}

// Close removes registered temp files and flushes telemetry and logs.
func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Temp != nil {
		if n := a.Temp.CleanupAll(); n > 0 {
			a.Log.Info("Removed temp files on shutdown", "count", n)
		}
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
