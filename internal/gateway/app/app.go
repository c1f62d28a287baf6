package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pipelinecheck/internal/gateway/config"
	"pipelinecheck/internal/gateway/handler"
	"pipelinecheck/internal/gateway/handler/rpc"
	"pipelinecheck/internal/gateway/logging"
	"pipelinecheck/internal/gateway/server"
	gatewaypipeline "pipelinecheck/internal/gateway/service/pipeline"
)

type App struct {
	server    *server.Server
	handler   http.Handler
	logger    *slog.Logger
	logCloser io.Closer
}

// New loads configuration from the environment and args and wires the gateway.
func New(args []string) (*App, error) {
	cfg, err := config.Load(args)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return NewWithConfig(cfg)
}

func NewWithConfig(cfg *config.Config) (*App, error) {
	logger, logCloser := logging.New(cfg.Log)

	// Dependencies
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	pipelineSvc, err := gatewaypipeline.New(gatewaypipeline.Options{
		CacheSize:  cfg.Cache.Size,
		Registerer: registry,
		Logger:     logger,
	})
	if err != nil {
		_ = logCloser.Close()
		return nil, fmt.Errorf("failed to create pipeline service: %w", err)
	}

	handlers := server.Handlers{
		Health:      handler.NewHealthHandler(cfg.ServiceName, cfg.Version),
		Pipeline:    handler.NewPipelineHandler(pipelineSvc, cfg.MaxBodyBytes, logger),
		PipelineRPC: rpc.NewPipelineHandler(pipelineSvc, cfg.ServiceName, logger),
		PipelineWS:  rpc.NewPipelineWSHandler(pipelineSvc, cfg.CORS.AllowedOrigins, logger),
		Metrics:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}

	// Routing & Server
	mux := server.NewMux(handlers, cfg.CORS, logger)
	srv := server.New(cfg.Port, mux, logger)

	logger.Debug("gateway configured",
		"env", cfg.Env,
		"port", cfg.Port,
		"cors_origins", cfg.CORS.AllowedOrigins,
		"report_cache_size", cfg.Cache.Size,
	)
	return &App{
		server:    srv,
		handler:   mux,
		logger:    logger,
		logCloser: logCloser,
	}, nil
}

// Handler exposes the fully wrapped mux, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.handler
}

func (a *App) Logger() *slog.Logger {
	return a.logger
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Serve(ln net.Listener) error {
	return a.server.Serve(ln)
}

func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	return errors.Join(err, a.logCloser.Close())
}
