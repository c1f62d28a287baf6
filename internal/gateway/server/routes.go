package server

import (
	"log/slog"
	"net/http"

	"pipelinecheck/internal/gateway/config"
	"pipelinecheck/internal/gateway/handler"
	"pipelinecheck/internal/gateway/handler/rpc"
	"pipelinecheck/internal/gateway/middleware"
)

type Handlers struct {
	Health      *handler.HealthHandler
	Pipeline    *handler.PipelineHandler
	PipelineRPC *rpc.PipelineHandler
	PipelineWS  *rpc.PipelineWSHandler
	Metrics     http.Handler
}

func NewMux(h Handlers, cors config.CORSConfig, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	// RPC Handlers
	mux.Handle(rpc.NewPipelineServiceHandler(h.PipelineRPC))

	// HTTP Handlers
	mux.HandleFunc("/", h.Health.HandleRoot)
	mux.HandleFunc("/health", h.Health.HandleHealth)
	mux.HandleFunc("/pipelines/parse", h.Pipeline.HandleParse)
	mux.HandleFunc("/pipelines/ws", h.PipelineWS.HandlePipelineWS)
	if h.Metrics != nil {
		mux.Handle("/metrics", h.Metrics)
	}

	// Middleware
	return middleware.Chain(mux,
		middleware.Recover(logger),
		middleware.Logging(logger),
		middleware.CORS(cors),
	)
}
