package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"pipelinecheck/internal/gateway/handler"
	"pipelinecheck/internal/gateway/schema"
	"pipelinecheck/internal/pipeline/graph"
)

const (
	PipelineServiceName = "pipeline.v1.PipelineService"

	ParsePipelineProcedure = "/" + PipelineServiceName + "/ParsePipeline"
	PingProcedure          = "/" + PipelineServiceName + "/Ping"
)

type PingRequest struct{}

type PingResponse struct {
	Ping    string `json:"Ping"`
	Message string `json:"message"`
}

// PipelineHandler is the Connect surface of the pipeline service.
type PipelineHandler struct {
	svc     handler.Checker
	service string
	logger  *slog.Logger
}

func NewPipelineHandler(svc handler.Checker, service string, logger *slog.Logger) *PipelineHandler {
	return &PipelineHandler{svc: svc, service: service, logger: logger}
}

// ParsePipeline takes the raw submission so the same schema check as the
// JSON endpoint runs before the graph is built.
func (h *PipelineHandler) ParsePipeline(ctx context.Context, req *connect.Request[json.RawMessage]) (*connect.Response[graph.Report], error) {
	var raw []byte
	if req.Msg != nil {
		raw = *req.Msg
	}
	sub, err := schema.Decode(raw)
	if err != nil {
		return nil, toPipelineError(err)
	}
	report, err := h.svc.Check(ctx, sub)
	if err != nil {
		h.logger.ErrorContext(ctx, "rpc check pipeline", "error", err)
		return nil, toPipelineError(err)
	}
	return connect.NewResponse(&report), nil
}

func (h *PipelineHandler) Ping(_ context.Context, _ *connect.Request[PingRequest]) (*connect.Response[PingResponse], error) {
	return connect.NewResponse(&PingResponse{
		Ping:    "Pong",
		Message: h.service + " is running",
	}), nil
}

func toPipelineError(err error) error {
	if schema.IsShapeError(err) {
		return connect.NewError(connect.CodeInvalidArgument, err)
	}
	return connect.NewError(connect.CodeInternal, fmt.Errorf("error processing pipeline: %w", err))
}

// NewPipelineServiceHandler builds the HTTP handler for every procedure of
// the service and returns the path prefix to mount it on.
func NewPipelineServiceHandler(h *PipelineHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)
	parse := connect.NewUnaryHandler(ParsePipelineProcedure, h.ParsePipeline, opts...)
	ping := connect.NewUnaryHandler(PingProcedure, h.Ping, opts...)
	return "/" + PipelineServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case ParsePipelineProcedure:
			parse.ServeHTTP(w, r)
		case PingProcedure:
			ping.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}
