package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"pipelinecheck/internal/gateway/handler"
	"pipelinecheck/internal/gateway/schema"
	"pipelinecheck/internal/pipeline/graph"
)

const (
	pipelineWSWriteWait = 10 * time.Second
	pipelineWSPongWait  = 60 * time.Second
	pipelineWSPingEvery = (pipelineWSPongWait * 9) / 10
)

type pipelineWSInbound struct {
	Type      string          `json:"type"`
	RequestID string          `json:"requestId,omitempty"`
	Pipeline  json.RawMessage `json:"pipeline,omitempty"`
}

type pipelineWSOutbound struct {
	Type      string        `json:"type"`
	RequestID string        `json:"requestId,omitempty"`
	Report    *graph.Report `json:"report,omitempty"`
	Code      string        `json:"code,omitempty"`
	Message   string        `json:"message,omitempty"`
	Details   []string      `json:"details,omitempty"`
}

// PipelineWSHandler lets the editor re-check the whole graph after every edit
// over one connection. Each "check" message carries a complete submission.
type PipelineWSHandler struct {
	svc      handler.Checker
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewPipelineWSHandler accepts upgrades from the given origins; with none
// configured every origin is accepted.
func NewPipelineWSHandler(svc handler.Checker, allowedOrigins []string, logger *slog.Logger) *PipelineWSHandler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	_, wildcard := allowed["*"]
	return &PipelineWSHandler{
		svc:    svc,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" || wildcard || len(allowed) == 0 {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
	}
}

func (h *PipelineWSHandler) HandlePipelineWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(pipelineWSPongWait)); err != nil {
		h.logger.Warn("pipeline ws set read deadline failed", "error", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pipelineWSPongWait))
	})

	writeCh := make(chan pipelineWSOutbound, 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		// A dead writer must release a read loop waiting to send.
		defer cancel()
		ticker := time.NewTicker(pipelineWSPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(pipelineWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(pipelineWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	for {
		var in pipelineWSInbound
		if err := conn.ReadJSON(&in); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				if !sendPipelineWS(ctx, writeCh, pipelineWSOutbound{
					Type:    "error",
					Code:    "invalid_argument",
					Message: "message is not valid json",
				}) {
					return
				}
				continue
			}
			cancel()
			<-writerDone
			return
		}
		// Any message from the client proves it is alive.
		_ = conn.SetReadDeadline(time.Now().Add(pipelineWSPongWait))

		var out pipelineWSOutbound
		switch strings.ToLower(strings.TrimSpace(in.Type)) {
		case "":
			out = pipelineWSOutbound{
				Type:      "error",
				RequestID: in.RequestID,
				Code:      "invalid_argument",
				Message:   "type is required",
			}
		case "ping":
			out = pipelineWSOutbound{Type: "pong", RequestID: in.RequestID}
		case "check":
			out = h.check(ctx, in)
		default:
			out = pipelineWSOutbound{
				Type:      "error",
				RequestID: in.RequestID,
				Code:      "invalid_argument",
				Message:   "unsupported type: " + in.Type,
			}
		}
		if !sendPipelineWS(ctx, writeCh, out) {
			return
		}
	}
}

func (h *PipelineWSHandler) check(ctx context.Context, in pipelineWSInbound) pipelineWSOutbound {
	sub, err := schema.Decode(in.Pipeline)
	if err != nil {
		out := pipelineWSOutbound{
			Type:      "error",
			RequestID: in.RequestID,
			Code:      "invalid_argument",
			Message:   "invalid pipeline payload",
		}
		var shapeErr *schema.ShapeError
		if errors.As(err, &shapeErr) {
			out.Details = shapeErr.Details
		} else {
			out.Code = "internal"
			out.Message = "Error processing pipeline"
		}
		return out
	}
	report, err := h.svc.Check(ctx, sub)
	if err != nil {
		h.logger.ErrorContext(ctx, "ws check pipeline", "error", err)
		return pipelineWSOutbound{
			Type:      "error",
			RequestID: in.RequestID,
			Code:      "internal",
			Message:   "Error processing pipeline",
		}
	}
	return pipelineWSOutbound{
		Type:      "report",
		RequestID: in.RequestID,
		Report:    &report,
	}
}

// sendPipelineWS queues out for the writer. It waits while the buffer is
// full so no reply is lost, and reports false once the connection is closing.
func sendPipelineWS(ctx context.Context, writeCh chan<- pipelineWSOutbound, out pipelineWSOutbound) bool {
	select {
	case writeCh <- out:
		return true
	case <-ctx.Done():
		return false
	}
}
