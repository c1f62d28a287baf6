package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"pipelinecheck/internal/gateway/schema"
)

// PipelineHandler serves the JSON endpoint used by the editor's submit button.
type PipelineHandler struct {
	svc     Checker
	maxBody int64
	logger  *slog.Logger
}

func NewPipelineHandler(svc Checker, maxBody int64, logger *slog.Logger) *PipelineHandler {
	return &PipelineHandler{svc: svc, maxBody: maxBody, logger: logger}
}

// HandleParse accepts a submission and answers with its report. Shape errors
// are 422 with a detail list; anything unexpected is a generic 500.
func (h *PipelineHandler) HandleParse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]any{
				"detail": "request body too large",
			})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"detail": "could not read request body",
		})
		return
	}

	sub, err := schema.Decode(body)
	if err != nil {
		var shapeErr *schema.ShapeError
		if errors.As(err, &shapeErr) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"detail": shapeErr.Details,
			})
			return
		}
		h.logger.ErrorContext(r.Context(), "decode pipeline payload", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"detail": "Error processing pipeline: " + err.Error(),
		})
		return
	}

	report, err := h.svc.Check(r.Context(), sub)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "check pipeline", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"detail": "Error processing pipeline: " + err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, report)
}
