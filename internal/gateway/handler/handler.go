package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"pipelinecheck/internal/pipeline/graph"
)

// Checker is the part of the pipeline service the transports depend on.
type Checker interface {
	Check(ctx context.Context, sub graph.Submission) (graph.Report, error)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
