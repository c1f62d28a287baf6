package graph

// NodeID identifies a node within one submission.
type NodeID string

// EdgeID identifies an edge within one submission.
type EdgeID string

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a pipeline step as drawn by the editor. Type, Position and Data are
// carried through untouched; validation only looks at ID.
type Node struct {
	ID       NodeID         `json:"id"`
	Type     string         `json:"type"`
	Position Position       `json:"position"`
	Data     map[string]any `json:"data"`
}

// Edge is a directed connection from Source to Target.
type Edge struct {
	ID           EdgeID  `json:"id"`
	Source       NodeID  `json:"source"`
	Target       NodeID  `json:"target"`
	SourceHandle *string `json:"sourceHandle,omitempty"`
	TargetHandle *string `json:"targetHandle,omitempty"`
}

// Submission is one graph as received from a client.
type Submission struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Report is the result of checking a Submission.
type Report struct {
	NumNodes         int      `json:"num_nodes"`
	NumEdges         int      `json:"num_edges"`
	IsDAG            bool     `json:"is_dag"`
	ValidationErrors []string `json:"validation_errors"`
	Message          string   `json:"message"`
}

// Outcome labels a report for metrics and logs.
type Outcome string

const (
	OutcomeInvalid      Outcome = "invalid"
	OutcomeEmpty        Outcome = "empty"
	OutcomeSingle       Outcome = "single"
	OutcomeDisconnected Outcome = "disconnected"
	OutcomeValid        Outcome = "valid"
	OutcomeCyclic       Outcome = "cyclic"
)

// Outcome follows the same precedence as ComposeMessage.
func (r Report) Outcome() Outcome {
	switch {
	case len(r.ValidationErrors) > 0:
		return OutcomeInvalid
	case r.NumNodes == 0:
		return OutcomeEmpty
	case r.NumNodes == 1:
		return OutcomeSingle
	case r.NumEdges == 0:
		return OutcomeDisconnected
	case r.IsDAG:
		return OutcomeValid
	default:
		return OutcomeCyclic
	}
}

// Clone returns a copy that shares no slices with r.
func (r Report) Clone() Report {
	out := r
	out.ValidationErrors = append([]string{}, r.ValidationErrors...)
	return out
}
