package graph

import "fmt"

const (
	errNoNodes        = "Pipeline must contain at least one node"
	errDuplicateNodes = "Duplicate node IDs found"
	errDuplicateEdges = "Duplicate edge IDs found"
)

// ValidateStructure reports structural problems in edge order. Every edge is
// checked for a missing source, a missing target and a self-loop
// independently, so one edge can produce up to three messages.
// The returned slice is never nil.
func ValidateStructure(nodes []Node, edges []Edge) []string {
	errs := []string{}
	if len(nodes) == 0 {
		return append(errs, errNoNodes)
	}

	known := make(map[NodeID]struct{}, len(nodes))
	for _, n := range nodes {
		known[n.ID] = struct{}{}
	}
	if len(known) < len(nodes) {
		errs = append(errs, errDuplicateNodes)
	}

	edgeIDs := make(map[EdgeID]struct{}, len(edges))
	for _, e := range edges {
		edgeIDs[e.ID] = struct{}{}
	}
	if len(edgeIDs) < len(edges) {
		errs = append(errs, errDuplicateEdges)
	}

	for _, e := range edges {
		if _, ok := known[e.Source]; !ok {
			errs = append(errs, fmt.Sprintf("Edge %s references non-existent source node: %s", e.ID, e.Source))
		}
		if _, ok := known[e.Target]; !ok {
			errs = append(errs, fmt.Sprintf("Edge %s references non-existent target node: %s", e.ID, e.Target))
		}
		if e.Source == e.Target {
			errs = append(errs, fmt.Sprintf("Edge %s creates a self-loop (node connecting to itself)", e.ID))
		}
	}
	return errs
}
