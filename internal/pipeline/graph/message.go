package graph

import (
	"fmt"
	"strings"
)

// ComposeMessage summarises a check for humans. The first matching case wins.
func ComposeMessage(numNodes, numEdges int, isDAG bool, errs []string) string {
	if len(errs) > 0 {
		return "Pipeline validation failed: " + strings.Join(errs, "; ")
	}
	if numNodes == 0 {
		return "Empty pipeline (no nodes)"
	}
	if numNodes == 1 {
		return "Single node pipeline created. Add more nodes and connect them to build a workflow."
	}
	if numEdges == 0 {
		return fmt.Sprintf("Pipeline has %d node(s) but no connections", numNodes)
	}
	if isDAG {
		return fmt.Sprintf("Valid pipeline with %d node(s) and %d connection(s). Pipeline forms a valid DAG (no cycles).", numNodes, numEdges)
	}
	return fmt.Sprintf("Pipeline has %d node(s) and %d connection(s), but contains cycles. DAG validation failed.", numNodes, numEdges)
}
