// Package graph validates pipeline graphs submitted by the editor: structural
// checks first, then a Kahn topological pass to decide whether the graph is a
// DAG, then a summary message. Every function here is pure and safe to call
// concurrently.
package graph

// Check runs the full validation for one submission.
func Check(sub Submission) Report {
	errs := ValidateStructure(sub.Nodes, sub.Edges)

	isDAG := false
	if len(errs) == 0 {
		isDAG = IsAcyclic(sub.Nodes, sub.Edges)
	}

	return Report{
		NumNodes:         len(sub.Nodes),
		NumEdges:         len(sub.Edges),
		IsDAG:            isDAG,
		ValidationErrors: errs,
		Message:          ComposeMessage(len(sub.Nodes), len(sub.Edges), isDAG, errs),
	}
}
