package graph

// adjacency maps each node to its outgoing targets. Keys keep node order and
// targets keep edge order; parallel edges repeat a target.
type adjacency struct {
	order   []NodeID
	targets map[NodeID][]NodeID
}

func newAdjacency(nodes []Node, edges []Edge) adjacency {
	adj := adjacency{
		order:   make([]NodeID, 0, len(nodes)),
		targets: make(map[NodeID][]NodeID, len(nodes)),
	}
	for _, n := range nodes {
		if _, ok := adj.targets[n.ID]; ok {
			continue
		}
		adj.order = append(adj.order, n.ID)
		adj.targets[n.ID] = nil
	}
	for _, e := range edges {
		if !adj.has(e.Source) || !adj.has(e.Target) {
			continue
		}
		adj.targets[e.Source] = append(adj.targets[e.Source], e.Target)
	}
	return adj
}

func (a adjacency) has(id NodeID) bool {
	_, ok := a.targets[id]
	return ok
}

func (a adjacency) inDegrees() map[NodeID]int {
	deg := make(map[NodeID]int, len(a.order))
	for _, id := range a.order {
		deg[id] = 0
	}
	for _, id := range a.order {
		for _, to := range a.targets[id] {
			deg[to]++
		}
	}
	return deg
}

// visit runs Kahn's algorithm and returns how many nodes were dequeued.
func (a adjacency) visit() int {
	indegree := a.inDegrees()

	queue := make([]NodeID, 0, len(a.order))
	for _, id := range a.order {
		if indegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	visited := 0
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		visited++
		for _, to := range a.targets[cur] {
			indegree[to]--
			if indegree[to] == 0 {
				queue = append(queue, to)
			}
		}
	}
	return visited
}

// IsAcyclic reports whether the graph has no directed cycle. It is meant to be
// called once ValidateStructure returned no errors; the inputs are not
// modified.
func IsAcyclic(nodes []Node, edges []Edge) bool {
	if len(nodes) == 0 {
		return true
	}
	adj := newAdjacency(nodes, edges)
	return adj.visit() == len(nodes)
}
