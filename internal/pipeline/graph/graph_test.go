package graph

import (
	"reflect"
	"testing"
)

func nodes(ids ...string) []Node {
	out := make([]Node, 0, len(ids))
	for i, id := range ids {
		out = append(out, Node{
			ID:       NodeID(id),
			Type:     "customInput",
			Position: Position{X: float64(i * 100), Y: 50},
			Data:     map[string]any{"label": id},
		})
	}
	return out
}

func edge(id, source, target string) Edge {
	return Edge{ID: EdgeID(id), Source: NodeID(source), Target: NodeID(target)}
}

func TestValidateStructure(t *testing.T) {
	cases := []struct {
		name  string
		nodes []Node
		edges []Edge
		want  []string
	}{
		{
			name: "no nodes stops early",
			edges: []Edge{
				edge("e1", "a", "b"),
				edge("e1", "c", "c"),
			},
			want: []string{"Pipeline must contain at least one node"},
		},
		{
			name:  "clean graph",
			nodes: nodes("a", "b"),
			edges: []Edge{edge("e1", "a", "b")},
			want:  []string{},
		},
		{
			name:  "many duplicate nodes yield one error",
			nodes: nodes("a", "a", "b", "b", "b"),
			want:  []string{"Duplicate node IDs found"},
		},
		{
			name:  "duplicate edges",
			nodes: nodes("a", "b", "c"),
			edges: []Edge{edge("e1", "a", "b"), edge("e1", "b", "c")},
			want:  []string{"Duplicate edge IDs found"},
		},
		{
			name:  "dangling references keep edge order",
			nodes: nodes("a"),
			edges: []Edge{edge("e1", "x", "a"), edge("e2", "a", "y")},
			want: []string{
				"Edge e1 references non-existent source node: x",
				"Edge e2 references non-existent target node: y",
			},
		},
		{
			name:  "self loop on existing node",
			nodes: nodes("a", "b"),
			edges: []Edge{edge("loop", "a", "a")},
			want:  []string{"Edge loop creates a self-loop (node connecting to itself)"},
		},
		{
			name:  "missing self loop reports all three",
			nodes: nodes("a"),
			edges: []Edge{edge("e9", "ghost", "ghost")},
			want: []string{
				"Edge e9 references non-existent source node: ghost",
				"Edge e9 references non-existent target node: ghost",
				"Edge e9 creates a self-loop (node connecting to itself)",
			},
		},
		{
			name:  "summary errors come before edge errors",
			nodes: nodes("a", "a"),
			edges: []Edge{edge("e1", "a", "b"), edge("e1", "a", "a")},
			want: []string{
				"Duplicate node IDs found",
				"Duplicate edge IDs found",
				"Edge e1 references non-existent target node: b",
				"Edge e1 creates a self-loop (node connecting to itself)",
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ValidateStructure(tc.nodes, tc.edges)
			if got == nil {
				t.Fatalf("ValidateStructure() returned nil slice")
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("ValidateStructure() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestIsAcyclic(t *testing.T) {
	cases := []struct {
		name  string
		nodes []Node
		edges []Edge
		want  bool
	}{
		{name: "empty", want: true},
		{name: "no edges", nodes: nodes("a", "b", "c"), want: true},
		{
			name:  "chain",
			nodes: nodes("A", "B", "C"),
			edges: []Edge{edge("e1", "A", "B"), edge("e2", "B", "C")},
			want:  true,
		},
		{
			name:  "triangle cycle",
			nodes: nodes("A", "B", "C"),
			edges: []Edge{edge("e1", "A", "B"), edge("e2", "B", "C"), edge("e3", "C", "A")},
			want:  false,
		},
		{
			name:  "two node cycle",
			nodes: nodes("A", "B"),
			edges: []Edge{edge("e1", "A", "B"), edge("e2", "B", "A")},
			want:  false,
		},
		{
			name:  "diamond",
			nodes: nodes("A", "B", "C", "D"),
			edges: []Edge{edge("e1", "A", "B"), edge("e2", "A", "C"), edge("e3", "B", "D"), edge("e4", "C", "D")},
			want:  true,
		},
		{
			name:  "parallel edges count twice",
			nodes: nodes("A", "B"),
			edges: []Edge{edge("e1", "A", "B"), edge("e2", "A", "B")},
			want:  true,
		},
		{
			name:  "cycle downstream of a source",
			nodes: nodes("S", "A", "B"),
			edges: []Edge{edge("e1", "S", "A"), edge("e2", "A", "B"), edge("e3", "B", "A")},
			want:  false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsAcyclic(tc.nodes, tc.edges); got != tc.want {
				t.Fatalf("IsAcyclic() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestVisitCountStopsAtCycle(t *testing.T) {
	cyclic := newAdjacency(nodes("A", "B", "C"), []Edge{edge("e1", "A", "B"), edge("e2", "B", "C"), edge("e3", "C", "A")})
	if got := cyclic.visit(); got >= 3 {
		t.Fatalf("visit() on cycle = %d, want < 3", got)
	}

	tail := newAdjacency(nodes("S", "A", "B"), []Edge{edge("e1", "S", "A"), edge("e2", "A", "B"), edge("e3", "B", "A")})
	if got := tail.visit(); got != 1 {
		t.Fatalf("visit() with cycle after source = %d, want 1", got)
	}
}

func TestIsAcyclicDoesNotMutateInput(t *testing.T) {
	ns := nodes("A", "B", "C")
	es := []Edge{edge("e1", "A", "B"), edge("e2", "B", "C")}
	nsCopy := append([]Node(nil), ns...)
	esCopy := append([]Edge(nil), es...)

	IsAcyclic(ns, es)

	if !reflect.DeepEqual(ns, nsCopy) || !reflect.DeepEqual(es, esCopy) {
		t.Fatalf("IsAcyclic modified its input")
	}
}

func TestAdjacencyKeepsOrder(t *testing.T) {
	adj := newAdjacency(nodes("c", "a", "b"), []Edge{
		edge("e1", "a", "c"),
		edge("e2", "a", "b"),
		edge("e3", "a", "c"),
	})
	if want := []NodeID{"c", "a", "b"}; !reflect.DeepEqual(adj.order, want) {
		t.Fatalf("order = %v, want %v", adj.order, want)
	}
	if want := []NodeID{"c", "b", "c"}; !reflect.DeepEqual(adj.targets["a"], want) {
		t.Fatalf("targets[a] = %v, want %v", adj.targets["a"], want)
	}
	if got := adj.inDegrees()["c"]; got != 2 {
		t.Fatalf("indegree[c] = %d, want 2", got)
	}
}
