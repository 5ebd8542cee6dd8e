package graphgen

import (
	"fmt"

	"galp/internal/graph"
)

func edge(a, b, w int) graph.Edge {
	return graph.Edge{A: a, B: b, Weight: w}
}

// ExampleEdges is the nine-node reference graph.
func ExampleEdges(n int) ([]graph.Edge, error) {
	if n != 9 {
		return nil, fmt.Errorf("example graph needs exactly 9 nodes, got %d: %w", n, ErrBadSize)
	}
	return []graph.Edge{
		edge(1, 2, 3), edge(1, 4, 2), edge(1, 9, 4), edge(2, 8, 4), edge(3, 4, 6),
		edge(3, 6, 1), edge(3, 8, 2), edge(4, 5, 1), edge(5, 9, 8), edge(6, 7, 8),
	}, nil
}

// RingTrickyEdges is a ring where every edge weighs 2 except the closing
// edge 1-n, which weighs 1.
func RingTrickyEdges(n int) ([]graph.Edge, error) {
	if n < 3 {
		return nil, fmt.Errorf("ring needs at least 3 nodes, got %d: %w", n, ErrBadSize)
	}
	edges := []graph.Edge{edge(1, n, 1)}
	for i := 1; i < n; i++ {
		edges = append(edges, edge(i, i+1, 2))
	}
	return edges, nil
}

// RingAscendingEdges is a ring whose edge i-(i+1) weighs i+1 and whose
// closing edge 1-n weighs 1.
func RingAscendingEdges(n int) ([]graph.Edge, error) {
	if n < 3 {
		return nil, fmt.Errorf("ring needs at least 3 nodes, got %d: %w", n, ErrBadSize)
	}
	edges := []graph.Edge{edge(1, n, 1)}
	for i := 1; i < n; i++ {
		edges = append(edges, edge(i, i+1, i+1))
	}
	return edges, nil
}

// KiteEdges chains (n-1)/3 diamonds, each sharing a corner with the next.
func KiteEdges(n int) ([]graph.Edge, error) {
	if n < 4 || n%3 != 1 {
		return nil, fmt.Errorf("kite needs 3k+1 nodes with k >= 1, got %d: %w", n, ErrBadSize)
	}
	var edges []graph.Edge
	for i := 0; i < n/3; i++ {
		edges = append(edges,
			edge(3*i+1, 3*i+2, 3),
			edge(3*i+1, 3*i+3, 1),
			edge(3*i+2, 3*i+4, 1),
			edge(3*i+3, 3*i+4, 1),
		)
	}
	return edges, nil
}

// AntiLoopEdges builds a chain whose heavy end edges reward walking straight
// through while a shortcut from 2 to n-1 tempts an early loop.
func AntiLoopEdges(n int) ([]graph.Edge, error) {
	if n < 4 {
		return nil, fmt.Errorf("anti-loop needs at least 4 nodes, got %d: %w", n, ErrBadSize)
	}
	m := n - 1
	edges := []graph.Edge{edge(1, 2, 5*m), edge(2, m, m-3)}
	for i := 2; i < m; i++ {
		edges = append(edges, edge(i, i+1, 1))
	}
	edges = append(edges, edge(m, m+1, 5*m))
	return edges, nil
}

// SimpleComponentsEdges is a seven-node graph with two components.
func SimpleComponentsEdges(n int) ([]graph.Edge, error) {
	if n != 7 {
		return nil, fmt.Errorf("simple components graph needs exactly 7 nodes, got %d: %w", n, ErrBadSize)
	}
	return []graph.Edge{
		edge(1, 5, 3), edge(2, 4, 1), edge(3, 4, 5), edge(4, 5, 5), edge(6, 7, 5),
	}, nil
}
