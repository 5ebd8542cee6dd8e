package graph

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// ConnectedComponents partitions nodes 1..n by the given edges. Isolated nodes
// form singleton components. Each component is sorted ascending and
// components are ordered by their smallest node. Edges touching nodes outside
// 1..n, and self loops, are ignored.
func ConnectedComponents(edges []Edge, n int) [][]int {
	if n <= 0 {
		return nil
	}
	ug := simple.NewUndirectedGraph()
	for i := 1; i <= n; i++ {
		ug.AddNode(simple.Node(i))
	}
	for _, e := range edges {
		if e.A < 1 || e.A > n || e.B < 1 || e.B > n || e.A == e.B {
			continue
		}
		ug.SetEdge(ug.NewEdge(simple.Node(e.A), simple.Node(e.B)))
	}

	found := topo.ConnectedComponents(ug)
	comps := make([][]int, 0, len(found))
	for _, members := range found {
		comp := make([]int, len(members))
		for i, node := range members {
			comp[i] = int(node.ID())
		}
		sort.Ints(comp)
		comps = append(comps, comp)
	}
	sort.Slice(comps, func(i, j int) bool { return comps[i][0] < comps[j][0] })
	return comps
}

// LargestComponent returns the nodes of the largest component; ties go to the
// component with the smallest node.
func LargestComponent(edges []Edge, n int) []int {
	var best []int
	for _, c := range ConnectedComponents(edges, n) {
		if len(c) > len(best) {
			best = c
		}
	}
	return best
}

// FilterToComponent keeps the edges internal to nodes and re-indexes them to
// 1..len(nodes) in the order nodes are given.
func FilterToComponent(edges []Edge, nodes []int) []Edge {
	if len(nodes) == 0 {
		return nil
	}
	oldToNew := make(map[int]int, len(nodes))
	for newIdx, oldIdx := range nodes {
		oldToNew[oldIdx] = newIdx + 1
	}

	var out []Edge
	for _, e := range edges {
		a, okA := oldToNew[e.A]
		b, okB := oldToNew[e.B]
		if !okA || !okB {
			continue
		}
		if a > b {
			a, b = b, a
		}
		out = append(out, Edge{A: a, B: b, Weight: e.Weight})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].A == out[j].A {
			return out[i].B < out[j].B
		}
		return out[i].A < out[j].A
	})
	return out
}
