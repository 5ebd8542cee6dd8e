package graph

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
)

// NoEdge is returned by Edge when two nodes are not adjacent.
const NoEdge = -1

var (
	ErrNodeOutOfRange = errors.New("node index out of range")
	ErrInvalidEdge    = errors.New("invalid edge")
	ErrNoNeighbors    = errors.New("node has no neighbors")
	ErrInvalidPrefs   = errors.New("invalid preference array")
	ErrEmptyGraph     = errors.New("graph requires at least one node")
	ErrNeedRandSource = errors.New("random source is required")
)

// Edge is an undirected weighted edge between nodes A and B.
type Edge struct {
	A      int `json:"a"`
	B      int `json:"b"`
	Weight int `json:"weight"`
}

// Path is the walk induced by a preference array.
type Path struct {
	Weight int   `json:"weight"`
	Nodes  []int `json:"nodes"`
}

// Graph is a weighted undirected graph over nodes 1..N. Slot 0 is reserved
// and never has neighbors.
type Graph struct {
	nodeCount int
	adj       []map[int]int
	nbrs      [][]int
}

// New builds a graph from edge triples. Each triple is stored in both
// directions; a repeated pair keeps the last weight.
func New(edges []Edge, nodeCount int) (*Graph, error) {
	if nodeCount < 1 {
		return nil, ErrEmptyGraph
	}
	g := &Graph{
		nodeCount: nodeCount,
		adj:       make([]map[int]int, nodeCount+1),
		nbrs:      make([][]int, nodeCount+1),
	}
	for i := range g.adj {
		g.adj[i] = make(map[int]int)
	}
	for _, e := range edges {
		if e.A < 1 || e.A > nodeCount || e.B < 1 || e.B > nodeCount {
			return nil, fmt.Errorf("edge %d-%d with %d nodes: %w", e.A, e.B, nodeCount, ErrNodeOutOfRange)
		}
		if e.A == e.B {
			return nil, fmt.Errorf("self loop on node %d: %w", e.A, ErrInvalidEdge)
		}
		if e.Weight < 0 {
			return nil, fmt.Errorf("edge %d-%d weight %d: %w", e.A, e.B, e.Weight, ErrInvalidEdge)
		}
		g.adj[e.A][e.B] = e.Weight
		g.adj[e.B][e.A] = e.Weight
	}
	for i := 1; i <= nodeCount; i++ {
		ns := make([]int, 0, len(g.adj[i]))
		for n := range g.adj[i] {
			ns = append(ns, n)
		}
		sort.Ints(ns)
		g.nbrs[i] = ns
	}
	return g, nil
}

// MustNew is New for fixtures that are known to be valid.
func MustNew(edges []Edge, nodeCount int) *Graph {
	g, err := New(edges, nodeCount)
	if err != nil {
		panic(err)
	}
	return g
}

func (g *Graph) NodeCount() int {
	return g.nodeCount
}

func (g *Graph) checkNode(i int) error {
	if i < 0 || i > g.nodeCount {
		return fmt.Errorf("node %d with %d nodes: %w", i, g.nodeCount, ErrNodeOutOfRange)
	}
	return nil
}

// Edge returns the weight between i and j, or NoEdge. The entry hosted by the
// lower node is read so lookups are symmetric.
func (g *Graph) Edge(i, j int) (int, error) {
	if err := g.checkNode(i); err != nil {
		return NoEdge, err
	}
	if err := g.checkNode(j); err != nil {
		return NoEdge, err
	}
	if i > j {
		i, j = j, i
	}
	w, ok := g.adj[i][j]
	if !ok {
		return NoEdge, nil
	}
	return w, nil
}

func (g *Graph) Degree(i int) int {
	if i < 0 || i > g.nodeCount {
		return 0
	}
	return len(g.nbrs[i])
}

// RandomNeighbor samples a neighbor of i uniformly.
func (g *Graph) RandomNeighbor(i int, rng *rand.Rand) (int, error) {
	if rng == nil {
		return 0, ErrNeedRandSource
	}
	if err := g.checkNode(i); err != nil {
		return 0, err
	}
	ns := g.nbrs[i]
	if len(ns) == 0 {
		return 0, fmt.Errorf("node %d: %w", i, ErrNoNeighbors)
	}
	return ns[rng.Intn(len(ns))], nil
}

// Neighbors returns a copy of the adjacency of node i.
func (g *Graph) Neighbors(i int) map[int]int {
	out := make(map[int]int)
	if i < 0 || i > g.nodeCount {
		return out
	}
	for n, w := range g.adj[i] {
		out[n] = w
	}
	return out
}

// NeighborList returns the sorted neighbors of node i.
func (g *Graph) NeighborList(i int) []int {
	if i < 0 || i > g.nodeCount {
		return nil
	}
	return append([]int(nil), g.nbrs[i]...)
}

// Edges lists every edge once with A < B, sorted by (A, B).
func (g *Graph) Edges() []Edge {
	var out []Edge
	for i := 1; i <= g.nodeCount; i++ {
		for _, j := range g.nbrs[i] {
			if j > i {
				out = append(out, Edge{A: i, B: j, Weight: g.adj[i][j]})
			}
		}
	}
	return out
}

// Path walks from prefs[0], following prefs[current] while the hop is a real
// edge to an unvisited node.
func (g *Graph) Path(prefs []int) (Path, error) {
	if len(prefs) != g.nodeCount+1 {
		return Path{}, fmt.Errorf("got %d slots for %d nodes: %w", len(prefs), g.nodeCount, ErrInvalidPrefs)
	}
	for i, p := range prefs {
		if p < 0 || p > g.nodeCount {
			return Path{}, fmt.Errorf("slot %d holds %d: %w", i, p, ErrInvalidPrefs)
		}
	}
	start := prefs[0]
	if start == 0 {
		return Path{}, fmt.Errorf("start node is 0: %w", ErrInvalidPrefs)
	}

	visited := make([]bool, g.nodeCount+1)
	path := Path{Nodes: make([]int, 0, 8)}
	cur := start
	for {
		visited[cur] = true
		path.Nodes = append(path.Nodes, cur)
		next := prefs[cur]
		if next == 0 || visited[next] {
			break
		}
		w, ok := g.adj[cur][next]
		if !ok {
			break
		}
		path.Weight += w
		cur = next
	}
	return path, nil
}

// Oneify sets every edge weight to 1.
func (g *Graph) Oneify() {
	for i := range g.adj {
		for n := range g.adj[i] {
			g.adj[i][n] = 1
		}
	}
}

func (g *Graph) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "graph nodes=%d\n", g.nodeCount)
	for _, e := range g.Edges() {
		fmt.Fprintf(&b, "%d - %d : %d\n", e.A, e.B, e.Weight)
	}
	return b.String()
}
