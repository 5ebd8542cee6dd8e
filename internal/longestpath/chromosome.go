package longestpath

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"

	"galp/internal/graph"
)

var (
	ErrInvalidProbability = errors.New("mutation probability must be in [0, 1]")
	ErrInvalidGene        = errors.New("invalid gene")
	ErrUnknownCrossover   = errors.New("unknown crossover strategy")
)

// PathChromosome encodes a walk as a preference array: slot 0 holds the start
// node and slot i holds the node that i moves to next, or 0 when i has no
// neighbors.
type PathChromosome struct {
	graph    *graph.Graph
	prefs    []int
	strategy CrossoverStrategy
	// mutateStart lets Mutate move slot 0.
	mutateStart bool
}

// NewPathChromosome draws a random start node and a random neighbor for every
// node that has one.
func NewPathChromosome(g *graph.Graph, strategy CrossoverStrategy, rng *rand.Rand) (*PathChromosome, error) {
	if g == nil {
		return nil, errors.New("graph is required")
	}
	if rng == nil {
		return nil, graph.ErrNeedRandSource
	}
	n := g.NodeCount()
	prefs := make([]int, n+1)
	prefs[0] = rng.Intn(n) + 1
	for i := 1; i <= n; i++ {
		if g.Degree(i) == 0 {
			continue
		}
		next, err := g.RandomNeighbor(i, rng)
		if err != nil {
			return nil, err
		}
		prefs[i] = next
	}
	return &PathChromosome{graph: g, prefs: prefs, strategy: strategy}, nil
}

// FromPrefs wraps an explicit preference array. Every non-zero slot i >= 1
// must name a neighbor of i.
func FromPrefs(g *graph.Graph, strategy CrossoverStrategy, prefs []int) (*PathChromosome, error) {
	if g == nil {
		return nil, errors.New("graph is required")
	}
	c := &PathChromosome{graph: g, prefs: make([]int, g.NodeCount()+1), strategy: strategy}
	if len(prefs) != len(c.prefs) {
		return nil, fmt.Errorf("got %d slots for %d nodes: %w", len(prefs), g.NodeCount(), ErrInvalidGene)
	}
	for i, v := range prefs {
		if err := c.SetGene(i, v); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *PathChromosome) Graph() *graph.Graph {
	return c.graph
}

func (c *PathChromosome) Strategy() CrossoverStrategy {
	return c.strategy
}

// Prefs returns a copy of the preference array.
func (c *PathChromosome) Prefs() []int {
	return append([]int(nil), c.prefs...)
}

// SetGene overwrites one slot. Slot 0 takes a node in 1..N; other slots take
// 0 or a neighbor of the slot's node.
func (c *PathChromosome) SetGene(i, v int) error {
	n := c.graph.NodeCount()
	if i < 0 || i > n {
		return fmt.Errorf("slot %d of %d: %w", i, n, ErrInvalidGene)
	}
	if i == 0 {
		if v < 1 || v > n {
			return fmt.Errorf("start node %d: %w", v, ErrInvalidGene)
		}
		c.prefs[0] = v
		return nil
	}
	if v != 0 {
		w, err := c.graph.Edge(i, v)
		if err != nil {
			return fmt.Errorf("slot %d: %w", i, err)
		}
		if w == graph.NoEdge {
			return fmt.Errorf("slot %d: %d is not a neighbor: %w", i, v, ErrInvalidGene)
		}
	}
	c.prefs[i] = v
	return nil
}

// Path traces the walk encoded by the chromosome.
func (c *PathChromosome) Path() graph.Path {
	p, err := c.graph.Path(c.prefs)
	if err != nil {
		// prefs are validated on every write.
		panic(err)
	}
	return p
}

func (c *PathChromosome) PathLength() int {
	return c.Path().Weight
}

func (c *PathChromosome) Value() float64 {
	return float64(c.PathLength())
}

// Text renders "(start | p1, p2, ...) - [weight | n1, n2, ...]".
func (c *PathChromosome) Text() string {
	var b strings.Builder
	b.WriteString("(")
	b.WriteString(strconv.Itoa(c.prefs[0]))
	b.WriteString(" | ")
	writeInts(&b, c.prefs[1:])
	b.WriteString(") - [")
	p := c.Path()
	b.WriteString(strconv.Itoa(p.Weight))
	b.WriteString(" | ")
	writeInts(&b, p.Nodes)
	b.WriteString("]")
	return b.String()
}

func writeInts(b *strings.Builder, vs []int) {
	for i, v := range vs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.Itoa(v))
	}
}

func (c *PathChromosome) Clone() *PathChromosome {
	return &PathChromosome{graph: c.graph, prefs: c.Prefs(), strategy: c.strategy, mutateStart: c.mutateStart}
}

// Mutate rerolls each node slot with the given probability. A node slot moves
// to a different neighbor only when the node has more than one. The start
// slot is left alone unless the chromosome was created by a Problem built
// with WithStartMutation, in which case it moves to a different node when
// the graph has more than one.
func (c *PathChromosome) Mutate(probability float64, rng *rand.Rand) error {
	if math.IsNaN(probability) || probability < 0 || probability > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidProbability, probability)
	}
	if rng == nil {
		return graph.ErrNeedRandSource
	}
	n := c.graph.NodeCount()
	for i := range c.prefs {
		if rng.Float64() >= probability {
			continue
		}
		if i == 0 {
			if c.mutateStart && n > 1 {
				next := rng.Intn(n-1) + 1
				if next >= c.prefs[0] {
					next++
				}
				c.prefs[0] = next
			}
			continue
		}
		nbrs := c.graph.NeighborList(i)
		if len(nbrs) < 2 {
			continue
		}
		old := c.prefs[i]
		for c.prefs[i] == old {
			c.prefs[i] = nbrs[rng.Intn(len(nbrs))]
		}
	}
	return nil
}
