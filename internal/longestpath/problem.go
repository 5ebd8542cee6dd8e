package longestpath

import (
	"errors"
	"math/rand"

	"galp/internal/graph"
)

// Problem searches for the longest simple walk on a fixed graph.
type Problem struct {
	graph       *graph.Graph
	strategy    CrossoverStrategy
	mutateStart bool
}

type ProblemOption func(*Problem)

// WithStartMutation lets mutation move the start node of chromosomes the
// problem creates. Without it the start node changes only by crossover or
// local search.
func WithStartMutation() ProblemOption {
	return func(p *Problem) { p.mutateStart = true }
}

func NewProblem(g *graph.Graph, strategy CrossoverStrategy, opts ...ProblemOption) (*Problem, error) {
	if g == nil {
		return nil, errors.New("graph is required")
	}
	if !strategy.Valid() {
		return nil, ErrUnknownCrossover
	}
	p := &Problem{graph: g, strategy: strategy}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *Problem) Graph() *graph.Graph {
	return p.graph
}

func (p *Problem) CreateChromosome(rng *rand.Rand) (*PathChromosome, error) {
	c, err := NewPathChromosome(p.graph, p.strategy, rng)
	if err != nil {
		return nil, err
	}
	c.mutateStart = p.mutateStart
	return c, nil
}

func (p *Problem) Evaluate(c *PathChromosome) float64 {
	return c.Value()
}
