package graphgen

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"galp/internal/graph"
)

const (
	DefaultMaxRounds   = 10000
	DefaultMaxAttempts = 1000
)

var (
	ErrInvalidProbability = errors.New("edge probability must be in [0, 1]")
	ErrTooFewVertices     = errors.New("graph requires at least one vertex")
	ErrConstructFailed    = errors.New("could not generate connected graph of requested size/density")
	ErrBadSize            = errors.New("invalid size for topology")
	ErrNeedRandSource     = errors.New("random source is required")
	ErrUnknownType        = errors.New("unknown graph type")
)

// SizeFunc returns how many vertices a rejection candidate graph gets when
// n vertices with edge probability p are requested.
type SizeFunc func(n int, p float64) int

// DefaultCandidateSize keeps n when n*p is comfortably above the giant
// component threshold and scales to n*sqrt(n) otherwise.
func DefaultCandidateSize(n int, p float64) int {
	if float64(n)*p >= 1.1 {
		return n
	}
	return int(math.Ceil(float64(n) * math.Sqrt(float64(n))))
}

type options struct {
	maxRounds   int
	maxAttempts int
	sizeFunc    SizeFunc
}

// Option tunes the random generators.
type Option func(*options)

// WithMaxRounds bounds the merge rounds of Recursive.
func WithMaxRounds(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxRounds = n
		}
	}
}

// WithMaxAttempts bounds the candidate draws of Rejection.
func WithMaxAttempts(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxAttempts = n
		}
	}
}

// WithCandidateSize overrides the rejection candidate size heuristic.
func WithCandidateSize(f SizeFunc) Option {
	return func(o *options) {
		if f != nil {
			o.sizeFunc = f
		}
	}
}

func resolve(opts []Option) options {
	o := options{
		maxRounds:   DefaultMaxRounds,
		maxAttempts: DefaultMaxAttempts,
		sizeFunc:    DefaultCandidateSize,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

func validate(n int, p float64, rng *rand.Rand) error {
	if rng == nil {
		return ErrNeedRandSource
	}
	if n < 1 {
		return fmt.Errorf("n=%d: %w", n, ErrTooFewVertices)
	}
	if math.IsNaN(p) || p < 0 || p > 1 {
		return fmt.Errorf("p=%v: %w", p, ErrInvalidProbability)
	}
	return nil
}

// randomWeight draws a weight uniformly from [1, n*n].
func randomWeight(n int, rng *rand.Rand) int {
	return rng.Intn(n*n) + 1
}

// ErdosEdges includes each pair i<j independently with probability p.
func ErdosEdges(n int, p float64, rng *rand.Rand) []graph.Edge {
	var edges []graph.Edge
	for i := 1; i <= n; i++ {
		for j := i + 1; j <= n; j++ {
			if rng.Float64() < p {
				edges = append(edges, graph.Edge{A: i, B: j, Weight: randomWeight(n, rng)})
			}
		}
	}
	return edges
}

// Recursive draws an Erdős–Rényi edge set and, while it is disconnected,
// draws a graph over the components and splices one edge between random
// members for every component-graph edge.
func Recursive(n int, p float64, rng *rand.Rand, opts ...Option) (*graph.Graph, error) {
	if err := validate(n, p, rng); err != nil {
		return nil, err
	}
	o := resolve(opts)

	edges := ErdosEdges(n, p, rng)
	comps := graph.ConnectedComponents(edges, n)
	for round := 0; len(comps) > 1; round++ {
		if round >= o.maxRounds {
			return nil, fmt.Errorf("recursive n=%d p=%v after %d rounds: %w", n, p, o.maxRounds, ErrConstructFailed)
		}
		for _, ce := range ErdosEdges(len(comps), p, rng) {
			from := comps[ce.A-1]
			to := comps[ce.B-1]
			a := from[rng.Intn(len(from))]
			b := to[rng.Intn(len(to))]
			if a > b {
				a, b = b, a
			}
			edges = append(edges, graph.Edge{A: a, B: b, Weight: randomWeight(n, rng)})
		}
		sortEdges(edges)
		comps = graph.ConnectedComponents(edges, n)
	}
	return graph.New(edges, n)
}

// Rejection draws larger candidate graphs until the largest component has
// exactly n vertices, then re-indexes that component to 1..n. Weights of the
// accepted edges are redrawn in [1, n*n].
func Rejection(n int, p float64, rng *rand.Rand, opts ...Option) (*graph.Graph, error) {
	if err := validate(n, p, rng); err != nil {
		return nil, err
	}
	o := resolve(opts)

	size := o.sizeFunc(n, p)
	if size < n {
		size = n
	}
	for attempt := 0; attempt < o.maxAttempts; attempt++ {
		candidate := ErdosEdges(size, p, rng)
		largest := graph.LargestComponent(candidate, size)
		if len(largest) != n {
			continue
		}
		edges := graph.FilterToComponent(candidate, largest)
		for i := range edges {
			edges[i].Weight = randomWeight(n, rng)
		}
		return graph.New(edges, n)
	}
	return nil, fmt.Errorf("rejection n=%d p=%v candidate=%d after %d attempts: %w", n, p, size, o.maxAttempts, ErrConstructFailed)
}

func sortEdges(edges []graph.Edge) {
	sort.SliceStable(edges, func(i, j int) bool {
		if edges[i].A == edges[j].A {
			return edges[i].B < edges[j].B
		}
		return edges[i].A < edges[j].A
	})
}
