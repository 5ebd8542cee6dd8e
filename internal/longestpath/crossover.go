package longestpath

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
)

// CrossoverStrategy names a recombination operator.
type CrossoverStrategy int

const (
	// CrossoverRandom swaps every slot independently with probability 0.5.
	CrossoverRandom CrossoverStrategy = iota
	// CrossoverFixedPosition swaps the tails after a random cut.
	CrossoverFixedPosition
	// CrossoverOptimumGreedy walks from the start slot and copies each visited
	// slot from the currently longer parent into the other.
	CrossoverOptimumGreedy
	// CrossoverPathSplice swaps the slots of the nodes after a random split of
	// the shorter parent's path. It is slow on large graphs and must be
	// selected explicitly.
	CrossoverPathSplice
)

const DefaultCrossover = CrossoverFixedPosition

var crossoverNames = map[CrossoverStrategy]string{
	CrossoverRandom:        "random",
	CrossoverFixedPosition: "fixed_position",
	CrossoverOptimumGreedy: "optimum_greedy",
	CrossoverPathSplice:    "path_splice",
}

func (s CrossoverStrategy) String() string {
	if name, ok := crossoverNames[s]; ok {
		return name
	}
	return "crossover(" + strconv.Itoa(int(s)) + ")"
}

func (s CrossoverStrategy) Valid() bool {
	_, ok := crossoverNames[s]
	return ok
}

// ParseCrossover accepts the numeric code or the name.
func ParseCrossover(v string) (CrossoverStrategy, error) {
	v = strings.TrimSpace(strings.ToLower(v))
	if code, err := strconv.Atoi(v); err == nil {
		s := CrossoverStrategy(code)
		if !s.Valid() {
			return 0, fmt.Errorf("%d: %w", code, ErrUnknownCrossover)
		}
		return s, nil
	}
	for s, name := range crossoverNames {
		if name == v {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%q: %w", v, ErrUnknownCrossover)
}

// Crossover recombines c and other in place using c's strategy.
func (c *PathChromosome) Crossover(other *PathChromosome, rng *rand.Rand) {
	switch c.strategy {
	case CrossoverRandom:
		c.crossoverRandom(other, rng)
	case CrossoverOptimumGreedy:
		c.crossoverOptimumGreedy(other)
	case CrossoverPathSplice:
		c.crossoverPathSplice(other, rng)
	default:
		c.CrossoverAt(rng.Intn(len(c.prefs)), other)
	}
}

// CrossoverAt swaps every slot from pos to the end.
func (c *PathChromosome) CrossoverAt(pos int, other *PathChromosome) {
	if pos < 0 {
		pos = 0
	}
	for i := pos; i < len(c.prefs); i++ {
		c.prefs[i], other.prefs[i] = other.prefs[i], c.prefs[i]
	}
}

func (c *PathChromosome) crossoverRandom(other *PathChromosome, rng *rand.Rand) {
	for i := range c.prefs {
		if rng.Float64() < 0.5 {
			c.prefs[i], other.prefs[i] = other.prefs[i], c.prefs[i]
		}
	}
}

func (c *PathChromosome) crossoverOptimumGreedy(other *PathChromosome) {
	visited := make([]bool, len(c.prefs))
	cur := 0
	for !visited[cur] {
		visited[cur] = true
		if c.PathLength() >= other.PathLength() {
			other.prefs[cur] = c.prefs[cur]
		} else {
			c.prefs[cur] = other.prefs[cur]
		}
		cur = c.prefs[cur]
		if cur == 0 {
			return
		}
	}
}

func (c *PathChromosome) crossoverPathSplice(other *PathChromosome, rng *rand.Rand) {
	nodes := c.Path().Nodes
	if other.PathLength() < c.PathLength() {
		nodes = other.Path().Nodes
	}
	split := rng.Intn(len(nodes))
	if split == 0 {
		c.prefs[0], other.prefs[0] = other.prefs[0], c.prefs[0]
	}
	for _, node := range nodes[split:] {
		c.prefs[node], other.prefs[node] = other.prefs[node], c.prefs[node]
	}
}
