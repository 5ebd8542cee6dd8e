package evo

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
)

var ErrEmptyPopulation = errors.New("population is empty")

// Selector picks a population index from scaled fitness values.
type Selector interface {
	Name() string
	Pick(rng *rand.Rand, fitness []float64) (int, error)
}

// RouletteSelector draws proportionally to fitness.
type RouletteSelector struct{}

func (RouletteSelector) Name() string {
	return "roulette"
}

func (RouletteSelector) Pick(rng *rand.Rand, fitness []float64) (int, error) {
	if rng == nil {
		return 0, fmt.Errorf("random source is required")
	}
	return RouletteIndex(CumulativeFitness(fitness), rng.Float64())
}

// CumulativeFitness returns running sums of fitness.
func CumulativeFitness(fitness []float64) []float64 {
	cum := make([]float64, len(fitness))
	total := 0.0
	for i, f := range fitness {
		total += f
		cum[i] = total
	}
	return cum
}

// RouletteIndex maps u in [0, 1) onto the wheel described by cum. Slots with
// zero width are never chosen.
func RouletteIndex(cum []float64, u float64) (int, error) {
	if len(cum) == 0 {
		return 0, ErrEmptyPopulation
	}
	total := cum[len(cum)-1]
	if total <= 0 {
		return 0, fmt.Errorf("total fitness must be positive, got %v", total)
	}
	r := u * total
	idx := sort.Search(len(cum), func(i int) bool { return cum[i] > r })
	if idx >= len(cum) {
		idx = len(cum) - 1
	}
	return idx, nil
}

// TournamentSelector samples Size members uniformly and keeps the fittest.
type TournamentSelector struct {
	Size int
}

func (TournamentSelector) Name() string {
	return "tournament"
}

func (s TournamentSelector) Pick(rng *rand.Rand, fitness []float64) (int, error) {
	if rng == nil {
		return 0, fmt.Errorf("random source is required")
	}
	if len(fitness) == 0 {
		return 0, ErrEmptyPopulation
	}
	size := s.Size
	if size <= 0 {
		size = 2
	}
	best := rng.Intn(len(fitness))
	for i := 1; i < size; i++ {
		candidate := rng.Intn(len(fitness))
		if fitness[candidate] > fitness[best] {
			best = candidate
		}
	}
	return best, nil
}

// SelectorFromName resolves a selector by its Name.
func SelectorFromName(name string) (Selector, error) {
	switch name {
	case "", "roulette":
		return RouletteSelector{}, nil
	case "tournament":
		return TournamentSelector{Size: 2}, nil
	default:
		return nil, fmt.Errorf("unsupported selection strategy: %s", name)
	}
}
