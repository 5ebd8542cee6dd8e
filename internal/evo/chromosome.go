package evo

import "math/rand"

// Chromosome is a candidate solution that the engine can copy, perturb and
// recombine. C is the concrete chromosome type.
type Chromosome[C any] interface {
	Value() float64
	Text() string
	Clone() C
	Mutate(probability float64, rng *rand.Rand) error
	// Crossover recombines the receiver and other in place.
	Crossover(other C, rng *rand.Rand)
	// LocalSearch applies one improving step, reporting whether it changed
	// anything.
	LocalSearch() bool
}

// Problem creates and scores chromosomes. Evaluate may be called from
// several goroutines at once.
type Problem[C any] interface {
	CreateChromosome(rng *rand.Rand) (C, error)
	Evaluate(c C) float64
}

// Status records how a member entered the current generation.
type Status uint8

const (
	StatusOffspring Status = iota
	StatusElite
)

func (s Status) String() string {
	switch s {
	case StatusElite:
		return "elite"
	case StatusOffspring:
		return "offspring"
	default:
		return "unknown"
	}
}

// Member is one population slot.
type Member[C any] struct {
	Chromosome C
	Objective  float64
	Status     Status
}
