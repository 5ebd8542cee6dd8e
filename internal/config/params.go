package config

import (
	"errors"
	"fmt"

	"galp/internal/evo"
	"galp/internal/graphgen"
	"galp/internal/longestpath"
	"galp/internal/maxint"
)

const (
	ProblemLongestPath = "longest_path"
	ProblemMaxInt      = "max_int"
)

var (
	ErrUnknownKey   = errors.New("unknown parameter")
	ErrBadValue     = errors.New("malformed parameter value")
	ErrInvalidParam = errors.New("invalid parameter")
)

// Params is one run's parameter record.
type Params struct {
	Problem              string                        `json:"problem"`
	GraphType            graphgen.Type                 `json:"graph_type"`
	GraphNodes           int                           `json:"graph_nodes"`
	GraphP               float64                       `json:"graph_p"`
	RandomSeed           int64                         `json:"random_seed"`
	GraphOverrideOnes    bool                          `json:"graph_override_ones"`
	Generations          int                           `json:"nr_generations"`
	PopulationSize       int                           `json:"population_size"`
	ChromosomeLength     int                           `json:"chromosome_length"`
	MutationProbability  float64                       `json:"mutation_probability"`
	CrossoverProbability float64                       `json:"crossover_probability"`
	ConvergenceThreshold int                           `json:"convergence_threshold"`
	Elites               int                           `json:"nr_of_elites"`
	Crossover            longestpath.CrossoverStrategy `json:"crossover_type"`
	LocalSearch          bool                          `json:"local_search"`
	MutateStart          bool                          `json:"mutate_start"`
	FitnessA             float64                       `json:"fitness_a"`
	FitnessB             float64                       `json:"fitness_b"`
	Workers              int                           `json:"workers"`
	Selection            string                        `json:"selection"`
}

func Default() Params {
	return Params{
		Problem:              ProblemLongestPath,
		GraphType:            graphgen.TypeRecursive,
		GraphNodes:           20,
		GraphP:               0.1,
		Generations:          100,
		PopulationSize:       50,
		ChromosomeLength:     16,
		MutationProbability:  0.05,
		CrossoverProbability: 0.7,
		ConvergenceThreshold: 20,
		Elites:               2,
		Crossover:            longestpath.DefaultCrossover,
		FitnessA:             evo.DefaultFitnessA,
		FitnessB:             evo.DefaultFitnessB,
		Workers:              1,
		Selection:            "roulette",
	}
}

func (p Params) Validate() error {
	switch p.Problem {
	case ProblemLongestPath:
		if !p.GraphType.Valid() {
			return fmt.Errorf("%w: graph_type %d", ErrInvalidParam, int(p.GraphType))
		}
		if p.GraphNodes < 1 {
			return fmt.Errorf("%w: graph_nodes %d", ErrInvalidParam, p.GraphNodes)
		}
		if p.GraphP < 0 || p.GraphP > 1 {
			return fmt.Errorf("%w: graph_p %v", ErrInvalidParam, p.GraphP)
		}
		if !p.Crossover.Valid() {
			return fmt.Errorf("%w: crossover_type %d", ErrInvalidParam, int(p.Crossover))
		}
	case ProblemMaxInt:
		if p.ChromosomeLength < 1 || p.ChromosomeLength > maxint.MaxLength {
			return fmt.Errorf("%w: chromosome_length %d", ErrInvalidParam, p.ChromosomeLength)
		}
	default:
		return fmt.Errorf("%w: problem %q", ErrInvalidParam, p.Problem)
	}
	if p.Generations < 1 {
		return fmt.Errorf("%w: nr_generations %d", ErrInvalidParam, p.Generations)
	}
	if p.ConvergenceThreshold < 1 {
		return fmt.Errorf("%w: convergence_threshold %d", ErrInvalidParam, p.ConvergenceThreshold)
	}
	if p.Workers < 0 {
		return fmt.Errorf("%w: workers %d", ErrInvalidParam, p.Workers)
	}
	if _, err := evo.SelectorFromName(p.Selection); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParam, err)
	}
	return p.EngineConfig().Validate()
}

// EngineConfig projects the GA settings.
func (p Params) EngineConfig() evo.Config {
	selector, err := evo.SelectorFromName(p.Selection)
	if err != nil {
		selector = evo.RouletteSelector{}
	}
	cfg := evo.DefaultConfig()
	cfg.PopulationSize = p.PopulationSize
	cfg.MutationProbability = p.MutationProbability
	cfg.CrossoverProbability = p.CrossoverProbability
	cfg.Elites = p.Elites
	cfg.FitnessA = p.FitnessA
	cfg.FitnessB = p.FitnessB
	cfg.LocalSearch = p.LocalSearch
	cfg.Workers = p.Workers
	cfg.Selector = selector
	return cfg
}
