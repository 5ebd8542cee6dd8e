package evo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"
)

var (
	ErrInvalidPopulation  = errors.New("population size must be positive")
	ErrTooManyElites      = errors.New("elite count exceeds population size")
	ErrFitnessBounds      = errors.New("fitness_b must be greater than fitness_a")
	ErrInvalidProbability = errors.New("probability must be in [0, 1]")
)

type Config struct {
	PopulationSize       int
	MutationProbability  float64
	CrossoverProbability float64
	Elites               int
	FitnessA             float64
	FitnessB             float64
	LocalSearch          bool
	Workers              int
	Selector             Selector
}

func DefaultConfig() Config {
	return Config{
		PopulationSize:       50,
		MutationProbability:  0.05,
		CrossoverProbability: 0.7,
		Elites:               2,
		FitnessA:             DefaultFitnessA,
		FitnessB:             DefaultFitnessB,
		Workers:              1,
		Selector:             RouletteSelector{},
	}
}

func (c Config) Validate() error {
	if c.PopulationSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPopulation, c.PopulationSize)
	}
	if c.Elites < 0 || c.Elites > c.PopulationSize {
		return fmt.Errorf("%w: elites=%d population=%d", ErrTooManyElites, c.Elites, c.PopulationSize)
	}
	if !(c.FitnessB > c.FitnessA) {
		return fmt.Errorf("%w: a=%v b=%v", ErrFitnessBounds, c.FitnessA, c.FitnessB)
	}
	if !validProbability(c.MutationProbability) {
		return fmt.Errorf("mutation %w: %v", ErrInvalidProbability, c.MutationProbability)
	}
	if !validProbability(c.CrossoverProbability) {
		return fmt.Errorf("crossover %w: %v", ErrInvalidProbability, c.CrossoverProbability)
	}
	return nil
}

func validProbability(p float64) bool {
	return !math.IsNaN(p) && p >= 0 && p <= 1
}

// GenerationDiagnostics summarizes the objectives of one generation.
type GenerationDiagnostics struct {
	Generation    int     `json:"generation"`
	BestObjective float64 `json:"best_objective"`
	MeanObjective float64 `json:"mean_objective"`
	MinObjective  float64 `json:"min_objective"`
	StdObjective  float64 `json:"std_objective"`
	Distinct      int     `json:"distinct"`
	Elites        int     `json:"elites"`
}

// GeneticAlgorithm evolves a fixed-size population of C.
type GeneticAlgorithm[C Chromosome[C]] struct {
	problem  Problem[C]
	cfg      Config
	selector Selector
	rng      *rand.Rand

	members     []Member[C]
	history     []float64
	diagnostics []GenerationDiagnostics
}

// New creates and evaluates the initial population. Zero FitnessA and
// FitnessB fall back to the defaults.
func New[C Chromosome[C]](ctx context.Context, problem Problem[C], cfg Config, rng *rand.Rand) (*GeneticAlgorithm[C], error) {
	if problem == nil {
		return nil, errors.New("problem is required")
	}
	if rng == nil {
		return nil, errors.New("random source is required")
	}
	if cfg.FitnessA == 0 && cfg.FitnessB == 0 {
		cfg.FitnessA = DefaultFitnessA
		cfg.FitnessB = DefaultFitnessB
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	selector := cfg.Selector
	if selector == nil {
		selector = RouletteSelector{}
	}

	ga := &GeneticAlgorithm[C]{
		problem:  problem,
		cfg:      cfg,
		selector: selector,
		rng:      rng,
		members:  make([]Member[C], cfg.PopulationSize),
	}
	for i := range ga.members {
		c, err := problem.CreateChromosome(rng)
		if err != nil {
			return nil, fmt.Errorf("create chromosome %d: %w", i, err)
		}
		ga.members[i] = Member[C]{Chromosome: c, Status: StatusOffspring}
	}
	if err := ga.evaluate(ctx); err != nil {
		return nil, err
	}
	return ga, nil
}

func (ga *GeneticAlgorithm[C]) Config() Config {
	return ga.cfg
}

// NextGeneration replaces the population with its offspring: scale, keep
// elites, select and recombine, mutate non-elites, then re-evaluate.
func (ga *GeneticAlgorithm[C]) NextGeneration(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	next, err := ga.reproduce()
	if err != nil {
		return err
	}
	ga.members = next

	if err := ga.mutate(ctx); err != nil {
		return err
	}
	if err := ga.evaluate(ctx); err != nil {
		return err
	}

	best := ga.members[0].Objective
	for _, m := range ga.members[1:] {
		if m.Objective > best {
			best = m.Objective
		}
	}
	ga.history = append(ga.history, best)
	ga.diagnostics = append(ga.diagnostics, ga.summarize())
	return nil
}

func (ga *GeneticAlgorithm[C]) reproduce() ([]Member[C], error) {
	size := len(ga.members)
	objectives := ga.Objectives()
	fitness := ScaleFitness(objectives, ga.cfg.FitnessA, ga.cfg.FitnessB)

	ranked := make([]int, size)
	for i := range ranked {
		ranked[i] = i
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return objectives[ranked[i]] > objectives[ranked[j]]
	})

	next := make([]Member[C], 0, size)
	var parents []C
	for _, idx := range ranked[:ga.cfg.Elites] {
		src := ga.members[idx]
		next = append(next, Member[C]{Chromosome: src.Chromosome.Clone(), Objective: src.Objective, Status: StatusElite})
		if ga.rng.Float64() < ga.cfg.CrossoverProbability {
			parents = append(parents, src.Chromosome.Clone())
		}
	}

	for len(next) < size {
		if len(parents) >= 2 {
			a, b := parents[0], parents[1]
			parents = parents[2:]
			a.Crossover(b, ga.rng)
			next = append(next, Member[C]{Chromosome: a, Status: StatusOffspring})
			if len(next) < size {
				next = append(next, Member[C]{Chromosome: b, Status: StatusOffspring})
			}
			continue
		}

		idx, err := ga.selector.Pick(ga.rng, fitness)
		if err != nil {
			return nil, fmt.Errorf("select parent: %w", err)
		}
		picked := ga.members[idx].Chromosome.Clone()
		if ga.rng.Float64() < ga.cfg.CrossoverProbability {
			parents = append(parents, picked)
			continue
		}
		next = append(next, Member[C]{Chromosome: picked, Objective: ga.members[idx].Objective, Status: StatusOffspring})
	}
	return next, nil
}

// mutate perturbs every offspring. Each member gets its own source seeded
// in population order so the outcome does not depend on scheduling.
func (ga *GeneticAlgorithm[C]) mutate(ctx context.Context) error {
	seeds := make([]int64, len(ga.members))
	for i := range seeds {
		seeds[i] = ga.rng.Int63()
	}
	return forEach(ctx, ga.cfg.Workers, len(ga.members), func(i int) error {
		m := &ga.members[i]
		if m.Status == StatusElite {
			return nil
		}
		rng := rand.New(rand.NewSource(seeds[i]))
		if err := m.Chromosome.Mutate(ga.cfg.MutationProbability, rng); err != nil {
			return fmt.Errorf("mutate member %d: %w", i, err)
		}
		if ga.cfg.LocalSearch {
			m.Chromosome.LocalSearch()
		}
		return nil
	})
}

func (ga *GeneticAlgorithm[C]) evaluate(ctx context.Context) error {
	return forEach(ctx, ga.cfg.Workers, len(ga.members), func(i int) error {
		ga.members[i].Objective = ga.problem.Evaluate(ga.members[i].Chromosome)
		return nil
	})
}

func (ga *GeneticAlgorithm[C]) summarize() GenerationDiagnostics {
	objectives := ga.Objectives()
	mean, std := stat.MeanStdDev(objectives, nil)
	if len(objectives) < 2 {
		std = 0
	}
	d := GenerationDiagnostics{
		Generation:    len(ga.history),
		BestObjective: objectives[0],
		MinObjective:  objectives[0],
		MeanObjective: mean,
		StdObjective:  std,
	}
	texts := make(map[string]struct{}, len(ga.members))
	for _, m := range ga.members {
		d.BestObjective = math.Max(d.BestObjective, m.Objective)
		d.MinObjective = math.Min(d.MinObjective, m.Objective)
		texts[m.Chromosome.Text()] = struct{}{}
		if m.Status == StatusElite {
			d.Elites++
		}
	}
	d.Distinct = len(texts)
	return d
}

// HasConverged reports whether the last k best objectives all equal the most
// recent one. It is false until k generations have run.
func (ga *GeneticAlgorithm[C]) HasConverged(k int) bool {
	if k <= 0 || len(ga.history) < k {
		return false
	}
	last := ga.history[len(ga.history)-1]
	for _, v := range ga.history[len(ga.history)-k:] {
		if v != last {
			return false
		}
	}
	return true
}

// Generation is the number of completed NextGeneration calls.
func (ga *GeneticAlgorithm[C]) Generation() int {
	return len(ga.history)
}

func (ga *GeneticAlgorithm[C]) History() []float64 {
	return append([]float64(nil), ga.history...)
}

func (ga *GeneticAlgorithm[C]) Diagnostics() []GenerationDiagnostics {
	return append([]GenerationDiagnostics(nil), ga.diagnostics...)
}

func (ga *GeneticAlgorithm[C]) Objectives() []float64 {
	out := make([]float64, len(ga.members))
	for i, m := range ga.members {
		out[i] = m.Objective
	}
	return out
}

// Population returns clones of the current chromosomes.
func (ga *GeneticAlgorithm[C]) Population() []C {
	out := make([]C, len(ga.members))
	for i, m := range ga.members {
		out[i] = m.Chromosome.Clone()
	}
	return out
}

// Members returns the current members with cloned chromosomes.
func (ga *GeneticAlgorithm[C]) Members() []Member[C] {
	out := make([]Member[C], len(ga.members))
	for i, m := range ga.members {
		out[i] = Member[C]{Chromosome: m.Chromosome.Clone(), Objective: m.Objective, Status: m.Status}
	}
	return out
}

// Optimum returns a clone of the best member; ties go to the first.
func (ga *GeneticAlgorithm[C]) Optimum() (C, float64) {
	best := 0
	for i := 1; i < len(ga.members); i++ {
		if ga.members[i].Objective > ga.members[best].Objective {
			best = i
		}
	}
	return ga.members[best].Chromosome.Clone(), ga.members[best].Objective
}

// Best returns up to k members ordered by descending objective.
func (ga *GeneticAlgorithm[C]) Best(k int) []Member[C] {
	members := ga.Members()
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].Objective > members[j].Objective
	})
	if k >= 0 && k < len(members) {
		members = members[:k]
	}
	return members
}
