package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"galp/internal/config"
)

// Swept parameters.
const (
	AxisPopulationSize       = "population_size"
	AxisMutationProbability  = "mutation_probability"
	AxisCrossoverProbability = "crossover_probability"
	AxisElites               = "nr_of_elites"
)

// Sweep varies one parameter at a time around Base. Every value is run
// Runs times on the same graph and the results are averaged.
type Sweep struct {
	Base                   config.Params
	Runs                   int
	Parallel               int
	PopulationSizes        []int
	MutationProbabilities  []float64
	CrossoverProbabilities []float64
	EliteCounts            []int
	Logger                 *slog.Logger
}

type SweepResult struct {
	Params config.Params
	Rows   []Row
	// Best holds the row with the highest mean objective per axis. Ties keep
	// the earlier value.
	Best []Row
}

type point struct {
	axis   string
	label  string
	value  float64
	params config.Params
}

func (s Sweep) points(base config.Params) ([]point, error) {
	var pts []point
	add := func(axis, label string, value float64, p config.Params) error {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("%s=%s: %w", axis, label, err)
		}
		pts = append(pts, point{axis: axis, label: label, value: value, params: p})
		return nil
	}
	for _, v := range s.PopulationSizes {
		p := base
		p.PopulationSize = v
		if err := add(AxisPopulationSize, strconv.Itoa(v), float64(v), p); err != nil {
			return nil, err
		}
	}
	for _, v := range s.MutationProbabilities {
		p := base
		p.MutationProbability = v
		if err := add(AxisMutationProbability, strconv.FormatFloat(v, 'g', -1, 64), v, p); err != nil {
			return nil, err
		}
	}
	for _, v := range s.CrossoverProbabilities {
		p := base
		p.CrossoverProbability = v
		if err := add(AxisCrossoverProbability, strconv.FormatFloat(v, 'g', -1, 64), v, p); err != nil {
			return nil, err
		}
	}
	for _, v := range s.EliteCounts {
		p := base
		p.Elites = v
		if err := add(AxisElites, strconv.Itoa(v), float64(v), p); err != nil {
			return nil, err
		}
	}
	return pts, nil
}

func (s Sweep) Run(ctx context.Context) (SweepResult, error) {
	if s.Runs < 1 {
		return SweepResult{}, fmt.Errorf("runs must be >= 1")
	}
	log := s.Logger
	if log == nil {
		log = slog.Default()
	}
	base, g, err := prepare(s.Base)
	if err != nil {
		return SweepResult{}, err
	}
	pts, err := s.points(base)
	if err != nil {
		return SweepResult{}, err
	}
	if len(pts) == 0 {
		return SweepResult{}, fmt.Errorf("sweep has no values")
	}

	runSeeds := seeds(base.RandomSeed, len(pts)*s.Runs)
	jobs := make([]job, 0, len(runSeeds))
	for i, pt := range pts {
		for r := 0; r < s.Runs; r++ {
			jobs = append(jobs, job{params: pt.params, seed: runSeeds[i*s.Runs+r]})
		}
	}
	log.Info("sweep started", "values", len(pts), "runs_per_value", s.Runs, "seed", base.RandomSeed)
	results, err := execute(ctx, g, jobs, s.Parallel)
	if err != nil {
		return SweepResult{}, err
	}

	out := SweepResult{Params: base}
	bestByAxis := map[string]int{}
	var axes []string
	for i, pt := range pts {
		row := aggregate(pt.axis, pt.label, pt.value, results[i*s.Runs:(i+1)*s.Runs])
		out.Rows = append(out.Rows, row)
		log.Debug("sweep value", "axis", row.Axis, "value", row.Label,
			"mean_generations", row.MeanGenerations, "mean_objective", row.MeanObjective)

		j, ok := bestByAxis[row.Axis]
		if !ok {
			axes = append(axes, row.Axis)
			bestByAxis[row.Axis] = len(out.Rows) - 1
		} else if out.Rows[j].MeanObjective < row.MeanObjective {
			bestByAxis[row.Axis] = len(out.Rows) - 1
		}
	}
	for _, axis := range axes {
		out.Best = append(out.Best, out.Rows[bestByAxis[axis]])
	}
	log.Info("sweep finished", "rows", len(out.Rows))
	return out, nil
}
