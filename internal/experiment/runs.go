// Package experiment repeats GA runs over parameter grids and strategy
// variants and reduces them to averaged rows.
package experiment

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"galp/internal/config"
	"galp/internal/graph"
	"galp/internal/platform"
	"galp/internal/stats"
)

// Row is one averaged sweep line.
type Row = stats.SweepRow

type job struct {
	params config.Params
	seed   int64
}

type result struct {
	generations int
	objective   float64
	elapsed     time.Duration
}

// execute runs every job against g with at most parallel runs in flight.
// Results come back in job order.
func execute(ctx context.Context, g *graph.Graph, jobs []job, parallel int) ([]result, error) {
	if parallel <= 0 {
		parallel = runtime.GOMAXPROCS(0)
	}
	results := make([]result, len(jobs))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(parallel)
	for i := range jobs {
		i := i
		eg.Go(func() error {
			j := jobs[i]
			start := time.Now()
			out, err := platform.Evolve(ctx, j.params, g, rand.New(rand.NewSource(j.seed)), nil)
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			results[i] = result{
				generations: out.Generations,
				objective:   out.BestObjective,
				elapsed:     time.Since(start),
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// seeds draws n run seeds from the base seed.
func seeds(base int64, n int) []int64 {
	rng := rand.New(rand.NewSource(base))
	out := make([]int64, n)
	for i := range out {
		out[i] = rng.Int63()
	}
	return out
}

func aggregate(axis, label string, value float64, rs []result) Row {
	gens := make([]float64, len(rs))
	objs := make([]float64, len(rs))
	elapsed := make([]float64, len(rs))
	for i, r := range rs {
		gens[i] = float64(r.generations)
		objs[i] = r.objective
		elapsed[i] = float64(r.elapsed.Microseconds()) / 1000.0
	}
	meanGen, _ := stats.MeanStd(gens)
	meanObj, stdObj := stats.MeanStd(objs)
	meanElapsed, _ := stats.MeanStd(elapsed)
	row := Row{
		Axis:            axis,
		Label:           label,
		Value:           value,
		Runs:            len(rs),
		MeanGenerations: meanGen,
		MeanObjective:   meanObj,
		StdObjective:    stdObj,
		MeanElapsedMs:   meanElapsed,
	}
	for i, o := range objs {
		if i == 0 || o > row.MaxObjective {
			row.MaxObjective = o
		}
	}
	return row
}

// prepare resolves the base seed and builds the shared graph.
func prepare(base config.Params) (config.Params, *graph.Graph, error) {
	p, err := config.ResolveSeed(base)
	if err != nil {
		return config.Params{}, nil, err
	}
	if err := p.Validate(); err != nil {
		return config.Params{}, nil, err
	}
	if p.Problem != config.ProblemLongestPath {
		return p, nil, nil
	}
	g, err := platform.BuildGraph(p, rand.New(rand.NewSource(p.RandomSeed)))
	if err != nil {
		return config.Params{}, nil, err
	}
	return p, g, nil
}
