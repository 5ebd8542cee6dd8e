package platform

import (
	"context"
	"fmt"
	"math/rand"

	"galp/internal/config"
	"galp/internal/evo"
	"galp/internal/graph"
	"galp/internal/graphgen"
	"galp/internal/longestpath"
	"galp/internal/maxint"
	"galp/internal/model"
	"galp/internal/report"
	"galp/internal/stats"
	"galp/internal/storage"
)

// TopCount is how many ranked chromosomes a run keeps.
const TopCount = 5

// Outcome is what one GA run produced.
type Outcome struct {
	Generations      int
	Converged        bool
	BestObjective    float64
	BestText         string
	BestByGeneration []float64
	Diagnostics      []model.GenerationDiagnostics
	Top              []stats.TopChromosome
}

// BuildGraph generates the search graph p describes, drawing from rng.
func BuildGraph(p config.Params, rng *rand.Rand) (*graph.Graph, error) {
	g, err := graphgen.ByType(p.GraphType, p.GraphNodes, p.GraphP, rng)
	if err != nil {
		return nil, fmt.Errorf("build %s graph: %w", p.GraphType, err)
	}
	if p.GraphOverrideOnes {
		g.Oneify()
	}
	return g, nil
}

// Evolve runs the problem p names until convergence or the generation cap.
// g is required for longest-path runs and ignored otherwise.
func Evolve(ctx context.Context, p config.Params, g *graph.Graph, rng *rand.Rand, rep report.Reporter) (Outcome, error) {
	if err := p.Validate(); err != nil {
		return Outcome{}, err
	}
	if rep == nil {
		rep = report.Discard{}
	}
	switch p.Problem {
	case config.ProblemLongestPath:
		if g == nil {
			return Outcome{}, fmt.Errorf("longest path run requires a graph")
		}
		var opts []longestpath.ProblemOption
		if p.MutateStart {
			opts = append(opts, longestpath.WithStartMutation())
		}
		problem, err := longestpath.NewProblem(g, p.Crossover, opts...)
		if err != nil {
			return Outcome{}, err
		}
		return evolve[*longestpath.PathChromosome](ctx, problem, p, rng, rep)
	case config.ProblemMaxInt:
		problem, err := maxint.NewProblem(p.ChromosomeLength)
		if err != nil {
			return Outcome{}, err
		}
		return evolve[*maxint.IntegerChromosome](ctx, problem, p, rng, rep)
	default:
		return Outcome{}, fmt.Errorf("%w: problem %q", config.ErrInvalidParam, p.Problem)
	}
}

func evolve[C evo.Chromosome[C]](ctx context.Context, problem evo.Problem[C], p config.Params, rng *rand.Rand, rep report.Reporter) (Outcome, error) {
	ga, err := evo.New[C](ctx, problem, p.EngineConfig(), rng)
	if err != nil {
		return Outcome{}, err
	}

	var out Outcome
	for {
		if err := ga.NextGeneration(ctx); err != nil {
			return Outcome{}, fmt.Errorf("generation %d: %w", ga.Generation()+1, err)
		}
		rep.Generation(report.Snapshot(ga, report.DefaultTop))

		out.Converged = ga.HasConverged(p.ConvergenceThreshold)
		if out.Converged || ga.Generation() >= p.Generations {
			rep.Converged(ga.Generation())
			break
		}
	}

	best, objective := ga.Optimum()
	out.Generations = ga.Generation()
	out.BestObjective = objective
	out.BestText = best.Text()
	out.BestByGeneration = ga.History()
	out.Diagnostics = toModelDiagnostics(ga.Diagnostics())
	for i, m := range ga.Best(TopCount) {
		top := stats.TopChromosome{
			Rank:      i + 1,
			Objective: m.Objective,
			Text:      m.Chromosome.Text(),
			Status:    m.Status.String(),
		}
		if withPrefs, ok := any(m.Chromosome).(interface{ Prefs() []int }); ok {
			top.Genes = withPrefs.Prefs()
		}
		out.Top = append(out.Top, top)
	}
	return out, nil
}

func toModelDiagnostics(in []evo.GenerationDiagnostics) []model.GenerationDiagnostics {
	out := make([]model.GenerationDiagnostics, 0, len(in))
	for _, d := range in {
		out = append(out, model.GenerationDiagnostics{
			Generation:    d.Generation,
			BestObjective: d.BestObjective,
			MeanObjective: d.MeanObjective,
			MinObjective:  d.MinObjective,
			StdObjective:  d.StdObjective,
			Distinct:      d.Distinct,
			Elites:        d.Elites,
		})
	}
	return out
}

// GraphRecord converts g for persistence.
func GraphRecord(runID string, g *graph.Graph) *model.GraphRecord {
	if g == nil {
		return nil
	}
	rec := &model.GraphRecord{
		VersionedRecord: storage.Versioned(),
		RunID:           runID,
		NodeCount:       g.NodeCount(),
	}
	for _, e := range g.Edges() {
		rec.Edges = append(rec.Edges, model.EdgeRecord{A: e.A, B: e.B, Weight: e.Weight})
	}
	return rec
}
