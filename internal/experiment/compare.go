package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"galp/internal/config"
	"galp/internal/graphgen"
	"galp/internal/longestpath"
)

const AxisVariant = "variant"

// Variant is one crossover/local-search combination to time.
type Variant struct {
	Crossover   longestpath.CrossoverStrategy
	LocalSearch bool
}

func (v Variant) String() string {
	return v.Crossover.String() + "/ls=" + strconv.FormatBool(v.LocalSearch)
}

// DefaultVariants covers every crossover without local search, then the
// default crossover with it.
var DefaultVariants = []Variant{
	{Crossover: longestpath.CrossoverRandom},
	{Crossover: longestpath.CrossoverFixedPosition},
	{Crossover: longestpath.CrossoverOptimumGreedy},
	{Crossover: longestpath.CrossoverPathSplice},
	{Crossover: longestpath.CrossoverRandom, LocalSearch: true},
}

// GraphCase is one fixed graph a comparison runs on.
type GraphCase struct {
	Type  graphgen.Type
	Nodes int
	Seed  int64
}

// DefaultGraphCases are the deterministic fixture graphs.
var DefaultGraphCases = []GraphCase{
	{Type: graphgen.TypeExample, Nodes: 9, Seed: 1},
	{Type: graphgen.TypeRingTricky, Nodes: 25, Seed: 2},
	{Type: graphgen.TypeRingAscending, Nodes: 25, Seed: 3},
	{Type: graphgen.TypeKite, Nodes: 25, Seed: 4},
	{Type: graphgen.TypeAntiLoop, Nodes: 25, Seed: 5},
}

// Compare times each variant over Runs runs on the graph Base describes.
type Compare struct {
	Base     config.Params
	Variants []Variant
	Runs     int
	Parallel int
	Logger   *slog.Logger
}

// Run returns one row per variant, in variant order. Value is the variant's
// position.
func (c Compare) Run(ctx context.Context) ([]Row, error) {
	if c.Runs < 1 {
		return nil, fmt.Errorf("runs must be >= 1")
	}
	if c.Base.Problem != config.ProblemLongestPath {
		return nil, fmt.Errorf("%w: compare needs problem %q", config.ErrInvalidParam, config.ProblemLongestPath)
	}
	variants := c.Variants
	if len(variants) == 0 {
		variants = DefaultVariants
	}
	log := c.Logger
	if log == nil {
		log = slog.Default()
	}
	base, g, err := prepare(c.Base)
	if err != nil {
		return nil, err
	}

	runSeeds := seeds(base.RandomSeed, len(variants)*c.Runs)
	jobs := make([]job, 0, len(runSeeds))
	for i, v := range variants {
		p := base
		p.Crossover = v.Crossover
		p.LocalSearch = v.LocalSearch
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("variant %s: %w", v, err)
		}
		for r := 0; r < c.Runs; r++ {
			jobs = append(jobs, job{params: p, seed: runSeeds[i*c.Runs+r]})
		}
	}
	log.Info("compare started", "graph_type", base.GraphType.String(), "nodes", base.GraphNodes, "variants", len(variants), "runs", c.Runs)
	results, err := execute(ctx, g, jobs, c.Parallel)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(variants))
	for i, v := range variants {
		row := aggregate(AxisVariant, v.String(), float64(i), results[i*c.Runs:(i+1)*c.Runs])
		rows = append(rows, row)
		log.Debug("compare variant", "variant", row.Label,
			"mean_generations", row.MeanGenerations, "mean_objective", row.MeanObjective, "mean_elapsed_ms", row.MeanElapsedMs)
	}
	return rows, nil
}

// CompareCases runs Compare on every graph case, tagging each row's axis
// with the graph it ran on.
func CompareCases(ctx context.Context, c Compare, cases []GraphCase) ([]Row, error) {
	if len(cases) == 0 {
		cases = DefaultGraphCases
	}
	var all []Row
	for _, gc := range cases {
		cc := c
		cc.Base.GraphType = gc.Type
		cc.Base.GraphNodes = gc.Nodes
		cc.Base.RandomSeed = gc.Seed
		rows, err := cc.Run(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s/%d: %w", gc.Type, gc.Nodes, err)
		}
		for i := range rows {
			rows[i].Axis = fmt.Sprintf("%s/%d", gc.Type, gc.Nodes)
		}
		all = append(all, rows...)
	}
	return all, nil
}
