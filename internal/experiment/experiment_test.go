package experiment

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"galp/internal/config"
	"galp/internal/evo"
	"galp/internal/graphgen"
	"galp/internal/longestpath"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func kiteBase() config.Params {
	p := config.Default()
	p.GraphType = graphgen.TypeKite
	p.GraphNodes = 10
	p.RandomSeed = 7
	p.PopulationSize = 12
	p.Generations = 30
	p.ConvergenceThreshold = 8
	return p
}

func TestSweepRowsAndBest(t *testing.T) {
	s := Sweep{
		Base:                   kiteBase(),
		Runs:                   2,
		Parallel:               3,
		PopulationSizes:        []int{6, 12},
		MutationProbabilities:  []float64{0.01, 0.2},
		CrossoverProbabilities: []float64{0.5},
		EliteCounts:            []int{0, 2},
		Logger:                 quiet,
	}
	res, err := s.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Rows, 7)

	assert.Equal(t, AxisPopulationSize, res.Rows[0].Axis)
	assert.Equal(t, "6", res.Rows[0].Label)
	assert.Equal(t, 12.0, res.Rows[1].Value)
	assert.Equal(t, AxisMutationProbability, res.Rows[2].Axis)
	assert.Equal(t, "0.01", res.Rows[2].Label)
	assert.Equal(t, AxisCrossoverProbability, res.Rows[4].Axis)
	assert.Equal(t, AxisElites, res.Rows[6].Axis)
	for _, row := range res.Rows {
		assert.Equal(t, 2, row.Runs)
		assert.GreaterOrEqual(t, row.MeanGenerations, 1.0)
		assert.LessOrEqual(t, row.MeanGenerations, 30.0)
		assert.GreaterOrEqual(t, row.MaxObjective, row.MeanObjective)
	}

	require.Len(t, res.Best, 4)
	for _, best := range res.Best {
		for _, row := range res.Rows {
			if row.Axis == best.Axis {
				assert.GreaterOrEqual(t, best.MeanObjective, row.MeanObjective)
			}
		}
	}
}

func TestSweepIsDeterministicAcrossParallelism(t *testing.T) {
	s := Sweep{
		Base:            kiteBase(),
		Runs:            3,
		Parallel:        1,
		PopulationSizes: []int{8, 16},
		Logger:          quiet,
	}
	a, err := s.Run(context.Background())
	require.NoError(t, err)

	s.Parallel = 4
	b, err := s.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, b.Rows, len(a.Rows))
	for i := range a.Rows {
		assert.Equal(t, a.Rows[i].MeanObjective, b.Rows[i].MeanObjective)
		assert.Equal(t, a.Rows[i].MeanGenerations, b.Rows[i].MeanGenerations)
	}
}

func TestSweepRejectsBadInput(t *testing.T) {
	ctx := context.Background()

	_, err := Sweep{Base: kiteBase(), Runs: 0, PopulationSizes: []int{10}, Logger: quiet}.Run(ctx)
	require.Error(t, err)

	_, err = Sweep{Base: kiteBase(), Runs: 1, Logger: quiet}.Run(ctx)
	require.Error(t, err)

	_, err = Sweep{Base: kiteBase(), Runs: 1, EliteCounts: []int{50}, Logger: quiet}.Run(ctx)
	require.ErrorIs(t, err, evo.ErrTooManyElites)

	_, err = Sweep{Base: kiteBase(), Runs: 1, MutationProbabilities: []float64{1.5}, Logger: quiet}.Run(ctx)
	require.Error(t, err)
}

func TestSweepMaxInt(t *testing.T) {
	p := config.Default()
	p.Problem = config.ProblemMaxInt
	p.ChromosomeLength = 6
	p.RandomSeed = 2
	p.Generations = 80
	res, err := Sweep{Base: p, Runs: 2, PopulationSizes: []int{20}, Logger: quiet}.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.LessOrEqual(t, res.Rows[0].MaxObjective, 63.0)
}

func TestSweepHonorsCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Sweep{Base: kiteBase(), Runs: 2, PopulationSizes: []int{10}, Logger: quiet}.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestCompareVariants(t *testing.T) {
	c := Compare{Base: kiteBase(), Runs: 2, Parallel: 2, Logger: quiet}
	rows, err := c.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, len(DefaultVariants))
	for i, row := range rows {
		assert.Equal(t, AxisVariant, row.Axis)
		assert.Equal(t, DefaultVariants[i].String(), row.Label)
		assert.Equal(t, float64(i), row.Value)
		assert.GreaterOrEqual(t, row.MeanElapsedMs, 0.0)
	}
	assert.Equal(t, "random/ls=true", rows[4].Label)

	p := config.Default()
	p.Problem = config.ProblemMaxInt
	_, err = Compare{Base: p, Runs: 1, Logger: quiet}.Run(context.Background())
	require.ErrorIs(t, err, config.ErrInvalidParam)
}

func TestCompareCases(t *testing.T) {
	c := Compare{
		Base:     kiteBase(),
		Variants: []Variant{{Crossover: longestpath.CrossoverFixedPosition}},
		Runs:     1,
		Logger:   quiet,
	}
	rows, err := CompareCases(context.Background(), c, []GraphCase{
		{Type: graphgen.TypeExample, Nodes: 9, Seed: 1},
		{Type: graphgen.TypeRingTricky, Nodes: 8, Seed: 2},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "example/9", rows[0].Axis)
	assert.Equal(t, "ring_tricky/8", rows[1].Axis)

	_, err = CompareCases(context.Background(), c, []GraphCase{{Type: graphgen.TypeKite, Nodes: 12, Seed: 1}})
	require.Error(t, err)
}
