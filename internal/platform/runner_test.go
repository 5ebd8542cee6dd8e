package platform

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"galp/internal/config"
	"galp/internal/graphgen"
	"galp/internal/metrics"
	"galp/internal/report"
	"galp/internal/stats"
	"galp/internal/storage"
)

func kiteParams() config.Params {
	p := config.Default()
	p.GraphType = graphgen.TypeKite
	p.GraphNodes = 13
	p.RandomSeed = 11
	p.PopulationSize = 20
	p.Generations = 60
	p.ConvergenceThreshold = 15
	return p
}

func newTestRunner(t *testing.T, cfg Config) *Runner {
	t.Helper()
	if cfg.Store == nil {
		cfg.Store = storage.NewMemoryStore()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	r := NewRunner(cfg)
	require.NoError(t, r.Init(context.Background()))
	return r
}

func TestRunnerRequiresInit(t *testing.T) {
	r := NewRunner(Config{Store: storage.NewMemoryStore()})
	_, err := r.Run(context.Background(), RunRequest{Params: kiteParams()})
	require.Error(t, err)

	require.Error(t, NewRunner(Config{}).Init(context.Background()))
}

func TestRunnerPersistsRun(t *testing.T) {
	ctx := context.Background()
	artifacts := t.TempDir()
	var out bytes.Buffer
	collector := metrics.New()
	r := newTestRunner(t, Config{
		ArtifactsDir: artifacts,
		Plot:         true,
		Reporter:     report.NewTextReporter(&out),
		Metrics:      collector,
	})

	res, err := r.Run(ctx, RunRequest{RunID: "kite-1", Params: kiteParams()})
	require.NoError(t, err)

	o := res.Outcome
	require.NotEmpty(t, o.BestByGeneration)
	assert.Equal(t, o.Generations, len(o.BestByGeneration))
	assert.LessOrEqual(t, o.Generations, 60)
	assert.Equal(t, o.BestByGeneration[len(o.BestByGeneration)-1], o.BestObjective)
	for i := 1; i < len(o.BestByGeneration); i++ {
		assert.GreaterOrEqual(t, o.BestByGeneration[i], o.BestByGeneration[i-1], "generation %d", i+1)
	}
	require.Len(t, o.Top, TopCount)
	assert.Equal(t, o.BestObjective, o.Top[0].Objective)
	assert.Len(t, o.Top[0].Genes, 14)
	assert.Contains(t, out.String(), "Generation: 1\n")
	assert.Contains(t, out.String(), " converged.")

	run, ok, err := r.Store().GetRun(ctx, "kite-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "kite", run.GraphType)
	assert.Equal(t, o.BestObjective, run.BestObjective)
	assert.Equal(t, int64(11), run.Seed)

	graphRec, ok, err := r.Store().GetGraph(ctx, "kite-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 13, graphRec.NodeCount)

	history, ok, err := r.Store().GetFitnessHistory(ctx, "kite-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, o.BestByGeneration, history)

	for _, file := range []string{"config.json", "fitness_history.json", "top_chromosomes.json", "graph.json", stats.HistoryPlotFile} {
		_, err := os.Stat(filepath.Join(res.RunDir, file))
		require.NoError(t, err, file)
	}
	index, err := stats.ListRunIndex(artifacts)
	require.NoError(t, err)
	require.Len(t, index, 1)
	assert.Equal(t, "kite-1", index[0].RunID)
}

func TestRunnerIsReproducible(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t, Config{})

	p := kiteParams()
	p.GraphType = graphgen.TypeRecursive
	p.GraphNodes = 25
	p.GraphP = 0.15
	a, err := r.Run(ctx, RunRequest{Params: p})
	require.NoError(t, err)

	p.Workers = 4
	b, err := r.Run(ctx, RunRequest{Params: p})
	require.NoError(t, err)

	assert.NotEqual(t, a.RunID, b.RunID)
	assert.Equal(t, a.Graph.Edges, b.Graph.Edges)
	assert.Equal(t, a.Outcome.BestByGeneration, b.Outcome.BestByGeneration)
	assert.Equal(t, a.Outcome.BestText, b.Outcome.BestText)
}

func TestRunnerResolvesZeroSeed(t *testing.T) {
	r := newTestRunner(t, Config{})
	p := kiteParams()
	p.RandomSeed = 0
	res, err := r.Run(context.Background(), RunRequest{Params: p})
	require.NoError(t, err)
	assert.NotZero(t, res.Params.RandomSeed)
}

func TestRunnerMaxInt(t *testing.T) {
	r := newTestRunner(t, Config{})
	p := config.Default()
	p.Problem = config.ProblemMaxInt
	p.ChromosomeLength = 8
	p.RandomSeed = 3
	p.LocalSearch = true
	p.Generations = 100

	res, err := r.Run(context.Background(), RunRequest{Params: p})
	require.NoError(t, err)
	assert.Nil(t, res.Graph)
	assert.Equal(t, 255.0, res.Outcome.BestObjective)
	assert.Equal(t, "11111111", res.Outcome.BestText)
}

func TestRunConfigCarriesStartMutation(t *testing.T) {
	p := kiteParams()
	p.MutateStart = true
	cfg := RunConfigFromParams("r", p)
	assert.True(t, cfg.MutateStart)
	assert.Equal(t, p.Crossover.String(), cfg.CrossoverType)

	r := newTestRunner(t, Config{})
	_, err := r.Run(context.Background(), RunRequest{Params: p})
	require.NoError(t, err)
}

func TestRunnerRejectsInvalidParams(t *testing.T) {
	r := newTestRunner(t, Config{})
	p := kiteParams()
	p.Elites = p.PopulationSize + 1
	_, err := r.Run(context.Background(), RunRequest{Params: p})
	require.Error(t, err)

	p = kiteParams()
	p.GraphType = graphgen.TypeKite
	p.GraphNodes = 12
	_, err = r.Run(context.Background(), RunRequest{Params: p})
	require.Error(t, err)
}

func TestRunnerHonorsCancel(t *testing.T) {
	r := newTestRunner(t, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Run(ctx, RunRequest{Params: kiteParams()})
	require.ErrorIs(t, err, context.Canceled)
}

func TestEvolveStopsAtGenerationCap(t *testing.T) {
	p := kiteParams()
	p.Generations = 3
	p.ConvergenceThreshold = 50
	g, err := BuildGraph(p, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	var out bytes.Buffer
	o, err := Evolve(context.Background(), p, g, rand.New(rand.NewSource(2)), report.NewTextReporter(&out))
	require.NoError(t, err)
	assert.Equal(t, 3, o.Generations)
	assert.False(t, o.Converged)
	assert.Equal(t, 3, strings.Count(out.String(), "Generation: "))
	assert.True(t, strings.HasSuffix(out.String(), "Generation 3 converged.\n"))

	_, err = Evolve(context.Background(), p, nil, rand.New(rand.NewSource(2)), nil)
	require.Error(t, err)
}

func TestBuildGraphOneify(t *testing.T) {
	p := kiteParams()
	p.GraphOverrideOnes = true
	g, err := BuildGraph(p, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	for _, e := range g.Edges() {
		assert.Equal(t, 1, e.Weight)
	}
}

func TestRunnerUsesClock(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	r := newTestRunner(t, Config{Now: func() time.Time { return fixed }})
	res, err := r.Run(context.Background(), RunRequest{RunID: "clock", Params: kiteParams()})
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01T12:00:00Z", res.CreatedAtUTC)
	assert.Zero(t, res.Elapsed)
}
