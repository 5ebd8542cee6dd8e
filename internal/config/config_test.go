package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"galp/internal/graphgen"
	"galp/internal/longestpath"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
	cfg := Default().EngineConfig()
	assert.Equal(t, 50, cfg.PopulationSize)
	assert.Equal(t, "roulette", cfg.Selector.Name())
}

func TestLoadKeyValue(t *testing.T) {
	path := writeFile(t, "run.ini", `
# longest path on a kite
[run]
graph_type = kite
graph_nodes = 13
graph_p = 0.25
random_seed = 42
graph_override_ones = true
nr_generations = 300
population_size = 30
mutation_probability = 0.1
crossover_probability = 0.6
convergence_threshold = 15
nr_of_elites = 3
; greedy
crossover_type = 2
local_search = yes
`)
	_, err := Load(path)
	require.ErrorIs(t, err, ErrBadValue, "yes is not a boolean")

	path = writeFile(t, "run.ini", `
graph_type = kite
graph_nodes = 13
graph_p = 0.25
random_seed = 42
graph_override_ones = true
nr_generations = 300
population_size = 30
convergence_threshold = 15
nr_of_elites = 3
crossover_type = 2
local_search = 1
`)
	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, graphgen.TypeKite, p.GraphType)
	assert.Equal(t, 13, p.GraphNodes)
	assert.Equal(t, 0.25, p.GraphP)
	assert.Equal(t, int64(42), p.RandomSeed)
	assert.True(t, p.GraphOverrideOnes)
	assert.Equal(t, 300, p.Generations)
	assert.Equal(t, 30, p.PopulationSize)
	assert.Equal(t, 15, p.ConvergenceThreshold)
	assert.Equal(t, 3, p.Elites)
	assert.Equal(t, longestpath.CrossoverOptimumGreedy, p.Crossover)
	assert.True(t, p.LocalSearch)
	assert.Equal(t, Default().MutationProbability, p.MutationProbability)
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "run.json", `{
  "problem": "max_int",
  "chromosome_length": 24,
  "random_seed": 7,
  "nr_generations": 50,
  "local_search": true,
  "selection": "tournament",
  "workers": 4
}`)
	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ProblemMaxInt, p.Problem)
	assert.Equal(t, 24, p.ChromosomeLength)
	assert.Equal(t, int64(7), p.RandomSeed)
	assert.Equal(t, 50, p.Generations)
	assert.True(t, p.LocalSearch)
	assert.Equal(t, 4, p.Workers)
	assert.Equal(t, "tournament", p.EngineConfig().Selector.Name())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.ini"))
	require.Error(t, err)

	_, err = Load(writeFile(t, "a.ini", "population = 10\n"))
	require.ErrorIs(t, err, ErrUnknownKey)

	_, err = Load(writeFile(t, "b.ini", "graph_nodes = many\n"))
	require.ErrorIs(t, err, ErrBadValue)

	_, err = Load(writeFile(t, "c.ini", "graph_nodes\n"))
	require.ErrorIs(t, err, ErrBadValue)

	_, err = Load(writeFile(t, "d.ini", "crossover_type = uniform\n"))
	require.ErrorIs(t, err, ErrBadValue)

	_, err = Load(writeFile(t, "e.json", `{"graph_nodes": 2.5}`))
	require.ErrorIs(t, err, ErrBadValue)

	_, err = Load(writeFile(t, "f.ini", "nr_of_elites = 60\n"))
	require.Error(t, err)

	_, err = Load(writeFile(t, "g.ini", "graph_p = 1.5\n"))
	require.ErrorIs(t, err, ErrInvalidParam)
}

func TestApplyOverrides(t *testing.T) {
	p := Default()
	require.NoError(t, Apply(&p, map[string]any{
		"graph_nodes":    40,
		"graph_p":        0.3,
		"local_search":   true,
		"mutate_start":   "yes",
		"crossover_type": "path_splice",
	}))
	assert.Equal(t, 40, p.GraphNodes)
	assert.Equal(t, 0.3, p.GraphP)
	assert.True(t, p.LocalSearch)
	assert.True(t, p.MutateStart)
	assert.False(t, Default().MutateStart)
	assert.Equal(t, longestpath.CrossoverPathSplice, p.Crossover)

	require.ErrorIs(t, Apply(&p, map[string]any{"graph_nodes": []int{1}}), ErrBadValue)
	assert.Contains(t, Keys(), "nr_of_elites")
}

func TestResolveSeed(t *testing.T) {
	p := Default()
	p.RandomSeed = 9
	got, err := ResolveSeed(p)
	require.NoError(t, err)
	assert.Equal(t, int64(9), got.RandomSeed)

	p.RandomSeed = 0
	got, err = ResolveSeed(p)
	require.NoError(t, err)
	assert.Positive(t, got.RandomSeed)
}

func TestSampleConfigsLoad(t *testing.T) {
	for _, name := range []string{"longest_path.ini", "max_int.ini", "kite.json"} {
		p, err := Load(filepath.Join("..", "..", "configs", name))
		require.NoError(t, err, name)
		require.NoError(t, p.Validate(), name)
	}
}
