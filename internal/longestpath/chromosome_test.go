package longestpath

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"galp/internal/evo"
	"galp/internal/graph"
	"galp/internal/graphgen"
)

func triangle(t *testing.T) *graph.Graph {
	t.Helper()
	g, err := graph.New([]graph.Edge{
		{A: 1, B: 2, Weight: 1},
		{A: 1, B: 3, Weight: 5},
		{A: 2, B: 3, Weight: 3},
	}, 3)
	require.NoError(t, err)
	return g
}

func fixture(t *testing.T, typ graphgen.Type, n int) *graph.Graph {
	t.Helper()
	g, err := graphgen.ByType(typ, n, 0, nil)
	require.NoError(t, err)
	return g
}

func TestTriangleValueAndText(t *testing.T) {
	c, err := FromPrefs(triangle(t), DefaultCrossover, []int{1, 2, 3, 1})
	require.NoError(t, err)
	assert.Equal(t, 9, c.PathLength())
	assert.Equal(t, 9.0, c.Value())
	assert.Equal(t, []int{1, 2, 3}, c.Path().Nodes)
	assert.Equal(t, "(1 | 2, 3, 1) - [9 | 1, 2, 3]", c.Text())
}

func TestIsolatedNodeGetsSentinel(t *testing.T) {
	g := graph.MustNew([]graph.Edge{{A: 1, B: 2, Weight: 4}}, 3)
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		c, err := NewPathChromosome(g, DefaultCrossover, rng)
		require.NoError(t, err)
		prefs := c.Prefs()
		assert.Equal(t, 0, prefs[3])
		assert.Equal(t, 2, prefs[1])
		assert.Equal(t, 1, prefs[2])

		require.NoError(t, c.Mutate(1, rng))
		prefs = c.Prefs()
		assert.Equal(t, []int{0, 2, 1}, []int{prefs[3], prefs[1], prefs[2]})
	}

	c, err := FromPrefs(g, DefaultCrossover, []int{3, 2, 1, 0})
	require.NoError(t, err)
	assert.Equal(t, "(3 | 2, 1, 0) - [0 | 3]", c.Text())
}

func TestSetGeneValidation(t *testing.T) {
	c, err := FromPrefs(triangle(t), DefaultCrossover, []int{1, 2, 3, 1})
	require.NoError(t, err)

	require.ErrorIs(t, c.SetGene(1, 1), ErrInvalidGene)
	require.ErrorIs(t, c.SetGene(0, 0), ErrInvalidGene)
	require.ErrorIs(t, c.SetGene(4, 1), ErrInvalidGene)
	require.ErrorIs(t, c.SetGene(2, 7), graph.ErrNodeOutOfRange)

	require.NoError(t, c.SetGene(1, 3))
	assert.Equal(t, 3, c.Prefs()[1])

	_, err = FromPrefs(triangle(t), DefaultCrossover, []int{1, 2})
	require.ErrorIs(t, err, ErrInvalidGene)
}

func TestMutateProbabilityBounds(t *testing.T) {
	c, err := FromPrefs(triangle(t), DefaultCrossover, []int{1, 2, 3, 1})
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(1))

	require.ErrorIs(t, c.Mutate(1.5, rng), ErrInvalidProbability)
	require.ErrorIs(t, c.Mutate(-0.5, rng), ErrInvalidProbability)

	require.NoError(t, c.Mutate(0, rng))
	assert.Equal(t, []int{1, 2, 3, 1}, c.Prefs())

	require.NoError(t, c.Mutate(1, rng))
	after := c.Prefs()
	assert.Equal(t, 1, after[0], "start node moves only when enabled")
	for i, v := range []int{2, 3, 1} {
		assert.NotEqual(t, v, after[i+1], "slot %d", i+1)
	}
}

func TestStartMutationIsOptIn(t *testing.T) {
	g := triangle(t)
	rng := rand.New(rand.NewSource(2))

	plain, err := NewProblem(g, DefaultCrossover)
	require.NoError(t, err)
	c, err := plain.CreateChromosome(rng)
	require.NoError(t, err)
	start := c.Prefs()[0]
	for i := 0; i < 10; i++ {
		require.NoError(t, c.Mutate(1, rng))
		require.Equal(t, start, c.Prefs()[0])
	}

	moving, err := NewProblem(g, DefaultCrossover, WithStartMutation())
	require.NoError(t, err)
	c, err = moving.CreateChromosome(rng)
	require.NoError(t, err)
	clone := c.Clone()
	start = c.Prefs()[0]
	require.NoError(t, c.Mutate(1, rng))
	assert.NotEqual(t, start, c.Prefs()[0])
	require.NoError(t, clone.Mutate(1, rng))
	assert.NotEqual(t, start, clone.Prefs()[0])
}

func TestMutationStaysOnEdges(t *testing.T) {
	g, err := graphgen.Recursive(25, 0.15, rand.New(rand.NewSource(4)))
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(5))
	c, err := NewPathChromosome(g, DefaultCrossover, rng)
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		require.NoError(t, c.Mutate(0.3, rng))
		prefs := c.Prefs()
		for node := 1; node <= g.NodeCount(); node++ {
			w, err := g.Edge(node, prefs[node])
			require.NoError(t, err)
			require.NotEqual(t, graph.NoEdge, w, "node %d -> %d", node, prefs[node])
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	c, err := FromPrefs(triangle(t), DefaultCrossover, []int{1, 2, 3, 1})
	require.NoError(t, err)
	clone := c.Clone()
	require.NoError(t, clone.SetGene(0, 3))
	assert.Equal(t, 1, c.Prefs()[0])
	assert.Equal(t, c.Strategy(), clone.Strategy())
}

func TestLocalSearchPicksBestSingleChange(t *testing.T) {
	g := fixture(t, graphgen.TypeRingAscending, 5)
	c, err := FromPrefs(g, DefaultCrossover, []int{1, 5, 1, 2, 3, 4})
	require.NoError(t, err)
	require.Equal(t, 13, c.PathLength())

	require.True(t, c.LocalSearch())
	assert.Equal(t, 14, c.PathLength())
	assert.Equal(t, 5, c.Prefs()[0])

	assert.False(t, c.LocalSearch())
	assert.Equal(t, 14, c.PathLength())
}

func TestLocalSearchNeverWorsens(t *testing.T) {
	g := fixture(t, graphgen.TypeExample, 9)
	rng := rand.New(rand.NewSource(8))
	for i := 0; i < 30; i++ {
		c, err := NewPathChromosome(g, DefaultCrossover, rng)
		require.NoError(t, err)
		before := c.PathLength()
		improved := c.LocalSearch()
		if improved {
			assert.Greater(t, c.PathLength(), before)
		} else {
			assert.Equal(t, before, c.PathLength())
		}
	}
}

func TestProblem(t *testing.T) {
	_, err := NewProblem(nil, DefaultCrossover)
	require.Error(t, err)
	_, err = NewProblem(triangle(t), CrossoverStrategy(9))
	require.ErrorIs(t, err, ErrUnknownCrossover)

	p, err := NewProblem(triangle(t), CrossoverOptimumGreedy)
	require.NoError(t, err)
	c, err := p.CreateChromosome(rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, CrossoverOptimumGreedy, c.Strategy())
	assert.Equal(t, c.Value(), p.Evaluate(c))
}

func TestEngineImprovesLongestPath(t *testing.T) {
	g := fixture(t, graphgen.TypeKite, 13)
	for _, strategy := range []CrossoverStrategy{CrossoverRandom, CrossoverFixedPosition, CrossoverOptimumGreedy, CrossoverPathSplice} {
		t.Run(strategy.String(), func(t *testing.T) {
			p, err := NewProblem(g, strategy)
			require.NoError(t, err)

			cfg := evo.DefaultConfig()
			cfg.PopulationSize = 30
			cfg.Elites = 2
			cfg.Workers = 3
			ga, err := evo.New[*PathChromosome](context.Background(), p, cfg, rand.New(rand.NewSource(17)))
			require.NoError(t, err)

			_, start := ga.Optimum()
			for i := 0; i < 40 && !ga.HasConverged(15); i++ {
				require.NoError(t, ga.NextGeneration(context.Background()))
			}
			best, value := ga.Optimum()
			assert.GreaterOrEqual(t, value, start)
			assert.Equal(t, value, best.Value())
		})
	}
}
