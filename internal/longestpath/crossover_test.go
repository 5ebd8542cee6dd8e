package longestpath

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"galp/internal/graphgen"
)

func pair(t *testing.T, strategy CrossoverStrategy, seed int64) (*PathChromosome, *PathChromosome, *rand.Rand) {
	t.Helper()
	g, err := graphgen.Recursive(20, 0.2, rand.New(rand.NewSource(seed)))
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(seed + 100))
	a, err := NewPathChromosome(g, strategy, rng)
	require.NoError(t, err)
	b, err := NewPathChromosome(g, strategy, rng)
	require.NoError(t, err)
	return a, b, rng
}

// requireSlotsExchanged checks that every slot of the children holds the two
// parent values for that slot, possibly swapped.
func requireSlotsExchanged(t *testing.T, pa, pb, ca, cb []int) {
	t.Helper()
	for i := range pa {
		same := ca[i] == pa[i] && cb[i] == pb[i]
		swapped := ca[i] == pb[i] && cb[i] == pa[i]
		require.True(t, same || swapped, "slot %d", i)
	}
}

func TestCrossoverAt(t *testing.T) {
	c, err := FromPrefs(triangle(t), CrossoverFixedPosition, []int{1, 2, 3, 1})
	require.NoError(t, err)
	o, err := FromPrefs(triangle(t), CrossoverFixedPosition, []int{3, 3, 1, 2})
	require.NoError(t, err)

	c.CrossoverAt(2, o)
	assert.Equal(t, []int{1, 2, 1, 2}, c.Prefs())
	assert.Equal(t, []int{3, 3, 3, 1}, o.Prefs())

	c.CrossoverAt(0, o)
	assert.Equal(t, []int{3, 3, 3, 1}, c.Prefs())
	assert.Equal(t, []int{1, 2, 1, 2}, o.Prefs())
}

func TestSwappingStrategiesKeepSlotValues(t *testing.T) {
	for _, strategy := range []CrossoverStrategy{CrossoverRandom, CrossoverFixedPosition, CrossoverPathSplice} {
		t.Run(strategy.String(), func(t *testing.T) {
			for seed := int64(1); seed <= 10; seed++ {
				a, b, rng := pair(t, strategy, seed)
				pa, pb := a.Prefs(), b.Prefs()
				a.Crossover(b, rng)
				requireSlotsExchanged(t, pa, pb, a.Prefs(), b.Prefs())
			}
		})
	}
}

func TestPathSpliceSwapsOnlyPathNodes(t *testing.T) {
	for seed := int64(1); seed <= 10; seed++ {
		a, b, rng := pair(t, CrossoverPathSplice, seed)
		shorter := a.Path().Nodes
		if b.PathLength() < a.PathLength() {
			shorter = b.Path().Nodes
		}
		onPath := map[int]bool{0: true}
		for _, n := range shorter {
			onPath[n] = true
		}

		pa, pb := a.Prefs(), b.Prefs()
		a.Crossover(b, rng)
		ca, cb := a.Prefs(), b.Prefs()
		for i := range pa {
			if !onPath[i] {
				assert.Equal(t, pa[i], ca[i], "slot %d", i)
				assert.Equal(t, pb[i], cb[i], "slot %d", i)
			}
		}
	}
}

func TestOptimumGreedyKeepsBestParent(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		a, b, rng := pair(t, CrossoverOptimumGreedy, seed)
		bestParent := max(a.PathLength(), b.PathLength())

		a.Crossover(b, rng)
		assert.GreaterOrEqual(t, max(a.PathLength(), b.PathLength()), bestParent, "seed %d", seed)
		assert.Equal(t, a.Prefs()[0], b.Prefs()[0])
	}
}

func TestOptimumGreedyCopiesLongerWalk(t *testing.T) {
	g := fixture(t, graphgen.TypeRingAscending, 5)
	long, err := FromPrefs(g, CrossoverOptimumGreedy, []int{1, 2, 3, 4, 5, 4})
	require.NoError(t, err)
	short, err := FromPrefs(g, CrossoverOptimumGreedy, []int{5, 5, 1, 2, 3, 1})
	require.NoError(t, err)
	want := long.PathLength()
	require.Equal(t, 14, want)
	require.Equal(t, 1, short.PathLength())

	short.Crossover(long, rand.New(rand.NewSource(1)))
	assert.Equal(t, want, short.PathLength())
	assert.Equal(t, want, long.PathLength())
	assert.Equal(t, long.Path().Nodes, short.Path().Nodes)
}

func TestParseCrossover(t *testing.T) {
	s, err := ParseCrossover("2")
	require.NoError(t, err)
	assert.Equal(t, CrossoverOptimumGreedy, s)

	s, err = ParseCrossover("path_splice")
	require.NoError(t, err)
	assert.Equal(t, CrossoverPathSplice, s)

	_, err = ParseCrossover("4")
	require.ErrorIs(t, err, ErrUnknownCrossover)
	_, err = ParseCrossover("uniform")
	require.ErrorIs(t, err, ErrUnknownCrossover)
	assert.Equal(t, CrossoverFixedPosition, DefaultCrossover)
}
