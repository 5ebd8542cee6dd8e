package evo

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScaleFitnessRange(t *testing.T) {
	objectives := []float64{3, 9, -1, 4, 9}
	scaled := ScaleFitness(objectives, 1, 10)
	require.Len(t, scaled, len(objectives))
	for _, f := range scaled {
		assert.GreaterOrEqual(t, f, 1.0)
		assert.LessOrEqual(t, f, 10.0)
	}
	assert.Equal(t, 10.0, scaled[1])
	assert.Equal(t, 10.0, scaled[4])
	assert.Equal(t, 1.0, scaled[2])
	assert.InDelta(t, 1+9*0.5, scaled[3], 1e-9)
}

func TestScaleFitnessEqualObjectives(t *testing.T) {
	scaled := ScaleFitness([]float64{4, 4, 4}, 1, 10)
	assert.Equal(t, []float64{10, 10, 10}, scaled)
	assert.Empty(t, ScaleFitness(nil, 1, 10))
}

func TestRouletteIndex(t *testing.T) {
	cum := CumulativeFitness([]float64{1, 0, 3})
	assert.Equal(t, []float64{1, 1, 4}, cum)

	cases := []struct {
		u    float64
		want int
	}{
		{u: 0, want: 0},
		{u: 0.24, want: 0},
		{u: 0.25, want: 2},
		{u: 0.99, want: 2},
	}
	for _, tc := range cases {
		idx, err := RouletteIndex(cum, tc.u)
		require.NoError(t, err)
		assert.Equal(t, tc.want, idx, "u=%v", tc.u)
	}

	_, err := RouletteIndex(nil, 0.5)
	require.ErrorIs(t, err, ErrEmptyPopulation)
	_, err = RouletteIndex([]float64{0, 0}, 0.5)
	require.Error(t, err)
}

func TestRouletteProportional(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	fitness := []float64{1, 3}
	counts := make([]int, 2)
	for i := 0; i < 20000; i++ {
		idx, err := RouletteSelector{}.Pick(rng, fitness)
		require.NoError(t, err)
		counts[idx]++
	}
	share := float64(counts[1]) / 20000
	assert.InDelta(t, 0.75, share, 0.02)
}

func TestTournamentPrefersFitter(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	fitness := []float64{1, 10, 2, 3}
	wins := 0
	for i := 0; i < 1000; i++ {
		idx, err := TournamentSelector{Size: 4}.Pick(rng, fitness)
		require.NoError(t, err)
		if idx == 1 {
			wins++
		}
	}
	assert.Greater(t, wins, 500)
}

func TestSelectorFromName(t *testing.T) {
	s, err := SelectorFromName("")
	require.NoError(t, err)
	assert.Equal(t, "roulette", s.Name())

	s, err = SelectorFromName("tournament")
	require.NoError(t, err)
	assert.Equal(t, "tournament", s.Name())

	_, err = SelectorFromName("rank")
	require.Error(t, err)
}
