package stats

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// RunSummary condenses a best-objective history.
type RunSummary struct {
	Generations int     `json:"generations"`
	InitialBest float64 `json:"initial_best"`
	FinalBest   float64 `json:"final_best"`
	BestMean    float64 `json:"best_mean"`
	BestStd     float64 `json:"best_std"`
	BestMax     float64 `json:"best_max"`
	BestMin     float64 `json:"best_min"`
	Improvement float64 `json:"improvement"`
	// FirstBestGeneration is the 1-based generation the final best first
	// appeared in.
	FirstBestGeneration int `json:"first_best_generation"`
}

func Summarize(bestByGeneration []float64) RunSummary {
	n := len(bestByGeneration)
	if n == 0 {
		return RunSummary{}
	}
	mean, std := stat.MeanStdDev(bestByGeneration, nil)
	if n < 2 {
		std = 0
	}
	s := RunSummary{
		Generations: n,
		InitialBest: bestByGeneration[0],
		FinalBest:   bestByGeneration[n-1],
		BestMean:    mean,
		BestStd:     std,
		BestMax:     floats.Max(bestByGeneration),
		BestMin:     floats.Min(bestByGeneration),
	}
	s.Improvement = s.FinalBest - s.InitialBest
	for i, v := range bestByGeneration {
		if v == s.FinalBest {
			s.FirstBestGeneration = i + 1
			break
		}
	}
	return s
}

// MeanStd is the sample mean and standard deviation of values. A single
// value has zero deviation.
func MeanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	mean, std := stat.MeanStdDev(values, nil)
	if len(values) < 2 {
		std = 0
	}
	return mean, std
}
