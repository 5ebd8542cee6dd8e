package evo

const (
	DefaultFitnessA = 1.0
	DefaultFitnessB = 10.0
)

// ScaleFitness maps objectives linearly onto [a, b] so that the minimum
// becomes a and the maximum becomes b. When every objective is equal each
// member gets b.
func ScaleFitness(objectives []float64, a, b float64) []float64 {
	out := make([]float64, len(objectives))
	if len(objectives) == 0 {
		return out
	}
	lo, hi := objectives[0], objectives[0]
	for _, v := range objectives[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi == lo {
		for i := range out {
			out[i] = b
		}
		return out
	}
	span := hi - lo
	for i, v := range objectives {
		if v == hi {
			out[i] = b
			continue
		}
		out[i] = a + (b-a)*(v-lo)/span
	}
	return out
}
