package catalogue

import (
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Summary holds basic statistics of one column.
type Summary struct {
	Count  int
	Mean   float64
	Std    float64
	Median float64
}

// Summarize describes xs. An empty column yields the zero Summary.
func Summarize(xs []float64) Summary {
	if len(xs) == 0 {
		return Summary{}
	}
	sorted := slices.Clone(xs)
	slices.Sort(sorted)
	s := Summary{Count: len(xs), Median: stat.Quantile(0.5, stat.Empirical, sorted, nil)}
	if len(xs) == 1 {
		s.Mean = xs[0]
		return s
	}
	s.Mean, s.Std = stat.MeanStdDev(xs, nil)
	return s
}
