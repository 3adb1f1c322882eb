package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Moments holds the shape statistics of a series.
type Moments struct {
	N    int
	Mean float64
	// Skewness is the biased sample skewness m3/m2^1.5.
	Skewness float64
	// Kurtosis is Pearson's kurtosis m4/m2^2; a normal sample has 3.
	Kurtosis float64
}

// Describe computes the moment statistics of xs after dropping NaN.
func Describe(xs []float64) (Moments, error) {
	xs = DropNaN(xs)
	if len(xs) < 2 {
		return Moments{}, ErrSampleSize
	}
	m2 := stat.Moment(2, xs, nil)
	if m2 == 0 {
		return Moments{N: len(xs), Mean: xs[0], Skewness: math.NaN(), Kurtosis: math.NaN()}, nil
	}
	return Moments{
		N:        len(xs),
		Mean:     stat.Mean(xs, nil),
		Skewness: stat.Moment(3, xs, nil) / math.Pow(m2, 1.5),
		Kurtosis: stat.Moment(4, xs, nil) / (m2 * m2),
	}, nil
}

// Extremes locates the largest and smallest non-NaN value of ys.
type Extremes struct {
	Max, Min       float64
	MaxIdx, MinIdx int
}

// FindExtremes returns the extremes of ys; ties keep the first index.
// It returns false when ys has no finite value.
func FindExtremes(ys []float64) (Extremes, bool) {
	e := Extremes{MaxIdx: -1, MinIdx: -1}
	for i, y := range ys {
		if math.IsNaN(y) {
			continue
		}
		if e.MaxIdx < 0 || y > e.Max {
			e.Max, e.MaxIdx = y, i
		}
		if e.MinIdx < 0 || y < e.Min {
			e.Min, e.MinIdx = y, i
		}
	}
	return e, e.MaxIdx >= 0
}
