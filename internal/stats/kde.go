package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Density is a kernel density estimate evaluated on a regular grid.
type Density struct {
	X         []float64
	Y         []float64
	Bandwidth float64
}

// KDE estimates the density of xs with a Gaussian kernel and Scott's
// bandwidth rule. The grid extends three bandwidths past the data range.
// NaN values are dropped; fewer than two distinct values yields an error.
func KDE(xs []float64, points int) (Density, error) {
	x := DropNaN(xs)
	if len(x) < 2 || points < 2 {
		return Density{}, ErrSampleSize
	}
	sd := stat.StdDev(x, nil)
	if sd == 0 {
		return Density{}, ErrIdentical
	}
	bw := sd * math.Pow(float64(len(x)), -0.2)

	lo, hi := floats.Min(x)-3*bw, floats.Max(x)+3*bw
	d := Density{X: make([]float64, points), Y: make([]float64, points), Bandwidth: bw}
	floats.Span(d.X, lo, hi)
	k := distuv.Normal{Mu: 0, Sigma: bw}
	for i, g := range d.X {
		var sum float64
		for _, v := range x {
			sum += k.Prob(g - v)
		}
		d.Y[i] = sum / float64(len(x))
	}
	return d, nil
}
