package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// ShapiroResult is the outcome of a Shapiro-Wilk normality test.
type ShapiroResult struct {
	W float64
	P float64
}

// Royston (1995) polynomial approximations, algorithm AS R94.
var (
	swA1     = []float64{0, 0.221157, -0.147981, -2.071190, 4.434685, -2.706056}
	swA2     = []float64{0, 0.042981, -0.293762, -1.752461, 5.682633, -3.582633}
	swMean   = []float64{0.5440, -0.39978, 0.025054, -6.714e-4}
	swSigma  = []float64{1.3822, -0.77857, 0.062767, -0.0020322}
	swGamma  = []float64{-2.273, 0.459}
	swMeanL  = []float64{-1.5861, -0.31082, -0.083751, 0.0038915}
	swSigmaL = []float64{-0.4803, -0.082676, 0.0030302}
)

// poly evaluates c[0] + c[1]x + c[2]x^2 + ...
func poly(c []float64, x float64) float64 {
	var v float64
	for i := len(c) - 1; i >= 0; i-- {
		v = v*x + c[i]
	}
	return v
}

// ShapiroWilk tests the null hypothesis that xs was drawn from a normal
// distribution. NaN values are dropped; 3 to 5000 observations are
// supported.
func ShapiroWilk(xs []float64) (ShapiroResult, error) {
	x := DropNaN(xs)
	n := len(x)
	if n < 3 || n > 5000 {
		return ShapiroResult{}, ErrSampleSize
	}
	sort.Float64s(x)
	if x[n-1]-x[0] == 0 {
		return ShapiroResult{}, ErrIdentical
	}

	a := swCoefficients(n)
	mean := floats.Sum(x) / float64(n)
	var ss float64
	for _, v := range x {
		ss += (v - mean) * (v - mean)
	}
	b := floats.Dot(a, x)
	w := min(b*b/ss, 1)
	return ShapiroResult{W: w, P: swPValue(w, n)}, nil
}

// swCoefficients returns the antisymmetric weights a_1..a_n.
func swCoefficients(n int) []float64 {
	a := make([]float64, n)
	if n == 3 {
		a[0], a[2] = -math.Sqrt(0.5), math.Sqrt(0.5)
		return a
	}
	m := make([]float64, n)
	for i := range m {
		m[i] = distuv.UnitNormal.Quantile((float64(i+1) - 0.375) / (float64(n) + 0.25))
	}
	mm := floats.Dot(m, m)
	u := 1 / math.Sqrt(float64(n))
	an := m[n-1]/math.Sqrt(mm) + poly(swA1, u)

	var phi float64
	first := 1
	if n > 5 {
		an1 := m[n-2]/math.Sqrt(mm) + poly(swA2, u)
		phi = (mm - 2*m[n-1]*m[n-1] - 2*m[n-2]*m[n-2]) / (1 - 2*an*an - 2*an1*an1)
		a[n-2], a[1] = an1, -an1
		first = 2
	} else {
		phi = (mm - 2*m[n-1]*m[n-1]) / (1 - 2*an*an)
	}
	a[n-1], a[0] = an, -an
	for i := first; i < n-first; i++ {
		a[i] = m[i] / math.Sqrt(phi)
	}
	return a
}

func swPValue(w float64, n int) float64 {
	if n == 3 {
		const pi6, stqr = 6 / math.Pi, math.Pi / 3
		return max(pi6*(math.Asin(math.Sqrt(w))-stqr), 0)
	}
	y := math.Log(1 - w)
	var m, s float64
	if n <= 11 {
		gamma := poly(swGamma, float64(n))
		if y >= gamma {
			return 1e-99
		}
		y = -math.Log(gamma - y)
		m = poly(swMean, float64(n))
		s = math.Exp(poly(swSigma, float64(n)))
	} else {
		ln := math.Log(float64(n))
		m = poly(swMeanL, ln)
		s = math.Exp(poly(swSigmaL, ln))
	}
	return distuv.UnitNormal.Survival((y - m) / s)
}
