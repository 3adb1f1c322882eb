package stats

import (
	"bytes"
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/integrate"
)

func TestKruskalWallis(t *testing.T) {
	r, err := KruskalWallis([]float64{1, 2, 3}, []float64{4, 5, 6})
	require.NoError(t, err)
	assert.InDelta(t, 3.857142857, r.H, 1e-6)
	assert.InDelta(t, 0.049534613, r.P, 1e-6)
	assert.Equal(t, 1, r.DF)
	assert.Equal(t, "Kruskal-Wallis test statistic: 3.857, p-value: 0.050", r.String())
}

func TestKruskalWallisTies(t *testing.T) {
	// pooled ranks: 1,2.5,2.5 | 4,5.5,5.5 ; tie sum = 12
	r, err := KruskalWallis([]float64{1, 2, 2}, []float64{3, 4, 4})
	require.NoError(t, err)
	// uncorrected H = 12/42*(36/3+225/3) - 21 = 3.857142857
	assert.InDelta(t, 3.857142857/(1-12.0/210), r.H, 1e-9)
}

// scipy.stats.kruskal reference values for six scenario-like groups.
func TestKruskalWallisSixGroups(t *testing.T) {
	separated := [][]float64{
		{8.11, 8.10, 8.12, 8.09, 8.10},
		{8.05, 8.07, 8.06, 8.08, 8.05},
		{8.02, 8.04, 8.03, 8.05, 8.01},
		{7.98, 8.00, 7.99, 8.01, 7.97},
		{7.93, 7.95, 7.94, 7.96, 7.92},
		{7.85, 7.88, 7.86, 7.87, 7.84},
	}
	r, err := KruskalWallis(separated...)
	require.NoError(t, err)
	assert.InDelta(t, 28.074, r.H, 1e-3)
	assert.InDelta(t, 3.5213e-05, r.P, 1e-8)
	assert.Equal(t, 5, r.DF)
	assert.True(t, Significant(r.P, 0.05))

	overlapping := [][]float64{
		{3.1, 2.9, 3.3, 3.0},
		{3.2, 3.0, 2.8, 3.1},
		{2.9, 3.3, 3.1, 3.0},
		{3.0, 3.2, 2.9, 3.4},
		{3.1, 2.8, 3.0, 3.2},
		{3.3, 3.0, 3.1, 2.9},
	}
	r, err = KruskalWallis(overlapping...)
	require.NoError(t, err)
	assert.InDelta(t, 0.527, r.H, 1e-3)
	assert.InDelta(t, 0.9911, r.P, 1e-4)
	assert.False(t, Significant(r.P, 0.05))
}

func TestKruskalWallisErrors(t *testing.T) {
	_, err := KruskalWallis([]float64{1, 2})
	assert.ErrorIs(t, err, ErrTooFewGroups)
	_, err = KruskalWallis([]float64{1, 2}, nil)
	assert.ErrorIs(t, err, ErrEmptyGroup)
	_, err = KruskalWallis([]float64{1, 1}, []float64{1})
	assert.ErrorIs(t, err, ErrIdentical)
}

func TestDunn(t *testing.T) {
	groups := [][]float64{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}
	raw, err := Dunn(groups, NoAdjustment)
	require.NoError(t, err)
	adj, err := Dunn(groups, Bonferroni)
	require.NoError(t, err)

	k, _ := adj.Dims()
	require.Equal(t, 3, k)
	for i := 0; i < k; i++ {
		assert.Equal(t, 1.0, adj.At(i, i))
		for j := 0; j < k; j++ {
			assert.Equal(t, adj.At(i, j), adj.At(j, i))
			if i != j {
				assert.GreaterOrEqual(t, adj.At(i, j), raw.At(i, j))
				assert.LessOrEqual(t, adj.At(i, j), 1.0)
			}
		}
	}
	// neighbouring groups differ by 3 mean ranks: z = 3/sqrt(7.5*2/3)
	z := 3 / math.Sqrt(7.5*2.0/3)
	want := math.Erfc(z / math.Sqrt2)
	assert.InDelta(t, want, raw.At(0, 1), 1e-9)
	assert.InDelta(t, math.Min(3*want, 1), adj.At(0, 1), 1e-9)
	assert.Less(t, raw.At(0, 2), raw.At(0, 1))
}

func TestDunnTwoGroupsMatchesKruskal(t *testing.T) {
	a, b := []float64{1, 2, 3}, []float64{4, 5, 6}
	m, err := Dunn([][]float64{a, b}, Bonferroni)
	require.NoError(t, err)
	kw, err := KruskalWallis(a, b)
	require.NoError(t, err)
	assert.InDelta(t, kw.P, m.At(0, 1), 1e-9)
}

func TestWriteMatrix(t *testing.T) {
	m, err := Dunn([][]float64{{1, 2, 3}, {4, 5, 6}}, Bonferroni)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, WriteMatrix(&buf, []string{"A", "B"}, m))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "1.000")
	assert.Contains(t, lines[1], "0.050")
}

func TestAdjust(t *testing.T) {
	ps := []float64{0.01, 0.04, 0.03, 0.5}
	assert.Equal(t, []float64{0.04, 0.16, 0.12, 1}, Adjust(ps, Bonferroni))
	holm := Adjust(ps, Holm)
	assert.InDeltaSlice(t, []float64{0.04, 0.09, 0.09, 0.5}, holm, 1e-12)
	assert.Equal(t, ps, Adjust(ps, NoAdjustment))

	a, err := ParseAdjustment("Bonferroni")
	require.NoError(t, err)
	assert.Equal(t, Bonferroni, a)
	_, err = ParseAdjustment("sidak")
	assert.Error(t, err)
}

func TestDescribe(t *testing.T) {
	m, err := Describe([]float64{1, 2, 3, 4, math.NaN()})
	require.NoError(t, err)
	assert.Equal(t, 4, m.N)
	assert.InDelta(t, 2.5, m.Mean, 1e-12)
	assert.InDelta(t, 0, m.Skewness, 1e-12)
	// m2 = 1.25, m4 = 2.5625
	assert.InDelta(t, 2.5625/(1.25*1.25), m.Kurtosis, 1e-12)

	m, err = Describe([]float64{0, 0, 0, 10})
	require.NoError(t, err)
	assert.Greater(t, m.Skewness, 0.0)

	_, err = Describe([]float64{1})
	assert.ErrorIs(t, err, ErrSampleSize)
}

func TestFindExtremes(t *testing.T) {
	e, ok := FindExtremes([]float64{math.NaN(), 3, 7, 1, 7})
	require.True(t, ok)
	assert.Equal(t, Extremes{Max: 7, MaxIdx: 2, Min: 1, MinIdx: 3}, e)

	_, ok = FindExtremes([]float64{math.NaN()})
	assert.False(t, ok)
}

func TestShapiroWilk(t *testing.T) {
	r, err := ShapiroWilk([]float64{1, 2, 3})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, r.W, 1e-9)
	assert.InDelta(t, 1.0, r.P, 1e-6)

	// normal scores look normal
	normal := make([]float64, 50)
	for i := range normal {
		normal[i] = math.Sqrt2 * math.Erfinv(2*(float64(i)+0.5)/50-1)
	}
	r, err = ShapiroWilk(normal)
	require.NoError(t, err)
	assert.Greater(t, r.W, 0.98)
	assert.Greater(t, r.P, 0.5)

	skewed := []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 2, 50}
	r, err = ShapiroWilk(skewed)
	require.NoError(t, err)
	assert.Less(t, r.P, 0.001)

	small := []float64{2.1, 3.4, 1.9, 5.6, 4.4}
	r, err = ShapiroWilk(small)
	require.NoError(t, err)
	assert.Greater(t, r.W, 0.8)
	assert.LessOrEqual(t, r.W, 1.0)
	assert.True(t, r.P > 0 && r.P <= 1)

	_, err = ShapiroWilk([]float64{1, 2})
	assert.ErrorIs(t, err, ErrSampleSize)
	_, err = ShapiroWilk([]float64{4, 4, 4, 4})
	assert.ErrorIs(t, err, ErrIdentical)
}

// scipy.stats.shapiro reference values; the n=11 sample is the
// Shapiro and Wilk (1965) weights example.
func TestShapiroWilkReference(t *testing.T) {
	tests := []struct {
		name string
		xs   []float64
		w, p float64
	}{
		{"n=5", []float64{2.1, 3.4, 1.9, 5.6, 4.4}, 0.932085, 0.610656},
		{"n=11", []float64{148, 154, 158, 160, 161, 162, 166, 170, 182, 195, 236}, 0.788815, 0.006704},
		{"n=20", []float64{
			7.993, 7.991, 7.994, 8.035, 7.994, 7.925, 8.017, 7.987, 7.989, 8.006,
			8.012, 8.058, 8.033, 8.006, 7.963, 7.949, 8.012, 8.066, 8.002, 7.995,
		}, 0.953759, 0.427764},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ShapiroWilk(tt.xs)
			require.NoError(t, err)
			assert.InDelta(t, tt.w, r.W, 1e-5)
			assert.InDelta(t, tt.p, r.P, 1e-5)
		})
	}
}

// statsmodels adfuller(x, regression="c", autolag="AIC") reference values.
func TestADFReference(t *testing.T) {
	ar := []float64{
		0.0, 0.095, 1.298, -0.282, 0.851, 0.166, -0.179, 1.81, 1.063, 0.489,
		0.974, 1.614, 0.776, 0.976, -0.486, -0.61, -0.743, -1.704, -2.361, -2.807,
		-1.642, -0.993, -0.817, -0.339, -1.505, -0.832, -0.178, 0.662, -0.515, -0.657,
		-2.344, -1.676, -3.035, -2.937, -0.367, -2.385, -0.394, 0.131, -0.247, 0.336,
		0.695, 1.393, 0.466, -0.359, -0.784, -1.378, -0.734, -1.153, 0.492, -1.623,
		-1.905, -1.906, -3.046, 0.379, -2.219, -1.393, -1.222, 1.045, -1.463, 0.34,
	}
	walk := []float64{
		0.0, -1.179, -2.327, -1.658, -3.952, -4.095, -6.351, -5.25, -5.047, -3.691,
		-4.195, -3.797, -4.083, -4.821, -4.676, -5.933, -6.288, -5.591, -5.533, -5.943,
		-3.754, -3.696, -4.283, -4.123, -4.646, -5.031, -5.381, -3.356, -3.333, -3.157,
		-2.483, -0.466, -0.69, -1.314, 1.161, -0.299, -0.666, 0.001, 2.285, 1.335,
		-1.093, -0.431, -0.953, -1.34, -0.879, -0.655, -0.364, -0.795, 0.494, 1.999,
		2.031, 1.579, 2.312, 2.79, 1.75, 1.29, 2.339, 2.243, 1.914, 2.126,
	}
	tests := []struct {
		name       string
		xs         []float64
		stat, p    float64
		lag, nobs  int
		crit1, aic float64
	}{
		{"ar1", ar, -2.557887, 0.102017, 1, 58, -3.548494, 141.494379},
		{"random walk", walk, -0.464541, 0.898752, 7, 52, -3.562879, 134.562544},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ADF(tt.xs, -1)
			require.NoError(t, err)
			assert.InDelta(t, tt.stat, r.Stat, 1e-5)
			assert.InDelta(t, tt.p, r.P, 1e-5)
			assert.Equal(t, tt.lag, r.UsedLag)
			assert.Equal(t, tt.nobs, r.NObs)
			assert.InDelta(t, tt.crit1, r.Critical["1%"], 1e-5)
			assert.InDelta(t, tt.aic, r.ICBest, 1e-4)
		})
	}
}

func TestADF(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	noise := make([]float64, 200)
	walk := make([]float64, 200)
	for i := range noise {
		noise[i] = rng.NormFloat64()
		if i > 0 {
			walk[i] = walk[i-1] + rng.NormFloat64()
		}
	}

	stationary, err := ADF(noise, -1)
	require.NoError(t, err)
	assert.Less(t, stationary.Stat, stationary.Critical["1%"])
	assert.Less(t, stationary.P, 0.01)
	assert.LessOrEqual(t, stationary.UsedLag, 15)
	assert.Equal(t, 199-stationary.UsedLag, stationary.NObs)

	unit, err := ADF(walk, -1)
	require.NoError(t, err)
	assert.Greater(t, unit.Stat, stationary.Stat)
	assert.Greater(t, unit.P, stationary.P)

	c := stationary.Critical
	assert.Less(t, c["1%"], c["5%"])
	assert.Less(t, c["5%"], c["10%"])

	_, err = ADF([]float64{1, 2}, -1)
	assert.ErrorIs(t, err, ErrSampleSize)
}

func TestMackinnonP(t *testing.T) {
	assert.Equal(t, 1.0, mackinnonP(3))
	assert.Equal(t, 0.0, mackinnonP(-20))
	assert.InDelta(t, 0.05, mackinnonP(-2.8623), 0.01)
	assert.Less(t, mackinnonP(-4), mackinnonP(-2))
}

func TestKDE(t *testing.T) {
	d, err := KDE([]float64{7.9, 8.0, 8.05, 8.1, 8.2}, 200)
	require.NoError(t, err)
	require.Len(t, d.X, 200)
	assert.Greater(t, d.Bandwidth, 0.0)
	area := integrate.Trapezoidal(d.X, d.Y)
	assert.InDelta(t, 1.0, area, 0.01)

	_, err = KDE([]float64{1}, 200)
	assert.ErrorIs(t, err, ErrSampleSize)
	_, err = KDE([]float64{2, 2, 2}, 200)
	assert.ErrorIs(t, err, ErrIdentical)
}
