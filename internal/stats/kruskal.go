package stats

import (
	"fmt"

	"gonum.org/v1/gonum/stat/distuv"
)

// KruskalResult is the outcome of a Kruskal-Wallis H test.
type KruskalResult struct {
	H  float64
	P  float64
	DF int
}

// Significant reports whether p falls below the significance level.
func Significant(p, alpha float64) bool {
	return p < alpha
}

// KruskalWallis tests whether the groups are drawn from distributions
// with the same median. The statistic is tie corrected and p is taken
// from the chi-squared distribution with k-1 degrees of freedom.
func KruskalWallis(groups ...[]float64) (KruskalResult, error) {
	r, err := rankGroups(groups)
	if err != nil {
		return KruskalResult{}, err
	}
	n := float64(r.n())
	tie := 1 - r.tieSum/(n*n*n-n)
	if tie == 0 {
		return KruskalResult{}, ErrIdentical
	}

	var h float64
	for g, m := range r.meanRanks() {
		sum := m * float64(r.sizes[g])
		h += sum * sum / float64(r.sizes[g])
	}
	h = 12/(n*(n+1))*h - 3*(n+1)
	h /= tie

	df := len(groups) - 1
	p := distuv.ChiSquared{K: float64(df)}.Survival(h)
	return KruskalResult{H: h, P: p, DF: df}, nil
}

func (r KruskalResult) String() string {
	return fmt.Sprintf("Kruskal-Wallis test statistic: %.3f, p-value: %.3f", r.H, r.P)
}
