// Package stats implements the non-parametric group comparisons and the
// per-series diagnostics used to compare CMIP6 scenarios: Kruskal-Wallis,
// Dunn's post-hoc test, Shapiro-Wilk, the augmented Dickey-Fuller test,
// moment statistics and Gaussian kernel density estimates.
package stats

import (
	"errors"
	"math"
	"sort"
)

var (
	ErrTooFewGroups = errors.New("at least two groups are required")
	ErrEmptyGroup   = errors.New("group has no observations")
	ErrIdentical    = errors.New("all numbers are identical")
	ErrSampleSize   = errors.New("sample size out of range")
	ErrSingular     = errors.New("regression design matrix is singular")
)

// ranked holds the pooled average ranks of a set of groups.
type ranked struct {
	ranks []float64
	sizes []int
	// tieSum is the sum of t^3-t over every run of t tied values.
	tieSum float64
}

// rankGroups pools the groups and assigns average ranks, 1-based, with
// ties sharing the mean of the ranks they span.
func rankGroups(groups [][]float64) (*ranked, error) {
	if len(groups) < 2 {
		return nil, ErrTooFewGroups
	}
	type obs struct {
		v float64
		i int
	}
	var pooled []obs
	r := &ranked{sizes: make([]int, len(groups))}
	for g, xs := range groups {
		if len(xs) == 0 {
			return nil, ErrEmptyGroup
		}
		r.sizes[g] = len(xs)
		for _, v := range xs {
			pooled = append(pooled, obs{v: v, i: len(pooled)})
		}
	}
	sort.SliceStable(pooled, func(a, b int) bool { return pooled[a].v < pooled[b].v })

	r.ranks = make([]float64, len(pooled))
	for lo := 0; lo < len(pooled); {
		hi := lo + 1
		for hi < len(pooled) && pooled[hi].v == pooled[lo].v {
			hi++
		}
		avg := float64(lo+hi+1) / 2
		for k := lo; k < hi; k++ {
			r.ranks[pooled[k].i] = avg
		}
		if t := float64(hi - lo); t > 1 {
			r.tieSum += t*t*t - t
		}
		lo = hi
	}
	return r, nil
}

// n returns the pooled sample size.
func (r *ranked) n() int {
	return len(r.ranks)
}

// meanRanks returns the average rank of every group.
func (r *ranked) meanRanks() []float64 {
	out := make([]float64, len(r.sizes))
	k := 0
	for g, size := range r.sizes {
		var sum float64
		for i := 0; i < size; i++ {
			sum += r.ranks[k]
			k++
		}
		out[g] = sum / float64(size)
	}
	return out
}

// DropNaN returns the non-NaN values of xs.
func DropNaN(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, v := range xs {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
