package stats

import (
	"fmt"
	"sort"
	"strings"
)

// Adjustment is a multiple comparison correction.
type Adjustment string

const (
	NoAdjustment Adjustment = "none"
	Bonferroni   Adjustment = "bonferroni"
	Holm         Adjustment = "holm"
)

// ParseAdjustment converts a method name into an Adjustment.
func ParseAdjustment(s string) (Adjustment, error) {
	switch a := Adjustment(strings.ToLower(s)); a {
	case NoAdjustment, Bonferroni, Holm:
		return a, nil
	case "":
		return NoAdjustment, nil
	}
	return "", fmt.Errorf("unknown p-value adjustment %q", s)
}

// Adjust corrects a family of p-values. The input is not modified.
func Adjust(ps []float64, method Adjustment) []float64 {
	out := make([]float64, len(ps))
	copy(out, ps)
	m := float64(len(ps))
	switch method {
	case Bonferroni:
		for i, p := range out {
			out[i] = min(p*m, 1)
		}
	case Holm:
		order := make([]int, len(ps))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool { return ps[order[a]] < ps[order[b]] })
		var running float64
		for rank, i := range order {
			v := min((m-float64(rank))*ps[i], 1)
			running = max(running, v)
			out[i] = running
		}
	}
	return out
}
