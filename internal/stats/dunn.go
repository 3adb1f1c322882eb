package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Dunn runs Dunn's pairwise post-hoc test on the groups and returns the
// symmetric matrix of adjusted p-values. The diagonal is 1.
func Dunn(groups [][]float64, method Adjustment) (*mat.SymDense, error) {
	r, err := rankGroups(groups)
	if err != nil {
		return nil, err
	}
	n := float64(r.n())
	a := n * (n + 1) / 12
	ties := r.tieSum / (12 * (n - 1))
	means := r.meanRanks()

	k := len(groups)
	var pairs [][2]int
	var ps []float64
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			b := 1/float64(r.sizes[i]) + 1/float64(r.sizes[j])
			z := math.Abs(means[i]-means[j]) / math.Sqrt((a-ties)*b)
			ps = append(ps, 2*distuv.UnitNormal.Survival(z))
			pairs = append(pairs, [2]int{i, j})
		}
	}
	ps = Adjust(ps, method)

	out := mat.NewSymDense(k, nil)
	for i := 0; i < k; i++ {
		out.SetSym(i, i, 1)
	}
	for x, p := range pairs {
		out.SetSym(p[0], p[1], ps[x])
	}
	return out, nil
}

// WriteMatrix prints a labelled p-value matrix rounded to three decimals.
func WriteMatrix(w io.Writer, labels []string, m mat.Symmetric) error {
	width := 6
	for _, l := range labels {
		width = max(width, len(l))
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%*s", width, "")
	for _, l := range labels {
		fmt.Fprintf(&sb, "  %*s", width, l)
	}
	sb.WriteString("\n")
	for i, l := range labels {
		fmt.Fprintf(&sb, "%*s", width, l)
		for j := range labels {
			fmt.Fprintf(&sb, "  %*.3f", width, m.At(i, j))
		}
		sb.WriteString("\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
