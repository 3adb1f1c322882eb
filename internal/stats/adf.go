package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ADFResult is the outcome of an augmented Dickey-Fuller unit root test
// with a constant term.
type ADFResult struct {
	Stat    float64
	P       float64
	UsedLag int
	NObs    int
	// Critical holds the 1%, 5% and 10% critical values.
	Critical map[string]float64
	// ICBest is the AIC of the selected lag.
	ICBest float64
}

func (r ADFResult) String() string {
	return fmt.Sprintf("Statistic=%.3f, p-value=%.3f, Critical Values={1%%: %.3f, 5%%: %.3f, 10%%: %.3f}",
		r.Stat, r.P, r.Critical["1%"], r.Critical["5%"], r.Critical["10%"])
}

// MacKinnon (1994) response surface for the constant-only regression
// with one integrated series.
const (
	tauMaxC  = 2.74
	tauMinC  = -18.83
	tauStarC = -1.61
)

var (
	tauSmallPC = []float64{2.1659, 1.4412, 0.038269}
	tauLargePC = []float64{1.7339, 0.93202, -0.12745, -0.010368}
	// MacKinnon (2010) critical value surfaces: c0 + c1/n + c2/n^2 + c3/n^3.
	tauCrit = map[string][]float64{
		"1%":  {-3.43035, -6.5393, -16.786, -79.433},
		"5%":  {-2.86154, -2.8903, -4.234, -40.04},
		"10%": {-2.56677, -1.5384, -2.809, 0},
	}
)

// mackinnonP approximates the p-value of a Dickey-Fuller statistic.
func mackinnonP(stat float64) float64 {
	switch {
	case stat > tauMaxC:
		return 1
	case stat < tauMinC:
		return 0
	case stat <= tauStarC:
		return distuv.UnitNormal.CDF(poly(tauSmallPC, stat))
	default:
		return distuv.UnitNormal.CDF(poly(tauLargePC, stat))
	}
}

func mackinnonCrit(nobs int) map[string]float64 {
	out := make(map[string]float64, len(tauCrit))
	for k, c := range tauCrit {
		out[k] = poly(c, 1/float64(nobs))
	}
	return out
}

// ADF runs the augmented Dickey-Fuller test on xs after dropping NaN.
// A negative maxlag selects 12*(n/100)^(1/4) lags; the lag actually used
// minimises the AIC over 0..maxlag.
func ADF(xs []float64, maxlag int) (ADFResult, error) {
	x := DropNaN(xs)
	n := len(x)
	if maxlag < 0 {
		maxlag = int(math.Ceil(12 * math.Pow(float64(n)/100, 0.25)))
		// one column for the constant
		maxlag = min(n/2-2, maxlag)
	}
	if maxlag < 0 || n < 4 {
		return ADFResult{}, fmt.Errorf("%w: %d observations is too short for the regression", ErrSampleSize, n)
	}

	dx := make([]float64, n-1)
	for i := range dx {
		dx[i] = x[i+1] - x[i]
	}

	// Lag search: every candidate is fitted on the same maxlag-trimmed
	// sample so the information criteria are comparable.
	y, design := adfDesign(x, dx, maxlag)
	best, bestAIC := 0, math.Inf(1)
	for lag := 0; lag <= maxlag; lag++ {
		fit, err := ols(y, design, lag+2)
		if err != nil {
			return ADFResult{}, err
		}
		if fit.aic < bestAIC {
			best, bestAIC = lag, fit.aic
		}
	}

	y, design = adfDesign(x, dx, best)
	fit, err := ols(y, design, best+2)
	if err != nil {
		return ADFResult{}, err
	}
	// column 1 is the lagged level
	stat := fit.beta[1] / fit.se[1]
	return ADFResult{
		Stat:     stat,
		P:        mackinnonP(stat),
		UsedLag:  best,
		NObs:     len(y),
		Critical: mackinnonCrit(len(y)),
		ICBest:   bestAIC,
	}, nil
}

// adfDesign builds the regression of dx_t on [1, x_t, dx_{t-1}..dx_{t-lag}]
// for t = lag..len(dx)-1.
func adfDesign(x, dx []float64, lag int) ([]float64, *mat.Dense) {
	rows := len(dx) - lag
	y := make([]float64, rows)
	d := mat.NewDense(rows, lag+2, nil)
	for r := 0; r < rows; r++ {
		t := r + lag
		y[r] = dx[t]
		d.Set(r, 0, 1)
		d.Set(r, 1, x[t])
		for l := 1; l <= lag; l++ {
			d.Set(r, l+1, dx[t-l])
		}
	}
	return y, d
}

type olsFit struct {
	beta []float64
	se   []float64
	aic  float64
}

// ols fits y on the first k columns of design.
func ols(y []float64, design *mat.Dense, k int) (olsFit, error) {
	rows, _ := design.Dims()
	if rows <= k {
		return olsFit{}, fmt.Errorf("%w: %d observations for %d regressors", ErrSampleSize, rows, k)
	}
	X := design.Slice(0, rows, 0, k)
	var xtx mat.Dense
	xtx.Mul(X.T(), X)
	var inv mat.Dense
	if err := inv.Inverse(&xtx); err != nil {
		return olsFit{}, fmt.Errorf("%w: %v", ErrSingular, err)
	}
	Y := mat.NewVecDense(rows, y)
	var xty, beta mat.VecDense
	xty.MulVec(X.T(), Y)
	beta.MulVec(&inv, &xty)

	var fitted, resid mat.VecDense
	fitted.MulVec(X, &beta)
	resid.SubVec(Y, &fitted)
	ssr := mat.Dot(&resid, &resid)

	nobs := float64(rows)
	sigma2 := ssr / (nobs - float64(k))
	fit := olsFit{beta: make([]float64, k), se: make([]float64, k)}
	for i := 0; i < k; i++ {
		fit.beta[i] = beta.AtVec(i)
		fit.se[i] = math.Sqrt(sigma2 * inv.At(i, i))
	}
	llf := -nobs/2*(math.Log(2*math.Pi)+math.Log(ssr/nobs)) - nobs/2
	fit.aic = -2*llf + 2*float64(k)
	return fit, nil
}
