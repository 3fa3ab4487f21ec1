// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: May 2nd 2026
// Project: Compartmental SIRD/SIRDV Epidemic Forecasting with Logit-VAR Scenario Simulation
// Class: 02-613 at Caregie Mellon University

package forecast

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// AutoMaxLag shrinks the lag ceiling for short samples. The usable
// ceiling is max(1, (nobs-20)/6), capped at the requested ceiling when
// one is given.
func AutoMaxLag(nobs, ceiling int) int {
	auto := (nobs - 20) / 6
	if auto < 1 {
		auto = 1
	}
	if ceiling > 0 && auto > ceiling {
		auto = ceiling
	}
	return auto
}

// SelectLag estimates a VAR for every order 1..maxLag and returns the
// order that minimizes the information criterion. Orders the sample
// cannot support are skipped.
func SelectLag(y *mat.Dense, names []string, maxLag int, det Deterministic, criterion string) (int, error) {
	if maxLag < 1 {
		return 0, fmt.Errorf("maximum lag order must be at least 1, got %d", maxLag)
	}
	best := -1
	bestVal := math.Inf(1)
	for p := 1; p <= maxLag; p++ {
		v, err := Estimate(y, names, ModelSpec{Lags: p, Deterministic: det})
		if err != nil {
			continue
		}
		val, err := criterionValue(v, criterion)
		if err != nil {
			return 0, err
		}
		if val < bestVal {
			best = p
			bestVal = val
		}
	}
	if best < 0 {
		return 0, fmt.Errorf("no lag order in 1..%d could be estimated", maxLag)
	}
	return best, nil
}

// criterionValue computes an information criterion for a fitted model.
// The covariance is rescaled to its maximum-likelihood form so the
// criteria match their textbook definitions. FPE is compared on the
// log scale.
func criterionValue(v *VAR, criterion string) (float64, error) {
	K := len(v.Names)
	p := v.Model.Lags
	m := v.Model.Deterministic.columns() + p*K
	treg := v.T - p

	scale := 1.0
	if df := treg - m; df > 0 {
		scale = float64(df) / float64(treg)
	}
	sigma := mat.NewSymDense(K, nil)
	for i := 0; i < K; i++ {
		for j := i; j < K; j++ {
			sigma.SetSym(i, j, v.SigmaU.At(i, j)*scale)
		}
	}
	ld := logDetSym(sigma)

	free := float64(K * m)
	Tf := float64(treg)
	switch criterion {
	case "aic":
		return ld + 2*free/Tf, nil
	case "bic":
		return ld + free*math.Log(Tf)/Tf, nil
	case "hqic":
		return ld + 2*free*math.Log(math.Log(Tf))/Tf, nil
	case "fpe":
		mf := float64(m)
		if Tf <= mf {
			return math.Inf(1), nil
		}
		return ld + float64(K)*math.Log((Tf+mf)/(Tf-mf)), nil
	default:
		return 0, fmt.Errorf("unknown information criterion %q", criterion)
	}
}

// logDetSym is the log determinant of a covariance matrix. Cholesky is
// the fast path; singular matrices fall back on singular values with a
// floor so a degenerate covariance compares as a very small, finite
// determinant.
func logDetSym(s *mat.SymDense) float64 {
	var chol mat.Cholesky
	if chol.Factorize(s) {
		return chol.LogDet()
	}
	var svd mat.SVD
	if !svd.Factorize(mat.DenseCopyOf(s), mat.SVDNone) {
		return math.Inf(1)
	}
	vals := svd.Values(nil)
	ld := 0.0
	for _, val := range vals {
		if val < 1e-250 {
			val = 1e-250
		}
		ld += math.Log(val)
	}
	return ld
}
