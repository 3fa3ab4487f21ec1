// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: May 2nd 2026
// Project: Compartmental SIRD/SIRDV Epidemic Forecasting with Logit-VAR Scenario Simulation
// Class: 02-613 at Caregie Mellon University

// Package forecast fits vector autoregressions to logit-transformed
// epidemic rates and produces point forecasts with confidence bounds.
package forecast

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Deterministic states which deterministic terms enter the regression.
type Deterministic int

const (
	DetNone Deterministic = iota
	DetConst
	DetTrend
	DetConstTrend
)

func (d Deterministic) String() string {
	switch d {
	case DetConst:
		return "const"
	case DetTrend:
		return "trend"
	case DetConstTrend:
		return "const+trend"
	default:
		return "none"
	}
}

// columns is the number of regressor columns the terms occupy.
func (d Deterministic) columns() int {
	switch d {
	case DetConst, DetTrend:
		return 1
	case DetConstTrend:
		return 2
	default:
		return 0
	}
}

// ModelSpec describes a VAR(p) to estimate.
type ModelSpec struct {
	Lags          int
	Deterministic Deterministic
}

// VAR is a fitted reduced-form vector autoregression.
type VAR struct {
	Model  ModelSpec
	A      []*mat.Dense  // lag coefficient matrices A_1..A_p, each K x K
	C      *mat.Dense    // deterministic terms, K x detCols, nil when none
	SigmaU *mat.SymDense // residual covariance

	Names []string // fitted column names
	T     int      // rows in the estimation sample, presample included

	// ConstantColumns lists fitted columns that were constant over the
	// sample, which forces the deterministic terms off.
	ConstantColumns []string
}

// Estimate fits a VAR(p) to y (T x K) by equation-wise OLS. Singular
// normal equations fall back on a rank-revealing SVD solve.
func Estimate(y *mat.Dense, names []string, spec ModelSpec) (*VAR, error) {
	if y == nil {
		return nil, errors.New("nil input matrix")
	}
	T, K := y.Dims()
	if len(names) != K {
		return nil, fmt.Errorf("got %d names for %d columns", len(names), K)
	}
	p := spec.Lags
	if p < 1 {
		return nil, fmt.Errorf("lag order must be at least 1, got %d", p)
	}
	det := spec.Deterministic.columns()
	m := det + p*K
	Treg := T - p
	if Treg < m {
		return nil, fmt.Errorf("lag order %d needs at least %d observations, got %d", p, p+m, T)
	}

	// Stack the regression: deterministic columns first, then the lag
	// blocks, newest lag first.
	X := mat.NewDense(Treg, m, nil)
	Yreg := mat.NewDense(Treg, K, nil)
	for t := p; t < T; t++ {
		row := t - p
		col := 0
		switch spec.Deterministic {
		case DetConst:
			X.Set(row, col, 1)
			col++
		case DetTrend:
			X.Set(row, col, float64(t+1))
			col++
		case DetConstTrend:
			X.Set(row, col, 1)
			col++
			X.Set(row, col, float64(t+1))
			col++
		}
		for lag := 1; lag <= p; lag++ {
			for j := 0; j < K; j++ {
				X.Set(row, col, y.At(t-lag, j))
				col++
			}
		}
		for j := 0; j < K; j++ {
			Yreg.Set(row, j, y.At(t, j))
		}
	}

	// B = (X'X)^-1 X'Y, with an SVD least-squares solve when the
	// normal equations are singular.
	B := mat.NewDense(m, K, nil)
	var xtx mat.Dense
	xtx.Mul(X.T(), X)
	var xtxInv mat.Dense
	if err := xtxInv.Inverse(&xtx); err == nil {
		var xty mat.Dense
		xty.Mul(X.T(), Yreg)
		B.Mul(&xtxInv, &xty)
	} else {
		var svd mat.SVD
		if !svd.Factorize(X, mat.SVDFullU|mat.SVDFullV) {
			return nil, errors.New("SVD factorization of the regressor matrix failed")
		}
		if rank := svd.Rank(1e-12); rank > 0 {
			svd.SolveTo(B, Yreg, rank)
		}
	}

	var Cmat *mat.Dense
	if det > 0 {
		Cmat = mat.NewDense(K, det, nil)
		for eq := 0; eq < K; eq++ {
			for d := 0; d < det; d++ {
				Cmat.Set(eq, d, B.At(d, eq))
			}
		}
	}
	A := make([]*mat.Dense, p)
	for lag := 0; lag < p; lag++ {
		A[lag] = mat.NewDense(K, K, nil)
		for eq := 0; eq < K; eq++ {
			for j := 0; j < K; j++ {
				A[lag].Set(eq, j, B.At(det+lag*K+j, eq))
			}
		}
	}

	// Residual covariance with the small-sample degrees of freedom.
	var fitted mat.Dense
	fitted.Mul(X, B)
	var U mat.Dense
	U.Sub(Yreg, &fitted)
	var utu mat.Dense
	utu.Mul(U.T(), &U)
	df := Treg - m
	if df <= 0 {
		df = Treg
	}
	sigma := mat.NewSymDense(K, nil)
	for i := 0; i < K; i++ {
		for j := i; j < K; j++ {
			sigma.SetSym(i, j, utu.At(i, j)/float64(df))
		}
	}

	own := make([]string, K)
	copy(own, names)
	return &VAR{
		Model:  spec,
		A:      A,
		C:      Cmat,
		SigmaU: sigma,
		Names:  own,
		T:      T,
	}, nil
}

// Forecast iterates the fitted recurrence steps periods past the end
// of hist, seeding with its last p rows. The returned matrix is
// steps x K.
func (v *VAR) Forecast(hist *mat.Dense, steps int) (*mat.Dense, error) {
	if hist == nil {
		return nil, errors.New("nil history matrix")
	}
	if steps < 1 {
		return nil, fmt.Errorf("forecast steps must be positive, got %d", steps)
	}
	p := v.Model.Lags
	if len(v.A) != p {
		return nil, fmt.Errorf("model has %d lag matrices for lag order %d", len(v.A), p)
	}
	T, K := hist.Dims()
	if T < p {
		return nil, fmt.Errorf("history has %d rows, need at least %d", T, p)
	}

	total := p + steps
	out := mat.NewDense(total, K, nil)
	for i := 0; i < p; i++ {
		for j := 0; j < K; j++ {
			out.Set(i, j, hist.At(T-p+i, j))
		}
	}

	for step := 0; step < steps; step++ {
		row := p + step
		tIdx := float64(T + step + 1)
		for eq := 0; eq < K; eq++ {
			val := 0.0
			switch v.Model.Deterministic {
			case DetConst:
				val += v.C.At(eq, 0)
			case DetTrend:
				val += v.C.At(eq, 0) * tIdx
			case DetConstTrend:
				val += v.C.At(eq, 0) + v.C.At(eq, 1)*tIdx
			}
			for lag := 1; lag <= p; lag++ {
				for j := 0; j < K; j++ {
					val += v.A[lag-1].At(eq, j) * out.At(row-lag, j)
				}
			}
			out.Set(row, eq, val)
		}
	}

	return mat.DenseCopyOf(out.Slice(p, total, 0, K)), nil
}

// Phi returns the moving-average coefficient matrices Phi_0..Phi_{h-1}
// of the fitted process: Phi_0 = I, Phi_i = sum_j A_j Phi_{i-j}.
func (v *VAR) Phi(h int) []*mat.Dense {
	if h < 1 || len(v.A) == 0 {
		return nil
	}
	K, _ := v.A[0].Dims()
	p := len(v.A)

	psi := make([]*mat.Dense, h)
	eye := mat.NewDense(K, K, nil)
	for i := 0; i < K; i++ {
		eye.Set(i, i, 1)
	}
	psi[0] = eye

	for i := 1; i < h; i++ {
		sum := mat.NewDense(K, K, nil)
		for j := 1; j <= i && j <= p; j++ {
			var term mat.Dense
			term.Mul(v.A[j-1], psi[i-j])
			sum.Add(sum, &term)
		}
		psi[i] = sum
	}
	return psi
}

// forecastStderr returns the steps x K matrix of forecast standard
// errors, from the cumulated MA representation of the error
// covariance: Sigma_h = sum_{i<h} Phi_i Sigma_u Phi_i'.
func (v *VAR) forecastStderr(steps int) (*mat.Dense, error) {
	if v.SigmaU == nil {
		return nil, errors.New("model has no residual covariance")
	}
	if len(v.A) == 0 {
		return nil, errors.New("model has no lag matrices")
	}
	K, _ := v.A[0].Dims()
	phi := v.Phi(steps)
	sigmaU := mat.DenseCopyOf(v.SigmaU)

	cov := mat.NewDense(K, K, nil)
	se := mat.NewDense(steps, K, nil)
	for h := 0; h < steps; h++ {
		var tmp, term mat.Dense
		tmp.Mul(phi[h], sigmaU)
		term.Mul(&tmp, phi[h].T())
		cov.Add(cov, &term)
		for j := 0; j < K; j++ {
			variance := cov.At(j, j)
			if variance < 0 {
				variance = 0
			}
			se.Set(h, j, math.Sqrt(variance))
		}
	}
	return se, nil
}
