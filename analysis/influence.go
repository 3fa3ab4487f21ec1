// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: May 2nd 2026
// Project: Compartmental SIRD/SIRDV Epidemic Forecasting with Logit-VAR Scenario Simulation
// Class: 02-613 at Caregie Mellon University

package analysis

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/d-setiawan/sird-forecasting-go/features"
	"github.com/d-setiawan/sird-forecasting-go/forecast"
)

// InfluenceResult reports whether the lags of one rate improve the
// in-sample prediction of another within the fitted model.
type InfluenceResult struct {
	Cause       string
	Effect      string
	FStatistic  float64
	PValue      float64
	Lags        int
	Significant bool
}

func rateIndex(v *forecast.VAR, name string) (int, error) {
	for i, n := range v.Names {
		if n == name || strings.TrimPrefix(n, features.LogitPrefix) == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("no rate %q in fitted model", name)
}

func rateLabel(name string) string {
	return strings.TrimPrefix(name, features.LogitPrefix)
}

// RateInfluence tests whether the lagged cause rate carries predictive
// content for the effect rate. The unrestricted equation reuses the
// fitted coefficients; the restricted equation refits without the
// cause lags, and the RSS gap goes through an F test.
func RateInfluence(v *forecast.VAR, y *mat.Dense, cause, effect string) (*InfluenceResult, error) {
	if y == nil {
		return nil, fmt.Errorf("sample data not provided")
	}
	if v == nil || len(v.A) == 0 {
		return nil, fmt.Errorf("VAR model not estimated")
	}
	causeIdx, err := rateIndex(v, cause)
	if err != nil {
		return nil, err
	}
	effectIdx, err := rateIndex(v, effect)
	if err != nil {
		return nil, err
	}
	if causeIdx == effectIdx {
		return nil, fmt.Errorf("cause and effect rate cannot be the same")
	}

	T, K := y.Dims()
	p := v.Model.Lags
	Treg := T - p
	if Treg <= 0 {
		return nil, fmt.Errorf("not enough observations for lags p = %d, T = %d", p, T)
	}

	yEffect := mat.NewVecDense(Treg, nil)
	for t := 0; t < Treg; t++ {
		yEffect.SetVec(t, y.At(t+p, effectIdx))
	}

	// Deterministic structure must mirror the estimation.
	hasConst := v.Model.Deterministic == forecast.DetConst || v.Model.Deterministic == forecast.DetConstTrend
	hasTrend := v.Model.Deterministic == forecast.DetTrend || v.Model.Deterministic == forecast.DetConstTrend
	detCols := 0
	if hasConst {
		detCols++
	}
	if hasTrend {
		detCols++
	}

	// Unrestricted design matrix: all lagged rates.
	mUnres := detCols + p*K
	XUnres := mat.NewDense(Treg, mUnres, nil)
	for t := 0; t < Treg; t++ {
		col := 0
		timeIndex := float64(t + p + 1)
		if hasConst {
			XUnres.Set(t, col, 1)
			col++
		}
		if hasTrend {
			XUnres.Set(t, col, timeIndex)
			col++
		}
		for j := 1; j <= p; j++ {
			srcRow := t + p - j
			for k := 0; k < K; k++ {
				XUnres.Set(t, col, y.At(srcRow, k))
				col++
			}
		}
	}

	// The unrestricted coefficients come straight from the fit, in the
	// same ordering the estimation used.
	betaUnres := mat.NewVecDense(mUnres, nil)
	coefIndex := 0
	if detCols > 0 && v.C != nil {
		if hasConst {
			betaUnres.SetVec(coefIndex, v.C.At(effectIdx, 0))
			coefIndex++
		}
		if hasTrend {
			trendCol := 0
			if hasConst {
				trendCol = 1
			}
			betaUnres.SetVec(coefIndex, v.C.At(effectIdx, trendCol))
			coefIndex++
		}
	}
	for j := 0; j < p; j++ {
		Aj := v.A[j]
		for k := 0; k < K; k++ {
			betaUnres.SetVec(coefIndex, Aj.At(effectIdx, k))
			coefIndex++
		}
	}
	if coefIndex != mUnres {
		return nil, fmt.Errorf("internal error: coefIndex (%d) != mUnres (%d)", coefIndex, mUnres)
	}

	var yHatUnres mat.VecDense
	yHatUnres.MulVec(XUnres, betaUnres)
	var residUnres mat.VecDense
	residUnres.SubVec(yEffect, &yHatUnres)
	rssUnres := mat.Dot(&residUnres, &residUnres)

	// Restricted design matrix: same deterministics, cause lags removed.
	mRes := detCols + p*(K-1)
	XRes := mat.NewDense(Treg, mRes, nil)
	for t := 0; t < Treg; t++ {
		col := 0
		timeIndex := float64(t + p + 1)
		if hasConst {
			XRes.Set(t, col, 1)
			col++
		}
		if hasTrend {
			XRes.Set(t, col, timeIndex)
			col++
		}
		for j := 1; j <= p; j++ {
			srcRow := t + p - j
			for k := 0; k < K; k++ {
				if k == causeIdx {
					continue
				}
				XRes.Set(t, col, y.At(srcRow, k))
				col++
			}
		}
	}

	// Refit the restricted equation, normal equations first, SVD
	// least squares when singular.
	betaRes := mat.NewVecDense(mRes, nil)
	yMat := mat.NewDense(Treg, 1, nil)
	for t := 0; t < Treg; t++ {
		yMat.Set(t, 0, yEffect.AtVec(t))
	}
	var xtx mat.Dense
	xtx.Mul(XRes.T(), XRes)
	var xtxInv mat.Dense
	if errInv := xtxInv.Inverse(&xtx); errInv == nil {
		var xty mat.Dense
		xty.Mul(XRes.T(), yMat)
		var b mat.Dense
		b.Mul(&xtxInv, &xty)
		for i := 0; i < mRes; i++ {
			betaRes.SetVec(i, b.At(i, 0))
		}
	} else {
		var svd mat.SVD
		if !svd.Factorize(XRes, mat.SVDFullU|mat.SVDFullV) {
			return nil, fmt.Errorf("restricted OLS failed: X'X singular and SVD factorization failed: %v", errInv)
		}
		if rank := svd.Rank(1e-12); rank > 0 {
			var b mat.Dense
			svd.SolveTo(&b, yMat, rank)
			for i := 0; i < mRes; i++ {
				betaRes.SetVec(i, b.At(i, 0))
			}
		}
	}

	var yHatRes mat.VecDense
	yHatRes.MulVec(XRes, betaRes)
	var residRes mat.VecDense
	residRes.SubVec(yEffect, &yHatRes)
	rssRes := mat.Dot(&residRes, &residRes)

	q := float64(p)
	dof := float64(Treg) - float64(mUnres)
	if dof <= 0 {
		return nil, fmt.Errorf("insufficient degrees of freedom: %f", dof)
	}

	// The restricted RSS cannot beat the unrestricted one except
	// through floating point noise.
	num := rssRes - rssUnres
	if num < 0 {
		num = 0
	}
	den := rssUnres / dof

	fStatistic := 0.0
	pValue := 1.0
	if den > 0 && num > 0 {
		fStatistic = (num / q) / den
		if fStatistic <= 0 || math.IsNaN(fStatistic) || math.IsInf(fStatistic, 0) {
			fStatistic = 0
			pValue = 1
		} else {
			fDist := distuv.F{D1: q, D2: dof}
			pValue = 1 - fDist.CDF(fStatistic)
		}
	}
	if pValue < 0 {
		pValue = 0
	}
	if pValue > 1 {
		pValue = 1
	}

	return &InfluenceResult{
		Cause:       rateLabel(v.Names[causeIdx]),
		Effect:      rateLabel(v.Names[effectIdx]),
		FStatistic:  fStatistic,
		PValue:      pValue,
		Lags:        p,
		Significant: pValue < 0.05,
	}, nil
}

// InfluenceMatrix runs the pairwise influence test for every ordered
// rate pair. The diagonal stays nil.
func InfluenceMatrix(v *forecast.VAR, y *mat.Dense) ([][]*InfluenceResult, error) {
	if v == nil {
		return nil, fmt.Errorf("VAR model not estimated")
	}
	K := len(v.Names)
	results := make([][]*InfluenceResult, K)
	for i := range results {
		results[i] = make([]*InfluenceResult, K)
	}
	for i := 0; i < K; i++ {
		for j := 0; j < K; j++ {
			if i == j {
				continue
			}
			res, err := RateInfluence(v, y, v.Names[i], v.Names[j])
			if err != nil {
				return nil, fmt.Errorf("error testing %s -> %s: %v", rateLabel(v.Names[i]), rateLabel(v.Names[j]), err)
			}
			results[i][j] = res
		}
	}
	return results, nil
}
