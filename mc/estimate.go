package mc

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// DefaultJumpThreshold is the jump cut-off in standard deviations of the log returns.
const DefaultJumpThreshold = 3.0

// LogMuMethod selects the log drift estimator.
type LogMuMethod int

const (
	// Endpoint uses the first and last observations only.
	Endpoint LogMuMethod = iota
	// Regression uses the least squares slope of the log series on elapsed time.
	Regression
)

// EstimateSigma computes the realised volatility of a log price series
// sampled every dt.
func EstimateSigma(logSeries []float64, dt float64) float64 {
	var ss float64
	for i := 1; i < len(logSeries); i++ {
		d := logSeries[i] - logSeries[i-1]
		ss += d * d
	}
	return math.Sqrt(ss / (float64(len(logSeries)) * dt))
}

// EstimateLogMu estimates the drift of a log price series.
func EstimateLogMu(logSeries []float64, dt float64, method LogMuMethod) float64 {
	n := len(logSeries)
	if n == 0 {
		return math.NaN()
	}
	if method == Regression {
		t := make([]float64, n)
		for i := range t {
			t[i] = float64(i) * dt
		}
		_, beta := stat.LinearRegression(t, logSeries, nil, false)
		return beta
	}
	return (logSeries[n-1] - logSeries[0]) / (float64(n) * dt)
}

// EstimateMu converts a log drift to the arithmetic drift of GBM.
func EstimateMu(logMu, sigma float64) float64 {
	return logMu + 0.5*sigma*sigma
}

// GBMEstimate holds per-path GBM estimates, in column order.
type GBMEstimate struct {
	Mus    []float64
	Sigmas []float64
}

// Mean collapses the per-path estimates to one parameter set.
func (e GBMEstimate) Mean() GBM {
	return GBM{Mu: stat.Mean(e.Mus, nil), Sigma: stat.Mean(e.Sigmas, nil)}
}

// EstimateGBM estimates mu and sigma for each column of a price matrix.
func EstimateGBM(series mat.Matrix, dt float64, method LogMuMethod) GBMEstimate {
	r, c := series.Dims()
	e := GBMEstimate{Mus: make([]float64, c), Sigmas: make([]float64, c)}
	path := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(path, j, series)
		for i, v := range path {
			path[i] = math.Log(v)
		}
		e.Sigmas[j] = EstimateSigma(path, dt)
		e.Mus[j] = EstimateMu(EstimateLogMu(path, dt, method), e.Sigmas[j])
	}
	return e
}

// MJDEstimate is the result of EstimateMJD. MuJ and SigmaJ are nil when
// fewer than two jumps were detected.
type MJDEstimate struct {
	Mu     float64  `json:"mu"`
	Sigma  float64  `json:"sigma"`
	Lamb   float64  `json:"lamb"`
	MuJ    *float64 `json:"mu_j"`
	SigmaJ *float64 `json:"sigma_j"`
	Jumps  int      `json:"jumps"`
}

// EstimateMJD estimates Merton jump diffusion parameters from one price
// series. A log return is a jump when it lies more than threshold standard
// deviations from the mean; threshold <= 0 means DefaultJumpThreshold.
func EstimateMJD(series []float64, dt, threshold float64) MJDEstimate {
	if threshold <= 0 {
		threshold = DefaultJumpThreshold
	}
	var returns []float64
	for i := 1; i < len(series); i++ {
		returns = append(returns, math.Log(series[i])-math.Log(series[i-1]))
	}
	n := len(returns)
	mean, std := popMeanStdDev(returns)

	var jumps, diffusion []float64
	for _, r := range returns {
		if math.Abs(r-mean) > threshold*std {
			jumps = append(jumps, r)
		} else {
			diffusion = append(diffusion, r)
		}
	}

	var e MJDEstimate
	e.Jumps = len(jumps)
	e.Lamb = float64(len(jumps)) / (float64(n) * dt)

	// The compensator uses whatever jump sample exists, even when it is too
	// small to report
	var k float64
	if len(jumps) > 0 {
		muJ, sigmaJ := popMeanStdDev(jumps)
		k = math.Exp(muJ+0.5*sigmaJ*sigmaJ) - 1.0
		if len(jumps) >= 2 {
			e.MuJ, e.SigmaJ = &muJ, &sigmaJ
		}
	}

	dm, ds := popMeanStdDev(diffusion)
	e.Sigma = ds / math.Sqrt(dt)
	e.Mu = dm/dt + e.Lamb*k
	return e
}

func popMeanStdDev(x []float64) (float64, float64) {
	if len(x) == 0 {
		return math.NaN(), math.NaN()
	}
	return stat.PopMeanStdDev(x, nil)
}
