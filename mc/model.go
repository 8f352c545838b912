package mc

import (
	"fmt"
	"math"

	"github.com/banachtech/finsims/util"
	"gonum.org/v1/gonum/mat"
)

// Process is the closed set of stochastic price models: GBM, MJD and Heston.
// Each variant carries its own parameters and simulates a price path matrix
// with one row per time step and one column per path.
type Process interface {
	// Simulate n steps of size dt for m independent paths.
	Simulate(src *util.Source, n, m int, dt float64) (*mat.Dense, error)
	process()
}

func (GBM) process()    {}
func (MJD) process()    {}
func (Heston) process() {}

// Estimate recovers the parameters of the same variant as p from a path
// matrix observed with step dt. p only selects the model; its parameter
// values are ignored. Heston has no closed-form estimator.
func Estimate(p Process, series *mat.Dense, dt float64) (Process, error) {
	switch p.(type) {
	case GBM:
		return EstimateGBM(series, dt, Endpoint).Mean(), nil
	case MJD:
		return estimateMJDColumns(series, dt), nil
	case Heston:
		return nil, fmt.Errorf("%w: heston parameter estimation", util.ErrUnsupported)
	default:
		return nil, fmt.Errorf("%w: unknown process %T", util.ErrUnsupported, p)
	}
}

// Average single-series MJD estimates over the columns of series. Jump
// statistics are averaged over the columns that reported them and left at
// zero when none did.
func estimateMJDColumns(series *mat.Dense, dt float64) MJD {
	r, c := series.Dims()
	col := make([]float64, r)
	var out MJD
	var nj int
	for j := 0; j < c; j++ {
		mat.Col(col, j, series)
		e := EstimateMJD(col, dt, DefaultJumpThreshold)
		out.Mu += e.Mu
		out.Sigma += e.Sigma
		out.Lamb += e.Lamb
		if e.MuJ != nil && e.SigmaJ != nil {
			out.MuJ += *e.MuJ
			out.SigmaJ += *e.SigmaJ
			nj++
		}
	}
	out.Mu /= float64(c)
	out.Sigma /= float64(c)
	out.Lamb /= float64(c)
	if nj > 0 {
		out.MuJ /= float64(nj)
		out.SigmaJ /= float64(nj)
	}
	return out
}

// Check the simulation grid shared by all variants.
func checkGrid(n, m int, dt float64) error {
	if n < 1 {
		return fmt.Errorf("%w: step count must be positive, got %d", util.ErrInvalidParameter, n)
	}
	if m < 1 {
		return fmt.Errorf("%w: path count must be positive, got %d", util.ErrInvalidParameter, m)
	}
	if !(dt > 0) || math.IsInf(dt, 1) {
		return fmt.Errorf("%w: time increment must be positive and finite, got %v", util.ErrInvalidParameter, dt)
	}
	return nil
}

func checkNonNegative(name string, v float64) error {
	if v < 0 || math.IsNaN(v) {
		return fmt.Errorf("%w: %s must be non-negative, got %v", util.ErrInvalidParameter, name, v)
	}
	return nil
}
