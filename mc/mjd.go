package mc

import (
	"math"

	"github.com/banachtech/finsims/util"
	"gonum.org/v1/gonum/mat"
)

// MJD is the Merton jump diffusion: GBM plus Poisson arrivals (intensity
// Lamb) of log-normal jumps with log mean MuJ and log standard deviation SigmaJ.
type MJD struct {
	Mu     float64 `json:"mu"`
	Sigma  float64 `json:"sigma" validate:"gte=0"`
	Lamb   float64 `json:"lamb" validate:"gte=0"`
	MuJ    float64 `json:"mu_j"`
	SigmaJ float64 `json:"sigma_j" validate:"gte=0"`
	// S0 is the initial price, 1 when zero.
	S0 float64 `json:"s0,omitempty" validate:"gte=0"`
	// CompoundJumps sums one jump draw per arrival. By default a step with
	// N arrivals contributes a single jump draw scaled by N, which only
	// differs from the compound Poisson sum when N > 1.
	CompoundJumps bool `json:"compound_jumps,omitempty"`
}

// SimulateMJD is shorthand for MJD{...}.Simulate with default jump semantics.
func SimulateMJD(src *util.Source, mu, sigma, lamb, muJ, sigmaJ float64, n, m int, dt, s0 float64) (*mat.Dense, error) {
	return MJD{Mu: mu, Sigma: sigma, Lamb: lamb, MuJ: muJ, SigmaJ: sigmaJ, S0: s0}.Simulate(src, n, m, dt)
}

// JumpCompensator returns k = E[exp(J)] - 1 for J ~ N(MuJ, SigmaJ^2).
func (p MJD) JumpCompensator() float64 {
	return math.Exp(p.MuJ+0.5*p.SigmaJ*p.SigmaJ) - 1.0
}

// Simulate m MJD price paths of n steps. The result has n+1 rows.
func (p MJD) Simulate(src *util.Source, n, m int, dt float64) (*mat.Dense, error) {
	if err := checkGrid(n, m, dt); err != nil {
		return nil, err
	}
	for _, c := range []struct {
		name string
		v    float64
	}{{"sigma", p.Sigma}, {"sigma_j", p.SigmaJ}, {"lamb", p.Lamb}, {"s0", p.S0}} {
		if err := checkNonNegative(c.name, c.v); err != nil {
			return nil, err
		}
	}
	s0 := p.S0
	if s0 == 0 {
		s0 = 1.0
	}

	drift := (p.Mu - p.Lamb*p.JumpCompensator() - 0.5*p.Sigma*p.Sigma) * dt
	vol := p.Sigma * math.Sqrt(dt)
	rate := p.Lamb * dt

	x := make([]float64, (n+1)*m)
	for j := 0; j < m; j++ {
		x[j] = s0
	}
	counts := make([]float64, m)
	jumps := make([]float64, m)
	z := make([]float64, m)
	// Step i depends on step i-1; the path axis is independent
	for i := 1; i <= n; i++ {
		for j := range counts {
			counts[j] = src.Poisson(rate)
		}
		for j := range jumps {
			jumps[j] = p.jump(src, counts[j])
		}
		src.NormalVec(z)
		for j := 0; j < m; j++ {
			x[i*m+j] = x[(i-1)*m+j] * math.Exp(drift+vol*z[j]+jumps[j])
		}
	}
	return mat.NewDense(n+1, m, x), nil
}

// Log jump contribution of one step with count arrivals.
func (p MJD) jump(src *util.Source, count float64) float64 {
	if !p.CompoundJumps {
		return (p.MuJ + p.SigmaJ*src.Normal()) * count
	}
	var sum float64
	for k := 0; k < int(count); k++ {
		sum += p.MuJ + p.SigmaJ*src.Normal()
	}
	return sum
}
