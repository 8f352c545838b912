package mc

import (
	"fmt"
	"math"

	"github.com/banachtech/finsims/util"
	"gonum.org/v1/gonum/mat"
)

// Heston is the stochastic volatility model
//
//	dS = R S dt + sqrt(v) S dW1
//	dv = Kappa (Theta - v) dt + Sigma sqrt(v) dW2,  dW1 dW2 = Rho dt
//
// discretised with an Euler scheme and a full truncation floor at zero on v.
type Heston struct {
	S0    float64 `json:"s0" validate:"gte=0"`
	V0    float64 `json:"v0" validate:"gte=0"`
	Rho   float64 `json:"rho" validate:"gte=-1,lte=1"`
	Kappa float64 `json:"kappa"`
	Theta float64 `json:"theta"`
	Sigma float64 `json:"sigma" validate:"gte=0"`
	// R is the drift, usually the risk-free rate.
	R float64 `json:"r"`
}

// HestonSim simulates m paths over horizon T with N steps of size T/N and
// returns prices and variances, each with N+1 rows.
func HestonSim(src *util.Source, s0, v0, rho, kappa, theta, sigma, T float64, N, m int, r float64) (*mat.Dense, *mat.Dense, error) {
	if !(T > 0) {
		return nil, nil, fmt.Errorf("%w: horizon must be positive, got %v", util.ErrInvalidParameter, T)
	}
	if N < 1 {
		return nil, nil, fmt.Errorf("%w: step count must be positive, got %d", util.ErrInvalidParameter, N)
	}
	p := Heston{S0: s0, V0: v0, Rho: rho, Kappa: kappa, Theta: theta, Sigma: sigma, R: r}
	return p.SimulateWithVariance(src, N, m, T/float64(N))
}

// Simulate returns the price paths only.
func (p Heston) Simulate(src *util.Source, n, m int, dt float64) (*mat.Dense, error) {
	s, _, err := p.SimulateWithVariance(src, n, m, dt)
	return s, err
}

// SimulateWithVariance returns the price and variance paths, each with n+1 rows.
func (p Heston) SimulateWithVariance(src *util.Source, n, m int, dt float64) (*mat.Dense, *mat.Dense, error) {
	if err := p.validate(n, m, dt); err != nil {
		return nil, nil, err
	}
	pair, err := correlatedPair(src, p.Rho)
	if err != nil {
		return nil, nil, err
	}

	s := make([]float64, (n+1)*m)
	v := make([]float64, (n+1)*m)
	for j := 0; j < m; j++ {
		s[j] = p.S0
		v[j] = p.V0
	}
	z := make([]float64, 2)
	for i := 1; i <= n; i++ {
		for j := 0; j < m; j++ {
			z = pair(z)
			prev := v[(i-1)*m+j]
			sd := math.Sqrt(prev * dt)
			s[i*m+j] = s[(i-1)*m+j] * math.Exp((p.R-0.5*prev)*dt+sd*z[0])
			v[i*m+j] = math.Max(prev+p.Kappa*(p.Theta-prev)*dt+p.Sigma*sd*z[1], 0)
		}
	}
	return mat.NewDense(n+1, m, s), mat.NewDense(n+1, m, v), nil
}

func (p Heston) validate(n, m int, dt float64) error {
	if err := checkGrid(n, m, dt); err != nil {
		return err
	}
	if !(p.S0 > 0) {
		return fmt.Errorf("%w: s0 must be positive, got %v", util.ErrInvalidParameter, p.S0)
	}
	if err := checkNonNegative("v0", p.V0); err != nil {
		return err
	}
	if err := checkNonNegative("sigma", p.Sigma); err != nil {
		return err
	}
	if !(math.Abs(p.Rho) <= 1) {
		return fmt.Errorf("%w: rho must lie in [-1, 1], got %v", util.ErrInvalidParameter, p.Rho)
	}
	return nil
}

// Return a generator of standard normal pairs with correlation rho. The
// bivariate normal is singular at |rho| == 1, where the second variate is
// rho times the first.
func correlatedPair(src *util.Source, rho float64) (func([]float64) []float64, error) {
	if math.Abs(rho) == 1 {
		return func(z []float64) []float64 {
			z[0] = src.Normal()
			z[1] = rho * z[0]
			return z
		}, nil
	}
	cov := mat.NewSymDense(2, []float64{1, rho, rho, 1})
	d, err := src.MultivariateNormal([]float64{0, 0}, cov)
	if err != nil {
		return nil, err
	}
	return d.Rand, nil
}
