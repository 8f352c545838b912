package mc

import (
	"math"

	"github.com/banachtech/finsims/util"
	"gonum.org/v1/gonum/mat"
)

// GBM is geometric Brownian motion dS = Mu S dt + Sigma S dW.
//
// S0 selects the output mode. With S0 > 0 the simulated matrix has n+1 rows,
// the first equal to S0, and holds price levels. With S0 == 0 there is no
// initial value and the matrix has n rows of multiplicative increments
// S[t]/S[t-1]; their logs are the log returns.
type GBM struct {
	Mu    float64 `json:"mu"`
	Sigma float64 `json:"sigma" validate:"gte=0"`
	S0    float64 `json:"s0,omitempty" validate:"gte=0"`
}

// SimulateGBM is shorthand for GBM{mu, sigma, s0}.Simulate.
func SimulateGBM(src *util.Source, mu, sigma float64, n, m int, dt, s0 float64) (*mat.Dense, error) {
	return GBM{Mu: mu, Sigma: sigma, S0: s0}.Simulate(src, n, m, dt)
}

// Simulate m GBM paths of n steps.
func (p GBM) Simulate(src *util.Source, n, m int, dt float64) (*mat.Dense, error) {
	if err := checkGrid(n, m, dt); err != nil {
		return nil, err
	}
	if err := checkNonNegative("sigma", p.Sigma); err != nil {
		return nil, err
	}
	if err := checkNonNegative("s0", p.S0); err != nil {
		return nil, err
	}

	drift := (p.Mu - 0.5*p.Sigma*p.Sigma) * dt
	vol := p.Sigma * math.Sqrt(dt)

	// Draw all variates up front, time major, so the draw order does not
	// depend on the output mode
	z := src.NormalVec(make([]float64, n*m))
	for i, v := range z {
		z[i] = math.Exp(drift + vol*v)
	}
	if p.S0 == 0 {
		return mat.NewDense(n, m, z), nil
	}

	x := make([]float64, (n+1)*m)
	for j := 0; j < m; j++ {
		x[j] = p.S0
		for i := 1; i <= n; i++ {
			x[i*m+j] = x[(i-1)*m+j] * z[(i-1)*m+j]
		}
	}
	return mat.NewDense(n+1, m, x), nil
}
