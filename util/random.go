package util

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"
)

// Source is a seedable random number generator. Every simulator and the
// bootstrap take a *Source explicitly; a Source is not safe for concurrent
// use, so parallel workers each own one (see Split).
type Source struct {
	src  rand.Source
	rng  *rand.Rand
	norm distuv.Normal
}

// NewSource returns a Source seeded with seed. Identical seeds give identical draws.
func NewSource(seed uint64) *Source {
	src := rand.NewSource(seed)
	return &Source{
		src:  src,
		rng:  rand.New(src),
		norm: distuv.Normal{Mu: 0.0, Sigma: 1.0, Src: src},
	}
}

// Src exposes the underlying source for gonum distributions.
func (s *Source) Src() rand.Source {
	return s.src
}

// Uniform returns a float in [0, 1).
func (s *Source) Uniform() float64 {
	return s.rng.Float64()
}

// Intn returns an int in [0, n). It panics if n <= 0.
func (s *Source) Intn(n int) int {
	return s.rng.Intn(n)
}

// Normal returns a standard normal variate.
func (s *Source) Normal() float64 {
	return s.norm.Rand()
}

// NormalVec fills dst with standard normal variates and returns it.
func (s *Source) NormalVec(dst []float64) []float64 {
	for i := range dst {
		dst[i] = s.norm.Rand()
	}
	return dst
}

// Poisson draws a Poisson count with mean lambda. lambda == 0 always gives 0.
func (s *Source) Poisson(lambda float64) float64 {
	d := distuv.Poisson{Lambda: lambda, Src: s.src}
	return d.Rand()
}

// Geometric draws the number of Bernoulli(p) trials up to and including the
// first success, so the support is {1, 2, ...} and the mean is 1/p.
func (s *Source) Geometric(p float64) int {
	if p >= 1 {
		return 1
	}
	// 1 - u lies in (0, 1], keeping the log finite
	u := 1 - s.rng.Float64()
	k := int(math.Ceil(math.Log(u) / math.Log1p(-p)))
	if k < 1 {
		return 1
	}
	return k
}

// MultivariateNormal returns a normal distribution with mean mu and
// covariance cov drawing from this source.
func (s *Source) MultivariateNormal(mu []float64, cov mat.Symmetric) (*distmv.Normal, error) {
	d, ok := distmv.NewNormal(mu, cov, s.src)
	if !ok {
		return nil, fmt.Errorf("%w: covariance matrix is not positive definite", ErrInvalidParameter)
	}
	return d, nil
}

// Split returns k child sources seeded from s. The children are fully
// determined by the state of s, so a fixed seed and k reproduce them.
func (s *Source) Split(k int) []*Source {
	out := make([]*Source, k)
	for i := range out {
		out[i] = NewSource(s.rng.Uint64())
	}
	return out
}
