package util

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

func TestSourceReproducible(t *testing.T) {
	a, b := NewSource(99), NewSource(99)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Normal(), b.Normal())
		require.Equal(t, a.Uniform(), b.Uniform())
		require.Equal(t, a.Intn(17), b.Intn(17))
		require.Equal(t, a.Poisson(2.5), b.Poisson(2.5))
		require.Equal(t, a.Geometric(0.2), b.Geometric(0.2))
	}
}

func TestNormalMoments(t *testing.T) {
	x := NewSource(1).NormalVec(make([]float64, 50000))
	mean, std := stat.MeanStdDev(x, nil)
	require.InDelta(t, 0, mean, 0.02)
	require.InDelta(t, 1, std, 0.02)
}

func TestPoissonZero(t *testing.T) {
	s := NewSource(3)
	for i := 0; i < 100; i++ {
		require.Equal(t, 0.0, s.Poisson(0))
	}
}

func TestGeometric(t *testing.T) {
	type testCases struct {
		name string
		p    float64
	}

	for _, test := range []testCases{
		{name: "SHORT", p: 0.5},
		{name: "LONG", p: 0.05},
	} {
		t.Run(test.name, func(t *testing.T) {
			s := NewSource(4)
			x := make([]float64, 20000)
			for i := range x {
				k := s.Geometric(test.p)
				require.GreaterOrEqual(t, k, 1)
				x[i] = float64(k)
			}
			require.InDelta(t, 1/test.p, stat.Mean(x, nil), 0.05/test.p)
		})
	}

	require.Equal(t, 1, NewSource(1).Geometric(1))
}

func TestSplit(t *testing.T) {
	a := NewSource(5).Split(3)
	b := NewSource(5).Split(3)
	require.Len(t, a, 3)
	for i := range a {
		require.Equal(t, a[i].Normal(), b[i].Normal())
	}
	require.NotEqual(t, a[0].Uniform(), a[1].Uniform())
}

func TestMultivariateNormal(t *testing.T) {
	s := NewSource(6)
	_, err := s.MultivariateNormal([]float64{0, 0}, mat.NewSymDense(2, []float64{1, 2, 2, 1}))
	require.ErrorIs(t, err, ErrInvalidParameter)

	d, err := s.MultivariateNormal([]float64{0, 0}, mat.NewSymDense(2, []float64{1, 0.8, 0.8, 1}))
	require.NoError(t, err)
	x := make([]float64, 20000)
	y := make([]float64, 20000)
	z := make([]float64, 2)
	for i := range x {
		d.Rand(z)
		x[i], y[i] = z[0], z[1]
	}
	require.InDelta(t, 0.8, stat.Correlation(x, y, nil), 0.02)
}
