package mc

import (
	"testing"

	"github.com/banachtech/finsims/util"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestHestonSim(t *testing.T) {
	s, v, err := HestonSim(util.NewSource(2), 100, 0.25*0.25, 0.7, 3, 0.2*0.2, 0.6, 1, 252, 50, 0.02)
	require.NoError(t, err)

	r, c := s.Dims()
	require.Equal(t, 253, r)
	require.Equal(t, 50, c)
	rv, cv := v.Dims()
	require.Equal(t, r, rv)
	require.Equal(t, c, cv)
	for j := 0; j < c; j++ {
		require.Equal(t, 100.0, s.At(0, j))
		require.Equal(t, 0.0625, v.At(0, j))
	}
}

func TestHestonVarianceNonNegative(t *testing.T) {
	type testCases struct {
		name string
		p    Heston
	}

	for _, test := range []testCases{
		{name: "VOL_OF_VOL_HIGH", p: Heston{S0: 100, V0: 0.01, Rho: -0.9, Kappa: 0.5, Theta: 0.01, Sigma: 2.0, R: 0.02}},
		{name: "RHO_POSITIVE_ONE", p: Heston{S0: 100, V0: 0.04, Rho: 1, Kappa: 1, Theta: 0.02, Sigma: 1.5}},
		{name: "RHO_NEGATIVE_ONE", p: Heston{S0: 100, V0: 0.04, Rho: -1, Kappa: 1, Theta: 0.02, Sigma: 1.5}},
		{name: "ZERO_START", p: Heston{S0: 1, V0: 0, Rho: 0, Kappa: 3, Theta: 0.04, Sigma: 0.6}},
	} {
		t.Run(test.name, func(t *testing.T) {
			s, v, err := test.p.SimulateWithVariance(util.NewSource(4), 500, 40, 1.0/252)
			require.NoError(t, err)
			r, c := v.Dims()
			for i := 0; i < r; i++ {
				for j := 0; j < c; j++ {
					require.GreaterOrEqual(t, v.At(i, j), 0.0)
					require.Greater(t, s.At(i, j), 0.0)
				}
			}
		})
	}
}

func TestHestonReproducible(t *testing.T) {
	p := Heston{S0: 100, V0: 0.04, Rho: -0.5, Kappa: 2, Theta: 0.04, Sigma: 0.3, R: 0.01}
	a, err := p.Simulate(util.NewSource(12), 50, 6, 0.01)
	require.NoError(t, err)
	b, err := p.Simulate(util.NewSource(12), 50, 6, 0.01)
	require.NoError(t, err)
	require.True(t, mat.Equal(a, b))
}

func TestHestonInvalid(t *testing.T) {
	_, _, err := HestonSim(util.NewSource(1), 100, 0.04, 0.5, 1, 0.04, 0.3, 0, 10, 1, 0)
	require.ErrorIs(t, err, util.ErrInvalidParameter)

	_, _, err = HestonSim(util.NewSource(1), 100, 0.04, 1.5, 1, 0.04, 0.3, 1, 10, 1, 0)
	require.ErrorIs(t, err, util.ErrInvalidParameter)

	_, _, err = HestonSim(util.NewSource(1), 100, -0.04, 0.5, 1, 0.04, 0.3, 1, 10, 1, 0)
	require.ErrorIs(t, err, util.ErrInvalidParameter)

	_, _, err = HestonSim(util.NewSource(1), 0, 0.04, 0.5, 1, 0.04, 0.3, 1, 10, 1, 0)
	require.ErrorIs(t, err, util.ErrInvalidParameter)

	_, _, err = HestonSim(util.NewSource(1), 100, 0.04, 0.5, 1, 0.04, 0.3, 1, 0, 1, 0)
	require.ErrorIs(t, err, util.ErrInvalidParameter)
}
