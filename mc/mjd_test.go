package mc

import (
	"math"
	"testing"

	"github.com/banachtech/finsims/util"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestMJDSimulate(t *testing.T) {
	p := MJD{Mu: 0.05, Sigma: 0.2, Lamb: 5, MuJ: -0.1, SigmaJ: 0.15, S0: 100}
	x, err := p.Simulate(util.NewSource(5), 252, 10, 1.0/252)
	require.NoError(t, err)

	r, c := x.Dims()
	require.Equal(t, 253, r)
	require.Equal(t, 10, c)
	for j := 0; j < c; j++ {
		require.Equal(t, 100.0, x.At(0, j))
		for i := 0; i < r; i++ {
			require.Greater(t, x.At(i, j), 0.0)
		}
	}
}

func TestMJDDefaultStart(t *testing.T) {
	x, err := SimulateMJD(util.NewSource(5), 0.05, 0.2, 1, 0, 0.1, 5, 3, 0.1, 0)
	require.NoError(t, err)
	for j := 0; j < 3; j++ {
		require.Equal(t, 1.0, x.At(0, j))
	}
}

func TestMJDNoJumpsIsGBMDrift(t *testing.T) {
	// With no volatility and no arrivals every step grows by exp(mu dt)
	x, err := SimulateMJD(util.NewSource(9), 0.1, 0, 0, 0.3, 0.2, 20, 2, 0.05, 1)
	require.NoError(t, err)
	for i := 0; i <= 20; i++ {
		require.InDelta(t, math.Exp(0.1*0.05*float64(i)), x.At(i, 0), 1e-12)
	}
}

func TestMJDJumpCounts(t *testing.T) {
	// With deterministic jump sizes each step moves the log price by the drift
	// plus MuJ times an integer arrival count, in both jump modes
	for _, compound := range []bool{false, true} {
		p := MJD{Mu: 0.05, Lamb: 20, MuJ: 0.25, S0: 1, CompoundJumps: compound}
		dt := 0.01
		x, err := p.Simulate(util.NewSource(21), 200, 3, dt)
		require.NoError(t, err)

		drift := (p.Mu - p.Lamb*p.JumpCompensator()) * dt
		var total float64
		for j := 0; j < 3; j++ {
			for i := 1; i <= 200; i++ {
				arrivals := (math.Log(x.At(i, j)/x.At(i-1, j)) - drift) / p.MuJ
				require.InDelta(t, math.Round(arrivals), arrivals, 1e-6)
				require.GreaterOrEqual(t, math.Round(arrivals), 0.0)
				total += math.Round(arrivals)
			}
		}
		require.Greater(t, total, 0.0)
	}
}

func TestMJDReproducible(t *testing.T) {
	p := MJD{Mu: 0.05, Sigma: 0.2, Lamb: 10, MuJ: 0, SigmaJ: 0.1}
	a, err := p.Simulate(util.NewSource(8), 100, 4, 0.01)
	require.NoError(t, err)
	b, err := p.Simulate(util.NewSource(8), 100, 4, 0.01)
	require.NoError(t, err)
	require.True(t, mat.Equal(a, b))
}

func TestMJDInvalid(t *testing.T) {
	type testCases struct {
		name string
		p    MJD
		n, m int
		dt   float64
	}

	for _, test := range []testCases{
		{name: "ZERO_STEPS", p: MJD{}, n: 0, m: 1, dt: 0.1},
		{name: "ZERO_PATHS", p: MJD{}, n: 1, m: 0, dt: 0.1},
		{name: "ZERO_DT", p: MJD{}, n: 1, m: 1, dt: 0},
		{name: "NEGATIVE_SIGMA", p: MJD{Sigma: -1}, n: 1, m: 1, dt: 0.1},
		{name: "NEGATIVE_SIGMA_J", p: MJD{SigmaJ: -1}, n: 1, m: 1, dt: 0.1},
		{name: "NEGATIVE_LAMB", p: MJD{Lamb: -1}, n: 1, m: 1, dt: 0.1},
	} {
		t.Run(test.name, func(t *testing.T) {
			_, err := test.p.Simulate(util.NewSource(1), test.n, test.m, test.dt)
			require.ErrorIs(t, err, util.ErrInvalidParameter)
		})
	}
}
