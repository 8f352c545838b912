package transform

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestLogReturns(t *testing.T) {
	x := mat.NewDense(3, 2, []float64{
		1, 10,
		math.E, 10,
		1, 20,
	})
	r := LogReturns(x)
	rows, cols := r.Dims()
	require.Equal(t, 2, rows)
	require.Equal(t, 2, cols)
	require.InDelta(t, 1.0, r.At(0, 0), 1e-12)
	require.InDelta(t, -1.0, r.At(1, 0), 1e-12)
	require.InDelta(t, 0.0, r.At(0, 1), 1e-12)
	require.InDelta(t, math.Log(2), r.At(1, 1), 1e-12)
}

func TestLogReturnsRoundTrip(t *testing.T) {
	r := randomMatrix(3, 30, 5)
	r.Scale(0.01, r)
	x := ReverseLogReturns(r, 100)
	rows, _ := x.Dims()
	require.Equal(t, 31, rows)
	for j := 0; j < 5; j++ {
		require.Equal(t, 100.0, x.At(0, j))
	}
	require.True(t, mat.EqualApprox(r, LogReturns(x), 1e-12))
}

func TestZScore(t *testing.T) {
	x := mat.NewDense(4, 2, []float64{
		1, 10,
		2, 20,
		3, 30,
		4, 40,
	})
	z, params := ZScore(x)
	for j := 0; j < 2; j++ {
		col := mat.Col(nil, j, z)
		var sum, ss float64
		for _, v := range col {
			sum += v
			ss += v * v
		}
		require.InDelta(t, 0.0, sum, 1e-12)
		require.InDelta(t, 4.0, ss, 1e-12)
	}
	require.InDelta(t, (2.5+25)/2, params.Mean, 1e-12)
	require.InDelta(t, (math.Sqrt(1.25)+math.Sqrt(125))/2, params.Std, 1e-12)
}
