package transform

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// LogReturns returns the first differences of log(x) down each column. The
// result has one row fewer than x.
func LogReturns(x mat.Matrix) *mat.Dense {
	r, c := x.Dims()
	if r < 2 {
		return &mat.Dense{}
	}
	out := mat.NewDense(r-1, c, nil)
	out.Apply(func(i, j int, _ float64) float64 {
		return math.Log(x.At(i+1, j)) - math.Log(x.At(i, j))
	}, out)
	return out
}

// ReverseLogReturns rebuilds price paths from log returns, starting every
// column at s0. The result has one row more than r.
func ReverseLogReturns(r mat.Matrix, s0 float64) *mat.Dense {
	n, c := r.Dims()
	out := mat.NewDense(n+1, c, nil)
	for j := 0; j < c; j++ {
		out.Set(0, j, s0)
		for i := 1; i <= n; i++ {
			out.Set(i, j, out.At(i-1, j)*math.Exp(r.At(i-1, j)))
		}
	}
	return out
}
