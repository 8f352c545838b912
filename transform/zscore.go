package transform

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ZScoreParams summarises a column z-score as the average of the per-column
// means and standard deviations.
type ZScoreParams struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// ZScore standardises every column of x with its own mean and population
// standard deviation. Constant columns produce NaN.
func ZScore(x mat.Matrix) (*mat.Dense, ZScoreParams) {
	r, c := x.Dims()
	out := mat.NewDense(r, c, nil)
	means := make([]float64, c)
	stds := make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, x)
		means[j], stds[j] = stat.PopMeanStdDev(col, nil)
		for i, v := range col {
			col[i] = (v - means[j]) / stds[j]
		}
		out.SetCol(j, col)
	}
	return out, ZScoreParams{Mean: stat.Mean(means, nil), Std: stat.Mean(stds, nil)}
}
