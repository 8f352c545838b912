package transform

import (
	"fmt"

	"github.com/banachtech/finsims/util"
	"gonum.org/v1/gonum/mat"
)

// PackedSeries is the wavelet decomposition of one series: its bands
// concatenated into Coeffs, the length of each band in Shapes and the
// original series length. Keeping the three together means a coefficient
// vector can never be inverted with another series' band layout.
type PackedSeries struct {
	Coeffs []float64 `json:"-"`
	Shapes []int     `json:"coeffs_shapes"`
	Length int       `json:"series_length"`
}

// WaveletCoeffs is the wavelet decomposition of every column of a matrix.
type WaveletCoeffs struct {
	Wavelet string
	Series  []PackedSeries
}

// Matrix returns the coefficient matrix with one column per series.
func (c *WaveletCoeffs) Matrix() *mat.Dense {
	if len(c.Series) == 0 {
		return &mat.Dense{}
	}
	out := mat.NewDense(len(c.Series[0].Coeffs), len(c.Series), nil)
	for j, s := range c.Series {
		out.SetCol(j, s.Coeffs)
	}
	return out
}

// MaxLevel returns the deepest useful decomposition level for a series of
// length n and a filter of length f.
func MaxLevel(n, f int) int {
	if f < 2 {
		return 0
	}
	level := 0
	for (f-1)<<(level+1) <= n {
		level++
	}
	return level
}

// WaveletDecompose runs a multilevel discrete wavelet transform of x with
// symmetric boundary extension. level 0 selects MaxLevel. The bands are
// returned coarsest first: [cA_n, cD_n, ..., cD_1].
func WaveletDecompose(x []float64, w Filter, level int) ([][]float64, error) {
	if len(x) == 0 {
		return nil, fmt.Errorf("%w: empty series", util.ErrInvalidParameter)
	}
	if level < 0 {
		return nil, fmt.Errorf("%w: decomposition level must be non-negative, got %d", util.ErrInvalidParameter, level)
	}
	if level == 0 {
		level = MaxLevel(len(x), w.Len())
	}
	bands := make([][]float64, level+1)
	a := x
	for l := level; l >= 1; l-- {
		var d []float64
		a, d = dwt(a, w)
		bands[l] = d
	}
	bands[0] = append([]float64(nil), a...)
	return bands, nil
}

// WaveletReconstruct inverts WaveletDecompose and trims the result to length.
func WaveletReconstruct(bands [][]float64, w Filter, length int) ([]float64, error) {
	if len(bands) == 0 {
		return nil, fmt.Errorf("%w: no coefficient bands", util.ErrShapeMismatch)
	}
	a := bands[0]
	for _, d := range bands[1:] {
		// Odd lengths grow by one sample per level
		if len(a) == len(d)+1 {
			a = a[:len(d)]
		}
		if len(a) != len(d) {
			return nil, fmt.Errorf("%w: approximation of length %d does not match detail of length %d", util.ErrShapeMismatch, len(a), len(d))
		}
		a = idwt(a, d, w)
	}
	if len(a) < length {
		return nil, fmt.Errorf("%w: reconstructed %d samples, want %d", util.ErrShapeMismatch, len(a), length)
	}
	return a[:length], nil
}

// Wavelet decomposes each column of x. level 0 selects the maximum level.
func Wavelet(x mat.Matrix, name string, level int) (*WaveletCoeffs, error) {
	w, err := LookupWavelet(name)
	if err != nil {
		return nil, err
	}
	r, c := x.Dims()
	out := &WaveletCoeffs{Wavelet: name, Series: make([]PackedSeries, c)}
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, x)
		bands, err := WaveletDecompose(col, w, level)
		if err != nil {
			return nil, err
		}
		out.Series[j] = pack(bands, r)
	}
	return out, nil
}

// InverseWavelet reconstructs the matrix decomposed by Wavelet.
func InverseWavelet(c *WaveletCoeffs) (*mat.Dense, error) {
	w, err := LookupWavelet(c.Wavelet)
	if err != nil {
		return nil, err
	}
	if len(c.Series) == 0 {
		return &mat.Dense{}, nil
	}
	rows := c.Series[0].Length
	out := mat.NewDense(rows, len(c.Series), nil)
	for j, s := range c.Series {
		if s.Length != rows {
			return nil, fmt.Errorf("%w: series %d has length %d, want %d", util.ErrShapeMismatch, j, s.Length, rows)
		}
		bands, err := Restore(s)
		if err != nil {
			return nil, fmt.Errorf("series %d: %w", j, err)
		}
		y, err := WaveletReconstruct(bands, w, s.Length)
		if err != nil {
			return nil, fmt.Errorf("series %d: %w", j, err)
		}
		out.SetCol(j, y)
	}
	return out, nil
}

// Restore splits a packed coefficient vector back into its bands.
func Restore(ps PackedSeries) ([][]float64, error) {
	total := 0
	for _, s := range ps.Shapes {
		if s < 0 {
			return nil, fmt.Errorf("%w: negative band length %d", util.ErrShapeMismatch, s)
		}
		total += s
	}
	if total != len(ps.Coeffs) {
		return nil, fmt.Errorf("%w: shapes sum to %d, have %d coefficients", util.ErrShapeMismatch, total, len(ps.Coeffs))
	}
	bands := make([][]float64, len(ps.Shapes))
	start := 0
	for i, s := range ps.Shapes {
		bands[i] = ps.Coeffs[start : start+s]
		start += s
	}
	return bands, nil
}

// NewWaveletCoeffs binds a stored coefficient matrix back to the band shapes
// of each column.
func NewWaveletCoeffs(m mat.Matrix, shapes [][]int, length int, name string) (*WaveletCoeffs, error) {
	if !IsWavelet(name) {
		return nil, fmt.Errorf("%w: unknown wavelet %q", util.ErrInvalidParameter, name)
	}
	r, c := m.Dims()
	if len(shapes) != c {
		return nil, fmt.Errorf("%w: %d shape lists for %d columns", util.ErrShapeMismatch, len(shapes), c)
	}
	out := &WaveletCoeffs{Wavelet: name, Series: make([]PackedSeries, c)}
	for j := 0; j < c; j++ {
		ps := PackedSeries{
			Coeffs: mat.Col(nil, j, m),
			Shapes: append([]int(nil), shapes[j]...),
			Length: length,
		}
		if _, err := Restore(ps); err != nil {
			return nil, fmt.Errorf("column %d of %d rows: %w", j, r, err)
		}
		out.Series[j] = ps
	}
	return out, nil
}

func pack(bands [][]float64, length int) PackedSeries {
	ps := PackedSeries{Shapes: make([]int, len(bands)), Length: length}
	for i, b := range bands {
		ps.Shapes[i] = len(b)
		ps.Coeffs = append(ps.Coeffs, b...)
	}
	return ps
}

// Index into the half-sample symmetric extension of a series of length n.
func symmetric(i, n int) int {
	i %= 2 * n
	if i < 0 {
		i += 2 * n
	}
	if i >= n {
		return 2*n - 1 - i
	}
	return i
}

// Single level decomposition; both outputs have (n+f-1)/2 samples.
func dwt(x []float64, w Filter) ([]float64, []float64) {
	n, f := len(x), w.Len()
	size := (n + f - 1) / 2
	a := make([]float64, size)
	d := make([]float64, size)
	for o := 0; o < size; o++ {
		for j := 0; j < f; j++ {
			v := x[symmetric(2*o+1-j, n)]
			a[o] += w.DecLo[j] * v
			d[o] += w.DecHi[j] * v
		}
	}
	return a, d
}

// Single level reconstruction keeping only fully overlapped samples.
func idwt(a, d []float64, w Filter) []float64 {
	f := len(w.RecLo)
	size := 2*len(a) - f + 2
	if size < 0 {
		size = 0
	}
	y := make([]float64, size)
	for i := range y {
		for o := range a {
			k := i + f - 2 - 2*o
			if k < 0 || k >= f {
				continue
			}
			y[i] += a[o]*w.RecLo[k] + d[o]*w.RecHi[k]
		}
	}
	return y
}
