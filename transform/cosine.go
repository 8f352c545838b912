package transform

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/mat"
)

// Cosine applies the orthonormal DCT-II to every column of x. The result has
// the same shape as x.
func Cosine(x mat.Matrix) *mat.Dense {
	r, _ := x.Dims()
	return columnwise(x, newDCT(r).forward)
}

// InverseCosine applies the orthonormal DCT-III to every column of c, undoing
// Cosine.
func InverseCosine(c mat.Matrix) *mat.Dense {
	r, _ := c.Dims()
	return columnwise(c, newDCT(r).inverse)
}

func columnwise(x mat.Matrix, fn func([]float64) []float64) *mat.Dense {
	r, c := x.Dims()
	out := mat.NewDense(r, c, nil)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, x)
		out.SetCol(j, fn(col))
	}
	return out
}

// dct computes DCT-II and DCT-III of a fixed length with one real FFT of the
// same length (Makhoul 1980). The input is reordered as even samples
// followed by odd samples reversed, so the cosine sums become the real part of
// a phase-shifted DFT.
type dct struct {
	n     int
	fft   *fourier.FFT
	twid  []complex128 // exp(-i pi k / 2n)
	v     []float64
	coeff []complex128
}

func newDCT(n int) *dct {
	d := &dct{n: n, v: make([]float64, n)}
	if n < 2 {
		return d
	}
	d.fft = fourier.NewFFT(n)
	d.coeff = make([]complex128, n/2+1)
	d.twid = make([]complex128, n)
	for k := range d.twid {
		d.twid[k] = cmplx.Exp(complex(0, -math.Pi*float64(k)/float64(2*n)))
	}
	return d
}

// Orthonormal scale of coefficient k.
func (d *dct) scale(k int) float64 {
	if k == 0 {
		return math.Sqrt(1 / float64(d.n))
	}
	return math.Sqrt(2 / float64(d.n))
}

func (d *dct) forward(x []float64) []float64 {
	n := d.n
	out := make([]float64, n)
	if n < 2 {
		copy(out, x)
		return out
	}
	for k := 0; k < (n+1)/2; k++ {
		d.v[k] = x[2*k]
	}
	for k := 0; k < n/2; k++ {
		d.v[n-1-k] = x[2*k+1]
	}
	d.fft.Coefficients(d.coeff, d.v)
	for k := 0; k < n; k++ {
		var vk complex128
		if k <= n/2 {
			vk = d.coeff[k]
		} else {
			vk = cmplx.Conj(d.coeff[n-k])
		}
		out[k] = real(d.twid[k]*vk) * d.scale(k)
	}
	return out
}

func (d *dct) inverse(c []float64) []float64 {
	n := d.n
	out := make([]float64, n)
	if n < 2 {
		copy(out, c)
		return out
	}
	// Undo the orthonormal scaling to get the plain cosine sums
	raw := func(k int) float64 {
		if k == n {
			return 0
		}
		return c[k] / d.scale(k)
	}
	for k := 0; k <= n/2; k++ {
		d.coeff[k] = cmplx.Conj(d.twid[k]) * complex(raw(k), -raw(n-k))
	}
	d.fft.Sequence(d.v, d.coeff)
	for k := 0; k < (n+1)/2; k++ {
		out[2*k] = d.v[k] / float64(n)
	}
	for k := 0; k < n/2; k++ {
		out[2*k+1] = d.v[n-1-k] / float64(n)
	}
	return out
}
