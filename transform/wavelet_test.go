package transform

import (
	"math"
	"testing"

	"github.com/banachtech/finsims/util"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func TestFiltersOrthonormal(t *testing.T) {
	for _, name := range Wavelets() {
		t.Run(name, func(t *testing.T) {
			w, err := LookupWavelet(name)
			require.NoError(t, err)
			require.InDelta(t, math.Sqrt2, floats.Sum(w.DecLo), 1e-12)
			require.InDelta(t, 0.0, floats.Sum(w.DecHi), 1e-12)
			require.InDelta(t, 1.0, floats.Dot(w.RecLo, w.RecLo), 1e-12)
			require.InDelta(t, 0.0, floats.Dot(w.RecLo, w.RecHi), 1e-12)
		})
	}
}

func TestLookupWaveletUnknown(t *testing.T) {
	_, err := LookupWavelet("morl")
	require.ErrorIs(t, err, util.ErrInvalidParameter)
	require.False(t, IsWavelet("cosine"))
	require.True(t, IsWavelet("db2"))
}

func TestMaxLevel(t *testing.T) {
	require.Equal(t, 5, MaxLevel(100, 4))
	require.Equal(t, 3, MaxLevel(8, 2))
	require.Equal(t, 0, MaxLevel(2, 8))
	require.Equal(t, 1, MaxLevel(14, 8))
}

func TestWaveletDecomposeShapes(t *testing.T) {
	w, err := LookupWavelet("db2")
	require.NoError(t, err)
	x := make([]float64, 100)
	for i := range x {
		x[i] = float64(i)
	}
	bands, err := WaveletDecompose(x, w, 0)
	require.NoError(t, err)

	var lens []int
	for _, b := range bands {
		lens = append(lens, len(b))
	}
	require.Equal(t, []int{6, 6, 9, 15, 27, 51}, lens)

	bands, err = WaveletDecompose(x, w, 2)
	require.NoError(t, err)
	require.Len(t, bands, 3)

	_, err = WaveletDecompose(x, w, -1)
	require.ErrorIs(t, err, util.ErrInvalidParameter)
}

func TestHaarKnownValues(t *testing.T) {
	w, err := LookupWavelet("haar")
	require.NoError(t, err)
	bands, err := WaveletDecompose([]float64{1, 3, 5, 7}, w, 1)
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{4 / math.Sqrt2, 12 / math.Sqrt2}, bands[0], 1e-12)
	require.InDeltaSlice(t, []float64{-2 / math.Sqrt2, -2 / math.Sqrt2}, bands[1], 1e-12)
}

func TestWaveletRoundTrip(t *testing.T) {
	for _, name := range Wavelets() {
		for _, n := range []int{2, 3, 5, 8, 17, 64, 101, 252} {
			x := randomMatrix(uint64(n), n, 3)
			c, err := Wavelet(x, name, 0)
			require.NoError(t, err)
			require.Len(t, c.Series, 3)

			y, err := InverseWavelet(c)
			require.NoError(t, err)
			require.True(t, mat.EqualApprox(x, y, 1e-8), "%s length %d", name, n)
		}
	}
}

func TestWaveletRoundTripThroughMatrix(t *testing.T) {
	x := randomMatrix(5, 200, 4)
	c, err := Wavelet(x, "sym4", 3)
	require.NoError(t, err)

	shapes := make([][]int, len(c.Series))
	for j, s := range c.Series {
		shapes[j] = s.Shapes
	}
	stored := c.Matrix()
	back, err := NewWaveletCoeffs(stored, shapes, 200, "sym4")
	require.NoError(t, err)

	y, err := InverseWavelet(back)
	require.NoError(t, err)
	require.True(t, mat.EqualApprox(x, y, 1e-8))
}

func TestRestoreShapeMismatch(t *testing.T) {
	ps := PackedSeries{Coeffs: []float64{1, 2, 3, 4, 5}, Shapes: []int{2, 2}, Length: 4}
	_, err := Restore(ps)
	require.ErrorIs(t, err, util.ErrShapeMismatch)

	ps.Shapes = []int{2, 3}
	bands, err := Restore(ps)
	require.NoError(t, err)
	require.Equal(t, [][]float64{{1, 2}, {3, 4, 5}}, bands)
}

func TestNewWaveletCoeffsMismatch(t *testing.T) {
	m := mat.NewDense(5, 2, nil)

	_, err := NewWaveletCoeffs(m, [][]int{{2, 3}}, 4, "haar")
	require.ErrorIs(t, err, util.ErrShapeMismatch)

	_, err = NewWaveletCoeffs(m, [][]int{{2, 3}, {2, 2}}, 4, "haar")
	require.ErrorIs(t, err, util.ErrShapeMismatch)

	_, err = NewWaveletCoeffs(m, [][]int{{2, 3}, {2, 3}}, 4, "nope")
	require.ErrorIs(t, err, util.ErrInvalidParameter)
}

func TestWaveletReconstructMismatch(t *testing.T) {
	w, err := LookupWavelet("db2")
	require.NoError(t, err)
	_, err = WaveletReconstruct([][]float64{{1, 2, 3, 4}, {1, 2}}, w, 4)
	require.ErrorIs(t, err, util.ErrShapeMismatch)
}
