package data

import (
	"fmt"

	"github.com/banachtech/finsims/transform"
	"github.com/banachtech/finsims/util"
	"gonum.org/v1/gonum/mat"
)

// WaveletParams is the side channel stored next to a wavelet coefficient
// dataset. Without the band shapes of every series the coefficients cannot
// be inverted.
type WaveletParams struct {
	WaveletName    string  `json:"wavelet_name"`
	SequenceLength int     `json:"sequence_length"`
	SeriesLength   int     `json:"series_length"`
	CoeffsShapes   [][]int `json:"coeffs_shapes"`
}

// NewWaveletParams describes c.
func NewWaveletParams(c *transform.WaveletCoeffs) WaveletParams {
	p := WaveletParams{WaveletName: c.Wavelet, CoeffsShapes: make([][]int, len(c.Series))}
	for j, s := range c.Series {
		p.CoeffsShapes[j] = s.Shapes
		p.SequenceLength = len(s.Coeffs)
		p.SeriesLength = s.Length
	}
	return p
}

// Bind pairs a stored coefficient matrix with the recorded shapes.
func (p WaveletParams) Bind(m mat.Matrix) (*transform.WaveletCoeffs, error) {
	r, _ := m.Dims()
	if r != p.SequenceLength {
		return nil, fmt.Errorf("%w: coefficient matrix has %d rows, want %d", util.ErrShapeMismatch, r, p.SequenceLength)
	}
	return transform.NewWaveletCoeffs(m, p.CoeffsShapes, p.SeriesLength, p.WaveletName)
}

// SaveWaveletParams writes the side channel for c to filename.
func SaveWaveletParams(filename string, c *transform.WaveletCoeffs) error {
	return writeJSON(filename, NewWaveletParams(c))
}

// LoadWavelet reads a wavelet coefficient dataset and its side channel and
// returns the bound coefficients.
func LoadWavelet(dataset string, format Format, paramsFile string) (*transform.WaveletCoeffs, error) {
	p, err := Open(paramsFile, WaveletParams{})
	if err != nil {
		return nil, err
	}
	m, err := LoadDataset(dataset, format)
	if err != nil {
		return nil, err
	}
	return p.Bind(m)
}

// SaveZScoreParams writes the normalisation summary to filename.
func SaveZScoreParams(filename string, p transform.ZScoreParams) error {
	return writeJSON(filename, p)
}

// LoadZScoreParams reads a normalisation summary.
func LoadZScoreParams(filename string) (transform.ZScoreParams, error) {
	return Open(filename, transform.ZScoreParams{})
}
