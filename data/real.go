package data

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/banachtech/finsims/bootstrap"
	"github.com/banachtech/finsims/transform"
	"github.com/banachtech/finsims/util"
	"gonum.org/v1/gonum/mat"
)

// LoadCloses reads closing prices from a CSV with a header row. The column
// named close (or adj close) is used, otherwise the last column. Rows with an
// empty or non-numeric close are skipped.
func LoadCloses(filename string) ([]float64, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%s: %w", filename, util.ErrEmptySource)
	}

	col := len(records[0]) - 1
	for i, h := range records[0] {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "adj close", "adj_close":
			col = i
		case "close":
			if col == len(records[0])-1 {
				col = i
			}
		}
	}

	var closes []float64
	for _, rec := range records[1:] {
		if col >= len(rec) {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[col]), 64)
		if err != nil || math.IsNaN(v) {
			continue
		}
		closes = append(closes, v)
	}
	if len(closes) == 0 {
		return nil, fmt.Errorf("%s: %w", filename, util.ErrEmptySource)
	}
	return closes, nil
}

// logReturns of a single price series.
func logReturns(closes []float64) []float64 {
	out := make([]float64, 0, len(closes))
	for i := 1; i < len(closes); i++ {
		out = append(out, math.Log(closes[i])-math.Log(closes[i-1]))
	}
	return out
}

// RealDataset turns a price series into log returns, drops the remainder
// after the last full window and reshapes the rest into rows of n.
func RealDataset(closes []float64, n int) (*mat.Dense, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: window length must be positive, got %d", util.ErrInvalidParameter, n)
	}
	r := logReturns(closes)
	usable := len(r) - len(r)%n
	if usable == 0 {
		return nil, fmt.Errorf("%w: %d returns do not fill a window of %d", util.ErrInvalidParameter, len(r), n)
	}
	return mat.NewDense(usable/n, n, r[:usable]), nil
}

// BootstrapDataset resamples the log returns of closes into m paths of n
// returns with expected block length block, and rebuilds prices starting at
// s0. s0 <= 0 starts from the last close. The result has n+1 rows.
func BootstrapDataset(ctx context.Context, src *util.Source, closes []float64, n, m int, block, s0 float64, workers int) (*mat.Dense, error) {
	if n < 1 || m < 1 {
		return nil, fmt.Errorf("%w: path shape must be positive, got %d x %d", util.ErrInvalidParameter, n, m)
	}
	hist := logReturns(closes)
	paths, err := bootstrap.StationaryParallel(ctx, src, hist, n, block, m, workers)
	if err != nil {
		return nil, err
	}
	ret := mat.NewDense(n, m, nil)
	for j, p := range paths {
		ret.SetCol(j, p)
	}
	if s0 <= 0 {
		s0 = closes[len(closes)-1]
	}
	return transform.ReverseLogReturns(ret, s0), nil
}
