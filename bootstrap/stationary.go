// Package bootstrap resamples a historical series into synthetic sequences.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/banachtech/finsims/util"
	"golang.org/x/sync/errgroup"
)

// Stationary draws numPaths stationary block bootstrap samples of exactly
// required values from historical. Blocks start at a uniform index, have a
// geometric length with mean expBlockSize and wrap around the end of the
// series.
func Stationary(src *util.Source, historical []float64, required int, expBlockSize float64, numPaths int) ([][]float64, error) {
	if err := validate(historical, required, expBlockSize, numPaths); err != nil {
		return nil, err
	}
	out := make([][]float64, numPaths)
	for i := range out {
		out[i] = sample(src, historical, required, expBlockSize)
	}
	return out, nil
}

// StationaryParallel is Stationary with the paths spread over workers. Each
// worker draws from its own child of src.Split(workers), so the result
// depends only on the seed and the worker count.
func StationaryParallel(ctx context.Context, src *util.Source, historical []float64, required int, expBlockSize float64, numPaths, workers int) ([][]float64, error) {
	if err := validate(historical, required, expBlockSize, numPaths); err != nil {
		return nil, err
	}
	out := make([][]float64, numPaths)
	if numPaths == 0 {
		return out, nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > numPaths {
		workers = numPaths
	}
	children := src.Split(workers)

	g, ctx := errgroup.WithContext(ctx)
	for k := 0; k < workers; k++ {
		k := k
		g.Go(func() error {
			for i := k; i < numPaths; i += workers {
				if err := ctx.Err(); err != nil {
					return err
				}
				out[i] = sample(children[k], historical, required, expBlockSize)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func validate(historical []float64, required int, expBlockSize float64, numPaths int) error {
	if len(historical) == 0 {
		return util.ErrEmptySource
	}
	if required < 0 {
		return fmt.Errorf("%w: required length must be non-negative, got %d", util.ErrInvalidParameter, required)
	}
	if !(expBlockSize >= 1) {
		return fmt.Errorf("%w: expected block size must be at least 1, got %v", util.ErrInvalidParameter, expBlockSize)
	}
	if numPaths < 0 {
		return fmt.Errorf("%w: path count must be non-negative, got %d", util.ErrInvalidParameter, numPaths)
	}
	return nil
}

func sample(src *util.Source, historical []float64, required int, expBlockSize float64) []float64 {
	n := len(historical)
	p := 1 / expBlockSize
	out := make([]float64, 0, required)
	for len(out) < required {
		start := src.Intn(n)
		block := src.Geometric(p)
		for i := 0; i < block && len(out) < required; i++ {
			out = append(out, historical[(start+i)%n])
		}
	}
	return out
}
