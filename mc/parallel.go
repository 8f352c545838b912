package mc

import (
	"context"

	"github.com/banachtech/finsims/util"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// SimulateParallel simulates m paths of p split into contiguous column
// chunks, one per worker. Chunk k draws from the k-th child of
// src.Split(workers), so a fixed seed and worker count give the same matrix
// regardless of scheduling.
func SimulateParallel(ctx context.Context, p Process, src *util.Source, n, m int, dt float64, workers int) (*mat.Dense, error) {
	if err := checkGrid(n, m, dt); err != nil {
		return nil, err
	}
	if workers < 1 {
		workers = 1
	}
	if workers > m {
		workers = m
	}
	children := src.Split(workers)
	parts := make([]*mat.Dense, workers)
	offsets := partition(m, workers)

	g, ctx := errgroup.WithContext(ctx)
	for k := 0; k < workers; k++ {
		k := k
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			part, err := p.Simulate(children[k], n, offsets[k+1]-offsets[k], dt)
			if err != nil {
				return err
			}
			parts[k] = part
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rows, _ := parts[0].Dims()
	out := mat.NewDense(rows, m, nil)
	for k, part := range parts {
		out.Slice(0, rows, offsets[k], offsets[k+1]).(*mat.Dense).Copy(part)
	}
	return out, nil
}

// Column offsets of k near-equal chunks of m; the first m%k chunks get one extra.
func partition(m, k int) []int {
	offsets := make([]int, k+1)
	base, rem := m/k, m%k
	for i := 0; i < k; i++ {
		w := base
		if i < rem {
			w++
		}
		offsets[i+1] = offsets[i] + w
	}
	return offsets
}
