package bootstrap

import (
	"context"
	"testing"

	"github.com/banachtech/finsims/util"
	"github.com/stretchr/testify/require"
)

func series(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i) + 0.5
	}
	return out
}

func TestStationaryLengthAndMembership(t *testing.T) {
	type testCases struct {
		name  string
		n     int
		paths int
	}

	for _, test := range []testCases{
		{name: "SINGLE_VALUE", n: 1, paths: 1},
		{name: "SHORT", n: 3, paths: 4},
		{name: "LONG", n: 500, paths: 10},
	} {
		t.Run(test.name, func(t *testing.T) {
			hist := series(test.n)
			members := make(map[float64]bool, len(hist))
			for _, v := range hist {
				members[v] = true
			}

			got, err := Stationary(util.NewSource(1), hist, 50, 5, test.paths)
			require.NoError(t, err)
			require.Len(t, got, test.paths)
			for _, path := range got {
				require.Len(t, path, 50)
				for _, v := range path {
					require.True(t, members[v])
				}
			}
		})
	}
}

func TestStationaryBlocksAreContiguous(t *testing.T) {
	// With a huge expected block every path is one circular run
	hist := series(20)
	got, err := Stationary(util.NewSource(2), hist, 60, 1e9, 3)
	require.NoError(t, err)
	for _, path := range got {
		for i := 1; i < len(path); i++ {
			require.Equal(t, hist[(int(path[i-1]-0.5)+1)%20], path[i])
		}
	}
}

func TestStationaryPathsDiffer(t *testing.T) {
	got, err := Stationary(util.NewSource(3), series(1000), 50, 5, 2)
	require.NoError(t, err)
	require.NotEqual(t, got[0], got[1])
}

func TestStationaryZeroRequired(t *testing.T) {
	got, err := Stationary(util.NewSource(3), series(10), 0, 5, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, path := range got {
		require.Empty(t, path)
	}
}

func TestStationaryReproducible(t *testing.T) {
	a, err := Stationary(util.NewSource(4), series(100), 30, 4, 5)
	require.NoError(t, err)
	b, err := Stationary(util.NewSource(4), series(100), 30, 4, 5)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestStationaryErrors(t *testing.T) {
	_, err := Stationary(util.NewSource(1), nil, 10, 5, 1)
	require.ErrorIs(t, err, util.ErrEmptySource)

	_, err = Stationary(util.NewSource(1), series(5), -1, 5, 1)
	require.ErrorIs(t, err, util.ErrInvalidParameter)

	_, err = Stationary(util.NewSource(1), series(5), 10, 0.5, 1)
	require.ErrorIs(t, err, util.ErrInvalidParameter)

	_, err = Stationary(util.NewSource(1), series(5), 10, 5, -1)
	require.ErrorIs(t, err, util.ErrInvalidParameter)
}

func TestStationaryParallel(t *testing.T) {
	hist := series(300)
	a, err := StationaryParallel(context.Background(), util.NewSource(5), hist, 40, 6, 17, 4)
	require.NoError(t, err)
	require.Len(t, a, 17)
	for _, path := range a {
		require.Len(t, path, 40)
	}

	b, err := StationaryParallel(context.Background(), util.NewSource(5), hist, 40, 6, 17, 4)
	require.NoError(t, err)
	require.Equal(t, a, b)

	_, err = StationaryParallel(context.Background(), util.NewSource(5), nil, 40, 6, 17, 4)
	require.ErrorIs(t, err, util.ErrEmptySource)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = StationaryParallel(ctx, util.NewSource(5), hist, 40, 6, 17, 4)
	require.ErrorIs(t, err, context.Canceled)
}
