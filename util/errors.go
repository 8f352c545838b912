package util

import "errors"

var (
	// ErrInvalidParameter reports a non-positive step count, path count or
	// time increment, a negative volatility, or a similar usage error.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrEmptySource is returned when resampling from a zero-length series.
	ErrEmptySource = errors.New("empty source series")
	// ErrShapeMismatch is returned when a coefficient vector does not match
	// the band shapes it is paired with.
	ErrShapeMismatch = errors.New("coefficient shape mismatch")
	// ErrUnsupported is returned for operations a model variant does not offer.
	ErrUnsupported = errors.New("unsupported operation")
)
