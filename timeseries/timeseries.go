// Package timeseries provides the univariate time series type consumed by the
// downscaling models along with synthetic series generators used in tests and
// examples.
package timeseries

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNoData       = errors.New("no data in series")
	ErrLenMismatch  = errors.New("time index has a different length than values")
	ErrNonMonotonic = errors.New("time index is not strictly increasing")
)

// Series represents a univariate time series storing a slice of time points
// and a single value column. The time index is strictly increasing and
// duplicate free.
type Series struct {
	T []time.Time
	Y []float64
}

// New returns a Series given a time and value slice. The inputs are copied so
// later caller mutation cannot corrupt fitted model state.
func New(t []time.Time, y []float64) (*Series, error) {
	if len(y) == 0 {
		return nil, ErrNoData
	}
	if len(t) != len(y) {
		return nil, fmt.Errorf(
			"time index has length of %d, but values has a length of %d, %w",
			len(t), len(y), ErrLenMismatch,
		)
	}

	var lastT time.Time
	for i := 0; i < len(t); i++ {
		currT := t[i]
		if currT.Before(lastT) || currT.Equal(lastT) {
			return nil, fmt.Errorf("non-monotonic at %d, %w", i, ErrNonMonotonic)
		}
		lastT = currT
	}

	tSeries := make([]time.Time, len(t))
	ySeries := make([]float64, len(t))
	copy(tSeries, t)
	copy(ySeries, y)
	return &Series{
		T: tSeries,
		Y: ySeries,
	}, nil
}

// Len returns the number of samples in the series.
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Y)
}

func (s *Series) Copy() *Series {
	tSeries := make([]time.Time, len(s.T))
	ySeries := make([]float64, len(s.Y))
	copy(tSeries, s.T)
	copy(ySeries, s.Y)
	return &Series{
		T: tSeries,
		Y: ySeries,
	}
}

// WithValues returns a new Series sharing this series' time index with a new
// value column. The input must have the same length as the index; length is
// not re-validated here since every pipeline stage checks its own output
// shape before reattaching it.
func (s *Series) WithValues(y []float64) *Series {
	tSeries := make([]time.Time, len(s.T))
	ySeries := make([]float64, len(y))
	copy(tSeries, s.T)
	copy(ySeries, y)
	return &Series{
		T: tSeries,
		Y: ySeries,
	}
}
