// Package groupers provides the time grouping strategies used to partition a
// climate series for per-group statistical fitting. A grouper maps every
// timestamp to a discrete group key and produces the per-key fitting subsets.
package groupers

import (
	"errors"
	"sort"
	"time"

	"github.com/climex/go-downscale/timeseries"
)

var (
	ErrUnknownMode = errors.New("unknown grouping mode")
	ErrInvalidPad  = errors.New("padding window must be non-negative and less than half a year")
)

// Key is the discrete label derived from a timestamp by a grouping strategy.
// The same timestamp always maps to the same key within one configuration.
type Key int

// Group is a fitting subset for a single key. Index retains each sample's
// original position in the source series so grouped results can be scattered
// back without re-sorting.
type Group struct {
	Key    Key
	Index  []int
	Values []float64
}

// Mode enumerates the supported grouping strategies.
type Mode int

const (
	// ModeMonthly keys samples by calendar month, 1-12.
	ModeMonthly Mode = iota + 1
	// ModeDayOfMonth keys samples by day number, 1-31.
	ModeDayOfMonth
	// ModePaddedDayOfYear keys samples by leap-adjusted day of year, 1-365,
	// drawing each key's fitting subset from a window padded around the
	// target day.
	ModePaddedDayOfYear
)

// Config selects a grouping strategy at construction. Pad is only used by
// ModePaddedDayOfYear and defaults to DefaultPad when left at zero.
type Config struct {
	Mode Mode `json:"mode"`
	Pad  int  `json:"pad,omitempty"`
}

func (c Config) Validate() error {
	switch c.Mode {
	case ModeMonthly, ModeDayOfMonth:
		return nil
	case ModePaddedDayOfYear:
		if c.Pad < 0 || c.Pad > yearDays/2 {
			return ErrInvalidPad
		}
		return nil
	}
	return ErrUnknownMode
}

// Daily reports whether the configured grouping operates on daily resolution
// data.
func (c Config) Daily() bool {
	return c.Mode == ModeDayOfMonth || c.Mode == ModePaddedDayOfYear
}

// Grouper assigns a group key to every timestamp and produces the per-key
// subsets used to fit per-group statistics. Key must be deterministic and
// total over the grouper's supported resolution.
type Grouper interface {
	Key(t time.Time) Key
	FitGroups(s *timeseries.Series) ([]Group, error)
}

// New returns the grouping strategy selected by the config.
func New(c Config) (Grouper, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	switch c.Mode {
	case ModeMonthly:
		return Monthly{}, nil
	case ModeDayOfMonth:
		return DayOfMonth{}, nil
	case ModePaddedDayOfYear:
		pad := c.Pad
		if pad == 0 {
			pad = DefaultPad
		}
		return PaddedDayOfYear{Pad: pad}, nil
	}
	return nil, ErrUnknownMode
}

// Monthly groups samples by calendar month yielding up to 12 groups.
type Monthly struct{}

func (Monthly) Key(t time.Time) Key {
	return Key(t.Month())
}

func (g Monthly) FitGroups(s *timeseries.Series) ([]Group, error) {
	return Partition(s, g), nil
}

// DayOfMonth groups samples by day number yielding up to 31 groups. This is
// the climate trend grouping used when bias correcting daily data.
type DayOfMonth struct{}

func (DayOfMonth) Key(t time.Time) Key {
	return Key(t.Day())
}

func (g DayOfMonth) FitGroups(s *timeseries.Series) ([]Group, error) {
	return Partition(s, g), nil
}

// Partition splits a series into exact per-key groups using the grouper's
// per-row key lookup. Groups are returned in ascending key order and retain
// each sample's original position. Every sample lands in exactly one group.
func Partition(s *timeseries.Series, g Grouper) []Group {
	byKey := make(map[Key]*Group)
	for i, tPnt := range s.T {
		key := g.Key(tPnt)
		grp, ok := byKey[key]
		if !ok {
			grp = &Group{Key: key}
			byKey[key] = grp
		}
		grp.Index = append(grp.Index, i)
		grp.Values = append(grp.Values, s.Y[i])
	}

	groups := make([]Group, 0, len(byKey))
	for _, grp := range byKey {
		groups = append(groups, *grp)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Key < groups[j].Key
	})
	return groups
}
