package groupers

import (
	"sort"
	"time"

	"github.com/climex/go-downscale/timeseries"
)

const (
	// DefaultPad is the default half-width in days of the padded fitting
	// window around each day of year.
	DefaultPad = 15

	yearDays = 365
)

// PaddedDayOfYear groups samples by leap-adjusted day of year, 1-365. Feb 29
// folds into Feb 28's bucket and every later day shifts down by one so leap
// and non-leap years stay aligned. Each key's fitting subset is drawn from a
// window of +/- Pad days circular distance around the target day, which
// stabilizes per-day estimates on short climate records. Fitting windows
// overlap; the per-row key lookup used at transform time is exact.
type PaddedDayOfYear struct {
	Pad int
}

func (PaddedDayOfYear) Key(t time.Time) Key {
	return Key(adjustedYearDay(t))
}

func (g PaddedDayOfYear) FitGroups(s *timeseries.Series) ([]Group, error) {
	days := make([]int, s.Len())
	present := make(map[int]struct{})
	for i, tPnt := range s.T {
		days[i] = adjustedYearDay(tPnt)
		present[days[i]] = struct{}{}
	}

	keys := make([]int, 0, len(present))
	for day := range present {
		keys = append(keys, day)
	}
	sort.Ints(keys)

	groups := make([]Group, 0, len(keys))
	for _, day := range keys {
		grp := Group{Key: Key(day)}
		for i, sampleDay := range days {
			if circularDayDistance(sampleDay, day) <= g.Pad {
				grp.Index = append(grp.Index, i)
				grp.Values = append(grp.Values, s.Y[i])
			}
		}
		groups = append(groups, grp)
	}
	return groups, nil
}

// adjustedYearDay returns the day of year folded onto a 365 day calendar.
func adjustedYearDay(t time.Time) int {
	doy := t.YearDay()
	if isLeapYear(t.Year()) && doy >= 60 {
		doy--
	}
	return doy
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// circularDayDistance measures day separation wrapping across the year
// boundary so late December pads early January and vice versa.
func circularDayDistance(a, b int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	if yearDays-d < d {
		d = yearDays - d
	}
	return d
}
