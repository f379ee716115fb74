package downscale

import (
	"fmt"
	"math"

	"github.com/climex/go-downscale/groupers"
	"github.com/climex/go-downscale/timeseries"
	"github.com/montanaflynn/stats"
)

// Climatology maps a group key to the long run mean of the training values
// sharing that key. Computed once at fit time and read only afterwards.
type Climatology map[groupers.Key]float64

// newClimatology computes the per-group mean of a training series under the
// given grouping. For a padded grouping the mean is taken over each key's
// padded fitting window.
func newClimatology(s *timeseries.Series, g groupers.Grouper) (Climatology, error) {
	groups, err := g.FitGroups(s)
	if err != nil {
		return nil, err
	}

	c := make(Climatology, len(groups))
	for _, grp := range groups {
		mean, err := stats.Mean(grp.Values)
		if err != nil {
			return nil, fmt.Errorf("unable to compute climatology for group key %d, %w", grp.Key, err)
		}
		c[grp.Key] = mean
	}
	return c, nil
}

// Min returns the smallest climatology value across all group keys.
func (c Climatology) Min() float64 {
	min := math.Inf(1)
	for _, v := range c {
		if v < min {
			min = v
		}
	}
	return min
}

// at looks up the climatology for a group key, failing hard when the key was
// not present at fit time.
func (c Climatology) at(key groupers.Key) (float64, error) {
	v, ok := c[key]
	if !ok {
		return 0, fmt.Errorf("no climatology for group key %d, %w", key, ErrGroupKeyMismatch)
	}
	return v, nil
}
