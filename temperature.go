package downscale

import (
	"fmt"

	"github.com/climex/go-downscale/groupers"
	"github.com/climex/go-downscale/timeseries"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// BcsdTemperature is the BCSD model for temperature. Fit learns per-group
// climatologies of both training series along with the target's quantile
// reference. Predict extracts the query's long term trend with a centered
// rolling mean, removes the shift between that trend and the source
// climatology, quantile maps the detrended series, restores the shift, and
// optionally expresses the result as an additive anomaly against the target
// climatology. Removing the shift before quantile mapping and restoring it
// after preserves the model projected climate change signal through the
// correction step.
type BcsdTemperature struct {
	opt *Options

	// correctionGrouper keys the climatologies and quantile maps: monthly at
	// monthly resolution, the climate trend grouping at daily resolution.
	// trendGrouper partitions queries for rolling mean trend extraction and
	// is always month based.
	correctionGrouper groupers.Grouper
	trendGrouper      groupers.Grouper

	registry *MapperRegistry
	xClimo   Climatology
	yClimo   Climatology
	state    modelState
}

// NewBcsdTemperature creates a temperature model with the given options. If
// none are provided a default is used.
func NewBcsdTemperature(opt *Options) (*BcsdTemperature, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}

	correctionCfg := opt.TimeGrouping
	if opt.TimeGrouping.Daily() {
		// at daily resolution the correction key space follows the climate
		// trend grouping so fit and predict always agree on keys
		correctionCfg = opt.ClimateTrendGrouping
	}
	correctionGrouper, err := groupers.New(correctionCfg)
	if err != nil {
		return nil, err
	}
	trendGrouper, err := groupers.New(groupers.Config{Mode: groupers.ModeMonthly})
	if err != nil {
		return nil, err
	}

	return &BcsdTemperature{
		opt:               opt,
		correctionGrouper: correctionGrouper,
		trendGrouper:      trendGrouper,
		registry:          newMapperRegistry(correctionGrouper, opt.Quantile),
	}, nil
}

// Fit fits the temperature model on paired training series. The source
// climatology is the pre-correction baseline removed from future queries; the
// target climatology doubles as the quantile mapping key space and the
// additive anomaly baseline.
func (b *BcsdTemperature) Fit(source, target *timeseries.Series) error {
	if source.Len() == 0 || target.Len() == 0 {
		return ErrNoSeries
	}

	b.state = stateUnfit
	b.xClimo = nil
	b.yClimo = nil

	xClimo, err := newClimatology(source, b.correctionGrouper)
	if err != nil {
		return err
	}
	yClimo, err := newClimatology(target, b.correctionGrouper)
	if err != nil {
		return err
	}

	if err := b.registry.fit(target); err != nil {
		return err
	}

	b.xClimo = xClimo
	b.yClimo = yClimo
	b.state = stateFitted
	return nil
}

// Predict bias corrects a source query series. The output shares the query's
// time index exactly, one corrected value per input sample.
func (b *BcsdTemperature) Predict(query *timeseries.Series) (*timeseries.Series, error) {
	if b == nil || b.state != stateFitted {
		return nil, ErrNotFitted
	}
	if query.Len() == 0 {
		return nil, ErrNoSeries
	}

	shift, err := b.shift(query)
	if err != nil {
		return nil, err
	}

	detrended := make([]float64, query.Len())
	floats.SubTo(detrended, query.Y, shift)

	mapped, err := b.registry.transform(query.WithValues(detrended))
	if err != nil {
		return nil, err
	}

	// restore the shift
	floats.Add(mapped, shift)

	if b.opt.ReturnAnoms {
		for i := range mapped {
			c, err := b.yClimo.at(b.correctionGrouper.Key(query.T[i]))
			if err != nil {
				return nil, err
			}
			mapped[i] -= c
		}
	}

	if len(mapped) != query.Len() {
		return nil, fmt.Errorf("output has %d samples for %d inputs, %w",
			len(mapped), query.Len(), ErrShapeViolation)
	}
	return query.WithValues(mapped), nil
}

// shift computes the per-sample difference between the query's rolling mean
// trend and the fitted source climatology.
func (b *BcsdTemperature) shift(query *timeseries.Series) ([]float64, error) {
	trend := b.rollingTrend(query)

	shift := make([]float64, query.Len())
	for i := range trend {
		c, err := b.xClimo.at(b.correctionGrouper.Key(query.T[i]))
		if err != nil {
			return nil, err
		}
		shift[i] = trend[i] - c
	}
	return shift, nil
}

// rollingTrend groups the query by calendar month and computes a centered
// rolling mean within each group at the query's own sample frequency. Edge
// windows shrink to the samples available rather than producing missing
// values.
func (b *BcsdTemperature) rollingTrend(query *timeseries.Series) []float64 {
	trend := make([]float64, query.Len())
	half := b.opt.TrendWindow / 2
	tail := b.opt.TrendWindow - half - 1

	for _, grp := range groupers.Partition(query, b.trendGrouper) {
		n := len(grp.Values)
		for i := 0; i < n; i++ {
			lo := max(i-half, 0)
			hi := min(i+tail, n-1)
			window := grp.Values[lo : hi+1]
			trend[grp.Index[i]] = floats.Sum(window) / float64(len(window))
		}
	}
	return trend
}

// Score computes the coefficient of determination between the model's
// prediction for a query and a reference series sharing its index.
func (b *BcsdTemperature) Score(query, reference *timeseries.Series) (float64, error) {
	predicted, err := b.Predict(query)
	if err != nil {
		return 0, err
	}
	if reference.Len() != predicted.Len() {
		return 0, fmt.Errorf("reference has %d samples for %d predictions, %w",
			reference.Len(), predicted.Len(), timeseries.ErrLenMismatch)
	}
	return stat.RSquaredFrom(predicted.Y, reference.Y, nil), nil
}
