package downscale

import (
	"fmt"

	"github.com/climex/go-downscale/groupers"
	"github.com/climex/go-downscale/timeseries"
	"gonum.org/v1/gonum/stat"
)

// BcsdPrecipitation is the classic BCSD model for precipitation. Fit learns
// the target series' per-group climatology and quantile reference; Predict
// quantile maps a source query per group and optionally expresses the result
// as a ratio anomaly against the target climatology. Precipitation is non
// negative and ratio scaled, so anomalies are multiplicative.
type BcsdPrecipitation struct {
	opt     *Options
	grouper groupers.Grouper

	registry *MapperRegistry
	yClimo   Climatology
	state    modelState
}

// NewBcsdPrecipitation creates a precipitation model with the given options.
// If none are provided a default is used.
func NewBcsdPrecipitation(opt *Options) (*BcsdPrecipitation, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	g, err := groupers.New(opt.TimeGrouping)
	if err != nil {
		return nil, err
	}
	return &BcsdPrecipitation{
		opt:      opt,
		grouper:  g,
		registry: newMapperRegistry(g, opt.Quantile),
	}, nil
}

// Fit fits the precipitation model on paired training series. The target's
// per-group climatology must be strictly positive; a non positive group mean
// aborts the fit before any quantile mapper is fit and leaves the model
// unfit. The quantile reference for each group is the target's own grouped
// distribution; the source training series takes no part in the fit beyond
// presence validation.
func (b *BcsdPrecipitation) Fit(source, target *timeseries.Series) error {
	if source.Len() == 0 || target.Len() == 0 {
		return ErrNoSeries
	}

	b.state = stateUnfit
	b.yClimo = nil

	climo, err := newClimatology(target, b.grouper)
	if err != nil {
		return err
	}
	if min := climo.Min(); min <= 0 {
		return fmt.Errorf("minimum group mean of %f, %w", min, ErrInvalidClimatology)
	}

	if err := b.registry.fit(target); err != nil {
		return err
	}

	b.yClimo = climo
	b.state = stateFitted
	return nil
}

// Predict bias corrects a source query series. The output shares the query's
// time index exactly, one corrected value per input sample.
func (b *BcsdPrecipitation) Predict(query *timeseries.Series) (*timeseries.Series, error) {
	if b == nil || b.state != stateFitted {
		return nil, ErrNotFitted
	}
	if query.Len() == 0 {
		return nil, ErrNoSeries
	}

	mapped, err := b.registry.transform(query)
	if err != nil {
		return nil, err
	}

	if b.opt.ReturnAnoms {
		for i := range mapped {
			c, err := b.yClimo.at(b.grouper.Key(query.T[i]))
			if err != nil {
				return nil, err
			}
			mapped[i] /= c
		}
	}

	if len(mapped) != query.Len() {
		return nil, fmt.Errorf("output has %d samples for %d inputs, %w",
			len(mapped), query.Len(), ErrShapeViolation)
	}
	return query.WithValues(mapped), nil
}

// Score computes the coefficient of determination between the model's
// prediction for a query and a reference series sharing its index.
func (b *BcsdPrecipitation) Score(query, reference *timeseries.Series) (float64, error) {
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
