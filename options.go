package downscale

import (
	"github.com/climex/go-downscale/groupers"
	"github.com/climex/go-downscale/quantile"
)

// DefaultTrendWindow is the number of periods in the centered rolling mean
// used to extract the long term trend from a temperature query.
const DefaultTrendWindow = 9

// Options configures a BCSD model. Options are validated at construction and
// immutable afterwards.
type Options struct {
	// TimeGrouping selects how samples are partitioned for quantile mapping
	// and climatologies: monthly for monthly resolution data, or padded day
	// of year for daily resolution data.
	TimeGrouping groupers.Config `json:"time_grouping"`

	// ClimateTrendGrouping is the grouping the temperature model keys its
	// climatologies and quantile maps by when operating on daily data.
	// Defaults to day of month.
	ClimateTrendGrouping groupers.Config `json:"climate_trend_grouping"`

	// ReturnAnoms expresses predictions as anomalies relative to the target
	// climatology: ratios for precipitation, differences for temperature.
	ReturnAnoms bool `json:"return_anoms"`

	// TrendWindow is the centered rolling mean window, in periods, used by
	// the temperature model's trend extraction. Edge windows shrink rather
	// than produce missing values.
	TrendWindow int `json:"trend_window"`

	// Quantile options are forwarded verbatim to every per-group quantile
	// mapper.
	Quantile *quantile.Options `json:"quantile"`
}

// NewDefaultOptions returns a default set of BCSD model options: monthly
// grouping, anomaly output, and a 9 period trend window.
func NewDefaultOptions() *Options {
	return &Options{
		TimeGrouping:         groupers.Config{Mode: groupers.ModeMonthly},
		ClimateTrendGrouping: groupers.Config{Mode: groupers.ModeDayOfMonth},
		ReturnAnoms:          true,
		TrendWindow:          DefaultTrendWindow,
		Quantile:             quantile.NewDefaultOptions(),
	}
}

// Validate runs basic validation on model options, substituting defaults for
// a nil input or zero valued fields.
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		return NewDefaultOptions(), nil
	}

	if o.TimeGrouping.Mode == 0 {
		o.TimeGrouping = groupers.Config{Mode: groupers.ModeMonthly}
	}
	if err := o.TimeGrouping.Validate(); err != nil {
		return nil, err
	}

	if o.ClimateTrendGrouping.Mode == 0 {
		o.ClimateTrendGrouping = groupers.Config{Mode: groupers.ModeDayOfMonth}
	}
	if err := o.ClimateTrendGrouping.Validate(); err != nil {
		return nil, err
	}

	if o.TrendWindow == 0 {
		o.TrendWindow = DefaultTrendWindow
	}
	if o.TrendWindow < 1 {
		return nil, ErrInvalidTrendWindow
	}

	qmOpt, err := o.Quantile.Validate()
	if err != nil {
		return nil, err
	}
	o.Quantile = qmOpt

	return o, nil
}
