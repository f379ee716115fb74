// Package quantile implements the empirical quantile mapping primitive used
// for per-group bias correction. A fitted Mapper stores one empirical
// distribution; Transform rank-maps a query sample onto it, so the output
// carries the fitted distribution's shape at the query sample's ranks.
package quantile

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrNotFit              = errors.New("quantile mapper has not been fit")
	ErrInsufficientSamples = errors.New("insufficient samples to fit quantile mapper")
	ErrNoTransformData     = errors.New("no values to transform")
	ErrInvalidPlotting     = errors.New("plotting position parameters must be in [0, 1)")
	ErrInvalidMinSamples   = errors.New("minimum samples must be at least 2")
)

const (
	// DefaultPlottingAlpha and DefaultPlottingBeta are the Cunnane plotting
	// position parameters.
	DefaultPlottingAlpha = 0.4
	DefaultPlottingBeta  = 0.4

	DefaultMinSamples = 2
)

// Options represents input options for fitting a quantile Mapper. These are
// forwarded verbatim by the downscaling models.
type Options struct {
	// PlottingAlpha and PlottingBeta parameterize the plotting positions
	// assigned to the order statistics of a sample: p_i = (i+1-alpha) /
	// (n+1-alpha-beta).
	PlottingAlpha float64 `json:"plotting_alpha"`
	PlottingBeta  float64 `json:"plotting_beta"`

	// MinSamples is the smallest sample a mapper may be fit on.
	MinSamples int `json:"min_samples"`
}

// Validate runs basic validation on mapper options, substituting defaults
// for a nil input.
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		o = NewDefaultOptions()
	}
	if o.PlottingAlpha < 0 || o.PlottingAlpha >= 1 || o.PlottingBeta < 0 || o.PlottingBeta >= 1 {
		return nil, ErrInvalidPlotting
	}
	if o.MinSamples == 0 {
		o.MinSamples = DefaultMinSamples
	}
	if o.MinSamples < 2 {
		return nil, ErrInvalidMinSamples
	}
	return o, nil
}

// NewDefaultOptions returns a default set of quantile mapper options.
func NewDefaultOptions() *Options {
	return &Options{
		PlottingAlpha: DefaultPlottingAlpha,
		PlottingBeta:  DefaultPlottingBeta,
		MinSamples:    DefaultMinSamples,
	}
}

// Mapper fits a monotonic transform between two empirical distributions. Fit
// stores the reference distribution; Transform maps a query sample onto it by
// rank, interpolating the fitted quantile function at the query sample's
// plotting positions.
type Mapper struct {
	opt *Options

	quantiles []float64
	positions []float64
}

// New initializes a Mapper ready for fitting.
func New(opt *Options) (*Mapper, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &Mapper{opt: opt}, nil
}

// Fit stores the sorted reference sample and its plotting positions.
func (m *Mapper) Fit(values []float64) error {
	if len(values) < m.opt.MinSamples {
		return fmt.Errorf("got %d samples but need at least %d, %w",
			len(values), m.opt.MinSamples, ErrInsufficientSamples)
	}

	quantiles := make([]float64, len(values))
	copy(quantiles, values)
	sort.Float64s(quantiles)

	m.quantiles = quantiles
	m.positions = plottingPositions(len(quantiles), m.opt.PlottingAlpha, m.opt.PlottingBeta)
	return nil
}

// Transform maps each query value to the fitted distribution's quantile at
// the value's rank within the query sample. Output values are returned in
// the original input order and the output length always equals the input
// length. Values whose plotting position falls outside the fitted range clamp
// to the fitted extremes.
func (m *Mapper) Transform(values []float64) ([]float64, error) {
	if len(m.quantiles) == 0 {
		return nil, ErrNotFit
	}
	if len(values) == 0 {
		return nil, ErrNoTransformData
	}

	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return values[idx[a]] < values[idx[b]]
	})

	pos := plottingPositions(len(values), m.opt.PlottingAlpha, m.opt.PlottingBeta)

	out := make([]float64, len(values))
	for rank, i := range idx {
		out[i] = m.interpolate(pos[rank])
	}
	return out, nil
}

// Model returns the serializable fitted state of the mapper.
func (m *Mapper) Model() (*Model, error) {
	if len(m.quantiles) == 0 {
		return nil, ErrNotFit
	}
	quantiles := make([]float64, len(m.quantiles))
	positions := make([]float64, len(m.positions))
	copy(quantiles, m.quantiles)
	copy(positions, m.positions)
	return &Model{
		Quantiles: quantiles,
		Positions: positions,
	}, nil
}

// Model represents the serializable fitted state of a Mapper: the sorted
// reference sample and its plotting positions.
type Model struct {
	Quantiles []float64 `json:"quantiles"`
	Positions []float64 `json:"plotting_positions"`
}

// NewFromModel reconstructs a fitted Mapper from previously serialized state.
func NewFromModel(model *Model, opt *Options) (*Mapper, error) {
	m, err := New(opt)
	if err != nil {
		return nil, err
	}
	if model == nil || len(model.Quantiles) < m.opt.MinSamples || len(model.Quantiles) != len(model.Positions) {
		return nil, fmt.Errorf("serialized quantile map is incomplete, %w", ErrInsufficientSamples)
	}
	m.quantiles = make([]float64, len(model.Quantiles))
	m.positions = make([]float64, len(model.Positions))
	copy(m.quantiles, model.Quantiles)
	copy(m.positions, model.Positions)
	return m, nil
}

// interpolate evaluates the fitted quantile function at plotting position p.
func (m *Mapper) interpolate(p float64) float64 {
	n := len(m.positions)
	if p <= m.positions[0] {
		return m.quantiles[0]
	}
	if p >= m.positions[n-1] {
		return m.quantiles[n-1]
	}
	hi := sort.SearchFloat64s(m.positions, p)
	lo := hi - 1
	weight := (p - m.positions[lo]) / (m.positions[hi] - m.positions[lo])
	return m.quantiles[lo] + weight*(m.quantiles[hi]-m.quantiles[lo])
}

func plottingPositions(n int, alpha, beta float64) []float64 {
	pos := make([]float64, n)
	denom := float64(n) + 1.0 - alpha - beta
	for i := 0; i < n; i++ {
		pos[i] = (float64(i) + 1.0 - alpha) / denom
	}
	return pos
}
