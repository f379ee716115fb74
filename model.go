package downscale

import (
	"fmt"

	"github.com/climex/go-downscale/groupers"
	"github.com/climex/go-downscale/quantile"
)

// Model represents the serializable format of a fitted BCSD model storing the
// options, climatologies, and the full set of per-group quantile maps. This
// is the complete reconstructable state; a model rebuilt from it predicts
// identically without refitting.
type Model struct {
	Options           *Options                         `json:"options"`
	TargetClimatology Climatology                      `json:"target_climatology"`
	SourceClimatology Climatology                      `json:"source_climatology,omitempty"`
	QuantileMaps      map[groupers.Key]*quantile.Model `json:"quantile_maps"`
}

// Model exports the fitted state of the precipitation model.
func (b *BcsdPrecipitation) Model() (Model, error) {
	if b == nil || b.state != stateFitted {
		return Model{}, ErrNotFitted
	}
	maps, err := b.registry.models()
	if err != nil {
		return Model{}, err
	}
	return Model{
		Options:           b.opt,
		TargetClimatology: b.yClimo,
		QuantileMaps:      maps,
	}, nil
}

// NewBcsdPrecipitationFromModel reconstructs a fitted precipitation model
// from previously serialized state. The returned model can be used for
// prediction immediately.
func NewBcsdPrecipitationFromModel(m Model) (*BcsdPrecipitation, error) {
	b, err := NewBcsdPrecipitation(m.Options)
	if err != nil {
		return nil, err
	}
	if len(m.TargetClimatology) == 0 {
		return nil, fmt.Errorf("missing target climatology, %w", ErrNotFitted)
	}
	if len(m.QuantileMaps) == 0 {
		return nil, fmt.Errorf("missing quantile maps, %w", ErrNotFitted)
	}
	if err := b.registry.restore(m.QuantileMaps); err != nil {
		return nil, err
	}
	b.yClimo = m.TargetClimatology
	b.state = stateFitted
	return b, nil
}

// Model exports the fitted state of the temperature model.
func (b *BcsdTemperature) Model() (Model, error) {
	if b == nil || b.state != stateFitted {
		return Model{}, ErrNotFitted
	}
	maps, err := b.registry.models()
	if err != nil {
		return Model{}, err
	}
	return Model{
		Options:           b.opt,
		TargetClimatology: b.yClimo,
		SourceClimatology: b.xClimo,
		QuantileMaps:      maps,
	}, nil
}

// NewBcsdTemperatureFromModel reconstructs a fitted temperature model from
// previously serialized state. The returned model can be used for prediction
// immediately.
func NewBcsdTemperatureFromModel(m Model) (*BcsdTemperature, error) {
	b, err := NewBcsdTemperature(m.Options)
	if err != nil {
		return nil, err
	}
	if len(m.TargetClimatology) == 0 {
		return nil, fmt.Errorf("missing target climatology, %w", ErrNotFitted)
	}
	if len(m.SourceClimatology) == 0 {
		return nil, fmt.Errorf("missing source climatology, %w", ErrNotFitted)
	}
	if len(m.QuantileMaps) == 0 {
		return nil, fmt.Errorf("missing quantile maps, %w", ErrNotFitted)
	}
	if err := b.registry.restore(m.QuantileMaps); err != nil {
		return nil, err
	}
	b.xClimo = m.SourceClimatology
	b.yClimo = m.TargetClimatology
	b.state = stateFitted
	return b, nil
}
