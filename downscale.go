// Package downscale implements pointwise BCSD (Bias Correction and Spatial
// Disaggregation) style statistical downscaling of climate time series. A
// model is fit on paired source/target training series and then bias corrects
// new source queries so their distribution and trend match the target
// reference, at monthly or daily resolution.
package downscale

import "errors"

var (
	ErrNotFitted          = errors.New("model has not been fit")
	ErrInvalidClimatology = errors.New("invalid value in target climatology")
	ErrGroupKeyMismatch   = errors.New("group key missing from fitted state")
	ErrShapeViolation     = errors.New("reassembled output does not match input shape")
	ErrInvalidTrendWindow = errors.New("trend window must be at least 1")
	ErrNoSeries           = errors.New("no input series")
)

// modelState tracks the fit lifecycle of a model. Predict on an unfit model
// fails deterministically rather than probing for populated attributes.
type modelState int

const (
	stateUnfit modelState = iota
	stateFitted
)
