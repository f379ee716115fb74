package downscale

import (
	"testing"
	"time"

	"github.com/climex/go-downscale/groupers"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBcsdPrecipitationMonthlyScenario(t *testing.T) {
	// fit on 10 years of monthly source/target precipitation, predict 2 held
	// out years
	start := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	source := generateMonthlyPrecip(120, start, 12.0)
	target := generateMonthlyPrecip(120, start, 0.0)

	b, err := NewBcsdPrecipitation(nil)
	require.NoError(t, err)
	require.NoError(t, b.Fit(source, target))

	query := generateMonthlyPrecip(24, time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC), 12.0)
	predicted, err := b.Predict(query)
	require.NoError(t, err)

	require.Equal(t, 24, predicted.Len())
	assert.Equal(t, query.T, predicted.T)
	for i, v := range predicted.Y {
		assert.GreaterOrEqual(t, v, 0.0, "ratio anomaly at %s", query.T[i])
	}
}

func TestBcsdPrecipitationInvalidClimatology(t *testing.T) {
	start := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	source := generateMonthlyPrecip(48, start, 5.0)
	target := generateMonthlyPrecip(48, start, 0.0)

	// dry out every july so its monthly mean is zero
	for i := range target.T {
		if target.T[i].Month() == time.July {
			target.Y[i] = 0.0
		}
	}

	b, err := NewBcsdPrecipitation(nil)
	require.NoError(t, err)
	err = b.Fit(source, target)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidClimatology)

	// the failed fit leaves no partial state behind
	_, err = b.Predict(source)
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestBcsdPrecipitationNotFitted(t *testing.T) {
	b, err := NewBcsdPrecipitation(nil)
	require.NoError(t, err)

	query := generateMonthlyPrecip(12, time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), 0.0)
	_, err = b.Predict(query)
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestBcsdPrecipitationAnomalyConsistency(t *testing.T) {
	start := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	source := generateMonthlyPrecip(120, start, 8.0)
	target := generateMonthlyPrecip(120, start, 0.0)
	query := generateMonthlyPrecip(24, time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC), 8.0)

	anomOpt := NewDefaultOptions()
	anomModel, err := NewBcsdPrecipitation(anomOpt)
	require.NoError(t, err)
	require.NoError(t, anomModel.Fit(source, target))

	absOpt := NewDefaultOptions()
	absOpt.ReturnAnoms = false
	absModel, err := NewBcsdPrecipitation(absOpt)
	require.NoError(t, err)
	require.NoError(t, absModel.Fit(source, target))

	anoms, err := anomModel.Predict(query)
	require.NoError(t, err)
	absolute, err := absModel.Predict(query)
	require.NoError(t, err)

	// ratio anomaly times the group climatology recovers the absolute value
	for i := range anoms.Y {
		climo := anomModel.yClimo[groupers.Key(query.T[i].Month())]
		assert.InDelta(t, absolute.Y[i], anoms.Y[i]*climo, 1e-9)
	}
}

func TestBcsdPrecipitationGroupKeyMismatch(t *testing.T) {
	start := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	train := generateMonthlySubset(36, start, time.June)

	b, err := NewBcsdPrecipitation(nil)
	require.NoError(t, err)
	require.NoError(t, b.Fit(train, train))

	query := generateMonthlyPrecip(12, time.Date(2003, 1, 1, 0, 0, 0, 0, time.UTC), 0.0)
	_, err = b.Predict(query)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGroupKeyMismatch)
	assert.Contains(t, err.Error(), "group key 7")
}

func TestBcsdPrecipitationRefitIdempotent(t *testing.T) {
	start := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	source := generateMonthlyPrecip(60, start, 4.0)
	target := generateMonthlyPrecip(60, start, 0.0)

	b, err := NewBcsdPrecipitation(nil)
	require.NoError(t, err)

	require.NoError(t, b.Fit(source, target))
	first, err := b.Model()
	require.NoError(t, err)
	firstBytes, err := json.Marshal(first)
	require.NoError(t, err)

	require.NoError(t, b.Fit(source, target))
	second, err := b.Model()
	require.NoError(t, err)
	secondBytes, err := json.Marshal(second)
	require.NoError(t, err)

	assert.Equal(t, string(firstBytes), string(secondBytes))
}

func TestBcsdPrecipitationDailyPadded(t *testing.T) {
	opt := NewDefaultOptions()
	opt.TimeGrouping = groupers.Config{Mode: groupers.ModePaddedDayOfYear}

	// three years of daily training data including the 2020 leap year
	start := time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)
	days := 365 + 365 + 366
	source := generateDailyPrecip(days, start, 1.5)
	target := generateDailyPrecip(days, start, 0.0)

	b, err := NewBcsdPrecipitation(opt)
	require.NoError(t, err)
	require.NoError(t, b.Fit(source, target))

	query := generateDailyPrecip(365, time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), 1.5)
	predicted, err := b.Predict(query)
	require.NoError(t, err)
	require.Equal(t, query.Len(), predicted.Len())
	assert.Equal(t, query.T, predicted.T)
	for _, v := range predicted.Y {
		assert.Greater(t, v, 0.0)
	}
}

func TestBcsdPrecipitationScore(t *testing.T) {
	start := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	source := generateMonthlyPrecip(120, start, 10.0)
	target := generateMonthlyPrecip(120, start, 0.0)

	opt := NewDefaultOptions()
	opt.ReturnAnoms = false
	b, err := NewBcsdPrecipitation(opt)
	require.NoError(t, err)
	require.NoError(t, b.Fit(source, target))

	// the corrected source should track the target's seasonal structure
	queryStart := time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)
	query := generateMonthlyPrecip(24, queryStart, 10.0)
	reference := generateMonthlyPrecip(24, queryStart, 0.0)

	score, err := b.Score(query, reference)
	require.NoError(t, err)
	assert.Greater(t, score, 0.8)
}
