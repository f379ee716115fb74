package downscale

import (
	"time"

	"github.com/climex/go-downscale/timeseries"
)

// generateMonthlyPrecip builds a deterministic positive monthly precipitation
// series with a seasonal cycle and a slow wetting trend.
func generateMonthlyPrecip(months int, start time.Time, bias float64) *timeseries.Series {
	t := timeseries.GenerateMonthlyT(months, start)
	y := timeseries.GenerateConst(months, 80.0+bias).
		Add(timeseries.GenerateAnnualCycle(t, 30.0, 0.0)).
		Add(timeseries.GenerateWarming(t, 0.5))
	s, err := timeseries.New(t, y)
	if err != nil {
		panic(err)
	}
	return s
}

// generateDailyPrecip builds a deterministic positive daily precipitation
// series.
func generateDailyPrecip(days int, start time.Time, bias float64) *timeseries.Series {
	t := timeseries.GenerateDailyT(days, start)
	y := timeseries.GenerateConst(days, 6.0+bias).
		Add(timeseries.GenerateAnnualCycle(t, 2.0, 0.0)).
		Add(timeseries.GenerateWarming(t, 0.1))
	s, err := timeseries.New(t, y)
	if err != nil {
		panic(err)
	}
	return s
}

// generateMonthlyTemp builds a deterministic monthly temperature series with
// a seasonal cycle and a warming trend.
func generateMonthlyTemp(months int, start time.Time, bias float64) *timeseries.Series {
	t := timeseries.GenerateMonthlyT(months, start)
	y := timeseries.GenerateConst(months, 12.0+bias).
		Add(timeseries.GenerateAnnualCycle(t, 8.0, 30.0)).
		Add(timeseries.GenerateWarming(t, 0.03))
	s, err := timeseries.New(t, y)
	if err != nil {
		panic(err)
	}
	return s
}

// generateDailyTemp builds a deterministic daily temperature series.
func generateDailyTemp(days int, start time.Time, bias float64) *timeseries.Series {
	t := timeseries.GenerateDailyT(days, start)
	y := timeseries.GenerateConst(days, 12.0+bias).
		Add(timeseries.GenerateAnnualCycle(t, 8.0, 30.0)).
		Add(timeseries.GenerateWarming(t, 0.03))
	s, err := timeseries.New(t, y)
	if err != nil {
		panic(err)
	}
	return s
}

// generateMonthlySubset builds a monthly series keeping only months at or
// before the cutoff month in each year.
func generateMonthlySubset(months int, start time.Time, cutoff time.Month) *timeseries.Series {
	full := generateMonthlyTemp(months, start, 0.0)
	var t []time.Time
	var y []float64
	for i := range full.T {
		if full.T[i].Month() <= cutoff {
			t = append(t, full.T[i])
			y = append(y, full.Y[i])
		}
	}
	s, err := timeseries.New(t, y)
	if err != nil {
		panic(err)
	}
	return s
}
