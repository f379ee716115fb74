package timeseries

import (
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/floats"
)

// GenerateMonthlyT generates n monthly timestamps starting at the given time.
func GenerateMonthlyT(n int, start time.Time) []time.Time {
	t := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		t = append(t, start.AddDate(0, i, 0))
	}
	return t
}

// GenerateDailyT generates n daily timestamps starting at the given time.
func GenerateDailyT(n int, start time.Time) []time.Time {
	t := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		t = append(t, start.AddDate(0, 0, i))
	}
	return t
}

type Values []float64

func (v Values) Add(src Values) Values {
	floats.Add(v, src)
	return v
}

func (v Values) Scale(c float64) Values {
	floats.Scale(c, v)
	return v
}

// GenerateConst generates a constant series of length n.
func GenerateConst(n int, val float64) Values {
	y := make([]float64, n)
	floats.AddConst(val, y)
	return Values(y)
}

// GenerateAnnualCycle generates a sinusoidal seasonal cycle keyed to the day
// of year with the given amplitude and a phase offset in days.
func GenerateAnnualCycle(t []time.Time, amp, phaseDays float64) Values {
	y := make([]float64, 0, len(t))
	for _, tPnt := range t {
		doy := float64(tPnt.YearDay())
		y = append(y, amp*math.Sin(2.0*math.Pi*(doy+phaseDays)/365.25))
	}
	return Values(y)
}

// GenerateWarming generates a linear trend in units per year, anchored at the
// first timestamp.
func GenerateWarming(t []time.Time, perYear float64) Values {
	y := make([]float64, 0, len(t))
	if len(t) == 0 {
		return Values(y)
	}
	t0 := t[0]
	for _, tPnt := range t {
		years := tPnt.Sub(t0).Hours() / 24.0 / 365.25
		y = append(y, perYear*years)
	}
	return Values(y)
}

// GenerateNoise generates normally distributed noise with the given scale.
func GenerateNoise(n int, scale float64) Values {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, rand.NormFloat64()*scale)
	}
	return Values(y)
}
