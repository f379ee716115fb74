package downscale

import (
	"io"
	"math"
	"time"

	"github.com/climex/go-downscale/timeseries"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// LineSeries generates an echart multi-line chart for some arbitrary
// time/value combination. Each input series must have the same length as the
// input time slice.
func LineSeries(title string, seriesName []string, t []time.Time, y [][]float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
	)

	lineData := make([][]opts.LineData, len(y))

	filteredT := make([]time.Time, 0, len(t))
	for i := 0; i < len(y); i++ {
		lineData[i] = make([]opts.LineData, 0, len(y[i]))
		for j := 0; j < len(y[i]); j++ {
			if math.IsNaN(y[i][j]) {
				continue
			}
			if i == 0 {
				filteredT = append(filteredT, t[j])
			}
			lineData[i] = append(lineData[i], opts.LineData{Value: y[i][j]})
		}
	}

	line = line.SetXAxis(filteredT)
	for i, series := range seriesName {
		line = line.AddSeries(series, lineData[i])
	}

	return line
}

// PlotCorrection uses the Apache Echarts library to generate an html page
// comparing a raw query series against its bias corrected result.
func PlotCorrection(w io.Writer, query, corrected *timeseries.Series) error {
	page := components.NewPage()
	page.AddCharts(
		LineSeries(
			"Bias Correction",
			[]string{"Raw", "Corrected"},
			query.T,
			[][]float64{query.Y, corrected.Y},
		),
	)
	return page.Render(w)
}
