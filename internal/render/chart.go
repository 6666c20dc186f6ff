package render

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/vzahanych/weather-bot-app/internal/aggregator"
	"github.com/vzahanych/weather-bot-app/internal/service"
)

const ChartPageTitle = "Погода по дням в выбранных городах"

// RenderCharts writes a standalone HTML page with one chart per city that has
// data. Failed cities are left out.
func RenderCharts(w io.Writer, result aggregator.ForecastResult) error {
	page := components.NewPage()
	page.PageTitle = ChartPageTitle

	for _, cf := range result {
		if cf.Err != nil {
			continue
		}
		page.AddCharts(cityChart(cf.City, cf.Days))
	}

	if err := page.Render(w); err != nil {
		return fmt.Errorf("render chart page: %w", err)
	}
	return nil
}

func cityChart(city string, days []service.DailyForecast) *charts.Line {
	labels := make([]string, len(days))
	minTemp := make([]opts.LineData, len(days))
	maxTemp := make([]opts.LineData, len(days))
	wind := make([]opts.LineData, len(days))
	precipitation := make([]opts.BarData, len(days))

	for i, d := range days {
		labels[i] = fmt.Sprintf("Day %d", i+1)
		minTemp[i] = opts.LineData{Value: d.MinTemperature}
		maxTemp[i] = opts.LineData{Value: d.MaxTemperature}
		wind[i] = opts.LineData{Value: d.WindSpeed}
		precipitation[i] = opts.BarData{Value: d.PrecipitationProbability}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: ChartPageTitle}),
		charts.WithTitleOpts(opts.Title{Title: city}),
	)
	line.SetXAxis(labels).
		AddSeries("Min Temperature (°C)", minTemp).
		AddSeries("Max Temperature (°C)", maxTemp).
		AddSeries("Wind Speed (km/h)", wind)

	bar := charts.NewBar()
	bar.SetXAxis(labels).AddSeries("Precipitation Chance (%)", precipitation)

	line.Overlap(bar)
	return line
}
