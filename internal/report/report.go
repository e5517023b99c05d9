// Package report renders the pipeline's output charts with gonum/plot.
package report

import (
	"fmt"
	"image/color"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var (
	actualColor   = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	overlayColor  = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	chartWidth    = 10 * vg.Inch
	chartHeight   = 4 * vg.Inch
	timeAxisLabel = "time"
)

func hourlyXYs(start time.Time, values []float64) plotter.XYs {
	xys := make(plotter.XYs, len(values))
	for i, v := range values {
		xys[i].X = float64(start.Add(time.Duration(i) * time.Hour).Unix())
		xys[i].Y = v
	}
	return xys
}

func newTimePlot(title, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = timeAxisLabel
	p.X.Tick.Marker = plot.TimeTicks{Format: "Jan 2\n15:04"}
	p.Y.Label.Text = yLabel
	p.Legend.Top = true
	return p
}

func addLine(p *plot.Plot, name string, xys plotter.XYs, c color.Color, dashed bool) error {
	line, err := plotter.NewLine(xys)
	if err != nil {
		return fmt.Errorf("report: build %s line: %w", name, err)
	}
	line.Color = c
	if dashed {
		line.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	}
	p.Add(line)
	p.Legend.Add(name, line)
	return nil
}

// ActualVsPredicted renders the held-out tail's observed consumption
// against the model's one-step predictions. Both slices start at the
// same timestamp and must have equal length.
func ActualVsPredicted(path string, start time.Time, actual, predicted []float64) error {
	if len(actual) != len(predicted) {
		return fmt.Errorf("report: %d actual values but %d predictions", len(actual), len(predicted))
	}
	if len(actual) == 0 {
		return fmt.Errorf("report: nothing to plot")
	}

	p := newTimePlot("Hourly consumption: actual vs predicted", "consumption (kWh)")
	if err := addLine(p, "actual", hourlyXYs(start, actual), actualColor, false); err != nil {
		return err
	}
	if err := addLine(p, "predicted", hourlyXYs(start, predicted), overlayColor, true); err != nil {
		return err
	}

	if err := p.Save(chartWidth, chartHeight, path); err != nil {
		return fmt.Errorf("report: save %s: %w", path, err)
	}
	return nil
}

// Forecast renders the future forecast appended to the most recent
// observed values. The forecast starts one hour after the last recent
// observation.
func Forecast(path string, recentStart time.Time, recent, forecast []float64) error {
	if len(recent) == 0 || len(forecast) == 0 {
		return fmt.Errorf("report: nothing to plot")
	}

	forecastStart := recentStart.Add(time.Duration(len(recent)) * time.Hour)

	p := newTimePlot("Hourly consumption: 7-day forecast", "consumption (kWh)")
	if err := addLine(p, "recent actual", hourlyXYs(recentStart, recent), actualColor, false); err != nil {
		return err
	}
	if err := addLine(p, "forecast", hourlyXYs(forecastStart, forecast), overlayColor, true); err != nil {
		return err
	}

	if err := p.Save(chartWidth, chartHeight, path); err != nil {
		return fmt.Errorf("report: save %s: %w", path, err)
	}
	return nil
}
