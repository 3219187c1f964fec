package render

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Chart renders raster plots in-process with go-chart. It ignores the gnuplot
// script and draws job.Points directly; text output is not supported.
type Chart struct{}

func (Chart) Render(ctx context.Context, job *Job) error {
	if job.Style.Mode != ModeRaster {
		return Failed("chart backend cannot produce %s output", job.Style.Mode)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	graph := buildChart(job)
	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return Failed("%v", err)
	}
	if err := os.WriteFile(job.OutputPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", job.OutputPath, err)
	}
	return nil
}

func buildChart(job *Job) chart.Chart {
	xs := make([]float64, 0, len(job.Points))
	ys := make([]float64, 0, len(job.Points))
	for _, p := range job.Points {
		xs = append(xs, p.Hour)
		ys = append(ys, p.Temperature)
	}

	fg := drawing.ColorBlack
	line := chart.ColorBlue
	var bg chart.Style
	if job.Style.inverse() {
		fg = drawing.ColorWhite
		line = drawing.ColorWhite
		bg = chart.Style{FillColor: drawing.ColorBlack}
	}
	text := chart.Style{FontColor: fg, StrokeColor: fg}

	graph := chart.Chart{
		Title:      fmt.Sprintf("Temperature for %s on %s", job.Room, job.Date.Format("2006-01-02")),
		TitleStyle: chart.Style{FontColor: fg},
		Width:      job.Style.Width,
		Height:     job.Style.Height,
		Background: bg,
		Canvas:     bg,
		XAxis: chart.XAxis{
			Name:      "Time (hours)",
			NameStyle: text,
			Style:     text,
			Range:     &chart.ContinuousRange{Min: 0, Max: 24},
		},
		YAxis: chart.YAxis{
			Name:      "Temperature (°C)",
			NameStyle: text,
			Style:     text,
			Range:     yRange(ys, job.Style.FixedYRange),
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Temperature",
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: line,
					StrokeWidth: 2,
					DotColor:    line,
					DotWidth:    3,
				},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph, chart.Style{FontColor: fg, FillColor: bg.FillColor})}
	return graph
}

func yRange(ys []float64, fixed bool) *chart.ContinuousRange {
	if fixed {
		return &chart.ContinuousRange{Min: 0, Max: 40}
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, y := range ys {
		lo = math.Min(lo, y)
		hi = math.Max(hi, y)
	}
	if len(ys) == 0 {
		lo, hi = 0, 1
	}
	// go-chart refuses a zero-width range.
	if hi-lo < 1 {
		lo, hi = lo-1, hi+1
	}
	return &chart.ContinuousRange{Min: math.Floor(lo), Max: math.Ceil(hi)}
}
