// Package chart renders muscle-group volume series as PNG line charts.
package chart

import (
	"fmt"
	"io"
	"time"

	"github.com/claude/liftlog/internal/performance"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Default canvas size.
const (
	DefaultWidth  = 8 * vg.Inch
	DefaultHeight = 4 * vg.Inch
)

// Series is one named line on a chart.
type Series struct {
	Name   string
	Points []performance.Point
}

// Options control the chart frame. The X axis always spans [Start, End] so
// charts of different groups over one window line up.
type Options struct {
	Title  string
	YLabel string
	Start  time.Time
	End    time.Time
	Width  vg.Length
	Height vg.Length
}

// RenderPNG draws the series as lines with point markers and writes a PNG.
// A single series gets no legend.
func RenderPNG(w io.Writer, opts Options, series ...Series) error {
	p, err := build(opts, series)
	if err != nil {
		return err
	}
	width, height := opts.Width, opts.Height
	if width == 0 {
		width = DefaultWidth
	}
	if height == 0 {
		height = DefaultHeight
	}
	writerTo, err := p.WriterTo(width, height, "png")
	if err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}
	if _, err := writerTo.WriteTo(w); err != nil {
		return fmt.Errorf("writing chart: %w", err)
	}
	return nil
}

func build(opts Options, series []Series) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "Date"
	p.Y.Label.Text = opts.YLabel
	p.X.Tick.Marker = plot.TimeTicks{Format: "Jan 02"}
	p.Y.Min = 0
	if !opts.Start.IsZero() && !opts.End.IsZero() {
		p.X.Min = float64(opts.Start.Unix())
		p.X.Max = float64(opts.End.Unix())
	}
	p.Add(plotter.NewGrid())

	for i, s := range series {
		if len(s.Points) == 0 {
			continue
		}
		xys := make(plotter.XYs, len(s.Points))
		for j, pt := range s.Points {
			xys[j].X = float64(pt.Date.Unix())
			xys[j].Y = pt.Value
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("series %s: %w", s.Name, err)
		}
		scatter, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, fmt.Errorf("series %s: %w", s.Name, err)
		}
		line.Color = plotutil.Color(i)
		scatter.Color = plotutil.Color(i)
		scatter.Shape = plotutil.Shape(i)
		p.Add(line, scatter)
		if len(series) > 1 {
			p.Legend.Add(s.Name, line, scatter)
		}
	}
	p.Legend.Top = true
	return p, nil
}
