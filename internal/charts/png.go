package charts

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// PNG canvas size.
const (
	pngWidth  = 10 * vg.Inch
	pngHeight = 5 * vg.Inch
)

var pngPalette = []color.Color{
	color.RGBA{R: 0x54, G: 0x70, B: 0xC6, A: 0xFF},
	color.RGBA{R: 0x91, G: 0xCC, B: 0x75, A: 0xFF},
	color.RGBA{R: 0xFA, G: 0xC8, B: 0x58, A: 0xFF},
}

// WriteGroupedBarPNG writes a static grouped bar chart as PNG.
func WriteGroupedBarPNG(w io.Writer, title string, labels []string, series []SeriesData) error {
	if len(series) == 0 {
		return fmt.Errorf("no data series provided")
	}

	p := plot.New()
	p.Title.Text = title
	p.Legend.Top = true
	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = 0.6
	p.X.Tick.Label.XAlign = -0.9

	barWidth := vg.Points(12)
	for i, s := range series {
		if len(s.Values) != len(labels) {
			return fmt.Errorf("series %q has %d values for %d labels", s.Name, len(s.Values), len(labels))
		}
		bars, err := plotter.NewBarChart(plotter.Values(s.Values), barWidth)
		if err != nil {
			return fmt.Errorf("failed to build bars for %s: %w", s.Name, err)
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = pngPalette[i%len(pngPalette)]
		bars.Offset = barWidth * vg.Length(2*i-len(series)+1) / 2
		p.Add(bars)
		p.Legend.Add(s.Name, bars)
	}

	return writePNG(w, p)
}

// WriteLinePNG writes a static line chart with point markers as PNG.
func WriteLinePNG(w io.Writer, title, name string, data []DataPoint) error {
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = name

	labels := make([]string, len(data))
	pts := make(plotter.XYs, len(data))
	for i, d := range data {
		labels[i] = d.Label
		pts[i] = plotter.XY{X: float64(i), Y: d.Value}
	}
	p.NominalX(labels...)

	if len(pts) > 0 {
		line, points, err := plotter.NewLinePoints(pts)
		if err != nil {
			return fmt.Errorf("failed to build line: %w", err)
		}
		line.Color = pngPalette[0]
		line.Width = vg.Points(1.5)
		points.GlyphStyle.Color = pngPalette[0]
		p.Add(line, points)
	}

	return writePNG(w, p)
}

func writePNG(w io.Writer, p *plot.Plot) error {
	wt, err := p.WriterTo(pngWidth, pngHeight, "png")
	if err != nil {
		return fmt.Errorf("failed to create PNG canvas: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write PNG: %w", err)
	}
	return nil
}
