// Package charts renders report charts as interactive HTML (go-echarts) or
// static PNG (gonum/plot).
package charts

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// ChartConfig holds configuration for charts.
type ChartConfig struct {
	Title      string   // Chart title
	Subtitle   string   // Chart subtitle
	Width      string   // Chart width (e.g., "900px")
	Height     string   // Chart height (e.g., "500px")
	Theme      string   // Chart theme
	ShowLegend bool     // Show legend
	Smooth     bool     // Smooth line (for line charts)
	Colors     []string // Series colors, cycled
}

// DefaultChartConfig returns default chart configuration.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:      "900px",
		Height:     "500px",
		Theme:      "light",
		ShowLegend: true,
		Smooth:     true,
		Colors:     []string{"#5470C6", "#91CC75", "#FAC858", "#EE6666", "#73C0DE", "#3BA272"},
	}
}

// DataPoint represents a single data point in a chart.
type DataPoint struct {
	Label string
	Value float64
}

// SeriesData is a named series sharing the chart's labels.
type SeriesData struct {
	Name   string
	Values []float64
}

func (c ChartConfig) globalOptions() []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			Width:  c.Width,
			Height: c.Height,
			Theme:  c.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    c.Title,
			Subtitle: c.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(c.ShowLegend),
		}),
	}
}

func (c ChartConfig) color(i int) string {
	if len(c.Colors) == 0 {
		return ""
	}
	return c.Colors[i%len(c.Colors)]
}

// RenderLine writes an interactive line chart of one named series to w.
func RenderLine(w io.Writer, name string, data []DataPoint, config ChartConfig) error {
	line := charts.NewLine()
	line.SetGlobalOptions(config.globalOptions()...)

	xLabels := make([]string, len(data))
	yData := make([]opts.LineData, len(data))
	for i, point := range data {
		xLabels[i] = point.Label
		yData[i] = opts.LineData{Value: point.Value}
	}

	line.SetXAxis(xLabels).
		AddSeries(name, yData).
		SetSeriesOptions(
			charts.WithLineChartOpts(opts.LineChart{
				Smooth: opts.Bool(config.Smooth),
			}),
			charts.WithLabelOpts(opts.Label{
				Show: opts.Bool(false),
			}),
			charts.WithItemStyleOpts(opts.ItemStyle{
				Color: config.color(0),
			}),
		)

	if err := line.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// RenderGroupedBar writes an interactive bar chart with one bar per series
// for each label.
func RenderGroupedBar(w io.Writer, labels []string, series []SeriesData, config ChartConfig) error {
	if len(series) == 0 {
		return fmt.Errorf("no data series provided")
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(config.globalOptions()...)
	bar.SetXAxis(labels)

	for i, s := range series {
		if len(s.Values) != len(labels) {
			return fmt.Errorf("series %q has %d values for %d labels", s.Name, len(s.Values), len(labels))
		}
		yData := make([]opts.BarData, len(s.Values))
		for j, v := range s.Values {
			yData[j] = opts.BarData{Value: v}
		}
		bar.AddSeries(s.Name, yData, charts.WithItemStyleOpts(opts.ItemStyle{Color: config.color(i)}))
	}

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// SaveChart renders an HTML or PNG chart into a new file at outputPath.
func SaveChart(outputPath string, render func(io.Writer) error) (err error) {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create chart directory: %w", err)
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return render(f)
}

// OpenInBrowser opens the given file path in the default web browser.
func OpenInBrowser(filePath string) error {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", absPath)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", absPath)
	case "linux":
		cmd = exec.Command("xdg-open", absPath)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}
