package plot

import (
	"fmt"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/rocketsim/internal/flightlog"
)

// Terminal renders one column of a log as an ASCII chart.
func Terminal(l *flightlog.Log, col string, width, height int) (string, error) {
	data := l.Named(col)
	if len(data) == 0 {
		return "", fmt.Errorf("plot: no data for column %q", col)
	}

	return asciigraph.Plot(data,
		asciigraph.Width(width),
		asciigraph.Height(height),
		asciigraph.Caption(axisLabel(col)),
	), nil
}

// TerminalMany overlays the same column of several logs.
func TerminalMany(col string, width, height int, lines ...Line) (string, error) {
	series := make([][]float64, 0, len(lines))
	legends := make([]string, 0, len(lines))
	colors := make([]asciigraph.AnsiColor, 0, len(lines))
	palette := []asciigraph.AnsiColor{asciigraph.Green, asciigraph.Yellow, asciigraph.Blue, asciigraph.Red, asciigraph.Cyan}

	for i, ln := range lines {
		data := ln.Log.Named(col)
		if len(data) == 0 {
			return "", fmt.Errorf("plot: no data for column %q", col)
		}
		series = append(series, data)
		legends = append(legends, ln.Label)
		colors = append(colors, palette[i%len(palette)])
	}
	if len(series) == 0 {
		return "", fmt.Errorf("plot: nothing to draw")
	}

	return asciigraph.PlotMany(series,
		asciigraph.Width(width),
		asciigraph.Height(height),
		asciigraph.Caption(axisLabel(col)),
		asciigraph.SeriesColors(colors...),
		asciigraph.SeriesLegends(legends...),
	), nil
}
