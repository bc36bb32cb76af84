// Package plot renders flight logs as PNG charts and terminal graphs.
package plot

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/san-kum/rocketsim/internal/flightlog"
)

const (
	widthIn  = 8.0
	heightIn = 6.0
	dpi      = 150
)

// Line is one labelled curve of a chart.
type Line struct {
	Label string
	Log   *flightlog.Log
}

// XY extracts two named columns of a log as plot points.
func XY(l *flightlog.Log, xCol, yCol string) (plotter.XYs, error) {
	xi, ok := l.Column(xCol)
	if !ok {
		return nil, fmt.Errorf("plot: log has no column %q", xCol)
	}
	yi, ok := l.Column(yCol)
	if !ok {
		return nil, fmt.Errorf("plot: log has no column %q", yCol)
	}
	if l.Len() == 0 {
		return nil, fmt.Errorf("plot: empty log")
	}

	pts := make(plotter.XYs, l.Len())
	for i := range pts {
		pts[i].X = l.Value(i, xi)
		pts[i].Y = l.Value(i, yi)
	}
	return pts, nil
}

func limitedTicker(maxLabels int, labelFmt string) plot.Ticker {
	if maxLabels < 2 {
		maxLabels = 2
	}
	return plot.TickerFunc(func(min, max float64) []plot.Tick {
		if math.IsNaN(min) || math.IsNaN(max) || math.IsInf(min, 0) || math.IsInf(max, 0) {
			return nil
		}
		if min == max {
			return []plot.Tick{{Value: min, Label: fmt.Sprintf(labelFmt, min)}}
		}
		step := (max - min) / float64(maxLabels-1)
		ticks := make([]plot.Tick, 0, maxLabels)
		for i := 0; i < maxLabels; i++ {
			v := min + float64(i)*step
			ticks = append(ticks, plot.Tick{Value: v, Label: fmt.Sprintf(labelFmt, v)})
		}
		return ticks
	})
}

func newPlot(title, xlabel, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel

	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.X.Label.TextStyle.Font.Size = vg.Points(13)
	p.Y.Label.TextStyle.Font.Size = vg.Points(13)
	p.X.Tick.Marker = limitedTicker(8, "%.1f")
	p.Y.Tick.Marker = limitedTicker(8, "%.1f")
	p.Add(plotter.NewGrid())
	return p
}

func savePNG(p *plot.Plot, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}

	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch),
		vgimg.UseDPI(dpi),
	)
	p.Draw(draw.New(c))

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("cannot create png: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	pngc := vgimg.PngCanvas{Canvas: c}
	if _, err := pngc.WriteTo(bw); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	return bw.Flush()
}

// SaveLines draws yCol against xCol for every line into one PNG.
func SaveLines(filename, title, xCol, yCol string, lines ...Line) error {
	if len(lines) == 0 {
		return fmt.Errorf("plot: nothing to draw")
	}

	p := newPlot(title, axisLabel(xCol), axisLabel(yCol))
	for i, ln := range lines {
		pts, err := XY(ln.Log, xCol, yCol)
		if err != nil {
			return err
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.LineStyle.Width = vg.Points(2)
		line.LineStyle.Color = plotutil.Color(i)
		p.Add(line)
		if ln.Label != "" {
			p.Legend.Add(ln.Label, line)
		}
	}
	p.Legend.Top = true

	return savePNG(p, filename)
}

// SaveFlight writes the standard charts of a flight into dir and returns
// the file paths. 3DOF logs also get the flight path in the vertical plane.
func SaveFlight(dir string, l *flightlog.Log) ([]string, error) {
	charts := []chart{
		{"altitude.png", "Altitude", flightlog.TimeColumn, "altitude"},
	}
	if _, ok := l.Column("velocity"); ok {
		charts = append(charts, chart{"velocity.png", "Vertical velocity", flightlog.TimeColumn, "velocity"})
	}
	if _, ok := l.Column("vy"); ok {
		charts = append(charts,
			chart{"velocity.png", "Vertical velocity", flightlog.TimeColumn, "vy"},
			chart{"pitch.png", "Pitch", flightlog.TimeColumn, "pitch"},
			chart{"trajectory.png", "Flight path", "x", "altitude"},
		)
	}

	paths := make([]string, 0, len(charts))
	for _, c := range charts {
		path := filepath.Join(dir, c.file)
		if err := SaveLines(path, c.title, c.x, c.y, Line{Log: l}); err != nil {
			return nil, fmt.Errorf("%s: %w", c.file, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

type chart struct {
	file, title, x, y string
}

var units = map[string]string{
	"time":         "time (s)",
	"altitude":     "altitude (m)",
	"velocity":     "velocity (m/s)",
	"acceleration": "acceleration (m/s^2)",
	"x":            "downrange (m)",
	"vx":           "vx (m/s)",
	"vy":           "vy (m/s)",
	"pitch":        "pitch (rad)",
	"pitch_rate":   "pitch rate (rad/s)",
}

func axisLabel(col string) string {
	if u, ok := units[col]; ok {
		return u
	}
	return col
}
