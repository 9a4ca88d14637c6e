/*
 * stats.go, part of apdap.
 *
 * Copyright 2026 Raul Mera A. (raulpuntomeraatusachpuntocl)
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

// Package chemplot draws the per-frame statistics of a run.
package chemplot

import (
	"fmt"
	"image/color"
	"math"

	"github.com/google/renameio/v2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/rmera/apdap/pipeline"
)

// Series is one curve of a panel.
type Series struct {
	Name string
	Y    []float64
}

func basicPlot(title, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = ylabel
	p.Y.Min = 0
	p.Add(plotter.NewGrid())
	p.Legend.Top = true
	return p
}

// panel returns a plot with one line per series, against x.
func panel(title, ylabel string, x []float64, series []Series) (*plot.Plot, error) {
	p := basicPlot(title, ylabel)
	for key, s := range series {
		if len(s.Y) != len(x) {
			return nil, fmt.Errorf("series %s has %d points, expected %d", s.Name, len(s.Y), len(x))
		}
		pts := make(plotter.XYs, len(x))
		for i := range x {
			pts[i].X = x[i]
			pts[i].Y = s.Y[i]
		}
		l, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		r, g, b := colors(key, len(series))
		l.Color = color.RGBA{R: r, G: g, B: b, A: 255}
		l.Width = vg.Points(1.5)
		p.Add(l)
		if len(series) > 1 {
			p.Legend.Add(s.Name, l)
		}
	}
	return p, nil
}

// distribution returns a bar chart of the cluster size histogram of R,
// or nil if there are no clusters.
func distribution(R *pipeline.Report) (*plot.Plot, error) {
	D := R.SizeDistribution()
	if D == nil {
		return nil, nil
	}
	D.Normalize()
	p := basicPlot("", "Fraction of clusters")
	p.X.Label.Text = "Cluster size"
	bars, err := plotter.NewBarChart(plotter.Values(D.View()), vg.Points(6))
	if err != nil {
		return nil, err
	}
	r, g, b := colors(0, 1)
	bars.Color = color.RGBA{R: r, G: g, B: b, A: 255}
	bars.LineStyle.Width = 0
	//bar i is the size i+1.
	bars.XMin = 1
	p.Add(bars)
	return p, nil
}

// Stats saves to filename a PNG with the fraction of disordered
// particles and the size of the largest disordered cluster for every
// frame of the report, plus the distribution of cluster sizes if
// there are clusters.
func Stats(R *pipeline.Report, title, filename string) error {
	if R.Len() == 0 {
		return fmt.Errorf("no frames to plot")
	}
	x := R.Series(func(s pipeline.FrameStats) float64 { return float64(s.Index) })
	frac, err := panel(title, "Disordered fraction", x, []Series{{"disordered", R.Series(pipeline.FrameStats.DisorderedFraction)}})
	if err != nil {
		return err
	}
	largest, err := panel("", "Clusters", x, []Series{
		{"largest size", R.Series(func(s pipeline.FrameStats) float64 { return float64(s.Largest) })},
		{"count", R.Series(func(s pipeline.FrameStats) float64 { return float64(s.Clusters) })},
	})
	if err != nil {
		return err
	}
	plots := [][]*plot.Plot{{frac}, {largest}}
	dist, err := distribution(R)
	if err != nil {
		return err
	}
	if dist != nil {
		plots = append(plots, []*plot.Plot{dist})
	}
	img := vgimg.New(16*vg.Centimeter, vg.Length(len(plots))*9*vg.Centimeter)
	dc := draw.New(img)
	t := draw.Tiles{Rows: len(plots), Cols: 1, PadX: vg.Millimeter, PadY: 3 * vg.Millimeter, PadTop: vg.Millimeter, PadBottom: vg.Millimeter}
	canvases := plot.Align(plots, t, dc)
	for j := range plots {
		plots[j][0].Draw(canvases[j][0])
	}
	f, err := renameio.NewPendingFile(filename, renameio.WithPermissions(0o644))
	if err != nil {
		return err
	}
	defer f.Cleanup()
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		return fmt.Errorf("write plot %s: %w", filename, err)
	}
	return f.CloseAtomicallyReplace()
}

// takes hue (0-360), v and s (0-1), returns r,g,b (0-255)
func hsv2RGB(h, v, s float64) (uint8, uint8, uint8) {
	conversion := 255.0 * v
	if s == 0.0 {
		return uint8(conversion), uint8(conversion), uint8(conversion)
	}
	h = h / 60
	i := math.Floor(h)
	f := h - i
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))
	var r, g, b float64
	switch int(i) {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default: //case 5
		r, g, b = v, p, q
	}
	return uint8(r * 255), uint8(g * 255), uint8(b * 255)
}

// colors returns the color of the key-th of steps curves. Hues go from
// red to violet, skipping the yellows, which are hard to see on white.
func colors(key, steps int) (r, g, b uint8) {
	norm := 260.0 / float64(steps)
	hp := float64(key)*norm + 20.0
	h := hp + 20.0
	if hp < 55 {
		h = hp - 20.0
	}
	return hsv2RGB(h, 0.9, 1.0)
}
