// Package figure renders the static analysis figures with gonum/plot and
// their interactive companions with go-echarts.
package figure

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Style controls the size, resolution and typography of every figure.
type Style struct {
	Width     vg.Length
	Height    vg.Length
	DPI       int
	LabelSize vg.Length
	TickSize  vg.Length
}

// DefaultStyle mirrors the "bmh" look of the published figures.
func DefaultStyle() Style {
	return Style{
		Width:     10 * vg.Inch,
		Height:    6 * vg.Inch,
		DPI:       300,
		LabelSize: vg.Points(18),
		TickSize:  vg.Points(12),
	}
}

// WithSize returns a copy of the style with a different canvas size.
func (s Style) WithSize(w, h vg.Length) Style {
	s.Width, s.Height = w, h
	return s
}

var (
	background = color.RGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}
	gridColor  = color.RGBA{R: 0xb2, G: 0xb2, B: 0xb2, A: 0xff}
	// bmh colour cycle
	cycle = []color.Color{
		color.RGBA{R: 0x34, G: 0x8a, B: 0xbd, A: 0xff},
		color.RGBA{R: 0xa6, G: 0x06, B: 0x28, A: 0xff},
		color.RGBA{R: 0x7a, G: 0x68, B: 0xa6, A: 0xff},
		color.RGBA{R: 0x46, G: 0x78, B: 0x21, A: 0xff},
		color.RGBA{R: 0xd5, G: 0x5e, B: 0x00, A: 0xff},
		color.RGBA{R: 0xcc, G: 0x79, B: 0xa7, A: 0xff},
		color.RGBA{R: 0x56, G: 0xb4, B: 0xe9, A: 0xff},
		color.RGBA{R: 0x00, G: 0x9e, B: 0x73, A: 0xff},
	}
)

// SeriesColor returns the i-th colour of the cycle.
func SeriesColor(i int) color.Color {
	return cycle[i%len(cycle)]
}

// translucent returns c with the given alpha in [0, 1].
func translucent(c color.Color, alpha float64) color.Color {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(alpha * 255)}
}

// newPlot creates a plot with the shared axes styling and a background
// grid.
func (s Style) newPlot(xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.BackgroundColor = background
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.X.Label.TextStyle.Font.Size = s.LabelSize
	p.Y.Label.TextStyle.Font.Size = s.LabelSize
	p.X.Tick.Label.Font.Size = s.TickSize
	p.Y.Tick.Label.Font.Size = s.TickSize
	p.Legend.TextStyle.Font.Size = s.TickSize

	g := plotter.NewGrid()
	g.Vertical.Color = gridColor
	g.Horizontal.Color = gridColor
	g.Vertical.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
	g.Horizontal.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
	p.Add(g)
	return p
}

// render draws onto a canvas of the style's size and writes it as PNG.
func (s Style) render(path string, drawFn func(c draw.Canvas)) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	img := vgimg.NewWith(vgimg.UseWH(s.Width, s.Height), vgimg.UseDPI(s.DPI))
	drawFn(draw.New(img))

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("save %s: %w", path, err)
	}
	return f.Close()
}

// save writes a single plot.
func (s Style) save(p *plot.Plot, path string) error {
	return s.render(path, p.Draw)
}
