package figure

import (
	"image/color"
	"math"
	"sort"

	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
)

// Missing is the colour of NaN cells on maps, a dark land brown.
var Missing = color.RGBA{R: 0x40, G: 0x22, B: 0x06, A: 0xff}

type colors []color.Color

func (c colors) Colors() []color.Color { return c }

// sample evaluates n evenly spaced colours of cm, endpoints included.
func sample(cm palette.ColorMap, n int) colors {
	out := make(colors, n)
	lo, hi := cm.Min(), cm.Max()
	for i := range out {
		v := hi
		if i < n-1 {
			v = lo + (hi-lo)*float64(i)/float64(n-1)
		}
		c, err := cm.At(v)
		if err != nil {
			c = color.Transparent
		}
		out[i] = c
	}
	return out
}

// reversed flips a colour map end for end.
type reversed struct {
	palette.ColorMap
}

func (r reversed) At(v float64) (color.Color, error) {
	if math.IsNaN(v) {
		return nil, palette.ErrNaN
	}
	if v < r.Min() || v > r.Max() {
		return r.ColorMap.At(v)
	}
	// clamp rounding error at the ends
	return r.ColorMap.At(math.Min(math.Max(r.Max()+r.Min()-v, r.Min()), r.Max()))
}

func (r reversed) Palette(n int) palette.Palette { return sample(r, n) }

// CoolWarmR is the reversed cool-warm diverging map over [lo, hi]: low
// values are red and high values blue.
func CoolWarmR(lo, hi float64) palette.ColorMap {
	cm := moreland.SmoothBlueRed()
	cm.SetMax(hi)
	cm.SetMin(lo)
	return reversed{ColorMap: cm}
}

// binned quantises a colour map into equal-width classes, each drawn in
// the colour of its centre.
type binned struct {
	palette.ColorMap
	bins int
}

// Binned splits cm into n discrete classes.
func Binned(cm palette.ColorMap, n int) palette.ColorMap {
	return binned{ColorMap: cm, bins: n}
}

func (b binned) At(v float64) (color.Color, error) {
	switch {
	case math.IsNaN(v):
		return nil, palette.ErrNaN
	case v < b.Min():
		return nil, palette.ErrUnderflow
	case v > b.Max():
		return nil, palette.ErrOverflow
	}
	w := (b.Max() - b.Min()) / float64(b.bins)
	i := min(int((v-b.Min())/w), b.bins-1)
	return b.ColorMap.At(b.Min() + (float64(i)+0.5)*w)
}

func (b binned) Palette(n int) palette.Palette { return sample(b, n) }

type stop struct {
	at float64
	c  color.NRGBA
}

// gradient interpolates linearly between colour stops placed in data
// units.
type gradient struct {
	stops    []stop
	min, max float64
	alpha    float64
}

func newGradient(stops []stop, lo, hi float64) *gradient {
	sort.Slice(stops, func(i, j int) bool { return stops[i].at < stops[j].at })
	return &gradient{stops: stops, min: lo, max: hi, alpha: 1}
}

func (g *gradient) At(v float64) (color.Color, error) {
	switch {
	case math.IsNaN(v):
		return nil, palette.ErrNaN
	case v < g.min:
		return nil, palette.ErrUnderflow
	case v > g.max:
		return nil, palette.ErrOverflow
	}
	s := g.stops
	if v <= s[0].at {
		return g.fade(s[0].c), nil
	}
	for i := 1; i < len(s); i++ {
		if v > s[i].at {
			continue
		}
		f := (v - s[i-1].at) / (s[i].at - s[i-1].at)
		return g.fade(mix(s[i-1].c, s[i].c, f)), nil
	}
	return g.fade(s[len(s)-1].c), nil
}

func mix(a, b color.NRGBA, f float64) color.NRGBA {
	lerp := func(x, y uint8) uint8 { return uint8(math.Round(float64(x) + (float64(y)-float64(x))*f)) }
	return color.NRGBA{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B), A: 0xff}
}

func (g *gradient) fade(c color.NRGBA) color.Color {
	c.A = uint8(math.Round(g.alpha * 255))
	return c
}

func (g *gradient) Max() float64     { return g.max }
func (g *gradient) Min() float64     { return g.min }
func (g *gradient) SetMax(v float64) { g.max = v }
func (g *gradient) SetMin(v float64) { g.min = v }
func (g *gradient) Alpha() float64   { return g.alpha }

func (g *gradient) SetAlpha(a float64) {
	if a < 0 || a > 1 {
		panic("figure: alpha out of range")
	}
	g.alpha = a
}

func (g *gradient) Palette(n int) palette.Palette { return sample(g, n) }

func rgb(hex uint32) color.NRGBA {
	return color.NRGBA{R: uint8(hex >> 16), G: uint8(hex >> 8), B: uint8(hex), A: 0xff}
}

// Geo is a relief colour map in metres over [lo, hi]: blues below sea
// level, greens through browns to white above it.
func Geo(lo, hi float64) palette.ColorMap {
	stops := []stop{
		{-8000, rgb(0x000080)},
		{-4000, rgb(0x0040c0)},
		{-1000, rgb(0x2080ff)},
		{-200, rgb(0x80c0ff)},
		{0, rgb(0xc0e8ff)},
		{0.01, rgb(0x2e8b57)},
		{200, rgb(0x7ac070)},
		{1000, rgb(0xe0d080)},
		{2000, rgb(0xb08040)},
		{4000, rgb(0x805030)},
		{6000, rgb(0xffffff)},
	}
	return newGradient(stops, lo, hi)
}
