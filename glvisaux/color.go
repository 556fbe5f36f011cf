package glvisaux

import (
	"image/color"

	math "github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/glgl/math/ms1"
	"github.com/soypat/glvis"
)

// HSV color interpolation adapted from Esme Lamb's (@dedelala)
// color manipulation work presented at Gophercon AU 2024.
// https://github.com/dedelala/disco/tree/main/color

// GradientColors returns one color per position interpolating between c0 and c1 in HSV space
// along axis. Positions with the lowest projection onto axis get c0, the highest get c1.
// The result is suitable for [glvis.Builder.NewVertexColor].
func GradientColors(positions []ms3.Vec, axis ms3.Vec, c0, c1 color.Color) [][4]float32 {
	if len(positions) == 0 {
		return nil
	}
	axis = ms3.Unit(axis)
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range positions {
		d := ms3.Dot(p, axis)
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}
	h0, s0, v0 := colorToHSV(c0)
	h1, s1, v1 := colorToHSV(c1)
	a0 := glvis.ColorOf(c0)[3]
	a1 := glvis.ColorOf(c1)[3]
	span := hi - lo
	colors := make([][4]float32, len(positions))
	for i, p := range positions {
		var t float32
		if span > 0 {
			t = (ms3.Dot(p, axis) - lo) / span
		}
		h, s, v := interpHSV(h0, s0, v0, h1, s1, v1, t)
		r, g, b := hsvToRGB(h, s, v)
		colors[i] = [4]float32{
			ms1.Clamp(r, 0, 1),
			ms1.Clamp(g, 0, 1),
			ms1.Clamp(b, 0, 1),
			ms1.Interp(a0, a1, t),
		}
	}
	return colors
}

func interpHSV(h0, s0, v0, h1, s1, v1, t float32) (h, s, v float32) {
	switch {
	case h1-h0 > 0.5:
		h0 += 1.0
	case h1-h0 < -0.5:
		h1 += 1.0
	}
	h = ms1.Interp(h0, h1, t)
	if h > 1 {
		h -= 1
	}
	s = ms1.Interp(s0, s1, t)
	v = ms1.Interp(v0, v1, t)
	return h, s, v
}

func colorToHSV(c color.Color) (h, s, v float32) {
	rgba := glvis.ColorOf(c)
	return rgbToHSV(rgba[0], rgba[1], rgba[2])
}

// hsvToRGB converts hue, saturation and brightness values on the range of 0.0
// to 1.0 to RGB floating point values on the range of 0.0 to 1.0
func hsvToRGB(h, s, v float32) (r, g, b float32) {
	var (
		c = s * v
		x = c * (1 - math.Abs(math.Mod(h*6, 2)-1))
		m = v - c
	)
	switch {
	case h <= 1.0/6:
		r, g, b = c, x, 0
	case h <= 2.0/6:
		r, g, b = x, c, 0
	case h <= 3.0/6:
		r, g, b = 0, c, x
	case h <= 4.0/6:
		r, g, b = 0, x, c
	case h <= 5.0/6:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return r + m, g + m, b + m
}

// rgbToHSV converts red, green, and blue floating point values on the range
// 0.0 to 1.0 to hue, saturation and brightness values on the range 0.0 to 1.0
func rgbToHSV(r, g, b float32) (h, s, v float32) {
	var (
		xmax = max(r, g, b)
		xmin = min(r, g, b)
		c    = xmax - xmin
	)
	v = xmax
	switch {
	case c == 0:
		h = 0
	case v == r:
		h = (g - b) / (c * 6)
	case v == g:
		h = 1.0/3 + (b-r)/(c*6)
	case v == b:
		h = 2.0/3 + (r-g)/(c*6)
	}
	if h < 0 {
		h += 1
	}
	if xmax > 0 {
		s = c / xmax
	}
	return
}
