package raster

import (
	"image/color"
	"math"
)

type stop struct {
	at      float64
	r, g, b float64
}

// ramp is the 5-stop heat scale: blue, cyan, green, yellow, red
var ramp = []stop{
	{0, 0, 0, 255},
	{0.25, 0, 255, 255},
	{0.5, 0, 255, 0},
	{0.75, 255, 255, 0},
	{1, 255, 0, 0},
}

// Ramp maps a normalized intensity onto the heat scale with full alpha.
// Values outside [0,1] are clamped.
func Ramp(t float64) color.NRGBA {
	t = clamp01(t)
	for i := 1; i < len(ramp); i++ {
		hi := ramp[i]
		if t > hi.at {
			continue
		}
		lo := ramp[i-1]
		f := (t - lo.at) / (hi.at - lo.at)
		return color.NRGBA{
			R: lerp(lo.r, hi.r, f),
			G: lerp(lo.g, hi.g, f),
			B: lerp(lo.b, hi.b, f),
			A: 255,
		}
	}
	last := ramp[len(ramp)-1]
	return color.NRGBA{R: uint8(last.r), G: uint8(last.g), B: uint8(last.b), A: 255}
}

func lerp(a, b, f float64) uint8 {
	return uint8(math.Round(a + (b-a)*f))
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
