package rimage

import (
	"fmt"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an 8-bit RGB color with its HSV representation cached. H is in degrees
// [0, 360), S and V are in [0, 1].
type Color struct {
	R, G, B uint8
	H, S, V float64
}

func (c Color) String() string {
	return fmt.Sprintf("%s (%3d,%4.2f,%4.2f)", c.Hex(), int(c.H), c.S, c.V)
}

// Hex returns the #rrggbb form of the color.
func (c Color) Hex() string {
	return fmt.Sprintf("#%.2x%.2x%.2x", c.R, c.G, c.B)
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R)
	r |= r << 8
	g = uint32(c.G)
	g |= g << 8
	b = uint32(c.B)
	b |= b << 8
	a = 0xffff
	return
}

// HSV8 returns the color on the 8-bit HSV scale used by the working color space:
// hue in [0, 180), saturation and value in [0, 256).
func (c Color) HSV8() (h, s, v float64) {
	h = math.Round(c.H / 2)
	if h >= 180 {
		h -= 180
	}
	s = math.Round(c.S * 255)
	v = math.Round(c.V * 255)
	return h, s, v
}

// NewColor returns a Color from 8-bit RGB values.
func NewColor(r, g, b uint8) Color {
	cc := colorful.Color{
		R: float64(r) / 255.0,
		G: float64(g) / 255.0,
		B: float64(b) / 255.0,
	}
	h, s, v := cc.Hsv()

	return Color{
		R: r,
		G: g,
		B: b,
		H: h,
		S: s,
		V: v,
	}
}

// NewColorFromColor converts any color.Color, ignoring alpha premultiplication.
func NewColorFromColor(c color.Color) Color {
	if cc, ok := c.(Color); ok {
		return cc
	}
	r, g, b, a := c.RGBA()
	if a == 0 {
		return Black
	}
	if a != 0xffff {
		// un-premultiply
		r = r * 0xffff / a
		g = g * 0xffff / a
		b = b * 0xffff / a
	}
	return NewColor(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

// Basic colors for annotating frames.
var (
	Red   = NewColor(255, 0, 0)
	Green = NewColor(0, 255, 0)
	Blue  = NewColor(0, 0, 255)
	White = NewColor(255, 255, 255)
	Gray  = NewColor(128, 128, 128)
	Black = NewColor(0, 0, 0)
)
