package rimage

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"
)

var font *truetype.Font

// init sets up the fonts we want to use.
func init() {
	var err error
	font, err = truetype.Parse(goregular.TTF)
	if err != nil {
		panic(err)
	}
}

// Font returns the font we use for drawing.
func Font() *truetype.Font {
	return font
}

// DrawString writes a string to the given context at a particular point.
func DrawString(dc *gg.Context, text string, p image.Point, c color.Color, size float64) {
	dc.SetFontFace(truetype.NewFace(Font(), &truetype.Options{Size: size}))
	dc.SetColor(c)
	dc.DrawStringWrapped(text, float64(p.X), float64(p.Y), 0, 0, float64(dc.Width()), 1, 0)
}

// DrawRectangleEmpty draws the given rectangle into the context. The positions of the
// rectangle are used to place it within the context.
func DrawRectangleEmpty(dc *gg.Context, r image.Rectangle, c color.Color, width float64) {
	dc.SetColor(c)
	dc.SetLineWidth(width)
	dc.DrawRectangle(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()))
	dc.Stroke()
}

// AnnotationWidth is the stroke width of result windows.
const AnnotationWidth = 3

// Annotate returns a copy of img with r outlined. A present window is drawn in
// green, an absent result only gets the label in red. img is not modified.
func Annotate(img image.Image, r image.Rectangle, present bool, label string) *image.NRGBA {
	dc := gg.NewContextForImage(imaging.Clone(img))
	// gg renders at origin, shift the rectangle with the source bounds.
	r = r.Sub(img.Bounds().Min)
	labelColor := color.Color(Red)
	if present {
		labelColor = Green
		DrawRectangleEmpty(dc, r, Green, AnnotationWidth)
	}
	if label != "" {
		DrawString(dc, label, image.Point{4, 4}, labelColor, 14)
	}
	return imaging.Clone(dc.Image())
}
