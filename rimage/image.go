package rimage

import (
	"image"
	"image/color"

	"go.viam.com/colortrack/utils"
)

// Working color space channel indices.
const (
	ChannelHue        = 0
	ChannelSaturation = 1
	ChannelValue      = 2
	// ChannelIntensity is the only channel of a grayscale ChannelImage.
	ChannelIntensity = 0
)

// HSVRanges are the [min, max) value ranges of the H, S and V channels.
var HSVRanges = [][2]float64{{0, 180}, {0, 256}, {0, 256}}

// ChannelImage is an image in the working color space: a row-major grid of
// pixels, each holding NumChannels() values. Color sources become three HSV8
// channels, grayscale sources a single intensity channel in [0, 256).
// A ChannelImage is not modified after construction and may be read from
// many goroutines.
type ChannelImage struct {
	data          []float32
	width, height int
	channels      int
}

// NewChannelImage returns a zeroed image with the given size and channel count.
func NewChannelImage(width, height, channels int) *ChannelImage {
	return &ChannelImage{
		data:     make([]float32, width*height*channels),
		width:    width,
		height:   height,
		channels: channels,
	}
}

func (i *ChannelImage) kxy(x, y int) int {
	return ((y * i.width) + x) * i.channels
}

// In reports whether (x, y) lies within the image.
func (i *ChannelImage) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < i.width && y < i.height
}

// Bounds returns the image bounds, always anchored at the origin.
func (i *ChannelImage) Bounds() image.Rectangle {
	return image.Rect(0, 0, i.width, i.height)
}

// Width returns the width of the image.
func (i *ChannelImage) Width() int {
	return i.width
}

// Height returns the height of the image.
func (i *ChannelImage) Height() int {
	return i.height
}

// NumChannels returns how many values each pixel holds.
func (i *ChannelImage) NumChannels() int {
	return i.channels
}

// Empty reports whether the image has no pixels.
func (i *ChannelImage) Empty() bool {
	return i == nil || i.width == 0 || i.height == 0
}

// ChannelAt returns channel c of the pixel at (x, y).
func (i *ChannelImage) ChannelAt(x, y, c int) float64 {
	return float64(i.data[i.kxy(x, y)+c])
}

// SetChannel sets channel c of the pixel at (x, y). Only for use while building an image.
func (i *ChannelImage) SetChannel(x, y, c int, v float64) {
	i.data[i.kxy(x, y)+c] = float32(v)
}

// ToWorkingSpace converts img into the working color space. The result is
// anchored at the origin regardless of img.Bounds().Min.
func ToWorkingSpace(img image.Image) *ChannelImage {
	bounds := img.Bounds()
	switch gray := img.(type) {
	case *image.Gray, *image.Gray16:
		out := NewChannelImage(bounds.Dx(), bounds.Dy(), 1)
		utils.ParallelForEachPixel(bounds.Size(), func(x, y int) {
			g := color.GrayModel.Convert(gray.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray)
			out.SetChannel(x, y, ChannelIntensity, float64(g.Y))
		})
		return out
	default:
		out := NewChannelImage(bounds.Dx(), bounds.Dy(), 3)
		utils.ParallelForEachPixel(bounds.Size(), func(x, y int) {
			h, s, v := NewColorFromColor(img.At(bounds.Min.X+x, bounds.Min.Y+y)).HSV8()
			out.SetChannel(x, y, ChannelHue, h)
			out.SetChannel(x, y, ChannelSaturation, s)
			out.SetChannel(x, y, ChannelValue, v)
		})
		return out
	}
}
