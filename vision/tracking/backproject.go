package tracking

import (
	"image"
	"math"

	"go.viam.com/colortrack/rimage"
	"go.viam.com/colortrack/utils"
)

// LikelihoodMap holds, for every pixel of a frame, the density its color has in
// a ColorModel on the [0, HistogramCeiling] scale. It is read only once built
// and is shared by all candidate searches of a frame.
type LikelihoodMap struct {
	data          []uint8
	width, height int
}

// Width returns the width of the map.
func (lm *LikelihoodMap) Width() int {
	return lm.width
}

// Height returns the height of the map.
func (lm *LikelihoodMap) Height() int {
	return lm.height
}

// Bounds returns the map bounds, anchored at the origin.
func (lm *LikelihoodMap) Bounds() image.Rectangle {
	return image.Rect(0, 0, lm.width, lm.height)
}

// At returns the likelihood of the pixel at (x, y).
func (lm *LikelihoodMap) At(x, y int) float64 {
	return float64(lm.data[y*lm.width+x])
}

// row returns the likelihoods of row y between x0 and x1.
func (lm *LikelihoodMap) row(y, x0, x1 int) []uint8 {
	start := y * lm.width
	return lm.data[start+x0 : start+x1]
}

// Mean returns the mean likelihood over the pixels of w, which must lie within the map.
func (lm *LikelihoodMap) Mean(w Window) float64 {
	if w.Width <= 0 || w.Height <= 0 {
		return 0
	}
	var sum uint64
	for y := w.Y; y < w.Y+w.Height; y++ {
		for _, v := range lm.row(y, w.X, w.X+w.Width) {
			sum += uint64(v)
		}
	}
	return float64(sum) / float64(w.Width*w.Height)
}

// ToGray renders the map as an 8-bit grayscale image.
func (lm *LikelihoodMap) ToGray() *image.Gray {
	out := image.NewGray(lm.Bounds())
	for y := 0; y < lm.height; y++ {
		copy(out.Pix[y*out.Stride:y*out.Stride+lm.width], lm.row(y, 0, lm.width))
	}
	return out
}

// BackProject looks up every pixel of frame in model. The result has the size of frame.
func BackProject(frame *rimage.ChannelImage, model *ColorModel) (*LikelihoodMap, error) {
	if model == nil {
		return nil, newInvalidConfigurationError("no color model")
	}
	if frame.Empty() {
		return nil, newInvalidConfigurationError("frame is empty")
	}
	for _, c := range model.channels {
		if c >= frame.NumChannels() {
			return nil, newDimensionMismatchError(
				"color model reads channel %d but the frame has %d channels", c, frame.NumChannels())
		}
	}

	lm := &LikelihoodMap{
		data:   make([]uint8, frame.Width()*frame.Height()),
		width:  frame.Width(),
		height: frame.Height(),
	}
	utils.ParallelForEachPixel(frame.Bounds().Size(), func(x, y int) {
		idx := model.binOf(frame, x, y)
		if idx < 0 {
			return
		}
		lm.data[y*lm.width+x] = saturateUint8(model.hist[idx])
	})
	return lm, nil
}

func saturateUint8(v float32) uint8 {
	r := math.Round(float64(v))
	if r <= 0 {
		return 0
	}
	if r >= 255 {
		return 255
	}
	return uint8(r)
}
