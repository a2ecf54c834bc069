package tracking

import (
	"image"

	"go.viam.com/colortrack/rimage"
)

// HistogramCeiling is the value the fullest bin of a ColorModel is scaled to.
const HistogramCeiling = 255

// MaxDims is the largest number of channels a ColorModel may span.
const MaxDims = 3

// MaxHistogramBins is the largest number of cells, the product of the per
// channel bin counts, a ColorModel may hold.
const MaxHistogramBins = 1 << 24

// ValueRange is the half open range [Min, Max) of one channel that is spread
// over that channel's bins.
type ValueRange struct {
	Min, Max float64
}

// HueSaturationRanges are the ranges of the hue and saturation channels of the
// working color space.
var HueSaturationRanges = []ValueRange{
	{rimage.HSVRanges[0][0], rimage.HSVRanges[0][1]},
	{rimage.HSVRanges[1][0], rimage.HSVRanges[1][1]},
}

// ColorModel is a min-max normalized joint histogram over up to three channels
// of a reference image. It is immutable once built.
type ColorModel struct {
	channels []int
	bins     []int
	ranges   []ValueRange
	strides  []int
	hist     []float32
	size     image.Point
}

// BuildColorModel builds a ColorModel from a reference image in the source color space.
func BuildColorModel(reference image.Image, channels, bins []int, ranges []ValueRange) (*ColorModel, error) {
	if reference == nil || reference.Bounds().Empty() {
		return nil, newInvalidConfigurationError("reference image is empty")
	}
	return NewColorModel(rimage.ToWorkingSpace(reference), channels, bins, ranges)
}

// NewColorModel builds a ColorModel from a reference image already in the working color space.
func NewColorModel(reference *rimage.ChannelImage, channels, bins []int, ranges []ValueRange) (*ColorModel, error) {
	if reference.Empty() {
		return nil, newInvalidConfigurationError("reference image is empty")
	}
	if err := validateHistogramParams(channels, bins, ranges, reference.NumChannels()); err != nil {
		return nil, err
	}

	cm := &ColorModel{
		channels: append([]int(nil), channels...),
		bins:     append([]int(nil), bins...),
		ranges:   append([]ValueRange(nil), ranges...),
		strides:  make([]int, len(bins)),
		size:     reference.Bounds().Size(),
	}
	total := 1
	for d := len(bins) - 1; d >= 0; d-- {
		cm.strides[d] = total
		total *= bins[d]
	}

	counts := make([]float64, total)
	for y := 0; y < reference.Height(); y++ {
		for x := 0; x < reference.Width(); x++ {
			if idx := cm.binOf(reference, x, y); idx >= 0 {
				counts[idx]++
			}
		}
	}
	cm.hist = normalizeMinMax(counts, HistogramCeiling)
	return cm, nil
}

func validateHistogramParams(channels, bins []int, ranges []ValueRange, available int) error {
	dims := len(channels)
	switch {
	case dims == 0:
		return newInvalidConfigurationError("at least one channel is required")
	case dims > MaxDims:
		return newInvalidConfigurationError("%d channels given, at most %d supported", dims, MaxDims)
	case len(bins) != dims:
		return newInvalidConfigurationError("bins has %d entries, want %d", len(bins), dims)
	case len(ranges) != dims:
		return newInvalidConfigurationError("ranges has %d entries, want %d", len(ranges), dims)
	}
	seen := map[int]bool{}
	total := 1
	for d, c := range channels {
		if c < 0 || c >= available {
			return newInvalidConfigurationError("channel %d out of range [0, %d)", c, available)
		}
		if seen[c] {
			return newInvalidConfigurationError("channel %d given twice", c)
		}
		seen[c] = true
		if bins[d] <= 0 {
			return newInvalidConfigurationError("bins[%d] must be positive, got %d", d, bins[d])
		}
		if total > MaxHistogramBins/bins[d] {
			return newInvalidConfigurationError("bins %v exceed %d histogram cells", bins, MaxHistogramBins)
		}
		total *= bins[d]
		if !(ranges[d].Max > ranges[d].Min) {
			return newInvalidConfigurationError("ranges[%d] [%v, %v) is empty", d, ranges[d].Min, ranges[d].Max)
		}
	}
	return nil
}

// normalizeMinMax linearly maps the smallest count to 0 and the largest to ceiling.
// When every count is equal everything maps to 0.
func normalizeMinMax(counts []float64, ceiling float64) []float32 {
	lo, hi := counts[0], counts[0]
	for _, c := range counts[1:] {
		if c < lo {
			lo = c
		}
		if c > hi {
			hi = c
		}
	}
	out := make([]float32, len(counts))
	if hi == lo {
		return out
	}
	scale := ceiling / (hi - lo)
	for i, c := range counts {
		out[i] = float32((c - lo) * scale)
	}
	return out
}

// quantize returns the bin of value v along dimension d, or -1 when v is outside its range.
func (cm *ColorModel) quantize(d int, v float64) int {
	r := cm.ranges[d]
	if v < r.Min || v >= r.Max {
		return -1
	}
	b := int((v - r.Min) * float64(cm.bins[d]) / (r.Max - r.Min))
	if b >= cm.bins[d] {
		b = cm.bins[d] - 1
	}
	return b
}

// binOf returns the flat histogram index addressed by the pixel at (x, y), or -1.
func (cm *ColorModel) binOf(img *rimage.ChannelImage, x, y int) int {
	idx := 0
	for d, c := range cm.channels {
		b := cm.quantize(d, img.ChannelAt(x, y, c))
		if b < 0 {
			return -1
		}
		idx += b * cm.strides[d]
	}
	return idx
}

// Dims returns the number of channels the model spans.
func (cm *ColorModel) Dims() int {
	return len(cm.channels)
}

// Channels returns the working color space channel indices of each dimension.
func (cm *ColorModel) Channels() []int {
	return append([]int(nil), cm.channels...)
}

// Bins returns the bin count of each dimension.
func (cm *ColorModel) Bins() []int {
	return append([]int(nil), cm.bins...)
}

// Ranges returns the value range of each dimension.
func (cm *ColorModel) Ranges() []ValueRange {
	return append([]ValueRange(nil), cm.ranges...)
}

// WindowSize is the size of the reference image, the size of every tracking window.
func (cm *ColorModel) WindowSize() image.Point {
	return cm.size
}

// Value returns the normalized density of the bin at the given multi-index.
// It panics when the index does not address a bin.
func (cm *ColorModel) Value(index ...int) float64 {
	if len(index) != len(cm.bins) {
		panic("tracking: wrong number of histogram indices")
	}
	flat := 0
	for d, b := range index {
		if b < 0 || b >= cm.bins[d] {
			panic("tracking: histogram index out of range")
		}
		flat += b * cm.strides[d]
	}
	return float64(cm.hist[flat])
}

// Max returns the largest bin value.
func (cm *ColorModel) Max() float64 {
	var hi float32
	for _, v := range cm.hist {
		if v > hi {
			hi = v
		}
	}
	return float64(hi)
}
