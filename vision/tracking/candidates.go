package tracking

import (
	"image"
	"math/rand"

	"github.com/samber/lo"

	"go.viam.com/colortrack/utils"
)

// SearchArea is the frame region, anchored at the origin, that windows may occupy.
type SearchArea struct {
	Width, Height int
}

// Bounds returns the area as a rectangle at the origin.
func (sa SearchArea) Bounds() image.Rectangle {
	return image.Rect(0, 0, sa.Width, sa.Height)
}

// Validate checks that both sides are positive.
func (sa SearchArea) Validate() error {
	if sa.Width <= 0 || sa.Height <= 0 {
		return newInvalidConfigurationError("search area %dx%d must have positive sides", sa.Width, sa.Height)
	}
	return nil
}

// GenerateCandidates returns count windows of the given size. The first is the
// hint window clamped into the area, the rest have uniformly random top left
// corners drawn from rng such that they lie fully inside the area.
func GenerateCandidates(hint image.Point, count int, area SearchArea, size image.Point, rng *rand.Rand) ([]Window, error) {
	if count < 1 {
		return nil, newInvalidConfigurationError("candidate count must be at least 1, got %d", count)
	}
	if err := area.Validate(); err != nil {
		return nil, err
	}
	if size.X <= 0 || size.Y <= 0 {
		return nil, newInvalidConfigurationError("window size %v must be positive", size)
	}
	if size.X > area.Width || size.Y > area.Height {
		return nil, newInvalidConfigurationError("window size %v exceeds search area %dx%d", size, area.Width, area.Height)
	}
	if rng == nil {
		return nil, newInvalidConfigurationError("no random source")
	}

	hinted := Window{X: hint.X, Y: hint.Y, Width: size.X, Height: size.Y}.Clamp(area.Bounds())
	maxX, maxY := area.Width-size.X, area.Height-size.Y
	random := lo.Times(count-1, func(int) Window {
		x := utils.SampleRandomIntRange(0, maxX, rng)
		y := utils.SampleRandomIntRange(0, maxY, rng)
		return Window{X: x, Y: y, Width: size.X, Height: size.Y}
	})
	return append([]Window{hinted}, random...), nil
}
