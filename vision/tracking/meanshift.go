package tracking

import (
	"context"
	"fmt"
	"image"
	"math"

	"go.viam.com/colortrack/utils"
)

// Window is a candidate or result rectangle. Its size stays fixed while it is
// shifted.
type Window struct {
	X, Y          int
	Width, Height int
}

// Rect returns the window as an image.Rectangle.
func (w Window) Rect() image.Rectangle {
	return image.Rect(w.X, w.Y, w.X+w.Width, w.Y+w.Height)
}

// In reports whether the window lies fully inside bounds.
func (w Window) In(bounds image.Rectangle) bool {
	return w.Rect().In(bounds)
}

// Clamp moves the window, keeping its size, so that it lies inside bounds. A
// window larger than bounds is anchored at bounds.Min.
func (w Window) Clamp(bounds image.Rectangle) Window {
	w.X = utils.ClampInt(w.X, bounds.Min.X, bounds.Max.X-w.Width)
	w.Y = utils.ClampInt(w.Y, bounds.Min.Y, bounds.Max.Y-w.Height)
	return w
}

func (w Window) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", w.X, w.Y, w.Width, w.Height)
}

// TermCriteria bounds a mean-shift run: it stops after MaxIterations shifts or
// once a shift moves the window by less than Epsilon pixels, whichever comes first.
type TermCriteria struct {
	MaxIterations int
	Epsilon       float64
}

// DefaultTermCriteria are the criteria used when none are configured.
var DefaultTermCriteria = TermCriteria{MaxIterations: DefaultMaxIterations, Epsilon: DefaultEpsilon}

// Validate checks that the criteria can terminate.
func (tc TermCriteria) Validate() error {
	if tc.MaxIterations < 1 {
		return newInvalidConfigurationError("max iterations must be at least 1, got %d", tc.MaxIterations)
	}
	if tc.Epsilon < 0 || math.IsNaN(tc.Epsilon) {
		return newInvalidConfigurationError("epsilon must not be negative, got %v", tc.Epsilon)
	}
	return nil
}

// moments returns the likelihood mass of the window and its first moments about
// the window's top left corner, using pixel centers.
func (lm *LikelihoodMap) moments(w Window) (m00, m10, m01 float64) {
	for dy := 0; dy < w.Height; dy++ {
		var rowMass, rowX uint64
		for dx, v := range lm.row(w.Y+dy, w.X, w.X+w.Width) {
			rowMass += uint64(v)
			rowX += uint64(dx) * uint64(v)
		}
		m00 += float64(rowMass)
		// pixel centers sit half a pixel in from their index
		m10 += float64(rowX) + 0.5*float64(rowMass)
		m01 += (float64(dy) + 0.5) * float64(rowMass)
	}
	return m00, m10, m01
}

// Converge runs mean-shift on lm starting from initial: it repeatedly moves the
// window so its center lands on the likelihood centroid inside it, keeping the
// window inside the map. It returns the final window and the number of shifts
// made. A window with no likelihood mass does not move. ctx is checked between
// shifts; on cancellation the window reached so far is returned with ctx's error.
func Converge(ctx context.Context, lm *LikelihoodMap, initial Window, criteria TermCriteria) (Window, int, error) {
	if err := criteria.Validate(); err != nil {
		return initial, 0, err
	}
	bounds := lm.Bounds()
	if initial.Width <= 0 || initial.Height <= 0 ||
		initial.Width > bounds.Dx() || initial.Height > bounds.Dy() {
		return initial, 0, newInvalidConfigurationError("window %v does not fit a %dx%d map", initial, bounds.Dx(), bounds.Dy())
	}

	cur := initial.Clamp(bounds)
	eps2 := utils.Square(criteria.Epsilon)
	iterations := 0
	for iterations < criteria.MaxIterations {
		if err := ctx.Err(); err != nil {
			return cur, iterations, err
		}
		m00, m10, m01 := lm.moments(cur)
		if m00 <= 0 {
			break
		}
		dx := int(math.Round(m10/m00 - float64(cur.Width)*0.5))
		dy := int(math.Round(m01/m00 - float64(cur.Height)*0.5))

		next := Window{X: cur.X + dx, Y: cur.Y + dy, Width: cur.Width, Height: cur.Height}.Clamp(bounds)
		dx, dy = next.X-cur.X, next.Y-cur.Y
		cur = next
		iterations++
		if float64(utils.SquareInt(dx)+utils.SquareInt(dy)) < eps2 || (dx == 0 && dy == 0) {
			break
		}
	}
	return cur, iterations, nil
}
