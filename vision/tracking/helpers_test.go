package tracking

import (
	"image"
	"image/color"
	"image/draw"
	"math/rand"
	"testing"

	"go.viam.com/colortrack/rimage"
)

var (
	orange     = rimage.NewColor(255, 128, 0)
	magenta    = rimage.NewColor(255, 0, 255)
	nearBlack  = rimage.NewColor(10, 10, 10)
	testArea   = SearchArea{Width: 320, Height: 240}
	patchSize  = image.Point{40, 30}
	patchPlace = image.Point{150, 80}
)

func solidImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{c}, image.Point{}, draw.Src)
	return img
}

// checkerModel is an orange and magenta checkerboard. Both colors are equally
// common, so both of their bins normalize to the ceiling.
func checkerModel(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				img.Set(x, y, orange)
			} else {
				img.Set(x, y, magenta)
			}
		}
	}
	return img
}

// sceneFrame is a near-black frame of the test area with model pasted at at.
func sceneFrame(model image.Image, at image.Point) *image.RGBA {
	frame := solidImage(testArea.Width, testArea.Height, nearBlack)
	r := model.Bounds().Sub(model.Bounds().Min).Add(at)
	draw.Draw(frame, r, model, model.Bounds().Min, draw.Src)
	return frame
}

// blockMap is a map of the given size that is value inside r and zero elsewhere.
func blockMap(w, h int, value uint8, rs ...image.Rectangle) *LikelihoodMap {
	lm := &LikelihoodMap{data: make([]uint8, w*h), width: w, height: h}
	for _, r := range rs {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				lm.data[y*w+x] = value
			}
		}
	}
	return lm
}

// seedTouching returns a seed whose candidates for a (0,0) hint overlap target.
func seedTouching(t *testing.T, target image.Rectangle, count int) int64 {
	t.Helper()
	for seed := int64(1); seed < 1000; seed++ {
		candidates, err := GenerateCandidates(image.Point{}, count, testArea, patchSize, rand.New(rand.NewSource(seed)))
		if err != nil {
			t.Fatal(err)
		}
		for _, c := range candidates {
			if c.Rect().Overlaps(target) {
				return seed
			}
		}
	}
	t.Fatal("no seed produces a candidate touching the target")
	return 0
}
