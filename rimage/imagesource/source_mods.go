package imagesource

import (
	"context"
	"image"

	"github.com/nfnt/resize"
)

// ResizeSource scales every frame of Source to Width x Height so frames of any
// capture size match a tracker's search area.
type ResizeSource struct {
	Source        ImageSource
	Width, Height int
}

// Next returns the next frame of the wrapped source, resized. Frames that need
// scaling are released right away since the copy does not share their pixels.
func (rs *ResizeSource) Next(ctx context.Context) (image.Image, func(), error) {
	img, release, err := rs.Source.Next(ctx)
	if err != nil {
		return nil, nil, err
	}
	if release == nil {
		release = noRelease
	}
	if img == nil || img.Bounds().Empty() {
		release()
		return nil, noRelease, nil
	}
	if img.Bounds().Dx() == rs.Width && img.Bounds().Dy() == rs.Height {
		return img, release, nil
	}
	defer release()
	return resize.Resize(uint(rs.Width), uint(rs.Height), img, resize.Bilinear), noRelease, nil
}
