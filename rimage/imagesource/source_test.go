package imagesource

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"

	"go.viam.com/colortrack/rimage"
)

func writeFrame(t *testing.T, dir, name string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, rimage.Red)
	test.That(t, rimage.WriteImageToFile(filepath.Join(dir, name), img), test.ShouldBeNil)
}

func TestStaticSource(t *testing.T) {
	ctx := context.Background()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	ss := &StaticSource{Img: img, Count: 2}
	for i := 0; i < 2; i++ {
		got, release, err := ss.Next(ctx)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, got, test.ShouldEqual, img)
		release()
	}
	got, release, err := ss.Next(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, got, test.ShouldBeNil)
	release()

	cancelCtx, cancel := context.WithCancel(ctx)
	cancel()
	_, _, err = (&StaticSource{Img: img}).Next(cancelCtx)
	test.That(t, err, test.ShouldBeError, context.Canceled)
}

func TestDirSource(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFrame(t, dir, "b.png", 3, 2)
	writeFrame(t, dir, "a.png", 3, 2)
	test.That(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600), test.ShouldBeNil)
	test.That(t, os.Mkdir(filepath.Join(dir, "sub.png"), 0o700), test.ShouldBeNil)

	ds, err := NewDirSource(dir)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ds.Files(), test.ShouldResemble, []string{filepath.Join(dir, "a.png"), filepath.Join(dir, "b.png")})

	for i := 0; i < 2; i++ {
		img, release, err := ds.Next(ctx)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, img.Bounds(), test.ShouldResemble, image.Rect(0, 0, 3, 2))
		release()
	}
	img, _, err := ds.Next(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, img, test.ShouldBeNil)

	ds.Reset()
	img, _, err = ds.Next(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, img, test.ShouldNotBeNil)

	_, err = NewDirSource(t.TempDir())
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "no frames")
	_, err = NewDirSource(filepath.Join(dir, "missing"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	writeFrame(t, dir, "one.png", 5, 4)
	fs := &FileSource{ColorFN: filepath.Join(dir, "one.png")}
	img, _, err := fs.Next(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, img.Bounds().Dx(), test.ShouldEqual, 5)

	fs = &FileSource{ColorFN: filepath.Join(dir, "two.png")}
	_, _, err = fs.Next(context.Background())
	test.That(t, err, test.ShouldNotBeNil)
}

type countingSource struct {
	img      image.Image
	released int
}

func (cs *countingSource) Next(ctx context.Context) (image.Image, func(), error) {
	return cs.img, func() { cs.released++ }, nil
}

func TestResizeSource(t *testing.T) {
	src := &countingSource{img: image.NewRGBA(image.Rect(0, 0, 64, 48))}
	rs := &ResizeSource{Source: src, Width: 32, Height: 24}
	img, release, err := rs.Next(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, img.Bounds(), test.ShouldResemble, image.Rect(0, 0, 32, 24))
	test.That(t, src.released, test.ShouldEqual, 1)
	release()
	test.That(t, src.released, test.ShouldEqual, 1)

	rs = &ResizeSource{Source: src, Width: 64, Height: 48}
	img, release, err = rs.Next(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, img, test.ShouldEqual, src.img)
	test.That(t, src.released, test.ShouldEqual, 1)
	release()
	test.That(t, src.released, test.ShouldEqual, 2)

	rs = &ResizeSource{Source: &StaticSource{Count: 0}, Width: 4, Height: 4}
	img, _, err = rs.Next(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, img, test.ShouldBeNil)
}
