package rimage

import (
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "github.com/lmittmann/ppm" // register ppm
	"github.com/pkg/errors"
	"github.com/xfmoulet/qoi"
	"go.uber.org/multierr"
)

// ReadImageFromFile decodes the image at path. Any format registered with the
// image package is accepted (png, jpeg, gif, bmp, tiff, ppm and qoi are linked in).
func ReadImageFromFile(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't read image %q", path)
	}
	return img, nil
}

// WriteImageToFile writes img to path, choosing the encoding from the extension.
func WriteImageToFile(path string, img image.Image) (err error) {
	if strings.ToLower(filepath.Ext(path)) == ".qoi" {
		//nolint:gosec
		f, createErr := os.Create(path)
		if createErr != nil {
			return errors.Wrapf(createErr, "couldn't write image %q", path)
		}
		defer func() {
			err = multierr.Combine(err, f.Close())
		}()
		return errors.Wrapf(qoi.Encode(f, img), "couldn't encode image %q", path)
	}
	if err := imaging.Save(img, path); err != nil {
		return errors.Wrapf(err, "couldn't write image %q", path)
	}
	return nil
}
