// Package imagesource provides frame sources that feed the tracker from memory or disk.
package imagesource

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/colortrack/rimage"
)

// ImageSource produces frames one at a time. The returned release func must be
// called once the caller is done with the frame. A nil image marks the end of
// the sequence.
type ImageSource interface {
	Next(ctx context.Context) (image.Image, func(), error)
}

func noRelease() {}

// StaticSource serves the same image Count times, or forever when Count is 0.
type StaticSource struct {
	Img   image.Image
	Count int

	mu     sync.Mutex
	served int
}

// Next returns the static image until Count frames have been served.
func (ss *StaticSource) Next(ctx context.Context) (image.Image, func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if ss.Count > 0 && ss.served >= ss.Count {
		return nil, noRelease, nil
	}
	ss.served++
	return ss.Img, noRelease, nil
}

// -----

// FileSource decodes the same file on every call to Next.
type FileSource struct {
	ColorFN string
}

// Next reads ColorFN from disk.
func (fs *FileSource) Next(ctx context.Context) (image.Image, func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	img, err := rimage.ReadImageFromFile(fs.ColorFN)
	if err != nil {
		return nil, nil, err
	}
	return img, noRelease, nil
}

// -------

var frameExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".ppm", ".qoi"}

// DirSource serves every image file of a directory in lexical order, then a nil
// frame. Reset restarts the sequence.
type DirSource struct {
	Dir string

	mu    sync.Mutex
	files []string
	next  int
}

// NewDirSource lists the frames of dir. Files with unknown extensions are skipped.
func NewDirSource(dir string) (*DirSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't list frames in %q", dir)
	}
	frames := lo.Filter(entries, func(e os.DirEntry, _ int) bool {
		return !e.IsDir() && lo.Contains(frameExtensions, strings.ToLower(filepath.Ext(e.Name())))
	})
	files := lo.Map(frames, func(e os.DirEntry, _ int) string {
		return filepath.Join(dir, e.Name())
	})
	sort.Strings(files)
	if len(files) == 0 {
		return nil, errors.Errorf("no frames found in %q", dir)
	}
	return &DirSource{Dir: dir, files: files}, nil
}

// Files returns the frame paths in serving order.
func (ds *DirSource) Files() []string {
	return append([]string(nil), ds.files...)
}

// Next decodes the next frame.
func (ds *DirSource) Next(ctx context.Context) (image.Image, func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	ds.mu.Lock()
	if ds.next >= len(ds.files) {
		ds.mu.Unlock()
		return nil, noRelease, nil
	}
	fn := ds.files[ds.next]
	ds.next++
	ds.mu.Unlock()

	img, err := rimage.ReadImageFromFile(fn)
	if err != nil {
		return nil, nil, err
	}
	return img, noRelease, nil
}

// Reset rewinds the source to its first frame.
func (ds *DirSource) Reset() {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.next = 0
}
