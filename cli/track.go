package cli

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/colortrack/logging"
	"go.viam.com/colortrack/rimage"
	"go.viam.com/colortrack/rimage/imagesource"
	"go.viam.com/colortrack/vision/tracking"
)

// TrackAction tracks the model image through every frame of a directory and
// writes each annotated frame to the output directory.
func TrackAction(c *cli.Context) error {
	logger, closeLogger := newLogger(c)
	defer closeLogger()

	frames, err := imagesource.NewDirSource(c.Path(trackFlagFrames))
	if err != nil {
		return err
	}
	cfg, err := trackConfig(c, frames)
	if err != nil {
		return err
	}
	model, err := rimage.ReadImageFromFile(c.Path(trackFlagModel))
	if err != nil {
		return err
	}
	tracker, err := tracking.NewTrackerFromConfig(cfg, model, logger)
	if err != nil {
		return err
	}

	out := c.Path(trackFlagOut)
	if err := os.MkdirAll(out, 0o750); err != nil {
		return errors.Wrapf(err, "couldn't create output directory %q", out)
	}

	src := &imagesource.ResizeSource{Source: frames, Width: cfg.SearchAreaWidth, Height: cfg.SearchAreaHeight}
	sink := &frameWriter{dir: out}
	var results tracking.Results
	n, err := tracking.Stream(c.Context, tracker, src, sink, tracking.StreamOptions{
		Hint:           image.Point{c.Int(trackFlagHintX), c.Int(trackFlagHintY)},
		CandidateCount: cfg.Candidates(),
		FramePeriod:    cfg.FramePeriod(),
		OnResult: func(frame int, result tracking.TrackResult) {
			results = append(results, result)
		},
	})
	if err != nil {
		return err
	}
	printf(c.App.Writer, "%s", results.String())
	printf(c.App.Writer, "tracked %d frames, object present in %d, written to %s", n, results.Present(), out)
	return nil
}

// newLogger returns the command's logger and a func that flushes it and closes
// any log file.
func newLogger(c *cli.Context) (logging.Logger, func()) {
	level := logging.INFO
	if c.Bool(debugFlag) {
		level = logging.DEBUG
	}
	var logger logging.Logger
	var closer io.Closer = io.NopCloser(nil)
	switch {
	case c.Path(logFileFlag) != "":
		logger, closer = logging.NewFileLogger("colortrack", level, c.Path(logFileFlag))
	case level == logging.DEBUG:
		logger = logging.NewDebugLogger("colortrack")
	default:
		logger = logging.NewLogger("colortrack")
	}
	return logger, func() {
		//nolint:errcheck
		logger.Sync()
		//nolint:errcheck
		closer.Close()
	}
}

// trackConfig loads the config file, if any, and applies the command's flags
// on top. An unset search area takes the first frame's size.
func trackConfig(c *cli.Context, frames *imagesource.DirSource) (*tracking.Config, error) {
	cfg := &tracking.Config{}
	if path := c.String(configFlag); path != "" {
		var err error
		if cfg, err = tracking.LoadConfig(path); err != nil {
			return nil, err
		}
	}
	if c.IsSet(trackFlagWidth) {
		cfg.SearchAreaWidth = c.Int(trackFlagWidth)
	}
	if c.IsSet(trackFlagHeight) {
		cfg.SearchAreaHeight = c.Int(trackFlagHeight)
	}
	if c.IsSet(trackFlagCandidates) {
		count := c.Int(trackFlagCandidates)
		cfg.CandidateCount = &count
	}
	if c.IsSet(trackFlagSeed) {
		cfg.Seed = c.Int64(trackFlagSeed)
	}

	if cfg.SearchAreaWidth == 0 || cfg.SearchAreaHeight == 0 {
		first, err := rimage.ReadImageFromFile(frames.Files()[0])
		if err != nil {
			return nil, err
		}
		size := first.Bounds().Size()
		if cfg.SearchAreaWidth == 0 {
			cfg.SearchAreaWidth = size.X
		}
		if cfg.SearchAreaHeight == 0 {
			cfg.SearchAreaHeight = size.Y
		}
	}
	if err := cfg.Validate(trackFlagFrames); err != nil {
		return nil, err
	}
	return cfg, nil
}

// frameWriter is a tracking.DisplaySink that numbers frames into a directory.
type frameWriter struct {
	dir  string
	next int
}

func (fw *frameWriter) Show(ctx context.Context, img image.Image) error {
	path := filepath.Join(fw.dir, fmt.Sprintf("frame-%05d.png", fw.next))
	if err := rimage.WriteImageToFile(path, img); err != nil {
		return err
	}
	fw.next++
	return nil
}
