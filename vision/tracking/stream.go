package tracking

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"

	"go.viam.com/colortrack/rimage"
)

// FrameSource produces the frames to track. release is called once the frame
// has been tracked and shown. A nil or empty frame ends the sequence.
type FrameSource interface {
	Next(ctx context.Context) (img image.Image, release func(), err error)
}

// DisplaySink presents annotated frames.
type DisplaySink interface {
	Show(ctx context.Context, img image.Image) error
}

// DisplaySinkFunc adapts a function to a DisplaySink.
type DisplaySinkFunc func(ctx context.Context, img image.Image) error

// Show calls f.
func (f DisplaySinkFunc) Show(ctx context.Context, img image.Image) error {
	return f(ctx, img)
}

// StreamOptions configures Stream.
type StreamOptions struct {
	// Hint is where the first frame's hint window sits.
	Hint image.Point
	// CandidateCount defaults to DefaultCandidateCount.
	CandidateCount int
	// FramePeriod is how long a frame may take before it is logged as slow. 0 disables.
	FramePeriod time.Duration
	// Clock times frames; defaults to the wall clock.
	Clock clock.Clock
	// OnResult, when set, sees every result in frame order.
	OnResult func(frame int, result TrackResult)
}

// Stream tracks every frame of src, showing each annotated frame on sink. The
// hint follows the object: it moves to the reported window whenever the object
// is present and stays put otherwise. Stream returns the number of frames
// tracked when src ends, ctx is done, or anything fails.
func Stream(ctx context.Context, t *Tracker, src FrameSource, sink DisplaySink, opts StreamOptions) (int, error) {
	if opts.CandidateCount == 0 {
		opts.CandidateCount = DefaultCandidateCount
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	hint := opts.Hint
	frames := 0
	for {
		if err := ctx.Err(); err != nil {
			return frames, err
		}
		done, err := func() (bool, error) {
			start := opts.Clock.Now()
			frame, release, err := src.Next(ctx)
			if err != nil {
				return false, errors.Wrap(err, "couldn't get next frame")
			}
			if release != nil {
				defer release()
			}
			if frame == nil || frame.Bounds().Empty() {
				return true, nil
			}

			result, err := t.Track(ctx, frame, opts.CandidateCount, hint.X, hint.Y)
			if err != nil {
				return false, errors.Wrapf(err, "frame %d", frames)
			}
			if opts.OnResult != nil {
				opts.OnResult(frames, result)
			}
			if result.ObjectPresent {
				hint = image.Point{result.X, result.Y}
			}
			if sink != nil {
				annotated := rimage.Annotate(frame, result.Window().Rect(), result.ObjectPresent, resultLabel(result))
				if err := sink.Show(ctx, annotated); err != nil {
					return false, errors.Wrapf(err, "couldn't show frame %d", frames)
				}
			}

			if elapsed := opts.Clock.Since(start); opts.FramePeriod > 0 && elapsed > opts.FramePeriod {
				t.logger.Warnw("frame took longer than the frame period",
					"frame", frames, "elapsed", elapsed, "period", opts.FramePeriod)
			}
			frames++
			return false, nil
		}()
		if err != nil || done {
			return frames, err
		}
	}
}

func resultLabel(result TrackResult) string {
	if !result.ObjectPresent {
		return fmt.Sprintf("no target (spread %.1f)", result.Spread)
	}
	return fmt.Sprintf("(%d,%d) score %.1f spread %.1f", result.X, result.Y, result.Score, result.Spread)
}
