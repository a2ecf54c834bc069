// Package tracking follows a color-defined object across frames. A ColorModel
// built from a reference image is back-projected onto every frame, and a set of
// hint-seeded and random windows is converged with mean-shift in parallel. The
// spread of the converged windows' scores decides whether the object is there.
package tracking

import (
	"context"
	"image"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"go.viam.com/colortrack/logging"
	"go.viam.com/colortrack/rimage"
)

// State is the lifecycle state of a Tracker.
type State int

const (
	// StateEmpty has neither a search area nor a color model.
	StateEmpty State = iota
	// StateAreaSet has a search area but no color model.
	StateAreaSet
	// StateReady has both and accepts Track calls.
	StateReady
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateAreaSet:
		return "area-set"
	case StateReady:
		return "ready"
	}
	return "unknown"
}

// Tracker is one tracking session. It owns the search area and the color model
// and tracks frames independently of each other. A Tracker is safe for
// concurrent use; Track calls do not change its state.
type Tracker struct {
	logger logging.Logger
	id     string

	mu     sync.RWMutex
	area   *SearchArea
	model  *ColorModel
	search *ParallelSearch

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewTracker returns an empty Tracker. A seed of 0 seeds candidate generation from the clock.
func NewTracker(params SearchParams, seed int64, logger logging.Logger) (*Tracker, error) {
	id := uuid.NewString()
	logger = logger.Sublogger("tracker").With("session", id)
	search, err := NewParallelSearch(params, logger)
	if err != nil {
		return nil, err
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Tracker{
		logger: logger,
		id:     id,
		search: search,
		rng:    rand.New(rand.NewSource(seed)), //nolint:gosec
	}, nil
}

// NewTrackerFromConfig returns a Ready tracker for the given config and reference image.
func NewTrackerFromConfig(cfg *Config, reference image.Image, logger logging.Logger) (*Tracker, error) {
	if err := cfg.Validate("tracker"); err != nil {
		return nil, err
	}
	t, err := NewTracker(cfg.SearchParams(), cfg.Seed, logger)
	if err != nil {
		return nil, err
	}
	if err := t.SetSearchArea(cfg.SearchAreaWidth, cfg.SearchAreaHeight); err != nil {
		return nil, err
	}
	channels, bins, ranges := cfg.HistogramParams()
	if err := t.SetModelImage(reference, channels, bins, ranges); err != nil {
		return nil, err
	}
	return t, nil
}

// ID identifies the session in logs.
func (t *Tracker) ID() string {
	return t.id
}

// State returns the current lifecycle state.
func (t *Tracker) State() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.stateLocked()
}

func (t *Tracker) stateLocked() State {
	switch {
	case t.area != nil && t.model != nil:
		return StateReady
	case t.area != nil:
		return StateAreaSet
	default:
		return StateEmpty
	}
}

// SearchArea returns the configured search area, if any.
func (t *Tracker) SearchArea() (SearchArea, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.area == nil {
		return SearchArea{}, false
	}
	return *t.area, true
}

// Model returns the color model, or nil before SetModelImage.
func (t *Tracker) Model() *ColorModel {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.model
}

// SetSearchArea sets the frame region windows may occupy. It may be called in
// any state; once a model is set the area must still fit the model's window.
func (t *Tracker) SetSearchArea(width, height int) error {
	area := SearchArea{Width: width, Height: height}
	if err := area.Validate(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.model != nil {
		if size := t.model.WindowSize(); size.X > width || size.Y > height {
			return newInvalidConfigurationError("search area %dx%d is smaller than the model window %v", width, height, size)
		}
	}
	t.area = &area
	t.logger.Debugw("search area set", "width", width, "height", height)
	return nil
}

// SetModelImage builds the color model from reference. The search area must be
// set first, and the model cannot be replaced without a Reset.
func (t *Tracker) SetModelImage(reference image.Image, channels, bins []int, ranges []ValueRange) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if state := t.stateLocked(); state != StateAreaSet {
		return newPreconditionError("SetModelImage", state)
	}
	model, err := BuildColorModel(reference, channels, bins, ranges)
	if err != nil {
		return err
	}
	if size := model.WindowSize(); size.X > t.area.Width || size.Y > t.area.Height {
		return newInvalidConfigurationError("model image %v does not fit search area %dx%d", size, t.area.Width, t.area.Height)
	}
	t.model = model
	t.logger.Debugw("color model built", "channels", channels, "bins", bins, "window", model.WindowSize())
	return nil
}

// Reset discards the color model and the search area.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.area = nil
	t.model = nil
	t.logger.Debug("reset")
}

// Track finds the object in frame. The window at (hintX, hintY), clamped into
// the search area, is always one of the candidateCount candidates. frame must have
// the size of the search area.
func (t *Tracker) Track(ctx context.Context, frame image.Image, candidateCount, hintX, hintY int) (TrackResult, error) {
	t.mu.RLock()
	state := t.stateLocked()
	area, model := t.area, t.model
	t.mu.RUnlock()
	if state != StateReady {
		return TrackResult{}, newPreconditionError("Track", state)
	}
	if frame == nil {
		return TrackResult{}, newInvalidConfigurationError("no frame")
	}
	if size := frame.Bounds().Size(); size.X != area.Width || size.Y != area.Height {
		return TrackResult{}, newDimensionMismatchError("frame %v does not match search area %dx%d", size, area.Width, area.Height)
	}

	start := time.Now()
	lm, err := BackProject(rimage.ToWorkingSpace(frame), model)
	if err != nil {
		return TrackResult{}, err
	}
	projected := time.Now()

	t.rngMu.Lock()
	candidates, err := GenerateCandidates(image.Point{hintX, hintY}, candidateCount, *area, model.WindowSize(), t.rng)
	t.rngMu.Unlock()
	if err != nil {
		return TrackResult{}, err
	}

	result, err := t.search.Search(ctx, lm, candidates)
	if err != nil {
		return TrackResult{}, err
	}
	t.logger.CDebugw(ctx, "tracked frame",
		"present", result.ObjectPresent, "window", result.Window(), "score", result.Score, "spread", result.Spread,
		"backproject", projected.Sub(start), "search", time.Since(projected))
	return result, nil
}
