package tracking

import (
	"context"
	"math"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"go.viam.com/colortrack/logging"
	"go.viam.com/colortrack/utils"
)

// TrackResult is the outcome of tracking one frame. When ObjectPresent is false
// the window fields are all zero. Score is the mean likelihood inside the
// reported window and Spread the population standard deviation of all
// candidate scores; both are on the [0, HistogramCeiling] scale.
type TrackResult struct {
	X, Y          int
	Width, Height int
	ObjectPresent bool
	Score         float64
	Spread        float64
}

// Window returns the reported window.
func (r TrackResult) Window() Window {
	return Window{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

// SearchParams configures a ParallelSearch.
type SearchParams struct {
	Criteria TermCriteria
	// PresenceThreshold is the smallest candidate score spread that counts as a
	// localized target.
	PresenceThreshold float64
	// Workers bounds how many candidates converge at once. 0 picks
	// min(candidates, utils.ParallelFactor).
	Workers int
}

// DefaultSearchParams returns the default search parameters.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Criteria:          DefaultTermCriteria,
		PresenceThreshold: DefaultPresenceThreshold,
	}
}

// Validate checks the parameters.
func (sp SearchParams) Validate() error {
	if err := sp.Criteria.Validate(); err != nil {
		return err
	}
	if sp.PresenceThreshold < 0 || math.IsNaN(sp.PresenceThreshold) {
		return newInvalidConfigurationError("presence threshold must not be negative, got %v", sp.PresenceThreshold)
	}
	if sp.Workers < 0 {
		return newInvalidConfigurationError("workers must not be negative, got %d", sp.Workers)
	}
	return nil
}

// ParallelSearch converges every candidate window against a shared
// LikelihoodMap concurrently and decides whether the target is present.
type ParallelSearch struct {
	params SearchParams
	logger logging.Logger
}

// NewParallelSearch returns a ParallelSearch with validated parameters.
func NewParallelSearch(params SearchParams, logger logging.Logger) (*ParallelSearch, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &ParallelSearch{params: params, logger: logger}, nil
}

// Params returns the parameters the search was built with.
func (ps *ParallelSearch) Params() SearchParams {
	return ps.params
}

// Search runs mean-shift from every candidate, scores each converged window by
// its mean likelihood and applies the presence rule: if the population standard
// deviation of the scores is below the presence threshold nothing is reported,
// otherwise the best scoring window is, ties going to the lowest candidate index.
func (ps *ParallelSearch) Search(ctx context.Context, lm *LikelihoodMap, candidates []Window) (TrackResult, error) {
	if len(candidates) == 0 {
		return TrackResult{}, newInvalidConfigurationError("no candidates to search")
	}
	if lm == nil {
		return TrackResult{}, newInvalidConfigurationError("no likelihood map")
	}
	for i, c := range candidates {
		if !c.In(lm.Bounds()) || c.Width <= 0 || c.Height <= 0 {
			return TrackResult{}, newInvalidConfigurationError("candidate %d %v is not inside the %dx%d map",
				i, c, lm.Width(), lm.Height())
		}
	}

	// each worker writes only its own index
	converged := make([]Window, len(candidates))
	iterations := make([]int, len(candidates))
	scores := make([]float64, len(candidates))

	workers := ps.params.Workers
	if workers == 0 {
		workers = utils.MinInt(len(candidates), utils.ParallelFactor)
	}
	err := utils.RunIndexedInParallel(ctx, len(candidates), workers, func(ctx context.Context, i int) error {
		w, n, err := Converge(ctx, lm, candidates[i], ps.params.Criteria)
		if err != nil {
			return err
		}
		converged[i] = w
		iterations[i] = n
		scores[i] = lm.Mean(w)
		return nil
	})
	if err != nil {
		return TrackResult{}, errors.Wrap(err, "candidate search failed")
	}

	spread, err := stats.StandardDeviationPopulation(scores)
	if err != nil {
		return TrackResult{}, err
	}
	if ps.logger != nil {
		ps.logger.CDebugw(ctx, "candidates converged",
			"windows", converged, "iterations", iterations, "scores", scores, "spread", spread)
	}
	if spread < ps.params.PresenceThreshold {
		return TrackResult{Spread: spread}, nil
	}

	best := floats.MaxIdx(scores)
	w := converged[best]
	return TrackResult{
		X:             w.X,
		Y:             w.Y,
		Width:         w.Width,
		Height:        w.Height,
		ObjectPresent: true,
		Score:         scores[best],
		Spread:        spread,
	}, nil
}
