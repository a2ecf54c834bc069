package tracking

import (
	"context"
	"image"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/colortrack/logging"
)

func newTestSearch(t *testing.T, params SearchParams) *ParallelSearch {
	t.Helper()
	ps, err := NewParallelSearch(params, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	return ps
}

func TestSearchFindsBlock(t *testing.T) {
	lm := blockMap(320, 240, 255, patchRect)
	ps := newTestSearch(t, DefaultSearchParams())
	candidates := []Window{
		{X: 0, Y: 0, Width: 40, Height: 30},
		{X: 130, Y: 65, Width: 40, Height: 30},
		{X: 250, Y: 200, Width: 40, Height: 30},
	}
	result, err := ps.Search(context.Background(), lm, candidates)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, result.ObjectPresent, test.ShouldBeTrue)
	test.That(t, result.Window(), test.ShouldResemble, Window{X: 150, Y: 80, Width: 40, Height: 30})
	test.That(t, result.Score, test.ShouldEqual, 255.0)
	test.That(t, result.Spread, test.ShouldBeGreaterThan, DefaultPresenceThreshold)
}

func TestSearchUniformMapIsAbsent(t *testing.T) {
	lm := blockMap(100, 100, 100, image.Rect(0, 0, 100, 100))
	ps := newTestSearch(t, DefaultSearchParams())
	candidates, err := GenerateCandidates(image.Point{}, 20, SearchArea{100, 100}, image.Point{20, 20}, rand.New(rand.NewSource(1)))
	test.That(t, err, test.ShouldBeNil)

	result, err := ps.Search(context.Background(), lm, candidates)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, result, test.ShouldResemble, TrackResult{})
}

func TestSearchThreshold(t *testing.T) {
	lm := blockMap(320, 240, 255, patchRect)
	candidates := []Window{
		{X: 0, Y: 0, Width: 40, Height: 30},
		{X: 130, Y: 65, Width: 40, Height: 30},
	}
	// scores of 0 and 255 spread by 127.5
	params := DefaultSearchParams()
	params.PresenceThreshold = 128
	result, err := newTestSearch(t, params).Search(context.Background(), lm, candidates)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, result.ObjectPresent, test.ShouldBeFalse)
	test.That(t, result.Window(), test.ShouldResemble, Window{})
	test.That(t, result.Spread, test.ShouldEqual, 127.5)

	params.PresenceThreshold = 127
	result, err = newTestSearch(t, params).Search(context.Background(), lm, candidates)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, result.ObjectPresent, test.ShouldBeTrue)
}

func TestSearchTieGoesToLowestIndex(t *testing.T) {
	left := image.Rect(20, 100, 60, 130)
	right := image.Rect(260, 100, 300, 130)
	lm := blockMap(320, 240, 255, left, right)
	ps := newTestSearch(t, DefaultSearchParams())

	nowhere := Window{X: 140, Y: 0, Width: 40, Height: 30}
	nearLeft := Window{X: 30, Y: 95, Width: 40, Height: 30}
	nearRight := Window{X: 250, Y: 105, Width: 40, Height: 30}

	result, err := ps.Search(context.Background(), lm, []Window{nowhere, nearLeft, nearRight})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, result.ObjectPresent, test.ShouldBeTrue)
	test.That(t, result.Window().Rect(), test.ShouldResemble, left)

	result, err = ps.Search(context.Background(), lm, []Window{nowhere, nearRight, nearLeft})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, result.Window().Rect(), test.ShouldResemble, right)
}

func TestSearchDeterministicAcrossWorkers(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	lm := &LikelihoodMap{data: make([]uint8, 160*120), width: 160, height: 120}
	for i := range lm.data {
		lm.data[i] = uint8(rng.Intn(256))
	}
	candidates, err := GenerateCandidates(image.Point{10, 10}, 32, SearchArea{160, 120}, image.Point{24, 18}, rng)
	test.That(t, err, test.ShouldBeNil)

	var results []TrackResult
	for _, workers := range []int{0, 1, 3, 32} {
		params := DefaultSearchParams()
		params.PresenceThreshold = 0
		params.Workers = workers
		result, err := newTestSearch(t, params).Search(context.Background(), lm, candidates)
		test.That(t, err, test.ShouldBeNil)
		results = append(results, result)
	}
	for _, r := range results[1:] {
		test.That(t, cmp.Diff(results[0], r), test.ShouldBeEmpty)
	}
}

func TestSearchErrors(t *testing.T) {
	lm := blockMap(50, 50, 255, image.Rect(0, 0, 10, 10))
	ps := newTestSearch(t, DefaultSearchParams())

	_, err := ps.Search(context.Background(), lm, nil)
	test.That(t, errors.Is(err, ErrInvalidConfiguration), test.ShouldBeTrue)

	_, err = ps.Search(context.Background(), lm, []Window{{X: 45, Y: 0, Width: 10, Height: 10}})
	test.That(t, errors.Is(err, ErrInvalidConfiguration), test.ShouldBeTrue)

	_, err = ps.Search(context.Background(), nil, []Window{{Width: 10, Height: 10}})
	test.That(t, errors.Is(err, ErrInvalidConfiguration), test.ShouldBeTrue)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ps.Search(ctx, lm, []Window{{X: 20, Y: 20, Width: 10, Height: 10}})
	test.That(t, errors.Is(err, context.Canceled), test.ShouldBeTrue)

	for _, params := range []SearchParams{
		{Criteria: TermCriteria{MaxIterations: 0, Epsilon: 1}},
		{Criteria: DefaultTermCriteria, PresenceThreshold: -1},
		{Criteria: DefaultTermCriteria, Workers: -2},
	} {
		_, err := NewParallelSearch(params, logging.NewTestLogger(t))
		test.That(t, errors.Is(err, ErrInvalidConfiguration), test.ShouldBeTrue)
	}
}
