package utils

import (
	"context"
	"fmt"
	"image"
	"math"
	"runtime"
	"sync"

	"go.uber.org/multierr"
	"go.viam.com/utils"
	"golang.org/x/sync/errgroup"
)

// ParallelFactor controls the max level of parallelization. This might be useful
// to set in tests where too much parallelism actually slows tests down in
// aggregate.
var ParallelFactor = runtime.GOMAXPROCS(0)

func init() {
	if ParallelFactor <= 0 {
		ParallelFactor = 1
	}
	quarterProcs := float64(ParallelFactor) * .25
	if quarterProcs > 8 {
		ParallelFactor = int(quarterProcs)
	}
}

// ParallelForEachPixel loops through the image and calls f functions for each [x, y] position.
// The image is divided into N * N blocks, where N is the number of available processor threads. For each block a
// parallel Goroutine is started.
func ParallelForEachPixel(size image.Point, f func(x, y int)) {
	procs := ParallelFactor
	if procs > size.X {
		procs = MaxInt(size.X, 1)
	}
	var waitGroup sync.WaitGroup
	waitGroup.Add(procs * procs)
	for i := 0; i < procs; i++ {
		startX := i * int(math.Floor(float64(size.X)/float64(procs)))
		var endX int
		if i < procs-1 {
			endX = (i + 1) * int(math.Floor(float64(size.X)/float64(procs)))
		} else {
			endX = size.X
		}
		for j := 0; j < procs; j++ {
			startY := j * int(math.Floor(float64(size.Y)/float64(procs)))
			var endY int
			if j < procs-1 {
				endY = (j + 1) * int(math.Floor(float64(size.Y)/float64(procs)))
			} else {
				endY = size.Y
			}
			sX, eX, sY, eY := startX, endX, startY, endY
			utils.PanicCapturingGo(func() {
				defer waitGroup.Done()
				for y := sY; y < eY; y++ {
					for x := sX; x < eX; x++ {
						f(x, y)
					}
				}
			})
		}
	}
	waitGroup.Wait()
}

// IndexedFunc is for RunIndexedInParallel.
type IndexedFunc func(ctx context.Context, index int) error

// RunIndexedInParallel calls f once for every index in [0, n) using at most limit
// goroutines at a time; a limit <= 0 means ParallelFactor. It returns after every
// call has finished. Errors and panics from all calls are combined into the
// returned error; the first failure cancels the context handed to the rest.
func RunIndexedInParallel(ctx context.Context, n, limit int, f IndexedFunc) error {
	if limit <= 0 {
		limit = ParallelFactor
	}

	var bigError error
	var bigErrorMutex sync.Mutex
	storeError := func(err error) {
		bigErrorMutex.Lock()
		defer bigErrorMutex.Unlock()
		bigError = multierr.Combine(bigError, err)
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(limit)
	for i := 0; i < n; i++ {
		index := i
		group.Go(func() (err error) {
			defer func() {
				if thePanic := recover(); thePanic != nil {
					err = fmt.Errorf("got panic running index %d in parallel: %v", index, thePanic)
					storeError(err)
				}
			}()
			if err := f(groupCtx, index); err != nil {
				storeError(err)
				return err
			}
			return nil
		})
	}
	//nolint:errcheck
	group.Wait()
	return bigError
}
