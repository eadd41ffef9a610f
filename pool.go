package admitdoc

import (
	"context"
	"runtime"
	"sync"
	"time"
)

// Worker sizing constants.
const (
	// MinWorkers ensures at least one worker is available.
	MinWorkers = 1

	// MaxWorkers caps concurrent renders; each holds a full PDF in memory.
	MaxWorkers = 8
)

// ResolveWorkers determines the batch concurrency.
// Priority: explicit workers > GOMAXPROCS-based calculation.
func ResolveWorkers(workers int) int {
	if workers > 0 {
		return workers
	}

	// GOMAXPROCS is adjusted by automaxprocs in containers.
	n := runtime.GOMAXPROCS(0)
	if n < MinWorkers {
		return MinWorkers
	}
	if n > MaxWorkers {
		return MaxWorkers
	}
	return n
}

// BatchResult is the outcome of one input of GenerateBatch.
type BatchResult struct {
	Index    int
	Result   *Result
	Err      error
	Duration time.Duration
}

// GenerateBatch generates every input with at most workers concurrent
// renders and returns one result per input, in input order. Inputs not yet
// started when ctx is done fail with ctx.Err().
func (g *Generator) GenerateBatch(ctx context.Context, inputs []Input, workers int) []BatchResult {
	if len(inputs) == 0 {
		return nil
	}

	concurrency := min(ResolveWorkers(workers), len(inputs))
	results := make([]BatchResult, len(inputs))
	jobs := make(chan int, len(inputs))

	var wg sync.WaitGroup
	for range concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if err := ctx.Err(); err != nil {
					results[idx] = BatchResult{Index: idx, Err: err}
					continue
				}
				start := time.Now()
				res, err := g.Generate(ctx, inputs[idx])
				results[idx] = BatchResult{Index: idx, Result: res, Err: err, Duration: time.Since(start)}
			}
		}()
	}

	for i := range inputs {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}
