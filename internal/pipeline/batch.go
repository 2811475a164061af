package pipeline

import (
	"context"
	"runtime"
	"sync"
)

const maxWorkers = 4

// ConvertBatch processes every path and returns exactly one outcome per
// input, in input order. The encoder path is validated once up front; an
// invalid path aborts the whole batch with ErrInvalidEncoderPath before any
// file is touched. Per-file failures never stop the remaining files.
//
// Files are fanned out to a bounded worker pool so a large export neither
// serializes on slow encodes nor launches an unbounded number of texconv
// processes.
func (p *Pipeline) ConvertBatch(ctx context.Context, paths []string) ([]Outcome, error) {
	if err := p.ValidateEncoder(); err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, nil
	}

	workers := p.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
		if workers > maxWorkers {
			workers = maxWorkers
		}
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	type job struct {
		index int
		path  string
	}

	jobs := make(chan job, len(paths))
	for i, path := range paths {
		jobs <- job{index: i, path: path}
	}
	close(jobs)

	// Index-addressed so outcome order always matches input order,
	// whatever the worker scheduling.
	outcomes := make([]Outcome, len(paths))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				select {
				case <-ctx.Done():
					outcomes[j.index] = Outcome{
						Path:    j.path,
						Status:  StatusFailed,
						Message: "Conversion cancelled",
					}
				default:
					outcomes[j.index] = p.Convert(ctx, j.path)
				}
				if p.onOutcome != nil {
					p.onOutcome(outcomes[j.index])
				}
			}
		}()
	}
	wg.Wait()

	return outcomes, nil
}
