package workers

import (
	"context"
	"sync"

	"github.com/ternarybob/arbor"
)

// Task is one unit of work executed by the pool
type Task func(ctx context.Context) error

// Pool runs independent tasks with bounded concurrency. Used by the
// assessment pipeline to fan out same-stage retrieval calls.
type Pool struct {
	size   int
	logger arbor.ILogger
}

// NewPool creates a pool with the given concurrency bound
func NewPool(size int, logger arbor.ILogger) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{size: size, logger: logger}
}

// Run executes all tasks and waits for completion. The returned slice is
// indexed like tasks; a nil entry means that task succeeded. Task failures
// do not cancel sibling tasks.
func (p *Pool) Run(ctx context.Context, tasks []Task) []error {
	errs := make([]error, len(tasks))
	if len(tasks) == 0 {
		return errs
	}

	jobs := make(chan int, len(tasks))
	var wg sync.WaitGroup

	workers := p.size
	if workers > len(tasks) {
		workers = len(tasks)
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if err := ctx.Err(); err != nil {
					errs[idx] = err
					continue
				}
				errs[idx] = tasks[idx](ctx)
			}
		}()
	}

	for i := range tasks {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	if failed > 0 {
		p.logger.Debug().Int("tasks", len(tasks)).Int("failed", failed).Msg("Pool run completed with failures")
	}

	return errs
}
