package workers

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func TestRunExecutesAllTasks(t *testing.T) {
	pool := NewPool(3, arbor.NewLogger())

	var count int64
	tasks := make([]Task, 10)
	for i := range tasks {
		tasks[i] = func(ctx context.Context) error {
			atomic.AddInt64(&count, 1)
			return nil
		}
	}

	errs := pool.Run(context.Background(), tasks)

	require.Len(t, errs, 10)
	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int64(10), atomic.LoadInt64(&count))
}

func TestRunErrorsAreIndexedLikeTasks(t *testing.T) {
	pool := NewPool(2, arbor.NewLogger())

	boom := fmt.Errorf("task failed")
	tasks := []Task{
		func(ctx context.Context) error { return nil },
		func(ctx context.Context) error { return boom },
		func(ctx context.Context) error { return nil },
	}

	errs := pool.Run(context.Background(), tasks)

	require.Len(t, errs, 3)
	assert.NoError(t, errs[0])
	assert.Equal(t, boom, errs[1])
	assert.NoError(t, errs[2])
}

func TestRunFailureDoesNotCancelSiblings(t *testing.T) {
	pool := NewPool(1, arbor.NewLogger())

	var ran int64
	tasks := []Task{
		func(ctx context.Context) error { return fmt.Errorf("first fails") },
		func(ctx context.Context) error {
			atomic.AddInt64(&ran, 1)
			return nil
		},
	}

	pool.Run(context.Background(), tasks)
	assert.Equal(t, int64(1), atomic.LoadInt64(&ran))
}

func TestRunBoundsConcurrency(t *testing.T) {
	pool := NewPool(2, arbor.NewLogger())

	var mu sync.Mutex
	active, peak := 0, 0
	gate := make(chan struct{})

	tasks := make([]Task, 6)
	for i := range tasks {
		tasks[i] = func(ctx context.Context) error {
			mu.Lock()
			active++
			if active > peak {
				peak = active
			}
			mu.Unlock()

			<-gate

			mu.Lock()
			active--
			mu.Unlock()
			return nil
		}
	}

	go func() {
		close(gate)
	}()

	pool.Run(context.Background(), tasks)

	mu.Lock()
	defer mu.Unlock()
	assert.LessOrEqual(t, peak, 2)
}

func TestRunWithCancelledContext(t *testing.T) {
	pool := NewPool(2, arbor.NewLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	errs := pool.Run(ctx, []Task{
		func(ctx context.Context) error {
			ran = true
			return nil
		},
	})

	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], context.Canceled)
	assert.False(t, ran)
}

func TestRunEmptyTaskList(t *testing.T) {
	pool := NewPool(4, arbor.NewLogger())
	assert.Empty(t, pool.Run(context.Background(), nil))
}

func TestNewPoolClampsSize(t *testing.T) {
	pool := NewPool(0, arbor.NewLogger())
	// A zero or negative bound still runs tasks one at a time.
	errs := pool.Run(context.Background(), []Task{
		func(ctx context.Context) error { return nil },
	})
	require.Len(t, errs, 1)
	assert.NoError(t, errs[0])
}
