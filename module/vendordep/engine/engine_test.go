package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeJob struct {
	name string
	run  func(ctx context.Context) error
}

func (j *fakeJob) Info() string                { return j.name }
func (j *fakeJob) Run(ctx context.Context) error { return j.run(ctx) }

func TestExecuteRunsAllJobs(t *testing.T) {
	var ran int32
	jobs := make([]Job, 10)
	for i := range jobs {
		jobs[i] = &fakeJob{
			name: fmt.Sprintf("job-%d", i),
			run: func(ctx context.Context) error {
				atomic.AddInt32(&ran, 1)
				return nil
			},
		}
	}

	if err := NewEngine(3, jobs).Execute(context.Background()); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got := atomic.LoadInt32(&ran); got != 10 {
		t.Errorf("ran %d jobs, want 10", got)
	}
}

func TestExecuteBoundsConcurrency(t *testing.T) {
	const limit = 2
	var inFlight, peak int32
	var mu sync.Mutex

	jobs := make([]Job, 8)
	for i := range jobs {
		jobs[i] = &fakeJob{
			name: fmt.Sprintf("job-%d", i),
			run: func(ctx context.Context) error {
				n := atomic.AddInt32(&inFlight, 1)
				mu.Lock()
				if n > peak {
					peak = n
				}
				mu.Unlock()
				time.Sleep(10 * time.Millisecond)
				atomic.AddInt32(&inFlight, -1)
				return nil
			},
		}
	}

	if err := NewEngine(limit, jobs).Execute(context.Background()); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if peak > limit {
		t.Errorf("observed %d concurrent jobs, limit is %d", peak, limit)
	}
}

func TestExecuteCollectsAllFailures(t *testing.T) {
	boom := errors.New("boom")
	jobs := []Job{
		&fakeJob{name: "ok", run: func(ctx context.Context) error { return nil }},
		&fakeJob{name: "bad-one", run: func(ctx context.Context) error { return boom }},
		&fakeJob{name: "bad-two", run: func(ctx context.Context) error { return boom }},
	}

	err := NewEngine(2, jobs).Execute(context.Background())
	if err == nil {
		t.Fatal("Execute() = nil, want joined error")
	}
	if !errors.Is(err, boom) {
		t.Errorf("joined error does not wrap job failure: %v", err)
	}
	if !strings.Contains(err.Error(), "bad-one") || !strings.Contains(err.Error(), "bad-two") {
		t.Errorf("joined error misses a failed job: %v", err)
	}
}

func TestExecuteCanceledContextDispatchesNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran int32
	jobs := []Job{
		&fakeJob{name: "never", run: func(ctx context.Context) error {
			atomic.AddInt32(&ran, 1)
			return nil
		}},
	}

	err := NewEngine(1, jobs).Execute(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Execute() = %v, want context.Canceled", err)
	}
	if atomic.LoadInt32(&ran) != 0 {
		t.Error("job ran despite canceled context")
	}
}

func TestExecuteNoJobs(t *testing.T) {
	if err := NewEngine(4, nil).Execute(context.Background()); err != nil {
		t.Errorf("Execute() with no jobs = %v, want nil", err)
	}
}
