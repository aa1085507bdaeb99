// Package engine runs a fixed set of jobs on a bounded worker pool. Jobs are
// dispatched in slice order, completion order is unconstrained, and the
// caller's per-job output lives in slots the jobs own themselves, so results
// come back deterministic regardless of timing.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Job is one unit of work. Run must honor ctx cancellation.
type Job interface {
	Info() string
	Run(ctx context.Context) error
}

// DefaultConcurrency bounds in-flight downloads when the caller does not
// say otherwise. Kept small to avoid hammering vendor Maven hosts.
const DefaultConcurrency = 4

type Engine struct {
	concurrency int
	jobs        []Job
}

func NewEngine(concurrency int, jobs []Job) *Engine {
	return &Engine{
		concurrency: concurrency,
		jobs:        jobs,
	}
}

// Execute runs every job, bounded by the concurrency limit. A job failure
// never cancels siblings; the joined error aggregates all failures.
// Cancellation of ctx stops dispatching new jobs and lets in-flight ones
// finish or abort on their own.
func (e *Engine) Execute(ctx context.Context) error {
	mainLogger := log.With().
		Int("concurrency", e.concurrency).
		Int("total_jobs", len(e.jobs)).
		Logger()

	if len(e.jobs) == 0 {
		mainLogger.Debug().Msg("No jobs to execute")
		return nil
	}

	if e.concurrency <= 0 {
		e.concurrency = DefaultConcurrency
	}

	traceID := uuid.New().String()
	mainLogger = mainLogger.With().Str("trace_id", traceID).Logger()
	mainLogger.Info().Msg("Starting engine execution")

	sem := make(chan struct{}, e.concurrency)
	errCh := make(chan error, len(e.jobs))
	var wg sync.WaitGroup

	for i, jb := range e.jobs {
		// Stop dispatching once the caller has given up.
		select {
		case <-ctx.Done():
			errCh <- fmt.Errorf("job %d|%s: not dispatched: %w", i, jb.Info(), ctx.Err())
			continue
		default:
		}

		i, jb := i, jb
		wg.Add(1)
		go func() {
			defer wg.Done()
			select {
			case sem <- struct{}{}: // acquire
			case <-ctx.Done():
				errCh <- fmt.Errorf("job %d|%s: not started: %w", i, jb.Info(), ctx.Err())
				return
			}
			defer func() { <-sem }() // release

			jobLogger := mainLogger.With().
				Int("job_index", i).
				Str("job_info", jb.Info()).
				Logger()

			jobLogger.Debug().Msg("Starting job")
			start := time.Now()

			if err := jb.Run(ctx); err != nil {
				jobLogger.Warn().
					Err(err).
					Dur("duration", time.Since(start)).
					Msg("Job terminated with error")
				errCh <- fmt.Errorf("job %d|%s: %w", i, jb.Info(), err)
				return
			}

			jobLogger.Debug().
				Dur("duration", time.Since(start)).
				Msg("Job completed")
		}()
	}

	wg.Wait()
	close(errCh)

	var errs []error
	for err := range errCh {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
