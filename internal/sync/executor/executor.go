// Package executor runs per-object transfer tasks with bounded concurrency.
//
// A channel-based semaphore caps the number of in-flight tasks. Each item
// gets exactly one task; a failing task records its error and releases its
// permit without disturbing its siblings. Run returns only after every
// launched task has reached a terminal state.
package executor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/forgekit/s3mirror/s3types"
)

// DefaultConcurrency caps in-flight transfers when no explicit limit is set.
const DefaultConcurrency = 30

// TaskFunc performs the transfer for a single key.
type TaskFunc func(ctx context.Context, key string) error

// ItemError records a single failed item.
type ItemError struct {
	// Key is the item that failed
	Key string

	// Err is the error the task returned
	Err error
}

// RunResult contains the outcome of a Run call.
type RunResult struct {
	// Completed is the number of items whose task returned nil
	Completed int

	// Failures contains one entry per failed item
	Failures []ItemError
}

// Executor schedules transfer tasks under a fixed concurrency cap.
type Executor struct {
	maxConcurrency int
	semaphore      chan struct{}

	progressTracker s3types.ProgressTracker
}

// New creates an executor with the specified concurrency limit.
// Limits below 1 are normalized to 1.
func New(maxConcurrency int) *Executor {
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}

	return &Executor{
		maxConcurrency: maxConcurrency,
		semaphore:      make(chan struct{}, maxConcurrency),
	}
}

// WithProgressTracker sets the progress tracker for the executor.
func (e *Executor) WithProgressTracker(tracker s3types.ProgressTracker) *Executor {
	e.progressTracker = tracker
	return e
}

// Run executes fn once per key with at most maxConcurrency tasks in flight.
// Task errors are collected, never propagated to sibling tasks. Context
// cancellation stops admission of new tasks; tasks already running are
// waited for. With zero keys Run returns immediately.
func (e *Executor) Run(ctx context.Context, keys []string, fn TaskFunc) *RunResult {
	result := &RunResult{}
	if len(keys) == 0 {
		return result
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		completed atomic.Int64
		done      atomic.Int64
	)
	total := len(keys)

	for i, key := range keys {
		// Acquire a permit before spawning so goroutine count never
		// exceeds the cap.
		select {
		case e.semaphore <- struct{}{}:
		case <-ctx.Done():
			mu.Lock()
			for _, remaining := range keys[i:] {
				result.Failures = append(result.Failures, ItemError{
					Key: remaining,
					Err: fmt.Errorf("task not started: %w", ctx.Err()),
				})
			}
			mu.Unlock()
			wg.Wait()
			result.Completed = int(completed.Load())
			return result
		}

		wg.Add(1)
		go func(key string) {
			defer func() {
				<-e.semaphore
				wg.Done()
			}()

			err := fn(ctx, key)
			if err != nil {
				mu.Lock()
				result.Failures = append(result.Failures, ItemError{Key: key, Err: err})
				mu.Unlock()
				if e.progressTracker != nil {
					e.progressTracker.Error(err)
				}
			} else {
				completed.Add(1)
			}

			if e.progressTracker != nil {
				e.progressTracker.Update(int(done.Add(1)), total)
			}
		}(key)
	}

	wg.Wait()

	result.Completed = int(completed.Load())
	return result
}

// ValidateConcurrency checks if the concurrency settings are valid.
func (e *Executor) ValidateConcurrency() error {
	if e.maxConcurrency <= 0 {
		return fmt.Errorf("max concurrency must be positive, got %d", e.maxConcurrency)
	}
	if e.maxConcurrency > 100 {
		return fmt.Errorf("max concurrency too high: %d (recommended: <= 100)", e.maxConcurrency)
	}
	return nil
}

// GetStats returns current execution statistics.
func (e *Executor) GetStats() Stats {
	return Stats{
		MaxConcurrency:     e.maxConcurrency,
		CurrentConcurrency: len(e.semaphore),
		AvailableSlots:     cap(e.semaphore) - len(e.semaphore),
	}
}

// Stats contains statistics about the executor's current state.
type Stats struct {
	// MaxConcurrency is the maximum allowed concurrent operations
	MaxConcurrency int

	// CurrentConcurrency is the current number of running operations
	CurrentConcurrency int

	// AvailableSlots is the number of available concurrency slots
	AvailableSlots int
}
