// Package testutil provides test utilities for progress tracking.
package testutil

import (
	"sync"

	"github.com/forgekit/s3mirror/s3types"
)

// MockProgressTracker is a mock implementation of ProgressTracker for testing.
// It is safe for concurrent use since transfer tasks report in parallel.
type MockProgressTracker struct {
	mu sync.Mutex

	Phases         []PhaseStart
	Updates        []ProgressUpdate
	CompleteCalled int
	Errors         []error
}

// PhaseStart records a Phase call.
type PhaseStart struct {
	Phase s3types.TransferPhase
	Total int
}

// ProgressUpdate records a single Update call.
type ProgressUpdate struct {
	Completed int
	Total     int
}

// Phase records the start of a transfer phase.
func (m *MockProgressTracker) Phase(phase s3types.TransferPhase, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Phases = append(m.Phases, PhaseStart{Phase: phase, Total: total})
}

// Update records a progress update.
func (m *MockProgressTracker) Update(completed, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Updates = append(m.Updates, ProgressUpdate{Completed: completed, Total: total})
}

// Complete records the end of the current phase.
func (m *MockProgressTracker) Complete() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CompleteCalled++
}

// Error records a per-item failure.
func (m *MockProgressTracker) Error(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors = append(m.Errors, err)
}

var _ s3types.ProgressTracker = (*MockProgressTracker)(nil)
