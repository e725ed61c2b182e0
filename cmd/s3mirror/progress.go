package main

import (
	"io"
	"sync"

	"github.com/schollz/progressbar/v3"

	"github.com/forgekit/s3mirror/s3types"
)

// barTracker renders one progress bar per transfer phase.
type barTracker struct {
	mu  sync.Mutex
	w   io.Writer
	bar *progressbar.ProgressBar
}

func newBarTracker(w io.Writer) *barTracker {
	return &barTracker{w: w}
}

func (t *barTracker) Phase(phase s3types.TransferPhase, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription(string(phase)),
		progressbar.OptionSetWriter(t.w),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func (t *barTracker) Update(completed, _ int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.bar != nil {
		_ = t.bar.Set(completed)
	}
}

func (t *barTracker) Complete() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.bar != nil {
		_ = t.bar.Finish()
		t.bar = nil
	}
}

// Error is a no-op; failures are reported in the run summary.
func (t *barTracker) Error(error) {}

var _ s3types.ProgressTracker = (*barTracker)(nil)
