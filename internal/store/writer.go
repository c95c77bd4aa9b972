package store

import (
	"sync"
	"time"

	"github.com/benkyo-app/benkyo/internal/notify"
)

// DefaultQuiescence is the pause after the last mutation before a save fires.
const DefaultQuiescence = 3 * time.Second

// CoalescingWriter batches bursts of store mutations into a single save. It
// keeps one pending-write slot: every Trigger resets the timer, so at most one
// save runs per quiescence interval. A failed save is surfaced as a
// notification; in-memory state stays authoritative and the next trigger
// retries naturally.
type CoalescingWriter struct {
	delay    time.Duration
	snapshot func() Snapshot
	save     func(Snapshot) error
	notifier notify.Notifier

	mu    sync.Mutex
	timer *time.Timer
}

// NewCoalescingWriter wires a snapshot source to a save function. A delay of
// zero falls back to DefaultQuiescence.
func NewCoalescingWriter(delay time.Duration, snapshot func() Snapshot, save func(Snapshot) error, notifier notify.Notifier) *CoalescingWriter {
	if delay <= 0 {
		delay = DefaultQuiescence
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &CoalescingWriter{
		delay:    delay,
		snapshot: snapshot,
		save:     save,
		notifier: notifier,
	}
}

// Trigger schedules a save after the quiescence delay, canceling any pending
// one.
func (w *CoalescingWriter) Trigger() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, w.write)
}

// Flush cancels any pending save and writes immediately. Used on shutdown so
// the last burst of answers is never lost to the debounce window.
func (w *CoalescingWriter) Flush() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()
	return w.save(w.snapshot())
}

// Stop cancels any pending save without writing.
func (w *CoalescingWriter) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

func (w *CoalescingWriter) write() {
	if err := w.save(w.snapshot()); err != nil {
		w.notifier.Notify("saving progress failed: "+err.Error(), notify.SeverityWarning)
	}
}
