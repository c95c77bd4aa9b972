package store

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/benkyo-app/benkyo/internal/notify"
)

type saveRecorder struct {
	mu    sync.Mutex
	saves int
	err   error
}

func (r *saveRecorder) save(Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	return r.err
}

func (r *saveRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

type notifyRecorder struct {
	mu       sync.Mutex
	messages []string
}

func (n *notifyRecorder) Notify(message string, _ notify.Severity) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

func (n *notifyRecorder) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages)
}

func emptySnapshot() Snapshot { return Snapshot{} }

func TestCoalescingWriter_BurstCoalescesToOneSave(t *testing.T) {
	recorder := &saveRecorder{}
	writer := NewCoalescingWriter(30*time.Millisecond, emptySnapshot, recorder.save, notify.Nop{})
	defer writer.Stop()

	// A burst of rapid triggers keeps resetting the pending slot.
	for i := 0; i < 10; i++ {
		writer.Trigger()
		time.Sleep(2 * time.Millisecond)
	}

	assert.Equal(t, 0, recorder.count())
	assert.Eventually(t, func() bool { return recorder.count() == 1 }, time.Second, 5*time.Millisecond)

	// No further save without another trigger.
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, recorder.count())
}

func TestCoalescingWriter_FlushWritesImmediately(t *testing.T) {
	recorder := &saveRecorder{}
	writer := NewCoalescingWriter(time.Hour, emptySnapshot, recorder.save, notify.Nop{})
	defer writer.Stop()

	writer.Trigger()
	assert.NoError(t, writer.Flush())
	assert.Equal(t, 1, recorder.count())

	// The pending timer was canceled by Flush.
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, recorder.count())
}

func TestCoalescingWriter_StopCancelsPendingSave(t *testing.T) {
	recorder := &saveRecorder{}
	writer := NewCoalescingWriter(20*time.Millisecond, emptySnapshot, recorder.save, notify.Nop{})

	writer.Trigger()
	writer.Stop()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, recorder.count())
}

func TestCoalescingWriter_SaveFailureNotifies(t *testing.T) {
	recorder := &saveRecorder{err: fmt.Errorf("disk full")}
	notifier := &notifyRecorder{}
	writer := NewCoalescingWriter(10*time.Millisecond, emptySnapshot, recorder.save, notifier)
	defer writer.Stop()

	writer.Trigger()

	assert.Eventually(t, func() bool { return notifier.count() == 1 }, time.Second, 5*time.Millisecond)
}
