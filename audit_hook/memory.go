package audithook

import (
	"context"
	"sync"
)

// MemoryRecorder is an in-memory Recorder for tests and demos.
type MemoryRecorder struct {
	mu     sync.RWMutex
	events []*AuditEvent
}

// NewMemoryRecorder creates an empty in-memory recorder.
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{
		events: make([]*AuditEvent, 0),
	}
}

// Record implements Recorder.
func (r *MemoryRecorder) Record(_ context.Context, event *AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, event)
	return nil
}

// Events returns a copy of the recorded events in arrival order.
func (r *MemoryRecorder) Events() []*AuditEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*AuditEvent, len(r.events))
	copy(result, r.events)
	return result
}

// ByAction returns the recorded events with the given action.
func (r *MemoryRecorder) ByAction(action string) []*AuditEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*AuditEvent, 0)
	for _, e := range r.events {
		if e.Action == action {
			result = append(result, e)
		}
	}
	return result
}

// Len returns the number of recorded events.
func (r *MemoryRecorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.events)
}
