// Package progress carries status events from long-running steps (hashing,
// pairwise comparison) to whoever is rendering them.
package progress

import "fmt"

// Phase names the step an Event belongs to.
type Phase string

const (
	PhaseHash    Phase = "hash"
	PhaseCompare Phase = "compare"
	PhaseExport  Phase = "export"
)

// Status is the state of a phase.
type Status string

const (
	StatusPending  Status = "pending"
	StatusWorking  Status = "working"
	StatusComplete Status = "complete"
	StatusFailed   Status = "failed"
)

// Event is a single progress update. Done and Total are unit counts within
// the phase (files for hashing, pair rows for comparison); Total is 0 when
// unknown.
type Event struct {
	Phase   Phase
	Status  Status
	Done    int
	Total   int
	Message string
}

// Func receives progress events. Implementations must be safe for
// concurrent use; hashing and comparison workers call it from goroutines.
type Func func(Event)

// Emit calls fn with ev if fn is non-nil.
func (fn Func) Emit(ev Event) {
	if fn != nil {
		fn(ev)
	}
}

// Reporter emits progress events through a buffered channel.
type Reporter struct {
	ch chan Event
}

// NewReporter creates a Reporter with a buffered channel of size 64.
func NewReporter() *Reporter {
	return &Reporter{
		ch: make(chan Event, 64),
	}
}

// Emit sends a progress event in a non-blocking fashion.
// If the channel is full, the event is dropped.
func (r *Reporter) Emit(ev Event) {
	select {
	case r.ch <- ev:
	default:
	}
}

// Subscribe returns a read-only channel for consuming progress events.
func (r *Reporter) Subscribe() <-chan Event {
	return r.ch
}

// Close closes the event channel.
func (r *Reporter) Close() {
	close(r.ch)
}

// Format renders an Event as a human-readable status line.
func Format(ev Event) string {
	counter := ""
	if ev.Total > 0 {
		counter = fmt.Sprintf(" [%d/%d]", ev.Done, ev.Total)
	}
	switch ev.Status {
	case StatusPending:
		return fmt.Sprintf("  ○ %s%s (pending)", ev.Phase, counter)
	case StatusWorking:
		return fmt.Sprintf("  ● %s%s...", ev.Phase, counter)
	case StatusComplete:
		return fmt.Sprintf("  ✓ %s%s complete", ev.Phase, counter)
	case StatusFailed:
		return fmt.Sprintf("  ✗ %s failed: %s", ev.Phase, ev.Message)
	default:
		return fmt.Sprintf("  ? %s (unknown status)", ev.Phase)
	}
}
