package interrupt

import (
	"sync"
)

// Source reports whether the user asked to stop execution immediately.
// Implementations must be safe for high frequency polling and never block.
type Source interface {
	StopRequested() bool
}

// None is a Source that never requests a stop.
var None Source = noneSource{}

type noneSource struct{}

func (noneSource) StopRequested() bool { return false }

// Manual is a latching Source driven in process, used by tests and by
// embedders that bring their own stop signal.
type Manual struct {
	stop bool
	mu   sync.Mutex
}

// NewManual creates a new manual stop source.
func NewManual() *Manual {
	return &Manual{}
}

// StopRequested returns whether Trigger was called since the last Reset.
func (m *Manual) StopRequested() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stop
}

// Trigger latches a stop request.
func (m *Manual) Trigger() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stop = true
}

// Reset clears the stop request.
func (m *Manual) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stop = false
}
