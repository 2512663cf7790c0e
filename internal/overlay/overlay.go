package overlay

import (
	"sync"

	"github.com/slok/seqr/internal/model"
)

// Overlay is the observer for live template detections. It also exposes the
// two visibility toggles the engine forces on while a search is running:
// whether detections are drawn and whether matching is shown as active.
type Overlay interface {
	DrawActive() bool
	SetDrawActive(active bool)
	MatchingActive() bool
	SetMatchingActive(active bool)
	PublishMatches(matches []model.Match)
}

// Noop is an Overlay that discards everything.
var Noop Overlay = noop{}

type noop struct{}

func (noop) DrawActive() bool                { return false }
func (noop) SetDrawActive(bool)              {}
func (noop) MatchingActive() bool            { return false }
func (noop) SetMatchingActive(bool)          {}
func (noop) PublishMatches(ms []model.Match) {}

// Memory is an Overlay that keeps the toggle states and the last published
// match set in memory for observers to read. Tests also use it to assert the
// engine's toggle discipline.
type Memory struct {
	draw      bool
	matching  bool
	last      []model.Match
	publishes int
	mu        sync.Mutex
}

// NewMemory creates a new memory overlay.
func NewMemory() *Memory {
	return &Memory{}
}

// DrawActive returns the draw toggle.
func (m *Memory) DrawActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.draw
}

// SetDrawActive sets the draw toggle.
func (m *Memory) SetDrawActive(active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.draw = active
}

// MatchingActive returns the matching toggle.
func (m *Memory) MatchingActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matching
}

// SetMatchingActive sets the matching toggle.
func (m *Memory) SetMatchingActive(active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matching = active
}

// PublishMatches stores the match set as the latest one.
func (m *Memory) PublishMatches(matches []model.Match) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.publishes++
	m.last = make([]model.Match, len(matches))
	copy(m.last, matches)
}

// LastMatches returns a copy of the last published match set.
func (m *Memory) LastMatches() []model.Match {
	m.mu.Lock()
	defer m.mu.Unlock()

	last := make([]model.Match, len(m.last))
	copy(last, m.last)
	return last
}

// Publishes returns how many match sets were published.
func (m *Memory) Publishes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.publishes
}
