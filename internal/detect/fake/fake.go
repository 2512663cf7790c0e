package fake

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/slok/seqr/internal/log"
	"github.com/slok/seqr/internal/model"
)

// DetectorConfig is the configuration for the fake detector.
type DetectorConfig struct {
	// TemplateNames is what Templates reports as loaded.
	TemplateNames []string
	// Matches is served in order, one element per Match call. The last
	// element repeats once the list is exhausted. An empty list means no
	// matches, ever.
	Matches [][]model.Match
	Logger  log.Logger
}

func (c *DetectorConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "detect.Fake"})
	return nil
}

// Detector is a fake implementation of detect.Detector that serves scripted
// match sets and records how many times it was called.
type Detector struct {
	names    []string
	matches  [][]model.Match
	calls    int
	requests [][]string
	err      error
	panicMsg string
	mu       sync.Mutex
	logger   log.Logger
}

// NewDetector creates a new fake detector.
func NewDetector(cfg DetectorConfig) (*Detector, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Detector{
		names:   cfg.TemplateNames,
		matches: cfg.Matches,
		logger:  cfg.Logger,
	}, nil
}

// Templates returns the configured template names.
func (d *Detector) Templates() []string {
	names := make([]string, len(d.names))
	copy(names, d.names)
	return names
}

// Match returns the next scripted match set.
func (d *Detector) Match(ctx context.Context, frame image.Image, templates []string, minConfidence float64) ([]model.Match, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.calls++
	req := make([]string, len(templates))
	copy(req, templates)
	d.requests = append(d.requests, req)
	if d.panicMsg != "" {
		panic(d.panicMsg)
	}
	if d.err != nil {
		return nil, d.err
	}
	if len(d.matches) == 0 {
		return nil, nil
	}

	idx := d.calls - 1
	if idx >= len(d.matches) {
		idx = len(d.matches) - 1
	}

	ms := make([]model.Match, len(d.matches[idx]))
	copy(ms, d.matches[idx])
	return ms, nil
}

// Fail makes every following Match call return the given error.
func (d *Detector) Fail(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.err = err
}

// Panic makes every following Match call panic with the given message.
func (d *Detector) Panic(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.panicMsg = msg
}

// Calls returns how many times Match was called.
func (d *Detector) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

// Requests returns the template lists received, one per call, in order.
func (d *Detector) Requests() [][]string {
	d.mu.Lock()
	defer d.mu.Unlock()

	reqs := make([][]string, len(d.requests))
	copy(reqs, d.requests)
	return reqs
}
