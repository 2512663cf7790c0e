package fake

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/slok/seqr/internal/log"
	"github.com/slok/seqr/internal/model"
)

// RecognizerConfig is the configuration for the fake recognizer.
type RecognizerConfig struct {
	// Texts is served in order, one per ExtractText call. The last text
	// repeats once the list is exhausted. An empty list always serves "".
	Texts  []string
	Logger log.Logger
}

func (c *RecognizerConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "recognize.Fake"})
	return nil
}

// Recognizer is a fake implementation of recognize.Recognizer that serves
// scripted texts and records the regions it was asked about.
type Recognizer struct {
	texts   []string
	calls   int
	regions []*model.Region
	err     error
	mu      sync.Mutex
	logger  log.Logger
}

// NewRecognizer creates a new fake recognizer.
func NewRecognizer(cfg RecognizerConfig) (*Recognizer, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Recognizer{
		texts:  cfg.Texts,
		logger: cfg.Logger,
	}, nil
}

// ExtractText returns the next scripted text.
func (r *Recognizer) ExtractText(ctx context.Context, frame image.Image, region *model.Region) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls++
	r.regions = append(r.regions, region)
	if r.err != nil {
		return "", r.err
	}
	if len(r.texts) == 0 {
		return "", nil
	}

	idx := r.calls - 1
	if idx >= len(r.texts) {
		idx = len(r.texts) - 1
	}

	return r.texts[idx], nil
}

// Fail makes every following ExtractText call return the given error.
func (r *Recognizer) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// Calls returns how many times ExtractText was called.
func (r *Recognizer) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// Regions returns the regions received, one per call, in order.
func (r *Recognizer) Regions() []*model.Region {
	r.mu.Lock()
	defer r.mu.Unlock()

	regions := make([]*model.Region, len(r.regions))
	copy(regions, r.regions)
	return regions
}
