package keyboard

import (
	"fmt"
	"strings"
	"sync"

	hook "github.com/robotn/gohook"

	"github.com/slok/seqr/internal/log"
)

// escKeychar is the ASCII escape code some platforms report for ESC.
const escKeychar = 27

// SourceConfig is the configuration for the keyboard stop source.
type SourceConfig struct {
	// StopKey is the key name that latches a stop request (e.g. "esc", "f12").
	StopKey string
	Logger  log.Logger
}

func (c *SourceConfig) defaults() error {
	if c.StopKey == "" {
		c.StopKey = "esc"
	}
	c.StopKey = strings.ToLower(strings.TrimSpace(c.StopKey))
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "interrupt.Keyboard"})
	return nil
}

// Source latches a stop request when the configured key appears on the
// global keyboard hook, regardless of which window has focus.
type Source struct {
	stopKey string
	stop    bool
	mu      sync.Mutex
	done    chan struct{}
	logger  log.Logger
}

// NewSource creates a new keyboard stop source and starts listening.
// Callers must Close it to release the OS hook.
func NewSource(cfg SourceConfig) (*Source, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	s := &Source{
		stopKey: cfg.StopKey,
		done:    make(chan struct{}),
		logger:  cfg.Logger,
	}

	evChan := hook.Start()
	go func() {
		defer close(s.done)

		for ev := range evChan {
			if ev.Kind != hook.KeyDown {
				continue
			}
			if !s.matches(ev) {
				continue
			}

			s.mu.Lock()
			already := s.stop
			s.stop = true
			s.mu.Unlock()

			if !already {
				s.logger.Warningf("Stop key %q pressed, requesting stop", s.stopKey)
			}
		}
	}()

	s.logger.Debugf("Listening for stop key %q", s.stopKey)

	return s, nil
}

// StopRequested returns whether the stop key was seen.
func (s *Source) StopRequested() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stop
}

// Reset clears the latch so a new execution can reuse the source.
func (s *Source) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stop = false
}

// Close stops the keyboard hook and waits for the listener to finish.
func (s *Source) Close() error {
	hook.End()
	<-s.done
	return nil
}

// matches decodes the event and compares it against the configured key.
// Keychar is preferred, the rawcode mapping covers keys that report no
// printable character (like ESC on some platforms).
func (s *Source) matches(ev hook.Event) bool {
	if s.stopKey == "esc" || s.stopKey == "escape" {
		if ev.Keychar == escKeychar {
			return true
		}
	}
	if ev.Keychar != 0 && ev.Keychar != hook.CharUndefined {
		if strings.EqualFold(string(rune(ev.Keychar)), s.stopKey) {
			return true
		}
	}

	name := strings.ToLower(strings.TrimSpace(hook.RawcodetoKeychar(ev.Rawcode)))
	if name == "" {
		return false
	}
	if name == s.stopKey {
		return true
	}
	// Normalize the common aliases.
	return (name == "esc" || name == "escape") && (s.stopKey == "esc" || s.stopKey == "escape")
}
