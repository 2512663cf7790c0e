package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/slok/seqr/internal/log"
)

// Notifier is the interface for signaling the user that a search found its
// first match.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// Noop is a Notifier that discards everything.
var Noop Notifier = noop{}

type noop struct{}

func (noop) Notify(context.Context, string) error { return nil }

// BellConfig is the configuration for the terminal bell notifier.
type BellConfig struct {
	Out    io.Writer
	Logger log.Logger
}

func (c *BellConfig) defaults() error {
	if c.Out == nil {
		return fmt.Errorf("output writer is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "notify.Bell"})
	return nil
}

// Bell notifies by ringing the terminal bell.
type Bell struct {
	out    io.Writer
	logger log.Logger
}

// NewBell creates a new terminal bell notifier.
func NewBell(cfg BellConfig) (*Bell, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Bell{
		out:    cfg.Out,
		logger: cfg.Logger,
	}, nil
}

// Notify rings the bell.
func (b *Bell) Notify(ctx context.Context, message string) error {
	if _, err := fmt.Fprint(b.out, "\a"); err != nil {
		return fmt.Errorf("could not ring bell: %w", err)
	}
	b.logger.Infof("%s", message)
	return nil
}

// Counter is a Notifier that counts notifications, used by tests.
type Counter struct {
	count    int
	messages []string
	mu       sync.Mutex
}

// NewCounter creates a new counting notifier.
func NewCounter() *Counter {
	return &Counter{}
}

// Notify records the notification.
func (c *Counter) Notify(ctx context.Context, message string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.count++
	c.messages = append(c.messages, message)
	return nil
}

// Count returns how many notifications were received.
func (c *Counter) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// Messages returns a copy of the received messages in order.
func (c *Counter) Messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	messages := make([]string, len(c.messages))
	copy(messages, c.messages)
	return messages
}
