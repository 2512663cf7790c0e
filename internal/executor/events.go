package executor

import (
	"context"
	"sync"
	"time"
)

// EventType identifies an execution event.
type EventType string

const (
	// EventStepCompleted fires after every successfully dispatched action.
	EventStepCompleted EventType = "step.completed"
	// EventSequenceCompleted fires when the final action of a non-looping
	// run finishes.
	EventSequenceCompleted EventType = "sequence.completed"
	// EventPaused fires when execution transitions to paused.
	EventPaused EventType = "execution.paused"
	// EventResumed fires when execution transitions back to running.
	EventResumed EventType = "execution.resumed"
	// EventError fires when an action fails and execution aborts.
	EventError EventType = "execution.error"
)

// Event is a single execution notification. Delivery is fire and forget:
// handlers run synchronously on the dispatch goroutine and their outcome
// never affects the run.
type Event struct {
	Type EventType
	// Step is the zero based index of the action the event refers to. It is
	// meaningful for step completions and errors.
	Step int
	// Err carries the failure description on error events.
	Err string
	At  time.Time
}

// EventHandler receives execution events.
type EventHandler func(Event)

// Bus fans execution events out to subscribers.
type Bus struct {
	handlers []EventHandler
	mu       sync.RWMutex
}

// NewBus creates a new event bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a handler for all following events.
func (b *Bus) Subscribe(handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, handler)
}

// Publish delivers the event to every subscriber.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	handlers := make([]EventHandler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, h := range handlers {
		h(event)
	}
}

// Channel returns a channel receiving every following event. Events are
// dropped when the buffer is full, a slow reader never blocks execution. The
// channel closes when the context ends.
func (b *Bus) Channel(ctx context.Context, bufSize int) <-chan Event {
	ch := make(chan Event, bufSize)
	var mu sync.Mutex
	closed := false

	b.Subscribe(func(e Event) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case ch <- e:
		default:
		}
	})

	go func() {
		<-ctx.Done()
		mu.Lock()
		defer mu.Unlock()
		closed = true
		close(ch)
	}()

	return ch
}
