package executor_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/seqr/internal/executor"
)

func TestBusPublishOrder(t *testing.T) {
	assert := assert.New(t)

	bus := executor.NewBus()
	got1 := []executor.EventType{}
	got2 := []executor.EventType{}
	bus.Subscribe(func(e executor.Event) { got1 = append(got1, e.Type) })
	bus.Subscribe(func(e executor.Event) { got2 = append(got2, e.Type) })

	bus.Publish(executor.Event{Type: executor.EventStepCompleted, Step: 0})
	bus.Publish(executor.Event{Type: executor.EventSequenceCompleted, Step: 0})

	exp := []executor.EventType{executor.EventStepCompleted, executor.EventSequenceCompleted}
	assert.Equal(exp, got1)
	assert.Equal(exp, got2)
}

func TestBusChannelDropsWhenFull(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	bus := executor.NewBus()
	ch := bus.Channel(context.Background(), 2)

	bus.Publish(executor.Event{Type: executor.EventStepCompleted, Step: 0})
	bus.Publish(executor.Event{Type: executor.EventStepCompleted, Step: 1})
	bus.Publish(executor.Event{Type: executor.EventStepCompleted, Step: 2})

	// The third event did not fit in the buffer and was dropped.
	require.Len(ch, 2)
	assert.Equal(0, (<-ch).Step)
	assert.Equal(1, (<-ch).Step)
}

func TestBusChannelClosesOnContextEnd(t *testing.T) {
	require := require.New(t)

	bus := executor.NewBus()
	ctx, cancel := context.WithCancel(context.Background())
	ch := bus.Channel(ctx, 1)

	cancel()

	require.Eventually(func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, 2*time.Second, time.Millisecond)
}
