package record_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slok/seqr/internal/app/record"
	inputfake "github.com/slok/seqr/internal/input/fake"
	"github.com/slok/seqr/internal/log"
	"github.com/slok/seqr/internal/model"
	"github.com/slok/seqr/internal/storage/storagemock"
)

func newInput(t *testing.T, x, y int) *inputfake.Controller {
	t.Helper()
	in, err := inputfake.NewController(inputfake.ControllerConfig{MouseX: x, MouseY: y})
	require.NoError(t, err)
	return in
}

func TestNewService(t *testing.T) {
	tests := map[string]struct {
		config func(t *testing.T) record.ServiceConfig
		expErr bool
	}{
		"valid config should create service": {
			config: func(t *testing.T) record.ServiceConfig {
				return record.ServiceConfig{
					Repository: &storagemock.MockRepository{},
					Input:      newInput(t, 0, 0),
					Logger:     log.Noop,
				}
			},
			expErr: false,
		},
		"missing repository should fail": {
			config: func(t *testing.T) record.ServiceConfig {
				return record.ServiceConfig{Input: newInput(t, 0, 0)}
			},
			expErr: true,
		},
		"missing input controller should fail": {
			config: func(t *testing.T) record.ServiceConfig {
				return record.ServiceConfig{Repository: &storagemock.MockRepository{}}
			},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			svc, err := record.NewService(test.config(t))

			if test.expErr {
				require.Error(err)
				require.Nil(svc)
			} else {
				require.NoError(err)
				require.NotNil(svc)
			}
		})
	}
}

func TestService_Run(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	m := &storagemock.MockRepository{}
	var stored model.Position
	m.On("UpsertPosition", mock.Anything, mock.Anything).Once().Run(func(args mock.Arguments) {
		stored = args.Get(1).(model.Position)
	}).Return(nil)

	svc, err := record.NewService(record.ServiceConfig{
		Repository: m,
		Input:      newInput(t, 640, 480),
		Logger:     log.Noop,
	})
	require.NoError(err)

	position, err := svc.Run(context.Background(), record.Request{Name: "spawn"})
	require.NoError(err)

	assert.Equal("spawn", position.Name)
	assert.Equal(640, position.X)
	assert.Equal(480, position.Y)
	assert.False(position.UpdatedAt.IsZero())
	assert.Equal(*position, stored)

	m.AssertExpectations(t)
}

func TestService_RunEmptyName(t *testing.T) {
	require := require.New(t)

	svc, err := record.NewService(record.ServiceConfig{
		Repository: &storagemock.MockRepository{},
		Input:      newInput(t, 0, 0),
		Logger:     log.Noop,
	})
	require.NoError(err)

	_, err = svc.Run(context.Background(), record.Request{})
	require.Error(err)
	require.True(errors.Is(err, model.ErrNotValid))
}

func TestService_RunDelay(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	m := &storagemock.MockRepository{}
	m.On("UpsertPosition", mock.Anything, mock.Anything).Once().Return(nil)

	svc, err := record.NewService(record.ServiceConfig{
		Repository: m,
		Input:      newInput(t, 10, 20),
		Logger:     log.Noop,
	})
	require.NoError(err)

	start := time.Now()
	_, err = svc.Run(context.Background(), record.Request{Name: "spawn", Delay: 50 * time.Millisecond})
	require.NoError(err)
	assert.GreaterOrEqual(time.Since(start), 50*time.Millisecond)
}

func TestService_RunCancelledDuringDelay(t *testing.T) {
	require := require.New(t)

	m := &storagemock.MockRepository{}
	svc, err := record.NewService(record.ServiceConfig{
		Repository: m,
		Input:      newInput(t, 10, 20),
		Logger:     log.Noop,
	})
	require.NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = svc.Run(ctx, record.Request{Name: "spawn", Delay: 10 * time.Second})
	require.Error(err)
	require.True(errors.Is(err, context.Canceled))

	m.AssertExpectations(t)
}

func TestService_RunStorageError(t *testing.T) {
	require := require.New(t)

	m := &storagemock.MockRepository{}
	m.On("UpsertPosition", mock.Anything, mock.Anything).Once().Return(fmt.Errorf("database error"))

	svc, err := record.NewService(record.ServiceConfig{
		Repository: m,
		Input:      newInput(t, 10, 20),
		Logger:     log.Noop,
	})
	require.NoError(err)

	_, err = svc.Run(context.Background(), record.Request{Name: "spawn"})
	require.Error(err)
	require.Contains(err.Error(), "could not store position")

	m.AssertExpectations(t)
}
