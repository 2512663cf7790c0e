package seqimport_test

import (
	"context"
	"fmt"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slok/seqr/internal/app/seqimport"
	"github.com/slok/seqr/internal/log"
	"github.com/slok/seqr/internal/model"
	"github.com/slok/seqr/internal/storage/io"
	"github.com/slok/seqr/internal/storage/storagemock"
)

const libraryYAML = `positions:
  - name: spawn
    x: 120
    y: 340
  - name: inventory
    x: 800
    y: 60
sequences:
  - name: farm-loop
    actions:
      - click:
          position: spawn
      - wait:
          duration_ms: 500
`

func newLoader(files map[string]string) *io.LibraryYAMLRepository {
	fs := fstest.MapFS{}
	for path, data := range files {
		fs[path] = &fstest.MapFile{Data: []byte(data)}
	}
	return io.NewLibraryYAMLRepository(fs)
}

func TestNewService(t *testing.T) {
	tests := map[string]struct {
		config seqimport.ServiceConfig
		expErr bool
	}{
		"valid config should create service": {
			config: seqimport.ServiceConfig{
				Repository: &storagemock.MockRepository{},
				Library:    newLoader(nil),
				Logger:     log.Noop,
			},
			expErr: false,
		},
		"missing repository should fail": {
			config: seqimport.ServiceConfig{Library: newLoader(nil)},
			expErr: true,
		},
		"missing library loader should fail": {
			config: seqimport.ServiceConfig{Repository: &storagemock.MockRepository{}},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			svc, err := seqimport.NewService(test.config)

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
	tests := map[string]struct {
		files     map[string]string
		mock      func(m *storagemock.MockRepository)
		req       seqimport.Request
		expErr    bool
		errMsg    string
		expResult *seqimport.Result
	}{
		"a fresh library should create everything": {
			files: map[string]string{"library.yaml": libraryYAML},
			mock: func(m *storagemock.MockRepository) {
				m.On("UpsertPosition", mock.Anything, mock.MatchedBy(func(p model.Position) bool {
					return p.Name == "spawn" && p.X == 120 && p.Y == 340
				})).Once().Return(nil)
				m.On("UpsertPosition", mock.Anything, mock.MatchedBy(func(p model.Position) bool {
					return p.Name == "inventory"
				})).Once().Return(nil)
				m.On("CreateSequence", mock.Anything, mock.MatchedBy(func(s model.Sequence) bool {
					return s.Name == "farm-loop" && len(s.Actions) == 2
				})).Once().Return(nil)
			},
			req:       seqimport.Request{Path: "library.yaml"},
			expResult: &seqimport.Result{PositionsImported: 2, SequencesCreated: 1},
		},
		"an already stored sequence should be updated in place": {
			files: map[string]string{"library.yaml": libraryYAML},
			mock: func(m *storagemock.MockRepository) {
				m.On("UpsertPosition", mock.Anything, mock.Anything).Twice().Return(nil)
				m.On("CreateSequence", mock.Anything, mock.Anything).Once().
					Return(fmt.Errorf("sequence already exists: %w", model.ErrAlreadyExists))
				m.On("UpdateSequence", mock.Anything, mock.MatchedBy(func(s model.Sequence) bool {
					return s.Name == "farm-loop"
				})).Once().Return(nil)
			},
			req:       seqimport.Request{Path: "library.yaml"},
			expResult: &seqimport.Result{PositionsImported: 2, SequencesUpdated: 1},
		},
		"a missing library file should fail": {
			files:  map[string]string{},
			mock:   func(m *storagemock.MockRepository) {},
			req:    seqimport.Request{Path: "nonexistent.yaml"},
			expErr: true,
			errMsg: "could not load library",
		},
		"a storage failure should name the failing position": {
			files: map[string]string{"library.yaml": libraryYAML},
			mock: func(m *storagemock.MockRepository) {
				m.On("UpsertPosition", mock.Anything, mock.Anything).Once().Return(fmt.Errorf("database error"))
			},
			req:    seqimport.Request{Path: "library.yaml"},
			expErr: true,
			errMsg: `could not import position "spawn"`,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			// Setup
			m := &storagemock.MockRepository{}
			test.mock(m)

			svc, err := seqimport.NewService(seqimport.ServiceConfig{
				Repository: m,
				Library:    newLoader(test.files),
				Logger:     log.Noop,
			})
			require.NoError(err)

			// Execute
			result, err := svc.Run(context.Background(), test.req)

			// Verify
			if test.expErr {
				require.Error(err)
				assert.Contains(err.Error(), test.errMsg)
			} else {
				require.NoError(err)
				assert.Equal(test.expResult, result)
			}

			m.AssertExpectations(t)
		})
	}
}
