package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/seqr/internal/log"
	"github.com/slok/seqr/internal/model"
	"github.com/slok/seqr/internal/storage/memory"
)

func testRun(id, sequenceName string) model.Run {
	return model.Run{
		ID:           id,
		SequenceName: sequenceName,
		Status:       model.RunStatusRunning,
		StartedAt:    time.Now().UTC(),
	}
}

func TestRepositoryRuns(t *testing.T) {
	tests := map[string]struct {
		actions func(ctx context.Context, t *testing.T, repo *memory.Repository) error
		expErr  bool
	}{
		"Creating a run should work": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				err := repo.CreateRun(ctx, testRun("run-1", "farm-loop"))
				require.NoError(t, err)

				runs, err := repo.ListRuns(ctx, "", 0)
				require.NoError(t, err)
				require.Len(t, runs, 1)
				assert.Equal(t, "run-1", runs[0].ID)

				return nil
			},
		},

		"Creating a duplicate run ID should fail": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				require.NoError(t, repo.CreateRun(ctx, testRun("run-1", "farm-loop")))
				return repo.CreateRun(ctx, testRun("run-1", "other"))
			},
			expErr: true,
		},

		"Updating a run should replace it": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				run := testRun("run-1", "farm-loop")
				require.NoError(t, repo.CreateRun(ctx, run))

				now := time.Now().UTC()
				run.Status = model.RunStatusCompleted
				run.StepsDone = 7
				run.FinishedAt = &now
				require.NoError(t, repo.UpdateRun(ctx, run))

				runs, err := repo.ListRuns(ctx, "", 0)
				require.NoError(t, err)
				require.Len(t, runs, 1)
				assert.Equal(t, model.RunStatusCompleted, runs[0].Status)
				assert.Equal(t, 7, runs[0].StepsDone)
				require.NotNil(t, runs[0].FinishedAt)

				return nil
			},
		},

		"Updating a missing run should fail": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				return repo.UpdateRun(ctx, testRun("missing", "farm-loop"))
			},
			expErr: true,
		},

		"Listing runs should return newest first": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				require.NoError(t, repo.CreateRun(ctx, testRun("run-1", "farm-loop")))
				require.NoError(t, repo.CreateRun(ctx, testRun("run-2", "farm-loop")))
				require.NoError(t, repo.CreateRun(ctx, testRun("run-3", "other")))

				runs, err := repo.ListRuns(ctx, "", 0)
				require.NoError(t, err)
				require.Len(t, runs, 3)
				assert.Equal(t, "run-3", runs[0].ID)
				assert.Equal(t, "run-2", runs[1].ID)
				assert.Equal(t, "run-1", runs[2].ID)

				return nil
			},
		},

		"Listing runs should filter by sequence name": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				require.NoError(t, repo.CreateRun(ctx, testRun("run-1", "farm-loop")))
				require.NoError(t, repo.CreateRun(ctx, testRun("run-2", "other")))
				require.NoError(t, repo.CreateRun(ctx, testRun("run-3", "farm-loop")))

				runs, err := repo.ListRuns(ctx, "farm-loop", 0)
				require.NoError(t, err)
				require.Len(t, runs, 2)
				assert.Equal(t, "run-3", runs[0].ID)
				assert.Equal(t, "run-1", runs[1].ID)

				return nil
			},
		},

		"Listing runs should honor the limit": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				require.NoError(t, repo.CreateRun(ctx, testRun("run-1", "farm-loop")))
				require.NoError(t, repo.CreateRun(ctx, testRun("run-2", "farm-loop")))
				require.NoError(t, repo.CreateRun(ctx, testRun("run-3", "farm-loop")))

				runs, err := repo.ListRuns(ctx, "", 2)
				require.NoError(t, err)
				require.Len(t, runs, 2)
				assert.Equal(t, "run-3", runs[0].ID)
				assert.Equal(t, "run-2", runs[1].ID)

				return nil
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			repo, err := memory.NewRepository(memory.RepositoryConfig{Logger: log.Noop})
			require.NoError(t, err)

			err = test.actions(context.Background(), t, repo)

			if test.expErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRepositoryRunsNotFoundError(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	repo, err := memory.NewRepository(memory.RepositoryConfig{})
	require.NoError(err)

	err = repo.UpdateRun(context.Background(), testRun("missing", "farm-loop"))
	assert.True(errors.Is(err, model.ErrNotFound))
}
