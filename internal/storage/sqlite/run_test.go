package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/seqr/internal/model"
)

func runFixture(id, sequenceName string, startedAt time.Time) model.Run {
	return model.Run{
		ID:           id,
		SequenceName: sequenceName,
		Status:       model.RunStatusRunning,
		StartedAt:    startedAt,
	}
}

func TestRepositoryRunCRUD(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	started := time.Now().UTC().Truncate(time.Second)
	run := runFixture("run-1", "farm-loop", started)
	require.NoError(t, repo.CreateRun(ctx, run))

	all, err := repo.ListRuns(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, run, all[0])

	finished := started.Add(30 * time.Second)
	run.Status = model.RunStatusCompleted
	run.StepsDone = 5
	run.FinishedAt = &finished
	require.NoError(t, repo.UpdateRun(ctx, run))

	all, err = repo.ListRuns(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, model.RunStatusCompleted, all[0].Status)
	assert.Equal(t, 5, all[0].StepsDone)
	require.NotNil(t, all[0].FinishedAt)
	assert.Equal(t, finished, *all[0].FinishedAt)

	failed := runFixture("run-2", "farm-loop", started.Add(time.Minute))
	failed.Status = model.RunStatusFailed
	failed.Error = "step 2 (click): position not found"
	require.NoError(t, repo.CreateRun(ctx, failed))

	all, err = repo.ListRuns(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "run-2", all[0].ID)
	assert.Equal(t, "step 2 (click): position not found", all[0].Error)
	assert.Nil(t, all[0].FinishedAt)
}

func TestRepositoryRunConstraints(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	started := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.CreateRun(ctx, runFixture("run-1", "farm-loop", started)))

	err := repo.CreateRun(ctx, runFixture("run-1", "other-seq", started))
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrAlreadyExists))

	err = repo.UpdateRun(ctx, runFixture("run-x", "farm-loop", started))
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestRepositoryRunListFilters(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	base := time.Now().UTC().Truncate(time.Second).Add(-time.Hour)
	require.NoError(t, repo.CreateRun(ctx, runFixture("run-1", "farm-loop", base)))
	require.NoError(t, repo.CreateRun(ctx, runFixture("run-2", "attack-combo", base.Add(time.Minute))))
	require.NoError(t, repo.CreateRun(ctx, runFixture("run-3", "farm-loop", base.Add(2*time.Minute))))

	all, err := repo.ListRuns(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "run-3", all[0].ID)
	assert.Equal(t, "run-2", all[1].ID)
	assert.Equal(t, "run-1", all[2].ID)

	filtered, err := repo.ListRuns(ctx, "farm-loop", 0)
	require.NoError(t, err)
	require.Len(t, filtered, 2)
	assert.Equal(t, "run-3", filtered[0].ID)
	assert.Equal(t, "run-1", filtered[1].ID)

	limited, err := repo.ListRuns(ctx, "", 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "run-3", limited[0].ID)
	assert.Equal(t, "run-2", limited[1].ID)

	none, err := repo.ListRuns(ctx, "does-not-exist", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}
