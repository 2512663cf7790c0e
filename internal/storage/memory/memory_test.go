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

func testSequence(name string) model.Sequence {
	return model.Sequence{
		Name:        name,
		Description: "a test sequence",
		StepDelay:   250 * time.Millisecond,
		Actions: []model.Action{
			{Kind: model.ActionKindClick, Click: &model.ClickParams{Position: "spawn"}},
			{Kind: model.ActionKindWait, Wait: &model.WaitParams{Duration: time.Second}},
		},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}

func TestRepositorySequences(t *testing.T) {
	tests := map[string]struct {
		actions func(ctx context.Context, t *testing.T, repo *memory.Repository) error
		expErr  bool
	}{
		"Creating a sequence should work": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				err := repo.CreateSequence(ctx, testSequence("farm-loop"))
				require.NoError(t, err)

				// Verify we can retrieve it
				retrieved, err := repo.GetSequence(ctx, "farm-loop")
				require.NoError(t, err)
				assert.Equal(t, "farm-loop", retrieved.Name)
				assert.Len(t, retrieved.Actions, 2)

				return nil
			},
		},

		"Creating a duplicate name should fail": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				err := repo.CreateSequence(ctx, testSequence("farm-loop"))
				require.NoError(t, err)

				return repo.CreateSequence(ctx, testSequence("farm-loop"))
			},
			expErr: true,
		},

		"Getting a missing sequence should fail": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				_, err := repo.GetSequence(ctx, "missing")
				assert.True(t, errors.Is(err, model.ErrNotFound))
				return err
			},
			expErr: true,
		},

		"Listing sequences should return all of them": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				require.NoError(t, repo.CreateSequence(ctx, testSequence("a")))
				require.NoError(t, repo.CreateSequence(ctx, testSequence("b")))

				all, err := repo.ListSequences(ctx)
				require.NoError(t, err)
				assert.Len(t, all, 2)

				return nil
			},
		},

		"Updating a sequence should replace it": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				seq := testSequence("farm-loop")
				require.NoError(t, repo.CreateSequence(ctx, seq))

				seq.Description = "updated"
				seq.Loop = true
				require.NoError(t, repo.UpdateSequence(ctx, seq))

				retrieved, err := repo.GetSequence(ctx, "farm-loop")
				require.NoError(t, err)
				assert.Equal(t, "updated", retrieved.Description)
				assert.True(t, retrieved.Loop)

				return nil
			},
		},

		"Updating a missing sequence should fail": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				return repo.UpdateSequence(ctx, testSequence("missing"))
			},
			expErr: true,
		},

		"Deleting a sequence should remove it": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				require.NoError(t, repo.CreateSequence(ctx, testSequence("farm-loop")))
				require.NoError(t, repo.DeleteSequence(ctx, "farm-loop"))

				_, err := repo.GetSequence(ctx, "farm-loop")
				assert.True(t, errors.Is(err, model.ErrNotFound))

				return nil
			},
		},

		"Deleting a missing sequence should fail": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				return repo.DeleteSequence(ctx, "missing")
			},
			expErr: true,
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

func TestRepositoryPositions(t *testing.T) {
	tests := map[string]struct {
		actions func(ctx context.Context, t *testing.T, repo *memory.Repository) error
		expErr  bool
	}{
		"Upserting a new position should create it": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				err := repo.UpsertPosition(ctx, model.Position{Name: "spawn", X: 120, Y: 340})
				require.NoError(t, err)

				retrieved, err := repo.GetPosition(ctx, "spawn")
				require.NoError(t, err)
				assert.Equal(t, 120, retrieved.X)
				assert.Equal(t, 340, retrieved.Y)

				return nil
			},
		},

		"Upserting an existing position should replace it": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				require.NoError(t, repo.UpsertPosition(ctx, model.Position{Name: "spawn", X: 120, Y: 340}))
				require.NoError(t, repo.UpsertPosition(ctx, model.Position{Name: "spawn", X: 99, Y: 1}))

				retrieved, err := repo.GetPosition(ctx, "spawn")
				require.NoError(t, err)
				assert.Equal(t, 99, retrieved.X)
				assert.Equal(t, 1, retrieved.Y)

				all, err := repo.ListPositions(ctx)
				require.NoError(t, err)
				assert.Len(t, all, 1)

				return nil
			},
		},

		"Getting a missing position should fail": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				_, err := repo.GetPosition(ctx, "missing")
				assert.True(t, errors.Is(err, model.ErrNotFound))
				return err
			},
			expErr: true,
		},

		"Deleting a position should remove it": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				require.NoError(t, repo.UpsertPosition(ctx, model.Position{Name: "spawn", X: 1, Y: 2}))
				require.NoError(t, repo.DeletePosition(ctx, "spawn"))

				_, err := repo.GetPosition(ctx, "spawn")
				assert.True(t, errors.Is(err, model.ErrNotFound))

				return nil
			},
		},

		"Deleting a missing position should fail": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				return repo.DeletePosition(ctx, "missing")
			},
			expErr: true,
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
