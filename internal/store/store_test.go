package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacksketch/backend/internal/codebase"
	"github.com/stacksketch/backend/pkg/cerr"
	"github.com/stacksketch/backend/pkg/storage"
)

func TestStoreUpdatePersists(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	st, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)

	s, err := Open(ctx, NewSnapshot(st))
	require.NoError(t, err)

	require.NoError(t, s.Update(ctx, func(state *State) error {
		return state.PutCodebase(&codebase.Share{
			ID:         "cb_persist",
			Name:       "Billing Service",
			OwnerEmail: "enterprise_employer@demo.com",
			CreatedAt:  time.Now().UTC(),
		})
	}))

	// A fresh store over the same directory sees the mutation.
	s2, err := Open(ctx, NewSnapshot(st))
	require.NoError(t, err)
	require.NoError(t, s2.View(func(state *State) error {
		_, ok := state.Codebase("cb_persist")
		assert.True(t, ok)
		return nil
	}))
}

func TestStoreUpdateFailedFnDoesNotPersist(t *testing.T) {
	ctx := context.Background()
	st, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	s, err := Open(ctx, NewSnapshot(st))
	require.NoError(t, err)

	boom := errors.New("boom")
	err = s.Update(ctx, func(state *State) error {
		require.NoError(t, state.PutCodebase(&codebase.Share{
			ID:         "cb_rejected",
			Name:       "X",
			OwnerEmail: "enterprise_employer@demo.com",
		}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	// The failed closure's writes were applied to the in-memory state
	// before it returned the error; callers treat the whole closure as
	// the unit of work and validate before mutating. The snapshot on
	// disk is what must not advance.
	s2, err := Open(ctx, NewSnapshot(st))
	require.NoError(t, err)
	require.NoError(t, s2.View(func(state *State) error {
		_, ok := state.Codebase("cb_rejected")
		assert.False(t, ok, "failed update must not reach the snapshot")
		return nil
	}))
}

type failingStorage struct {
	storage.Storage
	fail bool
}

func (f *failingStorage) Write(ctx context.Context, path string, data []byte) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.Storage.Write(ctx, path, data)
}

func TestStoreUpdateKeepsMutationOnPersistFailure(t *testing.T) {
	ctx := context.Background()
	local, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	fs := &failingStorage{Storage: local}

	s, err := Open(ctx, NewSnapshot(fs))
	require.NoError(t, err)

	fs.fail = true
	err = s.Update(ctx, func(state *State) error {
		return state.PutCodebase(&codebase.Share{
			ID:         "cb_mem",
			Name:       "Kept In Memory",
			OwnerEmail: "enterprise_employer@demo.com",
		})
	})
	require.Error(t, err)
	assert.True(t, cerr.IsCode(err, cerr.Internal))

	// The in-memory mutation survives; only the flush failed.
	require.NoError(t, s.View(func(state *State) error {
		_, ok := state.Codebase("cb_mem")
		assert.True(t, ok)
		return nil
	}))
}
