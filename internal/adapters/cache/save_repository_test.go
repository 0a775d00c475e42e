package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Amund211/timba/internal/adapters/cache"
	"github.com/Amund211/timba/internal/adapters/saverepository"
	"github.com/Amund211/timba/internal/domain"
	"github.com/Amund211/timba/internal/domaintest"
	"github.com/stretchr/testify/require"
)

type mockedSaveStore struct {
	t *testing.T

	saves    map[string]domain.Save
	getCalls int
	storeErr error
}

func (m *mockedSaveStore) GetSave(ctx context.Context, playerID string) (domain.Save, error) {
	m.t.Helper()
	m.getCalls++

	save, ok := m.saves[playerID]
	if !ok {
		return domain.Save{}, domain.ErrSaveNotFound
	}
	return save, nil
}

func (m *mockedSaveStore) StoreSave(ctx context.Context, save domain.Save) error {
	m.t.Helper()
	if m.storeErr != nil {
		return m.storeErr
	}
	m.saves[save.PlayerID] = save
	return nil
}

func TestSaveRepository(t *testing.T) {
	t.Parallel()

	now := time.UnixMilli(1_700_000_000_000)

	newRepo := func(t *testing.T) (*mockedSaveStore, saverepository.SaveRepository) {
		store := &mockedSaveStore{t: t, saves: map[string]domain.Save{}}
		return store, cache.NewSaveRepository(store, cache.NewTTLSaveCache(time.Minute))
	}

	t.Run("reads are cached", func(t *testing.T) {
		t.Parallel()

		store, repo := newRepo(t)
		save := domaintest.NewSaveBuilder("player-1", now).WithBalance(10).Build()
		store.saves["player-1"] = save

		for range 3 {
			got, err := repo.GetSave(t.Context(), "player-1")
			require.NoError(t, err)
			require.Equal(t, save, got)
		}
		require.Equal(t, 1, store.getCalls)
	})

	t.Run("missing saves are not cached", func(t *testing.T) {
		t.Parallel()

		store, repo := newRepo(t)

		_, err := repo.GetSave(t.Context(), "player-1")
		require.ErrorIs(t, err, domain.ErrSaveNotFound)

		_, err = repo.GetSave(t.Context(), "player-1")
		require.ErrorIs(t, err, domain.ErrSaveNotFound)
		require.Equal(t, 2, store.getCalls)
	})

	t.Run("writes go through", func(t *testing.T) {
		t.Parallel()

		store, repo := newRepo(t)
		save := domaintest.NewSaveBuilder("player-1", now).WithBalance(10).Build()

		require.NoError(t, repo.StoreSave(t.Context(), save))
		require.Equal(t, save, store.saves["player-1"])

		got, err := repo.GetSave(t.Context(), "player-1")
		require.NoError(t, err)
		require.Equal(t, save, got)
		require.Equal(t, 0, store.getCalls)
	})

	t.Run("failed writes evict the cached save", func(t *testing.T) {
		t.Parallel()

		store, repo := newRepo(t)
		old := domaintest.NewSaveBuilder("player-1", now).WithBalance(10).Build()
		store.saves["player-1"] = old

		_, err := repo.GetSave(t.Context(), "player-1")
		require.NoError(t, err)

		store.storeErr = errors.New("store is down")
		err = repo.StoreSave(t.Context(), domaintest.NewSaveBuilder("player-1", now).WithBalance(20).Build())
		require.ErrorIs(t, err, store.storeErr)

		got, err := repo.GetSave(t.Context(), "player-1")
		require.NoError(t, err)
		require.Equal(t, old, got)
		require.Equal(t, 2, store.getCalls)
	})

	t.Run("returned saves do not alias the cache", func(t *testing.T) {
		t.Parallel()

		store, repo := newRepo(t)
		store.saves["player-1"] = domaintest.NewSaveBuilder("player-1", now).Build()

		got, err := repo.GetSave(t.Context(), "player-1")
		require.NoError(t, err)
		got.State.Upgrades[domain.UpgradeMultitap] = 99

		got, err = repo.GetSave(t.Context(), "player-1")
		require.NoError(t, err)
		require.Equal(t, 0, got.State.Upgrades.Level(domain.UpgradeMultitap))
	})
}
