package saverepository

import (
	"testing"
	"time"

	"github.com/Amund211/timba/internal/domain"
	"github.com/Amund211/timba/internal/domaintest"
	"github.com/stretchr/testify/require"
)

func runSaveRepositoryTests(t *testing.T, newRepository func(t *testing.T) SaveRepository) {
	t.Helper()

	lastUpdate := time.UnixMilli(1_700_000_000_456)

	t.Run("missing save", func(t *testing.T) {
		t.Parallel()

		repo := newRepository(t)

		_, err := repo.GetSave(t.Context(), "nobody")
		require.ErrorIs(t, err, domain.ErrSaveNotFound)
	})

	t.Run("store and get", func(t *testing.T) {
		t.Parallel()

		repo := newRepository(t)
		save := domaintest.NewSaveBuilder("player-1", lastUpdate).
			WithEnergy(3).
			WithBalance(1234).
			WithUpgrade(domain.UpgradeMultitap, 4).
			WithAchievements("rookie").
			Build()

		err := repo.StoreSave(t.Context(), save)
		require.NoError(t, err)

		stored, err := repo.GetSave(t.Context(), "player-1")
		require.NoError(t, err)
		require.Equal(t, save, stored)
	})

	t.Run("overwrite", func(t *testing.T) {
		t.Parallel()

		repo := newRepository(t)
		first := domaintest.NewSaveBuilder("player-1", lastUpdate).WithBalance(10).Build()
		second := domaintest.NewSaveBuilder("player-1", lastUpdate.Add(time.Minute)).
			WithBalance(5).
			WithPeakBalance(10).
			WithUpgrade(domain.UpgradeEnergyTank, 1).
			WithEnergy(150).
			Build()

		require.NoError(t, repo.StoreSave(t.Context(), first))
		require.NoError(t, repo.StoreSave(t.Context(), second))

		stored, err := repo.GetSave(t.Context(), "player-1")
		require.NoError(t, err)
		require.Equal(t, second, stored)
	})

	t.Run("players are separate", func(t *testing.T) {
		t.Parallel()

		repo := newRepository(t)
		a := domaintest.NewSaveBuilder("player-a", lastUpdate).WithBalance(1).Build()
		b := domaintest.NewSaveBuilder("player-b", lastUpdate).WithBalance(2).Build()

		require.NoError(t, repo.StoreSave(t.Context(), a))
		require.NoError(t, repo.StoreSave(t.Context(), b))

		storedA, err := repo.GetSave(t.Context(), "player-a")
		require.NoError(t, err)
		require.Equal(t, a, storedA)

		storedB, err := repo.GetSave(t.Context(), "player-b")
		require.NoError(t, err)
		require.Equal(t, b, storedB)
	})

	t.Run("empty player id", func(t *testing.T) {
		t.Parallel()

		repo := newRepository(t)
		err := repo.StoreSave(t.Context(), domaintest.NewSaveBuilder("", lastUpdate).Build())
		require.Error(t, err)
	})
}
