package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSQLiteDatabase(t *testing.T) {
	t.Parallel()

	t.Run("creates schema", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "nested", "timba.db")
		db, err := NewSQLiteDatabase(t.Context(), path)
		require.NoError(t, err)
		defer db.Close()

		var count int
		err = db.GetContext(t.Context(), &count, "SELECT COUNT(*) FROM saves")
		require.NoError(t, err)
		require.Equal(t, 0, count)
	})

	t.Run("reopen is idempotent", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "timba.db")
		db, err := NewSQLiteDatabase(t.Context(), path)
		require.NoError(t, err)
		require.NoError(t, db.Close())

		db, err = NewSQLiteDatabase(t.Context(), path)
		require.NoError(t, err)
		require.NoError(t, db.Close())
	})

	t.Run("empty path", func(t *testing.T) {
		t.Parallel()

		_, err := NewSQLiteDatabase(t.Context(), "")
		require.Error(t, err)
	})
}
