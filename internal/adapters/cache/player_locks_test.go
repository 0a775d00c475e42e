package cache_test

import (
	"sync"
	"testing"
	"time"

	"github.com/Amund211/timba/internal/adapters/cache"
	"github.com/stretchr/testify/require"
)

func TestPlayerLocks(t *testing.T) {
	t.Parallel()

	t.Run("serializes per player", func(t *testing.T) {
		t.Parallel()

		locks, stop := cache.NewPlayerLocks(time.Minute)
		defer stop()

		counter := 0
		var wg sync.WaitGroup
		for range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock := locks.Lock("player-1")
				defer unlock()

				current := counter
				time.Sleep(time.Microsecond)
				counter = current + 1
			}()
		}
		wg.Wait()

		require.Equal(t, 50, counter)
	})

	t.Run("players do not block each other", func(t *testing.T) {
		t.Parallel()

		locks, stop := cache.NewPlayerLocks(time.Minute)
		defer stop()

		unlockA := locks.Lock("player-a")
		defer unlockA()

		done := make(chan struct{})
		go func() {
			unlock := locks.Lock("player-b")
			unlock()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("lock for player-b blocked on player-a")
		}
	})
}
