package cache

import (
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// PlayerLocks hands out one mutex per player.
//
// Idle locks are evicted after the ttl. Access refreshes the ttl, so a lock is
// only evicted when no request has touched it for the whole period.
type PlayerLocks struct {
	locks *ttlcache.Cache[string, *sync.Mutex]
}

func NewPlayerLocks(ttl time.Duration) (*PlayerLocks, func()) {
	locks := ttlcache.New[string, *sync.Mutex](
		ttlcache.WithTTL[string, *sync.Mutex](ttl),
	)
	go locks.Start()

	return &PlayerLocks{locks: locks}, locks.Stop
}

// Lock blocks until the player's lock is held and returns the matching unlock
func (l *PlayerLocks) Lock(playerID string) func() {
	item, _ := l.locks.GetOrSet(playerID, &sync.Mutex{})

	mutex := item.Value()
	mutex.Lock()
	return mutex.Unlock
}
