package domain

import "time"

// Save is a player's persisted economy state.
type Save struct {
	PlayerID   string
	State      PlayerState
	LastUpdate time.Time
}
