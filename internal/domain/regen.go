package domain

import "math"

// ResolveRegen restores energy for elapsedSeconds of idle time.
//
// Non-positive (and NaN) durations are a no-op. The result is capped at
// MaxEnergy and is never lower than the input energy.
func (r Rules) ResolveRegen(energy int64, elapsedSeconds float64, upgrades Levels) int64 {
	if !(elapsedSeconds > 0) {
		return energy
	}

	maxEnergy := r.MaxEnergy(upgrades)
	if energy >= maxEnergy {
		return energy
	}

	room := maxEnergy - energy
	gained := math.Floor(elapsedSeconds * r.constants.RegenPerSecond)
	if gained >= float64(room) {
		return maxEnergy
	}
	return energy + int64(gained)
}
