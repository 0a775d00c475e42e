package domain

import (
	"maps"
	"slices"
)

type UpgradeID string

const (
	UpgradeMultitap   UpgradeID = "multitap"
	UpgradeEnergyTank UpgradeID = "energyTank"
	UpgradeFullRefill UpgradeID = "fullRefill"
)

type AchievementID string

// Levels maps stackable upgrades to their owned level. Missing keys are level 0.
type Levels map[UpgradeID]int

func (l Levels) Level(id UpgradeID) int {
	level := l[id]
	if level < 0 {
		return 0
	}
	return level
}

func (l Levels) Clone() Levels {
	if l == nil {
		return Levels{}
	}
	return maps.Clone(l)
}

// AchievementSet is a set of unlocked achievement ids. It only ever grows.
type AchievementSet map[AchievementID]struct{}

func NewAchievementSet(ids ...AchievementID) AchievementSet {
	set := make(AchievementSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (s AchievementSet) Has(id AchievementID) bool {
	_, ok := s[id]
	return ok
}

// With returns a copy of the set with ids added. The receiver is not modified.
func (s AchievementSet) With(ids ...AchievementID) AchievementSet {
	out := make(AchievementSet, len(s)+len(ids))
	for id := range s {
		out[id] = struct{}{}
	}
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

// IDs returns the ids in lexical order.
func (s AchievementSet) IDs() []AchievementID {
	ids := make([]AchievementID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// PlayerState is the economy state of one player.
//
// The engine receives it by value and never modifies the maps it references.
type PlayerState struct {
	Energy               int64
	Balance              int64
	PeakBalance          int64
	Upgrades             Levels
	UnlockedAchievements AchievementSet
}

// WithPeak raises PeakBalance to Balance if the balance is a new high-water mark.
func (s PlayerState) WithPeak() PlayerState {
	if s.Balance > s.PeakBalance {
		s.PeakBalance = s.Balance
	}
	return s
}

func (s PlayerState) Clone() PlayerState {
	s.Upgrades = s.Upgrades.Clone()
	s.UnlockedAchievements = s.UnlockedAchievements.With()
	return s
}
