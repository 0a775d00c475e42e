package domaintest

import (
	"time"

	"github.com/Amund211/timba/internal/domain"
)

type saveBuilder struct {
	save *domain.Save
}

func (sb *saveBuilder) WithEnergy(energy int64) *saveBuilder {
	sb.save.State.Energy = energy
	return sb
}

func (sb *saveBuilder) WithBalance(balance int64) *saveBuilder {
	sb.save.State.Balance = balance
	sb.save.State = sb.save.State.WithPeak()
	return sb
}

func (sb *saveBuilder) WithPeakBalance(peak int64) *saveBuilder {
	sb.save.State.PeakBalance = peak
	return sb
}

func (sb *saveBuilder) WithUpgrade(id domain.UpgradeID, level int) *saveBuilder {
	sb.save.State.Upgrades[id] = level
	return sb
}

func (sb *saveBuilder) WithAchievements(ids ...domain.AchievementID) *saveBuilder {
	sb.save.State.UnlockedAchievements = sb.save.State.UnlockedAchievements.With(ids...)
	return sb
}

func (sb *saveBuilder) Build() domain.Save {
	// Copy the maps, so further mutations to the builder don't affect the returned save
	save := *sb.save
	save.State = save.State.Clone()
	return save
}

func (sb *saveBuilder) BuildPtr() *domain.Save {
	save := sb.Build()
	return &save
}

// NewSaveBuilder starts from the state of a brand new player
func NewSaveBuilder(playerID string, lastUpdate time.Time) *saveBuilder {
	save := &domain.Save{
		PlayerID:   playerID,
		State:      domain.DefaultRules().NewPlayerState(),
		LastUpdate: lastUpdate,
	}
	return &saveBuilder{
		save: save,
	}
}
