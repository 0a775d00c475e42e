package app

import (
	"context"
	"time"

	"github.com/Amund211/timba/internal/domain"
)

type saveRepository interface {
	GetSave(ctx context.Context, playerID string) (domain.Save, error)
	StoreSave(ctx context.Context, save domain.Save) error
}

type playerLocker interface {
	Lock(playerID string) func()
}

type eventPublisher interface {
	Publish(ctx context.Context, playerID string, events ...PlayerEvent)
}

// PlayerView is a player's state together with the stats derived from it
type PlayerView struct {
	PlayerID   string
	State      domain.PlayerState
	LastUpdate time.Time

	MaxEnergy    int64
	ClickValue   int64
	Shop         []domain.ShopItem
	Achievements []domain.AchievementProgress
}

func newPlayerView(rules domain.Rules, save domain.Save) PlayerView {
	return PlayerView{
		PlayerID:   save.PlayerID,
		State:      save.State.Clone(),
		LastUpdate: save.LastUpdate,

		MaxEnergy:    rules.MaxEnergy(save.State.Upgrades),
		ClickValue:   rules.ClickValue(save.State.Upgrades),
		Shop:         rules.Shop(save.State),
		Achievements: rules.AchievementProgress(save.State.PeakBalance, save.State.UnlockedAchievements),
	}
}

type PlayerEventType string

const (
	PlayerEventState       PlayerEventType = "state"
	PlayerEventAchievement PlayerEventType = "achievement"
)

// PlayerEvent is pushed to a player's live connections.
// State events carry View, achievement events carry Achievement.
type PlayerEvent struct {
	Type        PlayerEventType
	View        *PlayerView
	Achievement *domain.AchievementDefinition
}

func StateEvent(view PlayerView) PlayerEvent {
	return PlayerEvent{Type: PlayerEventState, View: &view}
}

func AchievementEvent(achievement domain.AchievementDefinition) PlayerEvent {
	return PlayerEvent{Type: PlayerEventAchievement, Achievement: &achievement}
}

type noopPublisher struct{}

func (noopPublisher) Publish(ctx context.Context, playerID string, events ...PlayerEvent) {}

// NoopPublisher discards all events
var NoopPublisher eventPublisher = noopPublisher{}
