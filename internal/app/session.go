package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Amund211/timba/internal/domain"
	"github.com/Amund211/timba/internal/logging"
	"github.com/Amund211/timba/internal/reporting"
	"github.com/Amund211/timba/internal/strutils"
)

// Shared dependencies of the player use-cases
type PlayerDeps struct {
	Repo      saveRepository
	Locks     playerLocker
	Publisher eventPublisher
	Rules     domain.Rules
	NowFunc   func() time.Time
}

type playerSession struct {
	PlayerDeps
}

func newPlayerSession(deps PlayerDeps) playerSession {
	if deps.Publisher == nil {
		deps.Publisher = NoopPublisher
	}
	return playerSession{PlayerDeps: deps}
}

// reconcileRegen applies idle regeneration for the time since the last update.
//
// LastUpdate advances only by the time that paid for the energy granted, so
// the remainder carries over even when the rate is fractional. At the cap, or
// without regeneration, there is nothing to carry and LastUpdate moves to now.
func reconcileRegen(rules domain.Rules, save domain.Save, now time.Time) domain.Save {
	elapsed := now.Sub(save.LastUpdate)
	if elapsed <= 0 {
		return save
	}

	rate := rules.Constants().RegenPerSecond
	before := save.State.Energy
	save.State.Energy = rules.ResolveRegen(before, elapsed.Seconds(), save.State.Upgrades)

	if rate <= 0 || save.State.Energy >= rules.MaxEnergy(save.State.Upgrades) {
		save.LastUpdate = now
		return save
	}

	gained := save.State.Energy - before
	if gained == 0 {
		return save
	}

	// Round up so the carried remainder never pays for the same energy twice
	paid := time.Duration(math.Ceil(float64(gained) / rate * float64(time.Second)))
	save.LastUpdate = save.LastUpdate.Add(min(paid, elapsed))
	return save
}

func (s playerSession) validatePlayerID(ctx context.Context, playerID string) error {
	if !strutils.PlayerIDIsNormalized(playerID) {
		err := fmt.Errorf("%w: player id is not normalized", domain.ErrInvalidPlayerID)
		reporting.Report(ctx, err, map[string]string{
			"playerID": playerID,
		})
		return err
	}
	return nil
}

// load returns the player's save, or a fresh one when the player has none
func (s playerSession) load(ctx context.Context, playerID string, now time.Time) (domain.Save, error) {
	save, err := s.Repo.GetSave(ctx, playerID)
	if errors.Is(err, domain.ErrSaveNotFound) {
		logging.FromContext(ctx).InfoContext(ctx, "Starting new save")
		return domain.Save{
			PlayerID:   playerID,
			State:      s.Rules.NewPlayerState(),
			LastUpdate: now,
		}, nil
	}
	if err != nil {
		// NOTE: SaveRepository implementations handle their own error reporting
		return domain.Save{}, fmt.Errorf("failed to load save: %w", err)
	}
	return save, nil
}

func (s playerSession) store(ctx context.Context, save domain.Save) error {
	// Ignore cancellations from the request context so an applied mutation is not lost
	// Take a maximum of 1 second to not block the request for too long
	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 1*time.Second)
	defer cancel()

	err := s.Repo.StoreSave(storeCtx, save)
	if err != nil {
		// NOTE: SaveRepository implementations handle their own error reporting
		return fmt.Errorf("failed to store save: %w", err)
	}
	return nil
}

// update runs mutate on the player's reconciled state under the player's lock.
//
// Unlocks achievements for the resulting peak, persists the save and publishes
// the new state followed by one event per unlocked achievement.
func (s playerSession) update(
	ctx context.Context,
	playerID string,
	mutate func(state domain.PlayerState) domain.PlayerState,
) (PlayerView, []domain.AchievementDefinition, error) {
	if err := s.validatePlayerID(ctx, playerID); err != nil {
		return PlayerView{}, nil, err
	}

	unlock := s.Locks.Lock(playerID)
	defer unlock()

	now := s.NowFunc()

	save, err := s.load(ctx, playerID, now)
	if err != nil {
		return PlayerView{}, nil, err
	}
	save = reconcileRegen(s.Rules, save, now)

	state := mutate(save.State).WithPeak()

	evaluation := s.Rules.EvaluateAchievements(state.PeakBalance, state.UnlockedAchievements)
	state.UnlockedAchievements = evaluation.Unlocked
	save.State = state

	if err := s.store(ctx, save); err != nil {
		return PlayerView{}, nil, err
	}

	for _, achievement := range evaluation.NewlyUnlocked {
		recordUnlock(ctx, achievement.ID)
	}

	view := newPlayerView(s.Rules, save)

	events := make([]PlayerEvent, 0, 1+len(evaluation.NewlyUnlocked))
	events = append(events, StateEvent(view))
	for _, achievement := range evaluation.NewlyUnlocked {
		events = append(events, AchievementEvent(achievement))
	}
	s.Publisher.Publish(ctx, playerID, events...)

	return view, evaluation.NewlyUnlocked, nil
}
