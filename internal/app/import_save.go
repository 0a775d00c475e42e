package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Amund211/timba/internal/domain"
	"github.com/Amund211/timba/internal/logging"
)

type ImportResult struct {
	// False when the stored save was kept because it had progressed further
	Imported bool
	View     PlayerView
}

// ImportSave stores a client side save for the player.
// A stored save with a greater peak balance wins over the import.
type ImportSave func(ctx context.Context, playerID string, incoming domain.Save) (ImportResult, error)

func BuildImportSave(deps PlayerDeps) ImportSave {
	session := newPlayerSession(deps)

	return func(ctx context.Context, playerID string, incoming domain.Save) (ImportResult, error) {
		if err := session.validatePlayerID(ctx, playerID); err != nil {
			return ImportResult{}, err
		}

		unlock := session.Locks.Lock(playerID)
		defer unlock()

		now := session.NowFunc()
		state := session.Rules.Normalize(incoming.State)

		existing, err := session.Repo.GetSave(ctx, playerID)
		switch {
		case errors.Is(err, domain.ErrSaveNotFound):
		case err != nil:
			// NOTE: SaveRepository implementations handle their own error reporting
			return ImportResult{}, fmt.Errorf("failed to get existing save: %w", err)
		case existing.State.PeakBalance > state.PeakBalance:
			logging.FromContext(ctx).InfoContext(ctx, "Keeping stored save with greater peak balance",
				slog.Int64("storedPeak", existing.State.PeakBalance),
				slog.Int64("importedPeak", state.PeakBalance),
			)
			existing = reconcileRegen(session.Rules, existing, now)
			return ImportResult{
				Imported: false,
				View:     newPlayerView(session.Rules, existing),
			}, nil
		}

		save := domain.Save{
			PlayerID:   playerID,
			State:      state,
			LastUpdate: incoming.LastUpdate,
		}
		if save.LastUpdate.IsZero() || save.LastUpdate.After(now) {
			save.LastUpdate = now
		}

		evaluation := session.Rules.EvaluateAchievements(save.State.PeakBalance, save.State.UnlockedAchievements)
		save.State.UnlockedAchievements = evaluation.Unlocked

		if err := session.store(ctx, save); err != nil {
			return ImportResult{}, err
		}

		view := newPlayerView(session.Rules, reconcileRegen(session.Rules, save, now))

		events := []PlayerEvent{StateEvent(view)}
		for _, achievement := range evaluation.NewlyUnlocked {
			recordUnlock(ctx, achievement.ID)
			events = append(events, AchievementEvent(achievement))
		}
		session.Publisher.Publish(ctx, playerID, events...)

		return ImportResult{
			Imported: true,
			View:     view,
		}, nil
	}
}
