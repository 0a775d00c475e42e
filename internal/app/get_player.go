package app

import (
	"context"
	"fmt"

	"github.com/Amund211/timba/internal/domain"
)

// GetPlayer returns the stored state with idle regeneration projected to now. Nothing is persisted.
type GetPlayer func(ctx context.Context, playerID string) (PlayerView, error)

func BuildGetPlayer(deps PlayerDeps) GetPlayer {
	session := newPlayerSession(deps)

	return func(ctx context.Context, playerID string) (PlayerView, error) {
		if err := session.validatePlayerID(ctx, playerID); err != nil {
			return PlayerView{}, err
		}

		save, err := session.Repo.GetSave(ctx, playerID)
		if err != nil {
			// NOTE: SaveRepository implementations handle their own error reporting
			return PlayerView{}, fmt.Errorf("failed to get save: %w", err)
		}

		save = reconcileRegen(session.Rules, save, session.NowFunc())
		return newPlayerView(session.Rules, save), nil
	}
}

// CreatePlayer starts a guest save under a freshly generated id
type CreatePlayer func(ctx context.Context) (PlayerView, error)

func BuildCreatePlayer(deps PlayerDeps, newPlayerID func() string) CreatePlayer {
	session := newPlayerSession(deps)

	return func(ctx context.Context) (PlayerView, error) {
		save := domain.Save{
			PlayerID:   newPlayerID(),
			State:      session.Rules.NewPlayerState(),
			LastUpdate: session.NowFunc(),
		}

		if err := session.validatePlayerID(ctx, save.PlayerID); err != nil {
			return PlayerView{}, err
		}

		if err := session.store(ctx, save); err != nil {
			return PlayerView{}, err
		}

		return newPlayerView(session.Rules, save), nil
	}
}
