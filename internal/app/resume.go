package app

import (
	"context"
	"fmt"

	"github.com/Amund211/timba/internal/domain"
)

// Resume persists the idle regeneration accumulated since the last update
type Resume func(ctx context.Context, playerID string) (PlayerView, error)

func BuildResume(deps PlayerDeps) Resume {
	session := newPlayerSession(deps)

	return func(ctx context.Context, playerID string) (PlayerView, error) {
		view, _, err := session.update(ctx, playerID, func(state domain.PlayerState) domain.PlayerState {
			return state
		})
		if err != nil {
			return PlayerView{}, fmt.Errorf("failed to resume: %w", err)
		}
		return view, nil
	}
}
