package app

import (
	"context"
	"fmt"

	"github.com/Amund211/timba/internal/domain"
)

type AchievementResult struct {
	// In ascending threshold order
	NewlyUnlocked []domain.AchievementDefinition
	View          PlayerView
}

type CheckAchievements func(ctx context.Context, playerID string) (AchievementResult, error)

func BuildCheckAchievements(deps PlayerDeps) CheckAchievements {
	session := newPlayerSession(deps)

	return func(ctx context.Context, playerID string) (AchievementResult, error) {
		view, newlyUnlocked, err := session.update(ctx, playerID, func(state domain.PlayerState) domain.PlayerState {
			return state
		})
		if err != nil {
			return AchievementResult{}, fmt.Errorf("failed to check achievements: %w", err)
		}

		return AchievementResult{
			NewlyUnlocked: newlyUnlocked,
			View:          view,
		}, nil
	}
}
