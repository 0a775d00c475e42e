package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Amund211/timba/internal/domain"
	"github.com/Amund211/timba/internal/logging"
)

const MAX_TAPS_PER_REQUEST = 100

type TapResult struct {
	Requested int
	Accepted  int
	// Why the first refused tap was declined. Empty when every tap was accepted.
	Reason        domain.Decline
	NewlyUnlocked []domain.AchievementDefinition
	View          PlayerView
}

type Tap func(ctx context.Context, playerID string, taps int) (TapResult, error)

// BuildTap resolves up to taps taps in order, stopping at the first decline
func BuildTap(deps PlayerDeps) Tap {
	session := newPlayerSession(deps)

	return func(ctx context.Context, playerID string, taps int) (TapResult, error) {
		if taps < 1 || taps > MAX_TAPS_PER_REQUEST {
			return TapResult{}, fmt.Errorf("%w: %d (must be 1-%d)", domain.ErrInvalidTapCount, taps, MAX_TAPS_PER_REQUEST)
		}

		accepted := 0
		reason := domain.DeclineNone

		view, newlyUnlocked, err := session.update(ctx, playerID, func(state domain.PlayerState) domain.PlayerState {
			for range taps {
				outcome := session.Rules.ResolveTap(state)
				if !outcome.Accepted {
					reason = outcome.Reason
					break
				}
				state = outcome.Apply(state)
				accepted++
			}
			return state
		})
		if err != nil {
			return TapResult{}, fmt.Errorf("failed to apply taps: %w", err)
		}

		recordTaps(ctx, accepted)
		if reason != domain.DeclineNone {
			recordDecline(ctx, "tap", reason)
			logging.FromContext(ctx).InfoContext(ctx, "Tap declined",
				slog.String("reason", string(reason)),
				slog.Int("accepted", accepted),
				slog.Int("requested", taps),
			)
		}

		return TapResult{
			Requested:     taps,
			Accepted:      accepted,
			Reason:        reason,
			NewlyUnlocked: newlyUnlocked,
			View:          view,
		}, nil
	}
}
