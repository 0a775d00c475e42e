package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Amund211/timba/internal/domain"
	"github.com/Amund211/timba/internal/logging"
)

type PurchaseResult struct {
	Accepted bool
	Reason   domain.Decline
	// The price that was charged, or that would have been charged when declined
	Price int64
	View  PlayerView
}

type Purchase func(ctx context.Context, playerID string, upgradeID domain.UpgradeID) (PurchaseResult, error)

func BuildPurchase(deps PlayerDeps) Purchase {
	session := newPlayerSession(deps)

	return func(ctx context.Context, playerID string, upgradeID domain.UpgradeID) (PurchaseResult, error) {
		var outcome domain.PurchaseOutcome

		view, _, err := session.update(ctx, playerID, func(state domain.PlayerState) domain.PlayerState {
			outcome = session.Rules.ResolvePurchase(state, upgradeID)
			return outcome.Apply(state)
		})
		if err != nil {
			return PurchaseResult{}, fmt.Errorf("failed to apply purchase: %w", err)
		}

		if outcome.Accepted {
			recordPurchase(ctx, upgradeID)
			logging.FromContext(ctx).InfoContext(ctx, "Purchased upgrade",
				slog.String("upgrade", string(upgradeID)),
				slog.Int64("price", outcome.Price),
			)
		} else {
			recordDecline(ctx, "purchase", outcome.Reason)
		}

		return PurchaseResult{
			Accepted: outcome.Accepted,
			Reason:   outcome.Reason,
			Price:    outcome.Price,
			View:     view,
		}, nil
	}
}
