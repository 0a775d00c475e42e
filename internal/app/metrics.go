package app

import (
	"context"
	"fmt"

	"github.com/Amund211/timba/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type appMetricsCollection struct {
	tapCount      metric.Int64Counter
	purchaseCount metric.Int64Counter
	declineCount  metric.Int64Counter
	unlockCount   metric.Int64Counter
}

var metrics appMetricsCollection

func init() {
	const name = "timba/app"
	meter := otel.Meter(name)

	tapCount, err := meter.Int64Counter(
		"app/tap_count",
		metric.WithDescription("Total number of accepted taps"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create tap count metric: %w", err))
	}

	purchaseCount, err := meter.Int64Counter(
		"app/purchase_count",
		metric.WithDescription("Total number of accepted purchases"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create purchase count metric: %w", err))
	}

	declineCount, err := meter.Int64Counter(
		"app/decline_count",
		metric.WithDescription("Total number of declined actions"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create decline count metric: %w", err))
	}

	unlockCount, err := meter.Int64Counter(
		"app/achievement_unlock_count",
		metric.WithDescription("Total number of unlocked achievements"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create unlock count metric: %w", err))
	}

	metrics = appMetricsCollection{
		tapCount:      tapCount,
		purchaseCount: purchaseCount,
		declineCount:  declineCount,
		unlockCount:   unlockCount,
	}
}

func recordTaps(ctx context.Context, accepted int) {
	if accepted > 0 {
		metrics.tapCount.Add(ctx, int64(accepted))
	}
}

func recordPurchase(ctx context.Context, id domain.UpgradeID) {
	metrics.purchaseCount.Add(ctx, 1, metric.WithAttributes(attribute.String("upgrade", string(id))))
}

func recordDecline(ctx context.Context, action string, reason domain.Decline) {
	metrics.declineCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", action),
		attribute.String("reason", string(reason)),
	))
}

func recordUnlock(ctx context.Context, id domain.AchievementID) {
	metrics.unlockCount.Add(ctx, 1, metric.WithAttributes(attribute.String("achievement", string(id))))
}
