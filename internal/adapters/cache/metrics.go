package cache

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

type cacheMetricsCollection struct {
	lookupCount metric.Int64Counter
}

var metrics cacheMetricsCollection

func init() {
	const name = "timba/cache"
	meter := otel.Meter(name)

	lookupCount, err := meter.Int64Counter(
		"cache/lookup_count",
		metric.WithDescription("Save cache lookups by result"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create cache lookup metric: %w", err))
	}

	metrics = cacheMetricsCollection{
		lookupCount: lookupCount,
	}
}
