package cache

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Amund211/timba/internal/logging"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// GetOrCreate returns the cached value for key, loading it with create on a miss.
//
// Concurrent callers for the same key wait for the first one instead of loading in parallel.
// The boolean result reports whether this call ran create.
func GetOrCreate[T any](ctx context.Context, cache Cache[T], key string, create func() (T, error)) (T, bool, error) {
	// A claimed key that never gets set is released so a waiting caller can load it
	claimed := false
	set := false
	defer func() {
		if claimed && !set {
			cache.delete(key)
		}
	}()

	waited := false
	logger := logging.FromContext(ctx).With(slog.String("cacheKey", key))

	for {
		result := cache.getOrClaim(key)

		if result.claimed {
			claimed = true
			recordLookup(ctx, "miss", waited)
			logger.InfoContext(ctx, "Loading save into cache", "cache", "miss", "waited", waited)

			data, err := create()
			if err != nil {
				var empty T
				return empty, false, fmt.Errorf("failed to create cache entry for %s: %w", key, err)
			}

			cache.set(key, data)
			set = true

			return data, true, nil
		}

		if result.valid {
			recordLookup(ctx, "hit", waited)
			logger.InfoContext(ctx, "Serving save from cache", "cache", "hit", "waited", waited)
			return result.data, false, nil
		}

		if err := ctx.Err(); err != nil {
			var empty T
			return empty, false, fmt.Errorf("waiting for cache entry %s: %w", key, err)
		}
		waited = true
		cache.wait()
	}
}

func recordLookup(ctx context.Context, result string, waited bool) {
	metrics.lookupCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("result", result),
		attribute.Bool("waited", waited),
	))
}
