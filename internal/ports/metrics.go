package ports

import (
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type portsMetricsCollection struct {
	requestCount    metric.Int64Counter
	requestDuration metric.Float64Histogram
	rateLimited     metric.Int64Counter
}

var metrics portsMetricsCollection

func init() {
	const name = "timba/ports"
	meter := otel.Meter(name)

	requestCount, err := meter.Int64Counter(
		"ports/request_count",
		metric.WithDescription("Total number of requests received"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create request count metric: %w", err))
	}

	requestDuration, err := meter.Float64Histogram(
		"ports/request_duration_seconds",
		metric.WithDescription("Processing time for received requests"),
		metric.WithUnit("s"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create request duration metric: %w", err))
	}

	rateLimited, err := meter.Int64Counter(
		"ports/rate_limited_count",
		metric.WithDescription("Requests rejected by a rate limiter"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create rate limited metric: %w", err))
	}

	metrics = portsMetricsCollection{
		requestCount:    requestCount,
		requestDuration: requestDuration,
		rateLimited:     rateLimited,
	}
}

func buildMetricsMiddleware() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := r.Context()

			userAgent := r.UserAgent()
			if userAgent == "" {
				userAgent = "<missing>"
			}

			// NOTE: Potentially high cardinality label
			playerID := r.PathValue("playerID")
			if playerID == "" {
				playerID = "<missing>"
			}

			next(w, r)

			// The route pattern keeps player ids out of the path label
			path := r.Pattern
			if path == "" {
				path = r.URL.Path
			}

			attributes := []attribute.KeyValue{
				attribute.String("method", r.Method),
				attribute.String("path", path),
				attribute.String("user_agent", userAgent),
				attribute.String("player_id", playerID),
			}

			attributesOption := metric.WithAttributes(attributes...)

			metrics.requestCount.Add(ctx, 1, attributesOption)
			metrics.requestDuration.Record(ctx, time.Since(start).Seconds(), attributesOption)
		}
	}
}
