package ports

import (
	"net/http"
	"strconv"

	"github.com/Amund211/timba/internal/logging"
	"github.com/Amund211/timba/internal/ratelimiting"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type rateLimitScope string

const (
	rateLimitScopeIP     rateLimitScope = "ip"
	rateLimitScopePlayer rateLimitScope = "player"
)

// NewRateLimitMiddleware rejects requests the limiter refuses with a 429.
// retryAfterSeconds is sent as the Retry-After header.
func NewRateLimitMiddleware(scope rateLimitScope, rateLimiter ratelimiting.RequestRateLimiter, retryAfterSeconds int) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if rateLimiter.Consume(r) {
				next(w, r)
				return
			}

			ctx := r.Context()
			metrics.rateLimited.Add(ctx, 1, metric.WithAttributes(attribute.String("scope", string(scope))))
			logging.FromContext(ctx).InfoContext(ctx, "Rate limit exceeded", "scope", scope)

			w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
			writeError(ctx, w, "rate limit exceeded", http.StatusTooManyRequests)
		}
	}
}

// ComposeMiddlewares wraps h so the first middleware runs outermost
func ComposeMiddlewares(middlewares ...func(http.HandlerFunc) http.HandlerFunc) func(http.HandlerFunc) http.HandlerFunc {
	return func(h http.HandlerFunc) http.HandlerFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			h = middlewares[i](h)
		}
		return h
	}
}
