package ports

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Amund211/timba/internal/domain"
	"github.com/Amund211/timba/internal/logging"
	"github.com/Amund211/timba/internal/ratelimiting"
	"github.com/Amund211/timba/internal/reporting"
	"github.com/Amund211/timba/internal/strutils"
)

type playerRateLimit struct {
	refillPerSecond ratelimiting.RefillPerSecond
	burstSize       ratelimiting.BurstSize
}

// buildHandlerMiddleware is the middleware chain shared by all api handlers.
// A zero playerLimit disables the per-player limiter.
func buildHandlerMiddleware(
	handlerName string,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
	playerLimit playerRateLimit,
) func(http.HandlerFunc) http.HandlerFunc {
	ipLimiter, _ := ratelimiting.NewTokenBucketRateLimiter(
		ratelimiting.RefillPerSecond(20),
		ratelimiting.BurstSize(600),
	)
	ipRateLimiter := ratelimiting.NewRequestBasedRateLimiter(
		ipLimiter,
		ratelimiting.IPKeyFunc,
	)

	middlewares := []func(http.HandlerFunc) http.HandlerFunc{
		buildMetricsMiddleware(),
		logging.NewRequestLoggerMiddleware(rootLogger),
		sentryMiddleware,
		reporting.NewAddMetaMiddleware(handlerName),
		BuildCORSMiddleware(allowedOrigins),
		NewRateLimitMiddleware(rateLimitScopeIP, ipRateLimiter, 1),
	}

	if playerLimit.refillPerSecond > 0 {
		playerLimiter, _ := ratelimiting.NewTokenBucketRateLimiter(
			playerLimit.refillPerSecond,
			playerLimit.burstSize,
		)
		playerRateLimiter := ratelimiting.NewRequestBasedRateLimiter(
			// NOTE: Rate limiting based on user controlled value
			playerLimiter,
			ratelimiting.PlayerIDKeyFunc,
		)
		middlewares = append(middlewares, NewRateLimitMiddleware(rateLimitScopePlayer, playerRateLimiter, 1))
	}

	return ComposeMiddlewares(middlewares...)
}

// playerIDFromRequest normalizes the playerID path value and adds it to the request meta
func playerIDFromRequest(r *http.Request) (context.Context, string, bool) {
	ctx := r.Context()
	rawPlayerID := r.PathValue("playerID")

	ctx = reporting.AddExtrasToContext(ctx, map[string]string{
		"rawPlayerID": rawPlayerID,
	})

	playerID, err := strutils.NormalizePlayerID(rawPlayerID)
	if err != nil {
		logging.FromContext(ctx).InfoContext(ctx, "Invalid player id", "error", err)
		return ctx, "", false
	}

	ctx = reporting.SetPlayerIDInContext(ctx, playerID)
	ctx = logging.AddPlayerToContext(ctx, playerID)
	return ctx, playerID, true
}

// writeAppError maps use-case errors to responses
func writeAppError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidPlayerID):
		writeError(ctx, w, "invalid player id", http.StatusBadRequest)
	case errors.Is(err, domain.ErrInvalidTapCount):
		writeError(ctx, w, "invalid tap count", http.StatusBadRequest)
	case errors.Is(err, domain.ErrSaveNotFound):
		writeError(ctx, w, "not found", http.StatusNotFound)
	default:
		// NOTE: Use-cases and repositories handle their own error reporting
		logging.FromContext(ctx).ErrorContext(ctx, "Player action failed", "error", err)
		writeError(ctx, w, "internal server error", http.StatusInternalServerError)
	}
}
