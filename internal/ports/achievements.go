package ports

import (
	"log/slog"
	"net/http"

	"github.com/Amund211/timba/internal/app"
)

func MakeCheckAchievementsHandler(
	checkAchievements app.CheckAchievements,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := buildHandlerMiddleware(
		"check_achievements",
		allowedOrigins,
		rootLogger,
		sentryMiddleware,
		playerRateLimit{refillPerSecond: 2, burstSize: 120},
	)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx, playerID, ok := playerIDFromRequest(r)
		if !ok {
			writeError(ctx, w, "invalid player id", http.StatusBadRequest)
			return
		}

		result, err := checkAchievements(ctx, playerID)
		if err != nil {
			writeAppError(ctx, w, err)
			return
		}

		writeJSON(ctx, w, http.StatusOK, achievementsResponse{
			Success:  true,
			Unlocked: achievementsToResponse(result.NewlyUnlocked),
			Player:   playerViewToResponse(result.View),
		})
	}

	return middleware(handler)
}
