package ports

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Amund211/timba/internal/app"
	"github.com/Amund211/timba/internal/domain"
	"github.com/Amund211/timba/internal/logging"
)

type tapRequest struct {
	Taps int `json:"taps"`
}

func MakeTapHandler(
	tap app.Tap,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	// Clients batch taps, so this bounds round trips rather than taps
	middleware := buildHandlerMiddleware(
		"tap",
		allowedOrigins,
		rootLogger,
		sentryMiddleware,
		playerRateLimit{refillPerSecond: 10, burstSize: 300},
	)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx, playerID, ok := playerIDFromRequest(r)
		if !ok {
			writeError(ctx, w, "invalid player id", http.StatusBadRequest)
			return
		}

		request := tapRequest{Taps: 1}
		err := decodeBody(w, r, tapSchema, &request)
		if err != nil && !errors.Is(err, errEmptyBody) {
			logging.FromContext(ctx).InfoContext(ctx, "Invalid tap request", "error", err)
			writeError(ctx, w, "invalid request body", http.StatusBadRequest)
			return
		}

		result, err := tap(ctx, playerID, request.Taps)
		if err != nil {
			writeAppError(ctx, w, err)
			return
		}

		declined := result.Reason != domain.DeclineNone
		writeJSON(ctx, w, http.StatusOK, tapResponse{
			Success:   !declined,
			Declined:  declined,
			Reason:    string(result.Reason),
			Requested: result.Requested,
			Accepted:  result.Accepted,
			Unlocked:  achievementsToResponse(result.NewlyUnlocked),
			Player:    playerViewToResponse(result.View),
		})
	}

	return middleware(handler)
}
