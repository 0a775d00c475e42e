package ports

import (
	"log/slog"
	"net/http"

	"github.com/Amund211/timba/internal/app"
	"github.com/Amund211/timba/internal/logging"
)

func MakeGetPlayerHandler(
	getPlayer app.GetPlayer,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := buildHandlerMiddleware(
		"get_player",
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

		view, err := getPlayer(ctx, playerID)
		if err != nil {
			writeAppError(ctx, w, err)
			return
		}

		writeJSON(ctx, w, http.StatusOK, playerEnvelope{
			Success: true,
			Player:  playerViewToResponse(view),
		})
	}

	return middleware(handler)
}

func MakeCreatePlayerHandler(
	createPlayer app.CreatePlayer,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := buildHandlerMiddleware("create_player", allowedOrigins, rootLogger, sentryMiddleware, playerRateLimit{})

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		view, err := createPlayer(ctx)
		if err != nil {
			writeAppError(ctx, w, err)
			return
		}

		logging.FromContext(ctx).InfoContext(ctx, "Created guest player", slog.String("createdPlayerId", view.PlayerID))

		writeJSON(ctx, w, http.StatusCreated, playerEnvelope{
			Success: true,
			Player:  playerViewToResponse(view),
		})
	}

	return middleware(handler)
}

func MakeResumeHandler(
	resume app.Resume,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := buildHandlerMiddleware(
		"resume",
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

		view, err := resume(ctx, playerID)
		if err != nil {
			writeAppError(ctx, w, err)
			return
		}

		writeJSON(ctx, w, http.StatusOK, playerEnvelope{
			Success: true,
			Player:  playerViewToResponse(view),
		})
	}

	return middleware(handler)
}
