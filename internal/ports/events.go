package ports

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Amund211/timba/internal/app"
	"github.com/Amund211/timba/internal/domain"
	"github.com/Amund211/timba/internal/logging"
)

type eventStream interface {
	Serve(w http.ResponseWriter, r *http.Request, playerID string, initial ...app.PlayerEvent) error
}

// MakeEventsHandler streams a player's state and achievement events over a websocket.
// The current state, if any, is sent first.
func MakeEventsHandler(
	getPlayer app.GetPlayer,
	stream eventStream,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := buildHandlerMiddleware(
		"events",
		allowedOrigins,
		rootLogger,
		sentryMiddleware,
		playerRateLimit{refillPerSecond: 1, burstSize: 30},
	)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx, playerID, ok := playerIDFromRequest(r)
		if !ok {
			writeError(ctx, w, "invalid player id", http.StatusBadRequest)
			return
		}

		var initial []app.PlayerEvent
		view, err := getPlayer(ctx, playerID)
		switch {
		case errors.Is(err, domain.ErrSaveNotFound):
		case err != nil:
			writeAppError(ctx, w, err)
			return
		default:
			initial = append(initial, app.StateEvent(view))
		}

		if err := stream.Serve(w, r.WithContext(ctx), playerID, initial...); err != nil {
			logging.FromContext(ctx).InfoContext(ctx, "Event stream failed", "error", err)
		}
	}

	return middleware(handler)
}

func MakeHealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"success":true}`))
	}
}
