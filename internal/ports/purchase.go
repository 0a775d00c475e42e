package ports

import (
	"log/slog"
	"net/http"

	"github.com/Amund211/timba/internal/app"
	"github.com/Amund211/timba/internal/domain"
	"github.com/Amund211/timba/internal/logging"
)

type purchaseRequest struct {
	UpgradeID string `json:"upgradeId"`
}

func MakePurchaseHandler(
	purchase app.Purchase,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := buildHandlerMiddleware(
		"purchase",
		allowedOrigins,
		rootLogger,
		sentryMiddleware,
		playerRateLimit{refillPerSecond: 5, burstSize: 120},
	)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx, playerID, ok := playerIDFromRequest(r)
		if !ok {
			writeError(ctx, w, "invalid player id", http.StatusBadRequest)
			return
		}

		var request purchaseRequest
		if err := decodeBody(w, r, purchaseSchema, &request); err != nil {
			logging.FromContext(ctx).InfoContext(ctx, "Invalid purchase request", "error", err)
			writeError(ctx, w, "invalid request body", http.StatusBadRequest)
			return
		}
		ctx = logging.AddMetaToContext(ctx, slog.String("upgradeId", request.UpgradeID))

		result, err := purchase(ctx, playerID, domain.UpgradeID(request.UpgradeID))
		if err != nil {
			writeAppError(ctx, w, err)
			return
		}

		writeJSON(ctx, w, http.StatusOK, purchaseResponse{
			Success:  result.Accepted,
			Declined: !result.Accepted,
			Reason:   string(result.Reason),
			Price:    result.Price,
			Player:   playerViewToResponse(result.View),
		})
	}

	return middleware(handler)
}
