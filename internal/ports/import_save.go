package ports

import (
	"log/slog"
	"net/http"

	"github.com/Amund211/timba/internal/adapters/saverepository"
	"github.com/Amund211/timba/internal/app"
	"github.com/Amund211/timba/internal/domain"
	"github.com/Amund211/timba/internal/logging"
)

// MakeImportSaveHandler accepts the save blob kept in the browser's local storage.
// The blob uses the same format as stored saves.
func MakeImportSaveHandler(
	importSave app.ImportSave,
	rules domain.Rules,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := buildHandlerMiddleware(
		"import_save",
		allowedOrigins,
		rootLogger,
		sentryMiddleware,
		playerRateLimit{refillPerSecond: 1, burstSize: 10},
	)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx, playerID, ok := playerIDFromRequest(r)
		if !ok {
			writeError(ctx, w, "invalid player id", http.StatusBadRequest)
			return
		}

		var blob saverepository.Blob
		if err := decodeBody(w, r, saveSchema, &blob); err != nil {
			logging.FromContext(ctx).InfoContext(ctx, "Invalid save blob", "error", err)
			writeError(ctx, w, "invalid save blob", http.StatusBadRequest)
			return
		}

		result, err := importSave(ctx, playerID, blob.ToSave(playerID, rules))
		if err != nil {
			writeAppError(ctx, w, err)
			return
		}

		writeJSON(ctx, w, http.StatusOK, importResponse{
			Success:  true,
			Imported: result.Imported,
			Player:   playerViewToResponse(result.View),
		})
	}

	return middleware(handler)
}
