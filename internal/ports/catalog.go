package ports

import (
	"log/slog"
	"net/http"

	"github.com/Amund211/timba/internal/app"
)

func MakeGetCatalogHandler(
	getCatalog app.GetCatalog,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := buildHandlerMiddleware("catalog", allowedOrigins, rootLogger, sentryMiddleware, playerRateLimit{})

	handler := func(w http.ResponseWriter, r *http.Request) {
		catalog := getCatalog()

		upgrades := make([]upgradeResponse, 0, len(catalog.Upgrades))
		for _, upgrade := range catalog.Upgrades {
			upgrades = append(upgrades, upgradeToResponse(upgrade))
		}

		writeJSON(r.Context(), w, http.StatusOK, catalogResponse{
			Success: true,
			Constants: constantsResponse{
				BaseMaxEnergy:    catalog.Constants.BaseMaxEnergy,
				EnergyCostPerTap: catalog.Constants.EnergyCostPerTap,
				RegenPerSecond:   catalog.Constants.RegenPerSecond,
				BaseClickValue:   catalog.Constants.BaseClickValue,
			},
			Upgrades:     upgrades,
			Achievements: achievementsToResponse(catalog.Achievements),
		})
	}

	return middleware(handler)
}
