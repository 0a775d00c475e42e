package ports

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Amund211/timba/internal/app"
	"github.com/Amund211/timba/internal/domain"
	"github.com/Amund211/timba/internal/logging"
	"github.com/Amund211/timba/internal/reporting"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Cause   string `json:"cause"`
}

type upgradeResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Kind        string `json:"kind"`
	Effect      string `json:"effect"`

	BasePrice      int64   `json:"basePrice"`
	PriceGrowth    float64 `json:"priceGrowth,omitempty"`
	EffectPerLevel int64   `json:"effectPerLevel,omitempty"`
}

type achievementResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Threshold   int64  `json:"threshold"`
}

type shopItemResponse struct {
	upgradeResponse
	Level     int   `json:"level"`
	Cost      int64 `json:"cost"`
	CanAfford bool  `json:"canAfford"`
}

type trophyResponse struct {
	achievementResponse
	Unlocked bool    `json:"unlocked"`
	Progress float64 `json:"progress"`
}

type playerResponse struct {
	PlayerID     string         `json:"playerId"`
	Energy       int64          `json:"energy"`
	MaxEnergy    int64          `json:"maxEnergy"`
	Balance      int64          `json:"balance"`
	PeakBalance  int64          `json:"peakBalance"`
	ClickValue   int64          `json:"clickValue"`
	Upgrades     map[string]int `json:"upgrades"`
	Achievements []string       `json:"achievements"`
	// Unix milliseconds
	LastUpdate int64 `json:"lastUpdate"`

	Shop     []shopItemResponse `json:"shop"`
	Trophies []trophyResponse   `json:"trophies"`
}

type playerEnvelope struct {
	Success bool           `json:"success"`
	Player  playerResponse `json:"player"`
}

type tapResponse struct {
	Success   bool                  `json:"success"`
	Declined  bool                  `json:"declined"`
	Reason    string                `json:"reason,omitempty"`
	Requested int                   `json:"requested"`
	Accepted  int                   `json:"accepted"`
	Unlocked  []achievementResponse `json:"unlocked"`
	Player    playerResponse        `json:"player"`
}

type purchaseResponse struct {
	Success  bool           `json:"success"`
	Declined bool           `json:"declined"`
	Reason   string         `json:"reason,omitempty"`
	Price    int64          `json:"price"`
	Player   playerResponse `json:"player"`
}

type achievementsResponse struct {
	Success  bool                  `json:"success"`
	Unlocked []achievementResponse `json:"unlocked"`
	Player   playerResponse        `json:"player"`
}

type importResponse struct {
	Success  bool           `json:"success"`
	Imported bool           `json:"imported"`
	Player   playerResponse `json:"player"`
}

type constantsResponse struct {
	BaseMaxEnergy    int64   `json:"baseMaxEnergy"`
	EnergyCostPerTap int64   `json:"energyCostPerTap"`
	RegenPerSecond   float64 `json:"regenPerSecond"`
	BaseClickValue   int64   `json:"baseClickValue"`
}

type catalogResponse struct {
	Success      bool                  `json:"success"`
	Constants    constantsResponse     `json:"constants"`
	Upgrades     []upgradeResponse     `json:"upgrades"`
	Achievements []achievementResponse `json:"achievements"`
}

type eventResponse struct {
	Type        string               `json:"type"`
	State       *playerResponse      `json:"state,omitempty"`
	Achievement *achievementResponse `json:"achievement,omitempty"`
}

func upgradeToResponse(upgrade domain.UpgradeDefinition) upgradeResponse {
	return upgradeResponse{
		ID:             string(upgrade.ID),
		Name:           upgrade.Name,
		Description:    upgrade.Description,
		Kind:           string(upgrade.Kind),
		Effect:         string(upgrade.Effect),
		BasePrice:      upgrade.BasePrice,
		PriceGrowth:    upgrade.PriceGrowth,
		EffectPerLevel: upgrade.EffectPerLevel,
	}
}

func achievementToResponse(achievement domain.AchievementDefinition) achievementResponse {
	return achievementResponse{
		ID:          string(achievement.ID),
		Title:       achievement.Title,
		Description: achievement.Description,
		Threshold:   achievement.BalanceThreshold,
	}
}

func achievementsToResponse(achievements []domain.AchievementDefinition) []achievementResponse {
	out := make([]achievementResponse, 0, len(achievements))
	for _, achievement := range achievements {
		out = append(out, achievementToResponse(achievement))
	}
	return out
}

func playerViewToResponse(view app.PlayerView) playerResponse {
	upgrades := make(map[string]int, len(view.State.Upgrades))
	for id, level := range view.State.Upgrades {
		upgrades[string(id)] = level
	}

	ids := view.State.UnlockedAchievements.IDs()
	achievements := make([]string, 0, len(ids))
	for _, id := range ids {
		achievements = append(achievements, string(id))
	}

	shop := make([]shopItemResponse, 0, len(view.Shop))
	for _, item := range view.Shop {
		shop = append(shop, shopItemResponse{
			upgradeResponse: upgradeToResponse(item.Upgrade),
			Level:           item.Level,
			Cost:            item.Cost,
			CanAfford:       item.CanAfford,
		})
	}

	trophies := make([]trophyResponse, 0, len(view.Achievements))
	for _, progress := range view.Achievements {
		trophies = append(trophies, trophyResponse{
			achievementResponse: achievementToResponse(progress.Achievement),
			Unlocked:            progress.Unlocked,
			Progress:            progress.Progress,
		})
	}

	return playerResponse{
		PlayerID:     view.PlayerID,
		Energy:       view.State.Energy,
		MaxEnergy:    view.MaxEnergy,
		Balance:      view.State.Balance,
		PeakBalance:  view.State.PeakBalance,
		ClickValue:   view.ClickValue,
		Upgrades:     upgrades,
		Achievements: achievements,
		LastUpdate:   view.LastUpdate.UnixMilli(),
		Shop:         shop,
		Trophies:     trophies,
	}
}

// EncodePlayerEvent renders an event for the websocket stream
func EncodePlayerEvent(event app.PlayerEvent) ([]byte, error) {
	response := eventResponse{Type: string(event.Type)}

	switch event.Type {
	case app.PlayerEventState:
		if event.View == nil {
			return nil, fmt.Errorf("state event without view")
		}
		state := playerViewToResponse(*event.View)
		response.State = &state
	case app.PlayerEventAchievement:
		if event.Achievement == nil {
			return nil, fmt.Errorf("achievement event without achievement")
		}
		achievement := achievementToResponse(*event.Achievement)
		response.Achievement = &achievement
	default:
		return nil, fmt.Errorf("unknown event type: %s", event.Type)
	}

	data, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return data, nil
}

func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, response any) {
	data, err := json.Marshal(response)
	if err != nil {
		reporting.Report(ctx, fmt.Errorf("failed to marshal response: %w", err))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success":false,"cause":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if _, err := w.Write(data); err != nil {
		logging.FromContext(ctx).ErrorContext(ctx, "Failed to write response", "error", err)
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, cause string, statusCode int) {
	logging.FromContext(ctx).InfoContext(ctx, "Returning error", "statusCode", statusCode, "cause", cause)
	writeJSON(ctx, w, statusCode, errorResponse{Success: false, Cause: cause})
}
