package saverepository

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Amund211/timba/internal/domain"
)

const DATA_FORMAT_VERSION = 1

// Blob is the JSON save format shared with the browser client's localStorage save
type Blob struct {
	Balance      int64          `json:"balance"`
	MaxBalance   int64          `json:"maxBalance"`
	Energy       *int64         `json:"energy,omitempty"`
	Upgrades     map[string]int `json:"upgrades"`
	Achievements []string       `json:"achievements"`
	LastSaveTime int64          `json:"lastSaveTime"`
}

func BlobFromSave(save domain.Save) Blob {
	upgrades := make(map[string]int, len(save.State.Upgrades))
	for id, level := range save.State.Upgrades {
		upgrades[string(id)] = level
	}

	ids := save.State.UnlockedAchievements.IDs()
	achievements := make([]string, 0, len(ids))
	for _, id := range ids {
		achievements = append(achievements, string(id))
	}

	energy := save.State.Energy

	return Blob{
		Balance:      save.State.Balance,
		MaxBalance:   save.State.PeakBalance,
		Energy:       &energy,
		Upgrades:     upgrades,
		Achievements: achievements,
		LastSaveTime: save.LastUpdate.UnixMilli(),
	}
}

// ToSave converts the blob into a normalized save.
//
// A missing energy field reads as a fresh bar of BaseMaxEnergy, as the browser
// client does. A missing lastSaveTime leaves LastUpdate zero for the caller to fill.
func (b Blob) ToSave(playerID string, rules domain.Rules) domain.Save {
	state := rules.NewPlayerState()
	if b.Energy != nil {
		state.Energy = *b.Energy
	}
	state.Balance = b.Balance
	state.PeakBalance = b.MaxBalance

	for id, level := range b.Upgrades {
		state.Upgrades[domain.UpgradeID(id)] = level
	}

	achievements := make([]domain.AchievementID, 0, len(b.Achievements))
	for _, id := range b.Achievements {
		achievements = append(achievements, domain.AchievementID(id))
	}
	state.UnlockedAchievements = domain.NewAchievementSet(achievements...)

	var lastUpdate time.Time
	if b.LastSaveTime > 0 {
		lastUpdate = time.UnixMilli(b.LastSaveTime)
	}

	return domain.Save{
		PlayerID:   playerID,
		State:      rules.Normalize(state),
		LastUpdate: lastUpdate,
	}
}

func encodeSave(save domain.Save) ([]byte, error) {
	data, err := json.Marshal(BlobFromSave(save))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal save: %w", err)
	}
	return data, nil
}

func decodeSave(playerID string, dataFormatVersion int, data []byte, rules domain.Rules, updatedAt time.Time) (domain.Save, error) {
	if dataFormatVersion != DATA_FORMAT_VERSION {
		return domain.Save{}, fmt.Errorf("unsupported data format version: %d", dataFormatVersion)
	}

	var blob Blob
	if err := json.Unmarshal(data, &blob); err != nil {
		return domain.Save{}, fmt.Errorf("failed to unmarshal save: %w", err)
	}

	save := blob.ToSave(playerID, rules)
	if save.LastUpdate.IsZero() {
		save.LastUpdate = updatedAt
	}
	return save, nil
}
