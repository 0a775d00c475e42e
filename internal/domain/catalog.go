package domain

type ShopItem struct {
	Upgrade   UpgradeDefinition
	Level     int
	Cost      int64
	CanAfford bool
}

type AchievementProgress struct {
	Achievement AchievementDefinition
	Unlocked    bool
	// Progress is min(peakBalance / threshold, 1)
	Progress float64
}

// Shop lists every upgrade with the player's level and the price of the next purchase.
func (r Rules) Shop(state PlayerState) []ShopItem {
	items := make([]ShopItem, 0, len(r.upgrades))
	for _, upgrade := range r.upgrades {
		level := 0
		if upgrade.Kind == UpgradeKindStackable {
			level = state.Upgrades.Level(upgrade.ID)
		}
		cost := r.Cost(upgrade.ID, level)
		items = append(items, ShopItem{
			Upgrade:   upgrade,
			Level:     level,
			Cost:      cost,
			CanAfford: state.Balance >= cost,
		})
	}
	return items
}

func (r Rules) AchievementProgress(peakBalance int64, unlocked AchievementSet) []AchievementProgress {
	progress := make([]AchievementProgress, 0, len(r.achievements))
	for _, achievement := range r.achievements {
		fraction := 1.0
		if achievement.BalanceThreshold > 0 {
			fraction = min(float64(max(peakBalance, 0))/float64(achievement.BalanceThreshold), 1)
		}
		progress = append(progress, AchievementProgress{
			Achievement: achievement,
			Unlocked:    unlocked.Has(achievement.ID),
			Progress:    fraction,
		})
	}
	return progress
}
