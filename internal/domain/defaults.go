package domain

// Convenience wrappers evaluating against DefaultRules.

func Cost(id UpgradeID, currentLevel int) int64 {
	return defaultRules.Cost(id, currentLevel)
}

func MaxEnergy(upgrades Levels) int64 {
	return defaultRules.MaxEnergy(upgrades)
}

func ClickValue(upgrades Levels) int64 {
	return defaultRules.ClickValue(upgrades)
}

func ResolveTap(state PlayerState) TapOutcome {
	return defaultRules.ResolveTap(state)
}

func ResolvePurchase(state PlayerState, id UpgradeID) PurchaseOutcome {
	return defaultRules.ResolvePurchase(state, id)
}

func ResolveRegen(energy int64, elapsedSeconds float64, upgrades Levels) int64 {
	return defaultRules.ResolveRegen(energy, elapsedSeconds, upgrades)
}

func EvaluateAchievements(peakBalance int64, unlocked AchievementSet) AchievementEvaluation {
	return defaultRules.EvaluateAchievements(peakBalance, unlocked)
}
