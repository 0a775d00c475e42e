package domain

type AchievementEvaluation struct {
	// NewlyUnlocked is ordered by ascending threshold.
	NewlyUnlocked []AchievementDefinition
	Unlocked      AchievementSet
}

// EvaluateAchievements unlocks every achievement whose threshold is at most
// peakBalance and that is not already in unlocked.
//
// Evaluating the returned set again with the same peak unlocks nothing.
func (r Rules) EvaluateAchievements(peakBalance int64, unlocked AchievementSet) AchievementEvaluation {
	newlyUnlocked := []AchievementDefinition{}
	var ids []AchievementID

	// r.achievements is sorted by threshold
	for _, achievement := range r.achievements {
		if achievement.BalanceThreshold > peakBalance {
			break
		}
		if unlocked.Has(achievement.ID) {
			continue
		}
		newlyUnlocked = append(newlyUnlocked, achievement)
		ids = append(ids, achievement.ID)
	}

	return AchievementEvaluation{
		NewlyUnlocked: newlyUnlocked,
		Unlocked:      unlocked.With(ids...),
	}
}
