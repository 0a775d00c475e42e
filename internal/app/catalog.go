package app

import "github.com/Amund211/timba/internal/domain"

type Catalog struct {
	Constants    domain.Constants
	Upgrades     []domain.UpgradeDefinition
	Achievements []domain.AchievementDefinition
}

type GetCatalog func() Catalog

func BuildGetCatalog(rules domain.Rules) GetCatalog {
	return func() Catalog {
		return Catalog{
			Constants:    rules.Constants(),
			Upgrades:     rules.Upgrades(),
			Achievements: rules.Achievements(),
		}
	}
}
