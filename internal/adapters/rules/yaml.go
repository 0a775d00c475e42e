package rules

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Amund211/timba/internal/domain"
	"gopkg.in/yaml.v3"
)

// Balance overrides. Every field is optional, unset fields keep their default.
type rawRules struct {
	Constants    rawConstants     `yaml:"constants"`
	Upgrades     []rawUpgrade     `yaml:"upgrades"`
	Achievements []rawAchievement `yaml:"achievements"`
}

type rawConstants struct {
	BaseMaxEnergy    *int64   `yaml:"baseMaxEnergy"`
	EnergyCostPerTap *int64   `yaml:"energyCostPerTap"`
	RegenPerSecond   *float64 `yaml:"regenPerSecond"`
	BaseClickValue   *int64   `yaml:"baseClickValue"`
}

type rawUpgrade struct {
	ID             string   `yaml:"id"`
	Name           *string  `yaml:"name"`
	Description    *string  `yaml:"description"`
	Kind           *string  `yaml:"kind"`
	Effect         *string  `yaml:"effect"`
	BasePrice      *int64   `yaml:"basePrice"`
	PriceGrowth    *float64 `yaml:"priceGrowth"`
	EffectPerLevel *int64   `yaml:"effectPerLevel"`
}

type rawAchievement struct {
	ID               string  `yaml:"id"`
	Title            *string `yaml:"title"`
	Description      *string `yaml:"description"`
	BalanceThreshold *int64  `yaml:"balanceThreshold"`
}

// Load reads balance overrides from path and merges them over the default rules.
// An empty path returns the default rules.
func Load(path string) (domain.Rules, error) {
	if path == "" {
		return domain.DefaultRules(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Rules{}, fmt.Errorf("failed to read rules file: %w", err)
	}

	rules, err := Parse(data)
	if err != nil {
		return domain.Rules{}, fmt.Errorf("%s: %w", path, err)
	}
	return rules, nil
}

func Parse(data []byte) (domain.Rules, error) {
	var raw rawRules

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return domain.Rules{}, fmt.Errorf("failed to parse rules: %w", err)
	}

	return merge(domain.DefaultRules(), raw)
}

func setIfPresent[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func merge(base domain.Rules, raw rawRules) (domain.Rules, error) {
	constants := base.Constants()
	setIfPresent(&constants.BaseMaxEnergy, raw.Constants.BaseMaxEnergy)
	setIfPresent(&constants.EnergyCostPerTap, raw.Constants.EnergyCostPerTap)
	setIfPresent(&constants.RegenPerSecond, raw.Constants.RegenPerSecond)
	setIfPresent(&constants.BaseClickValue, raw.Constants.BaseClickValue)

	upgrades := base.Upgrades()
	for _, override := range raw.Upgrades {
		if override.ID == "" {
			return domain.Rules{}, fmt.Errorf("%w: upgrade override without id", domain.ErrInvalidRules)
		}

		index := -1
		for i, upgrade := range upgrades {
			if upgrade.ID == domain.UpgradeID(override.ID) {
				index = i
				break
			}
		}
		if index == -1 {
			upgrades = append(upgrades, domain.UpgradeDefinition{ID: domain.UpgradeID(override.ID)})
			index = len(upgrades) - 1
		}

		upgrade := &upgrades[index]
		setIfPresent(&upgrade.Name, override.Name)
		setIfPresent(&upgrade.Description, override.Description)
		if override.Kind != nil {
			upgrade.Kind = domain.UpgradeKind(*override.Kind)
		}
		if override.Effect != nil {
			upgrade.Effect = domain.UpgradeEffect(*override.Effect)
		}
		setIfPresent(&upgrade.BasePrice, override.BasePrice)
		setIfPresent(&upgrade.PriceGrowth, override.PriceGrowth)
		setIfPresent(&upgrade.EffectPerLevel, override.EffectPerLevel)
	}

	achievements := base.Achievements()
	for _, override := range raw.Achievements {
		if override.ID == "" {
			return domain.Rules{}, fmt.Errorf("%w: achievement override without id", domain.ErrInvalidRules)
		}

		index := -1
		for i, achievement := range achievements {
			if achievement.ID == domain.AchievementID(override.ID) {
				index = i
				break
			}
		}
		if index == -1 {
			achievements = append(achievements, domain.AchievementDefinition{ID: domain.AchievementID(override.ID)})
			index = len(achievements) - 1
		}

		achievement := &achievements[index]
		setIfPresent(&achievement.Title, override.Title)
		setIfPresent(&achievement.Description, override.Description)
		setIfPresent(&achievement.BalanceThreshold, override.BalanceThreshold)
	}

	rules, err := domain.NewRules(constants, upgrades, achievements)
	if err != nil {
		return domain.Rules{}, fmt.Errorf("merged rules are invalid: %w", err)
	}
	return rules, nil
}
