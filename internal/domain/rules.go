package domain

import (
	"cmp"
	"fmt"
	"math"
	"slices"
)

// UnaffordablePrice is the cost reported for upgrades that do not exist.
const UnaffordablePrice int64 = 999_999_999

// MaxUpgradeLevel bounds stackable levels so derived stats stay far from overflow.
const MaxUpgradeLevel = 10_000

type UpgradeKind string

const (
	UpgradeKindStackable  UpgradeKind = "stackable"
	UpgradeKindConsumable UpgradeKind = "consumable"
)

type UpgradeEffect string

const (
	EffectClickValue UpgradeEffect = "clickValue"
	EffectMaxEnergy  UpgradeEffect = "maxEnergy"
	EffectFullRefill UpgradeEffect = "fullRefill"
)

type Constants struct {
	BaseMaxEnergy    int64
	EnergyCostPerTap int64
	RegenPerSecond   float64
	BaseClickValue   int64
}

type UpgradeDefinition struct {
	ID          UpgradeID
	Name        string
	Description string

	Kind   UpgradeKind
	Effect UpgradeEffect

	BasePrice      int64
	PriceGrowth    float64
	EffectPerLevel int64
}

type AchievementDefinition struct {
	ID          AchievementID
	Title       string
	Description string

	BalanceThreshold int64
}

// Rules is the immutable balance sheet of the economy.
//
// All engine operations are methods on Rules. The zero value is not usable,
// construct with NewRules or DefaultRules.
type Rules struct {
	constants    Constants
	upgrades     []UpgradeDefinition
	achievements []AchievementDefinition
}

var defaultRules = mustNewRules(
	Constants{
		BaseMaxEnergy:    100,
		EnergyCostPerTap: 1,
		RegenPerSecond:   1,
		BaseClickValue:   1,
	},
	[]UpgradeDefinition{
		{
			ID:             UpgradeMultitap,
			Name:           "Multitap",
			Description:    "Increases Timbitas per click (+1)",
			Kind:           UpgradeKindStackable,
			Effect:         EffectClickValue,
			BasePrice:      50,
			PriceGrowth:    2.0,
			EffectPerLevel: 1,
		},
		{
			ID:             UpgradeEnergyTank,
			Name:           "Energy Tank",
			Description:    "Increases Max Energy (+100)",
			Kind:           UpgradeKindStackable,
			Effect:         EffectMaxEnergy,
			BasePrice:      100,
			PriceGrowth:    1.5,
			EffectPerLevel: 100,
		},
		{
			ID:          UpgradeFullRefill,
			Name:        "Full Refill",
			Description: "Instantly restores full energy",
			Kind:        UpgradeKindConsumable,
			Effect:      EffectFullRefill,
			BasePrice:   200,
		},
	},
	[]AchievementDefinition{
		{ID: "rookie", Title: "ROOKIE ROLLER", Description: "Reach 1,000 Timbitas", BalanceThreshold: 1_000},
		{ID: "highstakes", Title: "HIGH STAKES", Description: "Reach 10,000 Timbitas", BalanceThreshold: 10_000},
		{ID: "boss", Title: "CASINO BOSS", Description: "Reach 50,000 Timbitas", BalanceThreshold: 50_000},
		{ID: "god", Title: "TIMBA GOD", Description: "Reach 100,000 Timbitas", BalanceThreshold: 100_000},
	},
)

func mustNewRules(constants Constants, upgrades []UpgradeDefinition, achievements []AchievementDefinition) Rules {
	rules, err := NewRules(constants, upgrades, achievements)
	if err != nil {
		panic(fmt.Errorf("logic error: default rules are invalid: %w", err))
	}
	return rules
}

// DefaultRules returns the canonical game balance.
func DefaultRules() Rules {
	return defaultRules
}

// NewRules copies and validates the given definitions.
// Achievements are kept ordered by ascending threshold.
func NewRules(constants Constants, upgrades []UpgradeDefinition, achievements []AchievementDefinition) (Rules, error) {
	rules := Rules{
		constants:    constants,
		upgrades:     slices.Clone(upgrades),
		achievements: slices.Clone(achievements),
	}
	slices.SortStableFunc(rules.achievements, compareAchievements)

	if err := rules.Validate(); err != nil {
		return Rules{}, err
	}
	return rules, nil
}

func compareAchievements(a, b AchievementDefinition) int {
	return cmp.Or(
		cmp.Compare(a.BalanceThreshold, b.BalanceThreshold),
		cmp.Compare(a.ID, b.ID),
	)
}

func (r Rules) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidRules, fmt.Sprintf(format, args...))
	}

	c := r.constants
	if c.BaseMaxEnergy < 0 || c.EnergyCostPerTap < 0 || c.BaseClickValue < 0 {
		return invalid("constants must not be negative")
	}
	if math.IsNaN(c.RegenPerSecond) || math.IsInf(c.RegenPerSecond, 0) || c.RegenPerSecond < 0 {
		return invalid("regen per second must be a finite non-negative number")
	}

	seenUpgrades := make(map[UpgradeID]bool, len(r.upgrades))
	for _, upgrade := range r.upgrades {
		if upgrade.ID == "" {
			return invalid("upgrade id is empty")
		}
		if seenUpgrades[upgrade.ID] {
			return invalid("duplicate upgrade %s", upgrade.ID)
		}
		seenUpgrades[upgrade.ID] = true

		if upgrade.BasePrice <= 0 {
			return invalid("upgrade %s: base price must be positive", upgrade.ID)
		}
		switch upgrade.Kind {
		case UpgradeKindStackable:
			if math.IsNaN(upgrade.PriceGrowth) || math.IsInf(upgrade.PriceGrowth, 0) || upgrade.PriceGrowth < 1 {
				return invalid("upgrade %s: price growth must be at least 1", upgrade.ID)
			}
			if upgrade.Effect != EffectClickValue && upgrade.Effect != EffectMaxEnergy {
				return invalid("upgrade %s: stackable effect %q not supported", upgrade.ID, upgrade.Effect)
			}
			if upgrade.EffectPerLevel < 0 {
				return invalid("upgrade %s: effect per level must not be negative", upgrade.ID)
			}
		case UpgradeKindConsumable:
			if upgrade.Effect != EffectFullRefill {
				return invalid("upgrade %s: consumable effect %q not supported", upgrade.ID, upgrade.Effect)
			}
		default:
			return invalid("upgrade %s: unknown kind %q", upgrade.ID, upgrade.Kind)
		}
	}

	required := []struct {
		id     UpgradeID
		kind   UpgradeKind
		effect UpgradeEffect
	}{
		{UpgradeMultitap, UpgradeKindStackable, EffectClickValue},
		{UpgradeEnergyTank, UpgradeKindStackable, EffectMaxEnergy},
		{UpgradeFullRefill, UpgradeKindConsumable, EffectFullRefill},
	}
	for _, req := range required {
		upgrade, ok := r.Upgrade(req.id)
		if !ok {
			return invalid("missing upgrade %s", req.id)
		}
		if upgrade.Kind != req.kind || upgrade.Effect != req.effect {
			return invalid("upgrade %s must be %s with effect %s", req.id, req.kind, req.effect)
		}
	}

	seenAchievements := make(map[AchievementID]bool, len(r.achievements))
	for _, achievement := range r.achievements {
		if achievement.ID == "" {
			return invalid("achievement id is empty")
		}
		if seenAchievements[achievement.ID] {
			return invalid("duplicate achievement %s", achievement.ID)
		}
		seenAchievements[achievement.ID] = true

		if achievement.BalanceThreshold < 0 {
			return invalid("achievement %s: threshold must not be negative", achievement.ID)
		}
	}

	return nil
}

func (r Rules) Constants() Constants {
	return r.constants
}

// Upgrade looks up an upgrade definition by id.
func (r Rules) Upgrade(id UpgradeID) (UpgradeDefinition, bool) {
	for _, upgrade := range r.upgrades {
		if upgrade.ID == id {
			return upgrade, true
		}
	}
	return UpgradeDefinition{}, false
}

// Upgrades returns the upgrade definitions in catalog order.
func (r Rules) Upgrades() []UpgradeDefinition {
	return slices.Clone(r.upgrades)
}

// Achievements returns the achievement definitions by ascending threshold.
func (r Rules) Achievements() []AchievementDefinition {
	return slices.Clone(r.achievements)
}

func (r Rules) achievement(id AchievementID) (AchievementDefinition, bool) {
	for _, achievement := range r.achievements {
		if achievement.ID == id {
			return achievement, true
		}
	}
	return AchievementDefinition{}, false
}

// NewPlayerState returns the state of a brand new player.
func (r Rules) NewPlayerState() PlayerState {
	upgrades := Levels{}
	for _, upgrade := range r.upgrades {
		if upgrade.Kind == UpgradeKindStackable {
			upgrades[upgrade.ID] = 0
		}
	}

	return PlayerState{
		Energy:               r.constants.BaseMaxEnergy,
		Balance:              0,
		PeakBalance:          0,
		Upgrades:             upgrades,
		UnlockedAchievements: AchievementSet{},
	}
}

// Normalize clamps externally sourced state into the engine's invariants.
//
// Negative quantities become 0, levels are clamped to MaxUpgradeLevel, levels
// of unknown or consumable upgrades are dropped, the peak is raised to at least the balance and energy is capped at
// the maximum. Unlocked achievements are never removed.
func (r Rules) Normalize(state PlayerState) PlayerState {
	upgrades := Levels{}
	for _, upgrade := range r.upgrades {
		if upgrade.Kind != UpgradeKindStackable {
			continue
		}
		upgrades[upgrade.ID] = min(max(state.Upgrades.Level(upgrade.ID), 0), MaxUpgradeLevel)
	}

	normalized := PlayerState{
		Energy:               max(state.Energy, 0),
		Balance:              max(state.Balance, 0),
		PeakBalance:          max(state.PeakBalance, 0),
		Upgrades:             upgrades,
		UnlockedAchievements: state.UnlockedAchievements.With(),
	}
	normalized = normalized.WithPeak()
	normalized.Energy = min(normalized.Energy, r.MaxEnergy(normalized.Upgrades))

	return normalized
}
