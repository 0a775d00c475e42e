package domain

import "math"

// Cost returns the price of buying the given upgrade at currentLevel.
//
// Stackable upgrades grow exponentially: floor(basePrice * priceGrowth^level).
// Consumables always cost basePrice. Unknown upgrades cost UnaffordablePrice so
// callers can treat them as never affordable.
func (r Rules) Cost(id UpgradeID, currentLevel int) int64 {
	upgrade, ok := r.Upgrade(id)
	if !ok {
		return UnaffordablePrice
	}
	if upgrade.Kind == UpgradeKindConsumable {
		return upgrade.BasePrice
	}

	level := max(currentLevel, 0)
	price := math.Floor(float64(upgrade.BasePrice) * math.Pow(upgrade.PriceGrowth, float64(level)))

	// float64(math.MaxInt64) rounds up to 2^63, which does not fit in an int64
	if price >= float64(math.MaxInt64) {
		return math.MaxInt64
	}
	return int64(price)
}

// sumEffect saturates at math.MaxInt64 instead of wrapping
func (r Rules) sumEffect(upgrades Levels, effect UpgradeEffect) int64 {
	var total int64
	for _, upgrade := range r.upgrades {
		if upgrade.Kind != UpgradeKindStackable || upgrade.Effect != effect {
			continue
		}
		level := int64(max(upgrades.Level(upgrade.ID), 0))
		total = addSaturating(total, mulSaturating(level, upgrade.EffectPerLevel))
	}
	return total
}

// MaxEnergy is the energy cap for the given upgrade levels.
func (r Rules) MaxEnergy(upgrades Levels) int64 {
	return addSaturating(r.constants.BaseMaxEnergy, r.sumEffect(upgrades, EffectMaxEnergy))
}

// ClickValue is the balance gained by one accepted tap.
func (r Rules) ClickValue(upgrades Levels) int64 {
	return addSaturating(r.constants.BaseClickValue, r.sumEffect(upgrades, EffectClickValue))
}
