package domain

type PurchaseOutcome struct {
	Accepted bool
	Balance  int64
	Upgrades Levels
	Energy   int64
	// Price is what the purchase cost, or would have cost when declined.
	Price  int64
	Reason Decline
}

// ResolvePurchase buys one level of a stackable upgrade or one use of a consumable.
//
// Stackable upgrades stop at MaxUpgradeLevel. Buying a capacity upgrade does
// not refill energy. A full refill sets energy
// to the cap computed from the upgrades owned before the purchase.
func (r Rules) ResolvePurchase(state PlayerState, id UpgradeID) PurchaseOutcome {
	declined := func(price int64, reason Decline) PurchaseOutcome {
		return PurchaseOutcome{
			Accepted: false,
			Balance:  state.Balance,
			Upgrades: state.Upgrades,
			Energy:   state.Energy,
			Price:    price,
			Reason:   reason,
		}
	}

	upgrade, ok := r.Upgrade(id)
	if !ok {
		return declined(UnaffordablePrice, DeclineUnknownUpgrade)
	}

	currentLevel := state.Upgrades.Level(id)
	price := r.Cost(id, currentLevel)
	if upgrade.Kind == UpgradeKindStackable && currentLevel >= MaxUpgradeLevel {
		return declined(price, DeclineMaxLevel)
	}
	if state.Balance < price {
		return declined(price, DeclineInsufficientBalance)
	}

	upgrades := state.Upgrades.Clone()
	energy := state.Energy

	switch upgrade.Kind {
	case UpgradeKindStackable:
		upgrades[id] = currentLevel + 1
	case UpgradeKindConsumable:
		if upgrade.Effect == EffectFullRefill {
			energy = r.MaxEnergy(state.Upgrades)
		}
	}

	return PurchaseOutcome{
		Accepted: true,
		Balance:  state.Balance - price,
		Upgrades: upgrades,
		Energy:   energy,
		Price:    price,
		Reason:   DeclineNone,
	}
}

// Apply writes the outcome back into state. Declined outcomes leave it as is.
func (o PurchaseOutcome) Apply(state PlayerState) PlayerState {
	if !o.Accepted {
		return state
	}
	state.Balance = o.Balance
	state.Upgrades = o.Upgrades
	state.Energy = o.Energy
	return state
}
