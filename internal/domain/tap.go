package domain

type TapOutcome struct {
	Accepted bool
	Energy   int64
	Balance  int64
	Reason   Decline
}

// ResolveTap spends energy for currency. The balance saturates at math.MaxInt64.
//
// When the player lacks the energy for a tap the outcome is declined with
// energy and balance unchanged.
func (r Rules) ResolveTap(state PlayerState) TapOutcome {
	cost := r.constants.EnergyCostPerTap

	if state.Energy < cost {
		return TapOutcome{
			Accepted: false,
			Energy:   state.Energy,
			Balance:  state.Balance,
			Reason:   DeclineInsufficientEnergy,
		}
	}

	return TapOutcome{
		Accepted: true,
		Energy:   state.Energy - cost,
		Balance:  addSaturating(state.Balance, r.ClickValue(state.Upgrades)),
		Reason:   DeclineNone,
	}
}

// Apply writes the outcome back into state. Declined outcomes leave it as is.
func (o TapOutcome) Apply(state PlayerState) PlayerState {
	if !o.Accepted {
		return state
	}
	state.Energy = o.Energy
	state.Balance = o.Balance
	return state
}
