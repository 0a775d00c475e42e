package domain

import "errors"

var (
	ErrSaveNotFound    = errors.New("save not found")
	ErrInvalidRules    = errors.New("invalid rules")
	ErrInvalidPlayerID = errors.New("invalid player id")
	ErrInvalidTapCount = errors.New("invalid tap count")
)

// Decline is the reason an action was refused by the engine.
//
// Declines are outcomes, not failures. The engine returns them inside result
// structs with the input state echoed back. Decline implements error so callers
// outside the engine can wrap and compare them with errors.Is.
type Decline string

const (
	DeclineNone                Decline = ""
	DeclineInsufficientEnergy  Decline = "insufficient_energy"
	DeclineInsufficientBalance Decline = "insufficient_balance"
	DeclineUnknownUpgrade      Decline = "unknown_upgrade"
	DeclineMaxLevel            Decline = "max_level"
)

func (d Decline) Error() string {
	switch d {
	case DeclineInsufficientEnergy:
		return "not enough energy"
	case DeclineInsufficientBalance:
		return "not enough balance"
	case DeclineUnknownUpgrade:
		return "unknown upgrade"
	case DeclineMaxLevel:
		return "upgrade is at its maximum level"
	case DeclineNone:
		return "not declined"
	}
	return string(d)
}
