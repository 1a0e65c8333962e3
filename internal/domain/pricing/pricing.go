package pricing

import (
	"context"
	"errors"
)

// ErrInvalidHours is returned for non-positive durations. Coins are whole
// integers and hours are whole integers; there is no rounding.
var ErrInvalidHours = errors.New("duration must be a positive whole number of hours")

// PriceLookup resolves a skill id to its hourly skillcoin rate. An unknown id
// must be an error, never a zero price.
type PriceLookup interface {
	HourlyPrice(ctx context.Context, skillID int64) (int64, error)
}

// BarterQuote breaks down the amounts for a barter exchange. Both sides earn
// independently for teaching; the net is informational only and nothing is
// transferred between the parties.
type BarterQuote struct {
	OfferedSkillRate   int64 `json:"offered_skill_rate"`
	RequestedSkillRate int64 `json:"requested_skill_rate"`

	InitiatorEarns    int64 `json:"initiator_earns"`
	CounterpartyEarns int64 `json:"counterparty_earns"`
	InitiatorNet      int64 `json:"initiator_net"`
	CounterpartyNet   int64 `json:"counterparty_net"`

	Hours int64 `json:"hours"`
}

// Calculator computes settlement amounts. It is stateless; all state lives
// behind the PriceLookup.
type Calculator struct {
	prices PriceLookup
}

func NewCalculator(prices PriceLookup) *Calculator {
	return &Calculator{prices: prices}
}

// BarterAmounts returns what each side earns in a barter offer. The initiator
// teaches the offered skill, the counterparty teaches the requested one, and
// each earns hours times their own rate.
func (c *Calculator) BarterAmounts(ctx context.Context, offeredSkillID, requestedSkillID, hours int64) (*BarterQuote, error) {
	if hours <= 0 {
		return nil, ErrInvalidHours
	}

	offeredRate, err := c.prices.HourlyPrice(ctx, offeredSkillID)
	if err != nil {
		return nil, err
	}
	requestedRate, err := c.prices.HourlyPrice(ctx, requestedSkillID)
	if err != nil {
		return nil, err
	}

	initiatorEarns := hours * offeredRate
	counterpartyEarns := hours * requestedRate

	return &BarterQuote{
		OfferedSkillRate:   offeredRate,
		RequestedSkillRate: requestedRate,
		InitiatorEarns:     initiatorEarns,
		CounterpartyEarns:  counterpartyEarns,
		InitiatorNet:       initiatorEarns - counterpartyEarns,
		CounterpartyNet:    counterpartyEarns - initiatorEarns,
		Hours:              hours,
	}, nil
}

// AssistanceCost returns what the initiator owes the counterparty for an
// assistance offer: hours times the requested skill's rate.
func (c *Calculator) AssistanceCost(ctx context.Context, requestedSkillID, hours int64) (int64, error) {
	if hours <= 0 {
		return 0, ErrInvalidHours
	}

	rate, err := c.prices.HourlyPrice(ctx, requestedSkillID)
	if err != nil {
		return 0, err
	}

	return hours * rate, nil
}
