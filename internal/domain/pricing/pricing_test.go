package pricing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/skillswap/skillswap-api/internal/domain/pricing"
	"github.com/skillswap/skillswap-api/internal/domain/skill"
)

type fakeLookup map[int64]int64

func (f fakeLookup) HourlyPrice(_ context.Context, skillID int64) (int64, error) {
	price, ok := f[skillID]
	if !ok {
		return 0, skill.ErrSkillNotFound
	}
	return price, nil
}

func TestBarterAmounts(t *testing.T) {
	calc := pricing.NewCalculator(fakeLookup{1: 50, 2: 30})

	quote, err := calc.BarterAmounts(context.Background(), 1, 2, 2)
	if err != nil {
		t.Fatalf("barter amounts failed: %v", err)
	}

	if quote.InitiatorEarns != 100 {
		t.Errorf("expected initiator earns 100, got %d", quote.InitiatorEarns)
	}
	if quote.CounterpartyEarns != 60 {
		t.Errorf("expected counterparty earns 60, got %d", quote.CounterpartyEarns)
	}
	if quote.InitiatorNet != 40 || quote.CounterpartyNet != -40 {
		t.Errorf("unexpected nets: %d / %d", quote.InitiatorNet, quote.CounterpartyNet)
	}
}

func TestBarterAmountsZeroPricedSkill(t *testing.T) {
	calc := pricing.NewCalculator(fakeLookup{1: 0, 2: 30})

	quote, err := calc.BarterAmounts(context.Background(), 1, 2, 3)
	if err != nil {
		t.Fatalf("barter amounts failed: %v", err)
	}

	if quote.InitiatorEarns != 0 {
		t.Errorf("zero-priced skill must earn 0, got %d", quote.InitiatorEarns)
	}
	if quote.CounterpartyEarns != 90 {
		t.Errorf("expected counterparty earns 90, got %d", quote.CounterpartyEarns)
	}
}

func TestAssistanceCost(t *testing.T) {
	calc := pricing.NewCalculator(fakeLookup{7: 20})

	cost, err := calc.AssistanceCost(context.Background(), 7, 3)
	if err != nil {
		t.Fatalf("assistance cost failed: %v", err)
	}
	if cost != 60 {
		t.Errorf("expected cost 60, got %d", cost)
	}
}

func TestInvalidHours(t *testing.T) {
	calc := pricing.NewCalculator(fakeLookup{1: 50, 2: 30})

	for _, hours := range []int64{0, -1} {
		if _, err := calc.BarterAmounts(context.Background(), 1, 2, hours); !errors.Is(err, pricing.ErrInvalidHours) {
			t.Errorf("hours=%d: expected ErrInvalidHours, got %v", hours, err)
		}
		if _, err := calc.AssistanceCost(context.Background(), 2, hours); !errors.Is(err, pricing.ErrInvalidHours) {
			t.Errorf("hours=%d: expected ErrInvalidHours, got %v", hours, err)
		}
	}
}

func TestUnknownSkill(t *testing.T) {
	calc := pricing.NewCalculator(fakeLookup{1: 50})

	if _, err := calc.BarterAmounts(context.Background(), 1, 99, 2); !errors.Is(err, skill.ErrSkillNotFound) {
		t.Errorf("expected ErrSkillNotFound for unknown requested skill, got %v", err)
	}
	if _, err := calc.AssistanceCost(context.Background(), 99, 2); !errors.Is(err, skill.ErrSkillNotFound) {
		t.Errorf("expected ErrSkillNotFound for unknown skill, got %v", err)
	}
}
