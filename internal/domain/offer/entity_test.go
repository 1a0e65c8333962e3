package offer

import (
	"testing"

	"github.com/google/uuid"
)

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
		want bool
	}{
		{"pending to accepted", StatusPending, StatusAccepted, true},
		{"pending to rejected", StatusPending, StatusRejected, true},
		{"pending to cancelled", StatusPending, StatusCancelled, true},
		{"pending to ongoing skips accept", StatusPending, StatusOngoing, false},
		{"pending to settled", StatusPending, StatusSettled, false},
		{"accepted to ongoing", StatusAccepted, StatusOngoing, true},
		{"accepted to cancelled", StatusAccepted, StatusCancelled, true},
		{"accepted to rejected", StatusAccepted, StatusRejected, false},
		{"ongoing to marked_complete", StatusOngoing, StatusMarkedComplete, true},
		{"ongoing to cancelled", StatusOngoing, StatusCancelled, false},
		{"ongoing to settled skips completion", StatusOngoing, StatusSettled, false},
		{"marked_complete to settled", StatusMarkedComplete, StatusSettled, true},
		{"marked_complete back to ongoing", StatusMarkedComplete, StatusOngoing, false},
		{"settled is terminal", StatusSettled, StatusCancelled, false},
		{"rejected is terminal", StatusRejected, StatusAccepted, false},
		{"cancelled is terminal", StatusCancelled, StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &Offer{Status: tt.from}
			if got := o.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo(%q -> %q) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestIsTerminal(t *testing.T) {
	terminal := []Status{StatusSettled, StatusRejected, StatusCancelled}
	active := []Status{StatusPending, StatusAccepted, StatusOngoing, StatusMarkedComplete}

	for _, s := range terminal {
		if !(&Offer{Status: s}).IsTerminal() {
			t.Errorf("expected %q to be terminal", s)
		}
	}
	for _, s := range active {
		if (&Offer{Status: s}).IsTerminal() {
			t.Errorf("expected %q to be active", s)
		}
	}
}

func TestCanConfirm(t *testing.T) {
	for _, s := range []Status{StatusOngoing, StatusMarkedComplete} {
		if !(&Offer{Status: s}).CanConfirm() {
			t.Errorf("expected confirmations to be open in %q", s)
		}
	}
	for _, s := range []Status{StatusPending, StatusAccepted, StatusSettled, StatusRejected, StatusCancelled} {
		if (&Offer{Status: s}).CanConfirm() {
			t.Errorf("expected confirmations to be closed in %q", s)
		}
	}
}

func TestDeletable(t *testing.T) {
	if !(&Offer{Status: StatusRejected}).Deletable() {
		t.Error("rejected offers should be deletable")
	}
	if !(&Offer{Status: StatusCancelled}).Deletable() {
		t.Error("cancelled offers should be deletable")
	}
	if (&Offer{Status: StatusSettled}).Deletable() {
		t.Error("settled offers must never be deletable")
	}
	if (&Offer{Status: StatusPending}).Deletable() {
		t.Error("pending offers should not be deletable")
	}
}

func TestIsParticipant(t *testing.T) {
	initiator := uuid.New()
	counterparty := uuid.New()
	stranger := uuid.New()

	o := &Offer{InitiatorID: initiator, CounterpartyID: counterparty}

	if !o.IsParticipant(initiator) {
		t.Error("initiator should be a participant")
	}
	if !o.IsParticipant(counterparty) {
		t.Error("counterparty should be a participant")
	}
	if o.IsParticipant(stranger) {
		t.Error("stranger should not be a participant")
	}
}
