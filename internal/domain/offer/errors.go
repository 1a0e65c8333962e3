package offer

import (
	"errors"
	"fmt"
)

var (
	ErrOfferNotFound = errors.New("offer not found")

	// ErrNotAParticipant is returned when the authenticated user is neither
	// party of the offer. Every mutating operation re-validates this.
	ErrNotAParticipant = errors.New("user is not a participant of this offer")

	// ErrInvalidTransition is returned for any move the transition table
	// does not allow. Illegal transitions never silently no-op.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNotCounterparty / ErrNotInitiator guard role-specific transitions:
	// only the counterparty answers a pending offer, only the initiator may
	// withdraw one.
	ErrNotCounterparty = errors.New("only the counterparty can act on a pending offer")
	ErrNotInitiator    = errors.New("only the initiator can cancel a pending offer")

	ErrSameParties           = errors.New("initiator and counterparty must differ")
	ErrCounterpartyNotFound  = errors.New("counterparty account not found")
	ErrMissingOfferedSkill   = errors.New("barter offer requires an offered skill")
	ErrInvalidProof          = errors.New("proof payload is not valid base64")
	ErrProofTooLarge         = errors.New("proof file exceeds 5MB limit")
	ErrProofNotFound         = errors.New("no proof attached to offer")
	ErrNotDeletable          = errors.New("only rejected or cancelled offers can be deleted")
)

// invalidTransition names the current and requested states.
func invalidTransition(from, to Status) error {
	return fmt.Errorf("%w: %q -> %q", ErrInvalidTransition, from, to)
}

func cannotConfirm(from Status) error {
	return fmt.Errorf("%w: cannot confirm in status %q", ErrInvalidTransition, from)
}
