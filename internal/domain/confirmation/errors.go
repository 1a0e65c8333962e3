package confirmation

import "errors"

var (
	// ErrDuplicatePair is returned when a second confirmation pair would be
	// created for the same offer.
	ErrDuplicatePair = errors.New("confirmation pair already exists for offer")

	// ErrNotAParticipant is returned when no confirmation row exists for the
	// given offer and participant.
	ErrNotAParticipant = errors.New("no confirmation record for participant")
)
