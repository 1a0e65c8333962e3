package skill

import "errors"

var (
	// ErrSkillNotFound is returned for an unknown skill id. An unknown id is
	// never treated as a zero price.
	ErrSkillNotFound = errors.New("skill not found")
)
