package progression

import "errors"

var (
	// ErrNotReadyForLevelUp is returned when a level-up is requested for a
	// stat whose total XP does not meet the next threshold.
	ErrNotReadyForLevelUp = errors.New("stat is not ready for level up")

	// ErrInconsistentProgression is returned when a supplied level/XP pair
	// violates the threshold curve.
	ErrInconsistentProgression = errors.New("level is inconsistent with total xp")

	// ErrInvalidInput is returned for inputs outside the engine's domain
	// (negative totals, levels below 1).
	ErrInvalidInput = errors.New("invalid progression input")
)
