// Package progression implements the XP and leveling engine: the threshold
// curve, level-up resolution, and stat-award resolution for completed
// tasks. Everything here is pure computation over already-fetched rows;
// callers own persistence and any downstream AI enrichment.
package progression

// LevelEvent records one level crossed during an XP application, in
// ascending order. Title is filled in later by the content-generation
// collaborator and may stay empty.
type LevelEvent struct {
	Level int    `json:"level"`
	Title string `json:"title,omitempty"`
}

// Result describes the consequences of applying an XP delta to a stat.
type Result struct {
	NewTotalXP   int          `json:"new_total_xp"`
	NewLevel     int          `json:"new_level"`
	LeveledUp    bool         `json:"leveled_up"`
	LevelsGained int          `json:"levels_gained"`
	LevelEvents  []LevelEvent `json:"level_events"`
}

// ApplyXP computes the new total XP and level after applying delta to a
// stat at the given total and level. Totals never go below zero; negative
// deltas can lower the computed level but never report level events.
func (c Curve) ApplyXP(currentTotalXP, currentLevel, delta int) (Result, error) {
	if currentTotalXP < 0 || currentLevel < 1 {
		return Result{}, ErrInvalidInput
	}

	newTotal := currentTotalXP + delta
	if newTotal < 0 {
		newTotal = 0
	}

	newLevel := c.LevelFor(newTotal)
	res := Result{
		NewTotalXP:  newTotal,
		NewLevel:    newLevel,
		LevelEvents: []LevelEvent{},
	}

	if newLevel > currentLevel {
		res.LeveledUp = true
		res.LevelsGained = newLevel - currentLevel
		for l := currentLevel + 1; l <= newLevel; l++ {
			res.LevelEvents = append(res.LevelEvents, LevelEvent{Level: l})
		}
	}

	return res, nil
}

// ResolveLevelUp resolves an explicit level-up request for a stat that
// already holds its XP total. It returns ErrNotReadyForLevelUp when the
// total does not entitle the stat to any level beyond its current one.
func (c Curve) ResolveLevelUp(currentTotalXP, currentLevel int) (Result, error) {
	if currentTotalXP < 0 || currentLevel < 1 {
		return Result{}, ErrInvalidInput
	}

	entitled := c.LevelFor(currentTotalXP)
	if entitled <= currentLevel {
		return Result{}, ErrNotReadyForLevelUp
	}

	res := Result{
		NewTotalXP:   currentTotalXP,
		NewLevel:     entitled,
		LeveledUp:    true,
		LevelsGained: entitled - currentLevel,
		LevelEvents:  []LevelEvent{},
	}
	for l := currentLevel + 1; l <= entitled; l++ {
		res.LevelEvents = append(res.LevelEvents, LevelEvent{Level: l})
	}
	return res, nil
}

// Validate checks that a directly supplied level/XP pair is consistent
// with the curve. Direct progression edits must pass this before any
// write happens.
func (c Curve) Validate(totalXP, level int) error {
	if totalXP < 0 || level < 1 {
		return ErrInvalidInput
	}
	if c.LevelFor(totalXP) != level {
		return ErrInconsistentProgression
	}
	return nil
}

// FamilyLevelForXP is the linear leveling rule for family/relationship
// entities: one level per 100 connection XP, starting at level 1. It is
// intentionally a different scale from the stat threshold curve.
func FamilyLevelForXP(connectionXP int) int {
	if connectionXP < 0 {
		connectionXP = 0
	}
	return connectionXP/100 + 1
}
