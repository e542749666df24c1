package progression

import (
	"errors"
	"testing"
)

func TestThresholdFor_KnownTable(t *testing.T) {
	c := DefaultCurve()

	tests := []struct {
		level int
		want  int
	}{
		{1, 0},
		{2, 300},
		{3, 600},
		{4, 1000},
		{0, 0},
		{-3, 0},
	}
	for _, tt := range tests {
		if got := c.ThresholdFor(tt.level); got != tt.want {
			t.Errorf("ThresholdFor(%d) = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestThresholdFor_ExtendsPastTable(t *testing.T) {
	c := DefaultCurve()

	// Last table step is 400 (600 -> 1000); each level past the table
	// grows the step by 100.
	if got := c.ThresholdFor(5); got != 1500 {
		t.Errorf("ThresholdFor(5) = %d, want 1500", got)
	}
	if got := c.ThresholdFor(6); got != 2100 {
		t.Errorf("ThresholdFor(6) = %d, want 2100", got)
	}

	// Monotonically increasing.
	prev := 0
	for l := 2; l <= 20; l++ {
		cur := c.ThresholdFor(l)
		if cur <= prev {
			t.Fatalf("ThresholdFor(%d) = %d not greater than ThresholdFor(%d) = %d", l, cur, l-1, prev)
		}
		prev = cur
	}
}

func TestNewCurve_RejectsInvalidTables(t *testing.T) {
	// Non-increasing and missing-zero tables fall back to defaults.
	for _, table := range [][]int{nil, {0}, {100, 300}, {0, 300, 300}} {
		c := NewCurve(table)
		if got := c.ThresholdFor(2); got != 300 {
			t.Errorf("NewCurve(%v).ThresholdFor(2) = %d, want default 300", table, got)
		}
	}
}

func TestLevelFor(t *testing.T) {
	c := DefaultCurve()

	tests := []struct {
		totalXP int
		want    int
	}{
		{0, 1},
		{-50, 1},
		{299, 1},
		{300, 2},
		{400, 2},
		{599, 2},
		{600, 3},
		{700, 3},
		{999, 3},
		{1000, 4},
		{1200, 4},
		{1500, 5},
	}
	for _, tt := range tests {
		if got := c.LevelFor(tt.totalXP); got != tt.want {
			t.Errorf("LevelFor(%d) = %d, want %d", tt.totalXP, got, tt.want)
		}
	}
}

func TestApplyXP_ZeroDeltaIsIdentity(t *testing.T) {
	c := DefaultCurve()

	res, err := c.ApplyXP(450, 2, 0)
	if err != nil {
		t.Fatalf("ApplyXP returned error: %v", err)
	}
	if res.NewTotalXP != 450 || res.NewLevel != 2 {
		t.Errorf("got total=%d level=%d, want 450/2", res.NewTotalXP, res.NewLevel)
	}
	if res.LeveledUp || res.LevelsGained != 0 || len(res.LevelEvents) != 0 {
		t.Errorf("zero delta must not level up: %+v", res)
	}
}

func TestApplyXP_SingleLevelJump(t *testing.T) {
	c := DefaultCurve()

	res, err := c.ApplyXP(0, 1, 400)
	if err != nil {
		t.Fatalf("ApplyXP returned error: %v", err)
	}
	if res.NewLevel != 2 || res.LevelsGained != 1 {
		t.Errorf("got level=%d gained=%d, want 2/1", res.NewLevel, res.LevelsGained)
	}
	if len(res.LevelEvents) != 1 || res.LevelEvents[0].Level != 2 {
		t.Errorf("level events = %+v, want one event for level 2", res.LevelEvents)
	}
}

func TestApplyXP_MultiLevelJumpReportsAllCrossings(t *testing.T) {
	c := DefaultCurve()

	// 650 XP from scratch crosses the 300 and 600 thresholds in one call.
	res, err := c.ApplyXP(0, 1, 650)
	if err != nil {
		t.Fatalf("ApplyXP returned error: %v", err)
	}
	if res.NewTotalXP != 650 {
		t.Errorf("NewTotalXP = %d, want 650", res.NewTotalXP)
	}
	if res.NewLevel != 3 || res.LevelsGained != 2 || !res.LeveledUp {
		t.Errorf("got level=%d gained=%d leveledUp=%v, want 3/2/true", res.NewLevel, res.LevelsGained, res.LeveledUp)
	}
	if len(res.LevelEvents) != 2 {
		t.Fatalf("LevelEvents has %d entries, want 2", len(res.LevelEvents))
	}
	if res.LevelEvents[0].Level != 2 || res.LevelEvents[1].Level != 3 {
		t.Errorf("LevelEvents = %+v, want levels 2 then 3", res.LevelEvents)
	}
}

func TestApplyXP_NegativeDeltaFloorsAtZero(t *testing.T) {
	c := DefaultCurve()

	res, err := c.ApplyXP(100, 1, -250)
	if err != nil {
		t.Fatalf("ApplyXP returned error: %v", err)
	}
	if res.NewTotalXP != 0 {
		t.Errorf("NewTotalXP = %d, want 0", res.NewTotalXP)
	}
	if res.LeveledUp || len(res.LevelEvents) != 0 {
		t.Errorf("negative delta must not report level events: %+v", res)
	}
}

func TestApplyXP_NonNegativeDeltaNeverLosesXP(t *testing.T) {
	c := DefaultCurve()

	for _, total := range []int{0, 150, 300, 950, 4000} {
		level := c.LevelFor(total)
		for _, delta := range []int{0, 1, 299, 650, 5000} {
			res, err := c.ApplyXP(total, level, delta)
			if err != nil {
				t.Fatalf("ApplyXP(%d, %d, %d) error: %v", total, level, delta, err)
			}
			if res.NewTotalXP != total+delta {
				t.Errorf("ApplyXP(%d,_,%d).NewTotalXP = %d, want %d", total, delta, res.NewTotalXP, total+delta)
			}
			if res.NewLevel < level {
				t.Errorf("level regressed from %d to %d on non-negative delta", level, res.NewLevel)
			}
		}
	}
}

func TestApplyXP_RejectsInvalidInput(t *testing.T) {
	c := DefaultCurve()

	if _, err := c.ApplyXP(-1, 1, 10); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("negative total: got %v, want ErrInvalidInput", err)
	}
	if _, err := c.ApplyXP(0, 0, 10); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("level below 1: got %v, want ErrInvalidInput", err)
	}
}

func TestResolveLevelUp_NotReady(t *testing.T) {
	c := DefaultCurve()

	// Exactly at the level-2 threshold and already level 2: no further
	// level is earned yet.
	_, err := c.ResolveLevelUp(300, 2)
	if !errors.Is(err, ErrNotReadyForLevelUp) {
		t.Errorf("got %v, want ErrNotReadyForLevelUp", err)
	}

	_, err = c.ResolveLevelUp(299, 1)
	if !errors.Is(err, ErrNotReadyForLevelUp) {
		t.Errorf("below first threshold: got %v, want ErrNotReadyForLevelUp", err)
	}
}

func TestResolveLevelUp_Fixtures(t *testing.T) {
	c := DefaultCurve()

	// Three stats with totals {400, 700, 1200} and levels {1, 1, 2}
	// resolve to {2, 3, 4}.
	tests := []struct {
		totalXP    int
		level      int
		wantLevel  int
		wantGained int
	}{
		{400, 1, 2, 1},
		{700, 1, 3, 2},
		{1200, 2, 4, 2},
	}
	for _, tt := range tests {
		res, err := c.ResolveLevelUp(tt.totalXP, tt.level)
		if err != nil {
			t.Fatalf("ResolveLevelUp(%d, %d) error: %v", tt.totalXP, tt.level, err)
		}
		if res.NewLevel != tt.wantLevel || res.LevelsGained != tt.wantGained {
			t.Errorf("ResolveLevelUp(%d, %d) = level %d gained %d, want %d/%d",
				tt.totalXP, tt.level, res.NewLevel, res.LevelsGained, tt.wantLevel, tt.wantGained)
		}
		if len(res.LevelEvents) != tt.wantGained {
			t.Errorf("ResolveLevelUp(%d, %d) events = %d, want %d", tt.totalXP, tt.level, len(res.LevelEvents), tt.wantGained)
		}
		if res.NewTotalXP != tt.totalXP {
			t.Errorf("ResolveLevelUp must not change total XP: got %d", res.NewTotalXP)
		}
	}
}

func TestValidate(t *testing.T) {
	c := DefaultCurve()

	if err := c.Validate(400, 2); err != nil {
		t.Errorf("consistent pair rejected: %v", err)
	}
	if err := c.Validate(100, 5); !errors.Is(err, ErrInconsistentProgression) {
		t.Errorf("claiming level 5 with 100 XP: got %v, want ErrInconsistentProgression", err)
	}
	if err := c.Validate(600, 2); !errors.Is(err, ErrInconsistentProgression) {
		t.Errorf("understated level: got %v, want ErrInconsistentProgression", err)
	}
	if err := c.Validate(-5, 1); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("negative total: got %v, want ErrInvalidInput", err)
	}
}

func TestXPWithinLevel(t *testing.T) {
	c := DefaultCurve()

	if got := c.XPWithinLevel(450, 2); got != 150 {
		t.Errorf("XPWithinLevel(450, 2) = %d, want 150", got)
	}
	if got := c.XPWithinLevel(0, 1); got != 0 {
		t.Errorf("XPWithinLevel(0, 1) = %d, want 0", got)
	}
}

func TestFamilyLevelForXP(t *testing.T) {
	tests := []struct {
		xp   int
		want int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{250, 3},
		{-10, 1},
	}
	for _, tt := range tests {
		if got := FamilyLevelForXP(tt.xp); got != tt.want {
			t.Errorf("FamilyLevelForXP(%d) = %d, want %d", tt.xp, got, tt.want)
		}
	}
}
