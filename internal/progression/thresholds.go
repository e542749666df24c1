package progression

// Curve maps levels to cumulative XP thresholds. The known thresholds are
// carried as data rather than a closed-form formula; past the end of the
// table the curve extends by growing the per-level step by StepGrowth.
type Curve struct {
	thresholds []int
	stepGrowth int
}

// StepGrowth is the amount added to the per-level XP step for each level
// past the end of the threshold table.
const StepGrowth = 100

// defaultThresholds are the observed cumulative thresholds for levels 1..4.
// Level 1 requires no XP.
var defaultThresholds = []int{0, 300, 600, 1000}

// DefaultCurve returns the curve backed by the default threshold table.
func DefaultCurve() Curve {
	return NewCurve(defaultThresholds)
}

// NewCurve builds a curve from a cumulative threshold table. The table must
// start at 0 (level 1) and be strictly increasing afterwards; invalid
// tables fall back to the default.
func NewCurve(thresholds []int) Curve {
	if len(thresholds) < 2 || thresholds[0] != 0 {
		thresholds = defaultThresholds
	}
	for i := 1; i < len(thresholds); i++ {
		if thresholds[i] <= thresholds[i-1] {
			thresholds = defaultThresholds
			break
		}
	}
	t := make([]int, len(thresholds))
	copy(t, thresholds)
	return Curve{thresholds: t, stepGrowth: StepGrowth}
}

// ThresholdFor returns the cumulative XP required to have reached level.
// Levels at or below 1 require 0 XP.
func (c Curve) ThresholdFor(level int) int {
	if level <= 1 {
		return 0
	}
	if level <= len(c.thresholds) {
		return c.thresholds[level-1]
	}

	// Extend past the table: each level costs the previous step plus growth.
	n := len(c.thresholds)
	total := c.thresholds[n-1]
	step := c.thresholds[n-1] - c.thresholds[n-2]
	for l := n + 1; l <= level; l++ {
		step += c.stepGrowth
		total += step
	}
	return total
}

// LevelFor returns the largest level L such that ThresholdFor(L) <= totalXP.
// The result is always at least 1.
func (c Curve) LevelFor(totalXP int) int {
	if totalXP <= 0 {
		return 1
	}
	level := 1
	for c.ThresholdFor(level+1) <= totalXP {
		level++
	}
	return level
}

// XPWithinLevel returns the XP accumulated past the threshold of the given
// level. Callers use it to derive the redundant "current XP" display value.
func (c Curve) XPWithinLevel(totalXP, level int) int {
	within := totalXP - c.ThresholdFor(level)
	if within < 0 {
		return 0
	}
	return within
}
