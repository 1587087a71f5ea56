package loader

import "math"

// Level is a discrete stage of progressively broader node inclusion.
// Levels are ordered; the active level is a pure, non-decreasing function of
// zoom scale over the threshold table's half-open [Lower, Upper) intervals.
type Level int

const (
	LevelCore      Level = iota + 1 // top-priority nodes regardless of viewport
	LevelViewport                   // nodes intersecting the view plus margin
	LevelConnected                  // neighbors of already-loaded nodes
	LevelAll                        // everything
)

// String returns the level name used in progress snapshots
func (l Level) String() string {
	switch l {
	case LevelCore:
		return "core"
	case LevelViewport:
		return "viewport"
	case LevelConnected:
		return "connected"
	case LevelAll:
		return "all"
	}
	return "unknown"
}

// Threshold maps a half-open zoom scale interval [Lower, Upper) to a level
type Threshold struct {
	Level Level   `yaml:"level"`
	Lower float64 `yaml:"lower"`
	Upper float64 `yaml:"upper"`
}

// DefaultThresholds is the standard scale-to-level transition table.
// Intervals are half-open: a scale exactly on a boundary belongs to the
// higher level.
func DefaultThresholds() []Threshold {
	return []Threshold{
		{Level: LevelCore, Lower: 0, Upper: 0.5},
		{Level: LevelViewport, Lower: 0.5, Upper: 1.2},
		{Level: LevelConnected, Lower: 1.2, Upper: 2.5},
		{Level: LevelAll, Lower: 2.5, Upper: math.Inf(1)},
	}
}

// LevelForScale resolves the active level for a zoom scale against the
// threshold table. Identical scale always yields identical level.
func LevelForScale(thresholds []Threshold, scale float64) Level {
	for _, t := range thresholds {
		if scale >= t.Lower && scale < t.Upper {
			return t.Level
		}
	}
	// Above the last interval: broadest level wins.
	return LevelAll
}
