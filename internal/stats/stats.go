// Package stats derives every number that cannot be read directly off the
// raw encounter snapshot: fight duration, per-entity and per-skill DPS,
// rolling DPS series, identity-gauge normalization, stagger statistics,
// and cast-quality adjustment. All functions are pure and total over
// well-formed input; logs that are empty or too short for a given
// statistic yield an absent result, never an error.
package stats

import "math"

// DurationSeconds converts a fight duration in milliseconds to whole
// seconds, floored, with a minimum of one second so sub-second fights
// never divide by zero.
func DurationSeconds(durationMS int64) int64 {
	seconds := durationMS / 1000
	if seconds < 1 {
		return 1
	}
	return seconds
}

// DPS divides total damage by the fight duration in whole seconds.
// Integer truncation is part of the persisted format.
func DPS(totalDamage, durationSeconds int64) int64 {
	return totalDamage / durationSeconds
}

// round2 rounds to two decimal places, half away from zero on the
// scaled value.
func round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}
