package stats

import "github.com/raidmeter/raidmeter/pkg/types"

const (
	// rollingWindowMS is the half-width of the centered rolling-DPS window.
	rollingWindowMS = 5000

	// rollingWindowSeconds is the full window length used as divisor.
	rollingWindowSeconds = 10

	shortFightStepMS = 1000
	longFightStepMS  = 5000

	// shortFightMS is the duration under which the fine interval step is used.
	shortFightMS = 60000
)

// GenerateIntervals returns the fixed time offsets, in milliseconds from
// fight start, at which the DPS series are sampled. Short fights sample
// every second, longer ones every five seconds.
func GenerateIntervals(fightStart, fightEnd int64) []int64 {
	duration := fightEnd - fightStart
	if duration <= 0 {
		return nil
	}

	step := int64(longFightStepMS)
	if duration <= shortFightMS {
		step = shortFightStepMS
	}

	intervals := make([]int64, 0, duration/step+1)
	for offset := int64(0); offset <= duration; offset += step {
		intervals = append(intervals, offset)
	}
	return intervals
}

// RollingDPS computes the centered 10-second rolling DPS at each interval
// offset: damage events within ±5 s of fightStart+offset are summed and
// divided by the window length. Windows extending before fight start or
// after fight end simply pick up zero damage there.
func RollingDPS(log []types.DamagePoint, fightStart int64, intervals []int64) []int64 {
	if len(intervals) == 0 {
		return nil
	}

	series := make([]int64, 0, len(intervals))
	for _, offset := range intervals {
		center := fightStart + offset
		lo, hi := center-rollingWindowMS, center+rollingWindowMS

		var sum int64
		for _, p := range log {
			if p.Time >= lo && p.Time <= hi {
				sum += p.Damage
			}
		}
		series = append(series, sum/rollingWindowSeconds)
	}
	return series
}

// AverageDPS computes the cumulative average DPS at each interval offset:
// all damage up to fightStart+offset divided by the elapsed whole seconds.
func AverageDPS(log []types.DamagePoint, fightStart int64, intervals []int64) []int64 {
	if len(intervals) == 0 {
		return nil
	}

	series := make([]int64, 0, len(intervals))
	for _, offset := range intervals {
		cutoff := fightStart + offset

		var sum int64
		for _, p := range log {
			if p.Time <= cutoff {
				sum += p.Damage
			}
		}
		series = append(series, sum/DurationSeconds(offset))
	}
	return series
}
