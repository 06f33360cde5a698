package stats

import "github.com/raidmeter/raidmeter/pkg/types"

// Stagger aggregates the boss-stagger phases of an encounter into
// summary statistics. It returns nil when no statistics can be produced:
// an empty sample log, a zero max stagger, or intervals that sum to zero
// time.
//
// prevStagger is the partial-stagger carry-over from the last unfinished
// phase. When it is present and differs from the encounter's recorded
// maximum, the fight ended mid-phase: the phase's duration is measured
// from the recorded phase start to the log's last sample and appended
// to the interval list before aggregating. The samples carry offsets in
// seconds from fightStart, so the phase clock stops with the staggering,
// not with the fight.
func Stagger(
	log []types.StaggerSample,
	maxStagger int64,
	staggerStart int64,
	fightStart int64,
	prevStagger int64,
	intervals []types.StaggerInterval,
) *types.StaggerStats {
	if len(log) == 0 || maxStagger <= 0 {
		return nil
	}

	if prevStagger > 0 && prevStagger != maxStagger && staggerStart > 0 {
		lastSample := fightStart + int64(log[len(log)-1].Time)*1000
		duration := lastSample - staggerStart
		if duration > 0 {
			intervals = append(intervals, types.StaggerInterval{
				Duration: duration,
				Dealt:    prevStagger,
			})
		}
	}

	var totalTimeMS, totalDealt int64
	for _, interval := range intervals {
		totalTimeMS += interval.Duration
		totalDealt += interval.Dealt
	}
	if totalTimeMS <= 0 {
		return nil
	}

	totalSeconds := float64(totalTimeMS) / 1000
	average := float64(totalDealt) / totalSeconds / float64(maxStagger) * 100

	return &types.StaggerStats{
		Average: average,
		// dealt / (sec/60) / max, which reduces to average * 60 / 100
		StaggersPerMin: average * 0.6,
		Log:            log,
	}
}
