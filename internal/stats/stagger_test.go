package stats

import (
	"math"
	"testing"

	"github.com/raidmeter/raidmeter/pkg/types"
)

func TestStagger_EmptyLog(t *testing.T) {
	intervals := []types.StaggerInterval{{Duration: 10000, Dealt: 500}}
	if Stagger(nil, 1000, 0, 0, 0, intervals) != nil {
		t.Error("empty sample log should produce no statistics")
	}
}

func TestStagger_ZeroAggregateTime(t *testing.T) {
	log := []types.StaggerSample{{Time: 1, Percent: 50}}
	if Stagger(log, 1000, 0, 0, 0, nil) != nil {
		t.Error("non-empty log with zero aggregate time should produce no statistics")
	}
	if Stagger(log, 1000, 0, 0, 0, []types.StaggerInterval{{Duration: 0, Dealt: 100}}) != nil {
		t.Error("zero-duration intervals should produce no statistics")
	}
}

func TestStagger_Aggregation(t *testing.T) {
	log := []types.StaggerSample{{Time: 1, Percent: 90}, {Time: 30, Percent: 10}}
	intervals := []types.StaggerInterval{
		{Duration: 30000, Dealt: 1500},
		{Duration: 30000, Dealt: 1500},
	}

	stats := Stagger(log, 1000, 0, 0, 0, intervals)
	if stats == nil {
		t.Fatal("expected statistics")
	}

	// 3000 dealt over 60 s against a 1000 bar: 5%-points per second
	if stats.Average != 5.0 {
		t.Errorf("average = %v, want 5", stats.Average)
	}
	// 3000 dealt per minute is 3 full bars
	if math.Abs(stats.StaggersPerMin-3.0) > 1e-9 {
		t.Errorf("staggers per minute = %v, want 3", stats.StaggersPerMin)
	}
	if len(stats.Log) != 2 {
		t.Errorf("raw log should be carried through, got %d entries", len(stats.Log))
	}
}

func TestStagger_PerMinuteConsistency(t *testing.T) {
	log := []types.StaggerSample{{Time: 1, Percent: 50}}
	intervals := []types.StaggerInterval{{Duration: 45500, Dealt: 777}}

	stats := Stagger(log, 2500, 0, 0, 0, intervals)
	if stats == nil {
		t.Fatal("expected statistics")
	}
	want := stats.Average * 2500 / 100 * 60 / 2500
	if math.Abs(stats.StaggersPerMin-want) > 1e-9 {
		t.Errorf("per-minute = %v, want %v", stats.StaggersPerMin, want)
	}
}

func TestStagger_CarryOverAppended(t *testing.T) {
	log := []types.StaggerSample{{Time: 1, Percent: 90}, {Time: 20, Percent: 50}}

	// no completed intervals, but an unfinished phase carried 600 stagger
	// from fight start to the last sample 20 s in
	stats := Stagger(log, 1000, 100000, 100000, 600, nil)
	if stats == nil {
		t.Fatal("expected statistics from the carried-over phase")
	}
	// 600 over 20 s on a 1000 bar
	if stats.Average != 3.0 {
		t.Errorf("average = %v, want 3", stats.Average)
	}
}

func TestStagger_CarryOverEndsAtLastSample(t *testing.T) {
	// The staggering stopped 20 s in even though the fight ran on much
	// longer; the unfinished phase must be clocked against the last
	// sample, not the end of the fight.
	log := []types.StaggerSample{{Time: 5, Percent: 80}, {Time: 20, Percent: 40}}
	intervals := []types.StaggerInterval{{Duration: 10000, Dealt: 400}}

	stats := Stagger(log, 1000, 10000, 0, 600, intervals)
	if stats == nil {
		t.Fatal("expected statistics")
	}
	// 400 over 10 s plus 600 over the 10 s from phase start to the last
	// sample: 1000 dealt over 20 s on a 1000 bar
	if stats.Average != 5.0 {
		t.Errorf("average = %v, want 5", stats.Average)
	}
	if math.Abs(stats.StaggersPerMin-3.0) > 1e-9 {
		t.Errorf("staggers per minute = %v, want 3", stats.StaggersPerMin)
	}
}

func TestStagger_CarryOverEqualToMaxIgnored(t *testing.T) {
	log := []types.StaggerSample{{Time: 20, Percent: 50}}

	// carry-over equal to the max means the phase completed; nothing to
	// append, and with no other intervals there are no statistics
	if Stagger(log, 1000, 100000, 100000, 1000, nil) != nil {
		t.Error("carry-over equal to max stagger should not open a phase")
	}
}

func TestStagger_NegativeCarryOverDurationIgnored(t *testing.T) {
	log := []types.StaggerSample{{Time: 20, Percent: 50}}

	// phase start after the last sample yields a non-positive duration;
	// the carry-over is dropped
	if Stagger(log, 1000, 130000, 100000, 600, nil) != nil {
		t.Error("non-positive carry-over duration should be dropped")
	}
}
