package stats

import "github.com/raidmeter/raidmeter/pkg/types"

// GaugeKind selects how a class's identity-gauge samples are interpreted.
type GaugeKind int

const (
	// GaugeSingle is a plain fill-and-spend meter.
	GaugeSingle GaugeKind = iota

	// GaugeTwoCard is a deck meter with two held card slots.
	GaugeTwoCard

	// GaugeThreeBubble is a meter that banks into up to three full bubbles.
	GaugeThreeBubble
)

// GaugeShape is the resolved identity-gauge variant for one class.
type GaugeShape struct {
	Kind GaugeKind

	// Max is the class-specific full-gauge value.
	Max int32

	// NeutralCard is the card id that marks a slot in transition and
	// must not be counted as a draw. Card classes only.
	NeutralCard int32
}

// ghostCardID is the placeholder card shown while a slot is being redrawn.
const ghostCardID = 7

var bubbleClasses = map[string]bool{
	"Bard":       true,
	"Artist":     true,
	"Aeromancer": true,
}

var cardClasses = map[string]bool{
	"Arcanist": true,
}

// gaugeMaxOverrides lists the classes whose full gauge differs from the
// default of 10000.
var gaugeMaxOverrides = map[string]int32{
	"Summoner":  7000,
	"Souleater": 3000,
}

// ShapeForClass resolves the gauge variant for a class name. Resolution
// happens once; everything downstream branches on the tag, not the name.
func ShapeForClass(class string) GaugeShape {
	switch {
	case cardClasses[class]:
		return GaugeShape{Kind: GaugeTwoCard, Max: 10000, NeutralCard: ghostCardID}
	case bubbleClasses[class]:
		return GaugeShape{Kind: GaugeThreeBubble, Max: 10000}
	default:
		max := int32(10000)
		if m, ok := gaugeMaxOverrides[class]; ok {
			max = m
		}
		return GaugeShape{Kind: GaugeSingle, Max: max}
	}
}

// Identity normalizes an identity-gauge sample log into per-sample
// percentages and an average gain per second. It requires at least two
// samples and returns nil otherwise.
//
// Only forward-time samples whose gauge did not decrease contribute to
// the gain accumulator; a decreasing gauge is a spend or reset and an
// out-of-order timestamp is a capture artifact. Excluded samples still
// appear in the emitted log at their own percentage.
func Identity(log types.IdentityLog, class string, fightStart, durationSeconds int64) *types.IdentityStats {
	if len(log) < 2 {
		return nil
	}

	shape := ShapeForClass(class)
	out := &types.IdentityStats{
		Log: make([]types.IdentityLogEntry, 0, len(log)),
	}
	if shape.Kind == GaugeTwoCard {
		out.CardDraws = make(map[int32]int32)
	}

	var totalGain int64
	var prev *types.IdentitySample
	var lastCards [2]int32

	for i := range log {
		sample := log[i]

		value := gaugeValue(shape, sample)
		out.Log = append(out.Log, types.IdentityLogEntry{
			Time:    int32((sample.Time - fightStart) / 1000),
			Percent: round2(gaugePercent(shape, sample)),
		})

		if shape.Kind == GaugeTwoCard {
			countDraws(shape, sample, &lastCards, out.CardDraws)
		}

		if prev != nil && sample.Time > prev.Time {
			prevValue := gaugeValue(shape, *prev)
			if value >= prevValue {
				totalGain += value - prevValue
			}
		}
		prev = &log[i]
	}

	out.AveragePerSecond = round2(float64(totalGain) / float64(durationSeconds) / float64(shape.Max) * 100)
	return out
}

// gaugeValue collapses a sample to a single comparable gauge amount.
func gaugeValue(shape GaugeShape, s types.IdentitySample) int64 {
	if shape.Kind == GaugeThreeBubble {
		return int64(s.Gauge) + int64(shape.Max)*int64(s.Slot1)
	}
	return int64(s.Gauge)
}

// gaugePercent computes the emitted log percentage for one sample.
func gaugePercent(shape GaugeShape, s types.IdentitySample) float64 {
	switch shape.Kind {
	case GaugeThreeBubble:
		return (float64(s.Gauge) + float64(shape.Max)*float64(s.Slot1)) / float64(shape.Max) * 100
	default:
		pct := float64(s.Gauge) / float64(shape.Max) * 100
		if s.Gauge >= shape.Max {
			pct = 100
		}
		return pct
	}
}

// countDraws counts card draws for the two card slots. A draw is a slot
// changing to a new card; repeats of the card last seen in the slot and
// transitions through the neutral card are not draws.
func countDraws(shape GaugeShape, s types.IdentitySample, lastCards *[2]int32, draws map[int32]int32) {
	for slot, card := range [2]int32{s.Slot1, s.Slot2} {
		if card == 0 || card == shape.NeutralCard {
			continue
		}
		if card == lastCards[slot] {
			continue
		}
		draws[card]++
		lastCards[slot] = card
	}
}
