package stats

import "github.com/raidmeter/raidmeter/pkg/types"

// noiseFilterFraction is the share of a skill's average damage-per-cast
// below which a hit is treated as a glancing artifact.
const noiseFilterFraction = 0.05

// CastQuality computes the adjusted crit rate and the highest-damage cast
// for one skill's cast-by-cast hit log. Near-zero glancing hits would
// otherwise drag the crit rate down, so only hits above 5% of the skill's
// average damage-per-cast count. The rate is nil when no hit clears the
// filter.
func CastQuality(casts []types.SkillCast) (adjustedCrit *float64, maxDamageCast int64) {
	if len(casts) == 0 {
		return nil, 0
	}

	var totalDamage int64
	for i := range casts {
		damage := casts[i].Damage()
		totalDamage += damage
		if damage > maxDamageCast {
			maxDamageCast = damage
		}
	}

	filter := float64(totalDamage) / float64(len(casts)) * noiseFilterFraction

	var hits, crits int64
	for i := range casts {
		for _, hit := range casts[i].Hits {
			if float64(hit.Damage) <= filter {
				continue
			}
			hits++
			if hit.Crit {
				crits++
			}
		}
	}
	if hits == 0 {
		return nil, maxDamageCast
	}

	rate := float64(crits) / float64(hits)
	return &rate, maxDamageCast
}
