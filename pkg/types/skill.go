package types

// Skill is the per-skill breakdown of one entity's contribution.
type Skill struct {
	ID   uint32 `json:"id"`
	Name string `json:"name"`

	TotalDamage int64 `json:"totalDamage"`

	// DPS is total skill damage divided by the fight duration in whole
	// seconds, derived at assembly time
	DPS int64 `json:"dps"`

	Casts int64 `json:"casts"`
	Hits  int64 `json:"hits"`
	Crits int64 `json:"crits"`

	// AdjustedCritRate is the crit fraction among hits above the 5%
	// noise filter; nil when no hit clears the filter
	AdjustedCritRate *float64 `json:"adjustedCrit,omitempty"`

	// MaxDamageCast is the damage of the single highest-damage cast
	MaxDamageCast int64 `json:"maxDamageCast,omitempty"`

	// CastLog is the per-cast offset log in seconds from fight start
	CastLog []int32 `json:"castLog,omitempty"`

	// CastDetails is the cast-by-cast hit log merged in at assembly time
	CastDetails []SkillCast `json:"skillCastLog,omitempty"`

	// GemDamage and GemCooldown are the equipped gem levels overlaid
	// onto the skill from the player's gear snapshot
	GemDamage   int32 `json:"gemDamage,omitempty"`
	GemCooldown int32 `json:"gemCooldown,omitempty"`
}

// SkillCast is one recorded cast of a skill with its individual hits.
type SkillCast struct {
	// Timestamp is the cast offset from fight start in milliseconds
	Timestamp int64 `json:"timestamp"`

	Hits []SkillHit `json:"hits"`
}

// Damage returns the summed damage of every hit of the cast.
func (c *SkillCast) Damage() int64 {
	var total int64
	for _, h := range c.Hits {
		total += h.Damage
	}
	return total
}

// SkillHit is a single damage event inside a cast.
type SkillHit struct {
	// Timestamp is the hit offset from the cast in milliseconds
	Timestamp int64 `json:"timestamp"`

	Damage      int64 `json:"damage"`
	Crit        bool  `json:"crit"`
	BackAttack  bool  `json:"backAttack"`
	FrontAttack bool  `json:"frontAttack"`
}
