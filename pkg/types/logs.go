package types

// DamagePoint is one damage event on an entity's timeline.
type DamagePoint struct {
	// Time is the event time in Unix milliseconds
	Time int64 `json:"time"`

	Damage int64 `json:"damage"`
}

// IdentitySample is one sample of a player's identity gauge. The slot
// meaning depends on the class's gauge shape: single-gauge classes use
// Gauge only, bubble classes pair Gauge with the bubble count in Slot1,
// and card classes carry the two held card ids in Slot1 and Slot2.
type IdentitySample struct {
	// Time is the sample time in Unix milliseconds
	Time int64 `json:"time"`

	Gauge int32 `json:"gauge"`
	Slot1 int32 `json:"slot1"`
	Slot2 int32 `json:"slot2"`
}

// IdentityLog is an ordered series of identity-gauge samples.
type IdentityLog []IdentitySample

// IdentityStats is the normalized identity-gauge summary for the local
// player, persisted inside the entity's skill-stats document.
type IdentityStats struct {
	// Log holds one (offset seconds, percent) entry per raw sample
	Log []IdentityLogEntry `json:"log"`

	// AveragePerSecond is the gauge gain per second as percentage points
	AveragePerSecond float64 `json:"average"`

	// CardDraws counts draws per card id, card classes only
	CardDraws map[int32]int32 `json:"cardDraws,omitempty"`
}

// IdentityLogEntry is one normalized identity-log point.
type IdentityLogEntry struct {
	// Time is the sample offset from fight start in seconds
	Time int32 `json:"time"`

	Percent float64 `json:"percent"`
}

// StaggerSample is one sample of the boss stagger bar.
type StaggerSample struct {
	// Time is the sample offset from fight start in seconds
	Time int32 `json:"time"`

	// Percent is the remaining stagger bar in [0, 100]
	Percent float32 `json:"percent"`
}

// StaggerInterval is one completed (or carried-over) stagger phase.
type StaggerInterval struct {
	// Duration is the phase length in milliseconds
	Duration int64 `json:"duration"`

	// Dealt is the stagger amount dealt during the phase
	Dealt int64 `json:"dealt"`
}

// PlayerStats is the gear and engraving snapshot the capture process
// collects per player name.
type PlayerStats struct {
	Gems       []GemData       `json:"gems,omitempty"`
	Engravings []string        `json:"engravings,omitempty"`
	ArkPassive *ArkPassiveData `json:"arkPassiveData,omitempty"`
	GearHash   string          `json:"gearHash,omitempty"`
}

// Gem types carried in the gear snapshot. Damage and cooldown gems boost
// the matching skill directly; support identity gems boost the support's
// brand/attack-power skills through their own level table.
const (
	GemTypeDamage          int32 = 27
	GemTypeCooldown        int32 = 35
	GemTypeSupportIdentity int32 = 64
	GemTypeSupportBrand    int32 = 65
)

// GemData is one equipped gem in a player's gear snapshot.
type GemData struct {
	// Tier is the gem tier, 3 or 4
	Tier int32 `json:"tier"`

	// SkillID is the skill the gem is socketed for
	SkillID uint32 `json:"skillId"`

	// GemType selects the boosted attribute
	GemType int32 `json:"gemType"`

	// Value is the raw gem value resolved against the fixed level table
	Value int32 `json:"value"`
}

// ArkPassiveData is the player's ark-passive tree snapshot.
type ArkPassiveData struct {
	Evolution     []ArkPassiveNode `json:"evolution,omitempty"`
	Enlightenment []ArkPassiveNode `json:"enlightenment,omitempty"`
	Leap          []ArkPassiveNode `json:"leap,omitempty"`
}

// ArkPassiveNode is one invested node of an ark-passive tree.
type ArkPassiveNode struct {
	ID    uint32 `json:"id"`
	Level int32  `json:"lv"`
}
