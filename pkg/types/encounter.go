// Package types provides the core domain types shared by the raidmeter
// pipeline: the finalized encounter snapshot handed over by the capture
// process, the raw telemetry logs it carries, and the query-side shapes
// returned to list views.
package types

// Encounter is the finalized snapshot of one recorded fight.
type Encounter struct {
	// FightStart is the fight start time in Unix milliseconds
	FightStart int64 `json:"fightStart"`

	// LastCombatPacket is the time of the last combat action in Unix milliseconds
	LastCombatPacket int64 `json:"lastCombatPacket"`

	// Duration is the fight length in milliseconds, derived at assembly time
	Duration int64 `json:"duration"`

	// LocalPlayer is the name of the player running the capture process
	LocalPlayer string `json:"localPlayer"`

	// CurrentBossName is the primary boss of the encounter
	CurrentBossName string `json:"currentBossName"`

	// BossOnlyDamage reports whether only boss damage was tracked
	BossOnlyDamage bool `json:"bossOnlyDamage"`

	// Entities holds every tracked participant, keyed by name
	Entities map[string]*Entity `json:"entities"`

	// DamageStats holds the encounter-wide aggregates
	DamageStats EncounterDamageStats `json:"encounterDamageStats"`
}

// EncounterDamageStats holds encounter-wide damage and resource aggregates.
type EncounterDamageStats struct {
	TotalDamageDealt int64 `json:"totalDamageDealt"`
	TopDamageDealt   int64 `json:"topDamageDealt"`
	TotalDamageTaken int64 `json:"totalDamageTaken"`
	TopDamageTaken   int64 `json:"topDamageTaken"`

	// DPS is total damage dealt divided by the fight duration in
	// whole seconds, derived at assembly time
	DPS int64 `json:"dps"`

	TotalShielding          int64 `json:"totalShielding"`
	TotalEffectiveShielding int64 `json:"totalEffectiveShielding"`

	// Buffs and Debuffs are the encounter-wide status-effect timelines,
	// persisted as one compressed blob each
	Buffs   map[int32]StatusEffect `json:"buffs"`
	Debuffs map[int32]StatusEffect `json:"debuffs"`

	// AppliedShieldBuffs is the shield-granting subset of Buffs
	AppliedShieldBuffs map[int32]StatusEffect `json:"appliedShieldBuffs"`

	// MaxStagger is the boss's full stagger bar for this encounter
	MaxStagger int64 `json:"maxStagger"`

	// StaggerStart is the start time of the most recent stagger phase
	// in Unix milliseconds, zero when no phase was observed
	StaggerStart int64 `json:"staggerStart"`
}

// StatusEffect describes one buff or debuff tracked during the encounter.
// The shape is carried through from the capture process untouched.
type StatusEffect struct {
	Target       string  `json:"target"`
	Category     string  `json:"category"`
	BuffCategory string  `json:"buffCategory,omitempty"`
	SourceSkills []int32 `json:"sourceSkills,omitempty"`
	UniqueGroup  int32   `json:"uniqueGroup,omitempty"`
}

// BossHPLog is one sample of a boss HP timeline.
type BossHPLog struct {
	// Time is the sample offset from fight start in seconds
	Time int32 `json:"time"`

	HP int64 `json:"hp"`

	// P is the HP percentage at the sample, in [0, 1]
	P float32 `json:"p"`
}

// EncounterMisc is the miscellaneous metadata JSON document stored on the
// encounter row. Field names are part of the persisted format; the
// migration engine extracts raidClear from historical rows.
type EncounterMisc struct {
	StaggerStats  *StaggerStats      `json:"staggerStats,omitempty"`
	RaidClear     *bool              `json:"raidClear,omitempty"`
	PartyInfo     map[int32][]string `json:"partyInfo,omitempty"`
	Region        *string            `json:"region,omitempty"`
	Version       *string            `json:"version,omitempty"`
	RdpsValid     *bool              `json:"rdpsValid,omitempty"`
	RdpsMessage   *string            `json:"rdpsMessage,omitempty"`
	NtpFightStart *int64             `json:"ntpFightStart,omitempty"`
	ManualSave    *bool              `json:"manualSave,omitempty"`
}

// StaggerStats summarizes every stagger phase of the encounter.
type StaggerStats struct {
	// Average is the stagger dealt per second, normalized against the
	// boss's full stagger bar, as a percentage
	Average float64 `json:"average"`

	// StaggersPerMin is how many full stagger bars the raid breaks per minute
	StaggersPerMin float64 `json:"staggersPerMin"`

	// Log carries the raw stagger samples as (offset seconds, percent) pairs
	Log []StaggerSample `json:"log,omitempty"`
}
