package types

// EntityKind classifies a tracked participant.
type EntityKind string

const (
	KindUnknown EntityKind = "UNKNOWN"
	KindPlayer  EntityKind = "PLAYER"
	KindNPC     EntityKind = "NPC"
	KindBoss    EntityKind = "BOSS"
	KindEsther  EntityKind = "ESTHER"
	KindPet     EntityKind = "PET"
)

// Entity is one participant (player or hostile) tracked during an encounter.
type Entity struct {
	// ID is the capture-process object id of the entity
	ID uint64 `json:"id"`

	// CharacterID is the persistent character id, zero for non-players
	CharacterID uint64 `json:"characterId"`

	// NpcID is the static npc id, zero for players
	NpcID uint32 `json:"npcId"`

	Name string     `json:"name"`
	Kind EntityKind `json:"entityType"`

	ClassID uint32 `json:"classId"`
	Class   string `json:"class"`

	// Spec is the playstyle variant of a player; empty or "Unknown"
	// until resolved from engraving / ark-passive data
	Spec string `json:"spec,omitempty"`

	GearScore     float64 `json:"gearScore"`
	CurrentHP     int64   `json:"currentHp"`
	MaxHP         int64   `json:"maxHp"`
	CurrentShield uint64  `json:"currentShield"`
	IsDead        bool    `json:"isDead"`

	// Skills holds the per-skill breakdown, keyed by skill id
	Skills map[uint32]*Skill `json:"skills"`

	DamageStats DamageStats `json:"damageStats"`
	SkillStats  SkillStats  `json:"skillStats"`

	// EngravingData lists the player's equipped engravings by name
	EngravingData []string `json:"engravingData,omitempty"`

	// GearHash fingerprints the player's gear snapshot
	GearHash string `json:"gearHash,omitempty"`

	ArkPassiveActive *bool           `json:"arkPassiveActive,omitempty"`
	ArkPassiveData   *ArkPassiveData `json:"arkPassiveData,omitempty"`
}

// IsActivePlayer reports whether the entity shows up in the preview player
// list: a player that dealt damage, or the local player regardless.
func (e *Entity) IsActivePlayer(localPlayer string) bool {
	if e.Kind != KindPlayer {
		return false
	}
	return e.Name == localPlayer || e.DamageStats.DamageDealt > 0
}

// IsRelevant reports whether the entity is persisted at all: active
// players, plus anything that dealt or received tracked damage.
func (e *Entity) IsRelevant(localPlayer string) bool {
	if e.IsActivePlayer(localPlayer) {
		return true
	}
	return e.DamageStats.DamageDealt > 0 || e.DamageStats.DamageTaken > 0
}

// DamageStats holds per-entity damage aggregates and derived series.
type DamageStats struct {
	DamageDealt int64 `json:"damageDealt"`
	DamageTaken int64 `json:"damageTaken"`

	// DPS is damage dealt divided by the fight duration in whole seconds
	DPS int64 `json:"dps"`

	// DPSAverage is the cumulative average DPS sampled at each interval
	DPSAverage []int64 `json:"dpsAverage,omitempty"`

	// DPSRolling10sAvg is the centered 10-second rolling DPS sampled at
	// each interval
	DPSRolling10sAvg []int64 `json:"dpsRolling10sAvg,omitempty"`

	Shielding          int64 `json:"shielding,omitempty"`
	EffectiveShielding int64 `json:"effectiveShielding,omitempty"`
}

// SkillStats holds per-entity cast aggregates.
type SkillStats struct {
	Casts int64 `json:"casts"`
	Hits  int64 `json:"hits"`
	Crits int64 `json:"crits"`

	// IdentityStats is only populated for the local player
	IdentityStats *IdentityStats `json:"identityStats,omitempty"`
}
