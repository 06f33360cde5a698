// Package store persists assembled encounter records into the local
// SQLite file and answers paginated, filtered, full-text list queries
// against the preview table.
package store

// EncounterRecord is the storage-ready shape of one encounter row.
// Blob fields have already been through the compression codec; document
// fields are encoded JSON.
type EncounterRecord struct {
	LastCombatPacket int64
	TotalDamageDealt int64
	TopDamageDealt   int64
	TotalDamageTaken int64
	TopDamageTaken   int64
	DPS              int64

	// Buffs, Debuffs, Shields and BossHPLog are compressed blobs
	Buffs     []byte
	Debuffs   []byte
	Shields   []byte
	BossHPLog []byte

	TotalShielding          int64
	TotalEffectiveShielding int64

	// Misc is the miscellaneous-metadata JSON document
	Misc []byte

	// Version is the record format version stamped on every row
	Version int

	// StaggerStats is the stagger-statistics JSON document; nil when the
	// fight produced none
	StaggerStats []byte
}

// PreviewRecord is the storage-ready shape of the denormalized list row.
type PreviewRecord struct {
	FightStart int64
	BossName   string
	Duration   int64

	// Players is the comma-joined "classId:name" string ordered by
	// descending damage dealt
	Players string

	Difficulty  string
	LocalPlayer string
	MyDPS       int64

	// Cleared is nil when the kill outcome is unknown
	Cleared *bool

	BossOnlyDamage bool
}

// EntityRecord is the storage-ready shape of one combatant row,
// composite-keyed by (name, encounter id) at insert time.
type EntityRecord struct {
	Name        string
	CharacterID uint64
	NpcID       uint32
	Kind        string
	ClassID     uint32
	Class       string
	GearScore   float64
	CurrentHP   int64
	MaxHP       int64
	IsDead      bool
	DPS         int64

	// Skills and DamageStats are compressed blobs
	Skills      []byte
	DamageStats []byte

	// SkillStats, Engravings and ArkPassiveData are JSON documents;
	// the optional ones are nil when absent
	SkillStats     []byte
	Engravings     []byte
	ArkPassiveData []byte

	GearHash         *string
	ArkPassiveActive *bool
	Spec             *string
}
