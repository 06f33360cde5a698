package types

import "fmt"

// UnknownClassID is the sentinel class id used when a preview player
// token cannot be parsed.
const UnknownClassID = 101

// SortField enumerates the columns a list query may be ordered by.
// Anything outside this set is rejected at query-build time.
type SortField string

const (
	SortFightStart SortField = "fight_start"
	SortDuration   SortField = "duration"
	SortMyDPS      SortField = "my_dps"
)

// Valid reports whether the sort field is part of the allow-list.
func (f SortField) Valid() bool {
	switch f {
	case SortFightStart, SortDuration, SortMyDPS:
		return true
	}
	return false
}

// SortOrder enumerates the sort directions.
type SortOrder int

const (
	SortDescending SortOrder = 0
	SortAscending  SortOrder = 1
)

// SQL returns the ORDER BY keyword for the direction.
func (o SortOrder) SQL() (string, error) {
	switch o {
	case SortAscending:
		return "ASC", nil
	case SortDescending:
		return "DESC", nil
	}
	return "", fmt.Errorf("types: invalid sort order %d", int(o))
}

// SearchFilter is the structured filter of a list query. The zero value
// matches every encounter sorted by descending fight start.
type SearchFilter struct {
	// MinDuration is the duration floor in seconds; always applied
	MinDuration int64 `json:"minDuration"`

	// Bosses is an allow-list of boss names; empty means all
	Bosses []string `json:"bosses,omitempty"`

	// Cleared restricts to cleared encounters when set
	Cleared bool `json:"cleared"`

	// Favorite restricts to favorited encounters when set
	Favorite bool `json:"favorite"`

	// BossOnlyDamage restricts to boss-only-damage encounters when set
	BossOnlyDamage bool `json:"bossOnlyDamage"`

	// Difficulty is an exact difficulty match; empty means all
	Difficulty string `json:"difficulty,omitempty"`

	Sort  SortField `json:"sort"`
	Order SortOrder `json:"order"`
}

// EncounterPreview is one denormalized list-view row.
type EncounterPreview struct {
	ID         int64  `json:"id"`
	FightStart int64  `json:"fightStart"`
	BossName   string `json:"bossName"`
	Duration   int64  `json:"duration"`

	// Classes and Names are parallel lists parsed from the persisted
	// comma-joined "classId:name" player string
	Classes []int32  `json:"classes"`
	Names   []string `json:"names"`

	Difficulty  string `json:"difficulty"`
	Favorite    bool   `json:"favorite"`
	Cleared     bool   `json:"cleared"`
	LocalPlayer string `json:"localPlayer"`
	MyDPS       int64  `json:"myDps"`
}

// EncountersOverview is one page of previews plus the unpaginated total.
type EncountersOverview struct {
	Encounters      []EncounterPreview `json:"encounters"`
	TotalEncounters int                `json:"totalEncounters"`
}
