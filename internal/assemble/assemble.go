// Package assemble turns a finalized encounter snapshot plus its raw
// telemetry logs into the three storage-ready record shapes. It derives
// every computed statistic, filters the entity set down to relevant
// combatants, overlays gear data onto player skills, and serializes the
// heavy fields through the compression codec. The package performs no
// I/O; the only errors it can surface are serialization failures.
package assemble

import (
	"fmt"
	"sort"
	"strings"

	"github.com/raidmeter/raidmeter/internal/codec"
	"github.com/raidmeter/raidmeter/internal/stats"
	"github.com/raidmeter/raidmeter/internal/store"
	"github.com/raidmeter/raidmeter/pkg/types"
)

// RecordVersion is stamped on every persisted encounter row.
const RecordVersion = 5

// RawEncounter is the full handoff from the capture collaborator: the
// finalized snapshot plus the raw logs and scalar metadata that never
// live on the snapshot itself.
type RawEncounter struct {
	Encounter types.Encounter

	// DamageLog holds each entity's damage-event timeline, keyed by name.
	DamageLog map[string][]types.DamagePoint

	// IdentityLog holds identity-gauge samples keyed by name; only the
	// local player's log is consumed.
	IdentityLog map[string]types.IdentityLog

	// CastLog holds per-skill cast offsets in seconds, keyed by name
	// then skill id.
	CastLog map[string]map[uint32][]int32

	// SkillCastLog holds the cast-by-cast hit log, keyed by character id
	// then skill id then cast timestamp.
	SkillCastLog map[uint64]map[uint32]map[int64]types.SkillCast

	// BossHPLog holds the HP timeline per boss name.
	BossHPLog map[string][]types.BossHPLog

	StaggerLog       []types.StaggerSample
	StaggerIntervals []types.StaggerInterval

	// PrevStagger is the partial-stagger carry-over from the last
	// unfinished phase, zero when none.
	PrevStagger int64

	// PlayerInfo holds the gear and engraving snapshot per player name.
	PlayerInfo map[string]types.PlayerStats

	// PartyInfo lists the party compositions in party order.
	PartyInfo [][]string

	RaidClear      bool
	RaidDifficulty string
	Region         *string
	Version        string
	NTPFightStart  int64
	RdpsValid      bool
	ManualSave     bool
}

// Records bundles the three storage-ready shapes of one encounter.
type Records struct {
	Encounter store.EncounterRecord
	Preview   store.PreviewRecord
	Entities  []store.EntityRecord
}

// Assemble derives all statistics and builds the storage records for
// one encounter. Malformed upstream data degrades to defaults; the only
// error source is serialization.
func Assemble(raw RawEncounter) (*Records, error) {
	encounter := raw.Encounter

	encounter.Duration = encounter.LastCombatPacket - encounter.FightStart
	durationSeconds := stats.DurationSeconds(encounter.Duration)
	encounter.DamageStats.DPS = stats.DPS(encounter.DamageStats.TotalDamageDealt, durationSeconds)

	intervals := stats.GenerateIntervals(encounter.FightStart, encounter.LastCombatPacket)

	staggerStats := stats.Stagger(
		raw.StaggerLog,
		encounter.DamageStats.MaxStagger,
		encounter.DamageStats.StaggerStart,
		encounter.FightStart,
		raw.PrevStagger,
		raw.StaggerIntervals,
	)

	encounterRecord, err := buildEncounterRecord(&encounter, raw, staggerStats)
	if err != nil {
		return nil, err
	}

	players, localPlayerDPS := previewPlayers(&encounter)

	entities, err := buildEntityRecords(&encounter, raw, intervals, durationSeconds)
	if err != nil {
		return nil, err
	}

	preview := store.PreviewRecord{
		FightStart:     encounter.FightStart,
		BossName:       encounter.CurrentBossName,
		Duration:       encounter.Duration,
		Players:        players,
		Difficulty:     raw.RaidDifficulty,
		LocalPlayer:    encounter.LocalPlayer,
		MyDPS:          localPlayerDPS,
		Cleared:        clearFlag(raw.RaidClear),
		BossOnlyDamage: encounter.BossOnlyDamage,
	}

	return &Records{
		Encounter: encounterRecord,
		Preview:   preview,
		Entities:  entities,
	}, nil
}

func buildEncounterRecord(
	encounter *types.Encounter,
	raw RawEncounter,
	staggerStats *types.StaggerStats,
) (store.EncounterRecord, error) {
	ds := &encounter.DamageStats

	buffs, err := codec.Marshal(ds.Buffs)
	if err != nil {
		return store.EncounterRecord{}, err
	}
	debuffs, err := codec.Marshal(ds.Debuffs)
	if err != nil {
		return store.EncounterRecord{}, err
	}
	shields, err := codec.Marshal(ds.AppliedShieldBuffs)
	if err != nil {
		return store.EncounterRecord{}, err
	}
	bossHP, err := codec.Marshal(raw.BossHPLog)
	if err != nil {
		return store.EncounterRecord{}, err
	}

	misc, err := codec.MarshalJSON(buildMisc(raw))
	if err != nil {
		return store.EncounterRecord{}, err
	}

	var staggerDoc []byte
	if staggerStats != nil {
		staggerDoc, err = codec.MarshalJSON(staggerStats)
		if err != nil {
			return store.EncounterRecord{}, err
		}
	}

	return store.EncounterRecord{
		LastCombatPacket:        encounter.LastCombatPacket,
		TotalDamageDealt:        ds.TotalDamageDealt,
		TopDamageDealt:          ds.TopDamageDealt,
		TotalDamageTaken:        ds.TotalDamageTaken,
		TopDamageTaken:          ds.TopDamageTaken,
		DPS:                     ds.DPS,
		Buffs:                   buffs,
		Debuffs:                 debuffs,
		Shields:                 shields,
		BossHPLog:               bossHP,
		TotalShielding:          ds.TotalShielding,
		TotalEffectiveShielding: ds.TotalEffectiveShielding,
		Misc:                    misc,
		Version:                 RecordVersion,
		StaggerStats:            staggerDoc,
	}, nil
}

// buildMisc fills the miscellaneous-metadata document. Optional fields
// stay absent rather than zero-valued so historical readers keep working.
func buildMisc(raw RawEncounter) types.EncounterMisc {
	misc := types.EncounterMisc{
		RaidClear:     clearFlag(raw.RaidClear),
		Region:        raw.Region,
		Version:       &raw.Version,
		RdpsValid:     &raw.RdpsValid,
		NtpFightStart: &raw.NTPFightStart,
		ManualSave:    &raw.ManualSave,
	}

	if !raw.RdpsValid {
		msg := "invalid_stats"
		misc.RdpsMessage = &msg
	}

	if len(raw.PartyInfo) > 0 {
		parties := make(map[int32][]string, len(raw.PartyInfo))
		for i, party := range raw.PartyInfo {
			parties[int32(i)] = party
		}
		misc.PartyInfo = parties
	}
	return misc
}

// clearFlag maps a kill outcome onto the nullable cleared column: set
// only when the raid was actually cleared, absent otherwise.
func clearFlag(raidClear bool) *bool {
	if !raidClear {
		return nil
	}
	cleared := true
	return &cleared
}

// previewPlayers builds the comma-joined "classId:name" string of every
// active player, ordered by descending damage dealt, and returns the
// local player's dps alongside it.
func previewPlayers(encounter *types.Encounter) (string, int64) {
	var players []*types.Entity
	var localPlayerDPS int64

	for _, entity := range encounter.Entities {
		if !entity.IsActivePlayer(encounter.LocalPlayer) {
			continue
		}
		if entity.Name == encounter.LocalPlayer {
			localPlayerDPS = entity.DamageStats.DPS
		}
		players = append(players, entity)
	}

	sort.Slice(players, func(i, j int) bool {
		if players[i].DamageStats.DamageDealt != players[j].DamageStats.DamageDealt {
			return players[i].DamageStats.DamageDealt > players[j].DamageStats.DamageDealt
		}
		return players[i].Name < players[j].Name
	})

	parts := make([]string, 0, len(players))
	for _, p := range players {
		parts = append(parts, fmt.Sprintf("%d:%s", p.ClassID, p.Name))
	}
	return strings.Join(parts, ","), localPlayerDPS
}
