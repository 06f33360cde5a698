package assemble

import (
	"sort"

	"github.com/raidmeter/raidmeter/internal/codec"
	"github.com/raidmeter/raidmeter/internal/stats"
	"github.com/raidmeter/raidmeter/internal/store"
	"github.com/raidmeter/raidmeter/pkg/types"
)

// buildEntityRecords filters the snapshot down to relevant combatants,
// finishes their derived statistics and serializes each into its storage
// shape. Entities come out ordered by descending damage dealt, ties
// broken by name, so insert order is deterministic.
func buildEntityRecords(
	encounter *types.Encounter,
	raw RawEncounter,
	intervals []int64,
	durationSeconds int64,
) ([]store.EntityRecord, error) {
	var filtered []*types.Entity
	for _, entity := range encounter.Entities {
		if entity.IsRelevant(encounter.LocalPlayer) {
			filtered = append(filtered, entity)
		}
	}
	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].DamageStats.DamageDealt != filtered[j].DamageStats.DamageDealt {
			return filtered[i].DamageStats.DamageDealt > filtered[j].DamageStats.DamageDealt
		}
		return filtered[i].Name < filtered[j].Name
	})

	records := make([]store.EntityRecord, 0, len(filtered))
	for _, entity := range filtered {
		if entity.Kind == types.KindPlayer {
			finishPlayer(entity, encounter, raw, intervals)
		}

		entity.DamageStats.DPS = stats.DPS(entity.DamageStats.DamageDealt, durationSeconds)
		for _, skill := range entity.Skills {
			skill.DPS = stats.DPS(skill.TotalDamage, durationSeconds)
		}

		mergeCastLogs(entity, raw)

		if entity.Name == encounter.LocalPlayer {
			identity := stats.Identity(
				raw.IdentityLog[entity.Name], entity.Class,
				encounter.FightStart, durationSeconds)
			if identity != nil {
				entity.SkillStats.IdentityStats = identity
			}
		}

		record, err := serializeEntity(entity)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// finishPlayer overlays the gear snapshot and derives the per-player
// DPS series from the damage-event timeline.
func finishPlayer(
	entity *types.Entity,
	encounter *types.Encounter,
	raw RawEncounter,
	intervals []int64,
) {
	var info *types.PlayerStats
	if snapshot, ok := raw.PlayerInfo[entity.Name]; ok {
		info = &snapshot
	}
	applyPlayerInfo(entity, info)

	log := raw.DamageLog[entity.Name]
	if len(log) == 0 || len(intervals) == 0 {
		return
	}
	entity.DamageStats.DPSAverage = stats.AverageDPS(log, encounter.FightStart, intervals)
	entity.DamageStats.DPSRolling10sAvg = stats.RollingDPS(log, encounter.FightStart, intervals)
}

// mergeCastLogs attaches the cast-offset log and the cast-by-cast hit
// log onto the matching skills, then derives the cast-quality numbers.
func mergeCastLogs(entity *types.Entity, raw RawEncounter) {
	for skillID, offsets := range raw.CastLog[entity.Name] {
		if skill, ok := entity.Skills[skillID]; ok {
			skill.CastLog = offsets
		}
	}

	for skillID, byTime := range raw.SkillCastLog[entity.CharacterID] {
		skill, ok := entity.Skills[skillID]
		if !ok {
			continue
		}

		timestamps := make([]int64, 0, len(byTime))
		for ts := range byTime {
			timestamps = append(timestamps, ts)
		}
		sort.Slice(timestamps, func(i, j int) bool { return timestamps[i] < timestamps[j] })

		casts := make([]types.SkillCast, 0, len(timestamps))
		for _, ts := range timestamps {
			casts = append(casts, byTime[ts])
		}
		skill.CastDetails = casts

		adjustedCrit, maxDamageCast := stats.CastQuality(casts)
		skill.AdjustedCritRate = adjustedCrit
		skill.MaxDamageCast = maxDamageCast
	}
}

func serializeEntity(entity *types.Entity) (store.EntityRecord, error) {
	skills, err := codec.Marshal(entity.Skills)
	if err != nil {
		return store.EntityRecord{}, err
	}
	damageStats, err := codec.Marshal(entity.DamageStats)
	if err != nil {
		return store.EntityRecord{}, err
	}
	skillStats, err := codec.MarshalJSON(entity.SkillStats)
	if err != nil {
		return store.EntityRecord{}, err
	}

	var engravings []byte
	if len(entity.EngravingData) > 0 {
		engravings, err = codec.MarshalJSON(entity.EngravingData)
		if err != nil {
			return store.EntityRecord{}, err
		}
	}

	var arkPassive []byte
	if entity.ArkPassiveData != nil {
		arkPassive, err = codec.MarshalJSON(entity.ArkPassiveData)
		if err != nil {
			return store.EntityRecord{}, err
		}
	}

	return store.EntityRecord{
		Name:             entity.Name,
		CharacterID:      entity.CharacterID,
		NpcID:            entity.NpcID,
		Kind:             string(entity.Kind),
		ClassID:          entity.ClassID,
		Class:            entity.Class,
		GearScore:        entity.GearScore,
		CurrentHP:        entity.CurrentHP,
		MaxHP:            entity.MaxHP,
		IsDead:           entity.IsDead,
		DPS:              entity.DamageStats.DPS,
		Skills:           skills,
		DamageStats:      damageStats,
		SkillStats:       skillStats,
		Engravings:       engravings,
		ArkPassiveData:   arkPassive,
		GearHash:         optional(entity.GearHash),
		ArkPassiveActive: entity.ArkPassiveActive,
		Spec:             optional(entity.Spec),
	}, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
