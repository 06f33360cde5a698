package store

import (
	"context"
	"errors"

	"github.com/mattn/go-sqlite3"

	rerrors "github.com/raidmeter/raidmeter/internal/errors"
)

// Store is the persistence and query surface over an opened DB. The
// schema must have been migrated before the first call.
type Store struct {
	db *DB
}

// New creates a Store over db.
func New(db *DB) *Store {
	return &Store{db: db}
}

// InsertEncounter writes one encounter, its preview row and its entity
// rows in a single transaction and returns the assigned encounter id.
// The preview insert fires the search-index sync trigger. Any failure
// rolls the whole write back; an observer never sees a partial
// encounter.
func (s *Store) InsertEncounter(
	ctx context.Context,
	encounter EncounterRecord,
	preview PreviewRecord,
	entities []EntityRecord,
) (int64, error) {
	tx, err := s.db.writes.BeginTx(ctx, nil)
	if err != nil {
		return 0, rerrors.NewConnectionError("begin encounter transaction", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, insertEncounterSQL,
		encounter.LastCombatPacket,
		encounter.TotalDamageDealt,
		encounter.TopDamageDealt,
		encounter.TotalDamageTaken,
		encounter.TopDamageTaken,
		encounter.DPS,
		encounter.Buffs,
		encounter.Debuffs,
		encounter.TotalShielding,
		encounter.TotalEffectiveShielding,
		encounter.Shields,
		encounter.Misc,
		encounter.Version,
		encounter.BossHPLog,
		encounter.StaggerStats,
	)
	if err != nil {
		return 0, writeError("insert encounter", err)
	}

	encounterID, err := result.LastInsertId()
	if err != nil {
		return 0, writeError("read encounter id", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertEntitySQL)
	if err != nil {
		return 0, writeError("prepare entity insert", err)
	}
	defer stmt.Close()

	for i := range entities {
		entity := &entities[i]
		_, err := stmt.ExecContext(ctx,
			entity.Name,
			encounterID,
			entity.NpcID,
			entity.Kind,
			entity.ClassID,
			entity.Class,
			entity.GearScore,
			entity.CurrentHP,
			entity.MaxHP,
			entity.IsDead,
			entity.Skills,
			entity.DamageStats,
			entity.SkillStats,
			entity.DPS,
			entity.CharacterID,
			entity.Engravings,
			entity.GearHash,
			entity.ArkPassiveActive,
			entity.Spec,
			entity.ArkPassiveData,
		)
		if err != nil {
			return 0, writeError("insert entity "+entity.Name, err)
		}
	}

	_, err = tx.ExecContext(ctx, insertPreviewSQL,
		encounterID,
		preview.FightStart,
		preview.BossName,
		preview.Duration,
		preview.Players,
		preview.Difficulty,
		preview.LocalPlayer,
		preview.MyDPS,
		preview.Cleared,
		preview.BossOnlyDamage,
	)
	if err != nil {
		return 0, writeError("insert encounter preview", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, writeError("commit encounter", err)
	}

	return encounterID, nil
}

// writeError classifies a write failure: constraint violations (duplicate
// composite entity key, broken foreign key) get their own code so callers
// can tell them apart from plain storage failures.
func writeError(message string, err error) error {
	var serr sqlite3.Error
	if errors.As(err, &serr) && serr.Code == sqlite3.ErrConstraint {
		return rerrors.NewPersistenceError(rerrors.CodeConstraintViolation, message, err)
	}
	return rerrors.NewPersistenceError(rerrors.CodeWriteFailed, message, err)
}
