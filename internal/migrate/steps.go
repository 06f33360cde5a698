package migrate

import (
	"context"
	"database/sql"
	"log"

	rerrors "github.com/raidmeter/raidmeter/internal/errors"
)

// steps maps every step name to its implementation. Each step is
// idempotent: creates are guarded by IF NOT EXISTS, column adds by
// individual existence checks.
var steps = map[StepName]func(context.Context, *sql.Tx) error{
	StepLegacyTables:   stepLegacyTables,
	StepEntityPatch:    patchLegacyEntity,
	StepFullTextSearch: stepFullTextSearch,
	StepSyncLogs:       stepSyncLogs,
	StepColumnPatches:  patchSpecColumns,
}

func stepLegacyTables(ctx context.Context, tx *sql.Tx) error {
	log.Printf("migrate: creating tables")
	if err := createLegacyEncounter(ctx, tx); err != nil {
		return err
	}
	return createLegacyEntity(ctx, tx)
}

// fts5Available reports whether the linked SQLite carries the FTS5
// module. mattn/go-sqlite3 compiles it in only under the sqlite_fts5
// build tag.
func fts5Available(ctx context.Context, tx *sql.Tx) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx,
		"SELECT 1 FROM pragma_compile_options WHERE compile_options = 'ENABLE_FTS5'",
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, rerrors.NewMigrationError(rerrors.CodeIntrospectionFailed, "check fts5 support", err)
	}
	return true, nil
}

func stepFullTextSearch(ctx context.Context, tx *sql.Tx) error {
	log.Printf("migrate: optimizing searches")

	ok, err := fts5Available(ctx, tx)
	if err != nil {
		return err
	}
	if !ok {
		return rerrors.NewMigrationError(rerrors.CodeDDLFailed,
			"sqlite linked without the fts5 module; build with -tags sqlite_fts5 (see Makefile)", nil)
	}

	// No-ops when the tables already exist.
	if err := createLegacyEncounter(ctx, tx); err != nil {
		return err
	}
	if err := createLegacyEntity(ctx, tx); err != nil {
		return err
	}

	return execAll(ctx, tx, "full-text search migration", `
        CREATE TABLE encounter_preview (
            id INTEGER PRIMARY KEY,
            fight_start INTEGER,
            current_boss TEXT,
            duration INTEGER,
            players TEXT,
            difficulty TEXT,
            local_player TEXT,
            my_dps INTEGER,
            favorite BOOLEAN NOT NULL DEFAULT 0,
            cleared BOOLEAN,
            boss_only_damage BOOLEAN NOT NULL DEFAULT 0,
            FOREIGN KEY (id) REFERENCES encounter(id) ON DELETE CASCADE
        );

        INSERT INTO encounter_preview SELECT
            id, fight_start, current_boss, duration,
            (
                SELECT GROUP_CONCAT(class_id || ':' || name ORDER BY dps DESC)
                FROM entity
                WHERE encounter_id = encounter.id AND entity_type = 'PLAYER'
            ) AS players,
            difficulty, local_player,
            (
                SELECT dps
                FROM entity
                WHERE encounter_id = encounter.id AND name = encounter.local_player
            ) AS my_dps,
            favorite, cleared, boss_only_damage
        FROM encounter;

        DROP INDEX IF EXISTS encounter_fight_start_index;
        DROP INDEX IF EXISTS encounter_current_boss_index;
        DROP INDEX IF EXISTS encounter_favorite_index;
        DROP INDEX IF EXISTS entity_name_index;
        DROP INDEX IF EXISTS entity_class_index;

        ALTER TABLE encounter DROP COLUMN fight_start;
        ALTER TABLE encounter DROP COLUMN current_boss;
        ALTER TABLE encounter DROP COLUMN duration;
        ALTER TABLE encounter DROP COLUMN difficulty;
        ALTER TABLE encounter DROP COLUMN local_player;
        ALTER TABLE encounter DROP COLUMN favorite;
        ALTER TABLE encounter DROP COLUMN cleared;
        ALTER TABLE encounter DROP COLUMN boss_only_damage;

        ALTER TABLE encounter ADD COLUMN boss_hp_log BLOB;
        ALTER TABLE encounter ADD COLUMN stagger_log TEXT;

        CREATE INDEX encounter_preview_favorite_index ON encounter_preview(favorite);
        CREATE INDEX encounter_preview_fight_start_index ON encounter_preview(fight_start);
        CREATE INDEX encounter_preview_my_dps_index ON encounter_preview(my_dps);
        CREATE INDEX encounter_preview_duration_index ON encounter_preview(duration);

        CREATE VIRTUAL TABLE encounter_search USING fts5(
            current_boss, players, columnsize=0, detail=full,
            tokenize='trigram remove_diacritics 1',
            content=encounter_preview, content_rowid=id
        );
        INSERT INTO encounter_search(encounter_search) VALUES('rebuild');
        CREATE TRIGGER encounter_preview_ai AFTER INSERT ON encounter_preview BEGIN
            INSERT INTO encounter_search(rowid, current_boss, players)
            VALUES (new.id, new.current_boss, new.players);
        END;
        CREATE TRIGGER encounter_preview_ad AFTER DELETE ON encounter_preview BEGIN
            INSERT INTO encounter_search(encounter_search, rowid, current_boss, players)
            VALUES('delete', old.id, old.current_boss, old.players);
        END;
        CREATE TRIGGER encounter_preview_au AFTER UPDATE OF current_boss, players ON encounter_preview BEGIN
            INSERT INTO encounter_search(encounter_search, rowid, current_boss, players)
            VALUES('delete', old.id, old.current_boss, old.players);
            INSERT INTO encounter_search(rowid, current_boss, players)
            VALUES (new.id, new.current_boss, new.players);
        END;
    `)
}

func stepSyncLogs(ctx context.Context, tx *sql.Tx) error {
	log.Printf("migrate: adding sync table")
	return execAll(ctx, tx, "sync_logs migration", `
        CREATE TABLE IF NOT EXISTS sync_logs (
            encounter_id INTEGER PRIMARY KEY,
            upstream_id TEXT,
            failed BOOLEAN NOT NULL DEFAULT 0,
            FOREIGN KEY (encounter_id) REFERENCES encounter (id) ON DELETE CASCADE
        );
    `)
}

// createLegacyEncounter creates the legacy encounter table with its
// secondary indexes and applies the historical column patches.
func createLegacyEncounter(ctx context.Context, tx *sql.Tx) error {
	err := execAll(ctx, tx, "legacy encounter migration", `
        CREATE TABLE IF NOT EXISTS encounter (
            id INTEGER PRIMARY KEY,
            last_combat_packet INTEGER,
            fight_start INTEGER,
            local_player TEXT,
            current_boss TEXT,
            duration INTEGER,
            total_damage_dealt INTEGER,
            top_damage_dealt INTEGER,
            total_damage_taken INTEGER,
            top_damage_taken INTEGER,
            dps INTEGER,
            buffs TEXT,
            debuffs TEXT,
            total_shielding INTEGER DEFAULT 0,
            total_effective_shielding INTEGER DEFAULT 0,
            applied_shield_buffs TEXT,
            misc TEXT,
            difficulty TEXT,
            favorite BOOLEAN NOT NULL DEFAULT 0,
            cleared BOOLEAN,
            version INTEGER NOT NULL DEFAULT 5,
            boss_only_damage BOOLEAN NOT NULL DEFAULT 0
        );
        CREATE INDEX IF NOT EXISTS encounter_fight_start_index
        ON encounter (fight_start desc);
        CREATE INDEX IF NOT EXISTS encounter_current_boss_index
        ON encounter (current_boss);
    `)
	if err != nil {
		return err
	}

	patches := []columnPatch{
		{"encounter", "misc", "ALTER TABLE encounter ADD COLUMN misc TEXT"},
		{"encounter", "difficulty", "ALTER TABLE encounter ADD COLUMN difficulty TEXT"},
		{"encounter", "favorite", `
            ALTER TABLE encounter ADD COLUMN favorite BOOLEAN DEFAULT 0;
            ALTER TABLE encounter ADD COLUMN version INTEGER DEFAULT 5;
            ALTER TABLE encounter ADD COLUMN cleared BOOLEAN;
        `},
		{"encounter", "boss_only_damage", "ALTER TABLE encounter ADD COLUMN boss_only_damage BOOLEAN NOT NULL DEFAULT 0"},
		{"encounter", "total_shielding", `
            ALTER TABLE encounter ADD COLUMN total_shielding INTEGER DEFAULT 0;
            ALTER TABLE encounter ADD COLUMN total_effective_shielding INTEGER DEFAULT 0;
            ALTER TABLE encounter ADD COLUMN applied_shield_buffs TEXT;
        `},
	}
	if err := applyColumnPatches(ctx, tx, patches); err != nil {
		return err
	}

	return execAll(ctx, tx, "legacy encounter migration",
		"UPDATE encounter SET cleared = coalesce(json_extract(misc, '$.raidClear'), 0) WHERE cleared IS NULL;")
}

// createLegacyEntity creates the legacy entity table with its secondary
// indexes and applies the historical column patches.
func createLegacyEntity(ctx context.Context, tx *sql.Tx) error {
	err := execAll(ctx, tx, "legacy entity migration", `
        CREATE TABLE IF NOT EXISTS entity (
            name TEXT,
            character_id INTEGER,
            encounter_id INTEGER NOT NULL,
            npc_id INTEGER,
            entity_type TEXT,
            class_id INTEGER,
            class TEXT,
            gear_score REAL,
            current_hp INTEGER,
            max_hp INTEGER,
            is_dead INTEGER,
            skills TEXT,
            damage_stats TEXT,
            dps INTEGER,
            skill_stats TEXT,
            last_update INTEGER,
            engravings TEXT,
            PRIMARY KEY (name, encounter_id),
            FOREIGN KEY (encounter_id) REFERENCES encounter (id) ON DELETE CASCADE
        );
        CREATE INDEX IF NOT EXISTS entity_encounter_id_index
        ON entity (encounter_id desc);
    `)
	if err != nil {
		return err
	}
	return patchLegacyEntity(ctx, tx)
}

// patchLegacyEntity applies the additive entity column patches and the
// dps backfill. It runs on every startup regardless of schema state.
func patchLegacyEntity(ctx context.Context, tx *sql.Tx) error {
	patches := []columnPatch{
		{"entity", "dps", "ALTER TABLE entity ADD COLUMN dps INTEGER"},
		{"entity", "character_id", "ALTER TABLE entity ADD COLUMN character_id INTEGER"},
		{"entity", "engravings", "ALTER TABLE entity ADD COLUMN engravings TEXT"},
		{"entity", "gear_hash", "ALTER TABLE entity ADD COLUMN gear_hash TEXT"},
	}
	if err := applyColumnPatches(ctx, tx, patches); err != nil {
		return err
	}

	return execAll(ctx, tx, "legacy entity migration",
		"UPDATE entity SET dps = coalesce(json_extract(damage_stats, '$.dps'), 0) WHERE dps IS NULL;")
}

// patchSpecColumns ensures the spec and ark-passive columns exist.
func patchSpecColumns(ctx context.Context, tx *sql.Tx) error {
	exists, err := columnExists(ctx, tx, "entity", "spec")
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	log.Printf("migrate: adding spec info columns")
	return execAll(ctx, tx, "spec column migration", `
        ALTER TABLE entity ADD COLUMN spec TEXT;
        ALTER TABLE entity ADD COLUMN ark_passive_active BOOLEAN;
        ALTER TABLE entity ADD COLUMN ark_passive_data TEXT;
    `)
}

// columnPatch is one guarded ALTER: applied only when the named column
// is absent from the table.
type columnPatch struct {
	table  string
	column string
	ddl    string
}

func applyColumnPatches(ctx context.Context, tx *sql.Tx, patches []columnPatch) error {
	for _, p := range patches {
		exists, err := columnExists(ctx, tx, p.table, p.column)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if err := execAll(ctx, tx, "add column "+p.table+"."+p.column, p.ddl); err != nil {
			return err
		}
	}
	return nil
}

// execAll executes a DDL batch inside the migration transaction.
func execAll(ctx context.Context, tx *sql.Tx, what, batch string) error {
	if _, err := tx.ExecContext(ctx, batch); err != nil {
		return rerrors.NewMigrationError(rerrors.CodeDDLFailed, what, err)
	}
	return nil
}
