package migrate

import (
	"context"
	"database/sql"

	rerrors "github.com/raidmeter/raidmeter/internal/errors"
)

// State is the introspected table-level schema state the step selection
// runs on.
type State struct {
	HasEncounter bool
	HasPreview   bool
	HasSyncLogs  bool
}

// StepName identifies one migration step.
type StepName string

const (
	// StepLegacyTables creates the legacy encounter and entity tables.
	StepLegacyTables StepName = "legacy_tables"

	// StepEntityPatch re-applies the legacy-entity column patches. It
	// always runs: a safety net for databases whose earlier migration
	// ran incompletely.
	StepEntityPatch StepName = "entity_patch"

	// StepFullTextSearch introduces the preview table, moves the
	// denormalized columns there and builds the trigram search index
	// with its sync triggers.
	StepFullTextSearch StepName = "full_text_search"

	// StepSyncLogs creates the upstream-sync bookkeeping table.
	StepSyncLogs StepName = "sync_logs"

	// StepColumnPatches ensures the additive spec and ark-passive
	// columns exist. It always runs, each column guarded individually.
	StepColumnPatches StepName = "column_patches"
)

// Plan selects the steps to apply for a schema state, in fixed order.
// It is pure: given the same state it always returns the same plan.
func Plan(s State) []StepName {
	var plan []StepName
	if !s.HasEncounter {
		plan = append(plan, StepLegacyTables)
	}
	plan = append(plan, StepEntityPatch)
	if !s.HasPreview {
		plan = append(plan, StepFullTextSearch)
	}
	if !s.HasSyncLogs {
		plan = append(plan, StepSyncLogs)
	}
	plan = append(plan, StepColumnPatches)
	return plan
}

// Inspect reads the table-level schema state through the transaction.
func Inspect(ctx context.Context, tx *sql.Tx) (State, error) {
	var state State
	var err error

	if state.HasEncounter, err = tableExists(ctx, tx, "encounter"); err != nil {
		return State{}, err
	}
	if state.HasPreview, err = tableExists(ctx, tx, "encounter_preview"); err != nil {
		return State{}, err
	}
	if state.HasSyncLogs, err = tableExists(ctx, tx, "sync_logs"); err != nil {
		return State{}, err
	}
	return state, nil
}

func tableExists(ctx context.Context, tx *sql.Tx, name string) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx,
		"SELECT 1 FROM sqlite_master WHERE type='table' AND name=?", name,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, rerrors.NewMigrationError(rerrors.CodeIntrospectionFailed, "check table "+name, err)
	}
	return true, nil
}

func columnExists(ctx context.Context, tx *sql.Tx, table, column string) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx,
		"SELECT 1 FROM pragma_table_info(?) WHERE name=?", table, column,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, rerrors.NewMigrationError(rerrors.CodeIntrospectionFailed, "check column "+table+"."+column, err)
	}
	return true, nil
}
