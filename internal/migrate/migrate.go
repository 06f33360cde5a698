// Package migrate brings the encounter database to the current schema.
// There is no migration-version table: schema state is inferred from
// table and column existence, and a fixed, ordered list of idempotent
// steps is applied inside one transaction. Running against a brand-new
// file, a database created by any prior schema version, or an already
// current database are all safe; the last case is a pure no-op.
package migrate

import (
	"context"
	"database/sql"
	"log"

	rerrors "github.com/raidmeter/raidmeter/internal/errors"
)

// Runner applies the migration steps over one database handle.
type Runner struct {
	db *sql.DB
}

// New creates a Runner. The handle should be the single-writer pool; the
// migration must complete before anything else touches the database.
func New(db *sql.DB) *Runner {
	return &Runner{db: db}
}

// Run inspects the schema and applies the selected steps in order inside
// a single transaction. Any DDL or introspection failure aborts the
// whole migration; a half-migrated database is never observable.
func (r *Runner) Run(ctx context.Context) error {
	log.Printf("migrate: setting up database")

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return rerrors.NewConnectionError("begin migration transaction", err)
	}
	defer tx.Rollback()

	state, err := Inspect(ctx, tx)
	if err != nil {
		return err
	}

	for _, step := range Plan(state) {
		apply, ok := steps[step]
		if !ok {
			return rerrors.NewInternalError("unknown migration step "+string(step), nil)
		}
		if err := apply(ctx, tx); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return rerrors.NewMigrationError(rerrors.CodeDDLFailed, "commit migration", err)
	}

	log.Printf("migrate: finished setting up database")
	return nil
}
