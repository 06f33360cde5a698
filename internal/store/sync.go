package store

import (
	"context"
	"database/sql"
	"errors"

	rerrors "github.com/raidmeter/raidmeter/internal/errors"
)

// RecordSync writes the uplink outcome for an encounter, replacing any
// earlier attempt. A failed push is recorded with failed set so it can
// be retried later.
func (s *Store) RecordSync(ctx context.Context, encounterID int64, upstreamID string, failed bool) error {
	_, err := s.db.writes.ExecContext(ctx, `
        INSERT INTO sync_logs (encounter_id, upstream_id, failed)
        VALUES (?, ?, ?)
        ON CONFLICT(encounter_id) DO UPDATE SET
            upstream_id = excluded.upstream_id,
            failed = excluded.failed`,
		encounterID, upstreamID, failed)
	if err != nil {
		return writeError("record sync outcome", err)
	}
	return nil
}

// SyncStatus returns the recorded uplink outcome for an encounter. A
// never-pushed encounter reports an empty upstream id and no failure.
func (s *Store) SyncStatus(ctx context.Context, encounterID int64) (string, bool, error) {
	var upstreamID sql.NullString
	var failed bool
	err := s.db.reads.QueryRowContext(ctx,
		"SELECT upstream_id, failed FROM sync_logs WHERE encounter_id = ?", encounterID).
		Scan(&upstreamID, &failed)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, rerrors.Wrap(rerrors.ErrCategoryQuery, rerrors.CodeScanFailed, "read sync outcome", err)
	}
	return upstreamID.String, failed, nil
}
