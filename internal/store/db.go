package store

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	rerrors "github.com/raidmeter/raidmeter/internal/errors"
)

// DB wraps the two connection pools over the encounter database: a
// single-connection write pool so encounter inserts never contend with
// each other inside SQLite, and a small read pool for list queries.
type DB struct {
	writes *sql.DB
	reads  *sql.DB
}

// defaultReadPoolSize is used when the caller passes a non-positive
// read pool size.
const defaultReadPoolSize = 4

// Open opens (creating if necessary) the encounter database at path.
// readPoolSize bounds the read pool; values below one fall back to the
// default.
func Open(path string, readPoolSize int) (*DB, error) {
	if readPoolSize < 1 {
		readPoolSize = defaultReadPoolSize
	}
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	writes, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, rerrors.NewConnectionError("open write pool", err)
	}
	writes.SetMaxOpenConns(1)
	writes.SetMaxIdleConns(1)

	// Force file creation before the read pool touches it.
	if err := writes.Ping(); err != nil {
		writes.Close()
		return nil, rerrors.NewConnectionError("open database file", err)
	}

	reads, err := sql.Open("sqlite3", dsn)
	if err != nil {
		writes.Close()
		return nil, rerrors.NewConnectionError("open read pool", err)
	}
	reads.SetMaxOpenConns(readPoolSize)
	reads.SetMaxIdleConns(readPoolSize)
	reads.SetConnMaxLifetime(5 * time.Minute)

	return &DB{writes: writes, reads: reads}, nil
}

// Writes returns the single-writer pool. The migration engine runs its
// transaction here before anything else touches the database.
func (d *DB) Writes() *sql.DB {
	return d.writes
}

// Reads returns the read pool.
func (d *DB) Reads() *sql.DB {
	return d.reads
}

// Close closes both pools.
func (d *DB) Close() error {
	rerr := d.reads.Close()
	werr := d.writes.Close()
	if werr != nil {
		return werr
	}
	return rerr
}
