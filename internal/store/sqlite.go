package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tkingovr/pipefilter/api"
	"github.com/tkingovr/pipefilter/internal/wire"
)

// DBFileName is the database file created inside the data directory.
const DBFileName = "pipefilter.db"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS nodes (
	id         TEXT PRIMARY KEY,
	record     TEXT NOT NULL,
	updated_at TEXT NOT NULL
);`

// SQLiteStore keeps one row per node holding the framed record.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the store in dataDir.
func OpenSQLite(dataDir string) (*SQLiteStore, error) {
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, DBFileName))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// sqlite allows one writer at a time.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, id string, rec *api.Record) error {
	if id == "" {
		return fmt.Errorf("node id must not be empty")
	}
	data, err := wire.MarshalRecord(rec)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO nodes (id, record, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET record = excluded.record, updated_at = excluded.updated_at`,
		id, string(data), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("saving record %s: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, id string) (*api.Record, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT record FROM nodes WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading record %s: %w", id, err)
	}
	return wire.UnmarshalRecord([]byte(data))
}

func (s *SQLiteStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM nodes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM nodes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting record %s: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
