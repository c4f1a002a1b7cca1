package handhistory

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store persists finished hand records locally so sessions can be
// reviewed later. One writer, WAL mode.
type Store struct {
	db *sql.DB
}

func OpenStore(dbPath string) (*Store, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, fmt.Errorf("empty sqlite database path")
	}
	if dbPath != ":memory:" {
		parent := filepath.Dir(dbPath)
		if parent != "" && parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, err
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, pragma := range []string{
		`PRAGMA busy_timeout = 5000;`,
		`PRAGMA journal_mode = WAL;`,
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS hand_records (
    hand_id       TEXT PRIMARY KEY,
    round         INTEGER NOT NULL,
    played_at_ms  INTEGER NOT NULL,
    total_pot     INTEGER NOT NULL,
    payload_json  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_hand_records_played_at
    ON hand_records (played_at_ms DESC);
`)
	return err
}

// Append stores one finished record. Re-appending the same hand ID is a
// no-op so hand-end hooks may fire more than once safely.
func (s *Store) Append(ctx context.Context, rec *Record) error {
	if rec == nil || rec.ID == "" {
		return fmt.Errorf("record must have an ID")
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal hand record: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO hand_records (hand_id, round, played_at_ms, total_pot, payload_json)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (hand_id) DO NOTHING
`, rec.ID, rec.Round, rec.PlayedAt.UnixMilli(), rec.TotalPot, string(payload))
	return err
}

// Get loads one record by hand ID.
func (s *Store) Get(ctx context.Context, handID string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT payload_json FROM hand_records WHERE hand_id = ?`, handID)
	var payload string
	if err := row.Scan(&payload); err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return nil, fmt.Errorf("unmarshal hand record %s: %w", handID, err)
	}
	return &rec, nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT payload_json FROM hand_records
ORDER BY played_at_ms DESC, round DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var rec Record
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			return nil, fmt.Errorf("unmarshal hand record: %w", err)
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}
