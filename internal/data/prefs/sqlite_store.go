package prefs

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	_ "modernc.org/sqlite"
)

const (
	keyShowIndex       = "showIndex"
	keyRelativeTime    = "showRelativeTimestamp"
	keyEndpointNames   = "showIpNames"
	keyColorBySession  = "showCallColors"
	keyRefreshInterval = "refreshIntervalMs"
)

// SQLiteStore keeps preferences as key/value rows in an embedded SQLite database
type SQLiteStore struct {
	db     *sql.DB
	upsert *sql.Stmt
}

// NewSQLiteStore opens (or creates) the database at path
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		path = "./preferences.sqlite"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) init() error {
	ddl := `
CREATE TABLE IF NOT EXISTS preferences (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("failed to create preferences table: %w", err)
	}
	stmt, err := s.db.Prepare(`
INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at;
`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	s.upsert = stmt
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context) (Preferences, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM preferences;`)
	if err != nil {
		return Preferences{}, fmt.Errorf("failed to query preferences: %w", err)
	}
	defer rows.Close()

	p := Defaults()
	found := 0
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return Preferences{}, fmt.Errorf("failed to scan preference: %w", err)
		}
		if err := p.apply(key, value); err != nil {
			return Preferences{}, err
		}
		found++
	}
	if err := rows.Err(); err != nil {
		return Preferences{}, fmt.Errorf("failed to read preferences: %w", err)
	}
	if found == 0 {
		return Preferences{}, ErrNotFound
	}
	return p, nil
}

func (s *SQLiteStore) Save(ctx context.Context, p Preferences) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	stmt := tx.StmtContext(ctx, s.upsert)

	now := time.Now().UTC()
	for _, kv := range p.pairs() {
		if _, err := stmt.ExecContext(ctx, kv[0], kv[1], now); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to save preference %s: %w", kv[0], err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit preferences: %w", err)
	}
	return nil
}

// Close releases the database
func (s *SQLiteStore) Close() error {
	if s.upsert != nil {
		_ = s.upsert.Close()
	}
	return s.db.Close()
}

func (p Preferences) pairs() [][2]string {
	return [][2]string{
		{keyShowIndex, strconv.FormatBool(p.ShowIndex)},
		{keyRelativeTime, strconv.FormatBool(p.RelativeTime)},
		{keyEndpointNames, strconv.FormatBool(p.ShowEndpointNames)},
		{keyColorBySession, strconv.FormatBool(p.ColorBySession)},
		{keyRefreshInterval, strconv.FormatInt(p.RefreshIntervalMS, 10)},
	}
}

// apply sets one stored row. Unknown keys are ignored so newer databases stay readable.
func (p *Preferences) apply(key, value string) error {
	var err error
	switch key {
	case keyShowIndex:
		p.ShowIndex, err = strconv.ParseBool(value)
	case keyRelativeTime:
		p.RelativeTime, err = strconv.ParseBool(value)
	case keyEndpointNames:
		p.ShowEndpointNames, err = strconv.ParseBool(value)
	case keyColorBySession:
		p.ColorBySession, err = strconv.ParseBool(value)
	case keyRefreshInterval:
		p.RefreshIntervalMS, err = strconv.ParseInt(value, 10, 64)
	}
	if err != nil {
		return fmt.Errorf("invalid stored value %q for %s: %w", value, key, err)
	}
	return nil
}
