package recent

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"issuesearch/internal/domain"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS recent_searches (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	organization TEXT    NOT NULL,
	type         INTEGER NOT NULL,
	query        TEXT    NOT NULL,
	last_seen    INTEGER NOT NULL,
	date_created INTEGER NOT NULL,
	UNIQUE (organization, type, query)
);
CREATE INDEX IF NOT EXISTS idx_recent_searches_scope
	ON recent_searches (organization, type, last_seen DESC);
`

var sqlitePragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 10000",
	"PRAGMA synchronous = NORMAL",
}

// SQLiteStore persists recent searches in a local SQLite file
type SQLiteStore struct {
	db  *sql.DB
	now Clock
}

// OpenSQLite opens (creating if needed) the database at path and applies the schema
func OpenSQLite(path string, now Clock) (*SQLiteStore, error) {
	if now == nil {
		now = time.Now
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// a single connection keeps writes serialized
	db.SetMaxOpenConns(1)

	for _, p := range sqlitePragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", p, err)
		}
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{db: db, now: now}, nil
}

// Close releases the database handle
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Recent(ctx context.Context, org string, searchType domain.SearchType, query string, limit int) ([]domain.RecentSearch, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, query, last_seen, date_created
		FROM recent_searches
		WHERE organization = ? AND type = ?
		  AND (? = '' OR instr(lower(query), lower(?)) > 0)
		ORDER BY last_seen DESC, id DESC
		LIMIT ?`,
		org, int(searchType), query, query, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query recent searches: %w", err)
	}
	defer rows.Close()

	out := []domain.RecentSearch{}
	for rows.Next() {
		var (
			rs                  domain.RecentSearch
			lastSeen, createdAt int64
		)
		if err := rows.Scan(&rs.ID, &rs.Query, &lastSeen, &createdAt); err != nil {
			return nil, fmt.Errorf("scan recent search: %w", err)
		}
		rs.Organization = org
		rs.Type = searchType
		rs.LastSeen = time.Unix(0, lastSeen).UTC()
		rs.DateCreated = time.Unix(0, createdAt).UTC()
		out = append(out, rs)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Save(ctx context.Context, org string, searchType domain.SearchType, query string) error {
	q, err := normalizeQuery(query)
	if err != nil {
		return err
	}
	now := s.now().UnixNano()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO recent_searches (organization, type, query, last_seen, date_created)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (organization, type, query) DO UPDATE SET last_seen = excluded.last_seen`,
		org, int(searchType), q, now, now)
	if err != nil {
		return fmt.Errorf("save recent search: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context, org string, searchType domain.SearchType) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM recent_searches WHERE organization = ? AND type = ?`,
		org, int(searchType)); err != nil {
		return fmt.Errorf("clear recent searches: %w", err)
	}
	return nil
}
