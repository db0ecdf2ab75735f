package recent

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"issuesearch/internal/domain"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS recent_searches (
	id           BIGSERIAL   PRIMARY KEY,
	organization TEXT        NOT NULL,
	type         SMALLINT    NOT NULL,
	query        TEXT        NOT NULL,
	last_seen    TIMESTAMPTZ NOT NULL,
	date_created TIMESTAMPTZ NOT NULL,
	UNIQUE (organization, type, query)
)`

// PostgresStore shares recent searches across machines through Postgres
type PostgresStore struct {
	pool *pgxpool.Pool
	now  Clock
}

// OpenPostgres connects to dsn, pings it and applies the schema
func OpenPostgres(ctx context.Context, dsn string, now Clock) (*PostgresStore, error) {
	if now == nil {
		now = time.Now
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &PostgresStore{pool: pool, now: now}, nil
}

// Close releases the pool
func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Recent(ctx context.Context, org string, searchType domain.SearchType, query string, limit int) ([]domain.RecentSearch, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, query, last_seen, date_created
		FROM recent_searches
		WHERE organization = $1 AND type = $2
		  AND ($3 = '' OR strpos(lower(query), lower($3)) > 0)
		ORDER BY last_seen DESC, id DESC
		LIMIT $4`,
		org, int16(searchType), query, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query recent searches: %w", err)
	}
	defer rows.Close()

	out := []domain.RecentSearch{}
	for rows.Next() {
		rs := domain.RecentSearch{Organization: org, Type: searchType}
		if err := rows.Scan(&rs.ID, &rs.Query, &rs.LastSeen, &rs.DateCreated); err != nil {
			return nil, fmt.Errorf("scan recent search: %w", err)
		}
		out = append(out, rs)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Save(ctx context.Context, org string, searchType domain.SearchType, query string) error {
	q, err := normalizeQuery(query)
	if err != nil {
		return err
	}
	now := s.now().UTC()
	_, err = s.pool.Exec(ctx, `
		INSERT INTO recent_searches (organization, type, query, last_seen, date_created)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (organization, type, query) DO UPDATE SET last_seen = EXCLUDED.last_seen`,
		org, int16(searchType), q, now)
	if err != nil {
		return fmt.Errorf("save recent search: %w", err)
	}
	return nil
}

func (s *PostgresStore) Clear(ctx context.Context, org string, searchType domain.SearchType) error {
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM recent_searches WHERE organization = $1 AND type = $2`,
		org, int16(searchType)); err != nil {
		return fmt.Errorf("clear recent searches: %w", err)
	}
	return nil
}
