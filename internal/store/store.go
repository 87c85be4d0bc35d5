// Package store persists discovered instruments and simulated trades
// to PostgreSQL so paper performance can be queried after the fact.
// The whole package is optional; a nil *Store disables persistence.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"polymarket-hunter/internal/market"
	"polymarket-hunter/internal/polymarket/price"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Pool returns the underlying connection pool.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

func (s *Store) Close() {
	s.pool.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS instruments (
	id         TEXT PRIMARY KEY,
	domain     TEXT NOT NULL,
	title      TEXT NOT NULL,
	sub_title  TEXT NOT NULL DEFAULT '',
	outcome    TEXT NOT NULL,
	slug       TEXT NOT NULL,
	volume     DOUBLE PRECISION NOT NULL,
	end_time   TIMESTAMPTZ,
	live       BOOLEAN NOT NULL DEFAULT FALSE,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS trades (
	id         BIGSERIAL PRIMARY KEY,
	token_id   TEXT NOT NULL,
	domain     TEXT NOT NULL,
	title      TEXT NOT NULL,
	outcome    TEXT NOT NULL,
	trade_price BIGINT NOT NULL,
	volume     DOUBLE PRECISION NOT NULL,
	profit     DOUBLE PRECISION NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// EnsureSchema creates the tables if they are missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("couldn't create schema: %w", err)
	}
	return nil
}

// UpsertInstrument writes one discovered instrument; a later scan's
// write fully replaces the row.
func (s *Store) UpsertInstrument(ctx context.Context, inst market.Instrument) error {
	var endTime pgtype.Timestamptz
	if !inst.EndTime.IsZero() {
		endTime = pgtype.Timestamptz{Time: inst.EndTime, Valid: true}
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO instruments (id, domain, title, sub_title, outcome, slug, volume, end_time, live, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (id) DO UPDATE SET
			domain = EXCLUDED.domain,
			title = EXCLUDED.title,
			sub_title = EXCLUDED.sub_title,
			outcome = EXCLUDED.outcome,
			slug = EXCLUDED.slug,
			volume = EXCLUDED.volume,
			end_time = EXCLUDED.end_time,
			live = EXCLUDED.live,
			updated_at = NOW()`,
		inst.ID, inst.Domain, inst.Title, inst.SubTitle, inst.Outcome, inst.Slug, inst.Volume, endTime, inst.Live)
	if err != nil {
		return fmt.Errorf("couldn't upsert instrument %s: %w", inst.ID, err)
	}
	return nil
}

// InsertTrade records one simulated trade. The price is stored in the
// fixed-point scale used on the wire.
func (s *Store) InsertTrade(ctx context.Context, inst market.Instrument, p price.Price, profit float64) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO trades (token_id, domain, title, outcome, trade_price, volume, profit)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		inst.ID, inst.Domain, inst.Title, inst.Outcome, int64(p), inst.Volume, profit)
	if err != nil {
		return fmt.Errorf("couldn't insert trade for %s: %w", inst.ID, err)
	}
	return nil
}
