package store

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS podle_commitments (
	commit_hex   TEXT NOT NULL,
	taker_pub    TEXT NOT NULL,
	observed_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_podle_commitments_commit ON podle_commitments(commit_hex);

CREATE TABLE IF NOT EXISTS completed_rounds (
	maker_pub  TEXT NOT NULL,
	offer_id   BIGINT NOT NULL,
	maker_fee  BIGINT NOT NULL,
	completed_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Postgres is a pgxpool-backed Store, grounded on the teacher's
// internal/db/postgres.go connection-pool discipline.
type Postgres struct {
	pool *pgxpool.Pool
}

// Connect opens a pool against connStr and ensures the schema exists.
func Connect(ctx context.Context, connStr string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping failed: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	log.Println("Successfully connected to PostgreSQL for round/commitment persistence")
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) RecordFillCommitment(ctx context.Context, takerPub string, commit [32]byte) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO podle_commitments (commit_hex, taker_pub) VALUES ($1, $2)`,
		hex.EncodeToString(commit[:]), takerPub)
	return err
}

func (p *Postgres) SeenCommitment(ctx context.Context, commit [32]byte) (bool, error) {
	var count int
	err := p.pool.QueryRow(ctx,
		`SELECT count(*) FROM podle_commitments WHERE commit_hex = $1`,
		hex.EncodeToString(commit[:])).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (p *Postgres) RecordRoundCompleted(ctx context.Context, makerPub string, offerID uint32, makerFee int64) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO completed_rounds (maker_pub, offer_id, maker_fee) VALUES ($1, $2, $3)`,
		makerPub, offerID, makerFee)
	return err
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
