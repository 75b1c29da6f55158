package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/email-finder/internal/domain"
)

// PostgresStore persists batch results. It is optional: the pipeline runs
// without it when no POSTGRES_URL is configured.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	db, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PostgresStore) Close() {
	s.db.Close()
}

// SaveResults upserts one row per processed homepage in a single
// transaction, including the ones where no email was found.
func (s *PostgresStore) SaveResults(ctx context.Context, results []domain.SiteResult) error {
	if len(results) == 0 {
		return nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, res := range results {
		batch.Queue(
			`INSERT INTO site_results (homepage, email)
			 VALUES ($1, NULLIF($2, ''))
			 ON CONFLICT (homepage) DO UPDATE SET
			   email = EXCLUDED.email, updated_at = NOW()`,
			res.Homepage, res.Email,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("save results batch: %w", err)
	}

	return tx.Commit(ctx)
}

// ResultFor retrieves the stored result for a homepage.
func (s *PostgresStore) ResultFor(ctx context.Context, homepage string) (*domain.SiteResult, error) {
	var res domain.SiteResult
	var email *string
	err := s.db.QueryRow(ctx,
		`SELECT homepage, email FROM site_results WHERE homepage = $1`,
		homepage,
	).Scan(&res.Homepage, &email)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("not_found")
	}
	if err != nil {
		return nil, err
	}
	if email != nil {
		res.Email = *email
	}
	return &res, nil
}
