package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// DB is satisfied by *pgxpool.Pool and by pgxmock pools
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// querier is the subset shared by DB and pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// withTx runs fn in a transaction, committing on success and rolling back on error
func withTx(ctx context.Context, db DB, fn func(tx pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == uniqueViolation && (constraint == "" || pgErr.ConstraintName == constraint)
}

// nextSequence increments a named per-workshop, per-year counter and returns the new value
func nextSequence(ctx context.Context, q querier, scope, workshopKey string, year int) (int, error) {
	query := `
		WITH upsert AS (
			INSERT INTO number_sequences (scope, workshop_key, year, last_number)
			VALUES ($1, $2, $3, 1)
			ON CONFLICT (scope, workshop_key, year)
			DO UPDATE SET
				last_number = number_sequences.last_number + 1,
				updated_at = NOW()
			RETURNING last_number
		)
		SELECT last_number FROM upsert;
	`
	var n int
	if err := q.QueryRow(ctx, query, scope, workshopKey, year).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to generate %s sequence: %w", scope, err)
	}
	return n, nil
}

// formatSequenceNumber renders numbers like JC-2025-00042
func formatSequenceNumber(prefix string, year, n int) string {
	return fmt.Sprintf("%s-%d-%05d", prefix, year, n)
}
