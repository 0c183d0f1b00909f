// Package sequence allocates the human-facing job numbers from a Postgres
// sequence. DynamoDB has no native sequences and counter items burn write
// capacity on a hot key, so the small relational dependency stays.
package sequence

import (
	"context"
	"fmt"

	"mechmarket/internal/usecase/interfaces"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const createSequenceStmt = `CREATE SEQUENCE IF NOT EXISTS job_display_number START 1000`

// PostgresAllocator hands out monotonically increasing job numbers.
// Sequences never reuse a value, so numbers stay unique across restarts and
// concurrent allocators without any locking on our side.
type PostgresAllocator struct {
	db *sqlx.DB
}

var _ interfaces.DisplayNumberAllocator = (*PostgresAllocator)(nil)

func NewPostgresAllocator(ctx context.Context, dsn string) (*PostgresAllocator, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, createSequenceStmt); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensuring job number sequence: %w", err)
	}
	return &PostgresAllocator{db: db}, nil
}

func (a *PostgresAllocator) NextJobNumber(ctx context.Context) (int64, error) {
	var number int64
	if err := a.db.GetContext(ctx, &number, `SELECT nextval('job_display_number')`); err != nil {
		return 0, fmt.Errorf("allocating job number: %w", err)
	}
	return number, nil
}

func (a *PostgresAllocator) Close() error {
	return a.db.Close()
}
