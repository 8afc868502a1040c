package review

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB defines the database operations the repository needs, matching the
// pgxpool.Pool methods in use so tests can supply a mock.
type DB interface {
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
}

// RepositoryInterface defines review-state persistence operations
type RepositoryInterface interface {
	Upsert(ctx context.Context, submissionID uuid.UUID, update Update) (*State, error)
	GetBySubmissionID(ctx context.Context, submissionID uuid.UUID) (*State, error)
	GetBySubmissionIDs(ctx context.Context, submissionIDs []uuid.UUID) (map[uuid.UUID]*State, error)
}
