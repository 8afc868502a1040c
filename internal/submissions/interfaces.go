package submissions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a submission does not exist.
var ErrNotFound = errors.New("submission not found")

// DB defines the database operations the repository needs. This interface
// wraps the pgxpool.Pool methods in use, allowing mock implementations in
// tests.
type DB interface {
	// Query executes a query that returns rows, typically a SELECT.
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)

	// QueryRow executes a query that returns at most one row.
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row

	// Exec executes a query that doesn't return rows, typically INSERT, UPDATE, DELETE.
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
}

// RepositoryInterface defines submission persistence operations
type RepositoryInterface interface {
	Create(ctx context.Context, submission *Submission) error
	GetByID(ctx context.Context, id uuid.UUID) (*Submission, error)
	CountByContact(ctx context.Context, siteID, email, phone string) (int, error)
	ListSince(ctx context.Context, siteID string, since time.Time) ([]*Submission, error)
	ListAllForSite(ctx context.Context, siteID string) ([]*Submission, error)
	CountForSite(ctx context.Context, siteID string) (int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
