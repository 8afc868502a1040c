package replydrafts

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB defines the database operations the repository needs.
type DB interface {
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
}

// RepositoryInterface defines reply-draft persistence operations
type RepositoryInterface interface {
	Create(ctx context.Context, draft *Draft) error
	ListSince(ctx context.Context, siteID string, since time.Time) ([]*Draft, error)
}

// Repository handles database operations for reply drafts
type Repository struct {
	db DB
}

// NewRepository creates a new reply-draft repository
func NewRepository(db DB) *Repository {
	return &Repository{db: db}
}

// Create records a new reply draft.
func (r *Repository) Create(ctx context.Context, draft *Draft) error {
	query := `
		INSERT INTO reply_drafts (id, site_id, reply_type, from_name, from_email, reply_snippet)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query,
		draft.ID,
		draft.SiteID,
		draft.ReplyType,
		draft.FromName,
		draft.FromEmail,
		draft.ReplySnippet,
	).Scan(&draft.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create reply draft: %w", err)
	}

	return nil
}

// ListSince returns drafts for the site created at or after the given time,
// newest first.
func (r *Repository) ListSince(ctx context.Context, siteID string, since time.Time) ([]*Draft, error) {
	query := `
		SELECT id, site_id, reply_type, from_name, from_email, reply_snippet, created_at
		FROM reply_drafts
		WHERE site_id = $1 AND created_at >= $2
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, siteID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list reply drafts: %w", err)
	}
	defer rows.Close()

	var result []*Draft
	for rows.Next() {
		draft := &Draft{}
		err := rows.Scan(
			&draft.ID,
			&draft.SiteID,
			&draft.ReplyType,
			&draft.FromName,
			&draft.FromEmail,
			&draft.ReplySnippet,
			&draft.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reply draft: %w", err)
		}
		result = append(result, draft)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read reply drafts: %w", err)
	}

	return result, nil
}
