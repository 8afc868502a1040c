package submissions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository handles database operations for submissions
type Repository struct {
	db DB
}

// NewRepository creates a new submissions repository
func NewRepository(db DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a submission. The form values and derived metadata are
// stored as JSONB documents.
func (r *Repository) Create(ctx context.Context, submission *Submission) error {
	values, err := json.Marshal(submission.Values)
	if err != nil {
		return fmt.Errorf("failed to encode submission values: %w", err)
	}
	metadata, err := json.Marshal(submission.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode submission metadata: %w", err)
	}

	query := `
		INSERT INTO submissions (id, site_id, form_id, form_values, metadata)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err = r.db.QueryRow(ctx, query,
		submission.ID,
		submission.SiteID,
		submission.FormID,
		values,
		metadata,
	).Scan(&submission.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}

	return nil
}

// GetByID retrieves a single submission by its ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Submission, error) {
	query := `
		SELECT id, site_id, form_id, form_values, metadata, created_at
		FROM submissions
		WHERE id = $1
	`

	submission, err := scanSubmission(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	return submission, nil
}

// CountByContact counts prior submissions for the site from the same email
// or, when a phone number is present, the same phone. Used for duplicate
// detection before the new submission is stored.
func (r *Repository) CountByContact(ctx context.Context, siteID, email, phone string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM submissions
		WHERE site_id = $1
		  AND (form_values->>'email' = $2 OR ($3 <> '' AND form_values->>'phone' = $3))
	`

	var count int
	err := r.db.QueryRow(ctx, query, siteID, email, phone).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count submissions by contact: %w", err)
	}

	return count, nil
}

// ListSince returns submissions for the site created at or after the given
// time, newest first.
func (r *Repository) ListSince(ctx context.Context, siteID string, since time.Time) ([]*Submission, error) {
	query := `
		SELECT id, site_id, form_id, form_values, metadata, created_at
		FROM submissions
		WHERE site_id = $1 AND created_at >= $2
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, siteID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	return collectSubmissions(rows)
}

// ListAllForSite returns every submission for the site, newest first.
func (r *Repository) ListAllForSite(ctx context.Context, siteID string) ([]*Submission, error) {
	query := `
		SELECT id, site_id, form_id, form_values, metadata, created_at
		FROM submissions
		WHERE site_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	return collectSubmissions(rows)
}

// CountForSite returns the total number of submissions stored for the site.
func (r *Repository) CountForSite(ctx context.Context, siteID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM submissions WHERE site_id = $1`, siteID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count submissions: %w", err)
	}

	return count, nil
}

// Delete removes a submission. Review state is removed alongside it via the
// foreign key cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM submissions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete submission: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func scanSubmission(row pgx.Row) (*Submission, error) {
	var (
		submission Submission
		values     []byte
		metadata   []byte
	)

	err := row.Scan(
		&submission.ID,
		&submission.SiteID,
		&submission.FormID,
		&values,
		&metadata,
		&submission.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(values, &submission.Values); err != nil {
		return nil, fmt.Errorf("failed to decode submission values: %w", err)
	}
	if err := json.Unmarshal(metadata, &submission.Metadata); err != nil {
		return nil, fmt.Errorf("failed to decode submission metadata: %w", err)
	}

	return &submission, nil
}

func collectSubmissions(rows pgx.Rows) ([]*Submission, error) {
	var result []*Submission
	for rows.Next() {
		submission, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		result = append(result, submission)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read submissions: %w", err)
	}

	return result, nil
}
