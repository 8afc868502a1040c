package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository handles database operations for review state
type Repository struct {
	db DB
}

// NewRepository creates a new review repository
func NewRepository(db DB) *Repository {
	return &Repository{db: db}
}

// Upsert creates or partially updates the review state for a submission and
// returns the resulting row. An empty status always resolves to 'new', also
// on update. Notes are only touched when provided. The override parameters
// travel as a (value, provided) pair so "leave unchanged" and "clear" stay
// distinguishable in SQL.
func (r *Repository) Upsert(ctx context.Context, submissionID uuid.UUID, update Update) (*State, error) {
	var (
		override    string
		hasOverride bool
	)
	if update.RiskOverride != nil {
		override = *update.RiskOverride
		hasOverride = true
	}

	query := `
		INSERT INTO submission_meta (submission_id, status, notes, risk_override, updated_at)
		VALUES ($1, COALESCE(NULLIF($2, ''), 'new'), COALESCE($3, ''), NULLIF($4, ''), NOW())
		ON CONFLICT (submission_id) DO UPDATE SET
			status        = COALESCE(NULLIF($2, ''), 'new'),
			notes         = COALESCE($3, submission_meta.notes),
			risk_override = CASE WHEN $5 THEN NULLIF($4, '') ELSE submission_meta.risk_override END,
			updated_at    = NOW()
		RETURNING submission_id, status, notes, risk_override, updated_at
	`

	state := &State{}
	err := r.db.QueryRow(ctx, query, submissionID, update.Status, update.Notes, override, hasOverride).Scan(
		&state.SubmissionID,
		&state.Status,
		&state.Notes,
		&state.RiskOverride,
		&state.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert review state: %w", err)
	}

	return state, nil
}

// GetBySubmissionID returns the review state for a submission, or nil when
// the submission has never been reviewed.
func (r *Repository) GetBySubmissionID(ctx context.Context, submissionID uuid.UUID) (*State, error) {
	query := `
		SELECT submission_id, status, notes, risk_override, updated_at
		FROM submission_meta
		WHERE submission_id = $1
	`

	state := &State{}
	err := r.db.QueryRow(ctx, query, submissionID).Scan(
		&state.SubmissionID,
		&state.Status,
		&state.Notes,
		&state.RiskOverride,
		&state.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get review state: %w", err)
	}

	return state, nil
}

// GetBySubmissionIDs returns review state keyed by submission ID. Submissions
// without review state are simply absent from the map.
func (r *Repository) GetBySubmissionIDs(ctx context.Context, submissionIDs []uuid.UUID) (map[uuid.UUID]*State, error) {
	result := make(map[uuid.UUID]*State, len(submissionIDs))
	if len(submissionIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT submission_id, status, notes, risk_override, updated_at
		FROM submission_meta
		WHERE submission_id = ANY($1)
	`

	rows, err := r.db.Query(ctx, query, submissionIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list review state: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		state := &State{}
		err := rows.Scan(
			&state.SubmissionID,
			&state.Status,
			&state.Notes,
			&state.RiskOverride,
			&state.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review state: %w", err)
		}
		result[state.SubmissionID] = state
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read review state: %w", err)
	}

	return result, nil
}
