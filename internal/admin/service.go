package admin

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dustinwells/sprinter-leads/internal/review"
	"github.com/dustinwells/sprinter-leads/internal/submissions"
	"github.com/dustinwells/sprinter-leads/pkg/common"
	"github.com/dustinwells/sprinter-leads/pkg/config"
	"github.com/dustinwells/sprinter-leads/pkg/pagination"
)

// Service implements the admin review surface.
type Service struct {
	repo    submissions.RepositoryInterface
	reviews review.RepositoryInterface
	cfg     config.AdminConfig
	siteID  string
	now     func() time.Time
}

// NewService creates a new admin service
func NewService(repo submissions.RepositoryInterface, reviews review.RepositoryInterface, cfg config.AdminConfig, siteID string) *Service {
	return &Service{
		repo:    repo,
		reviews: reviews,
		cfg:     cfg,
		siteID:  siteID,
		now:     time.Now,
	}
}

// Login verifies the admin password and mints a session token. The stored
// credential is the hex SHA-256 of the password; an unset credential rejects
// every login.
func (s *Service) Login(password string) (string, time.Time, error) {
	if s.cfg.PasswordHash == "" {
		return "", time.Time{}, common.NewUnauthorizedError("invalid password")
	}

	sum := sha256.Sum256([]byte(password))
	hash := hex.EncodeToString(sum[:])
	if subtle.ConstantTimeCompare([]byte(hash), []byte(s.cfg.PasswordHash)) != 1 {
		return "", time.Time{}, common.NewUnauthorizedError("invalid password")
	}

	now := s.now()
	expiresAt := now.Add(time.Duration(s.cfg.SessionTTLHours) * time.Hour)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "admin",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})

	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}

	return signed, expiresAt, nil
}

// List returns the leads for the dashboard, filtered and paginated. The
// whole site's submissions are joined with review state in memory; a single
// listing never accumulates enough leads for that to hurt.
func (s *Service) List(ctx context.Context, filter ListFilter, params pagination.Params) ([]*Lead, *pagination.Meta, error) {
	subs, err := s.repo.ListAllForSite(ctx, s.siteID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	ids := make([]uuid.UUID, len(subs))
	for i, sub := range subs {
		ids[i] = sub.ID
	}

	states, err := s.reviews.GetBySubmissionIDs(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load review state: %w", err)
	}

	leads := make([]*Lead, 0, len(subs))
	for _, sub := range subs {
		state := states[sub.ID]

		status := review.StatusNew
		var override *string
		if state != nil {
			status = state.Status
			override = state.RiskOverride
		}
		risk := review.EffectiveRisk(sub.Metadata.FraudFlag, override)

		if filter.Status != "" && status != filter.Status {
			continue
		}
		if filter.Risk != "" && string(risk) != filter.Risk {
			continue
		}

		leads = append(leads, &Lead{
			Submission:    sub,
			Review:        state,
			EffectiveRisk: risk,
		})
	}

	total := int64(len(leads))
	meta := pagination.BuildMeta(params.Limit, params.Offset, total)

	start := params.Offset
	if start > len(leads) {
		start = len(leads)
	}
	end := start + params.Limit
	if end > len(leads) {
		end = len(leads)
	}

	return leads[start:end], meta, nil
}

// Get returns a single lead.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Lead, error) {
	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, submissions.ErrNotFound) {
			return nil, common.NewNotFoundError("submission not found")
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	state, err := s.reviews.GetBySubmissionID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load review state: %w", err)
	}

	var override *string
	if state != nil {
		override = state.RiskOverride
	}

	return &Lead{
		Submission:    sub,
		Review:        state,
		EffectiveRisk: review.EffectiveRisk(sub.Metadata.FraudFlag, override),
	}, nil
}

// Update applies a partial review-state change. Unlike the intake
// annotation, persistence failures here are surfaced: the admin needs to
// know their edit was not saved.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *UpdateRequest) (*review.State, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, submissions.ErrNotFound) {
			return nil, common.NewNotFoundError("submission not found")
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	state, err := s.reviews.Upsert(ctx, id, review.Update{
		Status:       req.Status,
		Notes:        req.Notes,
		RiskOverride: req.RiskOverride,
	})
	if err != nil {
		return nil, common.NewAppError(http.StatusInternalServerError, "failed to save review state", err)
	}

	return state, nil
}

// Delete removes a submission and its review state.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, submissions.ErrNotFound) {
			return common.NewNotFoundError("submission not found")
		}
		return fmt.Errorf("failed to delete submission: %w", err)
	}
	return nil
}
