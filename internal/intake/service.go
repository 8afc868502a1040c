package intake

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dustinwells/sprinter-leads/internal/enrichment"
	"github.com/dustinwells/sprinter-leads/internal/fraud"
	"github.com/dustinwells/sprinter-leads/internal/notifications"
	"github.com/dustinwells/sprinter-leads/internal/review"
	"github.com/dustinwells/sprinter-leads/internal/submissions"
	"github.com/dustinwells/sprinter-leads/pkg/config"
	"github.com/dustinwells/sprinter-leads/pkg/logger"
)

const autoReplyTimeout = 15 * time.Second

// Service runs the intake pipeline: enrich, score, store, annotate, reply.
type Service struct {
	repo     submissions.RepositoryInterface
	reviews  review.RepositoryInterface
	enricher *enrichment.Enricher
	sender   notifications.Sender
	site     config.SiteConfig
	mail     config.SendGridConfig
	now      func() time.Time
}

// NewService creates a new intake service
func NewService(
	repo submissions.RepositoryInterface,
	reviews review.RepositoryInterface,
	enricher *enrichment.Enricher,
	sender notifications.Sender,
	site config.SiteConfig,
	mail config.SendGridConfig,
) *Service {
	return &Service{
		repo:     repo,
		reviews:  reviews,
		enricher: enricher,
		sender:   sender,
		site:     site,
		mail:     mail,
		now:      time.Now,
	}
}

// Submit processes one contact form submission and returns the stored record.
// Enrichment and scoring always complete; only the submission insert itself
// can fail the request. Review-state annotation and the auto-reply are
// best-effort.
func (s *Service) Submit(ctx context.Context, req *SubmitRequest, ip string) (*submissions.Submission, error) {
	in := enrichment.Input{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Message:    req.Message,
		Timeline:   req.Timeline,
		TimeOnPage: req.TimeOnPage,
		VisitCount: req.VisitCount,
		Referrer:   req.Referrer,
		IP:         ip,
	}

	facts := s.enricher.Collect(ctx, in)
	verdict := fraud.Score(facts.Signals(in))

	submission := &submissions.Submission{
		ID:     uuid.New(),
		SiteID: s.site.SiteID,
		FormID: s.site.FormID,
		Values: submissions.Values{
			Name:     req.Name,
			Email:    req.Email,
			Phone:    req.Phone,
			Message:  req.Message,
			Timeline: req.Timeline,
		},
		Metadata: enrichment.Assemble(in, facts, verdict, s.now()),
	}

	if err := s.repo.Create(ctx, submission); err != nil {
		return nil, fmt.Errorf("failed to store submission: %w", err)
	}

	logger.WithContext(ctx).Info("submission stored",
		zap.String("submission_id", submission.ID.String()),
		zap.String("fraud_flag", string(verdict.Flag)),
		zap.Int("fraud_score", verdict.Score))
	submissionsTotal.WithLabelValues(string(verdict.Flag)).Inc()

	s.annotate(ctx, submission.ID, verdict)
	s.sendAutoReply(ctx, req)

	return submission, nil
}

// annotate seeds the review state, attaching an auto-generated note for
// flagged submissions. A failure here is logged but never fails the intake:
// the lead is already stored.
func (s *Service) annotate(ctx context.Context, id uuid.UUID, verdict fraud.Result) {
	update := review.Update{Status: review.StatusNew}

	switch verdict.Flag {
	case fraud.FlagRed:
		note := fmt.Sprintf("[AUTO] Flagged as high-risk: %s", strings.Join(verdict.Reasons, ", "))
		update.Notes = &note
	case fraud.FlagYellow:
		note := fmt.Sprintf("[AUTO] Some concerns: %s", strings.Join(verdict.Reasons, ", "))
		update.Notes = &note
	}

	if _, err := s.reviews.Upsert(ctx, id, update); err != nil {
		logger.WithContext(ctx).Error("failed to annotate submission",
			zap.String("submission_id", id.String()),
			zap.Error(err))
	}
}

// sendAutoReply fires the thank-you email without blocking the response. The
// goroutine gets its own context so the reply survives the request ending.
func (s *Service) sendAutoReply(ctx context.Context, req *SubmitRequest) {
	email := notifications.BuildAutoReply(notifications.AutoReplyInput{
		Name:       req.Name,
		Email:      req.Email,
		Message:    req.Message,
		Timeline:   req.Timeline,
		ListingURL: s.site.ListingURL,
	})
	email.FromEmail = s.mail.FromEmail
	email.FromName = s.mail.FromName
	email.ReplyToEmail = s.mail.ReplyToEmail
	email.ReplyToName = s.mail.ReplyToName

	log := logger.WithContext(ctx)
	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), autoReplyTimeout)
		defer cancel()

		if err := s.sender.Send(sendCtx, email); err != nil {
			log.Error("auto-reply failed",
				zap.String("to", req.Email),
				zap.Error(err))
		}
	}()
}
