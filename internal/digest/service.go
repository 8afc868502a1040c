package digest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dustinwells/sprinter-leads/internal/replydrafts"
	"github.com/dustinwells/sprinter-leads/internal/review"
	"github.com/dustinwells/sprinter-leads/internal/submissions"
	"github.com/dustinwells/sprinter-leads/pkg/config"
	"github.com/dustinwells/sprinter-leads/pkg/logger"

	"github.com/dustinwells/sprinter-leads/internal/notifications"
)

const (
	digestWindow = 24 * time.Hour

	// dedupeTTL keeps the sent-marker alive long enough to block double
	// triggers within a day, but expires before the next morning's run.
	dedupeTTL = 20 * time.Hour

	digestFromName = "Sprinter Van Digest"
)

// RunResult reports what a digest run did.
type RunResult struct {
	Sent        bool   `json:"sent"`
	Reason      string `json:"reason,omitempty"`
	Submissions int    `json:"submissions"`
	Drafts      int    `json:"drafts"`
}

// Service assembles and sends the daily activity digest.
type Service struct {
	repo    submissions.RepositoryInterface
	reviews review.RepositoryInterface
	drafts  replydrafts.RepositoryInterface
	sender  notifications.Sender
	rdb     *redis.Client
	mail    config.SendGridConfig
	site    config.SiteConfig
	now     func() time.Time
}

// NewService creates a new digest service. rdb may be nil, which disables
// the once-per-day dedupe guard.
func NewService(
	repo submissions.RepositoryInterface,
	reviews review.RepositoryInterface,
	drafts replydrafts.RepositoryInterface,
	sender notifications.Sender,
	rdb *redis.Client,
	mail config.SendGridConfig,
	site config.SiteConfig,
) *Service {
	return &Service{
		repo:    repo,
		reviews: reviews,
		drafts:  drafts,
		sender:  sender,
		rdb:     rdb,
		mail:    mail,
		site:    site,
		now:     time.Now,
	}
}

// Run assembles the last 24 hours of activity and emails the digest. A
// run with no activity sends nothing. Unless force is set, a dedupe marker
// in Redis blocks a second send on the same day; the guard fails open so a
// Redis outage never silences the digest.
func (s *Service) Run(ctx context.Context, force bool) (*RunResult, error) {
	log := logger.WithContext(ctx)

	since := s.now().Add(-digestWindow)

	subs, err := s.repo.ListSince(ctx, s.site.SiteID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load submissions: %w", err)
	}

	drafts, err := s.drafts.ListSince(ctx, s.site.SiteID, since)
	if err != nil {
		// Drafts are supplementary; a failure trims the digest, not kills it.
		log.Warn("failed to load reply drafts for digest", zap.Error(err))
		drafts = nil
	}

	if len(subs) == 0 && len(drafts) == 0 {
		return &RunResult{Sent: false, Reason: "No new activity"}, nil
	}

	// Claim today's slot only once there is something to send; an empty run
	// must not block a later one that has real activity.
	claimed := false
	if !force {
		if !s.acquireDailyMarker(ctx) {
			return &RunResult{Sent: false, Reason: "Already sent today"}, nil
		}
		claimed = true
	}

	content := Content{
		Leads:            s.joinReviewState(ctx, subs),
		Drafts:           drafts,
		TotalSubmissions: s.totalSubmissions(ctx),
		AdminURL:         s.site.AdminURL,
	}

	email := notifications.Email{
		ToEmail:   s.mail.DigestToEmail,
		ToName:    s.mail.DigestToName,
		FromEmail: s.mail.FromEmail,
		FromName:  digestFromName,
		Subject:   BuildSubject(content),
		HTMLBody:  BuildHTML(content),
		TextBody:  BuildText(content),
	}

	if err := s.sender.Send(ctx, email); err != nil {
		if claimed {
			s.releaseDailyMarker(ctx)
		}
		return nil, fmt.Errorf("failed to send digest: %w", err)
	}

	log.Info("digest sent",
		zap.Int("submissions", len(subs)),
		zap.Int("drafts", len(drafts)))

	return &RunResult{
		Sent:        true,
		Submissions: len(subs),
		Drafts:      len(drafts),
	}, nil
}

// joinReviewState attaches each submission's effective risk. A review-state
// read failure degrades to scorer flags only.
func (s *Service) joinReviewState(ctx context.Context, subs []*submissions.Submission) []Lead {
	ids := make([]uuid.UUID, len(subs))
	for i, sub := range subs {
		ids[i] = sub.ID
	}

	states, err := s.reviews.GetBySubmissionIDs(ctx, ids)
	if err != nil {
		logger.WithContext(ctx).Warn("failed to load review state for digest", zap.Error(err))
		states = nil
	}

	leads := make([]Lead, len(subs))
	for i, sub := range subs {
		var override *string
		if state := states[sub.ID]; state != nil {
			override = state.RiskOverride
		}
		leads[i] = Lead{
			Submission:    sub,
			EffectiveRisk: review.EffectiveRisk(sub.Metadata.FraudFlag, override),
		}
	}
	return leads
}

func (s *Service) totalSubmissions(ctx context.Context) int64 {
	total, err := s.repo.CountForSite(ctx, s.site.SiteID)
	if err != nil {
		logger.WithContext(ctx).Warn("failed to count submissions for digest", zap.Error(err))
		return -1
	}
	return int64(total)
}

func (s *Service) markerKey() string {
	return fmt.Sprintf("digest:sent:%s", s.now().In(digestLocation).Format("2006-01-02"))
}

// acquireDailyMarker claims today's send slot. Returns true when this run
// should proceed.
func (s *Service) acquireDailyMarker(ctx context.Context) bool {
	if s.rdb == nil {
		return true
	}

	ok, err := s.rdb.SetNX(ctx, s.markerKey(), "1", dedupeTTL).Result()
	if err != nil {
		logger.WithContext(ctx).Warn("digest dedupe check failed", zap.Error(err))
		return true
	}
	return ok
}

// releaseDailyMarker gives the slot back after a failed send so a retry later
// in the day can still go out.
func (s *Service) releaseDailyMarker(ctx context.Context) {
	if s.rdb == nil {
		return
	}

	if err := s.rdb.Del(ctx, s.markerKey()).Err(); err != nil {
		logger.WithContext(ctx).Warn("failed to release digest marker", zap.Error(err))
	}
}
