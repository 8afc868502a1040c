package intake

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dustinwells/sprinter-leads/internal/enrichment"
	"github.com/dustinwells/sprinter-leads/internal/notifications"
	"github.com/dustinwells/sprinter-leads/internal/review"
	"github.com/dustinwells/sprinter-leads/internal/submissions"
	"github.com/dustinwells/sprinter-leads/pkg/config"
	"github.com/dustinwells/sprinter-leads/pkg/httpclient"
)

type mockSubmissionsRepo struct {
	mock.Mock
}

func (m *mockSubmissionsRepo) Create(ctx context.Context, s *submissions.Submission) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *mockSubmissionsRepo) GetByID(ctx context.Context, id uuid.UUID) (*submissions.Submission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*submissions.Submission), args.Error(1)
}

func (m *mockSubmissionsRepo) CountByContact(ctx context.Context, siteID, email, phone string) (int, error) {
	args := m.Called(ctx, siteID, email, phone)
	return args.Int(0), args.Error(1)
}

func (m *mockSubmissionsRepo) ListSince(ctx context.Context, siteID string, since time.Time) ([]*submissions.Submission, error) {
	args := m.Called(ctx, siteID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*submissions.Submission), args.Error(1)
}

func (m *mockSubmissionsRepo) ListAllForSite(ctx context.Context, siteID string) ([]*submissions.Submission, error) {
	args := m.Called(ctx, siteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*submissions.Submission), args.Error(1)
}

func (m *mockSubmissionsRepo) CountForSite(ctx context.Context, siteID string) (int, error) {
	args := m.Called(ctx, siteID)
	return args.Int(0), args.Error(1)
}

func (m *mockSubmissionsRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockReviewRepo struct {
	mock.Mock
}

func (m *mockReviewRepo) Upsert(ctx context.Context, id uuid.UUID, update review.Update) (*review.State, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*review.State), args.Error(1)
}

func (m *mockReviewRepo) GetBySubmissionID(ctx context.Context, id uuid.UUID) (*review.State, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*review.State), args.Error(1)
}

func (m *mockReviewRepo) GetBySubmissionIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*review.State, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]*review.State), args.Error(1)
}

// chanSender records sent emails on a channel so tests can wait for the
// async auto-reply.
type chanSender struct {
	sent chan notifications.Email
}

func newChanSender() *chanSender {
	return &chanSender{sent: make(chan notifications.Email, 1)}
}

func (s *chanSender) Send(ctx context.Context, email notifications.Email) error {
	s.sent <- email
	return nil
}

func (s *chanSender) wait(t *testing.T) notifications.Email {
	t.Helper()
	select {
	case email := <-s.sent:
		return email
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for auto-reply")
		return notifications.Email{}
	}
}

func testSite() config.SiteConfig {
	return config.SiteConfig{
		SiteID:     "sprinter-van",
		FormID:     "sprinter-van-contact",
		ListingURL: "https://sprinter.dustinwells.com",
	}
}

func testMail() config.SendGridConfig {
	return config.SendGridConfig{
		FromEmail:    "dustin@dustinwells.com",
		FromName:     "Dustin Wells",
		ReplyToEmail: "dustin+sprinter@dustinwells.com",
		ReplyToName:  "Dustin Wells",
	}
}

// newTestService wires a service whose geo lookups are skipped (the tests
// submit with ip "unknown") and whose duplicate checks go through the mock
// repo.
func newTestService(repo *mockSubmissionsRepo, reviews *mockReviewRepo, sender notifications.Sender) *Service {
	enricher := enrichment.NewEnricher(
		enrichment.NewGeoClient(httpclient.NewClient("http://127.0.0.1:1"), nil, 0),
		enrichment.NewDuplicateChecker(repo, "sprinter-van"),
	)
	return NewService(repo, reviews, enricher, sender, testSite(), testMail())
}

func cleanRequest() *SubmitRequest {
	return &SubmitRequest{
		Name:       "Jane Doe",
		Email:      "jane@acme-logistics.com",
		Message:    "Is the van still available? Would love a test drive this weekend.",
		Timeline:   submissions.TimelineReadyNow,
		TimeOnPage: 120,
	}
}

func TestService_Submit_CleanLead(t *testing.T) {
	repo := new(mockSubmissionsRepo)
	reviews := new(mockReviewRepo)
	sender := newChanSender()
	svc := newTestService(repo, reviews, sender)

	repo.On("CountByContact", mock.Anything, "sprinter-van", "jane@acme-logistics.com", "").Return(0, nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*submissions.Submission")).Return(nil)
	reviews.On("Upsert", mock.Anything, mock.AnythingOfType("uuid.UUID"), review.Update{Status: review.StatusNew}).
		Return(&review.State{Status: review.StatusNew}, nil)

	submission, err := svc.Submit(context.Background(), cleanRequest(), "unknown")
	require.NoError(t, err)

	assert.Equal(t, "sprinter-van", submission.SiteID)
	assert.Equal(t, "sprinter-van-contact", submission.FormID)
	assert.Equal(t, "green", string(submission.Metadata.FraudFlag))
	assert.Equal(t, 0, submission.Metadata.FraudScore)
	assert.Equal(t, []string{"No concerns detected"}, submission.Metadata.FraudReasons)
	assert.Equal(t, "acme-logistics.com", submission.Metadata.EmailDomain)
	assert.Nil(t, submission.Metadata.Geo)

	email := sender.wait(t)
	assert.Equal(t, "jane@acme-logistics.com", email.ToEmail)
	assert.Equal(t, "dustin@dustinwells.com", email.FromEmail)
	assert.Contains(t, email.Subject, "Jane")

	repo.AssertExpectations(t)
	reviews.AssertExpectations(t)
}

func TestService_Submit_HighRiskLeadGetsAutoNote(t *testing.T) {
	repo := new(mockSubmissionsRepo)
	reviews := new(mockReviewRepo)
	sender := newChanSender()
	svc := newTestService(repo, reviews, sender)

	req := &SubmitRequest{
		Name:       "Spam Bot",
		Email:      "x@mailinator.com",
		Message:    "hi",
		Timeline:   submissions.TimelineJustResearching,
		TimeOnPage: 5,
	}

	repo.On("CountByContact", mock.Anything, "sprinter-van", "x@mailinator.com", "").Return(0, nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*submissions.Submission")).Return(nil)

	var captured review.Update
	reviews.On("Upsert", mock.Anything, mock.AnythingOfType("uuid.UUID"), mock.AnythingOfType("review.Update")).
		Run(func(args mock.Arguments) { captured = args.Get(2).(review.Update) }).
		Return(&review.State{Status: review.StatusNew}, nil)

	submission, err := svc.Submit(context.Background(), req, "unknown")
	require.NoError(t, err)

	assert.Equal(t, "red", string(submission.Metadata.FraudFlag))
	assert.Equal(t, 90, submission.Metadata.FraudScore)

	require.NotNil(t, captured.Notes)
	assert.Contains(t, *captured.Notes, "[AUTO] Flagged as high-risk:")
	assert.Contains(t, *captured.Notes, "Disposable email domain")

	// Even obvious spam gets the polite auto-reply.
	sender.wait(t)
}

func TestService_Submit_YellowLeadGetsConcernsNote(t *testing.T) {
	repo := new(mockSubmissionsRepo)
	reviews := new(mockReviewRepo)
	sender := newChanSender()
	svc := newTestService(repo, reviews, sender)

	req := cleanRequest()
	req.TimeOnPage = 30 // 10 points
	req.Message = "hi"  // 15 points

	repo.On("CountByContact", mock.Anything, "sprinter-van", req.Email, "").Return(0, nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*submissions.Submission")).Return(nil)

	var captured review.Update
	reviews.On("Upsert", mock.Anything, mock.AnythingOfType("uuid.UUID"), mock.AnythingOfType("review.Update")).
		Run(func(args mock.Arguments) { captured = args.Get(2).(review.Update) }).
		Return(&review.State{Status: review.StatusNew}, nil)

	submission, err := svc.Submit(context.Background(), req, "unknown")
	require.NoError(t, err)

	assert.Equal(t, "yellow", string(submission.Metadata.FraudFlag))
	require.NotNil(t, captured.Notes)
	assert.Contains(t, *captured.Notes, "[AUTO] Some concerns:")
	sender.wait(t)
}

func TestService_Submit_StoreFailure(t *testing.T) {
	repo := new(mockSubmissionsRepo)
	reviews := new(mockReviewRepo)
	sender := newChanSender()
	svc := newTestService(repo, reviews, sender)

	repo.On("CountByContact", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(0, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(assert.AnError)

	submission, err := svc.Submit(context.Background(), cleanRequest(), "unknown")
	assert.Error(t, err)
	assert.Nil(t, submission)

	// No annotation and no auto-reply for a failed store.
	reviews.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
	select {
	case <-sender.sent:
		t.Fatal("no auto-reply expected")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestService_Submit_AnnotationFailureDoesNotFail(t *testing.T) {
	repo := new(mockSubmissionsRepo)
	reviews := new(mockReviewRepo)
	sender := newChanSender()
	svc := newTestService(repo, reviews, sender)

	repo.On("CountByContact", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(0, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	reviews.On("Upsert", mock.Anything, mock.Anything, mock.Anything).Return(nil, assert.AnError)

	submission, err := svc.Submit(context.Background(), cleanRequest(), "unknown")
	require.NoError(t, err)
	assert.NotNil(t, submission)
	sender.wait(t)
}

func TestService_Submit_RepeatContactScoresDuplicate(t *testing.T) {
	repo := new(mockSubmissionsRepo)
	reviews := new(mockReviewRepo)
	sender := newChanSender()
	svc := newTestService(repo, reviews, sender)

	repo.On("CountByContact", mock.Anything, "sprinter-van", "jane@acme-logistics.com", "").Return(1, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	reviews.On("Upsert", mock.Anything, mock.Anything, mock.Anything).Return(&review.State{}, nil)

	submission, err := svc.Submit(context.Background(), cleanRequest(), "unknown")
	require.NoError(t, err)

	assert.True(t, submission.Metadata.IsDuplicate)
	assert.Equal(t, 1, submission.Metadata.DuplicateCount)
	assert.Contains(t, submission.Metadata.FraudReasons, "Repeat submission")
	sender.wait(t)
}
