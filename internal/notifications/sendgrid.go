package notifications

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dustinwells/sprinter-leads/pkg/httpclient"
	"github.com/dustinwells/sprinter-leads/pkg/logger"
	"github.com/dustinwells/sprinter-leads/pkg/resilience"
)

// sendgrid v3 mail send payload
type sgAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sgPersonalization struct {
	To []sgAddress `json:"to"`
}

type sgContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sgPayload struct {
	Personalizations []sgPersonalization `json:"personalizations"`
	From             sgAddress           `json:"from"`
	ReplyTo          *sgAddress          `json:"reply_to,omitempty"`
	Subject          string              `json:"subject"`
	Content          []sgContent         `json:"content"`
}

// SendGridSender delivers email through the SendGrid v3 API. Calls go through
// a circuit breaker so a SendGrid outage cannot pile up blocked requests.
// With no API key configured the sender logs and drops messages, which keeps
// local development working without credentials.
type SendGridSender struct {
	client  *httpclient.Client
	breaker *resilience.CircuitBreaker
	apiKey  string
}

// NewSendGridSender creates a SendGrid-backed sender. baseURL is the API
// root, normally https://api.sendgrid.com.
func NewSendGridSender(baseURL, apiKey string) *SendGridSender {
	return &SendGridSender{
		client: httpclient.NewClient(baseURL, 10*time.Second),
		breaker: resilience.NewCircuitBreaker(resilience.BuildSettings("sendgrid", 60, 30, 5, 1), nil),
		apiKey: apiKey,
	}
}

// Send delivers one email.
func (s *SendGridSender) Send(ctx context.Context, email Email) error {
	if s.apiKey == "" {
		logger.WithContext(ctx).Warn("sendgrid api key not set, skipping email",
			zap.String("to", email.ToEmail),
			zap.String("subject", email.Subject))
		return nil
	}

	payload := sgPayload{
		Personalizations: []sgPersonalization{
			{To: []sgAddress{{Email: email.ToEmail, Name: email.ToName}}},
		},
		From:    sgAddress{Email: email.FromEmail, Name: email.FromName},
		Subject: email.Subject,
		Content: []sgContent{
			{Type: "text/plain", Value: email.TextBody},
			{Type: "text/html", Value: email.HTMLBody},
		},
	}
	if email.ReplyToEmail != "" {
		payload.ReplyTo = &sgAddress{Email: email.ReplyToEmail, Name: email.ReplyToName}
	}

	headers := map[string]string{"Authorization": "Bearer " + s.apiKey}

	_, err := s.breaker.Execute(ctx, func() (interface{}, error) {
		return nil, s.client.PostJSON(ctx, "/v3/mail/send", payload, headers)
	})
	return err
}
