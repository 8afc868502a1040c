package notifications

import "context"

// Email is one outbound message with both HTML and plain-text bodies.
type Email struct {
	ToEmail      string
	ToName       string
	FromEmail    string
	FromName     string
	ReplyToEmail string
	ReplyToName  string
	Subject      string
	HTMLBody     string
	TextBody     string
}

// Sender delivers outbound email.
type Sender interface {
	Send(ctx context.Context, email Email) error
}
