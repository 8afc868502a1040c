package replydrafts

import (
	"time"

	"github.com/google/uuid"
)

// Reply types distinguish the first outreach draft from later follow-ups.
const (
	TypeFirst    = "first"
	TypeFollowUp = "follow-up"
)

// Draft is one auto-created reply draft, recorded so the daily digest can
// point at drafts waiting for review.
type Draft struct {
	ID           uuid.UUID `json:"id"`
	SiteID       string    `json:"site_id"`
	ReplyType    string    `json:"reply_type"`
	FromName     string    `json:"from_name"`
	FromEmail    string    `json:"from_email"`
	ReplySnippet string    `json:"reply_snippet"`
	CreatedAt    time.Time `json:"created_at"`
}
