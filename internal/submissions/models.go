package submissions

import (
	"time"

	"github.com/google/uuid"

	"github.com/dustinwells/sprinter-leads/internal/fraud"
)

// Purchase timelines the contact form offers. These are wire values; the
// human-readable labels live with the notification templates.
const (
	TimelineReadyNow        = "ready-now"
	TimelineWithin30Days    = "within-30-days"
	TimelineOneToThreeMonth = "1-3-months"
	TimelineJustResearching = "just-researching"
)

// TimelineValues returns the accepted timeline values in display order.
func TimelineValues() []string {
	return []string{
		TimelineReadyNow,
		TimelineWithin30Days,
		TimelineOneToThreeMonth,
		TimelineJustResearching,
	}
}

// ValidTimeline reports whether s is an accepted timeline value.
func ValidTimeline(s string) bool {
	switch s {
	case TimelineReadyNow, TimelineWithin30Days, TimelineOneToThreeMonth, TimelineJustResearching:
		return true
	}
	return false
}

// Values holds what the visitor actually typed into the form.
type Values struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Message  string `json:"message"`
	Timeline string `json:"timeline"`
}

// GeoData is the IP lookup result attached to a submission.
type GeoData struct {
	Country     string `json:"country"`
	CountryCode string `json:"countryCode"`
	Region      string `json:"region"`
	City        string `json:"city"`
	ISP         string `json:"isp"`
	Proxy       bool   `json:"proxy"`
	Hosting     bool   `json:"hosting"`
}

// Metadata is everything the pipeline derived about a submission: client
// hints from the form, enrichment results, and the fraud verdict.
type Metadata struct {
	SubmittedAt       time.Time  `json:"submittedAt"`
	Referrer          string     `json:"referrer,omitempty"`
	TimeOnPage        int        `json:"timeOnPage"`
	VisitCount        int        `json:"visitCount,omitempty"`
	IP                string     `json:"ip"`
	Geo               *GeoData   `json:"geo,omitempty"`
	EmailDomain       string     `json:"emailDomain"`
	IsFreeEmail       bool       `json:"isFreeEmail"`
	IsDisposableEmail bool       `json:"isDisposableEmail"`
	IsDuplicate       bool       `json:"isDuplicate"`
	DuplicateCount    int        `json:"duplicateCount"`
	FraudFlag         fraud.Flag `json:"fraudFlag"`
	FraudScore        int        `json:"fraudScore"`
	FraudReasons      []string   `json:"fraudReasons"`
}

// Submission is one stored contact-form submission.
type Submission struct {
	ID        uuid.UUID `json:"id"`
	SiteID    string    `json:"site_id"`
	FormID    string    `json:"form_id"`
	Values    Values    `json:"values"`
	Metadata  Metadata  `json:"metadata"`
	CreatedAt time.Time `json:"created_at"`
}
