package review

import (
	"time"

	"github.com/google/uuid"

	"github.com/dustinwells/sprinter-leads/internal/fraud"
)

// Review statuses a lead moves through.
const (
	StatusNew        = "new"
	StatusContacted  = "contacted"
	StatusInterested = "interested"
	StatusClosed     = "closed"
)

// ValidStatus reports whether s is a known review status.
func ValidStatus(s string) bool {
	switch s {
	case StatusNew, StatusContacted, StatusInterested, StatusClosed:
		return true
	}
	return false
}

// State is the admin-owned review record for one submission. RiskOverride,
// when set, replaces the scorer's flag everywhere risk is displayed or
// filtered.
type State struct {
	SubmissionID uuid.UUID `json:"submission_id"`
	Status       string    `json:"status"`
	Notes        string    `json:"notes"`
	RiskOverride *string   `json:"risk_override,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Update is a partial change to a submission's review state. A nil Notes
// leaves notes untouched. A nil RiskOverride leaves the override untouched;
// a pointer to the empty string clears it. An empty Status resolves to
// StatusNew.
type Update struct {
	Status       string
	Notes        *string
	RiskOverride *string
}

// EffectiveRisk returns the risk flag the admin surface should act on: the
// manual override when one is set and valid, otherwise the scorer's flag.
func EffectiveRisk(flag fraud.Flag, override *string) fraud.Flag {
	if override != nil && *override != "" && fraud.ValidFlag(*override) {
		return fraud.Flag(*override)
	}
	return flag
}
