package admin

import (
	"github.com/dustinwells/sprinter-leads/internal/fraud"
	"github.com/dustinwells/sprinter-leads/internal/review"
	"github.com/dustinwells/sprinter-leads/internal/submissions"
)

// LoginRequest is the admin dashboard login payload.
type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// UpdateRequest is a partial review-state change from the dashboard. Notes
// and RiskOverride distinguish "absent" from "set to empty": a null notes
// field leaves notes alone, an empty risk_override clears the override.
type UpdateRequest struct {
	Status       string  `json:"status" binding:"omitempty,review_status"`
	Notes        *string `json:"notes"`
	RiskOverride *string `json:"risk_override" binding:"omitempty,risk_flag"`
}

// ListFilter narrows the lead list. Empty fields match everything.
type ListFilter struct {
	Status string
	Risk   string
}

// Lead is one submission joined with its review state, as shown in the
// dashboard.
type Lead struct {
	Submission    *submissions.Submission `json:"submission"`
	Review        *review.State           `json:"review,omitempty"`
	EffectiveRisk fraud.Flag              `json:"effective_risk"`
}
