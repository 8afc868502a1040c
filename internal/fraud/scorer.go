package fraud

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Flag thresholds. Weights and reason wording below are load-bearing: stored
// submissions carry the produced strings, so changing either is a policy
// decision, not a refactor.
const (
	redThreshold    = 40
	yellowThreshold = 15
)

const timelineJustResearching = "just-researching"

// suspiciousFragments trip the message-content rule, case-insensitively.
var suspiciousFragments = []string{
	"http://",
	"https://",
	"bitcoin",
	"crypto",
	"wire transfer",
}

// rule is one row of the scoring table. A nil reason adds the weight
// silently.
type rule struct {
	name    string
	weight  int
	applies func(Signals) bool
	reason  func(Signals) string
}

func staticReason(text string) func(Signals) string {
	return func(Signals) string { return text }
}

// rules is evaluated in order; every matching rule contributes its weight.
var rules = []rule{
	{
		name:    "disposable_email",
		weight:  40,
		applies: func(s Signals) bool { return s.IsDisposableEmail },
		reason:  staticReason("Disposable email domain"),
	},
	{
		// Most legitimate buyers use gmail; nudge the score, skip the reason.
		name:    "free_email",
		weight:  5,
		applies: func(s Signals) bool { return s.IsFreeEmail && !s.IsDisposableEmail },
	},
	{
		name:    "very_short_dwell",
		weight:  30,
		applies: func(s Signals) bool { return s.TimeOnPage < 15 },
		reason: func(s Signals) string {
			return fmt.Sprintf("Only %ds on page before submitting", s.TimeOnPage)
		},
	},
	{
		name:    "short_dwell",
		weight:  10,
		applies: func(s Signals) bool { return s.TimeOnPage >= 15 && s.TimeOnPage < 60 },
		reason: func(s Signals) string {
			return fmt.Sprintf("%ds on page (relatively quick)", s.TimeOnPage)
		},
	},
	{
		name:    "heavy_repeat",
		weight:  25,
		applies: func(s Signals) bool { return s.DuplicateCount >= 3 },
		reason: func(s Signals) string {
			return fmt.Sprintf("%d previous submissions from same contact", s.DuplicateCount)
		},
	},
	{
		name:    "repeat",
		weight:  10,
		applies: func(s Signals) bool { return s.IsDuplicate && s.DuplicateCount < 3 },
		reason:  staticReason("Repeat submission"),
	},
	{
		name:    "proxy",
		weight:  30,
		applies: func(s Signals) bool { return s.HasGeo && s.Proxy },
		reason:  staticReason("Using proxy/VPN"),
	},
	{
		name:    "hosting_ip",
		weight:  35,
		applies: func(s Signals) bool { return s.HasGeo && s.Hosting },
		reason:  staticReason("Submitted from hosting/datacenter IP"),
	},
	{
		name:    "foreign_country",
		weight:  15,
		applies: func(s Signals) bool { return s.HasGeo && s.CountryCode != "" && s.CountryCode != "US" },
		reason: func(s Signals) string {
			return fmt.Sprintf("Located in %s", s.Country)
		},
	},
	{
		name:    "short_message",
		weight:  15,
		applies: func(s Signals) bool { return utf8.RuneCountInString(s.Message) < 10 },
		reason:  staticReason("Very short message"),
	},
	{
		name:    "suspicious_content",
		weight:  25,
		applies: hasSuspiciousContent,
		reason:  staticReason("Suspicious content in message"),
	},
	{
		name:    "just_researching",
		weight:  5,
		applies: func(s Signals) bool { return s.Timeline == timelineJustResearching },
		reason:  staticReason("Just researching (not ready to buy)"),
	},
}

func hasSuspiciousContent(s Signals) bool {
	lower := strings.ToLower(s.Message)
	for _, fragment := range suspiciousFragments {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}

// Score evaluates the rule table against the collected signals. It is pure
// and deterministic: the same signals always produce the same result.
func Score(s Signals) Result {
	result := Result{Reasons: []string{}}

	for _, r := range rules {
		if !r.applies(s) {
			continue
		}
		result.Score += r.weight
		if r.reason != nil {
			result.Reasons = append(result.Reasons, r.reason(s))
		}
	}

	result.Flag = FlagForScore(result.Score)

	// A clean submission still gets a reason so the list is never empty.
	if result.Flag == FlagGreen && len(result.Reasons) == 0 {
		result.Reasons = append(result.Reasons, "No concerns detected")
	}

	return result
}

// FlagForScore maps an accumulated score to its risk flag.
func FlagForScore(score int) Flag {
	switch {
	case score >= redThreshold:
		return FlagRed
	case score >= yellowThreshold:
		return FlagYellow
	default:
		return FlagGreen
	}
}
