package notifications

import (
	"fmt"
	"strings"
)

// timelineLabels are the long-form labels used when speaking to the prospect.
var timelineLabels = map[string]string{
	"ready-now":        "Ready to purchase now",
	"within-30-days":   "Within 30 days",
	"1-3-months":       "1-3 months",
	"just-researching": "Just researching options",
}

// TimelineLabel returns the prospect-facing label for a timeline value,
// falling back to the raw value.
func TimelineLabel(timeline string) string {
	if label, ok := timelineLabels[timeline]; ok {
		return label
	}
	return timeline
}

// contextLineRule maps message keywords to a personalized opening line.
type contextLineRule struct {
	keywords []string
	line     string
}

var contextLineRules = []contextLineRule{
	{
		keywords: []string{"off-road", "offroad", "trail", "overland"},
		line:     "I can tell you're interested in the off-road capabilities — this van was built for exactly that kind of adventure.",
	},
	{
		keywords: []string{"battery", "solar", "electrical", "power"},
		line:     "Great that you're looking at the electrical system — the 800Ah setup is genuinely one of the strongest builds I've seen.",
	},
	{
		keywords: []string{"kitchen", "interior", "cabinets", "tommy"},
		line:     "The Bennett interior by Tommy Camper Vans is really special — the craftsmanship stands out in person.",
	},
	{
		keywords: []string{"price", "offer", "cost", "budget"},
		line:     "I'm always happy to have a straightforward conversation about pricing.",
	},
	{
		keywords: []string{"view", "see", "visit", "look at"},
		line:     "Nothing beats seeing it in person — happy to set up a time that works for you.",
	},
	{
		keywords: []string{"family", "kids", "wife", "partner"},
		line:     "It's great to hear you're considering this for the family — there's something special about van adventures together.",
	},
}

// ContextLine picks a personalized line based on what the prospect wrote.
// Returns the empty string when nothing matches.
func ContextLine(message string) string {
	lower := strings.ToLower(message)
	for _, rule := range contextLineRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.line
			}
		}
	}
	return ""
}

// AutoReplyInput is what the auto-reply builder needs from a submission.
type AutoReplyInput struct {
	Name       string
	Email      string
	Message    string
	Timeline   string
	ListingURL string
}

// BuildAutoReply renders the immediate thank-you email sent to a prospect
// after they submit the contact form.
func BuildAutoReply(in AutoReplyInput) Email {
	firstName := firstName(in.Name)
	timelineLabel := strings.ToLower(TimelineLabel(in.Timeline))
	contextLine := ContextLine(in.Message)

	subject := fmt.Sprintf("Thanks for your interest in the Sprinter Van, %s", firstName)

	contextHTML := ""
	if contextLine != "" {
		contextHTML = fmt.Sprintf("<p>%s</p>\n\n  ", contextLine)
	}

	htmlBody := fmt.Sprintf(`
<div style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 600px; margin: 0 auto; color: #333;">
  <p>Hi %s,</p>

  <p>Thanks for reaching out about the 2020 Mercedes Sprinter — I got your message.</p>

  %s<p>You mentioned your timeline is <strong>%s</strong> — that's great to know.</p>

  <p>A few quick questions to help move things along:</p>

  <ol style="line-height: 1.8;">
    <li><strong>What draws you to this particular van?</strong> Whether it's the off-road setup, the interior, or something else — it helps me know what to focus on.</li>
    <li><strong>Have you owned a Sprinter or done van life before?</strong> Happy to go deeper on the technical details if that's helpful.</li>
    <li><strong>Are you in Colorado or would you be traveling for pickup?</strong> The van is on the Western Slopes and I'm flexible on scheduling viewings.</li>
  </ol>

  <p>Just reply to this email and we'll go from there.</p>

  <p style="margin-top: 2rem;">
    Talk soon,<br>
    <strong>Dustin</strong>
  </p>

  <hr style="border: none; border-top: 1px solid #eee; margin: 2rem 0;">
  <p style="font-size: 0.85rem; color: #999;">
    2020 Mercedes Sprinter 2500 &bull; High Roof &bull; 170" Extended WB<br>
    <a href="%s" style="color: #5B7C99;">View full listing</a>
  </p>
</div>`, firstName, contextHTML, timelineLabel, in.ListingURL)

	textBody := fmt.Sprintf(`Hi %s,

Thanks for reaching out about the 2020 Mercedes Sprinter — I got your message.

%s

You mentioned your timeline is %s — that's great to know.

A few quick questions to help move things along:

1. What draws you to this particular van? Whether it's the off-road setup, the interior, or something else — it helps me know what to focus on.
2. Have you owned a Sprinter or done van life before? Happy to go deeper on the technical details if that's helpful.
3. Are you in Colorado or would you be traveling for pickup? The van is on the Western Slopes and I'm flexible on scheduling viewings.

Just reply to this email and we'll go from there.

Talk soon,
Dustin

---
2020 Mercedes Sprinter 2500 | High Roof | 170" Extended WB
View full listing: %s`, firstName, contextLine, timelineLabel, in.ListingURL)

	return Email{
		ToEmail:  in.Email,
		ToName:   in.Name,
		Subject:  subject,
		HTMLBody: htmlBody,
		TextBody: textBody,
	}
}

func firstName(name string) string {
	if i := strings.IndexByte(name, ' '); i > 0 {
		return name[:i]
	}
	return name
}
