package digest

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/dustinwells/sprinter-leads/internal/fraud"
	"github.com/dustinwells/sprinter-leads/internal/replydrafts"
	"github.com/dustinwells/sprinter-leads/internal/submissions"
)

// riskLabels are the digest's short risk names.
var riskLabels = map[fraud.Flag]string{
	fraud.FlagGreen:  "OK",
	fraud.FlagYellow: "Caution",
	fraud.FlagRed:    "Risk",
}

// timelineShortLabels are the compact timeline names used in digest tables.
var timelineShortLabels = map[string]string{
	"ready-now":        "Ready now",
	"within-30-days":   "Within 30 days",
	"1-3-months":       "1-3 months",
	"just-researching": "Researching",
}

var riskColors = map[fraud.Flag]string{
	fraud.FlagGreen:  "#28a745",
	fraud.FlagYellow: "#856404",
	fraud.FlagRed:    "#dc3545",
}

// Lead pairs a submission with the risk the admin surface acts on.
type Lead struct {
	Submission    *submissions.Submission
	EffectiveRisk fraud.Flag
}

// Content is the input to the digest builder.
type Content struct {
	Leads  []Lead
	Drafts []*replydrafts.Draft

	// TotalSubmissions is the all-time count, or -1 when unknown.
	TotalSubmissions int64
	AdminURL         string
}

// RiskCounts tallies leads by effective risk.
type RiskCounts struct {
	Green  int `json:"green"`
	Yellow int `json:"yellow"`
	Red    int `json:"red"`
}

func countRisks(leads []Lead) RiskCounts {
	var counts RiskCounts
	for _, lead := range leads {
		switch lead.EffectiveRisk {
		case fraud.FlagGreen:
			counts.Green++
		case fraud.FlagYellow:
			counts.Yellow++
		case fraud.FlagRed:
			counts.Red++
		}
	}
	return counts
}

func riskLabel(flag fraud.Flag) string {
	if label, ok := riskLabels[flag]; ok {
		return label
	}
	return string(flag)
}

func timelineShort(timeline string) string {
	if label, ok := timelineShortLabels[timeline]; ok {
		return label
	}
	return timeline
}

func plural(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}

// truncate counts characters, not bytes, so a preview never cuts a
// multi-byte character in half.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) > max {
		return string(runes[:max]) + "..."
	}
	return s
}

// digestLocation is where draft timestamps are rendered; the recipient reads
// the digest in Mountain Time.
var digestLocation = func() *time.Location {
	loc, err := time.LoadLocation("America/Denver")
	if err != nil {
		return time.UTC
	}
	return loc
}()

// BuildSubject builds the digest subject line, e.g.
// "Sprinter Van: 3 new leads, 1 first reply, 2 follow-ups today".
func BuildSubject(content Content) string {
	firstCount := 0
	for _, d := range content.Drafts {
		if d.ReplyType == replydrafts.TypeFirst {
			firstCount++
		}
	}
	followUpCount := len(content.Drafts) - firstCount

	var parts []string
	if n := len(content.Leads); n > 0 {
		parts = append(parts, fmt.Sprintf("%d new %s", n, plural(n, "lead", "leads")))
	}
	if firstCount > 0 {
		parts = append(parts, fmt.Sprintf("%d first %s", firstCount, plural(firstCount, "reply", "replies")))
	}
	if followUpCount > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", followUpCount, plural(followUpCount, "follow-up", "follow-ups")))
	}

	return fmt.Sprintf("Sprinter Van: %s today", strings.Join(parts, ", "))
}

// BuildText renders the plain-text digest body.
func BuildText(content Content) string {
	var b strings.Builder
	b.WriteString("Sprinter Van — Daily Digest\n")

	if n := len(content.Leads); n > 0 {
		total := "?"
		if content.TotalSubmissions >= 0 {
			total = fmt.Sprintf("%d", content.TotalSubmissions)
		}
		fmt.Fprintf(&b, "%d new %s in the last 24 hours (%s total)\n\n",
			n, plural(n, "submission", "submissions"), total)

		for _, lead := range content.Leads {
			sub := lead.Submission
			row := fmt.Sprintf("%s | %s | %s | %s",
				riskLabel(lead.EffectiveRisk),
				sub.Values.Name,
				sub.Values.Email,
				timelineShort(sub.Values.Timeline))
			if geo := sub.Metadata.Geo; geo != nil {
				if location := joinNonEmpty(geo.City, geo.Region); location != "" {
					row += " | " + location
				}
			}
			if sub.Metadata.VisitCount > 1 {
				row += fmt.Sprintf(" | %d visits", sub.Metadata.VisitCount)
			}
			b.WriteString(row + "\n")
		}
	} else {
		b.WriteString("No new submissions.\n")
	}

	if n := len(content.Drafts); n > 0 {
		fmt.Fprintf(&b, "\n%d draft %s created:\n", n, plural(n, "reply", "replies"))
		for _, d := range content.Drafts {
			typeLabel := "Follow-up"
			if d.ReplyType == replydrafts.TypeFirst {
				typeLabel = "First reply"
			}
			line := fmt.Sprintf("  - [%s] %s <%s>", typeLabel, d.FromName, d.FromEmail)
			if d.ReplySnippet != "" {
				line += fmt.Sprintf(": %q", truncate(d.ReplySnippet, 60))
			}
			b.WriteString(line + "\n")
		}
	}

	fmt.Fprintf(&b, "\nView all: %s\n", content.AdminURL)
	return b.String()
}

// BuildHTML renders the HTML digest body.
func BuildHTML(content Content) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,sans-serif;max-width:700px;margin:0 auto;color:#333;">` + "\n")
	b.WriteString(`<h2 style="margin-bottom:4px;">Sprinter Van — Daily Digest</h2>` + "\n")

	if len(content.Leads) > 0 {
		writeLeadsSection(&b, content)
	}
	if len(content.Drafts) > 0 {
		writeDraftsSection(&b, content.Drafts)
	}

	fmt.Fprintf(&b, `<p style="margin-top:24px;"><a href="%s" style="background:#5B7C99;color:white;padding:10px 20px;border-radius:6px;text-decoration:none;font-weight:600;">Open Admin Dashboard</a></p>`+"\n",
		html.EscapeString(content.AdminURL))
	b.WriteString(`<hr style="border:none;border-top:1px solid #eee;margin:2rem 0;">` + "\n")
	b.WriteString(`<p style="font-size:12px;color:#999;">Daily digest &bull; Sent at 8:00 AM MT</p>` + "\n")
	b.WriteString(`</div>`)
	return b.String()
}

func writeLeadsSection(b *strings.Builder, content Content) {
	n := len(content.Leads)
	counts := countRisks(content.Leads)

	total := "?"
	if content.TotalSubmissions >= 0 {
		total = fmt.Sprintf("%d", content.TotalSubmissions)
	}

	b.WriteString(`<h3 style="margin-bottom:4px;">New Submissions</h3>` + "\n")
	fmt.Fprintf(b, `<p style="color:#666;margin-top:0;">%d new %s in the last 24 hours &bull; %s total all-time</p>`+"\n",
		n, plural(n, "submission", "submissions"), total)

	b.WriteString(`<div style="display:flex;gap:16px;margin:16px 0;">` + "\n")
	fmt.Fprintf(b, `<div style="background:#d4edda;padding:8px 16px;border-radius:8px;text-align:center;"><div style="font-size:20px;font-weight:700;color:#28a745;">%d</div><div style="font-size:11px;color:#155724;">Clean</div></div>`+"\n", counts.Green)
	if counts.Yellow > 0 {
		fmt.Fprintf(b, `<div style="background:#fff3cd;padding:8px 16px;border-radius:8px;text-align:center;"><div style="font-size:20px;font-weight:700;color:#856404;">%d</div><div style="font-size:11px;color:#856404;">Caution</div></div>`+"\n", counts.Yellow)
	}
	if counts.Red > 0 {
		fmt.Fprintf(b, `<div style="background:#f8d7da;padding:8px 16px;border-radius:8px;text-align:center;"><div style="font-size:20px;font-weight:700;color:#dc3545;">%d</div><div style="font-size:11px;color:#dc3545;">Flagged</div></div>`+"\n", counts.Red)
	}
	b.WriteString(`</div>` + "\n")

	b.WriteString(`<table style="width:100%;border-collapse:collapse;margin:16px 0;"><thead><tr style="background:#f8f9fa;">`)
	for _, col := range []string{"Risk", "Name", "Email", "Timeline", "Message", "Intel"} {
		fmt.Fprintf(b, `<th style="padding:8px;text-align:left;font-size:12px;color:#666;border-bottom:2px solid #dee2e6;">%s</th>`, col)
	}
	b.WriteString(`</tr></thead><tbody>` + "\n")

	for _, lead := range content.Leads {
		sub := lead.Submission
		color := riskColors[lead.EffectiveRisk]
		if color == "" {
			color = "#28a745"
		}

		intel := "—"
		if geo := sub.Metadata.Geo; geo != nil {
			if location := joinNonEmpty(geo.City, geo.Region); location != "" {
				intel = html.EscapeString(location)
			}
		}
		if sub.Metadata.VisitCount > 1 {
			intel += fmt.Sprintf("<br>%d visits", sub.Metadata.VisitCount)
		}
		if sub.Metadata.TimeOnPage > 0 {
			intel += fmt.Sprintf("<br>%ds on page", sub.Metadata.TimeOnPage)
		}

		b.WriteString(`<tr>`)
		fmt.Fprintf(b, `<td style="padding:8px;border-bottom:1px solid #eee;color:%s;font-weight:600;font-size:13px;">%s</td>`,
			color, riskLabel(lead.EffectiveRisk))
		fmt.Fprintf(b, `<td style="padding:8px;border-bottom:1px solid #eee;font-weight:600;">%s</td>`,
			html.EscapeString(sub.Values.Name))
		fmt.Fprintf(b, `<td style="padding:8px;border-bottom:1px solid #eee;"><a href="mailto:%s" style="color:#5B7C99;">%s</a></td>`,
			html.EscapeString(sub.Values.Email), html.EscapeString(sub.Values.Email))
		fmt.Fprintf(b, `<td style="padding:8px;border-bottom:1px solid #eee;font-size:13px;">%s</td>`,
			html.EscapeString(timelineShort(sub.Values.Timeline)))
		fmt.Fprintf(b, `<td style="padding:8px;border-bottom:1px solid #eee;font-size:13px;color:#666;">%s</td>`,
			html.EscapeString(truncate(sub.Values.Message, 80)))
		fmt.Fprintf(b, `<td style="padding:8px;border-bottom:1px solid #eee;font-size:12px;color:#999;">%s</td>`, intel)
		b.WriteString(`</tr>` + "\n")
	}
	b.WriteString(`</tbody></table>` + "\n")
}

func writeDraftsSection(b *strings.Builder, drafts []*replydrafts.Draft) {
	n := len(drafts)
	verb := "s were"
	if n == 1 {
		verb = " was"
	}

	b.WriteString(`<h3 style="margin-bottom:4px;">Reply Drafts</h3>` + "\n")
	fmt.Fprintf(b, `<p style="color:#666;margin-top:0;">%d draft response%s auto-created from prospect replies. <a href="https://mail.google.com/mail/u/0/#drafts" style="color:#5B7C99;font-weight:600;">Review in Gmail Drafts</a></p>`+"\n", n, verb)

	b.WriteString(`<table style="width:100%;border-collapse:collapse;margin:16px 0;"><thead><tr style="background:#f8f9fa;">`)
	for _, col := range []string{"Type", "Name", "Email", "Their Reply", "Time"} {
		fmt.Fprintf(b, `<th style="padding:6px 8px;text-align:left;font-size:12px;color:#666;border-bottom:2px solid #dee2e6;">%s</th>`, col)
	}
	b.WriteString(`</tr></thead><tbody>` + "\n")

	for _, d := range drafts {
		typeLabel, typeColor := "Follow-up", "#5B7C99"
		if d.ReplyType == replydrafts.TypeFirst {
			typeLabel, typeColor = "First reply", "#28a745"
		}

		b.WriteString(`<tr>`)
		fmt.Fprintf(b, `<td style="padding:6px 8px;border-bottom:1px solid #eee;color:%s;font-weight:600;font-size:13px;">%s</td>`, typeColor, typeLabel)
		fmt.Fprintf(b, `<td style="padding:6px 8px;border-bottom:1px solid #eee;font-weight:600;">%s</td>`, html.EscapeString(d.FromName))
		fmt.Fprintf(b, `<td style="padding:6px 8px;border-bottom:1px solid #eee;"><a href="mailto:%s" style="color:#5B7C99;">%s</a></td>`,
			html.EscapeString(d.FromEmail), html.EscapeString(d.FromEmail))
		fmt.Fprintf(b, `<td style="padding:6px 8px;border-bottom:1px solid #eee;font-size:13px;color:#666;">%s</td>`,
			html.EscapeString(truncate(d.ReplySnippet, 60)))
		fmt.Fprintf(b, `<td style="padding:6px 8px;border-bottom:1px solid #eee;font-size:12px;color:#999;">%s</td>`,
			d.CreatedAt.In(digestLocation).Format("3:04 PM"))
		b.WriteString(`</tr>` + "\n")
	}
	b.WriteString(`</tbody></table>` + "\n")
}

func joinNonEmpty(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}
