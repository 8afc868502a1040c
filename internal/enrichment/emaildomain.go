package enrichment

import "strings"

// freeEmailDomains are common consumer mail providers. A free address is a
// weak signal on its own.
var freeEmailDomains = map[string]struct{}{
	"gmail.com":      {},
	"yahoo.com":      {},
	"hotmail.com":    {},
	"outlook.com":    {},
	"aol.com":        {},
	"icloud.com":     {},
	"mail.com":       {},
	"protonmail.com": {},
	"zoho.com":       {},
	"yandex.com":     {},
	"gmx.com":        {},
	"live.com":       {},
	"msn.com":        {},
	"me.com":         {},
	"mac.com":        {},
}

// disposableEmailDomains are throwaway providers. Nobody buys a van from a
// mailinator address.
var disposableEmailDomains = map[string]struct{}{
	"mailinator.com":        {},
	"guerrillamail.com":     {},
	"tempmail.com":          {},
	"throwaway.email":       {},
	"10minutemail.com":      {},
	"trashmail.com":         {},
	"sharklasers.com":       {},
	"guerrillamailblock.com": {},
	"grr.la":                {},
	"dispostable.com":       {},
	"yopmail.com":           {},
	"maildrop.cc":           {},
}

// EmailProfile classifies the domain part of an email address.
type EmailProfile struct {
	Domain       string
	IsFree       bool
	IsDisposable bool
}

// ClassifyEmail extracts and classifies the address's domain. Addresses
// without an @ yield an empty domain and no flags.
func ClassifyEmail(email string) EmailProfile {
	var domain string
	if at := strings.LastIndex(email, "@"); at >= 0 && at < len(email)-1 {
		domain = strings.ToLower(email[at+1:])
	}

	_, isFree := freeEmailDomains[domain]
	_, isDisposable := disposableEmailDomains[domain]

	return EmailProfile{
		Domain:       domain,
		IsFree:       isFree,
		IsDisposable: isDisposable,
	}
}
