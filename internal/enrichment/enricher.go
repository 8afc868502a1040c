package enrichment

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dustinwells/sprinter-leads/internal/fraud"
	"github.com/dustinwells/sprinter-leads/internal/submissions"
)

// Input is the raw material for enrichment: what the visitor submitted plus
// the client hints the form captured.
type Input struct {
	Name       string
	Email      string
	Phone      string
	Message    string
	Timeline   string
	TimeOnPage int
	VisitCount int
	Referrer   string
	IP         string
}

// Facts are the enrichment results for one submission.
type Facts struct {
	Geo            *submissions.GeoData
	Email          EmailProfile
	IsDuplicate    bool
	DuplicateCount int
}

// Enricher runs the per-submission enrichment collectors.
type Enricher struct {
	geo   *GeoClient
	dupes *DuplicateChecker
}

// NewEnricher creates an enricher from its collectors.
func NewEnricher(geo *GeoClient, dupes *DuplicateChecker) *Enricher {
	return &Enricher{geo: geo, dupes: dupes}
}

// Collect gathers all enrichment facts. The geo lookup and duplicate check
// are independent I/O and run concurrently; both fail open, so Collect never
// fails.
func (e *Enricher) Collect(ctx context.Context, in Input) Facts {
	facts := Facts{Email: ClassifyEmail(in.Email)}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		facts.Geo = e.geo.Lookup(ctx, in.IP)
		return nil
	})
	g.Go(func() error {
		facts.IsDuplicate, facts.DuplicateCount = e.dupes.Check(ctx, in.Email, in.Phone)
		return nil
	})
	_ = g.Wait()

	return facts
}

// Signals maps the input and collected facts onto the scorer's input.
func (f Facts) Signals(in Input) fraud.Signals {
	s := fraud.Signals{
		IsFreeEmail:       f.Email.IsFree,
		IsDisposableEmail: f.Email.IsDisposable,
		TimeOnPage:        in.TimeOnPage,
		IsDuplicate:       f.IsDuplicate,
		DuplicateCount:    f.DuplicateCount,
		Message:           in.Message,
		Timeline:          in.Timeline,
	}
	if f.Geo != nil {
		s.HasGeo = true
		s.Proxy = f.Geo.Proxy
		s.Hosting = f.Geo.Hosting
		s.Country = f.Geo.Country
		s.CountryCode = f.Geo.CountryCode
	}
	return s
}

// Assemble builds the metadata document stored with the submission.
func Assemble(in Input, f Facts, verdict fraud.Result, now time.Time) submissions.Metadata {
	return submissions.Metadata{
		SubmittedAt:       now.UTC(),
		Referrer:          in.Referrer,
		TimeOnPage:        in.TimeOnPage,
		VisitCount:        in.VisitCount,
		IP:                in.IP,
		Geo:               f.Geo,
		EmailDomain:       f.Email.Domain,
		IsFreeEmail:       f.Email.IsFree,
		IsDisposableEmail: f.Email.IsDisposable,
		IsDuplicate:       f.IsDuplicate,
		DuplicateCount:    f.DuplicateCount,
		FraudFlag:         verdict.Flag,
		FraudScore:        verdict.Score,
		FraudReasons:      verdict.Reasons,
	}
}
