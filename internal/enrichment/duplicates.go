package enrichment

import (
	"context"

	"go.uber.org/zap"

	"github.com/dustinwells/sprinter-leads/pkg/logger"
)

// ContactCounter is the slice of the submissions repository the duplicate
// checker needs.
type ContactCounter interface {
	CountByContact(ctx context.Context, siteID, email, phone string) (int, error)
}

// DuplicateChecker counts prior submissions from the same contact details.
// Like the geo lookup it fails open: a database hiccup reports "no
// duplicates" instead of rejecting the submission.
type DuplicateChecker struct {
	repo   ContactCounter
	siteID string
}

// NewDuplicateChecker creates a duplicate checker scoped to one site.
func NewDuplicateChecker(repo ContactCounter, siteID string) *DuplicateChecker {
	return &DuplicateChecker{repo: repo, siteID: siteID}
}

// Check reports whether the contact has submitted before and how many times.
func (d *DuplicateChecker) Check(ctx context.Context, email, phone string) (bool, int) {
	count, err := d.repo.CountByContact(ctx, d.siteID, email, phone)
	if err != nil {
		logger.WithContext(ctx).Warn("duplicate check failed",
			zap.String("email", email),
			zap.Error(err))
		return false, 0
	}
	return count > 0, count
}
