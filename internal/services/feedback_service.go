// Package services – FeedbackService
//
// This file implements the FeedbackService, which records a client's
// helpful / not-helpful verdict on a catalog item. The first verdict wins:
// a client that already rated an item gets ErrDuplicateFeedback, mirroring
// the per-item lock of the disclosure controller.
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-support-desk/internal/domain"
	"github.com/tbourn/go-support-desk/internal/repo"
)

// ItemLookup resolves catalog items by id.
type ItemLookup interface {
	Item(id string) (domain.FAQItem, bool)
}

// FeedbackService implements the use-case around FAQ feedback.
type FeedbackService struct {
	// DB is the database handle used for all feedback operations.
	DB *gorm.DB
	// Items validates that the rated item exists.
	Items ItemLookup
}

// Leave records isHelpful for faqID on behalf of clientID.
//
// Errors:
//   - ErrFAQNotFound when the catalog has no such item.
//   - ErrDuplicateFeedback when clientID already rated faqID.
//   - The underlying DB error for unexpected failures.
func (s *FeedbackService) Leave(ctx context.Context, clientID, faqID string, isHelpful bool) error {
	if _, ok := s.Items.Item(faqID); !ok {
		return ErrFAQNotFound
	}
	err := repo.CreateFAQFeedback(ctx, s.DB, faqID, clientID, domain.FeedbackFromBool(isHelpful))
	if repo.IsUniqueViolation(err) {
		return ErrDuplicateFeedback
	}
	return err
}
