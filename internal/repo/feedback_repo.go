// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the FAQFeedback
// model.
//
// Error semantics:
//   - Duplicate feedback (same faq_id,client_id) relies on the database
//     unique constraint and is returned as a raw DB error. The service layer
//     translates that into services.ErrDuplicateFeedback, using
//     IsUniqueViolation.
//   - On other DB errors (connectivity, constraints, etc.), the raw gorm
//     error is propagated.
//
// Usage:
//
//	// In the service layer
//	err := repo.CreateFAQFeedback(ctx, db, "gs-1", clientID, domain.FeedbackHelpful)
//	if repo.IsUniqueViolation(err) {
//	    // translate to services.ErrDuplicateFeedback
//	}
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-support-desk/internal/domain"
)

// CreateFAQFeedback inserts a feedback row for the given item and client.
// The (faq_id, client_id) pair is unique at the schema level.
func CreateFAQFeedback(ctx context.Context, db *gorm.DB, faqID, clientID string, value domain.FeedbackValue) error {
	fb := &domain.FAQFeedback{
		ID:        uuid.NewString(),
		FAQID:     faqID,
		ClientID:  clientID,
		Value:     value,
		CreatedAt: time.Now().UTC(),
	}
	return db.WithContext(ctx).Create(fb).Error
}

// FeedbackTally counts verdicts for one item.
type FeedbackTally struct {
	Helpful    int64 `json:"helpful"`
	NotHelpful int64 `json:"notHelpful"`
}

// CountFAQFeedback tallies the verdicts recorded for faqID.
func CountFAQFeedback(ctx context.Context, db *gorm.DB, faqID string) (FeedbackTally, error) {
	var rows []struct {
		Value domain.FeedbackValue
		N     int64
	}
	err := db.WithContext(ctx).
		Model(&domain.FAQFeedback{}).
		Select("value, COUNT(*) AS n").
		Where("faq_id = ?", faqID).
		Group("value").
		Scan(&rows).Error
	if err != nil {
		return FeedbackTally{}, err
	}
	var t FeedbackTally
	for _, r := range rows {
		switch r.Value {
		case domain.FeedbackHelpful:
			t.Helpful = r.N
		case domain.FeedbackNotHelpful:
			t.NotHelpful = r.N
		}
	}
	return t, nil
}

// IsUniqueViolation reports whether err is a unique-constraint failure.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique")
}
