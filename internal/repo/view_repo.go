package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-support-desk/internal/domain"
)

// IncrementFAQView adds one to the aggregate view counter of faqID,
// creating the row on first view.
func IncrementFAQView(ctx context.Context, db *gorm.DB, faqID string) error {
	now := time.Now().UTC()
	row := &domain.FAQView{FAQID: faqID, Views: 1, UpdatedAt: now}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "faq_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"views":      gorm.Expr("views + 1"),
				"updated_at": now,
			}),
		}).
		Create(row).Error
}

// FAQViewCounts returns recorded views keyed by item id.
func FAQViewCounts(ctx context.Context, db *gorm.DB) (map[string]int64, error) {
	var rows []domain.FAQView
	if err := db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.FAQID] = r.Views
	}
	return out, nil
}
