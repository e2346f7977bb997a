package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-support-desk/internal/domain"
)

// DemoTeam is the team seeded by SeedDemoData.
var DemoTeam = []domain.TeamMember{
	{ID: "user-001", Name: "Mike Johnson", Email: "mike@dailyevent.io", Role: "admin"},
	{ID: "user-002", Name: "Emily Davis", Email: "emily@dailyevent.io", Role: "admin"},
	{ID: "user-003", Name: "Alex Chen", Email: "alex@dailyevent.io", Role: "admin"},
}

func strp(s string) *string { return &s }

func timep(t time.Time) *time.Time { return &t }

// DemoEscalations returns the four demo conversations with timestamps
// relative to now.
func DemoEscalations(now time.Time) []domain.EscalatedConversation {
	ago := func(d time.Duration) time.Time { return now.Add(-d).UTC() }
	return []domain.EscalatedConversation{
		{
			ID: "esc-001", PartnerID: strp("partner-001"),
			PartnerEmail: strp("john@adventuresports.com"), PartnerName: strp("Adventure Sports Inc"),
			Partner:   domain.PartnerInfo{BusinessName: "Adventure Sports Inc", ContactEmail: "john@adventuresports.com"},
			SessionID: "sess-abc-123", Topic: domain.TopicWidgetInstall,
			TechStack: strp(`{"framework":"react","pos":"mindbody"}`),
			Priority:  domain.PriorityUrgent, Status: domain.StatusEscalated,
			EscalatedAt: ago(2 * time.Hour), EscalationReason: strp("technical_issue"),
			MessageCount: 12, LastMessageAt: timep(ago(30 * time.Minute)),
			CreatedAt: ago(3 * time.Hour), UpdatedAt: ago(2 * time.Hour),
		},
		{
			ID: "esc-002", PartnerID: strp("partner-002"),
			PartnerEmail: strp("sarah@summitgym.com"), PartnerName: strp("Summit Fitness Center"),
			Partner:   domain.PartnerInfo{BusinessName: "Summit Fitness Center", ContactEmail: "sarah@summitgym.com"},
			SessionID: "sess-def-456", Topic: domain.TopicAPIIntegration,
			TechStack: strp(`{"framework":"nextjs","language":"typescript"}`),
			Priority:  domain.PriorityHigh, Status: domain.StatusEscalated,
			EscalatedAt: ago(5 * time.Hour), EscalatedTo: strp("user-001"),
			EscalationReason: strp("integration_failure"),
			MessageCount:     8, LastMessageAt: timep(ago(2 * time.Hour)),
			CreatedAt: ago(6 * time.Hour), UpdatedAt: ago(5 * time.Hour),
		},
		{
			ID: "esc-003", PartnerID: strp("partner-003"),
			PartnerEmail: strp("mike@urbanclimbing.com"), PartnerName: strp("Urban Climbing Co"),
			Partner:   domain.PartnerInfo{BusinessName: "Urban Climbing Co", ContactEmail: "mike@urbanclimbing.com"},
			SessionID: "sess-ghi-789", Topic: domain.TopicTroubleshooting,
			TechStack: strp(`{"pos":"pike13"}`),
			Priority:  domain.PriorityNormal, Status: domain.StatusEscalated,
			EscalatedAt: ago(24 * time.Hour), EscalationReason: strp("billing_dispute"),
			MessageCount: 5, LastMessageAt: timep(ago(12 * time.Hour)),
			CreatedAt: ago(25 * time.Hour), UpdatedAt: ago(24 * time.Hour),
		},
		{
			ID:           "esc-004",
			PartnerEmail: strp("guest@example.com"), PartnerName: strp("Guest User"),
			Partner:   domain.PartnerInfo{ContactName: "Guest User", ContactEmail: "guest@example.com"},
			SessionID: "sess-jkl-012", Topic: domain.TopicOnboarding,
			Priority: domain.PriorityLow, Status: domain.StatusEscalated,
			EscalatedAt: ago(48 * time.Hour), EscalatedTo: strp("user-002"),
			EscalationReason: strp("account_problem"),
			MessageCount:     3, LastMessageAt: timep(ago(24 * time.Hour)),
			CreatedAt: ago(50 * time.Hour), UpdatedAt: ago(48 * time.Hour),
		},
	}
}

// SeedDemoData inserts the demo team and escalations. Rows that already
// exist are left untouched, so repeated boots do not resurrect resolved
// conversations.
func SeedDemoData(ctx context.Context, db *gorm.DB, now time.Time) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		team := append([]domain.TeamMember(nil), DemoTeam...)
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&team).Error; err != nil {
			return err
		}
		esc := DemoEscalations(now)
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&esc).Error
	})
}
