package triage

import (
	"time"

	"github.com/tbourn/go-support-desk/internal/domain"
)

func strp(s string) *string { return &s }

// SeedConversations returns the demo queue shown when the escalation service
// cannot be reached. Times are relative to now.
func SeedConversations(now time.Time) []domain.EscalatedConversation {
	type seed struct {
		id, partnerID, email, name, session string
		topic                               domain.Topic
		stack                               string
		priority                            domain.Priority
		ago, createdAgo                     time.Duration
		reason                              string
		partner                             domain.PartnerInfo
	}
	seeds := []seed{
		{
			id: "esc-1", partnerID: "p-1", email: "john@peakgym.com", name: "John Smith", session: "sess-001",
			topic: domain.TopicAPIIntegration, stack: `{"framework":"react","pos":"mindbody"}`,
			priority: domain.PriorityUrgent, ago: 15 * time.Minute, createdAgo: 45 * time.Minute,
			reason:  "Complex API authentication issue requiring developer support",
			partner: domain.PartnerInfo{BusinessName: "Peak Performance Gym", BusinessType: "gym", ContactName: "John Smith", ContactEmail: "john@peakgym.com"},
		},
		{
			id: "esc-2", partnerID: "p-2", email: "sarah@climbhigh.com", name: "Sarah Johnson", session: "sess-002",
			topic: domain.TopicWidgetInstall, stack: `{"framework":"wordpress","pos":"none"}`,
			priority: domain.PriorityHigh, ago: 32 * time.Minute, createdAgo: time.Hour,
			reason:  "Widget not loading in WordPress - possibly theme conflict",
			partner: domain.PartnerInfo{BusinessName: "Climb High Adventures", BusinessType: "climbing", ContactName: "Sarah Johnson", ContactEmail: "sarah@climbhigh.com"},
		},
		{
			id: "esc-3", partnerID: "p-3", email: "mike@kayakrentals.com", name: "Mike Davis", session: "sess-003",
			topic: domain.TopicPOSSetup, stack: `{"framework":"shopify","pos":"square"}`,
			priority: domain.PriorityNormal, ago: 2 * time.Hour, createdAgo: 3 * time.Hour,
			reason:  "Square POS sync failing intermittently",
			partner: domain.PartnerInfo{BusinessName: "Kayak Rentals Co", BusinessType: "rental", ContactName: "Mike Davis", ContactEmail: "mike@kayakrentals.com"},
		},
	}

	out := make([]domain.EscalatedConversation, 0, len(seeds))
	for _, s := range seeds {
		out = append(out, domain.EscalatedConversation{
			ID:               s.id,
			PartnerID:        strp(s.partnerID),
			PartnerEmail:     strp(s.email),
			PartnerName:      strp(s.name),
			Partner:          s.partner,
			SessionID:        s.session,
			Topic:            s.topic,
			TechStack:        strp(s.stack),
			Priority:         s.priority,
			Status:           domain.StatusEscalated,
			EscalatedAt:      now.Add(-s.ago),
			EscalationReason: strp(s.reason),
			CreatedAt:        now.Add(-s.createdAgo),
			UpdatedAt:        now.Add(-s.ago),
		})
	}
	return out
}
