package domain

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Priority is the primary triage axis of an escalation.
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)

// Priorities lists the known priorities in severity order.
var Priorities = []Priority{PriorityUrgent, PriorityHigh, PriorityNormal, PriorityLow}

// Rank returns the severity rank (urgent=0 … low=3). Unknown values rank
// with low so they sort last.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityHigh:
		return 1
	case PriorityNormal:
		return 2
	default:
		return 3
	}
}

// IsValid reports whether p is one of the known priorities.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityUrgent, PriorityHigh, PriorityNormal, PriorityLow:
		return true
	}
	return false
}

// Topic classifies what the escalated conversation was about. Values outside
// the known set are kept verbatim and displayed as "General".
type Topic string

const (
	TopicOnboarding      Topic = "onboarding"
	TopicWidgetInstall   Topic = "widget_install"
	TopicAPIIntegration  Topic = "api_integration"
	TopicPOSSetup        Topic = "pos_setup"
	TopicTroubleshooting Topic = "troubleshooting"
)

var topicLabels = map[Topic]string{
	TopicOnboarding:      "Onboarding",
	TopicWidgetInstall:   "Widget Install",
	TopicAPIIntegration:  "API Integration",
	TopicPOSSetup:        "POS Setup",
	TopicTroubleshooting: "Troubleshooting",
}

// TopicLabel returns the display label for t, or "General" for unknown topics.
func TopicLabel(t Topic) string {
	if l, ok := topicLabels[t]; ok {
		return l
	}
	return "General"
}

// EscalationStatus tracks where a conversation is in the human-handling flow.
type EscalationStatus string

const (
	StatusEscalated  EscalationStatus = "escalated"
	StatusReassigned EscalationStatus = "reassigned"
	StatusTakenOver  EscalationStatus = "taken_over"
	StatusResolved   EscalationStatus = "resolved"
)

// OpenStatuses are the statuses that keep a conversation in the queue.
var OpenStatuses = []EscalationStatus{StatusEscalated, StatusReassigned}

// PartnerInfo is the business partner data joined onto a conversation.
type PartnerInfo struct {
	BusinessName string `json:"businessName" gorm:"type:varchar(255)"`
	BusinessType string `json:"businessType" gorm:"type:varchar(64)"`
	ContactName  string `json:"contactName"  gorm:"type:varchar(255)"`
	ContactEmail string `json:"contactEmail" gorm:"type:varchar(255)"`
}

// EscalatedConversation is a support conversation flagged for human handling.
//
// TechStack carries the raw JSON blob recorded by the chat widget; use
// ParseTechStack to read it. EscalatedToName is derived from the team
// member table and never stored.
type EscalatedConversation struct {
	ID               string           `json:"id"               gorm:"type:varchar(64);primaryKey"`
	PartnerID        *string          `json:"partnerId"        gorm:"type:varchar(64);index"`
	PartnerEmail     *string          `json:"partnerEmail"     gorm:"type:varchar(255)"`
	PartnerName      *string          `json:"partnerName"      gorm:"type:varchar(255)"`
	Partner          PartnerInfo      `json:"partner"          gorm:"embedded;embeddedPrefix:partner_"`
	SessionID        string           `json:"sessionId"        gorm:"type:varchar(64)"`
	Topic            Topic            `json:"topic"            gorm:"type:varchar(64);index"`
	TechStack        *string          `json:"techStack"        gorm:"type:text"`
	Priority         Priority         `json:"priority"         gorm:"type:varchar(16);not null;index:idx_escalation_queue,priority:2"`
	Status           EscalationStatus `json:"status"           gorm:"type:varchar(16);not null;index:idx_escalation_queue,priority:1"`
	EscalatedAt      time.Time        `json:"escalatedAt"      gorm:"index:idx_escalation_queue,priority:3"`
	EscalatedTo      *string          `json:"escalatedTo"      gorm:"type:varchar(64);index"`
	EscalatedToName  *string          `json:"escalatedToName"  gorm:"-"`
	EscalationReason *string          `json:"escalationReason" gorm:"type:text"`
	Resolution       *string          `json:"resolution"       gorm:"type:text"`
	ResolvedAt       *time.Time       `json:"resolvedAt"`
	MessageCount     int              `json:"messageCount"     gorm:"not null;default:0"`
	LastMessageAt    *time.Time       `json:"lastMessageAt"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// TableName returns the database table name for EscalatedConversation.
func (EscalatedConversation) TableName() string { return "escalated_conversations" }

// TeamMember is an admin who can own escalations.
type TeamMember struct {
	ID    string `json:"id"    gorm:"type:varchar(64);primaryKey"`
	Name  string `json:"name"  gorm:"type:varchar(255);not null"`
	Email string `json:"email" gorm:"type:varchar(255);uniqueIndex"`
	Role  string `json:"role"  gorm:"type:varchar(32);not null;default:'admin'"`
}

// TableName returns the database table name for TeamMember.
func (TeamMember) TableName() string { return "team_members" }

// EscalationSummary aggregates the open queue for header badges.
type EscalationSummary struct {
	Total      int64              `json:"total"`
	ByPriority map[Priority]int64 `json:"byPriority"`
	Unassigned int64              `json:"unassigned"`
}

var reasonLabels = map[string]string{
	"technical_issue":     "Technical Issue",
	"billing_dispute":     "Billing Dispute",
	"account_problem":     "Account Problem",
	"integration_failure": "Integration Failure",
	"security_concern":    "Security Concern",
	"compliance_issue":    "Compliance Issue",
	"custom":              "Other",
}

var reasonTitler = cases.Title(language.English)

// ReasonLabel renders an escalation reason code such as
// "technical_issue: widget fails" for display. Only the part before the
// first colon is considered; unknown codes are title-cased.
func ReasonLabel(reason *string) string {
	if reason == nil || strings.TrimSpace(*reason) == "" {
		return "Unknown"
	}
	code := strings.TrimSpace(strings.SplitN(*reason, ":", 2)[0])
	if l, ok := reasonLabels[code]; ok {
		return l
	}
	return reasonTitler.String(strings.ReplaceAll(code, "_", " "))
}
