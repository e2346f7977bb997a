// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// EscalatedConversation model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions. They follow the "thin repository"
// approach: query composition only, business rules live in services.
//
// Error semantics:
//   - When a conversation is not found (or is no longer open, for the
//     *Open* variants), functions return ErrNotFound.
//   - Other DB errors are propagated unchanged.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-support-desk/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// queueOrder sorts by priority rank, oldest escalation first within a rank.
const queueOrder = "CASE priority WHEN 'urgent' THEN 0 WHEN 'high' THEN 1 WHEN 'normal' THEN 2 ELSE 3 END ASC, escalated_at ASC, id ASC"

// EscalationFilter narrows the open queue. Zero values mean "no filter".
type EscalationFilter struct {
	Priority   domain.Priority
	Assigned   *bool
	AssignedTo string
}

func openQueue(ctx context.Context, db *gorm.DB, f EscalationFilter) *gorm.DB {
	q := db.WithContext(ctx).
		Model(&domain.EscalatedConversation{}).
		Where("status IN ?", domain.OpenStatuses)
	if f.Priority != "" {
		q = q.Where("priority = ?", f.Priority)
	}
	if f.Assigned != nil {
		if *f.Assigned {
			q = q.Where("escalated_to IS NOT NULL")
		} else {
			q = q.Where("escalated_to IS NULL")
		}
	}
	if f.AssignedTo != "" {
		q = q.Where("escalated_to = ?", f.AssignedTo)
	}
	return q
}

// CreateEscalation inserts a conversation. Missing timestamps default to now (UTC).
func CreateEscalation(ctx context.Context, db *gorm.DB, e *domain.EscalatedConversation) error {
	now := time.Now().UTC()
	if e.EscalatedAt.IsZero() {
		e.EscalatedAt = now
	}
	if e.Status == "" {
		e.Status = domain.StatusEscalated
	}
	return db.WithContext(ctx).Create(e).Error
}

// ListOpenEscalationsPage returns one page of the open queue in triage order.
// Use CountOpenEscalations with the same filter for pagination metadata.
func ListOpenEscalationsPage(ctx context.Context, db *gorm.DB, f EscalationFilter, offset, limit int) ([]domain.EscalatedConversation, error) {
	var out []domain.EscalatedConversation
	err := openQueue(ctx, db, f).
		Order(queueOrder).
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountOpenEscalations returns the number of open conversations matching f.
func CountOpenEscalations(ctx context.Context, db *gorm.DB, f EscalationFilter) (int64, error) {
	var total int64
	err := openQueue(ctx, db, f).Count(&total).Error
	return total, err
}

// GetEscalation fetches a conversation by id regardless of status.
func GetEscalation(ctx context.Context, db *gorm.DB, id string) (*domain.EscalatedConversation, error) {
	var e domain.EscalatedConversation
	if err := db.WithContext(ctx).Where("id = ?", id).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// GetOpenEscalation fetches a conversation that is still in the queue.
func GetOpenEscalation(ctx context.Context, db *gorm.DB, id string) (*domain.EscalatedConversation, error) {
	var e domain.EscalatedConversation
	if err := openQueue(ctx, db, EscalationFilter{}).Where("id = ?", id).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// UpdateOpenEscalation applies fields to an open conversation. It returns
// ErrNotFound when the id is unknown or the conversation has left the queue,
// so two racing mutations cannot both succeed.
func UpdateOpenEscalation(ctx context.Context, db *gorm.DB, id string, fields map[string]any) error {
	if _, ok := fields["updated_at"]; !ok {
		fields["updated_at"] = time.Now().UTC()
	}
	res := db.WithContext(ctx).
		Model(&domain.EscalatedConversation{}).
		Where("id = ? AND status IN ?", id, domain.OpenStatuses).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SummarizeOpenEscalations aggregates the whole open queue, ignoring any
// list filters. Every known priority is present in ByPriority.
func SummarizeOpenEscalations(ctx context.Context, db *gorm.DB) (domain.EscalationSummary, error) {
	sum := domain.EscalationSummary{ByPriority: make(map[domain.Priority]int64, len(domain.Priorities))}
	for _, p := range domain.Priorities {
		sum.ByPriority[p] = 0
	}

	var rows []struct {
		Priority domain.Priority
		N        int64
	}
	if err := openQueue(ctx, db, EscalationFilter{}).
		Select("priority, COUNT(*) AS n").
		Group("priority").
		Scan(&rows).Error; err != nil {
		return domain.EscalationSummary{}, err
	}
	for _, r := range rows {
		sum.Total += r.N
		if r.Priority.IsValid() {
			sum.ByPriority[r.Priority] = r.N
		}
	}

	unassigned := false
	n, err := CountOpenEscalations(ctx, db, EscalationFilter{Assigned: &unassigned})
	if err != nil {
		return domain.EscalationSummary{}, err
	}
	sum.Unassigned = n
	return sum, nil
}
