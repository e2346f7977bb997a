// Package services – EscalationService
//
// This file implements EscalationService, which owns the open escalation
// queue: listing with filters, pagination and a queue-wide summary, and the
// four mutations that move a conversation through human handling (assign,
// take over, resolve, reassign).
//
// Every mutation is conditional on the conversation still being open, so two
// agents acting on the same conversation cannot both succeed; the loser gets
// ErrEscalationNotFound.
//
// Observability: public methods are OpenTelemetry-instrumented and each
// mutation increments support_escalation_mutations_total.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-support-desk/internal/domain"
	"github.com/tbourn/go-support-desk/internal/repo"
	"github.com/tbourn/go-support-desk/internal/utils"
)

// Mutation action names, used for metrics, idempotency records and logs.
const (
	ActionAssign   = "assign"
	ActionTakeOver = "take-over"
	ActionResolve  = "resolve"
	ActionReassign = "reassign"
)

// EscalationPage is one page of the open queue plus the data the queue
// header needs.
type EscalationPage struct {
	Items   []domain.EscalatedConversation
	Total   int64
	Page    int
	Limit   int
	Summary domain.EscalationSummary
	Team    []domain.TeamMember
}

// TotalPages returns the number of pages for the current limit.
func (p *EscalationPage) TotalPages() int {
	return utils.TotalPages(p.Total, p.Limit)
}

// EscalationService coordinates queue reads and mutations.
type EscalationService struct {
	DB *gorm.DB
	// Now is the clock used for resolved_at; defaults to time.Now.
	Now func() time.Time
	// MaxPageSize caps the limit of List; 0 means 100.
	MaxPageSize int
}

// NewEscalationService constructs an EscalationService with defaults.
func NewEscalationService(db *gorm.DB) *EscalationService {
	return &EscalationService{DB: db, Now: time.Now, MaxPageSize: 100}
}

func (s *EscalationService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func (s *EscalationService) tracer() trace.Tracer { return otel.Tracer("services/EscalationService") }

// List returns one page of the open queue. The summary always covers the
// whole open queue; Total counts only conversations matching f.
func (s *EscalationService) List(ctx context.Context, f repo.EscalationFilter, page, limit int) (*EscalationPage, error) {
	ctx, span := s.tracer().Start(ctx, "List",
		trace.WithAttributes(
			attribute.String("filter.priority", string(f.Priority)),
			attribute.String("filter.assigned_to", f.AssignedTo),
			attribute.Int("page", page),
			attribute.Int("page_size", limit),
		),
	)
	defer span.End()

	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	maxSize := s.MaxPageSize
	if maxSize <= 0 {
		maxSize = 100
	}
	if limit > maxSize {
		limit = maxSize
	}

	out := &EscalationPage{Page: page, Limit: limit, Items: []domain.EscalatedConversation{}}

	total, err := repo.CountOpenEscalations(ctx, s.DB, f)
	if err != nil {
		return nil, fail(span, err)
	}
	out.Total = total
	if total > 0 {
		items, err := repo.ListOpenEscalationsPage(ctx, s.DB, f, (page-1)*limit, limit)
		if err != nil {
			return nil, fail(span, err)
		}
		out.Items = items
	}

	if out.Summary, err = repo.SummarizeOpenEscalations(ctx, s.DB); err != nil {
		return nil, fail(span, err)
	}
	if out.Team, err = repo.ListTeamMembers(ctx, s.DB); err != nil {
		return nil, fail(span, err)
	}

	names := make(map[string]string, len(out.Team))
	for _, m := range out.Team {
		names[m.ID] = m.Name
	}
	for i := range out.Items {
		withAssigneeName(&out.Items[i], names)
	}
	return out, nil
}

// Stats returns the queue validator used for ETags.
func (s *EscalationService) Stats(ctx context.Context) (int64, *time.Time, error) {
	return repo.EscalationsStats(ctx, s.DB)
}

// Get returns one conversation in any status, with its assignee name.
func (s *EscalationService) Get(ctx context.Context, id string) (*domain.EscalatedConversation, error) {
	ctx, span := s.tracer().Start(ctx, "Get", trace.WithAttributes(attribute.String("escalation.id", id)))
	defer span.End()

	if strings.TrimSpace(id) == "" {
		return nil, fail(span, ErrMissingEscalationID)
	}
	e, err := repo.GetEscalation(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, fail(span, ErrEscalationNotFound)
	}
	if err != nil {
		return nil, fail(span, err)
	}
	if e.EscalatedTo != nil {
		names, err := repo.TeamMemberNames(ctx, s.DB, []string{*e.EscalatedTo})
		if err != nil {
			return nil, fail(span, err)
		}
		withAssigneeName(e, names)
	}
	return e, nil
}

// Assign hands an open conversation to a team member without changing its
// status, and returns the updated record.
func (s *EscalationService) Assign(ctx context.Context, id, memberID string) (*domain.EscalatedConversation, error) {
	ctx, span := s.tracer().Start(ctx, "Assign",
		trace.WithAttributes(attribute.String("escalation.id", id), attribute.String("assignee.id", memberID)))
	defer span.End()

	var out *domain.EscalatedConversation
	err := s.mutate(ctx, ActionAssign, id, func(tx *gorm.DB) error {
		memberID = strings.TrimSpace(memberID)
		if memberID == "" {
			return ErrEmptyAssignee
		}
		if _, err := repo.GetOpenEscalation(ctx, tx, id); err != nil {
			return err
		}
		member, err := repo.GetTeamMember(ctx, tx, memberID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrTeamMemberNotFound
			}
			return err
		}
		if err := repo.UpdateOpenEscalation(ctx, tx, id, map[string]any{"escalated_to": member.ID}); err != nil {
			return err
		}
		e, err := repo.GetEscalation(ctx, tx, id)
		if err != nil {
			return err
		}
		e.EscalatedToName = &member.Name
		out = e
		return nil
	})
	if err != nil {
		return nil, fail(span, err)
	}
	return out, nil
}

// TakeOver assigns the conversation to agentID and removes it from the
// open queue.
func (s *EscalationService) TakeOver(ctx context.Context, id, agentID string) error {
	ctx, span := s.tracer().Start(ctx, "TakeOver",
		trace.WithAttributes(attribute.String("escalation.id", id), attribute.String("user.id", agentID)))
	defer span.End()

	return fail(span, s.mutate(ctx, ActionTakeOver, id, func(tx *gorm.DB) error {
		fields := map[string]any{"status": domain.StatusTakenOver}
		if agentID != "" {
			fields["escalated_to"] = agentID
		}
		return repo.UpdateOpenEscalation(ctx, tx, id, fields)
	}))
}

// Resolve closes the conversation with a resolution note.
func (s *EscalationService) Resolve(ctx context.Context, id, resolution string) error {
	ctx, span := s.tracer().Start(ctx, "Resolve", trace.WithAttributes(attribute.String("escalation.id", id)))
	defer span.End()

	return fail(span, s.mutate(ctx, ActionResolve, id, func(tx *gorm.DB) error {
		resolution = strings.TrimSpace(resolution)
		if resolution == "" {
			return ErrEmptyResolution
		}
		return repo.UpdateOpenEscalation(ctx, tx, id, map[string]any{
			"status":      domain.StatusResolved,
			"resolution":  resolution,
			"resolved_at": s.now(),
		})
	}))
}

// Reassign hands the conversation to another team member; it stays open.
func (s *EscalationService) Reassign(ctx context.Context, id, assignee string) error {
	ctx, span := s.tracer().Start(ctx, "Reassign",
		trace.WithAttributes(attribute.String("escalation.id", id), attribute.String("assignee.id", assignee)))
	defer span.End()

	return fail(span, s.mutate(ctx, ActionReassign, id, func(tx *gorm.DB) error {
		assignee = strings.TrimSpace(assignee)
		if assignee == "" {
			return ErrEmptyAssignee
		}
		if _, err := repo.GetTeamMember(ctx, tx, assignee); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrTeamMemberNotFound
			}
			return err
		}
		return repo.UpdateOpenEscalation(ctx, tx, id, map[string]any{
			"status":       domain.StatusReassigned,
			"escalated_to": assignee,
		})
	}))
}

// mutate runs fn in a transaction, maps repository misses to
// ErrEscalationNotFound and records the outcome metric.
func (s *EscalationService) mutate(ctx context.Context, action, id string, fn func(tx *gorm.DB) error) error {
	var err error
	if strings.TrimSpace(id) == "" {
		err = ErrMissingEscalationID
	} else {
		err = s.DB.WithContext(ctx).Transaction(fn)
		if errors.Is(err, repo.ErrNotFound) {
			err = ErrEscalationNotFound
		}
	}
	escalationMutations.WithLabelValues(action, outcomeOf(err)).Inc()
	return err
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrEscalationNotFound), errors.Is(err, ErrTeamMemberNotFound):
		return "not_found"
	case errors.Is(err, ErrMissingEscalationID), errors.Is(err, ErrEmptyAssignee), errors.Is(err, ErrEmptyResolution):
		return "invalid"
	default:
		return "error"
	}
}

func withAssigneeName(e *domain.EscalatedConversation, names map[string]string) {
	if e.EscalatedTo == nil {
		return
	}
	if n, ok := names[*e.EscalatedTo]; ok {
		e.EscalatedToName = &n
	}
}

var expectedErrs = []error{
	ErrMissingEscalationID, ErrEscalationNotFound, ErrEmptyAssignee, ErrTeamMemberNotFound,
	ErrEmptyResolution, ErrFAQNotFound, ErrDuplicateFeedback,
}

// fail marks span as failed for unexpected errors and returns err unchanged.
func fail(span trace.Span, err error) error {
	if err == nil {
		return nil
	}
	for _, e := range expectedErrs {
		if errors.Is(err, e) {
			return err
		}
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
