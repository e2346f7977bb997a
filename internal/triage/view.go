// Package triage orders, filters and mutates the queue of conversations
// escalated to human support.
//
// The view over the queue is a pure function of (conversations, filters,
// sort, cap); the Controller owns the mutable state and reconciles the
// outcome of remote mutations into it.
package triage

import (
	"sort"
	"strings"

	"github.com/tbourn/go-support-desk/internal/domain"
)

// All disables a priority or topic filter.
const All = "all"

// Filters narrows the queue. Every non-empty field must match.
type Filters struct {
	Search   string
	Priority string
	Topic    string
}

// Matches reports whether c passes f. Search is a case-insensitive substring
// match on the partner name, the partner business name, or the escalation
// reason. Priority and Topic compare exactly unless empty or All.
func Matches(c domain.EscalatedConversation, f Filters) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !containsFold(c.PartnerName, q) &&
			!strings.Contains(strings.ToLower(c.Partner.BusinessName), q) &&
			!containsFold(c.EscalationReason, q) {
			return false
		}
	}
	if f.Priority != "" && f.Priority != All && string(c.Priority) != f.Priority {
		return false
	}
	if f.Topic != "" && f.Topic != All && string(c.Topic) != f.Topic {
		return false
	}
	return true
}

func containsFold(s *string, lowerNeedle string) bool {
	return s != nil && strings.Contains(strings.ToLower(*s), lowerNeedle)
}

// SortKey selects the ordering of the queue.
type SortKey string

const (
	SortPriority SortKey = "priority"
	SortTime     SortKey = "time"
	SortMessages SortKey = "messages"
)

// Direction of a sort.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortSpec is the active ordering.
type SortSpec struct {
	By        SortKey
	Direction Direction
}

// DefaultSort is urgent first, oldest first within a priority.
var DefaultSort = SortSpec{By: SortPriority, Direction: Asc}

// Toggle returns the spec after a click on the by column: the same key flips
// direction, a new key starts ascending.
func (s SortSpec) Toggle(by SortKey) SortSpec {
	if s.By == by {
		if s.Direction == Desc {
			return SortSpec{By: by, Direction: Asc}
		}
		return SortSpec{By: by, Direction: Desc}
	}
	return SortSpec{By: by, Direction: Asc}
}

// Compare orders a against b under spec and returns <0, 0 or >0.
//
//   - priority: severity rank, then escalatedAt ascending
//   - time: escalatedAt ascending
//   - messages: message count descending
//
// Desc negates the whole comparison, secondary key included.
func Compare(a, b domain.EscalatedConversation, spec SortSpec) int {
	var cmp int
	switch spec.By {
	case SortTime:
		cmp = a.EscalatedAt.Compare(b.EscalatedAt)
	case SortMessages:
		cmp = b.MessageCount - a.MessageCount
	default:
		cmp = a.Priority.Rank() - b.Priority.Rank()
		if cmp == 0 {
			cmp = a.EscalatedAt.Compare(b.EscalatedAt)
		}
	}
	if spec.Direction == Desc {
		return -cmp
	}
	return cmp
}

// DeriveView filters, stably sorts and truncates list. The input is not
// modified. maxItems <= 0 keeps every match.
func DeriveView(list []domain.EscalatedConversation, f Filters, spec SortSpec, maxItems int) []domain.EscalatedConversation {
	out := make([]domain.EscalatedConversation, 0, len(list))
	for _, c := range list {
		if Matches(c, f) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return Compare(out[i], out[j], spec) < 0 })
	if maxItems > 0 && len(out) > maxItems {
		out = out[:maxItems]
	}
	return out
}
