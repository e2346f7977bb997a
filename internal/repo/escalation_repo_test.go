package repo

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-support-desk/internal/domain"
)

var base = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func addEscalation(t *testing.T, db *gorm.DB, id string, p domain.Priority, hoursAgo int, to *string, st domain.EscalationStatus) {
	t.Helper()
	e := &domain.EscalatedConversation{
		ID: id, Priority: p, Status: st, EscalatedTo: to,
		EscalatedAt: base.Add(-time.Duration(hoursAgo) * time.Hour),
	}
	if err := CreateEscalation(context.Background(), db, e); err != nil {
		t.Fatalf("seed %s: %v", id, err)
	}
}

func idsOf(list []domain.EscalatedConversation) string {
	out := make([]string, len(list))
	for i, e := range list {
		out[i] = e.ID
	}
	return fmt.Sprint(out)
}

func newQueueDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := newTestDB(t, &domain.EscalatedConversation{}, &domain.TeamMember{})
	u1 := "user-001"
	addEscalation(t, db, "low-old", domain.PriorityLow, 48, nil, domain.StatusEscalated)
	addEscalation(t, db, "urgent-new", domain.PriorityUrgent, 1, nil, domain.StatusEscalated)
	addEscalation(t, db, "urgent-old", domain.PriorityUrgent, 5, &u1, domain.StatusReassigned)
	addEscalation(t, db, "high", domain.PriorityHigh, 2, &u1, domain.StatusEscalated)
	addEscalation(t, db, "weird", "mystery", 100, nil, domain.StatusEscalated)
	addEscalation(t, db, "done", domain.PriorityUrgent, 9, nil, domain.StatusResolved)
	addEscalation(t, db, "mine", domain.PriorityNormal, 3, &u1, domain.StatusTakenOver)
	return db
}

func TestCreateEscalation_Defaults(t *testing.T) {
	db := newTestDB(t, &domain.EscalatedConversation{})
	e := &domain.EscalatedConversation{ID: "x", Priority: domain.PriorityLow}
	if err := CreateEscalation(context.Background(), db, e); err != nil {
		t.Fatalf("CreateEscalation: %v", err)
	}
	if e.Status != domain.StatusEscalated || e.EscalatedAt.IsZero() {
		t.Fatalf("defaults not applied: %+v", e)
	}
}

func TestListOpenEscalationsPage_OrderAndOpenOnly(t *testing.T) {
	db := newQueueDB(t)
	ctx := context.Background()

	got, err := ListOpenEscalationsPage(ctx, db, EscalationFilter{}, 0, 20)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	// unknown priority ranks with low; older first within a rank
	if want := "[urgent-old urgent-new high weird low-old]"; idsOf(got) != want {
		t.Fatalf("order = %s; want %s", idsOf(got), want)
	}

	page2, err := ListOpenEscalationsPage(ctx, db, EscalationFilter{}, 2, 2)
	if err != nil || idsOf(page2) != "[high weird]" {
		t.Fatalf("page 2 = %s (%v)", idsOf(page2), err)
	}

	n, err := CountOpenEscalations(ctx, db, EscalationFilter{})
	if err != nil || n != 5 {
		t.Fatalf("count = %d (%v); want 5", n, err)
	}
}

func TestListOpenEscalationsPage_Filters(t *testing.T) {
	db := newQueueDB(t)
	ctx := context.Background()
	yes, no := true, false

	cases := []struct {
		f    EscalationFilter
		want string
	}{
		{EscalationFilter{Priority: domain.PriorityUrgent}, "[urgent-old urgent-new]"},
		{EscalationFilter{Assigned: &yes}, "[urgent-old high]"},
		{EscalationFilter{Assigned: &no}, "[urgent-new weird low-old]"},
		{EscalationFilter{AssignedTo: "user-001"}, "[urgent-old high]"},
		{EscalationFilter{AssignedTo: "user-001", Priority: domain.PriorityHigh}, "[high]"},
		{EscalationFilter{Priority: domain.PriorityNormal}, "[]"},
	}
	for _, tc := range cases {
		got, err := ListOpenEscalationsPage(ctx, db, tc.f, 0, 20)
		if err != nil {
			t.Fatalf("List(%+v): %v", tc.f, err)
		}
		if idsOf(got) != tc.want {
			t.Fatalf("List(%+v) = %s; want %s", tc.f, idsOf(got), tc.want)
		}
		n, _ := CountOpenEscalations(ctx, db, tc.f)
		if int(n) != len(got) {
			t.Fatalf("Count(%+v) = %d; want %d", tc.f, n, len(got))
		}
	}
}

func TestGetEscalation_AndOpenVariant(t *testing.T) {
	db := newQueueDB(t)
	ctx := context.Background()

	if e, err := GetEscalation(ctx, db, "done"); err != nil || e.Status != domain.StatusResolved {
		t.Fatalf("GetEscalation(done) = %+v, %v", e, err)
	}
	if _, err := GetOpenEscalation(ctx, db, "done"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("resolved conversation must not be open, err=%v", err)
	}
	if _, err := GetEscalation(ctx, db, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing: err=%v", err)
	}
	if e, err := GetOpenEscalation(ctx, db, "high"); err != nil || e.ID != "high" {
		t.Fatalf("GetOpenEscalation(high) = %+v, %v", e, err)
	}
}

func TestUpdateOpenEscalation(t *testing.T) {
	db := newQueueDB(t)
	ctx := context.Background()

	if err := UpdateOpenEscalation(ctx, db, "urgent-new", map[string]any{
		"status": domain.StatusResolved, "resolution": "fixed",
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	e, _ := GetEscalation(ctx, db, "urgent-new")
	if e.Status != domain.StatusResolved || e.Resolution == nil || *e.Resolution != "fixed" {
		t.Fatalf("after update: %+v", e)
	}
	if e.UpdatedAt.IsZero() {
		t.Fatalf("updated_at not bumped")
	}

	// second mutation on a closed conversation loses
	if err := UpdateOpenEscalation(ctx, db, "urgent-new", map[string]any{"status": domain.StatusTakenOver}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("closed: err=%v", err)
	}
	if err := UpdateOpenEscalation(ctx, db, "ghost", map[string]any{"status": domain.StatusResolved}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ghost: err=%v", err)
	}
}

func TestSummarizeOpenEscalations(t *testing.T) {
	db := newQueueDB(t)
	sum, err := SummarizeOpenEscalations(context.Background(), db)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if sum.Total != 5 || sum.Unassigned != 3 {
		t.Fatalf("summary = %+v", sum)
	}
	want := map[domain.Priority]int64{domain.PriorityUrgent: 2, domain.PriorityHigh: 1, domain.PriorityNormal: 0, domain.PriorityLow: 1}
	for p, n := range want {
		if sum.ByPriority[p] != n {
			t.Fatalf("byPriority[%s] = %d; want %d", p, sum.ByPriority[p], n)
		}
	}
	if len(sum.ByPriority) != 4 {
		t.Fatalf("unknown priorities must not appear: %v", sum.ByPriority)
	}
}

func TestSummarizeOpenEscalations_NoTable(t *testing.T) {
	db := newTestDB(t)
	if _, err := SummarizeOpenEscalations(context.Background(), db); err == nil {
		t.Fatalf("expected error without table")
	}
}
