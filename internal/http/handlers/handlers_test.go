package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-support-desk/internal/domain"
	"github.com/tbourn/go-support-desk/internal/repo"
	"github.com/tbourn/go-support-desk/internal/search"
	"github.com/tbourn/go-support-desk/internal/services"
)

// ---- stubs ----

type stubKB struct {
	search     func(ctx context.Context, q string, cat domain.FAQCategory, limit int) ([]search.Match, error)
	item       func(ctx context.Context, id string) (*services.FAQDetail, error)
	popular    func(ctx context.Context, limit int) ([]domain.FAQItem, error)
	recent     func(ctx context.Context, clientID string, limit int) []domain.FAQItem
	recordView func(ctx context.Context, clientID, id string) error
}

func (s stubKB) Search(ctx context.Context, q string, cat domain.FAQCategory, limit int) ([]search.Match, error) {
	return s.search(ctx, q, cat, limit)
}
func (stubKB) Categories() []domain.FAQCategoryInfo {
	return []domain.FAQCategoryInfo{{ID: "billing", Label: "Billing"}}
}
func (s stubKB) Item(ctx context.Context, id string) (*services.FAQDetail, error) {
	return s.item(ctx, id)
}
func (s stubKB) Popular(ctx context.Context, limit int) ([]domain.FAQItem, error) {
	return s.popular(ctx, limit)
}
func (s stubKB) Recent(ctx context.Context, clientID string, limit int) []domain.FAQItem {
	return s.recent(ctx, clientID, limit)
}
func (s stubKB) RecordView(ctx context.Context, clientID, id string) error {
	return s.recordView(ctx, clientID, id)
}

type stubFB struct {
	fn func(ctx context.Context, clientID, faqID string, isHelpful bool) error
}

func (s stubFB) Leave(ctx context.Context, clientID, faqID string, isHelpful bool) error {
	return s.fn(ctx, clientID, faqID, isHelpful)
}

type stubEsc struct {
	list     func(ctx context.Context, f repo.EscalationFilter, page, limit int) (*services.EscalationPage, error)
	stats    func(ctx context.Context) (int64, *time.Time, error)
	get      func(ctx context.Context, id string) (*domain.EscalatedConversation, error)
	assign   func(ctx context.Context, id, memberID string) (*domain.EscalatedConversation, error)
	takeOver func(ctx context.Context, id, agentID string) error
	resolve  func(ctx context.Context, id, resolution string) error
	reassign func(ctx context.Context, id, assignee string) error
}

func (s stubEsc) List(ctx context.Context, f repo.EscalationFilter, page, limit int) (*services.EscalationPage, error) {
	return s.list(ctx, f, page, limit)
}
func (s stubEsc) Stats(ctx context.Context) (int64, *time.Time, error) {
	if s.stats == nil {
		return 0, nil, context.Canceled
	}
	return s.stats(ctx)
}
func (s stubEsc) Get(ctx context.Context, id string) (*domain.EscalatedConversation, error) {
	return s.get(ctx, id)
}
func (s stubEsc) Assign(ctx context.Context, id, memberID string) (*domain.EscalatedConversation, error) {
	return s.assign(ctx, id, memberID)
}
func (s stubEsc) TakeOver(ctx context.Context, id, agentID string) error {
	return s.takeOver(ctx, id, agentID)
}
func (s stubEsc) Resolve(ctx context.Context, id, resolution string) error {
	return s.resolve(ctx, id, resolution)
}
func (s stubEsc) Reassign(ctx context.Context, id, assignee string) error {
	return s.reassign(ctx, id, assignee)
}

// memIdem is an in-memory IdempotencyStore.
type memIdem struct {
	mu   sync.Mutex
	recs map[string]domain.Idempotency
}

func newMemIdem() *memIdem { return &memIdem{recs: map[string]domain.Idempotency{}} }

func (m *memIdem) Lookup(_ context.Context, userID, resourceID, key string, _ time.Time) (*domain.Idempotency, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, found := m.recs[userID+"|"+resourceID+"|"+key]
	if !found {
		return nil, repo.ErrNotFound
	}
	return &rec, nil
}

func (m *memIdem) Remember(_ context.Context, userID, resourceID, key, action string, status int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs[userID+"|"+resourceID+"|"+key] = domain.Idempotency{UserID: userID, ResourceID: resourceID, Key: key, Action: action, Status: status}
	return nil
}

// ---- helpers ----

func send(r http.Handler, method, target, body string, hdr map[string]string) *httptest.ResponseRecorder {
	var rdr *bytes.Buffer
	if body != "" {
		rdr = bytes.NewBufferString(body)
	} else {
		rdr = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, target, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeErr(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var er ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
		t.Fatalf("error body not JSON: %v (%s)", err, w.Body.String())
	}
	if er.Success {
		t.Fatalf("error body must carry success=false: %s", w.Body.String())
	}
	return er
}

func newRouter(h *Handlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/support/faqs", h.SearchFAQs)
	r.GET("/support/faqs/categories", h.ListFAQCategories)
	r.GET("/support/faqs/popular", h.PopularFAQs)
	r.GET("/support/faqs/recent", h.RecentFAQs)
	r.GET("/support/faqs/:id", h.GetFAQ)
	r.POST("/support/faqs/:id/view", h.RecordFAQView)
	r.POST("/support/faq-feedback", h.LeaveFeedback)
	r.GET("/admin/support/escalations", h.ListEscalations)
	r.PATCH("/admin/support/escalations", h.AssignEscalation)
	r.POST("/admin/support/escalations/:id/take-over", h.TakeOverEscalation)
	r.POST("/support/escalations/:id/resolve", h.ResolveEscalation)
	r.POST("/support/escalations/:id/reassign", h.ReassignEscalation)
	return r
}
