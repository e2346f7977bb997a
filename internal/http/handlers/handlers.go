// Package handlers holds the Gin handlers of the support desk API.
//
// Handlers are transport-thin: they parse input, call a service, and map
// the service's sentinel errors to ErrorResponse codes. Reads answer with
// the {"success": true, "data": ...} envelope the dashboard and supportctl
// expect.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-support-desk/internal/domain"
	"github.com/tbourn/go-support-desk/internal/http/middleware"
	"github.com/tbourn/go-support-desk/internal/repo"
	"github.com/tbourn/go-support-desk/internal/search"
	"github.com/tbourn/go-support-desk/internal/services"
)

// KnowledgeService answers knowledge-base reads and records views.
type KnowledgeService interface {
	Search(ctx context.Context, query string, category domain.FAQCategory, limit int) ([]search.Match, error)
	Categories() []domain.FAQCategoryInfo
	Item(ctx context.Context, id string) (*services.FAQDetail, error)
	Popular(ctx context.Context, limit int) ([]domain.FAQItem, error)
	Recent(ctx context.Context, clientID string, limit int) []domain.FAQItem
	RecordView(ctx context.Context, clientID, id string) error
}

// FeedbackService records helpfulness verdicts.
type FeedbackService interface {
	Leave(ctx context.Context, clientID, faqID string, isHelpful bool) error
}

// EscalationService owns the open queue and its mutations.
type EscalationService interface {
	List(ctx context.Context, f repo.EscalationFilter, page, limit int) (*services.EscalationPage, error)
	Stats(ctx context.Context) (int64, *time.Time, error)
	Get(ctx context.Context, id string) (*domain.EscalatedConversation, error)
	Assign(ctx context.Context, id, memberID string) (*domain.EscalatedConversation, error)
	TakeOver(ctx context.Context, id, agentID string) error
	Resolve(ctx context.Context, id, resolution string) error
	Reassign(ctx context.Context, id, assignee string) error
}

// IdempotencyStore remembers completed mutations per (user, escalation, key).
type IdempotencyStore interface {
	Lookup(ctx context.Context, userID, resourceID, key string, now time.Time) (*domain.Idempotency, error)
	Remember(ctx context.Context, userID, resourceID, key, action string, status int) error
}

// Handlers groups the API endpoints.
type Handlers struct {
	kb   KnowledgeService
	fb   FeedbackService
	esc  EscalationService
	idem IdempotencyStore
}

// Option customizes Handlers.
type Option func(*Handlers)

// WithIdempotency enables Idempotency-Key replay on escalation mutations.
func WithIdempotency(s IdempotencyStore) Option { return func(h *Handlers) { h.idem = s } }

// New binds the handlers to their services.
func New(kb KnowledgeService, fb FeedbackService, esc EscalationService, opts ...Option) *Handlers {
	h := &Handlers{kb: kb, fb: fb, esc: esc}
	for _, o := range opts {
		o(h)
	}
	return h
}

// DataResponse is the success envelope for reads.
type DataResponse struct {
	Success bool `json:"success" example:"true"`
	Data    any  `json:"data"`
}

// SuccessResponse is the body of mutations that return no data.
type SuccessResponse struct {
	Success bool `json:"success" example:"true"`
}

func userID(c *gin.Context) string   { return middleware.UserID(c) }
func clientID(c *gin.Context) string { return middleware.ClientID(c) }

// requireClient answers 400 for anonymous callers of per-client endpoints.
func requireClient(c *gin.Context) (string, bool) {
	id := clientID(c)
	if id == "" {
		fail(c, http.StatusBadRequest, ErrCodeMissingClientID, "X-Client-ID or X-User-ID is required")
		return "", false
	}
	return id, true
}
