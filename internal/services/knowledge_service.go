// Package services – KnowledgeService
//
// KnowledgeService serves the FAQ catalog over the ranked search index,
// resolves item details with their related articles, and keeps two kinds of
// view data: a per-client recently-viewed list (history package over the
// configured key-value backend) and an aggregate view counter in the
// database that feeds the popular list.
package services

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-support-desk/internal/catalog"
	"github.com/tbourn/go-support-desk/internal/domain"
	"github.com/tbourn/go-support-desk/internal/history"
	"github.com/tbourn/go-support-desk/internal/kvstore"
	"github.com/tbourn/go-support-desk/internal/repo"
	"github.com/tbourn/go-support-desk/internal/search"
)

// StoreFactory returns the key-value store holding one client's state.
type StoreFactory func(clientID string) kvstore.Store

// FAQDetail is an item with its resolved related articles and the verdicts
// recorded on the server.
type FAQDetail struct {
	Item     domain.FAQItem     `json:"item"`
	Related  []domain.FAQItem   `json:"related"`
	Feedback repo.FeedbackTally `json:"feedback"`
	Views    int64              `json:"views"`
}

// KnowledgeService answers knowledge-base reads and records views.
type KnowledgeService struct {
	DB      *gorm.DB
	Catalog *catalog.Catalog
	Index   search.Index
	Stores  StoreFactory
	// HistoryCap bounds each client's recently-viewed list.
	HistoryCap int
	Log        zerolog.Logger
}

var _ history.PopularSource = (*KnowledgeService)(nil)

// NewKnowledgeService wires a service over cat with a default index and an
// in-memory store per client.
func NewKnowledgeService(db *gorm.DB, cat *catalog.Catalog) *KnowledgeService {
	mem := kvstore.NewMemoryStore()
	return &KnowledgeService{
		DB:         db,
		Catalog:    cat,
		Index:      search.New(cat),
		Stores:     func(id string) kvstore.Store { return kvstore.WithPrefix(mem, id+":") },
		HistoryCap: history.DefaultCap,
		Log:        zerolog.Nop(),
	}
}

func (s *KnowledgeService) tracer() trace.Tracer { return otel.Tracer("services/KnowledgeService") }

// Search ranks the catalog against query inside category ("" = all).
// A blank query browses the category; a category the catalog does not
// define matches nothing. limit <= 0 returns every match.
func (s *KnowledgeService) Search(ctx context.Context, query string, category domain.FAQCategory, limit int) ([]search.Match, error) {
	_, span := s.tracer().Start(ctx, "Search",
		trace.WithAttributes(
			attribute.String("query", query),
			attribute.String("category", string(category)),
		),
	)
	defer span.End()

	if category != "" && !s.Catalog.HasCategory(category) {
		span.SetAttributes(attribute.Bool("category.unknown", true))
		return []search.Match{}, nil
	}
	mode := "query"
	if strings.TrimSpace(query) == "" {
		mode = "browse"
	}
	faqSearches.WithLabelValues(mode).Inc()

	out := s.Index.Search(query, category)
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	span.SetAttributes(attribute.Int("results", len(out)))
	return out, nil
}

// Categories lists the catalog sections in display order.
func (s *KnowledgeService) Categories() []domain.FAQCategoryInfo {
	return s.Catalog.Categories()
}

// Item returns one catalog item with its related articles (one level deep),
// its feedback tally and its recorded views.
func (s *KnowledgeService) Item(ctx context.Context, id string) (*FAQDetail, error) {
	ctx, span := s.tracer().Start(ctx, "Item", trace.WithAttributes(attribute.String("faq.id", id)))
	defer span.End()

	it, ok := s.Catalog.Item(id)
	if !ok {
		return nil, fail(span, ErrFAQNotFound)
	}
	tally, err := repo.CountFAQFeedback(ctx, s.DB, id)
	if err != nil {
		return nil, fail(span, err)
	}
	views, err := repo.FAQViewCounts(ctx, s.DB)
	if err != nil {
		return nil, fail(span, err)
	}
	return &FAQDetail{Item: it, Related: s.Catalog.Related(id), Feedback: tally, Views: views[id]}, nil
}

// Popular ranks items by catalog ViewCount plus views recorded on this
// server, highest first; ties keep catalog order. The returned items carry
// the combined count in ViewCount.
func (s *KnowledgeService) Popular(ctx context.Context, limit int) ([]domain.FAQItem, error) {
	ctx, span := s.tracer().Start(ctx, "Popular", trace.WithAttributes(attribute.Int("limit", limit)))
	defer span.End()

	views, err := repo.FAQViewCounts(ctx, s.DB)
	if err != nil {
		return nil, fail(span, err)
	}
	items := s.Catalog.Items()
	for i := range items {
		items[i].ViewCount += int(views[items[i].ID])
	}
	sort.SliceStable(items, func(a, b int) bool { return items[a].ViewCount > items[b].ViewCount })
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items, nil
}

func (s *KnowledgeService) history(clientID string) *history.History {
	return history.New(s.Stores(clientID), s.Catalog, history.WithCap(s.HistoryCap), history.WithLogger(s.Log))
}

// Recent returns the client's recently viewed items, most recent first.
// Anonymous callers have no history.
func (s *KnowledgeService) Recent(ctx context.Context, clientID string, limit int) []domain.FAQItem {
	ctx, span := s.tracer().Start(ctx, "Recent", trace.WithAttributes(attribute.String("client.id", clientID)))
	defer span.End()
	if clientID == "" {
		return []domain.FAQItem{}
	}
	return s.history(clientID).RecentlyViewed(ctx, limit)
}

// RecordView adds id to the client's history and bumps its aggregate
// counter. An empty clientID only bumps the counter. History write failures
// are logged by the history package; a counter failure is returned.
func (s *KnowledgeService) RecordView(ctx context.Context, clientID, id string) error {
	ctx, span := s.tracer().Start(ctx, "RecordView",
		trace.WithAttributes(attribute.String("client.id", clientID), attribute.String("faq.id", id)))
	defer span.End()

	if _, ok := s.Catalog.Item(id); !ok {
		return fail(span, ErrFAQNotFound)
	}
	if clientID != "" {
		s.history(clientID).RecordView(ctx, id)
	}
	return fail(span, repo.IncrementFAQView(ctx, s.DB, id))
}
