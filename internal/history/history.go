// Package history keeps a bounded most-recently-viewed list of FAQ items in a
// durable key-value store.
//
// The list is ordered most recent first, holds at most one entry per item,
// and is truncated to a fixed capacity. Storage problems never surface to
// callers: an unreadable list is treated as empty and a failed write is
// logged and dropped.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tbourn/go-support-desk/internal/domain"
	"github.com/tbourn/go-support-desk/internal/kvstore"
)

// StorageKey is the key the list is persisted under.
const StorageKey = "dei_recently_viewed_faqs"

// DefaultCap is the number of entries kept when no capacity is configured.
const DefaultCap = 20

// Resolver maps item ids back to catalog items.
type Resolver interface {
	Item(id string) (domain.FAQItem, bool)
}

// PopularSource ranks items by popularity. It is independent of any single
// client's history.
type PopularSource interface {
	Popular(ctx context.Context, limit int) ([]domain.FAQItem, error)
}

// History is the view history of one client.
type History struct {
	store kvstore.Store
	items Resolver
	cap   int
	now   func() time.Time
	log   zerolog.Logger

	mu sync.Mutex
}

type Option func(*History)

// WithCap overrides DefaultCap. Non-positive values are ignored.
func WithCap(n int) Option {
	return func(h *History) {
		if n > 0 {
			h.cap = n
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(h *History) {
		if now != nil {
			h.now = now
		}
	}
}

// WithLogger sets the logger used for swallowed storage errors.
func WithLogger(l zerolog.Logger) Option {
	return func(h *History) { h.log = l }
}

// New returns a History over store, resolving ids through items.
func New(store kvstore.Store, items Resolver, opts ...Option) *History {
	h := &History{
		store: store,
		items: items,
		cap:   DefaultCap,
		now:   time.Now,
		log:   zerolog.Nop(),
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Cap returns the configured capacity.
func (h *History) Cap() int { return h.cap }

// RecordView moves id to the front of the list with a fresh timestamp,
// inserting it if absent, and truncates the list to capacity.
func (h *History) RecordView(ctx context.Context, id string) {
	if id == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	cur := h.load(ctx)
	next := make([]domain.ViewHistoryEntry, 0, len(cur)+1)
	next = append(next, domain.ViewHistoryEntry{FAQID: id, ViewedAt: h.now().UTC()})
	for _, e := range cur {
		if e.FAQID == id {
			continue
		}
		next = append(next, e)
	}
	if len(next) > h.cap {
		next = next[:h.cap]
	}

	b, err := json.Marshal(next)
	if err != nil {
		h.log.Warn().Err(err).Msg("history: encode failed")
		return
	}
	if err := h.store.Put(ctx, StorageKey, b); err != nil {
		h.log.Warn().Err(err).Str("faq_id", id).Msg("history: write failed")
	}
}

// Entries returns the stored list, most recent first.
func (h *History) Entries(ctx context.Context) []domain.ViewHistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.load(ctx)
}

// RecentlyViewed resolves up to limit entries to catalog items, most recent
// first. Ids the catalog no longer knows are skipped. limit <= 0 means the
// whole list.
func (h *History) RecentlyViewed(ctx context.Context, limit int) []domain.FAQItem {
	entries := h.Entries(ctx)
	out := make([]domain.FAQItem, 0, len(entries))
	for _, e := range entries {
		it, ok := h.items.Item(e.FAQID)
		if !ok {
			continue
		}
		out = append(out, it)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// load reads the list; callers hold h.mu.
func (h *History) load(ctx context.Context) []domain.ViewHistoryEntry {
	b, err := h.store.Get(ctx, StorageKey)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil
	}
	if err != nil {
		h.log.Debug().Err(err).Msg("history: read failed, treating as empty")
		return nil
	}
	entries, ok := decode(b)
	if !ok {
		h.log.Debug().Msg("history: unparsable value, treating as empty")
		return nil
	}
	if len(entries) > h.cap {
		entries = entries[:h.cap]
	}
	return entries
}

// decode accepts the entry list and the older bare id list.
func decode(b []byte) ([]domain.ViewHistoryEntry, bool) {
	var entries []domain.ViewHistoryEntry
	if err := json.Unmarshal(b, &entries); err == nil {
		out := entries[:0]
		seen := make(map[string]struct{}, len(entries))
		for _, e := range entries {
			if e.FAQID == "" {
				continue
			}
			if _, dup := seen[e.FAQID]; dup {
				continue
			}
			seen[e.FAQID] = struct{}{}
			out = append(out, e)
		}
		return out, true
	}
	var ids []string
	if err := json.Unmarshal(b, &ids); err != nil {
		return nil, false
	}
	out := make([]domain.ViewHistoryEntry, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, domain.ViewHistoryEntry{FAQID: id})
	}
	return out, true
}
