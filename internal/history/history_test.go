package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tbourn/go-support-desk/internal/domain"
	"github.com/tbourn/go-support-desk/internal/kvstore"
)

// ---------- fakes ----------
type fakeCatalog map[string]domain.FAQItem

func (c fakeCatalog) Item(id string) (domain.FAQItem, bool) {
	it, ok := c[id]
	return it, ok
}

func catalogOf(ids ...string) fakeCatalog {
	c := fakeCatalog{}
	for _, id := range ids {
		c[id] = domain.FAQItem{ID: id, Question: "q " + id}
	}
	return c
}

type brokenStore struct{ getErr, putErr error }

func (b brokenStore) Get(context.Context, string) ([]byte, error) { return nil, b.getErr }
func (b brokenStore) Put(context.Context, string, []byte) error   { return b.putErr }

type tick struct{ t time.Time }

func (c *tick) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func entryIDs(es []domain.ViewHistoryEntry) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.FAQID
	}
	return out
}

func same(a, b []string) bool {
	return fmt.Sprint(a) == fmt.Sprint(b)
}

// ---------- tests ----------
func TestRecordView_UpsertMovesToFront(t *testing.T) {
	clock := &tick{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	h := New(kvstore.NewMemoryStore(), catalogOf("a", "b", "c"), WithClock(clock.now))
	ctx := context.Background()

	h.RecordView(ctx, "a")
	h.RecordView(ctx, "b")
	h.RecordView(ctx, "c")
	first := h.Entries(ctx)
	h.RecordView(ctx, "a")

	got := h.Entries(ctx)
	if !same(entryIDs(got), []string{"a", "c", "b"}) {
		t.Fatalf("order = %v", entryIDs(got))
	}
	var oldA time.Time
	for _, e := range first {
		if e.FAQID == "a" {
			oldA = e.ViewedAt
		}
	}
	if !got[0].ViewedAt.After(oldA) {
		t.Fatalf("timestamp not refreshed: %v <= %v", got[0].ViewedAt, oldA)
	}
	if len(got) != 3 {
		t.Fatalf("duplicate entry created: %v", entryIDs(got))
	}
}

func TestRecordView_CapTruncatesOldest(t *testing.T) {
	h := New(kvstore.NewMemoryStore(), catalogOf())
	ctx := context.Background()
	for i := 0; i < 21; i++ {
		h.RecordView(ctx, fmt.Sprintf("f%02d", i))
	}
	got := h.Entries(ctx)
	if len(got) != DefaultCap {
		t.Fatalf("len = %d; want %d", len(got), DefaultCap)
	}
	if got[0].FAQID != "f20" {
		t.Fatalf("newest = %s; want f20", got[0].FAQID)
	}
	for _, e := range got {
		if e.FAQID == "f00" {
			t.Fatalf("oldest entry should have been evicted")
		}
	}
}

func TestWithCap(t *testing.T) {
	h := New(kvstore.NewMemoryStore(), catalogOf(), WithCap(2), WithCap(0))
	if h.Cap() != 2 {
		t.Fatalf("Cap = %d", h.Cap())
	}
	ctx := context.Background()
	h.RecordView(ctx, "x")
	h.RecordView(ctx, "y")
	h.RecordView(ctx, "z")
	if !same(entryIDs(h.Entries(ctx)), []string{"z", "y"}) {
		t.Fatalf("entries = %v", entryIDs(h.Entries(ctx)))
	}
}

func TestRecentlyViewed_SkipsUnknownAndLimits(t *testing.T) {
	h := New(kvstore.NewMemoryStore(), catalogOf("a", "c", "d"))
	ctx := context.Background()
	for _, id := range []string{"a", "gone", "c", "d"} {
		h.RecordView(ctx, id)
	}
	got := h.RecentlyViewed(ctx, 0)
	ids := make([]string, len(got))
	for i, it := range got {
		ids[i] = it.ID
	}
	if !same(ids, []string{"d", "c", "a"}) {
		t.Fatalf("recent = %v", ids)
	}
	if got := h.RecentlyViewed(ctx, 2); len(got) != 2 || got[0].ID != "d" {
		t.Fatalf("limit not honored: %+v", got)
	}
}

func TestStorageFailures_Degrade(t *testing.T) {
	ctx := context.Background()

	h := New(brokenStore{getErr: errors.New("disk gone"), putErr: errors.New("disk gone")}, catalogOf("a"))
	h.RecordView(ctx, "a") // must not panic
	if got := h.Entries(ctx); len(got) != 0 {
		t.Fatalf("unavailable store should read as empty, got %v", got)
	}
	if got := h.RecentlyViewed(ctx, 5); len(got) != 0 {
		t.Fatalf("unavailable store should read as empty, got %v", got)
	}

	store := kvstore.NewMemoryStore()
	_ = store.Put(ctx, StorageKey, []byte("{not json"))
	h2 := New(store, catalogOf("a"))
	if got := h2.Entries(ctx); len(got) != 0 {
		t.Fatalf("unparsable value should read as empty, got %v", got)
	}
	// and the next write replaces it
	h2.RecordView(ctx, "a")
	if got := h2.Entries(ctx); !same(entryIDs(got), []string{"a"}) {
		t.Fatalf("entries = %v", entryIDs(got))
	}
}

func TestPersistedFormat(t *testing.T) {
	store := kvstore.NewMemoryStore()
	ctx := context.Background()
	fixed := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	h := New(store, catalogOf("a"), WithClock(func() time.Time { return fixed }))
	h.RecordView(ctx, "a")

	b, err := store.Get(ctx, StorageKey)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	var raw []map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("stored value is not a JSON list: %v", err)
	}
	if raw[0]["faqId"] != "a" || raw[0]["viewedAt"] != "2026-03-04T05:06:07Z" {
		t.Fatalf("unexpected wire form: %s", b)
	}
}

func TestLegacyIDList(t *testing.T) {
	store := kvstore.NewMemoryStore()
	ctx := context.Background()
	_ = store.Put(ctx, StorageKey, []byte(`["b","a","b",""]`))
	h := New(store, catalogOf("a", "b"))
	if got := entryIDs(h.Entries(ctx)); !same(got, []string{"b", "a"}) {
		t.Fatalf("entries = %v", got)
	}
}
