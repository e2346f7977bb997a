package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/tbourn/go-support-desk/internal/domain"
	"github.com/tbourn/go-support-desk/internal/kvstore"
)

func TestKVStore_NamespacedRoundTrip(t *testing.T) {
	db := newTestDB(t, &domain.KVEntry{})
	ctx := context.Background()
	a := NewKVStore(db, "client:a")
	b := NewKVStore(db, "client:b")

	if _, err := a.Get(ctx, "k"); !errors.Is(err, kvstore.ErrNotFound) {
		t.Fatalf("empty get err = %v", err)
	}
	if err := a.Put(ctx, "k", []byte("one")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := a.Put(ctx, "k", []byte("two")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err := a.Get(ctx, "k")
	if err != nil || string(got) != "two" {
		t.Fatalf("get = %q (%v)", got, err)
	}
	if _, err := b.Get(ctx, "k"); !errors.Is(err, kvstore.ErrNotFound) {
		t.Fatalf("namespaces leak: %v", err)
	}

	var n int64
	db.Model(&domain.KVEntry{}).Count(&n)
	if n != 1 {
		t.Fatalf("rows = %d; want 1", n)
	}
}

func TestKVStore_NoTable(t *testing.T) {
	s := NewKVStore(newTestDB(t), "ns")
	if _, err := s.Get(context.Background(), "k"); err == nil || errors.Is(err, kvstore.ErrNotFound) {
		t.Fatalf("expected raw db error, got %v", err)
	}
	if err := s.Put(context.Background(), "k", []byte("v")); err == nil {
		t.Fatalf("expected put error")
	}
}

func TestFAQViews_IncrementAndCounts(t *testing.T) {
	db := newTestDB(t, &domain.FAQView{})
	ctx := context.Background()
	for _, id := range []string{"gs-1", "gs-1", "gs-2", "gs-1"} {
		if err := IncrementFAQView(ctx, db, id); err != nil {
			t.Fatalf("increment %s: %v", id, err)
		}
	}
	counts, err := FAQViewCounts(ctx, db)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if counts["gs-1"] != 3 || counts["gs-2"] != 1 || len(counts) != 2 {
		t.Fatalf("counts = %v", counts)
	}
}

func TestFAQViews_NoTable(t *testing.T) {
	db := newTestDB(t)
	if err := IncrementFAQView(context.Background(), db, "x"); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := FAQViewCounts(context.Background(), db); err == nil {
		t.Fatalf("expected error")
	}
}
