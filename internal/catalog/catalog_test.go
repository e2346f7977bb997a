package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tbourn/go-support-desk/internal/domain"
)

func TestDefault_LoadsEmbeddedCatalog(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if got := len(c.Categories()); got != 5 {
		t.Fatalf("categories = %d; want 5", got)
	}
	if got := len(c.Items()); got < 25 {
		t.Fatalf("items = %d; want at least 25", got)
	}
	for _, it := range c.Items() {
		if !c.HasCategory(it.Category) {
			t.Fatalf("item %s has unknown category %q", it.ID, it.Category)
		}
	}
	if first := c.Items()[0]; first.ID != "gs-1" {
		t.Fatalf("first item = %s; want gs-1", first.ID)
	}
}

func TestLoad_Validation(t *testing.T) {
	cases := map[string]string{
		"unknown category": `
categories: [{id: a, label: A}]
items: [{id: x, question: Q?, answer: A, category: b}]`,
		"duplicate item": `
categories: [{id: a, label: A}]
items:
  - {id: x, question: Q?, answer: A, category: a}
  - {id: x, question: Q2?, answer: A, category: a}`,
		"empty question": `
categories: [{id: a, label: A}]
items: [{id: x, question: "", answer: A, category: a}]`,
		"duplicate category": `
categories: [{id: a, label: A}, {id: a, label: B}]
items: []`,
	}
	for name, doc := range cases {
		if _, err := Load(strings.NewReader(doc)); !errors.Is(err, ErrInvalidCatalog) {
			t.Fatalf("%s: want ErrInvalidCatalog, got %v", name, err)
		}
	}

	if _, err := Load(strings.NewReader("categories: [")); err == nil {
		t.Fatalf("expected decode error")
	}
	if _, err := Load(strings.NewReader("bogus: 1")); err == nil {
		t.Fatalf("expected unknown field error")
	}
}

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := New(
		[]domain.FAQCategoryInfo{{ID: "a", Label: "A"}, {ID: "b", Label: "B"}, {ID: "empty", Label: "E"}},
		[]domain.FAQItem{
			{ID: "1", Question: "one", Category: "a", ViewCount: 10, RelatedArticles: []string{"2", "missing", "3"}},
			{ID: "2", Question: "two", Category: "b", ViewCount: 50, RelatedArticles: []string{"1"}},
			{ID: "3", Question: "three", Category: "a", ViewCount: 50},
			{ID: "4", Question: "four", Category: "b"},
		},
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestLookups(t *testing.T) {
	c := testCatalog(t)

	if it, ok := c.Item("3"); !ok || it.Question != "three" {
		t.Fatalf("Item(3) = %+v, %v", it, ok)
	}
	if _, ok := c.Item("nope"); ok {
		t.Fatalf("Item(nope) should miss")
	}
	if cat, ok := c.Category("b"); !ok || cat.Label != "B" {
		t.Fatalf("Category(b) = %+v, %v", cat, ok)
	}
	if c.HasCategory("zzz") {
		t.Fatalf("HasCategory(zzz) should be false")
	}

	got := c.ByCategory("a")
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "3" {
		t.Fatalf("ByCategory(a) = %+v", got)
	}
	if got := c.ByCategory("empty"); len(got) != 0 {
		t.Fatalf("ByCategory(empty) = %+v", got)
	}

	rel := c.Related("1")
	if len(rel) != 2 || rel[0].ID != "2" || rel[1].ID != "3" {
		t.Fatalf("Related(1) = %+v", rel)
	}
	// cycle 1 -> 2 -> 1 is resolved one level only
	if rel := c.Related("2"); len(rel) != 1 || rel[0].ID != "1" {
		t.Fatalf("Related(2) = %+v", rel)
	}
	if c.Related("nope") != nil {
		t.Fatalf("Related(nope) should be nil")
	}
}

func TestItems_ReturnsCopy(t *testing.T) {
	c := testCatalog(t)
	items := c.Items()
	items[0].Question = "mutated"
	if it, _ := c.Item("1"); it.Question != "one" {
		t.Fatalf("catalog was mutated through Items()")
	}
}

func TestAccessors_CopySlices(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	want, _ := c.Item("gs-1")
	kw, rel := strings.Join(want.Keywords, ","), strings.Join(want.RelatedArticles, ",")
	if kw == "" || rel == "" {
		t.Fatalf("gs-1 needs keywords and related articles: %+v", want)
	}

	it, _ := c.Item("gs-1")
	it.Keywords[0], it.RelatedArticles[0] = "mutated", "mutated"
	items := c.Items()
	items[0].Keywords[0], items[0].RelatedArticles[0] = "mutated", "mutated"
	for _, cat := range c.ByCategory("getting-started") {
		if len(cat.Keywords) > 0 {
			cat.Keywords[0] = "mutated"
		}
	}

	got, _ := c.Item("gs-1")
	if strings.Join(got.Keywords, ",") != kw || strings.Join(got.RelatedArticles, ",") != rel {
		t.Fatalf("catalog mutated through a returned item: %+v", got)
	}
	if related := c.Related("gs-1"); len(related) == 0 || related[0].ID != want.RelatedArticles[0] {
		t.Fatalf("related = %+v", related)
	}
}

func TestPopular_OrderAndLimit(t *testing.T) {
	c := testCatalog(t)
	got, err := c.Popular(context.Background(), 3)
	if err != nil {
		t.Fatalf("Popular: %v", err)
	}
	ids := []string{got[0].ID, got[1].ID, got[2].ID}
	if strings.Join(ids, ",") != "2,3,1" {
		t.Fatalf("Popular order = %v; want [2 3 1]", ids)
	}
	all, _ := c.Popular(context.Background(), 0)
	if len(all) != 4 {
		t.Fatalf("Popular(0) = %d items; want 4", len(all))
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "faq.yaml")
	doc := "categories: [{id: a, label: A}]\nitems: [{id: x, question: Q?, answer: A, category: a}]\n"
	if err := os.WriteFile(p, []byte(doc), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := LoadFile(p)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(c.Items()) != 1 {
		t.Fatalf("items = %d", len(c.Items()))
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if c, err := LoadFile(""); err != nil || len(c.Items()) == 0 {
		t.Fatalf("LoadFile(\"\") should fall back to the default: %v", err)
	}
}
