// Package catalog holds the immutable knowledge-base catalog: the fixed set
// of categories and FAQ items every other component reads from.
//
// A Catalog is built once (from the embedded default or a YAML file) and is
// read-only afterwards, so it is safe for concurrent use without locking.
// Accessors return copies; callers cannot mutate the shared catalog.
package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tbourn/go-support-desk/internal/domain"
)

//go:embed catalog.yaml
var defaultYAML []byte

// ErrInvalidCatalog is wrapped by every validation error returned by Load.
var ErrInvalidCatalog = errors.New("invalid catalog")

type document struct {
	Categories []domain.FAQCategoryInfo `yaml:"categories"`
	Items      []domain.FAQItem         `yaml:"items"`
}

// Catalog is the loaded, validated knowledge base.
type Catalog struct {
	categories []domain.FAQCategoryInfo
	items      []domain.FAQItem
	byID       map[string]int
	byCategory map[domain.FAQCategory][]int
}

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return Load(bytes.NewReader(defaultYAML))
}

// LoadFile reads a YAML catalog from path. An empty path yields Default().
func LoadFile(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes and validates a YAML catalog.
func Load(r io.Reader) (*Catalog, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(doc.Categories, doc.Items)
}

// New validates categories and items and builds a Catalog. Item order is
// preserved and defines the browse order.
//
// Related article ids are not checked: references may dangle or form
// cycles, and are resolved one level deep only.
func New(categories []domain.FAQCategoryInfo, items []domain.FAQItem) (*Catalog, error) {
	c := &Catalog{
		categories: append([]domain.FAQCategoryInfo(nil), categories...),
		items:      append([]domain.FAQItem(nil), items...),
		byID:       make(map[string]int, len(items)),
		byCategory: make(map[domain.FAQCategory][]int, len(categories)),
	}
	for _, cat := range categories {
		if cat.ID == "" {
			return nil, fmt.Errorf("%w: category with empty id", ErrInvalidCatalog)
		}
		if _, dup := c.byCategory[cat.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate category %q", ErrInvalidCatalog, cat.ID)
		}
		c.byCategory[cat.ID] = []int{}
	}
	for i, it := range items {
		if strings.TrimSpace(it.ID) == "" {
			return nil, fmt.Errorf("%w: item %d has empty id", ErrInvalidCatalog, i)
		}
		if strings.TrimSpace(it.Question) == "" {
			return nil, fmt.Errorf("%w: item %q has empty question", ErrInvalidCatalog, it.ID)
		}
		if _, dup := c.byID[it.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate item %q", ErrInvalidCatalog, it.ID)
		}
		idx, ok := c.byCategory[it.Category]
		if !ok {
			return nil, fmt.Errorf("%w: item %q references unknown category %q", ErrInvalidCatalog, it.ID, it.Category)
		}
		c.byID[it.ID] = i
		c.byCategory[it.Category] = append(idx, i)
	}
	return c, nil
}

// Items returns every item in catalog order.
func (c *Catalog) Items() []domain.FAQItem {
	out := make([]domain.FAQItem, len(c.items))
	for i, it := range c.items {
		out[i] = cloneItem(it)
	}
	return out
}

// cloneItem copies the slices of it so callers cannot reach catalog state.
func cloneItem(it domain.FAQItem) domain.FAQItem {
	it.Keywords = slices.Clone(it.Keywords)
	it.RelatedArticles = slices.Clone(it.RelatedArticles)
	return it
}

// Categories returns the categories in display order.
func (c *Catalog) Categories() []domain.FAQCategoryInfo {
	return append([]domain.FAQCategoryInfo(nil), c.categories...)
}

// Item looks up an item by id.
func (c *Catalog) Item(id string) (domain.FAQItem, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.FAQItem{}, false
	}
	return cloneItem(c.items[i]), true
}

// Category looks up category metadata by id.
func (c *Catalog) Category(id domain.FAQCategory) (domain.FAQCategoryInfo, bool) {
	for _, cat := range c.categories {
		if cat.ID == id {
			return cat, true
		}
	}
	return domain.FAQCategoryInfo{}, false
}

// HasCategory reports whether id names a known category.
func (c *Catalog) HasCategory(id domain.FAQCategory) bool {
	_, ok := c.byCategory[id]
	return ok
}

// ByCategory returns the items of one category in catalog order. Unknown
// categories yield an empty slice.
func (c *Catalog) ByCategory(id domain.FAQCategory) []domain.FAQItem {
	idx := c.byCategory[id]
	out := make([]domain.FAQItem, 0, len(idx))
	for _, i := range idx {
		out = append(out, cloneItem(c.items[i]))
	}
	return out
}

// Related resolves the related article ids of item id, one level deep.
// Unknown references are skipped.
func (c *Catalog) Related(id string) []domain.FAQItem {
	it, ok := c.Item(id)
	if !ok {
		return nil
	}
	out := make([]domain.FAQItem, 0, len(it.RelatedArticles))
	for _, rid := range it.RelatedArticles {
		if rel, ok := c.Item(rid); ok {
			out = append(out, rel)
		}
	}
	return out
}

// Popular returns up to limit items ordered by their static ViewCount,
// highest first; ties keep catalog order. limit <= 0 returns every item.
func (c *Catalog) Popular(_ context.Context, limit int) ([]domain.FAQItem, error) {
	out := c.Items()
	sort.SliceStable(out, func(a, b int) bool { return out[a].ViewCount > out[b].ViewCount })
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}
