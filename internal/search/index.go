// Package search ranks knowledge-base items against a free-text query.
//
// Ranking is tiered rather than scored: every query token is checked against
// an item's question (title tier), its keywords (keyword tier) and its answer
// (content tier), and the item lands in the best tier any token reaches.
// Output is title ++ keyword ++ content, each tier in catalog order.
//
//   - No logging in the library (callers decide how/what to log)
//   - Immutable after construction (safe for concurrent use)
//   - Deterministic output (stable catalog order inside a tier)
package search

import (
	"strings"
	"unicode/utf8"

	"github.com/tbourn/go-support-desk/internal/domain"
)

// MatchType names the tier an item matched in.
type MatchType string

const (
	MatchNone    MatchType = "none"
	MatchTitle   MatchType = "title"
	MatchKeyword MatchType = "keyword"
	MatchContent MatchType = "content"
)

// Tier scores. Higher is better; browse mode results score 0.
const (
	ScoreTitle   = 3
	ScoreKeyword = 2
	ScoreContent = 1
)

// Match is one ranked item.
type Match struct {
	FAQ       domain.FAQItem `json:"faq"`
	MatchType MatchType      `json:"matchType"`
	Score     int            `json:"score"`
}

// Index is the minimal interface implemented by the ranked search.
type Index interface {
	Search(query string, category domain.FAQCategory) []Match
}

// Source is the catalog view the index is built from.
type Source interface {
	Items() []domain.FAQItem
	Categories() []domain.FAQCategoryInfo
}

// ----------------------------------------------------------------------------
// Options

type Option func(*config)

type config struct {
	minTokenRunes int
	maxResults    int
}

func defaultConfig() config {
	return config{
		minTokenRunes: 3,
		maxResults:    0,
	}
}

// WithMinTokenRunes sets the minimum rune length of a query token.
// Shorter tokens are dropped before matching.
func WithMinTokenRunes(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.minTokenRunes = n
		}
	}
}

// WithMaxResults caps the number of matches returned (0 = no cap).
func WithMaxResults(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxResults = n
		}
	}
}

// ----------------------------------------------------------------------------
// Implementation

type doc struct {
	item     domain.FAQItem
	question string
	answer   string
	keywords map[string]struct{}
}

type index struct {
	cfg        config
	docs       []doc
	categories map[domain.FAQCategory]struct{}
}

// New builds an Index over a snapshot of src.
func New(src Source, opts ...Option) Index {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	items := src.Items()
	docs := make([]doc, 0, len(items))
	for _, it := range items {
		kw := make(map[string]struct{}, len(it.Keywords))
		for _, k := range it.Keywords {
			kw[strings.ToLower(k)] = struct{}{}
		}
		docs = append(docs, doc{
			item:     it,
			question: strings.ToLower(it.Question),
			answer:   strings.ToLower(it.Answer),
			keywords: kw,
		})
	}
	cats := make(map[domain.FAQCategory]struct{})
	for _, c := range src.Categories() {
		cats[c.ID] = struct{}{}
	}
	return &index{cfg: cfg, docs: docs, categories: cats}
}

// Search ranks the items of category (all items when empty) against query.
//
// A blank query is browse mode: every candidate in catalog order with
// MatchNone. An unknown category yields no results. A query whose tokens are
// all too short matches nothing.
func (i *index) Search(query string, category domain.FAQCategory) []Match {
	if category != "" {
		if _, ok := i.categories[category]; !ok {
			return []Match{}
		}
	}

	if strings.TrimSpace(query) == "" {
		out := make([]Match, 0, len(i.docs))
		for _, d := range i.docs {
			if category != "" && d.item.Category != category {
				continue
			}
			out = append(out, Match{FAQ: d.item, MatchType: MatchNone, Score: 0})
		}
		return i.capped(out)
	}

	tokens := i.tokenize(query)
	if len(tokens) == 0 {
		return []Match{}
	}

	var title, keyword, content []Match
	for _, d := range i.docs {
		if category != "" && d.item.Category != category {
			continue
		}
		switch tierOf(d, tokens) {
		case MatchTitle:
			title = append(title, Match{FAQ: d.item, MatchType: MatchTitle, Score: ScoreTitle})
		case MatchKeyword:
			keyword = append(keyword, Match{FAQ: d.item, MatchType: MatchKeyword, Score: ScoreKeyword})
		case MatchContent:
			content = append(content, Match{FAQ: d.item, MatchType: MatchContent, Score: ScoreContent})
		}
	}

	out := make([]Match, 0, len(title)+len(keyword)+len(content))
	out = append(out, title...)
	out = append(out, keyword...)
	out = append(out, content...)
	return i.capped(out)
}

// ----------------------------------------------------------------------------
// Helpers

// tierOf returns the best tier any token reaches for d, or "" when none does.
func tierOf(d doc, tokens []string) MatchType {
	for _, t := range tokens {
		if strings.Contains(d.question, t) {
			return MatchTitle
		}
	}
	for _, t := range tokens {
		if _, ok := d.keywords[t]; ok {
			return MatchKeyword
		}
	}
	for _, t := range tokens {
		if strings.Contains(d.answer, t) {
			return MatchContent
		}
	}
	return ""
}

func (i *index) tokenize(q string) []string {
	words := strings.Fields(strings.ToLower(q))
	out := words[:0]
	for _, w := range words {
		if utf8.RuneCountInString(w) >= i.cfg.minTokenRunes {
			out = append(out, w)
		}
	}
	return out
}

func (i *index) capped(ms []Match) []Match {
	if i.cfg.maxResults > 0 && len(ms) > i.cfg.maxResults {
		return ms[:i.cfg.maxResults]
	}
	return ms
}
