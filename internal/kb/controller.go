// Package kb drives the knowledge-base reading experience: the current query
// and category, the ranked result list, which answers are expanded, keyboard
// focus, and one-shot helpfulness feedback.
package kb

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tbourn/go-support-desk/internal/domain"
	"github.com/tbourn/go-support-desk/internal/history"
	"github.com/tbourn/go-support-desk/internal/search"
)

// NoFocus is the focused index when no result has keyboard focus.
const NoFocus = -1

// FeedbackNotifier forwards feedback to a remote collector.
type FeedbackNotifier interface {
	NotifyFeedback(ctx context.Context, faqID string, isHelpful bool) error
}

// ViewRecorder is the part of the view history the controller needs.
type ViewRecorder interface {
	RecordView(ctx context.Context, id string)
	RecentlyViewed(ctx context.Context, limit int) []domain.FAQItem
}

// State is a snapshot of the controller for rendering.
type State struct {
	Query    string
	Category domain.FAQCategory
	Results  []search.Match
	Open     map[string]bool
	Focused  int
	Feedback map[string]domain.FeedbackValue
}

// Controller is safe for concurrent use.
type Controller struct {
	index    search.Index
	views    ViewRecorder
	popular  history.PopularSource
	notifier FeedbackNotifier
	log      zerolog.Logger
	timeout  time.Duration

	mu       sync.Mutex
	maxItems int
	query    string
	category domain.FAQCategory
	results  []search.Match
	open     map[string]bool
	focused  int
	feedback map[string]domain.FeedbackValue

	inflight sync.WaitGroup
}

type Option func(*Controller)

// WithViews enables view tracking and RecentlyViewed.
func WithViews(v ViewRecorder) Option { return func(c *Controller) { c.views = v } }

// WithPopular sets the popularity source used by Popular.
func WithPopular(p history.PopularSource) Option { return func(c *Controller) { c.popular = p } }

// WithNotifier sets where feedback is forwarded.
func WithNotifier(n FeedbackNotifier) Option { return func(c *Controller) { c.notifier = n } }

// WithLogger sets the controller logger.
func WithLogger(l zerolog.Logger) Option { return func(c *Controller) { c.log = l } }

// WithMaxItems caps the result list (0 = no cap).
func WithMaxItems(n int) Option {
	return func(c *Controller) {
		if n >= 0 {
			c.maxItems = n
		}
	}
}

// WithNotifyTimeout bounds each feedback notification.
func WithNotifyTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// New returns a controller in browse mode over every category.
func New(index search.Index, opts ...Option) *Controller {
	c := &Controller{
		index:    index,
		log:      zerolog.Nop(),
		timeout:  10 * time.Second,
		open:     make(map[string]bool),
		focused:  NoFocus,
		feedback: make(map[string]domain.FeedbackValue),
	}
	for _, o := range opts {
		o(c)
	}
	c.recompute()
	return c
}

// recompute reruns the search and resets focus; callers hold c.mu (or own c).
func (c *Controller) recompute() {
	res := c.index.Search(c.query, c.category)
	if c.maxItems > 0 && len(res) > c.maxItems {
		res = res[:c.maxItems]
	}
	c.results = res
	c.focused = NoFocus
}

// SetQuery replaces the query. Expanded answers and feedback are kept.
func (c *Controller) SetQuery(q string) []search.Match {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query = q
	c.recompute()
	return append([]search.Match(nil), c.results...)
}

// SetCategory restricts results to one category ("" for all).
func (c *Controller) SetCategory(cat domain.FAQCategory) []search.Match {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.category = cat
	c.recompute()
	return append([]search.Match(nil), c.results...)
}

// SetMaxItems changes the result cap and recomputes.
func (c *Controller) SetMaxItems(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n < 0 {
		n = 0
	}
	c.maxItems = n
	c.recompute()
}

// Results returns the current ranked list.
func (c *Controller) Results() []search.Match {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]search.Match(nil), c.results...)
}

// Toggle expands or collapses id and reports the new state. Expanding
// records a view.
func (c *Controller) Toggle(ctx context.Context, id string) bool {
	c.mu.Lock()
	opened := !c.open[id]
	if opened {
		c.open[id] = true
	} else {
		delete(c.open, id)
	}
	c.mu.Unlock()

	if opened && c.views != nil {
		c.views.RecordView(ctx, id)
	}
	return opened
}

// IsOpen reports whether id is expanded.
func (c *Controller) IsOpen(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open[id]
}

// MoveFocus shifts focus by delta, clamped to [NoFocus, len(results)-1].
func (c *Controller) MoveFocus(delta int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	f := c.focused + delta
	if f < NoFocus {
		f = NoFocus
	}
	if last := len(c.results) - 1; f > last {
		f = last
	}
	c.focused = f
	return f
}

// ResetFocus clears keyboard focus.
func (c *Controller) ResetFocus() {
	c.mu.Lock()
	c.focused = NoFocus
	c.mu.Unlock()
}

// Focused returns the focused index, or NoFocus.
func (c *Controller) Focused() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.focused
}

// ActivateFocused toggles the focused result. It reports false when nothing
// in range has focus.
func (c *Controller) ActivateFocused(ctx context.Context) bool {
	c.mu.Lock()
	f := c.focused
	if f < 0 || f >= len(c.results) {
		c.mu.Unlock()
		return false
	}
	id := c.results[f].FAQ.ID
	c.mu.Unlock()

	c.Toggle(ctx, id)
	return true
}

// SubmitFeedback records the first verdict for id and reports whether it was
// accepted. The verdict is forwarded asynchronously; delivery failures are
// logged and never undo the local state.
func (c *Controller) SubmitFeedback(id string, helpful bool) bool {
	c.mu.Lock()
	if _, done := c.feedback[id]; done {
		c.mu.Unlock()
		return false
	}
	c.feedback[id] = domain.FeedbackFromBool(helpful)
	c.mu.Unlock()

	if c.notifier == nil {
		return true
	}
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()
		if err := c.notifier.NotifyFeedback(ctx, id, helpful); err != nil {
			c.log.Debug().Err(err).Str("faq_id", id).Msg("feedback notification failed")
		}
	}()
	return true
}

// Feedback returns the recorded verdict for id, if any.
func (c *Controller) Feedback(id string) (domain.FeedbackValue, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.feedback[id]
	return v, ok
}

// Wait blocks until every pending feedback notification has finished.
func (c *Controller) Wait() { c.inflight.Wait() }

// RecentlyViewed returns up to limit recently expanded items.
func (c *Controller) RecentlyViewed(ctx context.Context, limit int) []domain.FAQItem {
	if c.views == nil {
		return nil
	}
	return c.views.RecentlyViewed(ctx, limit)
}

// Popular returns up to limit items from the popularity source.
func (c *Controller) Popular(ctx context.Context, limit int) ([]domain.FAQItem, error) {
	if c.popular == nil {
		return nil, nil
	}
	return c.popular.Popular(ctx, limit)
}

// Snapshot returns a copy of the full state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	open := make(map[string]bool, len(c.open))
	for k, v := range c.open {
		open[k] = v
	}
	fb := make(map[string]domain.FeedbackValue, len(c.feedback))
	for k, v := range c.feedback {
		fb[k] = v
	}
	return State{
		Query:    c.query,
		Category: c.category,
		Results:  append([]search.Match(nil), c.results...),
		Open:     open,
		Focused:  c.focused,
		Feedback: fb,
	}
}
