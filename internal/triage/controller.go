package triage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tbourn/go-support-desk/internal/domain"
)

// ErrPending is returned when a mutation is requested for a conversation
// that already has one in flight.
var ErrPending = errors.New("triage: mutation already in progress")

// Remote is the escalation service the controller talks to.
type Remote interface {
	ListEscalations(ctx context.Context) ([]domain.EscalatedConversation, error)
	TakeOver(ctx context.Context, id string) error
	Resolve(ctx context.Context, id, resolution string) error
	Reassign(ctx context.Context, id, assignee string) error
}

// Counts feeds the queue header badges. They ignore filters.
type Counts struct {
	Total  int
	Urgent int
	High   int
}

// Controller holds the local queue and reconciles remote mutations into it.
// It is safe for concurrent use; remote calls run without the lock held.
type Controller struct {
	remote     Remote
	log        zerolog.Logger
	now        func() time.Time
	onTakeOver func(id string)

	mu       sync.Mutex
	convs    []domain.EscalatedConversation
	filters  Filters
	sort     SortSpec
	maxItems int
	pending  map[string]struct{}
	errMsg   string
	fallback bool
}

type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(l zerolog.Logger) Option { return func(c *Controller) { c.log = l } }

// WithClock replaces time.Now for the fallback seed.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithOnTakeOver registers a callback run after a successful take-over.
func WithOnTakeOver(fn func(id string)) Option { return func(c *Controller) { c.onTakeOver = fn } }

// WithInitial preloads the queue instead of waiting for Refresh.
func WithInitial(list []domain.EscalatedConversation) Option {
	return func(c *Controller) {
		c.convs = append([]domain.EscalatedConversation(nil), list...)
	}
}

// WithMaxItems caps the derived view.
func WithMaxItems(n int) Option { return func(c *Controller) { c.maxItems = n } }

// NewController returns a controller sorted by DefaultSort with no filters.
func NewController(remote Remote, opts ...Option) *Controller {
	c := &Controller{
		remote:  remote,
		log:     zerolog.Nop(),
		now:     time.Now,
		sort:    DefaultSort,
		pending: make(map[string]struct{}),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Refresh reloads the queue. When the service fails the demo queue from
// SeedConversations is shown instead and the failure is returned.
func (c *Controller) Refresh(ctx context.Context) error {
	list, err := c.remote.ListEscalations(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.log.Warn().Err(err).Msg("escalation list unavailable, showing demo queue")
		c.convs = SeedConversations(c.now())
		c.fallback = true
		return fmt.Errorf("list escalations: %w", err)
	}
	c.convs = append([]domain.EscalatedConversation(nil), list...)
	c.fallback = false
	return nil
}

// UsingFallback reports whether the queue holds demo data.
func (c *Controller) UsingFallback() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fallback
}

// TakeOver claims id. On success the conversation leaves the queue and the
// take-over callback runs; on failure the queue is left as it was.
func (c *Controller) TakeOver(ctx context.Context, id string) error {
	err := c.mutate(ctx, id, "take over conversation", func(ctx context.Context) error {
		return c.remote.TakeOver(ctx, id)
	}, true)
	if err == nil && c.onTakeOver != nil {
		c.onTakeOver(id)
	}
	return err
}

// Resolve closes id with a resolution note. Success removes it from the
// queue.
func (c *Controller) Resolve(ctx context.Context, id, resolution string) error {
	return c.mutate(ctx, id, "resolve escalation", func(ctx context.Context) error {
		return c.remote.Resolve(ctx, id, resolution)
	}, true)
}

// Reassign hands id to assignee. The conversation stays in the queue.
func (c *Controller) Reassign(ctx context.Context, id, assignee string) error {
	return c.mutate(ctx, id, "reassign escalation", func(ctx context.Context) error {
		return c.remote.Reassign(ctx, id, assignee)
	}, false)
}

func (c *Controller) mutate(ctx context.Context, id, action string, call func(context.Context) error, removeOnSuccess bool) error {
	c.mu.Lock()
	if _, busy := c.pending[id]; busy {
		c.mu.Unlock()
		return ErrPending
	}
	c.pending[id] = struct{}{}
	c.mu.Unlock()

	err := call(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, id)
	if err != nil {
		err = fmt.Errorf("failed to %s: %w", action, err)
		c.errMsg = err.Error()
		c.log.Warn().Err(err).Str("conversation_id", id).Msg("escalation mutation failed")
		return err
	}
	if removeOnSuccess {
		c.remove(id)
	}
	c.errMsg = ""
	return nil
}

// remove drops id if still present; callers hold c.mu.
func (c *Controller) remove(id string) {
	for i := range c.convs {
		if c.convs[i].ID == id {
			c.convs = append(c.convs[:i:i], c.convs[i+1:]...)
			return
		}
	}
}

// View returns the filtered, sorted and capped queue.
func (c *Controller) View() []domain.EscalatedConversation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return DeriveView(c.convs, c.filters, c.sort, c.maxItems)
}

// Conversations returns the unfiltered queue in fetch order.
func (c *Controller) Conversations() []domain.EscalatedConversation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.EscalatedConversation(nil), c.convs...)
}

// SetFilters replaces the filters applied by View.
func (c *Controller) SetFilters(f Filters) {
	c.mu.Lock()
	c.filters = f
	c.mu.Unlock()
}

// Filters returns the current filters.
func (c *Controller) Filters() Filters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters
}

// SetSort replaces the sort order applied by View.
func (c *Controller) SetSort(s SortSpec) {
	c.mu.Lock()
	c.sort = s
	c.mu.Unlock()
}

// ToggleSort applies SortSpec.Toggle and returns the new spec.
func (c *Controller) ToggleSort(by SortKey) SortSpec {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sort = c.sort.Toggle(by)
	return c.sort
}

// Sort returns the current sort order.
func (c *Controller) Sort() SortSpec {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sort
}

// SetMaxItems caps the length of View. n <= 0 removes the cap.
func (c *Controller) SetMaxItems(n int) {
	c.mu.Lock()
	c.maxItems = n
	c.mu.Unlock()
}

// Pending reports whether id has a mutation in flight.
func (c *Controller) Pending(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pending[id]
	return ok
}

// Error returns the message of the last failed mutation, or "".
func (c *Controller) Error() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

// DismissError clears the message returned by Error.
func (c *Controller) DismissError() {
	c.mu.Lock()
	c.errMsg = ""
	c.mu.Unlock()
}

// Counts tallies the whole queue by priority, ignoring filters and the cap.
func (c *Controller) Counts() Counts {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := Counts{Total: len(c.convs)}
	for _, cv := range c.convs {
		switch cv.Priority {
		case domain.PriorityUrgent:
			n.Urgent++
		case domain.PriorityHigh:
			n.High++
		}
	}
	return n
}
