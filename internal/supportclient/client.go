// Package supportclient is the JSON HTTP client for the support desk API.
// It implements triage.Remote and kb.FeedbackNotifier.
package supportclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tbourn/go-support-desk/internal/domain"
)

// ErrUnsuccessful is returned when the server answers 2xx but reports
// success=false in the envelope.
var ErrUnsuccessful = errors.New("supportclient: server reported failure")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
	if e.Body != "" {
		msg += " - " + e.Body
	}
	return msg
}

// Client talks to one support desk deployment.
type Client struct {
	base       string
	userID     string
	clientID   string
	httpClient *http.Client
}

type Option func(*Client)

// WithUserID sends X-User-ID on every request.
func WithUserID(id string) Option { return func(c *Client) { c.userID = id } }

// WithClientID sends X-Client-ID on every request. The server keys reader
// history and feedback by it.
func WithClientID(id string) Option { return func(c *Client) { c.clientID = id } }

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// New creates a client for the API rooted at baseURL (for example
// "http://localhost:8080/api"). If baseURL is empty, SUPPORT_API_URL is used,
// falling back to localhost.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = os.Getenv("SUPPORT_API_URL")
	}
	if baseURL == "" {
		baseURL = "http://localhost:8080/api"
	}
	c := &Client{
		base:       strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error,omitempty"`
}

// do sends one request. Mutating methods carry a fresh Idempotency-Key.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rdr)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userID != "" {
		req.Header.Set("X-User-ID", c.userID)
	}
	if c.clientID != "" {
		req.Header.Set("X-Client-ID", c.clientID)
	}
	if method != http.MethodGet {
		req.Header.Set("Idempotency-Key", uuid.NewString())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Method: method, Path: path, Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if out == nil {
			return nil
		}
		return fmt.Errorf("unmarshal response: %w", err)
	}
	if env.Success != nil && !*env.Success {
		if env.Error != "" {
			return fmt.Errorf("%w: %s", ErrUnsuccessful, env.Error)
		}
		return ErrUnsuccessful
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("unmarshal data: %w", err)
		}
	}
	return nil
}

// ListEscalations fetches the open escalation queue.
func (c *Client) ListEscalations(ctx context.Context) ([]domain.EscalatedConversation, error) {
	var list []domain.EscalatedConversation
	if err := c.do(ctx, http.MethodGet, "/admin/support/escalations", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// TakeOver assigns the conversation to the calling agent.
func (c *Client) TakeOver(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/admin/support/escalations/"+url.PathEscape(id)+"/take-over", struct{}{}, nil)
}

// Resolve closes the conversation.
func (c *Client) Resolve(ctx context.Context, id, resolution string) error {
	body := map[string]string{"resolution": resolution}
	return c.do(ctx, http.MethodPost, "/support/escalations/"+url.PathEscape(id)+"/resolve", body, nil)
}

// Reassign hands the conversation to another agent.
func (c *Client) Reassign(ctx context.Context, id, assignee string) error {
	body := map[string]string{"assignee": assignee}
	return c.do(ctx, http.MethodPost, "/support/escalations/"+url.PathEscape(id)+"/reassign", body, nil)
}

// NotifyFeedback reports a helpfulness verdict for an FAQ item.
func (c *Client) NotifyFeedback(ctx context.Context, faqID string, isHelpful bool) error {
	body := struct {
		FAQID     string `json:"faqId"`
		IsHelpful bool   `json:"isHelpful"`
	}{faqID, isHelpful}
	return c.do(ctx, http.MethodPost, "/support/faq-feedback", body, nil)
}

// RecordView reports that an FAQ item was opened.
func (c *Client) RecordView(ctx context.Context, faqID string) error {
	return c.do(ctx, http.MethodPost, "/support/faqs/"+url.PathEscape(faqID)+"/view", struct{}{}, nil)
}
