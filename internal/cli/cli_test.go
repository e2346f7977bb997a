package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tbourn/go-support-desk/internal/catalog"
	"github.com/tbourn/go-support-desk/internal/config"
	"github.com/tbourn/go-support-desk/internal/domain"
	"github.com/tbourn/go-support-desk/internal/kvstore"
)

// ---------- fake remote ----------
type fakeRemote struct {
	mu      sync.Mutex
	list    []domain.EscalatedConversation
	listErr error
	err     error
	calls   []string

	onNotify func()
}

func (f *fakeRemote) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeRemote) ListEscalations(context.Context) ([]domain.EscalatedConversation, error) {
	return f.list, f.listErr
}
func (f *fakeRemote) TakeOver(_ context.Context, id string) error { return f.record("take-over " + id) }
func (f *fakeRemote) Resolve(_ context.Context, id, r string) error {
	return f.record("resolve " + id + " " + r)
}
func (f *fakeRemote) Reassign(_ context.Context, id, a string) error {
	return f.record("reassign " + id + " " + a)
}
func (f *fakeRemote) NotifyFeedback(_ context.Context, id string, helpful bool) error {
	if f.onNotify != nil {
		f.onNotify()
	}
	if helpful {
		return f.record("feedback " + id + " yes")
	}
	return f.record("feedback " + id + " no")
}
func (f *fakeRemote) RecordView(_ context.Context, id string) error { return f.record("view " + id) }

func (f *fakeRemote) snapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func newApp(t *testing.T, remote *fakeRemote) *App {
	t.Helper()
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return &App{
		Config:  config.ClientConfig{HistoryCap: 5, LogLevel: "error"},
		Log:     zerolog.Nop(),
		Catalog: cat,
		Store:   kvstore.NewMemoryStore(),
		Remote:  remote,
	}
}

// run executes one supportctl invocation and returns stdout and stderr.
func run(t *testing.T, app *App, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCmd(app)
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestFAQSearch(t *testing.T) {
	app := newApp(t, &fakeRemote{})

	out, _, err := run(t, app, "faq", "search", "coverage")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	first := strings.SplitN(out, "\n", 2)[0]
	if !strings.Contains(first, "gs-1") || !strings.Contains(first, "[question]") {
		t.Fatalf("top hit = %q", first)
	}

	out, _, _ = run(t, app, "faq", "search", "--category", "billing")
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if !strings.Contains(line, "bi-") {
			t.Fatalf("browse billing leaked %q", line)
		}
	}

	out, errOut, err := run(t, app, "faq", "search", "coverage", "--category", "nope")
	if err != nil || !strings.Contains(out, "No FAQs match.") || !strings.Contains(errOut, `unknown category "nope"`) {
		t.Fatalf("unknown category: err=%v out=%q stderr=%q", err, out, errOut)
	}
}

func TestFAQSearchOpen_RecordsView(t *testing.T) {
	remote := &fakeRemote{}
	app := newApp(t, remote)

	out, _, err := run(t, app, "faq", "search", "coverage", "--open", "1")
	if err != nil {
		t.Fatalf("search --open: %v", err)
	}
	if !strings.Contains(out, "How quickly can members get coverage?\n===") || !strings.Contains(out, "Related:") {
		t.Fatalf("expanded output = %q", out)
	}
	if calls := remote.snapshot(); len(calls) != 1 || calls[0] != "view gs-1" {
		t.Fatalf("remote calls = %v", calls)
	}

	out, _, _ = run(t, app, "faq", "recent")
	if !strings.HasPrefix(out, " 1. gs-1") {
		t.Fatalf("recent = %q", out)
	}

	if _, _, err := run(t, app, "faq", "search", "zzzzzz-nothing", "--open", "1"); err != nil {
		t.Fatalf("no results with --open must not fail: %v", err)
	}
}

func TestFAQSearchOpen_PastTheEnd(t *testing.T) {
	remote := &fakeRemote{}
	app := newApp(t, remote)

	_, _, err := run(t, app, "faq", "search", "coverage", "--open", "99")
	if err == nil || err.Error() != "no result #99" {
		t.Fatalf("--open 99 = %v", err)
	}
	if calls := remote.snapshot(); len(calls) != 0 {
		t.Fatalf("nothing may be opened: %v", calls)
	}
	if out, _, _ := run(t, app, "faq", "recent"); !strings.Contains(out, "Nothing viewed yet.") {
		t.Fatalf("recent = %q", out)
	}
}

func TestFAQOpen(t *testing.T) {
	remote := &fakeRemote{err: errors.New("offline")}
	app := newApp(t, remote)

	out, _, _ := run(t, app, "faq", "recent")
	if !strings.Contains(out, "Nothing viewed yet.") {
		t.Fatalf("empty recent = %q", out)
	}

	// a failing view notification is not an error
	if _, _, err := run(t, app, "faq", "open", "gs-2"); err != nil {
		t.Fatalf("open: %v", err)
	}
	run(t, app, "faq", "open", "gs-3")

	out, _, _ = run(t, app, "faq", "recent", "--limit", "1")
	if lines := strings.Split(strings.TrimSpace(out), "\n"); len(lines) != 1 || !strings.HasPrefix(lines[0], "1. gs-3 ") {
		t.Fatalf("recent = %q", out)
	}

	if _, _, err := run(t, app, "faq", "open", "missing"); err == nil || !strings.Contains(err.Error(), `no FAQ with id "missing"`) {
		t.Fatalf("open missing = %v", err)
	}
}

func TestFAQFeedback_FirstWins(t *testing.T) {
	remote := &fakeRemote{}
	app := newApp(t, remote)

	out, _, err := run(t, app, "faq", "feedback", "gs-1", "--helpful")
	if err != nil || !strings.Contains(out, "Recorded gs-1 as helpful") {
		t.Fatalf("first = %v %q", err, out)
	}
	out, _, err = run(t, app, "faq", "feedback", "gs-1", "--not-helpful")
	if err != nil || !strings.Contains(out, "Already rated gs-1 as helpful") {
		t.Fatalf("second = %v %q", err, out)
	}
	if calls := remote.snapshot(); len(calls) != 1 || calls[0] != "feedback gs-1 yes" {
		t.Fatalf("remote calls = %v", calls)
	}

	// delivery failures keep the local verdict
	remote.err = errors.New("offline")
	if _, _, err := run(t, app, "faq", "feedback", "gs-2", "--not-helpful"); err != nil {
		t.Fatalf("offline feedback: %v", err)
	}
	ledger, err := loadFeedback(context.Background(), app.Store)
	if err != nil || ledger["gs-2"] != domain.FeedbackNotHelpful {
		t.Fatalf("ledger = %v %v", ledger, err)
	}

	for _, args := range [][]string{
		{"faq", "feedback", "gs-3"},
		{"faq", "feedback", "gs-3", "--helpful", "--not-helpful"},
		{"faq", "feedback", "nope", "--helpful"},
	} {
		if _, _, err := run(t, app, args...); err == nil {
			t.Fatalf("%v: want error", args)
		}
	}
}

// putSignal closes saved on the first write of key.
type putSignal struct {
	kvstore.Store
	key   string
	once  sync.Once
	saved chan struct{}
}

func (p *putSignal) Put(ctx context.Context, key string, value []byte) error {
	err := p.Store.Put(ctx, key, value)
	if key == p.key {
		p.once.Do(func() { close(p.saved) })
	}
	return err
}

func TestFAQFeedback_LedgerSavedBeforeDelivery(t *testing.T) {
	remote := &fakeRemote{}
	app := newApp(t, remote)
	store := &putSignal{Store: app.Store, key: feedbackKey, saved: make(chan struct{})}
	app.Store = store

	savedFirst := false
	remote.onNotify = func() {
		select {
		case <-store.saved:
			savedFirst = true
		case <-time.After(2 * time.Second):
		}
	}

	if _, _, err := run(t, app, "faq", "feedback", "gs-4", "--helpful"); err != nil {
		t.Fatalf("feedback: %v", err)
	}
	if !savedFirst {
		t.Fatal("ledger must be saved while the notification is still in flight")
	}
}

func TestFAQFeedback_CorruptLedgerIsReplaced(t *testing.T) {
	app := newApp(t, &fakeRemote{})
	_ = app.Store.Put(context.Background(), feedbackKey, []byte("{not json"))

	if _, _, err := run(t, app, "faq", "feedback", "gs-1", "--helpful"); err != nil {
		t.Fatalf("feedback: %v", err)
	}
	ledger, _ := loadFeedback(context.Background(), app.Store)
	if len(ledger) != 1 || ledger["gs-1"] != domain.FeedbackHelpful {
		t.Fatalf("ledger = %v", ledger)
	}
}

func TestFAQPopularAndCategories(t *testing.T) {
	app := newApp(t, &fakeRemote{})

	out, _, err := run(t, app, "faq", "popular", "-n", "2")
	if err != nil || len(strings.Split(strings.TrimSpace(out), "\n")) != 2 {
		t.Fatalf("popular = %v %q", err, out)
	}

	out, _, _ = run(t, app, "faq", "categories")
	for _, id := range []string{"getting-started", "integration", "billing", "claims", "technical"} {
		if !strings.Contains(out, id) {
			t.Fatalf("categories missing %s: %q", id, out)
		}
	}
}

func TestSetup_FromEnvironmentAndFlags(t *testing.T) {
	t.Setenv("SUPPORT_API_URL", "http://env.example/api")
	t.Setenv("SUPPORT_USER_ID", "user-env")
	t.Setenv("SUPPORTCTL_HOME", t.TempDir())
	t.Setenv("SUPPORTCTL_HISTORY", "memory")
	t.Setenv("CATALOG_PATH", "")

	app := &App{}
	if _, _, err := run(t, app, "faq", "categories", "--api-url", "http://flag.example/api/", "--user", " user-flag "); err != nil {
		t.Fatalf("run: %v", err)
	}
	if app.Config.APIURL != "http://flag.example/api" || app.Config.UserID != "user-flag" {
		t.Fatalf("config = %+v", app.Config)
	}
	if _, ok := app.Store.(*kvstore.MemoryStore); !ok {
		t.Fatalf("store = %T", app.Store)
	}
	if app.Catalog == nil || app.Remote == nil {
		t.Fatal("catalog and remote must be built")
	}

	fileApp := &App{}
	t.Setenv("SUPPORTCTL_HISTORY", "file")
	if _, _, err := run(t, fileApp, "faq", "open", "gs-1", "--api-url", "http://127.0.0.1:1"); err != nil {
		t.Fatalf("open with unreachable server: %v", err)
	}
	if _, ok := fileApp.Store.(*kvstore.FileStore); !ok {
		t.Fatalf("store = %T", fileApp.Store)
	}
	if fileApp.Config.UserID != "user-env" {
		t.Fatalf("user from env = %q", fileApp.Config.UserID)
	}
}

func TestSetup_ClientIDIsStablePerInstall(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Header.Get("X-Client-ID"))
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	t.Setenv("SUPPORT_API_URL", srv.URL)
	t.Setenv("SUPPORT_USER_ID", "")
	t.Setenv("SUPPORTCTL_HISTORY", "file")
	t.Setenv("CATALOG_PATH", "")

	home := t.TempDir()
	t.Setenv("SUPPORTCTL_HOME", home)
	first, second := &App{}, &App{}
	for _, app := range []*App{first, second} {
		if _, _, err := run(t, app, "faq", "open", "gs-1"); err != nil {
			t.Fatalf("open: %v", err)
		}
	}
	if first.ClientID == "" || first.ClientID != second.ClientID {
		t.Fatalf("client ids = %q, %q", first.ClientID, second.ClientID)
	}

	t.Setenv("SUPPORTCTL_HOME", t.TempDir())
	other := &App{}
	if _, _, err := run(t, other, "faq", "open", "gs-1"); err != nil {
		t.Fatalf("open: %v", err)
	}
	if other.ClientID == "" || other.ClientID == first.ClientID {
		t.Fatalf("separate installs share client id %q", other.ClientID)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{first.ClientID, first.ClientID, other.ClientID}
	if strings.Join(seen, ",") != strings.Join(want, ",") {
		t.Fatalf("X-Client-ID sent = %v; want %v", seen, want)
	}
}

func TestLoadClientID(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()

	id, err := loadClientID(ctx, store)
	if err != nil || id == "" {
		t.Fatalf("first load = %q, %v", id, err)
	}
	if again, _ := loadClientID(ctx, store); again != id {
		t.Fatalf("second load = %q; want %q", again, id)
	}

	_ = store.Put(ctx, clientIDKey, []byte("  "))
	if fresh, err := loadClientID(ctx, store); err != nil || fresh == "" || fresh == id {
		t.Fatalf("blank id not replaced: %q, %v", fresh, err)
	}

	if _, err := loadClientID(ctx, brokenStore{}); err == nil {
		t.Fatal("store failure must surface")
	}
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]byte, error) { return nil, errors.New("disk gone") }
func (brokenStore) Put(context.Context, string, []byte) error   { return errors.New("disk gone") }

func TestVersionSkipsSetup(t *testing.T) {
	t.Setenv("SUPPORTCTL_HISTORY", "bogus")
	out, _, err := run(t, &App{}, "--version")
	if err != nil || !strings.Contains(out, Version) {
		t.Fatalf("version = %v %q", err, out)
	}
}

func TestSetup_InvalidConfig(t *testing.T) {
	t.Setenv("SUPPORTCTL_HISTORY", "bogus")
	if _, _, err := run(t, &App{}, "faq", "categories"); err == nil {
		t.Fatal("invalid history backend must fail setup")
	}
}
