// Package cli provides the supportctl command-line interface: FAQ search and
// reading with a local recently-viewed list, and the escalation queue of a
// support desk server.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tbourn/go-support-desk/internal/catalog"
	"github.com/tbourn/go-support-desk/internal/config"
	"github.com/tbourn/go-support-desk/internal/history"
	"github.com/tbourn/go-support-desk/internal/kb"
	"github.com/tbourn/go-support-desk/internal/kvstore"
	"github.com/tbourn/go-support-desk/internal/search"
	"github.com/tbourn/go-support-desk/internal/supportclient"
	"github.com/tbourn/go-support-desk/internal/sysutil"
	"github.com/tbourn/go-support-desk/internal/triage"
)

// Version is set at build time.
var Version = "dev"

// Remote is the support desk API as supportctl uses it.
type Remote interface {
	triage.Remote
	kb.FeedbackNotifier
	RecordView(ctx context.Context, faqID string) error
}

// App carries the dependencies shared by every command. Fields left nil are
// built from the environment before the first command runs.
type App struct {
	Config  config.ClientConfig
	Log     zerolog.Logger
	Catalog *catalog.Catalog
	Store   kvstore.Store
	Remote  Remote

	// ClientID identifies this install to the server. Loaded from Store.
	ClientID string

	ready bool
}

type globalFlags struct {
	verbose bool
	apiURL  string
	userID  string
}

// setup fills the missing dependencies from configuration. Flags win over
// the environment.
func (a *App) setup(ctx context.Context, fl globalFlags) error {
	if a.ready {
		return nil
	}
	if a.Catalog == nil || a.Store == nil || a.Remote == nil {
		cfg, err := config.LoadClient()
		if err != nil {
			return err
		}
		a.Config = cfg
		a.Log = sysutil.NewLogger(os.Stderr, true, "")
	}
	a.Config.APIURL = strings.TrimRight(sysutil.FirstNonEmpty(fl.apiURL, a.Config.APIURL), "/")
	a.Config.UserID = strings.TrimSpace(sysutil.FirstNonEmpty(fl.userID, a.Config.UserID))

	level := a.Config.LogLevel
	if fl.verbose {
		level = "debug"
	}
	sysutil.SetLogLevel(level)

	if a.Catalog == nil {
		cat, err := catalog.LoadFile(a.Config.CatalogPath)
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
		a.Catalog = cat
	}
	if a.Store == nil {
		switch a.Config.HistoryBackend {
		case "memory":
			a.Store = kvstore.NewMemoryStore()
		default:
			fs, err := kvstore.NewFileStore(a.Config.Home)
			if err != nil {
				return err
			}
			a.Store = fs
		}
	}
	if a.ClientID == "" {
		id, err := loadClientID(ctx, a.Store)
		if err != nil {
			return err
		}
		a.ClientID = id
	}
	if a.Remote == nil {
		opts := []supportclient.Option{
			supportclient.WithTimeout(a.Config.Timeout),
			supportclient.WithClientID(a.ClientID),
		}
		if a.Config.UserID != "" {
			opts = append(opts, supportclient.WithUserID(a.Config.UserID))
		}
		a.Remote = supportclient.New(a.Config.APIURL, opts...)
	}
	a.ready = true
	return nil
}

func (a *App) history() *history.History {
	return history.New(a.Store, a.Catalog, history.WithCap(a.Config.HistoryCap), history.WithLogger(a.Log))
}

// knowledgeBase returns a disclosure controller over the local catalog that
// records views in the local history and forwards feedback to the server.
func (a *App) knowledgeBase(maxItems int) *kb.Controller {
	return kb.New(search.New(a.Catalog),
		kb.WithViews(a.history()),
		kb.WithPopular(a.Catalog),
		kb.WithNotifier(a.Remote),
		kb.WithLogger(a.Log),
		kb.WithMaxItems(maxItems),
	)
}

func (a *App) queue(maxItems int) *triage.Controller {
	return triage.NewController(a.Remote, triage.WithLogger(a.Log), triage.WithMaxItems(maxItems))
}

// NewRootCmd builds the supportctl command tree over app.
func NewRootCmd(app *App) *cobra.Command {
	var fl globalFlags

	root := &cobra.Command{
		Use:   "supportctl",
		Short: "Support desk knowledge base and escalation queue",
		Long: `supportctl searches the support FAQ catalog and works the escalation queue
of a support desk server.

FAQ commands run against the local catalog and keep a recently-viewed list
under SUPPORTCTL_HOME. Queue commands talk to SUPPORT_API_URL as
SUPPORT_USER_ID.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" {
				return nil
			}
			return app.setup(cmd.Context(), fl)
		},
	}
	root.PersistentFlags().BoolVarP(&fl.verbose, "verbose", "v", false, "debug logging on stderr")
	root.PersistentFlags().StringVar(&fl.apiURL, "api-url", "", "support desk API base URL (overrides SUPPORT_API_URL)")
	root.PersistentFlags().StringVar(&fl.userID, "user", "", "acting team member id (overrides SUPPORT_USER_ID)")

	root.AddCommand(newFAQCmd(app), newQueueCmd(app))
	return root
}

// Execute runs supportctl and returns the process exit code.
func Execute() int {
	app := &App{}
	root := NewRootCmd(app)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
