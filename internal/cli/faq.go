package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tbourn/go-support-desk/internal/domain"
	"github.com/tbourn/go-support-desk/internal/kvstore"
	"github.com/tbourn/go-support-desk/internal/search"
)

// feedbackKey holds this install's verdicts so a second rating of the same
// item is refused across invocations.
const feedbackKey = "faq_feedback"

func newFAQCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "faq",
		Short: "Search and read the FAQ catalog",
	}
	cmd.AddCommand(
		newFAQSearchCmd(app),
		newFAQOpenCmd(app),
		newFAQRecentCmd(app),
		newFAQPopularCmd(app),
		newFAQFeedbackCmd(app),
		newFAQCategoriesCmd(app),
	)
	return cmd
}

func newFAQSearchCmd(app *App) *cobra.Command {
	var (
		category string
		maxItems int
		open     int
	)
	cmd := &cobra.Command{
		Use:   "search [query...]",
		Short: "Rank FAQ items against a query",
		Long: `Rank FAQ items by question, keyword and answer matches.

Without a query every item of the category is listed in catalog order.

Examples:
  supportctl faq search refund
  supportctl faq search "api key" --category integration
  supportctl faq search widget --open 1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			ctrl := app.knowledgeBase(maxItems)
			if c := normalizeCategory(category); c != "" {
				ctrl.SetCategory(c)
				if !app.Catalog.HasCategory(c) {
					fmt.Fprintf(cmd.ErrOrStderr(), "unknown category %q; see 'supportctl faq categories'\n", category)
				}
			}
			results := ctrl.SetQuery(strings.Join(args, " "))
			if len(results) == 0 {
				fmt.Fprintln(out, "No FAQs match.")
				return nil
			}
			for i, m := range results {
				fmt.Fprintf(out, "%2d. %-8s %s%s\n", i+1, m.FAQ.ID, m.FAQ.Question, matchBadge(m))
			}

			if open > 0 {
				if open > len(results) {
					return fmt.Errorf("no result #%d", open)
				}
				ctrl.MoveFocus(open)
				if !ctrl.ActivateFocused(cmd.Context()) {
					return fmt.Errorf("no result #%d", open)
				}
				idx := ctrl.Focused()
				fmt.Fprintln(out)
				app.printItem(cmd.Context(), out, results[idx].FAQ)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "all", "category id, or all")
	cmd.Flags().IntVarP(&maxItems, "max", "n", 0, "maximum results (0 = all)")
	cmd.Flags().IntVar(&open, "open", 0, "expand the n-th result")
	return cmd
}

func newFAQOpenCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "open <id>",
		Short: "Show an FAQ answer and record it as recently viewed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, ok := app.Catalog.Item(args[0])
			if !ok {
				return fmt.Errorf("no FAQ with id %q", args[0])
			}
			ctrl := app.knowledgeBase(0)
			ctrl.Toggle(cmd.Context(), item.ID)
			app.printItem(cmd.Context(), cmd.OutOrStdout(), item)
			return nil
		},
	}
}

func newFAQRecentCmd(app *App) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recently viewed FAQ items, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			items := app.knowledgeBase(0).RecentlyViewed(cmd.Context(), limit)
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing viewed yet.")
				return nil
			}
			printItemList(cmd.OutOrStdout(), items)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "maximum items")
	return cmd
}

func newFAQPopularCmd(app *App) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "popular",
		Short: "List the most viewed FAQ items",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := app.knowledgeBase(0).Popular(cmd.Context(), limit)
			if err != nil {
				return err
			}
			printItemList(cmd.OutOrStdout(), items)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "maximum items")
	return cmd
}

func newFAQCategoriesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List FAQ categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, c := range app.Catalog.Categories() {
				fmt.Fprintf(out, "%-16s %-16s %d items\n", c.ID, c.Label, len(app.Catalog.ByCategory(c.ID)))
			}
			return nil
		},
	}
}

func newFAQFeedbackCmd(app *App) *cobra.Command {
	var helpful, notHelpful bool
	cmd := &cobra.Command{
		Use:   "feedback <id>",
		Short: "Rate whether an FAQ answer helped",
		Long: `Rate whether an FAQ answer helped. The first rating of an item is final;
it is kept locally and sent to the support desk in the background.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if _, ok := app.Catalog.Item(id); !ok {
				return fmt.Errorf("no FAQ with id %q", id)
			}
			out := cmd.OutOrStdout()

			ledger, err := loadFeedback(cmd.Context(), app.Store)
			if err != nil {
				return err
			}
			if prev, done := ledger[id]; done {
				fmt.Fprintf(out, "Already rated %s as %s.\n", id, prev)
				return nil
			}

			ctrl := app.knowledgeBase(0)
			ctrl.SubmitFeedback(id, helpful && !notHelpful)
			defer ctrl.Wait()

			v, _ := ctrl.Feedback(id)
			ledger[id] = v
			if err := saveFeedback(cmd.Context(), app.Store, ledger); err != nil {
				return err
			}
			fmt.Fprintf(out, "Thanks! Recorded %s as %s.\n", id, v)
			return nil
		},
	}
	cmd.Flags().BoolVar(&helpful, "helpful", false, "the answer helped")
	cmd.Flags().BoolVar(&notHelpful, "not-helpful", false, "the answer did not help")
	cmd.MarkFlagsMutuallyExclusive("helpful", "not-helpful")
	cmd.MarkFlagsOneRequired("helpful", "not-helpful")
	return cmd
}

// printItem renders one expanded answer with its related articles and
// notifies the server of the view. The notification is best effort.
func (a *App) printItem(ctx context.Context, out io.Writer, item domain.FAQItem) {
	fmt.Fprintf(out, "%s\n%s\n\n%s\n", item.Question, strings.Repeat("=", len(item.Question)), item.Answer)
	if related := a.Catalog.Related(item.ID); len(related) > 0 {
		fmt.Fprintln(out, "\nRelated:")
		for _, r := range related {
			fmt.Fprintf(out, "  %-8s %s\n", r.ID, r.Question)
		}
	}
	if err := a.Remote.RecordView(ctx, item.ID); err != nil {
		a.Log.Debug().Err(err).Str("faq_id", item.ID).Msg("view notification failed")
	}
}

func printItemList(out io.Writer, items []domain.FAQItem) {
	for i, it := range items {
		fmt.Fprintf(out, "%2d. %-8s %s\n", i+1, it.ID, it.Question)
	}
}

func matchBadge(m search.Match) string {
	switch m.MatchType {
	case search.MatchTitle:
		return "  [question]"
	case search.MatchKeyword:
		return "  [keyword]"
	case search.MatchContent:
		return "  [answer]"
	}
	return ""
}

func normalizeCategory(s string) domain.FAQCategory {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "all" {
		return ""
	}
	return domain.FAQCategory(s)
}

func loadFeedback(ctx context.Context, store kvstore.Store) (map[string]domain.FeedbackValue, error) {
	ledger := map[string]domain.FeedbackValue{}
	b, err := store.Get(ctx, feedbackKey)
	if errors.Is(err, kvstore.ErrNotFound) {
		return ledger, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read feedback: %w", err)
	}
	if err := json.Unmarshal(b, &ledger); err != nil {
		// A corrupt ledger is replaced on the next rating.
		return map[string]domain.FeedbackValue{}, nil
	}
	return ledger, nil
}

func saveFeedback(ctx context.Context, store kvstore.Store, ledger map[string]domain.FeedbackValue) error {
	b, err := json.Marshal(ledger)
	if err != nil {
		return err
	}
	if err := store.Put(ctx, feedbackKey, b); err != nil {
		return fmt.Errorf("save feedback: %w", err)
	}
	return nil
}
