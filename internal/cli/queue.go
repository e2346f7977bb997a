package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tbourn/go-support-desk/internal/domain"
	"github.com/tbourn/go-support-desk/internal/triage"
)

func newQueueCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "queue",
		Aliases: []string{"escalations"},
		Short:   "Work the escalation queue",
	}
	cmd.AddCommand(
		newQueueListCmd(app),
		newQueueTakeOverCmd(app),
		newQueueResolveCmd(app),
		newQueueReassignCmd(app),
	)
	return cmd
}

func newQueueListCmd(app *App) *cobra.Command {
	var (
		f        triage.Filters
		by       string
		desc     bool
		maxItems int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show open escalations",
		Long: `Show open escalations, urgent and oldest first by default.

Examples:
  supportctl queue list --priority urgent
  supportctl queue list --search acme --sort messages
  supportctl queue list --topic troubleshooting --sort time --desc`,
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := parseSort(by, desc)
			if err != nil {
				return err
			}
			q := app.queue(maxItems)
			if err := q.Refresh(cmd.Context()); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v; showing demo queue\n", err)
			}
			f.Priority = strings.ToLower(strings.TrimSpace(f.Priority))
			f.Topic = strings.ToLower(strings.TrimSpace(f.Topic))
			q.SetFilters(f)
			q.SetSort(spec)

			printQueue(cmd.OutOrStdout(), q.Counts(), q.View(), time.Now())
			return nil
		},
	}
	cmd.Flags().StringVarP(&f.Search, "search", "s", "", "match partner, business or reason")
	cmd.Flags().StringVarP(&f.Priority, "priority", "p", triage.All, "urgent, high, normal, low or all")
	cmd.Flags().StringVarP(&f.Topic, "topic", "t", triage.All, "topic id or all")
	cmd.Flags().StringVar(&by, "sort", string(triage.SortPriority), "priority, time or messages")
	cmd.Flags().BoolVar(&desc, "desc", false, "reverse the sort order")
	cmd.Flags().IntVarP(&maxItems, "max", "n", 0, "maximum rows (0 = all)")
	return cmd
}

func newQueueTakeOverCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "take-over <id>",
		Short: "Claim an escalation and remove it from the queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.queue(0).TakeOver(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Took over %s.\n", args[0])
			return nil
		},
	}
}

func newQueueResolveCmd(app *App) *cobra.Command {
	var resolution string
	cmd := &cobra.Command{
		Use:   "resolve <id>",
		Short: "Close an escalation with a resolution note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(resolution) == "" {
				return fmt.Errorf("--resolution must not be empty")
			}
			if err := app.queue(0).Resolve(cmd.Context(), args[0], resolution); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Resolved %s.\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&resolution, "resolution", "r", "", "resolution note")
	_ = cmd.MarkFlagRequired("resolution")
	return cmd
}

func newQueueReassignCmd(app *App) *cobra.Command {
	var assignee string
	cmd := &cobra.Command{
		Use:   "reassign <id>",
		Short: "Hand an escalation to another team member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(assignee) == "" {
				return fmt.Errorf("--assignee must not be empty")
			}
			if err := app.queue(0).Reassign(cmd.Context(), args[0], assignee); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reassigned %s to %s.\n", args[0], assignee)
			return nil
		},
	}
	cmd.Flags().StringVarP(&assignee, "assignee", "a", "", "team member id")
	_ = cmd.MarkFlagRequired("assignee")
	return cmd
}

func parseSort(by string, desc bool) (triage.SortSpec, error) {
	spec := triage.SortSpec{By: triage.SortKey(strings.ToLower(strings.TrimSpace(by))), Direction: triage.Asc}
	switch spec.By {
	case triage.SortPriority, triage.SortTime, triage.SortMessages:
	case "":
		spec.By = triage.DefaultSort.By
	default:
		return spec, fmt.Errorf("unknown sort %q (want priority, time or messages)", by)
	}
	if desc {
		spec.Direction = triage.Desc
	}
	return spec, nil
}

func printQueue(out io.Writer, counts triage.Counts, rows []domain.EscalatedConversation, now time.Time) {
	fmt.Fprintf(out, "%d open, %d urgent, %d high\n", counts.Total, counts.Urgent, counts.High)
	if len(rows) == 0 {
		fmt.Fprintln(out, "No escalations match.")
		return
	}
	fmt.Fprintln(out)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPRIORITY\tPARTNER\tTOPIC\tREASON\tMSGS\tWAITING\tSTACK")
	for _, c := range rows {
		stack := ""
		if ts := domain.ParseTechStack(c.TechStack); ts != nil {
			stack = ts.Summary()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			c.ID,
			strings.ToUpper(string(c.Priority)),
			partnerLabel(c),
			domain.TopicLabel(c.Topic),
			domain.ReasonLabel(c.EscalationReason),
			c.MessageCount,
			waited(c.EscalatedAt, now),
			stack,
		)
	}
	tw.Flush()
}

func partnerLabel(c domain.EscalatedConversation) string {
	name := ""
	if c.PartnerName != nil {
		name = *c.PartnerName
	}
	switch {
	case name != "" && c.Partner.BusinessName != "":
		return name + " (" + c.Partner.BusinessName + ")"
	case name != "":
		return name
	case c.Partner.BusinessName != "":
		return c.Partner.BusinessName
	}
	return "-"
}

// waited renders the time since t in the largest whole unit.
func waited(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case t.IsZero():
		return "-"
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	return fmt.Sprintf("%dd", int(d.Hours())/24)
}
