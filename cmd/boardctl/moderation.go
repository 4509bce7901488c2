package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/jmerrifield20/threadboard/pkg/client"
	"github.com/spf13/cobra"
)

// ── reports ──────────────────────────────────────────────────────────────────

var (
	reportStatus   string
	resolveReject  bool
	resolveNote    string
	resolveAction  string
	resolveDetails string
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Work the report queue",
}

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List reports (default: pending)",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		page, err := c.ListReports(cmd.Context(), client.ReportQuery{Status: reportStatus, PageOptions: pageOptions()})
		if err != nil {
			return fmt.Errorf("list reports: %w", err)
		}
		if format == "json" {
			return printJSON(cmd.OutOrStdout(), page)
		}
		out := cmd.OutOrStdout()
		printReports(out, page.Data)
		printPagination(out, page.Pagination)
		return nil
	},
}

var reportsResolveCmd = &cobra.Command{
	Use:   "resolve <report-id>",
	Short: "Close a pending report, optionally applying an action to its target",
	Long: `resolve moves a pending report to resolved, or to rejected with --reject.

An action can be applied to the reported content in the same step:

  boardctl reports resolve <id> --action delete --note "spam link"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := client.ResolveRequest{Status: "resolved", Note: resolveNote}
		if resolveReject {
			if resolveAction != "" {
				return fmt.Errorf("--action cannot be combined with --reject")
			}
			req.Status = "rejected"
		}
		if resolveAction != "" {
			req.Action = &client.ResolveAction{ActionType: resolveAction, Details: resolveDetails}
		}

		c, err := newClient()
		if err != nil {
			return err
		}
		r, a, err := c.ResolveReport(cmd.Context(), args[0], req)
		if errors.Is(err, client.ErrConflict) {
			return fmt.Errorf("report %s is already closed", args[0])
		}
		if err != nil {
			return fmt.Errorf("resolve report: %w", err)
		}
		if format == "json" {
			return printJSON(cmd.OutOrStdout(), map[string]any{"report": r, "action": a})
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✓ Report %s %s\n", r.ID, r.Status)
		if a != nil {
			fmt.Fprintf(out, "✓ Action %s recorded: %s\n", a.ID, a.ActionType)
		}
		return nil
	},
}

func init() {
	reportsListCmd.Flags().StringVar(&reportStatus, "status", "pending", "pending, resolved, rejected or empty for all")

	reportsResolveCmd.Flags().BoolVar(&resolveReject, "reject", false, "Reject the report instead of resolving it")
	reportsResolveCmd.Flags().StringVar(&resolveNote, "note", "", "Resolution note")
	reportsResolveCmd.Flags().StringVar(&resolveAction, "action", "", "Action to apply: delete, warn, hide, edit, ban or restrict")
	reportsResolveCmd.Flags().StringVar(&resolveDetails, "details", "", "Action details")

	reportsCmd.AddCommand(reportsListCmd)
	reportsCmd.AddCommand(reportsResolveCmd)
}

func printReports(out io.Writer, items []client.Report) {
	if len(items) == 0 {
		fmt.Fprintln(out, "No reports.")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tTYPE\tTARGET\tFILED\tREASON")
	for _, r := range items {
		target := r.TargetPostID
		if r.TargetCommentID != "" {
			target = r.TargetCommentID
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Status, r.ContentType, target, r.CreatedAt.Format(time.DateTime), excerpt(r.Reason, 40))
	}
	w.Flush()
}

// ── moderation actions ───────────────────────────────────────────────────────

var (
	actionsType    string
	actionsReport  string
	actionsRetired bool
)

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "Review the moderation action trail",
}

var actionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List moderation actions",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		page, err := c.ListActions(cmd.Context(), client.ActionQuery{
			ActionType:     actionsType,
			ReportID:       actionsReport,
			IncludeRetired: actionsRetired,
			PageOptions:    pageOptions(),
		})
		if err != nil {
			return fmt.Errorf("list actions: %w", err)
		}
		if format == "json" {
			return printJSON(cmd.OutOrStdout(), page)
		}
		out := cmd.OutOrStdout()
		printActions(out, page.Data)
		printPagination(out, page.Pagination)
		return nil
	},
}

var actionsRetireCmd = &cobra.Command{
	Use:   "retire <action-id>",
	Short: "Retire a moderation action (admin only)",
	Long: `retire marks an action as no longer in force. The content change it
made, such as a deletion, is not reversed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		a, err := c.RetireAction(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("retire action: %w", err)
		}
		if format == "json" {
			return printJSON(cmd.OutOrStdout(), a)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Action retired: %s\n", a.ID)
		return nil
	},
}

func init() {
	actionsListCmd.Flags().StringVar(&actionsType, "type", "", "Only actions of this type")
	actionsListCmd.Flags().StringVar(&actionsReport, "report", "", "Only actions taken on this report")
	actionsListCmd.Flags().BoolVar(&actionsRetired, "include-retired", false, "Include retired actions")

	actionsCmd.AddCommand(actionsListCmd)
	actionsCmd.AddCommand(actionsRetireCmd)
}

func printActions(out io.Writer, items []client.Action) {
	if len(items) == 0 {
		fmt.Fprintln(out, "No actions.")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tACTOR\tTARGET\tREPORT\tRETIRED")
	for _, a := range items {
		actor := a.ActorModeratorID
		if a.ActorAdminID != "" {
			actor = a.ActorAdminID + " (admin)"
		}
		target := a.TargetPostID
		if a.TargetCommentID != "" {
			target = a.TargetCommentID
		}
		retired := "-"
		if a.RetiredAt != nil {
			retired = a.RetiredAt.Format(time.DateTime)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", a.ID, a.ActionType, actor, orDash(target), orDash(a.ReportID), retired)
	}
	w.Flush()
}

// ── audit ────────────────────────────────────────────────────────────────────

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the moderation audit chain",
}

var auditVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Ask the server to verify the audit hash chain",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		ov, err := c.AuditOverview(cmd.Context())
		if err != nil {
			return fmt.Errorf("audit overview: %w", err)
		}
		v, err := c.VerifyAudit(cmd.Context())
		if err != nil {
			return fmt.Errorf("verify audit: %w", err)
		}
		if format == "json" {
			if err := printJSON(cmd.OutOrStdout(), map[string]any{"overview": ov, "verification": v}); err != nil {
				return err
			}
		} else {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Entries: %d\n", ov.Entries)
			fmt.Fprintf(out, "Head:    %s\n", ov.Head)
			if v.Valid {
				fmt.Fprintln(out, "✓ Chain intact")
			}
		}
		if !v.Valid {
			return fmt.Errorf("audit chain broken: %s", v.Error)
		}
		return nil
	},
}

func init() {
	auditCmd.AddCommand(auditVerifyCmd)
}
