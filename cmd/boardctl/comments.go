package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jmerrifield20/threadboard/pkg/client"
	"github.com/spf13/cobra"
)

var (
	listPostID   string
	listParentID string
	listRoots    bool
	listDeleted  bool
	listPage     int
	listLimit    int
	listSort     string
)

var commentsCmd = &cobra.Command{
	Use:   "comments",
	Short: "Browse and reply to comment threads",
}

var commentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List comments, optionally filtered by post or parent",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		page, err := c.ListComments(cmd.Context(), client.CommentQuery{
			PostID:         listPostID,
			ParentID:       listParentID,
			RootsOnly:      listRoots,
			IncludeDeleted: listDeleted,
			PageOptions:    pageOptions(),
		})
		if err != nil {
			return fmt.Errorf("list comments: %w", err)
		}
		if format == "json" {
			return printJSON(cmd.OutOrStdout(), page)
		}
		printComments(cmd.OutOrStdout(), page.Data)
		printPagination(cmd.OutOrStdout(), page.Pagination)
		return nil
	},
}

var commentsShowCmd = &cobra.Command{
	Use:   "show <comment-id>",
	Short: "Show a comment and its direct replies",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		cm, err := c.GetComment(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("get comment: %w", err)
		}
		replies, err := c.ListReplies(cmd.Context(), args[0], pageOptions())
		if err != nil {
			return fmt.Errorf("list replies: %w", err)
		}
		if format == "json" {
			return printJSON(cmd.OutOrStdout(), map[string]any{"comment": cm, "replies": replies})
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "ID:      %s\n", cm.ID)
		fmt.Fprintf(out, "Post:    %s\n", cm.PostID)
		fmt.Fprintf(out, "Parent:  %s\n", deref(cm.ParentID))
		fmt.Fprintf(out, "Author:  %s\n", cm.AuthorID)
		fmt.Fprintf(out, "Depth:   %d\n", cm.NestingLevel)
		fmt.Fprintf(out, "State:   %s%s\n", cm.State, editedSuffix(*cm))
		fmt.Fprintf(out, "Created: %s\n\n", cm.CreatedAt.Format(time.RFC3339))
		fmt.Fprintf(out, "%s\n\n", cm.Body)
		fmt.Fprintf(out, "Replies (%d):\n", replies.Pagination.Records)
		printComments(out, replies.Data)
		return nil
	},
}

var commentsReplyCmd = &cobra.Command{
	Use:   "reply <parent-id> <body>",
	Short: "Reply to a comment",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		cm, err := c.Reply(cmd.Context(), args[0], args[1])
		if errors.Is(err, client.ErrNestingLimit) {
			return fmt.Errorf("thread is already at maximum depth; reply to an ancestor instead")
		}
		if err != nil {
			return fmt.Errorf("reply: %w", err)
		}
		if format == "json" {
			return printJSON(cmd.OutOrStdout(), cm)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Reply created: %s (depth %d)\n", cm.ID, cm.NestingLevel)
		return nil
	},
}

func init() {
	commentsListCmd.Flags().StringVar(&listPostID, "post", "", "Only comments on this post")
	commentsListCmd.Flags().StringVar(&listParentID, "parent", "", "Only direct replies to this comment")
	commentsListCmd.Flags().BoolVar(&listRoots, "roots", false, "Only top-level comments")
	commentsListCmd.Flags().BoolVar(&listDeleted, "include-deleted", false, "Include soft-deleted comments (staff only)")

	for _, cmd := range []*cobra.Command{commentsListCmd, commentsShowCmd, reportsListCmd, actionsListCmd} {
		cmd.Flags().IntVar(&listPage, "page", 1, "Page number")
		cmd.Flags().IntVar(&listLimit, "limit", 20, "Page size (max 100)")
		cmd.Flags().StringVar(&listSort, "sort", "", "Sort column, e.g. -created_at")
	}

	commentsCmd.AddCommand(commentsListCmd)
	commentsCmd.AddCommand(commentsShowCmd)
	commentsCmd.AddCommand(commentsReplyCmd)
}

func pageOptions() client.PageOptions {
	return client.PageOptions{Page: listPage, Limit: listLimit, Sort: listSort}
}

func editedSuffix(cm client.Comment) string {
	switch {
	case cm.ModeratorEdited:
		return " (edited by moderator)"
	case cm.IsEdited:
		return " (edited)"
	}
	return ""
}

func printComments(out io.Writer, items []client.Comment) {
	if len(items) == 0 {
		fmt.Fprintln(out, "  (none)")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDEPTH\tSTATE\tAUTHOR\tBODY")
	for _, cm := range items {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", cm.ID, cm.NestingLevel, cm.State, cm.AuthorID, excerpt(cm.Body, 48))
	}
	w.Flush()
}

func printPagination(out io.Writer, p client.Pagination) {
	fmt.Fprintf(out, "\npage %d of %d (%d records)\n", p.Current, p.Pages, p.Records)
}

func excerpt(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
