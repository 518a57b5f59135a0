package main

import (
	"github.com/spf13/cobra"
)

// =============================================================================
// Keyword, Feedback & AI Commands
// =============================================================================

func (c *cli) buildKeywordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keywords",
		Short: "Manage the monitored keyword list",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List keywords in server order",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				keywords, err := c.client.GetKeywords(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd, keywords)
			},
		},
		&cobra.Command{
			Use:   "add <keyword>",
			Short: "Add a keyword",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				res, err := c.client.AddKeyword(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd, res)
			},
		},
		&cobra.Command{
			Use:   "delete <keyword>",
			Short: "Delete a keyword",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				res, err := c.client.DeleteKeyword(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd, res)
			},
		},
		&cobra.Command{
			Use:   "rename <old> <new>",
			Short: "Replace a keyword",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				res, err := c.client.UpdateKeyword(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				return printJSON(cmd, res)
			},
		},
	)
	return cmd
}

func (c *cli) buildFeedbackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Read stored feedback",
	}

	var limit int
	recent := &cobra.Command{
		Use:   "recent",
		Short: "Show the newest feedbacks",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := c.client.GetRecentFeedbacks(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return printJSON(cmd, items)
		},
	}
	recent.Flags().IntVar(&limit, "limit", 0, "number of feedbacks (5 when 0)")

	cmd.AddCommand(recent, &cobra.Command{
		Use:   "all",
		Short: "Show every feedback",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := c.client.GetAllFeedbacks(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, items)
		},
	})
	return cmd
}

func (c *cli) buildAICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ai",
		Short: "Read AI analysis results",
	}

	var recentLimit, days int
	recent := &cobra.Command{
		Use:   "recent",
		Short: "Show recent AI analyses",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := c.client.GetRecentAIAnalyses(cmd.Context(), recentLimit, days)
			if err != nil {
				return err
			}
			return printJSON(cmd, items)
		},
	}
	recent.Flags().IntVar(&recentLimit, "limit", 10, "maximum results")
	recent.Flags().IntVar(&days, "days", 7, "window in days")

	var allLimit int
	all := &cobra.Command{
		Use:   "all",
		Short: "Show every AI analysis, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := c.client.GetAllAIAnalyses(cmd.Context(), allLimit)
			if err != nil {
				return err
			}
			return printJSON(cmd, items)
		},
	}
	all.Flags().IntVar(&allLimit, "limit", 0, "maximum results (all when 0)")

	cmd.AddCommand(recent, all)
	return cmd
}
