package main

import (
	"github.com/spf13/cobra"

	"github.com/sentineleye/dashboard/internal/api"
	"github.com/sentineleye/dashboard/internal/pages"
)

// =============================================================================
// Dashboard Commands
// =============================================================================

func (c *cli) buildStatsCmd() *cobra.Command {
	var q api.StatsQuery
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the dashboard headline statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := c.client.GetDashboardStats(cmd.Context(), q)
			if err != nil {
				return err
			}
			return printJSON(cmd, stats)
		},
	}
	cmd.Flags().IntVar(&q.Limit, "limit", 0, "top-N size for categories and tags (backend default when 0)")
	cmd.Flags().IntVar(&q.Days, "days", 0, "trend window in days (backend default when 0)")
	return cmd
}

func (c *cli) buildSummaryCmd() *cobra.Command {
	var limit, recentLimit int
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show stats plus the latest feedbacks",
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := c.client.GetDashboardSummary(cmd.Context(), limit, recentLimit)
			if err != nil {
				return err
			}
			return printJSON(cmd, summary)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "top-N size for categories and tags")
	cmd.Flags().IntVar(&recentLimit, "recent-limit", api.DefaultRecentLimit, "number of recent feedbacks")
	return cmd
}

func (c *cli) buildChartCmd() *cobra.Command {
	var days, keywordDays int
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Show the dashboard chart series",
		RunE: func(cmd *cobra.Command, args []string) error {
			chart, err := c.client.GetChartData(cmd.Context(), days, keywordDays)
			if err != nil {
				return err
			}
			return printJSON(cmd, chart)
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "window in days")
	cmd.Flags().IntVar(&keywordDays, "keyword-days", 0, "keyword-trigger window (backend default when 0)")
	return cmd
}

func (c *cli) buildTrendCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Show the per-day feedback trend",
		RunE: func(cmd *cobra.Command, args []string) error {
			trend, err := c.client.GetTrendData(cmd.Context(), days)
			if err != nil {
				return err
			}
			return printJSON(cmd, trend)
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "window in days")
	return cmd
}

func (c *cli) buildHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := c.client.HealthCheck(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]any{
				"base_url": c.client.BaseURL(),
				"backend":  status,
			})
		},
	}
}

func (c *cli) buildRoutesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the dashboard's page routes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd, map[string]any{
				"routes":    pages.Routes(),
				"redirects": pages.Redirects(),
			})
		},
	}
}
