package main

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sentineleye/dashboard/internal/api"
	"github.com/sentineleye/dashboard/pkg/daterange"
)

// =============================================================================
// Week & Analytics Commands
// =============================================================================

// weekSections are the per-range analytics fetched by "week --fetch".
var weekSections = []struct {
	name  string
	fetch func(*api.Client, context.Context, daterange.DateRange) (api.Document, error)
}{
	{"overview", (*api.Client).GetOverviewStats},
	{"type_distribution", (*api.Client).GetFeedbackTypeDistribution},
	{"trend", (*api.Client).GetFeedbackTrend},
	{"category", (*api.Client).GetCategoryAnalysis},
	{"keywords", (*api.Client).GetKeywordAnalysis},
}

func (c *cli) buildWeekCmd() *cobra.Command {
	var (
		date  string
		fetch bool
	)
	cmd := &cobra.Command{
		Use:   "week",
		Short: "Show the Monday..Sunday week and optionally its analytics",
		Long: `Show the Monday..Sunday week containing today (or --date).

With --fetch every analytics section for the week is requested
concurrently and printed under "analytics".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			week, err := resolveWeek(date)
			if err != nil {
				return err
			}
			startCN, err := daterange.FormatDateChinese(week.StartDate)
			if err != nil {
				return err
			}
			endCN, err := daterange.FormatDateChinese(week.EndDate)
			if err != nil {
				return err
			}
			out := map[string]any{
				"range": week,
				"label": startCN + " - " + endCN,
			}
			if !fetch {
				return printJSON(cmd, out)
			}

			var mu sync.Mutex
			sections := make(map[string]api.Document, len(weekSections))
			g, ctx := errgroup.WithContext(cmd.Context())
			for _, s := range weekSections {
				g.Go(func() error {
					doc, err := s.fetch(c.client, ctx, week)
					if err != nil {
						return fmt.Errorf("%s: %w", s.name, err)
					}
					mu.Lock()
					sections[s.name] = doc
					mu.Unlock()
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			out["analytics"] = sections
			return printJSON(cmd, out)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "any day of the week, YYYY-MM-DD")
	cmd.Flags().BoolVar(&fetch, "fetch", false, "fetch every analytics section for the week")
	return cmd
}

func (c *cli) buildAnalyticsCmd() *cobra.Command {
	var (
		date string
		days int
	)
	cmd := &cobra.Command{
		Use:       "analytics <overview|types|trend|category|keywords|all|data>",
		Short:     "Fetch one analytics section for a week",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"overview", "types", "trend", "category", "keywords", "all", "data"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if args[0] == "data" {
				doc, err := c.client.GetAnalyticsData(ctx, days)
				if err != nil {
					return err
				}
				return printJSON(cmd, doc)
			}

			week, err := resolveWeek(date)
			if err != nil {
				return err
			}
			var doc any
			switch args[0] {
			case "overview":
				doc, err = c.client.GetOverviewStats(ctx, week)
			case "types":
				doc, err = c.client.GetFeedbackTypeDistribution(ctx, week)
			case "trend":
				doc, err = c.client.GetFeedbackTrend(ctx, week)
			case "category":
				doc, err = c.client.GetCategoryAnalysis(ctx, week)
			case "keywords":
				doc, err = c.client.GetKeywordAnalysis(ctx, week)
			case "all":
				doc, err = c.client.GetAllAnalytics(ctx, week)
			}
			if err != nil {
				return err
			}
			return printJSON(cmd, doc)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "any day of the week, YYYY-MM-DD")
	cmd.Flags().IntVar(&days, "days", 7, "window for the data section")
	return cmd
}

func (c *cli) buildReportCmd() *cobra.Command {
	var (
		date   string
		output string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Download the weekly PDF report",
		RunE: func(cmd *cobra.Command, args []string) error {
			week, err := resolveWeek(date)
			if err != nil {
				return err
			}
			blob, err := c.client.GenerateWeeklyReport(cmd.Context(), week)
			if err != nil {
				return err
			}
			path := output
			if path == "" {
				path = blob.Filename
			}
			if path == "" {
				path = fmt.Sprintf("weekly-report-%s.pdf", week.StartDate)
			}
			if err := os.WriteFile(path, blob.Data, 0o644); err != nil {
				return fmt.Errorf("writing report: %w", err)
			}
			return printJSON(cmd, map[string]any{
				"path":         path,
				"size_bytes":   len(blob.Data),
				"content_type": blob.ContentType,
				"week":         week.String(),
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "any day of the week, YYYY-MM-DD")
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write (defaults to the server's filename)")
	return cmd
}
