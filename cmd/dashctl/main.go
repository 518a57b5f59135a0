// Command dashctl drives the feedback backend from the terminal through the
// same client the dashboard uses.
//
// # Basic Usage
//
// Show the current week and its analytics:
//
//	dashctl week --fetch
//
// Manage monitored keywords:
//
//	dashctl keywords list
//	dashctl keywords add 退款
//	dashctl keywords rename 退款 退货
//
// Download the weekly PDF:
//
//	dashctl report -o report.pdf
//
// Browse what the reporter has archived in PostgreSQL:
//
//	dashctl archive list --limit 4
//	dashctl archive latest -o latest.pdf
//
// # Environment Variables
//
//   - SE_ENVIRONMENT: development (direct to 127.0.0.1:8888) or production
//   - SE_API_BASE_URL: explicit backend base URL, wins over both
//   - SE_API_TIMEOUT: per-request timeout (default 10s)
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sentineleye/dashboard/internal/api"
	"github.com/sentineleye/dashboard/pkg/config"
	"github.com/sentineleye/dashboard/pkg/logger"
	"github.com/sentineleye/dashboard/pkg/tracing"
)

// Build information, populated by ldflags.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "dashctl: %v\n", err)
		os.Exit(1)
	}
}

// cli carries state shared by every subcommand.
type cli struct {
	configPath string
	trace      bool

	cfg    *config.Config
	client *api.Client
	span   *tracing.Span

	openArchive archiveOpener
}

// buildRootCmd creates the root command with all subcommands attached.
func buildRootCmd() *cobra.Command {
	return newRootCmd(&cli{openArchive: openPostgresArchive})
}

func newRootCmd(c *cli) *cobra.Command {

	rootCmd := &cobra.Command{
		Use:           "dashctl",
		Short:         "Query the SentinelEye feedback backend",
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			c.finish()
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&c.configPath, "config", os.Getenv("SE_CONFIG"), "path to config file (defaults and SE_* env when empty)")
	rootCmd.PersistentFlags().BoolVar(&c.trace, "trace", false, "log the request span tree to stderr")

	rootCmd.AddCommand(
		c.buildWeekCmd(),
		c.buildAnalyticsCmd(),
		c.buildReportCmd(),
		c.buildStatsCmd(),
		c.buildSummaryCmd(),
		c.buildChartCmd(),
		c.buildTrendCmd(),
		c.buildFeedbackCmd(),
		c.buildKeywordsCmd(),
		c.buildAICmd(),
		c.buildHealthCmd(),
		c.buildRoutesCmd(),
		c.buildArchiveCmd(),
	)

	return rootCmd
}

// setup loads config, installs the stderr logger and builds the client.
func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg

	logger.Setup(os.Stderr, cfg.Logging.Level, "text")

	client, err := api.FromConfig(cfg)
	if err != nil {
		return err
	}
	c.client = client

	if c.trace {
		ctx, span := tracing.StartSpan(cmd.Context(), cmd.CommandPath(), "")
		c.span = span
		cmd.SetContext(ctx)
	}
	return nil
}

func (c *cli) finish() {
	if c.span == nil {
		return
	}
	c.span.End()
	c.span.Log(slog.Default())
}
