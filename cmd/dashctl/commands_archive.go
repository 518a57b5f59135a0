package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sentineleye/dashboard/internal/report"
	"github.com/sentineleye/dashboard/pkg/config"
	apperrors "github.com/sentineleye/dashboard/pkg/errors"
	"github.com/sentineleye/dashboard/pkg/postgres"
)

// archiveReader is the read side of the weekly report archive.
type archiveReader interface {
	Latest(ctx context.Context) (*report.Report, error)
	List(ctx context.Context, limit int) ([]report.Report, error)
}

// archiveOpener connects to the archive; the returned func releases it.
type archiveOpener func(cfg config.Config) (archiveReader, func() error, error)

func openPostgresArchive(cfg config.Config) (archiveReader, func() error, error) {
	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		return nil, nil, err
	}
	return report.NewArchive(db.DB, cfg.Reporter.RetainWeeks), db.Close, nil
}

// =============================================================================
// Archive Commands
// =============================================================================

func (c *cli) buildArchiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Browse weekly reports archived by the reporter",
	}
	cmd.AddCommand(c.buildArchiveListCmd(), c.buildArchiveLatestCmd())
	return cmd
}

func (c *cli) withArchive(fn func(a archiveReader) error) error {
	a, closeFn, err := c.openArchive(*c.cfg)
	if err != nil {
		return fmt.Errorf("opening report archive: %w", err)
	}
	defer closeFn()
	return fn(a)
}

func (c *cli) buildArchiveListCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived weeks, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive: %w", apperrors.ErrInvalidInput)
			}
			return c.withArchive(func(a archiveReader) error {
				reports, err := a.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if reports == nil {
					reports = []report.Report{}
				}
				return printJSON(cmd, reports)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "number of weeks to show")
	return cmd
}

func (c *cli) buildArchiveLatestCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "latest",
		Short: "Show the newest archived week, optionally saving its PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withArchive(func(a archiveReader) error {
				r, err := a.Latest(cmd.Context())
				if err != nil {
					return err
				}
				if r == nil {
					return fmt.Errorf("report archive is empty: %w", apperrors.ErrNotFound)
				}
				if output != "" {
					if err := os.WriteFile(output, r.Data, 0o644); err != nil {
						return fmt.Errorf("writing report: %w", err)
					}
				}
				return printJSON(cmd, r)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "also write the archived PDF to this file")
	return cmd
}
