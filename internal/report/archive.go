package report

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/sentineleye/dashboard/pkg/daterange"
	"github.com/sentineleye/dashboard/pkg/logger"
	"github.com/sentineleye/dashboard/pkg/postgres"
)

// Report is one archived week.
type Report struct {
	ID          string          `json:"id"`
	WeekStart   string          `json:"week_start"`
	WeekEnd     string          `json:"week_end"`
	Filename    string          `json:"filename"`
	ContentType string          `json:"content_type"`
	SizeBytes   int             `json:"size_bytes"`
	Overview    json.RawMessage `json:"overview"`
	GeneratedAt time.Time       `json:"generated_at"`
	Data        []byte          `json:"-"`
}

// Archive persists generated reports in PostgreSQL, one row per week.
//
// It requires a `weekly_reports` table:
//
//	CREATE TABLE weekly_reports (
//	    id           UUID PRIMARY KEY,
//	    week_start   DATE NOT NULL UNIQUE,
//	    week_end     DATE NOT NULL,
//	    filename     TEXT NOT NULL,
//	    content_type TEXT NOT NULL,
//	    size_bytes   INTEGER NOT NULL,
//	    overview     JSONB NOT NULL DEFAULT '{}',
//	    data         BYTEA NOT NULL,
//	    generated_at TIMESTAMPTZ NOT NULL
//	);
type Archive struct {
	db          *sql.DB
	retainWeeks int
	logger      *slog.Logger
}

// NewArchive creates an archive on db. Weeks older than retainWeeks before
// the newest saved week are pruned on every Save; 0 disables pruning.
func NewArchive(db *sql.DB, retainWeeks int) *Archive {
	return &Archive{
		db:          db,
		retainWeeks: retainWeeks,
		logger:      logger.WithComponent("report-archive"),
	}
}

// Save upserts r keyed by its week start and prunes expired weeks in the
// same transaction.
func (a *Archive) Save(ctx context.Context, r Report) error {
	overview := string(r.Overview)
	if overview == "" {
		overview = "{}"
	}

	err := postgres.InTx(ctx, a.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO weekly_reports
			   (id, week_start, week_end, filename, content_type, size_bytes, overview, data, generated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 ON CONFLICT (week_start) DO UPDATE SET
			   id = EXCLUDED.id,
			   week_end = EXCLUDED.week_end,
			   filename = EXCLUDED.filename,
			   content_type = EXCLUDED.content_type,
			   size_bytes = EXCLUDED.size_bytes,
			   overview = EXCLUDED.overview,
			   data = EXCLUDED.data,
			   generated_at = EXCLUDED.generated_at`,
			r.ID, r.WeekStart, r.WeekEnd, r.Filename, r.ContentType, r.SizeBytes, overview, r.Data, r.GeneratedAt,
		)
		if err != nil {
			return fmt.Errorf("saving weekly report %s: %w", r.WeekStart, err)
		}

		if a.retainWeeks <= 0 {
			return nil
		}
		start, err := daterange.ParseDate(r.WeekStart, time.UTC)
		if err != nil {
			return fmt.Errorf("parsing week start: %w", err)
		}
		cutoff := daterange.FormatDate(start.AddDate(0, 0, -7*a.retainWeeks))
		res, err := tx.ExecContext(ctx, `DELETE FROM weekly_reports WHERE week_start < $1`, cutoff)
		if err != nil {
			return fmt.Errorf("pruning weekly reports before %s: %w", cutoff, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			a.logger.Info("pruned weekly reports", "before", cutoff, "count", n)
		}
		return nil
	})
	if err != nil {
		return err
	}

	a.logger.Info("weekly report archived",
		"week_start", r.WeekStart,
		"size_bytes", r.SizeBytes,
	)
	return nil
}

// Latest loads the newest report including its PDF. Returns nil, nil when
// the archive is empty.
func (a *Archive) Latest(ctx context.Context) (*Report, error) {
	row := a.db.QueryRowContext(ctx,
		`SELECT id, week_start, week_end, filename, content_type, size_bytes, overview, generated_at, data
		 FROM weekly_reports ORDER BY week_start DESC LIMIT 1`,
	)

	var (
		r          Report
		start, end time.Time
		overview   []byte
	)
	err := row.Scan(&r.ID, &start, &end, &r.Filename, &r.ContentType, &r.SizeBytes, &overview, &r.GeneratedAt, &r.Data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest weekly report: %w", err)
	}
	r.WeekStart = daterange.FormatDate(start)
	r.WeekEnd = daterange.FormatDate(end)
	r.Overview = overview
	return &r, nil
}

// List returns the newest limit reports without their PDFs.
func (a *Archive) List(ctx context.Context, limit int) ([]Report, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, week_start, week_end, filename, content_type, size_bytes, overview, generated_at
		 FROM weekly_reports ORDER BY week_start DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing weekly reports: %w", err)
	}
	defer rows.Close()

	var reports []Report
	for rows.Next() {
		var (
			r          Report
			start, end time.Time
			overview   []byte
		)
		if err := rows.Scan(&r.ID, &start, &end, &r.Filename, &r.ContentType, &r.SizeBytes, &overview, &r.GeneratedAt); err != nil {
			return nil, fmt.Errorf("scanning weekly report row: %w", err)
		}
		r.WeekStart = daterange.FormatDate(start)
		r.WeekEnd = daterange.FormatDate(end)
		r.Overview = overview
		reports = append(reports, r)
	}
	return reports, rows.Err()
}
