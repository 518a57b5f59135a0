// Package report generates, archives and announces the weekly feedback
// report.
package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/sentineleye/dashboard/internal/api"
	"github.com/sentineleye/dashboard/pkg/daterange"
	apperrors "github.com/sentineleye/dashboard/pkg/errors"
	"github.com/sentineleye/dashboard/pkg/kafka"
	"github.com/sentineleye/dashboard/pkg/logger"
	"github.com/sentineleye/dashboard/pkg/metrics"
	"github.com/sentineleye/dashboard/pkg/resilience"
	"github.com/sentineleye/dashboard/pkg/tracing"
)

// LockPrefix namespaces the per-week lock key.
const LockPrefix = "report-lock:"

// Facade is the subset of the API client the job calls.
type Facade interface {
	GetOverviewStats(ctx context.Context, r daterange.DateRange) (api.Document, error)
	GenerateWeeklyReport(ctx context.Context, r daterange.DateRange) (*api.Blob, error)
}

// Lock is a held lock.
type Lock interface {
	Release(ctx context.Context) error
}

// Locker grants cluster-wide exclusive locks. Acquire fails with
// errors.ErrLockHeld when another holder owns key.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (Lock, error)
}

// Store persists generated reports.
type Store interface {
	Save(ctx context.Context, r Report) error
}

// Publisher announces archived reports.
type Publisher interface {
	Publish(ctx context.Context, event kafka.Event) error
}

// Config tunes a Job.
type Config struct {
	Location      *time.Location
	LockTTL       time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// Job produces one week's report per run.
type Job struct {
	facade    Facade
	locker    Locker
	store     Store
	publisher Publisher
	metrics   *metrics.Metrics
	cfg       Config
	logger    *slog.Logger
}

// NewJob wires a Job. m may be nil.
func NewJob(facade Facade, locker Locker, store Store, publisher Publisher, m *metrics.Metrics, cfg Config) *Job {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 10 * time.Minute
	}
	return &Job{
		facade:    facade,
		locker:    locker,
		store:     store,
		publisher: publisher,
		metrics:   m,
		cfg:       cfg,
		logger:    logger.WithComponent("report-job"),
	}
}

// Run generates the report for the week containing now. It returns
// errors.ErrLockHeld without doing any work when another replica owns the
// week. A publish failure is returned alongside the archived report.
func (j *Job) Run(ctx context.Context, now time.Time) (*Report, error) {
	runID := uuid.NewString()
	ctx, span := tracing.StartSpan(ctx, "report.run", runID)
	defer func() {
		span.End()
		span.Log(j.logger)
	}()

	week := daterange.CurrentWeekRange(now.In(j.cfg.Location))
	span.SetAttr("week", week.String())
	log := j.logger.With("run_id", runID, "week_start", week.StartDate)

	lock, err := j.locker.Acquire(ctx, LockPrefix+week.StartDate, j.cfg.LockTTL)
	if err != nil {
		if errors.Is(err, apperrors.ErrLockHeld) {
			log.Info("week already being generated elsewhere, skipping")
			j.record("skipped", 0)
		} else {
			log.Error("failed to acquire report lock", "error", err)
			j.record("failed", 0)
		}
		return nil, err
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := lock.Release(releaseCtx); err != nil {
			log.Warn("failed to release report lock", "error", err)
		}
	}()

	var (
		overview api.Document
		blob     *api.Blob
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return resilience.Retry(gctx, "getOverviewStats", j.retryConfig(), func() error {
			var err error
			overview, err = j.facade.GetOverviewStats(gctx, week)
			return err
		})
	})
	g.Go(func() error {
		return resilience.Retry(gctx, "generateWeeklyReport", j.retryConfig(), func() error {
			var err error
			blob, err = j.facade.GenerateWeeklyReport(gctx, week)
			return err
		})
	})
	if err := g.Wait(); err != nil {
		log.Error("report generation failed", "error", err)
		j.record("failed", 0)
		return nil, fmt.Errorf("generating report for %s: %w", week, err)
	}

	r := Report{
		ID:          runID,
		WeekStart:   week.StartDate,
		WeekEnd:     week.EndDate,
		Filename:    blob.Filename,
		ContentType: blob.ContentType,
		SizeBytes:   len(blob.Data),
		Overview:    overview,
		Data:        blob.Data,
		GeneratedAt: now.UTC(),
	}
	if r.Filename == "" {
		r.Filename = fmt.Sprintf("weekly-report-%s.pdf", week.StartDate)
	}
	if r.ContentType == "" {
		r.ContentType = "application/pdf"
	}

	if err := j.store.Save(ctx, r); err != nil {
		log.Error("failed to archive report", "error", err)
		j.record("failed", 0)
		return nil, err
	}
	j.record("success", r.SizeBytes)

	err = j.publisher.Publish(ctx, kafka.Event{
		Key:  week.StartDate,
		Type: EventReportGenerated,
		Value: ReportGenerated{
			ID:          r.ID,
			StartDate:   r.WeekStart,
			EndDate:     r.WeekEnd,
			Filename:    r.Filename,
			SizeBytes:   r.SizeBytes,
			GeneratedAt: r.GeneratedAt,
		},
	})
	if err != nil {
		return &r, fmt.Errorf("announcing report %s: %w", week.StartDate, err)
	}

	log.Info("weekly report generated", "size_bytes", r.SizeBytes, "filename", r.Filename)
	return &r, nil
}

func (j *Job) retryConfig() resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxAttempts:  j.cfg.RetryAttempts,
		InitialDelay: j.cfg.RetryDelay,
		Retryable:    transient,
	}
}

// transient reports whether a facade error may succeed on a later attempt.
func transient(err error) bool {
	if errors.Is(err, apperrors.ErrTransport) {
		return true
	}
	return apperrors.StatusCode(err) >= http.StatusInternalServerError
}

func (j *Job) record(status string, size int) {
	if j.metrics == nil {
		return
	}
	j.metrics.ReportsGenerated.WithLabelValues(status).Inc()
	if status == "success" {
		j.metrics.ReportSizeBytes.Observe(float64(size))
	}
}
