// Command reporter generates the weekly feedback report on a schedule.
//
// Each run computes the current Monday..Sunday week in reporter.timezone,
// asks the backend for the overview and the PDF, archives both in
// PostgreSQL and announces the archived week on Kafka. A Redis lock keeps
// replicas from generating the same week twice.
//
// Usage:
//
//	go run ./cmd/reporter [-config configs/development.yaml] [-once]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/robfig/cron/v3"

	"github.com/sentineleye/dashboard/internal/api"
	"github.com/sentineleye/dashboard/internal/report"
	"github.com/sentineleye/dashboard/pkg/config"
	apperrors "github.com/sentineleye/dashboard/pkg/errors"
	"github.com/sentineleye/dashboard/pkg/kafka"
	"github.com/sentineleye/dashboard/pkg/logger"
	"github.com/sentineleye/dashboard/pkg/metrics"
	"github.com/sentineleye/dashboard/pkg/postgres"
	"github.com/sentineleye/dashboard/pkg/redis"
)

// main connects PostgreSQL, Redis and Kafka, then either runs the job once
// (-once) or hands it to the cron scheduler until SIGINT/SIGTERM.
func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	once := flag.Bool("once", false, "generate the current week's report and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)

	loc, err := cfg.Reporter.Location()
	if err != nil {
		slog.Error("invalid reporter timezone", "error", err)
		os.Exit(1)
	}
	slog.Info("starting reporter",
		"schedule", cfg.Reporter.Schedule,
		"timezone", loc.String(),
		"base_url", cfg.ResolveBaseURL(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := metrics.NewRegistry()
	m := metrics.New(reg)

	client, err := api.FromConfig(cfg, api.WithMetrics(m))
	if err != nil {
		slog.Error("failed to build api client", "error", err)
		os.Exit(1)
	}

	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("connected to postgres")

	rdb, err := redis.NewClient(cfg.Redis)
	if err != nil {
		slog.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()
	slog.Info("connected to redis")

	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.ReportGenerated)
	defer producer.Close()

	job := report.NewJob(
		client,
		report.RedisLocker{Client: rdb},
		report.NewArchive(db.DB, cfg.Reporter.RetainWeeks),
		producer,
		m,
		report.Config{
			Location:      loc,
			LockTTL:       cfg.Reporter.LockTTL,
			RetryAttempts: cfg.Reporter.RetryAttempts,
			RetryDelay:    time.Second,
		},
	)

	run := func() error {
		_, err := job.Run(ctx, time.Now())
		if errors.Is(err, apperrors.ErrLockHeld) {
			return nil
		}
		return err
	}

	if *once {
		if err := run(); err != nil {
			slog.Error("report run failed", "error", err)
			os.Exit(1)
		}
		return
	}

	metricsDone := make(chan struct{})
	if cfg.Metrics.Enabled {
		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Metrics.Port))
		if err != nil {
			slog.Error("metrics listener", "error", err)
			os.Exit(1)
		}
		go func() {
			defer close(metricsDone)
			if err := metrics.Serve(ctx, ln, reg, cfg.Server.ShutdownTimeout); err != nil {
				slog.Error("metrics server error", "error", err)
			}
		}()
	} else {
		close(metricsDone)
	}

	cl := newCronLogger(logger.WithComponent("scheduler"))
	scheduler := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.SkipIfStillRunning(cl)),
	)
	if _, err := scheduler.AddFunc(cfg.Reporter.Schedule, func() {
		if err := run(); err != nil {
			slog.Error("report run failed", "error", err)
		}
	}); err != nil {
		slog.Error("invalid reporter schedule", "schedule", cfg.Reporter.Schedule, "error", err)
		os.Exit(1)
	}
	scheduler.Start()
	slog.Info("reporter scheduled", "next", scheduler.Entries()[0].Next)

	<-ctx.Done()
	slog.Info("shutdown signal received")

	// Stop waits for a running job to finish.
	<-scheduler.Stop().Done()

	<-metricsDone

	slog.Info("reporter stopped")
}
