package main

import (
	"log/slog"

	"github.com/robfig/cron/v3"
)

// cronLogger routes the scheduler's own logging through slog. cron reports
// every wake-up and run at Info, so those go to Debug.
type cronLogger struct {
	l *slog.Logger
}

var _ cron.Logger = cronLogger{}

func newCronLogger(l *slog.Logger) cronLogger {
	return cronLogger{l: l}
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error(msg, append(keysAndValues, "error", err)...)
}
