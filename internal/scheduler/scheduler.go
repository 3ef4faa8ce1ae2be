// Package scheduler runs the analytics report on a cron schedule and writes
// each result as JSON.
package scheduler

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"MarketAnalyst/internal/analyst"
)

// Reporter produces a report for a request.
type Reporter interface {
	Report(ctx context.Context, req analyst.Request) (*analyst.Report, error)
}

// Scheduler manages the report cron task.
type Scheduler struct {
	Cron     *cron.Cron
	Reporter Reporter
	// Template is copied for every run with AsOf set to the run time.
	Template analyst.Request
	// Path is the report file; empty writes to Out.
	Path string
	Out  io.Writer
	Ctx  context.Context

	log zerolog.Logger
	now func() time.Time
}

// NewScheduler creates a new Scheduler writing to path, or to stdout when
// path is empty.
func NewScheduler(ctx context.Context, r Reporter, tmpl analyst.Request, path string, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Reporter: r,
		Template: tmpl,
		Path:     path,
		Out:      os.Stdout,
		Ctx:      ctx,
		log:      log.With().Str("component", "scheduler").Logger(),
		now:      time.Now,
	}
}

// Register adds the report task under a six-field cron spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.reportTask); err != nil {
		return fmt.Errorf("register report task: %w", err)
	}
	s.log.Info().Str("cron", spec).Msg("report task registered")
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop stops the scheduler and waits for a running report to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

// RunNow executes the report task immediately (for RUN_ON_START or a
// one-shot run) and returns where it was written.
func (s *Scheduler) RunNow() (string, error) {
	req := s.Template
	req.Symbols = append([]string(nil), s.Template.Symbols...)
	req.AsOf = s.now()

	rep, err := s.Reporter.Report(s.Ctx, req)
	if err != nil {
		return "", fmt.Errorf("report: %w", err)
	}

	if s.Path == "" {
		return "stdout", WriteReport(s.Out, rep)
	}
	path := ReportPath(s.Path, req.AsOf)
	if err := SaveReport(path, rep); err != nil {
		return "", fmt.Errorf("save report: %w", err)
	}
	return path, nil
}

func (s *Scheduler) reportTask() {
	s.log.Info().Msg("running report task")
	dest, err := s.RunNow()
	if err != nil {
		s.log.Error().Err(err).Msg("report task failed")
		return
	}
	s.log.Info().Str("dest", dest).Msg("report written")
}
