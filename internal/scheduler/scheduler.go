package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mmcl/printrun/internal/config"
	"github.com/mmcl/printrun/internal/domain/models"
)

const jobTimeout = 2 * time.Minute

// DailyPublisher builds and publishes one day's report.
type DailyPublisher interface {
	PublishDay(ctx context.Context, day string) (models.DailyReport, error)
}

// BatchAnalyzer triggers the prediction service's nightly run.
type BatchAnalyzer interface {
	BatchAnalysis(ctx context.Context) (json.RawMessage, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	cfg      config.ReportingConfig
	location *time.Location
	reports  DailyPublisher
	ml       BatchAnalyzer
	now      func() time.Time
	logger   *zap.Logger
}

// NewScheduler creates a scheduler running in cfg.Timezone. ml may be nil.
func NewScheduler(cfg config.ReportingConfig, reports DailyPublisher, ml BatchAnalyzer, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc := time.Local
	if cfg.Timezone != "" {
		var err error
		loc, err = time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
		}
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		cfg:      cfg,
		location: loc,
		reports:  reports,
		ml:       ml,
		now:      time.Now,
		logger:   logger,
	}, nil
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler",
		zap.String("timezone", s.location.String()),
		zap.String("report_schedule", s.cfg.CronSchedule),
		zap.String("ml_batch_schedule", s.cfg.MLBatchCronSchedule),
	)

	if s.reports != nil && s.cfg.CronSchedule != "" {
		if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.publishYesterday); err != nil {
			return fmt.Errorf("schedule daily report %q: %w", s.cfg.CronSchedule, err)
		}
	}
	if s.ml != nil && s.cfg.MLBatchCronSchedule != "" {
		if _, err := s.cron.AddFunc(s.cfg.MLBatchCronSchedule, s.runBatchAnalysis); err != nil {
			return fmt.Errorf("schedule ml batch analysis %q: %w", s.cfg.MLBatchCronSchedule, err)
		}
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

// Jobs reports how many jobs are registered.
func (s *Scheduler) Jobs() int {
	return len(s.cron.Entries())
}

// yesterday is the previous calendar day in the scheduler's timezone.
func (s *Scheduler) yesterday() string {
	return s.now().In(s.location).AddDate(0, 0, -1).Format(models.DateLayout)
}

func (s *Scheduler) publishYesterday() {
	day := s.yesterday()
	s.logger.Info("generating daily report", zap.String("date", day))

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if _, err := s.reports.PublishDay(ctx, day); err != nil {
		s.logger.Error("failed to publish daily report", zap.String("date", day), zap.Error(err))
		return
	}
	s.logger.Info("daily report published successfully", zap.String("date", day))
}

func (s *Scheduler) runBatchAnalysis() {
	s.logger.Info("triggering ml batch analysis")

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if _, err := s.ml.BatchAnalysis(ctx); err != nil {
		s.logger.Error("ml batch analysis failed", zap.Error(err))
		return
	}
	s.logger.Info("ml batch analysis completed")
}
