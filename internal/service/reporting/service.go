// Package reporting builds the end-of-day production snapshot and pushes it to
// the configured sinks.
package reporting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mmcl/printrun/internal/apperr"
	"github.com/mmcl/printrun/internal/domain/models"
	"github.com/mmcl/printrun/internal/repository/mongodb"
	"github.com/mmcl/printrun/internal/repository/sheets"
	"github.com/mmcl/printrun/internal/service/analytics"
)

// RecordSource loads the records a report is built from.
type RecordSource interface {
	GetFiltered(ctx context.Context, filter models.RecordFilter) ([]models.ProductionRecord, error)
}

// Service aggregates one business day. Either sink may be nil.
type Service struct {
	records RecordSource
	store   mongodb.Repository
	sheet   sheets.ReportSheet
	now     func() time.Time
	logger  *zap.Logger
}

func NewService(records RecordSource, store mongodb.Repository, sheet sheets.ReportSheet, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		records: records,
		store:   store,
		sheet:   sheet,
		now:     time.Now,
		logger:  logger,
	}
}

// BuildDailyReport totals the records dated day (YYYY-MM-DD).
func (s *Service) BuildDailyReport(ctx context.Context, day string) (models.DailyReport, error) {
	if _, err := time.Parse(models.DateLayout, day); err != nil {
		return models.DailyReport{}, apperr.Validation("date must be YYYY-MM-DD")
	}

	records, err := s.records.GetFiltered(ctx, models.RecordFilter{StartDate: day, EndDate: day})
	if err != nil {
		return models.DailyReport{}, fmt.Errorf("load records for %s: %w", day, err)
	}

	report := analytics.DailySummary(records, day)
	report.CreatedAt = s.now().UTC()
	return report, nil
}

// Publish writes report to every configured sink. A failing sink does not
// stop the others; the failures are returned joined.
func (s *Service) Publish(ctx context.Context, report models.DailyReport) error {
	var errs []error

	if s.store != nil {
		if err := s.store.SaveDailyReport(ctx, report); err != nil {
			s.logger.Error("failed to store daily report", zap.String("date", report.Date), zap.Error(err))
			errs = append(errs, err)
		}
	}

	if s.sheet != nil {
		if err := s.appendRow(ctx, report); err != nil {
			s.logger.Error("failed to append daily report row", zap.String("date", report.Date), zap.Error(err))
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (s *Service) appendRow(ctx context.Context, report models.DailyReport) error {
	exists, err := s.sheet.HasReport(ctx, report.Date)
	if err != nil {
		return err
	}
	if exists {
		s.logger.Info("daily report row already present", zap.String("date", report.Date))
		return nil
	}
	return s.sheet.AppendDailyReport(ctx, report)
}

// PublishDay builds and publishes the report for day.
func (s *Service) PublishDay(ctx context.Context, day string) (models.DailyReport, error) {
	report, err := s.BuildDailyReport(ctx, day)
	if err != nil {
		return models.DailyReport{}, err
	}
	if err := s.Publish(ctx, report); err != nil {
		return report, err
	}

	s.logger.Info("daily report published",
		zap.String("date", report.Date),
		zap.Int("records", report.TotalRecords),
		zap.Int("total_pages", report.TotalPages),
	)
	return report, nil
}

// StoredReport returns the snapshot saved for day, building it from the
// records when no snapshot store is configured or none was saved yet.
func (s *Service) StoredReport(ctx context.Context, day string) (models.DailyReport, error) {
	if s.store != nil {
		report, err := s.store.GetDailyReport(ctx, day)
		if err == nil {
			return *report, nil
		}
		if !errors.Is(err, mongodb.ErrReportNotFound) {
			s.logger.Warn("daily report lookup failed", zap.String("date", day), zap.Error(err))
		}
	}
	return s.BuildDailyReport(ctx, day)
}
