// Package sheets writes daily production reports to a Google spreadsheet.
package sheets

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mmcl/printrun/internal/config"
	"github.com/mmcl/printrun/internal/domain/models"
)

// DailyReportsRange holds one row per report: date, records, unique POs,
// pages, plates, plate wastes, newsprint kg and downtime.
const DailyReportsRange = "DailyReports!A:H"

// ReportSheet appends daily report rows.
type ReportSheet interface {
	AppendDailyReport(ctx context.Context, report models.DailyReport) error
	HasReport(ctx context.Context, date string) (bool, error)
}

// GoogleReportSheet implements ReportSheet with the Sheets v4 API.
type GoogleReportSheet struct {
	values        *sheetsapi.SpreadsheetsValuesService
	spreadsheetID string
	sheetRange    string
	logger        *zap.Logger
}

// NewGoogleReportSheet authenticates with the service account file in cfg.
func NewGoogleReportSheet(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleReportSheet, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsPath),
		option.WithScopes(sheetsapi.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleReportSheet{
		values:        service.Spreadsheets.Values,
		spreadsheetID: cfg.SpreadsheetID,
		sheetRange:    DailyReportsRange,
		logger:        logger,
	}, nil
}

// ReportRow renders report in column order.
func ReportRow(report models.DailyReport) []interface{} {
	return []interface{}{
		report.Date,
		report.TotalRecords,
		report.UniquePOs,
		report.TotalPages,
		report.TotalPlates,
		report.PlateWastes,
		report.NewsprintKgs,
		report.DowntimeDuration,
	}
}

func (s *GoogleReportSheet) AppendDailyReport(ctx context.Context, report models.DailyReport) error {
	payload := &sheetsapi.ValueRange{Values: [][]interface{}{ReportRow(report)}}

	call := s.values.Append(s.spreadsheetID, s.sheetRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append daily report %s into %s: %w", report.Date, s.sheetRange, err)
	}

	s.logger.Debug("daily report row appended", zap.String("date", report.Date), zap.String("range", s.sheetRange))
	return nil
}

// HasReport reports whether column A already contains date.
func (s *GoogleReportSheet) HasReport(ctx context.Context, date string) (bool, error) {
	resp, err := s.values.Get(s.spreadsheetID, s.sheetRange).Context(ctx).Do()
	if err != nil {
		return false, fmt.Errorf("read range %s: %w", s.sheetRange, err)
	}
	return containsDate(resp.Values, date), nil
}

func containsDate(rows [][]interface{}, date string) bool {
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == date {
			return true
		}
	}
	return false
}
