package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mmcl/printrun/internal/domain/models"
)

// DailyReports is implemented by reporting.Service.
type DailyReports interface {
	StoredReport(ctx context.Context, day string) (models.DailyReport, error)
	PublishDay(ctx context.Context, day string) (models.DailyReport, error)
}

// ReportHandler exposes the end-of-day snapshot.
type ReportHandler struct {
	reports DailyReports
	now     func() time.Time
}

func NewReportHandler(reports DailyReports) *ReportHandler {
	return &ReportHandler{reports: reports, now: time.Now}
}

// day defaults to yesterday.
func (h *ReportHandler) day(c *gin.Context) string {
	if d := c.Query("date"); d != "" {
		return d
	}
	return h.now().AddDate(0, 0, -1).Format(models.DateLayout)
}

// Daily returns the stored snapshot for ?date=, building it when missing.
func (h *ReportHandler) Daily(c *gin.Context) {
	report, err := h.reports.StoredReport(c.Request.Context(), h.day(c))
	if err != nil {
		fail(c, err)
		return
	}
	respondData(c, http.StatusOK, report)
}

// Publish rebuilds the snapshot for ?date= and pushes it to the sinks.
func (h *ReportHandler) Publish(c *gin.Context) {
	report, err := h.reports.PublishDay(c.Request.Context(), h.day(c))
	if err != nil {
		fail(c, err)
		return
	}
	respondData(c, http.StatusOK, report)
}
