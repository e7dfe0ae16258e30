package analytics

import (
	"github.com/mmcl/printrun/internal/domain/models"
)

// DailySummary totals the records dated day. Records from other days are ignored.
func DailySummary(records []models.ProductionRecord, day string) models.DailyReport {
	report := models.DailyReport{Date: day}
	pos := set[int64]{}
	var hours float64

	for _, r := range records {
		if r.RecordDate != day {
			continue
		}
		report.TotalRecords++
		pos.add(r.PONumber)
		report.TotalPages += r.TotalPages
		report.TotalPlates += r.PlateConsumption
		report.PlateWastes += r.Wastes
		report.PageWastes += r.PageWastes
		report.NewsprintKgs += r.NewsprintKgs
		if h, ok := ElapsedHours(r.PageStartTime, r.PageEndTime); ok {
			hours += h
		}
		for _, e := range r.DowntimeEntries {
			if secs, err := ParseDuration(e.DowntimeDuration); err == nil {
				report.DowntimeSeconds += secs
			}
		}
	}

	report.UniquePOs = len(pos)
	report.NewsprintKgs = round2(report.NewsprintKgs)
	report.PrintHours = round2(hours)
	report.DowntimeDuration = FormatDuration(report.DowntimeSeconds)
	return report
}
