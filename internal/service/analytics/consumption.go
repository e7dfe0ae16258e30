package analytics

import (
	"math"
	"sort"

	"github.com/mmcl/printrun/internal/domain/models"
)

// NewsprintPlates is plate consumption grouped by newsprint supplier.
type NewsprintPlates struct {
	NewsprintName    string `json:"newsprint_name"`
	TotalConsumption int    `json:"total_consumption"`
	Count            int    `json:"count"`
}

// PlatesByNewsprint skips records that name no newsprint.
func PlatesByNewsprint(records []models.ProductionRecord, cat Catalog) []NewsprintPlates {
	idx := map[string]int{}
	out := make([]NewsprintPlates, 0)
	for _, r := range records {
		if r.NewsprintID == nil {
			continue
		}
		name := cat.NewsprintName(*r.NewsprintID)
		i, ok := idx[name]
		if !ok {
			i = len(out)
			idx[name] = i
			out = append(out, NewsprintPlates{NewsprintName: name})
		}
		out[i].TotalConsumption += r.PlateConsumption
		out[i].Count++
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalConsumption > out[j].TotalConsumption })
	return out
}

type NewsprintStats struct {
	TotalKgs        float64 `json:"total_kgs"`
	AvgKgsPerDay    float64 `json:"avg_kgs_per_day"`
	AvgKgsPerRecord float64 `json:"avg_kgs_per_record"`
	MinKgs          float64 `json:"min_kgs"`
	MaxKgs          float64 `json:"max_kgs"`
	TotalDays       int     `json:"total_days"`
	TotalRecords    int     `json:"total_records"`
}

type NewsprintKgs struct {
	NewsprintName string  `json:"newsprint_name"`
	TotalKgs      float64 `json:"total_kgs"`
	Count         int     `json:"count"`
	AvgKgs        float64 `json:"avg_kgs"`
}

type PublicationKgs struct {
	PublicationName string  `json:"publication_name"`
	TotalKgs        float64 `json:"total_kgs"`
	Count           int     `json:"count"`
}

type DailyKgs struct {
	Date     string  `json:"date"`
	TotalKgs float64 `json:"total_kgs"`
	Count    int     `json:"count"`
}

type NewsprintReport struct {
	Statistics    NewsprintStats   `json:"statistics"`
	ByNewsprint   []NewsprintKgs   `json:"by_newsprint"`
	ByPublication []PublicationKgs `json:"by_publication"`
	DailyTrend    []DailyKgs       `json:"daily_trend"`
}

// NewsprintUsage reports newsprint kilograms. Only records with a newsprint
// type and a positive weight count.
func NewsprintUsage(records []models.ProductionRecord, cat Catalog) NewsprintReport {
	byNewsprint := map[string]*NewsprintKgs{}
	byPub := map[string]*PublicationKgs{}
	daily := map[string]*DailyKgs{}
	stats := NewsprintStats{MinKgs: math.MaxFloat64}

	for _, r := range records {
		if r.NewsprintID == nil || r.NewsprintKgs <= 0 {
			continue
		}
		kgs := r.NewsprintKgs

		name := cat.NewsprintName(*r.NewsprintID)
		n := byNewsprint[name]
		if n == nil {
			n = &NewsprintKgs{NewsprintName: name}
			byNewsprint[name] = n
		}
		n.TotalKgs += kgs
		n.Count++

		pub := cat.PublicationName(r)
		p := byPub[pub]
		if p == nil {
			p = &PublicationKgs{PublicationName: pub}
			byPub[pub] = p
		}
		p.TotalKgs += kgs
		p.Count++

		d := daily[r.RecordDate]
		if d == nil {
			d = &DailyKgs{Date: r.RecordDate}
			daily[r.RecordDate] = d
		}
		d.TotalKgs += kgs
		d.Count++

		stats.TotalKgs += kgs
		stats.TotalRecords++
		stats.MinKgs = math.Min(stats.MinKgs, kgs)
		stats.MaxKgs = math.Max(stats.MaxKgs, kgs)
	}

	if stats.TotalRecords == 0 {
		stats.MinKgs = 0
	}
	stats.TotalDays = len(daily)
	stats.AvgKgsPerDay = round2(ratio(stats.TotalKgs, float64(stats.TotalDays)))
	stats.AvgKgsPerRecord = round2(ratio(stats.TotalKgs, float64(stats.TotalRecords)))
	stats.TotalKgs = round2(stats.TotalKgs)

	report := NewsprintReport{
		Statistics:    stats,
		ByNewsprint:   make([]NewsprintKgs, 0, len(byNewsprint)),
		ByPublication: make([]PublicationKgs, 0, len(byPub)),
		DailyTrend:    make([]DailyKgs, 0, len(daily)),
	}
	for _, n := range byNewsprint {
		row := *n
		row.AvgKgs = round2(ratio(row.TotalKgs, float64(row.Count)))
		row.TotalKgs = round2(row.TotalKgs)
		report.ByNewsprint = append(report.ByNewsprint, row)
	}
	sort.Slice(report.ByNewsprint, func(i, j int) bool {
		if report.ByNewsprint[i].TotalKgs != report.ByNewsprint[j].TotalKgs {
			return report.ByNewsprint[i].TotalKgs > report.ByNewsprint[j].TotalKgs
		}
		return report.ByNewsprint[i].NewsprintName < report.ByNewsprint[j].NewsprintName
	})
	for _, p := range byPub {
		row := *p
		row.TotalKgs = round2(row.TotalKgs)
		report.ByPublication = append(report.ByPublication, row)
	}
	sort.Slice(report.ByPublication, func(i, j int) bool {
		if report.ByPublication[i].TotalKgs != report.ByPublication[j].TotalKgs {
			return report.ByPublication[i].TotalKgs > report.ByPublication[j].TotalKgs
		}
		return report.ByPublication[i].PublicationName < report.ByPublication[j].PublicationName
	})
	for _, date := range sortedDates(daily) {
		d := *daily[date]
		d.TotalKgs = round2(d.TotalKgs)
		report.DailyTrend = append(report.DailyTrend, d)
	}
	return report
}

type PlateStats struct {
	TotalPlates        int     `json:"total_plates"`
	TotalPages         int     `json:"total_pages"`
	AvgPlatesPerDay    float64 `json:"avg_plates_per_day"`
	AvgPlatesPerRecord float64 `json:"avg_plates_per_record"`
	MinPlates          int     `json:"min_plates"`
	MaxPlates          int     `json:"max_plates"`
	PlatePerPage       float64 `json:"plate_per_page"`
	TotalDays          int     `json:"total_days"`
	TotalRecords       int     `json:"total_records"`
}

type PublicationPlates struct {
	PublicationName string  `json:"publication_name"`
	TotalPlates     int     `json:"total_plates"`
	TotalPages      int     `json:"total_pages"`
	Count           int     `json:"count"`
	PlatePerPage    float64 `json:"plate_per_page"`
}

type DailyPlates struct {
	Date        string `json:"date"`
	TotalPlates int    `json:"total_plates"`
	TotalPages  int    `json:"total_pages"`
}

type DailyRatio struct {
	Date         string  `json:"date"`
	PlatePerPage float64 `json:"plate_per_page"`
}

type PlateReport struct {
	Statistics        PlateStats          `json:"statistics"`
	ByPublication     []PublicationPlates `json:"by_publication"`
	DailyTrend        []DailyPlates       `json:"daily_trend"`
	PlatePerPageTrend []DailyRatio        `json:"plate_per_page_trend"`
}

// PlateConsumption summarises plates used against pages printed.
func PlateConsumption(records []models.ProductionRecord, cat Catalog) PlateReport {
	byPub := map[string]*PublicationPlates{}
	daily := map[string]*DailyPlates{}
	stats := PlateStats{TotalRecords: len(records)}

	for i, r := range records {
		pub := cat.PublicationName(r)
		p := byPub[pub]
		if p == nil {
			p = &PublicationPlates{PublicationName: pub}
			byPub[pub] = p
		}
		p.TotalPlates += r.PlateConsumption
		p.TotalPages += r.TotalPages
		p.Count++

		d := daily[r.RecordDate]
		if d == nil {
			d = &DailyPlates{Date: r.RecordDate}
			daily[r.RecordDate] = d
		}
		d.TotalPlates += r.PlateConsumption
		d.TotalPages += r.TotalPages

		stats.TotalPlates += r.PlateConsumption
		stats.TotalPages += r.TotalPages
		if i == 0 {
			stats.MinPlates, stats.MaxPlates = r.PlateConsumption, r.PlateConsumption
		}
		stats.MinPlates = min(stats.MinPlates, r.PlateConsumption)
		stats.MaxPlates = max(stats.MaxPlates, r.PlateConsumption)
	}

	stats.TotalDays = len(daily)
	stats.AvgPlatesPerDay = round2(ratio(float64(stats.TotalPlates), float64(stats.TotalDays)))
	stats.AvgPlatesPerRecord = round2(ratio(float64(stats.TotalPlates), float64(stats.TotalRecords)))
	stats.PlatePerPage = round2(ratio(float64(stats.TotalPlates), float64(stats.TotalPages)))

	report := PlateReport{
		Statistics:        stats,
		ByPublication:     make([]PublicationPlates, 0, len(byPub)),
		DailyTrend:        make([]DailyPlates, 0, len(daily)),
		PlatePerPageTrend: make([]DailyRatio, 0, len(daily)),
	}
	for _, p := range byPub {
		row := *p
		row.PlatePerPage = round2(ratio(float64(row.TotalPlates), float64(row.TotalPages)))
		report.ByPublication = append(report.ByPublication, row)
	}
	sort.Slice(report.ByPublication, func(i, j int) bool {
		if report.ByPublication[i].TotalPlates != report.ByPublication[j].TotalPlates {
			return report.ByPublication[i].TotalPlates > report.ByPublication[j].TotalPlates
		}
		return report.ByPublication[i].PublicationName < report.ByPublication[j].PublicationName
	})
	for _, date := range sortedDates(daily) {
		d := *daily[date]
		report.DailyTrend = append(report.DailyTrend, d)
		report.PlatePerPageTrend = append(report.PlatePerPageTrend, DailyRatio{
			Date:         date,
			PlatePerPage: round2(ratio(float64(d.TotalPlates), float64(d.TotalPages))),
		})
	}
	return report
}

type WasteStats struct {
	TotalRecords    int     `json:"total_records"`
	TotalPlates     int     `json:"total_plates"`
	TotalWastes     int     `json:"total_wastes"`
	TotalPageWastes int     `json:"total_page_wastes"`
	WastePercentage float64 `json:"waste_percentage"`
}

// WasteDetail is one row of the per-PO waste table. Wastes counts plates,
// PageWastes counts printed copies.
type WasteDetail struct {
	RecordID         int64  `json:"record_id"`
	PONumber         int64  `json:"po_number"`
	PublicationName  string `json:"publication_name"`
	MachineName      string `json:"machine_name"`
	TotalPages       int    `json:"total_pages"`
	PlateConsumption int    `json:"plate_consumption"`
	Wastes           int    `json:"wastes"`
	PageWastes       int    `json:"page_wastes"`
	RecordDate       string `json:"record_date"`
}

type DailyWaste struct {
	Date        string `json:"date"`
	TotalPlates int    `json:"total_plates"`
	TotalWastes int    `json:"total_wastes"`
	PageWastes  int    `json:"page_wastes"`
}

type WasteReport struct {
	Statistics WasteStats    `json:"statistics"`
	Details    []WasteDetail `json:"details"`
	DailyTrend []DailyWaste  `json:"daily_trend"`
}

// Wastes compares plates consumed with plates wasted.
func Wastes(records []models.ProductionRecord, cat Catalog) WasteReport {
	daily := map[string]*DailyWaste{}
	report := WasteReport{
		Details:    make([]WasteDetail, 0, len(records)),
		DailyTrend: make([]DailyWaste, 0),
	}
	stats := &report.Statistics
	stats.TotalRecords = len(records)

	for _, r := range records {
		stats.TotalPlates += r.PlateConsumption
		stats.TotalWastes += r.Wastes
		stats.TotalPageWastes += r.PageWastes

		report.Details = append(report.Details, WasteDetail{
			RecordID:         r.ID,
			PONumber:         r.PONumber,
			PublicationName:  cat.PublicationName(r),
			MachineName:      cat.MachineName(r.MachineID),
			TotalPages:       r.TotalPages,
			PlateConsumption: r.PlateConsumption,
			Wastes:           r.Wastes,
			PageWastes:       r.PageWastes,
			RecordDate:       r.RecordDate,
		})

		d := daily[r.RecordDate]
		if d == nil {
			d = &DailyWaste{Date: r.RecordDate}
			daily[r.RecordDate] = d
		}
		d.TotalPlates += r.PlateConsumption
		d.TotalWastes += r.Wastes
		d.PageWastes += r.PageWastes
	}

	stats.WastePercentage = round2(ratio(float64(stats.TotalWastes), float64(stats.TotalPlates)) * 100)

	sort.SliceStable(report.Details, func(i, j int) bool {
		if report.Details[i].RecordDate != report.Details[j].RecordDate {
			return report.Details[i].RecordDate > report.Details[j].RecordDate
		}
		return report.Details[i].RecordID > report.Details[j].RecordID
	})
	for _, date := range sortedDates(daily) {
		report.DailyTrend = append(report.DailyTrend, *daily[date])
	}
	return report
}
