package analytics

import (
	"math"
	"sort"

	"github.com/mmcl/printrun/internal/domain/models"
)

// HoursSummary aggregates print run lengths in hours.
type HoursSummary struct {
	TotalHours   float64 `json:"total_hours"`
	AvgHours     float64 `json:"avg_hours"`
	MinHours     float64 `json:"min_hours"`
	MaxHours     float64 `json:"max_hours"`
	TotalRecords int     `json:"total_records"`
}

type PublicationHours struct {
	PublicationName string `json:"publication_name"`
	HoursSummary
}

type MachineHours struct {
	MachineName string `json:"machine_name"`
	HoursSummary
}

type DailyHours struct {
	Date         string  `json:"date"`
	TotalHours   float64 `json:"total_hours"`
	TotalRecords int     `json:"total_records"`
}

type PrintDurationReport struct {
	Statistics    HoursSummary       `json:"statistics"`
	ByPublication []PublicationHours `json:"by_publication"`
	ByMachine     []MachineHours     `json:"by_machine"`
	DailyTrend    []DailyHours       `json:"daily_trend"`
}

type hoursAcc struct {
	total, minH, maxH float64
	count             int
}

func newHoursAcc() *hoursAcc { return &hoursAcc{minH: math.MaxFloat64} }

func (a *hoursAcc) add(h float64) {
	a.total += h
	a.count++
	a.minH = math.Min(a.minH, h)
	a.maxH = math.Max(a.maxH, h)
}

func (a *hoursAcc) summary() HoursSummary {
	if a.count == 0 {
		return HoursSummary{}
	}
	return HoursSummary{
		TotalHours:   round2(a.total),
		AvgHours:     round2(a.total / float64(a.count)),
		MinHours:     round2(a.minH),
		MaxHours:     round2(a.maxH),
		TotalRecords: a.count,
	}
}

// PrintDuration measures each run from page start to page end. Runs whose end
// precedes the start crossed midnight; records missing either time are skipped.
func PrintDuration(records []models.ProductionRecord, cat Catalog) PrintDurationReport {
	all := newHoursAcc()
	byPub := map[string]*hoursAcc{}
	byMachine := map[string]*hoursAcc{}
	daily := map[string]*DailyHours{}

	for _, r := range records {
		hours, ok := ElapsedHours(r.PageStartTime, r.PageEndTime)
		if !ok {
			continue
		}
		all.add(hours)

		pub := cat.PublicationName(r)
		if byPub[pub] == nil {
			byPub[pub] = newHoursAcc()
		}
		byPub[pub].add(hours)

		machine := cat.MachineName(r.MachineID)
		if byMachine[machine] == nil {
			byMachine[machine] = newHoursAcc()
		}
		byMachine[machine].add(hours)

		d := daily[r.RecordDate]
		if d == nil {
			d = &DailyHours{Date: r.RecordDate}
			daily[r.RecordDate] = d
		}
		d.TotalHours += hours
		d.TotalRecords++
	}

	report := PrintDurationReport{
		Statistics:    all.summary(),
		ByPublication: make([]PublicationHours, 0, len(byPub)),
		ByMachine:     make([]MachineHours, 0, len(byMachine)),
		DailyTrend:    make([]DailyHours, 0, len(daily)),
	}
	for name, a := range byPub {
		report.ByPublication = append(report.ByPublication, PublicationHours{PublicationName: name, HoursSummary: a.summary()})
	}
	sort.Slice(report.ByPublication, func(i, j int) bool {
		if report.ByPublication[i].TotalHours != report.ByPublication[j].TotalHours {
			return report.ByPublication[i].TotalHours > report.ByPublication[j].TotalHours
		}
		return report.ByPublication[i].PublicationName < report.ByPublication[j].PublicationName
	})
	for name, a := range byMachine {
		report.ByMachine = append(report.ByMachine, MachineHours{MachineName: name, HoursSummary: a.summary()})
	}
	sort.Slice(report.ByMachine, func(i, j int) bool {
		if report.ByMachine[i].TotalHours != report.ByMachine[j].TotalHours {
			return report.ByMachine[i].TotalHours > report.ByMachine[j].TotalHours
		}
		return report.ByMachine[i].MachineName < report.ByMachine[j].MachineName
	})
	for _, date := range sortedDates(daily) {
		d := *daily[date]
		d.TotalHours = round2(d.TotalHours)
		report.DailyTrend = append(report.DailyTrend, d)
	}
	return report
}
