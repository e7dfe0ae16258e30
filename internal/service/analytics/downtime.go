package analytics

import (
	"math"
	"sort"

	"github.com/mmcl/printrun/internal/domain/models"
)

// ReasonDowntime is one logged downtime reason with its totals.
type ReasonDowntime struct {
	ReasonID         int64  `json:"downtime_reason_id"`
	Reason           string `json:"reason"`
	Code             string `json:"code"`
	Category         string `json:"category"`
	TotalOccurrences int    `json:"total_occurrences"`
	TotalSeconds     int64  `json:"total_seconds"`
	TotalDuration    string `json:"total_duration"`
	AvgDuration      int64  `json:"avg_duration"`
	AvgPerDay        string `json:"avg_per_day"`
	Days             int    `json:"days"`
}

type CategoryDowntime struct {
	Category         string `json:"category"`
	TotalOccurrences int    `json:"total_occurrences"`
	TotalSeconds     int64  `json:"total_seconds"`
	TotalDuration    string `json:"total_duration"`
}

type DowntimeStats struct {
	TotalOccurrences int    `json:"total_occurrences"`
	TotalSeconds     int64  `json:"total_seconds"`
	TotalDuration    string `json:"total_duration"`
	ReasonsLogged    int    `json:"reasons_logged"`
}

type DowntimeReport struct {
	Statistics DowntimeStats      `json:"statistics"`
	Reasons    []ReasonDowntime   `json:"reasons"`
	ByCategory []CategoryDowntime `json:"by_category"`
}

type reasonAcc struct {
	count   int
	seconds int64
	days    set[string]
}

// DowntimeBreakdown groups every downtime entry of the records by reason.
// Reasons never logged do not appear. Entries whose duration cannot be read
// are ignored.
func DowntimeBreakdown(records []models.ProductionRecord, cat Catalog) DowntimeReport {
	byReason := map[int64]*reasonAcc{}
	for _, r := range records {
		for _, e := range r.DowntimeEntries {
			secs, err := ParseDuration(e.DowntimeDuration)
			if err != nil {
				continue
			}
			a := byReason[e.DowntimeReasonID]
			if a == nil {
				a = &reasonAcc{days: set[string]{}}
				byReason[e.DowntimeReasonID] = a
			}
			a.count++
			a.seconds += secs
			a.days.add(r.RecordDate)
		}
	}

	report := DowntimeReport{
		Reasons:    make([]ReasonDowntime, 0, len(byReason)),
		ByCategory: make([]CategoryDowntime, 0),
	}
	byCategory := map[string]*CategoryDowntime{}

	for id, a := range byReason {
		row := ReasonDowntime{
			ReasonID:         id,
			Reason:           "Unknown",
			Category:         "uncategorized",
			TotalOccurrences: a.count,
			TotalSeconds:     a.seconds,
			TotalDuration:    FormatDuration(a.seconds),
			AvgDuration:      int64(math.Round(float64(a.seconds) / float64(a.count))),
			AvgPerDay:        FormatDuration(int64(math.Round(float64(a.seconds) / float64(len(a.days))))),
			Days:             len(a.days),
		}
		if reason, ok := cat.DowntimeReason(id); ok {
			row.Reason, row.Code = reason.Reason, reason.Code
			if reason.Category != "" {
				row.Category = reason.Category
			}
		}
		report.Reasons = append(report.Reasons, row)

		c := byCategory[row.Category]
		if c == nil {
			c = &CategoryDowntime{Category: row.Category}
			byCategory[row.Category] = c
		}
		c.TotalOccurrences += a.count
		c.TotalSeconds += a.seconds

		report.Statistics.TotalOccurrences += a.count
		report.Statistics.TotalSeconds += a.seconds
	}

	sort.Slice(report.Reasons, func(i, j int) bool {
		if report.Reasons[i].TotalSeconds != report.Reasons[j].TotalSeconds {
			return report.Reasons[i].TotalSeconds > report.Reasons[j].TotalSeconds
		}
		return report.Reasons[i].ReasonID < report.Reasons[j].ReasonID
	})

	for _, c := range byCategory {
		row := *c
		row.TotalDuration = FormatDuration(row.TotalSeconds)
		report.ByCategory = append(report.ByCategory, row)
	}
	sort.Slice(report.ByCategory, func(i, j int) bool {
		if report.ByCategory[i].TotalSeconds != report.ByCategory[j].TotalSeconds {
			return report.ByCategory[i].TotalSeconds > report.ByCategory[j].TotalSeconds
		}
		return report.ByCategory[i].Category < report.ByCategory[j].Category
	})

	report.Statistics.ReasonsLogged = len(report.Reasons)
	report.Statistics.TotalDuration = FormatDuration(report.Statistics.TotalSeconds)
	return report
}

// MachineDowntime is the downtime profile of one press.
type MachineDowntime struct {
	MachineName     string           `json:"machine_name"`
	TotalSeconds    int64            `json:"total_seconds"`
	TotalDowntime   string           `json:"total_downtime"`
	Instances       int              `json:"instances"`
	AvgDowntime     string           `json:"avg_downtime"`
	MinDowntime     string           `json:"min_downtime"`
	MaxDowntime     string           `json:"max_downtime"`
	ReasonMinutes   map[string]int64 `json:"reason_minutes"`
	RecordsAffected int              `json:"records_affected"`
}

type MachineDowntimeStats struct {
	TotalDowntimeSeconds      int64  `json:"total_downtime_seconds"`
	TotalDowntimeFormatted    string `json:"total_downtime_formatted"`
	TotalInstances            int    `json:"total_instances"`
	TotalMachinesWithDowntime int    `json:"total_machines_with_downtime"`
	AvgDowntimePerInstance    string `json:"avg_downtime_per_instance"`
}

type MachineDowntimeReport struct {
	Statistics MachineDowntimeStats `json:"statistics"`
	Machines   []MachineDowntime    `json:"machines"`
}

// DowntimeByMachine totals downtime per machine with a per-reason split in minutes.
func DowntimeByMachine(records []models.ProductionRecord, cat Catalog) MachineDowntimeReport {
	type acc struct {
		total, minS, maxS int64
		instances         int
		records           int
		reasons           map[string]int64
	}
	byMachine := map[string]*acc{}

	for _, r := range records {
		touched := false
		for _, e := range r.DowntimeEntries {
			secs, err := ParseDuration(e.DowntimeDuration)
			if err != nil {
				continue
			}
			name := cat.MachineName(r.MachineID)
			a := byMachine[name]
			if a == nil {
				a = &acc{minS: math.MaxInt64, reasons: map[string]int64{}}
				byMachine[name] = a
			}
			a.total += secs
			a.instances++
			a.minS = min(a.minS, secs)
			a.maxS = max(a.maxS, secs)
			a.reasons[reasonName(cat, e.DowntimeReasonID)] += secs / 60
			if !touched {
				a.records++
				touched = true
			}
		}
	}

	report := MachineDowntimeReport{Machines: make([]MachineDowntime, 0, len(byMachine))}
	stats := &report.Statistics
	for name, a := range byMachine {
		report.Machines = append(report.Machines, MachineDowntime{
			MachineName:     name,
			TotalSeconds:    a.total,
			TotalDowntime:   FormatDuration(a.total),
			Instances:       a.instances,
			AvgDowntime:     FormatDuration(int64(math.Round(float64(a.total) / float64(a.instances)))),
			MinDowntime:     FormatDuration(a.minS),
			MaxDowntime:     FormatDuration(a.maxS),
			ReasonMinutes:   a.reasons,
			RecordsAffected: a.records,
		})
		stats.TotalDowntimeSeconds += a.total
		stats.TotalInstances += a.instances
	}
	sort.Slice(report.Machines, func(i, j int) bool {
		if report.Machines[i].TotalSeconds != report.Machines[j].TotalSeconds {
			return report.Machines[i].TotalSeconds > report.Machines[j].TotalSeconds
		}
		return report.Machines[i].MachineName < report.Machines[j].MachineName
	})

	stats.TotalMachinesWithDowntime = len(report.Machines)
	stats.TotalDowntimeFormatted = FormatDuration(stats.TotalDowntimeSeconds)
	stats.AvgDowntimePerInstance = FormatDuration(int64(math.Round(ratio(float64(stats.TotalDowntimeSeconds), float64(stats.TotalInstances)))))
	return report
}

// MachineDowntimeMinutes is the line chart shape: one row per machine with a
// column of minutes per reason name.
func MachineDowntimeMinutes(records []models.ProductionRecord, cat Catalog) []map[string]any {
	report := DowntimeByMachine(records, cat)
	out := make([]map[string]any, 0, len(report.Machines))
	for _, m := range report.Machines {
		row := map[string]any{"machine_name": m.MachineName}
		for reason, minutes := range m.ReasonMinutes {
			row[reason] = minutes
		}
		out = append(out, row)
	}
	return out
}

type DowntimeDetail struct {
	RecordID        int64  `json:"record_id"`
	PONumber        int64  `json:"po_number"`
	PublicationName string `json:"publication_name"`
	MachineName     string `json:"machine_name"`
	RecordDate      string `json:"record_date"`
	Duration        string `json:"duration"`
	DurationSeconds int64  `json:"duration_seconds"`
}

type DowntimeDetailReport struct {
	Reason           models.DowntimeReason `json:"reason"`
	Details          []DowntimeDetail      `json:"details"`
	TotalOccurrences int                   `json:"total_occurrences"`
	TotalSeconds     int64                 `json:"total_seconds"`
	TotalDuration    string                `json:"total_duration"`
	AvgPerDay        string                `json:"avg_per_day"`
}

// DowntimeDetails lists every entry logged for one reason, newest first.
func DowntimeDetails(records []models.ProductionRecord, cat Catalog, reasonID int64) DowntimeDetailReport {
	report := DowntimeDetailReport{Details: make([]DowntimeDetail, 0)}
	if reason, ok := cat.DowntimeReason(reasonID); ok {
		report.Reason = reason
	} else {
		report.Reason = models.DowntimeReason{ID: reasonID, Reason: "Unknown"}
	}

	days := set[string]{}
	for _, r := range records {
		for _, e := range r.DowntimeEntries {
			if e.DowntimeReasonID != reasonID {
				continue
			}
			secs, err := ParseDuration(e.DowntimeDuration)
			if err != nil {
				continue
			}
			report.Details = append(report.Details, DowntimeDetail{
				RecordID:        r.ID,
				PONumber:        r.PONumber,
				PublicationName: cat.PublicationName(r),
				MachineName:     cat.MachineName(r.MachineID),
				RecordDate:      r.RecordDate,
				Duration:        FormatDuration(secs),
				DurationSeconds: secs,
			})
			report.TotalOccurrences++
			report.TotalSeconds += secs
			days.add(r.RecordDate)
		}
	}

	sort.SliceStable(report.Details, func(i, j int) bool {
		if report.Details[i].RecordDate != report.Details[j].RecordDate {
			return report.Details[i].RecordDate > report.Details[j].RecordDate
		}
		return report.Details[i].RecordID > report.Details[j].RecordID
	})

	report.TotalDuration = FormatDuration(report.TotalSeconds)
	report.AvgPerDay = FormatDuration(int64(math.Round(ratio(float64(report.TotalSeconds), float64(len(days))))))
	return report
}

func reasonName(cat Catalog, id int64) string {
	if r, ok := cat.DowntimeReason(id); ok {
		return r.Reason
	}
	return "Unknown"
}
