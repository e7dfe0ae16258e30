package analytics

import (
	"math"
	"sort"

	"github.com/mmcl/printrun/internal/domain/models"
)

// PageRollup is the shared per-publication and per-machine page summary.
type PageRollup struct {
	TotalPOs          int     `json:"total_pos"`
	TotalRecords      int     `json:"total_records"`
	TotalPages        int     `json:"total_pages"`
	AvgPagesPerRecord float64 `json:"avg_pages_per_record"`
	MinPages          int     `json:"min_pages"`
	MaxPages          int     `json:"max_pages"`
	TotalNewsprintKgs float64 `json:"total_newsprint_kgs"`
	TotalPlates       int     `json:"total_plates"`
}

type PublicationRollup struct {
	PublicationName string `json:"publication_name"`
	PageRollup
	MachinesUsed int `json:"machines_used"`
}

type MachineRollup struct {
	MachineName string `json:"machine_name"`
	PageRollup
	PublicationsPrinted int `json:"publications_printed"`
}

type PrintOrderStats struct {
	TotalRecords       int     `json:"total_records"`
	TotalUniquePOs     int     `json:"total_unique_pos"`
	TotalPages         int     `json:"total_pages"`
	AvgPagesPerRecord  float64 `json:"avg_pages_per_record"`
	UniqueMachines     int     `json:"unique_machines"`
	UniquePublications int     `json:"unique_publications"`
}

type DailyProduction struct {
	Date              string  `json:"date"`
	TotalRecords      int     `json:"total_records"`
	TotalPages        int     `json:"total_pages"`
	TotalPlates       int     `json:"total_plates"`
	TotalNewsprintKgs float64 `json:"total_newsprint_kgs"`
}

type PrintOrderReport struct {
	Statistics    PrintOrderStats     `json:"statistics"`
	ByPublication []PublicationRollup `json:"by_publication"`
	ByMachine     []MachineRollup     `json:"by_machine"`
	DailyTrend    []DailyProduction   `json:"daily_trend"`
}

type pageAcc struct {
	pos     set[int64]
	others  set[string]
	records int
	pages   int
	minP    int
	maxP    int
	kgs     float64
	plates  int
}

func newPageAcc() *pageAcc {
	return &pageAcc{pos: set[int64]{}, others: set[string]{}, minP: math.MaxInt}
}

func (a *pageAcc) add(r models.ProductionRecord, other string) {
	a.pos.add(r.PONumber)
	a.others.add(other)
	a.records++
	a.pages += r.TotalPages
	a.minP = min(a.minP, r.TotalPages)
	a.maxP = max(a.maxP, r.TotalPages)
	a.kgs += r.NewsprintKgs
	a.plates += r.PlateConsumption
}

func (a *pageAcc) rollup() PageRollup {
	return PageRollup{
		TotalPOs:          len(a.pos),
		TotalRecords:      a.records,
		TotalPages:        a.pages,
		AvgPagesPerRecord: round2(ratio(float64(a.pages), float64(a.records))),
		MinPages:          a.minP,
		MaxPages:          a.maxP,
		TotalNewsprintKgs: round2(a.kgs),
		TotalPlates:       a.plates,
	}
}

// PrintOrders summarises pages and purchase orders by publication, machine and day.
func PrintOrders(records []models.ProductionRecord, cat Catalog) PrintOrderReport {
	byPub := map[string]*pageAcc{}
	byMachine := map[string]*pageAcc{}
	daily := map[string]*DailyProduction{}
	pos := set[int64]{}
	totalPages := 0

	for _, r := range records {
		pub := cat.PublicationName(r)
		machine := cat.MachineName(r.MachineID)

		if byPub[pub] == nil {
			byPub[pub] = newPageAcc()
		}
		byPub[pub].add(r, machine)
		if byMachine[machine] == nil {
			byMachine[machine] = newPageAcc()
		}
		byMachine[machine].add(r, pub)

		d := daily[r.RecordDate]
		if d == nil {
			d = &DailyProduction{Date: r.RecordDate}
			daily[r.RecordDate] = d
		}
		d.TotalRecords++
		d.TotalPages += r.TotalPages
		d.TotalPlates += r.PlateConsumption
		d.TotalNewsprintKgs += r.NewsprintKgs

		pos.add(r.PONumber)
		totalPages += r.TotalPages
	}

	report := PrintOrderReport{
		Statistics: PrintOrderStats{
			TotalRecords:       len(records),
			TotalUniquePOs:     len(pos),
			TotalPages:         totalPages,
			AvgPagesPerRecord:  round2(ratio(float64(totalPages), float64(len(records)))),
			UniqueMachines:     len(byMachine),
			UniquePublications: len(byPub),
		},
		ByPublication: make([]PublicationRollup, 0, len(byPub)),
		ByMachine:     make([]MachineRollup, 0, len(byMachine)),
		DailyTrend:    make([]DailyProduction, 0, len(daily)),
	}

	for name, acc := range byPub {
		report.ByPublication = append(report.ByPublication, PublicationRollup{
			PublicationName: name,
			PageRollup:      acc.rollup(),
			MachinesUsed:    len(acc.others),
		})
	}
	sort.Slice(report.ByPublication, func(i, j int) bool {
		a, b := report.ByPublication[i], report.ByPublication[j]
		if a.TotalPages != b.TotalPages {
			return a.TotalPages > b.TotalPages
		}
		return a.PublicationName < b.PublicationName
	})

	report.ByMachine = machineRollups(byMachine)

	for _, date := range sortedDates(daily) {
		d := *daily[date]
		d.TotalNewsprintKgs = round2(d.TotalNewsprintKgs)
		report.DailyTrend = append(report.DailyTrend, d)
	}
	return report
}

func machineRollups(byMachine map[string]*pageAcc) []MachineRollup {
	out := make([]MachineRollup, 0, len(byMachine))
	for name, acc := range byMachine {
		out = append(out, MachineRollup{
			MachineName:         name,
			PageRollup:          acc.rollup(),
			PublicationsPrinted: len(acc.others),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalPages != out[j].TotalPages {
			return out[i].TotalPages > out[j].TotalPages
		}
		return out[i].MachineName < out[j].MachineName
	})
	return out
}

// POCount is one purchase order's share of the filtered records.
type POCount struct {
	PONumber   int64 `json:"po_number"`
	TotalPages int   `json:"total_pages"`
	Count      int   `json:"count"`
}

// TopPOs returns the ten most frequently printed purchase orders.
func TopPOs(records []models.ProductionRecord) []POCount {
	idx := map[int64]int{}
	out := make([]POCount, 0)
	for _, r := range records {
		i, ok := idx[r.PONumber]
		if !ok {
			i = len(out)
			idx[r.PONumber] = i
			out = append(out, POCount{PONumber: r.PONumber})
		}
		out[i].TotalPages += r.TotalPages
		out[i].Count++
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].PONumber < out[j].PONumber
	})
	if len(out) > 10 {
		out = out[:10]
	}
	return out
}

// MachinePages is the simple per-machine chart row.
type MachinePages struct {
	MachineName string `json:"machine_name"`
	TotalPages  int    `json:"total_pages"`
	Count       int    `json:"count"`
}

func Machines(records []models.ProductionRecord, cat Catalog) []MachinePages {
	idx := map[string]int{}
	out := make([]MachinePages, 0)
	for _, r := range records {
		name := cat.MachineName(r.MachineID)
		i, ok := idx[name]
		if !ok {
			i = len(out)
			idx[name] = i
			out = append(out, MachinePages{MachineName: name})
		}
		out[i].TotalPages += r.TotalPages
		out[i].Count++
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalPages > out[j].TotalPages })
	return out
}

type MachineStats struct {
	TotalMachines     int     `json:"total_machines"`
	TotalRecords      int     `json:"total_records"`
	TotalPages        int     `json:"total_pages"`
	AvgPagesPerRecord float64 `json:"avg_pages_per_record"`
}

type MachineDay struct {
	Date         string `json:"date"`
	MachineName  string `json:"machine_name"`
	TotalRecords int    `json:"total_records"`
	TotalPages   int    `json:"total_pages"`
}

type MachineReport struct {
	Statistics MachineStats    `json:"statistics"`
	ByMachine  []MachineRollup `json:"by_machine"`
	DailyTrend []MachineDay    `json:"daily_trend"`
}

// MachineDetailed breaks production down per machine with a per-day series.
func MachineDetailed(records []models.ProductionRecord, cat Catalog) MachineReport {
	byMachine := map[string]*pageAcc{}
	type key struct{ date, machine string }
	days := map[key]*MachineDay{}
	totalPages := 0

	for _, r := range records {
		machine := cat.MachineName(r.MachineID)
		if byMachine[machine] == nil {
			byMachine[machine] = newPageAcc()
		}
		byMachine[machine].add(r, cat.PublicationName(r))

		k := key{r.RecordDate, machine}
		if days[k] == nil {
			days[k] = &MachineDay{Date: r.RecordDate, MachineName: machine}
		}
		days[k].TotalRecords++
		days[k].TotalPages += r.TotalPages
		totalPages += r.TotalPages
	}

	trend := make([]MachineDay, 0, len(days))
	for _, d := range days {
		trend = append(trend, *d)
	}
	sort.Slice(trend, func(i, j int) bool {
		if trend[i].Date != trend[j].Date {
			return trend[i].Date < trend[j].Date
		}
		return trend[i].MachineName < trend[j].MachineName
	})

	return MachineReport{
		Statistics: MachineStats{
			TotalMachines:     len(byMachine),
			TotalRecords:      len(records),
			TotalPages:        totalPages,
			AvgPagesPerRecord: round2(ratio(float64(totalPages), float64(len(records)))),
		},
		ByMachine:  machineRollups(byMachine),
		DailyTrend: trend,
	}
}

// LPRSDay is the mean LPRS checkpoint for one business date, in minutes after midnight.
type LPRSDay struct {
	Date           string `json:"date"`
	AvgLPRSMinutes int    `json:"avg_lprs_minutes"`
}

// LPRS averages the LPRS time per day for the seven most recent dates. Records
// without a readable LPRS time are left out of the average.
func LPRS(records []models.ProductionRecord) []LPRSDay {
	type acc struct{ total, count int }
	byDate := map[string]*acc{}
	for _, r := range records {
		secs, err := ClockSeconds(r.LPRSTime)
		if err != nil {
			continue
		}
		a := byDate[r.RecordDate]
		if a == nil {
			a = &acc{}
			byDate[r.RecordDate] = a
		}
		a.total += secs / 60
		a.count++
	}

	dates := sortedDates(byDate)
	out := make([]LPRSDay, 0, min(len(dates), 7))
	for i := len(dates) - 1; i >= 0 && len(out) < 7; i-- {
		a := byDate[dates[i]]
		out = append(out, LPRSDay{
			Date:           dates[i],
			AvgLPRSMinutes: int(math.Round(float64(a.total) / float64(a.count))),
		})
	}
	return out
}
