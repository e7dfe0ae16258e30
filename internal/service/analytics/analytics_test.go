package analytics

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcl/printrun/internal/domain/models"
	"github.com/mmcl/printrun/internal/masterdata"
)

func catalog(t *testing.T) *masterdata.Catalog {
	t.Helper()
	c, err := masterdata.Load("")
	require.NoError(t, err)
	return c
}

func id(v int64) *int64 { return &v }

type recOpt func(*models.ProductionRecord)

func rec(recordID int64, date string, opts ...recOpt) models.ProductionRecord {
	r := models.ProductionRecord{
		ID:            recordID,
		UserID:        1,
		PublicationID: id(5),
		PONumber:      1000 + recordID,
		ColorPages:    4,
		BWPages:       20,
		TotalPages:    24,
		MachineID:     2,
		RecordDate:    date,
	}
	for _, o := range opts {
		o(&r)
	}
	return r
}

func withDowntime(pairs ...any) recOpt {
	return func(r *models.ProductionRecord) {
		for i := 0; i+1 < len(pairs); i += 2 {
			r.DowntimeEntries = append(r.DowntimeEntries, models.DowntimeEntry{
				ProductionRecordID: r.ID,
				DowntimeReasonID:   int64(pairs[i].(int)),
				DowntimeDuration:   pairs[i+1].(string),
			})
		}
	}
}

func withTimes(start, end string) recOpt {
	return func(r *models.ProductionRecord) { r.PageStartTime, r.PageEndTime = start, end }
}

func withPages(color, bw int) recOpt {
	return func(r *models.ProductionRecord) {
		r.ColorPages, r.BWPages, r.TotalPages = color, bw, color+bw
	}
}

func TestDurationRoundTrip(t *testing.T) {
	cases := []struct {
		in   string
		secs int64
		out  string
	}{
		{"00:10:00", 600, "00:10:00"},
		{"01:00:00", 3600, "01:00:00"},
		{"1:5:9", 3909, "01:05:09"},
		{"00:15", 900, "00:15:00"},
		{"27:00:01", 97201, "27:00:01"},
	}
	for _, tc := range cases {
		secs, err := ParseDuration(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.secs, secs, tc.in)
		assert.Equal(t, tc.out, FormatDuration(secs), tc.in)
	}

	for _, bad := range []string{"", "abc", "10", "00:60:00", "00:00:75", "-1:00:00", "1:2:3:4", "::"} {
		_, err := ParseDuration(bad)
		assert.Error(t, err, bad)
	}
	assert.Equal(t, "00:00:00", FormatDuration(-5))
}

func TestClockNormalisation(t *testing.T) {
	got, err := NormalizeClock("7:05")
	require.NoError(t, err)
	assert.Equal(t, "07:05:00", got)

	_, err = NormalizeClock("24:00:00")
	assert.Error(t, err)

	got, err = NormalizeDuration("0:15")
	require.NoError(t, err)
	assert.Equal(t, "00:15:00", got)
}

func TestElapsedHours(t *testing.T) {
	h, ok := ElapsedHours("23:00:00", "01:00:00")
	require.True(t, ok)
	assert.Equal(t, 2.0, h)

	h, ok = ElapsedHours("10:00:00", "10:00:00")
	require.True(t, ok)
	assert.Zero(t, h)

	h, ok = ElapsedHours("22:15:00", "23:45:00")
	require.True(t, ok)
	assert.Equal(t, 1.5, h)

	_, ok = ElapsedHours("", "01:00:00")
	assert.False(t, ok)
	_, ok = ElapsedHours("25:00:00", "01:00:00")
	assert.False(t, ok)
}

func TestDowntimeBreakdownGroupsByReason(t *testing.T) {
	records := []models.ProductionRecord{
		rec(1, "2024-03-01", withDowntime(1, "00:10:00", 2, "01:00:00")),
		rec(2, "2024-03-02", withDowntime(1, "00:05:00")),
		rec(3, "2024-03-02"),
	}

	report := DowntimeBreakdown(records, catalog(t))
	require.Len(t, report.Reasons, 2)

	b := report.Reasons[0]
	assert.Equal(t, int64(2), b.ReasonID)
	assert.Equal(t, 1, b.TotalOccurrences)
	assert.Equal(t, int64(3600), b.TotalSeconds)
	assert.Equal(t, "01:00:00", b.TotalDuration)
	assert.Equal(t, "electrical", b.Category)

	a := report.Reasons[1]
	assert.Equal(t, int64(1), a.ReasonID)
	assert.Equal(t, 2, a.TotalOccurrences)
	assert.Equal(t, int64(900), a.TotalSeconds)
	assert.Equal(t, "00:15:00", a.TotalDuration)
	assert.Equal(t, int64(450), a.AvgDuration)
	assert.Equal(t, 2, a.Days)
	assert.Equal(t, "00:07:30", a.AvgPerDay)
	assert.Equal(t, "Mechanical down time", a.Reason)
	assert.Equal(t, "mechanical", a.Category)

	assert.Equal(t, 3, report.Statistics.TotalOccurrences)
	assert.Equal(t, int64(4500), report.Statistics.TotalSeconds)
	assert.Equal(t, "01:15:00", report.Statistics.TotalDuration)
	require.Len(t, report.ByCategory, 2)
	assert.Equal(t, "electrical", report.ByCategory[0].Category)
}

func TestDowntimeBreakdownSkipsUnreadableDurations(t *testing.T) {
	records := []models.ProductionRecord{
		rec(1, "2024-03-01", withDowntime(3, "soon", 99, "00:02:00")),
	}
	report := DowntimeBreakdown(records, catalog(t))
	require.Len(t, report.Reasons, 1)
	assert.Equal(t, int64(99), report.Reasons[0].ReasonID)
	assert.Equal(t, "Unknown", report.Reasons[0].Reason)
	assert.Equal(t, "uncategorized", report.Reasons[0].Category)
}

func TestDowntimeByMachine(t *testing.T) {
	records := []models.ProductionRecord{
		rec(1, "2024-03-01", withDowntime(1, "00:10:30", 2, "00:20:00")),
		rec(2, "2024-03-01", func(r *models.ProductionRecord) { r.MachineID = 1 }, withDowntime(1, "00:05:00")),
		rec(3, "2024-03-02", withDowntime(1, "00:30:00")),
	}
	report := DowntimeByMachine(records, catalog(t))

	require.Len(t, report.Machines, 2)
	hl := report.Machines[0]
	assert.Equal(t, "High Line", hl.MachineName)
	assert.Equal(t, 3, hl.Instances)
	assert.Equal(t, 2, hl.RecordsAffected)
	assert.Equal(t, "01:00:30", hl.TotalDowntime)
	assert.Equal(t, "00:10:30", hl.MinDowntime)
	assert.Equal(t, "00:30:00", hl.MaxDowntime)
	assert.Equal(t, int64(40), hl.ReasonMinutes["Mechanical down time"])
	assert.Equal(t, int64(20), hl.ReasonMinutes["Electrical"])

	assert.Equal(t, 4, report.Statistics.TotalInstances)
	assert.Equal(t, 2, report.Statistics.TotalMachinesWithDowntime)
	assert.Equal(t, "01:05:30", report.Statistics.TotalDowntimeFormatted)

	rows := MachineDowntimeMinutes(records, catalog(t))
	require.Len(t, rows, 2)
	assert.Equal(t, "High Line", rows[0]["machine_name"])
	assert.Equal(t, int64(40), rows[0]["Mechanical down time"])
}

func TestDowntimeDetails(t *testing.T) {
	records := []models.ProductionRecord{
		rec(1, "2024-03-01", withDowntime(1, "00:10:00")),
		rec(2, "2024-03-03", withDowntime(1, "00:20:00", 2, "00:01:00")),
	}
	report := DowntimeDetails(records, catalog(t), 1)

	assert.Equal(t, "MDT", report.Reason.Code)
	require.Len(t, report.Details, 2)
	assert.Equal(t, int64(2), report.Details[0].RecordID)
	assert.Equal(t, "High Line", report.Details[0].MachineName)
	assert.Equal(t, "SAMYUKTHA KARNATAKA - BAGALKOT", report.Details[0].PublicationName)
	assert.Equal(t, 2, report.TotalOccurrences)
	assert.Equal(t, "00:30:00", report.TotalDuration)
	assert.Equal(t, "00:15:00", report.AvgPerDay)
}

func TestPrintDuration(t *testing.T) {
	records := []models.ProductionRecord{
		rec(1, "2024-03-01", withTimes("23:00:00", "01:00:00")),
		rec(2, "2024-03-01", withTimes("20:00:00", "21:00:00"), func(r *models.ProductionRecord) { r.MachineID = 1 }),
		rec(3, "2024-03-02", withTimes("", "")),
	}
	report := PrintDuration(records, catalog(t))

	assert.Equal(t, HoursSummary{TotalHours: 3, AvgHours: 1.5, MinHours: 1, MaxHours: 2, TotalRecords: 2}, report.Statistics)
	require.Len(t, report.ByMachine, 2)
	assert.Equal(t, "High Line", report.ByMachine[0].MachineName)
	assert.Equal(t, 2.0, report.ByMachine[0].TotalHours)
	require.Len(t, report.ByPublication, 1)
	require.Len(t, report.DailyTrend, 1)
	assert.Equal(t, 3.0, report.DailyTrend[0].TotalHours)
}

func TestPrintOrders(t *testing.T) {
	custom := "Election Special"
	records := []models.ProductionRecord{
		rec(1, "2024-03-02", withPages(4, 20)),
		rec(2, "2024-03-01", withPages(8, 8), func(r *models.ProductionRecord) { r.PONumber = 1001 }),
		rec(3, "2024-03-01", withPages(2, 2), func(r *models.ProductionRecord) {
			r.PublicationID, r.CustomPublicationName, r.MachineID = nil, &custom, 3
			r.NewsprintKgs, r.PlateConsumption = 10.25, 4
		}),
	}
	report := PrintOrders(records, catalog(t))

	assert.Equal(t, PrintOrderStats{
		TotalRecords:       3,
		TotalUniquePOs:     2,
		TotalPages:         44,
		AvgPagesPerRecord:  14.67,
		UniqueMachines:     2,
		UniquePublications: 2,
	}, report.Statistics)

	require.Len(t, report.ByPublication, 2)
	top := report.ByPublication[0]
	assert.Equal(t, "SAMYUKTHA KARNATAKA - BAGALKOT", top.PublicationName)
	assert.Equal(t, 1, top.TotalPOs)
	assert.Equal(t, 2, top.TotalRecords)
	assert.Equal(t, 40, top.TotalPages)
	assert.Equal(t, 16, top.MinPages)
	assert.Equal(t, 24, top.MaxPages)
	assert.Equal(t, 20.0, top.AvgPagesPerRecord)
	assert.Equal(t, 1, top.MachinesUsed)
	assert.Equal(t, custom, report.ByPublication[1].PublicationName)
	assert.Equal(t, 10.25, report.ByPublication[1].TotalNewsprintKgs)

	require.Len(t, report.ByMachine, 2)
	assert.Equal(t, "High Line", report.ByMachine[0].MachineName)

	require.Len(t, report.DailyTrend, 2)
	assert.Equal(t, "2024-03-01", report.DailyTrend[0].Date)
	assert.Equal(t, 20, report.DailyTrend[0].TotalPages)
	assert.Equal(t, 4, report.DailyTrend[0].TotalPlates)
}

func TestTopPOs(t *testing.T) {
	var records []models.ProductionRecord
	for i := 0; i < 12; i++ {
		records = append(records, rec(int64(i+1), "2024-03-01"))
	}
	for i := 0; i < 3; i++ {
		records = append(records, rec(int64(100+i), "2024-03-01", func(r *models.ProductionRecord) { r.PONumber = 7 }))
	}

	top := TopPOs(records)
	require.Len(t, top, 10)
	assert.Equal(t, POCount{PONumber: 7, TotalPages: 72, Count: 3}, top[0])
	assert.Equal(t, int64(1001), top[1].PONumber)
}

func TestMachinesAndDetailed(t *testing.T) {
	records := []models.ProductionRecord{
		rec(1, "2024-03-01"),
		rec(2, "2024-03-01", func(r *models.ProductionRecord) { r.MachineID = 4 }),
		rec(3, "2024-03-02"),
	}
	simple := Machines(records, catalog(t))
	require.Len(t, simple, 2)
	assert.Equal(t, MachinePages{MachineName: "High Line", TotalPages: 48, Count: 2}, simple[0])

	detailed := MachineDetailed(records, catalog(t))
	assert.Equal(t, 2, detailed.Statistics.TotalMachines)
	assert.Equal(t, 72, detailed.Statistics.TotalPages)
	require.Len(t, detailed.DailyTrend, 3)
	assert.Equal(t, MachineDay{Date: "2024-03-01", MachineName: "High Line", TotalRecords: 1, TotalPages: 24}, detailed.DailyTrend[0])
	assert.Equal(t, "News line s30", detailed.DailyTrend[1].MachineName)
}

func TestLPRSKeepsSevenNewestDays(t *testing.T) {
	var records []models.ProductionRecord
	for day := 1; day <= 9; day++ {
		date := fmt.Sprintf("2024-03-%02d", day)
		records = append(records,
			rec(int64(day*10), date, func(r *models.ProductionRecord) { r.LPRSTime = "01:00:00" }),
			rec(int64(day*10+1), date, func(r *models.ProductionRecord) { r.LPRSTime = "01:31:00" }),
		)
	}
	records = append(records, rec(999, "2024-03-09", func(r *models.ProductionRecord) { r.LPRSTime = "" }))

	got := LPRS(records)
	require.Len(t, got, 7)
	assert.Equal(t, LPRSDay{Date: "2024-03-09", AvgLPRSMinutes: 76}, got[0])
	assert.Equal(t, "2024-03-03", got[6].Date)
}

func TestNewsprintUsage(t *testing.T) {
	records := []models.ProductionRecord{
		rec(1, "2024-03-01", func(r *models.ProductionRecord) { r.NewsprintID, r.NewsprintKgs = id(1), 100 }),
		rec(2, "2024-03-01", func(r *models.ProductionRecord) { r.NewsprintID, r.NewsprintKgs = id(1), 50.5 }),
		rec(3, "2024-03-02", func(r *models.ProductionRecord) { r.NewsprintID, r.NewsprintKgs = id(3), 25 }),
		rec(4, "2024-03-02", func(r *models.ProductionRecord) { r.NewsprintID, r.NewsprintKgs = id(2), 0 }),
		rec(5, "2024-03-02", func(r *models.ProductionRecord) { r.NewsprintKgs = 80 }),
	}
	report := NewsprintUsage(records, catalog(t))

	assert.Equal(t, NewsprintStats{
		TotalKgs:        175.5,
		AvgKgsPerDay:    87.75,
		AvgKgsPerRecord: 58.5,
		MinKgs:          25,
		MaxKgs:          100,
		TotalDays:       2,
		TotalRecords:    3,
	}, report.Statistics)
	require.Len(t, report.ByNewsprint, 2)
	assert.Equal(t, NewsprintKgs{NewsprintName: "Ramdas", TotalKgs: 150.5, Count: 2, AvgKgs: 75.25}, report.ByNewsprint[0])
	require.Len(t, report.DailyTrend, 2)

	plates := PlatesByNewsprint(records, catalog(t))
	assert.Len(t, plates, 3)
}

func TestPlateConsumption(t *testing.T) {
	records := []models.ProductionRecord{
		rec(1, "2024-03-01", withPages(10, 10), func(r *models.ProductionRecord) { r.PlateConsumption = 10 }),
		rec(2, "2024-03-02", withPages(10, 30), func(r *models.ProductionRecord) { r.PlateConsumption = 4 }),
	}
	report := PlateConsumption(records, catalog(t))

	assert.Equal(t, 14, report.Statistics.TotalPlates)
	assert.Equal(t, 60, report.Statistics.TotalPages)
	assert.Equal(t, 4, report.Statistics.MinPlates)
	assert.Equal(t, 10, report.Statistics.MaxPlates)
	assert.Equal(t, 7.0, report.Statistics.AvgPlatesPerDay)
	assert.Equal(t, 0.23, report.Statistics.PlatePerPage)
	require.Len(t, report.PlatePerPageTrend, 2)
	assert.Equal(t, DailyRatio{Date: "2024-03-01", PlatePerPage: 0.5}, report.PlatePerPageTrend[0])
	assert.Equal(t, DailyRatio{Date: "2024-03-02", PlatePerPage: 0.1}, report.PlatePerPageTrend[1])
}

func TestWastesKeepsCountersDistinct(t *testing.T) {
	records := []models.ProductionRecord{
		rec(1, "2024-03-01", func(r *models.ProductionRecord) { r.PlateConsumption, r.Wastes, r.PageWastes = 40, 2, 300 }),
		rec(2, "2024-03-02", func(r *models.ProductionRecord) { r.PlateConsumption, r.Wastes, r.PageWastes = 10, 3, 0 }),
	}
	report := Wastes(records, catalog(t))

	assert.Equal(t, WasteStats{TotalRecords: 2, TotalPlates: 50, TotalWastes: 5, TotalPageWastes: 300, WastePercentage: 10}, report.Statistics)
	require.Len(t, report.Details, 2)
	assert.Equal(t, "2024-03-02", report.Details[0].RecordDate)
	assert.Equal(t, 3, report.Details[0].Wastes)
	assert.Equal(t, 0, report.Details[0].PageWastes)
	assert.Equal(t, 300, report.Details[1].PageWastes)
}

func TestEmptyInputYieldsZeroedReports(t *testing.T) {
	cat := catalog(t)

	orders := PrintOrders(nil, cat)
	assert.Zero(t, orders.Statistics)
	assert.NotNil(t, orders.ByPublication)
	assert.NotNil(t, orders.DailyTrend)

	assert.NotNil(t, TopPOs(nil))
	assert.NotNil(t, LPRS(nil))
	assert.NotNil(t, Machines(nil, cat))

	news := NewsprintUsage(nil, cat)
	assert.Zero(t, news.Statistics)

	plates := PlateConsumption(nil, cat)
	assert.Zero(t, plates.Statistics)
	assert.NotNil(t, plates.PlatePerPageTrend)

	down := DowntimeBreakdown(nil, cat)
	assert.Empty(t, down.Reasons)
	assert.Equal(t, "00:00:00", down.Statistics.TotalDuration)

	byMachine := DowntimeByMachine(nil, cat)
	assert.Equal(t, "00:00:00", byMachine.Statistics.AvgDowntimePerInstance)

	waste := Wastes(nil, cat)
	assert.Zero(t, waste.Statistics.WastePercentage)

	dur := PrintDuration(nil, cat)
	assert.Zero(t, dur.Statistics)

	// Empty collections must encode as [] rather than null.
	body, err := json.Marshal(down)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"reasons":[]`)
}

func TestDailySummary(t *testing.T) {
	records := []models.ProductionRecord{
		rec(1, "2024-03-01", withTimes("23:00:00", "01:00:00"), withDowntime(1, "00:15:00"), func(r *models.ProductionRecord) {
			r.PlateConsumption, r.Wastes, r.PageWastes, r.NewsprintKgs = 12, 1, 30, 99.5
		}),
		rec(2, "2024-03-01", func(r *models.ProductionRecord) { r.PONumber = 1001 }),
		rec(3, "2024-03-02"),
	}
	got := DailySummary(records, "2024-03-01")

	assert.Equal(t, models.DailyReport{
		Date:             "2024-03-01",
		TotalRecords:     2,
		UniquePOs:        1,
		TotalPages:       48,
		TotalPlates:      12,
		PlateWastes:      1,
		PageWastes:       30,
		NewsprintKgs:     99.5,
		DowntimeSeconds:  900,
		DowntimeDuration: "00:15:00",
		PrintHours:       2,
	}, got)
}
