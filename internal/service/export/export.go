// Package export renders production records as spreadsheets.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mmcl/printrun/internal/domain/models"
	"github.com/mmcl/printrun/internal/service/analytics"
)

// Format selects the output encoding.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ParseFormat accepts xlsx (the default when empty) and csv.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unsupported export format %q", raw)
}

func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Catalog resolves the names printed next to record ids.
type Catalog interface {
	PublicationName(r models.ProductionRecord) string
	MachineName(id int64) string
	NewsprintName(id int64) string
	DowntimeReason(id int64) (models.DowntimeReason, bool)
}

const sheetName = "Production"

var headers = []string{
	"ID", "Date", "PO Number", "Publication", "Machine",
	"Color Pages", "BW Pages", "Total Pages", "LPRS Time",
	"Start Time", "End Time", "Print Hours", "Newsprint", "Newsprint Kgs",
	"Plates", "Plate Wastes", "Page Wastes", "Downtime", "Downtime Reasons",
	"Remarks", "User ID",
}

type totals struct {
	colorPages, bwPages, totalPages int
	plates, wastes, pageWastes      int
	kgs, hours                      float64
	downtime                        int64
}

// rows returns one row per record followed by a totals row.
func rows(records []models.ProductionRecord, cat Catalog) [][]any {
	out := make([][]any, 0, len(records)+1)
	var t totals

	for _, r := range records {
		hours, _ := analytics.ElapsedHours(r.PageStartTime, r.PageEndTime)
		var downtime int64
		reasons := make([]string, 0, len(r.DowntimeEntries))
		for _, e := range r.DowntimeEntries {
			secs, err := analytics.ParseDuration(e.DowntimeDuration)
			if err != nil {
				continue
			}
			downtime += secs
			name := "Unknown"
			if reason, ok := cat.DowntimeReason(e.DowntimeReasonID); ok {
				name = reason.Reason
			}
			reasons = append(reasons, name+" "+analytics.FormatDuration(secs))
		}

		newsprint := ""
		if r.NewsprintID != nil {
			newsprint = cat.NewsprintName(*r.NewsprintID)
		}

		out = append(out, []any{
			r.ID, r.RecordDate, r.PONumber, cat.PublicationName(r), cat.MachineName(r.MachineID),
			r.ColorPages, r.BWPages, r.TotalPages, r.LPRSTime,
			r.PageStartTime, r.PageEndTime, hours, newsprint, r.NewsprintKgs,
			r.PlateConsumption, r.Wastes, r.PageWastes, analytics.FormatDuration(downtime), strings.Join(reasons, "; "),
			r.Remarks, r.UserID,
		})

		t.colorPages += r.ColorPages
		t.bwPages += r.BWPages
		t.totalPages += r.TotalPages
		t.plates += r.PlateConsumption
		t.wastes += r.Wastes
		t.pageWastes += r.PageWastes
		t.kgs += r.NewsprintKgs
		t.hours += hours
		t.downtime += downtime
	}

	out = append(out, []any{
		"Total", "", "", "", "",
		t.colorPages, t.bwPages, t.totalPages, "",
		"", "", roundTo2(t.hours), "", roundTo2(t.kgs),
		t.plates, t.wastes, t.pageWastes, analytics.FormatDuration(t.downtime), "",
		"", "",
	})
	return out
}

func roundTo2(v float64) float64 {
	f, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	return f
}

// Write encodes records in format.
func Write(w io.Writer, format Format, records []models.ProductionRecord, cat Catalog) error {
	if format == FormatCSV {
		return WriteCSV(w, records, cat)
	}
	return WriteXLSX(w, records, cat)
}

// WriteCSV writes a header line, one line per record and a totals line.
func WriteCSV(w io.Writer, records []models.ProductionRecord, cat Catalog) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for _, row := range rows(records, cat) {
		line := make([]string, len(row))
		for i, v := range row {
			line[i] = cellText(v)
		}
		if err := writer.Write(line); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func cellText(v any) string {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return x
	}
	return fmt.Sprint(v)
}

// WriteXLSX writes a single-sheet workbook with a styled header and a bold totals row.
func WriteXLSX(w io.Writer, records []models.ProductionRecord, cat Catalog) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	totalStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create totals style: %w", err)
	}

	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheetName, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style headers: %w", err)
	}

	body := rows(records, cat)
	for i := range body {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheetName, cell, &body[i]); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	totalRow := len(body) + 1
	first, _ := excelize.CoordinatesToCellName(1, totalRow)
	end, _ := excelize.CoordinatesToCellName(len(headers), totalRow)
	if err := f.SetCellStyle(sheetName, first, end, totalStyle); err != nil {
		return fmt.Errorf("failed to style totals: %w", err)
	}

	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	if err := f.SetColWidth(sheetName, "A", lastCol, 15); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}
	if err := f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
