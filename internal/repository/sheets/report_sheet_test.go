package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mmcl/printrun/internal/domain/models"
)

func TestReportRow(t *testing.T) {
	row := ReportRow(models.DailyReport{
		Date:             "2024-03-01",
		TotalRecords:     3,
		UniquePOs:        2,
		TotalPages:       72,
		TotalPlates:      40,
		PlateWastes:      1,
		NewsprintKgs:     310.5,
		DowntimeDuration: "00:25:00",
	})
	assert.Equal(t, []interface{}{"2024-03-01", 3, 2, 72, 40, 1, 310.5, "00:25:00"}, row)
}

func TestContainsDate(t *testing.T) {
	rows := [][]interface{}{
		{"date", "records"},
		{},
		{" 2024-03-01 ", "4"},
	}
	assert.True(t, containsDate(rows, "2024-03-01"))
	assert.False(t, containsDate(rows, "2024-03-02"))
	assert.False(t, containsDate(nil, "2024-03-01"))
}
