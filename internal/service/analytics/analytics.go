// Package analytics turns filtered production records into dashboard summaries.
// Every function is pure: callers load the records and pass a catalog for names.
package analytics

import (
	"sort"

	"github.com/mmcl/printrun/internal/domain/models"
)

// Catalog resolves reference ids to display values.
type Catalog interface {
	PublicationName(r models.ProductionRecord) string
	MachineName(id int64) string
	NewsprintName(id int64) string
	DowntimeReason(id int64) (models.DowntimeReason, bool)
}

type set[K comparable] map[K]struct{}

func (s set[K]) add(k K) { s[k] = struct{}{} }

// sortedDates returns the keys of m in ascending date order.
func sortedDates[V any](m map[string]V) []string {
	dates := make([]string, 0, len(m))
	for d := range m {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

func distinctDates(records []models.ProductionRecord) int {
	days := set[string]{}
	for _, r := range records {
		days.add(r.RecordDate)
	}
	return len(days)
}
