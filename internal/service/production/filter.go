package production

import (
	"strconv"
	"strings"

	"github.com/mmcl/printrun/internal/apperr"
	"github.com/mmcl/printrun/internal/domain/models"
)

// FilterQuery is the raw filter taken from query parameters.
type FilterQuery struct {
	PublicationIDs string `form:"publication_ids"`
	PublicationID  string `form:"publication_id"`
	StartDate      string `form:"start_date"`
	EndDate        string `form:"end_date"`
	Location       string `form:"location"`
}

// BuildFilter validates q and turns it into a store filter. A location is
// resolved to the users based there, so an unknown location matches nothing.
func BuildFilter(cat Catalog, q FilterQuery) (models.RecordFilter, error) {
	var f models.RecordFilter

	ids, err := parseIDList(q.PublicationIDs)
	if err != nil {
		return f, err
	}
	if single := strings.TrimSpace(q.PublicationID); single != "" {
		id, err := strconv.ParseInt(single, 10, 64)
		if err != nil || id <= 0 {
			return f, apperr.Validation("publication_id must be a positive integer")
		}
		ids = append(ids, id)
	}
	f.PublicationIDs = ids

	if v := strings.TrimSpace(q.StartDate); v != "" {
		if f.StartDate, err = parseDate("start_date", v); err != nil {
			return f, err
		}
	}
	if v := strings.TrimSpace(q.EndDate); v != "" {
		if f.EndDate, err = parseDate("end_date", v); err != nil {
			return f, err
		}
	}
	if f.StartDate != "" && f.EndDate != "" && f.StartDate > f.EndDate {
		return f, apperr.Validation("start_date must not be after end_date")
	}

	if loc := strings.TrimSpace(q.Location); loc != "" {
		f.RestrictUsers = true
		f.UserIDs = cat.UserIDsAtLocation(loc)
	}
	return f, nil
}

func parseIDList(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, apperr.Validation("publication_ids must be a comma separated list of ids")
		}
		ids = append(ids, id)
	}
	return ids, nil
}
