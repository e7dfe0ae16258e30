package models

import "time"

// DailyReport is the end-of-day production snapshot stored in MongoDB and Sheets.
type DailyReport struct {
	Date             string    `bson:"date" json:"date"`
	TotalRecords     int       `bson:"total_records" json:"total_records"`
	UniquePOs        int       `bson:"unique_pos" json:"unique_pos"`
	TotalPages       int       `bson:"total_pages" json:"total_pages"`
	TotalPlates      int       `bson:"total_plates" json:"total_plates"`
	PlateWastes      int       `bson:"plate_wastes" json:"plate_wastes"`
	PageWastes       int       `bson:"page_wastes" json:"page_wastes"`
	NewsprintKgs     float64   `bson:"newsprint_kgs" json:"newsprint_kgs"`
	DowntimeSeconds  int64     `bson:"downtime_seconds" json:"downtime_seconds"`
	DowntimeDuration string    `bson:"downtime_duration" json:"downtime_duration"`
	PrintHours       float64   `bson:"print_hours" json:"print_hours"`
	CreatedAt        time.Time `bson:"created_at" json:"created_at"`
}
