package models

import "time"

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// ProductionRecord is one print run logged by a user.
type ProductionRecord struct {
	ID                    int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID                int64           `gorm:"column:user_id;not null;index" json:"user_id"`
	PublicationID         *int64          `gorm:"column:publication_id;index" json:"publication_id"`
	CustomPublicationName *string         `gorm:"column:custom_publication_name;size:255" json:"custom_publication_name"`
	PONumber              int64           `gorm:"column:po_number;not null" json:"po_number"`
	ColorPages            int             `gorm:"column:color_pages;not null;default:0" json:"color_pages"`
	BWPages               int             `gorm:"column:bw_pages;not null;default:0" json:"bw_pages"`
	TotalPages            int             `gorm:"column:total_pages;not null;default:0" json:"total_pages"`
	MachineID             int64           `gorm:"column:machine_id;not null;index" json:"machine_id"`
	LPRSTime              string          `gorm:"column:lprs_time;size:8" json:"lprs_time"`
	PageStartTime         string          `gorm:"column:page_start_time;size:8" json:"page_start_time"`
	PageEndTime           string          `gorm:"column:page_end_time;size:8" json:"page_end_time"`
	NewsprintID           *int64          `gorm:"column:newsprint_id" json:"newsprint_id"`
	NewsprintKgs          float64         `gorm:"column:newsprint_kgs;not null;default:0" json:"newsprint_kgs"`
	PlateConsumption      int             `gorm:"column:plate_consumption;not null;default:0" json:"plate_consumption"`
	PageWastes            int             `gorm:"column:page_wastes;not null;default:0" json:"page_wastes"`
	Wastes                int             `gorm:"column:wastes;not null;default:0" json:"wastes"`
	Remarks               string          `gorm:"column:remarks;size:100" json:"remarks"`
	RecordDate            string          `gorm:"column:record_date;size:10;not null;index" json:"record_date"`
	CreatedAt             time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	DowntimeEntries       []DowntimeEntry `gorm:"foreignKey:ProductionRecordID;constraint:OnDelete:CASCADE" json:"downtime_entries"`
}

func (ProductionRecord) TableName() string { return "production_records" }

// IsOneTime reports whether the record names a publication outside the catalog.
func (r ProductionRecord) IsOneTime() bool {
	return r.PublicationID == nil && r.CustomPublicationName != nil
}

// DowntimeEntry is a machine stop logged against a production record.
type DowntimeEntry struct {
	ID                 int64  `gorm:"primaryKey;autoIncrement" json:"-"`
	ProductionRecordID int64  `gorm:"column:production_record_id;not null;index" json:"production_record_id"`
	DowntimeReasonID   int64  `gorm:"column:downtime_reason_id;not null" json:"downtime_reason_id"`
	DowntimeDuration   string `gorm:"column:downtime_duration;size:12;not null" json:"downtime_duration"`
}

func (DowntimeEntry) TableName() string { return "downtime_entries" }

// DowntimeEntryInput is the client supplied shape of a downtime entry.
type DowntimeEntryInput struct {
	DowntimeReasonID int64  `json:"downtime_reason_id"`
	DowntimeDuration string `json:"downtime_duration"`
}

// RecordPatch carries a partial update. Nil fields are left untouched.
type RecordPatch struct {
	PublicationID         *int64                `json:"publication_id"`
	CustomPublicationName *string               `json:"custom_publication_name"`
	PONumber              *int64                `json:"po_number"`
	ColorPages            *int                  `json:"color_pages"`
	BWPages               *int                  `json:"bw_pages"`
	MachineID             *int64                `json:"machine_id"`
	LPRSTime              *string               `json:"lprs_time"`
	PageStartTime         *string               `json:"page_start_time"`
	PageEndTime           *string               `json:"page_end_time"`
	NewsprintID           *int64                `json:"newsprint_id"`
	NewsprintKgs          *float64              `json:"newsprint_kgs"`
	PlateConsumption      *int                  `json:"plate_consumption"`
	PageWastes            *int                  `json:"page_wastes"`
	Wastes                *int                  `json:"wastes"`
	Remarks               *string               `json:"remarks"`
	RecordDate            *string               `json:"record_date"`
	DowntimeEntries       *[]DowntimeEntryInput `json:"downtime_entries"`
}

// Empty reports whether the patch supplies no field at all.
func (p RecordPatch) Empty() bool {
	return p.PublicationID == nil && p.CustomPublicationName == nil && p.PONumber == nil &&
		p.ColorPages == nil && p.BWPages == nil && p.MachineID == nil &&
		p.LPRSTime == nil && p.PageStartTime == nil && p.PageEndTime == nil &&
		p.NewsprintID == nil && p.NewsprintKgs == nil && p.PlateConsumption == nil &&
		p.PageWastes == nil && p.Wastes == nil && p.Remarks == nil && p.RecordDate == nil &&
		p.DowntimeEntries == nil
}

// RecordFilter restricts which records a read returns. Empty fields do not filter.
type RecordFilter struct {
	StartDate      string
	EndDate        string
	PublicationIDs []int64
	// When RestrictUsers is set only records owned by UserIDs match, so an
	// empty UserIDs matches nothing.
	RestrictUsers bool
	UserIDs       []int64
	// OneTimeOnly keeps records that carry a custom publication name.
	OneTimeOnly bool
}
