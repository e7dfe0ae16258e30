package records

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mmcl/printrun/internal/apperr"
	"github.com/mmcl/printrun/internal/domain/models"
)

// Repository defines the persistence operations for production records.
type Repository interface {
	Create(ctx context.Context, record models.ProductionRecord, entries []models.DowntimeEntryInput) (*models.ProductionRecord, error)
	GetAll(ctx context.Context) ([]models.ProductionRecord, error)
	GetFiltered(ctx context.Context, filter models.RecordFilter) ([]models.ProductionRecord, error)
	Get(ctx context.Context, id int64) (*models.ProductionRecord, error)
	Update(ctx context.Context, id int64, patch models.RecordPatch) (*models.ProductionRecord, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// GormRepository implements Repository over any gorm dialect.
type GormRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormRepository wires the store to an already opened pool.
func NewGormRepository(db *gorm.DB, logger *zap.Logger) *GormRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GormRepository{db: db, logger: logger}
}

// Create inserts the record and its downtime entries in one transaction and
// returns the stored row as read back from the database.
func (r *GormRepository) Create(ctx context.Context, record models.ProductionRecord, entries []models.DowntimeEntryInput) (*models.ProductionRecord, error) {
	if record.UserID == 0 {
		return nil, apperr.Validation("user_id is required")
	}
	if record.MachineID == 0 {
		return nil, apperr.Validation("machine_id is required")
	}

	record.ID = 0
	record.DowntimeEntries = nil

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&record).Error; err != nil {
			return err
		}
		return insertEntries(tx, record.ID, entries)
	})
	if err != nil {
		return nil, r.storageError(err, "create production record", zap.Int64("user_id", record.UserID))
	}

	r.logger.Info("production record created",
		zap.Int64("id", record.ID),
		zap.Int64("user_id", record.UserID),
		zap.Int64("po_number", record.PONumber),
		zap.Int("downtime_entries", len(entries)),
	)

	return r.Get(ctx, record.ID)
}

// GetAll returns every record, newest business date first.
func (r *GormRepository) GetAll(ctx context.Context) ([]models.ProductionRecord, error) {
	return r.GetFiltered(ctx, models.RecordFilter{})
}

// GetFiltered returns the records matching filter with their downtime entries.
func (r *GormRepository) GetFiltered(ctx context.Context, filter models.RecordFilter) ([]models.ProductionRecord, error) {
	records := []models.ProductionRecord{}

	if filter.RestrictUsers && len(filter.UserIDs) == 0 {
		return records, nil
	}

	q := r.db.WithContext(ctx).Model(&models.ProductionRecord{})
	if filter.StartDate != "" {
		q = q.Where("record_date >= ?", filter.StartDate)
	}
	if filter.EndDate != "" {
		q = q.Where("record_date <= ?", filter.EndDate)
	}
	if len(filter.PublicationIDs) > 0 {
		q = q.Where("publication_id IN ?", filter.PublicationIDs)
	}
	if filter.RestrictUsers {
		q = q.Where("user_id IN ?", filter.UserIDs)
	}
	if filter.OneTimeOnly {
		q = q.Where("publication_id IS NULL AND custom_publication_name IS NOT NULL")
	}

	err := q.Preload("DowntimeEntries", orderEntries).
		Order("record_date DESC").
		Order("id DESC").
		Find(&records).Error
	if err != nil {
		return nil, r.storageError(err, "load production records")
	}

	for i := range records {
		if records[i].DowntimeEntries == nil {
			records[i].DowntimeEntries = []models.DowntimeEntry{}
		}
	}
	return records, nil
}

// Get loads one record by id.
func (r *GormRepository) Get(ctx context.Context, id int64) (*models.ProductionRecord, error) {
	var record models.ProductionRecord
	err := r.db.WithContext(ctx).Preload("DowntimeEntries", orderEntries).First(&record, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("production record %d not found", id)
	}
	if err != nil {
		return nil, r.storageError(err, "load production record", zap.Int64("id", id))
	}
	if record.DowntimeEntries == nil {
		record.DowntimeEntries = []models.DowntimeEntry{}
	}
	return &record, nil
}

// Update applies the supplied fields only. total_pages follows the merged page
// counts and a supplied downtime list replaces the stored one.
func (r *GormRepository) Update(ctx context.Context, id int64, patch models.RecordPatch) (*models.ProductionRecord, error) {
	if patch.Empty() {
		return nil, apperr.Validation("no updatable field supplied")
	}
	if patch.PublicationID != nil && patch.CustomPublicationName != nil {
		return nil, apperr.Validation("publication_id and custom_publication_name are mutually exclusive")
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.ProductionRecord
		if err := tx.First(&current, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("production record %d not found", id)
			}
			return err
		}

		if cols := patchColumns(current, patch); len(cols) > 0 {
			if err := tx.Model(&models.ProductionRecord{}).Where("id = ?", id).Updates(cols).Error; err != nil {
				return err
			}
		}

		if patch.DowntimeEntries != nil {
			if err := tx.Where("production_record_id = ?", id).Delete(&models.DowntimeEntry{}).Error; err != nil {
				return err
			}
			if err := insertEntries(tx, id, *patch.DowntimeEntries); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, r.storageError(err, "update production record", zap.Int64("id", id))
	}

	r.logger.Info("production record updated", zap.Int64("id", id))
	return r.Get(ctx, id)
}

// Delete removes the record's downtime entries and then the record. It reports
// false without error when no record had that id.
func (r *GormRepository) Delete(ctx context.Context, id int64) (bool, error) {
	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("production_record_id = ?", id).Delete(&models.DowntimeEntry{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.ProductionRecord{}, id)
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected
		return nil
	})
	if err != nil {
		return false, r.storageError(err, "delete production record", zap.Int64("id", id))
	}

	if removed > 0 {
		r.logger.Info("production record deleted", zap.Int64("id", id))
	}
	return removed > 0, nil
}

func (r *GormRepository) storageError(err error, op string, fields ...zap.Field) error {
	r.logger.Error(op+" failed", append(fields, zap.Error(err))...)
	return apperr.Storage(err, "%s", op)
}

func orderEntries(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}

func insertEntries(tx *gorm.DB, recordID int64, entries []models.DowntimeEntryInput) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]models.DowntimeEntry, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, models.DowntimeEntry{
			ProductionRecordID: recordID,
			DowntimeReasonID:   e.DowntimeReasonID,
			DowntimeDuration:   e.DowntimeDuration,
		})
	}
	return tx.Create(&rows).Error
}

// patchColumns maps the supplied patch fields to column updates.
func patchColumns(current models.ProductionRecord, p models.RecordPatch) map[string]any {
	cols := map[string]any{}

	switch {
	case p.PublicationID != nil:
		cols["publication_id"] = *p.PublicationID
		cols["custom_publication_name"] = nil
	case p.CustomPublicationName != nil:
		cols["custom_publication_name"] = strings.TrimSpace(*p.CustomPublicationName)
		cols["publication_id"] = nil
	}

	if p.PONumber != nil {
		cols["po_number"] = *p.PONumber
	}

	if p.ColorPages != nil || p.BWPages != nil {
		color, bw := current.ColorPages, current.BWPages
		if p.ColorPages != nil {
			color = *p.ColorPages
			cols["color_pages"] = color
		}
		if p.BWPages != nil {
			bw = *p.BWPages
			cols["bw_pages"] = bw
		}
		cols["total_pages"] = color + bw
	}

	if p.MachineID != nil {
		cols["machine_id"] = *p.MachineID
	}
	if p.LPRSTime != nil {
		cols["lprs_time"] = *p.LPRSTime
	}
	if p.PageStartTime != nil {
		cols["page_start_time"] = *p.PageStartTime
	}
	if p.PageEndTime != nil {
		cols["page_end_time"] = *p.PageEndTime
	}
	if p.NewsprintID != nil {
		if *p.NewsprintID == 0 {
			cols["newsprint_id"] = nil
		} else {
			cols["newsprint_id"] = *p.NewsprintID
		}
	}
	if p.NewsprintKgs != nil {
		cols["newsprint_kgs"] = *p.NewsprintKgs
	}
	if p.PlateConsumption != nil {
		cols["plate_consumption"] = *p.PlateConsumption
	}
	if p.PageWastes != nil {
		cols["page_wastes"] = *p.PageWastes
	}
	if p.Wastes != nil {
		cols["wastes"] = *p.Wastes
	}
	if p.Remarks != nil {
		cols["remarks"] = *p.Remarks
	}
	if p.RecordDate != nil {
		cols["record_date"] = *p.RecordDate
	}

	return cols
}
