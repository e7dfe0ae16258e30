package production

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/mmcl/printrun/internal/apperr"
	"github.com/mmcl/printrun/internal/domain/models"
	"github.com/mmcl/printrun/internal/repository/records"
	"github.com/mmcl/printrun/internal/service/analytics"
)

const maxRemarksLength = 100

// Catalog is the master data the service validates references against.
type Catalog interface {
	Publication(id int64) (models.Publication, bool)
	Machine(id int64) (models.Machine, bool)
	Newsprint(id int64) (models.NewsprintType, bool)
	DowntimeReason(id int64) (models.DowntimeReason, bool)
	User(id int64) (models.User, bool)
	UserIDsAtLocation(location string) []int64
}

// CreateRecordInput is the payload submitted for a new print run.
type CreateRecordInput struct {
	UserID                *int64                      `json:"user_id"`
	PublicationID         *int64                      `json:"publication_id"`
	CustomPublicationName *string                     `json:"custom_publication_name"`
	PONumber              int64                       `json:"po_number"`
	ColorPages            int                         `json:"color_pages"`
	BWPages               int                         `json:"bw_pages"`
	MachineID             int64                       `json:"machine_id"`
	LPRSTime              string                      `json:"lprs_time"`
	PageStartTime         string                      `json:"page_start_time"`
	PageEndTime           string                      `json:"page_end_time"`
	NewsprintID           *int64                      `json:"newsprint_id"`
	NewsprintKgs          float64                     `json:"newsprint_kgs"`
	PlateConsumption      int                         `json:"plate_consumption"`
	PageWastes            int                         `json:"page_wastes"`
	Wastes                int                         `json:"wastes"`
	Remarks               string                      `json:"remarks"`
	RecordDate            string                      `json:"record_date"`
	DowntimeEntries       []models.DowntimeEntryInput `json:"downtime_entries"`
}

// OneTimePublication is a record printed under a custom publication name.
type OneTimePublication struct {
	ID                    int64  `json:"id"`
	CustomPublicationName string `json:"custom_publication_name"`
	User                  string `json:"user"`
	RecordDate            string `json:"record_date"`
}

// Service validates production records before they reach the store.
type Service struct {
	repo    records.Repository
	catalog Catalog
	logger  *zap.Logger
}

// NewService constructs the production record service.
func NewService(repository records.Repository, catalog Catalog, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:    repository,
		catalog: catalog,
		logger:  logger,
	}
}

// Create validates in and stores it on behalf of actor. Records default to the
// actor; only admins may log a run for somebody else.
func (s *Service) Create(ctx context.Context, actor models.User, in CreateRecordInput) (*models.ProductionRecord, error) {
	userID := actor.ID
	if in.UserID != nil && *in.UserID != 0 && *in.UserID != actor.ID {
		if !actor.IsAdmin() {
			return nil, apperr.Authorization("cannot create records for another user")
		}
		userID = *in.UserID
	}

	switch {
	case userID == 0:
		return nil, apperr.Validation("user_id is required")
	case in.MachineID == 0:
		return nil, apperr.Validation("machine_id is required")
	case in.PONumber == 0:
		return nil, apperr.Validation("po_number is required")
	}

	if _, ok := s.catalog.User(userID); !ok {
		return nil, apperr.Validation("invalid user_id %d", userID)
	}
	if _, ok := s.catalog.Machine(in.MachineID); !ok {
		return nil, apperr.Validation("invalid machine_id %d", in.MachineID)
	}

	record := models.ProductionRecord{
		UserID:           userID,
		PONumber:         in.PONumber,
		ColorPages:       in.ColorPages,
		BWPages:          in.BWPages,
		TotalPages:       in.ColorPages + in.BWPages,
		MachineID:        in.MachineID,
		NewsprintKgs:     in.NewsprintKgs,
		PlateConsumption: in.PlateConsumption,
		PageWastes:       in.PageWastes,
		Wastes:           in.Wastes,
		Remarks:          strings.TrimSpace(in.Remarks),
	}

	custom := ""
	if in.CustomPublicationName != nil {
		custom = strings.TrimSpace(*in.CustomPublicationName)
	}
	hasPublication := in.PublicationID != nil && *in.PublicationID != 0
	switch {
	case hasPublication && custom != "":
		return nil, apperr.Validation("publication_id and custom_publication_name are mutually exclusive")
	case hasPublication:
		if _, ok := s.catalog.Publication(*in.PublicationID); !ok {
			return nil, apperr.Validation("invalid publication_id %d", *in.PublicationID)
		}
		record.PublicationID = in.PublicationID
	case custom != "":
		record.CustomPublicationName = &custom
	default:
		return nil, apperr.Validation("either publication_id or custom_publication_name is required")
	}

	if in.NewsprintID != nil && *in.NewsprintID != 0 {
		if _, ok := s.catalog.Newsprint(*in.NewsprintID); !ok {
			return nil, apperr.Validation("invalid newsprint_id %d", *in.NewsprintID)
		}
		record.NewsprintID = in.NewsprintID
	}

	if err := checkCounters(map[string]float64{
		"color_pages":       float64(in.ColorPages),
		"bw_pages":          float64(in.BWPages),
		"newsprint_kgs":     in.NewsprintKgs,
		"plate_consumption": float64(in.PlateConsumption),
		"page_wastes":       float64(in.PageWastes),
		"wastes":            float64(in.Wastes),
	}); err != nil {
		return nil, err
	}
	if err := checkRemarks(record.Remarks); err != nil {
		return nil, err
	}

	var err error
	if record.LPRSTime, err = optionalClock("lprs_time", in.LPRSTime); err != nil {
		return nil, err
	}
	if record.PageStartTime, err = optionalClock("page_start_time", in.PageStartTime); err != nil {
		return nil, err
	}
	if record.PageEndTime, err = optionalClock("page_end_time", in.PageEndTime); err != nil {
		return nil, err
	}
	if record.RecordDate, err = requiredDate("record_date", in.RecordDate); err != nil {
		return nil, err
	}

	entries, err := s.downtimeEntries(in.DowntimeEntries, true)
	if err != nil {
		return nil, err
	}

	stored, err := s.repo.Create(ctx, record, entries)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("record submitted", zap.Int64("id", stored.ID), zap.Int64("actor", actor.ID))
	return stored, nil
}

// List returns the records matching filter.
func (s *Service) List(ctx context.Context, filter models.RecordFilter) ([]models.ProductionRecord, error) {
	return s.repo.GetFiltered(ctx, filter)
}

// ListByUser returns one user's records within an optional date range.
func (s *Service) ListByUser(ctx context.Context, userID int64, startDate, endDate string) ([]models.ProductionRecord, error) {
	filter, err := BuildFilter(s.catalog, FilterQuery{StartDate: startDate, EndDate: endDate})
	if err != nil {
		return nil, err
	}
	filter.RestrictUsers = true
	filter.UserIDs = []int64{userID}
	return s.repo.GetFiltered(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id int64) (*models.ProductionRecord, error) {
	return s.repo.Get(ctx, id)
}

// OneTimePublications lists records printed under a custom publication name.
func (s *Service) OneTimePublications(ctx context.Context) ([]OneTimePublication, error) {
	recs, err := s.repo.GetFiltered(ctx, models.RecordFilter{OneTimeOnly: true})
	if err != nil {
		return nil, err
	}
	out := make([]OneTimePublication, 0, len(recs))
	for _, r := range recs {
		name := ""
		if u, ok := s.catalog.User(r.UserID); ok {
			name = u.Name
		}
		out = append(out, OneTimePublication{
			ID:                    r.ID,
			CustomPublicationName: *r.CustomPublicationName,
			User:                  name,
			RecordDate:            r.RecordDate,
		})
	}
	return out, nil
}

// Update applies patch to a record owned by actor.
func (s *Service) Update(ctx context.Context, actor models.User, id int64, patch models.RecordPatch) (*models.ProductionRecord, error) {
	if patch.Empty() {
		return nil, apperr.Validation("no updatable field supplied")
	}
	if err := s.authorizeOwner(ctx, actor, id); err != nil {
		return nil, err
	}
	if err := s.normalizePatch(&patch); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, patch)
}

// Delete removes a record owned by actor together with its downtime entries.
func (s *Service) Delete(ctx context.Context, actor models.User, id int64) error {
	if err := s.authorizeOwner(ctx, actor, id); err != nil {
		return err
	}
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return apperr.NotFound("production record %d not found", id)
	}
	return nil
}

func (s *Service) authorizeOwner(ctx context.Context, actor models.User, id int64) error {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if current.UserID != actor.ID {
		return apperr.Authorization("only the owner may modify production record %d", id)
	}
	return nil
}

func (s *Service) normalizePatch(p *models.RecordPatch) error {
	if p.PublicationID != nil && p.CustomPublicationName != nil {
		return apperr.Validation("publication_id and custom_publication_name are mutually exclusive")
	}
	if p.PublicationID != nil {
		if _, ok := s.catalog.Publication(*p.PublicationID); !ok {
			return apperr.Validation("invalid publication_id %d", *p.PublicationID)
		}
	}
	if p.CustomPublicationName != nil {
		name := strings.TrimSpace(*p.CustomPublicationName)
		if name == "" {
			return apperr.Validation("custom_publication_name must not be blank")
		}
		p.CustomPublicationName = &name
	}
	if p.PONumber != nil && *p.PONumber == 0 {
		return apperr.Validation("po_number is required")
	}
	if p.MachineID != nil {
		if _, ok := s.catalog.Machine(*p.MachineID); !ok {
			return apperr.Validation("invalid machine_id %d", *p.MachineID)
		}
	}
	if p.NewsprintID != nil && *p.NewsprintID != 0 {
		if _, ok := s.catalog.Newsprint(*p.NewsprintID); !ok {
			return apperr.Validation("invalid newsprint_id %d", *p.NewsprintID)
		}
	}

	counters := map[string]float64{}
	for name, v := range map[string]*int{
		"color_pages":       p.ColorPages,
		"bw_pages":          p.BWPages,
		"plate_consumption": p.PlateConsumption,
		"page_wastes":       p.PageWastes,
		"wastes":            p.Wastes,
	} {
		if v != nil {
			counters[name] = float64(*v)
		}
	}
	if p.NewsprintKgs != nil {
		counters["newsprint_kgs"] = *p.NewsprintKgs
	}
	if err := checkCounters(counters); err != nil {
		return err
	}

	if p.Remarks != nil {
		trimmed := strings.TrimSpace(*p.Remarks)
		if err := checkRemarks(trimmed); err != nil {
			return err
		}
		p.Remarks = &trimmed
	}

	for name, field := range map[string]**string{
		"lprs_time":       &p.LPRSTime,
		"page_start_time": &p.PageStartTime,
		"page_end_time":   &p.PageEndTime,
	} {
		if *field == nil {
			continue
		}
		v, err := optionalClock(name, **field)
		if err != nil {
			return err
		}
		*field = &v
	}

	if p.RecordDate != nil {
		v, err := requiredDate("record_date", *p.RecordDate)
		if err != nil {
			return err
		}
		p.RecordDate = &v
	}

	if p.DowntimeEntries != nil {
		entries, err := s.downtimeEntries(*p.DowntimeEntries, false)
		if err != nil {
			return err
		}
		p.DowntimeEntries = &entries
	}
	return nil
}

// downtimeEntries validates and normalises submitted entries. With skipBlank,
// rows missing a reason or a duration are dropped the way the entry form
// leaves them; otherwise they are rejected.
func (s *Service) downtimeEntries(in []models.DowntimeEntryInput, skipBlank bool) ([]models.DowntimeEntryInput, error) {
	out := make([]models.DowntimeEntryInput, 0, len(in))
	for _, e := range in {
		blank := e.DowntimeReasonID == 0 || strings.TrimSpace(e.DowntimeDuration) == ""
		if blank {
			if skipBlank {
				continue
			}
			return nil, apperr.Validation("downtime entries need a downtime_reason_id and a downtime_duration")
		}
		if _, ok := s.catalog.DowntimeReason(e.DowntimeReasonID); !ok {
			return nil, apperr.Validation("invalid downtime_reason_id: %d", e.DowntimeReasonID)
		}
		d, err := analytics.NormalizeDuration(e.DowntimeDuration)
		if err != nil {
			return nil, apperr.Validation("downtime_duration: %v", err)
		}
		out = append(out, models.DowntimeEntryInput{DowntimeReasonID: e.DowntimeReasonID, DowntimeDuration: d})
	}
	return out, nil
}

func checkCounters(values map[string]float64) error {
	for name, v := range values {
		if v < 0 {
			return apperr.Validation("%s must not be negative", name)
		}
	}
	return nil
}

func checkRemarks(remarks string) error {
	if utf8.RuneCountInString(remarks) > maxRemarksLength {
		return apperr.Validation("remarks must be at most %d characters", maxRemarksLength)
	}
	return nil
}

func optionalClock(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	v, err := analytics.NormalizeClock(value)
	if err != nil {
		return "", apperr.Validation("%s: %v", field, err)
	}
	return v, nil
}

func requiredDate(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", apperr.Validation("%s is required", field)
	}
	return parseDate(field, value)
}

func parseDate(field, value string) (string, error) {
	t, err := time.Parse(models.DateLayout, value)
	if err != nil {
		return "", apperr.Validation("%s must be YYYY-MM-DD", field)
	}
	return t.Format(models.DateLayout), nil
}
