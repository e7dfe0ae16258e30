package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mmcl/printrun/internal/apperr"
	"github.com/mmcl/printrun/internal/domain/models"
	"github.com/mmcl/printrun/internal/service/production"
)

// RecordService is implemented by production.Service.
type RecordService interface {
	Create(ctx context.Context, actor models.User, in production.CreateRecordInput) (*models.ProductionRecord, error)
	List(ctx context.Context, filter models.RecordFilter) ([]models.ProductionRecord, error)
	ListByUser(ctx context.Context, userID int64, startDate, endDate string) ([]models.ProductionRecord, error)
	Get(ctx context.Context, id int64) (*models.ProductionRecord, error)
	OneTimePublications(ctx context.Context) ([]production.OneTimePublication, error)
	Update(ctx context.Context, actor models.User, id int64, patch models.RecordPatch) (*models.ProductionRecord, error)
	Delete(ctx context.Context, actor models.User, id int64) error
}

// ProductionHandler serves the /production/records routes.
type ProductionHandler struct {
	svc     RecordService
	catalog production.Catalog
	logger  *zap.Logger
}

func NewProductionHandler(svc RecordService, catalog production.Catalog, logger *zap.Logger) *ProductionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductionHandler{svc: svc, catalog: catalog, logger: logger}
}

// Create stores a new print run for the caller.
func (h *ProductionHandler) Create(c *gin.Context) {
	caller, err := actor(c)
	if err != nil {
		fail(c, err)
		return
	}

	var in production.CreateRecordInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.logger.Warn("invalid production record payload", zap.Error(err))
		fail(c, apperr.Validation("invalid request body"))
		return
	}

	record, err := h.svc.Create(c.Request.Context(), caller, in)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Production record created successfully",
		"data":    record,
	})
}

// filter binds the shared query parameters.
func (h *ProductionHandler) filter(c *gin.Context) (models.RecordFilter, error) {
	var q production.FilterQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return models.RecordFilter{}, apperr.Validation("invalid query parameters")
	}
	return production.BuildFilter(h.catalog, q)
}

// List returns records matching the query. Non-admins only see their own.
func (h *ProductionHandler) List(c *gin.Context) {
	caller, err := actor(c)
	if err != nil {
		fail(c, err)
		return
	}
	f, err := h.filter(c)
	if err != nil {
		fail(c, err)
		return
	}
	if !caller.IsAdmin() {
		f.RestrictUsers = true
		f.UserIDs = []int64{caller.ID}
	}

	records, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		fail(c, err)
		return
	}
	respondData(c, http.StatusOK, records)
}

// AdminList returns every record matching the query.
func (h *ProductionHandler) AdminList(c *gin.Context) {
	f, err := h.filter(c)
	if err != nil {
		fail(c, err)
		return
	}
	records, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		fail(c, err)
		return
	}
	respondData(c, http.StatusOK, records)
}

// ListByUser returns one user's records. Non-admins may only ask for themselves.
func (h *ProductionHandler) ListByUser(c *gin.Context) {
	caller, err := actor(c)
	if err != nil {
		fail(c, err)
		return
	}
	userID, err := pathID(c, "user_id")
	if err != nil {
		fail(c, err)
		return
	}
	if !caller.IsAdmin() && caller.ID != userID {
		fail(c, apperr.Authorization("cannot view another user's records"))
		return
	}

	records, err := h.svc.ListByUser(c.Request.Context(), userID, c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		fail(c, err)
		return
	}
	respondData(c, http.StatusOK, records)
}

func (h *ProductionHandler) Get(c *gin.Context) {
	caller, err := actor(c)
	if err != nil {
		fail(c, err)
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	record, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	if !caller.IsAdmin() && record.UserID != caller.ID {
		fail(c, apperr.Authorization("cannot view another user's record"))
		return
	}
	respondData(c, http.StatusOK, record)
}

// OneTime lists records printed under a custom publication name.
func (h *ProductionHandler) OneTime(c *gin.Context) {
	items, err := h.svc.OneTimePublications(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respondData(c, http.StatusOK, items)
}

// Update applies a partial update to one of the caller's records.
func (h *ProductionHandler) Update(c *gin.Context) {
	caller, err := actor(c)
	if err != nil {
		fail(c, err)
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	var patch models.RecordPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.logger.Warn("invalid production record patch", zap.Int64("id", id), zap.Error(err))
		fail(c, apperr.Validation("invalid request body"))
		return
	}

	record, err := h.svc.Update(c.Request.Context(), caller, id, patch)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Record updated successfully",
		"data":    record,
	})
}

// Delete removes one of the caller's records.
func (h *ProductionHandler) Delete(c *gin.Context) {
	caller, err := actor(c)
	if err != nil {
		fail(c, err)
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), caller, id); err != nil {
		fail(c, err)
		return
	}
	respondMessage(c, "Record deleted successfully")
}
