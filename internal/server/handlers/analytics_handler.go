package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mmcl/printrun/internal/apperr"
	"github.com/mmcl/printrun/internal/domain/models"
	"github.com/mmcl/printrun/internal/service/analytics"
	"github.com/mmcl/printrun/internal/service/production"
)

// AnalyticsCatalog resolves ids for the analytics reports and filters.
type AnalyticsCatalog interface {
	production.Catalog
	analytics.Catalog
}

// AnalyticsHandler serves /production/analytics routes. Every route loads the
// records selected by the shared filter parameters and aggregates them.
type AnalyticsHandler struct {
	records RecordService
	catalog AnalyticsCatalog
}

func NewAnalyticsHandler(records RecordService, catalog AnalyticsCatalog) *AnalyticsHandler {
	return &AnalyticsHandler{records: records, catalog: catalog}
}

func (h *AnalyticsHandler) load(c *gin.Context) ([]models.ProductionRecord, bool) {
	var q production.FilterQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		fail(c, apperr.Validation("invalid query parameters"))
		return nil, false
	}
	f, err := production.BuildFilter(h.catalog, q)
	if err != nil {
		fail(c, err)
		return nil, false
	}
	records, err := h.records.List(c.Request.Context(), f)
	if err != nil {
		fail(c, err)
		return nil, false
	}
	return records, true
}

// list renders slice results under "data".
func (h *AnalyticsHandler) list(build func([]models.ProductionRecord) any) gin.HandlerFunc {
	return func(c *gin.Context) {
		if records, ok := h.load(c); ok {
			respondData(c, http.StatusOK, build(records))
		}
	}
}

// object renders report fields at the top level.
func (h *AnalyticsHandler) object(build func([]models.ProductionRecord) any) gin.HandlerFunc {
	return func(c *gin.Context) {
		if records, ok := h.load(c); ok {
			respondObject(c, build(records))
		}
	}
}

func (h *AnalyticsHandler) PO() gin.HandlerFunc {
	return h.list(func(r []models.ProductionRecord) any { return analytics.TopPOs(r) })
}

func (h *AnalyticsHandler) PrintOrders() gin.HandlerFunc {
	return h.object(func(r []models.ProductionRecord) any { return analytics.PrintOrders(r, h.catalog) })
}

func (h *AnalyticsHandler) Machine() gin.HandlerFunc {
	return h.list(func(r []models.ProductionRecord) any { return analytics.Machines(r, h.catalog) })
}

func (h *AnalyticsHandler) MachineDetailed() gin.HandlerFunc {
	return h.object(func(r []models.ProductionRecord) any { return analytics.MachineDetailed(r, h.catalog) })
}

func (h *AnalyticsHandler) LPRS() gin.HandlerFunc {
	return h.list(func(r []models.ProductionRecord) any { return analytics.LPRS(r) })
}

func (h *AnalyticsHandler) Newsprint() gin.HandlerFunc {
	return h.list(func(r []models.ProductionRecord) any { return analytics.PlatesByNewsprint(r, h.catalog) })
}

func (h *AnalyticsHandler) NewsprintKgs() gin.HandlerFunc {
	return h.object(func(r []models.ProductionRecord) any { return analytics.NewsprintUsage(r, h.catalog) })
}

func (h *AnalyticsHandler) PlateConsumption() gin.HandlerFunc {
	return h.object(func(r []models.ProductionRecord) any { return analytics.PlateConsumption(r, h.catalog) })
}

func (h *AnalyticsHandler) Downtime() gin.HandlerFunc {
	return h.object(func(r []models.ProductionRecord) any { return analytics.DowntimeBreakdown(r, h.catalog) })
}

func (h *AnalyticsHandler) MachineDowntime() gin.HandlerFunc {
	return h.list(func(r []models.ProductionRecord) any { return analytics.MachineDowntimeMinutes(r, h.catalog) })
}

func (h *AnalyticsHandler) DowntimeByMachine() gin.HandlerFunc {
	return h.object(func(r []models.ProductionRecord) any { return analytics.DowntimeByMachine(r, h.catalog) })
}

func (h *AnalyticsHandler) PrintDuration() gin.HandlerFunc {
	return h.object(func(r []models.ProductionRecord) any { return analytics.PrintDuration(r, h.catalog) })
}

func (h *AnalyticsHandler) Wastes() gin.HandlerFunc {
	return h.object(func(r []models.ProductionRecord) any { return analytics.Wastes(r, h.catalog) })
}

// DowntimeDetails lists the downtime entries logged for one reason.
func (h *AnalyticsHandler) DowntimeDetails(c *gin.Context) {
	reasonID, err := pathID(c, "reason_id")
	if err != nil {
		fail(c, err)
		return
	}
	if records, ok := h.load(c); ok {
		respondObject(c, analytics.DowntimeDetails(records, h.catalog, reasonID))
	}
}
