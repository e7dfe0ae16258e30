package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mmcl/printrun/internal/apperr"
	"github.com/mmcl/printrun/internal/domain/models"
)

// MasterCatalog is the read side of the reference data.
type MasterCatalog interface {
	Publications(typ models.PublicationType) []models.Publication
	Machines() []models.Machine
	DowntimeReasons() []models.DowntimeReason
	NewsprintTypes() []models.NewsprintType
	Locations() []string
}

// MasterHandler serves /master routes.
type MasterHandler struct {
	catalog MasterCatalog
}

func NewMasterHandler(catalog MasterCatalog) *MasterHandler {
	return &MasterHandler{catalog: catalog}
}

// Publications lists publications, optionally of one type.
func (h *MasterHandler) Publications(c *gin.Context) {
	typ := models.PublicationType(strings.ToUpper(strings.TrimSpace(c.Query("type"))))
	switch typ {
	case "", models.PublicationVK, models.PublicationOSP, models.PublicationNamma:
	default:
		fail(c, apperr.Validation("type must be one of VK, OSP, NAMMA"))
		return
	}
	respondData(c, http.StatusOK, h.catalog.Publications(typ))
}

func (h *MasterHandler) Machines(c *gin.Context) {
	respondData(c, http.StatusOK, h.catalog.Machines())
}

func (h *MasterHandler) DowntimeReasons(c *gin.Context) {
	respondData(c, http.StatusOK, h.catalog.DowntimeReasons())
}

func (h *MasterHandler) NewsprintTypes(c *gin.Context) {
	respondData(c, http.StatusOK, h.catalog.NewsprintTypes())
}

func (h *MasterHandler) Locations(c *gin.Context) {
	respondData(c, http.StatusOK, h.catalog.Locations())
}
