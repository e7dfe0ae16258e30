package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mmcl/printrun/internal/apperr"
	"github.com/mmcl/printrun/internal/service/export"
	"github.com/mmcl/printrun/internal/service/production"
)

// ExportCatalog resolves ids for filtering and for the exported names.
type ExportCatalog interface {
	production.Catalog
	export.Catalog
}

// ExportHandler serves the spreadsheet download.
type ExportHandler struct {
	records RecordService
	catalog ExportCatalog
	logger  *zap.Logger
}

func NewExportHandler(records RecordService, catalog ExportCatalog, logger *zap.Logger) *ExportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportHandler{records: records, catalog: catalog, logger: logger}
}

// Export writes the filtered records as xlsx or csv.
func (h *ExportHandler) Export(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		fail(c, apperr.Validation("%s", err.Error()))
		return
	}

	var q production.FilterQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		fail(c, apperr.Validation("invalid query parameters"))
		return
	}
	f, err := production.BuildFilter(h.catalog, q)
	if err != nil {
		fail(c, err)
		return
	}
	records, err := h.records.List(c.Request.Context(), f)
	if err != nil {
		fail(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, records, h.catalog); err != nil {
		h.logger.Error("export failed", zap.String("format", string(format)), zap.Error(err))
		fail(c, err)
		return
	}

	filename := fmt.Sprintf("production_%s.%s", time.Now().Format("20060102_150405"), format)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}
