package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mmcl/printrun/internal/apperr"
	"github.com/mmcl/printrun/pkg/clients/mlservice"
)

// AIHandler relays /ai routes to the prediction service. A nil client means
// the service is not configured and every route answers 503.
type AIHandler struct {
	client mlservice.Client
	logger *zap.Logger
}

func NewAIHandler(client mlservice.Client, logger *zap.Logger) *AIHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AIHandler{client: client, logger: logger}
}

func (h *AIHandler) relay(c *gin.Context, body json.RawMessage, err error) {
	if err != nil {
		h.logger.Warn("ml service call failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		fail(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

func (h *AIHandler) configured(c *gin.Context) bool {
	if h.client == nil {
		fail(c, apperr.Unavailable(nil, "ML service is not configured"))
		return false
	}
	return true
}

func (h *AIHandler) Predictions(c *gin.Context) {
	if !h.configured(c) {
		return
	}
	var machineID int64
	if raw := strings.TrimSpace(c.Query("machine_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			fail(c, apperr.Validation("machine_id must be a positive integer"))
			return
		}
		machineID = id
	}
	body, err := h.client.Predictions(c.Request.Context(), machineID)
	h.relay(c, body, err)
}

func (h *AIHandler) Recommendations(c *gin.Context) {
	if !h.configured(c) {
		return
	}
	var params mlservice.RecommendationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		fail(c, apperr.Validation("invalid query parameters"))
		return
	}
	body, err := h.client.Recommendations(c.Request.Context(), params)
	h.relay(c, body, err)
}

func (h *AIHandler) BatchAnalysis(c *gin.Context) {
	if !h.configured(c) {
		return
	}
	body, err := h.client.BatchAnalysis(c.Request.Context())
	h.relay(c, body, err)
}

func (h *AIHandler) ModelInfo(c *gin.Context) {
	if !h.configured(c) {
		return
	}
	body, err := h.client.ModelInfo(c.Request.Context())
	h.relay(c, body, err)
}

func (h *AIHandler) Health(c *gin.Context) {
	if !h.configured(c) {
		return
	}
	body, err := h.client.Health(c.Request.Context())
	h.relay(c, body, err)
}
