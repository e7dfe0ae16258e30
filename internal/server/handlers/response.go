package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mmcl/printrun/internal/apperr"
	"github.com/mmcl/printrun/internal/domain/models"
	"github.com/mmcl/printrun/internal/server/middleware"
)

// respondData writes {"success": true, "data": data}.
func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// respondMessage writes {"success": true, "message": msg}.
func respondMessage(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": msg})
}

// respondObject writes the fields of v at the top level next to "success".
func respondObject(c *gin.Context, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		_ = c.Error(err)
		return
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		_ = c.Error(err)
		return
	}
	fields["success"] = json.RawMessage("true")
	c.JSON(http.StatusOK, fields)
}

func fail(c *gin.Context, err error) {
	_ = c.Error(err)
}

func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("%s must be a positive integer", name)
	}
	return id, nil
}

func actor(c *gin.Context) (models.User, error) {
	user, ok := middleware.Actor(c)
	if !ok {
		return models.User{}, apperr.Auth("authentication required")
	}
	return user, nil
}
