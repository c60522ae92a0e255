package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"auto_service_backend/internal/timeutil"
	"auto_service_backend/pkg/utils"
)

// parseIDParam reads a positive integer path parameter. On failure it writes
// a 400 and returns false.
func parseIDParam(c *gin.Context, name, label string) (int64, bool) {
	id, err := utils.StrToInt64(c.Param(name))
	if err != nil || id <= 0 {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid "+label+" ID format.", c.Param(name)))
		return 0, false
	}
	return id, true
}

// parseOptionalID reads an optional positive integer query value.
func parseOptionalID(c *gin.Context, key string) (*int64, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	id, err := utils.StrToInt64(raw)
	if err != nil || id <= 0 {
		utils.RespondValidationFailed(c, "Invalid "+key+" format.")
		return nil, false
	}
	return &id, true
}

// parseDateQuery reads an optional YYYY-MM-DD query value as a local date.
func parseDateQuery(c *gin.Context, key string) (*time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	t, err := timeutil.ParseDate(raw)
	if err != nil {
		utils.RespondValidationFailed(c, "Invalid "+key+" date. Use YYYY-MM-DD.")
		return nil, false
	}
	return &t, true
}

// parsePositiveInt reads an optional positive integer query value with a default.
func parsePositiveInt(c *gin.Context, key string, fallback int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		utils.RespondValidationFailed(c, key+" must be a positive integer")
		return 0, false
	}
	return n, true
}
