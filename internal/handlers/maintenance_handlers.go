package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"auto_service_backend/internal/maintenance"
	"auto_service_backend/pkg/utils"
)

// MaintenanceRunner runs the archival sweep and report materialization.
type MaintenanceRunner interface {
	RunAll(ctx context.Context, force bool) (maintenance.RunResult, error)
}

type MaintenanceHandler struct {
	runner MaintenanceRunner
}

func NewMaintenanceHandler(runner MaintenanceRunner) *MaintenanceHandler {
	return &MaintenanceHandler{runner: runner}
}

// Run executes the maintenance jobs now. force=true ignores the once-a-day guard.
// Job failures are reported with whatever the other job managed to do.
func (h *MaintenanceHandler) Run(c *gin.Context) {
	force := utils.StrToBool(c.Query("force"), false)
	result, err := h.runner.RunAll(c.Request.Context(), force)
	if err != nil {
		utils.LogError(err, "Maintenance run failed", map[string]interface{}{"force": force})
		c.JSON(http.StatusInternalServerError, gin.H{
			"result": result,
			"error":  utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Maintenance run failed.", err.Error()),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}
