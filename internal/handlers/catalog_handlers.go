package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"auto_service_backend/internal/models"
	"auto_service_backend/internal/services"
	"auto_service_backend/pkg/utils"
)

// CatalogHandler serves the service-name catalog and the employee list.
type CatalogHandler struct {
	catalogService services.CatalogService
}

func NewCatalogHandler(cs services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: cs}
}

func respondCatalogError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, services.ErrCatalogEntryNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Entry not found.", err.Error()))
	case errors.Is(err, services.ErrCatalogEntryExists):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Entry already exists.", err.Error()))
	case errors.Is(err, services.ErrValidation):
		utils.RespondValidationFailed(c, err.Error())
	default:
		utils.LogError(err, message)
		utils.RespondInternalError(c, message, err)
	}
}

func (h *CatalogHandler) GetServices(c *gin.Context) {
	list, err := h.catalogService.GetServices(c.Request.Context())
	if err != nil {
		respondCatalogError(c, err, "Failed to fetch services.")
		return
	}
	if list == nil {
		list = []models.Service{}
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

func (h *CatalogHandler) CreateService(c *gin.Context) {
	var req services.CreateCatalogEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}
	svc, err := h.catalogService.CreateService(c.Request.Context(), req)
	if err != nil {
		respondCatalogError(c, err, "Failed to create service.")
		return
	}
	c.JSON(http.StatusCreated, svc)
}

func (h *CatalogHandler) DeleteService(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "service")
	if !ok {
		return
	}
	if err := h.catalogService.DeleteService(c.Request.Context(), id); err != nil {
		respondCatalogError(c, err, "Failed to delete service.")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CatalogHandler) GetEmployees(c *gin.Context) {
	list, err := h.catalogService.GetEmployees(c.Request.Context())
	if err != nil {
		respondCatalogError(c, err, "Failed to fetch employees.")
		return
	}
	if list == nil {
		list = []models.Employee{}
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

func (h *CatalogHandler) CreateEmployee(c *gin.Context) {
	var req services.CreateCatalogEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}
	emp, err := h.catalogService.CreateEmployee(c.Request.Context(), req)
	if err != nil {
		respondCatalogError(c, err, "Failed to create employee.")
		return
	}
	c.JSON(http.StatusCreated, emp)
}

func (h *CatalogHandler) DeleteEmployee(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "employee")
	if !ok {
		return
	}
	if err := h.catalogService.DeleteEmployee(c.Request.Context(), id); err != nil {
		respondCatalogError(c, err, "Failed to delete employee.")
		return
	}
	c.Status(http.StatusNoContent)
}
