package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"auto_service_backend/internal/models"
	"auto_service_backend/internal/services"
	"auto_service_backend/pkg/utils"
)

// ClientHandler holds the client service. It also serves vehicles, which
// always belong to a client.
type ClientHandler struct {
	clientService services.ClientService
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(cs services.ClientService) *ClientHandler {
	return &ClientHandler{clientService: cs}
}

func respondClientError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, services.ErrClientNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Client not found.", err.Error()))
	case errors.Is(err, services.ErrVehicleNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Vehicle not found.", err.Error()))
	case errors.Is(err, services.ErrClientValidation):
		utils.RespondValidationFailed(c, err.Error())
	default:
		utils.LogError(err, message)
		utils.RespondInternalError(c, message, err)
	}
}

// CreateClient handles the creation of a new client.
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req services.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload", err.Error()))
		return
	}
	client, err := h.clientService.CreateClient(c.Request.Context(), req)
	if err != nil {
		respondClientError(c, err, "Failed to create client.")
		return
	}
	c.JSON(http.StatusCreated, client)
}

// GetClients handles fetching all clients with pagination and search.
func (h *ClientHandler) GetClients(c *gin.Context) {
	page, ok := parsePositiveInt(c, "page", 1)
	if !ok {
		return
	}
	pageSize, ok := parsePositiveInt(c, "page_size", services.DefaultPageSize)
	if !ok {
		return
	}

	clients, totalCount, err := h.clientService.GetClients(c.Request.Context(), page, pageSize, c.Query("search"))
	if err != nil {
		respondClientError(c, err, "Failed to fetch clients.")
		return
	}
	if clients == nil {
		clients = []models.Client{}
	}
	c.JSON(http.StatusOK, gin.H{
		"data":      clients,
		"total":     totalCount,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetClientByID handles fetching a single client by ID.
func (h *ClientHandler) GetClientByID(c *gin.Context) {
	clientID, ok := parseIDParam(c, "id", "client")
	if !ok {
		return
	}
	client, err := h.clientService.GetClientByID(c.Request.Context(), clientID)
	if err != nil {
		respondClientError(c, err, "Failed to fetch client.")
		return
	}
	c.JSON(http.StatusOK, client)
}

// UpdateClient handles updating a client.
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	clientID, ok := parseIDParam(c, "id", "client")
	if !ok {
		return
	}
	var req services.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload", err.Error()))
		return
	}
	client, err := h.clientService.UpdateClient(c.Request.Context(), clientID, req)
	if err != nil {
		respondClientError(c, err, "Failed to update client.")
		return
	}
	c.JSON(http.StatusOK, client)
}

// DeleteClient removes a client together with their cars and orders.
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	clientID, ok := parseIDParam(c, "id", "client")
	if !ok {
		return
	}
	if err := h.clientService.DeleteClient(c.Request.Context(), clientID); err != nil {
		respondClientError(c, err, "Failed to delete client.")
		return
	}
	c.Status(http.StatusNoContent)
}

// GetClientSummary returns the client's cars, orders and spend. car_id narrows
// the orders to one vehicle.
func (h *ClientHandler) GetClientSummary(c *gin.Context) {
	clientID, ok := parseIDParam(c, "id", "client")
	if !ok {
		return
	}
	carID, ok := parseOptionalID(c, "car_id")
	if !ok {
		return
	}
	detail, err := h.clientService.GetClientDetail(c.Request.Context(), clientID, carID)
	if err != nil {
		respondClientError(c, err, "Failed to fetch client summary.")
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *ClientHandler) GetVehicles(c *gin.Context) {
	clientID, ok := parseOptionalID(c, "client_id")
	if !ok {
		return
	}
	vehicles, err := h.clientService.GetVehicles(c.Request.Context(), clientID)
	if err != nil {
		respondClientError(c, err, "Failed to fetch vehicles.")
		return
	}
	if vehicles == nil {
		vehicles = []models.Vehicle{}
	}
	c.JSON(http.StatusOK, gin.H{"data": vehicles, "total": len(vehicles)})
}

func (h *ClientHandler) CreateVehicle(c *gin.Context) {
	var req services.CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload", err.Error()))
		return
	}
	vehicle, err := h.clientService.CreateVehicle(c.Request.Context(), req)
	if err != nil {
		respondClientError(c, err, "Failed to create vehicle.")
		return
	}
	c.JSON(http.StatusCreated, vehicle)
}

func (h *ClientHandler) DeleteVehicle(c *gin.Context) {
	vehicleID, ok := parseIDParam(c, "id", "vehicle")
	if !ok {
		return
	}
	if err := h.clientService.DeleteVehicle(c.Request.Context(), vehicleID); err != nil {
		respondClientError(c, err, "Failed to delete vehicle.")
		return
	}
	c.Status(http.StatusNoContent)
}
