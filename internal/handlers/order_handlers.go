package handlers

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"auto_service_backend/internal/models"
	"auto_service_backend/internal/money"
	"auto_service_backend/internal/printing"
	"auto_service_backend/internal/services"
	"auto_service_backend/pkg/utils"
)

// OrderHandler holds the order service and the document renderer.
type OrderHandler struct {
	orderService services.OrderService
	renderer     *printing.Renderer
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(os services.OrderService, renderer *printing.Renderer) *OrderHandler {
	return &OrderHandler{orderService: os, renderer: renderer}
}

type setPaidRequest struct {
	IsPaid *bool `json:"is_paid" binding:"required"`
}

type previewRequest struct {
	Services []services.ServiceDraft `json:"services"`
}

type previewResponse struct {
	Lines  []money.Totals `json:"lines"`
	Totals money.Totals   `json:"totals"`
}

func respondOrderError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, services.ErrOrderNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Order not found.", err.Error()))
	case errors.Is(err, services.ErrValidation):
		utils.RespondValidationFailed(c, err.Error())
	default:
		utils.LogError(err, message)
		utils.RespondInternalError(c, message, err)
	}
}

// parseOrderQuery reads the listing filters shared by orders, dashboard and invoices.
func parseOrderQuery(c *gin.Context) (services.OrderQuery, bool) {
	q := services.OrderQuery{Archive: services.ParseArchiveFilter(c.Query("archived"))}
	var ok bool
	if q.From, ok = parseDateQuery(c, "from"); !ok {
		return q, false
	}
	if q.To, ok = parseDateQuery(c, "to"); !ok {
		return q, false
	}
	if q.From != nil && q.To != nil && q.To.Before(*q.From) {
		utils.RespondValidationFailed(c, "to must not be before from")
		return q, false
	}
	if q.ClientID, ok = parseOptionalID(c, "client_id"); !ok {
		return q, false
	}
	if q.CarID, ok = parseOptionalID(c, "car_id"); !ok {
		return q, false
	}
	return q, true
}

// GetOrders lists orders. archived is active (default), archived or all.
func (h *OrderHandler) GetOrders(c *gin.Context) {
	q, ok := parseOrderQuery(c)
	if !ok {
		return
	}
	orders, err := h.orderService.GetOrders(c.Request.Context(), q)
	if err != nil {
		respondOrderError(c, err, "Failed to fetch orders.")
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	c.JSON(http.StatusOK, gin.H{
		"data":  orders,
		"total": len(orders),
	})
}

func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id", "order")
	if !ok {
		return
	}
	order, err := h.orderService.GetOrderByID(c.Request.Context(), orderID)
	if err != nil {
		respondOrderError(c, err, "Failed to fetch order.")
		return
	}
	c.JSON(http.StatusOK, order)
}

// CreateOrder saves a new order with all of its service lines.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var draft services.OrderDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload", err.Error()))
		return
	}
	order, err := h.orderService.CreateOrder(c.Request.Context(), draft)
	if err != nil {
		respondOrderError(c, err, "Failed to create order.")
		return
	}
	c.JSON(http.StatusCreated, order)
}

// UpdateOrder replaces the order's fields and lines with the submitted form.
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id", "order")
	if !ok {
		return
	}
	var draft services.OrderDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload", err.Error()))
		return
	}
	order, err := h.orderService.UpdateOrder(c.Request.Context(), orderID, draft)
	if err != nil {
		respondOrderError(c, err, "Failed to update order.")
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id", "order")
	if !ok {
		return
	}
	if err := h.orderService.DeleteOrder(c.Request.Context(), orderID); err != nil {
		respondOrderError(c, err, "Failed to delete order.")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *OrderHandler) SetOrderPaid(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id", "order")
	if !ok {
		return
	}
	var req setPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, "is_paid is required")
		return
	}
	order, err := h.orderService.SetOrderPaid(c.Request.Context(), orderID, *req.IsPaid)
	if err != nil {
		respondOrderError(c, err, "Failed to update payment status.")
		return
	}
	c.JSON(http.StatusOK, order)
}

// ArchiveOldOrders archives every active order older than a day.
func (h *OrderHandler) ArchiveOldOrders(c *gin.Context) {
	n, err := h.orderService.ArchiveOldOrders(c.Request.Context())
	if err != nil {
		respondOrderError(c, err, "Failed to archive orders.")
		return
	}
	utils.LogInfo("Archived old orders", map[string]interface{}{"count": n})
	c.JSON(http.StatusOK, gin.H{"archived_count": n})
}

func (h *OrderHandler) UnarchiveOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id", "order")
	if !ok {
		return
	}
	order, err := h.orderService.UnarchiveOrder(c.Request.Context(), orderID)
	if err != nil {
		respondOrderError(c, err, "Failed to unarchive order.")
		return
	}
	c.JSON(http.StatusOK, order)
}

// GetOrderDraft returns the edit form for an existing order.
func (h *OrderHandler) GetOrderDraft(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id", "order")
	if !ok {
		return
	}
	draft, err := h.orderService.GetOrderDraft(c.Request.Context(), orderID)
	if err != nil {
		respondOrderError(c, err, "Failed to load order form.")
		return
	}
	c.JSON(http.StatusOK, draft)
}

// PreviewTotals computes the live totals of an unsaved form.
func (h *OrderHandler) PreviewTotals(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}
	draft := services.OrderDraft{Services: req.Services}
	lines := make([]money.Totals, 0, len(req.Services))
	for _, s := range req.Services {
		lines = append(lines, s.Totals())
	}
	c.JSON(http.StatusOK, previewResponse{Lines: lines, Totals: draft.PreviewTotals()})
}

// PrintOrder renders the invoice. prices and order_no toggle those parts;
// format is html (default) or pdf.
func (h *OrderHandler) PrintOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id", "order")
	if !ok {
		return
	}
	order, err := h.orderService.GetOrderByID(c.Request.Context(), orderID)
	if err != nil {
		respondOrderError(c, err, "Failed to fetch order.")
		return
	}
	opts := printing.Options{
		ShowPrices:  utils.StrToBool(c.Query("prices"), true),
		ShowOrderNo: utils.StrToBool(c.Query("order_no"), true),
	}

	var buf bytes.Buffer
	switch c.DefaultQuery("format", "html") {
	case "pdf":
		if err := h.renderer.OrderPDF(&buf, order, opts); err != nil {
			utils.LogError(err, "PrintOrder: rendering PDF", map[string]interface{}{"order_id": orderID})
			utils.RespondInternalError(c, "Failed to render order.", err)
			return
		}
		c.Header("Content-Disposition", `inline; filename="porosi-`+utils.Int64ToStr(orderID)+`.pdf"`)
		c.Data(http.StatusOK, "application/pdf", buf.Bytes())
	case "html":
		if err := h.renderer.OrderHTML(&buf, order, opts); err != nil {
			utils.LogError(err, "PrintOrder: rendering HTML", map[string]interface{}{"order_id": orderID})
			utils.RespondInternalError(c, "Failed to render order.", err)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
	default:
		utils.RespondValidationFailed(c, "format must be html or pdf")
	}
}
