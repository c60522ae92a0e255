package handlers

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"auto_service_backend/internal/middleware"
	"auto_service_backend/internal/models"
	"auto_service_backend/internal/printing"
	"auto_service_backend/internal/services"
	"auto_service_backend/internal/timeutil"
	"auto_service_backend/pkg/utils"
)

// ReportHandler serves the dashboard, the invoice list and the daily log.
type ReportHandler struct {
	orderService services.OrderService
	logService   services.DailyLogService
	renderer     *printing.Renderer
}

func NewReportHandler(os services.OrderService, ls services.DailyLogService, renderer *printing.Renderer) *ReportHandler {
	return &ReportHandler{orderService: os, logService: ls, renderer: renderer}
}

// GetDashboard aggregates revenue, cost and profit over the filtered orders.
func (h *ReportHandler) GetDashboard(c *gin.Context) {
	q, ok := parseOrderQuery(c)
	if !ok {
		return
	}
	stats, err := h.orderService.GetDashboard(c.Request.Context(), q)
	if err != nil {
		respondOrderError(c, err, "Failed to load dashboard.")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetInvoices lists orders matching q (client name, plate or VIN) page by page.
func (h *ReportHandler) GetInvoices(c *gin.Context) {
	q, ok := parseOrderQuery(c)
	if !ok {
		return
	}
	page, ok := parsePositiveInt(c, "page", 1)
	if !ok {
		return
	}
	pageSize, ok := parsePositiveInt(c, "page_size", services.DefaultPageSize)
	if !ok {
		return
	}

	result, err := h.orderService.GetInvoices(c.Request.Context(), services.InvoiceQuery{
		OrderQuery: q,
		Search:     c.Query("q"),
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		respondOrderError(c, err, "Failed to fetch invoices.")
		return
	}
	if result.Data == nil {
		result.Data = []models.Order{}
	}
	c.JSON(http.StatusOK, result)
}

// GetLogs lists shift notes and generated reports. kind is notes, reports or empty.
func (h *ReportHandler) GetLogs(c *gin.Context) {
	q := services.LogQuery{
		FromDate: c.Query("from"),
		ToDate:   c.Query("to"),
		Kind:     c.Query("kind"),
	}
	for _, d := range []string{q.FromDate, q.ToDate} {
		if d == "" {
			continue
		}
		if _, err := timeutil.ParseDate(d); err != nil {
			utils.RespondValidationFailed(c, "Invalid date. Use YYYY-MM-DD.")
			return
		}
	}
	switch q.Kind {
	case "", "notes", "reports":
	default:
		utils.RespondValidationFailed(c, "kind must be notes or reports")
		return
	}

	logs, err := h.logService.GetLogs(c.Request.Context(), q)
	if err != nil {
		utils.LogError(err, "GetLogs: Error from logService.GetLogs")
		utils.RespondInternalError(c, "Failed to fetch logs.", err)
		return
	}
	if logs == nil {
		logs = []models.DailyLog{}
	}
	c.JSON(http.StatusOK, gin.H{"data": logs, "total": len(logs)})
}

// CreateLog adds a shift note signed with the caller's email.
func (h *ReportHandler) CreateLog(c *gin.Context) {
	var req services.CreateLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}
	entry, err := h.logService.CreateLog(c.Request.Context(), req, middleware.StaffEmail(c))
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			utils.RespondValidationFailed(c, err.Error())
			return
		}
		utils.LogError(err, "CreateLog: Error from logService.CreateLog")
		utils.RespondInternalError(c, "Failed to create log.", err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *ReportHandler) DeleteLog(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "log")
	if !ok {
		return
	}
	if err := h.logService.DeleteLog(c.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrLogNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Log not found.", err.Error()))
			return
		}
		utils.LogError(err, "DeleteLog: Error from logService.DeleteLog")
		utils.RespondInternalError(c, "Failed to delete log.", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PrintDailyReport renders every order created on :date, archived ones included.
func (h *ReportHandler) PrintDailyReport(c *gin.Context) {
	label := c.Param("date")
	day, err := timeutil.ParseDate(label)
	if err != nil {
		utils.RespondValidationFailed(c, "Invalid date. Use YYYY-MM-DD.")
		return
	}
	orders, err := h.orderService.GetOrders(c.Request.Context(), services.OrderQuery{
		Archive: services.ArchiveFilterAll,
		From:    &day,
		To:      &day,
	})
	if err != nil {
		respondOrderError(c, err, "Failed to fetch orders.")
		return
	}

	var buf bytes.Buffer
	switch c.DefaultQuery("format", "html") {
	case "pdf":
		if err := h.renderer.DailyReportPDF(&buf, label, orders); err != nil {
			utils.LogError(err, "PrintDailyReport: rendering PDF", map[string]interface{}{"date": label})
			utils.RespondInternalError(c, "Failed to render report.", err)
			return
		}
		c.Header("Content-Disposition", `inline; filename="raport-`+label+`.pdf"`)
		c.Data(http.StatusOK, "application/pdf", buf.Bytes())
	case "html":
		if err := h.renderer.DailyReportHTML(&buf, label, orders); err != nil {
			utils.LogError(err, "PrintDailyReport: rendering HTML", map[string]interface{}{"date": label})
			utils.RespondInternalError(c, "Failed to render report.", err)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
	default:
		utils.RespondValidationFailed(c, "format must be html or pdf")
	}
}
