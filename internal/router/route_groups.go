package router

import (
	"github.com/gin-gonic/gin"

	"auto_service_backend/internal/handlers"
)

// SetupOrderRoutes sets up the order routes.
func SetupOrderRoutes(authenticatedGroup *gin.RouterGroup, orderHandler *handlers.OrderHandler) {
	orderRoutes := authenticatedGroup.Group("/orders")
	{
		orderRoutes.GET("", orderHandler.GetOrders)
		orderRoutes.POST("", orderHandler.CreateOrder)
		orderRoutes.POST("/preview", orderHandler.PreviewTotals)
		orderRoutes.POST("/archive-old", orderHandler.ArchiveOldOrders)
		orderRoutes.GET("/:id", orderHandler.GetOrderByID)
		orderRoutes.PUT("/:id", orderHandler.UpdateOrder)
		orderRoutes.DELETE("/:id", orderHandler.DeleteOrder)
		orderRoutes.PATCH("/:id/paid", orderHandler.SetOrderPaid)
		orderRoutes.POST("/:id/unarchive", orderHandler.UnarchiveOrder)
		orderRoutes.GET("/:id/draft", orderHandler.GetOrderDraft)
		orderRoutes.GET("/:id/print", orderHandler.PrintOrder)
	}
}

// SetupLiftRoutes sets up the lift board routes and its websocket streams.
func SetupLiftRoutes(authenticatedGroup *gin.RouterGroup, liftHandler *handlers.LiftHandler) {
	liftRoutes := authenticatedGroup.Group("/lifts")
	{
		liftRoutes.GET("", liftHandler.ListLifts)
		liftRoutes.GET("/ws", liftHandler.BoardStream)
		liftRoutes.POST("/:slot/start", liftHandler.StartService)
		liftRoutes.POST("/:slot/done", liftHandler.CompleteService)
		liftRoutes.GET("/:slot/timer/ws", liftHandler.TimerStream)
	}
}

// SetupClientRoutes sets up the client routes.
func SetupClientRoutes(authenticatedGroup *gin.RouterGroup, clientHandler *handlers.ClientHandler) {
	clientRoutes := authenticatedGroup.Group("/clients")
	{
		clientRoutes.GET("", clientHandler.GetClients)
		clientRoutes.POST("", clientHandler.CreateClient)
		clientRoutes.GET("/:id", clientHandler.GetClientByID)
		clientRoutes.PUT("/:id", clientHandler.UpdateClient)
		clientRoutes.DELETE("/:id", clientHandler.DeleteClient)
		clientRoutes.GET("/:id/summary", clientHandler.GetClientSummary)
	}
}

// SetupVehicleRoutes sets up the vehicle routes.
func SetupVehicleRoutes(authenticatedGroup *gin.RouterGroup, clientHandler *handlers.ClientHandler) {
	vehicleRoutes := authenticatedGroup.Group("/vehicles")
	{
		vehicleRoutes.GET("", clientHandler.GetVehicles)
		vehicleRoutes.POST("", clientHandler.CreateVehicle)
		vehicleRoutes.DELETE("/:id", clientHandler.DeleteVehicle)
	}
}

// SetupCatalogRoutes sets up the service catalog and employee routes.
func SetupCatalogRoutes(authenticatedGroup *gin.RouterGroup, catalogHandler *handlers.CatalogHandler) {
	serviceRoutes := authenticatedGroup.Group("/services")
	{
		serviceRoutes.GET("", catalogHandler.GetServices)
		serviceRoutes.POST("", catalogHandler.CreateService)
		serviceRoutes.DELETE("/:id", catalogHandler.DeleteService)
	}
	employeeRoutes := authenticatedGroup.Group("/employees")
	{
		employeeRoutes.GET("", catalogHandler.GetEmployees)
		employeeRoutes.POST("", catalogHandler.CreateEmployee)
		employeeRoutes.DELETE("/:id", catalogHandler.DeleteEmployee)
	}
}

// SetupReportRoutes sets up the dashboard, invoice, log and report routes.
func SetupReportRoutes(authenticatedGroup *gin.RouterGroup, reportHandler *handlers.ReportHandler) {
	authenticatedGroup.GET("/dashboard", reportHandler.GetDashboard)
	authenticatedGroup.GET("/invoices", reportHandler.GetInvoices)

	logRoutes := authenticatedGroup.Group("/logs")
	{
		logRoutes.GET("", reportHandler.GetLogs)
		logRoutes.POST("", reportHandler.CreateLog)
		logRoutes.DELETE("/:id", reportHandler.DeleteLog)
	}
	authenticatedGroup.GET("/reports/daily/:date/print", reportHandler.PrintDailyReport)
}

// SetupMaintenanceRoutes sets up the on-demand maintenance route.
func SetupMaintenanceRoutes(authenticatedGroup *gin.RouterGroup, maintenanceHandler *handlers.MaintenanceHandler) {
	authenticatedGroup.POST("/maintenance/run", maintenanceHandler.Run)
}
