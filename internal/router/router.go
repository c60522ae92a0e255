package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"auto_service_backend/internal/handlers"
	"auto_service_backend/internal/middleware"
)

// Handlers groups every HTTP handler the API serves.
type Handlers struct {
	Orders      *handlers.OrderHandler
	Lifts       *handlers.LiftHandler
	Clients     *handlers.ClientHandler
	Catalog     *handlers.CatalogHandler
	Reports     *handlers.ReportHandler
	Maintenance *handlers.MaintenanceHandler
}

// Setup registers the health, metrics and /api/v1 routes. Everything under
// /api/v1 requires a token from the hosted auth provider.
func Setup(engine *gin.Engine, h Handlers, jwtSecret string) {
	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiV1 := engine.Group("/api/v1")
	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware(jwtSecret))
	{
		SetupOrderRoutes(authenticated, h.Orders)
		SetupLiftRoutes(authenticated, h.Lifts)
		SetupClientRoutes(authenticated, h.Clients)
		SetupVehicleRoutes(authenticated, h.Clients)
		SetupCatalogRoutes(authenticated, h.Catalog)
		SetupReportRoutes(authenticated, h.Reports)
		SetupMaintenanceRoutes(authenticated, h.Maintenance)
	}
}
