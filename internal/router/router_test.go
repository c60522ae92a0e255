package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"auto_service_backend/internal/handlers"
)

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	Setup(engine, Handlers{
		Orders:      &handlers.OrderHandler{},
		Lifts:       &handlers.LiftHandler{},
		Clients:     &handlers.ClientHandler{},
		Catalog:     &handlers.CatalogHandler{},
		Reports:     &handlers.ReportHandler{},
		Maintenance: &handlers.MaintenanceHandler{},
	}, "test-secret")
	return engine
}

func TestPublicRoutes(t *testing.T) {
	engine := newEngine()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPIRequiresToken(t *testing.T) {
	engine := newEngine()
	for _, path := range []string{"/api/v1/orders", "/api/v1/lifts", "/api/v1/dashboard", "/api/v1/lifts/0/timer/ws"} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestRoutesRegistered(t *testing.T) {
	routes := map[string]bool{}
	for _, r := range newEngine().Routes() {
		routes[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"GET /api/v1/orders",
		"POST /api/v1/orders",
		"POST /api/v1/orders/preview",
		"POST /api/v1/orders/archive-old",
		"PUT /api/v1/orders/:id",
		"PATCH /api/v1/orders/:id/paid",
		"POST /api/v1/orders/:id/unarchive",
		"GET /api/v1/orders/:id/draft",
		"GET /api/v1/orders/:id/print",
		"GET /api/v1/lifts",
		"GET /api/v1/lifts/ws",
		"POST /api/v1/lifts/:slot/start",
		"POST /api/v1/lifts/:slot/done",
		"GET /api/v1/lifts/:slot/timer/ws",
		"GET /api/v1/clients/:id/summary",
		"GET /api/v1/vehicles",
		"DELETE /api/v1/services/:id",
		"POST /api/v1/employees",
		"GET /api/v1/dashboard",
		"GET /api/v1/invoices",
		"GET /api/v1/logs",
		"DELETE /api/v1/logs/:id",
		"GET /api/v1/reports/daily/:date/print",
		"POST /api/v1/maintenance/run",
	} {
		assert.True(t, routes[want], "missing route %s", want)
	}
}
