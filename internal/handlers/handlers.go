package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"parcel-code-relay-go/internal/metrics"
	"parcel-code-relay-go/internal/scheduler"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	db        *gorm.DB
	scheduler *scheduler.Scheduler
	metrics   *metrics.Metrics
}

// NewHandlers creates new HTTP handlers
func NewHandlers(db *gorm.DB, s *scheduler.Scheduler, m *metrics.Metrics) *Handlers {
	return &Handlers{db: db, scheduler: s, metrics: m}
}

// SetupRoutes sets up all HTTP routes
func (h *Handlers) SetupRoutes(router *gin.Engine) {
	router.GET("/healthz", h.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		// Shipments
		api.GET("/shipments", h.GetShipments)
		api.POST("/shipments", h.CreateShipment)
		api.GET("/shipments/:id", h.GetShipment)
		api.PUT("/shipments/:id", h.UpdateShipment)
		api.DELETE("/shipments/:id", h.DeleteShipment)

		// Process logs
		api.GET("/logs", h.GetLogs)
		api.GET("/logs/:id", h.GetLog)

		// Scanner control
		api.POST("/scanner/start", h.StartScanner)
		api.POST("/scanner/stop", h.StopScanner)
		api.POST("/scanner/run-once", h.RunOnce)
		api.GET("/scanner/status", h.GetScannerStatus)
	}
}
