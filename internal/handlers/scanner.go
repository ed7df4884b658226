package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"parcel-code-relay-go/internal/models"
)

// StartScanner starts the periodic scan scheduler
func (h *Handlers) StartScanner(c *gin.Context) {
	if err := h.scheduler.Start(); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "scheduler_error",
			Message: "Failed to start scanner",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Scanner started successfully",
		"status":  "running",
	})
}

// StopScanner stops the periodic scan scheduler
func (h *Handlers) StopScanner(c *gin.Context) {
	if err := h.scheduler.Stop(); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "scheduler_error",
			Message: "Failed to stop scanner",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Scanner stopped successfully",
		"status":  "stopped",
	})
}

// RunOnce triggers a scan cycle immediately. A cycle already in flight
// makes this a no-op rather than a second overlapping cycle.
func (h *Handlers) RunOnce(c *gin.Context) {
	if !h.scheduler.RunOnce() {
		c.JSON(http.StatusConflict, gin.H{
			"message": "Scan cycle already in progress",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Scan cycle completed",
	})
}

// GetScannerStatus returns the current scheduler status
func (h *Handlers) GetScannerStatus(c *gin.Context) {
	status := "stopped"
	if h.scheduler.IsRunning() {
		status = "running"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   status,
		"next_run": h.scheduler.GetNextRun(),
		"last_run": h.scheduler.GetLastRun(),
	})
}
