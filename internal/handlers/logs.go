package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"parcel-code-relay-go/internal/models"
)

// GetLogs returns process logs with pagination
func (h *Handlers) GetLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}
	offset := (page - 1) * limit

	var logs []models.ProcessLog
	var total int64

	if err := h.db.Model(&models.ProcessLog{}).Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "database_error",
			Message: "Failed to count logs",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	if err := h.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&logs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "database_error",
			Message: "Failed to fetch logs",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	responses := make([]models.ProcessLogResponse, 0, len(logs))
	for _, entry := range logs {
		responses = append(responses, models.ProcessLogResponse{
			ID:             entry.ID,
			MessageID:      entry.MessageID,
			Account:        entry.Account,
			TrackingNumber: entry.TrackingNumber,
			Status:         entry.Status,
			ErrorMsg:       entry.ErrorMsg,
			CreatedAt:      entry.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"logs": responses,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetLog returns a specific process log
func (h *Handlers) GetLog(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid log ID",
			Code:    http.StatusBadRequest,
		})
		return
	}

	var entry models.ProcessLog
	if err := h.db.First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "not_found",
				Message: "Log not found",
				Code:    http.StatusNotFound,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "database_error",
			Message: "Failed to fetch log",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, models.ProcessLogResponse{
		ID:             entry.ID,
		MessageID:      entry.MessageID,
		Account:        entry.Account,
		TrackingNumber: entry.TrackingNumber,
		Status:         entry.Status,
		ErrorMsg:       entry.ErrorMsg,
		CreatedAt:      entry.CreatedAt,
	})
}
