package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"parcel-code-relay-go/internal/models"
)

// GetShipments returns shipments with pagination
func (h *Handlers) GetShipments(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}
	offset := (page - 1) * limit

	var shipments []models.Shipment
	var total int64

	if err := h.db.Model(&models.Shipment{}).Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "database_error",
			Message: "Failed to count shipments",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	if err := h.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&shipments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "database_error",
			Message: "Failed to fetch shipments",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	responses := make([]models.ShipmentResponse, 0, len(shipments))
	for i := range shipments {
		responses = append(responses, models.NewShipmentResponse(&shipments[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"shipments": responses,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// CreateShipment creates a new shipment
func (h *Handlers) CreateShipment(c *gin.Context) {
	var req models.ShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
			Code:    http.StatusBadRequest,
		})
		return
	}

	shipment := models.Shipment{
		TrackingNumber: req.TrackingNumber,
		OwnerUserID:    req.OwnerUserID,
		ChatID:         req.ChatID,
	}

	if err := h.db.Create(&shipment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, models.ErrorResponse{
				Error:   "duplicate_tracking_number",
				Message: "A shipment with this tracking number already exists",
				Code:    http.StatusConflict,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "database_error",
			Message: "Failed to create shipment",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusCreated, models.NewShipmentResponse(&shipment))
}

// GetShipment returns a specific shipment
func (h *Handlers) GetShipment(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid shipment ID",
			Code:    http.StatusBadRequest,
		})
		return
	}

	var shipment models.Shipment
	if err := h.db.First(&shipment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "not_found",
				Message: "Shipment not found",
				Code:    http.StatusNotFound,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "database_error",
			Message: "Failed to fetch shipment",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, models.NewShipmentResponse(&shipment))
}

// UpdateShipment updates a shipment's owner and notification channel.
// The tracking number is immutable once created.
func (h *Handlers) UpdateShipment(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid shipment ID",
			Code:    http.StatusBadRequest,
		})
		return
	}

	var req models.ShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
			Code:    http.StatusBadRequest,
		})
		return
	}

	var shipment models.Shipment
	if err := h.db.First(&shipment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "not_found",
				Message: "Shipment not found",
				Code:    http.StatusNotFound,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "database_error",
			Message: "Failed to fetch shipment",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	if req.TrackingNumber != shipment.TrackingNumber {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "immutable_tracking_number",
			Message: "Tracking number cannot be changed",
			Code:    http.StatusBadRequest,
		})
		return
	}

	shipment.OwnerUserID = req.OwnerUserID
	shipment.ChatID = req.ChatID

	if err := h.db.Save(&shipment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "database_error",
			Message: "Failed to update shipment",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, models.NewShipmentResponse(&shipment))
}

// DeleteShipment soft-deletes a shipment
func (h *Handlers) DeleteShipment(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid shipment ID",
			Code:    http.StatusBadRequest,
		})
		return
	}

	if err := h.db.Delete(&models.Shipment{}, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "database_error",
			Message: "Failed to delete shipment",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.Status(http.StatusNoContent)
}
