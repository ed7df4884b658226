package models

import "time"

// ShipmentRequest represents the request structure for creating/updating shipments
type ShipmentRequest struct {
	TrackingNumber string `json:"tracking_number" binding:"required"`
	OwnerUserID    *uint  `json:"owner_user_id"`
	ChatID         string `json:"chat_id"`
}

// ShipmentResponse represents the response structure for shipments
type ShipmentResponse struct {
	ID                    uint       `json:"id"`
	TrackingNumber        string     `json:"tracking_number"`
	OwnerUserID           *uint      `json:"owner_user_id"`
	ChatID                string     `json:"chat_id"`
	PickupCode            string     `json:"pickup_code"`
	PickupCodeLocation    string     `json:"pickup_code_location"`
	PickupCodeDeliveredAt *time.Time `json:"pickup_code_delivered_at"`
	DropoffCode           string     `json:"dropoff_code"`
	DropoffRecipientName  string     `json:"dropoff_recipient_name"`
	DropoffCodeRecordedAt *time.Time `json:"dropoff_code_recorded_at"`
	SourceMailbox         string     `json:"source_mailbox"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// NewShipmentResponse converts a Shipment row into its API representation
func NewShipmentResponse(s *Shipment) ShipmentResponse {
	return ShipmentResponse{
		ID:                    s.ID,
		TrackingNumber:        s.TrackingNumber,
		OwnerUserID:           s.OwnerUserID,
		ChatID:                s.ChatID,
		PickupCode:            s.PickupCode,
		PickupCodeLocation:    s.PickupCodeLocation,
		PickupCodeDeliveredAt: s.PickupCodeDeliveredAt,
		DropoffCode:           s.DropoffCode,
		DropoffRecipientName:  s.DropoffRecipientName,
		DropoffCodeRecordedAt: s.DropoffCodeRecordedAt,
		SourceMailbox:         s.SourceMailbox,
		CreatedAt:             s.CreatedAt,
		UpdatedAt:             s.UpdatedAt,
	}
}

// ProcessLogResponse represents the response structure for process logs
type ProcessLogResponse struct {
	ID             uint      `json:"id"`
	MessageID      string    `json:"message_id"`
	Account        string    `json:"account"`
	TrackingNumber string    `json:"tracking_number"`
	Status         string    `json:"status"`
	ErrorMsg       string    `json:"error_msg"`
	CreatedAt      time.Time `json:"created_at"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Database  string            `json:"database"`
	Scanner   map[string]string `json:"scanner,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
