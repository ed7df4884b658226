package models

import (
	"time"

	"gorm.io/gorm"
)

// Shipment represents one tracked parcel in the database. The tracking
// number is the sole matching key and is unique across live rows.
type Shipment struct {
	ID             uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	TrackingNumber string `json:"tracking_number" gorm:"type:varchar(32);not null;uniqueIndex"`

	// Owner linkage; both are absent on rows auto-created from an email
	// before any user claimed the parcel.
	OwnerUserID *uint  `json:"owner_user_id" gorm:"index"`
	ChatID      string `json:"chat_id" gorm:"type:varchar(64)"`

	PickupCode            string     `json:"pickup_code" gorm:"type:varchar(16)"`
	PickupCodeLocation    string     `json:"pickup_code_location" gorm:"type:varchar(255)"`
	PickupCodeDeliveredAt *time.Time `json:"pickup_code_delivered_at"`

	// Drop-off codes are admin-visible only and never notified.
	DropoffCode           string     `json:"dropoff_code" gorm:"type:varchar(16)"`
	DropoffRecipientName  string     `json:"dropoff_recipient_name" gorm:"type:varchar(255)"`
	DropoffCodeRecordedAt *time.Time `json:"dropoff_code_recorded_at"`

	// Source mailbox address for rows created by the scanner.
	SourceMailbox string `json:"source_mailbox" gorm:"type:varchar(255)"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName specifies the table name for Shipment
func (Shipment) TableName() string {
	return "shipments"
}

// PickupHandled reports whether the pickup code on this row has already
// been fully delivered (or stored with nothing to deliver).
func (s *Shipment) PickupHandled() bool {
	return s.PickupCodeDeliveredAt != nil
}

// DropoffHandled reports whether a drop-off code has already been recorded.
func (s *Shipment) DropoffHandled() bool {
	return s.DropoffCodeRecordedAt != nil
}
